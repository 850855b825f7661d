package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/WhiteMageDev/registration-login-demo/internal/core/domain"
	"github.com/WhiteMageDev/registration-login-demo/internal/core/port"
	"github.com/WhiteMageDev/registration-login-demo/internal/infra/logger"
	"github.com/WhiteMageDev/registration-login-demo/internal/infra/security"
	"github.com/WhiteMageDev/registration-login-demo/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the provided email or password are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInactiveAccount indicates the account is locked or expired.
	ErrInactiveAccount = errors.New("account is not active")
	// ErrAccountPending indicates the account's email was never confirmed.
	ErrAccountPending = errors.New("account pending confirmation")
	// ErrUnknownPrincipal indicates no account exists for the given email.
	ErrUnknownPrincipal = errors.New("unknown principal")
	// ErrInvalidAccessToken indicates the provided access token is malformed or signature validation failed.
	ErrInvalidAccessToken = errors.New("invalid access token")
	// ErrExpiredAccessToken indicates the provided access token has expired.
	ErrExpiredAccessToken = errors.New("access token expired")
)

// AuthService authenticates accounts by email and issues access tokens.
type AuthService struct {
	users  port.UserRepository
	hasher port.PasswordHasher
	tokens *security.TokenManager
	logger *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users port.UserRepository, hasher port.PasswordHasher, tokens *security.TokenManager, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{users: users, hasher: hasher, tokens: tokens, logger: log}
}

// LoadPrincipal resolves the account whose email matches the given identifier.
// The email is the login identifier; username is display-only.
func (s *AuthService) LoadPrincipal(ctx context.Context, email string) (domain.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.Account{}, ErrUnknownPrincipal
	}

	account, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Account{}, ErrUnknownPrincipal
		}
		return domain.Account{}, fmt.Errorf("lookup principal: %w", err)
	}

	return *account, nil
}

// Authenticate verifies the email and password pair and issues an access token.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (string, domain.Account, error) {
	account, err := s.LoadPrincipal(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUnknownPrincipal) {
			return "", domain.Account{}, ErrInvalidCredentials
		}
		return "", domain.Account{}, err
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		return "", domain.Account{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.logger.Info("Login rejected: bad password",
			zap.String("email", logger.MaskEmail(account.Email)),
		)
		return "", domain.Account{}, ErrInvalidCredentials
	}

	if !account.Enabled {
		return "", domain.Account{}, ErrAccountPending
	}
	if !account.CanAuthenticate() {
		return "", domain.Account{}, ErrInactiveAccount
	}

	if s.tokens == nil {
		return "", domain.Account{}, fmt.Errorf("token manager not configured")
	}

	accessToken, err := s.tokens.Issue(account.ID, account.Username, account.Email, string(account.Role))
	if err != nil {
		return "", domain.Account{}, fmt.Errorf("issue access token: %w", err)
	}

	return accessToken, account, nil
}

// ParseAccessToken validates the token and returns its claims.
func (s *AuthService) ParseAccessToken(tokenString string) (*security.Claims, error) {
	if s.tokens == nil {
		return nil, fmt.Errorf("token manager not configured")
	}

	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		switch {
		case errors.Is(err, security.ErrTokenExpired):
			return nil, ErrExpiredAccessToken
		case errors.Is(err, security.ErrTokenInvalid):
			return nil, ErrInvalidAccessToken
		}
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	return claims, nil
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/WhiteMageDev/registration-login-demo/internal/core/domain"
	"github.com/WhiteMageDev/registration-login-demo/internal/core/port"
	"github.com/WhiteMageDev/registration-login-demo/internal/infra/config"
	"github.com/WhiteMageDev/registration-login-demo/internal/infra/logger"
	"github.com/WhiteMageDev/registration-login-demo/internal/infra/security"
	"github.com/WhiteMageDev/registration-login-demo/internal/repository"
)

const (
	defaultTokenTTL       = 15 * time.Minute
	confirmationTokenSize = 32
)

var (
	// ErrValidation indicates a missing or malformed registration field.
	ErrValidation = errors.New("registration request invalid")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already taken")
	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrTokenNotFound indicates the confirmation token does not exist.
	ErrTokenNotFound = errors.New("confirmation token not found")
	// ErrTokenExpired indicates the confirmation token's validity window has elapsed.
	ErrTokenExpired = errors.New("confirmation token expired")
	// ErrAlreadyConfirmed indicates the token was redeemed before.
	ErrAlreadyConfirmed = errors.New("email already confirmed")
	// ErrPasswordPolicyViolation indicates the password does not satisfy complexity requirements.
	ErrPasswordPolicyViolation = errors.New("password does not meet complexity requirements")
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// RegistrationService handles new account onboarding and email confirmation.
type RegistrationService struct {
	users             port.UserRepository
	tokens            port.TokenRepository
	hasher            port.PasswordHasher
	notifier          port.Notifier
	events            port.EventPublisher
	passwordValidator *security.PasswordValidator
	tokenTTL          time.Duration
	confirmBaseURL    string
	logger            *zap.Logger
	now               func() time.Time
}

// NewRegistrationService constructs a registration service.
func NewRegistrationService(
	users port.UserRepository,
	tokens port.TokenRepository,
	hasher port.PasswordHasher,
	notifier port.Notifier,
	events port.EventPublisher,
	validator *security.PasswordValidator,
	cfg config.RegistrationSettings,
	log *zap.Logger,
) *RegistrationService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RegistrationService{
		users:             users,
		tokens:            tokens,
		hasher:            hasher,
		notifier:          notifier,
		events:            events,
		passwordValidator: validator,
		tokenTTL:          ttl,
		confirmBaseURL:    cfg.ConfirmBaseURL,
		logger:            log,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock.
func (s *RegistrationService) WithClock(now func() time.Time) *RegistrationService {
	if now != nil {
		s.now = now
	}
	return s
}

// RegistrationResult captures the persisted account and its confirmation artifact.
type RegistrationResult struct {
	Account   domain.Account
	Token     string
	ExpiresAt time.Time
}

// Register creates a disabled account, mints its confirmation token, and queues
// the confirmation mail. The mail handoff is fire-and-forget: a delivery
// failure is logged but never fails the registration.
func (s *RegistrationService) Register(ctx context.Context, username, email, password string) (RegistrationResult, error) {
	var zero RegistrationResult

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return zero, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if email == "" {
		return zero, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !emailPattern.MatchString(email) {
		return zero, fmt.Errorf("%w: email is not valid", ErrValidation)
	}
	if password == "" {
		return zero, fmt.Errorf("%w: password is required", ErrValidation)
	}

	if err := s.passwordValidator.Validate(password); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrPasswordPolicyViolation, err)
	}

	// Email is checked before username so a request failing both reports
	// the email conflict.
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return zero, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return zero, fmt.Errorf("lookup email: %w", err)
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return zero, ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return zero, fmt.Errorf("lookup username: %w", err)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return zero, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	account := domain.Account{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         domain.RoleUser,
		Enabled:      false,
		CreatedAt:    now,
	}

	if err := s.users.Save(ctx, account); err != nil {
		// Concurrent registrations can slip past the lookups above; the
		// unique constraints are the arbiter.
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return zero, ErrEmailTaken
		case errors.Is(err, repository.ErrDuplicateUsername):
			return zero, ErrUsernameTaken
		}
		return zero, fmt.Errorf("save account: %w", err)
	}

	rawToken, err := security.GenerateSecureToken(confirmationTokenSize)
	if err != nil {
		return zero, fmt.Errorf("generate confirmation token: %w", err)
	}

	expiresAt := now.Add(s.tokenTTL)
	token := domain.ConfirmationToken{
		ID:        uuid.NewString(),
		Token:     rawToken,
		Created:   now,
		Expires:   expiresAt,
		AccountID: account.ID,
		Username:  account.Username,
	}
	if err := s.tokens.Save(ctx, token); err != nil {
		return zero, fmt.Errorf("store confirmation token: %w", err)
	}

	s.sendConfirmationMail(ctx, account, rawToken)
	s.publishRegistered(ctx, account, expiresAt)

	return RegistrationResult{Account: account, Token: rawToken, ExpiresAt: expiresAt}, nil
}

// Confirm redeems a confirmation token, marking it used and enabling the
// owning account.
func (s *RegistrationService) Confirm(ctx context.Context, rawToken string) (domain.Account, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return domain.Account{}, ErrTokenNotFound
	}

	token, err := s.tokens.FindByToken(ctx, rawToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Account{}, ErrTokenNotFound
		}
		return domain.Account{}, fmt.Errorf("lookup confirmation token: %w", err)
	}

	if token.IsConfirmed() {
		return domain.Account{}, ErrAlreadyConfirmed
	}

	now := s.now()
	if token.IsExpired(now) {
		return domain.Account{}, ErrTokenExpired
	}

	// MarkConfirmed only touches pending tokens; zero rows means a concurrent
	// confirm won the race after our read.
	confirmed, err := s.tokens.MarkConfirmed(ctx, rawToken, now)
	if err != nil {
		return domain.Account{}, fmt.Errorf("mark token confirmed: %w", err)
	}
	if confirmed == 0 {
		return domain.Account{}, ErrAlreadyConfirmed
	}

	enabled, err := s.users.Enable(ctx, token.Username)
	if err != nil {
		return domain.Account{}, fmt.Errorf("enable account: %w", err)
	}
	if enabled == 0 {
		return domain.Account{}, fmt.Errorf("enable account: no rows updated for %q", token.Username)
	}

	account, err := s.users.FindByUsername(ctx, token.Username)
	if err != nil {
		return domain.Account{}, fmt.Errorf("lookup account: %w", err)
	}
	account.Enabled = true

	s.publishConfirmed(ctx, *account, now)

	return *account, nil
}

func (s *RegistrationService) confirmationLink(rawToken string) string {
	base := s.confirmBaseURL
	if base == "" {
		return rawToken
	}
	return fmt.Sprintf("%s?token=%s", base, url.QueryEscape(rawToken))
}

func (s *RegistrationService) sendConfirmationMail(ctx context.Context, account domain.Account, rawToken string) {
	if s.notifier == nil {
		return
	}

	link := s.confirmationLink(rawToken)
	body := fmt.Sprintf(
		"Hi %s,\n\nThank you for registering. Please click on the below link to activate your account:\n%s\n\nThe link will expire in %s.\n",
		account.Username, link, s.tokenTTL,
	)

	if err := s.notifier.Send(ctx, account.Email, body); err != nil {
		s.logger.Error("Failed to queue confirmation mail",
			zap.Error(err),
			zap.String("email", logger.MaskEmail(account.Email)),
		)
	}
}

func (s *RegistrationService) publishRegistered(ctx context.Context, account domain.Account, expiresAt time.Time) {
	if s.events == nil {
		return
	}

	event := domain.AccountRegisteredEvent{
		EventID:      uuid.NewString(),
		AccountID:    account.ID,
		Username:     account.Username,
		Email:        account.Email,
		Role:         string(account.Role),
		RegisteredAt: account.CreatedAt,
		TokenExpires: expiresAt,
	}
	if err := s.events.PublishAccountRegistered(ctx, event); err != nil {
		s.logger.Warn("Failed to publish account.registered event",
			zap.Error(err),
			zap.String("account_id", account.ID),
		)
	}
}

func (s *RegistrationService) publishConfirmed(ctx context.Context, account domain.Account, at time.Time) {
	if s.events == nil {
		return
	}

	event := domain.AccountConfirmedEvent{
		EventID:     uuid.NewString(),
		AccountID:   account.ID,
		Username:    account.Username,
		ConfirmedAt: at,
	}
	if err := s.events.PublishAccountConfirmed(ctx, event); err != nil {
		s.logger.Warn("Failed to publish account.confirmed event",
			zap.Error(err),
			zap.String("account_id", account.ID),
		)
	}
}

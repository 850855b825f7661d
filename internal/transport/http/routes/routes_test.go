package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/WhiteMageDev/registration-login-demo/internal/core/domain"
	"github.com/WhiteMageDev/registration-login-demo/internal/infra/config"
	"github.com/WhiteMageDev/registration-login-demo/internal/infra/security"
	"github.com/WhiteMageDev/registration-login-demo/internal/repository"
	httproutes "github.com/WhiteMageDev/registration-login-demo/internal/transport/http/routes"
	"github.com/WhiteMageDev/registration-login-demo/internal/usecase"
)

type memoryUserRepository struct {
	byUsername map[string]domain.Account
	byEmail    map[string]domain.Account
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{
		byUsername: make(map[string]domain.Account),
		byEmail:    make(map[string]domain.Account),
	}
}

func (r *memoryUserRepository) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	if account, ok := r.byUsername[username]; ok {
		return &account, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	if account, ok := r.byEmail[email]; ok {
		return &account, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memoryUserRepository) Save(_ context.Context, account domain.Account) error {
	if _, ok := r.byEmail[account.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	if _, ok := r.byUsername[account.Username]; ok {
		return repository.ErrDuplicateUsername
	}
	r.byUsername[account.Username] = account
	r.byEmail[account.Email] = account
	return nil
}

func (r *memoryUserRepository) Enable(_ context.Context, username string) (int64, error) {
	account, ok := r.byUsername[username]
	if !ok {
		return 0, nil
	}
	account.Enabled = true
	r.byUsername[username] = account
	r.byEmail[account.Email] = account
	return 1, nil
}

type memoryTokenRepository struct {
	byToken map[string]domain.ConfirmationToken
}

func newMemoryTokenRepository() *memoryTokenRepository {
	return &memoryTokenRepository{byToken: make(map[string]domain.ConfirmationToken)}
}

func (r *memoryTokenRepository) FindByToken(_ context.Context, token string) (*domain.ConfirmationToken, error) {
	if stored, ok := r.byToken[token]; ok {
		return &stored, nil
	}
	return nil, repository.ErrNotFound
}

func (r *memoryTokenRepository) Save(_ context.Context, token domain.ConfirmationToken) error {
	r.byToken[token.Token] = token
	return nil
}

func (r *memoryTokenRepository) MarkConfirmed(_ context.Context, token string, at time.Time) (int64, error) {
	stored, ok := r.byToken[token]
	if !ok || stored.Confirmed != nil {
		return 0, nil
	}
	stored.Confirmed = &at
	r.byToken[token] = stored
	return 1, nil
}

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.AppConfig{
		App: config.AppSettings{Name: "registration-service", Env: "development"},
		Registration: config.RegistrationSettings{
			TokenTTL:       15 * time.Minute,
			ConfirmBaseURL: "http://localhost:8080/api/v1/registration/confirm",
		},
	}

	users := newMemoryUserRepository()
	tokens := newMemoryTokenRepository()
	hasher := security.DefaultArgon2Hasher()

	manager, err := security.NewTokenManager("test-secret-0123456789", cfg.App.Name, 15*time.Minute)
	if err != nil {
		t.Fatalf("failed to build token manager: %v", err)
	}

	log := zaptest.NewLogger(t)
	registration := usecase.NewRegistrationService(users, tokens, hasher, nil, nil, nil, cfg.Registration, log)
	auth := usecase.NewAuthService(users, hasher, manager, log)

	return httproutes.Register(httproutes.Dependencies{
		Config: cfg,
		Logger: log,
		Services: httproutes.ServiceSet{
			Auth:         auth,
			Registration: registration,
		},
	})
}

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, _ := zap.NewDevelopment()
	cfg := &config.AppConfig{App: config.AppSettings{Env: "test"}}

	r := httproutes.Register(httproutes.Dependencies{
		Config: cfg,
		Logger: logger,
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestRegistrationConfirmLoginFlow(t *testing.T) {
	r := newTestEngine(t)

	// Register.
	body, _ := json.Marshal(map[string]string{
		"username": "newuser123",
		"email":    "newuser@example.com",
		"password": "password123",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/registration", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var regResp struct {
		Account struct {
			Enabled bool `json:"enabled"`
		} `json:"account"`
		DevToken *string `json:"dev_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &regResp); err != nil {
		t.Fatalf("failed to decode registration response: %v", err)
	}
	if regResp.Account.Enabled {
		t.Fatalf("expected fresh account to be disabled")
	}
	if regResp.DevToken == nil || *regResp.DevToken == "" {
		t.Fatalf("expected dev token in development mode")
	}

	// Login before confirmation is rejected.
	loginBody, _ := json.Marshal(map[string]string{
		"email":    "newuser@example.com",
		"password": "password123",
	})
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(loginBody))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 before confirmation, got %d", w.Code)
	}

	// Confirm.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/registration/confirm?token="+*regResp.DevToken, nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 on confirm, got %d: %s", w.Code, w.Body.String())
	}

	// Second redemption conflicts.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/registration/confirm?token="+*regResp.DevToken, nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409 on repeated confirm, got %d", w.Code)
	}

	// Login now succeeds.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(loginBody))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 on login, got %d: %s", w.Code, w.Body.String())
	}

	var loginResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &loginResp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if loginResp.AccessToken == "" {
		t.Fatalf("expected access token in login response")
	}

	// The access token resolves the account.
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/account/me", nil)
	req.Header.Set("Authorization", "Bearer "+loginResp.AccessToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 for /account/me, got %d: %s", w.Code, w.Body.String())
	}

	var meResp struct {
		Username string `json:"username"`
		Enabled  bool   `json:"enabled"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &meResp); err != nil {
		t.Fatalf("failed to decode account response: %v", err)
	}
	if meResp.Username != "newuser123" || !meResp.Enabled {
		t.Fatalf("unexpected account payload: %+v", meResp)
	}
}

func TestRegistrationDuplicateEmail(t *testing.T) {
	r := newTestEngine(t)

	body, _ := json.Marshal(map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/registration", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}

	// Same email, different username: the email conflict wins.
	body, _ = json.Marshal(map[string]string{
		"username": "bob",
		"email":    "alice@example.com",
		"password": "password123",
	})
	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/api/v1/registration", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", w.Code)
	}

	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Error != "email already taken" {
		t.Fatalf("expected email conflict message, got %q", errResp.Error)
	}
}

func TestConfirmUnknownToken(t *testing.T) {
	r := newTestEngine(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/registration/confirm?token=unknown", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/WhiteMageDev/registration-login-demo/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// AccountSummary describes a minimal view of an account returned by the API.
type AccountSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Enabled  bool   `json:"enabled"`
}

func newAccountSummary(account domain.Account) AccountSummary {
	return AccountSummary{
		ID:       account.ID,
		Username: account.Username,
		Email:    account.Email,
		Role:     string(account.Role),
		Enabled:  account.Enabled,
	}
}

// RegistrationRequest defines the account registration payload.
type RegistrationRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegistrationResponse contains registration results and next steps.
type RegistrationResponse struct {
	Account   AccountSummary `json:"account"`
	Message   string         `json:"message"`
	ExpiresAt string         `json:"expires_at,omitempty"`
	// DevToken is only populated in development mode. In production the
	// confirmation token is delivered by mail only.
	DevToken *string `json:"dev_token,omitempty"`
}

// ConfirmResponse is returned after a successful email confirmation.
type ConfirmResponse struct {
	Message string         `json:"message"`
	Account AccountSummary `json:"account"`
}

// AuthLoginRequest defines the payload for the login endpoint.
type AuthLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthLoginResponse describes the response returned for a successful login.
type AuthLoginResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int            `json:"expires_in"`
	Account     AccountSummary `json:"account"`
}

// HealthResponse is returned by the liveness endpoint.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse is returned by the readiness endpoint.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

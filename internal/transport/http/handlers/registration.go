package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/WhiteMageDev/registration-login-demo/internal/usecase"
)

// RegistrationHandler exposes endpoints for account registration and email confirmation.
type RegistrationHandler struct {
	registration *usecase.RegistrationService
	isDev        bool
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(registration *usecase.RegistrationService, isDev bool) *RegistrationHandler {
	return &RegistrationHandler{registration: registration, isDev: isDev}
}

// RegisterRoutes binds registration endpoints, applying optional middleware chains per endpoint.
func (h *RegistrationHandler) RegisterRoutes(r *gin.RouterGroup, registerMiddlewares, confirmMiddlewares []gin.HandlerFunc) {
	r.POST("", append(append([]gin.HandlerFunc{}, registerMiddlewares...), h.Register)...)
	r.GET("/confirm", append(append([]gin.HandlerFunc{}, confirmMiddlewares...), h.Confirm)...)
}

// Register godoc
// @Summary Register a new account
// @Description Creates a disabled account and mails a confirmation link valid for a limited window.
// @Tags Registration
// @Accept json
// @Produce json
// @Param request body RegistrationRequest true "Registration request"
// @Success 201 {object} RegistrationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/registration [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	result, err := h.registration.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, err, map[error]errorStatus{
			usecase.ErrValidation:              {http.StatusBadRequest, "invalid registration payload"},
			usecase.ErrPasswordPolicyViolation: {http.StatusBadRequest, "password does not meet requirements"},
			usecase.ErrEmailTaken:              {http.StatusConflict, "email already taken"},
			usecase.ErrUsernameTaken:           {http.StatusConflict, "username already taken"},
		}, "failed to register account")
		return
	}

	resp := RegistrationResponse{
		Account:   newAccountSummary(result.Account),
		Message:   "confirmation required",
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
	}

	if h.isDev {
		if token := strings.TrimSpace(result.Token); token != "" {
			resp.DevToken = &token
		}
	}

	c.JSON(http.StatusCreated, resp)
}

// Confirm godoc
// @Summary Confirm a registration token
// @Description Redeems an email confirmation token and enables the owning account.
// @Tags Registration
// @Produce json
// @Param token query string true "Confirmation token"
// @Success 200 {object} ConfirmResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/registration/confirm [get]
func (h *RegistrationHandler) Confirm(c *gin.Context) {
	token := c.Query("token")

	account, err := h.registration.Confirm(c.Request.Context(), token)
	if err != nil {
		respondError(c, err, map[error]errorStatus{
			usecase.ErrTokenNotFound:    {http.StatusNotFound, "confirmation token not found"},
			usecase.ErrAlreadyConfirmed: {http.StatusConflict, "email already confirmed"},
			usecase.ErrTokenExpired:     {http.StatusGone, "confirmation token expired"},
		}, "failed to confirm account")
		return
	}

	c.JSON(http.StatusOK, ConfirmResponse{
		Message: "account confirmed",
		Account: newAccountSummary(account),
	})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WhiteMageDev/registration-login-demo/internal/transport/http/middleware"
	"github.com/WhiteMageDev/registration-login-demo/internal/usecase"
)

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	auth *usecase.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes binds authentication routes, applying optional middleware ahead of the login handler.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, loginMiddlewares ...gin.HandlerFunc) {
	if len(loginMiddlewares) > 0 {
		chain := append([]gin.HandlerFunc{}, loginMiddlewares...)
		chain = append(chain, h.Login)
		r.POST("/login", chain...)
	} else {
		r.POST("/login", h.Login)
	}
}

// Login godoc
// @Summary Authenticate an account with email and password
// @Description Validates the provided email and password, returning an access token on success.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body AuthLoginRequest true "Login request"
// @Success 200 {object} AuthLoginResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 429 {object} middleware.ProblemDetails
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req AuthLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	accessToken, account, err := h.auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, map[error]errorStatus{
			usecase.ErrInvalidCredentials: {http.StatusUnauthorized, "invalid credentials"},
			usecase.ErrAccountPending:     {http.StatusForbidden, "account pending confirmation"},
			usecase.ErrInactiveAccount:    {http.StatusForbidden, "account inactive"},
		}, "authentication failed")
		return
	}

	c.JSON(http.StatusOK, AuthLoginResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   h.expiresIn(accessToken),
		Account:     newAccountSummary(account),
	})
}

// Me godoc
// @Summary Return the authenticated account
// @Description Resolves the caller's account from the access token claims.
// @Tags Authentication
// @Produce json
// @Success 200 {object} AccountSummary
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/account/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetAccessTokenClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	account, err := h.auth.LoadPrincipal(c.Request.Context(), claims.Email)
	if err != nil {
		respondError(c, err, map[error]errorStatus{
			usecase.ErrUnknownPrincipal: {http.StatusNotFound, "account not found"},
		}, "failed to load account")
		return
	}

	c.JSON(http.StatusOK, newAccountSummary(account))
}

func (h *AuthHandler) expiresIn(token string) int {
	claims, err := h.auth.ParseAccessToken(token)
	if err != nil || claims == nil || claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return 0
	}

	seconds := int(claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time).Seconds())
	if seconds < 0 {
		return 0
	}
	return seconds
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newCORSRouter(allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(CORS(allowedOrigins))
	router.POST("/api/v1/registration", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return router
}

func TestCORSGrantsCredentialsToListedOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := newCORSRouter([]string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/registration", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("expected the listed origin to be allowed, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected credentials for a listed origin, got %q", got)
	}
	if got := rec.Header().Get("Vary"); got != "Origin" {
		t.Fatalf("expected Vary: Origin, got %q", got)
	}
}

func TestCORSWildcardNeverGrantsCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := newCORSRouter([]string{"*"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/registration", nil)
	req.Header.Set("Origin", "https://elsewhere.example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected the wildcard origin, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Fatalf("expected no credentials with the wildcard, got %q", got)
	}
}

func TestCORSAnswersPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := newCORSRouter([]string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/registration", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected preflight 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET,POST,OPTIONS" {
		t.Fatalf("unexpected allowed methods %q", got)
	}
}

func TestCORSIgnoresUnlistedOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := newCORSRouter([]string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/registration", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no CORS grant for an unlisted origin, got %q", got)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected the request itself to proceed, got %d", rec.Code)
	}
}

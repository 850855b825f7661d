package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/WhiteMageDev/registration-login-demo/internal/infra/logger"
)

const (
	// TraceIDHeader carries the caller-supplied trace identifier.
	TraceIDHeader   = "X-Trace-ID"
	requestIDHeader = "X-Request-ID"

	traceIDKey = "trace_id"
	scopeKey   = "request_scope"
	claimsKey  = "access_claims"
)

// RequestScope carries per-request correlation data consumed by the access
// log and by error payloads.
type RequestScope struct {
	TraceID   string
	RequestID string
	AccountID string
	IP        string
	UserAgent string
}

// Tracing assigns trace and request identifiers to every request, echoes them
// back in the response headers, and seeds the request scope.
func Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(traceIDKey, traceID)
		c.Header(TraceIDHeader, traceID)
		c.Writer.Header().Set(requestIDHeader, requestID)

		c.Set(scopeKey, &RequestScope{
			TraceID:   traceID,
			RequestID: requestID,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})

		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey{}, requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetTraceID returns the trace identifier assigned by Tracing.
func GetTraceID(c *gin.Context) string {
	if v, ok := c.Get(traceIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// GetRequestScope returns the scope seeded by Tracing. Never nil.
func GetRequestScope(c *gin.Context) *RequestScope {
	if v, ok := c.Get(scopeKey); ok {
		if scope, ok := v.(*RequestScope); ok {
			return scope
		}
	}
	return &RequestScope{}
}

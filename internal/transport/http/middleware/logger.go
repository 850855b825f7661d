package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appLogger "github.com/WhiteMageDev/registration-login-demo/internal/infra/logger"
)

// AccessLog emits one structured log line per request. Client IPs are masked;
// the account ID appears only after RequireAuth identified the caller.
func AccessLog(log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		scope := GetRequestScope(c)
		fields := []zap.Field{
			zap.String("trace_id", scope.TraceID),
			zap.String("request_id", scope.RequestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int("bytes", c.Writer.Size()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", appLogger.MaskIP(scope.IP)),
		}

		if scope.AccountID != "" {
			fields = append(fields, zap.String("account_id", scope.AccountID))
		}

		if ua := scope.UserAgent; ua != "" {
			fields = append(fields, zap.String("user_agent", ua))
		}

		if last := c.Errors.Last(); last != nil {
			log.Error("request failed", append(fields, zap.Error(last.Err))...)
			return
		}

		log.Info("request completed", fields...)
	}
}

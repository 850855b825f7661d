package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	throttleProblemType  = "https://registration.example.com/errors/rate-limit-exceeded"
	throttleProblemTitle = "Rate Limit Exceeded"
)

// AttemptStore is the attempt journal the limiter consults. Attempts are
// grouped into buckets, one per rule and caller.
type AttemptStore interface {
	Record(ctx context.Context, bucket string, at time.Time) error
	Prune(ctx context.Context, bucket string, cutoff time.Time) error
	Count(ctx context.Context, bucket string, since time.Time) (int, error)
	Oldest(ctx context.Context, bucket string, since time.Time) (time.Time, bool, error)
}

// IdentifierFunc scopes a limit to a caller, typically by client IP.
type IdentifierFunc func(*gin.Context) (string, bool)

// RateLimitRule caps how many attempts one caller may make within a sliding
// window. Registration, confirmation, and login each get their own rule.
type RateLimitRule struct {
	Name       string
	Limit      int
	Window     time.Duration
	Identifier IdentifierFunc
}

// RateLimiter throttles the unauthenticated endpoints. An unreachable store
// never blocks traffic.
type RateLimiter struct {
	store  AttemptStore
	logger *zap.Logger
	now    func() time.Time
}

// ProblemDetails is the RFC 9457 payload returned on a throttled request.
type ProblemDetails struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	Status     int    `json:"status"`
	Detail     string `json:"detail"`
	Instance   string `json:"instance"`
	RetryAfter int    `json:"retry_after"`
	TraceID    string `json:"trace_id,omitempty"`
}

// NewRateLimiter builds a limiter backed by the provided store.
func NewRateLimiter(store AttemptStore, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &RateLimiter{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock injects a custom clock for tests.
func (rl *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	if now != nil {
		rl.now = now
	}
	return rl
}

// ClientIPIdentifier scopes a rule by the request's client IP.
func ClientIPIdentifier() IdentifierFunc {
	return func(c *gin.Context) (string, bool) {
		ip := c.ClientIP()
		return ip, ip != ""
	}
}

type verdict struct {
	allowed    bool
	remaining  int
	reset      time.Time
	retryAfter time.Duration
}

// RateLimit enforces rule on every request passing through. Rules without an
// identifier, limit, or window disable enforcement.
func (rl *RateLimiter) RateLimit(rule RateLimitRule) gin.HandlerFunc {
	if rl.store == nil || rule.Identifier == nil || rule.Limit <= 0 || rule.Window <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		caller, ok := rule.Identifier(c)
		if !ok || caller == "" {
			c.Next()
			return
		}

		bucket := rule.Name + ":" + caller

		v, err := rl.check(c.Request.Context(), rule, bucket)
		if err != nil {
			rl.logger.Warn("rate limit check failed",
				zap.String("rule", rule.Name),
				zap.String("bucket", bucket),
				zap.Error(err))
			c.Next()
			return
		}

		rl.writeHeaders(c, rule.Limit, v)

		if !v.allowed {
			rl.reject(c, v)
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) check(ctx context.Context, rule RateLimitRule, bucket string) (verdict, error) {
	now := rl.now()
	since := now.Add(-rule.Window)

	if err := rl.store.Prune(ctx, bucket, since); err != nil {
		return verdict{}, err
	}

	count, err := rl.store.Count(ctx, bucket, since)
	if err != nil {
		return verdict{}, err
	}

	reset := now.Add(rule.Window)
	if oldest, found, err := rl.store.Oldest(ctx, bucket, since); err != nil {
		return verdict{}, err
	} else if found {
		reset = oldest.Add(rule.Window)
	}

	if count >= rule.Limit {
		retry := reset.Sub(now)
		if retry < 0 {
			retry = 0
		}
		return verdict{reset: reset, retryAfter: retry}, nil
	}

	if err := rl.store.Record(ctx, bucket, now); err != nil {
		return verdict{}, err
	}

	remaining := rule.Limit - count - 1
	if remaining < 0 {
		remaining = 0
	}

	return verdict{allowed: true, remaining: remaining, reset: reset}, nil
}

func (rl *RateLimiter) writeHeaders(c *gin.Context, limit int, v verdict) {
	headers := c.Writer.Header()
	headers.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(v.remaining))
	headers.Set("X-RateLimit-Reset", strconv.FormatInt(v.reset.Unix(), 10))

	if !v.allowed {
		headers.Set("Retry-After", strconv.Itoa(retrySeconds(v.retryAfter)))
	}
}

func (rl *RateLimiter) reject(c *gin.Context, v verdict) {
	seconds := retrySeconds(v.retryAfter)

	instance := c.FullPath()
	if instance == "" {
		instance = c.Request.URL.Path
	}

	c.AbortWithStatusJSON(http.StatusTooManyRequests, ProblemDetails{
		Type:       throttleProblemType,
		Title:      throttleProblemTitle,
		Status:     http.StatusTooManyRequests,
		Detail:     fmt.Sprintf("Too many requests. Try again in %d seconds.", seconds),
		Instance:   instance,
		RetryAfter: seconds,
		TraceID:    GetTraceID(c),
	})
}

func retrySeconds(d time.Duration) int {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 0 {
		return 0
	}
	return seconds
}

package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/WhiteMageDev/registration-login-demo/internal/core/domain"
	"github.com/WhiteMageDev/registration-login-demo/internal/core/port"
	"github.com/WhiteMageDev/registration-login-demo/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, accountID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("account_id", accountID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishAccountRegistered logs account.registered events.
func (p *StubPublisher) PublishAccountRegistered(_ context.Context, event domain.AccountRegisteredEvent) error {
	payload := map[string]any{
		"account_id":    event.AccountID,
		"username":      event.Username,
		"email":         logger.MaskEmail(event.Email),
		"role":          event.Role,
		"registered_at": event.RegisteredAt,
		"token_expires": event.TokenExpires,
		"metadata":      event.Metadata,
	}
	p.logEvent("account.registered", event.AccountID, event.RegisteredAt, payload)
	return nil
}

// PublishAccountConfirmed logs account.confirmed events.
func (p *StubPublisher) PublishAccountConfirmed(_ context.Context, event domain.AccountConfirmedEvent) error {
	payload := map[string]any{
		"account_id":   event.AccountID,
		"username":     event.Username,
		"confirmed_at": event.ConfirmedAt,
		"metadata":     event.Metadata,
	}
	p.logEvent("account.confirmed", event.AccountID, event.ConfirmedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)

// LogNotifier implements port.Notifier by logging the outbound message. Used
// when no Kafka brokers are configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier constructs a logging notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs the message instead of delivering it.
func (n *LogNotifier) Send(_ context.Context, to string, body string) error {
	n.logger.Info("Stub mail sent",
		zap.String("to", logger.MaskEmail(to)),
		zap.Int("body_bytes", len(body)),
	)
	return nil
}

var _ port.Notifier = (*LogNotifier)(nil)

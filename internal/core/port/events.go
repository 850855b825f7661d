package port

import (
	"context"

	"github.com/WhiteMageDev/registration-login-demo/internal/core/domain"
)

// EventPublisher publishes domain events to the message bus.
type EventPublisher interface {
	PublishAccountRegistered(ctx context.Context, event domain.AccountRegisteredEvent) error
	PublishAccountConfirmed(ctx context.Context, event domain.AccountConfirmedEvent) error
}

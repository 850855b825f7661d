package port

import "context"

// Notifier delivers a message body to a destination address.
//
// Implementations are expected to hand the message off asynchronously:
// Send returns once the message is accepted for delivery, and delivery
// failures are reported on the implementation's own error channel rather
// than propagated to the caller.
type Notifier interface {
	Send(ctx context.Context, to string, body string) error
}

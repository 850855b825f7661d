package port

import (
	"context"
	"time"
)

// AttemptStore journals request attempts for sliding-window throttling of the
// unauthenticated endpoints. Buckets group attempts per rule and caller.
type AttemptStore interface {
	Record(ctx context.Context, bucket string, at time.Time) error
	Prune(ctx context.Context, bucket string, cutoff time.Time) error
	Count(ctx context.Context, bucket string, since time.Time) (int, error)
	Oldest(ctx context.Context, bucket string, since time.Time) (time.Time, bool, error)
}

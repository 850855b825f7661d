package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/WhiteMageDev/registration-login-demo/internal/core/port"
)

// AttemptLog journals request attempts in Redis sorted sets, one set per
// bucket, scored by the attempt timestamp in nanoseconds.
type AttemptLog struct {
	client    *redis.Client
	keyPrefix string
	retention time.Duration
}

// NewAttemptLog constructs an attempt journal. Keys expire after retention so
// idle buckets do not accumulate.
func NewAttemptLog(client *redis.Client, keyPrefix string, retention time.Duration) *AttemptLog {
	return &AttemptLog{client: client, keyPrefix: keyPrefix, retention: retention}
}

// Record appends an attempt to the bucket and refreshes its expiry.
func (l *AttemptLog) Record(ctx context.Context, bucket string, at time.Time) error {
	key := l.key(bucket)
	nanos := at.UnixNano()

	if err := l.client.ZAdd(ctx, key, redis.Z{Score: float64(nanos), Member: nanos}).Err(); err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}

	if l.retention > 0 {
		if err := l.client.Expire(ctx, key, l.retention).Err(); err != nil {
			return fmt.Errorf("refresh attempt expiry: %w", err)
		}
	}

	return nil
}

// Prune drops attempts at or before the cutoff.
func (l *AttemptLog) Prune(ctx context.Context, bucket string, cutoff time.Time) error {
	if err := l.client.ZRemRangeByScore(ctx, l.key(bucket), "-inf", score(cutoff)).Err(); err != nil {
		return fmt.Errorf("prune attempts: %w", err)
	}
	return nil
}

// Count returns how many attempts remain in the bucket since the given time.
func (l *AttemptLog) Count(ctx context.Context, bucket string, since time.Time) (int, error) {
	n, err := l.client.ZCount(ctx, l.key(bucket), score(since), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return int(n), nil
}

// Oldest returns the earliest attempt since the given time, if any remain.
func (l *AttemptLog) Oldest(ctx context.Context, bucket string, since time.Time) (time.Time, bool, error) {
	members, err := l.client.ZRangeByScore(ctx, l.key(bucket), &redis.ZRangeBy{
		Min:   score(since),
		Max:   "+inf",
		Count: 1,
	}).Result()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read oldest attempt: %w", err)
	}

	if len(members) == 0 {
		return time.Time{}, false, nil
	}

	nanos, err := strconv.ParseInt(members[0], 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse attempt timestamp: %w", err)
	}

	return time.Unix(0, nanos), true, nil
}

func (l *AttemptLog) key(bucket string) string {
	if l.keyPrefix == "" {
		return bucket
	}
	return l.keyPrefix + ":" + bucket
}

func score(t time.Time) string {
	return strconv.FormatInt(t.UnixNano(), 10)
}

var _ port.AttemptStore = (*AttemptLog)(nil)

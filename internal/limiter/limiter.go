package limiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/contractchecker-server/internal/model"
)

const keyPrefix = "otp:att:"

// ErrLimiterUnavailable wraps Redis failures.
var ErrLimiterUnavailable = errors.New("attempt limiter unavailable")

var (
	_ model.AttemptLimiter = (*Redis)(nil)
	_ model.AttemptLimiter = Noop{}
)

// Redis is a fixed-window failure counter. The window opens on the first
// failure and the counter disappears when it closes.
type Redis struct {
	redis       redis.Cmdable
	maxAttempts int64
	window      time.Duration
}

// NewRedis creates a limiter that trips after maxAttempts failures within window.
func NewRedis(client redis.Cmdable, maxAttempts int, window time.Duration) *Redis {
	return &Redis{redis: client, maxAttempts: int64(maxAttempts), window: window}
}

func (l *Redis) key(id string) string {
	return keyPrefix + id
}

// Fail records one failure for id and reports whether the cap is reached.
func (l *Redis) Fail(ctx context.Context, id string) (bool, error) {
	count, err := l.redis.Incr(ctx, l.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, l.key(id), l.window).Err(); err != nil {
			return false, fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
		}
	}
	return count >= l.maxAttempts, nil
}

// Reset forgets all failures recorded for id.
func (l *Redis) Reset(ctx context.Context, id string) error {
	if err := l.redis.Del(ctx, l.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrLimiterUnavailable, err)
	}
	return nil
}

// Noop never trips. Used when no attempt cap is configured.
type Noop struct{}

func (Noop) Fail(context.Context, string) (bool, error) { return false, nil }
func (Noop) Reset(context.Context, string) error        { return nil }

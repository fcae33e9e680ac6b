package internal

import (
	"context"
	"time"
)

const defaultOpTimeout = 5 * time.Second

// WithTimeout bounds a blocking operation, falling back to a default when
// the caller passes a zero or negative duration.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = defaultOpTimeout
	}
	return context.WithTimeout(ctx, duration)
}

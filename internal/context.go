package internal

import (
	"context"
	"time"
)

const defaultTimeout = 5 * time.Second

// WithTimeout bounds ctx by duration, falling back to five seconds when
// duration is not positive.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = defaultTimeout
	}
	return context.WithTimeout(ctx, duration)
}

package infra

import (
	"context"
	"time"
)

// WithCallTimeout bounds one remote call. A non-positive d leaves ctx as is.
func WithCallTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

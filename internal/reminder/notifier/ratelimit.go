package notifier

import (
	"context"
	"fmt"

	"github.com/Jomes01/Kioku/internal/reminder"
	"golang.org/x/time/rate"
)

// RateLimited bounds the call rate into a wrapped reminder.Notifier. A full
// reconcile touches every event, and real push backends throttle bursts.
type RateLimited struct {
	next    reminder.Notifier
	limiter *rate.Limiter
}

// NewRateLimited allows perSecond calls with the given burst. A non-positive
// rate disables limiting.
func NewRateLimited(next reminder.Notifier, perSecond float64, burst int) *RateLimited {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (r *RateLimited) wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("notifier rate limit: %w", err)
	}
	return nil
}

func (r *RateLimited) Schedule(ctx context.Context, n reminder.Notification) (string, error) {
	if err := r.wait(ctx); err != nil {
		return "", err
	}
	return r.next.Schedule(ctx, n)
}

func (r *RateLimited) Cancel(ctx context.Context, id string) error {
	if err := r.wait(ctx); err != nil {
		return err
	}
	return r.next.Cancel(ctx, id)
}

func (r *RateLimited) ListScheduled(ctx context.Context) ([]string, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.next.ListScheduled(ctx)
}

package limitio

import (
	"context"

	"golang.org/x/time/rate"
)

// wait blocks until n bytes are allowed through, by chunks no bigger than the burst.
func wait(ctx context.Context, limiter *rate.Limiter, n int) error {
	for n > 0 {
		chunk := n
		if chunk > limiter.Burst() {
			chunk = limiter.Burst()
		}
		if err := limiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

func newLimiter(bytesPerSec float64, burst int) *rate.Limiter {
	if burst <= 0 {
		burst = DefaultBurst
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

package generator

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimited spaces calls to g at least interval apart, letting burst calls
// through at once. Callers wait for their turn; a context deadline that
// cannot be met fails fast. A non-positive interval returns g unchanged.
func RateLimited(g Generator, interval time.Duration, burst int) Generator {
	if interval <= 0 {
		return g
	}
	limiter := rate.NewLimiter(rate.Every(interval), max(burst, 1))
	return Func(func(ctx context.Context, req Request) (*Image, error) {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("generation rate limit: %w", err)
		}
		return g.Generate(ctx, req)
	})
}

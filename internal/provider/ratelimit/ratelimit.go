package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"tradefeed/internal/provider"
	"tradefeed/internal/trade"
)

// Limited wraps a provider and gates each Fetch on a token from L.
// Callers wait for a token or return early if the context is canceled.
type Limited struct {
	P provider.Provider
	L *rate.Limiter
}

// PerMinute allows requestsPerMinute fetches on average with the given burst.
func PerMinute(p provider.Provider, requestsPerMinute, burst int) *Limited {
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Limit(float64(requestsPerMinute) / 60.0)
	if requestsPerMinute <= 0 {
		limit = rate.Inf
	}
	return &Limited{P: p, L: rate.NewLimiter(limit, burst)}
}

// MinInterval enforces at least interval between fetches.
func MinInterval(p provider.Provider, interval time.Duration) *Limited {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Limited{P: p, L: rate.NewLimiter(limit, 1)}
}

// Wrap prefers a per-minute budget and falls back to a minimum interval.
// With neither configured p is returned unchanged.
func Wrap(p provider.Provider, requestsPerMinute, burst int, minInterval time.Duration) provider.Provider {
	switch {
	case requestsPerMinute > 0:
		return PerMinute(p, requestsPerMinute, burst)
	case minInterval > 0:
		return MinInterval(p, minInterval)
	default:
		return p
	}
}

func (l *Limited) Name() string { return l.P.Name() }

func (l *Limited) Fetch(ctx context.Context, base, quote string) ([]*trade.Trade, error) {
	if l.L != nil {
		if err := l.L.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			// The limiter refuses to wait past the deadline.
			return nil, fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		}
	}
	return l.P.Fetch(ctx, base, quote)
}

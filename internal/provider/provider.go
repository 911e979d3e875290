package provider

import (
	"context"

	"tradefeed/internal/trade"
)

// Provider returns the latest trades of a pair, normalized to the pair's
// base/quote order. Implementations perform at most one backend request per call.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, base, quote string) ([]*trade.Trade, error)
}

// PairSymbol joins two asset symbols as "BASE/QUOTE".
func PairSymbol(base, quote string) string { return base + "/" + quote }

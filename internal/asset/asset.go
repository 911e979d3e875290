package asset

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Asset describes a token known to the backend.
// Decimals is the precision used to scale raw integer amounts.
type Asset struct {
	AssetID  string `json:"asset_id" mapstructure:"asset_id"`
	Symbol   string `json:"symbol" mapstructure:"symbol"`
	Decimals int32  `json:"decimals" mapstructure:"decimals"`
}

// Registry is a read-only index of assets by id and by symbol.
// It is never mutated after NewRegistry returns.
type Registry struct {
	byID     map[string]Asset
	bySymbol map[string]Asset
}

var ErrInvalidAsset = errors.New("asset: invalid registry entry")

// NewRegistry validates assets and builds both lookup maps.
func NewRegistry(assets []Asset) (*Registry, error) {
	r := &Registry{
		byID:     make(map[string]Asset, len(assets)),
		bySymbol: make(map[string]Asset, len(assets)),
	}
	for i, a := range assets {
		a.AssetID = strings.TrimSpace(a.AssetID)
		a.Symbol = strings.TrimSpace(a.Symbol)
		switch {
		case a.AssetID == "":
			return nil, fmt.Errorf("%w: entry %d has no asset id", ErrInvalidAsset, i)
		case a.Symbol == "":
			return nil, fmt.Errorf("%w: asset %s has no symbol", ErrInvalidAsset, a.AssetID)
		case a.Decimals < 0:
			return nil, fmt.Errorf("%w: asset %s has negative decimals %d", ErrInvalidAsset, a.Symbol, a.Decimals)
		}
		if _, dup := r.byID[a.AssetID]; dup {
			return nil, fmt.Errorf("%w: duplicate asset id %s", ErrInvalidAsset, a.AssetID)
		}
		if _, dup := r.bySymbol[a.Symbol]; dup {
			return nil, fmt.Errorf("%w: duplicate symbol %s", ErrInvalidAsset, a.Symbol)
		}
		r.byID[a.AssetID] = a
		r.bySymbol[a.Symbol] = a
	}
	return r, nil
}

func (r *Registry) ByID(assetID string) (Asset, bool) {
	a, ok := r.byID[assetID]
	return a, ok
}

func (r *Registry) BySymbol(symbol string) (Asset, bool) {
	a, ok := r.bySymbol[symbol]
	return a, ok
}

// Assets returns a copy of all entries sorted by symbol.
func (r *Registry) Assets() []Asset {
	out := make([]Asset, 0, len(r.bySymbol))
	for _, a := range r.bySymbol {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// FormatUnits scales a raw integer amount down by 10^decimals. The result is exact.
func FormatUnits(raw *big.Int, decimals int32) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -decimals)
}

// ParseUnits is the inverse of FormatUnits. It refuses values that carry
// more fractional digits than decimals allows instead of truncating them.
func ParseUnits(d decimal.Decimal, decimals int32) (*big.Int, error) {
	if decimals < 0 {
		return nil, fmt.Errorf("%w: negative decimals %d", ErrInvalidAsset, decimals)
	}
	shifted := d.Shift(decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("asset: %s has more than %d fractional digits", d.String(), decimals)
	}
	return shifted.BigInt(), nil
}

// Package trade normalizes raw two-leg trade records into base/quote order
// and derives display values from them.
package trade

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"tradefeed/internal/asset"
)

// Registry resolves assets by id and by short symbol. It must not change
// while trades built from it are in use.
type Registry interface {
	ByID(assetID string) (asset.Asset, bool)
	BySymbol(symbol string) (asset.Asset, bool)
}

// Trade is a record restored to canonical (base, quote) order.
// It is immutable; all derived values are computed on demand.
type Trade struct {
	id           int64
	owner        string
	baseAssetID  string
	baseAmount   *big.Int
	quoteAssetID string
	quoteAmount  *big.Int
	timestamp    int64

	registry Registry
}

// New normalizes rec for pairSymbol ("BASE/QUOTE"). Only the BASE component
// is used: whichever leg carries the base asset id becomes the base leg,
// regardless of the order the backend sent them in.
func New(rec Record, pairSymbol string, reg Registry) (*Trade, error) {
	if reg == nil {
		return nil, fmt.Errorf("%w: nil registry", ErrConfiguration)
	}
	baseSymbol, _, _ := strings.Cut(pairSymbol, "/")
	baseSymbol = strings.TrimSpace(baseSymbol)
	base, ok := reg.BySymbol(baseSymbol)
	if !ok {
		return nil, fmt.Errorf("%w: base symbol %q of pair %q is not in the registry", ErrConfiguration, baseSymbol, pairSymbol)
	}

	amount0, err := parseAmount(rec.Amount0.String())
	if err != nil {
		return nil, fmt.Errorf("amount0 of trade %d: %w", rec.ID, err)
	}
	amount1, err := parseAmount(rec.Amount1.String())
	if err != nil {
		return nil, fmt.Errorf("amount1 of trade %d: %w", rec.ID, err)
	}

	t := &Trade{
		id:        rec.ID,
		owner:     rec.Owner,
		timestamp: rec.Timestamp,
		registry:  reg,
	}
	switch base.AssetID {
	case rec.Asset0:
		t.baseAssetID, t.baseAmount = rec.Asset0, amount0
		t.quoteAssetID, t.quoteAmount = rec.Asset1, amount1
	case rec.Asset1:
		t.baseAssetID, t.baseAmount = rec.Asset1, amount1
		t.quoteAssetID, t.quoteAmount = rec.Asset0, amount0
	default:
		return nil, fmt.Errorf("%w: trade %d legs (%s, %s) do not include base %s (%s)",
			ErrConfiguration, rec.ID, rec.Asset0, rec.Asset1, base.Symbol, base.AssetID)
	}
	return t, nil
}

func parseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a decimal integer", ErrMalformedRecord, s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative amount %s", ErrMalformedRecord, s)
	}
	return v, nil
}

func (t *Trade) ID() int64            { return t.id }
func (t *Trade) Owner() string        { return t.owner }
func (t *Trade) BaseAssetID() string  { return t.baseAssetID }
func (t *Trade) QuoteAssetID() string { return t.quoteAssetID }
func (t *Trade) Timestamp() int64     { return t.timestamp }

// BaseAmount returns a copy of the raw base amount.
func (t *Trade) BaseAmount() *big.Int { return new(big.Int).Set(t.baseAmount) }

// QuoteAmount returns a copy of the raw quote amount.
func (t *Trade) QuoteAmount() *big.Int { return new(big.Int).Set(t.quoteAmount) }

func (t *Trade) BaseAsset() (asset.Asset, error)  { return t.lookup(t.baseAssetID) }
func (t *Trade) QuoteAsset() (asset.Asset, error) { return t.lookup(t.quoteAssetID) }

func (t *Trade) lookup(assetID string) (asset.Asset, error) {
	a, ok := t.registry.ByID(assetID)
	if !ok {
		return asset.Asset{}, fmt.Errorf("%w: asset id %s", ErrLookup, assetID)
	}
	return a, nil
}

// ScaledBase is the base amount divided by 10^decimals of the base asset.
func (t *Trade) ScaledBase() (decimal.Decimal, error) {
	a, err := t.BaseAsset()
	if err != nil {
		return decimal.Zero, err
	}
	return asset.FormatUnits(t.baseAmount, a.Decimals), nil
}

// ScaledQuote is the quote amount divided by 10^decimals of the quote asset.
func (t *Trade) ScaledQuote() (decimal.Decimal, error) {
	a, err := t.QuoteAsset()
	if err != nil {
		return decimal.Zero, err
	}
	return asset.FormatUnits(t.quoteAmount, a.Decimals), nil
}

func (t *Trade) scaled() (base, quote decimal.Decimal, err error) {
	if base, err = t.ScaledBase(); err != nil {
		return
	}
	quote, err = t.ScaledQuote()
	return
}

// Price is quote per base.
func (t *Trade) Price() (decimal.Decimal, error) {
	base, quote, err := t.scaled()
	if err != nil {
		return decimal.Zero, err
	}
	if base.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: trade %d has a zero base amount", ErrDivisionByZero, t.id)
	}
	return quote.DivRound(base, divisionPlaces), nil
}

// ReversePrice is base per quote.
func (t *Trade) ReversePrice() (decimal.Decimal, error) {
	base, quote, err := t.scaled()
	if err != nil {
		return decimal.Zero, err
	}
	if quote.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: trade %d has a zero quote amount", ErrDivisionByZero, t.id)
	}
	return base.DivRound(quote, divisionPlaces), nil
}

// FormattedPrice renders Price with 4 places below 0.01 and 2 otherwise.
func (t *Trade) FormattedPrice() (string, error) {
	p, err := t.Price()
	if err != nil {
		return "", err
	}
	return formatFixed(p, placesFor(p, 4, 2)), nil
}

// FormattedAmount renders ScaledBase with 9 places below 0.01 and 2 otherwise.
func (t *Trade) FormattedAmount() (string, error) {
	v, err := t.ScaledBase()
	if err != nil {
		return "", err
	}
	return formatFixed(v, placesFor(v, 9, 2)), nil
}

// FormattedTotal renders ScaledQuote with 6 places below 0.01 and 2 otherwise.
func (t *Trade) FormattedTotal() (string, error) {
	v, err := t.ScaledQuote()
	if err != nil {
		return "", err
	}
	return formatFixed(v, placesFor(v, 6, 2)), nil
}

// Time is the trade timestamp in UTC.
func (t *Trade) Time() time.Time { return time.UnixMilli(t.timestamp * 1000).UTC() }

// FormattedTime renders the timestamp as DD-MMM HH:mm:ss in UTC.
func (t *Trade) FormattedTime() string { return t.Time().Format(timeLayout) }

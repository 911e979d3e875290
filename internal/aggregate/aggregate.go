package aggregate

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"tradefeed/internal/trade"
)

// Row is one display line of the latest-trades table.
type Row struct {
	ID        int64  `json:"id"`
	Owner     string `json:"owner"`
	Price     string `json:"price"`
	Amount    string `json:"amount"`
	Total     string `json:"total"`
	Time      string `json:"time"`
	Timestamp int64  `json:"timestamp"`
}

// Summary describes every trade of a pair in one fetch.
type Summary struct {
	Pair           string `json:"pair"`
	Count          int    `json:"count"`
	BaseVolume     string `json:"base_volume"`
	QuoteVolume    string `json:"quote_volume"`
	VWAP           string `json:"vwap"`
	LastPrice      string `json:"last_price"`
	HighPrice      string `json:"high_price"`
	LowPrice       string `json:"low_price"`
	FirstTimestamp int64  `json:"first_timestamp"`
	LastTimestamp  int64  `json:"last_timestamp"`
}

// latestFirst drops repeated ids (first seen wins) and orders the rest
// newest first. Equal timestamps put the higher id first.
func latestFirst(trades []*trade.Trade) []*trade.Trade {
	seen := make(map[int64]struct{}, len(trades))
	out := make([]*trade.Trade, 0, len(trades))
	for _, t := range trades {
		if t == nil {
			continue
		}
		if _, ok := seen[t.ID()]; ok {
			continue
		}
		seen[t.ID()] = struct{}{}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp() != out[j].Timestamp() {
			return out[i].Timestamp() > out[j].Timestamp()
		}
		return out[i].ID() > out[j].ID()
	})
	return out
}

// Rows renders trades for display. The first trade whose derived fields
// cannot be computed aborts the whole table.
func Rows(trades []*trade.Trade) ([]Row, error) {
	ordered := latestFirst(trades)
	rows := make([]Row, 0, len(ordered))
	for _, t := range ordered {
		price, err := t.FormattedPrice()
		if err != nil {
			return nil, fmt.Errorf("trade %d price: %w", t.ID(), err)
		}
		amount, err := t.FormattedAmount()
		if err != nil {
			return nil, fmt.Errorf("trade %d amount: %w", t.ID(), err)
		}
		total, err := t.FormattedTotal()
		if err != nil {
			return nil, fmt.Errorf("trade %d total: %w", t.ID(), err)
		}
		rows = append(rows, Row{
			ID:        t.ID(),
			Owner:     t.Owner(),
			Price:     price,
			Amount:    amount,
			Total:     total,
			Time:      t.FormattedTime(),
			Timestamp: t.Timestamp(),
		})
	}
	return rows, nil
}

// Summarize computes volumes, VWAP and price range for pair.
// An empty input yields a summary with zero values.
func Summarize(pair string, trades []*trade.Trade) (Summary, error) {
	ordered := latestFirst(trades)
	s := Summary{
		Pair:        pair,
		Count:       len(ordered),
		BaseVolume:  "0",
		QuoteVolume: "0",
		VWAP:        "0",
		LastPrice:   "0",
		HighPrice:   "0",
		LowPrice:    "0",
	}
	if len(ordered) == 0 {
		return s, nil
	}

	baseVol, quoteVol := decimal.Zero, decimal.Zero
	var high, low, last decimal.Decimal
	for i, t := range ordered {
		base, err := t.ScaledBase()
		if err != nil {
			return Summary{}, fmt.Errorf("trade %d: %w", t.ID(), err)
		}
		quote, err := t.ScaledQuote()
		if err != nil {
			return Summary{}, fmt.Errorf("trade %d: %w", t.ID(), err)
		}
		price, err := t.Price()
		if err != nil {
			return Summary{}, fmt.Errorf("trade %d: %w", t.ID(), err)
		}
		baseVol = baseVol.Add(base)
		quoteVol = quoteVol.Add(quote)
		if i == 0 {
			last, high, low = price, price, price
			continue
		}
		if price.GreaterThan(high) {
			high = price
		}
		if price.LessThan(low) {
			low = price
		}
	}
	if baseVol.IsZero() {
		return Summary{}, fmt.Errorf("%w: %s has no base volume", trade.ErrDivisionByZero, pair)
	}

	s.BaseVolume = baseVol.String()
	s.QuoteVolume = quoteVol.String()
	s.VWAP = quoteVol.DivRound(baseVol, 20).String()
	s.LastPrice = last.String()
	s.HighPrice = high.String()
	s.LowPrice = low.String()
	s.LastTimestamp = ordered[0].Timestamp()
	s.FirstTimestamp = ordered[len(ordered)-1].Timestamp()
	return s, nil
}

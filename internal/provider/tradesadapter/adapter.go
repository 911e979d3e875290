package tradesadapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"tradefeed/internal/metrics"
	"tradefeed/internal/provider"
	"tradefeed/internal/trade"
	"tradefeed/internal/tradesapi"
)

type Config struct {
	Name string // display name, default: Backend
}

// Adapter fetches raw trades from the backend and runs each record
// through the normalizer.
type Adapter struct {
	cfg      Config
	client   *tradesapi.TradesAPIClient
	registry trade.Registry
	log      *zap.Logger
}

func New(cfg Config, client *tradesapi.TradesAPIClient, registry trade.Registry, log *zap.Logger) *Adapter {
	if cfg.Name == "" {
		cfg.Name = "Backend"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{cfg: cfg, client: client, registry: registry, log: log.Named("tradesadapter")}
}

func (a *Adapter) Name() string { return a.cfg.Name }

// Fetch performs one GET for the pair and normalizes every record using
// "base/quote" as the pair symbol. Transport errors are returned unchanged;
// the first record that cannot be normalized fails the whole fetch.
func (a *Adapter) Fetch(ctx context.Context, base, quote string) (trades []*trade.Trade, err error) {
	started := time.Now()
	pair := provider.PairSymbol(strings.TrimSpace(base), strings.TrimSpace(quote))
	defer func() { metrics.ObserveFetch(a.cfg.Name, started, err) }()

	records, err := a.client.GetTradesInPair(ctx, base, quote)
	if err != nil {
		a.log.Warn("fetching trades failed", zap.String("pair", pair), zap.Error(err))
		return nil, err
	}

	out := make([]*trade.Trade, 0, len(records))
	for _, rec := range records {
		t, err := trade.New(rec, pair, a.registry)
		if err != nil {
			metrics.NormalizeErrors.WithLabelValues(errorKind(err)).Inc()
			a.log.Warn("normalizing trade failed",
				zap.String("pair", pair), zap.Int64("id", rec.ID), zap.Error(err))
			return nil, fmt.Errorf("normalizing trade %d of %s: %w", rec.ID, pair, err)
		}
		out = append(out, t)
	}
	metrics.TradesNormalized.WithLabelValues(pair).Add(float64(len(out)))
	a.log.Debug("fetched trades",
		zap.String("pair", pair), zap.Int("count", len(out)), zap.Duration("took", time.Since(started)))
	return out, nil
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, trade.ErrConfiguration):
		return "configuration"
	case errors.Is(err, trade.ErrMalformedRecord):
		return "malformed"
	default:
		return "other"
	}
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"tradefeed/internal/aggregate"
	"tradefeed/internal/asset"
	"tradefeed/internal/config"
	"tradefeed/internal/httpx"
	"tradefeed/internal/logger"
	"tradefeed/internal/provider"
	"tradefeed/internal/provider/ratelimit"
	"tradefeed/internal/provider/tradesadapter"
	"tradefeed/internal/tradesapi"
)

type pair struct{ Base, Quote string }

type pairResult struct {
	Pair    string             `json:"pair"`
	Trades  []aggregate.Row    `json:"trades"`
	Summary *aggregate.Summary `json:"summary,omitempty"`
}

func main() {
	var pairsCSV string
	var configPath string
	var timeout int
	var withSummary bool

	flag.StringVar(&pairsCSV, "pairs", getenv("PAIRS", "ETH/USDC"), "comma-separated BASE/QUOTE pairs")
	flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.yaml or config.json (optional)")
	flag.IntVar(&timeout, "timeout", 0, "overall timeout seconds (defaults to server.request_timeout_sec)")
	flag.BoolVar(&withSummary, "summary", false, "include a volume/VWAP summary per pair")
	flag.Parse()

	if err := run(pairsCSV, configPath, timeout, withSummary); err != nil {
		fmt.Fprintf(os.Stderr, "fetch: %v\n", err)
		os.Exit(1)
	}
}

func run(pairsCSV, configPath string, timeout int, withSummary bool) error {
	pairs, err := parsePairs(pairsCSV)
	if err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if timeout > 0 {
		cfg.Server.RequestTimeoutSec = timeout
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	reg, err := asset.NewRegistry(cfg.Assets)
	if err != nil {
		return fmt.Errorf("assets: %w", err)
	}
	client, err := tradesapi.NewTradesAPIClient(cfg.Backend.URL, tradesapi.WithHTTPClient(httpx.New(cfg.RequestTimeout())))
	if err != nil {
		return fmt.Errorf("trades client: %w", err)
	}
	var p provider.Provider = tradesadapter.New(tradesadapter.Config{Name: cfg.Backend.Name}, client, reg, log)
	p = ratelimit.Wrap(p, cfg.Backend.MaxRequestsPerMinute, cfg.Backend.Burst,
		time.Duration(cfg.Backend.MinRequestIntervalSec)*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
	defer cancel()

	results, err := fetchAll(ctx, p, pairs, withSummary)
	if err != nil {
		return err
	}
	for _, r := range results {
		log.Info("fetched", zap.String("pair", r.Pair), zap.Int("trades", len(r.Trades)))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// fetchAll fetches every pair concurrently. Results keep the input order and
// the first failure cancels the remaining fetches.
func fetchAll(ctx context.Context, p provider.Provider, pairs []pair, withSummary bool) ([]pairResult, error) {
	results := make([]pairResult, len(pairs))
	g, ctx := errgroup.WithContext(ctx)
	for i, pr := range pairs {
		g.Go(func() error {
			symbol := provider.PairSymbol(pr.Base, pr.Quote)
			trades, err := p.Fetch(ctx, pr.Base, pr.Quote)
			if err != nil {
				return fmt.Errorf("%s: %w", symbol, err)
			}
			rows, err := aggregate.Rows(trades)
			if err != nil {
				return fmt.Errorf("%s: %w", symbol, err)
			}
			res := pairResult{Pair: symbol, Trades: rows}
			if withSummary {
				s, err := aggregate.Summarize(symbol, trades)
				if err != nil {
					return fmt.Errorf("%s: %w", symbol, err)
				}
				res.Summary = &s
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func parsePairs(s string) ([]pair, error) {
	var out []pair
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		base, quote, ok := strings.Cut(part, "/")
		base, quote = strings.TrimSpace(base), strings.TrimSpace(quote)
		if !ok || base == "" || quote == "" {
			return nil, fmt.Errorf("invalid pair %q, want BASE/QUOTE", part)
		}
		out = append(out, pair{Base: base, Quote: quote})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no pairs provided")
	}
	return out, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

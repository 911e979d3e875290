package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"tradefeed/internal/asset"
	"tradefeed/internal/config"
	"tradefeed/internal/httpx"
	"tradefeed/internal/logger"
	"tradefeed/internal/provider"
	"tradefeed/internal/provider/ratelimit"
	"tradefeed/internal/provider/tradesadapter"
	"tradefeed/internal/tradesapi"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	p, reg, err := buildProvider(cfg, log)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := newRouter(&tradeHandler{
		provider: p,
		assets:   reg.Assets(),
		timeout:  cfg.RequestTimeout(),
		log:      log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout() + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("backend", cfg.Backend.URL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildProvider(cfg config.Config, log *zap.Logger) (provider.Provider, *asset.Registry, error) {
	reg, err := asset.NewRegistry(cfg.Assets)
	if err != nil {
		return nil, nil, fmt.Errorf("assets: %w", err)
	}
	client, err := tradesapi.NewTradesAPIClient(
		cfg.Backend.URL,
		tradesapi.WithHTTPClient(httpx.New(cfg.RequestTimeout())),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("trades client: %w", err)
	}
	var p provider.Provider = tradesadapter.New(tradesadapter.Config{Name: cfg.Backend.Name}, client, reg, log)
	p = ratelimit.Wrap(p,
		cfg.Backend.MaxRequestsPerMinute,
		cfg.Backend.Burst,
		time.Duration(cfg.Backend.MinRequestIntervalSec)*time.Second,
	)
	return p, reg, nil
}

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"tradefeed/internal/aggregate"
	"tradefeed/internal/asset"
	"tradefeed/internal/provider"
	"tradefeed/internal/trade"
	"tradefeed/internal/tradesapi"
)

type tradesResponse struct {
	Pair     string          `json:"pair"`
	Provider string          `json:"provider"`
	Trades   []aggregate.Row `json:"trades"`
}

type tradeHandler struct {
	provider provider.Provider
	assets   []asset.Asset
	timeout  time.Duration
	log      *zap.Logger
}

func newRouter(h *tradeHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(h.log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.GET("/assets", h.getAssets)
	api.GET("/trades/:base/:quote", h.getTrades)
	api.GET("/trades/:base/:quote/summary", h.getSummary)
	return router
}

func (h *tradeHandler) getAssets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"assets": h.assets})
}

func (h *tradeHandler) getTrades(c *gin.Context) {
	base, quote := c.Param("base"), c.Param("quote")
	trades, ok := h.fetch(c, base, quote)
	if !ok {
		return
	}
	rows, err := aggregate.Rows(trades)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tradesResponse{
		Pair:     provider.PairSymbol(base, quote),
		Provider: h.provider.Name(),
		Trades:   rows,
	})
}

func (h *tradeHandler) getSummary(c *gin.Context) {
	base, quote := c.Param("base"), c.Param("quote")
	trades, ok := h.fetch(c, base, quote)
	if !ok {
		return
	}
	summary, err := aggregate.Summarize(provider.PairSymbol(base, quote), trades)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *tradeHandler) fetch(c *gin.Context, base, quote string) ([]*trade.Trade, bool) {
	ctx := c.Request.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	trades, err := h.provider.Fetch(ctx, base, quote)
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}
	return trades, true
}

func (h *tradeHandler) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var transportErr *tradesapi.TransportError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, trade.ErrConfiguration), errors.Is(err, trade.ErrMalformedRecord):
		return http.StatusUnprocessableEntity
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

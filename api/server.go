// Package api exposes backtest runs over HTTP for the chart frontend.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rustyeddy/backtester/backtest"
	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/sim"
	"github.com/rustyeddy/backtester/strategies"
)

// Server runs simulations on demand over a fixed bar series. Each
// request gets a fresh Portfolio and Strategy, so concurrent requests
// never share run state.
type Server struct {
	engine *gin.Engine
	server *http.Server
	log    *zap.Logger

	cfg  *config.Config
	bars []market.Bar
}

// NewServer builds the HTTP server around a loaded bar series and a
// validated configuration.
func NewServer(cfg *config.Config, bars []market.Bar, port int, log *zap.Logger) (*Server, error) {
	if err := market.ValidateBars(bars); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	s := &Server{
		engine: engine,
		log:    log,
		cfg:    cfg,
		bars:   bars,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: engine,
		},
	}
	engine.Use(s.logMiddleware())

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/backtest", s.getBacktest)
	}

	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// getBacktest runs one simulation and returns the full payload the
// chart frontend consumes: metrics, trades, per-bar chart data, the
// summary block, and any open position.
func (s *Server) getBacktest(c *gin.Context) {
	strat, err := strategies.ByName(s.cfg.Strategy.Name, s.cfg.Strategy.Fast, s.cfg.Strategy.Slow)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	runner := &backtest.Runner{
		Portfolio: sim.NewPortfolio(s.cfg.Account.Capital),
		Executor:  sim.NewExecutor(s.cfg.Trading.Slippage, s.cfg.Trading.Costs),
		Strategy:  strat,
		FeeBuffer: s.cfg.Trading.FeeBuffer,
	}

	res, err := runner.Run(s.bars)
	if err != nil {
		s.log.Error("backtest run failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.log.Info("backtest run served",
		zap.String("strategy", strat.Name()),
		zap.Int("bars", len(s.bars)),
		zap.Int("trades", len(res.Trades)))

	c.JSON(http.StatusOK, buildResponse(res))
}

// Start serves until Shutdown or a listener error.
func (s *Server) Start() error {
	s.log.Info("api listening", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests with a short grace period.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

func (s *Server) logMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

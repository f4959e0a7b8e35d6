package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/market"
)

func testBars(closes ...float64) []market.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{Date: start.AddDate(0, 0, i), Close: c}
	}
	return bars
}

func newTestServer(t *testing.T, cfg *config.Config, bars []market.Bar) *Server {
	t.Helper()
	s, err := NewServer(cfg, bars, 0, nil)
	require.NoError(t, err)
	return s
}

func TestHealth(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, config.Default(), testBars(100, 101))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestBacktestEndpoint(t *testing.T) {
	t.Parallel()

	// Fast 2 / slow 3: rising closes cross up, the late drop crosses
	// down, so the run completes at least one round trip.
	cfg := config.Default()
	cfg.Strategy.Fast = 2
	cfg.Strategy.Slow = 3

	closes := []float64{100, 101, 103, 106, 110, 112, 108, 101, 95, 90}
	s := newTestServer(t, cfg, testBars(closes...))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/backtest", nil)
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Metrics struct {
			TotalReturn     float64 `json:"total_return"`
			CompletedTrades int     `json:"completed_trades"`
		} `json:"metrics"`
		Trades []struct {
			Type    string  `json:"type"`
			Date    string  `json:"date"`
			Price   float64 `json:"price"`
			Qty     int64   `json:"qty"`
			Charges struct {
				Total float64 `json:"total"`
			} `json:"charges"`
			PnL *float64 `json:"pnl"`
		} `json:"trades"`
		ChartData []struct {
			Date   string  `json:"date"`
			Close  float64 `json:"close"`
			Equity float64 `json:"equity"`
		} `json:"chart_data"`
		Summary struct {
			InitialCapital float64 `json:"initial_capital"`
			TotalPortfolio float64 `json:"total_portfolio"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Len(t, resp.ChartData, len(closes), "one chart point per bar")
	assert.Equal(t, 1_000_000.0, resp.Summary.InitialCapital)

	require.NotEmpty(t, resp.Trades)
	assert.Equal(t, "BUY", resp.Trades[0].Type)
	assert.Nil(t, resp.Trades[0].PnL, "buys carry no realized P&L")
	assert.Positive(t, resp.Trades[0].Charges.Total)

	last := resp.Trades[len(resp.Trades)-1]
	if last.Type == "SELL" {
		require.NotNil(t, last.PnL)
	}
}

func TestBacktestEndpointNoTrades(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Strategy.Name = "noop"

	s := newTestServer(t, cfg, testBars(100, 101, 102))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/backtest", nil)
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "[]", string(resp["trades"]))
	assert.Equal(t, "null", string(resp["open_position"]))
}

func TestNewServerRejectsBadBars(t *testing.T) {
	t.Parallel()

	_, err := NewServer(config.Default(), nil, 0, nil)
	require.Error(t, err)
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, config.Default(), testBars(100, 101))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/backtest", nil)
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

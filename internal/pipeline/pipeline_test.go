package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mourafe/radarb3/internal/contracts"
	"github.com/mourafe/radarb3/internal/external/brapi"
	"github.com/mourafe/radarb3/internal/external/yahoo"
	"github.com/mourafe/radarb3/internal/s1_universe"
	"github.com/mourafe/radarb3/internal/s2_prices"
	"github.com/mourafe/radarb3/internal/selection"
	"github.com/mourafe/radarb3/pkg/cache"
	"github.com/mourafe/radarb3/pkg/config"
	"github.com/mourafe/radarb3/pkg/httputil"
	"github.com/mourafe/radarb3/pkg/logger"
)

// fixture of three listed stocks: one strong gainer, one modest, one flat
var listingPayload = `{"stocks": [
	{"stock": "GAIN3", "type": "stock"},
	{"stock": "MILD4", "type": "stock"},
	{"stock": "FLAT3", "type": "stock"},
	{"stock": "BOVA11", "type": "fund"}
]}`

// historyAPI serves deterministic 120-day histories and counts calls
type historyAPI struct {
	mu    sync.Mutex
	calls int
}

// growth per ticker over the whole window
var growth = map[string]float64{
	"GAIN3.SA": 0.80,
	"MILD4.SA": 0.10,
	"FLAT3.SA": 0.00,
}

func (h *historyAPI) FetchHistory(_ context.Context, symbols []string, rng, interval string) (*yahoo.History, error) {
	h.mu.Lock()
	h.calls++
	h.mu.Unlock()

	anchor := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	bySymbol := make(map[string]map[string]float64, len(symbols))
	for _, symbol := range symbols {
		g, ok := growth[symbol]
		if !ok {
			continue
		}
		prices := make(map[string]float64, 121)
		for daysAgo := 120; daysAgo >= 0; daysAgo-- {
			// Linear ramp from 10 to 10*(1+g) across the window
			progress := float64(120-daysAgo) / 120.0
			date := anchor.AddDate(0, 0, -daysAgo).Format("2006-01-02")
			prices[date] = 10.0 * (1.0 + g*progress)
		}
		bySymbol[symbol] = prices
	}

	data, err := json.Marshal(bySymbol)
	if err != nil {
		return nil, err
	}
	return &yahoo.History{Columns: map[string]json.RawMessage{"adjclose": data}}, nil
}

type harness struct {
	pipeline   *Pipeline
	history    *historyAPI
	brapiCalls *int
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, listingPayload)
	}))
	t.Cleanup(server.Close)

	log := logger.NewNop()
	httpClient := httputil.New(log, 5*time.Second).DisableRetry()
	brapiClient := brapi.NewClient(httpClient, log, config.BrapiConfig{BaseURL: server.URL, Limit: 100})

	c := cache.New(cache.NewMemoryStore(0), "test", log)
	resolver := s1_universe.NewResolver(brapiClient, "nonexistent.csv", c, time.Hour, log)

	history := &historyAPI{}
	fetcher := s2_prices.NewFetcher(history, 2, log)

	cfg := &config.Config{
		Scan: config.ScanConfig{Interval: "1d", Workers: 2},
		Cache: config.CacheConfig{
			PricesTTL:          30 * time.Minute,
			PrimaryUniverseTTL: time.Hour,
			UniverseTTL:        24 * time.Hour,
		},
	}

	p := New(resolver, fetcher, selection.NewScreener(log), selection.NewRanker(log), c, cfg, log)
	return &harness{pipeline: p, history: history, brapiCalls: &calls}
}

func TestRun_EndToEnd(t *testing.T) {
	h := newHarness(t)

	params := contracts.Params{Weeks: 12, MinReturnPct: 30, BatchSize: 100}
	result, err := h.pipeline.Run(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, 3, result.UniverseSize, "fund listing is excluded from the universe")
	assert.Equal(t, contracts.UniverseSourcePrimary, result.UniverseSource)
	assert.Empty(t, result.FailedTickers)
	assert.Equal(t, 0, result.InsufficientHistory)

	// Only the strong gainer clears the 30% cut over 84 of 120 ramp days
	require.Len(t, result.Rows, 1)
	assert.Equal(t, 1, result.Rows[0].Rank)
	assert.Equal(t, "GAIN3", result.Rows[0].Ticker)
	assert.Greater(t, result.Rows[0].RetPct, 30.0)
	assert.Equal(t, "2026-08-28", result.Rows[0].LastDate)
}

func TestRun_LowThresholdKeepsMore(t *testing.T) {
	h := newHarness(t)

	result, err := h.pipeline.Run(context.Background(), contracts.Params{
		Weeks: 12, MinReturnPct: 0, BatchSize: 100,
	})
	require.NoError(t, err)

	// Everything with a non-negative return passes, ranked descending
	require.Len(t, result.Rows, 3)
	assert.Equal(t, "GAIN3", result.Rows[0].Ticker)
	assert.Equal(t, "MILD4", result.Rows[1].Ticker)
	assert.Equal(t, "FLAT3", result.Rows[2].Ticker)
}

func TestRun_SecondScanServedFromCache(t *testing.T) {
	h := newHarness(t)
	params := contracts.Params{Weeks: 12, MinReturnPct: 30, BatchSize: 100}

	_, err := h.pipeline.Run(context.Background(), params)
	require.NoError(t, err)
	_, err = h.pipeline.Run(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, 1, *h.brapiCalls, "universe resolved once")
	assert.Equal(t, 1, h.history.calls, "prices fetched once")
}

func TestRun_ForceRefreshRefetches(t *testing.T) {
	h := newHarness(t)
	params := contracts.Params{Weeks: 12, MinReturnPct: 30, BatchSize: 100}
	ctx := context.Background()

	_, err := h.pipeline.Run(ctx, params)
	require.NoError(t, err)

	require.NoError(t, h.pipeline.ForceRefresh(ctx))

	_, err = h.pipeline.Run(ctx, params)
	require.NoError(t, err)

	assert.Equal(t, 2, *h.brapiCalls)
	assert.Equal(t, 2, h.history.calls)
}

func TestRun_ParamsAreClamped(t *testing.T) {
	h := newHarness(t)

	result, err := h.pipeline.Run(context.Background(), contracts.Params{
		Weeks: 1, MinReturnPct: -50, BatchSize: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, contracts.MinWeeks, result.Params.Weeks)
	assert.Equal(t, contracts.MinReturnFloor, result.Params.MinReturnPct)
	assert.Equal(t, contracts.MinBatchSize, result.Params.BatchSize)
}

func TestUniverse(t *testing.T) {
	h := newHarness(t)

	universe, err := h.pipeline.Universe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"FLAT3.SA", "GAIN3.SA", "MILD4.SA"}, universe.Tickers)
}

package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mourafe/radarb3/internal/contracts"
	"github.com/mourafe/radarb3/internal/external/brapi"
	"github.com/mourafe/radarb3/internal/external/yahoo"
	"github.com/mourafe/radarb3/internal/pipeline"
	"github.com/mourafe/radarb3/internal/s1_universe"
	"github.com/mourafe/radarb3/internal/s2_prices"
	"github.com/mourafe/radarb3/internal/selection"
	"github.com/mourafe/radarb3/pkg/cache"
	"github.com/mourafe/radarb3/pkg/config"
	"github.com/mourafe/radarb3/pkg/httputil"
	"github.com/mourafe/radarb3/pkg/logger"
)

// stubHistory serves a flat 120-day ramp doubling every listed ticker
type stubHistory struct{}

func (stubHistory) FetchHistory(_ context.Context, symbols []string, rng, interval string) (*yahoo.History, error) {
	anchor := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	bySymbol := make(map[string]map[string]float64, len(symbols))
	for _, symbol := range symbols {
		prices := make(map[string]float64, 121)
		for daysAgo := 120; daysAgo >= 0; daysAgo-- {
			progress := float64(120-daysAgo) / 120.0
			prices[anchor.AddDate(0, 0, -daysAgo).Format("2006-01-02")] = 10.0 * (1.0 + progress)
		}
		bySymbol[symbol] = prices
	}
	data, err := json.Marshal(bySymbol)
	if err != nil {
		return nil, err
	}
	return &yahoo.History{Columns: map[string]json.RawMessage{"adjclose": data}}, nil
}

func newTestHandler(t *testing.T, listingStatus int) *ScanHandler {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if listingStatus != http.StatusOK {
			http.Error(w, "down", listingStatus)
			return
		}
		fmt.Fprint(w, `{"stocks": [{"stock": "PETR4", "type": "stock"}, {"stock": "VALE3", "type": "stock"}]}`)
	}))
	t.Cleanup(server.Close)

	log := logger.NewNop()
	httpClient := httputil.New(log, 5*time.Second).DisableRetry()
	brapiClient := brapi.NewClient(httpClient, log, config.BrapiConfig{BaseURL: server.URL, Limit: 100})

	c := cache.New(cache.NewMemoryStore(0), "test", log)
	resolver := s1_universe.NewResolver(brapiClient, "nonexistent.csv", c, time.Hour, log)
	fetcher := s2_prices.NewFetcher(stubHistory{}, 2, log)

	cfg := &config.Config{
		Scan: config.ScanConfig{Interval: "1d", Workers: 2},
		Cache: config.CacheConfig{
			PricesTTL:          30 * time.Minute,
			PrimaryUniverseTTL: time.Hour,
			UniverseTTL:        24 * time.Hour,
		},
	}

	p := pipeline.New(resolver, fetcher, selection.NewScreener(log), selection.NewRanker(log), c, cfg, log)
	return NewScanHandler(p, contracts.DefaultParams(), log)
}

func TestGetScan(t *testing.T) {
	handler := newTestHandler(t, http.StatusOK)

	req := httptest.NewRequest(http.MethodGet, "/api/scan?weeks=12&min_return=30", nil)
	rec := httptest.NewRecorder()
	handler.GetScan(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var result contracts.ScanResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	assert.Equal(t, 2, result.UniverseSize)
	assert.Equal(t, 12, result.Params.Weeks)
	require.Len(t, result.Rows, 2, "both tickers ramp well past 30%")
	assert.Equal(t, "PETR4", result.Rows[0].Ticker)
	assert.NotNil(t, result.Rows)
}

func TestGetScan_DefaultsApplied(t *testing.T) {
	handler := newTestHandler(t, http.StatusOK)

	req := httptest.NewRequest(http.MethodGet, "/api/scan", nil)
	rec := httptest.NewRecorder()
	handler.GetScan(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result contracts.ScanResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, contracts.DefaultParams(), result.Params)
}

func TestGetScan_BadParams(t *testing.T) {
	handler := newTestHandler(t, http.StatusOK)

	tests := []string{
		"/api/scan?weeks=ten",
		"/api/scan?min_return=lots",
		"/api/scan?batch_size=big",
	}

	for _, target := range tests {
		t.Run(target, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, target, nil)
			rec := httptest.NewRecorder()
			handler.GetScan(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetScan_OutOfRangeParamsClamped(t *testing.T) {
	handler := newTestHandler(t, http.StatusOK)

	req := httptest.NewRequest(http.MethodGet, "/api/scan?weeks=999&batch_size=1", nil)
	rec := httptest.NewRecorder()
	handler.GetScan(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "out-of-range values clamp, they are not an error")

	var result contracts.ScanResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, contracts.MaxWeeks, result.Params.Weeks)
	assert.Equal(t, contracts.MinBatchSize, result.Params.BatchSize)
}

func TestGetScan_UpstreamDown(t *testing.T) {
	handler := newTestHandler(t, http.StatusInternalServerError)

	req := httptest.NewRequest(http.MethodGet, "/api/scan", nil)
	rec := httptest.NewRecorder()
	handler.GetScan(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetScanCSV(t *testing.T) {
	handler := newTestHandler(t, http.StatusOK)

	req := httptest.NewRequest(http.MethodGet, "/api/scan/csv?weeks=12", nil)
	rec := httptest.NewRecorder()
	handler.GetScanCSV(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "radar_12w_min30pct.csv")
	assert.Contains(t, rec.Body.String(), "ticker,ret_pct,last_close,ref_close,last_date,ref_date")
	assert.Contains(t, rec.Body.String(), "PETR4")
}

func TestGetUniverse(t *testing.T) {
	handler := newTestHandler(t, http.StatusOK)

	req := httptest.NewRequest(http.MethodGet, "/api/universe", nil)
	rec := httptest.NewRecorder()
	handler.GetUniverse(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var universe contracts.Universe
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &universe))
	assert.Equal(t, []string{"PETR4.SA", "VALE3.SA"}, universe.Tickers)
}

func TestRefresh(t *testing.T) {
	handler := newTestHandler(t, http.StatusOK)

	req := httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	rec := httptest.NewRecorder()
	handler.Refresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

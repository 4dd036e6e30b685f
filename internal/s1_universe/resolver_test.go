package s1_universe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mourafe/radarb3/internal/contracts"
	"github.com/mourafe/radarb3/internal/external/brapi"
	"github.com/mourafe/radarb3/pkg/cache"
	"github.com/mourafe/radarb3/pkg/config"
	"github.com/mourafe/radarb3/pkg/httputil"
	"github.com/mourafe/radarb3/pkg/logger"
)

func newBrapiClient(t *testing.T, handler http.HandlerFunc) *brapi.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	httpClient := httputil.New(logger.NewNop(), 5*time.Second).DisableRetry()
	return brapi.NewClient(httpClient, logger.NewNop(), config.BrapiConfig{
		BaseURL: server.URL,
		Limit:   100,
	})
}

func newTestCache() *cache.Cache {
	return cache.New(cache.NewMemoryStore(0), "test", logger.NewNop())
}

func TestResolve_Primary(t *testing.T) {
	client := newBrapiClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stocks": [
			{"stock": "PETR4", "type": "stock"},
			{"stock": "vale3", "type": "stock"},
			{"stock": "PETR4", "type": "stock"},
			{"stock": "BOVA11", "type": "fund"},
			{"stock": "PETR4F", "type": "stock"},
			{"stock": "SANB11", "type": "stock"},
			{"stock": "", "type": "stock"}
		]}`))
	})

	resolver := NewResolver(client, "nonexistent.csv", newTestCache(), time.Hour, logger.NewNop())
	universe, err := resolver.Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, contracts.UniverseSourcePrimary, universe.Source)
	// Deduped, upper-cased, suffixed, sorted. The fractional-lot code (F
	// suffix) and the non-stock fund are excluded.
	assert.Equal(t, []string{"PETR4.SA", "SANB11.SA", "VALE3.SA"}, universe.Tickers)
	assert.False(t, universe.ResolvedAt.IsZero())
}

func TestResolve_FallbackWhenPrimaryFails(t *testing.T) {
	client := newBrapiClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "tickers.csv")
	csv := "name,ticker\nFoo,AAA3\nBar,bbb4\nBaz,CCC11.SA\n,\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	resolver := NewResolver(client, path, newTestCache(), time.Hour, logger.NewNop())
	universe, err := resolver.Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, contracts.UniverseSourceFallback, universe.Source)
	assert.Equal(t, []string{"AAA3.SA", "BBB4.SA", "CCC11.SA"}, universe.Tickers)
}

func TestResolve_FallbackWhenPrimaryEmpty(t *testing.T) {
	client := newBrapiClient(t, func(w http.ResponseWriter, r *http.Request) {
		// Only non-stock records: zero usable tickers
		w.Write([]byte(`{"stocks": [{"stock": "BOVA11", "type": "fund"}]}`))
	})

	dir := t.TempDir()
	path := filepath.Join(dir, "tickers.csv")
	require.NoError(t, os.WriteFile(path, []byte("ticker\nAAA3\n"), 0o644))

	resolver := NewResolver(client, path, newTestCache(), time.Hour, logger.NewNop())
	universe, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, contracts.UniverseSourceFallback, universe.Source)
}

func TestResolve_BothSourcesDown(t *testing.T) {
	client := newBrapiClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	})

	resolver := NewResolver(client, "nonexistent.csv", newTestCache(), time.Hour, logger.NewNop())
	_, err := resolver.Resolve(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestResolve_PrimaryListingIsCached(t *testing.T) {
	calls := 0
	client := newBrapiClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"stocks": [{"stock": "PETR4", "type": "stock"}]}`))
	})

	resolver := NewResolver(client, "nonexistent.csv", newTestCache(), time.Hour, logger.NewNop())

	_, err := resolver.Resolve(context.Background())
	require.NoError(t, err)
	_, err = resolver.Resolve(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "second resolve must be served from the listing cache")
}

func TestHasClassSuffix(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"PETR3", true},
		{"PETR4", true},
		{"BRKM5", true},
		{"ELET6", true},
		{"USIM5", true},
		{"SANB11", true},
		{"PETR4F", false}, // fractional lot
		{"IBOV", false},
		{"AAA2", false},
		{"AAA9", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, hasClassSuffix(tt.code))
		})
	}
}

func TestNormalize(t *testing.T) {
	got := normalize([]string{"VALE3.SA", "PETR4.SA", "VALE3.SA", "ABEV3.SA"})
	assert.Equal(t, []string{"ABEV3.SA", "PETR4.SA", "VALE3.SA"}, got)

	assert.Empty(t, normalize(nil))
}

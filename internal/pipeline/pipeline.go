package pipeline

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/mourafe/radarb3/internal/contracts"
	"github.com/mourafe/radarb3/internal/s1_universe"
	"github.com/mourafe/radarb3/internal/s2_prices"
	"github.com/mourafe/radarb3/internal/s3_returns"
	"github.com/mourafe/radarb3/internal/selection"
	"github.com/mourafe/radarb3/pkg/cache"
	"github.com/mourafe/radarb3/pkg/config"
	"github.com/mourafe/radarb3/pkg/logger"
)

// Pipeline coordinates one scan invocation end to end:
// S1 universe → S2 prices → S3 returns → S4 selection
// ⭐ SSOT: 파이프라인 조율은 여기서만
//
// The cache is the only cross-invocation state. Universe resolution and
// price fetching are wrapped in time-bounded entries keyed by their full
// parameter tuple; ForceRefresh evicts them without touching in-flight work.
type Pipeline struct {
	resolver *s1_universe.Resolver
	fetcher  *s2_prices.Fetcher
	screener *selection.Screener
	ranker   *selection.Ranker

	cache    *cache.Cache
	ttl      config.CacheConfig
	interval string

	logger *logger.Logger
}

// New creates a new pipeline
func New(
	resolver *s1_universe.Resolver,
	fetcher *s2_prices.Fetcher,
	screener *selection.Screener,
	ranker *selection.Ranker,
	c *cache.Cache,
	cfg *config.Config,
	log *logger.Logger,
) *Pipeline {
	return &Pipeline{
		resolver: resolver,
		fetcher:  fetcher,
		screener: screener,
		ranker:   ranker,
		cache:    c,
		ttl:      cfg.Cache,
		interval: cfg.Scan.Interval,
		logger:   log.WithField("module", "pipeline"),
	}
}

// Run executes one scan with the given parameters (clamped to their bounds).
// Fatal conditions (both universe sources down, every batch failed) abort
// with an error; per-ticker conditions only shrink the result set and are
// reported through the ScanResult counters.
func (p *Pipeline) Run(ctx context.Context, params contracts.Params) (*contracts.ScanResult, error) {
	start := time.Now()
	params = params.Clamped()

	universe, err := p.resolveUniverse(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve universe: %w", err)
	}

	rng := s2_prices.RangeForWeeks(params.Weeks)
	outcome, err := p.fetchPrices(ctx, universe, rng, params.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}

	frame, field, ok := s2_prices.SelectFrame(outcome.Prices)
	if !ok {
		// Batches succeeded but carried no usable series; the scan result
		// is empty rather than an error.
		frame = contracts.PriceFrame{}
		p.logger.Warn("No price field available in fetched table")
	} else {
		p.logger.WithField("field", field).Debug("Price field selected")
	}

	observations, stats := s3_returns.BuildObservations(frame, params.Weeks, p.logger)
	passed := p.screener.Screen(observations, params.MinReturnPct)
	rows := p.ranker.Rank(passed)

	result := &contracts.ScanResult{
		GeneratedAt:         time.Now(),
		Params:              params,
		UniverseSize:        universe.Count(),
		UniverseSource:      universe.Source,
		Rows:                rows,
		FailedTickers:       outcome.FailedTickers,
		InsufficientHistory: stats.InsufficientHistory,
		InvalidReference:    stats.InvalidReference,
		ElapsedMS:           time.Since(start).Milliseconds(),
	}

	p.logger.WithFields(map[string]interface{}{
		"universe":   result.UniverseSize,
		"rows":       len(result.Rows),
		"failed":     len(result.FailedTickers),
		"elapsed_ms": result.ElapsedMS,
	}).Info("Scan completed")

	return result, nil
}

// ForceRefresh evicts every universe and price cache entry regardless of
// expiry. In-flight requests are not interrupted; the next Run simply
// reissues upstream calls.
func (p *Pipeline) ForceRefresh(ctx context.Context) error {
	if err := p.cache.Clear(ctx, "universe"); err != nil {
		return fmt.Errorf("clear universe cache: %w", err)
	}
	if err := p.cache.Clear(ctx, "prices"); err != nil {
		return fmt.Errorf("clear prices cache: %w", err)
	}
	p.logger.Info("Caches cleared, next scan will refetch")
	return nil
}

// Universe exposes the (cached) resolved universe, for the API surface
func (p *Pipeline) Universe(ctx context.Context) (*contracts.Universe, error) {
	return p.resolveUniverse(ctx)
}

// resolveUniverse serves the resolved universe from cache, resolving on miss
func (p *Pipeline) resolveUniverse(ctx context.Context) (*contracts.Universe, error) {
	var universe contracts.Universe
	err := p.cache.GetOrPopulate(ctx, "universe:resolved", &universe, p.ttl.UniverseTTL, func() (interface{}, error) {
		return p.resolver.Resolve(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &universe, nil
}

// fetchPrices serves the batch fetch from cache, fetching on miss.
// The key carries the full parameter tuple: ticker set, range and interval.
func (p *Pipeline) fetchPrices(ctx context.Context, universe *contracts.Universe, rng string, batchSize int) (*contracts.FetchOutcome, error) {
	key := priceCacheKey(universe.Tickers, rng, p.interval)

	var outcome contracts.FetchOutcome
	err := p.cache.GetOrPopulate(ctx, key, &outcome, p.ttl.PricesTTL, func() (interface{}, error) {
		return p.fetcher.Fetch(ctx, universe, rng, p.interval, batchSize)
	})
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

// priceCacheKey builds a bounded-length key for a (tickers, range, interval)
// tuple; the ticker set is folded into a digest since universes run to
// hundreds of symbols.
func priceCacheKey(tickers []string, rng, interval string) string {
	digest := sha256.Sum256([]byte(strings.Join(tickers, ",")))
	return fmt.Sprintf("prices:%s:%s:%x", rng, interval, digest[:8])
}

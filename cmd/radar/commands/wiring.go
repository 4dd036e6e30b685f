package commands

import (
	"fmt"

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

const cachePrefix = "radarb3"

// app bundles the wired components a command needs. Close releases the
// cache backend.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	pipeline *pipeline.Pipeline
	closeFns []func() error
}

// Close releases held resources (cache backends) in reverse order
func (a *app) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		if err := a.closeFns[i](); err != nil {
			a.log.WithError(err).Warn("Failed to close resource")
		}
	}
}

// buildApp wires config → logger → HTTP clients → cache → pipeline.
// Every command goes through here so the stack is assembled one way only.
// ⭐ SSOT: 컴포넌트 조립은 여기서만
func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	a := &app{cfg: cfg, log: log}

	// Cache backend: Redis when enabled, in-process memory otherwise
	var store cache.Store
	redisStore, err := cache.NewRedisStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if redisStore != nil {
		store = redisStore
		a.closeFns = append(a.closeFns, redisStore.Close)
		log.Info("Using Redis cache backend")
	} else {
		memStore := cache.NewMemoryStore(cfg.Cache.PricesTTL)
		store = memStore
		a.closeFns = append(a.closeFns, func() error {
			memStore.Close()
			return nil
		})
	}
	c := cache.New(store, cachePrefix, log)

	// External API clients
	brapiHTTP := httputil.New(log, cfg.Brapi.Timeout)
	brapiClient := brapi.NewClient(brapiHTTP, log, cfg.Brapi)

	yahooHTTP := httputil.New(log, cfg.Yahoo.Timeout).
		WithRateLimit(cfg.Yahoo.RateLimitRPS, 1)
	yahooClient := yahoo.NewClient(yahooHTTP, log, cfg.Yahoo)

	// Pipeline stages
	resolver := s1_universe.NewResolver(brapiClient, cfg.FallbackCSVPath, c, cfg.Cache.PrimaryUniverseTTL, log)
	fetcher := s2_prices.NewFetcher(yahooClient, cfg.Scan.Workers, log)
	screener := selection.NewScreener(log)
	ranker := selection.NewRanker(log)

	a.pipeline = pipeline.New(resolver, fetcher, screener, ranker, c, cfg, log)

	return a, nil
}

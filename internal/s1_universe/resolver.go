package s1_universe

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mourafe/radarb3/internal/contracts"
	"github.com/mourafe/radarb3/internal/external/brapi"
	"github.com/mourafe/radarb3/pkg/cache"
	"github.com/mourafe/radarb3/pkg/logger"
)

// ErrUpstreamUnavailable means both the primary listing source and the
// fallback snapshot were exhausted. Fatal for the invocation: the caller
// must halt instead of continuing on an empty universe.
var ErrUpstreamUnavailable = errors.New("universe: primary and fallback sources unavailable")

// classSuffixes are the B3 share-class digits we keep: 3 (ON), 4-8 (PN
// classes) and 11 (units). Anything else is a fractional-lot or otherwise
// non-primary code.
var classSuffixes = []string{"3", "4", "5", "6", "7", "8", "11"}

// Resolver constructs the candidate ticker universe
// ⭐ SSOT: S1 유니버스 생성은 여기서만
//
// The raw primary listing is cached on its own short TTL, one level below
// the resolved universe the pipeline caches, so a forced refresh can evict
// both independently of expiry.
type Resolver struct {
	brapi        *brapi.Client
	fallbackPath string
	cache        *cache.Cache
	primaryTTL   time.Duration
	logger       *logger.Logger
}

// NewResolver creates a new universe resolver
func NewResolver(client *brapi.Client, fallbackPath string, c *cache.Cache, primaryTTL time.Duration, log *logger.Logger) *Resolver {
	return &Resolver{
		brapi:        client,
		fallbackPath: fallbackPath,
		cache:        c,
		primaryTTL:   primaryTTL,
		logger:       log.WithField("stage", contracts.StageUniverse),
	}
}

// Resolve builds the universe from the primary source, falling back to the
// bundled snapshot. Primary errors are absorbed here; only the combined
// failure of both sources surfaces, as ErrUpstreamUnavailable.
func (r *Resolver) Resolve(ctx context.Context) (*contracts.Universe, error) {
	tickers, primaryErr := r.resolvePrimary(ctx)
	if primaryErr != nil {
		r.logger.WithError(primaryErr).Warn("Primary universe source failed, using fallback")
	} else if len(tickers) == 0 {
		r.logger.Warn("Primary universe source returned zero usable records, using fallback")
	}

	if len(tickers) > 0 {
		r.logger.WithField("count", len(tickers)).Info("Universe resolved from brapi")
		return &contracts.Universe{
			ResolvedAt: time.Now(),
			Source:     contracts.UniverseSourcePrimary,
			Tickers:    tickers,
		}, nil
	}

	tickers, fallbackErr := readSnapshot(r.fallbackPath)
	if fallbackErr != nil || len(tickers) == 0 {
		return nil, fmt.Errorf("%w: primary=%v fallback=%v",
			ErrUpstreamUnavailable, primaryErr, fallbackErr)
	}

	r.logger.WithFields(map[string]interface{}{
		"count": len(tickers),
		"path":  r.fallbackPath,
	}).Info("Universe resolved from fallback snapshot")

	return &contracts.Universe{
		ResolvedAt: time.Now(),
		Source:     contracts.UniverseSourceFallback,
		Tickers:    tickers,
	}, nil
}

// resolvePrimary queries brapi (through the listing cache) and keeps
// primary equity listings only
func (r *Resolver) resolvePrimary(ctx context.Context) ([]string, error) {
	var listed []brapi.ListedStock
	err := r.cache.GetOrPopulate(ctx, "universe:primary", &listed, r.primaryTTL, func() (interface{}, error) {
		return r.brapi.ListQuotes(ctx)
	})
	if err != nil {
		return nil, err
	}

	tickers := make([]string, 0, len(listed))
	for _, record := range listed {
		code := strings.ToUpper(strings.TrimSpace(record.Stock))
		if code == "" || record.Type != "stock" {
			continue
		}
		if !hasClassSuffix(code) {
			continue
		}
		tickers = append(tickers, code+contracts.MarketSuffix)
	}
	return normalize(tickers), nil
}

// hasClassSuffix reports whether a bare code ends in one of the ON/PN/unit
// share-class digits
func hasClassSuffix(code string) bool {
	for _, suffix := range classSuffixes {
		if strings.HasSuffix(code, suffix) {
			return true
		}
	}
	return false
}

// normalize dedupes and sorts, producing the deterministic universe order
func normalize(tickers []string) []string {
	seen := make(map[string]struct{}, len(tickers))
	out := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

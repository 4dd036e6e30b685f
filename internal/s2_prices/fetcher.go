package s2_prices

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mourafe/radarb3/internal/contracts"
	"github.com/mourafe/radarb3/internal/external/yahoo"
	"github.com/mourafe/radarb3/pkg/logger"
)

// ErrAllBatchesFailed means not a single batch produced data. Fatal for the
// invocation; partial failure is a normal outcome, reported through
// FetchOutcome.FailedTickers.
var ErrAllBatchesFailed = errors.New("prices: all batches failed")

// HistoryAPI is the transport contract of the bulk download upstream.
// Satisfied by *yahoo.Client; tests substitute fakes.
type HistoryAPI interface {
	FetchHistory(ctx context.Context, symbols []string, rng, interval string) (*yahoo.History, error)
}

// Fetcher retrieves daily history for a universe in fixed-size batches
// ⭐ SSOT: S2 가격 수집 오케스트레이션은 여기서만
//
// Batching bounds the blast radius of one upstream failure and keeps each
// request within practical payload limits: a failed batch loses only its own
// tickers, never the rest of the fetch.
type Fetcher struct {
	api     HistoryAPI
	workers int
	logger  *logger.Logger
}

// NewFetcher creates a new batch fetcher. workers caps the number of
// in-flight upstream requests.
func NewFetcher(api HistoryAPI, workers int, log *logger.Logger) *Fetcher {
	if workers < 1 {
		workers = 1
	}
	return &Fetcher{
		api:     api,
		workers: workers,
		logger:  log.WithField("stage", contracts.StagePrices),
	}
}

// batchResult holds the outcome of one batch, indexed so merging stays
// deterministic regardless of completion order
type batchResult struct {
	table *contracts.PriceTable
	err   error
}

// Fetch partitions the universe into consecutive batches of batchSize and
// issues one bulk request per batch. Per-batch failures are isolated: their
// tickers land in FailedTickers and the fetch continues. Only the failure of
// every batch aborts the call, with ErrAllBatchesFailed.
func (f *Fetcher) Fetch(ctx context.Context, universe *contracts.Universe, rng, interval string, batchSize int) (*contracts.FetchOutcome, error) {
	if batchSize < 1 {
		return nil, fmt.Errorf("prices: batch size must be >= 1, got %d", batchSize)
	}

	batches := chunk(universe.Tickers, batchSize)
	if len(batches) == 0 {
		return &contracts.FetchOutcome{Prices: contracts.NewPriceTable()}, nil
	}

	f.logger.WithFields(map[string]interface{}{
		"tickers":    universe.Count(),
		"batches":    len(batches),
		"batch_size": batchSize,
		"range":      rng,
		"interval":   interval,
		"workers":    f.workers,
	}).Info("Starting price collection")

	// Worker pool over batch indices. Each worker writes only its own index,
	// so no result is ever observed half-merged.
	results := make([]batchResult, len(batches))
	jobs := make(chan int, len(batches))

	var wg sync.WaitGroup
	for w := 0; w < f.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = f.fetchBatch(ctx, batches[idx], rng, interval)
			}
		}()
	}

	for idx := range batches {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	// Merge in batch order: the final table and the failed-ticker list are
	// deterministic for a given universe.
	table := contracts.NewPriceTable()
	failed := make([]string, 0)
	succeeded := 0
	for idx, res := range results {
		if res.err != nil {
			f.logger.WithError(res.err).WithFields(map[string]interface{}{
				"batch":   idx,
				"tickers": len(batches[idx]),
			}).Warn("Batch failed, continuing")
			failed = append(failed, batches[idx]...)
			continue
		}
		table.Merge(res.table)
		succeeded++
	}

	if succeeded == 0 {
		return nil, fmt.Errorf("%w: %d of %d", ErrAllBatchesFailed, len(batches), len(batches))
	}

	f.logger.WithFields(map[string]interface{}{
		"succeeded": succeeded,
		"failed":    len(batches) - succeeded,
		"lost":      len(failed),
	}).Info("Price collection completed")

	return &contracts.FetchOutcome{Prices: table, FailedTickers: failed}, nil
}

// fetchBatch issues one bulk request and normalizes its shape.
// A malformed payload fails the batch the same way a transport error does.
func (f *Fetcher) fetchBatch(ctx context.Context, batch []string, rng, interval string) batchResult {
	raw, err := f.api.FetchHistory(ctx, batch, rng, interval)
	if err != nil {
		return batchResult{err: err}
	}
	table, err := Normalize(raw, batch)
	if err != nil {
		return batchResult{err: err}
	}
	return batchResult{table: table}
}

// chunk splits tickers into consecutive slices of at most size members.
// A size larger than the universe collapses to a single batch.
func chunk(tickers []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(tickers); start += size {
		end := start + size
		if end > len(tickers) {
			end = len(tickers)
		}
		batches = append(batches, tickers[start:end])
	}
	return batches
}

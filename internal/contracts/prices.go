package contracts

import (
	"sort"
	"time"
)

// Field identifies a price column of the upstream history table
type Field string

const (
	FieldAdjClose Field = "adjclose"
	FieldClose    Field = "close"
)

// PricePoint is one dated closing price observation
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// PriceSeries is the daily price history of one ticker.
// Invariant: dates strictly increasing, no duplicates. Dates with no upstream
// observation are simply absent, never zero-filled.
type PriceSeries []PricePoint

// Latest returns the most recent observation
func (s PriceSeries) Latest() (PricePoint, bool) {
	if len(s) == 0 {
		return PricePoint{}, false
	}
	return s[len(s)-1], true
}

// LatestOnOrBefore returns the observation with the greatest date that is
// on or before target. The search is backward-only: dates after target are
// never considered, so a weekend/holiday target resolves to the prior
// trading day and the lookback window is never shortened.
func (s PriceSeries) LatestOnOrBefore(target time.Time) (PricePoint, bool) {
	// First index with date strictly after target.
	idx := sort.Search(len(s), func(i int) bool {
		return s[i].Date.After(target)
	})
	if idx == 0 {
		return PricePoint{}, false
	}
	return s[idx-1], true
}

// PriceFrame maps ticker → series for a single already-selected price field
type PriceFrame map[string]PriceSeries

// Tickers returns the frame's tickers in lexicographic order
func (f PriceFrame) Tickers() []string {
	tickers := make([]string, 0, len(f))
	for t := range f {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// PriceTable aggregates the fetched history across all batches,
// keyed by (field, ticker).
type PriceTable struct {
	Fields map[Field]PriceFrame `json:"fields"`
}

// NewPriceTable creates an empty price table
func NewPriceTable() *PriceTable {
	return &PriceTable{Fields: make(map[Field]PriceFrame)}
}

// Put stores a series under (field, ticker)
func (t *PriceTable) Put(field Field, ticker string, series PriceSeries) {
	frame, ok := t.Fields[field]
	if !ok {
		frame = make(PriceFrame)
		t.Fields[field] = frame
	}
	frame[ticker] = series
}

// Frame returns the frame for a field, if present and non-empty
func (t *PriceTable) Frame(field Field) (PriceFrame, bool) {
	frame, ok := t.Fields[field]
	if !ok || len(frame) == 0 {
		return nil, false
	}
	return frame, true
}

// Merge copies every (field, ticker) series of other into t.
// Batches never overlap in tickers, so collisions simply overwrite.
func (t *PriceTable) Merge(other *PriceTable) {
	if other == nil {
		return
	}
	for field, frame := range other.Fields {
		for ticker, series := range frame {
			t.Put(field, ticker, series)
		}
	}
}

// Empty reports whether the table holds no series at all
func (t *PriceTable) Empty() bool {
	for _, frame := range t.Fields {
		if len(frame) > 0 {
			return false
		}
	}
	return true
}

// FetchOutcome is the result of a batched history fetch.
// Partial failure is a normal outcome: FailedTickers lists every member of
// the batches that errored, and Prices holds everything that succeeded.
type FetchOutcome struct {
	Prices        *PriceTable `json:"prices"`
	FailedTickers []string    `json:"failed_tickers"`
}

package contracts

import "time"

// ReturnObservation is the computed lookback return of one ticker.
// Invariants: LastDate > RefDate, RefPrice > 0,
// PctReturn = LastPrice/RefPrice − 1. Created fresh per scan, immutable.
type ReturnObservation struct {
	Ticker    string    `json:"ticker"`
	LastDate  time.Time `json:"last_date"`
	LastPrice float64   `json:"last_price"`
	RefDate   time.Time `json:"ref_date"`
	RefPrice  float64   `json:"ref_price"`
	PctReturn float64   `json:"pct_return"`
}

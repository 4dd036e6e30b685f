package s3_returns

import (
	"github.com/mourafe/radarb3/internal/contracts"
)

// Outcome classifies why a series did or did not yield an observation.
// Neither skip case is an error: the ticker is just excluded, and the two
// reasons are counted separately so the operator can tell them apart.
type Outcome int

const (
	// OK: a valid observation was produced
	OK Outcome = iota
	// InsufficientHistory: empty series, or no observation on/before the
	// reference target (series does not span the lookback window)
	InsufficientHistory
	// InvalidReference: the matched reference price was not positive
	InvalidReference
)

// Compute derives the lookback return of one price series.
//
// The reference target is latest date minus weeks*7 calendar days: calendar
// subtraction, not trading-day counting. The reference observation is the
// nearest one at or before that target: the search walks backward over
// weekends and holidays, never forward, so the effective window is never
// shorter than requested.
func Compute(series contracts.PriceSeries, weeks int) (contracts.ReturnObservation, Outcome) {
	last, ok := series.Latest()
	if !ok {
		return contracts.ReturnObservation{}, InsufficientHistory
	}

	target := last.Date.AddDate(0, 0, -7*weeks)
	ref, ok := series.LatestOnOrBefore(target)
	if !ok {
		return contracts.ReturnObservation{}, InsufficientHistory
	}
	if ref.Price <= 0 {
		return contracts.ReturnObservation{}, InvalidReference
	}

	return contracts.ReturnObservation{
		LastDate:  last.Date,
		LastPrice: last.Price,
		RefDate:   ref.Date,
		RefPrice:  ref.Price,
		PctReturn: last.Price/ref.Price - 1.0,
	}, OK
}

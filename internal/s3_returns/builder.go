package s3_returns

import (
	"github.com/mourafe/radarb3/internal/contracts"
	"github.com/mourafe/radarb3/pkg/logger"
)

// Stats summarizes one observation-building pass
type Stats struct {
	Computed            int `json:"computed"`
	InsufficientHistory int `json:"insufficient_history"`
	InvalidReference    int `json:"invalid_reference"`
}

// BuildObservations computes the lookback return for every ticker of a
// selected price frame, in the frame's sorted ticker order. Skipped tickers
// are absorbed here and only show up in the returned stats.
func BuildObservations(frame contracts.PriceFrame, weeks int, log *logger.Logger) ([]contracts.ReturnObservation, Stats) {
	log = log.WithField("stage", contracts.StageReturns)

	observations := make([]contracts.ReturnObservation, 0, len(frame))
	var stats Stats

	for _, ticker := range frame.Tickers() {
		obs, outcome := Compute(frame[ticker], weeks)
		switch outcome {
		case OK:
			obs.Ticker = ticker
			observations = append(observations, obs)
			stats.Computed++
		case InsufficientHistory:
			stats.InsufficientHistory++
		case InvalidReference:
			stats.InvalidReference++
		}
	}

	log.WithFields(map[string]interface{}{
		"weeks":                weeks,
		"computed":             stats.Computed,
		"insufficient_history": stats.InsufficientHistory,
		"invalid_reference":    stats.InvalidReference,
	}).Info("Return observations built")

	return observations, stats
}

package selection

import (
	"github.com/mourafe/radarb3/internal/contracts"
	"github.com/mourafe/radarb3/pkg/logger"
)

// Screener applies the minimum-return hard cut
// ⭐ SSOT: S4 스크리닝 로직은 여기서만
type Screener struct {
	logger *logger.Logger
}

// NewScreener creates a new screener
func NewScreener(log *logger.Logger) *Screener {
	return &Screener{
		logger: log.WithField("stage", contracts.StageSelection),
	}
}

// Screen keeps every observation whose return, expressed in percent, is at
// least minReturnPct. Input order is preserved so the ranker's stable sort
// breaks ties by original iteration order.
func (s *Screener) Screen(observations []contracts.ReturnObservation, minReturnPct float64) []contracts.ReturnObservation {
	passed := make([]contracts.ReturnObservation, 0, len(observations))
	for _, obs := range observations {
		if obs.PctReturn*100.0 >= minReturnPct {
			passed = append(passed, obs)
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"total_input":    len(observations),
		"passed":         len(passed),
		"filtered_out":   len(observations) - len(passed),
		"min_return_pct": minReturnPct,
	}).Info("Screening completed")

	return passed
}

package selection

import (
	"math"
	"sort"
	"strings"

	"github.com/mourafe/radarb3/internal/contracts"
	"github.com/mourafe/radarb3/pkg/logger"
)

// dateLayout formats observation dates for display rows
const dateLayout = "2006-01-02"

// Ranker orders surviving observations and shapes them for display
// ⭐ SSOT: S4 랭킹 로직은 여기서만
type Ranker struct {
	logger *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(log *logger.Logger) *Ranker {
	return &Ranker{
		logger: log.WithField("stage", contracts.StageSelection),
	}
}

// Rank sorts observations by return descending (stable, so exact ties keep
// their incoming order) and produces display rows: market suffix stripped,
// return percent rounded to 2 decimals, prices to 4, calendar dates.
// An empty input yields an empty, non-nil row slice.
func (r *Ranker) Rank(observations []contracts.ReturnObservation) []contracts.Row {
	sorted := make([]contracts.ReturnObservation, len(observations))
	copy(sorted, observations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PctReturn > sorted[j].PctReturn
	})

	rows := make([]contracts.Row, 0, len(sorted))
	for i, obs := range sorted {
		rows = append(rows, contracts.Row{
			Rank:      i + 1,
			Ticker:    strings.TrimSuffix(obs.Ticker, contracts.MarketSuffix),
			RetPct:    round(obs.PctReturn*100.0, 2),
			LastClose: round(obs.LastPrice, 4),
			RefClose:  round(obs.RefPrice, 4),
			LastDate:  obs.LastDate.Format(dateLayout),
			RefDate:   obs.RefDate.Format(dateLayout),
		})
	}

	if len(rows) > 0 {
		r.logger.WithFields(map[string]interface{}{
			"rows":       len(rows),
			"top_ticker": rows[0].Ticker,
			"top_ret":    rows[0].RetPct,
		}).Info("Ranking completed")
	}

	return rows
}

// round rounds v to the given number of decimal places
func round(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}

package contracts

import "time"

// Universe source identifiers
const (
	UniverseSourcePrimary  = "brapi"
	UniverseSourceFallback = "fallback"
)

// MarketSuffix is the Yahoo-convention exchange suffix every resolved
// ticker carries. Display surfaces strip it; everything else keeps it.
const MarketSuffix = ".SA"

// Universe represents the resolved candidate tickers passed from S1 to S2
// ⭐ SSOT: S1 → S2 candidate list hand-off
//
// Tickers is ordered (lexicographic) and deduplicated; every member carries
// the ".SA" market suffix. The slice is replaced wholesale on each resolution,
// never mutated in place.
type Universe struct {
	ResolvedAt time.Time `json:"resolved_at"`
	Source     string    `json:"source"` // "brapi" or "fallback"
	Tickers    []string  `json:"tickers"`
}

// Contains checks if a ticker is in the universe
func (u *Universe) Contains(ticker string) bool {
	for _, t := range u.Tickers {
		if t == ticker {
			return true
		}
	}
	return false
}

// Count returns the number of candidate tickers
func (u *Universe) Count() int {
	return len(u.Tickers)
}

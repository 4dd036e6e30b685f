package contracts

// Pipeline stage definitions (SSOT)
// 모든 로그와 결과 요약에서 이 상수를 사용해야 함
//
// Pipeline flow:
//   S1 → S2 → S3 → S4
//   Universe  Prices  Returns  Selection

// Stage represents a pipeline stage
type Stage string

const (
	// StageUniverse S1: resolve the candidate ticker universe
	// Responsibility: brapi listing, class-suffix filter, CSV fallback
	// Location: internal/s1_universe/
	StageUniverse Stage = "S1_UNIVERSE"

	// StagePrices S2: batched daily price history collection
	// Responsibility: batching, per-batch failure isolation, frame selection
	// Location: internal/s2_prices/
	StagePrices Stage = "S2_PRICES"

	// StageReturns S3: calendar-aligned lookback returns
	// Responsibility: backward-only reference matching, pct computation
	// Location: internal/s3_returns/
	StageReturns Stage = "S3_RETURNS"

	// StageSelection S4: threshold filter and ranking
	// Responsibility: min-return cut, descending rank, display rows
	// Location: internal/selection/
	StageSelection Stage = "S4_SELECTION"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

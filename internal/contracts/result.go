package contracts

import "time"

// Operator parameter bounds (SSOT)
// config defaults and the API boundary both clamp against these.
const (
	MinWeeks     = 4
	MaxWeeks     = 52
	DefaultWeeks = 12

	MinReturnFloor   = 0.0
	MinReturnCeil    = 1000.0
	DefaultMinReturn = 30.0

	MinBatchSize     = 50
	MaxBatchSize     = 300
	DefaultBatchSize = 100
)

// Params are the operator-tunable inputs of one scan
type Params struct {
	Weeks        int     `json:"weeks"`
	MinReturnPct float64 `json:"min_return_pct"`
	BatchSize    int     `json:"batch_size"`
}

// DefaultParams returns the default scan parameters
func DefaultParams() Params {
	return Params{
		Weeks:        DefaultWeeks,
		MinReturnPct: DefaultMinReturn,
		BatchSize:    DefaultBatchSize,
	}
}

// Clamped returns a copy with every parameter forced into its bound
func (p Params) Clamped() Params {
	out := p
	out.Weeks = clampInt(out.Weeks, MinWeeks, MaxWeeks)
	out.MinReturnPct = clampFloat(out.MinReturnPct, MinReturnFloor, MinReturnCeil)
	out.BatchSize = clampInt(out.BatchSize, MinBatchSize, MaxBatchSize)
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Row is one ranked line of the scan output, shaped for display/export:
// market suffix stripped, return percent rounded to 2 decimals, prices to 4,
// dates as ISO calendar dates.
type Row struct {
	Rank      int     `json:"rank"`
	Ticker    string  `json:"ticker"`
	RetPct    float64 `json:"ret_pct"`
	LastClose float64 `json:"last_close"`
	RefClose  float64 `json:"ref_close"`
	LastDate  string  `json:"last_date"`
	RefDate   string  `json:"ref_date"`
}

// ScanResult is the full outcome of one pipeline invocation.
//
// Rows is always non-nil; an empty scan yields an empty slice, never null.
// FailedTickers (fetch failures) and the two exclusion counts are reported
// separately so the operator can tell "upstream refused the batch" from
// "ticker had no usable history".
type ScanResult struct {
	GeneratedAt time.Time `json:"generated_at"`
	Params      Params    `json:"params"`

	UniverseSize   int    `json:"universe_size"`
	UniverseSource string `json:"universe_source"`

	Rows []Row `json:"rows"`

	FailedTickers       []string `json:"failed_tickers"`
	InsufficientHistory int      `json:"insufficient_history"`
	InvalidReference    int      `json:"invalid_reference"`

	ElapsedMS int64 `json:"elapsed_ms"`
}

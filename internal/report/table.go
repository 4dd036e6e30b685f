package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/mourafe/radarb3/internal/contracts"
)

// tableColumns and tableWidths keep the CLI rendering aligned with Header
var (
	tableColumns = []string{"#", "TICKER", "RET%", "LAST", "REF", "LAST DATE", "REF DATE"}
	tableWidths  = []int{4, 8, 9, 10, 10, 10, 10}
)

// RenderTable writes a human-readable table of the scan result followed by
// the operator summary (universe size, fetch failures, exclusion counts).
func RenderTable(w io.Writer, result *contracts.ScanResult) {
	fmt.Fprintf(w, "Scan: %d weeks, min %.1f%%, batch %d\n",
		result.Params.Weeks, result.Params.MinReturnPct, result.Params.BatchSize)
	printSeparator(w)

	printRow(w, tableColumns)
	printSeparator(w)

	if len(result.Rows) == 0 {
		fmt.Fprintln(w, "(no tickers above threshold)")
	}
	for _, row := range result.Rows {
		printRow(w, []string{
			fmt.Sprintf("%d", row.Rank),
			row.Ticker,
			fmt.Sprintf("%.2f", row.RetPct),
			fmt.Sprintf("%.4f", row.LastClose),
			fmt.Sprintf("%.4f", row.RefClose),
			row.LastDate,
			row.RefDate,
		})
	}

	printSeparator(w)
	fmt.Fprintf(w, "universe: %d (%s)  matched: %d  fetch-failed: %d  no-history: %d  bad-ref: %d  %dms\n",
		result.UniverseSize, result.UniverseSource, len(result.Rows),
		len(result.FailedTickers), result.InsufficientHistory, result.InvalidReference,
		result.ElapsedMS)

	if len(result.FailedTickers) > 0 {
		sample := result.FailedTickers
		if len(sample) > 10 {
			sample = sample[:10]
		}
		fmt.Fprintf(w, "failed tickers (first %d): %s\n", len(sample), strings.Join(sample, ", "))
	}
}

func printRow(w io.Writer, values []string) {
	for i, val := range values {
		fmt.Fprintf(w, "%-*s", tableWidths[i], val)
		if i < len(values)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)
}

func printSeparator(w io.Writer) {
	total := 0
	for i, width := range tableWidths {
		total += width
		if i < len(tableWidths)-1 {
			total += 2
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", total))
}

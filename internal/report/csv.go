package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/mourafe/radarb3/internal/contracts"
)

// Header is the exported column order, matching the scan row shape
var Header = []string{"ticker", "ret_pct", "last_close", "ref_close", "last_date", "ref_date"}

// WriteCSV writes rows as UTF-8 delimited text with a header line.
// An empty result still produces the header, so consumers always get a
// well-formed document.
func WriteCSV(w io.Writer, rows []contracts.Row) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Ticker,
			formatFloat(row.RetPct),
			formatFloat(row.LastClose),
			formatFloat(row.RefClose),
			row.LastDate,
			row.RefDate,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ParseCSV reads a document written by WriteCSV back into rows.
// Ranks are reassigned from position; the export is already rank-ordered.
func ParseCSV(r io.Reader) ([]contracts.Row, error) {
	reader := csv.NewReader(r)

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv document is empty")
	}
	if len(records[0]) != len(Header) {
		return nil, fmt.Errorf("unexpected csv header: %v", records[0])
	}

	rows := make([]contracts.Row, 0, len(records)-1)
	for i, record := range records[1:] {
		retPct, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: bad ret_pct: %w", i+2, err)
		}
		lastClose, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: bad last_close: %w", i+2, err)
		}
		refClose, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: bad ref_close: %w", i+2, err)
		}
		rows = append(rows, contracts.Row{
			Rank:      i + 1,
			Ticker:    record[0],
			RetPct:    retPct,
			LastClose: lastClose,
			RefClose:  refClose,
			LastDate:  record[4],
			RefDate:   record[5],
		})
	}
	return rows, nil
}

// formatFloat renders a float without trailing zero noise so a parse
// round-trips to the identical value
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Filename builds the suggested export name for a parameter set,
// e.g. "radar_12w_min30pct.csv"
func Filename(params contracts.Params) string {
	return fmt.Sprintf("radar_%dw_min%dpct.csv", params.Weeks, int(params.MinReturnPct))
}

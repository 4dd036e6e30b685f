package s1_universe

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/mourafe/radarb3/internal/contracts"
)

// readSnapshot reads the bundled fallback CSV: a header row with a "ticker"
// column and one bare or suffixed code per line. Codes are upper-cased and
// suffix-normalized so the snapshot can be maintained without ".SA" noise.
func readSnapshot(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fallback snapshot: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read fallback snapshot: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("fallback snapshot %s is empty", path)
	}

	col, err := tickerColumn(records[0])
	if err != nil {
		return nil, err
	}

	tickers := make([]string, 0, len(records)-1)
	for _, record := range records[1:] {
		if col >= len(record) {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(record[col]))
		if code == "" {
			continue
		}
		if !strings.HasSuffix(code, contracts.MarketSuffix) {
			code += contracts.MarketSuffix
		}
		tickers = append(tickers, code)
	}
	return normalize(tickers), nil
}

// tickerColumn locates the identifier column in the header row
func tickerColumn(header []string) (int, error) {
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), "ticker") {
			return i, nil
		}
	}
	return 0, fmt.Errorf("fallback snapshot has no ticker column: %v", header)
}

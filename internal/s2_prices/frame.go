package s2_prices

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/mourafe/radarb3/internal/contracts"
	"github.com/mourafe/radarb3/internal/external/yahoo"
)

// dateLayout is the calendar-date key format of the download API
const dateLayout = "2006-01-02"

// Normalize converts one raw batch response into a PriceTable fragment.
//
// Two documented shapes must be reconciled: multi-symbol columns keyed
// symbol→date→price, and the flattened date→price shape the upstream emits
// for single-symbol batches. The shape is resolved once per batch by
// inspecting the column structure; the single shape is promoted by pairing
// it with the batch's sole symbol. Consumers downstream never see anything
// but the canonical multi shape.
func Normalize(raw *yahoo.History, batch []string) (*contracts.PriceTable, error) {
	table := contracts.NewPriceTable()

	for name, column := range raw.Columns {
		field := contracts.Field(name)

		bySymbol, single, err := decodeColumn(column)
		if err != nil {
			return nil, fmt.Errorf("normalize column %q: %w", name, err)
		}
		if single != nil {
			if len(batch) != 1 {
				return nil, fmt.Errorf("normalize column %q: single-symbol shape for a %d-symbol batch", name, len(batch))
			}
			bySymbol = map[string]map[string]*float64{batch[0]: single}
		}

		for symbol, prices := range bySymbol {
			series, err := buildSeries(prices)
			if err != nil {
				return nil, fmt.Errorf("normalize column %q symbol %q: %w", name, symbol, err)
			}
			if len(series) == 0 {
				// No usable observations: the symbol stays absent,
				// it is not zero-filled.
				continue
			}
			table.Put(field, symbol, series)
		}
	}

	return table, nil
}

// decodeColumn resolves the column shape. Returns either the multi-symbol
// map or the flattened single map, never both.
func decodeColumn(column json.RawMessage) (map[string]map[string]*float64, map[string]*float64, error) {
	var multi map[string]map[string]*float64
	if err := json.Unmarshal(column, &multi); err == nil {
		if !keysAreDates(multi) {
			return multi, nil, nil
		}
		// Keys parse as calendar dates: this is the flattened shape whose
		// values all happened to decode as null maps.
	}

	var single map[string]*float64
	if err := json.Unmarshal(column, &single); err != nil {
		return nil, nil, fmt.Errorf("column matches neither response shape: %w", err)
	}
	return nil, single, nil
}

// keysAreDates reports whether every top-level key is a calendar date,
// which can only happen in the flattened single-symbol shape
func keysAreDates(m map[string]map[string]*float64) bool {
	if len(m) == 0 {
		return false
	}
	for key := range m {
		if _, err := time.Parse(dateLayout, key); err != nil {
			return false
		}
	}
	return true
}

// buildSeries turns a date→price map into a sorted PriceSeries,
// dropping missing (null) observations
func buildSeries(prices map[string]*float64) (contracts.PriceSeries, error) {
	series := make(contracts.PriceSeries, 0, len(prices))
	for dateStr, price := range prices {
		if price == nil {
			continue
		}
		date, err := time.ParseInLocation(dateLayout, dateStr, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("bad date key %q: %w", dateStr, err)
		}
		series = append(series, contracts.PricePoint{Date: date, Price: *price})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})
	return series, nil
}

// SelectFrame picks the canonical price field for the whole table:
// adjusted close when any series carries it, raw close otherwise. The choice
// is table-wide so every downstream comparison uses the same field.
func SelectFrame(table *contracts.PriceTable) (contracts.PriceFrame, contracts.Field, bool) {
	if frame, ok := table.Frame(contracts.FieldAdjClose); ok {
		return frame, contracts.FieldAdjClose, true
	}
	if frame, ok := table.Frame(contracts.FieldClose); ok {
		return frame, contracts.FieldClose, true
	}
	return nil, "", false
}

// RangeForWeeks maps a lookback window to the upstream trailing-range token,
// wide enough that the reference date always falls inside the fetched
// history (the window is weeks*7 calendar days plus search slack).
func RangeForWeeks(weeks int) string {
	switch {
	case weeks <= 12:
		return "6mo"
	case weeks <= 26:
		return "1y"
	default:
		return "2y"
	}
}

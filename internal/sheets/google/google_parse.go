package google

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"kaamgarau/internal/core"
)

var ledgerHeaders = []string{"Date", "Amount", "Category", "User"}

// parseLedger converts a values matrix (as returned by the Sheets API) into
// the spending events of userID, sorted by date. It returns how many rows
// for the user were skipped because they did not parse.
func parseLedger(values [][]interface{}, userID string) ([]core.SpendingEvent, int, error) {
	if len(values) == 0 {
		return nil, 0, nil
	}
	headers := toStrings(values[0])
	cols := make([]int, len(ledgerHeaders))
	var missing []string
	for i, h := range ledgerHeaders {
		cols[i] = indexOf(headers, h)
		if cols[i] == -1 {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, 0, fmt.Errorf("unexpected ledger header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}
	colDate, colAmount, colCategory, colUser := cols[0], cols[1], cols[2], cols[3]

	var out []core.SpendingEvent
	skipped := 0
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if strings.TrimSpace(safeGet(row, colUser)) != userID {
			continue
		}
		date, err := core.ParseDate(safeGet(row, colDate))
		if err != nil {
			skipped++
			continue
		}
		paisa, ok := parseRupeesToPaisa(safeGet(row, colAmount))
		if !ok {
			skipped++
			continue
		}
		e := core.SpendingEvent{Date: date, Amount: core.Money{Paisa: paisa}, Category: strings.TrimSpace(safeGet(row, colCategory))}
		if e.Validate() != nil {
			skipped++
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})
	return out, skipped, nil
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch t := v.(type) {
		case string:
			out[i] = t
		case float64:
			out[i] = strconv.FormatFloat(t, 'f', -1, 64)
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), target) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx >= 0 && idx < len(arr) {
		return arr[idx]
	}
	return ""
}

// parseRupeesToPaisa accepts plain numbers and "Rs." prefixed, comma grouped
// amounts such as "Rs. 25,000.50".
func parseRupeesToPaisa(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "Rs.")
	s = strings.TrimPrefix(s, "रु.")
	s = strings.ReplaceAll(s, ",", "")
	paisa, err := core.ParseDecimalToPaisa(s)
	if err != nil {
		return 0, false
	}
	return paisa, true
}

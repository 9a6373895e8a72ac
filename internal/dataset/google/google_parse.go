package google

import (
	"fmt"
	"strconv"
	"strings"

	"ventas/internal/core"
	ports "ventas/internal/dataset"
)

// parseValues converts a values matrix (as returned by the Sheets API with
// unformatted values) into a dataset.
func parseValues(values [][]interface{}) (*core.Dataset, error) {
	rows := make([][]string, len(values))
	for i, row := range values {
		rows[i] = toStrings(row)
	}
	return ports.ParseRows(rows)
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = cellString(v)
	}
	return out
}

// cellString renders numbers without exponent so large amounts parse exactly.
func cellString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return strings.TrimSpace(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

package report

import (
	"fmt"
	"math"

	"coastereda/internal/table"
)

// formatFloat formats a float with exactly 2 decimal places. NaN renders as
// an empty string.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return fmt.Sprintf("%.2f", f)
}

// formatValue renders a cell for display. Floats get 2 decimal places, nulls
// render as an empty string.
func formatValue(v table.Value) string {
	if v.IsNull() {
		return ""
	}
	if v.Kind() == table.KindFloat {
		return formatFloat(v.Float())
	}
	return v.String()
}

// formatPercent formats a percentage with one decimal place
func formatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

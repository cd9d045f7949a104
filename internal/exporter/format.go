package exporter

import (
	"math"
	"strconv"
	"time"

	"owidreport/pkg/contracts/domain"
)

// formatFloat renders a value without exponent or padding; NaN is an empty cell
func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatDate renders a date in the dataset layout; the zero time is empty
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}

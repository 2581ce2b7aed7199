package exporter

import (
	"strconv"

	"crimerisk/internal/dataprocessing"
)

// formatValue renders a table cell; missing cells are written empty
func formatValue(v float64) string {
	if dataprocessing.IsMissing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatFloat formats a report value with a fixed number of decimals
func formatFloat(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}

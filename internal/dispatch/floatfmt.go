package dispatch

import (
	"math"
	"strconv"
	"strings"
)

func isNaNOrInf(f float64) bool { return math.IsNaN(f) || math.IsInf(f, 0) }

// formatFloat renders a float the way Redis does for INCRBYFLOAT/
// HINCRBYFLOAT/ZSCORE-style replies: fixed notation with trailing zeros
// (and a trailing decimal point) trimmed.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', 17, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

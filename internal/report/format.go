package report

import (
	"fmt"
	"math"
	"strings"
)

// FormatAmount renders a currency amount rounded to whole units with
// thousands separators.
func FormatAmount(v float64) string {
	return FormatInt(int64(math.Round(v)))
}

// FormatInt renders an integer with thousands separators.
func FormatInt(n int64) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return strings.Join(parts, ",")
}

// FormatPercent renders a percentage with two decimals.
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// FormatSignedPercent renders a relative delta (fraction) as a signed
// percentage.
func FormatSignedPercent(frac float64) string {
	return fmt.Sprintf("%+.1f%%", frac*100)
}

// FormatCount renders an item count with one decimal, as averages of
// items-per-order are shown.
func FormatCount(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

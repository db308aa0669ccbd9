package normalize

import (
	"strconv"
	"strings"
	"time"
)

// amountReplacer strips locale formatting commonly found in exported
// amounts: thousands separators, currency marks, stray spaces.
var amountReplacer = strings.NewReplacer(",", "", "₩", "", "원", "", " ", "")

// ParseAmount coerces a locale-formatted amount cell to a number.
func ParseAmount(s string) (float64, bool) {
	s = amountReplacer.Replace(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseQty coerces a quantity cell. Quantities are whole numbers.
func ParseQty(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
}

// ParseDate tries the date layouts seen across real exports.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

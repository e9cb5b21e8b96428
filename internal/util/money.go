package util

import (
	"math"
	"regexp"
	"strconv"
)

var amountPattern = regexp.MustCompile(`(\d+\.\d+)`)

// FindAmount returns the first decimal amount in a line, e.g. "1.50" from
// "1.50-" or "YOU SAVED 1.50 TODAY". Whole numbers without a fractional part
// are not treated as amounts.
func FindAmount(line string) (float64, bool) {
	m := amountPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// RoundCents rounds to two decimal places. Accumulated savings totals pick up
// float drift; everything user-visible goes through this.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

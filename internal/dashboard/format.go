// Package dashboard implements the client-side data coordination layer of
// StockLens: symbol/period load orchestration with stale-response
// suppression, the auto-refresh scheduler, and display formatting.
package dashboard

import (
	"fmt"
	"math"
	"strings"
)

// FormatCurrency formats a dollar value with comma grouping and two
// decimals, e.g. 1234.5 -> "$1,234.50".
func FormatCurrency(v float64) string {
	neg := v < 0
	v = math.Abs(v)

	whole := int64(v)
	cents := int64(math.Round((v - float64(whole)) * 100))
	if cents == 100 { // rounding carried over
		whole++
		cents = 0
	}

	s := fmt.Sprintf("%d", whole)
	var b strings.Builder
	start := len(s) % 3
	if start > 0 {
		b.WriteString(s[:start])
	}
	for i := start; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	sign := ""
	if neg {
		sign = "-"
	}
	return fmt.Sprintf("%s$%s.%02d", sign, b.String(), cents)
}

// FormatPercent formats a signed percentage with an explicit plus for
// gains, e.g. 1.24 -> "+1.24%", -0.56 -> "-0.56%".
func FormatPercent(v float64) string {
	if v >= 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}

// FormatLargeNumber abbreviates big magnitudes with K/M/B suffixes,
// e.g. 2_450_000 -> "2.45M".
func FormatLargeNumber(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.2fK", v/1e3)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// PercentChange returns the percent change from previous to current, and 0
// when previous is 0.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

package format

import (
	"fmt"
	"math"
	"strings"
)

// Frequency formats a frequency in Hz with dot separators between groups of
// three digits.
// Example: 101000000 -> "101.000.000"
func Frequency(hz float64) string {
	freq := int64(math.Round(hz))
	if freq <= 0 {
		return "0"
	}

	var parts []string
	for freq > 0 {
		part := freq % 1000
		freq = freq / 1000

		if freq > 0 {
			parts = append([]string{fmt.Sprintf("%03d", part)}, parts...)
		} else {
			parts = append([]string{fmt.Sprintf("%d", part)}, parts...)
		}
	}
	return strings.Join(parts, ".")
}

// MHzLabel formats a scale label in MHz, with three decimals below 2 MHz and
// two above.
func MHzLabel(hz float64) string {
	if hz < 2e6 {
		return fmt.Sprintf("%.3f", hz/1e6)
	}
	return fmt.Sprintf("%.2f", hz/1e6)
}

// Bandwidth formats a bandwidth in kHz.
// Example: 150000 -> "150.0 kHz"
func Bandwidth(hz float64) string {
	return fmt.Sprintf("%.1f kHz", hz/1e3)
}

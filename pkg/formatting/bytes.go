// Package formatting converts byte sizes between counts and the
// human-readable strings used in configuration and logs.
package formatting

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

const base = 1024

var units = [...]string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

// FormatBytes renders n with the largest base-1024 unit that keeps the value
// at or above one. Negative precision is treated as zero.
func FormatBytes(n int64, precision int) string {
	if n == 0 {
		return "0 B"
	}
	precision = max(precision, 0)

	size := float64(n)
	unit := 0
	for math.Abs(size) >= base && unit < len(units)-1 {
		size /= base
		unit++
	}

	return strconv.FormatFloat(size, 'f', precision, 64) + " " + units[unit]
}

// ParseBytes parses a size such as "50MB", "1.5 kb", or "2KiB" into a byte
// count. A bare number is a count of bytes.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	split := strings.IndexFunc(s, unicode.IsLetter)
	if split == -1 {
		split = len(s)
	}
	number := strings.TrimSpace(s[:split])
	suffix := strings.ToUpper(s[split:])

	value, err := strconv.ParseFloat(number, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	exp, ok := unitExponent(suffix)
	if !ok {
		return 0, fmt.Errorf("unknown byte size unit: %q", suffix)
	}

	bytes := value * math.Pow(base, float64(exp))
	if bytes >= math.MaxInt64 {
		return 0, fmt.Errorf("byte size out of range: %q", s)
	}
	return int64(bytes), nil
}

func unitExponent(suffix string) (int, bool) {
	if suffix == "" {
		return 0, true
	}
	suffix = strings.Replace(suffix, "IB", "B", 1)
	for i, u := range units {
		if u == suffix {
			return i, true
		}
	}
	return 0, false
}

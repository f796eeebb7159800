// Package normalize coerces loosely typed upstream values into safe,
// default-bearing numbers and text. Every adapter routes extraction through it.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number converts any upstream value into a finite float64.
// Absent, non-numeric, NaN and infinite inputs all yield 0.
func Number(x any) float64 {
	var n float64

	switch v := x.(type) {
	case nil:
		return 0
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case uint:
		n = float64(v)
	case uint64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		n = f
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		n = f
	default:
		return 0
	}

	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// NonNegative is Number clamped at zero.
func NonNegative(x any) float64 {
	return math.Max(0, Number(x))
}

// Quantity converts x into a whole, non-negative unit count.
func Quantity(x any) int {
	n := math.Trunc(NonNegative(x))
	if n > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

// String converts x to trimmed text, keeping its case. nil yields "".
func String(x any) string {
	switch v := x.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return strings.TrimSpace(v.String())
	case fmt.Stringer:
		return strings.TrimSpace(v.String())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Text converts x to trimmed, lowercased text. nil yields "".
func Text(x any) string {
	return strings.ToLower(String(x))
}

// Bool coerces an upstream flag. Strings accepted by strconv.ParseBool use
// their parsed value; any other non-empty string counts as true.
func Bool(x any) bool {
	switch v := x.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		s := strings.TrimSpace(v)
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
		return s != ""
	default:
		return Number(v) != 0
	}
}

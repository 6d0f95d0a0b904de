// Package units converts between human-entered decimal amounts and the
// ledger's 9-decimal fixed-point integer representation.
//
// All ledger arguments travel as integers in base units. Conversion to a
// display decimal happens exactly once, at the boundary, and the float form
// must never be fed back into a base-unit argument without re-deriving it
// from a user-entered string.
package units

import (
	"math"
	"strconv"
	"strings"
)

// Precision is the number of fractional digits in the fixed-point scheme.
const Precision = 9

// Factor is 10^Precision.
const Factor = uint64(1_000_000_000)

// sanitize strips every character that is not a digit or a decimal point.
func sanitize(value string) string {
	var b strings.Builder
	for _, r := range value {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ToBaseUnits converts a decimal string to base units, truncating (not
// rounding) any fractional digits beyond the ninth. Garbled, empty or
// out-of-range input converts to zero; the function never fails.
func ToBaseUnits(value string) uint64 {
	s := sanitize(value)
	if s == "" {
		return 0
	}

	parts := strings.Split(s, ".")
	whole := parts[0]
	fraction := ""
	if len(parts) > 1 {
		// Anything after a second dot is discarded.
		fraction = parts[1]
	}

	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}

	fraction = fraction + strings.Repeat("0", Precision)
	fraction = fraction[:Precision]

	w, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		return 0
	}
	f, err := strconv.ParseUint(fraction, 10, 64)
	if err != nil {
		return 0
	}

	// Amounts past the uint64 range are as unusable as garbled input and
	// convert to zero rather than wrapping.
	if w > math.MaxUint64/Factor {
		return 0
	}
	scaled := w * Factor
	if scaled > math.MaxUint64-f {
		return 0
	}
	return scaled + f
}

// FromBaseUnits renders a base-unit amount as a decimal string with at most
// precision fractional digits. Trailing zeros are stripped and the fractional
// part is omitted entirely when it becomes empty.
func FromBaseUnits(value uint64, precision int) string {
	whole := value / Factor
	fraction := value % Factor

	if precision <= 0 {
		return strconv.FormatUint(whole, 10)
	}
	if precision > Precision {
		precision = Precision
	}

	frac := strconv.FormatUint(fraction, 10)
	frac = strings.Repeat("0", Precision-len(frac)) + frac
	frac = strings.TrimRight(frac[:precision], "0")

	if frac == "" {
		return strconv.FormatUint(whole, 10)
	}
	return strconv.FormatUint(whole, 10) + "." + frac
}

// Float converts a base-unit amount to a float64 for display arithmetic.
// The parse reintroduces floating-point imprecision; callers must not use
// the result for further base-unit round-trips.
func Float(value uint64, precision int) float64 {
	f, _ := strconv.ParseFloat(FromBaseUnits(value, precision), 64)
	return f
}

// FloatToBaseUnits converts a display float back to base units by going
// through the string form, preserving truncation semantics.
func FloatToBaseUnits(value float64) uint64 {
	return ToBaseUnits(strconv.FormatFloat(value, 'f', -1, 64))
}

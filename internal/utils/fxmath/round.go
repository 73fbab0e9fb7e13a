// Package fxmath holds the numeric policy for rate arithmetic: every
// intermediate multiply/divide is kept at 7 significant digits (IEEE-754
// Decimal32) with HALF_EVEN rounding, matching the precision provider feeds
// publish at and avoiding systematic upward bias across many conversions.
// The final presented value is additionally rounded to 2 decimal places.
package fxmath

import "github.com/shopspring/decimal"

const (
	// SignificantDigits is the Decimal32 precision applied to intermediate
	// arithmetic.
	SignificantDigits = 7

	// DisplayScale is the number of decimal places of a presented amount.
	DisplayScale = 2
)

// RoundDecimal32 rounds a value to 7 significant digits with banker's
// rounding. Zero passes through unchanged.
func RoundDecimal32(d decimal.Decimal) decimal.Decimal {
	return RoundSignificant(d, SignificantDigits)
}

// RoundSignificant rounds to the given number of significant digits with
// banker's rounding.
func RoundSignificant(d decimal.Decimal, digits int32) decimal.Decimal {
	if d.IsZero() {
		return d
	}
	// value = coefficient * 10^exponent, so the count of integer digits is
	// NumDigits + exponent; the decimal places to keep follow from that.
	intDigits := int32(d.NumDigits()) + d.Exponent()
	return d.RoundBank(digits - intDigits)
}

// RoundDisplay rounds a value to the display scale with banker's rounding.
func RoundDisplay(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(DisplayScale)
}

// Mul multiplies under the Decimal32 policy.
func Mul(a, b decimal.Decimal) decimal.Decimal {
	return RoundDecimal32(a.Mul(b))
}

// Div divides under the Decimal32 policy. Division by zero returns zero; the
// strategy layer guards rates before arithmetic so this is a backstop.
func Div(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return RoundDecimal32(a.Div(b))
}

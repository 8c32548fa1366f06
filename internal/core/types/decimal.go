// Package types provides common type aliases and utilities.
package types

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// MoneyPlaces is the number of fractional digits amounts are rounded to.
const MoneyPlaces int32 = 2

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Round2 rounds half away from zero to MoneyPlaces.
func Round2(m Money) Money {
	return m.Round(MoneyPlaces)
}

// Clamp limits m to [lo, hi].
func Clamp(m, lo, hi Money) Money {
	if m.LessThan(lo) {
		return lo
	}
	if m.GreaterThan(hi) {
		return hi
	}
	return m
}

// NonNegative returns m, or zero when m is negative.
func NonNegative(m Money) Money {
	if m.IsNegative() {
		return decimal.Zero
	}
	return m
}

var plainDecimal = regexp.MustCompile(`^-?(\d+(\.\d*)?|\.\d+)$`)

// ParseMoneyLoose parses user-entered text ("1,250.50", " 30 ").
// Returns false for anything that is not a plain decimal; exponents are rejected.
func ParseMoneyLoose(s string) (Money, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if !plainDecimal.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

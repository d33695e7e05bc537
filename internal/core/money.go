// Package core holds the domain types shared by the chart pipeline.
//
// This file contains monetary parsing and presentation helpers. Amounts are
// carried as decimal values end to end; binary floating point only appears at
// the presentation edge, after rounding to two fraction digits.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts a signed decimal string to a decimal value.
//
// It accepts both dot (12.34) and comma (12,34) separators and an optional
// leading sign. Returns an error for anything that is not a plain decimal
// number.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("-12,34") -> -12.34, nil
//	ParseAmount("1.2.3")  -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Present rounds a decimal to two fraction digits and converts it to float64
// for serialization. Only call this when building series points; running sums
// must stay decimal.
func Present(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

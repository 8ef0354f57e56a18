// Package types provides value types shared by entities: decimals, flags and dates.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Rate is a fraction such as a weight or a shared-savings percentage (0.35 = 35%).
type Rate = decimal.Decimal

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustDecimal creates a decimal from a string, panics on error.
// Use only for constants and tests.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsFraction reports whether r lies within [0, 1].
func IsFraction(r Rate) bool {
	return !r.IsNegative() && r.LessThanOrEqual(decimal.NewFromInt(1))
}

// SumsToOne reports whether the given rates add up to exactly 1.
func SumsToOne(rates ...Rate) bool {
	total := decimal.Zero
	for _, r := range rates {
		total = total.Add(r)
	}
	return total.Equal(decimal.NewFromInt(1))
}

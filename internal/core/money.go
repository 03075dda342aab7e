// Package core provides money parsing and handling utilities.
//
// Amounts are held as integer cents. Decimal text coming from users, JSON
// files or spreadsheets is converted with shopspring/decimal so that
// rounding happens once, at the edge.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive cents.
// Returns an error for invalid formats, negative values, zero amounts, or
// amounts above MaxAmountCents.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" || strings.Count(s, ".") > 1 {
		return 0, ErrInvalidAmount
	}
	// Only plain digits: no sign, no exponent.
	for _, r := range s {
		if r != '.' && (r < '0' || r > '9') {
			return 0, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	m, ok := moneyFromDecimal(d)
	if !ok || m.Cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return m.Cents, nil
}

// MoneyFromDecimal rounds d to cents. Values of any sign are accepted.
func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	m, ok := moneyFromDecimal(d)
	if !ok {
		return Money{}, ErrInvalidAmount
	}
	return m, nil
}

func moneyFromDecimal(d decimal.Decimal) (Money, bool) {
	cents := d.Shift(2).Round(0)
	if !cents.IsInteger() || cents.Abs().GreaterThan(decimal.NewFromInt(MaxAmountCents)) {
		return Money{}, false
	}
	return Money{Cents: cents.IntPart()}, true
}

// MaxAmountCents bounds a single record amount: one trillion units.
const MaxAmountCents = 100_000_000_000_000

// NewMoney builds a Money from whole units and cents, e.g. NewMoney(75, 50).
func NewMoney(units, cents int64) Money {
	return Money{Cents: units*100 + cents}
}

func (m Money) Validate() error {
	if m.Cents <= 0 || m.Cents > MaxAmountCents {
		return ErrInvalidAmount
	}
	return nil
}

// Add, Sub and Mul saturate at the int64 range instead of wrapping, so an
// overflowing total keeps its sign.
func (m Money) Add(o Money) Money {
	sum := m.Cents + o.Cents
	switch {
	case o.Cents > 0 && sum < m.Cents:
		return Money{Cents: math.MaxInt64}
	case o.Cents < 0 && sum > m.Cents:
		return Money{Cents: math.MinInt64}
	}
	return Money{Cents: sum}
}

func (m Money) Sub(o Money) Money {
	diff := m.Cents - o.Cents
	switch {
	case o.Cents < 0 && diff < m.Cents:
		return Money{Cents: math.MaxInt64}
	case o.Cents > 0 && diff > m.Cents:
		return Money{Cents: math.MinInt64}
	}
	return Money{Cents: diff}
}

func (m Money) Mul(n int64) Money {
	if m.Cents == 0 || n == 0 {
		return Money{}
	}
	p := m.Cents * n
	if p/n != m.Cents || (m.Cents == -1 && n == math.MinInt64) || (n == -1 && m.Cents == math.MinInt64) {
		if (m.Cents < 0) != (n < 0) {
			return Money{Cents: math.MinInt64}
		}
		return Money{Cents: math.MaxInt64}
	}
	return Money{Cents: p}
}

func (m Money) IsZero() bool             { return m.Cents == 0 }
func (m Money) Decimal() decimal.Decimal { return decimal.New(m.Cents, -2) }

// String formats the amount with exactly two decimals, e.g. "75.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Display formats the amount for people, e.g. "$75.50" or "-$12.00".
func (m Money) Display() string {
	if m.Cents < 0 {
		return "-$" + Money{Cents: -m.Cents}.String()
	}
	return "$" + m.String()
}

// Float64 returns the value as a float64 for display purposes only.
func (m Money) Float64() float64 {
	return m.Decimal().InexactFloat64()
}

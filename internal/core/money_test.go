package core

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"75.50", 7550, true},
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"1e3", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"1000000000000", 100_000_000_000_000, true},
		{"1000000000000.01", 0, false},
		{"92233720368547758", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyFromDecimalKeepsSign(t *testing.T) {
	m, err := MoneyFromDecimal(decimal.RequireFromString("-12.345"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Cents != -1235 {
		t.Fatalf("got %d cents, want -1235", m.Cents)
	}
	if _, err := MoneyFromDecimal(decimal.RequireFromString("1e40")); err == nil {
		t.Fatalf("expected overflow error")
	}
}

func TestMoneyFormatting(t *testing.T) {
	cases := []struct {
		m       Money
		str     string
		display string
	}{
		{NewMoney(75, 50), "75.50", "$75.50"},
		{NewMoney(200, 0), "200.00", "$200.00"},
		{Money{}, "0.00", "$0.00"},
		{Money{Cents: -1200}, "-12.00", "-$12.00"},
		{Money{Cents: 5}, "0.05", "$0.05"},
	}
	for _, tc := range cases {
		if got := tc.m.String(); got != tc.str {
			t.Errorf("String(%d) = %q, want %q", tc.m.Cents, got, tc.str)
		}
		if got := tc.m.Display(); got != tc.display {
			t.Errorf("Display(%d) = %q, want %q", tc.m.Cents, got, tc.display)
		}
	}
}

func TestMoneyArithmeticHasNoFloatDrift(t *testing.T) {
	var total Money
	for i := 0; i < 10; i++ {
		total = total.Add(Money{Cents: 10}) // 0.10 ten times
	}
	if total.String() != "1.00" {
		t.Fatalf("got %s", total)
	}
	if got := NewMoney(33, 33).Mul(3).Sub(NewMoney(99, 99)); !got.IsZero() {
		t.Fatalf("expected zero, got %s", got)
	}
}

func TestMoneyArithmeticSaturates(t *testing.T) {
	maxM, minM := Money{Cents: math.MaxInt64}, Money{Cents: math.MinInt64}
	tests := []struct {
		name string
		got  Money
		want Money
	}{
		{"add past max", maxM.Add(Money{Cents: 1}), maxM},
		{"add past min", minM.Add(Money{Cents: -1}), minM},
		{"sub past max", maxM.Sub(Money{Cents: -1}), maxM},
		{"sub past min", minM.Sub(Money{Cents: 1}), minM},
		{"sub min from zero", Money{}.Sub(minM), maxM},
		{"mul positive", Money{Cents: MaxAmountCents}.Mul(1_000_000), maxM},
		{"mul negative amount", Money{Cents: -MaxAmountCents}.Mul(1_000_000), minM},
		{"mul negative count", Money{Cents: MaxAmountCents}.Mul(-1_000_000), minM},
		{"mul min by -1", minM.Mul(-1), maxM},
		{"mul in range", Money{Cents: MaxAmountCents}.Mul(52), Money{Cents: 52 * MaxAmountCents}},
		{"mul zero", maxM.Mul(0), Money{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %d, want %d", tt.got.Cents, tt.want.Cents)
			}
		})
	}
}

func TestValidateRejectsAmountsAboveMax(t *testing.T) {
	if err := (Money{Cents: MaxAmountCents}).Validate(); err != nil {
		t.Errorf("max amount rejected: %v", err)
	}
	if err := (Money{Cents: MaxAmountCents + 1}).Validate(); err == nil {
		t.Error("amount above max accepted")
	}
}

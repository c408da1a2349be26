package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"ingreso", KindIncome, true},
		{"Gasto", KindExpense, true},
		{" Transferencia ", KindTransfer, true},
		{"prestamo", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParseKind(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParseKind(%q) expected error", tc.in)
		}
	}
}

func TestMovementValidate(t *testing.T) {
	good := Movement{
		Date:        NewDate(2025, 3, 14),
		Kind:        KindExpense,
		Amount:      dec("12.50"),
		Account:     "Vivir",
		Category:    "Casa",
		Subcategory: "Luz",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	transfer := Movement{
		Date:        NewDate(2025, 3, 14),
		Kind:        KindTransfer,
		Amount:      dec("100"),
		FromAccount: "Vivir",
		ToAccount:   "Remunerada",
		Category:    "Otros",
	}
	if err := transfer.Validate(); err != nil {
		t.Fatalf("expected ok for transfer, got %v", err)
	}

	cases := []struct {
		name string
		mut  func(Movement) Movement
		want error
	}{
		{"zero date", func(m Movement) Movement { m.Date = Date{}; return m }, ErrInvalidDate},
		{"bad kind", func(m Movement) Movement { m.Kind = "prestamo"; return m }, ErrInvalidKind},
		{"negative amount", func(m Movement) Movement { m.Amount = dec("-1"); return m }, ErrNegativeAmount},
		{"empty category", func(m Movement) Movement { m.Category = " "; return m }, ErrEmptyCategory},
		{"no account", func(m Movement) Movement { m.Account = ""; return m }, ErrEmptyAccount},
		{"both accounts", func(m Movement) Movement { m.FromAccount = "Lujo"; return m }, ErrAccountConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.mut(good).Validate()
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}

	t.Run("transfer same account", func(t *testing.T) {
		m := transfer
		m.ToAccount = m.FromAccount
		if err := m.Validate(); !errors.Is(err, ErrSameAccount) {
			t.Fatalf("got %v, want %v", err, ErrSameAccount)
		}
	})
	t.Run("transfer with single account set", func(t *testing.T) {
		m := transfer
		m.Account = "Vivir"
		if err := m.Validate(); !errors.Is(err, ErrAccountConflict) {
			t.Fatalf("got %v, want %v", err, ErrAccountConflict)
		}
	})
	t.Run("zero amount allowed", func(t *testing.T) {
		m := good
		m.Amount = decimal.Zero
		if err := m.Validate(); err != nil {
			t.Fatalf("zero amount should validate, got %v", err)
		}
	})
}

func TestSavingsGoalProgress(t *testing.T) {
	cases := []struct {
		saved, target string
		want          float64
	}{
		{"500", "1000", 0.5},
		{"1500", "1000", 1}, // capped
		{"100", "0", 0},     // guarded division
	}
	for _, tc := range cases {
		g := SavingsGoal{Saved: dec(tc.saved), Target: dec(tc.target)}
		if got := g.Progress(); got != tc.want {
			t.Fatalf("Progress(%s/%s) = %v, want %v", tc.saved, tc.target, got, tc.want)
		}
	}
}

package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	KindIncome   Kind = "ingreso"
	KindExpense  Kind = "gasto"
	KindTransfer Kind = "transferencia"
)

type (
	// Kind classifies a movement. The string values double as the
	// vocabulary stored in the movimientos table.
	Kind string

	// Movement is a single dated financial event.
	Movement struct {
		ID          string
		Date        Date
		Kind        Kind
		Amount      decimal.Decimal
		Account     string // income/expense only
		FromAccount string // transfer only
		ToAccount   string // transfer only
		Category    string
		Subcategory string
		Note        string
	}

	// AccountBalance is the opening balance of an account, as of the
	// moment the account was registered.
	AccountBalance struct {
		Account string
		Balance decimal.Decimal
	}

	// BudgetLine is the planned amount for a category in a given month.
	BudgetLine struct {
		Category string
		Month    int // 1-12
		Amount   decimal.Decimal
	}

	// AccountGoal is a target balance for a specific account.
	AccountGoal struct {
		ID          int64
		Type        string // Ahorro, Inversión, Deuda
		Description string
		Account     string
		Target      decimal.Decimal
		Deadline    Date
	}

	// SavingsGoal is a manually tracked goal; Saved is updated by the
	// user, not derived from movements.
	SavingsGoal struct {
		ID     string
		Name   string
		Target decimal.Decimal
		Saved  decimal.Decimal
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidKind     = errors.New("invalid movement kind")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrEmptyAccount    = errors.New("empty account")
	ErrEmptyCategory   = errors.New("empty category")
	ErrAccountConflict = errors.New("account and transfer accounts are mutually exclusive")
	ErrSameAccount     = errors.New("transfer accounts must differ")
)

// Valid reports whether k is one of the three known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindIncome, KindExpense, KindTransfer:
		return true
	}
	return false
}

// ParseKind maps a raw string to a Kind, accepting the UI labels
// ("Ingreso", "Gasto", "Transferencia") case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", ErrInvalidKind
	}
	return k, nil
}

// Validate enforces the movement invariants: a valid date and kind, a
// non-negative amount, a non-empty category, and exactly one of
// {account} or {from,to} populated depending on the kind.
func (m Movement) Validate() error {
	if m.Date.IsZero() {
		return ErrInvalidDate
	}
	if !m.Kind.Valid() {
		return ErrInvalidKind
	}
	if m.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if strings.TrimSpace(m.Category) == "" {
		return ErrEmptyCategory
	}
	if m.Kind == KindTransfer {
		if m.FromAccount == "" || m.ToAccount == "" {
			return ErrEmptyAccount
		}
		if m.FromAccount == m.ToAccount {
			return ErrSameAccount
		}
		if m.Account != "" {
			return ErrAccountConflict
		}
		return nil
	}
	if m.Account == "" {
		return ErrEmptyAccount
	}
	if m.FromAccount != "" || m.ToAccount != "" {
		return ErrAccountConflict
	}
	return nil
}

// Progress returns the completion ratio of the goal, capped at 1.
// A zero target yields 0 rather than dividing.
func (g SavingsGoal) Progress() float64 {
	if g.Target.IsZero() || g.Target.IsNegative() {
		return 0
	}
	p, _ := g.Saved.Div(g.Target).Float64()
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}

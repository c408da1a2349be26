package core

import (
	"fmt"

	"github.com/google/uuid"
)

// RawMovement is a movement-like record before validation: string
// fields as they arrive from forms, grids or statement imports.
type RawMovement struct {
	ID          string
	Date        string
	Kind        string
	Amount      string
	Account     string
	FromAccount string
	ToAccount   string
	Category    string
	Subcategory string
	Note        string
}

// RowError is a per-record normalization failure. The batch continues
// past it; callers surface the collected failures to the user.
type RowError struct {
	Index int
	Err   error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Index, e.Err)
}

// NormalizeResult carries the valid movements plus the diagnostics of
// a batch run. Failures exclude their record; Warnings do not.
type NormalizeResult struct {
	Movements []Movement
	Failures  []RowError
	Warnings  []string
}

// Normalizer validates and types raw movement records.
type Normalizer struct {
	Taxonomy *Taxonomy

	// CoerceNegatives applies the bank-feed policy: a negative amount
	// becomes its absolute value and the kind is forced to expense.
	// Outside imports a negative amount fails the record instead.
	CoerceNegatives bool
}

// Normalize processes a batch of raw records. Records that fail to
// parse or violate an invariant are dropped and reported; the batch
// always continues.
func (n *Normalizer) Normalize(raws []RawMovement) NormalizeResult {
	var res NormalizeResult
	for i, raw := range raws {
		m, warns, err := n.normalizeOne(raw)
		if err != nil {
			res.Failures = append(res.Failures, RowError{Index: i, Err: err})
			continue
		}
		res.Warnings = append(res.Warnings, warns...)
		res.Movements = append(res.Movements, m)
	}
	return res
}

// NormalizeOne validates a single raw record, for the form path where
// one bad row is the whole request.
func (n *Normalizer) NormalizeOne(raw RawMovement) (Movement, error) {
	m, _, err := n.normalizeOne(raw)
	return m, err
}

func (n *Normalizer) normalizeOne(raw RawMovement) (Movement, []string, error) {
	date, err := ParseDate(raw.Date)
	if err != nil {
		return Movement{}, nil, fmt.Errorf("parse date %q: %w", raw.Date, err)
	}
	kind, err := ParseKind(raw.Kind)
	if err != nil {
		return Movement{}, nil, fmt.Errorf("parse kind %q: %w", raw.Kind, err)
	}
	amount, err := ParseAmount(raw.Amount)
	if err != nil {
		return Movement{}, nil, fmt.Errorf("parse amount %q: %w", raw.Amount, err)
	}
	if amount.IsNegative() {
		if !n.CoerceNegatives {
			return Movement{}, nil, ErrNegativeAmount
		}
		amount = amount.Abs()
		kind = KindExpense
	}

	var warns []string
	category, known := n.Taxonomy.Resolve(raw.Subcategory)
	if !known && raw.Category != "" {
		// Explicit per-record override wins over the fallback.
		category = raw.Category
	} else if !known {
		warns = append(warns, fmt.Sprintf("subcategoria %q sin categoria, asignada %q", raw.Subcategory, category))
	}

	m := Movement{
		ID:          raw.ID,
		Date:        date,
		Kind:        kind,
		Amount:      amount,
		Account:     raw.Account,
		FromAccount: raw.FromAccount,
		ToAccount:   raw.ToAccount,
		Category:    category,
		Subcategory: raw.Subcategory,
		Note:        raw.Note,
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := m.Validate(); err != nil {
		return Movement{}, nil, err
	}
	return m, warns, nil
}

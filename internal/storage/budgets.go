package storage

import (
	"context"
	"fmt"

	"finanzas/internal/core"

	"github.com/shopspring/decimal"
)

// ListBudgetLines returns budget lines ordered by month then category.
// A non-nil month restricts the result to that month.
func (r *SQLiteRepository) ListBudgetLines(ctx context.Context, month *int) ([]core.BudgetLine, error) {
	query := "SELECT categoria, mes, importe FROM presupuestos"
	var args []any
	if month != nil {
		query += " WHERE mes = ?"
		args = append(args, *month)
	}
	query += " ORDER BY mes, categoria"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budget lines: %w", err)
	}
	defer rows.Close()

	var lines []core.BudgetLine
	for rows.Next() {
		var l core.BudgetLine
		var importe string
		if err := rows.Scan(&l.Category, &l.Month, &importe); err != nil {
			return nil, fmt.Errorf("list budget lines: %w", err)
		}
		if l.Amount, err = decimal.NewFromString(importe); err != nil {
			return nil, fmt.Errorf("budget %s/%d: bad amount %q: %w", l.Category, l.Month, importe, err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list budget lines: %w", err)
	}
	return lines, nil
}

// ReplaceBudgetLines swaps the whole budget table for the given set in
// one transaction. The budget editor saves the full grid at once.
func (r *SQLiteRepository) ReplaceBudgetLines(ctx context.Context, lines []core.BudgetLine) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace budget lines: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM presupuestos"); err != nil {
		return fmt.Errorf("replace budget lines: clear: %w", err)
	}
	for _, l := range lines {
		if l.Month < 1 || l.Month > 12 {
			return fmt.Errorf("replace budget lines: %s: month %d out of range", l.Category, l.Month)
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO presupuestos (categoria, mes, importe) VALUES (?, ?, ?)",
			l.Category, l.Month, l.Amount.String())
		if err != nil {
			return fmt.Errorf("replace budget lines: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace budget lines: commit: %w", err)
	}
	return nil
}

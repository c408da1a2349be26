package storage

import (
	"context"
	"fmt"

	"finanzas/internal/core"

	"github.com/shopspring/decimal"
)

func (r *SQLiteRepository) ListAccountGoals(ctx context.Context) ([]core.AccountGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, tipo, descripcion, cuenta, monto, fecha_limite FROM objetivos ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list account goals: %w", err)
	}
	defer rows.Close()

	var goals []core.AccountGoal
	for rows.Next() {
		var g core.AccountGoal
		var monto, deadline string
		if err := rows.Scan(&g.ID, &g.Type, &g.Description, &g.Account, &monto, &deadline); err != nil {
			return nil, fmt.Errorf("list account goals: %w", err)
		}
		if g.Target, err = decimal.NewFromString(monto); err != nil {
			return nil, fmt.Errorf("goal %d: bad target %q: %w", g.ID, monto, err)
		}
		if deadline != "" {
			if g.Deadline, err = core.ParseDate(deadline); err != nil {
				return nil, fmt.Errorf("goal %d: bad deadline %q: %w", g.ID, deadline, err)
			}
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list account goals: %w", err)
	}
	return goals, nil
}

// UpsertAccountGoal inserts the goal when ID is zero, updates it
// otherwise. Returns the stored ID.
func (r *SQLiteRepository) UpsertAccountGoal(ctx context.Context, g core.AccountGoal) (int64, error) {
	deadline := ""
	if !g.Deadline.IsZero() {
		deadline = g.Deadline.ISO()
	}
	if g.ID == 0 {
		res, err := r.db.ExecContext(ctx,
			"INSERT INTO objetivos (tipo, descripcion, cuenta, monto, fecha_limite) VALUES (?, ?, ?, ?, ?)",
			g.Type, g.Description, g.Account, g.Target.String(), deadline)
		if err != nil {
			return 0, fmt.Errorf("insert account goal: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("insert account goal: %w", err)
		}
		return id, nil
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE objetivos SET tipo = ?, descripcion = ?, cuenta = ?, monto = ?, fecha_limite = ? WHERE id = ?",
		g.Type, g.Description, g.Account, g.Target.String(), deadline, g.ID)
	if err != nil {
		return 0, fmt.Errorf("update account goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update account goal: %w", err)
	}
	if n == 0 {
		return 0, ErrNotFound
	}
	return g.ID, nil
}

func (r *SQLiteRepository) DeleteAccountGoal(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM objetivos WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete account goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account goal: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListSavingsGoals(ctx context.Context) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, nombre, meta, ahorrado FROM objetivos_financieros ORDER BY nombre")
	if err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	defer rows.Close()

	var goals []core.SavingsGoal
	for rows.Next() {
		var g core.SavingsGoal
		var meta, ahorrado string
		if err := rows.Scan(&g.ID, &g.Name, &meta, &ahorrado); err != nil {
			return nil, fmt.Errorf("list savings goals: %w", err)
		}
		if g.Target, err = decimal.NewFromString(meta); err != nil {
			return nil, fmt.Errorf("goal %s: bad target %q: %w", g.ID, meta, err)
		}
		if g.Saved, err = decimal.NewFromString(ahorrado); err != nil {
			return nil, fmt.Errorf("goal %s: bad saved amount %q: %w", g.ID, ahorrado, err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	return goals, nil
}

func (r *SQLiteRepository) UpsertSavingsGoal(ctx context.Context, g core.SavingsGoal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO objetivos_financieros (id, nombre, meta, ahorrado) VALUES (?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET nombre = excluded.nombre, meta = excluded.meta, ahorrado = excluded.ahorrado`,
		g.ID, g.Name, g.Target.String(), g.Saved.String())
	if err != nil {
		return fmt.Errorf("upsert savings goal: %w", err)
	}
	return nil
}

// UpdateSavedAmount records manual progress against a savings goal.
func (r *SQLiteRepository) UpdateSavedAmount(ctx context.Context, id string, saved decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE objetivos_financieros SET ahorrado = ? WHERE id = ?", saved.String(), id)
	if err != nil {
		return fmt.Errorf("update saved amount: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update saved amount: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteSavingsGoal(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM objetivos_financieros WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete savings goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete savings goal: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

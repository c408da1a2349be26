package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"finanzas/internal/core"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a row lookup matches nothing.
var ErrNotFound = errors.New("not found")

const movementColumns = "movimiento_id, fecha, tipo, importe, cuenta, desde, hacia, categoria, subcategoria, comentario"

func scanMovement(row interface{ Scan(...any) error }) (core.Movement, error) {
	var m core.Movement
	var fecha, tipo, importe string
	err := row.Scan(&m.ID, &fecha, &tipo, &importe, &m.Account, &m.FromAccount, &m.ToAccount, &m.Category, &m.Subcategory, &m.Note)
	if err != nil {
		return core.Movement{}, err
	}
	if m.Date, err = core.ParseDate(fecha); err != nil {
		return core.Movement{}, fmt.Errorf("movement %s: bad date %q: %w", m.ID, fecha, err)
	}
	m.Kind = core.Kind(tipo)
	if m.Amount, err = decimal.NewFromString(importe); err != nil {
		return core.Movement{}, fmt.Errorf("movement %s: bad amount %q: %w", m.ID, importe, err)
	}
	return m, nil
}

// ListMovements returns all movements, oldest first. A non-nil kind
// restricts the result to that kind.
func (r *SQLiteRepository) ListMovements(ctx context.Context, kind *core.Kind) ([]core.Movement, error) {
	query := "SELECT " + movementColumns + " FROM movimientos"
	var args []any
	if kind != nil {
		query += " WHERE tipo = ?"
		args = append(args, string(*kind))
	}
	query += " ORDER BY fecha, movimiento_id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var movements []core.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("list movements: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return movements, nil
}

func (r *SQLiteRepository) GetMovement(ctx context.Context, id string) (core.Movement, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+movementColumns+" FROM movimientos WHERE movimiento_id = ?", id)
	m, err := scanMovement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Movement{}, ErrNotFound
	}
	if err != nil {
		return core.Movement{}, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) InsertMovement(ctx context.Context, m core.Movement) error {
	if err := insertMovementTx(ctx, r.db, m); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Movement saved",
		"id", m.ID,
		"tipo", string(m.Kind),
		"importe", m.Amount.String(),
		"fecha", m.Date.ISO())
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertMovementTx(ctx context.Context, ex execer, m core.Movement) error {
	_, err := ex.ExecContext(ctx,
		"INSERT INTO movimientos ("+movementColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		m.ID, m.Date.ISO(), string(m.Kind), m.Amount.String(),
		m.Account, m.FromAccount, m.ToAccount, m.Category, m.Subcategory, m.Note)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateMovement(ctx context.Context, m core.Movement) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE movimientos
		 SET fecha = ?, tipo = ?, importe = ?, cuenta = ?, desde = ?, hacia = ?, categoria = ?, subcategoria = ?, comentario = ?
		 WHERE movimiento_id = ?`,
		m.Date.ISO(), string(m.Kind), m.Amount.String(),
		m.Account, m.FromAccount, m.ToAccount, m.Category, m.Subcategory, m.Note, m.ID)
	if err != nil {
		return fmt.Errorf("update movement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update movement: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteMovement(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM movimientos WHERE movimiento_id = ?", id)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceMovements swaps every movement of a kind for the given set in
// one transaction. The bulk import path uses this; nothing else should.
func (r *SQLiteRepository) ReplaceMovements(ctx context.Context, kind core.Kind, movements []core.Movement) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace movements: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM movimientos WHERE tipo = ?", string(kind)); err != nil {
		return fmt.Errorf("replace movements: clear: %w", err)
	}
	for _, m := range movements {
		if m.Kind != kind {
			return fmt.Errorf("replace movements: %s is a %s, expected %s", m.ID, m.Kind, kind)
		}
		if err := insertMovementTx(ctx, tx, m); err != nil {
			return fmt.Errorf("replace movements: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace movements: commit: %w", err)
	}

	slog.InfoContext(ctx, "Movements replaced", "tipo", string(kind), "count", len(movements))
	return nil
}

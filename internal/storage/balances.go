package storage

import (
	"context"
	"fmt"

	"finanzas/internal/core"

	"github.com/shopspring/decimal"
)

// ListAccountBalances returns every registered opening balance,
// ordered by account name.
func (r *SQLiteRepository) ListAccountBalances(ctx context.Context) ([]core.AccountBalance, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT cuenta, saldo_inicial FROM saldos_iniciales ORDER BY cuenta")
	if err != nil {
		return nil, fmt.Errorf("list account balances: %w", err)
	}
	defer rows.Close()

	var balances []core.AccountBalance
	for rows.Next() {
		var b core.AccountBalance
		var saldo string
		if err := rows.Scan(&b.Account, &saldo); err != nil {
			return nil, fmt.Errorf("list account balances: %w", err)
		}
		if b.Balance, err = decimal.NewFromString(saldo); err != nil {
			return nil, fmt.Errorf("account %s: bad balance %q: %w", b.Account, saldo, err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list account balances: %w", err)
	}
	return balances, nil
}

// UpsertAccountBalance registers an account or overwrites its opening
// balance.
func (r *SQLiteRepository) UpsertAccountBalance(ctx context.Context, b core.AccountBalance) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO saldos_iniciales (cuenta, saldo_inicial) VALUES (?, ?)
		 ON CONFLICT (cuenta) DO UPDATE SET saldo_inicial = excluded.saldo_inicial`,
		b.Account, b.Balance.String())
	if err != nil {
		return fmt.Errorf("upsert account balance: %w", err)
	}
	return nil
}

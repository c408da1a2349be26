package core

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Reconciler combines per-account opening balances with signed
// movement sums. Income and incoming transfers add, expenses and
// outgoing transfers subtract. It is built once per snapshot and only
// reads its inputs.
type Reconciler struct {
	opening   map[string]decimal.Decimal
	movements []Movement
	accounts  []string
	warnings  []string
}

// NewReconciler indexes the opening balances and the movement set.
// Accounts referenced by movements but missing from the roster get an
// opening balance of 0 and a data-integrity warning; accounts with an
// opening balance and no movements simply keep their opening balance.
func NewReconciler(openings []AccountBalance, movements []Movement) *Reconciler {
	r := &Reconciler{
		opening:   make(map[string]decimal.Decimal, len(openings)),
		movements: movements,
	}
	seen := map[string]struct{}{}
	add := func(account string) {
		if account == "" {
			return
		}
		if _, ok := seen[account]; ok {
			return
		}
		seen[account] = struct{}{}
		r.accounts = append(r.accounts, account)
	}
	for _, o := range openings {
		r.opening[o.Account] = o.Balance
		add(o.Account)
	}
	for _, m := range movements {
		for _, account := range []string{m.Account, m.FromAccount, m.ToAccount} {
			if account == "" {
				continue
			}
			if _, ok := r.opening[account]; !ok {
				if _, warned := seen[account]; !warned {
					r.warnings = append(r.warnings, fmt.Sprintf("cuenta %q sin saldo inicial, se asume 0", account))
				}
			}
			add(account)
		}
	}
	sort.Strings(r.accounts)
	return r
}

// Accounts returns every account known to the reconciler: the roster
// plus any account referenced by a movement.
func (r *Reconciler) Accounts() []string {
	return append([]string(nil), r.accounts...)
}

// Warnings returns the data-integrity warnings collected while
// indexing (accounts with movements but no opening-balance row).
func (r *Reconciler) Warnings() []string {
	return append([]string(nil), r.warnings...)
}

// BalanceAsOf computes the balance of an account counting movements
// dated on or before the cutoff.
func (r *Reconciler) BalanceAsOf(account string, cutoff Date) decimal.Decimal {
	return r.balance(account, func(d Date) bool { return !d.After(cutoff) })
}

// CurrentBalance computes the balance of an account as of today.
// Future-dated movements are left out until their date arrives.
func (r *Reconciler) CurrentBalance(account string) decimal.Decimal {
	return r.BalanceAsOf(account, Today())
}

func (r *Reconciler) balance(account string, include func(Date) bool) decimal.Decimal {
	balance := r.opening[account] // zero value when absent
	for _, m := range r.movements {
		if !include(m.Date) {
			continue
		}
		switch {
		case m.Kind == KindIncome && m.Account == account:
			balance = balance.Add(m.Amount)
		case m.Kind == KindExpense && m.Account == account:
			balance = balance.Sub(m.Amount)
		case m.Kind == KindTransfer && m.ToAccount == account:
			balance = balance.Add(m.Amount)
		case m.Kind == KindTransfer && m.FromAccount == account:
			balance = balance.Sub(m.Amount)
		}
	}
	return balance
}

// Balances returns the current balance of every known account, sorted
// by balance descending, the way the dashboard lists them.
func (r *Reconciler) Balances() []AccountBalance {
	out := make([]AccountBalance, 0, len(r.accounts))
	for _, account := range r.accounts {
		out = append(out, AccountBalance{Account: account, Balance: r.CurrentBalance(account)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Balance.GreaterThan(out[j].Balance)
	})
	return out
}

// Total sums the current balances of all accounts.
func (r *Reconciler) Total() decimal.Decimal {
	total := decimal.Zero
	for _, account := range r.accounts {
		total = total.Add(r.CurrentBalance(account))
	}
	return total
}

// MonthlySeries evaluates the account balance at each month end of the
// given year, producing the running-balance time series.
func (r *Reconciler) MonthlySeries(account string, year int) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, 12)
	for month := 1; month <= 12; month++ {
		// Day 0 of the next month normalizes to this month's last day.
		cutoff := NewDate(year, month+1, 0)
		out = append(out, r.BalanceAsOf(account, cutoff))
	}
	return out
}

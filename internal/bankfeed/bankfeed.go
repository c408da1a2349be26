// Package bankfeed turns raw bank statement rows into movement input,
// applying the import policy: transfer-looking lines are excluded and
// negative amounts become expenses.
package bankfeed

import (
	"strings"

	"finanzas/internal/core"
	"finanzas/internal/sheets"
)

// transferMarkers are the statement words that flag an internal money
// move rather than real income or spending.
var transferMarkers = []string{"transferencia", "traspaso", "deposito", "depósito"}

// MappedStatement is the outcome of mapping a statement: rows ready
// for normalization plus the rows the policy excluded.
type MappedStatement struct {
	Rows     []core.RawMovement
	Excluded []sheets.StatementRow
}

// IsTransferLike reports whether the statement description names an
// internal transfer.
func IsTransferLike(description string) bool {
	desc := strings.ToLower(description)
	for _, marker := range transferMarkers {
		if strings.Contains(desc, marker) {
			return true
		}
	}
	return false
}

// Map converts statement rows to raw movements. Descriptions that look
// like transfers are set aside; everything else is imported as income,
// with the normalizer later flipping negative amounts to expenses.
func Map(rows []sheets.StatementRow, defaultAccount string) MappedStatement {
	var out MappedStatement
	for _, row := range rows {
		if IsTransferLike(row.Description) {
			out.Excluded = append(out.Excluded, row)
			continue
		}
		account := row.Account
		if account == "" {
			account = defaultAccount
		}
		out.Rows = append(out.Rows, core.RawMovement{
			Date:    row.Date,
			Kind:    string(core.KindIncome),
			Amount:  row.Amount,
			Account: account,
			Note:    row.Description,
		})
	}
	return out
}

package sheets

import (
	"context"

	"finanzas/internal/core"
)

// StatementRow is one raw line of a bank statement sheet, untouched.
// Normalization happens downstream.
type StatementRow struct {
	Date        string
	Description string
	Amount      string
	Account     string
}

// Ports for outbound adapters.
type (
	// StatementReader pulls raw bank statement rows for import.
	StatementReader interface {
		ReadStatement(ctx context.Context) ([]StatementRow, error)
	}

	// MovementExporter mirrors the full movement set to an external
	// sheet. Implementations replace previous contents.
	MovementExporter interface {
		ExportMovements(ctx context.Context, movements []core.Movement) error
	}
)

// Package export renders movements for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"finanzas/internal/core"
)

var csvHeader = []string{"movimiento_id", "fecha", "tipo", "importe", "cuenta", "desde", "hacia", "categoria", "subcategoria", "comentario"}

// WriteCSV writes the movements matching the filter as CSV, header
// first, dates in ISO form and amounts as plain decimal strings so the
// file re-imports cleanly. The zero filter exports everything.
func WriteCSV(w io.Writer, movements []core.Movement, f core.Filter) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, m := range movements {
		if !f.Matches(m) {
			continue
		}
		record := []string{
			m.ID,
			m.Date.ISO(),
			string(m.Kind),
			m.Amount.String(),
			m.Account,
			m.FromAccount,
			m.ToAccount,
			m.Category,
			m.Subcategory,
			m.Note,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record %s: %w", m.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

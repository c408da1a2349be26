package memory

import (
	"context"
	"sync"

	"finanzas/internal/core"
	"finanzas/internal/sheets"
)

// Store is an in-memory stand-in for the Google Sheets adapter, used
// in tests and local development.
type Store struct {
	mu       sync.Mutex
	rows     []sheets.StatementRow
	exported []core.Movement
	exports  int
}

var (
	_ sheets.StatementReader  = (*Store)(nil)
	_ sheets.MovementExporter = (*Store)(nil)
)

func New(rows []sheets.StatementRow) *Store {
	return &Store{rows: rows}
}

func (s *Store) ReadStatement(_ context.Context) ([]sheets.StatementRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.StatementRow(nil), s.rows...), nil
}

func (s *Store) ExportMovements(_ context.Context, movements []core.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exported = append([]core.Movement(nil), movements...)
	s.exports++
	return nil
}

// Exported returns the last exported movement set.
func (s *Store) Exported() []core.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Movement(nil), s.exported...)
}

// ExportCount returns how many times ExportMovements ran.
func (s *Store) ExportCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exports
}

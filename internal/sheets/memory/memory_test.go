package memory

import (
	"context"
	"testing"

	"finanzas/internal/core"
	"finanzas/internal/sheets"

	"github.com/shopspring/decimal"
)

func TestStoreStatementRows(t *testing.T) {
	rows := []sheets.StatementRow{
		{Date: "2025-05-01", Description: "Supermercado", Amount: "-30,50", Account: "Vivir"},
	}
	s := New(rows)

	got, err := s.ReadStatement(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 1 || got[0].Description != "Supermercado" {
		t.Fatalf("unexpected rows: %+v", got)
	}

	// The returned slice must be a copy.
	got[0].Description = "mutated"
	again, _ := s.ReadStatement(context.Background())
	if again[0].Description != "Supermercado" {
		t.Fatalf("store leaked its internal slice")
	}
}

func TestStoreExport(t *testing.T) {
	s := New(nil)
	movs := []core.Movement{
		{ID: "1", Date: core.NewDate(2025, 1, 1), Kind: core.KindExpense, Amount: decimal.NewFromInt(10), Account: "Vivir", Category: "Casa"},
	}
	if err := s.ExportMovements(context.Background(), movs); err != nil {
		t.Fatalf("export: %v", err)
	}
	if err := s.ExportMovements(context.Background(), movs); err != nil {
		t.Fatalf("second export: %v", err)
	}
	if s.ExportCount() != 2 {
		t.Fatalf("export count = %d, want 2", s.ExportCount())
	}
	if got := s.Exported(); len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("unexpected export payload: %+v", got)
	}
}

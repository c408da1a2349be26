package services

import (
	"context"
	"path/filepath"
	"testing"

	"finanzas/internal/core"
	"finanzas/internal/sheets"
	"finanzas/internal/sheets/memory"
	"finanzas/internal/storage"

	"github.com/shopspring/decimal"
)

func newTestService(t *testing.T) *FinanceService {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "finanzas.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	svc := NewFinanceService(repo, nil, core.DefaultTaxonomy())
	t.Cleanup(func() { svc.Close() })
	return svc
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateMovement(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	m, err := svc.CreateMovement(ctx, core.RawMovement{
		Date: "2025-05-01", Kind: "Gasto", Amount: "20,50", Account: "Vivir", Subcategory: "Luz",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.ID == "" || m.Category != "Casa" || !m.Amount.Equal(dec("20.50")) {
		t.Fatalf("unexpected movement: %+v", m)
	}

	if _, err := svc.CreateMovement(ctx, core.RawMovement{
		Date: "2025-05-01", Kind: "Gasto", Amount: "-5", Account: "Vivir", Subcategory: "Luz",
	}); err == nil {
		t.Fatalf("negative amount should fail outside imports")
	}
}

func TestSaveGridEditsUpdatesByID(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateMovement(ctx, core.RawMovement{
		Date: "2025-05-01", Kind: "gasto", Amount: "20", Account: "Vivir", Subcategory: "Luz",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	other, err := svc.CreateMovement(ctx, core.RawMovement{
		Date: "2025-05-02", Kind: "gasto", Amount: "30", Account: "Vivir", Subcategory: "Agua",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := svc.SaveGridEdits(ctx, core.KindExpense, []core.RawMovement{
		{ID: created.ID, Date: "2025-05-01", Kind: "gasto", Amount: "25", Account: "Vivir", Subcategory: "Luz"},
		{Date: "2025-05-03", Kind: "gasto", Amount: "15", Account: "Lujo", Subcategory: "Viajes"},
	}, []string{other.ID})
	if err != nil {
		t.Fatalf("save grid: %v", err)
	}
	if len(res.Failures) != 0 {
		t.Fatalf("unexpected failures: %v", res.Failures)
	}

	snap, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Movements) != 2 {
		t.Fatalf("expected 2 movements after edit, got %+v", snap.Movements)
	}
	byID := map[string]core.Movement{}
	for _, m := range snap.Movements {
		byID[m.ID] = m
	}
	if !byID[created.ID].Amount.Equal(dec("25")) {
		t.Fatalf("edit not applied: %+v", byID[created.ID])
	}
	if _, gone := byID[other.ID]; gone {
		t.Fatalf("deleted row survived")
	}
}

func TestSaveGridEditsKeepsValidRowsPastFailures(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, err := svc.SaveGridEdits(ctx, core.KindExpense, []core.RawMovement{
		{Date: "bad-date", Kind: "gasto", Amount: "10", Account: "Vivir", Subcategory: "Luz"},
		{Date: "2025-05-01", Kind: "gasto", Amount: "10", Account: "Vivir", Subcategory: "Luz"},
	}, nil)
	if err != nil {
		t.Fatalf("save grid: %v", err)
	}
	if len(res.Failures) != 1 || res.Failures[0].Index != 0 {
		t.Fatalf("expected the first row to fail: %v", res.Failures)
	}
	snap, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Movements) != 1 {
		t.Fatalf("valid row should have been applied, got %+v", snap.Movements)
	}
}

func TestSnapshotReconciles(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.SaveAccountBalance(ctx, core.AccountBalance{Account: "Vivir", Balance: dec("1000")}); err != nil {
		t.Fatalf("save balance: %v", err)
	}
	if err := svc.SaveAccountBalance(ctx, core.AccountBalance{Account: "Remunerada", Balance: dec("0")}); err != nil {
		t.Fatalf("save balance: %v", err)
	}
	seeds := []core.RawMovement{
		{Date: "2025-02-10", Kind: "ingreso", Amount: "500", Account: "Vivir", Subcategory: "Nómina Sof"},
		{Date: "2025-03-05", Kind: "gasto", Amount: "200", Account: "Vivir", Subcategory: "Luz"},
		{Date: "2025-04-01", Kind: "transferencia", Amount: "100", FromAccount: "Vivir", ToAccount: "Remunerada", Category: "Otros"},
	}
	for _, raw := range seeds {
		if _, err := svc.CreateMovement(ctx, raw); err != nil {
			t.Fatalf("seed %v: %v", raw, err)
		}
	}

	snap, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if got := snap.Reconciler.CurrentBalance("Vivir"); !got.Equal(dec("1200")) {
		t.Fatalf("Vivir = %s, want 1200", got)
	}
	if got := snap.Reconciler.CurrentBalance("Remunerada"); !got.Equal(dec("100")) {
		t.Fatalf("Remunerada = %s, want 100", got)
	}
}

func TestImportStatement(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// A pre-existing transfer must survive the import.
	if _, err := svc.CreateMovement(ctx, core.RawMovement{
		Date: "2025-04-01", Kind: "transferencia", Amount: "100",
		FromAccount: "Vivir", ToAccount: "Remunerada", Category: "Otros",
	}); err != nil {
		t.Fatalf("seed transfer: %v", err)
	}

	reader := memory.New([]sheets.StatementRow{
		{Date: "2025-05-01", Description: "Supermercado", Amount: "-30,50", Account: "Vivir"},
		{Date: "2025-05-02", Description: "Transferencia a ahorro", Amount: "-200,00", Account: "Vivir"},
		{Date: "2025-05-03", Description: "Nómina", Amount: "1500,00"},
		{Date: "not-a-date", Description: "Rota", Amount: "1"},
	})

	res, err := svc.ImportStatement(ctx, reader, "Vivir")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if res.Imported != 2 || res.Excluded != 1 || len(res.Failures) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	snap, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	var expenses, incomes, transfers int
	for _, m := range snap.Movements {
		switch m.Kind {
		case core.KindExpense:
			expenses++
			if !m.Amount.Equal(dec("30.50")) {
				t.Fatalf("negative amount not coerced: %+v", m)
			}
		case core.KindIncome:
			incomes++
		case core.KindTransfer:
			transfers++
		}
	}
	if expenses != 1 || incomes != 1 || transfers != 1 {
		t.Fatalf("unexpected mix: %d gastos, %d ingresos, %d transferencias", expenses, incomes, transfers)
	}
}

func TestGoalRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	id, err := svc.SaveAccountGoal(ctx, core.AccountGoal{
		Type: "Ahorro", Description: "Colchón", Account: "Remunerada", Target: dec("6000"),
	})
	if err != nil {
		t.Fatalf("save account goal: %v", err)
	}

	if err := svc.SaveSavingsGoal(ctx, core.SavingsGoal{ID: "g-1", Name: "Viaje", Target: dec("2000")}); err != nil {
		t.Fatalf("save savings goal: %v", err)
	}
	if err := svc.RecordSavings(ctx, "g-1", dec("500")); err != nil {
		t.Fatalf("record savings: %v", err)
	}

	snap, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.AccountGoals) != 1 || snap.AccountGoals[0].ID != id {
		t.Fatalf("unexpected account goals: %+v", snap.AccountGoals)
	}
	if len(snap.SavingsGoals) != 1 || !snap.SavingsGoals[0].Saved.Equal(dec("500")) {
		t.Fatalf("unexpected savings goals: %+v", snap.SavingsGoals)
	}

	if err := svc.DeleteAccountGoal(ctx, id); err != nil {
		t.Fatalf("delete account goal: %v", err)
	}
	if err := svc.DeleteSavingsGoal(ctx, "g-1"); err != nil {
		t.Fatalf("delete savings goal: %v", err)
	}
}

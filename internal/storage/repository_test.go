package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"finanzas/internal/core"

	"github.com/shopspring/decimal"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "finanzas.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestMovementRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	m := core.Movement{
		ID:          "m-1",
		Date:        core.NewDate(2025, 3, 5),
		Kind:        core.KindExpense,
		Amount:      dec("42.50"),
		Account:     "Vivir",
		Category:    "Casa",
		Subcategory: "Luz",
		Note:        "factura marzo",
	}
	if err := repo.InsertMovement(ctx, m); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.GetMovement(ctx, "m-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Date.ISO() != "2025-03-05" || got.Kind != core.KindExpense || !got.Amount.Equal(dec("42.50")) {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
	if got.Account != "Vivir" || got.Category != "Casa" || got.Note != "factura marzo" {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}

	got.Amount = dec("40")
	got.Note = "corregida"
	if err := repo.UpdateMovement(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = repo.GetMovement(ctx, "m-1")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if !got.Amount.Equal(dec("40")) || got.Note != "corregida" {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := repo.DeleteMovement(ctx, "m-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetMovement(ctx, "m-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListMovementsByKind(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	movements := []core.Movement{
		{ID: "a", Date: core.NewDate(2025, 1, 2), Kind: core.KindExpense, Amount: dec("10"), Account: "Vivir", Category: "Casa"},
		{ID: "b", Date: core.NewDate(2025, 1, 1), Kind: core.KindExpense, Amount: dec("20"), Account: "Vivir", Category: "Casa"},
		{ID: "c", Date: core.NewDate(2025, 1, 3), Kind: core.KindIncome, Amount: dec("100"), Account: "Vivir", Category: "Nómina"},
	}
	for _, m := range movements {
		if err := repo.InsertMovement(ctx, m); err != nil {
			t.Fatalf("insert %s: %v", m.ID, err)
		}
	}

	all, err := repo.ListMovements(ctx, nil)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 || all[0].ID != "b" || all[2].ID != "c" {
		t.Fatalf("wrong order or count: %+v", all)
	}

	kind := core.KindExpense
	expenses, err := repo.ListMovements(ctx, &kind)
	if err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	if len(expenses) != 2 {
		t.Fatalf("expected 2 expenses, got %d", len(expenses))
	}
}

func TestReplaceMovementsIsScopedToKind(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := []core.Movement{
		{ID: "e1", Date: core.NewDate(2025, 1, 1), Kind: core.KindExpense, Amount: dec("10"), Account: "Vivir", Category: "Casa"},
		{ID: "i1", Date: core.NewDate(2025, 1, 1), Kind: core.KindIncome, Amount: dec("100"), Account: "Vivir", Category: "Nómina"},
	}
	for _, m := range seed {
		if err := repo.InsertMovement(ctx, m); err != nil {
			t.Fatalf("insert %s: %v", m.ID, err)
		}
	}

	replacement := []core.Movement{
		{ID: "e2", Date: core.NewDate(2025, 2, 1), Kind: core.KindExpense, Amount: dec("30"), Account: "Lujo", Category: "Ocio"},
	}
	if err := repo.ReplaceMovements(ctx, core.KindExpense, replacement); err != nil {
		t.Fatalf("replace: %v", err)
	}

	all, err := repo.ListMovements(ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected income to survive, got %+v", all)
	}
	if _, err := repo.GetMovement(ctx, "e1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("old expense should be gone, got %v", err)
	}
	if _, err := repo.GetMovement(ctx, "i1"); err != nil {
		t.Fatalf("income should survive: %v", err)
	}
}

func TestReplaceMovementsRejectsMixedKinds(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.ReplaceMovements(context.Background(), core.KindExpense, []core.Movement{
		{ID: "x", Date: core.NewDate(2025, 1, 1), Kind: core.KindIncome, Amount: dec("1"), Account: "Vivir", Category: "Nómina"},
	})
	if err == nil {
		t.Fatalf("expected mixed-kind replacement to fail")
	}
}

func TestAccountBalanceUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.UpsertAccountBalance(ctx, core.AccountBalance{Account: "Vivir", Balance: dec("1000")}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.UpsertAccountBalance(ctx, core.AccountBalance{Account: "Vivir", Balance: dec("1500")}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	balances, err := repo.ListAccountBalances(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(balances) != 1 || !balances[0].Balance.Equal(dec("1500")) {
		t.Fatalf("expected single overwritten row, got %+v", balances)
	}
}

func TestBudgetLinesReplaceAndFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	lines := []core.BudgetLine{
		{Category: "Casa", Month: 1, Amount: dec("300")},
		{Category: "Casa", Month: 2, Amount: dec("310")},
		{Category: "Ocio", Month: 1, Amount: dec("100")},
	}
	if err := repo.ReplaceBudgetLines(ctx, lines); err != nil {
		t.Fatalf("replace: %v", err)
	}

	month := 1
	january, err := repo.ListBudgetLines(ctx, &month)
	if err != nil {
		t.Fatalf("list january: %v", err)
	}
	if len(january) != 2 {
		t.Fatalf("expected 2 january lines, got %+v", january)
	}

	if err := repo.ReplaceBudgetLines(ctx, []core.BudgetLine{{Category: "Casa", Month: 13, Amount: dec("1")}}); err == nil {
		t.Fatalf("expected out-of-range month to fail")
	}
	// Failed replace must not have wiped the table.
	all, err := repo.ListBudgetLines(ctx, nil)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("failed replace should roll back, got %+v", all)
	}
}

func TestGoalLifecycles(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.UpsertAccountGoal(ctx, core.AccountGoal{
		Type:        "Ahorro",
		Description: "Colchón de emergencia",
		Account:     "Remunerada",
		Target:      dec("6000"),
		Deadline:    core.NewDate(2026, 12, 31),
	})
	if err != nil {
		t.Fatalf("insert account goal: %v", err)
	}
	if id == 0 {
		t.Fatalf("expected assigned id")
	}

	goals, err := repo.ListAccountGoals(ctx)
	if err != nil {
		t.Fatalf("list account goals: %v", err)
	}
	if len(goals) != 1 || goals[0].Deadline.ISO() != "2026-12-31" {
		t.Fatalf("unexpected goals: %+v", goals)
	}

	sg := core.SavingsGoal{ID: "g-1", Name: "Viaje", Target: dec("2000"), Saved: dec("0")}
	if err := repo.UpsertSavingsGoal(ctx, sg); err != nil {
		t.Fatalf("upsert savings goal: %v", err)
	}
	if err := repo.UpdateSavedAmount(ctx, "g-1", dec("500")); err != nil {
		t.Fatalf("update saved: %v", err)
	}
	saved, err := repo.ListSavingsGoals(ctx)
	if err != nil {
		t.Fatalf("list savings goals: %v", err)
	}
	if len(saved) != 1 || !saved[0].Saved.Equal(dec("500")) {
		t.Fatalf("unexpected savings goals: %+v", saved)
	}

	if err := repo.DeleteAccountGoal(ctx, id); err != nil {
		t.Fatalf("delete account goal: %v", err)
	}
	if err := repo.DeleteSavingsGoal(ctx, "g-1"); err != nil {
		t.Fatalf("delete savings goal: %v", err)
	}
	if err := repo.DeleteSavingsGoal(ctx, "g-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

package core

import (
	"strings"
	"testing"
)

func testMovements() []Movement {
	return []Movement{
		{ID: "1", Date: NewDate(2025, 2, 10), Kind: KindIncome, Amount: dec("500"), Account: "Vivir", Category: "Nómina", Subcategory: "Nómina Sof"},
		{ID: "2", Date: NewDate(2025, 3, 5), Kind: KindExpense, Amount: dec("200"), Account: "Vivir", Category: "Casa", Subcategory: "Luz"},
		{ID: "3", Date: NewDate(2025, 4, 1), Kind: KindTransfer, Amount: dec("100"), FromAccount: "Vivir", ToAccount: "Remunerada", Category: "Otros"},
	}
}

func TestCurrentBalanceScenario(t *testing.T) {
	r := NewReconciler([]AccountBalance{
		{Account: "Vivir", Balance: dec("1000")},
		{Account: "Remunerada", Balance: dec("0")},
	}, testMovements())

	if got := r.CurrentBalance("Vivir"); !got.Equal(dec("1200")) {
		t.Fatalf("Vivir = %s, want 1200", got)
	}
	if got := r.CurrentBalance("Remunerada"); !got.Equal(dec("100")) {
		t.Fatalf("Remunerada = %s, want 100", got)
	}
	if warns := r.Warnings(); len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
}

func TestCurrentBalanceSkipsFutureMovements(t *testing.T) {
	movements := append(testMovements(),
		Movement{ID: "9", Date: NewDate(3000, 1, 1), Kind: KindExpense, Amount: dec("999"), Account: "Vivir", Category: "Otros", Subcategory: "Otros"})
	r := NewReconciler([]AccountBalance{{Account: "Vivir", Balance: dec("1000")}}, movements)

	if got := r.CurrentBalance("Vivir"); !got.Equal(dec("1200")) {
		t.Fatalf("Vivir = %s, want 1200 without the future expense", got)
	}
	if got := r.BalanceAsOf("Vivir", NewDate(3000, 12, 31)); !got.Equal(dec("201")) {
		t.Fatalf("Vivir as of 3000 = %s, want 201", got)
	}
}

func TestBalanceAsOfCutoff(t *testing.T) {
	r := NewReconciler([]AccountBalance{{Account: "Vivir", Balance: dec("1000")}}, testMovements())

	cases := []struct {
		cutoff Date
		want   string
	}{
		{NewDate(2025, 1, 31), "1000"}, // before any movement
		{NewDate(2025, 2, 10), "1500"}, // cutoff date inclusive
		{NewDate(2025, 3, 31), "1300"},
		{NewDate(2025, 12, 31), "1200"},
	}
	for _, tc := range cases {
		if got := r.BalanceAsOf("Vivir", tc.cutoff); !got.Equal(dec(tc.want)) {
			t.Fatalf("BalanceAsOf(%s) = %s, want %s", tc.cutoff.ISO(), got, tc.want)
		}
	}
}

func TestMissingOpeningBalanceDefaultsToZero(t *testing.T) {
	// "Remunerada" is referenced by a transfer but absent from the roster.
	r := NewReconciler([]AccountBalance{{Account: "Vivir", Balance: dec("1000")}}, testMovements())

	if got := r.CurrentBalance("Remunerada"); !got.Equal(dec("100")) {
		t.Fatalf("Remunerada = %s, want 100", got)
	}
	warns := r.Warnings()
	if len(warns) != 1 || !strings.Contains(warns[0], "Remunerada") {
		t.Fatalf("expected one warning about Remunerada, got %v", warns)
	}
}

func TestOpeningBalanceWithoutMovements(t *testing.T) {
	r := NewReconciler([]AccountBalance{{Account: "Efectivo", Balance: dec("50")}}, nil)
	if got := r.CurrentBalance("Efectivo"); !got.Equal(dec("50")) {
		t.Fatalf("Efectivo = %s, want opening 50", got)
	}
}

func TestBalancesSortedDescending(t *testing.T) {
	r := NewReconciler([]AccountBalance{
		{Account: "Vivir", Balance: dec("1000")},
		{Account: "Remunerada", Balance: dec("0")},
	}, testMovements())

	balances := r.Balances()
	if len(balances) != 2 {
		t.Fatalf("expected 2 accounts, got %d", len(balances))
	}
	if balances[0].Account != "Vivir" || balances[1].Account != "Remunerada" {
		t.Fatalf("wrong order: %v", balances)
	}
	if !r.Total().Equal(dec("1300")) {
		t.Fatalf("total = %s, want 1300", r.Total())
	}
}

func TestMonthlySeriesAccumulates(t *testing.T) {
	r := NewReconciler([]AccountBalance{{Account: "Vivir", Balance: dec("1000")}}, testMovements())

	series := r.MonthlySeries("Vivir", 2025)
	if len(series) != 12 {
		t.Fatalf("expected 12 entries, got %d", len(series))
	}
	want := []string{"1000", "1500", "1300", "1200"}
	for i, w := range want {
		if !series[i].Equal(dec(w)) {
			t.Fatalf("month %d = %s, want %s", i+1, series[i], w)
		}
	}
	// Stays flat after the last movement.
	if !series[11].Equal(dec("1200")) {
		t.Fatalf("december = %s, want 1200", series[11])
	}
}

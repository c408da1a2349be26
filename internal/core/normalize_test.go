package core

import (
	"strings"
	"testing"
)

func TestNormalizeBatchContinuesPastBadRows(t *testing.T) {
	n := &Normalizer{Taxonomy: DefaultTaxonomy()}
	res := n.Normalize([]RawMovement{
		{Date: "2025-05-01", Kind: "gasto", Amount: "20,00", Account: "Vivir", Subcategory: "Luz"},
		{Date: "not-a-date", Kind: "gasto", Amount: "10", Account: "Vivir", Subcategory: "Luz"},
		{Date: "2025-05-02", Kind: "gasto", Amount: "-10", Account: "Vivir", Subcategory: "Luz"},
		{Date: "2025-05-03", Kind: "ingreso", Amount: "1000", Account: "Vivir", Subcategory: "Nómina Sof"},
	})
	if len(res.Movements) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(res.Movements))
	}
	if len(res.Failures) != 2 {
		t.Fatalf("expected 2 failures, got %d: %v", len(res.Failures), res.Failures)
	}
	if res.Failures[0].Index != 1 || res.Failures[1].Index != 2 {
		t.Fatalf("failure indices wrong: %v", res.Failures)
	}
}

func TestNormalizeResolvesCategoryFromSubcategory(t *testing.T) {
	n := &Normalizer{Taxonomy: DefaultTaxonomy()}

	m, err := n.NormalizeOne(RawMovement{
		Date: "2025-05-01", Kind: "gasto", Amount: "5", Account: "Vivir", Subcategory: "Combustible",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Category != "Transporte" {
		t.Fatalf("category = %q, want Transporte", m.Category)
	}
	if m.ID == "" {
		t.Fatalf("expected an assigned id")
	}
}

func TestNormalizeUnknownSubcategoryFallsBack(t *testing.T) {
	n := &Normalizer{Taxonomy: DefaultTaxonomy()}

	res := n.Normalize([]RawMovement{
		{Date: "2025-05-01", Kind: "gasto", Amount: "5", Account: "Vivir", Subcategory: "Groceries"},
	})
	if len(res.Movements) != 1 {
		t.Fatalf("expected 1 movement, got %d (%v)", len(res.Movements), res.Failures)
	}
	if got := res.Movements[0].Category; got != CategoryFallback {
		t.Fatalf("category = %q, want %q", got, CategoryFallback)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "Groceries") {
		t.Fatalf("expected a warning naming the subcategory, got %v", res.Warnings)
	}
}

func TestNormalizeExplicitCategoryOverride(t *testing.T) {
	n := &Normalizer{Taxonomy: DefaultTaxonomy()}

	m, err := n.NormalizeOne(RawMovement{
		Date: "2025-05-01", Kind: "gasto", Amount: "5", Account: "Vivir",
		Subcategory: "Groceries", Category: "Casa",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Category != "Casa" {
		t.Fatalf("category = %q, want the explicit override", m.Category)
	}
}

func TestNormalizeCoercesNegativesForBankFeeds(t *testing.T) {
	n := &Normalizer{Taxonomy: DefaultTaxonomy(), CoerceNegatives: true}

	m, err := n.NormalizeOne(RawMovement{
		Date: "2025-05-01", Kind: "ingreso", Amount: "-45,00", Account: "Vivir", Subcategory: "Otros",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Kind != KindExpense {
		t.Fatalf("kind = %q, want gasto", m.Kind)
	}
	if !m.Amount.Equal(dec("45")) {
		t.Fatalf("amount = %s, want 45", m.Amount)
	}
}

func TestNormalizeRejectsAccountConflicts(t *testing.T) {
	n := &Normalizer{Taxonomy: DefaultTaxonomy()}

	res := n.Normalize([]RawMovement{
		// transfer with a plain account set as well
		{Date: "2025-05-01", Kind: "transferencia", Amount: "5", Account: "Vivir",
			FromAccount: "Vivir", ToAccount: "Remunerada", Subcategory: "Otros"},
		// non-transfer with transfer accounts
		{Date: "2025-05-01", Kind: "gasto", Amount: "5", Account: "Vivir",
			ToAccount: "Remunerada", Subcategory: "Otros"},
	})
	if len(res.Movements) != 0 || len(res.Failures) != 2 {
		t.Fatalf("expected both rows to fail, got %d ok / %d failed", len(res.Movements), len(res.Failures))
	}
}

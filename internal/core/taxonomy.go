package core

import "strings"

// CategoryFallback is assigned when a subcategory has no mapping. The
// dataset already uses "Otros" as a real category, so unknown
// subcategories land in the same bucket the forms offer.
const CategoryFallback = "Otros"

// Taxonomy is the fixed subcategory→category lookup. It is built once
// at startup and never mutated afterwards; both the normalizer and the
// form option lists read from the same instance.
type Taxonomy struct {
	bySub      map[string]string
	categories []string
}

// NewTaxonomy builds a taxonomy from a subcategory→category map. The
// category list is derived from the mapping values, deduplicated in
// first-seen order.
func NewTaxonomy(bySub map[string]string) *Taxonomy {
	t := &Taxonomy{bySub: make(map[string]string, len(bySub))}
	seen := map[string]struct{}{}
	for sub, cat := range bySub {
		t.bySub[strings.TrimSpace(sub)] = strings.TrimSpace(cat)
	}
	for _, cat := range t.bySub {
		if _, ok := seen[cat]; ok {
			continue
		}
		seen[cat] = struct{}{}
		t.categories = append(t.categories, cat)
	}
	return t
}

// Resolve returns the category for a subcategory and whether the
// subcategory was known. Unknown subcategories resolve to
// CategoryFallback.
func (t *Taxonomy) Resolve(subcategory string) (string, bool) {
	cat, ok := t.bySub[strings.TrimSpace(subcategory)]
	if !ok || cat == "" {
		return CategoryFallback, false
	}
	return cat, true
}

// Subcategories returns the known subcategories, for option lists.
func (t *Taxonomy) Subcategories() []string {
	out := make([]string, 0, len(t.bySub))
	for sub := range t.bySub {
		out = append(out, sub)
	}
	return out
}

// Categories returns the known categories, for option lists.
func (t *Taxonomy) Categories() []string {
	return append([]string(nil), t.categories...)
}

// DefaultTaxonomy is the household classification the forms offer.
func DefaultTaxonomy() *Taxonomy {
	return NewTaxonomy(map[string]string{
		"Cesta":              "Casa",
		"Luz":                "Casa",
		"Agua":               "Casa",
		"Letra coche":        "Casa",
		"Internet y movil":   "Casa",
		"Hipoteca":           "Casa",
		"Impuestos":          "Casa",
		"Colegio":            "Casa",
		"Limpieza":           "Casa",
		"Restauración":       "Ocio",
		"Viajes":             "Ocio",
		"Eventos":            "Ocio",
		"Combustible":        "Transporte",
		"Aparcamiento":       "Transporte",
		"Otros transporte":   "Transporte",
		"Farmacia":           "Salud",
		"Médico":             "Salud",
		"Cuidados":           "Salud",
		"Moda":               "Adquisiciones",
		"Hogar":              "Adquisiciones",
		"Libros":             "Adquisiciones",
		"Nómina Sof":         "Nómina",
		"Nómina Vic":         "Nómina",
		"Vanguard":           "Empresa",
		"Inversiones":        "Empresa",
		"Venta de productos": "Empresa",
		"YouTube":            "Empresa",
		"Digital":            "Empresa",
		"Afiliaciones":       "Empresa",
		"Donaciones":         "Regalos",
		"Devoluciones":       "Otros",
		"Otros":              "Otros",
		"Contabilidad":       "Contabilidad",
	})
}

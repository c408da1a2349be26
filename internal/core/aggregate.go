package core

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DimCategory    Dimension = "categoria"
	DimSubcategory Dimension = "subcategoria"
	DimAccount     Dimension = "cuenta"
	DimYear        Dimension = "año"
	DimMonth       Dimension = "mes"
	DimKind        Dimension = "tipo"
)

const (
	ReduceSum   Reduce = "sum"
	ReduceMean  Reduce = "mean"
	ReduceCount Reduce = "count"
	ReduceMax   Reduce = "max"
)

type (
	// Dimension is a grouping axis for Aggregate.
	Dimension string

	// Reduce selects how matched amounts collapse into one value.
	Reduce string

	// Filter restricts the movement set before grouping.
	Filter struct {
		Kind Kind   // zero value matches every kind
		From Date   // zero value leaves the range open
		To   Date   // inclusive
		Text string // case-insensitive substring over all fields
	}

	// Group is one aggregation bucket: the key tuple in groupBy order
	// and the reduced value.
	Group struct {
		Key   []string
		Value decimal.Decimal
	}

	// BudgetVariance is one row of the budget-vs-actual comparison.
	BudgetVariance struct {
		Category   string
		Budget     decimal.Decimal
		Actual     decimal.Decimal
		Difference decimal.Decimal // Budget - Actual
	}

	// MonthStats are the headline figures for one month of movements.
	MonthStats struct {
		Total     decimal.Decimal
		DailyMean decimal.Decimal // total / distinct movement days
		Largest   decimal.Decimal
	}

	// YearNet is the net savings (income - expense) of one year.
	YearNet struct {
		Year int
		Net  decimal.Decimal
	}
)

// Matches reports whether a movement passes the filter.
func (f Filter) Matches(m Movement) bool {
	if f.Kind != "" && m.Kind != f.Kind {
		return false
	}
	if !f.From.IsZero() && m.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && m.Date.After(f.To) {
		return false
	}
	if f.Text != "" {
		needle := strings.ToLower(f.Text)
		haystack := strings.ToLower(strings.Join([]string{
			m.Date.ISO(), string(m.Kind), m.Account, m.FromAccount,
			m.ToAccount, m.Category, m.Subcategory, m.Note,
			m.Amount.String(),
		}, " "))
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}

func dimensionKey(m Movement, dim Dimension) string {
	switch dim {
	case DimCategory:
		return m.Category
	case DimSubcategory:
		return m.Subcategory
	case DimAccount:
		return m.Account
	case DimYear:
		return strconv.Itoa(m.Date.Year())
	case DimMonth:
		return strconv.Itoa(m.Date.Month())
	case DimKind:
		return string(m.Kind)
	}
	return ""
}

// Aggregate filters the movements, groups them by the requested
// dimensions and reduces each bucket's amounts. The result is sorted
// by key tuple for stable output; ranking consumers re-sort by value
// via TopN. Calling it twice on the same input yields the same pairs.
func Aggregate(movements []Movement, groupBy []Dimension, f Filter, reduce Reduce) []Group {
	type bucket struct {
		key   []string
		sum   decimal.Decimal
		max   decimal.Decimal
		count int64
	}
	buckets := map[string]*bucket{}
	for _, m := range movements {
		if !f.Matches(m) {
			continue
		}
		key := make([]string, len(groupBy))
		for i, dim := range groupBy {
			key[i] = dimensionKey(m, dim)
		}
		id := strings.Join(key, "\x1f")
		b, ok := buckets[id]
		if !ok {
			b = &bucket{key: key}
			buckets[id] = b
		}
		b.sum = b.sum.Add(m.Amount)
		if m.Amount.GreaterThan(b.max) {
			b.max = m.Amount
		}
		b.count++
	}

	out := make([]Group, 0, len(buckets))
	for _, b := range buckets {
		var value decimal.Decimal
		switch reduce {
		case ReduceMean:
			// count is always > 0 for an existing bucket
			value = b.sum.Div(decimal.NewFromInt(b.count))
		case ReduceCount:
			value = decimal.NewFromInt(b.count)
		case ReduceMax:
			value = b.max
		default:
			value = b.sum
		}
		out = append(out, Group{Key: b.key, Value: value})
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Join(out[i].Key, "\x1f") < strings.Join(out[j].Key, "\x1f")
	})
	return out
}

// TopN sorts groups by value descending and truncates to n entries.
func TopN(groups []Group, n int) []Group {
	out := append([]Group(nil), groups...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Value.GreaterThan(out[j].Value)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// CompareBudget outer-joins budget lines against actual expenses per
// category. A category present on either side appears exactly once,
// with the missing side defaulted to 0. The filter is applied to the
// movements with the kind forced to expense.
func CompareBudget(budgets []BudgetLine, movements []Movement, f Filter) []BudgetVariance {
	f.Kind = KindExpense

	budgeted := map[string]decimal.Decimal{}
	for _, b := range budgets {
		budgeted[b.Category] = budgeted[b.Category].Add(b.Amount)
	}
	actual := map[string]decimal.Decimal{}
	for _, g := range Aggregate(movements, []Dimension{DimCategory}, f, ReduceSum) {
		actual[g.Key[0]] = g.Value
	}

	categories := map[string]struct{}{}
	for cat := range budgeted {
		categories[cat] = struct{}{}
	}
	for cat := range actual {
		categories[cat] = struct{}{}
	}

	out := make([]BudgetVariance, 0, len(categories))
	for cat := range categories {
		budget := budgeted[cat]
		spent := actual[cat]
		out = append(out, BudgetVariance{
			Category:   cat,
			Budget:     budget,
			Actual:     spent,
			Difference: budget.Sub(spent),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// ExecutionPct is the share of the budget already spent, in percent.
// A zero budget yields 0 instead of dividing.
func (v BudgetVariance) ExecutionPct() float64 {
	if v.Budget.IsZero() {
		return 0
	}
	pct, _ := v.Actual.Div(v.Budget).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

// MeanPerDay divides the matched total by the number of distinct dates
// with at least one matching movement, not by calendar days. No
// matches yields 0.
func MeanPerDay(movements []Movement, f Filter) decimal.Decimal {
	total := decimal.Zero
	days := map[string]struct{}{}
	for _, m := range movements {
		if !f.Matches(m) {
			continue
		}
		total = total.Add(m.Amount)
		days[m.Date.ISO()] = struct{}{}
	}
	if len(days) == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(len(days))))
}

// ComputeMonthStats produces the headline metrics a movements tab
// shows for its month: total, mean per movement day, largest single
// movement.
func ComputeMonthStats(movements []Movement, f Filter) MonthStats {
	stats := MonthStats{DailyMean: MeanPerDay(movements, f)}
	for _, m := range movements {
		if !f.Matches(m) {
			continue
		}
		stats.Total = stats.Total.Add(m.Amount)
		if m.Amount.GreaterThan(stats.Largest) {
			stats.Largest = m.Amount
		}
	}
	return stats
}

// MonthlyNetSeries returns income minus expense for each month of a
// year, twelve entries, months without movements at 0.
func MonthlyNetSeries(movements []Movement, year int) []decimal.Decimal {
	out := make([]decimal.Decimal, 12)
	for _, m := range movements {
		if m.Date.Year() != year {
			continue
		}
		idx := m.Date.Month() - 1
		switch m.Kind {
		case KindIncome:
			out[idx] = out[idx].Add(m.Amount)
		case KindExpense:
			out[idx] = out[idx].Sub(m.Amount)
		}
	}
	return out
}

// CumulativeSum folds a series into its running total.
func CumulativeSum(series []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(series))
	running := decimal.Zero
	for i, v := range series {
		running = running.Add(v)
		out[i] = running
	}
	return out
}

// YearlyNet returns net savings per year, ascending by year.
func YearlyNet(movements []Movement) []YearNet {
	byYear := map[int]decimal.Decimal{}
	for _, m := range movements {
		year := m.Date.Year()
		switch m.Kind {
		case KindIncome:
			byYear[year] = byYear[year].Add(m.Amount)
		case KindExpense:
			byYear[year] = byYear[year].Sub(m.Amount)
		}
	}
	out := make([]YearNet, 0, len(byYear))
	for year, net := range byYear {
		out = append(out, YearNet{Year: year, Net: net})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// SavingsRatePct is (income - expense) / income as a percentage over
// the filtered movements. Zero income yields 0, never an error.
func SavingsRatePct(movements []Movement, f Filter) float64 {
	income, expense := decimal.Zero, decimal.Zero
	for _, m := range movements {
		if !f.Matches(m) {
			continue
		}
		switch m.Kind {
		case KindIncome:
			income = income.Add(m.Amount)
		case KindExpense:
			expense = expense.Add(m.Amount)
		}
	}
	if income.IsZero() {
		return 0
	}
	pct, _ := income.Sub(expense).Div(income).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

// IncomeExpenseRatio is total income divided by total expense over the
// filtered movements. Zero expense yields 0, never an error.
func IncomeExpenseRatio(movements []Movement, f Filter) float64 {
	income, expense := decimal.Zero, decimal.Zero
	for _, m := range movements {
		if !f.Matches(m) {
			continue
		}
		switch m.Kind {
		case KindIncome:
			income = income.Add(m.Amount)
		case KindExpense:
			expense = expense.Add(m.Amount)
		}
	}
	if expense.IsZero() {
		return 0
	}
	ratio, _ := income.Div(expense).Float64()
	return ratio
}

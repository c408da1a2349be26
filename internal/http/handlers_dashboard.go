package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finanzas/internal/core"

	"github.com/shopspring/decimal"
)

// monthRange returns the inclusive date bounds of a month.
func monthRange(year, month int) (core.Date, core.Date) {
	from := core.NewDate(year, month, 1)
	to := core.NewDate(year, month+1, 0)
	return from, to
}

type balanceRow struct {
	Account string
	Balance string
}

type budgetRow struct {
	Category   string
	Budget     string
	Actual     string
	Difference string
	Execution  int
	Over       bool
}

// handleDashboard renders the balances, month stats and budget
// comparison partial.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	year, month := parseYearMonth(r)

	snap, err := s.snapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard snapshot error", "error", err, "year", year, "month", month)
		_, _ = w.Write([]byte(`<section id="dashboard"><div class="placeholder">Error cargando el panel</div></section>`))
		return
	}

	from, to := monthRange(year, month)
	expenseFilter := core.Filter{Kind: core.KindExpense, From: from, To: to}
	stats := core.ComputeMonthStats(snap.Movements, expenseFilter)

	var monthBudgets []core.BudgetLine
	for _, l := range snap.Budgets {
		if l.Month == month {
			monthBudgets = append(monthBudgets, l)
		}
	}
	variances := core.CompareBudget(monthBudgets, snap.Movements, core.Filter{From: from, To: to})

	data := struct {
		Year        int
		Month       int
		Total       string
		Balances    []balanceRow
		Warnings    []string
		MonthTotal  string
		DailyMean   string
		Largest     string
		SavingsRate string
		Ratio       string
		Budgets     []budgetRow
	}{
		Year:        year,
		Month:       month,
		Total:       core.FormatEuros(snap.Reconciler.Total()),
		Warnings:    snap.Reconciler.Warnings(),
		MonthTotal:  core.FormatEuros(stats.Total),
		DailyMean:   core.FormatEuros(stats.DailyMean),
		Largest:     core.FormatEuros(stats.Largest),
		SavingsRate: strconv.FormatFloat(core.SavingsRatePct(snap.Movements, core.Filter{From: from, To: to}), 'f', 1, 64),
		Ratio:       strconv.FormatFloat(core.IncomeExpenseRatio(snap.Movements, core.Filter{From: from, To: to}), 'f', 2, 64),
	}
	for _, b := range snap.Reconciler.Balances() {
		data.Balances = append(data.Balances, balanceRow{Account: b.Account, Balance: core.FormatEuros(b.Balance)})
	}
	for _, v := range variances {
		data.Budgets = append(data.Budgets, budgetRow{
			Category:   v.Category,
			Budget:     core.FormatEuros(v.Budget),
			Actual:     core.FormatEuros(v.Actual),
			Difference: core.FormatEuros(v.Difference),
			Execution:  int(v.ExecutionPct()),
			Over:       v.Difference.IsNegative(),
		})
	}

	s.renderPartial(w, r, "dashboard.html", data, "Error mostrando el panel")
}

// handleRanking renders the top spending subcategories for a month.
func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	year, month := parseYearMonth(r)

	snap, err := s.snapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Ranking snapshot error", "error", err)
		_, _ = w.Write([]byte(`<section id="ranking"><div class="placeholder">Error cargando el ranking</div></section>`))
		return
	}

	from, to := monthRange(year, month)
	groups := core.Aggregate(snap.Movements,
		[]core.Dimension{core.DimSubcategory},
		core.Filter{Kind: core.KindExpense, From: from, To: to, Text: strings.TrimSpace(r.URL.Query().Get("q"))},
		core.ReduceSum)
	top := core.TopN(groups, 10)

	type row struct {
		Name   string
		Amount string
		Width  int
	}
	data := struct {
		Year  int
		Month int
		Rows  []row
	}{Year: year, Month: month}

	var max decimal.Decimal
	if len(top) > 0 {
		max = top[0].Value
	}
	for _, g := range top {
		width := 0
		if max.IsPositive() {
			pct, _ := g.Value.Div(max).Mul(decimal.NewFromInt(100)).Float64()
			width = int(pct)
			if width > 0 && width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		data.Rows = append(data.Rows, row{Name: g.Key[0], Amount: core.FormatEuros(g.Value), Width: width})
	}

	s.renderPartial(w, r, "ranking.html", data, "Error mostrando el ranking")
}

// handleProjection renders the compound projection table.
func (s *Server) handleProjection(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	q := r.URL.Query()

	initial, err := core.ParseAmount(valueOr(q.Get("inicial"), "0"))
	if err != nil {
		http.Error(w, "importe inicial no válido", http.StatusUnprocessableEntity)
		return
	}
	monthly, err := core.ParseAmount(valueOr(q.Get("mensual"), "0"))
	if err != nil {
		http.Error(w, "aportación mensual no válida", http.StatusUnprocessableEntity)
		return
	}
	rate, err := core.ParseAmount(valueOr(q.Get("interes"), "0"))
	if err != nil {
		http.Error(w, "interés no válido", http.StatusUnprocessableEntity)
		return
	}
	years, err := strconv.Atoi(valueOr(q.Get("anos"), "10"))
	if err != nil || years < 0 || years > 80 {
		http.Error(w, "horizonte no válido", http.StatusUnprocessableEntity)
		return
	}

	series := core.Project(initial, monthly, rate, years)

	type point struct {
		Year  int
		Value string
	}
	data := struct {
		Years  int
		Final  string
		Points []point
	}{Years: years}
	if len(series) > 0 {
		data.Final = core.FormatEuros(series[len(series)-1])
	} else {
		data.Final = core.FormatEuros(initial)
	}
	for y := 1; y*12 <= len(series); y++ {
		data.Points = append(data.Points, point{Year: time.Now().Year() + y, Value: core.FormatEuros(series[y*12-1])})
	}

	s.renderPartial(w, r, "projection.html", data, "Error mostrando la proyección")
}

// historyFilter builds the movement filter for the history view:
// year plus an optional kind, quarter or month, and free text. The
// quarter wins over the month when both are present.
func historyFilter(r *http.Request, year int) core.Filter {
	q := r.URL.Query()
	f := core.Filter{
		From: core.NewDate(year, 1, 1),
		To:   core.NewDate(year, 12, 31),
		Text: strings.TrimSpace(q.Get("q")),
	}
	if kind, err := core.ParseKind(q.Get("tipo")); err == nil {
		f.Kind = kind
	}
	if quarter, err := strconv.Atoi(q.Get("trimestre")); err == nil && quarter >= 1 && quarter <= 4 {
		f.From = core.NewDate(year, (quarter-1)*3+1, 1)
		f.To = core.NewDate(year, quarter*3+1, 0)
	} else if month, err := strconv.Atoi(q.Get("month")); err == nil && month >= 1 && month <= 12 {
		f.From, f.To = monthRange(year, month)
	}
	return f
}

// handleHistory renders the history partial: the filtered movement
// table, monthly nets with their accumulation, and per-year totals.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	year, _ := parseYearMonth(r)

	snap, err := s.snapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "History snapshot error", "error", err)
		_, _ = w.Write([]byte(`<section id="history"><div class="placeholder">Error cargando el histórico</div></section>`))
		return
	}

	monthly := core.MonthlyNetSeries(snap.Movements, year)
	cumulative := core.CumulativeSum(monthly)

	type movementRow struct {
		Date        string
		Kind        string
		Amount      string
		Account     string
		Category    string
		Subcategory string
		Note        string
	}
	type monthRow struct {
		Month      int
		Net        string
		Cumulative string
	}
	type yearRow struct {
		Year int
		Net  string
	}
	data := struct {
		Year      int
		Movements []movementRow
		Truncated bool
		Months    []monthRow
		Years     []yearRow
	}{Year: year}

	const maxRows = 200
	f := historyFilter(r, year)
	for i := len(snap.Movements) - 1; i >= 0; i-- {
		m := snap.Movements[i]
		if !f.Matches(m) {
			continue
		}
		if len(data.Movements) == maxRows {
			data.Truncated = true
			break
		}
		account := m.Account
		if m.Kind == core.KindTransfer {
			account = m.FromAccount + " → " + m.ToAccount
		}
		data.Movements = append(data.Movements, movementRow{
			Date:        m.Date.ISO(),
			Kind:        string(m.Kind),
			Amount:      core.FormatEuros(m.Amount),
			Account:     account,
			Category:    m.Category,
			Subcategory: m.Subcategory,
			Note:        m.Note,
		})
	}

	for i := range monthly {
		data.Months = append(data.Months, monthRow{
			Month:      i + 1,
			Net:        core.FormatEuros(monthly[i]),
			Cumulative: core.FormatEuros(cumulative[i]),
		})
	}
	for _, y := range core.YearlyNet(snap.Movements) {
		data.Years = append(data.Years, yearRow{Year: y.Year, Net: core.FormatEuros(y.Net)})
	}

	s.renderPartial(w, r, "history.html", data, "Error mostrando el histórico")
}

func (s *Server) renderPartial(w http.ResponseWriter, r *http.Request, name string, data any, fallback string) {
	if s.templates == nil {
		_, _ = w.Write([]byte(`<div class="placeholder">` + fallback + `</div>`))
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution error", "error", err, "template", name)
		_, _ = w.Write([]byte(`<div class="placeholder">` + fallback + `</div>`))
	}
}

func valueOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

package http

import (
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"finanzas/internal/core"
	"finanzas/internal/export"
)

func (s *Server) handleCreateMovement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "method", r.Method, "url", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Formato de solicitud no válido</div>`))
		return
	}

	raw := core.RawMovement{
		Date:        sanitizeInput(r.Form.Get("fecha")),
		Kind:        sanitizeInput(r.Form.Get("tipo")),
		Amount:      sanitizeInput(r.Form.Get("importe")),
		Account:     sanitizeInput(r.Form.Get("cuenta")),
		FromAccount: sanitizeInput(r.Form.Get("desde")),
		ToAccount:   sanitizeInput(r.Form.Get("hacia")),
		Category:    sanitizeInput(r.Form.Get("categoria")),
		Subcategory: sanitizeInput(r.Form.Get("subcategoria")),
		Note:        sanitizeInput(r.Form.Get("comentario")),
	}

	m, err := s.svc.CreateMovement(r.Context(), raw)
	if err != nil {
		slog.WarnContext(r.Context(), "Movement rejected", "error", err, "tipo", raw.Kind, "importe", raw.Amount)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Datos no válidos: ` + template.HTMLEscapeString(err.Error()) + `</div>`))
		return
	}

	s.invalidateSnapshot()
	w.Header().Set("HX-Trigger", "movements:changed")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Movimiento registrado: ` +
		template.HTMLEscapeString(string(m.Kind)) +
		` ` + template.HTMLEscapeString(core.FormatEuros(m.Amount)) +
		` (` + template.HTMLEscapeString(m.Category) + `)</div>`))
}

// gridSaveRequest is the JSON payload of the grid editor.
type gridSaveRequest struct {
	Kind    string    `json:"tipo"`
	Rows    []gridRow `json:"rows"`
	Deleted []string  `json:"deleted"`
}

type gridRow struct {
	ID          string `json:"movimiento_id"`
	Date        string `json:"fecha"`
	Amount      string `json:"importe"`
	Account     string `json:"cuenta"`
	FromAccount string `json:"desde"`
	ToAccount   string `json:"hacia"`
	Category    string `json:"categoria"`
	Subcategory string `json:"subcategoria"`
	Note        string `json:"comentario"`
}

type gridSaveResponse struct {
	Saved    int      `json:"saved"`
	Failures []string `json:"failures,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func (s *Server) handleSaveGrid(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req gridSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	kind, err := core.ParseKind(req.Kind)
	if err != nil {
		http.Error(w, "unknown movement kind", http.StatusBadRequest)
		return
	}

	raws := make([]core.RawMovement, 0, len(req.Rows))
	for _, row := range req.Rows {
		raws = append(raws, core.RawMovement{
			ID:          row.ID,
			Date:        sanitizeInput(row.Date),
			Kind:        string(kind),
			Amount:      sanitizeInput(row.Amount),
			Account:     sanitizeInput(row.Account),
			FromAccount: sanitizeInput(row.FromAccount),
			ToAccount:   sanitizeInput(row.ToAccount),
			Category:    sanitizeInput(row.Category),
			Subcategory: sanitizeInput(row.Subcategory),
			Note:        sanitizeInput(row.Note),
		})
	}

	res, err := s.svc.SaveGridEdits(r.Context(), kind, raws, req.Deleted)
	if err != nil {
		slog.ErrorContext(r.Context(), "Grid save error", "error", err, "tipo", string(kind))
		http.Error(w, "failed to save changes", http.StatusInternalServerError)
		return
	}

	s.invalidateSnapshot()

	resp := gridSaveResponse{
		Saved:    len(res.Movements) + len(req.Deleted),
		Warnings: res.Warnings,
	}
	for _, f := range res.Failures {
		resp.Failures = append(resp.Failures, f.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("HX-Trigger", "movements:changed")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleImportStatement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.reader == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`<div class="error">Importación no configurada</div>`))
		return
	}

	res, err := s.svc.ImportStatement(r.Context(), s.reader, s.importDefaultAccount)
	if err != nil {
		slog.ErrorContext(r.Context(), "Statement import error", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Error importando el extracto</div>`))
		return
	}

	s.invalidateSnapshot()
	w.Header().Set("HX-Trigger", "movements:changed")

	if s.templates != nil {
		if err := s.templates.ExecuteTemplate(w, "import_result.html", res); err == nil {
			return
		}
	}
	_, _ = w.Write([]byte(`<div class="success">Extracto importado</div>`))
}

// exportPeriod builds the period filter for /export.csv. Without
// query parameters the full history is exported; year narrows to that
// year, year plus month to that month.
func exportPeriod(r *http.Request) (core.Filter, string) {
	q := r.URL.Query()
	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		return core.Filter{}, "movimientos.csv"
	}
	if month, err := strconv.Atoi(q.Get("month")); err == nil && month >= 1 && month <= 12 {
		from, to := monthRange(year, month)
		return core.Filter{From: from, To: to}, fmt.Sprintf("movimientos-%04d-%02d.csv", year, month)
	}
	return core.Filter{From: core.NewDate(year, 1, 1), To: core.NewDate(year, 12, 31)},
		fmt.Sprintf("movimientos-%04d.csv", year)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshot(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Export snapshot error", "error", err)
		http.Error(w, "failed to load movements", http.StatusInternalServerError)
		return
	}

	f, filename := exportPeriod(r)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.WriteCSV(w, snap.Movements, f); err != nil {
		slog.ErrorContext(r.Context(), "CSV export error", "error", err)
	}
}

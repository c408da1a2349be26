package http

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"finanzas/internal/core"

	"github.com/google/uuid"
)

type budgetSaveRequest struct {
	Lines []struct {
		Category string `json:"categoria"`
		Month    int    `json:"mes"`
		Amount   string `json:"importe"`
	} `json:"lines"`
}

// handleSaveBudget replaces the whole budget grid.
func (s *Server) handleSaveBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req budgetSaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	lines := make([]core.BudgetLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		amount, err := core.ParseAmount(l.Amount)
		if err != nil {
			http.Error(w, "importe no válido para "+l.Category, http.StatusUnprocessableEntity)
			return
		}
		lines = append(lines, core.BudgetLine{
			Category: sanitizeInput(l.Category),
			Month:    l.Month,
			Amount:   amount,
		})
	}

	if err := s.svc.SaveBudget(r.Context(), lines); err != nil {
		slog.ErrorContext(r.Context(), "Budget save error", "error", err)
		http.Error(w, "failed to save budget", http.StatusInternalServerError)
		return
	}

	s.invalidateSnapshot()
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"saved":` + strconv.Itoa(len(lines)) + `}`))
}

// handleSaveBalance registers an account with its opening balance.
func (s *Server) handleSaveBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Formato de solicitud no válido</div>`))
		return
	}

	account := sanitizeInput(r.Form.Get("cuenta"))
	if account == "" {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">La cuenta es obligatoria</div>`))
		return
	}
	balance, err := core.ParseAmount(r.Form.Get("saldo_inicial"))
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Saldo inicial no válido</div>`))
		return
	}

	if err := s.svc.SaveAccountBalance(r.Context(), core.AccountBalance{Account: account, Balance: balance}); err != nil {
		slog.ErrorContext(r.Context(), "Balance save error", "error", err, "cuenta", account)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Error guardando el saldo</div>`))
		return
	}

	s.invalidateSnapshot()
	w.Header().Set("HX-Trigger", "movements:changed")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Cuenta ` + template.HTMLEscapeString(account) + ` guardada</div>`))
}

// handleAccountGoal creates, updates or deletes a target balance for
// an account.
func (s *Server) handleAccountGoal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Formato de solicitud no válido</div>`))
		return
	}

	if del := r.Form.Get("eliminar"); del != "" {
		id, err := strconv.ParseInt(del, 10, 64)
		if err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`<div class="error">Identificador no válido</div>`))
			return
		}
		if err := s.svc.DeleteAccountGoal(r.Context(), id); err != nil {
			slog.ErrorContext(r.Context(), "Account goal delete error", "error", err, "id", id)
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`<div class="error">Error eliminando el objetivo</div>`))
			return
		}
		s.invalidateSnapshot()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="success">Objetivo eliminado</div>`))
		return
	}

	goal := core.AccountGoal{
		Type:        sanitizeInput(r.Form.Get("tipo")),
		Description: sanitizeInput(r.Form.Get("descripcion")),
		Account:     sanitizeInput(r.Form.Get("cuenta")),
	}
	if v := r.Form.Get("id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			goal.ID = id
		}
	}
	target, err := core.ParseAmount(r.Form.Get("monto"))
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Monto no válido</div>`))
		return
	}
	goal.Target = target
	if v := sanitizeInput(r.Form.Get("fecha_limite")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`<div class="error">Fecha límite no válida</div>`))
			return
		}
		goal.Deadline = d
	}

	if _, err := s.svc.SaveAccountGoal(r.Context(), goal); err != nil {
		slog.ErrorContext(r.Context(), "Account goal save error", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Error guardando el objetivo</div>`))
		return
	}

	s.invalidateSnapshot()
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Objetivo guardado</div>`))
}

// handleSavingsGoal creates, updates, records progress on, or deletes
// a manually tracked savings goal.
func (s *Server) handleSavingsGoal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`<div class="error">Formato de solicitud no válido</div>`))
		return
	}

	id := sanitizeInput(r.Form.Get("id"))

	if r.Form.Get("eliminar") != "" {
		if err := s.svc.DeleteSavingsGoal(r.Context(), id); err != nil {
			slog.ErrorContext(r.Context(), "Savings goal delete error", "error", err, "id", id)
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`<div class="error">Error eliminando el objetivo</div>`))
			return
		}
		s.invalidateSnapshot()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="success">Objetivo eliminado</div>`))
		return
	}

	// Progress-only update: just the saved amount changes.
	if r.Form.Get("nombre") == "" && r.Form.Get("ahorrado") != "" {
		saved, err := core.ParseAmount(r.Form.Get("ahorrado"))
		if err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`<div class="error">Importe ahorrado no válido</div>`))
			return
		}
		if err := s.svc.RecordSavings(r.Context(), id, saved); err != nil {
			slog.ErrorContext(r.Context(), "Savings progress error", "error", err, "id", id)
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`<div class="error">Error registrando el ahorro</div>`))
			return
		}
		s.invalidateSnapshot()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="success">Ahorro registrado</div>`))
		return
	}

	goal := core.SavingsGoal{
		ID:   id,
		Name: sanitizeInput(r.Form.Get("nombre")),
	}
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	target, err := core.ParseAmount(r.Form.Get("meta"))
	if err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`<div class="error">Meta no válida</div>`))
		return
	}
	goal.Target = target
	if v := r.Form.Get("ahorrado"); v != "" {
		saved, err := core.ParseAmount(v)
		if err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`<div class="error">Importe ahorrado no válido</div>`))
			return
		}
		goal.Saved = saved
	}

	if err := s.svc.SaveSavingsGoal(r.Context(), goal); err != nil {
		slog.ErrorContext(r.Context(), "Savings goal save error", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`<div class="error">Error guardando el objetivo</div>`))
		return
	}

	s.invalidateSnapshot()
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<div class="success">Objetivo guardado</div>`))
}

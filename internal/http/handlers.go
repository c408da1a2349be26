package http

import (
	"log/slog"
	"net/http"
	"time"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var accounts []string
	if snap, err := s.snapshot(r.Context()); err == nil {
		accounts = snap.Reconciler.Accounts()
	} else {
		slog.ErrorContext(r.Context(), "Snapshot load error", "error", err)
	}

	tax := s.svc.Taxonomy()
	now := time.Now()
	data := struct {
		Today         string
		Year          int
		Month         int
		Accounts      []string
		Categories    []string
		Subcategories []string
		Kinds         []string
	}{
		Today:         now.Format("2006-01-02"),
		Year:          now.Year(),
		Month:         int(now.Month()),
		Accounts:      accounts,
		Categories:    tax.Categories(),
		Subcategories: tax.Subcategories(),
		Kinds:         []string{"ingreso", "gasto", "transferencia"},
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

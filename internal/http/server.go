package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	applog "finanzas/internal/log"
	"finanzas/internal/services"
	"finanzas/internal/sheets"
	appweb "finanzas/web"
)

type Server struct {
	http.Server
	templates   *template.Template
	svc         *services.FinanceService
	reader      sheets.StatementReader // nil when sheets are not configured
	rateLimiter *rateLimiter

	// Dashboard snapshots are cheap to rebuild but every partial asks
	// for one, so they get a short-lived cache.
	snapshotCache *lruCache[*services.Snapshot]

	importDefaultAccount string

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

const snapshotCacheKey = "snapshot"

// NewServer configures routes and templates, returning a ready-to-run
// http.Server. reader may be nil; the import endpoint then reports the
// integration as unavailable.
func NewServer(addr string, svc *services.FinanceService, reader sheets.StatementReader, importDefaultAccount string) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		svc:                  svc,
		reader:               reader,
		rateLimiter:          newRateLimiter(),
		snapshotCache:        newLRUCache[*services.Snapshot](4, 30*time.Second),
		importDefaultAccount: importDefaultAccount,
		stopCacheCleanup:     make(chan struct{}),
	}

	go s.startCacheCleanup()

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.withSecurityHeaders(s.handleIndex))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/movements", s.withSecurityHeaders(s.handleCreateMovement))
	mux.HandleFunc("/movements/grid", s.withSecurityHeaders(s.handleSaveGrid))
	mux.HandleFunc("/movements/import", s.withSecurityHeaders(s.handleImportStatement))
	mux.HandleFunc("/export.csv", s.withSecurityHeaders(s.handleExportCSV))

	mux.HandleFunc("/budget", s.withSecurityHeaders(s.handleSaveBudget))
	mux.HandleFunc("/balances", s.withSecurityHeaders(s.handleSaveBalance))
	mux.HandleFunc("/goals/account", s.withSecurityHeaders(s.handleAccountGoal))
	mux.HandleFunc("/goals/savings", s.withSecurityHeaders(s.handleSavingsGoal))

	// UI partials
	mux.HandleFunc("/ui/dashboard", s.withSecurityHeaders(s.handleDashboard))
	mux.HandleFunc("/ui/ranking", s.withSecurityHeaders(s.handleRanking))
	mux.HandleFunc("/ui/projection", s.withSecurityHeaders(s.handleProjection))
	mux.HandleFunc("/ui/history", s.withSecurityHeaders(s.handleHistory))

	// Every request carries a component logger enriched with its id.
	httpLogger := applog.New(applog.Config{Component: applog.ComponentHTTP})
	requestID := func(*http.Request) string { return generateRequestID() }
	s.Server.Handler = applog.Middleware(httpLogger)(applog.RequestIDMiddleware(requestID)(mux))

	return s
}

func (s *Server) startCacheCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if cleaned := s.snapshotCache.CleanExpired(); cleaned > 0 {
				slog.Debug("Cache cleanup completed", "entries_removed", cleaned)
			}
		case <-s.stopCacheCleanup:
			return
		}
	}
}

// Shutdown stops the server plus its background cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.stopCacheCleanup != nil {
			close(s.stopCacheCleanup)
		}
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// snapshot returns the cached dashboard snapshot, loading it when
// missing or stale. Write handlers call invalidateSnapshot.
func (s *Server) snapshot(ctx context.Context) (*services.Snapshot, error) {
	if snap, found := s.snapshotCache.Get(snapshotCacheKey); found {
		slog.DebugContext(ctx, "Snapshot cache hit")
		return snap, nil
	}

	cctx, cancel := context.WithTimeout(ctx, 7*time.Second)
	defer cancel()
	snap, err := s.svc.Snapshot(cctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	s.snapshotCache.Set(snapshotCacheKey, snap)
	return snap, nil
}

func (s *Server) invalidateSnapshot() {
	s.snapshotCache.Delete(snapshotCacheKey)
}

// withSecurityHeaders adds security headers, rate limiting and request
// logging. The request-id-enriched logger comes from the middleware
// chain installed in NewServer.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ip := clientIP(r)
		logger := applog.FromContext(r.Context())

		logger.InfoContext(r.Context(), "Request started",
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", ip,
			"user_agent", r.Header.Get("User-Agent"))

		if r.Method == http.MethodPost && !s.rateLimiter.allow(ip) {
			logger.WarnContext(r.Context(), "Rate limit exceeded", "client_ip", ip, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		logger.InfoContext(r.Context(), "Request completed",
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", ip)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

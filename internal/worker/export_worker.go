package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/sheets"
	"finanzas/internal/storage"
)

// ExportWorker mirrors the movement set to a Google sheet. It reacts
// to change messages and additionally runs a periodic full export so
// lost messages are eventually repaired.
type ExportWorker struct {
	storage  *storage.SQLiteRepository
	exporter sheets.MovementExporter
	interval time.Duration
}

func NewExportWorker(repo *storage.SQLiteRepository, exporter sheets.MovementExporter, interval time.Duration) *ExportWorker {
	return &ExportWorker{
		storage:  repo,
		exporter: exporter,
		interval: interval,
	}
}

// HandleChangeMessage processes a single change notification. The
// message carries no data; the worker reloads everything and pushes
// the full set.
func (w *ExportWorker) HandleChangeMessage(ctx context.Context, msg *amqp.MovementsChangedMessage) error {
	slog.InfoContext(ctx, "Processing change message",
		"kind", msg.Kind,
		"count", msg.Count,
		"sent_at", msg.Timestamp.Format(time.RFC3339))

	return w.ExportAll(ctx)
}

// ExportAll loads every movement and replaces the export sheet.
func (w *ExportWorker) ExportAll(ctx context.Context) error {
	movements, err := w.storage.ListMovements(ctx, nil)
	if err != nil {
		return fmt.Errorf("load movements for export: %w", err)
	}

	if err := w.exporter.ExportMovements(ctx, movements); err != nil {
		return fmt.Errorf("export movements: %w", err)
	}

	slog.InfoContext(ctx, "Full export completed", "count", len(movements))
	return nil
}

// RunPeriodic exports on the configured interval until ctx ends. An
// initial export runs immediately to recover from downtime.
func (w *ExportWorker) RunPeriodic(ctx context.Context) error {
	if err := w.ExportAll(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup export failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping periodic export", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.ExportAll(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic export failed", "error", err)
			}
		}
	}
}

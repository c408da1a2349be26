package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finanzas/internal/amqp"
	"finanzas/internal/bankfeed"
	"finanzas/internal/core"
	"finanzas/internal/sheets"
	"finanzas/internal/storage"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// FinanceService orchestrates movement operations across SQLite and
// AMQP. Writes land locally first; the change notification is best
// effort and never fails the request.
type FinanceService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
	normalizer *core.Normalizer
}

func NewFinanceService(repo *storage.SQLiteRepository, amqpClient *amqp.Client, taxonomy *core.Taxonomy) *FinanceService {
	return &FinanceService{
		storage:    repo,
		amqpClient: amqpClient,
		normalizer: &core.Normalizer{Taxonomy: taxonomy},
	}
}

// Taxonomy exposes the category mapping for form option lists.
func (s *FinanceService) Taxonomy() *core.Taxonomy {
	return s.normalizer.Taxonomy
}

// CreateMovement validates a single raw record and stores it.
func (s *FinanceService) CreateMovement(ctx context.Context, raw core.RawMovement) (core.Movement, error) {
	m, err := s.normalizer.NormalizeOne(raw)
	if err != nil {
		return core.Movement{}, fmt.Errorf("normalize movement: %w", err)
	}
	if err := s.storage.InsertMovement(ctx, m); err != nil {
		return core.Movement{}, fmt.Errorf("save movement: %w", err)
	}
	s.publishChange(ctx, string(m.Kind), 1)
	return m, nil
}

// SaveGridEdits applies edited rows and deletions from a grid of one
// kind. Each row updates its existing movement by id, or is inserted
// when the id is new. Rows that fail validation are reported in the
// result and skipped; valid rows are still applied.
func (s *FinanceService) SaveGridEdits(ctx context.Context, kind core.Kind, raws []core.RawMovement, deletedIDs []string) (core.NormalizeResult, error) {
	res := s.normalizer.Normalize(raws)

	applied := 0
	for _, m := range res.Movements {
		if m.Kind != kind {
			return res, fmt.Errorf("save grid: movement %s is a %s, expected %s", m.ID, m.Kind, kind)
		}
		err := s.storage.UpdateMovement(ctx, m)
		if errors.Is(err, storage.ErrNotFound) {
			err = s.storage.InsertMovement(ctx, m)
		}
		if err != nil {
			return res, fmt.Errorf("save grid: %w", err)
		}
		applied++
	}
	for _, id := range deletedIDs {
		if err := s.storage.DeleteMovement(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return res, fmt.Errorf("save grid: delete %s: %w", id, err)
		}
		applied++
	}

	if applied > 0 {
		s.publishChange(ctx, string(kind), applied)
	}
	return res, nil
}

// DeleteMovement removes one movement by id.
func (s *FinanceService) DeleteMovement(ctx context.Context, id string) error {
	m, err := s.storage.GetMovement(ctx, id)
	if err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	if err := s.storage.DeleteMovement(ctx, id); err != nil {
		return fmt.Errorf("delete movement: %w", err)
	}
	s.publishChange(ctx, string(m.Kind), 1)
	return nil
}

// Snapshot is everything the dashboard needs, loaded in one shot.
type Snapshot struct {
	Movements       []core.Movement
	OpeningBalances []core.AccountBalance
	Budgets         []core.BudgetLine
	AccountGoals    []core.AccountGoal
	SavingsGoals    []core.SavingsGoal
	Reconciler      *core.Reconciler
}

// Snapshot loads movements, balances, budgets and goals concurrently
// and wires up the balance reconciler.
func (s *FinanceService) Snapshot(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		snap.Movements, err = s.storage.ListMovements(ctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		snap.OpeningBalances, err = s.storage.ListAccountBalances(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Budgets, err = s.storage.ListBudgetLines(ctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		snap.AccountGoals, err = s.storage.ListAccountGoals(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.SavingsGoals, err = s.storage.ListSavingsGoals(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	snap.Reconciler = core.NewReconciler(snap.OpeningBalances, snap.Movements)
	return &snap, nil
}

// ImportResult reports what a statement import did.
type ImportResult struct {
	Imported int
	Excluded int
	Failures []core.RowError
	Warnings []string
}

// ImportStatement reads the bank statement sheet and replaces the
// income and expense sets with its contents. The statement is the
// source of truth for those kinds; transfers are never imported and
// stay untouched.
func (s *FinanceService) ImportStatement(ctx context.Context, reader sheets.StatementReader, defaultAccount string) (ImportResult, error) {
	rows, err := reader.ReadStatement(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read statement: %w", err)
	}

	mapped := bankfeed.Map(rows, defaultAccount)
	importer := &core.Normalizer{Taxonomy: s.normalizer.Taxonomy, CoerceNegatives: true}
	res := importer.Normalize(mapped.Rows)

	byKind := map[core.Kind][]core.Movement{}
	for _, m := range res.Movements {
		byKind[m.Kind] = append(byKind[m.Kind], m)
	}
	for _, kind := range []core.Kind{core.KindIncome, core.KindExpense} {
		if err := s.storage.ReplaceMovements(ctx, kind, byKind[kind]); err != nil {
			return ImportResult{}, fmt.Errorf("import statement: %w", err)
		}
		s.publishChange(ctx, string(kind), len(byKind[kind]))
	}

	slog.InfoContext(ctx, "Statement imported",
		"imported", len(res.Movements),
		"excluded", len(mapped.Excluded),
		"failed", len(res.Failures))

	return ImportResult{
		Imported: len(res.Movements),
		Excluded: len(mapped.Excluded),
		Failures: res.Failures,
		Warnings: res.Warnings,
	}, nil
}

// SaveBudget replaces the whole budget table.
func (s *FinanceService) SaveBudget(ctx context.Context, lines []core.BudgetLine) error {
	if err := s.storage.ReplaceBudgetLines(ctx, lines); err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	return nil
}

// SaveAccountBalance registers or overwrites an account's opening
// balance.
func (s *FinanceService) SaveAccountBalance(ctx context.Context, b core.AccountBalance) error {
	if err := s.storage.UpsertAccountBalance(ctx, b); err != nil {
		return fmt.Errorf("save account balance: %w", err)
	}
	return nil
}

func (s *FinanceService) SaveAccountGoal(ctx context.Context, g core.AccountGoal) (int64, error) {
	id, err := s.storage.UpsertAccountGoal(ctx, g)
	if err != nil {
		return 0, fmt.Errorf("save account goal: %w", err)
	}
	return id, nil
}

func (s *FinanceService) DeleteAccountGoal(ctx context.Context, id int64) error {
	if err := s.storage.DeleteAccountGoal(ctx, id); err != nil {
		return fmt.Errorf("delete account goal: %w", err)
	}
	return nil
}

func (s *FinanceService) SaveSavingsGoal(ctx context.Context, g core.SavingsGoal) error {
	if err := s.storage.UpsertSavingsGoal(ctx, g); err != nil {
		return fmt.Errorf("save savings goal: %w", err)
	}
	return nil
}

// RecordSavings sets the manually tracked progress of a savings goal.
func (s *FinanceService) RecordSavings(ctx context.Context, id string, saved decimal.Decimal) error {
	if err := s.storage.UpdateSavedAmount(ctx, id, saved); err != nil {
		return fmt.Errorf("record savings: %w", err)
	}
	return nil
}

func (s *FinanceService) DeleteSavingsGoal(ctx context.Context, id string) error {
	if err := s.storage.DeleteSavingsGoal(ctx, id); err != nil {
		return fmt.Errorf("delete savings goal: %w", err)
	}
	return nil
}

func (s *FinanceService) publishChange(ctx context.Context, kind string, count int) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping change message")
		return
	}
	if err := s.amqpClient.PublishMovementsChanged(ctx, kind, count); err != nil {
		// The local write already succeeded; the export worker will
		// catch up on its periodic full export.
		slog.ErrorContext(ctx, "Failed to publish change message",
			"kind", kind, "count", count, "error", err)
	}
}

// Close closes both storage and AMQP connections.
func (s *FinanceService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close finance service: %v", errs)
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"budget/internal/core"
	"budget/internal/log"
)

// ErrInvalidFilter is returned for filters that can never match.
var ErrInvalidFilter = errors.New("invalid filter")

// ExpenseService validates writes, forwards reads, and keeps chart caches
// consistent with the stored data.
type ExpenseService struct {
	store       ExpenseStore
	invalidator Invalidator
	logger      *log.StructuredLogger
}

func NewExpenseService(store ExpenseStore, invalidator Invalidator) *ExpenseService {
	return &ExpenseService{
		store:       store,
		invalidator: invalidator,
		logger:      log.NewStructuredLogger(log.FromContext(context.Background()).WithComponent(log.ComponentExpense)),
	}
}

// CreateCategory validates and stores a new category name.
func (s *ExpenseService) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	c := core.Category{Name: strings.TrimSpace(name)}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	created, err := s.store.CreateCategory(ctx, c.Name)
	if err != nil {
		return core.Category{}, fmt.Errorf("save category: %w", err)
	}
	return created, nil
}

func (s *ExpenseService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

// CreateExpense validates and stores e, then invalidates cached charts.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	created, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	if s.invalidator != nil {
		s.invalidator.InvalidateAll()
	}

	s.logger.LogExpenseCreated(ctx, created.ID, created.Description, created.Amount.Cents, created.CategoryName)
	return created, nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	if id <= 0 {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	return s.store.GetExpense(ctx, id)
}

// ListExpenses returns all spending rows, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx)
}

func (s *ExpenseService) CategoryTotals(ctx context.Context) ([]core.CategoryTotal, error) {
	return s.store.CategoryTotals(ctx)
}

func (s *ExpenseService) DateTotals(ctx context.Context, income bool) ([]core.DateTotal, error) {
	return s.store.DateTotals(ctx, income)
}

// FilterExpenses rejects an inverted date range before querying.
func (s *ExpenseService) FilterExpenses(ctx context.Context, f core.ExpenseFilter) ([]core.FilterRow, error) {
	if f.HasDateRange() && f.To.Before(f.From.Time) {
		return nil, fmt.Errorf("%w: start date %s is after end date %s", ErrInvalidFilter, f.From, f.To)
	}
	return s.store.FilterExpenses(ctx, f)
}

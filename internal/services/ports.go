package services

import (
	"context"

	"budget/internal/core"
)

// ExpenseStore is the persistence the services need. *storage.SQLiteRepository
// satisfies it.
type ExpenseStore interface {
	CreateCategory(ctx context.Context, name string) (core.Category, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	ListExpenses(ctx context.Context) ([]core.Expense, error)
	FilterExpenses(ctx context.Context, f core.ExpenseFilter) ([]core.FilterRow, error)
	AggregateStore
}

// AggregateStore provides the sums behind the charts.
type AggregateStore interface {
	CategoryTotals(ctx context.Context) ([]core.CategoryTotal, error)
	DateTotals(ctx context.Context, income bool) ([]core.DateTotal, error)
	Totals(ctx context.Context) (core.Summary, error)
}

// Invalidator drops derived data after a write.
type Invalidator interface {
	InvalidateAll()
}

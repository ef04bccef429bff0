package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"budget/internal/core"
	"budget/internal/log"
)

// timestampLayout is how created_at/updated_at are stored.
const timestampLayout = time.DateTime

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
	logger  *log.Logger
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
		logger:  log.FromContext(context.Background()).WithComponent(log.ComponentStorage),
	}, nil
}

// WithLogger replaces the repository logger, tagging it with the storage
// component.
func (r *SQLiteRepository) WithLogger(logger *log.Logger) *SQLiteRepository {
	if logger != nil {
		r.logger = logger.WithComponent(log.ComponentStorage)
	}
	return r
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection for readiness probes.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateCategory inserts a category. Names are unique ignoring case; the
// unique index decides, so concurrent duplicates also get ErrCategoryExists.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	name = strings.TrimSpace(name)

	c, err := r.queries.CreateCategory(ctx, name)
	if isUniqueViolation(err) {
		return core.Category{}, fmt.Errorf("create category %q: %w", name, core.ErrCategoryExists)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("create category %q: %w", name, err)
	}

	r.logger.InfoContext(ctx, "Category saved to SQLite",
		log.FieldOperation, log.OpCreate,
		"id", c.ID,
		log.FieldCategory, c.Name)
	return toCoreCategory(c), nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, len(rows))
	for i, c := range rows {
		out[i] = toCoreCategory(c)
	}
	return out, nil
}

// CreateExpense stores e and returns it with ID, category name and timestamps
// filled in. A zero CreatedAt means now.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	cat, err := r.queries.GetCategory(ctx, e.CategoryID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("category %d: %w", e.CategoryID, core.ErrInvalidCategory)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get category %d: %w", e.CategoryID, err)
	}

	now := r.now().UTC()
	created := e.CreatedAt.UTC()
	if e.CreatedAt.IsZero() {
		created = now
	}

	id, err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		CategoryID:  e.CategoryID,
		Description: strings.TrimSpace(e.Description),
		AmountCents: e.Amount.Cents,
		CreatedAt:   created.Format(timestampLayout),
		UpdatedAt:   now.Format(timestampLayout),
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	r.logger.InfoContext(ctx, "Expense saved to SQLite",
		log.FieldOperation, log.OpCreate,
		log.FieldExpenseID, id,
		log.FieldCategory, cat.Name,
		log.FieldAmountCents, e.Amount.Cents)

	return r.GetExpense(ctx, id)
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row, err := r.queries.GetExpense(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return toCoreExpense(row), nil
}

// ListExpenses returns every non-income expense, newest first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.queries.ListSpending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := make([]core.Expense, len(rows))
	for i, row := range rows {
		out[i] = toCoreExpense(row)
	}
	return out, nil
}

// CategoryTotals sums amounts per category, income included.
func (r *SQLiteRepository) CategoryTotals(ctx context.Context) ([]core.CategoryTotal, error) {
	rows, err := r.queries.GetCategorySums(ctx)
	if err != nil {
		return nil, fmt.Errorf("get category sums: %w", err)
	}
	out := make([]core.CategoryTotal, len(rows))
	for i, row := range rows {
		out[i] = core.CategoryTotal{Name: row.Name, Amount: core.Money{Cents: row.AmountCents}}
	}
	return out, nil
}

// DateTotals sums amounts per day, either income only or everything else.
func (r *SQLiteRepository) DateTotals(ctx context.Context, income bool) ([]core.DateTotal, error) {
	var (
		rows []AmountByDay
		err  error
	)
	if income {
		rows, err = r.queries.GetIncomeByDay(ctx)
	} else {
		rows, err = r.queries.GetSpendingByDay(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("get amounts by day (income=%t): %w", income, err)
	}

	out := make([]core.DateTotal, 0, len(rows))
	for _, row := range rows {
		d, err := core.ParseDate(row.Day)
		if err != nil {
			return nil, fmt.Errorf("parse day %q: %w", row.Day, err)
		}
		out = append(out, core.DateTotal{Date: d, Amount: core.Money{Cents: row.AmountCents}})
	}
	return out, nil
}

// FilterExpenses powers the transaction table. The date range is inclusive
// of both days.
func (r *SQLiteRepository) FilterExpenses(ctx context.Context, f core.ExpenseFilter) ([]core.FilterRow, error) {
	b := sq.Select("date(e.created_at)", "e.amount_cents", "c.name").
		From("expenses e").
		Join("categories c ON c.id = e.category_id").
		OrderBy("e.created_at", "e.id")

	if f.HasDateRange() {
		b = b.Where("date(e.created_at) BETWEEN ? AND ?", f.From.String(), f.To.String())
	}
	if f.Amount != nil {
		b = b.Where(sq.Eq{"e.amount_cents": f.Amount.Cents})
	}
	if f.CategoryID != nil {
		b = b.Where(sq.Eq{"c.id": *f.CategoryID})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build filter query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filter expenses: %w", err)
	}
	defer rows.Close()

	var out []core.FilterRow
	for rows.Next() {
		var (
			day   string
			cents int64
			name  string
		)
		if err := rows.Scan(&day, &cents, &name); err != nil {
			return nil, fmt.Errorf("scan filter row: %w", err)
		}
		d, err := core.ParseDate(day)
		if err != nil {
			return nil, fmt.Errorf("parse day %q: %w", day, err)
		}
		out = append(out, core.FilterRow{Date: d, Amount: core.Money{Cents: cents}, Name: name})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("filter expenses: %w", err)
	}
	return out, nil
}

// Totals returns income and spending sums for the dashboard cards.
func (r *SQLiteRepository) Totals(ctx context.Context) (core.Summary, error) {
	row, err := r.queries.GetTotals(ctx)
	if err != nil {
		return core.Summary{}, fmt.Errorf("get totals: %w", err)
	}
	return core.Summary{
		Income:   core.Money{Cents: row.IncomeCents},
		Expenses: core.Money{Cents: row.SpendingCents},
	}, nil
}

func toCoreCategory(c Category) core.Category {
	return core.Category{ID: c.ID, Name: c.Name, CreatedAt: parseTimestamp(c.CreatedAt)}
}

func toCoreExpense(row ExpenseRow) core.Expense {
	return core.Expense{
		ID:           row.ID,
		CategoryID:   row.CategoryID,
		CategoryName: row.CategoryName,
		Description:  row.Description,
		Amount:       core.Money{Cents: row.AmountCents},
		CreatedAt:    parseTimestamp(row.CreatedAt),
		UpdatedAt:    parseTimestamp(row.UpdatedAt),
	}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// parseTimestamp tolerates malformed rows by returning the zero time.
func parseTimestamp(s string) time.Time {
	t, err := time.ParseInLocation(timestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

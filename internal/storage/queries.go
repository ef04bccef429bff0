package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type Category struct {
	ID        int64
	Name      string
	CreatedAt string
}

type ExpenseRow struct {
	ID           int64
	CategoryID   int64
	CategoryName string
	Description  string
	AmountCents  int64
	CreatedAt    string
	UpdatedAt    string
}

type AmountByName struct {
	Name        string
	AmountCents int64
}

type AmountByDay struct {
	Day         string
	AmountCents int64
}

const getCategory = `-- name: GetCategory :one
SELECT id, name, created_at FROM categories WHERE id = ?
`

func (q *Queries) GetCategory(ctx context.Context, id int64) (Category, error) {
	row := q.db.QueryRowContext(ctx, getCategory, id)
	var i Category
	err := row.Scan(&i.ID, &i.Name, &i.CreatedAt)
	return i, err
}

const createCategory = `-- name: CreateCategory :one
INSERT INTO categories (name) VALUES (?)
RETURNING id, name, created_at
`

func (q *Queries) CreateCategory(ctx context.Context, name string) (Category, error) {
	row := q.db.QueryRowContext(ctx, createCategory, name)
	var i Category
	err := row.Scan(&i.ID, &i.Name, &i.CreatedAt)
	return i, err
}

const listCategories = `-- name: ListCategories :many
SELECT id, name, created_at FROM categories ORDER BY id
`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.Name, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type CreateExpenseParams struct {
	CategoryID  int64
	Description string
	AmountCents int64
	CreatedAt   string
	UpdatedAt   string
}

const createExpense = `-- name: CreateExpense :one
INSERT INTO expenses (category_id, description, amount_cents, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
RETURNING id
`

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createExpense,
		arg.CategoryID,
		arg.Description,
		arg.AmountCents,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getExpense = `-- name: GetExpense :one
SELECT e.id, e.category_id, c.name, e.description, e.amount_cents, e.created_at, e.updated_at
FROM expenses e
JOIN categories c ON c.id = e.category_id
WHERE e.id = ?
`

func (q *Queries) GetExpense(ctx context.Context, id int64) (ExpenseRow, error) {
	row := q.db.QueryRowContext(ctx, getExpense, id)
	var i ExpenseRow
	err := row.Scan(&i.ID, &i.CategoryID, &i.CategoryName, &i.Description, &i.AmountCents, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const listSpending = `-- name: ListSpending :many
SELECT e.id, e.category_id, c.name, e.description, e.amount_cents, e.created_at, e.updated_at
FROM expenses e
JOIN categories c ON c.id = e.category_id
WHERE lower(c.name) <> 'income'
ORDER BY e.created_at DESC, e.id DESC
`

func (q *Queries) ListSpending(ctx context.Context) ([]ExpenseRow, error) {
	rows, err := q.db.QueryContext(ctx, listSpending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExpenseRow
	for rows.Next() {
		var i ExpenseRow
		if err := rows.Scan(&i.ID, &i.CategoryID, &i.CategoryName, &i.Description, &i.AmountCents, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCategorySums = `-- name: GetCategorySums :many
SELECT c.name, SUM(e.amount_cents)
FROM expenses e
JOIN categories c ON c.id = e.category_id
GROUP BY c.id, c.name
ORDER BY c.id
`

func (q *Queries) GetCategorySums(ctx context.Context) ([]AmountByName, error) {
	rows, err := q.db.QueryContext(ctx, getCategorySums)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AmountByName
	for rows.Next() {
		var i AmountByName
		if err := rows.Scan(&i.Name, &i.AmountCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getIncomeByDay = `-- name: GetIncomeByDay :many
SELECT date(e.created_at) AS day, SUM(e.amount_cents)
FROM expenses e
JOIN categories c ON c.id = e.category_id
WHERE lower(c.name) = 'income'
GROUP BY day
ORDER BY day
`

const getSpendingByDay = `-- name: GetSpendingByDay :many
SELECT date(e.created_at) AS day, SUM(e.amount_cents)
FROM expenses e
JOIN categories c ON c.id = e.category_id
WHERE lower(c.name) <> 'income'
GROUP BY day
ORDER BY day
`

func (q *Queries) GetIncomeByDay(ctx context.Context) ([]AmountByDay, error) {
	return q.amountsByDay(ctx, getIncomeByDay)
}

func (q *Queries) GetSpendingByDay(ctx context.Context) ([]AmountByDay, error) {
	return q.amountsByDay(ctx, getSpendingByDay)
}

func (q *Queries) amountsByDay(ctx context.Context, query string) ([]AmountByDay, error) {
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AmountByDay
	for rows.Next() {
		var i AmountByDay
		if err := rows.Scan(&i.Day, &i.AmountCents); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type GetTotalsRow struct {
	IncomeCents   int64
	SpendingCents int64
}

const getTotals = `-- name: GetTotals :one
SELECT
    COALESCE(SUM(CASE WHEN lower(c.name) = 'income' THEN e.amount_cents ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN lower(c.name) <> 'income' THEN e.amount_cents ELSE 0 END), 0)
FROM expenses e
JOIN categories c ON c.id = e.category_id
`

func (q *Queries) GetTotals(ctx context.Context) (GetTotalsRow, error) {
	row := q.db.QueryRowContext(ctx, getTotals)
	var i GetTotalsRow
	err := row.Scan(&i.IncomeCents, &i.SpendingCents)
	return i, err
}

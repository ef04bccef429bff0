package http

import (
	"encoding/json"
	"strings"
	"time"

	"budget/internal/chart"
	"budget/internal/core"
	"budget/internal/services"
)

// CategoryDTO is a category as returned by the API.
type CategoryDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ExpenseDTO is one row of the transaction list.
type ExpenseDTO struct {
	ID          int64       `json:"id"`
	CategoryID  int64       `json:"category_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// CategoryTotalDTO is one row of the category-wise aggregate.
type CategoryTotalDTO struct {
	Name  string      `json:"name"`
	Total json.Number `json:"total"`
}

// DateTotalDTO is one point of a line chart.
type DateTotalDTO struct {
	Date   string      `json:"date"`
	Amount json.Number `json:"amount"`
}

// FilterRowDTO is one row of the filtered transaction table.
type FilterRowDTO struct {
	Date   string      `json:"date"`
	Amount json.Number `json:"amount"`
	Name   string      `json:"name"`
}

// SummaryDTO feeds the dashboard in a single round trip.
type SummaryDTO struct {
	Income        json.Number    `json:"income"`
	Expenses      json.Number    `json:"expenses"`
	Balance       json.Number    `json:"balance"`
	SpendingByDay []DateTotalDTO `json:"spending_by_day"`
	IncomeByDay   []DateTotalDTO `json:"income_by_day"`
	Donut         chart.Donut    `json:"donut"`
}

// moneyJSON renders cents as an exact decimal JSON number.
func moneyJSON(m core.Money) json.Number {
	return json.Number(m.String())
}

func toCategoryDTOs(cats []core.Category) []CategoryDTO {
	out := make([]CategoryDTO, len(cats))
	for i, c := range cats {
		out[i] = CategoryDTO{ID: c.ID, Name: c.Name}
	}
	return out
}

func toExpenseDTO(e core.Expense) ExpenseDTO {
	return ExpenseDTO{
		ID:          e.ID,
		CategoryID:  e.CategoryID,
		Name:        e.CategoryName,
		Description: e.Description,
		Amount:      moneyJSON(e.Amount),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toExpenseDTOs(es []core.Expense) []ExpenseDTO {
	out := make([]ExpenseDTO, len(es))
	for i, e := range es {
		out[i] = toExpenseDTO(e)
	}
	return out
}

func toCategoryTotalDTOs(ts []core.CategoryTotal) []CategoryTotalDTO {
	out := make([]CategoryTotalDTO, len(ts))
	for i, t := range ts {
		out[i] = CategoryTotalDTO{Name: t.Name, Total: moneyJSON(t.Amount)}
	}
	return out
}

func toDateTotalDTOs(ts []core.DateTotal) []DateTotalDTO {
	out := make([]DateTotalDTO, len(ts))
	for i, t := range ts {
		out[i] = DateTotalDTO{Date: t.Date.String(), Amount: moneyJSON(t.Amount)}
	}
	return out
}

func toFilterRowDTOs(rows []core.FilterRow) []FilterRowDTO {
	out := make([]FilterRowDTO, len(rows))
	for i, r := range rows {
		out[i] = FilterRowDTO{Date: r.Date.String(), Amount: moneyJSON(r.Amount), Name: r.Name}
	}
	return out
}

func toSummaryDTO(s services.DashboardSummary) SummaryDTO {
	return SummaryDTO{
		Income:        moneyJSON(s.Totals.Income),
		Expenses:      moneyJSON(s.Totals.Expenses),
		Balance:       moneyJSON(s.Totals.Balance()),
		SpendingByDay: toDateTotalDTOs(s.Spending),
		IncomeByDay:   toDateTotalDTOs(s.Income),
		Donut:         s.Donut,
	}
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

package core

// CategoryTotal is an amount aggregated by category name.
type CategoryTotal struct {
	Name   string
	Amount Money
}

// DateTotal is an amount aggregated by calendar day.
type DateTotal struct {
	Date   Date
	Amount Money
}

// FilterRow is one line of the transaction table.
type FilterRow struct {
	Date   Date
	Amount Money
	Name   string
}

// ExpenseFilter narrows the transaction table. The date range applies only
// when both ends are set; nil fields are ignored.
type ExpenseFilter struct {
	From       *Date
	To         *Date
	Amount     *Money
	CategoryID *int64
}

// HasDateRange reports whether both range ends are present.
func (f ExpenseFilter) HasDateRange() bool {
	return f.From != nil && f.To != nil
}

// Summary feeds the dashboard cards.
type Summary struct {
	Income   Money
	Expenses Money
}

// Balance is income minus expenses; it may be negative.
func (s Summary) Balance() Money {
	return Money{Cents: s.Income.Cents - s.Expenses.Cents}
}

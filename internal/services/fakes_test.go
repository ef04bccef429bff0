package services

import (
	"context"
	"errors"
	"sync"

	"budget/internal/core"
)

// fakeStore is an in-memory ExpenseStore.
type fakeStore struct {
	mu         sync.Mutex
	categories []core.Category
	expenses   []core.Expense
	totalsErr  error
	sumCalls   int

	// afterCategoryTotals runs once the totals are read, outside the lock.
	afterCategoryTotals func()
}

func newFakeStore(categories ...string) *fakeStore {
	s := &fakeStore{}
	for i, name := range categories {
		s.categories = append(s.categories, core.Category{ID: int64(i + 1), Name: name})
	}
	return s
}

func (s *fakeStore) CreateCategory(_ context.Context, name string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if core.IsIncomeName(c.Name) && core.IsIncomeName(name) || c.Name == name {
			return core.Category{}, core.ErrCategoryExists
		}
	}
	c := core.Category{ID: int64(len(s.categories) + 1), Name: name}
	s.categories = append(s.categories, c)
	return c, nil
}

func (s *fakeStore) ListCategories(context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.categories...), nil
}

func (s *fakeStore) category(id int64) (core.Category, bool) {
	for _, c := range s.categories {
		if c.ID == id {
			return c, true
		}
	}
	return core.Category{}, false
}

func (s *fakeStore) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.category(e.CategoryID)
	if !ok {
		return core.Expense{}, core.ErrInvalidCategory
	}
	e.ID = int64(len(s.expenses) + 1)
	e.CategoryName = c.Name
	s.expenses = append(s.expenses, e)
	return e, nil
}

func (s *fakeStore) GetExpense(_ context.Context, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, core.ErrNotFound
}

func (s *fakeStore) ListExpenses(context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Expense
	for _, e := range s.expenses {
		if !core.IsIncomeName(e.CategoryName) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) FilterExpenses(_ context.Context, f core.ExpenseFilter) ([]core.FilterRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.FilterRow
	for _, e := range s.expenses {
		if f.Amount != nil && e.Amount != *f.Amount {
			continue
		}
		if f.CategoryID != nil && e.CategoryID != *f.CategoryID {
			continue
		}
		out = append(out, core.FilterRow{Amount: e.Amount, Name: e.CategoryName})
	}
	return out, nil
}

func (s *fakeStore) CategoryTotals(context.Context) ([]core.CategoryTotal, error) {
	out := s.categoryTotals()
	if hook := s.afterCategoryTotals; hook != nil {
		hook()
	}
	return out, nil
}

func (s *fakeStore) categoryTotals() []core.CategoryTotal {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sumCalls++
	var out []core.CategoryTotal
	for _, c := range s.categories {
		var cents int64
		for _, e := range s.expenses {
			if e.CategoryID == c.ID {
				cents += e.Amount.Cents
			}
		}
		if cents > 0 {
			out = append(out, core.CategoryTotal{Name: c.Name, Amount: core.Money{Cents: cents}})
		}
	}
	return out
}

func (s *fakeStore) DateTotals(_ context.Context, income bool) ([]core.DateTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var cents int64
	for _, e := range s.expenses {
		if core.IsIncomeName(e.CategoryName) == income {
			cents += e.Amount.Cents
		}
	}
	if cents == 0 {
		return nil, nil
	}
	return []core.DateTotal{{Date: core.NewDate(2024, 1, 1), Amount: core.Money{Cents: cents}}}, nil
}

func (s *fakeStore) Totals(context.Context) (core.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.totalsErr != nil {
		return core.Summary{}, s.totalsErr
	}
	var sum core.Summary
	for _, e := range s.expenses {
		if core.IsIncomeName(e.CategoryName) {
			sum.Income.Cents += e.Amount.Cents
		} else {
			sum.Expenses.Cents += e.Amount.Cents
		}
	}
	return sum, nil
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) InvalidateAll() { c.calls++ }

var errStoreDown = errors.New("store down")

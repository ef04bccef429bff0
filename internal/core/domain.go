package core

import (
	"errors"
	"strings"
	"time"
)

// IncomeCategory is the reserved category name that marks income rows.
const IncomeCategory = "income"

const (
	minCategoryName = 3
	maxCategoryName = 50
	minDescription  = 5
	maxDescription  = 200
)

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Category struct {
		ID        int64
		Name      string
		CreatedAt time.Time
	}

	Expense struct {
		ID           int64
		CategoryID   int64
		CategoryName string
		Description  string
		Amount       Money
		CreatedAt    time.Time
		UpdatedAt    time.Time
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrEmptyDescription    = errors.New("empty description")
	ErrDescriptionTooShort = errors.New("description must be at least 5 characters long")
	ErrDescriptionTooLong  = errors.New("description too long (max 200 characters)")
	ErrInvalidCategory     = errors.New("invalid category")
	ErrCategoryExists      = errors.New("category already exists")
	ErrNotFound            = errors.New("not found")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(time.DateOnly)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// IsIncome reports whether the category is the reserved income category.
func (c Category) IsIncome() bool {
	return IsIncomeName(c.Name)
}

// IsIncomeName compares case-insensitively against IncomeCategory.
func IsIncomeName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), IncomeCategory)
}

func (c Category) Validate() error {
	name := strings.TrimSpace(c.Name)
	if len(name) < minCategoryName || len(name) > maxCategoryName {
		return ErrInvalidCategory
	}
	return nil
}

func (e Expense) Validate() error {
	if e.CategoryID <= 0 {
		return ErrInvalidCategory
	}
	desc := strings.TrimSpace(e.Description)
	if desc == "" {
		return ErrEmptyDescription
	}
	if len(desc) < minDescription {
		return ErrDescriptionTooShort
	}
	if len(desc) > maxDescription {
		return ErrDescriptionTooLong
	}
	return e.Amount.Validate()
}

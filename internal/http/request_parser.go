// Package http exposes the budget API over JSON.
//
// This file implements request decoding and validation. Bodies are decoded
// into DTOs that carry validator tags, so the size and presence rules live
// next to the fields they constrain.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"budget/internal/core"
)

// maxBodyBytes bounds request bodies; every DTO is tiny.
const maxBodyBytes = 64 << 10

// CreateCategoryRequest is the body of POST /api/categories.
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=3,max=50"`
}

// CreateExpenseRequest is the body of POST /api/expenses.
type CreateExpenseRequest struct {
	CategoryID  int64        `json:"category_id" validate:"required,gt=0"`
	Description string       `json:"description" validate:"required,min=5,max=200"`
	Amount      AmountString `json:"amount" validate:"required"`
	// Optional YYYY-MM-DD; defaults to now.
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// AmountString accepts an amount written either as a JSON number or as a
// string, keeping the exact decimal text for parsing.
type AmountString string

func (a *AmountString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = AmountString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("amount must be a number or a string")
	}
	*a = AmountString(n.String())
	return nil
}

// RequestValidator wraps a validator instance that reports JSON field names.
type RequestValidator struct {
	v *validator.Validate
}

// NewRequestValidator creates a validator using json tags as field names.
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{v: v}
}

// Struct validates a DTO and turns validator errors into one readable message.
func (rv *RequestValidator) Struct(s any) error {
	err := rv.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "datetime":
		return fe.Field() + " must be a date in YYYY-MM-DD format"
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// DecodeJSON reads a bounded JSON body into dst, rejecting unknown fields
// and trailing data.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("malformed JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// ToExpense converts a validated request into a domain expense.
func (req CreateExpenseRequest) ToExpense() (core.Expense, error) {
	cents, err := core.ParseDecimalToCents(string(req.Amount))
	if err != nil {
		return core.Expense{}, err
	}
	e := core.Expense{
		CategoryID:  req.CategoryID,
		Description: sanitizeInput(req.Description),
		Amount:      core.Money{Cents: cents},
	}
	if req.Date != "" {
		d, err := core.ParseDate(req.Date)
		if err != nil {
			return core.Expense{}, fmt.Errorf("invalid date %q: %w", req.Date, err)
		}
		now := time.Now().UTC()
		e.CreatedAt = time.Date(d.Year(), d.Month(), d.Day(), now.Hour(), now.Minute(), now.Second(), 0, time.UTC)
	}
	return e, nil
}

// ParseFilter reads sdate, edate, amount and category from the query string.
// Empty parameters are ignored; a date range applies only with both ends.
func ParseFilter(q url.Values) (core.ExpenseFilter, error) {
	var f core.ExpenseFilter

	sdate := strings.TrimSpace(q.Get("sdate"))
	edate := strings.TrimSpace(q.Get("edate"))
	if sdate != "" && edate != "" {
		from, err := core.ParseDate(sdate)
		if err != nil {
			return f, fmt.Errorf("invalid sdate %q: expected YYYY-MM-DD", sdate)
		}
		to, err := core.ParseDate(edate)
		if err != nil {
			return f, fmt.Errorf("invalid edate %q: expected YYYY-MM-DD", edate)
		}
		f.From, f.To = &from, &to
	}

	if v := strings.TrimSpace(q.Get("amount")); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			return f, fmt.Errorf("invalid amount %q", v)
		}
		f.Amount = &core.Money{Cents: cents}
	}

	if v := strings.TrimSpace(q.Get("category")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, fmt.Errorf("invalid category %q", v)
		}
		f.CategoryID = &id
	}

	return f, nil
}

// ParseMinAngle reads min_angle, falling back to def when absent.
func ParseMinAngle(q url.Values, def float64) (float64, error) {
	v := strings.TrimSpace(q.Get("min_angle"))
	if v == "" {
		return def, nil
	}
	deg, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid min_angle %q: must be a number of degrees", v)
	}
	return deg, nil
}

// ParseID parses a positive path identifier.
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

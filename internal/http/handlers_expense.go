package http

import (
	"net/http"
	"strings"

	"budget/internal/log"
)

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := DecodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	req.Name = sanitizeInput(req.Name)
	if err := s.validator.Struct(req); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	c, err := s.expenses.CreateCategory(r.Context(), req.Name)
	if err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	Created("Category created", CategoryDTO{ID: c.ID, Name: c.Name}).Write(w)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.expenses.ListCategories(r.Context())
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	OK("Ok", toCategoryDTOs(cats)).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := DecodeJSON(r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	req.Description = sanitizeInput(req.Description)
	if err := s.validator.Struct(req); err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}

	e, err := req.ToExpense()
	if err != nil {
		s.respondError(w, r, log.OpParse, err)
		return
	}

	created, err := s.expenses.CreateExpense(r.Context(), e)
	if err != nil {
		s.respondError(w, r, log.OpCreate, err)
		return
	}
	Created("Added successfully", toExpenseDTO(created)).Write(w)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	items, err := s.expenses.ListExpenses(r.Context())
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	OK("Ok", toExpenseDTOs(items)).Write(w)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r.PathValue("id"))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	e, err := s.expenses.GetExpense(r.Context(), id)
	if err != nil {
		s.respondError(w, r, log.OpRead, err)
		return
	}
	OK("Ok", toExpenseDTO(e)).Write(w)
}

func (s *Server) handleCategoryWise(w http.ResponseWriter, r *http.Request) {
	totals, err := s.expenses.CategoryTotals(r.Context())
	if err != nil {
		s.respondError(w, r, log.OpAggregate, err)
		return
	}
	OK("Ok", toCategoryTotalDTOs(totals)).Write(w)
}

// handleDateWise returns per-day sums; q=income selects income instead of
// spending.
func (s *Server) handleDateWise(w http.ResponseWriter, r *http.Request) {
	income := strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("q")), "income")
	totals, err := s.expenses.DateTotals(r.Context(), income)
	if err != nil {
		s.respondError(w, r, log.OpAggregate, err)
		return
	}
	OK("Ok", toDateTotalDTOs(totals)).Write(w)
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	rows, err := s.expenses.FilterExpenses(r.Context(), f)
	if err != nil {
		s.respondError(w, r, log.OpList, err)
		return
	}
	OK("Ok", toFilterRowDTOs(rows)).Write(w)
}

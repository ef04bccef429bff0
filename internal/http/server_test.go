package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"budget/internal/cache"
	"budget/internal/chart"
	"budget/internal/log"
	"budget/internal/services"
	"budget/internal/storage"
)

type testEnv struct {
	srv  *Server
	repo *storage.SQLiteRepository
}

func newTestEnv(t *testing.T, rateLimit int) *testEnv {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "budget.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	donuts := cache.NewLRUCache[chart.Donut](16, time.Minute)
	manager := cache.NewManager()
	manager.Register(donuts)

	logger := log.New(log.Config{Component: log.ComponentApp, Handler: slog.NewTextHandler(io.Discard, nil)})
	srv := NewServer(":0",
		services.NewExpenseService(repo, manager),
		services.NewDashboardService(repo, donuts, manager, chart.NewFormatter(), chart.DefaultMinAngleDeg),
		repo,
		Options{RateLimitPerMinute: rateLimit, Logger: logger},
	)
	return &testEnv{srv: srv, repo: repo}
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	rr := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rr, httptest.NewRequest(method, path, rdr))

	var env envelope
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: invalid JSON %q: %v", method, path, rr.Body.String(), err)
		}
		if env.Status != rr.Code {
			t.Errorf("%s %s: envelope status %d != HTTP %d", method, path, env.Status, rr.Code)
		}
	}
	return rr, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
	return v
}

func (e *testEnv) createCategory(t *testing.T, name string) CategoryDTO {
	t.Helper()
	rr, env := e.do(t, http.MethodPost, "/api/categories", `{"name":"`+name+`"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create category %s: status=%d body=%s", name, rr.Code, rr.Body.String())
	}
	return decodeData[CategoryDTO](t, env)
}

func (e *testEnv) createExpense(t *testing.T, body string) ExpenseDTO {
	t.Helper()
	rr, env := e.do(t, http.MethodPost, "/api/expenses", body)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create expense: status=%d body=%s", rr.Code, rr.Body.String())
	}
	return decodeData[ExpenseDTO](t, env)
}

func TestHealthAndReady(t *testing.T) {
	e := newTestEnv(t, 0)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr, _ := e.do(t, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
		if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Errorf("%s missing security headers", path)
		}
		if rr.Header().Get("X-Request-ID") == "" {
			t.Errorf("%s missing request id", path)
		}
	}

	_, env := e.do(t, http.MethodGet, "/healthz", "")
	health := decodeData[map[string]any](t, env)
	if got, _ := health["requests"].(float64); got != 3 {
		t.Errorf("requests = %v, want 3", health["requests"])
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("db gone") }

func TestReady_StorageDown(t *testing.T) {
	e := newTestEnv(t, 0)
	e.srv.storage = failingPinger{}

	rr, env := e.do(t, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d", rr.Code)
	}
	if env.Message != "not_ready" {
		t.Errorf("message=%q", env.Message)
	}
}

func TestCategories(t *testing.T) {
	e := newTestEnv(t, 0)

	c := e.createCategory(t, "Groceries")
	if c.ID == 0 || c.Name != "Groceries" {
		t.Fatalf("created = %+v", c)
	}

	rr, env := e.do(t, http.MethodPost, "/api/categories", `{"name":"groceries"}`)
	if rr.Code != http.StatusConflict || env.Message != "Category already exists" {
		t.Errorf("duplicate: status=%d message=%q", rr.Code, env.Message)
	}

	rr, _ = e.do(t, http.MethodPost, "/api/categories", `{"name":"ab"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("short name: status=%d", rr.Code)
	}

	rr, _ = e.do(t, http.MethodPost, "/api/categories", `not json`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad json: status=%d", rr.Code)
	}

	_, env = e.do(t, http.MethodGet, "/api/categories", "")
	cats := decodeData[[]CategoryDTO](t, env)
	if len(cats) != 2 || cats[0].Name != "income" || cats[1].Name != "Groceries" {
		t.Errorf("categories = %+v", cats)
	}
}

func TestExpenses_CreateListGet(t *testing.T) {
	e := newTestEnv(t, 0)
	food := e.createCategory(t, "food")

	created := e.createExpense(t, `{"category_id":`+itoa(food.ID)+`,"description":"weekly groceries","amount":"42.50","date":"2024-03-09"}`)
	if created.Name != "food" || created.Amount.String() != "42.50" {
		t.Errorf("created = %+v", created)
	}

	_, env := e.do(t, http.MethodGet, "/api/expenses", "")
	list := decodeData[[]ExpenseDTO](t, env)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("list = %+v", list)
	}

	rr, env := e.do(t, http.MethodGet, "/api/expenses/"+itoa(created.ID), "")
	if rr.Code != http.StatusOK || decodeData[ExpenseDTO](t, env).Description != "weekly groceries" {
		t.Errorf("get: status=%d body=%s", rr.Code, rr.Body.String())
	}

	rr, _ = e.do(t, http.MethodGet, "/api/expenses/999", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing expense: status=%d", rr.Code)
	}
	rr, _ = e.do(t, http.MethodGet, "/api/expenses/abc", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad id: status=%d", rr.Code)
	}
}

func TestExpenses_Validation(t *testing.T) {
	e := newTestEnv(t, 0)
	food := e.createCategory(t, "food")
	id := itoa(food.ID)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"short description", `{"category_id":` + id + `,"description":"tea","amount":1}`, http.StatusUnprocessableEntity},
		{"missing category", `{"description":"lunch out","amount":1}`, http.StatusUnprocessableEntity},
		{"unknown category", `{"category_id":999,"description":"lunch out","amount":1}`, http.StatusUnprocessableEntity},
		{"zero amount", `{"category_id":` + id + `,"description":"lunch out","amount":0}`, http.StatusUnprocessableEntity},
		{"negative amount", `{"category_id":` + id + `,"description":"lunch out","amount":"-5"}`, http.StatusUnprocessableEntity},
		{"unknown field", `{"category_id":` + id + `,"description":"lunch out","amount":1,"user_id":4}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, _ := e.do(t, http.MethodPost, "/api/expenses", tt.body)
			if rr.Code != tt.want {
				t.Errorf("status=%d want %d body=%s", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestAggregatesAndFilter(t *testing.T) {
	e := newTestEnv(t, 0)
	food := e.createCategory(t, "food")
	rent := e.createCategory(t, "rent")
	income := int64(1)

	e.createExpense(t, `{"category_id":`+itoa(food.ID)+`,"description":"groceries run","amount":20,"date":"2024-01-01"}`)
	e.createExpense(t, `{"category_id":`+itoa(rent.ID)+`,"description":"january rent","amount":800,"date":"2024-01-02"}`)
	e.createExpense(t, `{"category_id":`+itoa(income)+`,"description":"monthly salary","amount":3000,"date":"2024-01-02"}`)

	_, env := e.do(t, http.MethodGet, "/api/expenses/category-wise", "")
	totals := decodeData[[]CategoryTotalDTO](t, env)
	if len(totals) != 3 {
		t.Errorf("category-wise = %+v", totals)
	}

	_, env = e.do(t, http.MethodGet, "/api/expenses/date-wise", "")
	spending := decodeData[[]DateTotalDTO](t, env)
	if len(spending) != 2 || spending[0].Date != "2024-01-01" {
		t.Errorf("spending by day = %+v", spending)
	}

	_, env = e.do(t, http.MethodGet, "/api/expenses/date-wise?q=income", "")
	inc := decodeData[[]DateTotalDTO](t, env)
	if len(inc) != 1 || inc[0].Amount.String() != "3000.00" {
		t.Errorf("income by day = %+v", inc)
	}

	_, env = e.do(t, http.MethodGet, "/api/expenses/filter?sdate=2024-01-02&edate=2024-01-02&category="+itoa(rent.ID), "")
	rows := decodeData[[]FilterRowDTO](t, env)
	if len(rows) != 1 || rows[0].Name != "rent" {
		t.Errorf("filter = %+v", rows)
	}

	rr, _ := e.do(t, http.MethodGet, "/api/expenses/filter?sdate=2024-02-01&edate=2024-01-01", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("inverted range: status=%d", rr.Code)
	}
	rr, _ = e.do(t, http.MethodGet, "/api/expenses/filter?amount=lots", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad amount: status=%d", rr.Code)
	}
}

func TestDonut(t *testing.T) {
	e := newTestEnv(t, 0)

	_, env := e.do(t, http.MethodGet, "/api/charts/donut", "")
	empty := decodeData[chart.Donut](t, env)
	if len(empty.Segments) != 0 {
		t.Errorf("empty donut = %+v", empty)
	}

	rent := e.createCategory(t, "rent")
	snacks := e.createCategory(t, "snacks")
	e.createExpense(t, `{"category_id":`+itoa(rent.ID)+`,"description":"monthly rent","amount":1000}`)
	e.createExpense(t, `{"category_id":`+itoa(snacks.ID)+`,"description":"chips and dip","amount":1}`)
	e.createExpense(t, `{"category_id":1,"description":"monthly salary","amount":5000}`)

	rr, env := e.do(t, http.MethodGet, "/api/charts/donut?min_angle=45", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	d := decodeData[chart.Donut](t, env)
	if len(d.Segments) != 2 {
		t.Fatalf("segments = %+v", d.Segments)
	}
	small := d.Segments[1]
	if small.Label != "snacks" || small.Value != 1 {
		t.Errorf("small segment = %+v", small)
	}
	if math.Abs(small.SpanDegrees()-45) > 1e-6 {
		t.Errorf("small span = %v, want 45", small.SpanDegrees())
	}
	if !strings.HasPrefix(small.Tooltip, "snacks: ") {
		t.Errorf("tooltip = %q", small.Tooltip)
	}
	if d.Segments[1].EndAngle != 2*math.Pi {
		t.Errorf("last arc ends at %v", d.Segments[1].EndAngle)
	}

	_, env = e.do(t, http.MethodGet, "/api/charts/donut?min_angle=180", "")
	if fb := decodeData[chart.Donut](t, env); !fb.Fallback {
		t.Errorf("180 degrees over 2 slices should fall back: %+v", fb)
	}

	for _, q := range []string{"min_angle=-1", "min_angle=wide", "min_angle=NaN"} {
		rr, _ := e.do(t, http.MethodGet, "/api/charts/donut?"+q, "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status=%d", q, rr.Code)
		}
	}
}

func TestSummary(t *testing.T) {
	e := newTestEnv(t, 0)
	food := e.createCategory(t, "food")
	e.createExpense(t, `{"category_id":`+itoa(food.ID)+`,"description":"groceries run","amount":"40.25"}`)
	e.createExpense(t, `{"category_id":1,"description":"monthly salary","amount":100}`)

	rr, env := e.do(t, http.MethodGet, "/api/dashboard/summary", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	s := decodeData[SummaryDTO](t, env)
	if s.Income.String() != "100.00" || s.Expenses.String() != "40.25" || s.Balance.String() != "59.75" {
		t.Errorf("summary cards = %s / %s / %s", s.Income, s.Expenses, s.Balance)
	}
	if len(s.Donut.Segments) != 1 || len(s.SpendingByDay) != 1 || len(s.IncomeByDay) != 1 {
		t.Errorf("summary = %+v", s)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	e := newTestEnv(t, 0)
	rr, _ := e.do(t, http.MethodDelete, "/api/categories", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status=%d", rr.Code)
	}
}

func TestRateLimitOnPost(t *testing.T) {
	e := newTestEnv(t, 2)

	codes := make([]int, 0, 3)
	for _, name := range []string{"aaa", "bbb", "ccc"} {
		rr, _ := e.do(t, http.MethodPost, "/api/categories", `{"name":"`+name+`"}`)
		codes = append(codes, rr.Code)
	}
	want := []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("codes = %v, want %v", codes, want)
		}
	}

	rr, _ := e.do(t, http.MethodGet, "/api/categories", "")
	if rr.Code != http.StatusOK {
		t.Errorf("GET should not be limited, status=%d", rr.Code)
	}
}

func TestCreateExpenseInvalidatesDonutCache(t *testing.T) {
	e := newTestEnv(t, 0)
	rent := e.createCategory(t, "rent")
	e.createExpense(t, `{"category_id":`+itoa(rent.ID)+`,"description":"monthly rent","amount":1000}`)

	_, env := e.do(t, http.MethodGet, "/api/charts/donut", "")
	if n := len(decodeData[chart.Donut](t, env).Segments); n != 1 {
		t.Fatalf("segments = %d", n)
	}

	food := e.createCategory(t, "food")
	e.createExpense(t, `{"category_id":`+itoa(food.ID)+`,"description":"groceries run","amount":10}`)

	_, env = e.do(t, http.MethodGet, "/api/charts/donut", "")
	if n := len(decodeData[chart.Donut](t, env).Segments); n != 2 {
		t.Errorf("stale donut served: %d segments", n)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

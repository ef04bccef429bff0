package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"budget/internal/chart"
	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/middleware/ratelimit"
	"budget/internal/middleware/security"
	"budget/internal/middleware/trace"
	"budget/internal/services"
)

// ExpenseAPI is what the expense endpoints need; *services.ExpenseService
// satisfies it.
type ExpenseAPI interface {
	CreateCategory(ctx context.Context, name string) (core.Category, error)
	ListCategories(ctx context.Context) ([]core.Category, error)
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	ListExpenses(ctx context.Context) ([]core.Expense, error)
	CategoryTotals(ctx context.Context) ([]core.CategoryTotal, error)
	DateTotals(ctx context.Context, income bool) ([]core.DateTotal, error)
	FilterExpenses(ctx context.Context, f core.ExpenseFilter) ([]core.FilterRow, error)
}

// DashboardAPI is what the chart endpoints need; *services.DashboardService
// satisfies it.
type DashboardAPI interface {
	Donut(ctx context.Context, minAngleDeg float64) (chart.Donut, error)
	Summary(ctx context.Context) (services.DashboardSummary, error)
	DefaultMinAngle() float64
}

// Pinger reports whether the storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tunes the server middleware.
type Options struct {
	RateLimitPerMinute int
	Logger             *log.Logger
}

type Server struct {
	http.Server
	expenses  ExpenseAPI
	dashboard DashboardAPI
	storage   Pinger
	logger    *log.Logger
	validator *RequestValidator

	securityDetector *security.Detector
	rateLimiter      *ratelimit.Limiter
	traceMiddleware  *trace.Middleware

	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, expenses ExpenseAPI, dashboard DashboardAPI, storage Pinger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	limitCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limitCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}

	detector := security.NewDetector()
	s := &Server{
		expenses:         expenses,
		dashboard:        dashboard,
		storage:          storage,
		logger:           logger,
		validator:        NewRequestValidator(),
		securityDetector: detector,
		rateLimiter:      ratelimit.NewLimiter(limitCfg),
		traceMiddleware:  trace.NewMiddleware(logger, detector.ExtractClientIP),
		startedAt:        time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /api/categories", s.handleListCategories)

	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	mux.HandleFunc("GET /api/expenses/category-wise", s.handleCategoryWise)
	mux.HandleFunc("GET /api/expenses/date-wise", s.handleDateWise)
	mux.HandleFunc("GET /api/expenses/filter", s.handleFilter)

	mux.HandleFunc("GET /api/charts/donut", s.handleDonut)
	mux.HandleFunc("GET /api/dashboard/summary", s.handleSummary)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// middleware wraps h outermost first: tracing, headers, detection, limits.
func (s *Server) middleware(h http.Handler) http.Handler {
	limited := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path)
		TooManyRequestsError().Write(w)
	})(h)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	return s.traceMiddleware.Middleware(headers.Middleware(s.securityDetector.Middleware(limited)))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// respondError maps err to a response and logs unexpected failures.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	resp, unexpected := FromError(err)
	if unexpected {
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op, log.NewFields())
	}
	resp.Write(w)
}

package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldReferer     = "referer"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldExpenseID   = "expense_id"
	FieldExpenseDesc = "expense_description"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
	FieldMinAngle    = "min_angle_deg"
	FieldSliceCount  = "slice_count"
	FieldFallback    = "fallback"
	FieldCacheHit    = "cache_hit"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentExpense   = "expense"
	ComponentDashboard = "dashboard"
	ComponentChart     = "chart"
	ComponentStorage   = "storage"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
	ComponentCLI       = "cli"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpRead      = "read"
	OpList      = "list"
	OpAggregate = "aggregate"
	OpNormalize = "normalize"
	OpValidate  = "validate"
	OpParse     = "parse"
	OpMigrate   = "migrate"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithClientIP adds client IP field
func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithExpense adds expense-related fields
func (f LogFields) WithExpense(id int64, desc string, amountCents int64, category string) LogFields {
	f[FieldExpenseID] = id
	f[FieldExpenseDesc] = desc
	f[FieldAmountCents] = amountCents
	f[FieldCategory] = category
	return f
}

// WithDonut adds chart normalization fields
func (f LogFields) WithDonut(minAngleDeg float64, slices int, fallback bool) LogFields {
	f[FieldMinAngle] = minAngleDeg
	f[FieldSliceCount] = slices
	f[FieldFallback] = fallback
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path, query, userAgent, referer string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	f[FieldReferer] = referer
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}

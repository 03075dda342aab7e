package log

import "fintrack/internal/core"

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldQuery        = "query"
	FieldStatusCode   = "status_code"
	FieldDuration     = "duration_ms"
	FieldUserAgent    = "user_agent"
	FieldSuccess      = "success"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldBackend      = "backend"
	FieldRecordID     = "record_id"
	FieldRecordKind   = "record_kind"
	FieldRecordDate   = "record_date"
	FieldAmountCents  = "amount_cents"
	FieldWindowStart  = "window_start"
	FieldWindowEnd    = "window_end"
	FieldTotalIncome  = "total_income"
	FieldTotalExpense = "total_expense"
	FieldNetBalance   = "net_balance"
	FieldTagCount     = "tag_count"
	FieldSkipped      = "skipped"
	FieldFile         = "file"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentLedger     = "ledger"
	ComponentAggregator = "aggregator"
	ComponentStorage    = "storage"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentCache      = "cache"
	ComponentReport     = "report"
	ComponentRateLimit  = "rate_limit"
	ComponentBackend    = "backend"
	ComponentCLI        = "cli"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpRead      = "read"
	OpLoad      = "load"
	OpPersist   = "persist"
	OpSummarize = "summarize"
	OpPublish   = "publish"
	OpConsume   = "consume"
	OpExport    = "export"
	OpValidate  = "validate"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds the error text; a nil error adds nothing.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRecord adds the identity of a stored record.
func (f LogFields) WithRecord(kind core.RecordKind, id string, date core.Date, amount core.Money) LogFields {
	f[FieldRecordKind] = string(kind)
	f[FieldRecordID] = id
	f[FieldRecordDate] = date.String()
	f[FieldAmountCents] = amount.Cents
	return f
}

func (f LogFields) WithWindow(w core.DateWindow) LogFields {
	f[FieldWindowStart] = w.Start.String()
	f[FieldWindowEnd] = w.End.String()
	return f
}

// WithSummary adds the headline numbers of a computed summary, window included.
func (f LogFields) WithSummary(s core.Summary) LogFields {
	f.WithWindow(s.Window)
	f[FieldTotalIncome] = s.TotalIncome.String()
	f[FieldTotalExpense] = s.TotalExpenses().String()
	f[FieldNetBalance] = s.NetBalance.String()
	f[FieldTagCount] = len(s.TagTotals)
	f[FieldSkipped] = s.Skipped
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	return f
}

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

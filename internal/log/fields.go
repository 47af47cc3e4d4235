package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldUserID      = "user_id"
	FieldExpenseID   = "expense_id"
	FieldArchiveID   = "archive_id"
	FieldPeriodStart = "period_start"
	FieldPeriodEnd   = "period_end"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
	FieldSavedCount  = "saved_count"
	FieldSkipped     = "skipped_count"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentExpense  = "expense"
	ComponentPeriod   = "period"
	ComponentArchive  = "archive"
	ComponentImport   = "import"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentWorker   = "worker"
	ComponentExport   = "export"
	ComponentSavings  = "savings"
	ComponentBorrowed = "borrowed"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpArchive  = "archive"
	OpImport   = "import"
	OpExport   = "export"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

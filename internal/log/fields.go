package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldYear          = "year"
	FieldMonth         = "month"
	FieldAccountID     = "account_id"
	FieldTransactionID = "transaction_id"
	FieldSubcategoryID = "subcategory_id"
	FieldGroupID       = "group_id"
	FieldAmountCents   = "amount_cents"
	FieldEffectiveType = "effective_type"
	FieldBudgetStatus  = "budget_status"
	FieldReportRef     = "report_ref"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
	ComponentCache   = "cache"
	ComponentBudget  = "budget"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpRead      = "read"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpList      = "list"
	OpDerive    = "derive"
	OpReconcile = "reconcile"
	OpReplay    = "replay"
	OpExport    = "export"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)

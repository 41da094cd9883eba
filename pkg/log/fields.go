package log

const (
	// Request
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldLatency   = "latency_ms"
	FieldClientIP  = "client_ip"

	// Actor (matches internal/auth context keys)
	FieldUserID   = "user_id"
	FieldUserRole = "user_role"

	// Domain
	FieldSessionID = "session_id"
	FieldRoomID    = "room_id"
	FieldMessageID = "message_id"
	FieldAlertID   = "alert_id"

	// Service
	FieldService = "service"

	// Log type (for audit entries)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)

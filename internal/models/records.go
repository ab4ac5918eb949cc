package models

// Security event severities.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Activity and event types written by this subsystem.
const (
	ActivityExport          = "export"
	ActivityDeleteAuditLogs = "delete_audit_logs"
	EventAuditLogExport     = "audit_log_export"
	EventAuditLogDeletion   = "audit_log_deletion"
	OperationDelete         = "DELETE"
)

// ActivityEntry is a user_activities row produced as a side effect.
type ActivityEntry struct {
	UserEmail    string
	ActivityType string
	Description  string
	Success      bool
	IPAddress    string
	UserAgent    string
	Metadata     map[string]any
}

// SecurityEvent is a security_events row produced as a side effect.
type SecurityEvent struct {
	EventType   string
	Severity    string
	Title       string
	Description string
	Email       string
	IPAddress   string
	UserAgent   string
	Resolved    bool
	Metadata    map[string]any
}

// DataChange is a data_changes row; retention writes one as the pre-delete backup.
type DataChange struct {
	UserEmail    string
	TableName    string
	Operation    string
	OldData      map[string]any
	NewData      map[string]any
	ChangeReason string
	IPAddress    string
}

package audit

import "context"

// Event represents a single auditable action in the system.
type Event struct {
	TenantID     string
	ActorUID     string
	Action       string
	ResourceType string // "complaint"
	ResourceID   string
	Metadata     map[string]any
}

const (
	ActionComplaintCreated  = "complaint.created"
	ActionComplaintUpdated  = "complaint.updated"
	ActionComplaintAssigned = "complaint.assigned"
	ActionComplaintDeleted  = "complaint.deleted"

	ActionAccessDenied = "access.denied"
)

const (
	MetadataMissing  = "missing_capabilities"
	MetadataStatus   = "status"
	MetadataAssignee = "assignee_uid"
)

// Logger is the audit logging interface. Log is fire-and-forget and must
// never block a request.
type Logger interface {
	Log(ctx context.Context, event Event)
	Close() error
}

// NopLogger is a no-op audit logger for testing and when audit is disabled.
type NopLogger struct{}

func (NopLogger) Log(context.Context, Event) {}
func (NopLogger) Close() error               { return nil }

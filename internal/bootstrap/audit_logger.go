package bootstrap

import "context"

// AuditLog is one entry of the audit trail. Action is an upper snake case
// verb such as LEAVE_STATUS_CHANGED.
type AuditLog struct {
	Action  string
	Message string
	ActorID string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}

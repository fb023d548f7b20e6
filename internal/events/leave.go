package events

import "time"

const (
	LeaveLifecycleTopic = "hr.leave.lifecycle.v1"

	LeaveCreated       = "leave_created"
	LeaveStatusChanged = "leave_status_changed"
)

type LeaveCreatedEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id,omitempty"`
	LeaveRequestID string    `json:"leave_request_id"`
	EmployeeID     string    `json:"employee_id"`
	DaysRequested  string    `json:"days_requested"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// LeaveStatusChangedEvent is emitted whenever an update moves a request to a
// different status. BalanceDelta is negative for a debit.
type LeaveStatusChangedEvent struct {
	EventType      string    `json:"event_type"`
	RequestID      string    `json:"request_id,omitempty"`
	LeaveRequestID string    `json:"leave_request_id"`
	EmployeeID     string    `json:"employee_id"`
	FromStatus     string    `json:"from_status"`
	ToStatus       string    `json:"to_status"`
	BalanceDelta   string    `json:"balance_delta"`
	BalanceAfter   string    `json:"balance_after"`
	ChangedBy      string    `json:"changed_by,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Header is the part every event shares; consumers decode it first to route
// by type.
type Header struct {
	EventType string `json:"event_type"`
	RequestID string `json:"request_id,omitempty"`
}

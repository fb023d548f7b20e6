package leave

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/Wakkzz12/employee-leave-tracker/internal/employee"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus accepts any letter case and surrounding whitespace.
func ParseStatus(v string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(v)))
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return s, true
	}
	return s, false
}

func (s *Status) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s, _ = ParseStatus(raw)
	return nil
}

// UnmarshalParam is used by gin when binding form fields.
func (s *Status) UnmarshalParam(param string) error {
	*s, _ = ParseStatus(param)
	return nil
}

type LeaveType string

const (
	TypeSick        LeaveType = "sick"
	TypeVacation    LeaveType = "vacation"
	TypeEmergency   LeaveType = "emergency"
	TypeMaternity   LeaveType = "maternity"
	TypePaternity   LeaveType = "paternity"
	TypeBereavement LeaveType = "bereavement"
	TypeUnpaid      LeaveType = "unpaid"
)

func (t *LeaveType) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*t = LeaveType(strings.ToLower(strings.TrimSpace(raw)))
	return nil
}

func (t *LeaveType) UnmarshalParam(param string) error {
	*t = LeaveType(strings.ToLower(strings.TrimSpace(param)))
	return nil
}

type LeaveRequest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeID  uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_requests_employee_status"`
	StartDate   time.Time `gorm:"type:date;not null"`
	EndDate     time.Time `gorm:"type:date;not null"`
	HalfDay     bool      `gorm:"not null;default:false"`
	TypeOfLeave LeaveType `gorm:"column:type_of_leave;not null"`

	DaysRequested decimal.Decimal `gorm:"type:numeric(6,1);not null"`
	// ApprovedDays is what the ledger was debited when the request entered
	// approved; it is zero in every other status.
	ApprovedDays decimal.Decimal `gorm:"type:numeric(6,1);not null"`

	Status           Status          `gorm:"not null;default:'pending';index:idx_leave_requests_employee_status"`
	RejectionReason  *string         `gorm:"type:text"`
	RemainingCredits decimal.Decimal `gorm:"type:numeric(6,1);not null"`
	ProofFile        *string

	CreatedBy *uuid.UUID `gorm:"type:uuid"`
	UpdatedBy *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Employee *employee.Employee `gorm:"foreignKey:EmployeeID"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

package employee

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type EmploymentStatus string

const (
	StatusRegular     EmploymentStatus = "regular"
	StatusPermanent   EmploymentStatus = "permanent"
	StatusContractual EmploymentStatus = "contractual"
	StatusResigned    EmploymentStatus = "resigned"
	StatusTerminated  EmploymentStatus = "terminated"
	StatusAWOL        EmploymentStatus = "awol"
	StatusRetired     EmploymentStatus = "retired"
)

type Employee struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	EmployeeNumber   string    `gorm:"uniqueIndex:uq_employee_number"`
	FullName         string
	Department       string
	Position         string
	StartedDate      time.Time  `gorm:"type:date"`
	EndDate          *time.Time `gorm:"type:date"`
	EmploymentStatus EmploymentStatus
	// LeaveBalance is written only by Ledger once the row exists.
	LeaveBalance decimal.Decimal `gorm:"type:numeric(6,1)"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Employee) TableName() string {
	return "employees"
}

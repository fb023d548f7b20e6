package employee

import "github.com/shopspring/decimal"

type CreateEmployeeRequest struct {
	EmployeeNumber   string           `json:"employee_number" binding:"omitempty,max=32"`
	FullName         string           `json:"full_name" binding:"required,max=255"`
	Department       string           `json:"department" binding:"required,max=100"`
	Position         string           `json:"position" binding:"required,max=100"`
	StartedDate      string           `json:"started_date" binding:"required,datetime=2006-01-02"`
	EndDate          string           `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	EmploymentStatus string           `json:"employment_status" binding:"omitempty,oneof=regular permanent contractual resigned terminated awol retired"`
	LeaveBalance     *decimal.Decimal `json:"leave_balance"`
}

// UpdateEmployeeRequest has no balance or number field: the number is
// immutable and the balance belongs to the ledger.
type UpdateEmployeeRequest struct {
	FullName         string `json:"full_name" binding:"required,max=255"`
	Department       string `json:"department" binding:"required,max=100"`
	Position         string `json:"position" binding:"required,max=100"`
	StartedDate      string `json:"started_date" binding:"required,datetime=2006-01-02"`
	EndDate          string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	EmploymentStatus string `json:"employment_status" binding:"required,oneof=regular permanent contractual resigned terminated awol retired"`
}

type EmployeeResponse struct {
	ID               string  `json:"id"`
	EmployeeNumber   string  `json:"employee_number"`
	FullName         string  `json:"full_name"`
	Department       string  `json:"department"`
	Position         string  `json:"position"`
	StartedDate      string  `json:"started_date"`
	EndDate          *string `json:"end_date"`
	EmploymentStatus string  `json:"employment_status"`
	LeaveBalance     float64 `json:"leave_balance"`
	CreatedAt        string  `json:"created_at"`
	DeletedAt        *string `json:"deleted_at,omitempty"`
}

type EmployeeOptionResponse struct {
	ID             string  `json:"id"`
	EmployeeNumber string  `json:"employee_number"`
	FullName       string  `json:"full_name"`
	LeaveBalance   float64 `json:"leave_balance"`
}

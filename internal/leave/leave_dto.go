package leave

// CreateLeaveRequest binds from JSON or from a multipart form that also
// carries proof_file.
type CreateLeaveRequest struct {
	EmployeeID  string    `json:"employee_id" form:"employee_id" binding:"required,uuid"`
	StartDate   string    `json:"start_date" form:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate     string    `json:"end_date" form:"end_date" binding:"required,datetime=2006-01-02"`
	HalfDay     bool      `json:"half_day" form:"half_day"`
	TypeOfLeave LeaveType `json:"type_of_leave" form:"type_of_leave" binding:"required,oneof=sick vacation emergency maternity paternity bereavement unpaid"`
}

type UpdateLeaveRequest struct {
	StartDate       string    `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate         string    `json:"end_date" binding:"required,datetime=2006-01-02"`
	HalfDay         bool      `json:"half_day"`
	TypeOfLeave     LeaveType `json:"type_of_leave" binding:"required,oneof=sick vacation emergency maternity paternity bereavement unpaid"`
	Status          Status    `json:"status" binding:"required,oneof=pending approved rejected"`
	RejectionReason *string   `json:"rejection_reason" binding:"omitempty,max=255"`
}

type ListFilter struct {
	Status      string
	TypeOfLeave string
	EmployeeID  string
	Query       string
}

type LeaveRequestResponse struct {
	ID               string  `json:"id"`
	EmployeeID       string  `json:"employee_id"`
	EmployeeNumber   string  `json:"employee_number,omitempty"`
	EmployeeName     string  `json:"employee_name,omitempty"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	HalfDay          bool    `json:"half_day"`
	TypeOfLeave      string  `json:"type_of_leave"`
	DaysRequested    float64 `json:"days_requested"`
	ApprovedDays     float64 `json:"approved_days"`
	Status           string  `json:"status"`
	RejectionReason  *string `json:"rejection_reason,omitempty"`
	RemainingCredits float64 `json:"remaining_credits"`
	HasProof         bool    `json:"has_proof"`
	CreatedBy        *string `json:"created_by,omitempty"`
	UpdatedBy        *string `json:"updated_by,omitempty"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
	DeletedAt        *string `json:"deleted_at,omitempty"`
}

type HistoryResponse struct {
	DeletedLeaves []LeaveRequestResponse `json:"deleted_leaves"`
	AllHistory    []LeaveRequestResponse `json:"all_history"`
}

type EmployeeSummary struct {
	ID             string  `json:"id"`
	EmployeeNumber string  `json:"employee_number"`
	FullName       string  `json:"full_name"`
	Department     string  `json:"department"`
	Position       string  `json:"position"`
	LeaveBalance   float64 `json:"leave_balance"`
}

type EmployeeHistoryResponse struct {
	Employee EmployeeSummary        `json:"employee"`
	Leaves   []LeaveRequestResponse `json:"leaves"`
}

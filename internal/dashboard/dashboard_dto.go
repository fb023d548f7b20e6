package dashboard

import "time"

type SummaryResponse struct {
	TotalEmployees int64           `json:"total_employees"`
	TotalPending   int64           `json:"total_pending"`
	TotalApproved  int64           `json:"total_approved"`
	TotalRejected  int64           `json:"total_rejected"`
	TotalDeleted   int64           `json:"total_deleted"`
	RecentRequests []RecentRequest `json:"recent_requests"`
}

type EmployeeRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RecentRequest struct {
	ID               string      `json:"id"`
	Employee         EmployeeRef `json:"employee"`
	TypeOfLeave      string      `json:"type_of_leave"`
	StartDate        string      `json:"start_date"`
	EndDate          string      `json:"end_date"`
	Status           string      `json:"status"`
	DaysRequested    float64     `json:"days_requested"`
	RemainingCredits *float64    `json:"remaining_credits"`
	CreatedAt        time.Time   `json:"created_at"`
}

// StatusCount is one row of the grouped status count.
type StatusCount struct {
	Status string
	Total  int64
}

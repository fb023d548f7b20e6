package leave_test

import (
	"context"
	"testing"
	"time"

	"github.com/Wakkzz12/employee-leave-tracker/internal/config"
	"github.com/Wakkzz12/employee-leave-tracker/internal/employee"
	employeeerrors "github.com/Wakkzz12/employee-leave-tracker/internal/employee/errors"
	"github.com/Wakkzz12/employee-leave-tracker/internal/leave"
	leaveerrors "github.com/Wakkzz12/employee-leave-tracker/internal/leave/errors"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/migration"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type workflow struct {
	gdb     *gorm.DB
	ledger  employee.Ledger
	service leave.Service
}

func newWorkflow(t *testing.T) *workflow {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, migration.Up(context.Background(), sqlDB, config.DriverSQLite))

	ledger := employee.NewLedger(gdb)
	svc := leave.NewService(sqlDB, leave.NewRepository(gdb), ledger, nil, leave.Options{Audit: &recordingAudit{}})
	return &workflow{gdb: gdb, ledger: ledger, service: svc}
}

func (w *workflow) seedEmployee(t *testing.T, balance string) string {
	t.Helper()

	empl := employee.Employee{
		ID:               uuid.New(),
		EmployeeNumber:   "EMP-" + uuid.NewString()[:8],
		FullName:         "Jose Rizal",
		Department:       "Admin",
		Position:         "Officer",
		StartedDate:      time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
		EmploymentStatus: employee.StatusPermanent,
		LeaveBalance:     decimal.RequireFromString(balance),
	}
	require.NoError(t, w.gdb.Create(&empl).Error)
	return empl.ID.String()
}

func (w *workflow) balance(t *testing.T, employeeID string) string {
	t.Helper()
	b, err := w.ledger.Balance(context.Background(), employeeID)
	require.NoError(t, err)
	return b.String()
}

func (w *workflow) create(t *testing.T, employeeID, start, end string) leave.LeaveRequestResponse {
	t.Helper()
	resp, err := w.service.Create(context.Background(), "", leave.CreateLeaveRequest{
		EmployeeID:  employeeID,
		StartDate:   start,
		EndDate:     end,
		TypeOfLeave: leave.TypeVacation,
	}, nil)
	require.NoError(t, err)
	return resp
}

func move(start, end string, status leave.Status, reason string) leave.UpdateLeaveRequest {
	req := leave.UpdateLeaveRequest{
		StartDate:   start,
		EndDate:     end,
		TypeOfLeave: leave.TypeVacation,
		Status:      status,
	}
	if reason != "" {
		req.RejectionReason = &reason
	}
	return req
}

func TestWorkflow_ApproveThenRejectRestoresBalance(t *testing.T) {
	w := newWorkflow(t)
	ctx := context.Background()
	empID := w.seedEmployee(t, "15")

	created := w.create(t, empID, "2026-01-05", "2026-01-09")
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, 15.0, created.RemainingCredits)

	approved, err := w.service.Update(ctx, "", created.ID, move("2026-01-05", "2026-01-09", leave.StatusApproved, ""))
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	assert.Equal(t, 5.0, approved.ApprovedDays)
	assert.Equal(t, "10", w.balance(t, empID))

	rejected, err := w.service.Update(ctx, "", created.ID, move("2026-01-05", "2026-01-09", leave.StatusRejected, "  Coverage needed \n"))
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)
	assert.Equal(t, 0.0, rejected.ApprovedDays)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "Coverage needed", *rejected.RejectionReason)
	assert.Equal(t, "15", w.balance(t, empID))

	back, err := w.service.Update(ctx, "", created.ID, move("2026-01-05", "2026-01-09", leave.StatusPending, ""))
	require.NoError(t, err)
	assert.Nil(t, back.RejectionReason)
	assert.Equal(t, "15", w.balance(t, empID))
}

func TestWorkflow_InsufficientBalanceKeepsRequestPending(t *testing.T) {
	w := newWorkflow(t)
	ctx := context.Background()
	empID := w.seedEmployee(t, "2")

	first := w.create(t, empID, "2026-01-05", "2026-01-05")
	_, err := w.service.Update(ctx, "", first.ID, move("2026-01-05", "2026-01-05", leave.StatusApproved, ""))
	require.NoError(t, err)
	assert.Equal(t, "1", w.balance(t, empID))

	second := w.create(t, empID, "2026-01-12", "2026-01-14")
	_, err = w.service.Update(ctx, "", second.ID, move("2026-01-12", "2026-01-14", leave.StatusApproved, ""))
	assert.ErrorIs(t, err, employeeerrors.ErrInsufficientBalance)

	assert.Equal(t, "1", w.balance(t, empID))
	got, err := w.service.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)
	assert.Equal(t, 0.0, got.ApprovedDays)
}

func TestWorkflow_OverlapWithApprovedLeave(t *testing.T) {
	w := newWorkflow(t)
	ctx := context.Background()
	empID := w.seedEmployee(t, "15")

	first := w.create(t, empID, "2026-01-05", "2026-01-09")
	_, err := w.service.Update(ctx, "", first.ID, move("2026-01-05", "2026-01-09", leave.StatusApproved, ""))
	require.NoError(t, err)

	_, err = w.service.Create(ctx, "", leave.CreateLeaveRequest{
		EmployeeID:  empID,
		StartDate:   "2026-01-09",
		EndDate:     "2026-01-13",
		TypeOfLeave: leave.TypeSick,
	}, nil)
	assert.ErrorIs(t, err, leaveerrors.ErrDateOverlap)

	// touching but not sharing a day
	other := w.create(t, empID, "2026-01-12", "2026-01-13")
	assert.Equal(t, "pending", other.Status)

	// the approved request does not collide with itself
	_, err = w.service.Update(ctx, "", first.ID, move("2026-01-05", "2026-01-08", leave.StatusApproved, ""))
	require.NoError(t, err)
	assert.Equal(t, "11", w.balance(t, empID))
}

func TestWorkflow_DeleteKeepsBalanceAndShowsInHistory(t *testing.T) {
	w := newWorkflow(t)
	ctx := context.Background()
	empID := w.seedEmployee(t, "15")

	lr := w.create(t, empID, "2026-01-05", "2026-01-06")
	_, err := w.service.Update(ctx, "", lr.ID, move("2026-01-05", "2026-01-06", leave.StatusApproved, ""))
	require.NoError(t, err)

	require.NoError(t, w.service.Delete(ctx, lr.ID))
	assert.Equal(t, "13", w.balance(t, empID))

	_, err = w.service.GetByID(ctx, lr.ID)
	assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)

	hist, err := w.service.History(ctx)
	require.NoError(t, err)
	require.Len(t, hist.DeletedLeaves, 1)
	assert.Len(t, hist.AllHistory, 1)

	emplHist, err := w.service.EmployeeHistory(ctx, empID)
	require.NoError(t, err)
	require.Len(t, emplHist.Leaves, 1)
	assert.NotNil(t, emplHist.Leaves[0].DeletedAt)
	assert.Equal(t, 13.0, emplHist.Employee.LeaveBalance)
}

func TestWorkflow_ListFilters(t *testing.T) {
	w := newWorkflow(t)
	ctx := context.Background()
	a := w.seedEmployee(t, "15")
	b := w.seedEmployee(t, "15")

	w.create(t, a, "2026-01-05", "2026-01-05")
	second := w.create(t, a, "2026-01-06", "2026-01-06")
	w.create(t, b, "2026-01-07", "2026-01-07")

	_, err := w.service.Update(ctx, "", second.ID, move("2026-01-06", "2026-01-06", leave.StatusApproved, ""))
	require.NoError(t, err)

	all, err := w.service.GetAll(ctx, leave.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	approved, err := w.service.GetAll(ctx, leave.ListFilter{Status: "APPROVED"})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, second.ID, approved[0].ID)
	assert.Equal(t, "Jose Rizal", approved[0].EmployeeName)

	ofB, err := w.service.GetAll(ctx, leave.ListFilter{EmployeeID: b})
	require.NoError(t, err)
	assert.Len(t, ofB, 1)

	byName, err := w.service.GetAll(ctx, leave.ListFilter{Query: "rizal"})
	require.NoError(t, err)
	assert.Len(t, byName, 3)
}

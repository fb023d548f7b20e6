package leave

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Wakkzz12/employee-leave-tracker/internal/bootstrap"
	"github.com/Wakkzz12/employee-leave-tracker/internal/employee"
	"github.com/Wakkzz12/employee-leave-tracker/internal/events"
	leaveerrors "github.com/Wakkzz12/employee-leave-tracker/internal/leave/errors"
	"github.com/Wakkzz12/employee-leave-tracker/internal/messaging/kafka"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/cache"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/contextutil"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/storage"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Service interface {
	Create(ctx context.Context, actorID string, req CreateLeaveRequest, proof *storage.Upload) (LeaveRequestResponse, error)
	GetAll(ctx context.Context, filter ListFilter) ([]LeaveRequestResponse, error)
	GetByID(ctx context.Context, id string) (LeaveRequestResponse, error)
	Update(ctx context.Context, actorID, id string, req UpdateLeaveRequest) (LeaveRequestResponse, error)
	Delete(ctx context.Context, id string) error
	History(ctx context.Context) (HistoryResponse, error)
	EmployeeHistory(ctx context.Context, employeeID string) (EmployeeHistoryResponse, error)
	OpenProof(ctx context.Context, id string) (*storage.File, error)
}

// Options carries the optional collaborators of the service.
type Options struct {
	Outbox kafka.OutboxRepository
	Proofs storage.Storage
	Audit  bootstrap.AuditLogger
}

type service struct {
	db     *sql.DB
	repo   Repository
	ledger employee.Ledger
	outbox kafka.OutboxRepository
	proofs storage.Storage
	audit  bootstrap.AuditLogger
	rdb    *redis.Client
	logger *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	ledger employee.Ledger,
	rdb *redis.Client,
	opts Options,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	audit := opts.Audit
	if audit == nil {
		audit = bootstrap.NewStdoutAuditLogger(l)
	}
	return &service{
		db:     db,
		repo:   repo,
		ledger: ledger,
		outbox: opts.Outbox,
		proofs: opts.Proofs,
		audit:  audit,
		rdb:    rdb,
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateLeaveRequest, proof *storage.Upload) (LeaveRequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create leave requested",
		zap.String("request_id", rid),
		zap.String("actor_id", actorID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	employeeID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidEmployeeID
	}

	startDate, endDate, days, err := parseRange(req.StartDate, req.EndDate, req.HalfDay)
	if err != nil {
		s.logger.Warn("create leave invalid range",
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	empl, err := qtx.FindEmployee(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("create leave employee not found", zap.String("employee_id", req.EmployeeID))
			return LeaveRequestResponse{}, leaveerrors.ErrEmployeeNotFound
		}
		s.logger.Error("create leave fetch employee failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	overlap, err := qtx.HasApprovedOverlap(ctx, req.EmployeeID, startDate, endDate, nil)
	if err != nil {
		s.logger.Error("create leave overlap check failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	if overlap {
		s.logger.Warn("create leave overlap detected",
			zap.String("employee_id", req.EmployeeID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveRequestResponse{}, leaveerrors.ErrDateOverlap
	}

	lr := &LeaveRequest{
		ID:               uuid.New(),
		EmployeeID:       employeeID,
		StartDate:        startDate,
		EndDate:          endDate,
		HalfDay:          req.HalfDay && startDate.Equal(endDate),
		TypeOfLeave:      req.TypeOfLeave,
		DaysRequested:    days,
		ApprovedDays:     decimal.Zero,
		Status:           StatusPending,
		RemainingCredits: empl.LeaveBalance,
		CreatedBy:        parseActor(actorID),
	}

	committed := false
	if proof != nil && s.proofs != nil {
		ref, err := s.proofs.Save(ctx, *proof)
		if err != nil {
			s.logger.Warn("create leave proof rejected", zap.String("filename", proof.Filename), zap.Error(err))
			return LeaveRequestResponse{}, err
		}
		lr.ProofFile = &ref
		defer func() {
			if !committed {
				s.removeProof(ctx, ref)
			}
		}()
	}

	if err := qtx.Create(ctx, lr); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	if s.outbox != nil {
		event, err := kafka.NewOutboxEvent(rid, "leave_request", lr.ID.String(), events.LeaveCreated, events.LeaveLifecycleTopic,
			events.LeaveCreatedEvent{
				EventType:      events.LeaveCreated,
				RequestID:      rid,
				LeaveRequestID: lr.ID.String(),
				EmployeeID:     lr.EmployeeID.String(),
				DaysRequested:  lr.DaysRequested.String(),
				OccurredAt:     time.Now().UTC(),
			})
		if err != nil {
			s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
			return LeaveRequestResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
			s.logger.Error("create leave outbox persist failed", zap.String("leave_id", lr.ID.String()), zap.Error(err))
			return LeaveRequestResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	committed = true

	cache.Invalidate(ctx, s.rdb, s.logger, cache.DashboardKey)

	s.logger.Info("create leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", lr.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.String("days_requested", days.String()),
	)

	lr.Employee = empl
	return mapToResponse(*lr), nil
}

func (s *service) GetAll(ctx context.Context, filter ListFilter) ([]LeaveRequestResponse, error) {
	s.logger.Debug("get all leaves requested",
		zap.String("status", filter.Status),
		zap.String("type_of_leave", filter.TypeOfLeave),
		zap.String("employee_id", filter.EmployeeID),
	)
	if filter.Status != "" {
		status, ok := ParseStatus(filter.Status)
		if !ok {
			return nil, leaveerrors.ErrInvalidStatus
		}
		filter.Status = string(status)
	}
	if filter.EmployeeID != "" {
		if _, err := uuid.Parse(filter.EmployeeID); err != nil {
			return nil, leaveerrors.ErrInvalidEmployeeID
		}
	}

	lrs, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("get all leaves failed", zap.Error(err))
		return nil, err
	}
	return mapToListResponse(lrs), nil
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveRequestResponse, error) {
	s.logger.Debug("get leave by id requested", zap.String("leave_id", id))
	if _, err := uuid.Parse(id); err != nil {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidLeaveID
	}

	lr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("get leave by id failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveRequestResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*lr), nil
}

// Update applies new dates, type and status to a request. The ledger moves
// only when the request enters or leaves approved, or when an approved
// request changes its chargeable days; any ledger failure aborts the whole
// update.
// trimmedReason returns nil for a missing or blank reason.
func trimmedReason(reason *string) *string {
	if reason == nil {
		return nil
	}
	r := strings.TrimSpace(*reason)
	if r == "" {
		return nil
	}
	return &r
}

func (s *service) Update(ctx context.Context, actorID, id string, req UpdateLeaveRequest) (LeaveRequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("update leave requested",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("actor_id", actorID),
		zap.String("target_status", string(req.Status)),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidLeaveID
	}
	target, ok := ParseStatus(string(req.Status))
	if !ok {
		return LeaveRequestResponse{}, leaveerrors.ErrInvalidStatus
	}
	reason := trimmedReason(req.RejectionReason)
	if target == StatusRejected && reason == nil {
		s.logger.Warn("update leave missing rejection reason", zap.String("leave_id", id))
		return LeaveRequestResponse{}, leaveerrors.ErrMissingRejectionReason
	}

	startDate, endDate, days, err := parseRange(req.StartDate, req.EndDate, req.HalfDay)
	if err != nil {
		s.logger.Warn("update leave invalid range", zap.String("leave_id", id), zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update leave begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	ledger := s.ledger.WithTx(tx)

	lr, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		s.logger.Warn("update leave fetch existing failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveRequestResponse{}, mapRepositoryError(err)
	}
	employeeID := lr.EmployeeID.String()
	from := lr.Status

	if target == StatusApproved {
		overlap, err := qtx.HasApprovedOverlap(ctx, employeeID, startDate, endDate, &id)
		if err != nil {
			s.logger.Error("update leave overlap check failed", zap.Error(err))
			return LeaveRequestResponse{}, err
		}
		if overlap {
			s.logger.Warn("update leave overlap detected",
				zap.String("leave_id", id),
				zap.String("employee_id", employeeID),
			)
			return LeaveRequestResponse{}, leaveerrors.ErrDateOverlap
		}
	}

	var (
		balance      decimal.Decimal
		delta        = decimal.Zero
		approvedDays = lr.ApprovedDays
	)
	switch {
	case from != StatusApproved && target == StatusApproved:
		balance, err = ledger.Debit(ctx, employeeID, days)
		delta = days.Neg()
		approvedDays = days
	case from == StatusApproved && target != StatusApproved:
		balance, err = ledger.Credit(ctx, employeeID, lr.ApprovedDays)
		delta = lr.ApprovedDays
		approvedDays = decimal.Zero
	case from == StatusApproved && !lr.ApprovedDays.Equal(days):
		if _, err = ledger.Credit(ctx, employeeID, lr.ApprovedDays); err == nil {
			balance, err = ledger.Debit(ctx, employeeID, days)
		}
		delta = lr.ApprovedDays.Sub(days)
		approvedDays = days
	default:
		balance, err = ledger.Balance(ctx, employeeID)
	}
	if err != nil {
		s.logger.Warn("update leave ledger rejected",
			zap.String("leave_id", id),
			zap.String("employee_id", employeeID),
			zap.String("from_status", string(from)),
			zap.String("to_status", string(target)),
			zap.String("days", days.String()),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, err
	}

	lr.StartDate = startDate
	lr.EndDate = endDate
	lr.HalfDay = req.HalfDay && startDate.Equal(endDate)
	lr.TypeOfLeave = req.TypeOfLeave
	lr.DaysRequested = days
	lr.ApprovedDays = approvedDays
	lr.Status = target
	lr.RemainingCredits = balance
	lr.UpdatedBy = parseActor(actorID)
	if target == StatusRejected {
		lr.RejectionReason = reason
	} else {
		lr.RejectionReason = nil
	}

	if err := qtx.Update(ctx, lr); err != nil {
		s.logger.Error("update leave persist failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	changed := from != target
	if changed && s.outbox != nil {
		event, err := kafka.NewOutboxEvent(rid, "leave_request", id, events.LeaveStatusChanged, events.LeaveLifecycleTopic,
			events.LeaveStatusChangedEvent{
				EventType:      events.LeaveStatusChanged,
				RequestID:      rid,
				LeaveRequestID: id,
				EmployeeID:     employeeID,
				FromStatus:     string(from),
				ToStatus:       string(target),
				BalanceDelta:   delta.String(),
				BalanceAfter:   balance.String(),
				ChangedBy:      actorID,
				OccurredAt:     time.Now().UTC(),
			})
		if err != nil {
			s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
			return LeaveRequestResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
			s.logger.Error("update leave outbox persist failed", zap.String("leave_id", id), zap.Error(err))
			return LeaveRequestResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update leave commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	cache.Invalidate(ctx, s.rdb, s.logger, cache.DashboardKey, cache.EmployeeOptionsKey)

	if changed {
		s.audit.Log(ctx, bootstrap.AuditLog{
			Action:  "LEAVE_STATUS_CHANGED",
			Message: "Leave request status changed",
			ActorID: actorID,
			Meta: map[string]any{
				"leave_id":      id,
				"employee_id":   employeeID,
				"from_status":   string(from),
				"to_status":     string(target),
				"balance_delta": delta.String(),
				"balance_after": balance.String(),
			},
		})
	}

	s.logger.Info("update leave success",
		zap.String("request_id", rid),
		zap.String("leave_id", id),
		zap.String("status", string(target)),
		zap.String("remaining_credits", balance.String()),
	)

	return mapToResponse(*lr), nil
}

// Delete soft-deletes the request and removes its proof file. The balance is
// left as it is, even for an approved request.
func (s *service) Delete(ctx context.Context, id string) error {
	s.logger.Debug("delete leave requested", zap.String("leave_id", id))
	if _, err := uuid.Parse(id); err != nil {
		return leaveerrors.ErrInvalidLeaveID
	}

	lr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("delete leave fetch failed", zap.String("leave_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("delete leave failed", zap.String("leave_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	if lr.ProofFile != nil {
		s.removeProof(ctx, *lr.ProofFile)
	}

	cache.Invalidate(ctx, s.rdb, s.logger, cache.DashboardKey)

	s.logger.Info("delete leave success", zap.String("leave_id", id))
	return nil
}

func (s *service) History(ctx context.Context) (HistoryResponse, error) {
	s.logger.Debug("leave history requested")

	deleted, err := s.repo.FindDeleted(ctx)
	if err != nil {
		s.logger.Error("leave history deleted failed", zap.Error(err))
		return HistoryResponse{}, err
	}
	all, err := s.repo.FindHistory(ctx)
	if err != nil {
		s.logger.Error("leave history all failed", zap.Error(err))
		return HistoryResponse{}, err
	}

	return HistoryResponse{
		DeletedLeaves: mapToListResponse(deleted),
		AllHistory:    mapToListResponse(all),
	}, nil
}

func (s *service) EmployeeHistory(ctx context.Context, employeeID string) (EmployeeHistoryResponse, error) {
	s.logger.Debug("employee leave history requested", zap.String("employee_id", employeeID))
	if _, err := uuid.Parse(employeeID); err != nil {
		return EmployeeHistoryResponse{}, leaveerrors.ErrInvalidEmployeeID
	}

	empl, err := s.repo.FindEmployee(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EmployeeHistoryResponse{}, leaveerrors.ErrEmployeeNotFound
		}
		s.logger.Error("employee leave history fetch employee failed", zap.Error(err))
		return EmployeeHistoryResponse{}, err
	}

	lrs, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("employee leave history failed", zap.String("employee_id", employeeID), zap.Error(err))
		return EmployeeHistoryResponse{}, err
	}
	for i := range lrs {
		lrs[i].Employee = empl
	}

	return EmployeeHistoryResponse{
		Employee: EmployeeSummary{
			ID:             empl.ID.String(),
			EmployeeNumber: empl.EmployeeNumber,
			FullName:       empl.FullName,
			Department:     empl.Department,
			Position:       empl.Position,
			LeaveBalance:   empl.LeaveBalance.InexactFloat64(),
		},
		Leaves: mapToListResponse(lrs),
	}, nil
}

func (s *service) OpenProof(ctx context.Context, id string) (*storage.File, error) {
	s.logger.Debug("open leave proof requested", zap.String("leave_id", id))
	if _, err := uuid.Parse(id); err != nil {
		return nil, leaveerrors.ErrInvalidLeaveID
	}

	lr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if lr.ProofFile == nil || s.proofs == nil {
		return nil, leaveerrors.ErrProofNotFound
	}

	f, err := s.proofs.Open(ctx, *lr.ProofFile)
	if err != nil {
		s.logger.Warn("open leave proof failed", zap.String("leave_id", id), zap.Error(err))
		return nil, err
	}
	return f, nil
}

func (s *service) removeProof(ctx context.Context, ref string) {
	if s.proofs == nil {
		return
	}
	if err := s.proofs.Delete(ctx, ref); err != nil {
		s.logger.Error("remove proof file failed", zap.String("proof_file", ref), zap.Error(err))
	}
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return leaveerrors.ErrLeaveNotFound
	}
	return err
}

func parseRange(start, end string, halfDay bool) (time.Time, time.Time, decimal.Decimal, error) {
	startDate, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, decimal.Zero, leaveerrors.ErrInvalidDateFormat
	}
	endDate, err := time.Parse(dateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, decimal.Zero, leaveerrors.ErrInvalidDateFormat
	}

	days, err := CalculateDaysRequested(startDate, endDate, halfDay)
	if err != nil {
		return time.Time{}, time.Time{}, decimal.Zero, err
	}
	return startDate, endDate, days, nil
}

func parseActor(actorID string) *uuid.UUID {
	id, err := uuid.Parse(actorID)
	if err != nil {
		return nil
	}
	return &id
}

func mapToResponse(lr LeaveRequest) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:               lr.ID.String(),
		EmployeeID:       lr.EmployeeID.String(),
		StartDate:        lr.StartDate.Format(dateLayout),
		EndDate:          lr.EndDate.Format(dateLayout),
		HalfDay:          lr.HalfDay,
		TypeOfLeave:      string(lr.TypeOfLeave),
		DaysRequested:    lr.DaysRequested.InexactFloat64(),
		ApprovedDays:     lr.ApprovedDays.InexactFloat64(),
		Status:           string(lr.Status),
		RejectionReason:  lr.RejectionReason,
		RemainingCredits: lr.RemainingCredits.InexactFloat64(),
		HasProof:         lr.ProofFile != nil,
		CreatedAt:        lr.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        lr.UpdatedAt.Format(time.RFC3339),
	}
	if lr.Employee != nil {
		resp.EmployeeName = lr.Employee.FullName
		resp.EmployeeNumber = lr.Employee.EmployeeNumber
	}
	if lr.CreatedBy != nil {
		v := lr.CreatedBy.String()
		resp.CreatedBy = &v
	}
	if lr.UpdatedBy != nil {
		v := lr.UpdatedBy.String()
		resp.UpdatedBy = &v
	}
	if lr.DeletedAt.Valid {
		v := lr.DeletedAt.Time.Format(time.RFC3339)
		resp.DeletedAt = &v
	}
	return resp
}

func mapToListResponse(lrs []LeaveRequest) []LeaveRequestResponse {
	resp := make([]LeaveRequestResponse, len(lrs))
	for i, lr := range lrs {
		resp[i] = mapToResponse(lr)
	}
	return resp
}

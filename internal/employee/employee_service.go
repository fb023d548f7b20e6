package employee

import (
	"context"
	"database/sql"
	"errors"
	"time"

	employeeerrors "github.com/Wakkzz12/employee-leave-tracker/internal/employee/errors"
	"github.com/Wakkzz12/employee-leave-tracker/internal/events"
	"github.com/Wakkzz12/employee-leave-tracker/internal/messaging/kafka"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/cache"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/contextutil"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/counter"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/storage"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	dateLayout      = "2006-01-02"
	optionsCacheTTL = time.Hour
)

var defaultLeaveBalance = decimal.NewFromInt(15)

type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context) ([]EmployeeResponse, error)
	GetOptions(ctx context.Context) ([]EmployeeOptionResponse, error)
	GetDeleted(ctx context.Context) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, id string) (EmployeeResponse, error)
	Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) (EmployeeResponse, error)
	ForceDelete(ctx context.Context, id string) error
}

// Options carries the optional collaborators of the service.
type Options struct {
	Outbox         kafka.OutboxRepository
	Proofs         storage.Storage
	DefaultBalance decimal.Decimal
}

type service struct {
	db             *sql.DB
	repo           Repository
	counter        counter.Repository
	outbox         kafka.OutboxRepository
	proofs         storage.Storage
	rdb            *redis.Client
	sf             *singleflight.Group
	defaultBalance decimal.Decimal
	logger         *zap.Logger
}

func NewService(db *sql.DB, repo Repository, counter counter.Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	return NewServiceWithOptions(db, repo, counter, rdb, Options{}, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	counter counter.Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	return NewServiceWithOptions(db, repo, counter, rdb, Options{Outbox: outboxRepo}, logger...)
}

func NewServiceWithOptions(
	db *sql.DB,
	repo Repository,
	counter counter.Repository,
	rdb *redis.Client,
	opts Options,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	balance := opts.DefaultBalance
	if balance.IsZero() {
		balance = defaultLeaveBalance
	}
	return &service{
		db:             db,
		repo:           repo,
		counter:        counter,
		outbox:         opts.Outbox,
		proofs:         opts.Proofs,
		rdb:            rdb,
		sf:             &singleflight.Group{},
		defaultBalance: balance,
		logger:         l,
	}
}

func (s *service) Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create employee requested",
		zap.String("request_id", rid),
		zap.String("employee_number", req.EmployeeNumber),
	)

	startedDate, endDate, err := parseEmploymentDates(req.StartedDate, req.EndDate)
	if err != nil {
		s.logger.Warn("create employee invalid dates",
			zap.String("started_date", req.StartedDate),
			zap.String("end_date", req.EndDate),
			zap.Error(err),
		)
		return EmployeeResponse{}, err
	}

	balance := s.defaultBalance
	if req.LeaveBalance != nil {
		balance = *req.LeaveBalance
	}
	if balance.IsNegative() {
		s.logger.Warn("create employee negative opening balance", zap.String("leave_balance", balance.String()))
		return EmployeeResponse{}, employeeerrors.ErrNegativeBalance
	}

	status := EmploymentStatus(req.EmploymentStatus)
	if status == "" {
		status = StatusContractual
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create employee begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	if req.EmployeeNumber == "" {
		nextVal, err := s.counter.WithTx(tx).GetNextValue(ctx, counter.EmployeeNumber)
		if err != nil {
			s.logger.Error("create employee generate number failed", zap.Error(err))
			return EmployeeResponse{}, err
		}
		req.EmployeeNumber = counter.FormatEmployeeNumber(nextVal)
	}

	empl := &Employee{
		ID:               uuid.New(),
		EmployeeNumber:   req.EmployeeNumber,
		FullName:         req.FullName,
		Department:       req.Department,
		Position:         req.Position,
		StartedDate:      startedDate,
		EndDate:          endDate,
		EmploymentStatus: status,
		LeaveBalance:     balance,
	}

	if err := s.repo.WithTx(tx).Create(ctx, empl); err != nil {
		s.logger.Error("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if s.outbox != nil {
		event, err := kafka.NewOutboxEvent(rid, "employee", empl.ID.String(), events.EmployeeCreated, events.EmployeeLifecycleTopic,
			events.EmployeeCreatedEvent{
				EventType:      events.EmployeeCreated,
				RequestID:      rid,
				EmployeeID:     empl.ID.String(),
				EmployeeNumber: empl.EmployeeNumber,
				LeaveBalance:   empl.LeaveBalance.String(),
				OccurredAt:     time.Now().UTC(),
			})
		if err != nil {
			s.logger.Error("marshal event failed", zap.String("request_id", rid), zap.Error(err))
			return EmployeeResponse{}, err
		}

		if err := s.outbox.WithTx(tx).Create(ctx, event); err != nil {
			s.logger.Error("create employee outbox persist failed",
				zap.String("employee_id", empl.ID.String()),
				zap.Error(err),
			)
			return EmployeeResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("commit failed", zap.String("request_id", rid), zap.Error(err))
		return EmployeeResponse{}, err
	}

	cache.Invalidate(ctx, s.rdb, s.logger, cache.EmployeeOptionsKey, cache.DashboardKey)

	s.logger.Info("create employee success",
		zap.String("request_id", rid),
		zap.String("employee_id", empl.ID.String()),
		zap.String("employee_number", empl.EmployeeNumber),
	)

	return mapToResponse(*empl), nil
}

func (s *service) GetAll(ctx context.Context) ([]EmployeeResponse, error) {
	s.logger.Debug("get all employees requested")
	empls, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("get all employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(empls), nil
}

func (s *service) GetOptions(ctx context.Context) ([]EmployeeOptionResponse, error) {
	return cache.GetOrLoad(ctx, s.rdb, s.sf, cache.EmployeeOptionsKey, optionsCacheTTL,
		func(ctx context.Context) ([]EmployeeOptionResponse, error) {
			empls, err := s.repo.FindOptions(ctx)
			if err != nil {
				s.logger.Error("get employee options failed", zap.Error(err))
				return nil, mapRepositoryError(err)
			}

			resp := make([]EmployeeOptionResponse, len(empls))
			for i, e := range empls {
				resp[i] = EmployeeOptionResponse{
					ID:             e.ID.String(),
					EmployeeNumber: e.EmployeeNumber,
					FullName:       e.FullName,
					LeaveBalance:   e.LeaveBalance.InexactFloat64(),
				}
			}
			return resp, nil
		})
}

func (s *service) GetDeleted(ctx context.Context) ([]EmployeeResponse, error) {
	s.logger.Debug("get deleted employees requested")
	empls, err := s.repo.FindDeleted(ctx)
	if err != nil {
		s.logger.Error("get deleted employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(empls), nil
}

func (s *service) GetByID(ctx context.Context, id string) (EmployeeResponse, error) {
	s.logger.Debug("get employee by id requested", zap.String("employee_id", id))
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	empl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("get employee by id failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*empl), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error) {
	s.logger.Debug("update employee requested", zap.String("employee_id", id))
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	startedDate, endDate, err := parseEmploymentDates(req.StartedDate, req.EndDate)
	if err != nil {
		s.logger.Warn("update employee invalid dates", zap.Error(err))
		return EmployeeResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update employee begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	empl, err := qtx.FindByID(ctx, id)
	if err != nil {
		s.logger.Warn("update employee fetch existing failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	empl.FullName = req.FullName
	empl.Department = req.Department
	empl.Position = req.Position
	empl.StartedDate = startedDate
	empl.EndDate = endDate
	empl.EmploymentStatus = EmploymentStatus(req.EmploymentStatus)

	if err := qtx.Update(ctx, empl); err != nil {
		s.logger.Error("update employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("update employee commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	cache.Invalidate(ctx, s.rdb, s.logger, cache.EmployeeOptionsKey, cache.DashboardKey)

	s.logger.Info("update employee success", zap.String("employee_id", id))

	return mapToResponse(*empl), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	s.logger.Debug("delete employee requested", zap.String("employee_id", id))
	if _, err := uuid.Parse(id); err != nil {
		return employeeerrors.ErrInvalidEmployeeID
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("delete employee failed", zap.String("employee_id", id), zap.Error(err))
		return mapRepositoryError(err)
	}

	cache.Invalidate(ctx, s.rdb, s.logger, cache.EmployeeOptionsKey, cache.DashboardKey)

	s.logger.Info("delete employee success", zap.String("employee_id", id))
	return nil
}

func (s *service) Restore(ctx context.Context, id string) (EmployeeResponse, error) {
	s.logger.Debug("restore employee requested", zap.String("employee_id", id))
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("restore employee begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Restore(ctx, id); err != nil {
		s.logger.Warn("restore employee failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	empl, err := qtx.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("restore employee reload failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("restore employee commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	cache.Invalidate(ctx, s.rdb, s.logger, cache.EmployeeOptionsKey, cache.DashboardKey)

	s.logger.Info("restore employee success", zap.String("employee_id", id))
	return mapToResponse(*empl), nil
}

func (s *service) ForceDelete(ctx context.Context, id string) error {
	s.logger.Debug("force delete employee requested", zap.String("employee_id", id))
	if _, err := uuid.Parse(id); err != nil {
		return employeeerrors.ErrInvalidEmployeeID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("force delete employee begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if _, err := qtx.FindDeletedByID(ctx, id); err != nil {
		mapped := mapRepositoryError(err)
		if errors.Is(mapped, employeeerrors.ErrEmployeeNotFound) {
			if _, activeErr := qtx.FindByID(ctx, id); activeErr == nil {
				mapped = employeeerrors.ErrEmployeeNotDeleted
			}
		}
		s.logger.Warn("force delete employee rejected", zap.String("employee_id", id), zap.Error(mapped))
		return mapped
	}

	refs, err := qtx.ListProofFiles(ctx, id)
	if err != nil {
		s.logger.Error("force delete employee list proofs failed", zap.Error(err))
		return err
	}

	if err := qtx.ForceDelete(ctx, id); err != nil {
		s.logger.Error("force delete employee failed", zap.Error(err))
		return mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("force delete employee commit failed", zap.Error(err))
		return err
	}

	if s.proofs != nil {
		for _, ref := range refs {
			if err := s.proofs.Delete(ctx, ref); err != nil {
				s.logger.Error("force delete employee remove proof failed", zap.String("proof_file", ref), zap.Error(err))
			}
		}
	}

	cache.Invalidate(ctx, s.rdb, s.logger, cache.EmployeeOptionsKey, cache.DashboardKey)

	s.logger.Info("force delete employee success",
		zap.String("employee_id", id),
		zap.Int("proof_files_removed", len(refs)),
	)
	return nil
}

func parseEmploymentDates(started, ended string) (time.Time, *time.Time, error) {
	startedDate, err := time.Parse(dateLayout, started)
	if err != nil {
		return time.Time{}, nil, employeeerrors.ErrInvalidDate
	}
	if ended == "" {
		return startedDate, nil, nil
	}

	endDate, err := time.Parse(dateLayout, ended)
	if err != nil {
		return time.Time{}, nil, employeeerrors.ErrInvalidDate
	}
	if endDate.Before(startedDate) {
		return time.Time{}, nil, employeeerrors.ErrEndBeforeStart
	}
	return startedDate, &endDate, nil
}

func mapToResponse(empl Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:               empl.ID.String(),
		EmployeeNumber:   empl.EmployeeNumber,
		FullName:         empl.FullName,
		Department:       empl.Department,
		Position:         empl.Position,
		StartedDate:      empl.StartedDate.Format(dateLayout),
		EmploymentStatus: string(empl.EmploymentStatus),
		LeaveBalance:     empl.LeaveBalance.InexactFloat64(),
		CreatedAt:        empl.CreatedAt.Format(time.RFC3339),
	}
	if empl.EndDate != nil {
		end := empl.EndDate.Format(dateLayout)
		resp.EndDate = &end
	}
	if empl.DeletedAt.Valid {
		deleted := empl.DeletedAt.Time.Format(time.RFC3339)
		resp.DeletedAt = &deleted
	}
	return resp
}

func mapToListResponse(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = mapToResponse(e)
	}
	return res
}

package employee_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Wakkzz12/employee-leave-tracker/internal/employee"
	employeeerrors "github.com/Wakkzz12/employee-leave-tracker/internal/employee/errors"
	"github.com/Wakkzz12/employee-leave-tracker/internal/events"
	"github.com/Wakkzz12/employee-leave-tracker/internal/messaging/kafka"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/cache"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/contextutil"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/counter"

	employeeMock "github.com/Wakkzz12/employee-leave-tracker/internal/employee/mock"
	kafkaMock "github.com/Wakkzz12/employee-leave-tracker/internal/messaging/kafka/mock"
	counterMock "github.com/Wakkzz12/employee-leave-tracker/internal/shared/counter/mock"
	storageMock "github.com/Wakkzz12/employee-leave-tracker/internal/shared/storage/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type serviceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   employee.Service
	repo      *employeeMock.MockRepository
	counter   *counterMock.MockRepository
	redismock redismock.ClientMock
	outbox    *kafkaMock.MockOutboxRepository
	proofs    *storageMock.MockStorage
}

func setupServiceTest(t *testing.T) *serviceDeps {
	ctrl := gomock.NewController(t)

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	dbRedis, redisMock := redismock.NewClientMock()
	repo := employeeMock.NewMockRepository(ctrl)
	counterRepo := counterMock.NewMockRepository(ctrl)
	outboxRepo := kafkaMock.NewMockOutboxRepository(ctrl)
	proofs := storageMock.NewMockStorage(ctrl)

	svc := employee.NewServiceWithOptions(db, repo, counterRepo, dbRedis, employee.Options{
		Outbox: outboxRepo,
		Proofs: proofs,
	})

	return &serviceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   svc,
		repo:      repo,
		counter:   counterRepo,
		outbox:    outboxRepo,
		redismock: redisMock,
		proofs:    proofs,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func validCreateRequest() employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		FullName:    "Juan Dela Cruz",
		Department:  "Operations",
		Position:    "Supervisor",
		StartedDate: "2025-06-01",
	}
}

func TestEmployeeService_Create(t *testing.T) {
	t.Run("success - auto generate employee number with default balance", func(t *testing.T) {
		deps := setupServiceTest(t)
		rid := "REQ-123-ABC"
		ctx := contextutil.WithRequestID(context.Background(), rid)
		req := validCreateRequest()

		expectTx(t, deps.sqlMock, true)

		deps.counter.EXPECT().WithTx(gomock.Any()).Return(deps.counter)
		deps.counter.EXPECT().
			GetNextValue(ctx, counter.EmployeeNumber).
			Return(int64(123), nil)

		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(ctx context.Context, e *employee.Employee) error {
				assert.Equal(t, "EMP-000123", e.EmployeeNumber)
				assert.Equal(t, employee.StatusContractual, e.EmploymentStatus)
				assert.True(t, e.LeaveBalance.Equal(decimal.NewFromInt(15)))
				assert.Nil(t, e.EndDate)
				return nil
			})

		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, ev kafka.OutboxEvent) error {
				assert.Equal(t, rid, ev.RequestID)
				assert.Equal(t, events.EmployeeCreated, ev.EventType)
				assert.Equal(t, events.EmployeeLifecycleTopic, ev.Topic)

				var payload events.EmployeeCreatedEvent
				require.NoError(t, json.Unmarshal(ev.Payload, &payload))
				assert.Equal(t, "EMP-000123", payload.EmployeeNumber)
				assert.Equal(t, rid, payload.RequestID)
				return nil
			})

		deps.redismock.ExpectDel(cache.EmployeeOptionsKey, cache.DashboardKey).SetVal(1)

		resp, err := deps.service.Create(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, "EMP-000123", resp.EmployeeNumber)
		assert.Equal(t, 15.0, resp.LeaveBalance)
		assert.Equal(t, "2025-06-01", resp.StartedDate)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})

	t.Run("success - explicit number and opening balance", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := context.Background()
		req := validCreateRequest()
		req.EmployeeNumber = "EMP-9000"
		req.EndDate = "2026-05-31"
		req.EmploymentStatus = "regular"
		opening := decimal.RequireFromString("7.5")
		req.LeaveBalance = &opening

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			DoAndReturn(func(ctx context.Context, e *employee.Employee) error {
				assert.Equal(t, "EMP-9000", e.EmployeeNumber)
				assert.Equal(t, employee.StatusRegular, e.EmploymentStatus)
				assert.Equal(t, "7.5", e.LeaveBalance.String())
				require.NotNil(t, e.EndDate)
				return nil
			})
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		deps.redismock.ExpectDel(cache.EmployeeOptionsKey, cache.DashboardKey).SetVal(1)

		resp, err := deps.service.Create(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, 7.5, resp.LeaveBalance)
		require.NotNil(t, resp.EndDate)
		assert.Equal(t, "2026-05-31", *resp.EndDate)
	})

	t.Run("negative opening balance", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validCreateRequest()
		negative := decimal.NewFromInt(-1)
		req.LeaveBalance = &negative

		_, err := deps.service.Create(context.Background(), req)

		assert.ErrorIs(t, err, employeeerrors.ErrNegativeBalance)
	})

	t.Run("end date before started date", func(t *testing.T) {
		deps := setupServiceTest(t)
		req := validCreateRequest()
		req.EndDate = "2025-01-01"

		_, err := deps.service.Create(context.Background(), req)

		assert.ErrorIs(t, err, employeeerrors.ErrEndBeforeStart)
	})

	t.Run("duplicate employee number", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := context.Background()
		req := validCreateRequest()
		req.EmployeeNumber = "EMP-1"

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().
			Create(ctx, gomock.Any()).
			Return(&pgconn.PgError{Code: "23505", ConstraintName: "uq_employee_number"})

		_, err := deps.service.Create(ctx, req)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNumberAlreadyExists)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("outbox failure rolls back", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := context.Background()
		req := validCreateRequest()
		req.EmployeeNumber = "EMP-2"

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
		deps.outbox.EXPECT().WithTx(gomock.Any()).Return(deps.outbox)
		deps.outbox.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("outbox down"))

		_, err := deps.service.Create(ctx, req)

		assert.EqualError(t, err, "outbox down")
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestEmployeeService_GetOptions(t *testing.T) {
	t.Run("cache hit skips repository", func(t *testing.T) {
		deps := setupServiceTest(t)
		cached := `[{"id":"e-1","employee_number":"EMP-000001","full_name":"Ana","leave_balance":15}]`
		deps.redismock.ExpectGet(cache.EmployeeOptionsKey).SetVal(cached)

		resp, err := deps.service.GetOptions(context.Background())

		require.NoError(t, err)
		require.Len(t, resp, 1)
		assert.Equal(t, "Ana", resp[0].FullName)
	})

	t.Run("cache miss loads from repository", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := context.Background()
		id := uuid.New()

		deps.redismock.ExpectGet(cache.EmployeeOptionsKey).RedisNil()
		deps.repo.EXPECT().FindOptions(gomock.Any()).Return([]employee.Employee{
			{ID: id, EmployeeNumber: "EMP-000001", FullName: "Ana", LeaveBalance: decimal.NewFromInt(12)},
		}, nil)
		expected := `[{"id":"` + id.String() + `","employee_number":"EMP-000001","full_name":"Ana","leave_balance":12}]`
		deps.redismock.ExpectSet(cache.EmployeeOptionsKey, []byte(expected), time.Hour).SetVal("OK")

		resp, err := deps.service.GetOptions(ctx)

		require.NoError(t, err)
		require.Len(t, resp, 1)
		assert.Equal(t, id.String(), resp[0].ID)
		assert.Equal(t, 12.0, resp[0].LeaveBalance)
		assert.NoError(t, deps.redismock.ExpectationsWereMet())
	})
}

func TestEmployeeService_GetByID(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		deps := setupServiceTest(t)

		_, err := deps.service.GetByID(context.Background(), "not-a-uuid")

		assert.ErrorIs(t, err, employeeerrors.ErrInvalidEmployeeID)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.NewString()
		deps.repo.EXPECT().FindByID(gomock.Any(), id).Return(nil, gorm.ErrRecordNotFound)

		_, err := deps.service.GetByID(context.Background(), id)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})
}

func TestEmployeeService_Update(t *testing.T) {
	t.Run("success keeps balance untouched", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := context.Background()
		id := uuid.New()
		existing := &employee.Employee{
			ID:             id,
			EmployeeNumber: "EMP-000010",
			FullName:       "Old Name",
			LeaveBalance:   decimal.NewFromInt(9),
		}

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindByID(ctx, id.String()).Return(existing, nil)
		deps.repo.EXPECT().
			Update(ctx, gomock.Any()).
			DoAndReturn(func(ctx context.Context, e *employee.Employee) error {
				assert.Equal(t, "New Name", e.FullName)
				assert.Equal(t, employee.StatusPermanent, e.EmploymentStatus)
				assert.Equal(t, "EMP-000010", e.EmployeeNumber)
				assert.True(t, e.LeaveBalance.Equal(decimal.NewFromInt(9)))
				return nil
			})
		deps.redismock.ExpectDel(cache.EmployeeOptionsKey, cache.DashboardKey).SetVal(1)

		resp, err := deps.service.Update(ctx, id.String(), employee.UpdateEmployeeRequest{
			FullName:         "New Name",
			Department:       "HR",
			Position:         "Officer",
			StartedDate:      "2024-01-01",
			EmploymentStatus: "permanent",
		})

		require.NoError(t, err)
		assert.Equal(t, "New Name", resp.FullName)
		assert.Equal(t, 9.0, resp.LeaveBalance)
	})
}

func TestEmployeeService_DeleteRestoreForce(t *testing.T) {
	t.Run("soft delete", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.NewString()
		deps.repo.EXPECT().Delete(gomock.Any(), id).Return(nil)
		deps.redismock.ExpectDel(cache.EmployeeOptionsKey, cache.DashboardKey).SetVal(1)

		assert.NoError(t, deps.service.Delete(context.Background(), id))
	})

	t.Run("restore missing employee", func(t *testing.T) {
		deps := setupServiceTest(t)
		id := uuid.NewString()
		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().Restore(gomock.Any(), id).Return(gorm.ErrRecordNotFound)

		_, err := deps.service.Restore(context.Background(), id)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("force delete removes proof files after commit", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := context.Background()
		id := uuid.NewString()

		expectTx(t, deps.sqlMock, true)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindDeletedByID(ctx, id).Return(&employee.Employee{}, nil)
		deps.repo.EXPECT().ListProofFiles(ctx, id).Return([]string{"leave_proofs/a.pdf", "leave_proofs/b.png"}, nil)
		deps.repo.EXPECT().ForceDelete(ctx, id).Return(nil)
		deps.proofs.EXPECT().Delete(ctx, "leave_proofs/a.pdf").Return(nil)
		deps.proofs.EXPECT().Delete(ctx, "leave_proofs/b.png").Return(errors.New("gone"))
		deps.redismock.ExpectDel(cache.EmployeeOptionsKey, cache.DashboardKey).SetVal(1)

		assert.NoError(t, deps.service.ForceDelete(ctx, id))
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("force delete of an active employee is rejected", func(t *testing.T) {
		deps := setupServiceTest(t)
		ctx := context.Background()
		id := uuid.NewString()

		expectTx(t, deps.sqlMock, false)
		deps.repo.EXPECT().WithTx(gomock.Any()).Return(deps.repo)
		deps.repo.EXPECT().FindDeletedByID(ctx, id).Return(nil, gorm.ErrRecordNotFound)
		deps.repo.EXPECT().FindByID(ctx, id).Return(&employee.Employee{}, nil)

		err := deps.service.ForceDelete(ctx, id)

		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotDeleted)
	})
}

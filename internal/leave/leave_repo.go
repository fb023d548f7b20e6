package leave

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Wakkzz12/employee-leave-tracker/internal/employee"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/dbtx"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, lr *LeaveRequest) error
	FindAll(ctx context.Context, filter ListFilter) ([]LeaveRequest, error)
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error)
	Update(ctx context.Context, lr *LeaveRequest) error
	Delete(ctx context.Context, id string) error
	FindEmployee(ctx context.Context, employeeID string) (*employee.Employee, error)
	// HasApprovedOverlap reports whether another non-deleted approved request
	// of the employee shares at least one day with [start, end].
	HasApprovedOverlap(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) (bool, error)
	FindHistory(ctx context.Context) ([]LeaveRequest, error)
	FindDeleted(ctx context.Context) ([]LeaveRequest, error)
	FindByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: dbtx.Bind(r.db, tx)}
}

// withEmployee loads the owning employee even after it was soft-deleted.
func withEmployee(db *gorm.DB) *gorm.DB {
	return db.Preload("Employee", func(db *gorm.DB) *gorm.DB {
		return db.Unscoped()
	})
}

func (r *repository) Create(ctx context.Context, lr *LeaveRequest) error {
	return r.db.WithContext(ctx).Omit("Employee").Create(lr).Error
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]LeaveRequest, error) {
	db := withEmployee(r.db.WithContext(ctx))

	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.TypeOfLeave != "" {
		db = db.Where("type_of_leave = ?", filter.TypeOfLeave)
	}
	if filter.EmployeeID != "" {
		db = db.Where("employee_id = ?", filter.EmployeeID)
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		like := "%" + q + "%"
		db = db.Where(
			"employee_id IN (SELECT id FROM employees WHERE LOWER(full_name) LIKE ? OR LOWER(employee_number) LIKE ?)",
			like, like,
		)
	}

	var lrs []LeaveRequest
	err := db.Order("created_at DESC").Find(&lrs).Error
	return lrs, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var lr LeaveRequest
	err := withEmployee(r.db.WithContext(ctx)).First(&lr, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &lr, nil
}

// FindByIDForUpdate takes a row lock on PostgreSQL so concurrent updates of
// the same request run one after the other. SQLite serialises writers on its
// own and has no FOR UPDATE.
func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*LeaveRequest, error) {
	db := withEmployee(r.db.WithContext(ctx))
	if db.Dialector.Name() == "postgres" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var lr LeaveRequest
	if err := db.First(&lr, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lr, nil
}

func (r *repository) Update(ctx context.Context, lr *LeaveRequest) error {
	return r.db.WithContext(ctx).
		Model(lr).
		Omit(clause.Associations).
		Select(
			"start_date", "end_date", "half_day", "type_of_leave",
			"days_requested", "approved_days", "status", "rejection_reason",
			"remaining_credits", "updated_by", "updated_at",
		).
		Updates(lr).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&LeaveRequest{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindEmployee(ctx context.Context, employeeID string) (*employee.Employee, error) {
	var empl employee.Employee
	if err := r.db.WithContext(ctx).First(&empl, "id = ?", employeeID).Error; err != nil {
		return nil, err
	}
	return &empl, nil
}

func (r *repository) HasApprovedOverlap(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) (bool, error) {
	db := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("employee_id = ?", employeeID).
		Where("status = ?", StatusApproved).
		Where("NOT (end_date < ? OR start_date > ?)", start, end)

	if excludeID != nil && *excludeID != "" {
		db = db.Where("id <> ?", *excludeID)
	}

	var count int64
	err := db.Count(&count).Error
	return count > 0, err
}

func (r *repository) FindHistory(ctx context.Context) ([]LeaveRequest, error) {
	var lrs []LeaveRequest
	err := withEmployee(r.db.WithContext(ctx)).
		Unscoped().
		Order("created_at DESC").
		Find(&lrs).Error
	return lrs, err
}

func (r *repository) FindDeleted(ctx context.Context) ([]LeaveRequest, error) {
	var lrs []LeaveRequest
	err := withEmployee(r.db.WithContext(ctx)).
		Unscoped().
		Where("deleted_at IS NOT NULL").
		Order("deleted_at DESC").
		Find(&lrs).Error
	return lrs, err
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error) {
	var lrs []LeaveRequest
	err := r.db.WithContext(ctx).
		Unscoped().
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&lrs).Error
	return lrs, err
}

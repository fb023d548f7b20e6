package employee

import (
	"context"
	"database/sql"

	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/dbtx"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, empl *Employee) error
	FindAll(ctx context.Context) ([]Employee, error)
	FindOptions(ctx context.Context) ([]Employee, error)
	FindDeleted(ctx context.Context) ([]Employee, error)
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindDeletedByID(ctx context.Context, id string) (*Employee, error)
	ListProofFiles(ctx context.Context, employeeID string) ([]string, error)
	Update(ctx context.Context, empl *Employee) error
	Delete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	ForceDelete(ctx context.Context, id string) error
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

func (r *repository) Create(ctx context.Context, empl *Employee) error {
	return r.db.WithContext(ctx).Create(empl).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	var empls []Employee
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) FindOptions(ctx context.Context) ([]Employee, error) {
	var empls []Employee
	err := r.db.WithContext(ctx).
		Select("id", "employee_number", "full_name", "leave_balance").
		Order("full_name ASC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) FindDeleted(ctx context.Context) ([]Employee, error) {
	var empls []Employee
	err := r.db.WithContext(ctx).
		Unscoped().
		Where("deleted_at IS NOT NULL").
		Order("deleted_at DESC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	var empl Employee
	err := r.db.WithContext(ctx).First(&empl, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &empl, nil
}

func (r *repository) FindDeletedByID(ctx context.Context, id string) (*Employee, error) {
	var empl Employee
	err := r.db.WithContext(ctx).
		Unscoped().
		Where("deleted_at IS NOT NULL").
		First(&empl, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &empl, nil
}

// ListProofFiles returns the stored proof references of every leave request
// of the employee, deleted ones included.
func (r *repository) ListProofFiles(ctx context.Context, employeeID string) ([]string, error) {
	var refs []string
	err := r.db.WithContext(ctx).
		Table("leave_requests").
		Where("employee_id = ?", employeeID).
		Where("proof_file IS NOT NULL AND proof_file <> ''").
		Pluck("proof_file", &refs).Error
	return refs, err
}

// Update never writes leave_balance.
func (r *repository) Update(ctx context.Context, empl *Employee) error {
	return r.db.WithContext(ctx).
		Model(empl).
		Select("full_name", "department", "position", "started_date", "end_date", "employment_status").
		Updates(empl).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&Employee{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Restore(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Unscoped().
		Model(&Employee{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ForceDelete removes a soft-deleted employee row; leave requests go with it
// through the foreign key cascade.
func (r *repository) ForceDelete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Unscoped().
		Where("deleted_at IS NOT NULL").
		Delete(&Employee{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

package dashboard

import (
	"context"

	"github.com/Wakkzz12/employee-leave-tracker/internal/employee"
	"github.com/Wakkzz12/employee-leave-tracker/internal/leave"

	"gorm.io/gorm"
)

//go:generate mockgen -source=dashboard_repo.go -destination=mock/dashboard_repo_mock.go -package=mock
type Repository interface {
	CountEmployees(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	CountDeletedLeaves(ctx context.Context) (int64, error)
	FindRecent(ctx context.Context, limit int) ([]leave.LeaveRequest, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CountEmployees(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&employee.Employee{}).Count(&total).Error
	return total, err
}

func (r *repository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.WithContext(ctx).
		Model(&leave.LeaveRequest{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *repository) CountDeletedLeaves(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Unscoped().
		Model(&leave.LeaveRequest{}).
		Where("deleted_at IS NOT NULL").
		Count(&total).Error
	return total, err
}

func (r *repository) FindRecent(ctx context.Context, limit int) ([]leave.LeaveRequest, error) {
	var rows []leave.LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("Employee", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

package counter

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/dbtx"

	"gorm.io/gorm"
)

const EmployeeNumber = "employee_number"

//go:generate mockgen -destination=mock/counter_repo_mock.go -package=mock . Repository
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	GetNextValue(ctx context.Context, counterType string) (int64, error)
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

// GetNextValue increments the named counter and returns the new value. The
// upsert is a single statement so concurrent callers never share a value.
func (r *repository) GetNextValue(ctx context.Context, counterType string) (int64, error) {
	var nextValue int64

	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO counters (counter_type, last_value, updated_at)
		VALUES (?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT (counter_type) DO UPDATE
		SET last_value = counters.last_value + 1, updated_at = CURRENT_TIMESTAMP
		RETURNING last_value
	`, counterType).Scan(&nextValue).Error

	if err != nil {
		return 0, err
	}

	return nextValue, nil
}

// FormatEmployeeNumber renders a counter value as EMP-000001.
func FormatEmployeeNumber(n int64) string {
	return fmt.Sprintf("EMP-%06d", n)
}

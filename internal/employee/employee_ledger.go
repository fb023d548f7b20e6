package employee

import (
	"context"
	"database/sql"
	"errors"

	employeeerrors "github.com/Wakkzz12/employee-leave-tracker/internal/employee/errors"
	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/dbtx"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ledger is the only writer of Employee.LeaveBalance after creation.
//
//go:generate mockgen -source=employee_ledger.go -destination=mock/employee_ledger_mock.go -package=mock
type Ledger interface {
	WithTx(tx *sql.Tx) Ledger
	// Debit subtracts days atomically and fails without change when the
	// balance is smaller than days.
	Debit(ctx context.Context, employeeID string, days decimal.Decimal) (decimal.Decimal, error)
	Credit(ctx context.Context, employeeID string, days decimal.Decimal) (decimal.Decimal, error)
	Balance(ctx context.Context, employeeID string) (decimal.Decimal, error)
}

type ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) Ledger {
	return &ledger{db: db}
}

func (l *ledger) WithTx(tx *sql.Tx) Ledger {
	return &ledger{db: dbtx.Bind(l.db, tx)}
}

func (l *ledger) Debit(ctx context.Context, employeeID string, days decimal.Decimal) (decimal.Decimal, error) {
	if days.IsNegative() {
		return decimal.Zero, employeeerrors.ErrInvalidLeaveDays
	}
	if days.IsZero() {
		return l.Balance(ctx, employeeID)
	}

	// check and subtract in one statement
	res := l.db.WithContext(ctx).
		Model(&Employee{}).
		Where("id = ? AND leave_balance >= ?", employeeID, days).
		Update("leave_balance", gorm.Expr("leave_balance - ?", days))
	if res.Error != nil {
		return decimal.Zero, mapRepositoryError(res.Error)
	}

	if res.RowsAffected == 0 {
		exists, err := l.exists(ctx, employeeID)
		if err != nil {
			return decimal.Zero, err
		}
		if !exists {
			return decimal.Zero, employeeerrors.ErrEmployeeNotFound
		}
		return decimal.Zero, employeeerrors.ErrInsufficientBalance
	}

	return l.Balance(ctx, employeeID)
}

func (l *ledger) Credit(ctx context.Context, employeeID string, days decimal.Decimal) (decimal.Decimal, error) {
	if days.IsNegative() {
		return decimal.Zero, employeeerrors.ErrInvalidLeaveDays
	}
	if days.IsZero() {
		return l.Balance(ctx, employeeID)
	}

	res := l.db.WithContext(ctx).
		Model(&Employee{}).
		Where("id = ?", employeeID).
		Update("leave_balance", gorm.Expr("leave_balance + ?", days))
	if res.Error != nil {
		return decimal.Zero, res.Error
	}
	if res.RowsAffected == 0 {
		return decimal.Zero, employeeerrors.ErrEmployeeNotFound
	}

	return l.Balance(ctx, employeeID)
}

func (l *ledger) Balance(ctx context.Context, employeeID string) (decimal.Decimal, error) {
	var empl Employee
	err := l.db.WithContext(ctx).
		Select("leave_balance").
		Where("id = ?", employeeID).
		Take(&empl).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, employeeerrors.ErrEmployeeNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	return empl.LeaveBalance, nil
}

func (l *ledger) exists(ctx context.Context, employeeID string) (bool, error) {
	var n int64
	err := l.db.WithContext(ctx).
		Model(&Employee{}).
		Where("id = ?", employeeID).
		Count(&n).Error
	return n > 0, err
}

package employee

import (
	"errors"
	"strings"

	employeeerrors "github.com/Wakkzz12/employee-leave-tracker/internal/employee/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_employee_number" {
			return employeeerrors.ErrEmployeeNumberAlreadyExists
		}
		if pgErr.Code == "23514" && pgErr.ConstraintName == "ck_employee_leave_balance" {
			return employeeerrors.ErrInsufficientBalance
		}
	}

	// sqlite reports constraint failures only in the message
	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "unique constraint") && strings.Contains(errMsg, "employee_number") {
		return employeeerrors.ErrEmployeeNumberAlreadyExists
	}

	return err
}

package employeeerrors

import (
	"net/http"

	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrEmployeeNumberAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee number already exists",
		http.StatusConflict,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrEndBeforeStart = apperror.New(
		apperror.CodeInvalidRange,
		"End date must not be before started date",
		http.StatusBadRequest,
	)
	ErrNegativeBalance = apperror.New(
		apperror.CodeInvalidInput,
		"Leave balance must not be negative",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveDays = apperror.New(
		apperror.CodeInvalidInput,
		"Leave days must not be negative",
		http.StatusBadRequest,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeInsufficientBalance,
		"Insufficient leave balance",
		http.StatusUnprocessableEntity,
	)
	ErrEmployeeNotDeleted = apperror.New(
		apperror.CodeInvalidState,
		"Only a deleted employee can be permanently removed",
		http.StatusConflict,
	)
)

package leaveerrors

import (
	"net/http"

	"github.com/Wakkzz12/employee-leave-tracker/internal/shared/apperror"
)

var (
	ErrInvalidLeaveID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid leave request ID",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidRange = apperror.New(
		apperror.CodeInvalidRange,
		"End date must be on or after start date",
		http.StatusBadRequest,
	)
	ErrRangeTooLong = apperror.New(
		apperror.CodeInvalidRange,
		"A leave request cannot span more than one year",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"Status must be pending, approved or rejected",
		http.StatusBadRequest,
	)
	ErrDateOverlap = apperror.New(
		apperror.CodeDateOverlap,
		"Employee already has approved leave during this period",
		http.StatusConflict,
	)
	ErrMissingRejectionReason = apperror.New(
		apperror.CodeMissingRejectionReason,
		"Rejection reason is required when rejecting a leave request",
		http.StatusBadRequest,
	)
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave request not found",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrProofNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave request has no proof file",
		http.StatusNotFound,
	)
)

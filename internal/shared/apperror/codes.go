package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput     = "INVALID_INPUT"
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeInvalidState     = "INVALID_STATE"
	CodeTooManyRequests  = "TOO_MANY_REQUESTS"
	CodeEmailNotAllowed  = "EMAIL_DOMAIN_NOT_ALLOWED"
	CodeUnsupportedMedia = "UNSUPPORTED_MEDIA_TYPE"

	// Leave balance workflow
	CodeInvalidRange           = "INVALID_RANGE"
	CodeDateOverlap            = "DATE_OVERLAP"
	CodeInsufficientBalance    = "INSUFFICIENT_BALANCE"
	CodeMissingRejectionReason = "MISSING_REJECTION_REASON"

	// Server errors (5xx)
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Package errors provides custom error types for the PeopleOps API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Profile errors.
var (
	ErrProfileNotFound = &AppError{Code: "PROFILE_NOT_FOUND", Message: "Profile not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail  = &AppError{Code: "DUPLICATE_EMAIL", Message: "A profile with this email already exists", StatusCode: http.StatusConflict}
	ErrSelfManager     = &AppError{Code: "SELF_MANAGER", Message: "A profile cannot be its own manager", StatusCode: http.StatusBadRequest}
)

// Goal plan errors.
var (
	ErrPlanNotFound      = &AppError{Code: "PLAN_NOT_FOUND", Message: "Goal plan not found", StatusCode: http.StatusNotFound}
	ErrPlanNotEditable   = &AppError{Code: "PLAN_NOT_EDITABLE", Message: "Goal plan content can only be edited while in draft or rejected status", StatusCode: http.StatusConflict}
	ErrPlanNotDeletable  = &AppError{Code: "PLAN_NOT_DELETABLE", Message: "Only draft or rejected goal plans can be deleted", StatusCode: http.StatusConflict}
	ErrInvalidTransition = &AppError{Code: "INVALID_TRANSITION", Message: "This action is not allowed from the plan's current status", StatusCode: http.StatusConflict}
	ErrStaleRevision     = &AppError{Code: "STALE_REVISION", Message: "Goal plan was modified by someone else, reload and try again", StatusCode: http.StatusConflict}
)

// Weightage and item validation errors.
var (
	ErrPlanEmpty          = &AppError{Code: "PLAN_EMPTY", Message: "A goal plan needs at least one item before submission", StatusCode: http.StatusUnprocessableEntity}
	ErrWeightageOverLimit = &AppError{Code: "WEIGHTAGE_OVER_LIMIT", Message: "Total weightage exceeds 100%", StatusCode: http.StatusUnprocessableEntity}
	ErrItemFieldRequired  = &AppError{Code: "ITEM_FIELD_REQUIRED", Message: "Every goal item needs client, bucket, line item, and target filled in before submission", StatusCode: http.StatusUnprocessableEntity}
	ErrUnknownItem        = &AppError{Code: "UNKNOWN_ITEM", Message: "Actuals reference an item that is not part of the approved plan", StatusCode: http.StatusUnprocessableEntity}
)

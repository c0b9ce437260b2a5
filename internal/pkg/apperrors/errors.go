package apperrors

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Machine-readable error codes surfaced in the response envelope.
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeStepOrderViolation   = "STEP_ORDER_VIOLATION"
	CodeConflictInProgress   = "CONFLICT_IN_PROGRESS"
	CodeProviderUnavailable  = "PROVIDER_UNAVAILABLE"
	CodePartialBatchFailure  = "PARTIAL_BATCH_FAILURE"
	CodeApplyRollbackFailure = "APPLY_ROLLBACK_FAILURE"
	CodeNotFound             = "NOT_FOUND"
	CodeJobNotCancelable     = "JOB_NOT_CANCELABLE"
	CodeInternal             = "INTERNAL_ERROR"
)

// AppError carries a machine code and HTTP status alongside the message.
type AppError struct {
	Code    string
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, status int, message string) *AppError {
	return &AppError{Code: code, Status: status, Message: message}
}

func Wrap(code string, status int, message string, err error) *AppError {
	return &AppError{Code: code, Status: status, Message: message, Err: err}
}

func Validation(message string) *AppError {
	return New(CodeValidation, fiber.StatusUnprocessableEntity, message)
}

func StepOrderViolation(message string) *AppError {
	return New(CodeStepOrderViolation, fiber.StatusConflict, message)
}

func ConflictInProgress(scope, key string) *AppError {
	return New(CodeConflictInProgress, fiber.StatusConflict,
		fmt.Sprintf("operation for key %q in scope %q is still in progress", key, scope))
}

func ProviderUnavailable(message string, err error) *AppError {
	return Wrap(CodeProviderUnavailable, fiber.StatusServiceUnavailable, message, err)
}

func ApplyRollbackFailure(message string, err error) *AppError {
	return Wrap(CodeApplyRollbackFailure, fiber.StatusInternalServerError, message, err)
}

func NotFound(what string) *AppError {
	return New(CodeNotFound, fiber.StatusNotFound, what+" not found")
}

func JobNotCancelable(status string) *AppError {
	return New(CodeJobNotCancelable, fiber.StatusConflict,
		fmt.Sprintf("job in status %q cannot be canceled", status))
}

// As extracts an *AppError from an error chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func IsCode(err error, code string) bool {
	if appErr, ok := As(err); ok {
		return appErr.Code == code
	}
	return false
}

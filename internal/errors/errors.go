package errors

import (
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}

// Predefined error codes
const (
	CodeConfigError     = "CONFIG_ERROR"
	CodeDataUnavailable = "DATA_UNAVAILABLE"
	CodeEmptyRegion     = "EMPTY_REGION"
	CodeInvalidWeights  = "INVALID_WEIGHTS"
	CodeNotFound        = "NOT_FOUND"
	CodeMissingVariable = "MISSING_VARIABLE"
	CodeExportError     = "EXPORT_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
)

// Common error constructors

func ConfigError(message string) *AppError {
	return New(CodeConfigError, message)
}

func DataUnavailable(dataset, variable string, cause error) *AppError {
	return &AppError{
		Code:    CodeDataUnavailable,
		Message: fmt.Sprintf("dataset %s variable %s unavailable", dataset, variable),
		Cause:   cause,
	}
}

func EmptyRegion(message string) *AppError {
	return New(CodeEmptyRegion, message)
}

func InvalidWeights(message string) *AppError {
	return New(CodeInvalidWeights, message)
}

func NotFound(name string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", name))
}

func MissingVariable(name, path string) *AppError {
	return New(CodeMissingVariable, fmt.Sprintf("variable %s missing from %s", name, path))
}

func ExportError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeExportError,
		Message: message,
		Cause:   cause,
	}
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

// Package errors defines the error kinds shared by the symbol pipeline.
// Callers compare kinds with errors.Is; wrapped AppErrors match their sentinel by code.
package errors

import "net/http"

// AppError is a typed error with a stable code, a user-safe message and an
// optional internal cause.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Wrap creates a new AppError with the sentinel's code/message/status wrapping internal.
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

// Pipeline error kinds.
var (
	ErrDataSourceUnavailable = &AppError{Code: "DATA_SOURCE_UNAVAILABLE", Message: "Data source unavailable", StatusCode: http.StatusBadGateway}
	ErrSymbolNotRecognized   = &AppError{Code: "SYMBOL_NOT_RECOGNIZED", Message: "Symbol not recognized", StatusCode: http.StatusNotFound}
	ErrUnsupportedOperation  = &AppError{Code: "UNSUPPORTED_OPERATION", Message: "Operation not supported for asset class", StatusCode: http.StatusUnprocessableEntity}
	ErrUnknownSymbolVariant  = &AppError{Code: "UNKNOWN_SYMBOL_VARIANT", Message: "Unknown symbol variant", StatusCode: http.StatusInternalServerError}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

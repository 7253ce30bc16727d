package apperror

import "errors"

// AppError is a coded error carried across package boundaries so callers can
// branch on Code without string matching.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	ErrInvalidInput       = &AppError{Code: "INVALID_INPUT", Message: "Invalid input"}
	ErrNotFound           = &AppError{Code: "NOT_FOUND", Message: "Not found"}
	ErrIntegrityViolation = &AppError{Code: "INTEGRITY_VIOLATION", Message: "Integrity violation"}
	ErrCryptoFailure      = &AppError{Code: "CRYPTO_FAILURE", Message: "Cryptographic operation failed"}
)

func NewInvalidInput(message string) *AppError {
	return &AppError{Code: "INVALID_INPUT", Message: message}
}

func NewNotFound(message string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: message}
}

func NewIntegrityViolation(message string) *AppError {
	return &AppError{Code: "INTEGRITY_VIOLATION", Message: message}
}

func NewCryptoFailure(message string) *AppError {
	return &AppError{Code: "CRYPTO_FAILURE", Message: message}
}

// Map coerces any error into an AppError, preserving coded errors found
// anywhere in the chain and marking everything else INTERNAL_ERROR.
func Map(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{Code: "INTERNAL_ERROR", Message: err.Error()}
}

package storage

import "fmt"

// Sentinel errors returned by the Manager. Compare with errors.Is; the
// code, not the message, decides equality.
var (
	// ErrInvalidConfig rejects an unusable registration, such as an
	// empty name or a nil client.
	ErrInvalidConfig = &StorageError{
		Code:    "INVALID_CONFIG",
		Message: "invalid storage configuration",
	}

	// ErrClientNotFound is returned when no client is registered under
	// the requested name.
	ErrClientNotFound = &StorageError{
		Code:    "CLIENT_NOT_FOUND",
		Message: "storage client not found",
	}

	// ErrClientAlreadyExists is returned when a name is registered twice.
	ErrClientAlreadyExists = &StorageError{
		Code:    "CLIENT_ALREADY_EXISTS",
		Message: "storage client already exists",
	}
)

// StorageError is a coded error for backend-management failures.
type StorageError struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is matches errors by code so detailed copies made with WithMessage
// still compare equal to their sentinel.
func (e *StorageError) Is(target error) bool {
	t, ok := target.(*StorageError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy carrying a more specific message.
func (e *StorageError) WithMessage(msg string) *StorageError {
	return &StorageError{
		Code:    e.Code,
		Message: msg,
	}
}

package core

// Error codes for domain errors, surfaced to clients via the error event.
const (
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeValidation   = "validation_error"
	ErrCodeForbidden    = "forbidden"
	ErrCodeExpired      = "expired"
	ErrCodeNotFound     = "not_found"
	ErrCodeInternal     = "internal_error"
)

// CoreError wraps a code and human-readable message. Errors are always
// reported to the originating session only, never broadcast.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

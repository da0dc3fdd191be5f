package visca

import "fmt"

// Error is the typed error taxonomy surfaced to callers: the five
// camera-reported codes, plus the two the engine synthesizes itself
// (TIMEOUT on GC, TRANSPORT on a dead link).
type Error struct {
	Code  ErrorCode
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("visca: %s: %v", e.Code, e.Cause)
	}
	return fmt.Sprintf("visca: %s", e.Code)
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError wraps code as an *Error, optionally carrying a causal error
// (used for ErrTransport, where the transport's close reason is attached).
func NewError(code ErrorCode, cause error) *Error {
	return &Error{Code: code, Cause: cause}
}

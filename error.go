package machina

import (
	"errors"
	"fmt"
)

// Error codes shared by every service. The HTTP layer owns the mapping
// to status codes; nothing below the transport ever deals in HTTP.
const (
	ECONFLICT     = "conflict"     // duplicate email, username, catalog name
	EINTERNAL     = "internal"     // database or storage failure, details stay server-side
	EINVALID      = "invalid"      // malformed payload or filter
	ENOTFOUND     = "not_found"    // missing row, or a report outside the viewer's scope
	EUNAUTHORIZED = "unauthorized" // no session, or an expired one
	EFORBIDDEN    = "forbidden"    // role or ownership check failed, closed-report edit
	ERATELIMIT    = "rate_limit"   // login throttle tripped
)

// Error carries a code the transport can map and a message safe to show
// to the client. Err holds the underlying cause for server-side logs.
type Error struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the cause to errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an error with a formatted client-facing message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError attaches a code and message to an underlying cause.
func WrapError(code string, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ErrorWithFields builds an EINVALID error keyed by payload field, the
// shape the validator produces for report and user payloads.
func ErrorWithFields(fields map[string]string) *Error {
	return &Error{
		Code:    EINVALID,
		Message: "Validation failed",
		Fields:  fields,
	}
}

// ErrorCode returns the code of err, or EINTERNAL for any error that
// did not originate in this package.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the client-safe message of err. Unknown errors
// get a generic message so internals never leak.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "An internal error occurred."
}

// ErrorFields returns the per-field messages of a validation error, or
// nil when err carries none.
func ErrorFields(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// IsErrorCode reports whether err carries the given code.
func IsErrorCode(err error, code string) bool {
	return ErrorCode(err) == code
}

// Constructors for the common codes. Formats are client-facing, so they
// name domain objects ("Report not found"), never tables or queries.

func NotFound(format string, args ...any) *Error {
	return Errorf(ENOTFOUND, format, args...)
}

func Invalid(format string, args ...any) *Error {
	return Errorf(EINVALID, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return Errorf(EUNAUTHORIZED, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return Errorf(EFORBIDDEN, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return Errorf(ECONFLICT, format, args...)
}

// Internal wraps an unexpected failure. The message is what clients may
// see; err is what lands in the log.
func Internal(message string, err error) *Error {
	return WrapError(EINTERNAL, message, err)
}

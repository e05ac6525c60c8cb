package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain failure. Handlers translate kinds into HTTP
// status codes; services never format responses themselves.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindCapacity
	KindTransient
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindCapacity:
		return "capacity"
	case KindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// Error is a kinded domain error. The message is safe to surface verbatim
// to callers; wrapped causes are for logs only.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func NewValidationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewAuthenticationError(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

func NewAuthorizationError(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func NewNotFoundError(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NewCapacityError(message string) *Error {
	return &Error{Kind: KindCapacity, Message: message}
}

// NewTransientError wraps a storage or backing-service failure. The cause
// stays internal; only the message reaches the caller.
func NewTransientError(message string, cause error) *Error {
	return &Error{Kind: KindTransient, Message: message, cause: cause}
}

// KindOf extracts the kind from an error chain, or zero if the error is not
// a domain error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}

func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

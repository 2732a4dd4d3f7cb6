package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies a completion failure so callers can branch on
// the cause without inspecting provider-specific errors.
type ErrorKind int

const (
	KindRateLimit ErrorKind = iota
	KindServer
	KindClient
	KindNetwork
	KindParse
	KindValidation
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimit:
		return "rate-limit"
	case KindServer:
		return "server-error"
	case KindClient:
		return "client-error"
	case KindNetwork:
		return "network-error"
	case KindParse:
		return "parse-error"
	case KindValidation:
		return "validation-error"
	default:
		return "unknown"
	}
}

// Error tags a completion failure with its kind and, where the remote
// side supplied them, the HTTP status and a retry-after hint.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	RetryAfter time.Duration
	Message    string
	Err        error
}

func Errorf(kind ErrorKind, format string, a ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, a...),
	}
}

func Wrap(kind ErrorKind, err error, format string, a ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, a...),
		Err:     err,
	}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is transient. Only client
// errors (auth failures and other non-429 4xx) are fatal.
func (e *Error) Retryable() bool {
	return e.Kind != KindClient
}

// IsRetryable classifies an arbitrary error. Untagged errors are
// treated as transient transport faults.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable()
	}
	return true
}

// KindOf extracts the taxonomy tag of an error, defaulting to
// KindNetwork for untagged errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindNetwork
}

// Package dberr defines the error kinds surfaced by the bridge to the
// statement execution path.
//
// Every error produced by the bridge core is a *Error carrying a Kind.
// Callers branch on the kind with errors.Is against the exported Kind
// values, or with KindOf:
//
//	if errors.Is(err, dberr.NotFound) { ... }
package dberr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a bridge error. None of the kinds are retryable: a miss is
// a logical inconsistency between the host catalog and the guest type cache,
// not a transient fault.
type Kind int

const (
	// KindUnknown is reported by KindOf for errors not produced by this package.
	KindUnknown Kind = iota

	// NotFound means an identifier is absent from a mapping that should hold it,
	// e.g. a host member id missing from a cached guest enum type.
	NotFound

	// InvalidInput means a supplied identifier has no backing catalog row.
	InvalidInput

	// InternalError means a value violates the enum value contract.
	InternalError

	// FeatureNotSupported means a transaction-shape rule was violated.
	FeatureNotSupported

	// HostError wraps an error signal raised by host catalog code and
	// intercepted at the catalog access boundary.
	HostError
)

// SQLSTATE-style codes attached to each kind.
const (
	CodeNotFound            = "42704"
	CodeInvalidInput        = "22023"
	CodeInternalError       = "XX000"
	CodeFeatureNotSupported = "0A000"
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "NOT_FOUND"
	case InvalidInput:
		return "INVALID_INPUT"
	case InternalError:
		return "INTERNAL_ERROR"
	case FeatureNotSupported:
		return "FEATURE_NOT_SUPPORTED"
	case HostError:
		return "HOST_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Error implements error so a Kind can be used as an errors.Is target.
func (k Kind) Error() string {
	return k.String()
}

func (k Kind) code() string {
	switch k {
	case NotFound:
		return CodeNotFound
	case InvalidInput:
		return CodeInvalidInput
	case FeatureNotSupported:
		return CodeFeatureNotSupported
	default:
		return CodeInternalError
	}
}

// Error is a structured bridge error.
type Error struct {
	Kind Kind

	// Code is a SQLSTATE-style code. For HostError it is the code the host raised.
	Code string

	Message string

	// Operation names the bridge call that failed, e.g. "GetEnumPosition".
	Operation string

	// Component names the subsystem, e.g. "enumbridge" or "xact".
	Component string

	Cause error
}

// New creates an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Code:    kind.code(),
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap attaches kind and message to an underlying cause.
func Wrap(cause error, kind Kind, format string, args ...any) *Error {
	e := New(kind, format, args...)
	e.Cause = cause
	return e
}

// In sets the operation and component if they are not already set.
func (e *Error) In(component, operation string) *Error {
	if e.Component == "" {
		e.Component = component
	}
	if e.Operation == "" {
		e.Operation = operation
	}
	return e
}

// Error formats as: [CODE] Message (operation: Op, component: Comp) caused by: cause
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Operation != "" {
		fmt.Fprintf(&b, " (operation: %s", e.Operation)
		if e.Component != "" {
			fmt.Fprintf(&b, ", component: %s", e.Component)
		}
		b.WriteString(")")
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, " caused by: %v", e.Cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports a match against a bare Kind target.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

package host

import "fmt"

// Error is the payload of a host error signal. Host catalog code raises it
// with panic; it never travels as a plain return value inside the host.
type Error struct {
	SQLState string
	Message  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("host error %s: %s", e.SQLState, e.Message)
}

// Host SQLSTATE codes used by the catalog implementations.
const (
	StateInternal        = "XX000"
	StateDuplicateObject = "42710"
	StateUndefinedObject = "42704"
	StateConnection      = "08006"
)

// Raise signals a host error. It does not return.
func Raise(state, format string, args ...any) {
	panic(&Error{SQLState: state, Message: fmt.Sprintf(format, args...)})
}

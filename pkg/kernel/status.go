package kernel

import "fmt"

// StatusKind is the compute_status error kind of §7.
type StatusKind int

const (
	OK StatusKind = iota
	Invalid
	TypeError
	NotImplemented
	ExecutionError
)

func (k StatusKind) String() string {
	switch k {
	case OK:
		return "OK"
	case Invalid:
		return "INVALID"
	case TypeError:
		return "TYPE_ERROR"
	case NotImplemented:
		return "NOT_IMPLEMENTED"
	case ExecutionError:
		return "EXECUTION_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Status is compute_status: a kind plus an optional message, returned
// up through kernels and the function executor to the operator level
// (§7 propagation policy). A zero Status is OK.
type Status struct {
	Kind StatusKind
	Msg  string
}

// Ok reports whether the status carries no error.
func (s Status) Ok() bool { return s.Kind == OK }

func (s Status) Error() string {
	if s.Ok() {
		return ""
	}
	if s.Msg == "" {
		return s.Kind.String()
	}
	return fmt.Sprintf("%s: %s", s.Kind, s.Msg)
}

// Fail builds a non-OK Status.
func Fail(kind StatusKind, format string, args ...any) Status {
	return Status{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

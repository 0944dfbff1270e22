package builtins

import "fmt"

// TypeError and ValueError are the two failure shapes a native handler
// raises; internal/interp maps both onto the TypeError kind of its
// closed error-kind set (spec.md §7), which has no ValueError kind.
type TypeError struct{ Msg string }

func (e *TypeError) Error() string { return e.Msg }

func typeErrorf(format string, args ...any) error {
	return &TypeError{Msg: fmt.Sprintf(format, args...)}
}

type ValueError struct{ Msg string }

func (e *ValueError) Error() string { return e.Msg }

func valueErrorf(format string, args ...any) error {
	return &ValueError{Msg: fmt.Sprintf(format, args...)}
}

// AssertionError is raised by the assert() builtin.
type AssertionError struct{ Msg string }

func (e *AssertionError) Error() string { return e.Msg }

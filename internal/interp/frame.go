package interp

import "github.com/csh1668/pyhyeon/internal/object"

// Frame is one in-progress call (§3 "Frame"): instruction pointer,
// owning function, locals (parameters, then captures, then body
// locals, per the compiler's layout), and the operand-stack height to
// restore on Return.
type Frame struct {
	FuncID       int
	IP           int
	Locals       []object.Value
	CallerHeight int
}

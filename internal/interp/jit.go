package interp

import "github.com/csh1668/pyhyeon/internal/object"

// This file is the runtime-helper ABI of spec.md §4.5: exported VM
// methods a JITEngine's compiled code calls instead of going through
// the interpreter's per-opcode dispatch. Every status-returning method
// follows the ABI's convention: 0 success, -1 stack overflow/underflow,
// -2 type mismatch, -3 missing frame or out-of-range local index.

// PushNativeFrame pushes a frame for funcID on behalf of a JITEngine
// that has decided to run it natively, exactly as an interpreted Call
// would (arity check, locals layout, caller height).
func (vm *VM) PushNativeFrame(funcID int, args, captures []object.Value) error {
	return vm.pushFrame(funcID, args, captures)
}

// PopNativeFrame implements Return for compiled code: the result (or
// None if nothing was left above the caller's stack height) is popped,
// the frame's locals and operand-stack growth are discarded, and the
// result is pushed back for the caller to consume — mirroring
// OpReturn in step.go exactly.
func (vm *VM) PopNativeFrame() {
	f := vm.frame()
	var result object.Value
	if len(vm.Stack) > f.CallerHeight {
		result = vm.pop()
	} else {
		result = object.None()
	}
	vm.Stack = vm.Stack[:f.CallerHeight]
	vm.Frames = vm.Frames[:len(vm.Frames)-1]
	_ = vm.push(result) // truncation just freed room; this cannot overflow
}

// PushInt pushes an Int constant.
func (vm *VM) PushInt(v int64) int64 {
	if err := vm.push(object.Int(v)); err != nil {
		return -1
	}
	return 0
}

// PopInt pops and type-checks an Int.
func (vm *VM) PopInt() (int64, int64) {
	if len(vm.Stack) == 0 {
		return 0, -1
	}
	v := vm.pop()
	if !v.IsInt() {
		return 0, -2
	}
	return v.AsInt(), 0
}

// PushBool pushes a Bool constant.
func (vm *VM) PushBool(b bool) int64 {
	if err := vm.push(object.Bool(b)); err != nil {
		return -1
	}
	return 0
}

// PopBool pops and type-checks a Bool.
func (vm *VM) PopBool() (bool, int64) {
	if len(vm.Stack) == 0 {
		return false, -1
	}
	v := vm.pop()
	if !v.IsBool() {
		return false, -2
	}
	return v.AsBool(), 0
}

// LoadLocal pushes the current frame's local idx.
func (vm *VM) LoadLocal(idx uint16) int64 {
	f := vm.frame()
	if int(idx) >= len(f.Locals) {
		return -3
	}
	if err := vm.push(f.Locals[idx]); err != nil {
		return -1
	}
	return 0
}

// LoadLocalValue is a fast path for compiled code that only needs a
// local's underlying int64 (e.g. a loop counter) without touching the
// operand stack; it reports 0 for an out-of-range index or a local
// that isn't an Int, since compiled code treats that as "not worth
// inlining" rather than a hard error.
func (vm *VM) LoadLocalValue(idx uint16) int64 {
	f := vm.frame()
	if int(idx) >= len(f.Locals) {
		return 0
	}
	v := f.Locals[idx]
	if !v.IsInt() {
		return 0
	}
	return v.AsInt()
}

// StoreLocal pops the operand stack into the current frame's local idx.
func (vm *VM) StoreLocal(idx uint16) int64 {
	if len(vm.Stack) == 0 {
		return -1
	}
	f := vm.frame()
	if int(idx) >= len(f.Locals) {
		return -3
	}
	f.Locals[idx] = vm.pop()
	return 0
}

func (vm *VM) binInt(op func(a, b int64) int64) int64 {
	if len(vm.Stack) < 2 {
		return -1
	}
	b := vm.pop()
	a := vm.pop()
	if !a.IsInt() || !b.IsInt() {
		return -2
	}
	if err := vm.push(object.Int(op(a.AsInt(), b.AsInt()))); err != nil {
		return -1
	}
	return 0
}

func (vm *VM) cmpInt(op func(a, b int64) bool) int64 {
	if len(vm.Stack) < 2 {
		return -1
	}
	b := vm.pop()
	a := vm.pop()
	if !a.IsInt() || !b.IsInt() {
		return -2
	}
	if err := vm.push(object.Bool(op(a.AsInt(), b.AsInt()))); err != nil {
		return -1
	}
	return 0
}

// AddInt, SubInt and MulInt mirror intArith's wraparound semantics
// (arith.go) for the baseline subset's three integer operators.
func (vm *VM) AddInt() int64 {
	return vm.binInt(func(a, b int64) int64 { return int64(uint64(a) + uint64(b)) })
}

func (vm *VM) SubInt() int64 {
	return vm.binInt(func(a, b int64) int64 { return int64(uint64(a) - uint64(b)) })
}

func (vm *VM) MulInt() int64 {
	return vm.binInt(func(a, b int64) int64 { return int64(uint64(a) * uint64(b)) })
}

// EqInt and LtInt mirror execCompare's Int/Int fast path.
func (vm *VM) EqInt() int64 { return vm.cmpInt(func(a, b int64) bool { return a == b }) }
func (vm *VM) LtInt() int64 { return vm.cmpInt(func(a, b int64) bool { return a < b }) }

// StackLen reports the current operand stack depth.
func (vm *VM) StackLen() int { return len(vm.Stack) }

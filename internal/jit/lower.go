package jit

import (
	"fmt"

	"github.com/csh1668/pyhyeon/internal/bytecode"
	"github.com/csh1668/pyhyeon/internal/interp"
)

// errBailout is returned by lower when fn uses an opcode outside the
// baseline subset (spec.md §4.5): "the compiler aborts lowering; the
// function remains interpreted."
type errBailout struct{ reason string }

func (e *errBailout) Error() string { return "jit: bailout: " + e.reason }

// instr is one lowered instruction: exec runs the runtime-helper calls
// for this opcode against vm, returning a jump target (-1 for "fall
// through") and a status code (0 = ok, matching spec.md §4.5's
// "negative for error" helper-ABI convention).
type instr struct {
	exec     func(vm *interp.VM) (branch int, status int64)
	isReturn bool
}

// compiledFunc is one successfully lowered function: a flat program of
// instr entries.
type compiledFunc struct {
	instrs []instr
}

func (cf *compiledFunc) run(vm *interp.VM) int64 {
	pc := 0
	for {
		branch, status := cf.instrs[pc].exec(vm)
		if status != 0 {
			return status
		}
		if cf.instrs[pc].isReturn {
			return 0
		}
		if branch >= 0 {
			pc = branch
		} else {
			pc++
		}
	}
}

// lower translates fn's bytecode into a compiledFunc, or reports the
// first unsupported opcode it hits (the baseline subset of spec.md
// §4.5: int/bool constants, load/store local, integer Add/Sub/Mul,
// integer Eq/Lt, Jump, JumpIfFalse, Return).
func lower(fn *bytecode.FunctionCode) (*compiledFunc, error) {
	type decoded struct {
		byteOffset int
		ins        instr
	}
	var decs []decoded
	offsetToIndex := make(map[int]int)

	r := bytecode.NewReader(fn.Code, 0)
	for !r.Done() {
		start := r.IP
		offsetToIndex[start] = len(decs)
		op := r.ReadOp()

		switch op {
		case bytecode.OpConstI64:
			v := r.ReadI64()
			decs = append(decs, decoded{start, instr{exec: func(vm *interp.VM) (int, int64) {
				return -1, vm.PushInt(v)
			}}})

		case bytecode.OpTrue, bytecode.OpFalse:
			b := op == bytecode.OpTrue
			decs = append(decs, decoded{start, instr{exec: func(vm *interp.VM) (int, int64) {
				return -1, vm.PushBool(b)
			}}})

		case bytecode.OpLoadLocal:
			idx := r.ReadU16()
			decs = append(decs, decoded{start, instr{exec: func(vm *interp.VM) (int, int64) {
				return -1, vm.LoadLocal(idx)
			}}})

		case bytecode.OpStoreLocal:
			idx := r.ReadU16()
			decs = append(decs, decoded{start, instr{exec: func(vm *interp.VM) (int, int64) {
				return -1, vm.StoreLocal(idx)
			}}})

		case bytecode.OpAdd:
			decs = append(decs, decoded{start, instr{exec: func(vm *interp.VM) (int, int64) { return -1, vm.AddInt() }}})
		case bytecode.OpSub:
			decs = append(decs, decoded{start, instr{exec: func(vm *interp.VM) (int, int64) { return -1, vm.SubInt() }}})
		case bytecode.OpMul:
			decs = append(decs, decoded{start, instr{exec: func(vm *interp.VM) (int, int64) { return -1, vm.MulInt() }}})
		case bytecode.OpEq:
			decs = append(decs, decoded{start, instr{exec: func(vm *interp.VM) (int, int64) { return -1, vm.EqInt() }}})
		case bytecode.OpLt:
			decs = append(decs, decoded{start, instr{exec: func(vm *interp.VM) (int, int64) { return -1, vm.LtInt() }}})

		case bytecode.OpJump:
			rel := r.ReadI32()
			target := r.IP + int(rel)
			decs = append(decs, decoded{start, instr{exec: func(vm *interp.VM) (int, int64) {
				idx, ok := offsetToIndex[target]
				if !ok {
					return 0, -3
				}
				return idx, 0
			}}})

		case bytecode.OpJumpIfFalse:
			rel := r.ReadI32()
			target := r.IP + int(rel)
			fallIdx := len(decs) + 1 // next decoded instruction, resolved below
			decs = append(decs, decoded{start, instr{exec: func(vm *interp.VM) (int, int64) {
				cond, status := vm.PopBool()
				if status != 0 {
					return 0, status
				}
				if !cond {
					idx, ok := offsetToIndex[target]
					if !ok {
						return 0, -3
					}
					return idx, 0
				}
				return fallIdx, 0
			}}})

		case bytecode.OpReturn:
			decs = append(decs, decoded{start, instr{isReturn: true, exec: func(vm *interp.VM) (int, int64) {
				vm.PopNativeFrame()
				return -1, 0
			}}})

		default:
			return nil, &errBailout{reason: fmt.Sprintf("unsupported opcode %s", op)}
		}
	}

	cf := &compiledFunc{instrs: make([]instr, len(decs))}
	for i, d := range decs {
		cf.instrs[i] = d.ins
	}
	return cf, nil
}

// Package interp implements the CORE's interpreter (spec.md §4.3): frame
// and operand stack discipline, instruction dispatch, arithmetic and
// comparison policy with magic-method fallback, the four call forms,
// attribute and collection opcodes, closures, and the
// Running/WaitingForInput/Finished suspension contract around input().
package interp

import (
	"errors"
	"fmt"

	"github.com/csh1668/pyhyeon/internal/bytecode"
	"github.com/csh1668/pyhyeon/internal/builtins"
	"github.com/csh1668/pyhyeon/internal/config"
	"github.com/csh1668/pyhyeon/internal/ioprovider"
	"github.com/csh1668/pyhyeon/internal/object"
)

// MaxOperandStack and MaxFrameDepth are the spec.md §4.3 defaults
// ("Operand stack capped at 1024 slots, frame stack at 256 depth;
// overflow is fatal."). config.Default carries the same values, and New
// takes its caps from config.Default rather than from these constants.
const (
	MaxOperandStack = 1024
	MaxFrameDepth   = 256
)

// State is one of the three execution states a VM exposes (§4.3).
type State int

const (
	StateRunning State = iota
	StateWaitingForInput
	StateFinished
)

// errWaitingForInput is the internal sentinel the top-level run loop
// (runUntil(0)) returns to Run/ResumeFrame on a suspension; a nested
// call loop reports a plain error instead. It never reaches a caller
// outside this package.
var errWaitingForInput = errors.New("interp: waiting for input")

// VM executes one Module. It is not safe for concurrent use (§5: "must
// not be driven from more than one thread simultaneously").
type VM struct {
	Module *bytecode.Module
	IO     ioprovider.Provider

	Stack  []object.Value
	Frames []Frame
	State  State

	registry *builtins.Registry
	started  bool

	maxOperandStack int
	maxFrameDepth   int

	// JIT is consulted by enterFunction on every call (spec.md §4.5); nil
	// means the VM runs purely interpreted. interp never imports
	// internal/jit — JITEngine is the local interface jit.Engine
	// satisfies, keeping the dependency one-directional.
	JIT JITEngine
}

// JITEngine is the accelerator hook enterFunction calls on every
// Call/CallValue entry: Notify feeds its hot-path counter, TryRun asks
// it to run a function it has already compiled instead of interpreting
// another frame.
type JITEngine interface {
	Notify(funcID int, fn *bytecode.FunctionCode)
	TryRun(vm *VM, funcID int, args, captures []object.Value) (ok bool, err error)
}

// SetJIT installs (or clears, with nil) the VM's accelerator.
func (vm *VM) SetJIT(e JITEngine) { vm.JIT = e }

// New builds a VM over module, driven by io for print/input, using the
// spec default caps.
func New(module *bytecode.Module, io ioprovider.Provider) *VM {
	return NewTuned(module, io, config.Default())
}

// NewTuned builds a VM whose operand-stack and frame-depth caps come
// from tuning (SPEC_FULL.md §2's config-file overlay) instead of the
// spec defaults.
func NewTuned(module *bytecode.Module, io ioprovider.Provider, tuning config.Tuning) *VM {
	return &VM{
		Module:          module,
		IO:              io,
		registry:        builtins.Register(module.Types),
		maxOperandStack: tuning.OperandStackCap,
		maxFrameDepth:   tuning.FrameStackCap,
	}
}

func (vm *VM) push(v object.Value) error {
	if len(vm.Stack) >= vm.maxOperandStack {
		return &RuntimeError{Kind: StackOverflow, Msg: fmt.Sprintf("operand stack exceeded %d slots", vm.maxOperandStack)}
	}
	vm.Stack = append(vm.Stack, v)
	return nil
}

func (vm *VM) pop() object.Value {
	n := len(vm.Stack) - 1
	v := vm.Stack[n]
	vm.Stack = vm.Stack[:n]
	return v
}

func (vm *VM) popN(n int) []object.Value {
	args := make([]object.Value, n)
	copy(args, vm.Stack[len(vm.Stack)-n:])
	vm.Stack = vm.Stack[:len(vm.Stack)-n]
	return args
}

func (vm *VM) peek(n int) object.Value { return vm.Stack[len(vm.Stack)-1-n] }

func (vm *VM) frame() *Frame { return &vm.Frames[len(vm.Frames)-1] }

// enterFunction pushes a new frame for funcID: args fill the first
// locals, captures (if any) the next, per §3's locals layout
// ("parameters first, then captured free variables ... then locals
// used by the body"). If a JIT is installed, it gets first look at
// funcID and may run it natively instead of an interpreted frame.
func (vm *VM) enterFunction(funcID int, args, captures []object.Value) error {
	if vm.JIT != nil {
		fn := vm.Module.Functions[funcID]
		vm.JIT.Notify(funcID, fn)
		if ok, err := vm.JIT.TryRun(vm, funcID, args, captures); ok || err != nil {
			return err
		}
	}
	return vm.pushFrame(funcID, args, captures)
}

// pushFrame does the actual frame construction enterFunction performs
// for an interpreted call, and that PushNativeFrame performs on behalf
// of a JIT that has already decided to run funcID itself.
func (vm *VM) pushFrame(funcID int, args, captures []object.Value) error {
	if len(vm.Frames) >= vm.maxFrameDepth {
		return &RuntimeError{Kind: StackOverflow, Msg: fmt.Sprintf("frame stack exceeded %d depth", vm.maxFrameDepth)}
	}
	fn := vm.Module.Functions[funcID]
	if len(args) != fn.Arity {
		return arityErrf(fn.Arity, len(args))
	}
	locals := make([]object.Value, fn.NumLocals)
	copy(locals, args)
	copy(locals[len(args):], captures)
	vm.Frames = append(vm.Frames, Frame{
		FuncID:       funcID,
		Locals:       locals,
		CallerHeight: len(vm.Stack),
	})
	return nil
}

// Run drives the VM until it finishes, suspends on input, or errors
// (§4.3's main loop). Calling Run again after WaitingForInput resumes
// exactly where the suspended CallBuiltin left off.
func (vm *VM) Run() (object.Value, error) {
	if vm.State == StateFinished {
		return object.Value{}, fmt.Errorf("interp: VM has already finished")
	}
	if !vm.started {
		vm.started = true
		if err := vm.enterFunction(0, nil, nil); err != nil {
			vm.State = StateFinished
			return object.Value{}, err
		}
	}
	vm.State = StateRunning
	result, err := vm.runUntil(0)
	switch {
	case err == errWaitingForInput:
		vm.State = StateWaitingForInput
		return object.Value{}, nil
	case err != nil:
		vm.State = StateFinished
		return object.Value{}, err
	default:
		vm.State = StateFinished
		return result, nil
	}
}

// Step executes exactly one instruction for internal/debugcli's
// single-step driver: if the VM hasn't started yet, it enters
// __main__'s frame first, then executes one opcode. waiting and
// finished report the two ways a step can end execution instead of
// just advancing IP.
func (vm *VM) Step() (waiting, finished bool, err error) {
	if vm.State == StateFinished {
		return false, true, nil
	}
	if !vm.started {
		vm.started = true
		if err := vm.enterFunction(0, nil, nil); err != nil {
			vm.State = StateFinished
			return false, true, err
		}
		vm.State = StateRunning
	}
	if len(vm.Frames) == 0 {
		vm.State = StateFinished
		return false, true, nil
	}
	w, err := vm.step()
	if err != nil {
		vm.State = StateFinished
		return false, true, err
	}
	if w {
		vm.State = StateWaitingForInput
		return true, false, nil
	}
	if len(vm.Frames) == 0 {
		vm.State = StateFinished
		return false, true, nil
	}
	return false, false, nil
}

// CurrentFrame exposes the top frame for a debugger to render (nil if
// the VM hasn't entered one yet or has already finished).
func (vm *VM) CurrentFrame() *Frame {
	if len(vm.Frames) == 0 {
		return nil
	}
	return vm.frame()
}

// ResumeFrame pushes a frame for funcID at the given ip and locals and
// drives it to completion or suspension, exactly like Run but for a
// driver (the REPL) that manages its own frame/locals lifetime across
// several separate compiled entries sharing one Module instead of
// calling Run once over a whole program. locals is kept by reference,
// so a caller that grows it between calls (NumLocals rising as later
// entries declare more top-level names) sees earlier values preserved.
func (vm *VM) ResumeFrame(funcID, ip int, locals []object.Value) (object.Value, error) {
	vm.started = true
	vm.Frames = append(vm.Frames, Frame{FuncID: funcID, IP: ip, Locals: locals, CallerHeight: len(vm.Stack)})
	vm.State = StateRunning
	result, err := vm.runUntil(0)
	switch {
	case err == errWaitingForInput:
		vm.State = StateWaitingForInput
		return object.Value{}, nil
	case err != nil:
		vm.State = StateFinished
		return object.Value{}, err
	default:
		vm.State = StateFinished
		return result, nil
	}
}

// runUntil executes instructions until the frame stack depth drops back
// to stopDepth (the call this iteration is serving has returned), an
// error occurs, or the VM must suspend for input. By the Return
// invariant (§3, §8) exactly one value sits on top of the operand stack
// when that happens.
func (vm *VM) runUntil(stopDepth int) (object.Value, error) {
	for len(vm.Frames) > stopDepth {
		waiting, err := vm.step()
		if err != nil {
			return object.Value{}, err
		}
		if waiting {
			if stopDepth != 0 {
				return object.Value{}, fmt.Errorf("interp: input() cannot suspend from within a nested call")
			}
			return object.Value{}, errWaitingForInput
		}
	}
	return vm.pop(), nil
}

// callSync invokes funcID synchronously from Go code (native method
// re-entry, magic-method fallback, map/filter callbacks) and returns its
// result, per §4.3 "re-entry" used by CallMethod's native dispatch and
// internal/builtins' VMBridge.
func (vm *VM) callSync(funcID int, args, captures []object.Value) (object.Value, error) {
	depth := len(vm.Frames)
	if err := vm.enterFunction(funcID, args, captures); err != nil {
		return object.Value{}, err
	}
	return vm.runUntil(depth)
}

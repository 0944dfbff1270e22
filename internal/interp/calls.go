package interp

import (
	"github.com/csh1668/pyhyeon/internal/builtins"
	"github.com/csh1668/pyhyeon/internal/ioprovider"
	"github.com/csh1668/pyhyeon/internal/object"
)

// execCallValue implements CallValue's dispatch table (§4.3): a
// UserFunction enters with its stored captures; a UserClass allocates a
// UserInstance and, if __init__ exists, runs it (already compiled to
// return self); a BuiltinClass{Range} runs the matching constructor
// helper; anything else is not callable.
func (vm *VM) execCallValue(callee object.Value, args []object.Value) error {
	if !callee.IsObject() {
		return typeErrf("'%s' object is not callable", vm.typeNameOf(callee))
	}
	switch d := callee.Obj.Data.(type) {
	case *object.UserFunctionData:
		return vm.enterFunction(d.FuncID, args, d.Captures)

	case *object.UserClassData:
		inst := object.FromObject(object.NewUserInstance(d.Class))
		if initImpl, ok := d.Class.Methods["__init__"]; ok {
			fullArgs := append([]object.Value{inst}, args...)
			if !initImpl.Arity.Accepts(len(args)) {
				return arityErrf(initImpl.Arity.Min+1, len(args)+1)
			}
			return vm.enterFunction(initImpl.FuncID, fullArgs, nil)
		}
		return vm.push(inst)

	case *object.BuiltinClassData:
		switch d.Kind {
		case object.BuiltinClassRange:
			// No identifier in the supplemental front end resolves to a
			// BuiltinClassData value today (range() is always lowered
			// to CallBuiltin); this branch exists so CallValue's
			// dispatch table matches §4.3 in full if a future front end
			// exposes range as a first-class value.
			v, err := vm.registry.Free[builtins.Range](vm, vm, args)
			if err != nil {
				return wrapBuiltinErr(err)
			}
			return vm.push(v)
		}
	}
	return typeErrf("'%s' object is not callable", vm.typeNameOf(callee))
}

// execCallBuiltin dispatches CallBuiltin(id, argc). input() is
// special-cased here rather than routed through the registry, because
// only the VM's main loop can observe ReadWaiting and rewind the
// instruction pointer (§4.3).
func (vm *VM) execCallBuiltin(id, argc, rewindTo int) (waiting bool, err error) {
	if id == builtins.Input {
		return vm.execInput(argc, rewindTo)
	}
	args := vm.popN(argc)
	v, err := vm.registry.Free[id](vm, vm, args)
	if err != nil {
		return false, wrapBuiltinErr(err)
	}
	return false, vm.push(v)
}

func (vm *VM) execInput(argc, rewindTo int) (waiting bool, err error) {
	if argc > 1 {
		return false, typeErrf("input() takes at most 1 argument (%d given)", argc)
	}
	var prompt object.Value
	if argc == 1 {
		prompt = vm.peek(0)
	}
	if argc == 1 {
		vm.IO.Write(prompt.Inspect())
	}
	text, outcome := vm.IO.ReadLine()
	switch outcome {
	case ioprovider.ReadWaiting:
		vm.frame().IP = rewindTo
		return true, nil
	case ioprovider.ReadEOF:
		vm.popN(argc)
		return false, vm.push(object.None())
	default:
		vm.popN(argc)
		return false, vm.push(object.FromObject(object.NewString(text)))
	}
}

// dispatchMethod implements §4.2's method lookup followed by invocation:
// native handlers call straight into the registry; user-defined methods
// re-enter the interpreter with the receiver prepended to args.
func (vm *VM) dispatchMethod(recv object.Value, name string, args []object.Value) (object.Value, error) {
	impl, _, err := object.ResolveMethod(vm.Module.Types, recv, name)
	if err != nil {
		return object.Value{}, typeErrf("%s", err.Error())
	}
	if !impl.Arity.Accepts(len(args)) {
		return object.Value{}, arityErrf(impl.Arity.Min, len(args))
	}
	if impl.IsNative {
		v, err := vm.registry.Dispatch(impl.HandlerID, vm, vm, recv, args)
		if err != nil {
			return object.Value{}, wrapBuiltinErr(err)
		}
		return v, nil
	}
	fullArgs := append([]object.Value{recv}, args...)
	return vm.callSync(impl.FuncID, fullArgs, nil)
}

// CallMethod implements builtins.VMBridge: native iterator adapters
// (map/filter) re-enter generic method dispatch on their Source value
// through this, without knowing its concrete kind.
func (vm *VM) CallMethod(recv object.Value, method string, args []object.Value) (object.Value, error) {
	return vm.dispatchMethod(recv, method, args)
}

// CallCallable implements builtins.VMBridge: map/filter apply the
// wrapped user callable to each produced element through this.
func (vm *VM) CallCallable(fn object.Value, args []object.Value) (object.Value, error) {
	if !fn.IsObject() {
		return object.Value{}, typeErrf("'%s' object is not callable", vm.typeNameOf(fn))
	}
	uf, ok := fn.Obj.Data.(*object.UserFunctionData)
	if !ok {
		return object.Value{}, typeErrf("'%s' object is not callable", vm.typeNameOf(fn))
	}
	return vm.callSync(uf.FuncID, args, uf.Captures)
}

// Write, WriteLine and ReadLine implement builtins.IOProvider so the
// registry's free functions (print's direct write, input's fallback
// path) can be dispatched with the VM itself as the IO capability.
func (vm *VM) Write(s string)     { vm.IO.Write(s) }
func (vm *VM) WriteLine(s string) { vm.IO.WriteLine(s) }
func (vm *VM) ReadLine() (string, bool) {
	text, outcome := vm.IO.ReadLine()
	return text, outcome == ioprovider.ReadOK
}

func wrapBuiltinErr(err error) error {
	switch e := err.(type) {
	case *builtins.TypeError:
		return &RuntimeError{Kind: TypeError, Msg: e.Msg}
	case *builtins.ValueError:
		return &RuntimeError{Kind: TypeError, Msg: e.Msg}
	case *builtins.AssertionError:
		return &RuntimeError{Kind: AssertionError, Msg: e.Msg}
	default:
		return err
	}
}

// typeNameOf renders the display type name used in error messages:
// a UserInstance reports its class name, everything else its type
// table entry.
func (vm *VM) typeNameOf(v object.Value) string {
	if v.IsObject() {
		if inst, ok := v.Obj.Data.(*object.UserInstanceData); ok {
			return inst.Class.Name
		}
	}
	id := v.TypeID()
	if int(id) < len(vm.Module.Types) && vm.Module.Types[id] != nil {
		return vm.Module.Types[id].Name
	}
	return "object"
}

// Package builtins implements the CORE's free functions and builtin
// type methods (spec.md §5), registering native handlers into a
// Module's type table without importing internal/interp: the VM and
// I/O capabilities a native handler needs are expressed here as small
// local interfaces (VMBridge, IOProvider) that *interp.VM satisfies
// structurally, avoiding an import cycle.
package builtins

import "github.com/csh1668/pyhyeon/internal/object"

// BuiltinID identifies one of the fixed free functions callable via
// CallBuiltin. Values are stable across a process but are never
// persisted (CallBuiltin immediates are baked into bytecode, which this
// module's own versioning already guards - see bytecode.Save/Load).
const (
	Print = iota
	Input
	Len
	Range
	Int
	Bool
	Str
	Float
	Map
	Filter
	Assert

	numBuiltins
)

// NameToID is the fixed name table the compiler consults when lowering
// a bare-name Call to CallBuiltin (§4.1).
var NameToID = map[string]int{
	"print":  Print,
	"input":  Input,
	"len":    Len,
	"range":  Range,
	"int":    Int,
	"bool":   Bool,
	"str":    Str,
	"float":  Float,
	"map":    Map,
	"filter": Filter,
	"assert": Assert,
}

// VMBridge is the slice of VM capability a native handler needs to
// re-enter evaluation: map/filter calling the wrapped predicate back,
// and any iterator adapter driving its Source's own iterator-protocol
// methods generically. *interp.VM implements this.
type VMBridge interface {
	CallCallable(fn object.Value, args []object.Value) (object.Value, error)
	CallMethod(recv object.Value, method string, args []object.Value) (object.Value, error)
}

// IOProvider is the slice of §6.3's I/O provider contract a native
// handler needs: print's sink and input's source. Write has no
// trailing newline (used for input()'s optional prompt); WriteLine adds
// one (print()'s line-per-call convention).
type IOProvider interface {
	Write(s string)
	WriteLine(s string)
	ReadLine() (string, bool)
}

// FreeFunc implements one CallBuiltin entry.
type FreeFunc func(vm VMBridge, io IOProvider, args []object.Value) (object.Value, error)

// MethodFunc implements one native type-table method entry.
type MethodFunc func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error)

// FreeFuncs is returned by Register: CallBuiltin dispatches through it
// by BuiltinID.
type FreeFuncs [numBuiltins]FreeFunc

// handlerAllocator allocates a dense, stable NativeHandlerID for each
// registered native method, in registration order.
type handlerAllocator struct {
	next    object.NativeHandlerID
	handler map[object.NativeHandlerID]MethodFunc
}

func (a *handlerAllocator) add(fn MethodFunc) object.NativeHandlerID {
	id := a.next
	a.next++
	a.handler[id] = fn
	return id
}

// Registry is what Register returns: the free-function dispatch table
// plus the native method table CallMethod/ResolveMethod consult via
// MethodImpl.HandlerID.
type Registry struct {
	Free     FreeFuncs
	Handlers map[object.NativeHandlerID]MethodFunc
}

func (r *Registry) Dispatch(id object.NativeHandlerID, vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
	fn, ok := r.Handlers[id]
	if !ok {
		return object.Value{}, &object.ErrNoSuchMethod{TypeName: "?", Method: "?"}
	}
	return fn(vm, io, recv, args)
}

// Register installs every builtin type's native methods into types
// (indexed by the fixed builtin type_id order, §3) and returns the
// registry the VM dispatches CallBuiltin/CallMethod through.
func Register(types []*object.TypeDef) *Registry {
	alloc := &handlerAllocator{handler: make(map[object.NativeHandlerID]MethodFunc)}
	reg := &Registry{Handlers: alloc.handler}

	reg.Free[Print] = builtinPrint
	reg.Free[Input] = builtinInput
	reg.Free[Len] = builtinLen
	reg.Free[Range] = builtinRange
	reg.Free[Int] = builtinInt
	reg.Free[Bool] = builtinBool
	reg.Free[Str] = builtinStr
	reg.Free[Float] = builtinFloat
	reg.Free[Map] = builtinMap
	reg.Free[Filter] = builtinFilter
	reg.Free[Assert] = builtinAssert

	registerStrMethods(types[object.TypeStr], alloc)
	registerListMethods(types[object.TypeList], alloc)
	registerDictMethods(types[object.TypeDict], alloc)
	registerRangeMethods(types[object.TypeRange], alloc)
	registerMapIterMethods(types[object.TypeMapIter], alloc)
	registerFilterIterMethods(types[object.TypeFilterIter], alloc)

	return reg
}

func method(t *object.TypeDef, alloc *handlerAllocator, name string, arity object.Arity, fn MethodFunc) {
	t.Methods[name] = object.Native(alloc.add(fn), arity)
}

package interp

import (
	"github.com/csh1668/pyhyeon/internal/bytecode"
	"github.com/csh1668/pyhyeon/internal/object"
)

// step executes exactly one instruction of the current top frame and
// reports whether it must suspend for input (§4.3's "dispatch to a
// per-opcode handler returning one of Continue, WaitingForInput,
// Return").
func (vm *VM) step() (waiting bool, err error) {
	f := vm.frame()
	fn := vm.Module.Functions[f.FuncID]
	r := bytecode.NewReader(fn.Code, f.IP)
	op := r.ReadOp()

	switch op {
	case bytecode.OpConstI64:
		v := r.ReadI64()
		f.IP = r.IP
		return false, vm.push(object.Int(v))

	case bytecode.OpConstF64:
		bits := r.ReadU32()
		f.IP = r.IP
		return false, vm.push(object.Float(float64(decodeF32(bits))))

	case bytecode.OpConstStr:
		idx := r.ReadU32()
		f.IP = r.IP
		return false, vm.push(object.FromObject(object.NewString(vm.Module.StringPool[idx])))

	case bytecode.OpLoadConst:
		idx := r.ReadU32()
		f.IP = r.IP
		return false, vm.push(vm.Module.Consts[idx])

	case bytecode.OpTrue:
		f.IP = r.IP
		return false, vm.push(object.Bool(true))

	case bytecode.OpFalse:
		f.IP = r.IP
		return false, vm.push(object.Bool(false))

	case bytecode.OpNone:
		f.IP = r.IP
		return false, vm.push(object.None())

	case bytecode.OpPop:
		f.IP = r.IP
		vm.pop()
		return false, nil

	case bytecode.OpDup:
		f.IP = r.IP
		return false, vm.push(vm.peek(0))

	case bytecode.OpLoadLocal:
		idx := r.ReadU16()
		f.IP = r.IP
		return false, vm.push(f.Locals[idx])

	case bytecode.OpStoreLocal:
		idx := r.ReadU16()
		f.IP = r.IP
		f.Locals[idx] = vm.pop()
		return false, nil

	case bytecode.OpLoadGlobal:
		sym := r.ReadU16()
		f.IP = r.IP
		slot := vm.Module.Globals[sym]
		if !slot.Defined {
			return false, &RuntimeError{Kind: UndefinedGlobal, Msg: "global " + vm.Module.Symbols[sym] + " is not defined"}
		}
		return false, vm.push(slot.Value)

	case bytecode.OpStoreGlobal:
		sym := r.ReadU16()
		f.IP = r.IP
		vm.Module.Globals[sym] = bytecode.GlobalSlot{Value: vm.pop(), Defined: true}
		return false, nil

	case bytecode.OpAdd, bytecode.OpSub, bytecode.OpMul, bytecode.OpDiv, bytecode.OpTrueDiv, bytecode.OpMod:
		f.IP = r.IP
		return false, vm.execBinaryArith(op)

	case bytecode.OpNeg, bytecode.OpPos:
		f.IP = r.IP
		return false, vm.execUnaryArith(op)

	case bytecode.OpEq, bytecode.OpNe, bytecode.OpLt, bytecode.OpLe, bytecode.OpGt, bytecode.OpGe:
		f.IP = r.IP
		return false, vm.execCompare(op)

	case bytecode.OpNot:
		f.IP = r.IP
		v := vm.pop()
		return false, vm.push(object.Bool(!v.Truthy()))

	case bytecode.OpJump:
		rel := r.ReadI32()
		f.IP = r.IP + int(rel)
		return false, nil

	case bytecode.OpJumpIfFalse:
		rel := r.ReadI32()
		cond := vm.pop()
		if !cond.Truthy() {
			f.IP = r.IP + int(rel)
		} else {
			f.IP = r.IP
		}
		return false, nil

	case bytecode.OpJumpIfTrue:
		rel := r.ReadI32()
		cond := vm.pop()
		if cond.Truthy() {
			f.IP = r.IP + int(rel)
		} else {
			f.IP = r.IP
		}
		return false, nil

	case bytecode.OpCall:
		funcID := int(r.ReadU16())
		argc := int(r.ReadU8())
		f.IP = r.IP
		args := vm.popN(argc)
		return false, vm.enterFunction(funcID, args, nil)

	case bytecode.OpCallValue:
		argc := int(r.ReadU8())
		f.IP = r.IP
		args := vm.popN(argc)
		callee := vm.pop()
		return false, vm.execCallValue(callee, args)

	case bytecode.OpCallBuiltin:
		id := int(r.ReadU8())
		argc := int(r.ReadU8())
		rewindTo := f.IP
		f.IP = r.IP
		return vm.execCallBuiltin(id, argc, rewindTo)

	case bytecode.OpCallMethod:
		sym := r.ReadU16()
		argc := int(r.ReadU8())
		f.IP = r.IP
		args := vm.popN(argc)
		recv := vm.pop()
		v, err := vm.dispatchMethod(recv, vm.Module.Symbols[sym], args)
		if err != nil {
			return false, err
		}
		return false, vm.push(v)

	case bytecode.OpReturn:
		var result object.Value
		if len(vm.Stack) > f.CallerHeight {
			result = vm.pop()
		} else {
			result = object.None()
		}
		vm.Stack = vm.Stack[:f.CallerHeight]
		vm.Frames = vm.Frames[:len(vm.Frames)-1]
		return false, vm.push(result)

	case bytecode.OpLoadAttr:
		sym := r.ReadU16()
		f.IP = r.IP
		obj := vm.pop()
		v, err := vm.loadAttr(obj, vm.Module.Symbols[sym])
		if err != nil {
			return false, err
		}
		return false, vm.push(v)

	case bytecode.OpStoreAttr:
		sym := r.ReadU16()
		f.IP = r.IP
		val := vm.pop()
		obj := vm.pop()
		return false, vm.storeAttr(obj, vm.Module.Symbols[sym], val)

	case bytecode.OpBuildList:
		n := int(r.ReadU16())
		f.IP = r.IP
		items := vm.popN(n)
		return false, vm.push(object.FromObject(object.NewList(items)))

	case bytecode.OpBuildTuple:
		n := int(r.ReadU16())
		f.IP = r.IP
		items := vm.popN(n)
		return false, vm.push(object.FromObject(object.NewList(items)))

	case bytecode.OpBuildSet:
		n := int(r.ReadU16())
		f.IP = r.IP
		items := vm.popN(n)
		v, err := buildUniqueDict(items)
		if err != nil {
			return false, err
		}
		return false, vm.push(v)

	case bytecode.OpBuildTreeSet:
		n := int(r.ReadU16())
		f.IP = r.IP
		items := vm.popN(n)
		v, err := buildSortedUniqueDict(items)
		if err != nil {
			return false, err
		}
		return false, vm.push(v)

	case bytecode.OpBuildDict:
		n := int(r.ReadU16())
		f.IP = r.IP
		pairs := vm.popN(2 * n)
		d := object.NewDict()
		dd := d.Data.(*object.DictData)
		for i := 0; i < n; i++ {
			k, v := pairs[2*i], pairs[2*i+1]
			key, err := object.ToDictKey(k)
			if err != nil {
				return false, typeErrf("unhashable dict key: %s", k.Inspect())
			}
			dd.Set(key, v)
		}
		return false, vm.push(object.FromObject(d))

	case bytecode.OpLoadIndex:
		f.IP = r.IP
		key := vm.pop()
		obj := vm.pop()
		v, err := vm.loadIndex(obj, key)
		if err != nil {
			return false, err
		}
		return false, vm.push(v)

	case bytecode.OpStoreIndex:
		f.IP = r.IP
		val := vm.pop()
		key := vm.pop()
		obj := vm.pop()
		return false, vm.storeIndex(obj, key, val)

	case bytecode.OpMakeClosure:
		funcID := int(r.ReadU16())
		capc := int(r.ReadU8())
		f.IP = r.IP
		captures := vm.popN(capc)
		return false, vm.push(object.FromObject(object.NewUserFunction(funcID, captures)))

	default:
		f.IP = r.IP
		return false, typeErrf("unknown opcode %v", op)
	}
}

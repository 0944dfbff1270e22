package interp

import (
	"math"

	"github.com/csh1668/pyhyeon/internal/bytecode"
	"github.com/csh1668/pyhyeon/internal/object"
)

// decodeF32 undoes the compiler's OpConstF64 float32 truncation
// (internal/compiler's encodeF64), returning the float32; the caller
// widens it back to float64.
func decodeF32(bits uint32) float32 { return math.Float32frombits(bits) }

var magicNames = map[bytecode.Opcode]string{
	bytecode.OpAdd:     "__add__",
	bytecode.OpSub:     "__sub__",
	bytecode.OpMul:     "__mul__",
	bytecode.OpTrueDiv: "__truediv__",
	bytecode.OpDiv:     "__floordiv__",
	bytecode.OpMod:     "__mod__",
	bytecode.OpEq:      "__eq__",
	bytecode.OpNe:      "__ne__",
	bytecode.OpLt:      "__lt__",
	bytecode.OpLe:      "__le__",
	bytecode.OpGt:      "__gt__",
	bytecode.OpGe:      "__ge__",
}

// execBinaryArith implements §4.3's arithmetic policy: fast paths for
// Int/Int, Float/Float, mixed Int-Float (promotes to Float), and the
// String concat/repeat forms, falling back to the left operand's magic
// method otherwise.
func (vm *VM) execBinaryArith(op bytecode.Opcode) error {
	b := vm.pop()
	a := vm.pop()

	if a.IsInt() && b.IsInt() {
		v, err := intArith(op, a.AsInt(), b.AsInt())
		if err != nil {
			return err
		}
		return vm.push(v)
	}
	if (a.IsInt() || a.IsFloat()) && (b.IsInt() || b.IsFloat()) {
		v, err := floatArith(op, a.AsFloat64(), b.AsFloat64())
		if err != nil {
			return err
		}
		return vm.push(v)
	}
	if op == bytecode.OpAdd && isString(a) && isString(b) {
		return vm.push(object.FromObject(object.NewString(asString(a) + asString(b))))
	}
	if op == bytecode.OpMul {
		if isString(a) && b.IsInt() {
			return vm.push(object.FromObject(object.NewString(repeatString(asString(a), b.AsInt()))))
		}
		if a.IsInt() && isString(b) {
			return vm.push(object.FromObject(object.NewString(repeatString(asString(b), a.AsInt()))))
		}
	}
	return vm.magicBinary(op, a, b)
}

func (vm *VM) magicBinary(op bytecode.Opcode, a, b object.Value) error {
	name, ok := magicNames[op]
	if !ok {
		return typeErrf("unsupported operator between %s and %s", vm.typeNameOf(a), vm.typeNameOf(b))
	}
	v, err := vm.dispatchMethod(a, name, []object.Value{b})
	if err != nil {
		return typeErrf("unsupported operand type(s) for operator: %s and %s", vm.typeNameOf(a), vm.typeNameOf(b))
	}
	return vm.push(v)
}

func intArith(op bytecode.Opcode, a, b int64) (object.Value, error) {
	switch op {
	case bytecode.OpAdd:
		return object.Int(int64(uint64(a) + uint64(b))), nil
	case bytecode.OpSub:
		return object.Int(int64(uint64(a) - uint64(b))), nil
	case bytecode.OpMul:
		return object.Int(int64(uint64(a) * uint64(b))), nil
	case bytecode.OpTrueDiv:
		if b == 0 {
			return object.Value{}, zeroDivErr()
		}
		return object.Float(float64(a) / float64(b)), nil
	case bytecode.OpDiv:
		if b == 0 {
			return object.Value{}, zeroDivErr()
		}
		return object.Int(floorDivInt(a, b)), nil
	case bytecode.OpMod:
		if b == 0 {
			return object.Value{}, zeroDivErr()
		}
		return object.Int(floorModInt(a, b)), nil
	}
	return object.Value{}, typeErrf("unsupported integer operator")
}

func floatArith(op bytecode.Opcode, a, b float64) (object.Value, error) {
	switch op {
	case bytecode.OpAdd:
		return object.Float(a + b), nil
	case bytecode.OpSub:
		return object.Float(a - b), nil
	case bytecode.OpMul:
		return object.Float(a * b), nil
	case bytecode.OpTrueDiv:
		if b == 0 {
			return object.Value{}, zeroDivErr()
		}
		return object.Float(a / b), nil
	case bytecode.OpDiv:
		if b == 0 {
			return object.Value{}, zeroDivErr()
		}
		return object.Float(math.Floor(a / b)), nil
	case bytecode.OpMod:
		if b == 0 {
			return object.Value{}, zeroDivErr()
		}
		return object.Float(a - math.Floor(a/b)*b), nil
	}
	return object.Value{}, typeErrf("unsupported float operator")
}

func floorDivInt(a, b int64) int64 {
	q := a / b
	r := a % b
	if r != 0 && (r < 0) != (b < 0) {
		q--
	}
	return q
}

func floorModInt(a, b int64) int64 {
	r := a % b
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r
}

func repeatString(s string, n int64) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, len(s)*int(n))
	for i := int64(0); i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

func isString(v object.Value) bool {
	if !v.IsObject() {
		return false
	}
	_, ok := v.Obj.Data.(*object.StringData)
	return ok
}

func asString(v object.Value) string { return v.Obj.Data.(*object.StringData).Value }

// execUnaryArith implements Neg/Pos (§6.1): fast paths for Int/Float,
// falling back to __neg__/__pos__ for user classes.
func (vm *VM) execUnaryArith(op bytecode.Opcode) error {
	v := vm.pop()
	switch {
	case v.IsInt():
		if op == bytecode.OpNeg {
			return vm.push(object.Int(int64(-uint64(v.AsInt()))))
		}
		return vm.push(v)
	case v.IsFloat():
		if op == bytecode.OpNeg {
			return vm.push(object.Float(-v.AsFloat()))
		}
		return vm.push(v)
	}
	name := "__pos__"
	if op == bytecode.OpNeg {
		name = "__neg__"
	}
	res, err := vm.dispatchMethod(v, name, nil)
	if err != nil {
		return typeErrf("bad operand type for unary operator: %s", vm.typeNameOf(v))
	}
	return vm.push(res)
}

// execCompare implements Eq/Ne (always succeed, value equality with
// Int/Float promotion per §3) and Lt/Le/Gt/Ge (numeric and string fast
// paths, magic-method fallback, type error on no resolution).
func (vm *VM) execCompare(op bytecode.Opcode) error {
	b := vm.pop()
	a := vm.pop()

	switch op {
	case bytecode.OpEq:
		return vm.push(object.Bool(a.Equals(b)))
	case bytecode.OpNe:
		return vm.push(object.Bool(!a.Equals(b)))
	}

	if (a.IsInt() || a.IsFloat()) && (b.IsInt() || b.IsFloat()) {
		af, bf := a.AsFloat64(), b.AsFloat64()
		return vm.push(object.Bool(numCompare(op, af, bf)))
	}
	if isString(a) && isString(b) {
		return vm.push(object.Bool(strCompare(op, asString(a), asString(b))))
	}
	return vm.magicBinary(op, a, b)
}

func numCompare(op bytecode.Opcode, a, b float64) bool {
	switch op {
	case bytecode.OpLt:
		return a < b
	case bytecode.OpLe:
		return a <= b
	case bytecode.OpGt:
		return a > b
	case bytecode.OpGe:
		return a >= b
	}
	return false
}

func strCompare(op bytecode.Opcode, a, b string) bool {
	switch op {
	case bytecode.OpLt:
		return a < b
	case bytecode.OpLe:
		return a <= b
	case bytecode.OpGt:
		return a > b
	case bytecode.OpGe:
		return a >= b
	}
	return false
}

// Package object implements the value and heap-object model shared by the
// compiler, interpreter and JIT: a tagged union of primitives plus a
// reference-counted-in-spirit (but GC-managed, since this is Go) heap cell.
package object

import (
	"fmt"
	"math"
)

// Kind identifies which arm of the Value union is populated.
type Kind uint8

const (
	KindNone Kind = iota
	KindInt
	KindFloat
	KindBool
	KindObject
)

// Value is a stack-allocated tagged union: Int(i64), Float(f64), Bool,
// None, or a shared Object. Data holds the bit pattern for Int/Float/Bool
// so that primitives never touch the heap; Obj is populated only for
// KindObject.
type Value struct {
	Kind Kind
	Data uint64
	Obj  *Object
}

func None() Value                 { return Value{Kind: KindNone} }
func Int(v int64) Value           { return Value{Kind: KindInt, Data: uint64(v)} }
func Float(v float64) Value       { return Value{Kind: KindFloat, Data: math.Float64bits(v)} }
func FromObject(o *Object) Value  { return Value{Kind: KindObject, Obj: o} }

func Bool(v bool) Value {
	var d uint64
	if v {
		d = 1
	}
	return Value{Kind: KindBool, Data: d}
}

func (v Value) IsNone() bool   { return v.Kind == KindNone }
func (v Value) IsInt() bool    { return v.Kind == KindInt }
func (v Value) IsFloat() bool  { return v.Kind == KindFloat }
func (v Value) IsBool() bool   { return v.Kind == KindBool }
func (v Value) IsObject() bool { return v.Kind == KindObject }

func (v Value) AsInt() int64     { return int64(v.Data) }
func (v Value) AsFloat() float64 { return math.Float64frombits(v.Data) }
func (v Value) AsBool() bool     { return v.Data == 1 }

// AsFloat64 widens Int or Float to float64; callers must check IsInt/IsFloat
// before calling anything that would promote a non-numeric value.
func (v Value) AsFloat64() float64 {
	if v.Kind == KindInt {
		return float64(v.AsInt())
	}
	return v.AsFloat()
}

// TypeID returns the builtin type_id for primitives, or the Object's
// type_id for KindObject. UserInstance dispatch never consults this;
// callers must special-case UserInstance before reaching for TypeID.
func (v Value) TypeID() uint16 {
	switch v.Kind {
	case KindInt:
		return TypeInt
	case KindBool:
		return TypeBool
	case KindFloat:
		return TypeFloat
	case KindNone:
		return TypeNoneType
	case KindObject:
		return v.Obj.TypeID
	default:
		return TypeNoneType
	}
}

// Truthy implements the §4.3 truth test.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.AsBool()
	case KindInt:
		return v.AsInt() != 0
	case KindFloat:
		return v.AsFloat() != 0.0
	case KindNone:
		return false
	case KindObject:
		return v.Obj.Truthy()
	default:
		return false
	}
}

// Equals implements value equality: Int/Float promote, Bool never equals
// Int, and incomparable pairs are simply false (never an error).
func (v Value) Equals(other Value) bool {
	if v.Kind == KindInt && other.Kind == KindFloat {
		return float64(v.AsInt()) == other.AsFloat()
	}
	if v.Kind == KindFloat && other.Kind == KindInt {
		return v.AsFloat() == float64(other.AsInt())
	}
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindInt, KindBool:
		return v.Data == other.Data
	case KindFloat:
		return v.AsFloat() == other.AsFloat()
	case KindNone:
		return true
	case KindObject:
		return v.Obj.Equals(other.Obj)
	default:
		return false
	}
}

// Inspect renders the display representation used by print() and str().
func (v Value) Inspect() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.AsInt())
	case KindFloat:
		return formatFloat(v.AsFloat())
	case KindBool:
		if v.AsBool() {
			return "True"
		}
		return "False"
	case KindNone:
		return "None"
	case KindObject:
		return v.Obj.Inspect()
	default:
		return "<?>"
	}
}

func formatFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	s := fmt.Sprintf("%g", f)
	// Ensure a float always displays with a decimal marker, matching str(1.0) == "1.0".
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'n' || c == 'i' {
			return s
		}
	}
	return s + ".0"
}

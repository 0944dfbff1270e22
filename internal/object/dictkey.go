package object

import "fmt"

// DictKeyKind enumerates the closed set of types admissible as Dict keys:
// Int, Bool, String. Float is deliberately excluded (see DESIGN.md).
type DictKeyKind uint8

const (
	DictKeyInt DictKeyKind = iota
	DictKeyBool
	DictKeyString
)

// DictKey is a comparable Go value usable directly as a map key, so a
// Dict's backing store can be a plain Go map[DictKey]Value.
type DictKey struct {
	Kind DictKeyKind
	I    int64
	S    string
}

// ErrNotHashable is returned by ToDictKey for any value outside the
// DictKey set; the interpreter turns this into a TypeError.
var ErrNotHashable = fmt.Errorf("unhashable type used as dict key")

// ToDictKey converts a Value to a DictKey, or reports that the value's
// type cannot be used as a key.
func ToDictKey(v Value) (DictKey, error) {
	switch v.Kind {
	case KindInt:
		return DictKey{Kind: DictKeyInt, I: v.AsInt()}, nil
	case KindBool:
		i := int64(0)
		if v.AsBool() {
			i = 1
		}
		return DictKey{Kind: DictKeyBool, I: i}, nil
	case KindObject:
		if s, ok := v.Obj.Data.(*StringData); ok {
			return DictKey{Kind: DictKeyString, S: s.Value}, nil
		}
	}
	return DictKey{}, ErrNotHashable
}

// Value converts a DictKey back to the Value it was derived from, for
// iteration over dict keys.
func (k DictKey) Value() Value {
	switch k.Kind {
	case DictKeyInt:
		return Int(k.I)
	case DictKeyBool:
		return Bool(k.I != 0)
	case DictKeyString:
		return FromObject(NewString(k.S))
	default:
		return None()
	}
}

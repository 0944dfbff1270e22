package object

import (
	"fmt"
	"strings"
)

// Fixed builtin type_id order (§3 "Type table"). Indices 0-99 are
// reserved for builtins; only this fixed prefix is populated. Indices
// 100+ are user classes, assigned in declaration order by the compiler.
const (
	TypeInt = iota
	TypeBool
	TypeStr
	TypeNoneType
	TypeRange
	TypeList
	TypeDict
	TypeFloat
	TypeFunction
	TypeMapIter
	TypeFilterIter

	NumBuiltinTypes
)

// TypeUserBase is the first type_id available to user-declared classes.
const TypeUserBase = 100

// BuiltinTypeNames gives the display name for each fixed builtin type_id,
// in the order spec.md §3 mandates.
var BuiltinTypeNames = [NumBuiltinTypes]string{
	TypeInt:        "int",
	TypeBool:       "bool",
	TypeStr:        "str",
	TypeNoneType:   "NoneType",
	TypeRange:      "range",
	TypeList:       "list",
	TypeDict:       "dict",
	TypeFloat:      "float",
	TypeFunction:   "function",
	TypeMapIter:    "map_iter",
	TypeFilterIter: "filter_iter",
}

// ObjectData is the closed set of heap payload shapes (§3 "ObjectData
// variants"). Each concrete type below implements it as a marker.
type ObjectData interface {
	objectData()
	inspect() string
}

// Object is the shared heap cell every reference value points to.
// Attrs is allocated lazily on first StoreAttr so immutable primitives
// (and freshly built objects that never receive an attribute) stay
// cheap. Go's tracing GC retires the non-goal of cycle collection: a
// shared-owned cell here is just a pointer, and cycles are reclaimed
// normally instead of leaking (see DESIGN.md).
type Object struct {
	TypeID uint16
	Data   ObjectData
	Attrs  map[string]Value
}

func newObject(typeID uint16, data ObjectData) *Object {
	return &Object{TypeID: typeID, Data: data}
}

func (o *Object) Inspect() string {
	return o.Data.inspect()
}

func (o *Object) Truthy() bool {
	switch d := o.Data.(type) {
	case *StringData:
		return d.Value != ""
	case *ListData:
		return len(d.Items) != 0
	case *DictData:
		return len(d.Map) != 0
	default:
		return true
	}
}

func (o *Object) Equals(other *Object) bool {
	if o == other {
		return true
	}
	if other == nil || o.TypeID != other.TypeID {
		return false
	}
	switch a := o.Data.(type) {
	case *StringData:
		b, ok := other.Data.(*StringData)
		return ok && a.Value == b.Value
	case *ListData:
		b, ok := other.Data.(*ListData)
		if !ok || len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !a.Items[i].Equals(b.Items[i]) {
				return false
			}
		}
		return true
	case *DictData:
		b, ok := other.Data.(*DictData)
		if !ok || len(a.Map) != len(b.Map) {
			return false
		}
		for k, v := range a.Map {
			bv, ok := b.Map[k]
			if !ok || !v.Equals(bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// --- String ---

type StringData struct{ Value string }

func (*StringData) objectData()     {}
func (s *StringData) inspect() string { return s.Value }

func NewString(s string) *Object {
	return newObject(TypeStr, &StringData{Value: s})
}

// --- List ---

type ListData struct{ Items []Value }

func (*ListData) objectData() {}
func (l *ListData) inspect() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range l.Items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(reprOf(v))
	}
	sb.WriteByte(']')
	return sb.String()
}

func NewList(items []Value) *Object {
	return newObject(TypeList, &ListData{Items: items})
}

// --- Dict ---

type DictData struct {
	Map  map[DictKey]Value
	// Order preserves insertion order for deterministic iteration/print.
	Order []DictKey
}

func (*DictData) objectData() {}
func (d *DictData) inspect() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range d.Order {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(reprOf(k.Value()))
		sb.WriteString(": ")
		sb.WriteString(reprOf(d.Map[k]))
	}
	sb.WriteByte('}')
	return sb.String()
}

func NewDict() *Object {
	return newObject(TypeDict, &DictData{Map: make(map[DictKey]Value)})
}

func (d *DictData) Set(k DictKey, v Value) {
	if _, exists := d.Map[k]; !exists {
		d.Order = append(d.Order, k)
	}
	d.Map[k] = v
}

// reprOf renders strings quoted when nested inside a list/dict display,
// matching the usual container-repr convention.
func reprOf(v Value) string {
	if v.IsObject() {
		if s, ok := v.Obj.Data.(*StringData); ok {
			return fmt.Sprintf("%q", s.Value)
		}
	}
	return v.Inspect()
}

// --- UserClass / UserInstance ---

// ClassDef is the Module-owned class registry entry (§4.2): a method
// table keyed by name, resolved before falling back to the type table.
type ClassDef struct {
	Name    string
	ClassID uint16
	Methods map[string]MethodImpl
}

type UserClassData struct {
	Class *ClassDef
}

func (*UserClassData) objectData()       {}
func (c *UserClassData) inspect() string { return fmt.Sprintf("<class %s>", c.Class.Name) }

func NewUserClass(class *ClassDef) *Object {
	return newObject(TypeUserBase+class.ClassID, &UserClassData{Class: class})
}

type UserInstanceData struct {
	Class *ClassDef
}

func (*UserInstanceData) objectData()       {}
func (i *UserInstanceData) inspect() string { return fmt.Sprintf("<%s instance>", i.Class.Name) }

func NewUserInstance(class *ClassDef) *Object {
	o := newObject(TypeUserBase+class.ClassID, &UserInstanceData{Class: class})
	return o
}

// --- BuiltinClass / BuiltinInstance ---

// BuiltinClassKind enumerates constructible builtin classes (only Range
// today; the slot exists so new builtin constructors fit without a
// representation change).
type BuiltinClassKind uint8

const (
	BuiltinClassRange BuiltinClassKind = iota
)

type BuiltinClassData struct{ Kind BuiltinClassKind }

func (*BuiltinClassData) objectData()       {}
func (b *BuiltinClassData) inspect() string { return "<builtin class>" }

// BuiltinInstanceKind enumerates the builtin iterator/container state
// shapes carried by BuiltinInstance.State (§3).
type BuiltinInstanceKind uint8

const (
	BuiltinInstanceRange BuiltinInstanceKind = iota
	BuiltinInstanceListIterator
	BuiltinInstanceDictIterator
	BuiltinInstanceMapIterator
	BuiltinInstanceFilterIterator
)

type BuiltinInstanceData struct {
	Kind  BuiltinInstanceKind
	State interface{}
}

func (*BuiltinInstanceData) objectData() {}
func (b *BuiltinInstanceData) inspect() string {
	switch s := b.State.(type) {
	case *RangeState:
		return fmt.Sprintf("range(%d, %d, %d)", s.Current, s.Stop, s.Step)
	default:
		return "<iterator>"
	}
}

// RangeState is BuiltinInstanceRange's State.
type RangeState struct {
	Current int64
	Stop    int64
	Step    int64
}

func (r *RangeState) HasNext() bool {
	if r.Step > 0 {
		return r.Current < r.Stop
	}
	return r.Current > r.Stop
}

// ListIteratorState is BuiltinInstanceListIterator's State.
type ListIteratorState struct {
	Items  []Value
	Cursor int
}

// DictIteratorState is BuiltinInstanceDictIterator's State: iterates
// dict keys in insertion order.
type DictIteratorState struct {
	Keys   []DictKey
	Cursor int
}

// MapIteratorState is BuiltinInstanceMapIterator's State: lazily calls
// Func on each item produced by Source's iterator protocol.
type MapIteratorState struct {
	Func   Value
	Source Value // an object implementing __iter__/__has_next__/__next__
}

// FilterIteratorState is BuiltinInstanceFilterIterator's State: a
// one-slot peek buffer so __has_next__ advances to the next satisfying
// element and __next__ returns it without re-invoking the predicate.
type FilterIteratorState struct {
	Func    Value
	Source  Value
	Peeked  Value
	HasPeek bool
	Done    bool
}

func NewRange(start, stop, step int64) *Object {
	return newObject(TypeRange, &BuiltinInstanceData{
		Kind:  BuiltinInstanceRange,
		State: &RangeState{Current: start, Stop: stop, Step: step},
	})
}

func NewListIterator(items []Value) *Object {
	return newObject(TypeList, &BuiltinInstanceData{
		Kind:  BuiltinInstanceListIterator,
		State: &ListIteratorState{Items: items},
	})
}

func NewDictIterator(keys []DictKey) *Object {
	return newObject(TypeDict, &BuiltinInstanceData{
		Kind:  BuiltinInstanceDictIterator,
		State: &DictIteratorState{Keys: keys},
	})
}

func NewMapIterator(fn, source Value) *Object {
	return newObject(TypeMapIter, &BuiltinInstanceData{
		Kind:  BuiltinInstanceMapIterator,
		State: &MapIteratorState{Func: fn, Source: source},
	})
}

func NewFilterIterator(fn, source Value) *Object {
	return newObject(TypeFilterIter, &BuiltinInstanceData{
		Kind:  BuiltinInstanceFilterIterator,
		State: &FilterIteratorState{Func: fn, Source: source},
	})
}

// --- UserFunction (closure) ---

type UserFunctionData struct {
	FuncID   int
	Captures []Value
}

func (*UserFunctionData) objectData()       {}
func (f *UserFunctionData) inspect() string { return fmt.Sprintf("<function #%d>", f.FuncID) }

func NewUserFunction(funcID int, captures []Value) *Object {
	return newObject(TypeFunction, &UserFunctionData{FuncID: funcID, Captures: captures})
}

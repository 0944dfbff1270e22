package interp

import (
	"sort"

	"github.com/csh1668/pyhyeon/internal/object"
)

// loadAttr implements LoadAttr (§4.3): a plain read of the object's
// lazily allocated attribute map; never consults the method table
// (method access always goes through CallMethod, per §4.2).
func (vm *VM) loadAttr(obj object.Value, name string) (object.Value, error) {
	if !obj.IsObject() {
		return object.Value{}, typeErrf("'%s' object has no attribute '%s'", vm.typeNameOf(obj), name)
	}
	o := obj.Obj
	if o.Attrs != nil {
		if v, ok := o.Attrs[name]; ok {
			return v, nil
		}
	}
	return object.Value{}, typeErrf("'%s' object has no attribute '%s'", vm.typeNameOf(obj), name)
}

// storeAttr implements StoreAttr: immutable builtin types (and every
// primitive, which is never an Object at all) reject the write; any
// other object gets its attribute map lazily allocated on first use.
func (vm *VM) storeAttr(obj object.Value, name string, val object.Value) error {
	if !obj.IsObject() {
		return typeErrf("'%s' object attributes are read-only", vm.typeNameOf(obj))
	}
	o := obj.Obj
	if int(o.TypeID) < object.NumBuiltinTypes {
		if td := vm.Module.Types[o.TypeID]; td != nil && td.Has(object.FlagImmutable) {
			return typeErrf("'%s' object attributes are read-only", vm.typeNameOf(obj))
		}
	}
	if o.Attrs == nil {
		o.Attrs = make(map[string]object.Value)
	}
	o.Attrs[name] = val
	return nil
}

// loadIndex implements LoadIndex (§4.3): string/list subscription by
// integer index (negative counts from the end), dict subscription by
// any admissible DictKey.
func (vm *VM) loadIndex(obj, key object.Value) (object.Value, error) {
	if !obj.IsObject() {
		return object.Value{}, typeErrf("'%s' object is not subscriptable", vm.typeNameOf(obj))
	}
	switch d := obj.Obj.Data.(type) {
	case *object.StringData:
		runes := []rune(d.Value)
		idx, err := normalizeIndex(len(runes), key)
		if err != nil {
			return object.Value{}, err
		}
		return object.FromObject(object.NewString(string(runes[idx]))), nil
	case *object.ListData:
		idx, err := normalizeIndex(len(d.Items), key)
		if err != nil {
			return object.Value{}, err
		}
		return d.Items[idx], nil
	case *object.DictData:
		dk, err := object.ToDictKey(key)
		if err != nil {
			return object.Value{}, typeErrf("unhashable type used as dict key")
		}
		v, ok := d.Map[dk]
		if !ok {
			return object.Value{}, typeErrf("key %s not found", key.Inspect())
		}
		return v, nil
	}
	return object.Value{}, typeErrf("'%s' object is not subscriptable", vm.typeNameOf(obj))
}

// storeIndex implements StoreIndex: lists accept an in-range integer
// index (negative from the end), dicts accept any DictKey; strings are
// immutable and reject subscript assignment.
func (vm *VM) storeIndex(obj, key, val object.Value) error {
	if !obj.IsObject() {
		return typeErrf("'%s' object does not support item assignment", vm.typeNameOf(obj))
	}
	switch d := obj.Obj.Data.(type) {
	case *object.ListData:
		idx, err := normalizeIndex(len(d.Items), key)
		if err != nil {
			return err
		}
		d.Items[idx] = val
		return nil
	case *object.DictData:
		dk, err := object.ToDictKey(key)
		if err != nil {
			return typeErrf("unhashable type used as dict key")
		}
		d.Set(dk, val)
		return nil
	}
	return typeErrf("'%s' object does not support item assignment", vm.typeNameOf(obj))
}

func normalizeIndex(length int, key object.Value) (int, error) {
	if !key.IsInt() {
		return 0, typeErrf("index must be an int")
	}
	idx := key.AsInt()
	if idx < 0 {
		idx += int64(length)
	}
	if idx < 0 || idx >= int64(length) {
		return 0, typeErrf("index out of range")
	}
	return int(idx), nil
}

// buildUniqueDict and buildSortedUniqueDict back BuildSet/BuildTreeSet.
// The supplemental front end exposes no set/tree-set literal syntax (no
// AST node compiles to these opcodes today), so a genuine Set
// ObjectData variant would sit permanently unreachable; per §3's fixed
// builtin type_id enumeration (which the object package's builtin
// type table hard-codes and which omits Set/TreeSet
// entirely), a real set degenerates to a Dict keyed by the element and
// valued None, with TreeSet additionally sorting insertion order by key
// (see DESIGN.md).
func buildUniqueDict(items []object.Value) (object.Value, error) {
	d := object.NewDict()
	dd := d.Data.(*object.DictData)
	for _, it := range items {
		k, err := object.ToDictKey(it)
		if err != nil {
			return object.Value{}, typeErrf("unhashable type used as set element")
		}
		dd.Set(k, object.None())
	}
	return object.FromObject(d), nil
}

func buildSortedUniqueDict(items []object.Value) (object.Value, error) {
	v, err := buildUniqueDict(items)
	if err != nil {
		return object.Value{}, err
	}
	dd := v.Obj.Data.(*object.DictData)
	sort.Slice(dd.Order, func(i, j int) bool { return dictKeyLess(dd.Order[i], dd.Order[j]) })
	return v, nil
}

func dictKeyLess(a, b object.DictKey) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	switch a.Kind {
	case object.DictKeyString:
		return a.S < b.S
	default:
		return a.I < b.I
	}
}

package builtins

import (
	"strings"

	"github.com/csh1668/pyhyeon/internal/object"
)

func registerStrMethods(t *object.TypeDef, alloc *handlerAllocator) {
	method(t, alloc, "upper", object.Exact(0), func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
		s, err := asString(recv)
		if err != nil {
			return object.Value{}, err
		}
		return object.FromObject(object.NewString(strings.ToUpper(s))), nil
	})
	method(t, alloc, "lower", object.Exact(0), func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
		s, err := asString(recv)
		if err != nil {
			return object.Value{}, err
		}
		return object.FromObject(object.NewString(strings.ToLower(s))), nil
	})
	method(t, alloc, "strip", object.Exact(0), func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
		s, err := asString(recv)
		if err != nil {
			return object.Value{}, err
		}
		return object.FromObject(object.NewString(strings.TrimSpace(s))), nil
	})
	method(t, alloc, "split", object.Range(0, 1), func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
		s, err := asString(recv)
		if err != nil {
			return object.Value{}, err
		}
		var parts []string
		if len(args) == 1 {
			sep, err := asString(args[0])
			if err != nil {
				return object.Value{}, err
			}
			parts = strings.Split(s, sep)
		} else {
			parts = strings.Fields(s)
		}
		items := make([]object.Value, len(parts))
		for i, p := range parts {
			items[i] = object.FromObject(object.NewString(p))
		}
		return object.FromObject(object.NewList(items)), nil
	})
}

func asString(v object.Value) (string, error) {
	if v.IsObject() {
		if s, ok := v.Obj.Data.(*object.StringData); ok {
			return s.Value, nil
		}
	}
	return "", typeErrorf("expected a str receiver")
}

func asList(v object.Value) (*object.ListData, error) {
	if v.IsObject() {
		if l, ok := v.Obj.Data.(*object.ListData); ok {
			return l, nil
		}
	}
	return nil, typeErrorf("expected a list receiver")
}

func asDict(v object.Value) (*object.DictData, error) {
	if v.IsObject() {
		if d, ok := v.Obj.Data.(*object.DictData); ok {
			return d, nil
		}
	}
	return nil, typeErrorf("expected a dict receiver")
}

// registerListMethods registers both ordinary list operations and the
// iterator protocol. Because object.NewListIterator tags its object
// with the same TypeList type_id as a plain list (§3: iterators share
// their source container's type), __has_next__/__next__ type-assert to
// the iterator's BuiltinInstanceData shape and reject a plain list.
func registerListMethods(t *object.TypeDef, alloc *handlerAllocator) {
	method(t, alloc, "append", object.Exact(1), func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
		l, err := asList(recv)
		if err != nil {
			return object.Value{}, err
		}
		l.Items = append(l.Items, args[0])
		return object.None(), nil
	})
	method(t, alloc, "__iter__", object.Exact(0), func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
		l, err := asList(recv)
		if err != nil {
			return object.Value{}, err
		}
		return object.FromObject(object.NewListIterator(l.Items)), nil
	})
	method(t, alloc, "__has_next__", object.Exact(0), func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
		st, err := listIterState(recv)
		if err != nil {
			return object.Value{}, err
		}
		return object.Bool(st.Cursor < len(st.Items)), nil
	})
	method(t, alloc, "__next__", object.Exact(0), func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
		st, err := listIterState(recv)
		if err != nil {
			return object.Value{}, err
		}
		if st.Cursor >= len(st.Items) {
			return object.Value{}, valueErrorf("iterator exhausted")
		}
		v := st.Items[st.Cursor]
		st.Cursor++
		return v, nil
	})
}

func listIterState(v object.Value) (*object.ListIteratorState, error) {
	if v.IsObject() {
		if bi, ok := v.Obj.Data.(*object.BuiltinInstanceData); ok {
			if st, ok := bi.State.(*object.ListIteratorState); ok {
				return st, nil
			}
		}
	}
	return nil, typeErrorf("not a list iterator")
}

func registerDictMethods(t *object.TypeDef, alloc *handlerAllocator) {
	method(t, alloc, "keys", object.Exact(0), func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
		d, err := asDict(recv)
		if err != nil {
			return object.Value{}, err
		}
		items := make([]object.Value, len(d.Order))
		for i, k := range d.Order {
			items[i] = k.Value()
		}
		return object.FromObject(object.NewList(items)), nil
	})
	method(t, alloc, "values", object.Exact(0), func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
		d, err := asDict(recv)
		if err != nil {
			return object.Value{}, err
		}
		items := make([]object.Value, len(d.Order))
		for i, k := range d.Order {
			items[i] = d.Map[k]
		}
		return object.FromObject(object.NewList(items)), nil
	})
	method(t, alloc, "get", object.Range(1, 2), func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
		d, err := asDict(recv)
		if err != nil {
			return object.Value{}, err
		}
		key, err := object.ToDictKey(args[0])
		if err != nil {
			return object.Value{}, typeErrorf("unhashable type used as dict key")
		}
		if v, ok := d.Map[key]; ok {
			return v, nil
		}
		if len(args) == 2 {
			return args[1], nil
		}
		return object.None(), nil
	})
	method(t, alloc, "__iter__", object.Exact(0), func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
		d, err := asDict(recv)
		if err != nil {
			return object.Value{}, err
		}
		keys := make([]object.DictKey, len(d.Order))
		copy(keys, d.Order)
		return object.FromObject(object.NewDictIterator(keys)), nil
	})
	method(t, alloc, "__has_next__", object.Exact(0), func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
		st, err := dictIterState(recv)
		if err != nil {
			return object.Value{}, err
		}
		return object.Bool(st.Cursor < len(st.Keys)), nil
	})
	method(t, alloc, "__next__", object.Exact(0), func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
		st, err := dictIterState(recv)
		if err != nil {
			return object.Value{}, err
		}
		if st.Cursor >= len(st.Keys) {
			return object.Value{}, valueErrorf("iterator exhausted")
		}
		k := st.Keys[st.Cursor]
		st.Cursor++
		return k.Value(), nil
	})
}

func dictIterState(v object.Value) (*object.DictIteratorState, error) {
	if v.IsObject() {
		if bi, ok := v.Obj.Data.(*object.BuiltinInstanceData); ok {
			if st, ok := bi.State.(*object.DictIteratorState); ok {
				return st, nil
			}
		}
	}
	return nil, typeErrorf("not a dict iterator")
}

func registerRangeMethods(t *object.TypeDef, alloc *handlerAllocator) {
	method(t, alloc, "__iter__", object.Exact(0), func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
		return recv, nil
	})
	method(t, alloc, "__has_next__", object.Exact(0), func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
		st, err := rangeState(recv)
		if err != nil {
			return object.Value{}, err
		}
		return object.Bool(st.HasNext()), nil
	})
	method(t, alloc, "__next__", object.Exact(0), func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
		st, err := rangeState(recv)
		if err != nil {
			return object.Value{}, err
		}
		if !st.HasNext() {
			return object.Value{}, valueErrorf("iterator exhausted")
		}
		v := st.Current
		st.Current += st.Step
		return object.Int(v), nil
	})
}

func rangeState(v object.Value) (*object.RangeState, error) {
	if v.IsObject() {
		if bi, ok := v.Obj.Data.(*object.BuiltinInstanceData); ok {
			if st, ok := bi.State.(*object.RangeState); ok {
				return st, nil
			}
		}
	}
	return nil, typeErrorf("not a range")
}

// registerMapIterMethods implements the lazy map() adapter: __next__
// drives Source's own iterator protocol generically via VMBridge.CallMethod
// (Source may be a list, range, dict iterator, or another adapter) and
// applies Func to each produced value.
func registerMapIterMethods(t *object.TypeDef, alloc *handlerAllocator) {
	method(t, alloc, "__iter__", object.Exact(0), func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
		return recv, nil
	})
	method(t, alloc, "__has_next__", object.Exact(0), func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
		st, err := mapIterState(recv)
		if err != nil {
			return object.Value{}, err
		}
		return vm.CallMethod(st.Source, "__has_next__", nil)
	})
	method(t, alloc, "__next__", object.Exact(0), func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
		st, err := mapIterState(recv)
		if err != nil {
			return object.Value{}, err
		}
		v, err := vm.CallMethod(st.Source, "__next__", nil)
		if err != nil {
			return object.Value{}, err
		}
		return vm.CallCallable(st.Func, []object.Value{v})
	})
}

func mapIterState(v object.Value) (*object.MapIteratorState, error) {
	if v.IsObject() {
		if bi, ok := v.Obj.Data.(*object.BuiltinInstanceData); ok {
			if st, ok := bi.State.(*object.MapIteratorState); ok {
				return st, nil
			}
		}
	}
	return nil, typeErrorf("not a map iterator")
}

// registerFilterIterMethods implements the lazy filter() adapter: a
// one-slot peek buffer lets __has_next__ advance past non-matching
// source elements while leaving __next__ a simple "return what was
// peeked" (§3 "FilterIteratorState").
func registerFilterIterMethods(t *object.TypeDef, alloc *handlerAllocator) {
	method(t, alloc, "__iter__", object.Exact(0), func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
		return recv, nil
	})
	method(t, alloc, "__has_next__", object.Exact(0), func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
		st, err := filterIterState(recv)
		if err != nil {
			return object.Value{}, err
		}
		if st.HasPeek {
			return object.Bool(true), nil
		}
		if st.Done {
			return object.Bool(false), nil
		}
		for {
			hasNext, err := vm.CallMethod(st.Source, "__has_next__", nil)
			if err != nil {
				return object.Value{}, err
			}
			if !hasNext.Truthy() {
				st.Done = true
				return object.Bool(false), nil
			}
			v, err := vm.CallMethod(st.Source, "__next__", nil)
			if err != nil {
				return object.Value{}, err
			}
			keep, err := vm.CallCallable(st.Func, []object.Value{v})
			if err != nil {
				return object.Value{}, err
			}
			if keep.Truthy() {
				st.Peeked = v
				st.HasPeek = true
				return object.Bool(true), nil
			}
		}
	})
	method(t, alloc, "__next__", object.Exact(0), func(vm VMBridge, io IOProvider, recv object.Value, args []object.Value) (object.Value, error) {
		st, err := filterIterState(recv)
		if err != nil {
			return object.Value{}, err
		}
		if !st.HasPeek {
			return object.Value{}, valueErrorf("iterator exhausted")
		}
		v := st.Peeked
		st.HasPeek = false
		st.Peeked = object.Value{}
		return v, nil
	})
}

func filterIterState(v object.Value) (*object.FilterIteratorState, error) {
	if v.IsObject() {
		if bi, ok := v.Obj.Data.(*object.BuiltinInstanceData); ok {
			if st, ok := bi.State.(*object.FilterIteratorState); ok {
				return st, nil
			}
		}
	}
	return nil, typeErrorf("not a filter iterator")
}

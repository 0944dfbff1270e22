package builtins

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/csh1668/pyhyeon/internal/object"
)

func builtinPrint(vm VMBridge, io IOProvider, args []object.Value) (object.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Inspect()
	}
	io.WriteLine(strings.Join(parts, " "))
	return object.None(), nil
}

// builtinInput implements the synchronous read used when the caller's
// IOProvider has no pending line (e.g. tests, or a script driver that
// pre-feeds stdin). The WaitingForInput suspension protocol of §5 is a
// VM-level control-flow concern: the interpreter's dispatch loop
// intercepts CallBuiltin(Input, ...) before reaching this table when it
// needs to actually suspend a frame stack across a Run() call; this
// handler exists for direct single-shot invocation outside that loop.
func builtinInput(vm VMBridge, io IOProvider, args []object.Value) (object.Value, error) {
	if len(args) > 1 {
		return object.Value{}, typeErrorf("input() takes at most 1 argument (%d given)", len(args))
	}
	if len(args) == 1 {
		io.Write(args[0].Inspect())
	}
	line, ok := io.ReadLine()
	if !ok {
		return object.None(), nil
	}
	return object.FromObject(object.NewString(line)), nil
}

func builtinLen(vm VMBridge, io IOProvider, args []object.Value) (object.Value, error) {
	if len(args) != 1 {
		return object.Value{}, typeErrorf("len() takes exactly 1 argument (%d given)", len(args))
	}
	v := args[0]
	if v.IsObject() {
		switch d := v.Obj.Data.(type) {
		case *object.StringData:
			return object.Int(int64(utf8.RuneCountInString(d.Value))), nil
		case *object.ListData:
			return object.Int(int64(len(d.Items))), nil
		case *object.DictData:
			return object.Int(int64(len(d.Order))), nil
		}
	}
	return object.Value{}, typeErrorf("object of type '%s' has no len()", typeName(v))
}

func builtinRange(vm VMBridge, io IOProvider, args []object.Value) (object.Value, error) {
	var start, stop, step int64 = 0, 0, 1
	switch len(args) {
	case 1:
		if !args[0].IsInt() {
			return object.Value{}, typeErrorf("range() arguments must be int")
		}
		stop = args[0].AsInt()
	case 2:
		if !args[0].IsInt() || !args[1].IsInt() {
			return object.Value{}, typeErrorf("range() arguments must be int")
		}
		start, stop = args[0].AsInt(), args[1].AsInt()
	case 3:
		if !args[0].IsInt() || !args[1].IsInt() || !args[2].IsInt() {
			return object.Value{}, typeErrorf("range() arguments must be int")
		}
		start, stop, step = args[0].AsInt(), args[1].AsInt(), args[2].AsInt()
		if step == 0 {
			return object.Value{}, valueErrorf("range() arg 3 must not be zero")
		}
	default:
		return object.Value{}, typeErrorf("range() takes 1 to 3 arguments (%d given)", len(args))
	}
	return object.FromObject(object.NewRange(start, stop, step)), nil
}

func builtinInt(vm VMBridge, io IOProvider, args []object.Value) (object.Value, error) {
	if len(args) != 1 {
		return object.Value{}, typeErrorf("int() takes exactly 1 argument (%d given)", len(args))
	}
	v := args[0]
	switch {
	case v.IsInt():
		return v, nil
	case v.IsBool():
		if v.AsBool() {
			return object.Int(1), nil
		}
		return object.Int(0), nil
	case v.IsFloat():
		return object.Int(int64(v.AsFloat())), nil
	case v.IsObject():
		if s, ok := v.Obj.Data.(*object.StringData); ok {
			n, err := strconv.ParseInt(strings.TrimSpace(s.Value), 10, 64)
			if err != nil {
				return object.Value{}, valueErrorf("invalid literal for int(): %q", s.Value)
			}
			return object.Int(n), nil
		}
	}
	return object.Value{}, typeErrorf("int() argument must be a string, int, float or bool")
}

func builtinBool(vm VMBridge, io IOProvider, args []object.Value) (object.Value, error) {
	if len(args) != 1 {
		return object.Value{}, typeErrorf("bool() takes exactly 1 argument (%d given)", len(args))
	}
	return object.Bool(args[0].Truthy()), nil
}

func builtinStr(vm VMBridge, io IOProvider, args []object.Value) (object.Value, error) {
	if len(args) != 1 {
		return object.Value{}, typeErrorf("str() takes exactly 1 argument (%d given)", len(args))
	}
	return object.FromObject(object.NewString(args[0].Inspect())), nil
}

func builtinFloat(vm VMBridge, io IOProvider, args []object.Value) (object.Value, error) {
	if len(args) != 1 {
		return object.Value{}, typeErrorf("float() takes exactly 1 argument (%d given)", len(args))
	}
	v := args[0]
	switch {
	case v.IsFloat():
		return v, nil
	case v.IsInt():
		return object.Float(float64(v.AsInt())), nil
	case v.IsBool():
		if v.AsBool() {
			return object.Float(1), nil
		}
		return object.Float(0), nil
	case v.IsObject():
		if s, ok := v.Obj.Data.(*object.StringData); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(s.Value), 64)
			if err != nil {
				return object.Value{}, valueErrorf("could not convert string to float: %q", s.Value)
			}
			return object.Float(f), nil
		}
	}
	return object.Value{}, typeErrorf("float() argument must be a string, int, float or bool")
}

func builtinMap(vm VMBridge, io IOProvider, args []object.Value) (object.Value, error) {
	if len(args) != 2 {
		return object.Value{}, typeErrorf("map() takes exactly 2 arguments (%d given)", len(args))
	}
	src, err := vm.CallMethod(args[1], "__iter__", nil)
	if err != nil {
		return object.Value{}, err
	}
	return object.FromObject(object.NewMapIterator(args[0], src)), nil
}

func builtinFilter(vm VMBridge, io IOProvider, args []object.Value) (object.Value, error) {
	if len(args) != 2 {
		return object.Value{}, typeErrorf("filter() takes exactly 2 arguments (%d given)", len(args))
	}
	src, err := vm.CallMethod(args[1], "__iter__", nil)
	if err != nil {
		return object.Value{}, err
	}
	return object.FromObject(object.NewFilterIterator(args[0], src)), nil
}

func builtinAssert(vm VMBridge, io IOProvider, args []object.Value) (object.Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return object.Value{}, typeErrorf("assert() takes 1 or 2 arguments (%d given)", len(args))
	}
	if args[0].Truthy() {
		return object.None(), nil
	}
	msg := "assertion failed"
	if len(args) == 2 {
		msg = args[1].Inspect()
	}
	return object.Value{}, &AssertionError{Msg: msg}
}

func typeName(v object.Value) string {
	switch {
	case v.IsInt():
		return "int"
	case v.IsFloat():
		return "float"
	case v.IsBool():
		return "bool"
	case v.IsNone():
		return "NoneType"
	default:
		return "object"
	}
}

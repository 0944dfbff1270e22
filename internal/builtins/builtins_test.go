package builtins

import (
	"strings"
	"testing"

	"github.com/csh1668/pyhyeon/internal/object"
)

// fakeVM is a stub VMBridge for handlers that never re-enter
// evaluation; the map/filter tests use testVM below instead.
type fakeVM struct{}

func (fakeVM) CallCallable(fn object.Value, args []object.Value) (object.Value, error) {
	// A fixed stub result; real invocation is covered by testVM and by
	// the compiler/interp end-to-end tests.
	return object.Bool(true), nil
}

func (fakeVM) CallMethod(recv object.Value, method string, args []object.Value) (object.Value, error) {
	return object.Value{}, nil
}

// fakeIO is a minimal IOProvider recording writes and feeding canned input.
type fakeIO struct {
	out   strings.Builder
	lines []string
}

func (f *fakeIO) Write(s string)     { f.out.WriteString(s) }
func (f *fakeIO) WriteLine(s string) { f.out.WriteString(s); f.out.WriteByte('\n') }
func (f *fakeIO) ReadLine() (string, bool) {
	if len(f.lines) == 0 {
		return "", false
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	return line, true
}

func newRegistry() *Registry {
	return Register(object.NewBuiltinTypeTable())
}

// testVM is a VMBridge that actually dispatches CallMethod through a real
// Registry/type table (unlike fakeVM's stubs), so map()/filter() adapters
// can be driven end-to-end over a list/dict/range source. CallCallable
// treats fn as a marker int selecting a canned test function, since this
// package never constructs real closures (that's interp's job).
type testVM struct {
	reg   *Registry
	types []*object.TypeDef
}

func newTestVM() testVM {
	types := object.NewBuiltinTypeTable()
	return testVM{reg: Register(types), types: types}
}

func (tv testVM) CallMethod(recv object.Value, method string, args []object.Value) (object.Value, error) {
	m, ok := tv.types[recv.TypeID()].Methods[method]
	if !ok {
		return object.Value{}, typeErrorf("no method %q", method)
	}
	return tv.reg.Dispatch(m.HandlerID, tv, &fakeIO{}, recv, args)
}

const (
	testFuncDouble int64 = 0
	testFuncIsEven int64 = 1
)

func (tv testVM) CallCallable(fn object.Value, args []object.Value) (object.Value, error) {
	switch fn.AsInt() {
	case testFuncDouble:
		return object.Int(args[0].AsInt() * 2), nil
	case testFuncIsEven:
		return object.Bool(args[0].AsInt()%2 == 0), nil
	}
	return object.Value{}, typeErrorf("unknown test callable %d", fn.AsInt())
}

func TestBuiltinPrint_JoinsWithSpace(t *testing.T) {
	reg := newRegistry()
	io := &fakeIO{}
	_, err := reg.Free[Print](fakeVM{}, io, []object.Value{object.Int(1), object.Bool(true)})
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if io.out.String() != "1 True\n" {
		t.Errorf("got %q, want %q", io.out.String(), "1 True\n")
	}
}

func TestBuiltinLen_StringListDict(t *testing.T) {
	reg := newRegistry()
	dict := object.NewDict()
	ka, _ := object.ToDictKey(object.FromObject(object.NewString("a")))
	kb, _ := object.ToDictKey(object.FromObject(object.NewString("b")))
	dict.Data.(*object.DictData).Set(ka, object.Int(1))
	dict.Data.(*object.DictData).Set(kb, object.Int(2))
	cases := []struct {
		v    object.Value
		want int64
	}{
		{object.FromObject(object.NewString("hello")), 5},
		{object.FromObject(object.NewList([]object.Value{object.Int(1), object.Int(2)})), 2},
		{object.FromObject(dict), 2},
	}
	for _, c := range cases {
		result, err := reg.Free[Len](fakeVM{}, &fakeIO{}, []object.Value{c.v})
		if err != nil {
			t.Fatalf("len(%s): %v", c.v.Inspect(), err)
		}
		if !result.IsInt() || result.AsInt() != c.want {
			t.Errorf("len(%s): got %s, want %d", c.v.Inspect(), result.Inspect(), c.want)
		}
	}
}

func TestBuiltinLen_RejectsInt(t *testing.T) {
	reg := newRegistry()
	_, err := reg.Free[Len](fakeVM{}, &fakeIO{}, []object.Value{object.Int(5)})
	if err == nil {
		t.Fatal("expected an error for len() of an int")
	}
}

func TestBuiltinRange_Arities(t *testing.T) {
	reg := newRegistry()
	result, err := reg.Free[Range](fakeVM{}, &fakeIO{}, []object.Value{object.Int(3)})
	if err != nil {
		t.Fatalf("range(3): %v", err)
	}
	st := result.Obj.Data.(*object.BuiltinInstanceData).State.(*object.RangeState)
	if st.Current != 0 || st.Stop != 3 || st.Step != 1 {
		t.Errorf("range(3): got %+v", st)
	}
}

func TestBuiltinRange_RejectsZeroStep(t *testing.T) {
	reg := newRegistry()
	_, err := reg.Free[Range](fakeVM{}, &fakeIO{}, []object.Value{object.Int(0), object.Int(10), object.Int(0)})
	if err == nil {
		t.Fatal("expected an error for a zero step")
	}
}

func TestBuiltinInt_FromStringAndFloat(t *testing.T) {
	reg := newRegistry()
	result, err := reg.Free[Int](fakeVM{}, &fakeIO{}, []object.Value{object.FromObject(object.NewString(" 42 "))})
	if err != nil {
		t.Fatalf("int(\" 42 \"): %v", err)
	}
	if result.AsInt() != 42 {
		t.Errorf("got %d, want 42", result.AsInt())
	}
	result2, err := reg.Free[Int](fakeVM{}, &fakeIO{}, []object.Value{object.Float(3.9)})
	if err != nil {
		t.Fatalf("int(3.9): %v", err)
	}
	if result2.AsInt() != 3 {
		t.Errorf("int(3.9): got %d, want 3 (truncation, not rounding)", result2.AsInt())
	}
}

func TestBuiltinInt_RejectsInvalidString(t *testing.T) {
	reg := newRegistry()
	_, err := reg.Free[Int](fakeVM{}, &fakeIO{}, []object.Value{object.FromObject(object.NewString("abc"))})
	if err == nil {
		t.Fatal("expected an error for int(\"abc\")")
	}
}

func TestBuiltinStr_RendersInspect(t *testing.T) {
	reg := newRegistry()
	result, err := reg.Free[Str](fakeVM{}, &fakeIO{}, []object.Value{object.Int(7)})
	if err != nil {
		t.Fatalf("str(7): %v", err)
	}
	if result.Inspect() != "7" {
		t.Errorf("got %q, want %q", result.Inspect(), "7")
	}
}

func TestBuiltinAssert_PassAndFail(t *testing.T) {
	reg := newRegistry()
	if _, err := reg.Free[Assert](fakeVM{}, &fakeIO{}, []object.Value{object.Bool(true)}); err != nil {
		t.Errorf("assert(True): unexpected error %v", err)
	}
	_, err := reg.Free[Assert](fakeVM{}, &fakeIO{}, []object.Value{object.Bool(false), object.FromObject(object.NewString("boom"))})
	if err == nil {
		t.Fatal("expected an AssertionError")
	}
	if ae, ok := err.(*AssertionError); !ok || ae.Msg != "boom" {
		t.Errorf("got %#v, want AssertionError{Msg: boom}", err)
	}
}

func TestBuiltinInput_ReturnsNoneOnEOF(t *testing.T) {
	reg := newRegistry()
	io := &fakeIO{}
	result, err := reg.Free[Input](fakeVM{}, io, nil)
	if err != nil {
		t.Fatalf("input(): %v", err)
	}
	if !result.IsNone() {
		t.Errorf("got %s, want None on EOF", result.Inspect())
	}
}

func TestBuiltinInput_WritesPromptAndReadsLine(t *testing.T) {
	reg := newRegistry()
	io := &fakeIO{lines: []string{"reply"}}
	result, err := reg.Free[Input](fakeVM{}, io, []object.Value{object.FromObject(object.NewString("> "))})
	if err != nil {
		t.Fatalf("input(\"> \"): %v", err)
	}
	if io.out.String() != "> " {
		t.Errorf("prompt: got %q, want %q", io.out.String(), "> ")
	}
	if result.Inspect() != "reply" {
		t.Errorf("got %q, want %q", result.Inspect(), "reply")
	}
}

func TestStrMethods_UpperLowerStripSplit(t *testing.T) {
	reg := newRegistry()
	types := object.NewBuiltinTypeTable()
	_ = reg
	reg2 := Register(types)

	recv := object.FromObject(object.NewString("  Hi There  "))

	upper := types[object.TypeStr].Methods["upper"]
	result, err := reg2.Dispatch(upper.HandlerID, fakeVM{}, &fakeIO{}, recv, nil)
	if err != nil {
		t.Fatalf("upper: %v", err)
	}
	if result.Inspect() != "  HI THERE  " {
		t.Errorf("upper: got %q", result.Inspect())
	}

	lower := types[object.TypeStr].Methods["lower"]
	result, err = reg2.Dispatch(lower.HandlerID, fakeVM{}, &fakeIO{}, recv, nil)
	if err != nil {
		t.Fatalf("lower: %v", err)
	}
	if result.Inspect() != "  hi there  " {
		t.Errorf("lower: got %q", result.Inspect())
	}

	strip := types[object.TypeStr].Methods["strip"]
	result, err = reg2.Dispatch(strip.HandlerID, fakeVM{}, &fakeIO{}, recv, nil)
	if err != nil {
		t.Fatalf("strip: %v", err)
	}
	if result.Inspect() != "Hi There" {
		t.Errorf("strip: got %q", result.Inspect())
	}

	split := types[object.TypeStr].Methods["split"]
	result, err = reg2.Dispatch(split.HandlerID, fakeVM{}, &fakeIO{}, recv, nil)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	list := result.Obj.Data.(*object.ListData)
	if len(list.Items) != 2 || list.Items[0].Inspect() != "Hi" || list.Items[1].Inspect() != "There" {
		t.Errorf("split: got %v", list.Items)
	}
}

func TestListMethods_AppendAndIterate(t *testing.T) {
	types := object.NewBuiltinTypeTable()
	reg := Register(types)

	list := object.NewList([]object.Value{object.Int(1)})
	recv := object.FromObject(list)

	appendM := types[object.TypeList].Methods["append"]
	if _, err := reg.Dispatch(appendM.HandlerID, fakeVM{}, &fakeIO{}, recv, []object.Value{object.Int(2)}); err != nil {
		t.Fatalf("append: %v", err)
	}
	ld := list.Data.(*object.ListData)
	if len(ld.Items) != 2 || ld.Items[1].AsInt() != 2 {
		t.Errorf("after append: got %v", ld.Items)
	}

	iterM := types[object.TypeList].Methods["__iter__"]
	iterVal, err := reg.Dispatch(iterM.HandlerID, fakeVM{}, &fakeIO{}, recv, nil)
	if err != nil {
		t.Fatalf("__iter__: %v", err)
	}
	hasNextM := types[object.TypeList].Methods["__has_next__"]
	nextM := types[object.TypeList].Methods["__next__"]

	var collected []int64
	for {
		hn, err := reg.Dispatch(hasNextM.HandlerID, fakeVM{}, &fakeIO{}, iterVal, nil)
		if err != nil {
			t.Fatalf("__has_next__: %v", err)
		}
		if !hn.Truthy() {
			break
		}
		v, err := reg.Dispatch(nextM.HandlerID, fakeVM{}, &fakeIO{}, iterVal, nil)
		if err != nil {
			t.Fatalf("__next__: %v", err)
		}
		collected = append(collected, v.AsInt())
	}
	if len(collected) != 2 || collected[0] != 1 || collected[1] != 2 {
		t.Errorf("iteration: got %v, want [1 2]", collected)
	}
}

func TestDictMethods_GetWithAndWithoutDefault(t *testing.T) {
	types := object.NewBuiltinTypeTable()
	reg := Register(types)

	d := object.NewDict()
	data := d.Data.(*object.DictData)
	k, _ := object.ToDictKey(object.FromObject(object.NewString("a")))
	data.Set(k, object.Int(1))
	recv := object.FromObject(d)

	getM := types[object.TypeDict].Methods["get"]
	found, err := reg.Dispatch(getM.HandlerID, fakeVM{}, &fakeIO{}, recv, []object.Value{object.FromObject(object.NewString("a"))})
	if err != nil {
		t.Fatalf("get(a): %v", err)
	}
	if found.AsInt() != 1 {
		t.Errorf("get(a): got %s, want 1", found.Inspect())
	}

	missing, err := reg.Dispatch(getM.HandlerID, fakeVM{}, &fakeIO{}, recv, []object.Value{
		object.FromObject(object.NewString("z")), object.Int(99),
	})
	if err != nil {
		t.Fatalf("get(z, 99): %v", err)
	}
	if missing.AsInt() != 99 {
		t.Errorf("get(z, 99): got %s, want 99 (default)", missing.Inspect())
	}
}

func TestRangeMethods_IteratorProtocol(t *testing.T) {
	types := object.NewBuiltinTypeTable()
	reg := Register(types)

	recv := object.FromObject(object.NewRange(0, 3, 1))
	hasNextM := types[object.TypeRange].Methods["__has_next__"]
	nextM := types[object.TypeRange].Methods["__next__"]

	var got []int64
	for {
		hn, err := reg.Dispatch(hasNextM.HandlerID, fakeVM{}, &fakeIO{}, recv, nil)
		if err != nil {
			t.Fatalf("__has_next__: %v", err)
		}
		if !hn.Truthy() {
			break
		}
		v, err := reg.Dispatch(nextM.HandlerID, fakeVM{}, &fakeIO{}, recv, nil)
		if err != nil {
			t.Fatalf("__next__: %v", err)
		}
		got = append(got, v.AsInt())
	}
	if len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Errorf("got %v, want [0 1 2]", got)
	}
}

// drainIter fully consumes recv via its __has_next__/__next__ protocol.
func drainIter(t *testing.T, vm testVM, recv object.Value) []object.Value {
	t.Helper()
	iter, err := vm.CallMethod(recv, "__iter__", nil)
	if err != nil {
		t.Fatalf("__iter__: %v", err)
	}
	var out []object.Value
	for {
		hn, err := vm.CallMethod(iter, "__has_next__", nil)
		if err != nil {
			t.Fatalf("__has_next__: %v", err)
		}
		if !hn.Truthy() {
			break
		}
		v, err := vm.CallMethod(iter, "__next__", nil)
		if err != nil {
			t.Fatalf("__next__: %v", err)
		}
		out = append(out, v)
	}
	return out
}

func TestBuiltinMap_OverList(t *testing.T) {
	vm := newTestVM()
	list := object.FromObject(object.NewList([]object.Value{object.Int(1), object.Int(2), object.Int(3)}))

	result, err := builtinMap(vm, &fakeIO{}, []object.Value{object.Int(testFuncDouble), list})
	if err != nil {
		t.Fatalf("map(double, list): %v", err)
	}

	got := drainIter(t, vm, result)
	if len(got) != 3 || got[0].AsInt() != 2 || got[1].AsInt() != 4 || got[2].AsInt() != 6 {
		t.Errorf("got %v, want [2 4 6]", got)
	}
}

func TestBuiltinFilter_OverList(t *testing.T) {
	vm := newTestVM()
	list := object.FromObject(object.NewList([]object.Value{object.Int(1), object.Int(2), object.Int(3), object.Int(4)}))

	result, err := builtinFilter(vm, &fakeIO{}, []object.Value{object.Int(testFuncIsEven), list})
	if err != nil {
		t.Fatalf("filter(is_even, list): %v", err)
	}

	got := drainIter(t, vm, result)
	if len(got) != 2 || got[0].AsInt() != 2 || got[1].AsInt() != 4 {
		t.Errorf("got %v, want [2 4]", got)
	}
}

// TestBuiltinMapFilter_OverDictValues exercises filtering and mapping a
// dict's values via filter()+map(), the scenario that breaks when map/filter store a raw
// iterable instead of an iterator: d.values() returns a list, and feeding
// that list straight into filter()/map() must drive a real ListIterator.
func TestBuiltinMapFilter_OverDictValues(t *testing.T) {
	vm := newTestVM()
	d := object.NewDict()
	data := d.Data.(*object.DictData)
	ka, _ := object.ToDictKey(object.FromObject(object.NewString("a")))
	kb, _ := object.ToDictKey(object.FromObject(object.NewString("b")))
	kc, _ := object.ToDictKey(object.FromObject(object.NewString("c")))
	data.Set(ka, object.Int(1))
	data.Set(kb, object.Int(2))
	data.Set(kc, object.Int(3))
	recv := object.FromObject(d)

	valuesM := vm.types[object.TypeDict].Methods["values"]
	values, err := vm.reg.Dispatch(valuesM.HandlerID, vm, &fakeIO{}, recv, nil)
	if err != nil {
		t.Fatalf("values(): %v", err)
	}

	filtered, err := builtinFilter(vm, &fakeIO{}, []object.Value{object.Int(testFuncIsEven), values})
	if err != nil {
		t.Fatalf("filter(is_even, values()): %v", err)
	}
	doubled, err := builtinMap(vm, &fakeIO{}, []object.Value{object.Int(testFuncDouble), filtered})
	if err != nil {
		t.Fatalf("map(double, filter(...)): %v", err)
	}

	got := drainIter(t, vm, doubled)
	if len(got) != 1 || got[0].AsInt() != 4 {
		t.Errorf("got %v, want [4] (only 2 is even, doubled to 4)", got)
	}
}

func TestRegistry_DispatchUnknownHandlerErrors(t *testing.T) {
	reg := newRegistry()
	_, err := reg.Dispatch(object.NativeHandlerID(9999), fakeVM{}, &fakeIO{}, object.Int(1), nil)
	if err == nil {
		t.Fatal("expected an error for an unregistered handler id")
	}
}

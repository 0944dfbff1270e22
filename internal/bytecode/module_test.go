package bytecode

import (
	"testing"

	"github.com/csh1668/pyhyeon/internal/object"
)

func TestNewModule_ReservesMainAsFunctionZero(t *testing.T) {
	m := NewModule()
	if len(m.Functions) != 1 {
		t.Fatalf("got %d functions, want 1", len(m.Functions))
	}
	if m.Symbols[m.Functions[0].NameSymbol] != "__main__" {
		t.Errorf("function 0 name: got %q, want __main__", m.Symbols[m.Functions[0].NameSymbol])
	}
	if m.Functions[0].Arity != 0 {
		t.Errorf("function 0 arity: got %d, want 0", m.Functions[0].Arity)
	}
}

func TestModule_InternStringDeduplicates(t *testing.T) {
	m := NewModule()
	a := m.InternString("hello")
	b := m.InternString("hello")
	c := m.InternString("world")
	if a != b {
		t.Errorf("InternString should dedupe: got %d and %d", a, b)
	}
	if a == c {
		t.Errorf("different strings should not share an index")
	}
	if len(m.StringPool) != 2 {
		t.Errorf("StringPool: got %d entries, want 2", len(m.StringPool))
	}
}

func TestModule_InternSymbolAddsGlobalSlot(t *testing.T) {
	m := NewModule()
	before := len(m.Globals)
	idx := m.InternSymbol("x")
	if len(m.Globals) != before+1 {
		t.Fatalf("Globals: got %d, want %d", len(m.Globals), before+1)
	}
	if m.Globals[idx].Defined {
		t.Error("a freshly interned symbol's global slot should start absent")
	}
	again := m.InternSymbol("x")
	if again != idx || len(m.Globals) != before+1 {
		t.Error("re-interning the same symbol should not add another global slot")
	}
}

func TestModule_AddFunctionReturnsSequentialIDs(t *testing.T) {
	m := NewModule()
	id1 := m.AddFunction(NewFunctionCode(m.InternSymbol("f1"), 0))
	id2 := m.AddFunction(NewFunctionCode(m.InternSymbol("f2"), 1))
	if id1 != 1 || id2 != 2 {
		t.Errorf("got func ids %d, %d; want 1, 2 (function 0 is __main__)", id1, id2)
	}
}

func TestModule_AddClassAssignsUserTypeIDAndTypeEntry(t *testing.T) {
	m := NewModule()
	class := &object.ClassDef{Name: "Widget", Methods: map[string]object.MethodImpl{}}
	classID := m.AddClass(class)
	if classID != 0 {
		t.Errorf("first class id: got %d, want 0", classID)
	}
	if class.ClassID != 0 {
		t.Errorf("ClassDef.ClassID: got %d, want 0", class.ClassID)
	}
	wantTypeID := object.TypeUserBase
	if len(m.Types) != wantTypeID+1 {
		t.Fatalf("Types: got %d entries, want %d", len(m.Types), wantTypeID+1)
	}
	if m.Types[wantTypeID].Name != "Widget" {
		t.Errorf("Types[%d].Name: got %q, want Widget", wantTypeID, m.Types[wantTypeID].Name)
	}
}

func TestFunctionCode_PatchU16OverwritesInPlace(t *testing.T) {
	fn := NewFunctionCode(0, 0)
	fn.EmitOp(OpJump, 1)
	offset := len(fn.Code)
	fn.EmitU16(0, 1)
	fn.PatchU16(offset, 777)
	r := NewReader(fn.Code, 1)
	if v := r.ReadU16(); v != 777 {
		t.Errorf("got %d, want 777", v)
	}
}

func TestFunctionCode_PatchI32OverwritesInPlace(t *testing.T) {
	fn := NewFunctionCode(0, 0)
	fn.EmitOp(OpJump, 1)
	offset := len(fn.Code)
	fn.EmitI32(0, 1)
	fn.PatchI32(offset, -99)
	r := NewReader(fn.Code, 1)
	if v := r.ReadI32(); v != -99 {
		t.Errorf("got %d, want -99", v)
	}
}

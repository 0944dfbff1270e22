package bytecode

import (
	"bytes"
	"testing"

	"github.com/csh1668/pyhyeon/internal/object"
)

func sampleModule() *Module {
	m := NewModule()
	main := m.Functions[0]
	main.EmitOp(OpLoadConst, 1)
	main.EmitU32(uint32(m.AddConstant(object.Int(42))), 1)
	main.EmitOp(OpReturn, 1)
	return m
}

func TestSaveLoad_Roundtrip(t *testing.T) {
	m := sampleModule()
	var buf bytes.Buffer
	if err := Save(m, &buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	restored, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(restored.Functions) != len(m.Functions) {
		t.Fatalf("Functions: got %d, want %d", len(restored.Functions), len(m.Functions))
	}
	if !bytes.Equal(restored.Functions[0].Code, m.Functions[0].Code) {
		t.Errorf("Code: got %v, want %v", restored.Functions[0].Code, m.Functions[0].Code)
	}
	if len(restored.Consts) != 1 || restored.Consts[0].AsInt() != 42 {
		t.Errorf("Consts: got %v", restored.Consts)
	}
}

func TestSaveLoad_GlobalsResetToAbsent(t *testing.T) {
	m := sampleModule()
	sym := m.InternSymbol("x")
	m.Globals[sym] = GlobalSlot{Value: object.Int(7), Defined: true}

	var buf bytes.Buffer
	if err := Save(m, &buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	restored, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(restored.Globals) != len(m.Globals) {
		t.Fatalf("Globals count: got %d, want %d", len(restored.Globals), len(m.Globals))
	}
	for i, g := range restored.Globals {
		if g.Defined {
			t.Errorf("Globals[%d] should be absent after load, got Defined=true", i)
		}
	}
}

func TestLoad_RejectsWrongVersion(t *testing.T) {
	m := sampleModule()
	var buf bytes.Buffer
	if err := Save(m, &buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data := buf.Bytes()
	data[3] = data[3] ^ 0xFF // corrupt the version field
	_, err := Load(bytes.NewReader(data))
	if err == nil {
		t.Fatal("expected a version mismatch error")
	}
}

func TestLoad_RejectsChecksumMismatch(t *testing.T) {
	m := sampleModule()
	var buf bytes.Buffer
	if err := Save(m, &buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data := buf.Bytes()
	data[len(data)-1] ^= 0xFF // corrupt the compressed body
	_, err := Load(bytes.NewReader(data))
	if err == nil {
		t.Fatal("expected a checksum mismatch error")
	}
}

func TestLoad_RejectsTruncatedHeader(t *testing.T) {
	_, err := Load(bytes.NewReader([]byte{0x00, 0x00}))
	if err == nil {
		t.Fatal("expected a truncated-header error")
	}
}

func TestSaveLoad_TypeTableNotPersistedButReconstructed(t *testing.T) {
	m := sampleModule()
	class := &object.ClassDef{Name: "Widget", Methods: map[string]object.MethodImpl{}}
	m.AddClass(class)

	var buf bytes.Buffer
	if err := Save(m, &buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	restored, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	found := false
	for _, td := range restored.Types {
		if td.Name == "Widget" {
			found = true
		}
	}
	if !found {
		t.Error("Widget class type not reconstructed on load")
	}
}

package bytecode

import "github.com/csh1668/pyhyeon/internal/object"

// FunctionCode is one compiled function's code and layout (§3
// "FunctionCode"). Function 0 of a Module is always the entry point,
// `__main__`, with arity 0.
type FunctionCode struct {
	NameSymbol int    // index into Module.Symbols
	Arity      int
	NumLocals  int // >= Arity + len(captures), enforced by the compiler
	Code       []byte
	Lines      []int32 // parallel to Code, one source line per byte (for runtime error messages)
}

func NewFunctionCode(nameSymbol, arity int) *FunctionCode {
	return &FunctionCode{
		NameSymbol: nameSymbol,
		Arity:      arity,
		Code:       make([]byte, 0, 64),
		Lines:      make([]int32, 0, 64),
	}
}

func (f *FunctionCode) Len() int { return len(f.Code) }

func (f *FunctionCode) emit(b byte, line int) {
	f.Code = append(f.Code, b)
	f.Lines = append(f.Lines, int32(line))
}

// EmitOp appends an opcode byte.
func (f *FunctionCode) EmitOp(op Opcode, line int) { f.emit(byte(op), line) }

// EmitU8 appends a single-byte immediate.
func (f *FunctionCode) EmitU8(v uint8, line int) { f.emit(v, line) }

// EmitU16 appends a big-endian two-byte immediate.
func (f *FunctionCode) EmitU16(v uint16, line int) {
	f.emit(byte(v>>8), line)
	f.emit(byte(v), line)
}

// EmitU32 appends a big-endian four-byte immediate.
func (f *FunctionCode) EmitU32(v uint32, line int) {
	f.emit(byte(v>>24), line)
	f.emit(byte(v>>16), line)
	f.emit(byte(v>>8), line)
	f.emit(byte(v), line)
}

// EmitI32 appends a big-endian four-byte signed immediate, used for
// relative jump offsets.
func (f *FunctionCode) EmitI32(v int32, line int) { f.EmitU32(uint32(v), line) }

// EmitI64 appends an eight-byte immediate, used for integer constants
// encoded inline rather than through the constant pool.
func (f *FunctionCode) EmitI64(v int64, line int) {
	u := uint64(v)
	for shift := 56; shift >= 0; shift -= 8 {
		f.emit(byte(u>>uint(shift)), line)
	}
}

// PatchU16 overwrites a previously emitted two-byte immediate in place.
// Jump offsets are four bytes wide and are patched with PatchI32.
func (f *FunctionCode) PatchU16(offset int, v uint16) {
	f.Code[offset] = byte(v >> 8)
	f.Code[offset+1] = byte(v)
}

func (f *FunctionCode) PatchI32(offset int, v int32) {
	u := uint32(v)
	f.Code[offset] = byte(u >> 24)
	f.Code[offset+1] = byte(u >> 16)
	f.Code[offset+2] = byte(u >> 8)
	f.Code[offset+3] = byte(u)
}

// GlobalSlot models a Module global: absent until first StoreGlobal.
type GlobalSlot struct {
	Value   object.Value
	Defined bool
}

// Module is the bytecode container a Compiler produces and a VM
// executes (§3 "Module"): constants, a deduplicated string pool,
// slot-indexed globals, a deduplicated symbol table, function table,
// class table and (reconstructed, never persisted) type table.
type Module struct {
	Consts     []object.Value
	StringPool []string
	Globals    []GlobalSlot
	Symbols    []string
	Functions  []*FunctionCode
	Classes    []*object.ClassDef
	Types      []*object.TypeDef

	stringIndex map[string]int
	symbolIndex map[string]int
}

// NewModule returns an empty module with function 0 reserved for
// `__main__` and the fixed builtin type table installed.
func NewModule() *Module {
	m := &Module{
		Types:       object.NewBuiltinTypeTable(),
		stringIndex: make(map[string]int),
		symbolIndex: make(map[string]int),
	}
	main := NewFunctionCode(m.InternSymbol("__main__"), 0)
	m.Functions = append(m.Functions, main)
	return m
}

// AddConstant appends a constant and returns its index.
func (m *Module) AddConstant(v object.Value) int {
	m.Consts = append(m.Consts, v)
	return len(m.Consts) - 1
}

// InternString deduplicates a string through the string pool.
func (m *Module) InternString(s string) int {
	if idx, ok := m.stringIndex[s]; ok {
		return idx
	}
	idx := len(m.StringPool)
	m.StringPool = append(m.StringPool, s)
	m.stringIndex[s] = idx
	return idx
}

// InternSymbol deduplicates an identifier through the symbol table and
// ensures a matching (initially absent) globals slot exists, as §4.1
// requires: "every new symbol also adds a globals slot initialised to
// absent."
func (m *Module) InternSymbol(name string) int {
	if idx, ok := m.symbolIndex[name]; ok {
		return idx
	}
	idx := len(m.Symbols)
	m.Symbols = append(m.Symbols, name)
	m.symbolIndex[name] = idx
	m.Globals = append(m.Globals, GlobalSlot{})
	return idx
}

// AddFunction reserves a new function slot and returns its func_id.
func (m *Module) AddFunction(fn *FunctionCode) int {
	m.Functions = append(m.Functions, fn)
	return len(m.Functions) - 1
}

// AddClass registers a class, assigning the next user type_id
// (TypeUserBase + position) and appending a matching type-table entry
// for display purposes (method dispatch never consults it: §4.2).
func (m *Module) AddClass(class *object.ClassDef) int {
	class.ClassID = uint16(len(m.Classes))
	m.Classes = append(m.Classes, class)
	// Pad the reserved builtin range with nil entries so the class's
	// entry sits at its own type_id.
	for len(m.Types) < object.TypeUserBase+int(class.ClassID) {
		m.Types = append(m.Types, nil)
	}
	m.Types = append(m.Types, &object.TypeDef{Name: class.Name, Methods: class.Methods})
	return int(class.ClassID)
}

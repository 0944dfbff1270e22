package bytecode

import (
	"strings"
	"testing"
)

func TestDisassemble_HeaderAndMnemonics(t *testing.T) {
	fn := NewFunctionCode(0, 0)
	fn.EmitOp(OpConstI64, 1)
	fn.EmitI64(42, 1)
	fn.EmitOp(OpReturn, 1)

	out := Disassemble(fn, "__main__")
	if !strings.HasPrefix(out, "== __main__ ==\n") {
		t.Fatalf("missing header, got: %q", out)
	}
	if !strings.Contains(out, "CONST_I64") {
		t.Errorf("missing CONST_I64 mnemonic: %q", out)
	}
	if !strings.Contains(out, "42") {
		t.Errorf("missing constant value: %q", out)
	}
	if !strings.Contains(out, "RETURN") {
		t.Errorf("missing RETURN mnemonic: %q", out)
	}
}

func TestDisassemble_SameLineElidesLineNumber(t *testing.T) {
	fn := NewFunctionCode(0, 0)
	fn.EmitOp(OpTrue, 5)
	fn.EmitOp(OpPop, 5)
	out := Disassemble(fn, "f")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 { // header + 2 instructions
		t.Fatalf("got %d lines, want 3: %q", len(lines), out)
	}
	if !strings.Contains(lines[2], "   | ") {
		t.Errorf("second instruction on the same line should elide its line number, got %q", lines[2])
	}
}

func TestDisassemble_JumpShowsTarget(t *testing.T) {
	fn := NewFunctionCode(0, 0)
	fn.EmitOp(OpJump, 1)
	fn.EmitI32(0, 1)
	out := Disassemble(fn, "f")
	if !strings.Contains(out, "JUMP") || !strings.Contains(out, "->") {
		t.Errorf("expected a jump target arrow, got %q", out)
	}
}

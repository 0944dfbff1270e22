package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders a human-readable listing of fn's code, in the
// same offset/line/mnemonic layout as the teacher's vm.Disassemble.
func Disassemble(fn *FunctionCode, name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", name)
	r := NewReader(fn.Code, 0)
	for !r.Done() {
		disassembleOne(&sb, fn, r)
	}
	return sb.String()
}

func disassembleOne(sb *strings.Builder, fn *FunctionCode, r *Reader) {
	offset := r.IP
	fmt.Fprintf(sb, "%04d ", offset)
	if offset > 0 && fn.Lines[offset] == fn.Lines[offset-1] {
		sb.WriteString("   | ")
	} else {
		fmt.Fprintf(sb, "%4d ", fn.Lines[offset])
	}

	op := r.ReadOp()
	switch op {
	case OpConstI64:
		v := r.ReadI64()
		fmt.Fprintf(sb, "%-16s %d\n", op, v)
	case OpConstF64:
		bits := r.ReadU32()
		fmt.Fprintf(sb, "%-16s bits=%08x\n", op, bits)
	case OpConstStr, OpLoadConst:
		idx := r.ReadU32()
		fmt.Fprintf(sb, "%-16s %d\n", op, idx)
	case OpLoadLocal, OpStoreLocal, OpLoadGlobal, OpStoreGlobal:
		idx := r.ReadU16()
		fmt.Fprintf(sb, "%-16s %d\n", op, idx)
	case OpJump, OpJumpIfFalse, OpJumpIfTrue:
		rel := r.ReadI32()
		fmt.Fprintf(sb, "%-16s %+d -> %d\n", op, rel, offset+1+4+int(rel))
	case OpCall:
		fid := r.ReadU16()
		argc := r.ReadU8()
		fmt.Fprintf(sb, "%-16s func=%d argc=%d\n", op, fid, argc)
	case OpCallBuiltin:
		id := r.ReadU8()
		argc := r.ReadU8()
		fmt.Fprintf(sb, "%-16s id=%d argc=%d\n", op, id, argc)
	case OpCallValue:
		argc := r.ReadU8()
		fmt.Fprintf(sb, "%-16s argc=%d\n", op, argc)
	case OpCallMethod:
		sym := r.ReadU16()
		argc := r.ReadU8()
		fmt.Fprintf(sb, "%-16s sym=%d argc=%d\n", op, sym, argc)
	case OpLoadAttr, OpStoreAttr:
		sym := r.ReadU16()
		fmt.Fprintf(sb, "%-16s sym=%d\n", op, sym)
	case OpBuildList, OpBuildTuple, OpBuildSet, OpBuildTreeSet, OpBuildDict:
		n := r.ReadU16()
		fmt.Fprintf(sb, "%-16s n=%d\n", op, n)
	case OpMakeClosure:
		fid := r.ReadU16()
		caps := r.ReadU8()
		fmt.Fprintf(sb, "%-16s func=%d captures=%d\n", op, fid, caps)
	default:
		fmt.Fprintf(sb, "%-16s\n", op)
	}
}

// Package bytecode implements the CORE's instruction set, the Module
// bytecode container, and the persisted-module wire format (§6.1).
package bytecode

// Opcode is a single fixed-width VM instruction.
type Opcode byte

const (
	OpConstI64 Opcode = iota
	OpConstF64
	OpConstStr
	OpLoadConst
	OpTrue
	OpFalse
	OpNone

	OpPop
	OpDup

	OpLoadLocal
	OpStoreLocal
	OpLoadGlobal
	OpStoreGlobal

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpTrueDiv
	OpMod
	OpNeg
	OpPos

	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpNot

	OpJump
	OpJumpIfFalse
	OpJumpIfTrue

	OpCall
	OpCallBuiltin
	OpCallValue
	OpCallMethod
	OpReturn

	OpLoadAttr
	OpStoreAttr

	OpBuildList
	OpBuildTuple
	OpBuildSet
	OpBuildTreeSet
	OpBuildDict

	OpLoadIndex
	OpStoreIndex

	OpMakeClosure

	numOpcodes
)

// OpcodeNames maps opcodes to their disassembly mnemonic.
var OpcodeNames = [numOpcodes]string{
	OpConstI64:  "CONST_I64",
	OpConstF64:  "CONST_F64",
	OpConstStr:  "CONST_STR",
	OpLoadConst: "LOAD_CONST",
	OpTrue:      "TRUE",
	OpFalse:     "FALSE",
	OpNone:      "NONE",

	OpPop: "POP",
	OpDup: "DUP",

	OpLoadLocal:  "LOAD_LOCAL",
	OpStoreLocal: "STORE_LOCAL",
	OpLoadGlobal: "LOAD_GLOBAL",
	OpStoreGlobal: "STORE_GLOBAL",

	OpAdd:     "ADD",
	OpSub:     "SUB",
	OpMul:     "MUL",
	OpDiv:     "DIV",
	OpTrueDiv: "TRUE_DIV",
	OpMod:     "MOD",
	OpNeg:     "NEG",
	OpPos:     "POS",

	OpEq:  "EQ",
	OpNe:  "NE",
	OpLt:  "LT",
	OpLe:  "LE",
	OpGt:  "GT",
	OpGe:  "GE",
	OpNot: "NOT",

	OpJump:        "JUMP",
	OpJumpIfFalse: "JUMP_IF_FALSE",
	OpJumpIfTrue:  "JUMP_IF_TRUE",

	OpCall:        "CALL",
	OpCallBuiltin: "CALL_BUILTIN",
	OpCallValue:   "CALL_VALUE",
	OpCallMethod:  "CALL_METHOD",
	OpReturn:      "RETURN",

	OpLoadAttr:  "LOAD_ATTR",
	OpStoreAttr: "STORE_ATTR",

	OpBuildList:    "BUILD_LIST",
	OpBuildTuple:   "BUILD_TUPLE",
	OpBuildSet:     "BUILD_SET",
	OpBuildTreeSet: "BUILD_TREE_SET",
	OpBuildDict:    "BUILD_DICT",

	OpLoadIndex:  "LOAD_INDEX",
	OpStoreIndex: "STORE_INDEX",

	OpMakeClosure: "MAKE_CLOSURE",
}

func (op Opcode) String() string {
	if int(op) < len(OpcodeNames) && OpcodeNames[op] != "" {
		return OpcodeNames[op]
	}
	return "UNKNOWN"
}

// StackEffect returns the net operand-stack delta an instruction produces,
// given any immediates it carries (n for Build*/argc for Call*/capture
// count for MakeClosure). The compiler does not call it; opcodes_test
// checks it against the stack behaviour of each opcode.
func StackEffect(op Opcode, imm int) int {
	switch op {
	case OpConstI64, OpConstF64, OpConstStr, OpLoadConst, OpTrue, OpFalse, OpNone,
		OpDup, OpLoadLocal, OpLoadGlobal:
		return 1
	case OpPop, OpStoreLocal, OpStoreGlobal, OpJumpIfFalse, OpJumpIfTrue:
		return -1
	case OpAdd, OpSub, OpMul, OpDiv, OpTrueDiv, OpMod,
		OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return -1 // two operands popped, one pushed
	case OpNeg, OpPos, OpNot:
		return 0 // one popped, one pushed
	case OpJump, OpReturn:
		return 0 // Return's effect is frame-relative, handled by the compiler directly
	case OpCall:
		return -imm + 1 // imm = argc
	case OpCallBuiltin:
		return -imm + 1
	case OpCallValue:
		return -imm - 1 + 1 // pop callee + argc args, push result
	case OpCallMethod:
		return -imm - 1 + 1 // pop receiver + argc args, push result
	case OpLoadAttr:
		return 0 // pop obj, push value
	case OpStoreAttr:
		return -2 // pop obj, value
	case OpBuildList, OpBuildTuple, OpBuildSet, OpBuildTreeSet:
		return -imm + 1
	case OpBuildDict:
		return -2*imm + 1
	case OpLoadIndex:
		return -1 // pop obj,key push value
	case OpStoreIndex:
		return -3 // pop obj,key,value
	case OpMakeClosure:
		return -imm + 1
	default:
		return 0
	}
}

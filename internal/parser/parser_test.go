package parser

import (
	"testing"

	"github.com/csh1668/pyhyeon/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return prog
}

func TestParse_Assign(t *testing.T) {
	prog := mustParse(t, "x = 1 + 2\n")
	if len(prog.Statements) != 1 {
		t.Fatalf("statements: got %d, want 1", len(prog.Statements))
	}
	assign, ok := prog.Statements[0].(*ast.Assign)
	if !ok {
		t.Fatalf("got %T, want *ast.Assign", prog.Statements[0])
	}
	if assign.Name != "x" {
		t.Errorf("Name: got %q, want x", assign.Name)
	}
	bin, ok := assign.Value.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("Value: got %T, want *ast.BinaryExpr", assign.Value)
	}
	if bin.Op != ast.OpAdd {
		t.Errorf("Op: got %s, want +", bin.Op)
	}
}

func TestParse_AttrAndIndexAssign(t *testing.T) {
	prog := mustParse(t, "obj.field = 1\narr[0] = 2\n")
	if len(prog.Statements) != 2 {
		t.Fatalf("statements: got %d, want 2", len(prog.Statements))
	}
	if _, ok := prog.Statements[0].(*ast.AttrAssign); !ok {
		t.Errorf("stmt0: got %T, want *ast.AttrAssign", prog.Statements[0])
	}
	if _, ok := prog.Statements[1].(*ast.IndexAssign); !ok {
		t.Errorf("stmt1: got %T, want *ast.IndexAssign", prog.Statements[1])
	}
}

func TestParse_FunctionDef(t *testing.T) {
	prog := mustParse(t, "def add(a, b):\n    return a + b\nend\n")
	if len(prog.Statements) != 1 {
		t.Fatalf("statements: got %d, want 1", len(prog.Statements))
	}
	fn, ok := prog.Statements[0].(*ast.FunctionDef)
	if !ok {
		t.Fatalf("got %T, want *ast.FunctionDef", prog.Statements[0])
	}
	if fn.Name != "add" {
		t.Errorf("Name: got %q, want add", fn.Name)
	}
	if len(fn.Params) != 2 || fn.Params[0] != "a" || fn.Params[1] != "b" {
		t.Errorf("Params: got %v, want [a b]", fn.Params)
	}
	if len(fn.Body) != 1 {
		t.Fatalf("Body: got %d statements, want 1", len(fn.Body))
	}
	if _, ok := fn.Body[0].(*ast.ReturnStatement); !ok {
		t.Errorf("Body[0]: got %T, want *ast.ReturnStatement", fn.Body[0])
	}
}

func TestParse_IfElifElseFoldsToNestedElse(t *testing.T) {
	src := "if a:\n    x = 1\nelif b:\n    x = 2\nelse:\n    x = 3\nend\n"
	prog := mustParse(t, src)
	top, ok := prog.Statements[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("got %T, want *ast.IfStatement", prog.Statements[0])
	}
	if len(top.Else) != 1 {
		t.Fatalf("top.Else: got %d statements, want 1 (nested elif)", len(top.Else))
	}
	nested, ok := top.Else[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("top.Else[0]: got %T, want *ast.IfStatement", top.Else[0])
	}
	if len(nested.Else) != 1 {
		t.Fatalf("nested.Else: got %d statements, want 1", len(nested.Else))
	}
}

func TestParse_WhileAndFor(t *testing.T) {
	prog := mustParse(t, "while x:\n    y = 1\nend\nfor i in range(3):\n    z = i\nend\n")
	if _, ok := prog.Statements[0].(*ast.WhileStatement); !ok {
		t.Errorf("stmt0: got %T, want *ast.WhileStatement", prog.Statements[0])
	}
	forStmt, ok := prog.Statements[1].(*ast.ForStatement)
	if !ok {
		t.Fatalf("stmt1: got %T, want *ast.ForStatement", prog.Statements[1])
	}
	if forStmt.Var != "i" {
		t.Errorf("Var: got %q, want i", forStmt.Var)
	}
}

func TestParse_PrecedenceClimbing(t *testing.T) {
	prog := mustParse(t, "x = 1 + 2 * 3\n")
	assign := prog.Statements[0].(*ast.Assign)
	top, ok := assign.Value.(*ast.BinaryExpr)
	if !ok || top.Op != ast.OpAdd {
		t.Fatalf("top op: got %#v, want + at root", assign.Value)
	}
	right, ok := top.Right.(*ast.BinaryExpr)
	if !ok || right.Op != ast.OpMul {
		t.Fatalf("right op: got %#v, want * nested under +", top.Right)
	}
}

func TestParse_TernaryAndBoolOps(t *testing.T) {
	prog := mustParse(t, "x = 1 if a and b or not c else 2\n")
	assign := prog.Statements[0].(*ast.Assign)
	cond, ok := assign.Value.(*ast.CondExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.CondExpr", assign.Value)
	}
	if _, ok := cond.Cond.(*ast.OrExpr); !ok {
		t.Errorf("Cond: got %T, want *ast.OrExpr", cond.Cond)
	}
}

func TestParse_CallMethodAttrIndex(t *testing.T) {
	prog := mustParse(t, "y = obj.method(1, 2).attr[0]\n")
	assign := prog.Statements[0].(*ast.Assign)
	idx, ok := assign.Value.(*ast.IndexExpr)
	if !ok {
		t.Fatalf("got %T, want *ast.IndexExpr", assign.Value)
	}
	attr, ok := idx.Target.(*ast.AttrExpr)
	if !ok {
		t.Fatalf("Target: got %T, want *ast.AttrExpr", idx.Target)
	}
	call, ok := attr.Target.(*ast.MethodCall)
	if !ok {
		t.Fatalf("attr.Target: got %T, want *ast.MethodCall", attr.Target)
	}
	if call.Method != "method" || len(call.Args) != 2 {
		t.Errorf("MethodCall: got method=%q args=%d", call.Method, len(call.Args))
	}
}

func TestParse_ListAndDictLiterals(t *testing.T) {
	prog := mustParse(t, "x = [1, 2, 3]\ny = {\"a\": 1, \"b\": 2}\n")
	list, ok := prog.Statements[0].(*ast.Assign).Value.(*ast.ListLiteral)
	if !ok || len(list.Items) != 3 {
		t.Fatalf("list: got %#v", prog.Statements[0])
	}
	dict, ok := prog.Statements[1].(*ast.Assign).Value.(*ast.DictLiteral)
	if !ok || len(dict.Entries) != 2 {
		t.Fatalf("dict: got %#v", prog.Statements[1])
	}
}

func TestParse_Lambda(t *testing.T) {
	prog := mustParse(t, "f = lambda x, y: x + y\n")
	lam, ok := prog.Statements[0].(*ast.Assign).Value.(*ast.Lambda)
	if !ok {
		t.Fatalf("got %T, want *ast.Lambda", prog.Statements[0].(*ast.Assign).Value)
	}
	if len(lam.Params) != 2 {
		t.Errorf("Params: got %d, want 2", len(lam.Params))
	}
}

func TestParse_ClassDef(t *testing.T) {
	src := "class Point:\n    def __init__(self, x):\n        self.x = x\n    end\nend\n"
	prog := mustParse(t, src)
	cls, ok := prog.Statements[0].(*ast.ClassDef)
	if !ok {
		t.Fatalf("got %T, want *ast.ClassDef", prog.Statements[0])
	}
	if cls.Name != "Point" {
		t.Errorf("Name: got %q, want Point", cls.Name)
	}
	if len(cls.Methods) != 1 || cls.Methods[0].Name != "__init__" {
		t.Fatalf("Methods: got %#v", cls.Methods)
	}
}

func TestParse_BreakContinue(t *testing.T) {
	src := "while x:\n    break\n    continue\nend\n"
	prog := mustParse(t, src)
	ws := prog.Statements[0].(*ast.WhileStatement)
	if len(ws.Body) != 2 {
		t.Fatalf("Body: got %d statements, want 2", len(ws.Body))
	}
	if _, ok := ws.Body[0].(*ast.BreakStatement); !ok {
		t.Errorf("Body[0]: got %T, want *ast.BreakStatement", ws.Body[0])
	}
	if _, ok := ws.Body[1].(*ast.ContinueStatement); !ok {
		t.Errorf("Body[1]: got %T, want *ast.ContinueStatement", ws.Body[1])
	}
}

func TestParse_ErrorOnMalformedInput(t *testing.T) {
	_, err := Parse("def (\n")
	if err == nil {
		t.Fatal("expected a parse error for malformed def")
	}
}

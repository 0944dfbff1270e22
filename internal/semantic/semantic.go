// Package semantic is the light resolver SPEC_FULL.md §4 carves out of
// the CORE: direct-call arity validation against top-level def
// arities, checked before internal/compiler ever sees the tree. Calls
// that construct a class are not checked. It is
// intentionally thin — the CORE's own ArityError remains the authority
// at runtime for anything this pass can't see statically (calls through
// a value, methods, a bytecode.Module built by hand rather than through
// this front end).
package semantic

import (
	"fmt"

	"github.com/csh1668/pyhyeon/internal/ast"
)

// funcSig is what Analyze needs to validate a direct call to a
// top-level def: its declared parameter count.
type funcSig struct {
	arity int
	line  int
}

// Analyze walks program's top-level defs and every direct call (Call
// whose Callee is a bare Identifier naming one of those defs),
// reporting the first arity mismatch found. Calls through any other
// callee shape (an expression, an attribute, a parameter) are left for
// the VM's own runtime ArityError, matching §4.3's defensive-check note.
func Analyze(program *ast.Program) error {
	globals := make(map[string]struct{})
	funcs := make(map[string]funcSig)

	for _, stmt := range program.Statements {
		switch s := stmt.(type) {
		case *ast.FunctionDef:
			if _, dup := funcs[s.Name]; dup {
				return fmt.Errorf("line %d: function %q redefined", s.Line(), s.Name)
			}
			funcs[s.Name] = funcSig{arity: len(s.Params), line: s.Line()}
			globals[s.Name] = struct{}{}
		case *ast.ClassDef:
			globals[s.Name] = struct{}{}
		case *ast.Assign:
			globals[s.Name] = struct{}{}
		}
	}

	v := &visitor{funcs: funcs}
	for _, stmt := range program.Statements {
		if err := v.statement(stmt); err != nil {
			return err
		}
	}
	return nil
}

type visitor struct {
	funcs map[string]funcSig
}

func (v *visitor) statement(s ast.Statement) error {
	switch s := s.(type) {
	case *ast.ExprStatement:
		return v.expression(s.Expr)
	case *ast.FunctionDef:
		return v.statements(s.Body)
	case *ast.ClassDef:
		for _, m := range s.Methods {
			if err := v.statements(m.Body); err != nil {
				return err
			}
		}
	case *ast.IfStatement:
		if err := v.expression(s.Cond); err != nil {
			return err
		}
		if err := v.statements(s.Then); err != nil {
			return err
		}
		return v.statements(s.Else)
	case *ast.WhileStatement:
		if err := v.expression(s.Cond); err != nil {
			return err
		}
		return v.statements(s.Body)
	case *ast.ForStatement:
		if err := v.expression(s.Iterable); err != nil {
			return err
		}
		return v.statements(s.Body)
	case *ast.ReturnStatement:
		if s.Value != nil {
			return v.expression(s.Value)
		}
	case *ast.Assign:
		return v.expression(s.Value)
	case *ast.AttrAssign:
		if err := v.expression(s.Target); err != nil {
			return err
		}
		return v.expression(s.Value)
	case *ast.IndexAssign:
		if err := v.expression(s.Target); err != nil {
			return err
		}
		if err := v.expression(s.Index); err != nil {
			return err
		}
		return v.expression(s.Value)
	}
	return nil
}

func (v *visitor) statements(stmts []ast.Statement) error {
	for _, s := range stmts {
		if err := v.statement(s); err != nil {
			return err
		}
	}
	return nil
}

func (v *visitor) expression(e ast.Expression) error {
	switch e := e.(type) {
	case nil:
		return nil
	case *ast.BinaryExpr:
		if err := v.expression(e.Left); err != nil {
			return err
		}
		return v.expression(e.Right)
	case *ast.UnaryExpr:
		return v.expression(e.Operand)
	case *ast.AndExpr:
		if err := v.expression(e.Left); err != nil {
			return err
		}
		return v.expression(e.Right)
	case *ast.OrExpr:
		if err := v.expression(e.Left); err != nil {
			return err
		}
		return v.expression(e.Right)
	case *ast.NotExpr:
		return v.expression(e.Operand)
	case *ast.CondExpr:
		if err := v.expression(e.Cond); err != nil {
			return err
		}
		if err := v.expression(e.Then); err != nil {
			return err
		}
		return v.expression(e.Else)
	case *ast.Call:
		if ident, ok := e.Callee.(*ast.Identifier); ok {
			if sig, ok := v.funcs[ident.Name]; ok && sig.arity != len(e.Args) {
				return fmt.Errorf("line %d: %s() takes %d argument(s), got %d",
					e.Line(), ident.Name, sig.arity, len(e.Args))
			}
		}
		for _, a := range e.Args {
			if err := v.expression(a); err != nil {
				return err
			}
		}
		return v.expression(e.Callee)
	case *ast.MethodCall:
		if err := v.expression(e.Receiver); err != nil {
			return err
		}
		for _, a := range e.Args {
			if err := v.expression(a); err != nil {
				return err
			}
		}
	case *ast.AttrExpr:
		return v.expression(e.Target)
	case *ast.IndexExpr:
		if err := v.expression(e.Target); err != nil {
			return err
		}
		return v.expression(e.Index)
	case *ast.ListLiteral:
		for _, item := range e.Items {
			if err := v.expression(item); err != nil {
				return err
			}
		}
	case *ast.DictLiteral:
		for _, entry := range e.Entries {
			if err := v.expression(entry.Key); err != nil {
				return err
			}
			if err := v.expression(entry.Value); err != nil {
				return err
			}
		}
	case *ast.Lambda:
		return v.expression(e.Body)
	}
	return nil
}

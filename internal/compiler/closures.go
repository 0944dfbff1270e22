package compiler

import (
	"fmt"
	"math"
	"sort"

	"github.com/csh1668/pyhyeon/internal/ast"
	"github.com/csh1668/pyhyeon/internal/bytecode"
)

// encodeF64 is OpConstF64's immediate encoding: a float32 truncation of
// the literal, matching the 4-byte immediate width the reader and
// disassembler already commit to. Losing precision below float32 is an
// accepted trade-off for this teaching VM (see DESIGN.md).
func encodeF64(f float64) uint32 { return math.Float32bits(float32(f)) }

// compileLambda implements §4.1's closure lowering: compute the body's
// free variables (names referenced that are neither the lambda's own
// parameters nor resolvable as a global def/class/builtin), in sorted
// order: emit a load of each from the enclosing function's locals, then
// MakeClosure. The lambda itself compiles into its own FunctionCode
// whose locals are [params..., captures...].
func (fs *funcScope) compileLambda(e *ast.Lambda) error {
	freeNames := freeVariables(e)
	var captures []string
	for _, name := range freeNames {
		if _, ok := fs.locals[name]; ok {
			captures = append(captures, name)
		}
		// Names not found among the enclosing function's locals are
		// presumed global (a def, a class, or a not-yet-defined name);
		// they are simply not captured, and the lambda body's own
		// identifier resolution falls back to LoadGlobal for them.
	}
	sort.Strings(captures)

	nameSym := fs.c.module.InternSymbol(fmt.Sprintf("<lambda@%d:%d>", fs.fn.NameSymbol, fs.fn.Len()))
	lambdaFn := bytecode.NewFunctionCode(nameSym, len(e.Params))
	funcID := fs.c.module.AddFunction(lambdaFn)

	locals := make(map[string]int, len(e.Params)+len(captures))
	for i, p := range e.Params {
		locals[p] = i
	}
	for i, name := range captures {
		locals[name] = len(e.Params) + i
	}
	lambdaFn.NumLocals = len(locals)

	inner := &funcScope{c: fs.c, fn: lambdaFn, locals: locals}
	if err := inner.compileExpr(e.Body); err != nil {
		return fmt.Errorf("lambda: %w", err)
	}
	inner.emitOp(bytecode.OpReturn, e.Line())

	for _, name := range captures {
		slot := fs.locals[name]
		fs.emitOp(bytecode.OpLoadLocal, e.Line())
		fs.fn.EmitU16(uint16(slot), e.Line())
	}
	fs.emitOp(bytecode.OpMakeClosure, e.Line())
	fs.fn.EmitU16(uint16(funcID), e.Line())
	fs.fn.EmitU8(uint8(len(captures)), e.Line())
	return nil
}

// freeVariables returns, in sorted order, the distinct identifier names
// referenced in lam's body that are not bound by lam's own parameters
// (or, for a nested lambda encountered while walking, that inner
// lambda's own parameters).
func freeVariables(lam *ast.Lambda) []string {
	bound := make(map[string]bool, len(lam.Params))
	for _, p := range lam.Params {
		bound[p] = true
	}
	seen := make(map[string]bool)
	var order []string
	var walk func(ast.Expression, map[string]bool)
	walk = func(expr ast.Expression, bound map[string]bool) {
		switch e := expr.(type) {
		case *ast.Identifier:
			if !bound[e.Name] && !seen[e.Name] {
				seen[e.Name] = true
				order = append(order, e.Name)
			}
		case *ast.BinaryExpr:
			walk(e.Left, bound)
			walk(e.Right, bound)
		case *ast.UnaryExpr:
			walk(e.Operand, bound)
		case *ast.NotExpr:
			walk(e.Operand, bound)
		case *ast.AndExpr:
			walk(e.Left, bound)
			walk(e.Right, bound)
		case *ast.OrExpr:
			walk(e.Left, bound)
			walk(e.Right, bound)
		case *ast.CondExpr:
			walk(e.Cond, bound)
			walk(e.Then, bound)
			walk(e.Else, bound)
		case *ast.Call:
			walk(e.Callee, bound)
			for _, a := range e.Args {
				walk(a, bound)
			}
		case *ast.MethodCall:
			walk(e.Receiver, bound)
			for _, a := range e.Args {
				walk(a, bound)
			}
		case *ast.AttrExpr:
			walk(e.Target, bound)
		case *ast.IndexExpr:
			walk(e.Target, bound)
			walk(e.Index, bound)
		case *ast.ListLiteral:
			for _, it := range e.Items {
				walk(it, bound)
			}
		case *ast.DictLiteral:
			for _, entry := range e.Entries {
				walk(entry.Key, bound)
				walk(entry.Value, bound)
			}
		case *ast.Lambda:
			inner := make(map[string]bool, len(bound)+len(e.Params))
			for k := range bound {
				inner[k] = true
			}
			for _, p := range e.Params {
				inner[p] = true
			}
			walk(e.Body, inner)
		}
	}
	walk(lam.Body, bound)
	sort.Strings(order)
	return order
}

package compiler

import (
	"fmt"

	"github.com/csh1668/pyhyeon/internal/ast"
	"github.com/csh1668/pyhyeon/internal/bytecode"
)

// loopContext tracks the patch sites a break/continue inside one loop
// needs: continueTarget is a fixed backward-jump destination, breakJumps
// accumulates forward-jump placeholders patched once the loop's body is
// fully compiled (§4.1 "loop contexts for break/continue").
type loopContext struct {
	continueTarget int
	breakJumps     []int
}

// funcScope is the compiler's state while emitting one function's body:
// the Compiler it belongs to (for knownFuncs/knownClasses lookups), the
// FunctionCode being filled in, this function's local-name -> slot
// table, and the active loop stack.
type funcScope struct {
	c      *Compiler
	fn     *bytecode.FunctionCode
	locals map[string]int
	loops  []*loopContext
	isInit bool
}

func (fs *funcScope) emitOp(op bytecode.Opcode, line int) { fs.fn.EmitOp(op, line) }

// emitJump appends op followed by a placeholder 4-byte immediate and
// returns the offset of that immediate, to be filled in by patchJump
// once the target is known.
func (fs *funcScope) emitJump(op bytecode.Opcode, line int) int {
	fs.fn.EmitOp(op, line)
	at := fs.fn.Len()
	fs.fn.EmitI32(0, line)
	return at
}

// patchJump resolves a forward jump emitted by emitJump to the current
// end of the function's code.
func (fs *funcScope) patchJump(immOffset int) {
	target := fs.fn.Len()
	rel := int32(target - (immOffset + 4))
	fs.fn.PatchI32(immOffset, rel)
}

// emitLoopBack emits a backward Jump to target (the top of a loop),
// used both for the loop's own back-edge and for `continue`.
func (fs *funcScope) emitLoopBack(target int, line int) {
	fs.fn.EmitOp(bytecode.OpJump, line)
	at := fs.fn.Len()
	rel := int32(target - (at + 4))
	fs.fn.EmitI32(rel, line)
}

// collectLocals implements §4.1's local-allocation rule: "collecting
// parameters plus every name assigned or defined anywhere in the body
// (including nested blocks and for variables)", assigning slots in
// first-appearance order. It does not descend into nested Lambda
// bodies (those get their own, separate locals) or into FunctionDef/
// ClassDef (not supported as nested declarations).
func collectLocals(params []string, body []ast.Statement) map[string]int {
	order := make([]string, 0, len(params)+4)
	seen := make(map[string]bool, len(params)+4)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
	}
	for _, p := range params {
		add(p)
	}
	var walk func(stmts []ast.Statement)
	walk = func(stmts []ast.Statement) {
		for _, stmt := range stmts {
			switch s := stmt.(type) {
			case *ast.Assign:
				add(s.Name)
			case *ast.ForStatement:
				add(s.Var)
				walk(s.Body)
			case *ast.IfStatement:
				walk(s.Then)
				walk(s.Else)
			case *ast.WhileStatement:
				walk(s.Body)
			}
		}
	}
	walk(body)

	slots := make(map[string]int, len(order))
	for i, name := range order {
		slots[name] = i
	}
	return slots
}

// compileFunctionBody fills in the FunctionCode already reserved for
// funcID: it runs the local pre-pass, compiles every statement in
// order, then appends the function's trailing implicit return (None,
// or self for __init__) unless the body already ends in an explicit
// return (§4.1, §4.2 "__init__ ... compiled to return self").
func (c *Compiler) compileFunctionBody(funcID int, params []string, body []ast.Statement, isInit bool) error {
	fn := c.module.Functions[funcID]
	locals := collectLocals(params, body)
	fn.NumLocals = len(locals)

	fs := &funcScope{c: c, fn: fn, locals: locals, isInit: isInit}
	if err := fs.compileBlock(body); err != nil {
		return err
	}
	if !endsInReturn(body) {
		line := lastLine(body)
		if isInit {
			fs.emitOp(bytecode.OpLoadLocal, line)
			fs.fn.EmitU16(0, line)
		} else {
			fs.emitOp(bytecode.OpNone, line)
		}
		fs.emitOp(bytecode.OpReturn, line)
	}
	return nil
}

// compileMainBody fills in function 0 (__main__): first a prologue
// binding every registered class/def name to its global symbol, then
// the script's non-declaration statements. The program's result
// convention (§8's "expected stack height at exit: 1") is that the
// final statement, if it is a bare expression, supplies __main__'s
// return value instead of being discarded like every other expression
// statement.
func (c *Compiler) compileMainBody(stmts []ast.Statement) error {
	fn := c.module.Functions[0]
	locals := collectLocals(nil, stmts)
	// NumLocals only grows: a Resume'd REPL driver keeps one locals
	// slice alive across entries (its frame is never re-sized down), so
	// an entry with fewer locals than a prior one must not shrink the
	// slot count a later ResumeFrame call still depends on.
	if n := len(locals); n > fn.NumLocals {
		fn.NumLocals = n
	}
	fs := &funcScope{c: c, fn: fn, locals: locals}

	for _, name := range c.classOrder {
		ci := c.knownClasses[name]
		fs.emitOp(bytecode.OpLoadConst, 0)
		fs.fn.EmitU32(uint32(ci.constIdx), 0)
		fs.emitOp(bytecode.OpStoreGlobal, 0)
		fs.fn.EmitU16(uint16(ci.globalSym), 0)
	}
	for _, name := range c.funcOrder {
		fi := c.knownFuncs[name]
		fs.emitOp(bytecode.OpLoadConst, 0)
		fs.fn.EmitU32(uint32(fi.constIdx), 0)
		fs.emitOp(bytecode.OpStoreGlobal, 0)
		fs.fn.EmitU16(uint16(c.funcGlobalSym[name]), 0)
	}

	for i, stmt := range stmts {
		isLast := i == len(stmts)-1
		if es, ok := stmt.(*ast.ExprStatement); ok && isLast {
			if err := fs.compileExpr(es.Expr); err != nil {
				return err
			}
			fs.emitOp(bytecode.OpReturn, es.Line())
			return nil
		}
		if err := fs.compileStatement(stmt); err != nil {
			return err
		}
	}
	line := lastLine(stmts)
	fs.emitOp(bytecode.OpNone, line)
	fs.emitOp(bytecode.OpReturn, line)
	return nil
}

func endsInReturn(body []ast.Statement) bool {
	if len(body) == 0 {
		return false
	}
	_, ok := body[len(body)-1].(*ast.ReturnStatement)
	return ok
}

func lastLine(stmts []ast.Statement) int {
	if len(stmts) == 0 {
		return 0
	}
	return stmts[len(stmts)-1].Line()
}

func (fs *funcScope) currentLoop() (*loopContext, error) {
	if len(fs.loops) == 0 {
		return nil, fmt.Errorf("break/continue outside loop")
	}
	return fs.loops[len(fs.loops)-1], nil
}

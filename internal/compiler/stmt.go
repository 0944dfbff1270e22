package compiler

import (
	"fmt"

	"github.com/csh1668/pyhyeon/internal/ast"
	"github.com/csh1668/pyhyeon/internal/bytecode"
)

func (fs *funcScope) compileBlock(stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if err := fs.compileStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (fs *funcScope) compileStatement(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.ExprStatement:
		if err := fs.compileExpr(s.Expr); err != nil {
			return err
		}
		fs.emitOp(bytecode.OpPop, s.Line())
		return nil

	case *ast.Assign:
		if err := fs.compileExpr(s.Value); err != nil {
			return err
		}
		slot, ok := fs.locals[s.Name]
		if !ok {
			// Unreachable given collectLocals, but fail loudly rather
			// than silently miscompiling.
			return fmt.Errorf("line %d: %s was not pre-allocated a local slot", s.Line(), s.Name)
		}
		fs.emitOp(bytecode.OpStoreLocal, s.Line())
		fs.fn.EmitU16(uint16(slot), s.Line())
		return nil

	case *ast.AttrAssign:
		if err := fs.compileExpr(s.Target); err != nil {
			return err
		}
		if err := fs.compileExpr(s.Value); err != nil {
			return err
		}
		sym := fs.c.module.InternSymbol(s.Attr)
		fs.emitOp(bytecode.OpStoreAttr, s.Line())
		fs.fn.EmitU16(uint16(sym), s.Line())
		return nil

	case *ast.IndexAssign:
		if err := fs.compileExpr(s.Target); err != nil {
			return err
		}
		if err := fs.compileExpr(s.Index); err != nil {
			return err
		}
		if err := fs.compileExpr(s.Value); err != nil {
			return err
		}
		fs.emitOp(bytecode.OpStoreIndex, s.Line())
		return nil

	case *ast.ReturnStatement:
		if s.Value != nil {
			if err := fs.compileExpr(s.Value); err != nil {
				return err
			}
		} else if fs.isInit {
			fs.emitOp(bytecode.OpLoadLocal, s.Line())
			fs.fn.EmitU16(0, s.Line())
		} else {
			fs.emitOp(bytecode.OpNone, s.Line())
		}
		fs.emitOp(bytecode.OpReturn, s.Line())
		return nil

	case *ast.BreakStatement:
		loop, err := fs.currentLoop()
		if err != nil {
			return fmt.Errorf("line %d: %w", s.Line(), err)
		}
		at := fs.emitJump(bytecode.OpJump, s.Line())
		loop.breakJumps = append(loop.breakJumps, at)
		return nil

	case *ast.ContinueStatement:
		loop, err := fs.currentLoop()
		if err != nil {
			return fmt.Errorf("line %d: %w", s.Line(), err)
		}
		fs.emitLoopBack(loop.continueTarget, s.Line())
		return nil

	case *ast.IfStatement:
		return fs.compileIf(s)

	case *ast.WhileStatement:
		return fs.compileWhile(s)

	case *ast.ForStatement:
		return fs.compileFor(s)

	default:
		return fmt.Errorf("line %d: unsupported statement %T", stmt.Line(), stmt)
	}
}

func (fs *funcScope) compileIf(s *ast.IfStatement) error {
	if err := fs.compileExpr(s.Cond); err != nil {
		return err
	}
	elseJump := fs.emitJump(bytecode.OpJumpIfFalse, s.Line())
	if err := fs.compileBlock(s.Then); err != nil {
		return err
	}
	if len(s.Else) == 0 {
		fs.patchJump(elseJump)
		return nil
	}
	endJump := fs.emitJump(bytecode.OpJump, s.Line())
	fs.patchJump(elseJump)
	if err := fs.compileBlock(s.Else); err != nil {
		return err
	}
	fs.patchJump(endJump)
	return nil
}

func (fs *funcScope) compileWhile(s *ast.WhileStatement) error {
	loopStart := fs.fn.Len()
	if err := fs.compileExpr(s.Cond); err != nil {
		return err
	}
	exitJump := fs.emitJump(bytecode.OpJumpIfFalse, s.Line())

	loop := &loopContext{continueTarget: loopStart}
	fs.loops = append(fs.loops, loop)
	if err := fs.compileBlock(s.Body); err != nil {
		return err
	}
	fs.loops = fs.loops[:len(fs.loops)-1]

	fs.emitLoopBack(loopStart, s.Line())
	fs.patchJump(exitJump)
	for _, bj := range loop.breakJumps {
		fs.patchJump(bj)
	}
	return nil
}

// compileFor desugars `for Var in Iterable: Body` to the iterator
// protocol (§4.1): `iter = Iterable.__iter__(); while iter.__has_next__():
// Var = iter.__next__(); Body`. The iterator itself lives in a
// synthesised, unique global named from the loop's starting code
// offset; Var is an ordinary local (collectLocals already reserved its
// slot).
func (fs *funcScope) compileFor(s *ast.ForStatement) error {
	iterSym := fs.c.module.InternSymbol(fmt.Sprintf("$iter@%d:%d", fs.fn.NameSymbol, fs.fn.Len()))
	iterMethodSym := fs.c.module.InternSymbol("__iter__")
	hasNextSym := fs.c.module.InternSymbol("__has_next__")
	nextSym := fs.c.module.InternSymbol("__next__")

	if err := fs.compileExpr(s.Iterable); err != nil {
		return err
	}
	fs.emitOp(bytecode.OpCallMethod, s.Line())
	fs.fn.EmitU16(uint16(iterMethodSym), s.Line())
	fs.fn.EmitU8(0, s.Line())
	fs.emitOp(bytecode.OpStoreGlobal, s.Line())
	fs.fn.EmitU16(uint16(iterSym), s.Line())

	loopStart := fs.fn.Len()
	fs.emitOp(bytecode.OpLoadGlobal, s.Line())
	fs.fn.EmitU16(uint16(iterSym), s.Line())
	fs.emitOp(bytecode.OpCallMethod, s.Line())
	fs.fn.EmitU16(uint16(hasNextSym), s.Line())
	fs.fn.EmitU8(0, s.Line())
	exitJump := fs.emitJump(bytecode.OpJumpIfFalse, s.Line())

	fs.emitOp(bytecode.OpLoadGlobal, s.Line())
	fs.fn.EmitU16(uint16(iterSym), s.Line())
	fs.emitOp(bytecode.OpCallMethod, s.Line())
	fs.fn.EmitU16(uint16(nextSym), s.Line())
	fs.fn.EmitU8(0, s.Line())
	varSlot, ok := fs.locals[s.Var]
	if !ok {
		return fmt.Errorf("line %d: %s was not pre-allocated a local slot", s.Line(), s.Var)
	}
	fs.emitOp(bytecode.OpStoreLocal, s.Line())
	fs.fn.EmitU16(uint16(varSlot), s.Line())

	loop := &loopContext{continueTarget: loopStart}
	fs.loops = append(fs.loops, loop)
	if err := fs.compileBlock(s.Body); err != nil {
		return err
	}
	fs.loops = fs.loops[:len(fs.loops)-1]

	fs.emitLoopBack(loopStart, s.Line())
	fs.patchJump(exitJump)
	for _, bj := range loop.breakJumps {
		fs.patchJump(bj)
	}
	return nil
}

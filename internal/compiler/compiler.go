// Package compiler lowers a typed AST (internal/ast) into a bytecode
// Module (internal/bytecode), per spec §4.1. It never touches source
// text: tokenisation/parsing/semantic analysis are external
// collaborators (spec.md §1).
package compiler

import (
	"fmt"

	"github.com/csh1668/pyhyeon/internal/ast"
	"github.com/csh1668/pyhyeon/internal/bytecode"
	"github.com/csh1668/pyhyeon/internal/object"
)

// funcInfo is what the compiler remembers about a top-level def across
// its two passes: registration (allocate the slot, so forward/mutual
// calls resolve) then compilation (fill in the body).
type funcInfo struct {
	funcID   int
	constIdx int // index of the constant holding this def's zero-capture UserFunction value
	def      *ast.FunctionDef
}

// classInfo mirrors funcInfo for a class: its ClassDef, the bound
// global symbol that will hold the runtime UserClass value, and the
// method bodies still to compile.
type classInfo struct {
	class     *object.ClassDef
	globalSym int
	constIdx  int
	def       *ast.ClassDef
}

// Compiler holds cross-function state for one compilation unit. Prior
// holds incremental-compilation context (§4.1 "Input: ... plus optional
// prior context ... consisting of a symbol map, existing symbol names,
// and existing function codes"): passing a non-nil Prior resumes
// compilation into the same Module instead of starting fresh, which is
// what a REPL driver needs between entries.
type Compiler struct {
	module *bytecode.Module

	knownFuncs   map[string]*funcInfo
	knownClasses map[string]*classInfo
	// funcOrder/classOrder record registration order so the __main__
	// prologue (binding every def/class name to a global) is emitted
	// deterministically rather than in Go's randomized map order.
	funcOrder  []string
	classOrder []string

	// funcGlobalSym maps a top-level def's name to the global symbol
	// that the __main__ prologue binds it to, so bare identifier
	// references to a def's name still resolve (the fast Call(func_id)
	// path never needs this; it exists for def names used as values).
	funcGlobalSym map[string]int
}

// New starts a fresh compilation with a new, empty Module.
func New() *Compiler {
	return &Compiler{
		module:        bytecode.NewModule(),
		knownFuncs:    make(map[string]*funcInfo),
		knownClasses:  make(map[string]*classInfo),
		funcGlobalSym: make(map[string]int),
	}
}

// Resume continues compiling into a previously compiled Module (the
// incremental-compilation contract of §4.1). Symbol names and function
// codes already in the module remain valid; new top-level statements
// append to them.
func Resume(module *bytecode.Module) *Compiler {
	return &Compiler{
		module:        module,
		knownFuncs:    make(map[string]*funcInfo),
		knownClasses:  make(map[string]*classInfo),
		funcGlobalSym: make(map[string]int),
	}
}

// Compile lowers program into c's Module and returns it.
func Compile(program *ast.Program) (*bytecode.Module, error) {
	c := New()
	if err := c.CompileInto(program); err != nil {
		return nil, err
	}
	return c.module, nil
}

// CompileInto compiles program's top-level statements, appending the
// executable ones to function 0 (__main__). Used directly by Resume
// callers (the REPL) who already hold a Compiler.
func (c *Compiler) CompileInto(program *ast.Program) error {
	var mainStmts []ast.Statement
	var newFuncs, newClasses []string

	// Pass A: register every top-level def/class so forward and mutual
	// references resolve regardless of declaration order.
	for _, stmt := range program.Statements {
		switch s := stmt.(type) {
		case *ast.FunctionDef:
			if err := c.registerFunction(s); err != nil {
				return err
			}
			newFuncs = append(newFuncs, s.Name)
		case *ast.ClassDef:
			if err := c.registerClass(s); err != nil {
				return err
			}
			newClasses = append(newClasses, s.Name)
		default:
			mainStmts = append(mainStmts, stmt)
		}
	}

	// Pass B: compile bodies now that every name is resolvable. Only
	// THIS call's new defs/classes, never c.funcOrder/c.classOrder in
	// full — a Resume'd REPL driver calls CompileInto repeatedly on one
	// Compiler, and re-running compileFunctionBody for a name registered
	// in an earlier entry would append its body's bytecode a second time
	// onto the same already-compiled FunctionCode.
	for _, name := range newFuncs {
		fi := c.knownFuncs[name]
		if err := c.compileFunctionBody(fi.funcID, fi.def.Params, fi.def.Body, false); err != nil {
			return fmt.Errorf("def %s: %w", name, err)
		}
	}
	for _, name := range newClasses {
		ci := c.knownClasses[name]
		for _, m := range ci.def.Methods {
			mi := ci.class.Methods[m.Name]
			isInit := m.Name == "__init__"
			if err := c.compileFunctionBody(mi.FuncID, m.Params, m.Body, isInit); err != nil {
				return fmt.Errorf("class %s.%s: %w", name, m.Name, err)
			}
		}
	}

	return c.compileMainBody(mainStmts)
}

func (c *Compiler) registerFunction(def *ast.FunctionDef) error {
	if _, exists := c.knownFuncs[def.Name]; exists {
		return fmt.Errorf("line %d: function %q redefined", def.Line(), def.Name)
	}
	nameSym := c.module.InternSymbol(def.Name)
	fn := bytecode.NewFunctionCode(nameSym, len(def.Params))
	funcID := c.module.AddFunction(fn)
	constIdx := c.module.AddConstant(object.FromObject(object.NewUserFunction(funcID, nil)))
	c.knownFuncs[def.Name] = &funcInfo{funcID: funcID, constIdx: constIdx, def: def}
	c.funcOrder = append(c.funcOrder, def.Name)
	c.funcGlobalSym[def.Name] = nameSym
	return nil
}

func (c *Compiler) registerClass(def *ast.ClassDef) error {
	if _, exists := c.knownClasses[def.Name]; exists {
		return fmt.Errorf("line %d: class %q redefined", def.Line(), def.Name)
	}
	class := &object.ClassDef{Name: def.Name, Methods: make(map[string]object.MethodImpl)}
	for _, m := range def.Methods {
		if len(m.Params) == 0 {
			return fmt.Errorf("line %d: method %s.%s must take self", def.Line(), def.Name, m.Name)
		}
		nameSym := c.module.InternSymbol(def.Name + "." + m.Name)
		fn := bytecode.NewFunctionCode(nameSym, len(m.Params))
		funcID := c.module.AddFunction(fn)
		class.Methods[m.Name] = object.UserDefined(funcID, object.Exact(len(m.Params)-1))
	}
	c.module.AddClass(class)
	constIdx := c.module.AddConstant(object.FromObject(object.NewUserClass(class)))
	globalSym := c.module.InternSymbol(def.Name)
	c.knownClasses[def.Name] = &classInfo{class: class, globalSym: globalSym, constIdx: constIdx, def: def}
	c.classOrder = append(c.classOrder, def.Name)
	return nil
}

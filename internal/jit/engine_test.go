package jit_test

import (
	"testing"

	"github.com/csh1668/pyhyeon/internal/compiler"
	"github.com/csh1668/pyhyeon/internal/interp"
	"github.com/csh1668/pyhyeon/internal/ioprovider"
	"github.com/csh1668/pyhyeon/internal/jit"
	"github.com/csh1668/pyhyeon/internal/parser"
)

// compileSrc lexes/parses/compiles src into a Module for JIT engine tests.
func compileSrc(t *testing.T, src string) *interp.VM {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	module, err := compiler.Compile(prog)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return interp.New(module, ioprovider.NewQueued())
}

func TestEngine_CompilesAfterThresholdCalls(t *testing.T) {
	src := "def addone(n):\n" +
		"    return n + 1\n" +
		"end\n" +
		"x = 0\n" +
		"i = 0\n" +
		"while i < 5:\n" +
		"    x = addone(x)\n" +
		"    i = i + 1\n" +
		"end\n" +
		"x\n"
	vm := compileSrc(t, src)
	engine := jit.NewEngine(3, nil)
	vm.SetJIT(engine)

	result, err := vm.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.IsInt() || result.AsInt() != 5 {
		t.Errorf("got %s, want 5", result.Inspect())
	}
}

func TestEngine_BailsOutOnUnsupportedOpcode(t *testing.T) {
	// String concatenation has no baseline-subset lowering; lower() must
	// bail and the interpreter path must still produce the right result.
	src := "def greet(name):\n" +
		"    return \"hi \" + name\n" +
		"end\n" +
		"greet(\"a\")\n" +
		"greet(\"a\")\n" +
		"greet(\"a\")\n"
	vm := compileSrc(t, src)
	engine := jit.NewEngine(1, nil)
	vm.SetJIT(engine)

	_, err := vm.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestEngine_NotCompiledBelowThreshold(t *testing.T) {
	src := "def id(n):\n" +
		"    return n\n" +
		"end\n" +
		"id(1)\n"
	vm := compileSrc(t, src)
	engine := jit.NewEngine(1000, nil)
	vm.SetJIT(engine)

	result, err := vm.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.IsInt() || result.AsInt() != 1 {
		t.Errorf("got %s, want 1", result.Inspect())
	}
}

func TestNewEngine_ZeroThresholdUsesDefault(t *testing.T) {
	e := jit.NewEngine(0, nil)
	if e == nil {
		t.Fatal("NewEngine(0, nil) returned nil")
	}
}

package jit_test

import (
	"path/filepath"
	"testing"

	"github.com/csh1668/pyhyeon/internal/compiler"
	"github.com/csh1668/pyhyeon/internal/interp"
	"github.com/csh1668/pyhyeon/internal/ioprovider"
	"github.com/csh1668/pyhyeon/internal/jit"
	"github.com/csh1668/pyhyeon/internal/parser"
)

func TestCache_CompiledVerdictSkipsRecounting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jit.db")
	cache, err := jit.OpenCache(path)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer cache.Close()

	src := "def id(n):\n    return n\nend\nid(7)\n"

	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	module, err := compiler.Compile(prog)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	// First run: threshold of 1 so id's single call compiles and records
	// a "compiled" verdict under this cache.
	vm := interp.New(module, ioprovider.NewQueued())
	engine := jit.NewEngine(1, cache)
	vm.SetJIT(engine)
	result, err := vm.Run()
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if !result.IsInt() || result.AsInt() != 7 {
		t.Errorf("got %s, want 7", result.Inspect())
	}

	// Second run against a fresh Engine/VM sharing the same cache: a high
	// threshold would normally prevent compiling on the very first call,
	// but the recorded verdict should let TryRun succeed immediately.
	prog2, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	module2, err := compiler.Compile(prog2)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	vm2 := interp.New(module2, ioprovider.NewQueued())
	engine2 := jit.NewEngine(1000000, cache)
	vm2.SetJIT(engine2)
	result2, err := vm2.Run()
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !result2.IsInt() || result2.AsInt() != 7 {
		t.Errorf("got %s, want 7", result2.Inspect())
	}
}

func TestOpenCache_CreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh.db")
	cache, err := jit.OpenCache(path)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	defer cache.Close()
}

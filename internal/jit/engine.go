// Package jit implements the CORE's best-effort accelerator (spec.md
// §4.5): per-function hot-path counters, baseline-opcode-subset
// lowering to threaded Go closures standing in for native code, the
// runtime-helper ABI (as exported internal/interp methods), and a
// cross-run cache of which functions are known compilable.
//
// interp never imports jit — Engine satisfies interp.JITEngine, a
// small interface interp declares locally, so the dependency runs one
// way: jit depends on interp's VM to drive, not the reverse.
package jit

import (
	"sync"

	"github.com/csh1668/pyhyeon/internal/bytecode"
	"github.com/csh1668/pyhyeon/internal/interp"
	"github.com/csh1668/pyhyeon/internal/object"
)

// DefaultThreshold is spec.md §4.5's default hot-path threshold.
const DefaultThreshold = 1000

// entry is one func_id's compilation state: either still counting,
// compiled, or permanently bailed out (lowering already failed once,
// so there is no point re-attempting it on every subsequent call).
type entry struct {
	calls    int
	compiled *compiledFunc
	bailed   bool
}

// Engine is the VM-facing JIT: counters and compiled entries keyed by
// func_id, exactly as spec.md §4.5 requires.
type Engine struct {
	mu        sync.Mutex
	threshold int
	entries   map[int]*entry
	cache     *Cache // nil disables the cross-run cache
}

// NewEngine builds an Engine with the given hot-path threshold and an
// optional cross-run cache (nil to disable persistence).
func NewEngine(threshold int, cache *Cache) *Engine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Engine{threshold: threshold, entries: make(map[int]*entry), cache: cache}
}

// Notify implements interp.JITEngine: bumps funcID's call counter and
// attempts compilation once it reaches the threshold.
func (e *Engine) Notify(funcID int, fn *bytecode.FunctionCode) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ent := e.entries[funcID]
	if ent == nil {
		ent = &entry{}
		if e.cache != nil {
			if status, ok := e.cache.Lookup(funcID, fn); ok {
				// A previous run already decided this func_id's fate;
				// skip straight to it instead of re-counting to the
				// threshold or re-attempting known-bad lowering.
				if status == statusBailed {
					ent.bailed = true
				} else if status == statusCompiled {
					if cf, err := lower(fn); err == nil {
						ent.compiled = cf
					} else {
						ent.bailed = true
					}
				}
			}
		}
		e.entries[funcID] = ent
	}
	if ent.compiled != nil || ent.bailed {
		return
	}

	ent.calls++
	if ent.calls < e.threshold {
		return
	}
	e.compile(funcID, fn, ent)
}

func (e *Engine) compile(funcID int, fn *bytecode.FunctionCode, ent *entry) {
	cf, err := lower(fn)
	if err != nil {
		ent.bailed = true
		if e.cache != nil {
			e.cache.Record(funcID, fn, statusBailed)
		}
		return
	}
	ent.compiled = cf
	if e.cache != nil {
		e.cache.Record(funcID, fn, statusCompiled)
	}
}

// TryRun implements interp.JITEngine: runs funcID's compiled closure
// program if one exists, pushing its own frame and result exactly the
// way the interpreter's own call path would.
func (e *Engine) TryRun(vm *interp.VM, funcID int, args, captures []object.Value) (bool, error) {
	e.mu.Lock()
	ent := e.entries[funcID]
	e.mu.Unlock()
	if ent == nil || ent.compiled == nil {
		return false, nil
	}
	if err := vm.PushNativeFrame(funcID, args, captures); err != nil {
		return false, err
	}
	if status := ent.compiled.run(vm); status != 0 {
		return false, jitHelperError(status)
	}
	return true, nil
}

func jitHelperError(status int64) error {
	switch status {
	case -1:
		return &interp.RuntimeError{Kind: interp.StackOverflow, Msg: "jit: operand stack exhausted"}
	case -2:
		return &interp.RuntimeError{Kind: interp.TypeError, Msg: "jit: operand type mismatch"}
	default:
		return &interp.RuntimeError{Kind: interp.StackOverflow, Msg: "jit: missing frame or local index"}
	}
}

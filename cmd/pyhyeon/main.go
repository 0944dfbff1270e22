// Command pyhyeon drives the CORE end to end: lex, parse, resolve,
// compile, and run pyhyeon source, plus inspecting and replaying the
// persisted bytecode format directly.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/csh1668/pyhyeon/internal/bytecode"
	"github.com/csh1668/pyhyeon/internal/compiler"
	"github.com/csh1668/pyhyeon/internal/config"
	"github.com/csh1668/pyhyeon/internal/debugcli"
	"github.com/csh1668/pyhyeon/internal/interp"
	"github.com/csh1668/pyhyeon/internal/ioprovider"
	"github.com/csh1668/pyhyeon/internal/jit"
	"github.com/csh1668/pyhyeon/internal/object"
	"github.com/csh1668/pyhyeon/internal/parser"
	"github.com/csh1668/pyhyeon/internal/semantic"
)

var (
	dashTuning string
	dashDisasm bool
	dashOut    string
	dashNoJIT  bool
)

func init() {
	flag.StringVar(&dashTuning, "tuning", "", "path to a VM/JIT tuning YAML file")
	flag.BoolVar(&dashDisasm, "disasm", false, "print disassembly instead of (or alongside) the compiled module")
	flag.StringVar(&dashOut, "o", "", "output file for compile (default: <input> with \"c\" appended, e.g. prog.pyhc)")
	flag.BoolVar(&dashNoJIT, "no-jit", false, "disable the JIT accelerator")
}

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(1)
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	switch args[0] {
	case "run":
		if len(args) != 2 {
			exitf("usage: pyhyeon run <file.pyh>")
		}
		cmdRun(args[1])
	case "compile":
		if len(args) != 2 {
			exitf("usage: pyhyeon compile <file.pyh>")
		}
		cmdCompile(args[1])
	case "exec":
		if len(args) != 2 {
			exitf("usage: pyhyeon exec <file.pyhc>")
		}
		cmdExec(args[1])
	case "repl":
		cmdRepl()
	case "debug":
		if len(args) != 2 {
			exitf("usage: pyhyeon debug <file.pyh>")
		}
		cmdDebug(args[1])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "    pyhyeon run <file.pyh>           lex, parse, compile, and execute a script\n")
	fmt.Fprintf(os.Stderr, "    pyhyeon compile <file.pyh>       compile to bytecode (-o out, -disasm to print)\n")
	fmt.Fprintf(os.Stderr, "    pyhyeon exec <file.pyhc>         execute a previously compiled module\n")
	fmt.Fprintf(os.Stderr, "    pyhyeon repl                     interactive read-eval-print loop\n")
	fmt.Fprintf(os.Stderr, "    pyhyeon debug <file.pyh>         step/inspect a run in a terminal UI\n")
}

func loadTuning() config.Tuning {
	if dashTuning == "" {
		return config.Default()
	}
	t, err := config.Load(dashTuning)
	if err != nil {
		exitf("%s", err)
	}
	return t
}

func buildModule(path string) *bytecode.Module {
	src, err := os.ReadFile(path)
	if err != nil {
		exitf("reading %s: %s", path, err)
	}
	program, err := parser.Parse(string(src))
	if err != nil {
		exitf("%s", err)
	}
	if err := semantic.Analyze(program); err != nil {
		exitf("%s", err)
	}
	module, err := compiler.Compile(program)
	if err != nil {
		exitf("compile: %s", err)
	}
	return module
}

// attachJIT wires a jit.Engine into vm unless -no-jit was given, per
// spec.md §4.5's default-on accelerator.
func attachJIT(vm *interp.VM, tuning config.Tuning) {
	if dashNoJIT {
		return
	}
	var cache *jit.Cache
	if tuning.JITCachePath != "" {
		c, err := jit.OpenCache(tuning.JITCachePath)
		if err != nil {
			exitf("jit cache: %s", err)
		}
		cache = c
	}
	vm.SetJIT(jit.NewEngine(tuning.JITHotThreshold, cache))
}

func runVM(vm *interp.VM) {
	for {
		_, err := vm.Run()
		if err != nil {
			exitf("runtime error: %s", err)
		}
		if vm.State != interp.StateWaitingForInput {
			return
		}
	}
}

func cmdRun(path string) {
	module := buildModule(path)
	tuning := loadTuning()
	vm := interp.NewTuned(module, ioprovider.NewStdio(), tuning)
	attachJIT(vm, tuning)
	runVM(vm)
}

func cmdCompile(path string) {
	module := buildModule(path)
	if dashDisasm {
		for i, fn := range module.Functions {
			name := fmt.Sprintf("func%d", i)
			fmt.Println(bytecode.Disassemble(fn, name))
		}
	}
	out := dashOut
	if out == "" {
		out = path + "c"
	}
	f, err := os.Create(out)
	if err != nil {
		exitf("creating %s: %s", out, err)
	}
	defer f.Close()
	if err := bytecode.Save(module, f); err != nil {
		exitf("writing %s: %s", out, err)
	}
}

func cmdExec(path string) {
	f, err := os.Open(path)
	if err != nil {
		exitf("opening %s: %s", path, err)
	}
	defer f.Close()
	module, err := bytecode.Load(f)
	if err != nil {
		exitf("loading %s: %s", path, err)
	}
	tuning := loadTuning()
	vm := interp.NewTuned(module, ioprovider.NewStdio(), tuning)
	attachJIT(vm, tuning)
	runVM(vm)
}

// cmdRepl reads one statement-or-block at a time and compiles each
// incrementally into a resumed Compiler (compiler.Resume's contract),
// appending to function 0 (__main__) rather than starting over. The
// driver keeps one growable locals slice and feeds it to ResumeFrame
// alongside the offset each entry's code starts at, so an earlier
// entry's top-level bindings stay visible without re-executing its
// statements (which a plain Run-from-IP-0 would do, since they all
// live in the same function's code).
func cmdRepl() {
	tuning := loadTuning()
	module := bytecode.NewModule()
	comp := compiler.Resume(module)
	vm := interp.NewTuned(module, ioprovider.NewStdio(), tuning)
	attachJIT(vm, tuning)

	var locals []object.Value
	ip := 0

	stdin := bufio.NewScanner(os.Stdin)
	fmt.Print(">>> ")
	for stdin.Scan() {
		line := stdin.Text()
		if strings.TrimSpace(line) == "" {
			fmt.Print(">>> ")
			continue
		}
		program, err := parser.Parse(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			fmt.Print(">>> ")
			continue
		}
		if err := semantic.Analyze(program); err != nil {
			fmt.Fprintln(os.Stderr, err)
			fmt.Print(">>> ")
			continue
		}
		if err := comp.CompileInto(program); err != nil {
			fmt.Fprintln(os.Stderr, err)
			fmt.Print(">>> ")
			continue
		}

		fn0 := module.Functions[0]
		if n := fn0.NumLocals; n > len(locals) {
			grown := make([]object.Value, n)
			copy(grown, locals)
			locals = grown
		}
		result, err := vm.ResumeFrame(0, ip, locals)
		for err == nil && vm.State == interp.StateWaitingForInput {
			result, err = vm.Run()
		}
		ip = len(fn0.Code)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Println(result.Inspect())
		}
		fmt.Print(">>> ")
	}
}

func cmdDebug(path string) {
	module := buildModule(path)
	tuning := loadTuning()
	threshold := -1
	if !dashNoJIT {
		threshold = tuning.JITHotThreshold
	}
	if err := debugcli.Run(module, tuning, threshold, tuning.JITCachePath); err != nil {
		exitf("debug: %s", err)
	}
}

// Package config carries pyhyeon's ambient constants and optional
// VM/JIT tuning, the way the teacher's internal/config package carries
// its source-extension and builtin-name constants.
package config

const SourceFileExt = ".pyh"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".pyh", ".pyhyeon"}

// HasSourceExt reports whether path ends with any recognized source
// extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// TrimSourceExt removes any recognized source extension from name,
// returning name unchanged if none match.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// BytecodeFileExt is the extension cmd/pyhyeon uses for persisted
// modules produced by `compile`.
const BytecodeFileExt = ".pyhc"

// Builtin function names, mirroring internal/builtins.NameToID so the
// front end and CLI diagnostics have a single source of display names.
const (
	PrintFuncName  = "print"
	InputFuncName  = "input"
	LenFuncName    = "len"
	RangeFuncName  = "range"
	IntFuncName    = "int"
	BoolFuncName   = "bool"
	StrFuncName    = "str"
	FloatFuncName  = "float"
	MapFuncName    = "map"
	FilterFuncName = "filter"
	AssertFuncName = "assert"
)

// BlockEnd is the keyword that closes every block-opening statement in
// the supplemental front end's grammar (if/while/for/def/class), the
// surface-syntax choice noted in SPEC_FULL.md §4.
const BlockEnd = "end"

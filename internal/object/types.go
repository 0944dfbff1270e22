package object

import "fmt"

// TypeFlags are the per-type capability bits (§3 "Type table").
type TypeFlags uint8

const (
	FlagImmutable TypeFlags = 1 << iota
	FlagIterable
	FlagCallable
)

// Arity describes how many positional arguments a MethodImpl accepts.
type Arity struct {
	Kind ArityKind
	Min  int
	Max  int // only meaningful for ArityRange
}

type ArityKind uint8

const (
	ArityExact ArityKind = iota
	ArityRange
	ArityVariadic
)

func Exact(n int) Arity        { return Arity{Kind: ArityExact, Min: n} }
func Range(min, max int) Arity { return Arity{Kind: ArityRange, Min: min, Max: max} }
func Variadic() Arity          { return Arity{Kind: ArityVariadic} }

func (a Arity) Accepts(n int) bool {
	switch a.Kind {
	case ArityExact:
		return n == a.Min
	case ArityRange:
		return n >= a.Min && n <= a.Max
	case ArityVariadic:
		return n >= a.Min
	default:
		return false
	}
}

func (a Arity) String() string {
	switch a.Kind {
	case ArityExact:
		return fmt.Sprintf("%d", a.Min)
	case ArityRange:
		return fmt.Sprintf("%d-%d", a.Min, a.Max)
	case ArityVariadic:
		return fmt.Sprintf("%d+", a.Min)
	default:
		return "?"
	}
}

// NativeHandlerID identifies a Go function registered in the interpreter's
// native-method table (internal/builtins registers into it at VM
// construction; this package only carries the numeric handle so that
// object has no dependency on builtins).
type NativeHandlerID uint16

// MethodImpl is one resolved method implementation (§3 "MethodImpl").
type MethodImpl struct {
	IsNative  bool
	HandlerID NativeHandlerID // valid when IsNative
	FuncID    int             // valid when !IsNative
	Arity     Arity
}

func Native(id NativeHandlerID, arity Arity) MethodImpl {
	return MethodImpl{IsNative: true, HandlerID: id, Arity: arity}
}

func UserDefined(funcID int, arity Arity) MethodImpl {
	return MethodImpl{IsNative: false, FuncID: funcID, Arity: arity}
}

// TypeDef is one entry of the Module-owned type table.
type TypeDef struct {
	Name    string
	Methods map[string]MethodImpl
	Flags   TypeFlags
}

func (t *TypeDef) Has(flag TypeFlags) bool { return t.Flags&flag != 0 }

// NewBuiltinTypeTable returns the fixed-order builtin type table
// (indices 0-99 reserved, only NumBuiltinTypes populated). Method
// tables are filled in by internal/builtins.Register so that this
// package stays free of the builtins' native handler dependencies.
func NewBuiltinTypeTable() []*TypeDef {
	table := make([]*TypeDef, NumBuiltinTypes)
	for id, name := range BuiltinTypeNames {
		flags := TypeFlags(0)
		switch id {
		case TypeInt, TypeBool, TypeStr, TypeNoneType, TypeFloat:
			flags |= FlagImmutable
		}
		switch id {
		case TypeRange, TypeList, TypeDict, TypeMapIter, TypeFilterIter:
			flags |= FlagIterable
		}
		if id == TypeFunction {
			flags |= FlagCallable
		}
		table[id] = &TypeDef{Name: name, Methods: make(map[string]MethodImpl), Flags: flags}
	}
	return table
}

// ErrNoSuchMethod is the attribute-style error for a failed method
// lookup (§4.2).
type ErrNoSuchMethod struct {
	TypeName string
	Method   string
}

func (e *ErrNoSuchMethod) Error() string {
	return fmt.Sprintf("'%s' object has no attribute '%s'", e.TypeName, e.Method)
}

// ResolveMethod implements the §4.2 lookup order: UserInstance consults
// its ClassDef first, everything else indexes the type table by type_id.
func ResolveMethod(types []*TypeDef, v Value, methodName string) (MethodImpl, string, error) {
	if v.IsObject() {
		if inst, ok := v.Obj.Data.(*UserInstanceData); ok {
			if m, ok := inst.Class.Methods[methodName]; ok {
				return m, inst.Class.Name, nil
			}
			return MethodImpl{}, "", &ErrNoSuchMethod{TypeName: inst.Class.Name, Method: methodName}
		}
	}
	id := v.TypeID()
	if int(id) >= len(types) || types[id] == nil {
		return MethodImpl{}, "", &ErrNoSuchMethod{TypeName: "?", Method: methodName}
	}
	td := types[id]
	if m, ok := td.Methods[methodName]; ok {
		return m, td.Name, nil
	}
	return MethodImpl{}, "", &ErrNoSuchMethod{TypeName: td.Name, Method: methodName}
}

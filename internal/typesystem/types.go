package typesystem

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the interface for all types in the system.
type Type interface {
	String() string
	typeNode()
}

// Mono is a monomorph: a type variable whose solution, once found, is
// shared by all occurrences. Cells are bound in place by unification and
// unbound again when a speculative unification rolls back.
type Mono struct {
	Ref Type
	ID  int
}

var monoCounter int

// NewMono allocates a fresh unbound monomorph. The typer is single
// threaded per compilation, so a plain counter is enough.
func NewMono() *Mono {
	monoCounter++
	return &Mono{ID: monoCounter}
}

func (m *Mono) typeNode() {}
func (m *Mono) String() string {
	if m.Ref != nil {
		return m.Ref.String()
	}
	return fmt.Sprintf("Unknown<%d>", m.ID)
}

// Dyn is the dynamic top type.
type Dyn struct{}

func (Dyn) typeNode()      {}
func (Dyn) String() string { return "Dynamic" }

// Inst is a class instance type, e.g. Array<Int>.
type Inst struct {
	Decl   *ClassDecl
	Params []Type
}

func (Inst) typeNode() {}
func (t Inst) String() string {
	return paramString(t.Decl.Path.String(), t.Params)
}

// EnumType is an enum instance type, e.g. Option<Int>.
type EnumType struct {
	Decl   *EnumDecl
	Params []Type
}

func (EnumType) typeNode() {}
func (t EnumType) String() string {
	return paramString(t.Decl.Path.String(), t.Params)
}

// Alias is a reference to a typedef; Follow expands it.
type Alias struct {
	Decl   *DefDecl
	Params []Type
}

func (Alias) typeNode() {}
func (t Alias) String() string {
	return paramString(t.Decl.Path.String(), t.Params)
}

// FunArg is one formal argument of a function type.
type FunArg struct {
	Name string
	Opt  bool
	T    Type
}

// Fun is a function type.
type Fun struct {
	Args []FunArg
	Ret  Type
}

func (Fun) typeNode() {}
func (t Fun) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, a := range t.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		if a.Opt {
			b.WriteByte('?')
		}
		if a.Name != "" {
			b.WriteString(a.Name)
			b.WriteString(": ")
		}
		b.WriteString(a.T.String())
	}
	b.WriteString(") -> ")
	b.WriteString(t.Ret.String())
	return b.String()
}

// AnonStatusKind tracks how an anonymous type may still evolve.
type AnonStatusKind int

const (
	AnonConst AnonStatusKind = iota
	AnonClosed
	AnonOpened
	AnonStatics     // statics of a class viewed as an object
	AnonEnumStatics // constructors of an enum viewed as an object
)

// AnonStatus is the shared mutable status cell of an anonymous type.
// Opened anons accumulate fields during speculative inference until the
// typer closes them at a scope boundary.
type AnonStatus struct {
	Kind  AnonStatusKind
	Class *ClassDecl
	Enum  *EnumDecl
}

// Anon is an anonymous structure type.
type Anon struct {
	Fields map[string]*ClassField
	Status *AnonStatus
}

func (Anon) typeNode() {}
func (t Anon) String() string {
	names := make([]string, 0, len(t.Fields))
	for name := range t.Fields {
		names = append(names, name)
	}
	sortStrings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+t.Fields[name].Type.String())
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// ParamDef is a declared type parameter, possibly constrained.
type ParamDef struct {
	Name        string
	Constraints []Type
}

// ParamType is an occurrence of a type parameter in scope.
type ParamType struct {
	Def *ParamDef
}

func (ParamType) typeNode()        {}
func (t ParamType) String() string { return t.Def.Name }

// Nullable wraps a type on value-typed backends, where null is not a
// valid inhabitant of the plain type.
type Nullable struct {
	Elem Type
}

func (Nullable) typeNode()        {}
func (t Nullable) String() string { return "Null<" + t.Elem.String() + ">" }

// Follow dereferences bound monomorphs and expands typedefs until it
// reaches a representative type.
func Follow(t Type) Type {
	for {
		switch tt := t.(type) {
		case *Mono:
			if tt.Ref == nil {
				return t
			}
			t = tt.Ref
		case Alias:
			t = ApplyParams(tt.Decl.Params, tt.Params, tt.Decl.T)
		default:
			return t
		}
	}
}

// FollowOnce is Follow without typedef expansion; it keeps aliases
// visible, which matters for the distinguished PosInfos typedef.
func FollowOnce(t Type) Type {
	for {
		m, ok := t.(*Mono)
		if !ok || m.Ref == nil {
			return t
		}
		t = m.Ref
	}
}

// IsUnbound reports whether t follows to an unbound monomorph.
func IsUnbound(t Type) bool {
	_, ok := Follow(t).(*Mono)
	return ok
}

// HasMono reports whether any unresolved monomorph remains inside t.
func HasMono(t Type) bool {
	found := false
	walkType(t, func(t Type) {
		if m, ok := t.(*Mono); ok && m.Ref == nil {
			found = true
		}
	}, map[Type]bool{})
	return found
}

func walkType(t Type, f func(Type), seen map[Type]bool) {
	if t == nil {
		return
	}
	// Only monomorph cells can close a cycle; they are pointers and
	// therefore usable as keys, unlike the slice-carrying struct types.
	if m, ok := t.(*Mono); ok {
		if seen[m] {
			return
		}
		seen[m] = true
	}
	f(t)
	switch tt := t.(type) {
	case *Mono:
		walkType(tt.Ref, f, seen)
	case Inst:
		for _, p := range tt.Params {
			walkType(p, f, seen)
		}
	case EnumType:
		for _, p := range tt.Params {
			walkType(p, f, seen)
		}
	case Alias:
		for _, p := range tt.Params {
			walkType(p, f, seen)
		}
	case Fun:
		for _, a := range tt.Args {
			walkType(a.T, f, seen)
		}
		walkType(tt.Ret, f, seen)
	case Anon:
		for _, cf := range tt.Fields {
			walkType(cf.Type, f, seen)
		}
	case Nullable:
		walkType(tt.Elem, f, seen)
	}
}

func paramString(base string, params []Type) string {
	if len(params) == 0 {
		return base
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.String()
	}
	return base + "<" + strings.Join(parts, ", ") + ">"
}

func sortStrings(s []string) {
	sort.Strings(s)
}

package typesystem

import (
	"strings"

	"github.com/cinderlang/cinder/internal/token"
)

// Path is a dotted type path, e.g. cinder.io.File.
type Path struct {
	Pack []string
	Name string
}

func (p Path) String() string {
	if len(p.Pack) == 0 {
		return p.Name
	}
	return strings.Join(p.Pack, ".") + "." + p.Name
}

// MetaEntry is one metadata annotation attached to a declaration or field,
// e.g. :arrayAccess or :real("flash.Boot").
type MetaEntry struct {
	Name string
	Args []string
}

// HasMeta reports whether an entry with the given name is present.
func HasMeta(meta []MetaEntry, name string) bool {
	for _, m := range meta {
		if m.Name == name {
			return true
		}
	}
	return false
}

// MetaString returns the first string argument of the first entry with the
// given name. When the same metadata appears multiple times, the first
// occurrence wins.
func MetaString(meta []MetaEntry, name string) (string, bool) {
	for _, m := range meta {
		if m.Name == name {
			if len(m.Args) == 0 {
				return "", true
			}
			return m.Args[0], true
		}
	}
	return "", false
}

// MethodKind discriminates how a method is dispatched.
type MethodKind int

const (
	MethNormal MethodKind = iota
	MethInline
	MethDynamic
	MethMacro
)

// FieldAccess is one side (read or write) of a variable field's property
// behavior.
type FieldAccess int

const (
	AccNormal FieldAccess = iota
	AccNo                 // visible inside the hierarchy only
	AccNever
	AccCall    // goes through an accessor method
	AccResolve // read through resolve(name)
	AccInline  // inline variable
)

// FieldKind carries the property/method behavior of a class field.
type FieldKind struct {
	IsMethod bool
	Method   MethodKind

	Read          FieldAccess
	ReadAccessor  string
	Write         FieldAccess
	WriteAccessor string
}

// VarKind is the plain read/write variable field kind.
func VarKind() FieldKind {
	return FieldKind{Read: AccNormal, Write: AccNormal}
}

// MethodFieldKind is a method field of the given dispatch kind.
func MethodFieldKind(mk MethodKind) FieldKind {
	return FieldKind{IsMethod: true, Method: mk}
}

// PropertyKind builds a var field kind from accessor names, mirroring the
// surface syntax `var x(get, set)`.
func PropertyKind(read, write string) FieldKind {
	k := FieldKind{}
	k.Read, k.ReadAccessor = parseAccess(read)
	k.Write, k.WriteAccessor = parseAccess(write)
	return k
}

func parseAccess(spec string) (FieldAccess, string) {
	switch spec {
	case "", "default":
		return AccNormal, ""
	case "null":
		return AccNo, ""
	case "never":
		return AccNever, ""
	case "dynamic", "resolve":
		return AccResolve, ""
	default:
		if spec == "get" || spec == "set" {
			return AccCall, ""
		}
		return AccCall, spec
	}
}

// ClassField is a member or static field of a class, or a field of an
// anonymous type.
type ClassField struct {
	Name   string
	Type   Type
	Kind   FieldKind
	Params []*ParamDef
	Public bool
	Pos    token.Position
	Meta   []MetaEntry
	Expr   *TExpr // initializer or method body, when known
	Doc    string
}

// Accessor returns the accessor method name for the given side, applying
// the get_/set_ naming convention when the declaration used the short
// form.
func (f *ClassField) Accessor(write bool) string {
	if write {
		if f.Kind.WriteAccessor != "" {
			return f.Kind.WriteAccessor
		}
		return "set_" + f.Name
	}
	if f.Kind.ReadAccessor != "" {
		return f.Kind.ReadAccessor
	}
	return "get_" + f.Name
}

// ClassRef is a reference to a class with applied type parameters, used
// for super classes and implemented interfaces.
type ClassRef struct {
	Decl   *ClassDecl
	Params []Type
}

// ClassDecl is a class or interface declaration.
type ClassDecl struct {
	Path      Path
	Pos       token.Position
	Module    string
	Private   bool
	Extern    bool
	Interface bool

	Params      []*ParamDef
	Super       *ClassRef
	Interfaces  []*ClassRef
	Constructor *ClassField

	Fields      map[string]*ClassField
	FieldOrder  []string
	Statics     map[string]*ClassField
	StaticOrder []string

	Init *TExpr
	Meta []MetaEntry

	// ArrayAccess marks classes whose instances support subscripting
	// (the :arrayAccess metadata).
	ArrayAccess bool
}

func (c *ClassDecl) DeclPath() Path          { return c.Path }
func (c *ClassDecl) DeclPos() token.Position { return c.Pos }
func (c *ClassDecl) DeclModule() string      { return c.Module }
func (*ClassDecl) declNode()                 {}

// AddField appends a member field, keeping declaration order.
func (c *ClassDecl) AddField(f *ClassField) {
	if c.Fields == nil {
		c.Fields = map[string]*ClassField{}
	}
	c.Fields[f.Name] = f
	c.FieldOrder = append(c.FieldOrder, f.Name)
}

// AddStatic appends a static field, keeping declaration order.
func (c *ClassDecl) AddStatic(f *ClassField) {
	if c.Statics == nil {
		c.Statics = map[string]*ClassField{}
	}
	c.Statics[f.Name] = f
	c.StaticOrder = append(c.StaticOrder, f.Name)
}

// FieldByName looks up a member field walking the super chain. It returns
// the field, the class that declares it, and the substitution mapping the
// declaring class's parameters to the view from c instantiated with
// params.
func (c *ClassDecl) FieldByName(name string, params []Type) (*ClassField, *ClassDecl, []Type, bool) {
	cur := c
	curParams := params
	for cur != nil {
		if f, ok := cur.Fields[name]; ok {
			return f, cur, curParams, true
		}
		if cur.Super == nil {
			break
		}
		superParams := make([]Type, len(cur.Super.Params))
		for i, p := range cur.Super.Params {
			superParams[i] = ApplyParams(cur.Params, curParams, p)
		}
		cur, curParams = cur.Super.Decl, superParams
	}
	// Interfaces carry fields too (relevant for interface-typed receivers).
	if c.Interface {
		for _, iref := range c.Interfaces {
			iparams := make([]Type, len(iref.Params))
			for i, p := range iref.Params {
				iparams[i] = ApplyParams(c.Params, params, p)
			}
			if f, decl, dp, ok := iref.Decl.FieldByName(name, iparams); ok {
				return f, decl, dp, true
			}
		}
	}
	return nil, nil, nil, false
}

// IsParentOf reports whether c is p or appears in p's super chain.
func (c *ClassDecl) IsParentOf(p *ClassDecl) bool {
	for p != nil {
		if p == c {
			return true
		}
		if p.Super == nil {
			return false
		}
		p = p.Super.Decl
	}
	return false
}

// EnumCtor is one constructor of an enum declaration.
type EnumCtor struct {
	Name  string
	Index int
	Args  []FunArg
	Pos   token.Position
	Doc   string
}

// EnumDecl is an algebraic data type declaration.
type EnumDecl struct {
	Path    Path
	Pos     token.Position
	Module  string
	Private bool
	Extern  bool
	Params  []*ParamDef
	Constrs map[string]*EnumCtor
	Order   []string
	Meta    []MetaEntry
}

func (e *EnumDecl) DeclPath() Path          { return e.Path }
func (e *EnumDecl) DeclPos() token.Position { return e.Pos }
func (e *EnumDecl) DeclModule() string      { return e.Module }
func (*EnumDecl) declNode()                 {}

// AddCtor appends a constructor, assigning its index from declaration
// order.
func (e *EnumDecl) AddCtor(name string, args []FunArg) *EnumCtor {
	if e.Constrs == nil {
		e.Constrs = map[string]*EnumCtor{}
	}
	ctor := &EnumCtor{Name: name, Index: len(e.Order), Args: args}
	e.Constrs[name] = ctor
	e.Order = append(e.Order, name)
	return ctor
}

// CtorType is the type of referencing the constructor on an enum whose
// parameters are instantiated to params: a function type for constructors
// with arguments, the enum type itself otherwise.
func (e *EnumDecl) CtorType(ctor *EnumCtor, params []Type) Type {
	ret := EnumType{Decl: e, Params: params}
	if len(ctor.Args) == 0 {
		return ret
	}
	args := make([]FunArg, len(ctor.Args))
	for i, a := range ctor.Args {
		args[i] = FunArg{Name: a.Name, Opt: a.Opt, T: ApplyParams(e.Params, params, a.T)}
	}
	return Fun{Args: args, Ret: ret}
}

// DefDecl is a typedef declaration.
type DefDecl struct {
	Path    Path
	Pos     token.Position
	Module  string
	Private bool
	Params  []*ParamDef
	T       Type
	Meta    []MetaEntry
}

func (d *DefDecl) DeclPath() Path          { return d.Path }
func (d *DefDecl) DeclPos() token.Position { return d.Pos }
func (d *DefDecl) DeclModule() string      { return d.Module }
func (*DefDecl) declNode()                 {}

// Decl is any top-level type declaration.
type Decl interface {
	DeclPath() Path
	DeclPos() token.Position
	DeclModule() string
	declNode()
}

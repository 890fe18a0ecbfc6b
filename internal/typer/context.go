// Package typer implements the expression typer: access resolution,
// property elaboration, call matching, operator typing, match
// elaboration, using extensions, inline and macro dispatch, and the
// finalization walker.
package typer

import (
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/cinderlang/cinder/internal/ast"
	"github.com/cinderlang/cinder/internal/config"
	"github.com/cinderlang/cinder/internal/diagnostics"
	"github.com/cinderlang/cinder/internal/modules"
	"github.com/cinderlang/cinder/internal/token"
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

// AccessMode selects read-side vs write-side semantics of properties;
// ModeCall additionally authorizes macro dispatch.
type AccessMode int

const (
	ModeGet AccessMode = iota
	ModeSet
	ModeCall
)

// Optimizer is the stable interface the typer invokes optimization
// passes through. Implementations may decline any request.
type Optimizer interface {
	// ForLoop may specialize `for (v in it)` before the generic iterator
	// synthesis runs.
	ForLoop(t *Typer, varName string, iterated *ts.TExpr, body ast.Expression, pos token.Position) (*ts.TExpr, bool)
	// InlineCall may expand a call to an inline method in place.
	InlineCall(field *ts.ClassField, receiver *ts.TExpr, args []*ts.TExpr, ret ts.Type, pos token.Position) (*ts.TExpr, bool)
	// Reduce post-processes a typed expression.
	Reduce(e *ts.TExpr) *ts.TExpr
}

// NoOptimizer declines everything.
type NoOptimizer struct{}

func (NoOptimizer) ForLoop(*Typer, string, *ts.TExpr, ast.Expression, token.Position) (*ts.TExpr, bool) {
	return nil, false
}
func (NoOptimizer) InlineCall(*ts.ClassField, *ts.TExpr, []*ts.TExpr, ts.Type, token.Position) (*ts.TExpr, bool) {
	return nil, false
}
func (NoOptimizer) Reduce(e *ts.TExpr) *ts.TExpr { return e }

// Globals is the per-compilation shared state: module cache, delayed
// queue, macro handle, backend hooks and the resolved standard types.
type Globals struct {
	ID        uuid.UUID
	Options   *config.Options
	Loader    modules.Loader
	Reporter  *diagnostics.Reporter
	Optimizer Optimizer
	Interp    MacroInterp

	// DoInline gates inline expansion; cleared by no_inline.
	DoInline bool

	Std *modules.Std

	delayed    []func() error
	macroCtx   *Typer
	macroSlots []delayedMacro
	localID    int
}

// NewGlobals builds the globals for one compilation.
func NewGlobals(opts *config.Options, loader modules.Loader) *Globals {
	if opts == nil {
		opts = config.Default()
	}
	return &Globals{
		ID:        uuid.New(),
		Options:   opts,
		Loader:    loader,
		Reporter:  &diagnostics.Reporter{Out: os.Stderr},
		Optimizer: NoOptimizer{},
		DoInline:  !opts.NoInline,
	}
}

// Delay enqueues a closure drained by finalization. The queue is FIFO;
// closures may enqueue more.
func (g *Globals) Delay(f func() error) {
	g.delayed = append(g.delayed, f)
}

func (g *Globals) freshID() int {
	g.localID++
	return g.localID
}

// Basic type shorthands.

func (g *Globals) TInt() ts.Type    { return ts.Inst{Decl: g.Std.Int} }
func (g *Globals) TFloat() ts.Type  { return ts.Inst{Decl: g.Std.Float} }
func (g *Globals) TBool() ts.Type   { return ts.Inst{Decl: g.Std.Bool} }
func (g *Globals) TVoid() ts.Type   { return ts.Inst{Decl: g.Std.Void} }
func (g *Globals) TString() ts.Type { return ts.Inst{Decl: g.Std.String} }
func (g *Globals) TArray(elem ts.Type) ts.Type {
	return ts.Inst{Decl: g.Std.Array, Params: []ts.Type{elem}}
}

// NullOf applies the nullable-lift policy: Null(T) = T on reference
// backends, Null(T) = Nullable[T] on value-typed backends.
func (g *Globals) NullOf(t ts.Type) ts.Type {
	if g.Options.ValueBackend() {
		return ts.Nullable{Elem: t}
	}
	return t
}

// Typer is one typing context. A compilation has one; a macro call
// creates a sibling.
type Typer struct {
	g *Globals

	locals       map[string]ts.Type
	localsMap    map[string]string
	localsMapInv map[string]string
	localTypes   []ts.Decl
	localUsing   []*ts.ClassDecl
	typeParams   []*ts.ParamDef

	curClass  *ts.ClassDecl
	curMethod string
	tthis     ts.Type
	ret       ts.Type

	inStatic      bool
	inConstructor bool
	inLoop        bool
	inSuperCall   bool
	inDisplay     bool
	inMacro       bool
	untyped       bool

	opened    []*ts.AnonStatus
	paramType ts.Type
}

// NewContext bootstraps the root typing context: loads the std modules
// (StdTypes, String, Array, Iterator, IntIterator, PosInfos, Log) and
// binds the standard types.
func NewContext(g *Globals) (*Typer, error) {
	t := &Typer{
		g:            g,
		locals:       map[string]ts.Type{},
		localsMap:    map[string]string{},
		localsMapInv: map[string]string{},
		inMacro:      g.Options.Defined("macro"),
	}
	if g.Std == nil {
		for _, name := range []string{"StdTypes", "String", "Array", "Iterator", "IntIterator", "PosInfos", "Log"} {
			if _, err := g.Loader.LoadModule(ts.Path{Name: name}, token.Position{}); err != nil {
				return nil, fmt.Errorf("standard library: %w", err)
			}
		}
		reg, ok := g.Loader.(*modules.Registry)
		if !ok {
			return nil, fmt.Errorf("standard library: loader does not expose the std surface")
		}
		g.Std = stdFromRegistry(reg)
	}
	glog.V(1).Infof("[%s] context ready (backend=%s)", g.ID, g.Options.Backend)
	return t, nil
}

func stdFromRegistry(r *modules.Registry) *modules.Std {
	std := &modules.Std{}
	class := func(module, name string) *ts.ClassDecl {
		m, err := r.LoadModule(ts.Path{Name: module}, token.Position{})
		if err != nil {
			return nil
		}
		d, _ := m.Decl(name)
		c, _ := d.(*ts.ClassDecl)
		return c
	}
	def := func(module, name string) *ts.DefDecl {
		m, err := r.LoadModule(ts.Path{Name: module}, token.Position{})
		if err != nil {
			return nil
		}
		d, _ := m.Decl(name)
		t, _ := d.(*ts.DefDecl)
		return t
	}
	std.Int = class("StdTypes", "Int")
	std.Float = class("StdTypes", "Float")
	std.Bool = class("StdTypes", "Bool")
	std.Void = class("StdTypes", "Void")
	std.String = class("String", "String")
	std.Array = class("Array", "Array")
	std.Iterator = def("Iterator", "Iterator")
	std.IntIterator = class("IntIterator", "IntIterator")
	std.PosInfos = def("PosInfos", "PosInfos")
	std.Log = class("Log", "Log")
	return std
}

// Globals exposes the compilation-wide state.
func (t *Typer) Globals() *Globals { return t.g }

// Import makes a type declaration visible for bare-name lookup.
func (t *Typer) Import(d ts.Decl) {
	t.localTypes = append(t.localTypes, d)
}

// Use registers a using-extension candidate. Order is declaration order
// and is significant: first match wins.
func (t *Typer) Use(c *ts.ClassDecl) {
	t.localUsing = append(t.localUsing, c)
}

// EnterMethod positions the context inside a class method. It is the
// declaration-typing side's entry point and is used heavily by tests.
func (t *Typer) EnterMethod(c *ts.ClassDecl, method string, static bool) {
	t.curClass = c
	t.curMethod = method
	t.inStatic = static
	t.inConstructor = method == "new"
	t.typeParams = c.Params
	t.tthis = ts.Inst{Decl: c, Params: identityParams(c.Params)}
}

func identityParams(defs []*ts.ParamDef) []ts.Type {
	out := make([]ts.Type, len(defs))
	for i, d := range defs {
		out[i] = ts.ParamType{Def: d}
	}
	return out
}

// intern normalizes an identifier arriving from the external parser.
func intern(name string) string {
	return norm.NFC.String(name)
}

// saveLocals snapshots the scope; the returned closure restores it and
// closes anonymous statuses opened inside the scope.
func (t *Typer) saveLocals() func() {
	oldLocals := make(map[string]ts.Type, len(t.locals))
	for k, v := range t.locals {
		oldLocals[k] = v
	}
	oldMap := make(map[string]string, len(t.localsMap))
	for k, v := range t.localsMap {
		oldMap[k] = v
	}
	oldInv := make(map[string]string, len(t.localsMapInv))
	for k, v := range t.localsMapInv {
		oldInv[k] = v
	}
	openedDepth := len(t.opened)
	return func() {
		t.locals, t.localsMap, t.localsMapInv = oldLocals, oldMap, oldInv
		for _, st := range t.opened[openedDepth:] {
			if st.Kind == ts.AnonOpened {
				st.Kind = ts.AnonClosed
			}
		}
		t.opened = t.opened[:openedDepth]
	}
}

// declareLocal introduces a local, renaming on shadowing so the emitted
// tree has unique names.
func (t *Typer) declareLocal(name string, typ ts.Type) string {
	name = intern(name)
	actual := name
	if _, shadowed := t.locals[name]; shadowed {
		actual = fmt.Sprintf("%s_%d", name, t.g.freshID())
		t.localsMap[name] = actual
		t.localsMapInv[actual] = name
	} else if prev, ok := t.localsMap[name]; ok {
		delete(t.localsMapInv, prev)
		delete(t.localsMap, name)
	}
	t.locals[actual] = typ
	return actual
}

// lookupLocal resolves a source-level name through the renaming pair.
func (t *Typer) lookupLocal(name string) (string, ts.Type, bool) {
	if actual, ok := t.localsMap[name]; ok {
		typ, ok := t.locals[actual]
		return actual, typ, ok
	}
	typ, ok := t.locals[name]
	return name, typ, ok
}

// freshLocal allocates a compiler temporary of the given type.
func (t *Typer) freshLocal(base string, typ ts.Type) string {
	name := fmt.Sprintf("%s%d", base, t.g.freshID())
	t.locals[name] = typ
	return name
}

// classParams returns the identity instantiation of the current class.
func (t *Typer) classParams() []ts.Type {
	if t.curClass == nil {
		return nil
	}
	return identityParams(t.curClass.Params)
}

func mk(e ts.TypedExpr, typ ts.Type, pos token.Position) *ts.TExpr {
	return &ts.TExpr{Expr: e, T: typ, Pos: pos}
}

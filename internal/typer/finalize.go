package typer

import (
	"github.com/golang/glog"

	"github.com/cinderlang/cinder/internal/diagnostics"
	"github.com/cinderlang/cinder/internal/modules"
	"github.com/cinderlang/cinder/internal/token"
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

// Finalize drains the delayed-closure queue to its fixpoint. Each closure
// may enqueue more; running Finalize on a drained context is a no-op.
func (t *Typer) Finalize() {
	n := 0
	for len(t.g.delayed) > 0 {
		f := t.g.delayed[0]
		t.g.delayed = t.g.delayed[1:]
		n++
		if err := f(); err != nil {
			if diagnostics.IsSignal(err) {
				continue
			}
			t.g.Reporter.Report(err)
		}
	}
	if n > 0 {
		glog.V(1).Infof("[%s] finalize: drained %d delayed closures", t.g.ID, n)
	}
}

type genState int

const (
	genNotYet genState = iota
	genGenerating
	genDone
)

type genWalker struct {
	t       *Typer
	state   map[ts.Decl]genState
	statics map[*ts.ClassField]bool
	out     []ts.Decl
	mods    []*modules.Module
	modSeen map[string]bool
}

// Generate walks the types reachable through supers, interfaces, static
// initializers and typed-expression references, producing the ordered
// declaration and module lists the backends consume. Types in excludes
// are marked extern with their static initializer dropped. When main is
// set, a synthetic @Main class whose initializer calls main.main() is
// appended as the last type.
func (t *Typer) Generate(main string, excludes []ts.Path) ([]ts.Decl, []*modules.Module, error) {
	w := &genWalker{
		t:       t,
		state:   map[ts.Decl]genState{},
		statics: map[*ts.ClassField]bool{},
		modSeen: map[string]bool{},
	}

	for _, path := range excludes {
		d, err := t.g.Loader.LoadType(path, token.Position{})
		if err != nil {
			return nil, nil, diagnostics.Errorf(diagnostics.ErrT002, token.Position{}, "module not found : %s", path)
		}
		if c, ok := d.(*ts.ClassDecl); ok {
			c.Extern = true
			c.Init = nil
		}
	}

	if reg, ok := t.g.Loader.(*modules.Registry); ok {
		for _, m := range reg.Modules() {
			for _, d := range m.Decls {
				w.walkDecl(d)
			}
		}
	}

	if main != "" {
		mainDecl, err := t.buildMain(main)
		if err != nil {
			return nil, nil, err
		}
		w.walkDecl(mainDecl)
		// @Main must come last whatever the walk order did.
		for i, d := range w.out {
			if d == ts.Decl(mainDecl) {
				w.out = append(w.out[:i], w.out[i+1:]...)
				break
			}
		}
		w.out = append(w.out, mainDecl)
	}

	glog.V(1).Infof("[%s] generate: %d types, %d modules", t.g.ID, len(w.out), len(w.mods))
	return w.out, w.mods, nil
}

// buildMain synthesizes the @Main class with init = main.main().
func (t *Typer) buildMain(main string) (*ts.ClassDecl, error) {
	d, err := t.g.Loader.LoadType(ts.Path{Name: main}, token.Position{})
	if err != nil {
		return nil, diagnostics.Errorf(diagnostics.ErrT002, token.Position{}, "module not found : %s", main)
	}
	cls, ok := d.(*ts.ClassDecl)
	if !ok {
		return nil, diagnostics.Errorf(diagnostics.ErrT004, token.Position{}, "%s is not a class", main)
	}
	f, ok := cls.Statics["main"]
	if !ok {
		return nil, diagnostics.Errorf(diagnostics.ErrT004, token.Position{}, "%s does not define static main", main)
	}
	ret := ts.Type(ts.Dyn{})
	if fun, ok := ts.Follow(f.Type).(ts.Fun); ok {
		ret = fun.Ret
	}
	recv := mk(ts.TTypeExpr{Decl: cls}, t.staticsType(cls), token.Position{})
	callee := mk(ts.TField{Receiver: recv, Name: "main", Field: f, Class: cls, Static: true}, f.Type, token.Position{})
	init := mk(ts.TCall{Callee: callee}, ret, token.Position{})
	return &ts.ClassDecl{Path: ts.Path{Name: "@Main"}, Module: "@Main", Init: init}, nil
}

func (w *genWalker) walkDecl(d ts.Decl) {
	if d == nil {
		return
	}
	switch w.state[d] {
	case genGenerating:
		// Mutually referencing static initializers; report, don't abort.
		w.t.g.Reporter.Warnf("maybe loop in static generation of %s", d.DeclPath())
		return
	case genDone:
		return
	}
	w.state[d] = genGenerating

	if c, ok := d.(*ts.ClassDecl); ok {
		if c.Super != nil {
			w.walkDecl(c.Super.Decl)
		}
		for _, iref := range c.Interfaces {
			w.walkDecl(iref.Decl)
		}
		if !c.Extern {
			w.walkExpr(c.Init)
		}
		if c.Constructor != nil {
			w.walkExpr(c.Constructor.Expr)
		}
		for _, name := range c.FieldOrder {
			w.walkExpr(c.Fields[name].Expr)
		}
		for _, name := range c.StaticOrder {
			f := c.Statics[name]
			if w.statics[f] {
				continue
			}
			w.statics[f] = true
			w.walkExpr(f.Expr)
		}
	}

	w.state[d] = genDone
	w.out = append(w.out, d)
	w.recordModule(d.DeclModule())
}

func (w *genWalker) recordModule(name string) {
	if name == "" || w.modSeen[name] {
		return
	}
	w.modSeen[name] = true
	if reg, ok := w.t.g.Loader.(*modules.Registry); ok {
		if m, err := reg.LoadModule(ts.Path{Name: name}, token.Position{}); err == nil {
			w.mods = append(w.mods, m)
		}
	}
}

func (w *genWalker) walkExpr(e *ts.TExpr) {
	if e == nil {
		return
	}
	switch x := e.Expr.(type) {
	case ts.TTypeExpr:
		w.walkDecl(x.Decl)
	case ts.TNew:
		w.walkDecl(x.Class)
	case ts.TMatch:
		w.walkDecl(x.Enum)
	case ts.TEnumField:
		w.walkDecl(x.Enum)
	case ts.TField:
		if x.Static && x.Class != nil {
			w.walkDecl(x.Class)
		}
	}
	ts.Iter(e, w.walkExpr)
}

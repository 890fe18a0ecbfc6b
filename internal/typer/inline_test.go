package typer

import (
	"testing"

	"github.com/cinderlang/cinder/internal/config"
	"github.com/cinderlang/cinder/internal/token"
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

func inlineClass(env *testEnv) *ts.ClassDecl {
	g := env.typer.g
	c := &ts.ClassDecl{Path: ts.Path{Name: "M"}}
	c.AddField(&ts.ClassField{
		Name:   "double",
		Type:   ts.Fun{Args: []ts.FunArg{{Name: "x", T: g.TInt()}}, Ret: g.TInt()},
		Kind:   ts.MethodFieldKind(ts.MethInline),
		Public: true,
	})
	env.registerClass(c)
	return c
}

// Reading an inline method without calling lowers to an explicit closure
// of the declared type, not to an inline expansion.
func TestInlineMethodReadLowersToClosure(t *testing.T) {
	env := newTestEnv(t, nil)
	c := inlineClass(env)
	env.declareVar("m", ts.Inst{Decl: c})

	te := env.mustType(member(id("m"), "double"))
	fe, ok := te.Expr.(ts.TField)
	if !ok || !fe.Closure {
		t.Fatalf("expected closure node, got %#v", te.Expr)
	}
	if typeName(te.T) != "(x: Int) -> Int" {
		t.Errorf("closure type: got %s", te.T)
	}
}

// With the default optimizer declining, an inline call degrades to a
// regular method call.
func TestInlineCallFallsBackToCall(t *testing.T) {
	env := newTestEnv(t, nil)
	c := inlineClass(env)
	env.declareVar("m", ts.Inst{Decl: c})

	te := env.mustType(call(member(id("m"), "double"), num(2)))
	if _, ok := te.Expr.(ts.TCall); !ok {
		t.Fatalf("expected call, got %#v", te.Expr)
	}
	if typeName(te.T) != "Int" {
		t.Errorf("got %s", te.T)
	}
}

func TestNoInlineDegradesToNormalMethod(t *testing.T) {
	opts := config.Default()
	opts.NoInline = true
	env := newTestEnv(t, opts)
	c := inlineClass(env)
	env.declareVar("m", ts.Inst{Decl: c})

	// Read still yields a closure, but through the normal-method path.
	te := env.mustType(member(id("m"), "double"))
	fe, ok := te.Expr.(ts.TField)
	if !ok || !fe.Closure {
		t.Fatalf("expected closure node, got %#v", te.Expr)
	}
}

// An inline variable clones its stored expression, rewriting positions to
// the read site.
func TestInlineVariableClonesStoredExpr(t *testing.T) {
	env := newTestEnv(t, nil)
	g := env.typer.g
	storedPos := token.Position{File: "defs.cn", Line: 40, Column: 2}
	c := &ts.ClassDecl{Path: ts.Path{Name: "K"}}
	c.AddStatic(&ts.ClassField{
		Name:   "limit",
		Type:   g.TInt(),
		Kind:   ts.FieldKind{Read: ts.AccInline, Write: ts.AccNever},
		Public: true,
		Expr:   &ts.TExpr{Expr: ts.TConst{C: ts.Constant{Kind: ts.ConstInt, Int: 64}}, T: g.TInt(), Pos: storedPos},
	})
	env.registerClass(c)

	te := env.mustType(member(id("K"), "limit"))
	cst, ok := te.Expr.(ts.TConst)
	if !ok || cst.C.Int != 64 {
		t.Fatalf("expected cloned constant, got %#v", te.Expr)
	}
	if te.Pos.File != "test.cn" {
		t.Errorf("position must be rewritten to the read site, got %s", te.Pos)
	}
}

func TestInlineMethodNotAssignable(t *testing.T) {
	env := newTestEnv(t, nil)
	c := inlineClass(env)
	env.declareVar("m", ts.Inst{Decl: c})
	if _, err := env.typer.TypeExpr(binop("=", member(id("m"), "double"), num(1))); err == nil {
		t.Fatalf("assigning to an inline method must fail")
	}
}

package typer

import (
	"testing"

	"github.com/cinderlang/cinder/internal/diagnostics"
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

func toolsClass(env *testEnv, name string, ret ts.Type) *ts.ClassDecl {
	g := env.typer.g
	c := &ts.ClassDecl{Path: ts.Path{Name: name}}
	c.AddStatic(&ts.ClassField{
		Name:   "len",
		Type:   ts.Fun{Args: []ts.FunArg{{Name: "s", T: g.TString()}}, Ret: ret},
		Kind:   ts.MethodFieldKind(ts.MethNormal),
		Public: true,
	})
	env.registerClass(c)
	return c
}

func TestUsingExtensionCall(t *testing.T) {
	env := newTestEnv(t, nil)
	tools := toolsClass(env, "Tools", env.typer.g.TInt())
	env.typer.Use(tools)

	te := env.mustType(call(member(str("abc"), "len")))
	callExpr, ok := te.Expr.(ts.TCall)
	if !ok {
		t.Fatalf("expected call, got %#v", te.Expr)
	}
	fe, ok := callExpr.Callee.Expr.(ts.TField)
	if !ok || !fe.Static || fe.Class != tools {
		t.Fatalf("callee must be Tools.len, got %#v", callExpr.Callee.Expr)
	}
	if len(callExpr.Args) != 1 {
		t.Fatalf("receiver must be pre-bound as first argument, got %d args", len(callExpr.Args))
	}
	if typeName(te.T) != "Int" {
		t.Errorf("got %s", te.T)
	}
}

func TestUsingRequiresDeclaration(t *testing.T) {
	env := newTestEnv(t, nil)
	toolsClass(env, "Tools", env.typer.g.TInt()) // registered but not used
	env.expectError(call(member(str("abc"), "len")), diagnostics.ErrT001)
}

func TestUsingFirstMatchWins(t *testing.T) {
	env := newTestEnv(t, nil)
	first := toolsClass(env, "First", env.typer.g.TInt())
	second := toolsClass(env, "Second", env.typer.g.TString())
	env.typer.Use(first)
	env.typer.Use(second)

	te := env.mustType(call(member(str("abc"), "len")))
	fe := te.Expr.(ts.TCall).Callee.Expr.(ts.TField)
	if fe.Class != first {
		t.Errorf("declaration order must win, got %s", fe.Class.Path)
	}
}

func TestUsingFirstParamMustMatch(t *testing.T) {
	env := newTestEnv(t, nil)
	tools := toolsClass(env, "Tools", env.typer.g.TInt())
	env.typer.Use(tools)
	env.declareVar("n", env.typer.g.TInt())
	env.expectError(call(member(id("n"), "len")), diagnostics.ErrT001)
}

// Reading a using extension without calling it eta-expands, preserving
// curry semantics.
func TestUsingReadEtaExpands(t *testing.T) {
	env := newTestEnv(t, nil)
	tools := toolsClass(env, "Tools", env.typer.g.TInt())
	env.typer.Use(tools)

	te := env.mustType(member(str("abc"), "len"))
	if typeName(te.T) != "() -> Int" {
		t.Fatalf("eta expansion type: got %s", te.T)
	}
	outer, ok := te.Expr.(ts.TCall)
	if !ok {
		t.Fatalf("expected applied closure, got %#v", te.Expr)
	}
	if _, ok := outer.Callee.Expr.(ts.TFunction); !ok {
		t.Fatalf("expected synthesized function, got %#v", outer.Callee.Expr)
	}
}

func TestUsingNeverInWritePosition(t *testing.T) {
	env := newTestEnv(t, nil)
	tools := toolsClass(env, "Tools", env.typer.g.TInt())
	env.typer.Use(tools)
	env.expectError(binop("=", member(str("abc"), "len"), num(1)), diagnostics.ErrT001)
}

package typer

import (
	"strings"
	"testing"

	"github.com/cinderlang/cinder/internal/config"
	"github.com/cinderlang/cinder/internal/diagnostics"
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

// declareSkipFun introduces a local of function type: f(a: Int, ?b: String, c: Int) -> Int.
func declareSkipFun(env *testEnv) {
	g := env.typer.g
	env.declareVar("f", ts.Fun{
		Args: []ts.FunArg{
			{Name: "a", T: g.TInt()},
			{Name: "b", Opt: true, T: g.TString()},
			{Name: "c", T: g.TInt()},
		},
		Ret: g.TInt(),
	})
}

func TestOptionalArgumentSkip(t *testing.T) {
	env := newTestEnv(t, nil)
	declareSkipFun(env)

	te := env.mustType(call(id("f"), num(1), num(3)))
	callExpr := te.Expr.(ts.TCall)
	if len(callExpr.Args) != 3 {
		t.Fatalf("expected elaborated f(1, null, 3), got %d args", len(callExpr.Args))
	}
	if !isNullConst(callExpr.Args[1]) {
		t.Errorf("skipped optional must become a typed null, got %#v", callExpr.Args[1].Expr)
	}
	if typeName(callExpr.Args[1].T) != "String" {
		t.Errorf("synthesized null must carry the formal type, got %s", callExpr.Args[1].T)
	}
}

func TestNotEnoughArguments(t *testing.T) {
	env := newTestEnv(t, nil)
	declareSkipFun(env)

	de := env.expectError(call(id("f"), num(1), str("x")), diagnostics.ErrT005)
	if !strings.Contains(strings.ToLower(de.Message), "not enough") {
		t.Errorf("got %q", de.Message)
	}
}

func TestTooManyArguments(t *testing.T) {
	env := newTestEnv(t, nil)
	env.declareVar("g", ts.Fun{Args: []ts.FunArg{{Name: "a", T: env.typer.g.TInt()}}, Ret: env.typer.g.TInt()})
	env.expectError(call(id("g"), num(1), num(2)), diagnostics.ErrT005)
}

func TestSingleSkipSurfacesUnifyError(t *testing.T) {
	env := newTestEnv(t, nil)
	g := env.typer.g
	// h(?a: String) called with an Int: the one recorded skip is surfaced
	// instead of a generic arity error.
	env.declareVar("h", ts.Fun{Args: []ts.FunArg{{Name: "a", Opt: true, T: g.TString()}}, Ret: g.TInt()})
	de := env.expectError(call(id("h"), num(1)), diagnostics.ErrT003)
	if !strings.Contains(de.Message, "a") {
		t.Errorf("skip error must name the argument, got %q", de.Message)
	}
}

func TestPosInfosSynthesis(t *testing.T) {
	env := newTestEnv(t, nil)
	te := env.mustType(call(id("trace"), str("hi")))
	callExpr, ok := te.Expr.(ts.TCall)
	if !ok {
		t.Fatalf("expected Log.trace call, got %#v", te.Expr)
	}
	if len(callExpr.Args) != 2 {
		t.Fatalf("trace must get its position infos, got %d args", len(callExpr.Args))
	}
	obj, ok := callExpr.Args[1].Expr.(ts.TObjectDecl)
	if !ok {
		t.Fatalf("expected synthesized position record, got %#v", callExpr.Args[1].Expr)
	}
	found := map[string]bool{}
	for _, f := range obj.Fields {
		found[f.Name] = true
	}
	for _, want := range []string{"fileName", "lineNumber", "className", "methodName"} {
		if !found[want] {
			t.Errorf("missing %s in synthesized infos", want)
		}
	}
}

func TestNoTraces(t *testing.T) {
	opts := config.Default()
	opts.NoTraces = true
	env := newTestEnv(t, opts)
	te := env.mustType(call(id("trace"), str("hi")))
	if !isNullConst(te) {
		t.Fatalf("no_traces must replace trace with null, got %#v", te.Expr)
	}
	if typeName(te.T) != "Void" {
		t.Errorf("trace null must be Void, got %s", te.T)
	}
}

// Backends that cannot represent null arguments drop trailing optional
// nulls; interior nulls stay.
func TestOptionalTailTrimming(t *testing.T) {
	opts := config.Default()
	opts.Backend = "flash"
	env := newTestEnv(t, opts)
	g := env.typer.g
	env.declareVar("f", ts.Fun{
		Args: []ts.FunArg{
			{Name: "a", T: g.TInt()},
			{Name: "b", Opt: true, T: g.TString()},
			{Name: "c", Opt: true, T: g.TString()},
		},
		Ret: g.TInt(),
	})

	te := env.mustType(call(id("f"), num(1)))
	callExpr := te.Expr.(ts.TCall)
	if len(callExpr.Args) != 1 {
		t.Fatalf("trailing optional nulls must be trimmed, got %d args", len(callExpr.Args))
	}

	te = env.mustType(call(id("f"), num(1), id("null"), str("x")))
	callExpr = te.Expr.(ts.TCall)
	if len(callExpr.Args) != 3 {
		t.Fatalf("interior null must be kept, got %d args", len(callExpr.Args))
	}
}

// A function literal passed as an argument picks up its parameter types
// from the formal's type.
func TestFunctionLiteralContextualTyping(t *testing.T) {
	env := newTestEnv(t, nil)
	g := env.typer.g
	env.declareVar("each", ts.Fun{
		Args: []ts.FunArg{{
			Name: "f",
			T:    ts.Fun{Args: []ts.FunArg{{Name: "x", T: g.TInt()}}, Ret: g.TVoid()},
		}},
		Ret: g.TVoid(),
	})

	lambda := lambda1("x", binop("+", id("x"), num(1)))
	te := env.mustType(call(id("each"), lambda))
	callExpr := te.Expr.(ts.TCall)
	fn, ok := callExpr.Args[0].Expr.(ts.TFunction)
	if !ok {
		t.Fatalf("expected lambda, got %#v", callExpr.Args[0].Expr)
	}
	if typeName(fn.Args[0].T) != "Int" {
		t.Errorf("lambda argument must pick up Int from context, got %s", fn.Args[0].T)
	}
}

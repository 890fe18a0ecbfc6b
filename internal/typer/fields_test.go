package typer

import (
	"testing"

	"github.com/cinderlang/cinder/internal/ast"
	"github.com/cinderlang/cinder/internal/config"
	"github.com/cinderlang/cinder/internal/diagnostics"
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

// countLocalRefs counts references to a local name in a typed tree.
func countLocalRefs(e *ts.TExpr, name string) int {
	n := 0
	var walk func(x *ts.TExpr)
	walk = func(x *ts.TExpr) {
		if l, ok := x.Expr.(ts.TLocal); ok && l.Name == name {
			n++
		}
		ts.Iter(x, walk)
	}
	walk(e)
	return n
}

// Compound assignment through a property setter must evaluate the
// receiver exactly once: {let v = obj; v.set_x(v.get_x() + 1)}.
func TestPropertyCompoundAssign(t *testing.T) {
	env := newTestEnv(t, nil)
	c := propClass(env)
	env.declareVar("obj", ts.Inst{Decl: c})

	te := env.mustType(binop("+=", member(id("obj"), "x"), num(1)))

	blockExpr, ok := te.Expr.(ts.TBlock)
	if !ok {
		t.Fatalf("expected a block, got %#v", te.Expr)
	}
	if len(blockExpr.Exprs) != 2 {
		t.Fatalf("expected {decl; setter}, got %d statements", len(blockExpr.Exprs))
	}
	decl, ok := blockExpr.Exprs[0].Expr.(ts.TVars)
	if !ok || len(decl.Vars) != 1 {
		t.Fatalf("expected the receiver temp declaration, got %#v", blockExpr.Exprs[0].Expr)
	}
	if countLocalRefs(te, "obj") != 1 {
		t.Errorf("receiver must be evaluated exactly once, found %d references", countLocalRefs(te, "obj"))
	}
	setter, ok := blockExpr.Exprs[1].Expr.(ts.TCall)
	if !ok {
		t.Fatalf("expected the setter call, got %#v", blockExpr.Exprs[1].Expr)
	}
	sf, ok := setter.Callee.Expr.(ts.TField)
	if !ok || sf.Name != "set_x" {
		t.Fatalf("expected set_x callee, got %#v", setter.Callee.Expr)
	}
	if len(setter.Args) != 1 {
		t.Fatalf("setter takes the computed value, got %d args", len(setter.Args))
	}
	if _, ok := setter.Args[0].Expr.(ts.TBinop); !ok {
		t.Errorf("setter argument must be the computed operator value, got %#v", setter.Args[0].Expr)
	}
}

func TestPostfixIncrementOnProperty(t *testing.T) {
	env := newTestEnv(t, nil)
	c := propClass(env)
	env.declareVar("obj", ts.Inst{Decl: c})

	te := env.mustType(&ast.UnaryExpression{Token: tok("++"), Op: "++", Prefix: false, Operand: member(id("obj"), "x")})
	blockExpr, ok := te.Expr.(ts.TBlock)
	if !ok {
		t.Fatalf("expected a block, got %#v", te.Expr)
	}
	// {let v = obj; let cur = v.get_x(); v.set_x(cur + 1); cur}
	if len(blockExpr.Exprs) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(blockExpr.Exprs))
	}
	if countLocalRefs(te, "obj") != 1 {
		t.Errorf("receiver must be evaluated exactly once")
	}
	if typeName(te.T) != "Int" {
		t.Errorf("postfix value type: got %s", te.T)
	}
}

func TestMethodReadYieldsClosure(t *testing.T) {
	env := newTestEnv(t, nil)
	c := propClass(env)
	env.declareVar("obj", ts.Inst{Decl: c})

	te := env.mustType(member(id("obj"), "get_x"))
	fe, ok := te.Expr.(ts.TField)
	if !ok || !fe.Closure {
		t.Fatalf("reading a method must produce a closure node, got %#v", te.Expr)
	}
	if typeName(te.T) != "() -> Int" {
		t.Errorf("closure type: got %s", te.T)
	}
}

func TestReadOnlyFunctionFieldYieldsClosure(t *testing.T) {
	env := newTestEnv(t, nil)
	c := &ts.ClassDecl{Path: ts.Path{Name: "H"}}
	c.AddField(&ts.ClassField{
		Name:   "handler",
		Type:   ts.Fun{Ret: env.typer.g.TVoid()},
		Kind:   ts.FieldKind{Read: ts.AccNormal, Write: ts.AccNever},
		Public: true,
	})
	env.registerClass(c)
	env.declareVar("h", ts.Inst{Decl: c})

	te := env.mustType(member(id("h"), "handler"))
	fe, ok := te.Expr.(ts.TField)
	if !ok || !fe.Closure {
		t.Fatalf("read-only function field must read as a closure, got %#v", te.Expr)
	}
}

func TestAccNeverWriteRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	c := &ts.ClassDecl{Path: ts.Path{Name: "R"}}
	c.AddField(&ts.ClassField{
		Name:   "ro",
		Type:   env.typer.g.TInt(),
		Kind:   ts.FieldKind{Read: ts.AccNormal, Write: ts.AccNever},
		Public: true,
	})
	env.registerClass(c)
	env.declareVar("r", ts.Inst{Decl: c})

	env.expectError(binop("=", member(id("r"), "ro"), num(1)), diagnostics.ErrT006)
}

func TestAccNoVisibleInsideHierarchyOnly(t *testing.T) {
	env := newTestEnv(t, nil)
	c := &ts.ClassDecl{Path: ts.Path{Name: "P"}}
	c.AddField(&ts.ClassField{
		Name:   "guarded",
		Type:   env.typer.g.TInt(),
		Kind:   ts.FieldKind{Read: ts.AccNo, Write: ts.AccNo},
		Public: true,
	})
	env.registerClass(c)
	env.declareVar("p", ts.Inst{Decl: c})

	env.expectError(member(id("p"), "guarded"), diagnostics.ErrT006)

	env.typer.EnterMethod(c, "f", false)
	te := env.mustType(member(id("p"), "guarded"))
	if _, ok := te.Expr.(ts.TField); !ok {
		t.Fatalf("hierarchy access must read directly, got %#v", te.Expr)
	}
}

// Inside the accessor of a property, the raw slot is accessed directly;
// on flash9 the backend prefix disambiguates it.
func TestSelfAccessorException(t *testing.T) {
	opts := config.Default()
	opts.Backend = "flash9"
	env := newTestEnv(t, opts)
	c := propClass(env)
	env.typer.EnterMethod(c, "get_x", false)

	te := env.mustType(id("x"))
	fe, ok := te.Expr.(ts.TField)
	if !ok {
		t.Fatalf("self accessor must read the raw slot, got %#v", te.Expr)
	}
	if fe.Name != "$x" {
		t.Errorf("raw slot must carry the backend prefix, got %q", fe.Name)
	}
}

func TestOpenedAnonAccumulates(t *testing.T) {
	env := newTestEnv(t, nil)
	m := ts.NewMono()
	env.declareVar("o", m)

	env.mustType(member(id("o"), "a"))
	env.mustType(member(id("o"), "b"))

	anon, ok := ts.Follow(m).(ts.Anon)
	if !ok {
		t.Fatalf("receiver monomorph must be bound to an anon, got %s", ts.Follow(m))
	}
	if _, ok := anon.Fields["a"]; !ok {
		t.Errorf("field a was not accumulated")
	}
	if _, ok := anon.Fields["b"]; !ok {
		t.Errorf("field b was not accumulated")
	}
	if anon.Status.Kind != ts.AnonOpened {
		t.Errorf("anon must stay opened until scope exit")
	}
}

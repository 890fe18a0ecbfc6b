package typer

import (
	"testing"

	"github.com/cinderlang/cinder/internal/ast"
	"github.com/cinderlang/cinder/internal/diagnostics"
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

func forIn(name string, it, body ast.Expression) *ast.ForExpression {
	return &ast.ForExpression{Token: tok("for"), VarName: id(name), Iterated: it, Body: body}
}

func TestForOverArraySynthesizesIterator(t *testing.T) {
	env := newTestEnv(t, nil)
	env.declareVar("xs", env.typer.g.TArray(env.typer.g.TInt()))

	te := env.mustType(forIn("x", id("xs"), block(binop("+", id("x"), num(1)))))
	f, ok := te.Expr.(ts.TFor)
	if !ok {
		t.Fatalf("expected for, got %#v", te.Expr)
	}
	if typeName(f.VarType) != "Int" {
		t.Errorf("loop variable must have the element type, got %s", f.VarType)
	}
	callExpr, ok := f.Iterated.Expr.(ts.TCall)
	if !ok {
		t.Fatalf("iterator() call must be synthesized, got %#v", f.Iterated.Expr)
	}
	fe, ok := callExpr.Callee.Expr.(ts.TField)
	if !ok || fe.Name != "iterator" {
		t.Fatalf("expected iterator callee, got %#v", callExpr.Callee.Expr)
	}
}

func TestForOverRange(t *testing.T) {
	env := newTestEnv(t, nil)
	te := env.mustType(forIn("i", binop("...", num(0), num(3)), block(id("i"))))
	f := te.Expr.(ts.TFor)
	if typeName(f.VarType) != "Int" {
		t.Errorf("range loop variable must be Int, got %s", f.VarType)
	}
	if _, ok := f.Iterated.Expr.(ts.TNew); !ok {
		t.Errorf("range must iterate the iterator instance, got %#v", f.Iterated.Expr)
	}
}

func TestForOverNonIterable(t *testing.T) {
	env := newTestEnv(t, nil)
	env.declareVar("n", env.typer.g.TInt())
	env.expectError(forIn("x", id("n"), block(num(1))), diagnostics.ErrT003)
}

func TestBreakInsideLoopOnly(t *testing.T) {
	env := newTestEnv(t, nil)
	env.expectError(&ast.BreakExpression{Token: tok("break")}, diagnostics.ErrT004)
	env.declareVar("xs", env.typer.g.TArray(env.typer.g.TInt()))
	env.mustType(forIn("x", id("xs"), block(&ast.BreakExpression{Token: tok("break")})))
}

func TestLoopVariableScoped(t *testing.T) {
	env := newTestEnv(t, nil)
	env.declareVar("xs", env.typer.g.TArray(env.typer.g.TInt()))
	env.mustType(forIn("x", id("xs"), block(id("x"))))
	env.expectError(id("x"), diagnostics.ErrT001)
}

func TestWhileConditionMustBeBool(t *testing.T) {
	env := newTestEnv(t, nil)
	we := &ast.WhileExpression{Token: tok("while"), Cond: num(1), Body: block()}
	env.expectError(we, diagnostics.ErrT003)
}

func TestCatchParameterizedClassRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	tryE := &ast.TryExpression{
		Token: tok("try"),
		Body:  block(num(1)),
		Catches: []*ast.CatchClause{{
			Name:     id("e"),
			TypeHint: &ast.NamedType{Name: "Array", Params: []ast.Type{&ast.NamedType{Name: "Int"}}},
			Body:     block(num(2)),
		}},
	}
	env.expectError(tryE, diagnostics.ErrT004)

	okTry := &ast.TryExpression{
		Token: tok("try"),
		Body:  block(num(1)),
		Catches: []*ast.CatchClause{{
			Name:     id("e"),
			TypeHint: &ast.NamedType{Name: "Array", Params: []ast.Type{&ast.NamedType{Name: "Dynamic"}}},
			Body:     block(num(2)),
		}},
	}
	env.mustType(okTry)
}

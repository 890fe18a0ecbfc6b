package typer

import (
	"strings"
	"testing"

	"github.com/cinderlang/cinder/internal/ast"
	"github.com/cinderlang/cinder/internal/diagnostics"
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

func switchOn(subject ast.Expression, def ast.Expression, cases ...*ast.SwitchCase) *ast.SwitchExpression {
	return &ast.SwitchExpression{Token: tok("switch"), Subject: subject, Cases: cases, Default: def}
}

func arm(body ast.Expression, patterns ...ast.Expression) *ast.SwitchCase {
	return &ast.SwitchCase{Patterns: patterns, Body: body}
}

func TestEnumMatchExhaustive(t *testing.T) {
	env := newTestEnv(t, nil)
	en := optionEnum()
	env.registerEnum(en)
	env.declareVar("opt", ts.EnumType{Decl: en, Params: []ts.Type{env.typer.g.TInt()}})

	te := env.mustType(switchOn(id("opt"), nil,
		arm(id("v"), call(id("Some"), id("v"))),
		arm(num(0), id("None")),
	))
	m, ok := te.Expr.(ts.TMatch)
	if !ok {
		t.Fatalf("expected an enum match, got %#v", te.Expr)
	}
	if m.Enum != en {
		t.Errorf("wrong enum")
	}
	if typeName(te.T) != "Int" {
		t.Errorf("match over Option<Int> must type to Int, got %s", te.T)
	}
	if len(m.Cases) != 2 || len(m.Cases[0].Bindings) != 1 {
		t.Errorf("bindings missing: %#v", m.Cases)
	}
}

func TestEnumMatchNonExhaustive(t *testing.T) {
	env := newTestEnv(t, nil)
	en := optionEnum()
	env.registerEnum(en)
	env.declareVar("opt", ts.EnumType{Decl: en, Params: []ts.Type{env.typer.g.TInt()}})

	de := env.expectError(switchOn(id("opt"), nil,
		arm(id("v"), call(id("Some"), id("v"))),
	), diagnostics.ErrT007)
	if !strings.Contains(de.Message, "None") {
		t.Errorf("missing constructor must be named, got %q", de.Message)
	}
}

func TestEnumMatchDefaultCoversRest(t *testing.T) {
	env := newTestEnv(t, nil)
	en := optionEnum()
	env.registerEnum(en)
	env.declareVar("opt", ts.EnumType{Decl: en, Params: []ts.Type{env.typer.g.TInt()}})

	te := env.mustType(switchOn(id("opt"), num(0),
		arm(id("v"), call(id("Some"), id("v"))),
	))
	if _, ok := te.Expr.(ts.TMatch); !ok {
		t.Fatalf("expected an enum match, got %#v", te.Expr)
	}
}

func TestEnumMatchWildcardArg(t *testing.T) {
	env := newTestEnv(t, nil)
	en := optionEnum()
	env.registerEnum(en)
	env.declareVar("opt", ts.EnumType{Decl: en, Params: []ts.Type{env.typer.g.TInt()}})

	te := env.mustType(switchOn(id("opt"), nil,
		arm(num(1), call(id("Some"), id("_"))),
		arm(num(0), id("None")),
	))
	m := te.Expr.(ts.TMatch)
	if len(m.Cases[0].Bindings) != 0 {
		t.Errorf("wildcard must not bind, got %#v", m.Cases[0].Bindings)
	}
}

func TestEnumMatchArityError(t *testing.T) {
	env := newTestEnv(t, nil)
	en := optionEnum()
	env.registerEnum(en)
	env.declareVar("opt", ts.EnumType{Decl: en, Params: []ts.Type{env.typer.g.TInt()}})

	env.expectError(switchOn(id("opt"), nil,
		arm(num(1), id("Some")),
		arm(num(0), id("None")),
	), diagnostics.ErrT007)
}

func TestValueSwitchDuplicateCase(t *testing.T) {
	env := newTestEnv(t, nil)
	env.declareVar("n", env.typer.g.TInt())
	env.expectError(switchOn(id("n"), num(0),
		arm(num(1), num(10)),
		arm(num(2), num(10)),
	), diagnostics.ErrT007)
}

func TestValueSwitchTypes(t *testing.T) {
	env := newTestEnv(t, nil)
	env.declareVar("n", env.typer.g.TInt())
	te := env.mustType(switchOn(id("n"), str("many"),
		arm(str("one"), num(1)),
		arm(str("two"), num(2)),
	))
	sw, ok := te.Expr.(ts.TSwitch)
	if !ok {
		t.Fatalf("expected value switch, got %#v", te.Expr)
	}
	if len(sw.Cases) != 2 || sw.Default == nil {
		t.Fatalf("switch shape wrong")
	}
	if typeName(te.T) != "String" {
		t.Errorf("got %s", te.T)
	}
}

func TestMatchPatternInValueSwitch(t *testing.T) {
	env := newTestEnv(t, nil)
	en := optionEnum()
	env.registerEnum(en)
	env.declareVar("n", env.typer.g.TInt())

	env.expectError(switchOn(id("n"), num(0),
		arm(num(1), id("None")),
	), diagnostics.ErrT007)
}

func TestNullPromotesToNullable(t *testing.T) {
	env := newTestEnv(t, nil)
	te := env.mustType(&ast.TernaryExpression{
		Token: tok("?"),
		Cond:  id("true"),
		Then:  num(1),
		Else:  id("null"),
	})
	if typeName(te.T) != "Null<Int>" {
		t.Errorf("null arm must promote to Nullable, got %s", te.T)
	}
}

func TestStatementSwitchIsVoid(t *testing.T) {
	env := newTestEnv(t, nil)
	env.declareVar("n", env.typer.g.TInt())
	te := env.mustType(block(
		switchOn(id("n"), num(0), arm(num(1), num(10))),
		num(42),
	))
	blockExpr := te.Expr.(ts.TBlock)
	if typeName(blockExpr.Exprs[0].T) != "Void" {
		t.Errorf("statement switch must be Void, got %s", blockExpr.Exprs[0].T)
	}
}

package typer

import (
	"bytes"
	"testing"

	"github.com/cinderlang/cinder/internal/ast"
	"github.com/cinderlang/cinder/internal/config"
	"github.com/cinderlang/cinder/internal/diagnostics"
	"github.com/cinderlang/cinder/internal/modules"
	"github.com/cinderlang/cinder/internal/token"
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

var testPos = token.Position{File: "test.cn", Line: 1, Column: 1}

func tok(lexeme string) token.Token {
	return token.Token{Type: token.IDENT, Lexeme: lexeme, Pos: testPos}
}

func id(name string) *ast.Identifier {
	return &ast.Identifier{Token: tok(name), Value: name}
}

func num(v int64) *ast.IntegerLiteral {
	return &ast.IntegerLiteral{Token: tok("int"), Value: v}
}

func flt(v float64) *ast.FloatLiteral {
	return &ast.FloatLiteral{Token: tok("float"), Value: v}
}

func str(v string) *ast.StringLiteral {
	return &ast.StringLiteral{Token: tok("str"), Value: v}
}

func member(left ast.Expression, name string) *ast.MemberExpression {
	return &ast.MemberExpression{Token: tok("."), Left: left, Member: id(name)}
}

func call(callee ast.Expression, args ...ast.Expression) *ast.CallExpression {
	return &ast.CallExpression{Token: tok("("), Callee: callee, Arguments: args}
}

func binop(op string, l, r ast.Expression) *ast.BinaryExpression {
	return &ast.BinaryExpression{Token: tok(op), Op: op, Left: l, Right: r}
}

func block(exprs ...ast.Expression) *ast.BlockExpression {
	return &ast.BlockExpression{Token: tok("{"), Exprs: exprs}
}

func lambda1(param string, body ast.Expression) *ast.FunctionLiteral {
	return &ast.FunctionLiteral{
		Token:      tok("fun"),
		Parameters: []*ast.Parameter{{Name: id(param)}},
		Body:       body,
	}
}

// testEnv is one typing context over a fresh registry with the std
// modules installed.
type testEnv struct {
	t        *testing.T
	typer    *Typer
	registry *modules.Registry
	warnings *bytes.Buffer
}

func newTestEnv(t *testing.T, opts *config.Options) *testEnv {
	t.Helper()
	reg := modules.NewRegistry()
	modules.BuildStd(reg)
	g := NewGlobals(opts, reg)
	warnings := &bytes.Buffer{}
	g.Reporter = &diagnostics.Reporter{Out: warnings}
	ctx, err := NewContext(g)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	return &testEnv{t: t, typer: ctx, registry: reg, warnings: warnings}
}

// declareVar introduces a local into the context scope.
func (env *testEnv) declareVar(name string, typ ts.Type) {
	env.typer.declareLocal(name, typ)
}

// registerClass registers a single-class module and imports it.
func (env *testEnv) registerClass(c *ts.ClassDecl) {
	if c.Module == "" {
		c.Module = c.Path.String()
	}
	env.registry.Register(&modules.Module{Name: c.Module, Decls: []ts.Decl{c}})
	env.typer.Import(c)
}

// registerEnum registers a single-enum module and imports it.
func (env *testEnv) registerEnum(e *ts.EnumDecl) {
	if e.Module == "" {
		e.Module = e.Path.String()
	}
	env.registry.Register(&modules.Module{Name: e.Module, Decls: []ts.Decl{e}})
	env.typer.Import(e)
}

func (env *testEnv) mustType(e ast.Expression) *ts.TExpr {
	env.t.Helper()
	te, err := env.typer.TypeExpr(e)
	if err != nil {
		env.t.Fatalf("TypeExpr failed: %v", err)
	}
	return te
}

// expectError asserts typing fails with the given diagnostic code.
func (env *testEnv) expectError(e ast.Expression, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	env.t.Helper()
	_, err := env.typer.TypeExpr(e)
	if err == nil {
		env.t.Fatalf("expected error %s, got none", code)
	}
	de, ok := err.(*diagnostics.DiagnosticError)
	if !ok {
		env.t.Fatalf("expected diagnostic %s, got %T: %v", code, err, err)
	}
	if de.Code != code {
		env.t.Fatalf("expected error %s, got %s: %v", code, de.Code, de)
	}
	return de
}

func typeName(typ ts.Type) string {
	return ts.Follow(typ).String()
}

// propClass builds class C { var x(get, set): Int; get_x; set_x } with a
// plain backing behavior, the property fixture most tests share.
func propClass(env *testEnv) *ts.ClassDecl {
	tInt := env.typer.g.TInt()
	c := &ts.ClassDecl{Path: ts.Path{Name: "C"}}
	c.AddField(&ts.ClassField{
		Name:   "x",
		Type:   tInt,
		Kind:   ts.PropertyKind("get", "set"),
		Public: true,
	})
	c.AddField(&ts.ClassField{
		Name:   "get_x",
		Type:   ts.Fun{Ret: tInt},
		Kind:   ts.MethodFieldKind(ts.MethNormal),
		Public: true,
	})
	c.AddField(&ts.ClassField{
		Name:   "set_x",
		Type:   ts.Fun{Args: []ts.FunArg{{Name: "v", T: tInt}}, Ret: tInt},
		Kind:   ts.MethodFieldKind(ts.MethNormal),
		Public: true,
	})
	env.registerClass(c)
	return c
}

// optionEnum builds enum Option<T> { Some(v: T); None }.
func optionEnum() *ts.EnumDecl {
	p := &ts.ParamDef{Name: "T"}
	en := &ts.EnumDecl{Path: ts.Path{Name: "Option"}, Params: []*ts.ParamDef{p}}
	en.AddCtor("Some", []ts.FunArg{{Name: "v", T: ts.ParamType{Def: p}}})
	en.AddCtor("None", nil)
	return en
}

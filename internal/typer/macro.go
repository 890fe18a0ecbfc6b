package typer

import (
	"encoding/json"

	"github.com/golang/glog"

	"github.com/cinderlang/cinder/internal/ast"
	"github.com/cinderlang/cinder/internal/diagnostics"
	"github.com/cinderlang/cinder/internal/token"
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

// MacroInterp is the single entry point into the macro interpreter. AST
// arguments cross the boundary in serialized form; the returned value is
// the serialized expression to splice at the call site.
type MacroInterp interface {
	Call(class ts.Path, method string, args []json.RawMessage) (json.RawMessage, error)
}

type delayedMacro struct {
	class  *ts.ClassDecl
	field  *ts.ClassField
	args   []ast.Expression
	locals map[string]ts.Type
}

// macroCall dispatches a macro call site. At top level the macro module
// is compiled in a sibling context and the interpreter invoked; inside
// another macro a delay_call placeholder is emitted and the invocation
// registered with a snapshot of the current locals.
func (t *Typer) macroCall(cls *ts.ClassDecl, field *ts.ClassField, args []ast.Expression, pos token.Position) (ast.Expression, error) {
	if t.g.Interp == nil {
		return nil, diagnostics.NewError(diagnostics.ErrT004, pos, "macros are not available in this context")
	}
	if err := t.checkMacroArity(field, args, pos); err != nil {
		return nil, err
	}

	if t.inMacro {
		slot := len(t.g.macroSlots)
		snapshot := make(map[string]ts.Type, len(t.locals))
		for k, v := range t.locals {
			snapshot[k] = v
		}
		t.g.macroSlots = append(t.g.macroSlots, delayedMacro{class: cls, field: field, args: args, locals: snapshot})
		glog.V(1).Infof("[%s] delayed macro %s.%s (slot %d)", t.g.ID, cls.Path, field.Name, slot)
		tok := token.Token{Type: token.IDENT, Lexeme: "$delay_call", Pos: pos}
		return &ast.CallExpression{
			Token:     tok,
			Callee:    &ast.Identifier{Token: tok, Value: "$delay_call"},
			Arguments: []ast.Expression{&ast.IntegerLiteral{Token: tok, Value: int64(slot)}},
		}, nil
	}
	return t.macroInvoke(cls, field, args, pos)
}

// ExecuteDelayed runs a registered nested-macro slot with the locals
// snapshot captured at registration.
func (t *Typer) ExecuteDelayed(slot int, pos token.Position) (ast.Expression, error) {
	if slot < 0 || slot >= len(t.g.macroSlots) {
		return nil, diagnostics.Errorf(diagnostics.ErrT004, pos, "invalid delayed macro slot %d", slot)
	}
	d := t.g.macroSlots[slot]
	saved := t.locals
	t.locals = d.locals
	defer func() { t.locals = saved }()
	return t.macroInvoke(d.class, d.field, d.args, pos)
}

func (t *Typer) macroInvoke(cls *ts.ClassDecl, field *ts.ClassField, args []ast.Expression, pos token.Position) (ast.Expression, error) {
	mctx, err := t.macroContext()
	if err != nil {
		return nil, err
	}
	if _, err := mctx.g.Loader.LoadModule(ts.Path{Name: cls.Module}, pos); err != nil {
		return nil, diagnostics.Errorf(diagnostics.ErrT002, pos, "macro module not found : %s", cls.Module)
	}
	mctx.Finalize()

	encoded := make([]json.RawMessage, len(args))
	for i, a := range args {
		raw, err := ast.EncodeExpr(a)
		if err != nil {
			return nil, diagnostics.Errorf(diagnostics.ErrT004, pos, "cannot encode macro argument: %v", err)
		}
		encoded[i] = raw
	}

	// The interpreter runs on this thread; the reporter is restored
	// around the call whatever happens inside.
	savedReporter := t.g.Reporter
	defer func() { t.g.Reporter = savedReporter }()

	glog.V(1).Infof("[%s] macro %s.%s via sibling [%s]", t.g.ID, cls.Path, field.Name, mctx.g.ID)
	raw, err := t.g.Interp.Call(cls.Path, field.Name, encoded)
	if err != nil {
		return nil, diagnostics.Errorf(diagnostics.ErrT004, pos, "macro %s.%s failed: %v", cls.Path, field.Name, err)
	}
	spliced, err := ast.DecodeExpr(raw)
	if err != nil {
		return nil, diagnostics.Errorf(diagnostics.ErrT004, pos, "cannot decode macro result: %v", err)
	}
	return spliced, nil
}

// macroContext lazily builds the sibling typing context macros compile
// in: bytecode backend, platform defines cleared. The two contexts never
// share monomorphs; everything crosses in serialized form.
func (t *Typer) macroContext() (*Typer, error) {
	if t.g.macroCtx != nil {
		return t.g.macroCtx, nil
	}
	mg := NewGlobals(t.g.Options.ForMacro(), t.g.Loader)
	mg.Reporter = t.g.Reporter
	mg.Interp = t.g.Interp
	ctx, err := NewContext(mg)
	if err != nil {
		return nil, err
	}
	t.g.macroCtx = ctx
	return ctx, nil
}

// checkMacroArity applies the bridge-level arity rule: a first parameter
// of type Expr means by-expression passing with exact count; Array<Expr>
// means the arguments travel as one variadic array.
func (t *Typer) checkMacroArity(field *ts.ClassField, args []ast.Expression, pos token.Position) error {
	fun, ok := ts.Follow(field.Type).(ts.Fun)
	if !ok || len(fun.Args) == 0 {
		return nil
	}
	first := ts.Follow(fun.Args[0].T)
	if inst, ok := first.(ts.Inst); ok {
		if inst.Decl == t.g.Std.Array && len(inst.Params) == 1 {
			if elem, ok := ts.Follow(inst.Params[0]).(ts.Inst); ok && elem.Decl.Path.Name == "Expr" {
				return nil // variadic: any count
			}
		}
		if inst.Decl.Path.Name == "Expr" {
			required := 0
			for _, a := range fun.Args {
				if !a.Opt {
					required++
				}
			}
			if len(args) < required || len(args) > len(fun.Args) {
				return diagnostics.Errorf(diagnostics.ErrT005, pos,
					"macro %s expects %d expression arguments", field.Name, len(fun.Args))
			}
		}
	}
	return nil
}

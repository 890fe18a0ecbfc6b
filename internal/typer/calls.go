package typer

import (
	"strconv"

	"github.com/cinderlang/cinder/internal/ast"
	"github.com/cinderlang/cinder/internal/diagnostics"
	"github.com/cinderlang/cinder/internal/token"
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

type argSkip struct {
	name string
	err  error
}

// unifyCallParams elaborates a call's actuals against its formals:
// optional arguments may be skipped (the default is synthesized and the
// actual retried against the next formal), missing trailing optionals are
// filled in, and arity errors carry the argument that failed.
func (t *Typer) unifyCallParams(name string, actuals []ast.Expression, fargs []ts.FunArg, pos token.Position, inline bool) ([]*ts.TExpr, error) {
	typed := make([]*ts.TExpr, 0, len(fargs))
	var skips []argSkip
	var cached *ts.TExpr
	ai := 0

	for fi, formal := range fargs {
		if ai >= len(actuals) {
			if !formal.Opt {
				return nil, diagnostics.Errorf(diagnostics.ErrT005, pos,
					"not enough arguments for %s, missing argument %s", name, formalLabel(formal, fi))
			}
			typed = append(typed, t.defaultValue(formal, pos))
			continue
		}
		if cached == nil {
			// The formal's type is threaded as the expected type so
			// function literals pick up their parameter types.
			te, err := t.typeExprExpected(actuals[ai], formal.T)
			if err != nil {
				return nil, err
			}
			cached = te
		}
		if uerr := ts.Unify(cached.T, formal.T); uerr != nil {
			if formal.Opt {
				skips = append(skips, argSkip{name: formalLabel(formal, fi), err: uerr})
				typed = append(typed, t.defaultValue(formal, pos))
				continue
			}
			return nil, diagnostics.WrapUnify(cached.Pos,
				"for function argument '"+formalLabel(formal, fi)+"'", uerr)
		}
		typed = append(typed, cached)
		cached = nil
		ai++
	}

	if ai < len(actuals) {
		if len(skips) == 1 {
			return nil, diagnostics.WrapUnify(pos,
				"for optional argument '"+skips[0].name+"'", skips[0].err)
		}
		return nil, diagnostics.Errorf(diagnostics.ErrT005, pos, "too many arguments for %s", name)
	}

	if !inline && t.g.Options.TrimNullArgs() {
		typed = trimNullTail(typed, fargs)
	}
	return typed, nil
}

// trimNullTail drops trailing optional arguments whose call-site value is
// a literal null; backends that cannot represent null arguments require
// it. Null at other positions stays.
func trimNullTail(typed []*ts.TExpr, fargs []ts.FunArg) []*ts.TExpr {
	for len(typed) > 0 {
		i := len(typed) - 1
		if !fargs[i].Opt || !isNullConst(typed[i]) {
			break
		}
		typed = typed[:i]
	}
	return typed
}

func isNullConst(e *ts.TExpr) bool {
	c, ok := e.Expr.(ts.TConst)
	return ok && c.C.Kind == ts.ConstNull
}

// defaultValue synthesizes the value of a skipped optional argument: a
// call-site record for the distinguished PosInfos typedef, a typed null
// otherwise.
func (t *Typer) defaultValue(formal ts.FunArg, pos token.Position) *ts.TExpr {
	if t.isPosInfos(formal.T) {
		str := func(s string) *ts.TExpr {
			return mk(ts.TConst{C: ts.Constant{Kind: ts.ConstString, Str: s}}, t.g.TString(), pos)
		}
		className := ""
		if t.curClass != nil {
			className = t.curClass.Path.String()
		}
		fields := []ts.TObjectField{
			{Name: "fileName", Value: str(pos.File)},
			{Name: "lineNumber", Value: mk(ts.TConst{C: ts.Constant{Kind: ts.ConstInt, Int: int64(pos.Line)}}, t.g.TInt(), pos)},
			{Name: "className", Value: str(className)},
			{Name: "methodName", Value: str(t.curMethod)},
		}
		return mk(ts.TObjectDecl{Fields: fields}, formal.T, pos)
	}
	return mk(ts.TConst{C: ts.Constant{Kind: ts.ConstNull}}, formal.T, pos)
}

func (t *Typer) isPosInfos(typ ts.Type) bool {
	if t.g.Std.PosInfos == nil {
		return false
	}
	if al, ok := ts.FollowOnce(typ).(ts.Alias); ok {
		return al.Decl == t.g.Std.PosInfos
	}
	return false
}

func formalLabel(formal ts.FunArg, index int) string {
	if formal.Name != "" {
		return formal.Name
	}
	return "#" + strconv.Itoa(index+1)
}

// typeExprExpected types an expression with a contextual expected type
// used by function-literal inference.
func (t *Typer) typeExprExpected(e ast.Expression, expected ts.Type) (*ts.TExpr, error) {
	saved := t.paramType
	t.paramType = expected
	defer func() { t.paramType = saved }()
	return t.typeExpr(e, true)
}

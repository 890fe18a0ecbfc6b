package typer

import (
	"fmt"
	"strings"

	"github.com/cinderlang/cinder/internal/ast"
	"github.com/cinderlang/cinder/internal/diagnostics"
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

// typeSwitch elaborates switch in one of two modes, decided by the
// subject type and the first case: an enum match over constructor
// indices, or a value switch over constants.
func (t *Typer) typeSwitch(se *ast.SwitchExpression, needVal bool) (*ts.TExpr, error) {
	subj, err := t.typeExpr(se.Subject, true)
	if err != nil {
		return nil, err
	}

	if en, ok := ts.Follow(subj.T).(ts.EnumType); ok && len(se.Cases) > 0 && len(se.Cases[0].Patterns) > 0 {
		if isCtorPattern(se.Cases[0].Patterns[0], en.Decl) {
			return t.typeEnumMatch(se, subj, en, needVal)
		}
	}
	return t.typeValueSwitch(se, subj, needVal)
}

func isCtorPattern(p ast.Expression, en *ts.EnumDecl) bool {
	switch p := p.(type) {
	case *ast.Identifier:
		_, ok := en.Constrs[p.Value]
		return ok
	case *ast.CallExpression:
		if id, ok := p.Callee.(*ast.Identifier); ok {
			_, ok := en.Constrs[id.Value]
			return ok
		}
	}
	return false
}

// parseCtorPattern decomposes `Ctor` or `Ctor(a, _, b)`. Argument
// patterns are identifiers; `_` is the wildcard.
func parseCtorPattern(p ast.Expression) (string, []*ast.Identifier, error) {
	switch p := p.(type) {
	case *ast.Identifier:
		return p.Value, nil, nil
	case *ast.CallExpression:
		id, ok := p.Callee.(*ast.Identifier)
		if !ok {
			return "", nil, fmt.Errorf("invalid pattern")
		}
		args := make([]*ast.Identifier, len(p.Arguments))
		for i, a := range p.Arguments {
			ai, ok := a.(*ast.Identifier)
			if !ok {
				return "", nil, fmt.Errorf("constructor argument patterns must be variables")
			}
			args[i] = ai
		}
		return id.Value, args, nil
	default:
		return "", nil, fmt.Errorf("invalid pattern")
	}
}

func (t *Typer) typeEnumMatch(se *ast.SwitchExpression, subj *ts.TExpr, en ts.EnumType, needVal bool) (*ts.TExpr, error) {
	pos := se.Token.Pos
	covered := map[int]bool{}
	acc := commonType{}
	var cases []ts.TMatchCase

	for _, c := range se.Cases {
		restore := t.saveLocals()
		var ctors []*ts.EnumCtor
		var bindings []ts.TMatchBinding
		reference := map[string]ts.Type{}

		for alt, pat := range c.Patterns {
			ppos := pat.GetToken().Pos
			name, argPats, perr := parseCtorPattern(pat)
			if perr != nil {
				restore()
				return nil, diagnostics.NewError(diagnostics.ErrT007, ppos, perr.Error())
			}
			ctor, ok := en.Decl.Constrs[name]
			if !ok {
				restore()
				return nil, diagnostics.Errorf(diagnostics.ErrT007, ppos, "%s is not a constructor of %s", name, en.Decl.Path)
			}
			if covered[ctor.Index] {
				restore()
				return nil, diagnostics.Errorf(diagnostics.ErrT007, ppos, "constructor %s is already matched", name)
			}
			covered[ctor.Index] = true
			ctors = append(ctors, ctor)

			if len(argPats) != len(ctor.Args) {
				restore()
				return nil, diagnostics.Errorf(diagnostics.ErrT007, ppos,
					"constructor %s requires %d arguments", name, len(ctor.Args))
			}

			altBind := map[string]ts.Type{}
			for i, ap := range argPats {
				if ap.Value == "_" {
					continue
				}
				argT := ts.ApplyParams(en.Decl.Params, en.Params, ctor.Args[i].T)
				altBind[ap.Value] = argT
				if alt == 0 {
					local := t.declareLocal(ap.Value, argT)
					bindings = append(bindings, ts.TMatchBinding{Name: local, T: argT, CtorArg: i})
				}
			}

			if alt == 0 {
				reference = altBind
			} else if err := sameBindings(reference, altBind); err != nil {
				restore()
				return nil, diagnostics.NewError(diagnostics.ErrT007, ppos, err.Error())
			}
		}

		body, err := t.typeExpr(c.Body, needVal)
		restore()
		if err != nil {
			return nil, err
		}
		if needVal {
			if acc, err = t.foldCommon(acc, body, pos); err != nil {
				return nil, err
			}
		}
		cases = append(cases, ts.TMatchCase{Ctors: ctors, Bindings: bindings, Body: body})
	}

	var def *ts.TExpr
	if se.Default != nil {
		restore := t.saveLocals()
		var err error
		def, err = t.typeExpr(se.Default, needVal)
		restore()
		if err != nil {
			return nil, err
		}
		if needVal {
			if acc, err = t.foldCommon(acc, def, pos); err != nil {
				return nil, err
			}
		}
	} else {
		var missing []string
		for _, name := range en.Decl.Order {
			if !covered[en.Decl.Constrs[name].Index] {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return nil, diagnostics.Errorf(diagnostics.ErrT007, pos,
				"some constructors are not matched : %s", strings.Join(missing, ", "))
		}
	}

	typ := t.g.TVoid()
	if needVal && acc.t != nil {
		typ = acc.t
	}
	return mk(ts.TMatch{Subject: subj, Enum: en.Decl, Cases: cases, Default: def}, typ, pos), nil
}

func sameBindings(ref, alt map[string]ts.Type) error {
	if len(ref) != len(alt) {
		return fmt.Errorf("variables bound in alternative patterns must match")
	}
	for name, rt := range ref {
		at, ok := alt[name]
		if !ok {
			return fmt.Errorf("variable %s is not bound in all patterns", name)
		}
		if err := ts.UnifyEq(rt, at); err != nil {
			return fmt.Errorf("variable %s has conflicting types across patterns", name)
		}
	}
	return nil
}

func (t *Typer) typeValueSwitch(se *ast.SwitchExpression, subj *ts.TExpr, needVal bool) (*ts.TExpr, error) {
	pos := se.Token.Pos
	acc := commonType{}
	seen := map[string]bool{}
	var cases []ts.TSwitchCase

	for _, c := range se.Cases {
		var values []*ts.TExpr
		for _, pat := range c.Patterns {
			ppos := pat.GetToken().Pos
			pe, err := t.typeExprExpected(pat, subj.T)
			if err != nil {
				return nil, err
			}
			if isMatchPattern(pe) {
				return nil, diagnostics.NewError(diagnostics.ErrT007, ppos,
					"cannot use a constructor pattern in a value switch")
			}
			if uerr := ts.Unify(pe.T, subj.T); uerr != nil {
				if uerr2 := ts.Unify(subj.T, pe.T); uerr2 != nil {
					return nil, diagnostics.WrapUnify(ppos, "case value", uerr)
				}
			}
			if key, isConst := constKey(pe); isConst {
				if seen[key] {
					return nil, diagnostics.Errorf(diagnostics.ErrT007, ppos, "duplicate case value")
				}
				seen[key] = true
			}
			values = append(values, pe)
		}
		restore := t.saveLocals()
		body, err := t.typeExpr(c.Body, needVal)
		restore()
		if err != nil {
			return nil, err
		}
		if needVal {
			if acc, err = t.foldCommon(acc, body, pos); err != nil {
				return nil, err
			}
		}
		cases = append(cases, ts.TSwitchCase{Values: values, Body: body})
	}

	var def *ts.TExpr
	if se.Default != nil {
		restore := t.saveLocals()
		var err error
		def, err = t.typeExpr(se.Default, needVal)
		restore()
		if err != nil {
			return nil, err
		}
		if needVal {
			if acc, err = t.foldCommon(acc, def, pos); err != nil {
				return nil, err
			}
		}
	}

	typ := t.g.TVoid()
	if needVal && acc.t != nil {
		typ = acc.t
	}
	return mk(ts.TSwitch{Subject: subj, Cases: cases, Default: def}, typ, pos), nil
}

func isMatchPattern(pe *ts.TExpr) bool {
	switch x := pe.Expr.(type) {
	case ts.TEnumField:
		return true
	case ts.TCall:
		_, ok := x.Callee.Expr.(ts.TEnumField)
		return ok
	}
	return false
}

func constKey(pe *ts.TExpr) (string, bool) {
	c, ok := pe.Expr.(ts.TConst)
	if !ok {
		return "", false
	}
	switch c.C.Kind {
	case ts.ConstInt:
		return fmt.Sprintf("i%d", c.C.Int), true
	case ts.ConstFloat:
		return fmt.Sprintf("f%g", c.C.Float), true
	case ts.ConstString:
		return "s" + c.C.Str, true
	case ts.ConstBool:
		return fmt.Sprintf("b%v", c.C.Bool), true
	case ts.ConstNull:
		return "null", true
	}
	return "", false
}

package typer

import (
	"github.com/cinderlang/cinder/internal/ast"
	"github.com/cinderlang/cinder/internal/diagnostics"
	"github.com/cinderlang/cinder/internal/token"
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

var compoundOps = map[string]string{
	"+=": "+", "-=": "-", "*=": "*", "/=": "/", "%=": "%",
	"<<=": "<<", ">>=": ">>", ">>>=": ">>>", "&=": "&", "|=": "|", "^=": "^",
}

func (t *Typer) typeBinop(be *ast.BinaryExpression, needVal bool) (*ts.TExpr, error) {
	pos := be.Token.Pos
	if be.Op == "=" {
		return t.typeAssign(be.Left, be.Right, pos)
	}
	if base, ok := compoundOps[be.Op]; ok {
		return t.typeCompoundAssign(base, be.Left, be.Right, pos)
	}
	e1, err := t.typeExpr(be.Left, true)
	if err != nil {
		return nil, err
	}
	e2, err := t.typeExpr(be.Right, true)
	if err != nil {
		return nil, err
	}
	return t.typeBinopTyped(be.Op, e1, e2, pos)
}

func (t *Typer) typeBinopTyped(op string, e1, e2 *ts.TExpr, pos token.Position) (*ts.TExpr, error) {
	mkOp := func(typ ts.Type) *ts.TExpr {
		return mk(ts.TBinop{Op: op, Left: e1, Right: e2}, typ, pos)
	}

	switch op {
	case "+":
		typ, err := t.addType(e1, e2, pos)
		if err != nil {
			return nil, err
		}
		return mkOp(typ), nil

	case "-", "*", "%", "/":
		typ, err := t.arithType(op, e1, e2, pos)
		if err != nil {
			return nil, err
		}
		return mkOp(typ), nil

	case "<<", ">>", ">>>", "&", "|", "^":
		if err := ts.Unify(e1.T, t.g.TInt()); err != nil {
			return nil, diagnostics.WrapUnify(e1.Pos, "binary operation "+op, err)
		}
		if err := ts.Unify(e2.T, t.g.TInt()); err != nil {
			return nil, diagnostics.WrapUnify(e2.Pos, "binary operation "+op, err)
		}
		return mkOp(t.g.TInt()), nil

	case "==", "!=":
		if err := ts.Unify(e1.T, e2.T); err != nil {
			if err2 := ts.Unify(e2.T, e1.T); err2 != nil {
				return nil, diagnostics.WrapUnify(pos, "cannot compare "+e1.T.String()+" and "+e2.T.String(), err)
			}
		}
		return mkOp(t.g.TBool()), nil

	case "<", "<=", ">", ">=":
		if err := t.checkComparable(e1, e2, pos); err != nil {
			return nil, err
		}
		return mkOp(t.g.TBool()), nil

	case "&&", "||":
		if err := ts.Unify(e1.T, t.g.TBool()); err != nil {
			return nil, diagnostics.WrapUnify(e1.Pos, "binary operation "+op, err)
		}
		if err := ts.Unify(e2.T, t.g.TBool()); err != nil {
			return nil, diagnostics.WrapUnify(e2.Pos, "binary operation "+op, err)
		}
		return mkOp(t.g.TBool()), nil

	case "...":
		if err := ts.Unify(e1.T, t.g.TInt()); err != nil {
			return nil, diagnostics.WrapUnify(e1.Pos, "range bound", err)
		}
		if err := ts.Unify(e2.T, t.g.TInt()); err != nil {
			return nil, diagnostics.WrapUnify(e2.Pos, "range bound", err)
		}
		it := t.g.Std.IntIterator
		return mk(ts.TNew{Class: it, Args: []*ts.TExpr{e1, e2}}, ts.Inst{Decl: it}, pos), nil

	default:
		return nil, diagnostics.Errorf(diagnostics.ErrT004, pos, "unsupported operation %s", op)
	}
}

// addType resolves `+` over the numeric kind lattice.
func (t *Typer) addType(e1, e2 *ts.TExpr, pos token.Position) (ts.Type, error) {
	k1, t1 := t.kindOf(e1.T)
	k2, t2 := t.kindOf(e2.T)

	switch {
	case k1 == KInt && k2 == KInt:
		return t.g.TInt(), nil
	case (k1 == KFloat && (k2 == KInt || k2 == KFloat)) || (k2 == KFloat && k1 == KInt):
		return t.g.TFloat(), nil

	case k1 == KUnk && k2 == KInt:
		if t.unifyInt(e1, k1) {
			return t.g.TInt(), nil
		}
		return t.g.TFloat(), nil
	case k1 == KInt && k2 == KUnk:
		if t.unifyInt(e2, k2) {
			return t.g.TInt(), nil
		}
		return t.g.TFloat(), nil

	case k1 == KUnk && (k2 == KFloat || k2 == KString):
		if err := ts.Unify(e1.T, e2.T); err != nil {
			return nil, diagnostics.WrapUnify(pos, "binary operation +", err)
		}
		return e1.T, nil
	case k2 == KUnk && (k1 == KFloat || k1 == KString):
		if err := ts.Unify(e2.T, e1.T); err != nil {
			return nil, diagnostics.WrapUnify(pos, "binary operation +", err)
		}
		return e2.T, nil

	case k1 == KUnk && k2 == KUnk:
		ok1 := t.unifyInt(e1, k1)
		ok2 := t.unifyInt(e2, k2)
		if ok1 && ok2 {
			return t.g.TInt(), nil
		}
		return t.g.TFloat(), nil

	case k1 == KParam && k2 == KParam:
		if sameParam(t1, t2) {
			return t1, nil
		}
		return nil, diagnostics.Errorf(diagnostics.ErrT004, pos, "cannot add %s and %s", e1.T, e2.T)
	case k1 == KParam && k2 == KInt:
		return t1, nil
	case k2 == KParam && k1 == KInt:
		return t2, nil
	case (k1 == KParam && k2 == KFloat) || (k2 == KParam && k1 == KFloat):
		return t.g.TFloat(), nil

	// Strings absorb the other side; the right side wins first.
	case k2 == KString:
		return e2.T, nil
	case k2 == KDyn:
		return e2.T, nil
	case k1 == KString, k1 == KDyn:
		return e1.T, nil

	default:
		return nil, diagnostics.Errorf(diagnostics.ErrT004, pos, "cannot add %s and %s", e1.T, e2.T)
	}
}

// arithType types - * % /; division always yields Float.
func (t *Typer) arithType(op string, e1, e2 *ts.TExpr, pos token.Position) (ts.Type, error) {
	k1, t1 := t.kindOf(e1.T)
	k2, t2 := t.kindOf(e2.T)

	lift := func(k NumKind, e *ts.TExpr) (NumKind, error) {
		if k == KUnk {
			if t.unifyInt(e, k) {
				return KInt, nil
			}
			return KFloat, nil
		}
		switch k {
		case KInt, KFloat, KDyn, KParam:
			return k, nil
		}
		return k, diagnostics.Errorf(diagnostics.ErrT004, pos, "cannot apply %s to %s", op, e.T)
	}
	var err error
	if k1, err = lift(k1, e1); err != nil {
		return nil, err
	}
	if k2, err = lift(k2, e2); err != nil {
		return nil, err
	}

	if op == "/" {
		return t.g.TFloat(), nil
	}
	switch {
	case k1 == KDyn || k2 == KDyn:
		return t.g.TFloat(), nil
	case k1 == KParam && k2 == KParam:
		if sameParam(t1, t2) {
			return t1, nil
		}
		return nil, diagnostics.Errorf(diagnostics.ErrT004, pos, "cannot apply %s to %s and %s", op, e1.T, e2.T)
	case k1 == KParam:
		if k2 == KFloat {
			return t.g.TFloat(), nil
		}
		return t1, nil
	case k2 == KParam:
		if k1 == KFloat {
			return t.g.TFloat(), nil
		}
		return t2, nil
	case k1 == KFloat || k2 == KFloat:
		return t.g.TFloat(), nil
	default:
		return t.g.TInt(), nil
	}
}

func (t *Typer) checkComparable(e1, e2 *ts.TExpr, pos token.Position) error {
	k1, t1 := t.kindOf(e1.T)
	k2, t2 := t.kindOf(e2.T)

	numeric := func(k NumKind) bool {
		return k == KUnk || k == KInt || k == KFloat
	}

	switch {
	case k1 == KDyn || k2 == KDyn:
		return nil
	case k1 == KString && k2 == KString:
		return nil
	case numeric(k1) && numeric(k2):
		if k1 == KUnk {
			t.unifyInt(e1, k1)
		}
		if k2 == KUnk {
			t.unifyInt(e2, k2)
		}
		return nil
	case k1 == KParam && k2 == KParam && sameParam(t1, t2):
		return nil
	case (k1 == KParam && (k2 == KInt || k2 == KFloat)) || (k2 == KParam && (k1 == KInt || k1 == KFloat)):
		return nil
	default:
		return diagnostics.Errorf(diagnostics.ErrT004, pos, "cannot compare %s and %s", e1.T, e2.T)
	}
}

func sameParam(a, b ts.Type) bool {
	pa, ok1 := ts.Follow(a).(ts.ParamType)
	pb, ok2 := ts.Follow(b).(ts.ParamType)
	return ok1 && ok2 && pa.Def == pb.Def
}

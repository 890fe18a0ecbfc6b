package typer

import (
	"github.com/cinderlang/cinder/internal/ast"
	"github.com/cinderlang/cinder/internal/diagnostics"
	"github.com/cinderlang/cinder/internal/token"
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

func checkAssignable(lv *ts.TExpr, pos token.Position) error {
	switch x := lv.Expr.(type) {
	case ts.TLocal, ts.TArray:
		return nil
	case ts.TField:
		if !x.Closure {
			return nil
		}
	}
	return diagnostics.NewError(diagnostics.ErrT006, pos, "invalid assignment target")
}

func (t *Typer) typeAssign(lhs, rhs ast.Expression, pos token.Position) (*ts.TExpr, error) {
	k, err := t.typeAccess(lhs, ModeSet)
	if err != nil {
		return nil, err
	}
	switch k := k.(type) {
	case ExprAccess:
		lv := k.E
		if err := checkAssignable(lv, pos); err != nil {
			return nil, err
		}
		rv, err := t.typeExprExpected(rhs, lv.T)
		if err != nil {
			return nil, err
		}
		if uerr := ts.Unify(rv.T, lv.T); uerr != nil {
			return nil, diagnostics.WrapUnify(pos, "assignment", uerr)
		}
		return mk(ts.TBinop{Op: "=", Left: lv, Right: rv}, lv.T, pos), nil

	case SetAccess:
		rv, err := t.typeExprExpected(rhs, k.T)
		if err != nil {
			return nil, err
		}
		if uerr := ts.Unify(rv.T, k.T); uerr != nil {
			return nil, diagnostics.WrapUnify(pos, "assignment to property "+k.FieldName, uerr)
		}
		call, err := t.setterCall(k.Receiver, k, rv, pos)
		if err != nil {
			return nil, err
		}
		return call, nil

	case NoAccess:
		return nil, diagnostics.Errorf(diagnostics.ErrT006, pos, "cannot assign to %s", k.Name)
	default:
		return nil, diagnostics.NewError(diagnostics.ErrT006, pos, "invalid assignment target")
	}
}

// typeCompoundAssign types `x op= y`. The property path allocates a fresh
// local for the receiver so it is evaluated exactly once.
func (t *Typer) typeCompoundAssign(op string, lhs, rhs ast.Expression, pos token.Position) (*ts.TExpr, error) {
	k, err := t.typeAccess(lhs, ModeSet)
	if err != nil {
		return nil, err
	}
	switch k := k.(type) {
	case ExprAccess:
		lv := k.E
		if err := checkAssignable(lv, pos); err != nil {
			return nil, err
		}
		rv, err := t.typeExpr(rhs, true)
		if err != nil {
			return nil, err
		}
		computed, err := t.typeBinopTyped(op, lv, rv, pos)
		if err != nil {
			return nil, err
		}
		if uerr := ts.Unify(computed.T, lv.T); uerr != nil {
			return nil, diagnostics.WrapUnify(pos, "assignment", uerr)
		}
		return mk(ts.TBinop{Op: op + "=", Left: lv, Right: rv}, lv.T, pos), nil

	case SetAccess:
		restore := t.saveLocals()
		defer restore()
		v := t.freshLocal("tmp", k.Receiver.T)
		vLocal := mk(ts.TLocal{Name: v}, k.Receiver.T, pos)

		cur, err := t.propertyRead(vLocal, k.FieldName, pos)
		if err != nil {
			return nil, err
		}
		rv, err := t.typeExpr(rhs, true)
		if err != nil {
			return nil, err
		}
		computed, err := t.typeBinopTyped(op, cur, rv, pos)
		if err != nil {
			return nil, err
		}
		if uerr := ts.Unify(computed.T, k.T); uerr != nil {
			return nil, diagnostics.WrapUnify(pos, "assignment to property "+k.FieldName, uerr)
		}
		call, err := t.setterCall(vLocal, k, computed, pos)
		if err != nil {
			return nil, err
		}
		decl := mk(ts.TVars{Vars: []ts.TVarDecl{{Name: v, T: k.Receiver.T, Init: k.Receiver}}}, t.g.TVoid(), pos)
		return mk(ts.TBlock{Exprs: []*ts.TExpr{decl, call}}, k.T, pos), nil

	default:
		return nil, diagnostics.NewError(diagnostics.ErrT006, pos, "invalid assignment target")
	}
}

// propertyRead reads a property field through its read semantics on an
// already-evaluated receiver.
func (t *Typer) propertyRead(recv *ts.TExpr, name string, pos token.Position) (*ts.TExpr, error) {
	kg, err := t.fieldOn(ModeGet, recv, name, pos)
	if err != nil {
		return nil, err
	}
	return t.accGet(kg, pos)
}

// setterCall emits receiver.setter(value) for a deferred property write.
func (t *Typer) setterCall(recv *ts.TExpr, k SetAccess, value *ts.TExpr, pos token.Position) (*ts.TExpr, error) {
	kc, err := t.fieldOn(ModeCall, recv, k.Setter, pos)
	if err != nil {
		return nil, err
	}
	callee, err := t.accGet(kc, pos)
	if err != nil {
		return nil, err
	}
	return mk(ts.TCall{Callee: callee, Args: []*ts.TExpr{value}}, k.T, pos), nil
}

func (t *Typer) typeUnop(ue *ast.UnaryExpression) (*ts.TExpr, error) {
	pos := ue.Token.Pos
	op := ue.Op

	if op == "++" || op == "--" {
		return t.typeIncrement(ue, pos)
	}

	e, err := t.typeExpr(ue.Operand, true)
	if err != nil {
		return nil, err
	}
	switch op {
	case "!":
		if uerr := ts.Unify(e.T, t.g.TBool()); uerr != nil {
			return nil, diagnostics.WrapUnify(pos, "unary operation !", uerr)
		}
		return mk(ts.TUnop{Op: op, Prefix: ue.Prefix, Operand: e}, t.g.TBool(), pos), nil
	case "~":
		if uerr := ts.Unify(e.T, t.g.TInt()); uerr != nil {
			return nil, diagnostics.WrapUnify(pos, "unary operation ~", uerr)
		}
		return mk(ts.TUnop{Op: op, Prefix: ue.Prefix, Operand: e}, t.g.TInt(), pos), nil
	case "-":
		typ, err := t.negType(e, pos)
		if err != nil {
			return nil, err
		}
		return mk(ts.TUnop{Op: op, Prefix: ue.Prefix, Operand: e}, typ, pos), nil
	default:
		return nil, diagnostics.Errorf(diagnostics.ErrT004, pos, "unsupported operation %s", op)
	}
}

func (t *Typer) negType(e *ts.TExpr, pos token.Position) (ts.Type, error) {
	k, pt := t.kindOf(e.T)
	switch k {
	case KInt:
		return t.g.TInt(), nil
	case KFloat:
		return t.g.TFloat(), nil
	case KUnk:
		if t.unifyInt(e, k) {
			return t.g.TInt(), nil
		}
		return t.g.TFloat(), nil
	case KDyn:
		return e.T, nil
	case KParam:
		return pt, nil
	default:
		return nil, diagnostics.Errorf(diagnostics.ErrT004, pos, "cannot negate %s", e.T)
	}
}

// typeIncrement types ++/--. Property-backed targets get a temp for the
// receiver (and, for postfix, a second temp capturing the pre-value).
func (t *Typer) typeIncrement(ue *ast.UnaryExpression, pos token.Position) (*ts.TExpr, error) {
	op := ue.Op
	base := "+"
	if op == "--" {
		base = "-"
	}
	k, err := t.typeAccess(ue.Operand, ModeSet)
	if err != nil {
		return nil, err
	}
	switch k := k.(type) {
	case ExprAccess:
		lv := k.E
		if err := checkAssignable(lv, pos); err != nil {
			return nil, err
		}
		typ, err := t.negType(lv, pos) // same numeric admissibility as negation
		if err != nil {
			return nil, err
		}
		return mk(ts.TUnop{Op: op, Prefix: ue.Prefix, Operand: lv}, typ, pos), nil

	case SetAccess:
		restore := t.saveLocals()
		defer restore()
		v := t.freshLocal("tmp", k.Receiver.T)
		vLocal := mk(ts.TLocal{Name: v}, k.Receiver.T, pos)
		cur, err := t.propertyRead(vLocal, k.FieldName, pos)
		if err != nil {
			return nil, err
		}
		one := mk(ts.TConst{C: ts.Constant{Kind: ts.ConstInt, Int: 1}}, t.g.TInt(), pos)
		decl := mk(ts.TVars{Vars: []ts.TVarDecl{{Name: v, T: k.Receiver.T, Init: k.Receiver}}}, t.g.TVoid(), pos)

		if ue.Prefix {
			computed, err := t.typeBinopTyped(base, cur, one, pos)
			if err != nil {
				return nil, err
			}
			call, err := t.setterCall(vLocal, k, computed, pos)
			if err != nil {
				return nil, err
			}
			return mk(ts.TBlock{Exprs: []*ts.TExpr{decl, call}}, k.T, pos), nil
		}

		// Postfix: capture the pre-value.
		cv := t.freshLocal("cur", cur.T)
		cvLocal := mk(ts.TLocal{Name: cv}, cur.T, pos)
		cvDecl := mk(ts.TVars{Vars: []ts.TVarDecl{{Name: cv, T: cur.T, Init: cur}}}, t.g.TVoid(), pos)
		computed, err := t.typeBinopTyped(base, cvLocal, one, pos)
		if err != nil {
			return nil, err
		}
		call, err := t.setterCall(vLocal, k, computed, pos)
		if err != nil {
			return nil, err
		}
		return mk(ts.TBlock{Exprs: []*ts.TExpr{decl, cvDecl, call, cvLocal}}, cur.T, pos), nil

	case InlineAccess, UsingAccess:
		return nil, diagnostics.NewError(diagnostics.ErrT006, pos, "this expression cannot be assigned")
	default:
		return nil, diagnostics.NewError(diagnostics.ErrT006, pos, "invalid assignment target")
	}
}

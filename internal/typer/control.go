package typer

import (
	"github.com/cinderlang/cinder/internal/ast"
	"github.com/cinderlang/cinder/internal/diagnostics"
	"github.com/cinderlang/cinder/internal/token"
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

// commonType folds the least upper bound of branch/arm types: unify one
// way, then the other; a null on either side promotes the result to
// Nullable of the other.
type commonType struct {
	t        ts.Type
	onlyNull bool
}

func (t *Typer) foldCommon(acc commonType, e *ts.TExpr, pos token.Position) (commonType, error) {
	if acc.t == nil {
		return commonType{t: e.T, onlyNull: isNullConst(e)}, nil
	}
	if isNullConst(e) {
		nt := ts.Nullable{Elem: acc.t}
		_ = ts.Unify(e.T, nt)
		return commonType{t: nt, onlyNull: acc.onlyNull}, nil
	}
	if acc.onlyNull {
		nt := ts.Nullable{Elem: e.T}
		_ = ts.Unify(acc.t, nt)
		return commonType{t: nt}, nil
	}
	if err := ts.Unify(e.T, acc.t); err == nil {
		return acc, nil
	}
	if err := ts.Unify(acc.t, e.T); err == nil {
		return commonType{t: e.T}, nil
	}
	return acc, diagnostics.Errorf(diagnostics.ErrT003, pos, "incompatible types %s and %s", acc.t, e.T)
}

func (t *Typer) typeIf(ie *ast.IfExpression, needVal bool) (*ts.TExpr, error) {
	pos := ie.Token.Pos
	cond, err := t.typeExpr(ie.Cond, true)
	if err != nil {
		return nil, err
	}
	if uerr := ts.Unify(cond.T, t.g.TBool()); uerr != nil {
		return nil, diagnostics.WrapUnify(cond.Pos, "if condition", uerr)
	}
	then, err := t.typeExpr(ie.Then, needVal)
	if err != nil {
		return nil, err
	}
	var els *ts.TExpr
	typ := t.g.TVoid()
	if ie.Else != nil {
		els, err = t.typeExpr(ie.Else, needVal)
		if err != nil {
			return nil, err
		}
		if needVal {
			acc, err := t.foldCommon(commonType{}, then, pos)
			if err != nil {
				return nil, err
			}
			acc, err = t.foldCommon(acc, els, pos)
			if err != nil {
				return nil, err
			}
			typ = acc.t
		}
	}
	return mk(ts.TIf{Cond: cond, Then: then, Else: els}, typ, pos), nil
}

func (t *Typer) typeWhile(we *ast.WhileExpression) (*ts.TExpr, error) {
	pos := we.Token.Pos
	cond, err := t.typeExpr(we.Cond, true)
	if err != nil {
		return nil, err
	}
	if uerr := ts.Unify(cond.T, t.g.TBool()); uerr != nil {
		return nil, diagnostics.WrapUnify(cond.Pos, "while condition", uerr)
	}
	savedLoop := t.inLoop
	t.inLoop = true
	body, err := t.typeExpr(we.Body, false)
	t.inLoop = savedLoop
	if err != nil {
		return nil, err
	}
	return mk(ts.TWhile{Cond: cond, Body: body, DoWhile: we.DoWhile}, t.g.TVoid(), pos), nil
}

// typeFor synthesizes iteration: the optimizer's range-for specialization
// is consulted first; when it declines, `iterator()` is resolved on the
// iterated expression (or the expression is verified to already be an
// iterator), the loop variable is bound to the element type and the body
// typed.
func (t *Typer) typeFor(fe *ast.ForExpression) (*ts.TExpr, error) {
	pos := fe.Token.Pos
	it, err := t.typeExpr(fe.Iterated, true)
	if err != nil {
		return nil, err
	}
	if e, ok := t.g.Optimizer.ForLoop(t, fe.VarName.Value, it, fe.Body, pos); ok {
		return e, nil
	}

	itExpr, elem, err := t.resolveIterator(it, pos)
	if err != nil {
		return nil, err
	}

	restore := t.saveLocals()
	defer restore()
	name := t.declareLocal(fe.VarName.Value, elem)
	savedLoop := t.inLoop
	t.inLoop = true
	body, err := t.typeExpr(fe.Body, false)
	t.inLoop = savedLoop
	if err != nil {
		return nil, err
	}
	return mk(ts.TFor{VarName: name, VarType: elem, Iterated: itExpr, Body: body}, t.g.TVoid(), pos), nil
}

// resolveIterator returns the iterator expression and its element type.
func (t *Typer) resolveIterator(it *ts.TExpr, pos token.Position) (*ts.TExpr, ts.Type, error) {
	// An `iterator` method on the iterated value wins.
	if k, err := t.fieldOn(ModeCall, it, "iterator", pos); err == nil {
		if callee, gerr := t.accGet(k, pos); gerr == nil {
			if fun, ok := ts.Follow(callee.T).(ts.Fun); ok && len(fun.Args) == 0 {
				call := mk(ts.TCall{Callee: callee, Args: nil}, fun.Ret, pos)
				elem, uerr := t.iteratorElem(call.T, pos)
				if uerr != nil {
					return nil, nil, uerr
				}
				return call, elem, nil
			}
		}
	}
	// Otherwise the value must itself be an iterator.
	elem, err := t.iteratorElem(it.T, pos)
	if err != nil {
		return nil, nil, err
	}
	return it, elem, nil
}

func (t *Typer) iteratorElem(itT ts.Type, pos token.Position) (ts.Type, error) {
	elem := ts.NewMono()
	shape := ts.Anon{
		Fields: map[string]*ts.ClassField{
			"hasNext": {Name: "hasNext", Type: ts.Fun{Ret: t.g.TBool()}, Kind: ts.MethodFieldKind(ts.MethNormal), Public: true},
			"next":    {Name: "next", Type: ts.Fun{Ret: elem}, Kind: ts.MethodFieldKind(ts.MethNormal), Public: true},
		},
		Status: &ts.AnonStatus{Kind: ts.AnonClosed},
	}
	if err := ts.Unify(itT, shape); err != nil {
		return nil, diagnostics.WrapUnify(pos, "this expression cannot be iterated", err)
	}
	return elem, nil
}

func (t *Typer) typeTry(te *ast.TryExpression, needVal bool) (*ts.TExpr, error) {
	pos := te.Token.Pos
	body, err := t.typeExpr(te.Body, needVal)
	if err != nil {
		return nil, err
	}
	acc := commonType{}
	if needVal {
		if acc, err = t.foldCommon(acc, body, pos); err != nil {
			return nil, err
		}
	}

	catches := make([]ts.TCatch, 0, len(te.Catches))
	for _, c := range te.Catches {
		ct, err := t.loadComplexType(c.TypeHint, pos)
		if err != nil {
			return nil, err
		}
		if err := t.checkCatchType(ct, pos); err != nil {
			return nil, err
		}
		restore := t.saveLocals()
		name := t.declareLocal(c.Name.Value, ct)
		cbody, err := t.typeExpr(c.Body, needVal)
		restore()
		if err != nil {
			return nil, err
		}
		if needVal {
			if acc, err = t.foldCommon(acc, cbody, pos); err != nil {
				return nil, err
			}
		}
		catches = append(catches, ts.TCatch{Name: name, T: ct, Body: cbody})
	}
	typ := t.g.TVoid()
	if needVal && acc.t != nil {
		typ = acc.t
	}
	return mk(ts.TTry{Body: body, Catches: catches}, typ, pos), nil
}

// checkCatchType rejects catching a parameterized class unless every
// type argument is the dynamic top.
func (t *Typer) checkCatchType(ct ts.Type, pos token.Position) error {
	switch tt := ts.Follow(ct).(type) {
	case ts.Inst:
		for _, p := range tt.Params {
			if _, ok := ts.Follow(p).(ts.Dyn); !ok {
				return diagnostics.Errorf(diagnostics.ErrT004, pos,
					"cannot catch parameterized class %s unless its parameters are Dynamic", tt.Decl.Path)
			}
		}
		return nil
	case ts.EnumType:
		for _, p := range tt.Params {
			if _, ok := ts.Follow(p).(ts.Dyn); !ok {
				return diagnostics.Errorf(diagnostics.ErrT004, pos,
					"cannot catch parameterized enum %s unless its parameters are Dynamic", tt.Decl.Path)
			}
		}
		return nil
	case ts.Dyn:
		return nil
	default:
		return diagnostics.NewError(diagnostics.ErrT004, pos, "catch type must be a class or enum")
	}
}

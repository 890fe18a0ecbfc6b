package typer

import (
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

// NumKind classifies the representation intent of a type for operator
// typing. It never unifies.
type NumKind int

const (
	KInt NumKind = iota
	KFloat
	KString
	KUnk
	KDyn
	KOther
	KParam
)

func (k NumKind) String() string {
	switch k {
	case KInt:
		return "Int"
	case KFloat:
		return "Float"
	case KString:
		return "String"
	case KUnk:
		return "Unknown"
	case KDyn:
		return "Dynamic"
	case KParam:
		return "Param"
	default:
		return "Other"
	}
}

// kindOf maps a resolved type to its numeric kind. For KParam the
// constrained parameter type is returned alongside.
func (t *Typer) kindOf(typ ts.Type) (NumKind, ts.Type) {
	typ = ts.Follow(typ)
	switch tt := typ.(type) {
	case *ts.Mono:
		return KUnk, typ
	case ts.Dyn:
		return KDyn, typ
	case ts.Inst:
		switch tt.Decl {
		case t.g.Std.Int:
			return KInt, typ
		case t.g.Std.Float:
			return KFloat, typ
		case t.g.Std.String:
			return KString, typ
		}
		return KOther, typ
	case ts.ParamType:
		for _, c := range tt.Def.Constraints {
			k, _ := t.kindOf(c)
			if k == KInt || k == KFloat {
				return KParam, typ
			}
		}
		return KOther, typ
	default:
		return KOther, typ
	}
}

// unifyInt tries to unify e's type with Int. Values likely derived from a
// dynamic source (a dynamic local, or an array/field/call whose container
// is dynamic) are unified with Float instead and false is returned, so
// values flowing out of dynamic code are not silently truncated.
func (t *Typer) unifyInt(e *ts.TExpr, k NumKind) bool {
	if (k == KUnk || k == KDyn) && t.dynamicDerived(e) {
		_ = ts.Unify(e.T, t.g.TFloat())
		return false
	}
	return ts.Unify(e.T, t.g.TInt()) == nil
}

func (t *Typer) dynamicDerived(e *ts.TExpr) bool {
	isDyn := func(x *ts.TExpr) bool {
		if x == nil {
			return false
		}
		_, ok := ts.Follow(x.T).(ts.Dyn)
		return ok
	}
	switch x := e.Expr.(type) {
	case ts.TLocal:
		return isDyn(e)
	case ts.TArray:
		return isDyn(x.Base)
	case ts.TField:
		return isDyn(x.Receiver)
	case ts.TCall:
		return isDyn(x.Callee)
	}
	return false
}

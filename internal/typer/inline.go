package typer

import (
	"github.com/cinderlang/cinder/internal/token"
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

// inlineGet lowers an inline access in read position: reading an inline
// method without calling it yields an explicit closure of the method's
// declared type; an inline variable clones its stored expression with
// positions rewritten to the read site.
func (t *Typer) inlineGet(k InlineAccess, pos token.Position) (*ts.TExpr, error) {
	stored := k.Field.Expr
	if stored != nil {
		if _, isFun := stored.Expr.(ts.TFunction); !isFun {
			clone := ts.CloneAt(stored, pos)
			if clone.T == nil {
				clone.T = k.T
			}
			return clone, nil
		}
	}
	return mk(ts.TField{
		Receiver: k.Receiver,
		Name:     k.Field.Name,
		Field:    k.Field,
		Class:    k.Class,
		Closure:  true,
	}, k.T, pos), nil
}

// inlineCall expands a call to an inline method: the optimization pass
// gets the first chance; when it declines, the call degrades to a regular
// method call on the resolved field.
func (t *Typer) inlineCall(k InlineAccess, args []*ts.TExpr, ret ts.Type, pos token.Position) *ts.TExpr {
	if e, ok := t.g.Optimizer.InlineCall(k.Field, k.Receiver, args, ret, pos); ok {
		return e
	}
	callee := mk(ts.TField{Receiver: k.Receiver, Name: k.Field.Name, Field: k.Field, Class: k.Class}, k.T, pos)
	return mk(ts.TCall{Callee: callee, Args: args}, ret, pos)
}

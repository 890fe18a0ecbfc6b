package typer

import (
	"fmt"

	"github.com/cinderlang/cinder/internal/token"
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

// usingField finds the first static method named `name` among the using
// candidates whose first parameter accepts the receiver. Iteration order
// is declaration order and is observable: first match wins. Using
// resolution is never available in write position.
func (t *Typer) usingField(mode AccessMode, recv *ts.TExpr, name string) (AccessKind, bool) {
	if mode == ModeSet {
		return nil, false
	}
	for _, cls := range t.localUsing {
		f, ok := cls.Statics[name]
		if !ok || !f.Kind.IsMethod || f.Kind.Method == ts.MethMacro {
			continue
		}
		ft := f.Type
		if len(f.Params) > 0 {
			ft = ts.ApplyParams(f.Params, ts.FreshParams(f.Params), ft)
		}
		fun, ok := ts.Follow(ft).(ts.Fun)
		if !ok || len(fun.Args) == 0 {
			continue
		}
		// The match must hold on its own, not just because either side is
		// the dynamic top.
		if !ts.TryUnifyNoDyn(recv.T, fun.Args[0].T) {
			continue
		}
		callee := mk(ts.TField{
			Receiver: mk(ts.TTypeExpr{Decl: cls}, t.staticsType(cls), recv.Pos),
			Name:     name,
			Field:    f,
			Class:    cls,
			Static:   true,
		}, ft, recv.Pos)
		return UsingAccess{Callee: callee, Arg: recv}, true
	}
	return nil, false
}

// usingGet lowers a using access in read position to an eta-expansion:
// (fun e -> fun args -> call(e, args))(receiver), preserving curry
// semantics.
func (t *Typer) usingGet(k UsingAccess, pos token.Position) (*ts.TExpr, error) {
	fun, ok := ts.Follow(k.Callee.T).(ts.Fun)
	if !ok || len(fun.Args) == 0 {
		return nil, fmt.Errorf("invalid using field type: %s", k.Callee.T)
	}
	recvArg := fun.Args[0]
	rest := fun.Args[1:]

	recvLocal := mk(ts.TLocal{Name: "e"}, recvArg.T, pos)
	callArgs := []*ts.TExpr{recvLocal}
	innerArgs := make([]ts.TFuncArg, len(rest))
	for i, a := range rest {
		argName := a.Name
		if argName == "" {
			argName = fmt.Sprintf("a%d", i+1)
		}
		innerArgs[i] = ts.TFuncArg{Name: argName, T: a.T, Opt: a.Opt}
		callArgs = append(callArgs, mk(ts.TLocal{Name: argName}, a.T, pos))
	}

	call := mk(ts.TCall{Callee: k.Callee, Args: callArgs}, fun.Ret, pos)
	innerT := ts.Fun{Args: rest, Ret: fun.Ret}
	inner := mk(ts.TFunction{Args: innerArgs, Ret: fun.Ret, Body: mk(ts.TReturn{Value: call}, ts.Dyn{}, pos)}, innerT, pos)
	outerT := ts.Fun{Args: []ts.FunArg{{Name: "e", T: recvArg.T}}, Ret: innerT}
	outer := mk(ts.TFunction{
		Args: []ts.TFuncArg{{Name: "e", T: recvArg.T}},
		Ret:  innerT,
		Body: mk(ts.TReturn{Value: inner}, ts.Dyn{}, pos),
	}, outerT, pos)
	return mk(ts.TCall{Callee: outer, Args: []*ts.TExpr{k.Arg}}, innerT, pos), nil
}

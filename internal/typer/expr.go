package typer

import (
	"github.com/golang/glog"

	"github.com/cinderlang/cinder/internal/ast"
	"github.com/cinderlang/cinder/internal/diagnostics"
	"github.com/cinderlang/cinder/internal/token"
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

// TypeExpr is the public entry point: it types an untyped expression as a
// value and runs the reduce pass.
func (t *Typer) TypeExpr(e ast.Expression) (*ts.TExpr, error) {
	te, err := t.typeExpr(e, true)
	if err != nil {
		return nil, err
	}
	return t.g.Optimizer.Reduce(te), nil
}

// typeExpr drives the expression grammar. needVal requests a
// value-producing form.
func (t *Typer) typeExpr(e ast.Expression, needVal bool) (*ts.TExpr, error) {
	switch e := e.(type) {
	case *ast.IntegerLiteral:
		return mk(ts.TConst{C: ts.Constant{Kind: ts.ConstInt, Int: e.Value}}, t.g.TInt(), e.Token.Pos), nil
	case *ast.FloatLiteral:
		return mk(ts.TConst{C: ts.Constant{Kind: ts.ConstFloat, Float: e.Value}}, t.g.TFloat(), e.Token.Pos), nil
	case *ast.StringLiteral:
		return mk(ts.TConst{C: ts.Constant{Kind: ts.ConstString, Str: e.Value}}, t.g.TString(), e.Token.Pos), nil

	case *ast.Identifier, *ast.MemberExpression, *ast.IndexExpression:
		k, err := t.typeAccess(e, ModeGet)
		if err != nil {
			return nil, err
		}
		return t.accGet(k, e.GetToken().Pos)

	case *ast.ObjectLiteral:
		return t.typeObjectLiteral(e)
	case *ast.ArrayLiteral:
		return t.typeArrayLiteral(e)
	case *ast.VarsExpression:
		return t.typeVars(e)
	case *ast.BlockExpression:
		return t.typeBlock(e, needVal)
	case *ast.IfExpression:
		return t.typeIf(e, needVal)
	case *ast.WhileExpression:
		return t.typeWhile(e)
	case *ast.ForExpression:
		return t.typeFor(e)
	case *ast.SwitchExpression:
		return t.typeSwitch(e, needVal)
	case *ast.TryExpression:
		return t.typeTry(e, needVal)

	case *ast.ReturnExpression:
		return t.typeReturn(e)
	case *ast.BreakExpression:
		if !t.inLoop {
			return nil, diagnostics.NewError(diagnostics.ErrT004, e.Token.Pos, "break outside loop")
		}
		return mk(ts.TBreak{}, ts.Dyn{}, e.Token.Pos), nil
	case *ast.ContinueExpression:
		if !t.inLoop {
			return nil, diagnostics.NewError(diagnostics.ErrT004, e.Token.Pos, "continue outside loop")
		}
		return mk(ts.TContinue{}, ts.Dyn{}, e.Token.Pos), nil
	case *ast.ThrowExpression:
		v, err := t.typeExpr(e.Value, true)
		if err != nil {
			return nil, err
		}
		return mk(ts.TThrow{Value: v}, ts.Dyn{}, e.Token.Pos), nil

	case *ast.BinaryExpression:
		return t.typeBinop(e, needVal)
	case *ast.UnaryExpression:
		return t.typeUnop(e)
	case *ast.TernaryExpression:
		return t.typeTernary(e, needVal)

	case *ast.FunctionLiteral:
		return t.typeFunctionLiteral(e)
	case *ast.CallExpression:
		return t.typeCall(e, needVal)
	case *ast.NewExpression:
		return t.typeNew(e)
	case *ast.CastExpression:
		return t.typeCast(e)

	case *ast.UntypedExpression:
		saved := t.untyped
		t.untyped = true
		defer func() { t.untyped = saved }()
		return t.typeExpr(e.Value, needVal)

	case *ast.DisplayExpression:
		return t.typeDisplay(e)

	default:
		return nil, diagnostics.NewError(diagnostics.ErrT004, e.GetToken().Pos, "invalid expression")
	}
}

func (t *Typer) typeObjectLiteral(ol *ast.ObjectLiteral) (*ts.TExpr, error) {
	pos := ol.Token.Pos
	fields := make(map[string]*ts.ClassField, len(ol.Fields))
	out := make([]ts.TObjectField, 0, len(ol.Fields))
	for _, f := range ol.Fields {
		v, err := t.typeExpr(f.Value, true)
		if err != nil {
			return nil, err
		}
		if _, dup := fields[f.Name]; dup {
			return nil, diagnostics.Errorf(diagnostics.ErrT004, pos, "duplicate field %s", f.Name)
		}
		fields[f.Name] = &ts.ClassField{Name: f.Name, Type: v.T, Kind: ts.VarKind(), Public: true}
		out = append(out, ts.TObjectField{Name: f.Name, Value: v})
	}
	typ := ts.Anon{Fields: fields, Status: &ts.AnonStatus{Kind: ts.AnonConst}}
	return mk(ts.TObjectDecl{Fields: out}, typ, pos), nil
}

func (t *Typer) typeArrayLiteral(al *ast.ArrayLiteral) (*ts.TExpr, error) {
	pos := al.Token.Pos
	elem := ts.Type(ts.NewMono())
	elems := make([]*ts.TExpr, 0, len(al.Elements))
	for _, el := range al.Elements {
		te, err := t.typeExpr(el, true)
		if err != nil {
			return nil, err
		}
		if uerr := ts.Unify(te.T, elem); uerr != nil {
			return nil, diagnostics.WrapUnify(te.Pos, "array element", uerr)
		}
		elems = append(elems, te)
	}
	return mk(ts.TArrayDecl{Elems: elems}, t.g.TArray(elem), pos), nil
}

func (t *Typer) typeVars(ve *ast.VarsExpression) (*ts.TExpr, error) {
	pos := ve.Token.Pos
	var out []ts.TVarDecl
	for _, v := range ve.Vars {
		var declared ts.Type
		if v.TypeHint != nil {
			var err error
			declared, err = t.loadComplexType(v.TypeHint, pos)
			if err != nil {
				return nil, err
			}
		}
		var init *ts.TExpr
		if v.Init != nil {
			var err error
			if declared != nil {
				init, err = t.typeExprExpected(v.Init, declared)
			} else {
				init, err = t.typeExpr(v.Init, true)
			}
			if err != nil {
				return nil, err
			}
			if declared != nil {
				if uerr := ts.Unify(init.T, declared); uerr != nil {
					return nil, diagnostics.WrapUnify(pos, "variable "+v.Name.Value, uerr)
				}
			} else {
				declared = init.T
			}
		}
		if declared == nil {
			declared = ts.NewMono()
		}
		name := t.declareLocal(v.Name.Value, declared)
		out = append(out, ts.TVarDecl{Name: name, T: declared, Init: init})
	}
	return mk(ts.TVars{Vars: out}, t.g.TVoid(), pos), nil
}

// typeBlock types statements with per-statement recovery: a diagnostic is
// reported and typing continues with a placeholder so later errors in the
// same block surface in one pass. Signals still abort.
func (t *Typer) typeBlock(be *ast.BlockExpression, needVal bool) (*ts.TExpr, error) {
	pos := be.Token.Pos
	restore := t.saveLocals()
	defer restore()

	typ := t.g.TVoid()
	out := make([]*ts.TExpr, 0, len(be.Exprs))
	for i, stmt := range be.Exprs {
		last := i == len(be.Exprs)-1
		te, err := t.typeExpr(stmt, needVal && last)
		if err != nil {
			if diagnostics.IsSignal(err) {
				return nil, err
			}
			t.g.Reporter.Report(err)
			te = mk(ts.TConst{C: ts.Constant{Kind: ts.ConstNull}}, ts.NewMono(), stmt.GetToken().Pos)
		}
		out = append(out, te)
		if last && needVal {
			typ = te.T
		}
	}
	return mk(ts.TBlock{Exprs: out}, typ, pos), nil
}

func (t *Typer) typeReturn(re *ast.ReturnExpression) (*ts.TExpr, error) {
	pos := re.Token.Pos
	if t.ret == nil {
		t.ret = ts.NewMono()
	}
	if re.Value == nil {
		if uerr := ts.Unify(t.g.TVoid(), t.ret); uerr != nil {
			return nil, diagnostics.WrapUnify(pos, "return", uerr)
		}
		return mk(ts.TReturn{}, ts.Dyn{}, pos), nil
	}
	v, err := t.typeExprExpected(re.Value, t.ret)
	if err != nil {
		return nil, err
	}
	if uerr := ts.Unify(v.T, t.ret); uerr != nil {
		return nil, diagnostics.WrapUnify(pos, "return", uerr)
	}
	return mk(ts.TReturn{Value: v}, ts.Dyn{}, pos), nil
}

func (t *Typer) typeTernary(te *ast.TernaryExpression, needVal bool) (*ts.TExpr, error) {
	pos := te.Token.Pos
	cond, err := t.typeExpr(te.Cond, true)
	if err != nil {
		return nil, err
	}
	if uerr := ts.Unify(cond.T, t.g.TBool()); uerr != nil {
		return nil, diagnostics.WrapUnify(cond.Pos, "ternary condition", uerr)
	}
	then, err := t.typeExpr(te.Then, true)
	if err != nil {
		return nil, err
	}
	els, err := t.typeExpr(te.Else, true)
	if err != nil {
		return nil, err
	}
	acc, err := t.foldCommon(commonType{}, then, pos)
	if err != nil {
		return nil, err
	}
	if acc, err = t.foldCommon(acc, els, pos); err != nil {
		return nil, err
	}
	return mk(ts.TIf{Cond: cond, Then: then, Else: els}, acc.t, pos), nil
}

// typeFunctionLiteral types a lambda. When a contextual function type was
// threaded in, its argument types seed the unresolved argument types of
// the literal.
func (t *Typer) typeFunctionLiteral(fl *ast.FunctionLiteral) (*ts.TExpr, error) {
	pos := fl.Token.Pos

	var hint ts.Fun
	hasHint := false
	if t.paramType != nil {
		if h, ok := ts.Follow(t.paramType).(ts.Fun); ok && len(h.Args) == len(fl.Parameters) {
			hint, hasHint = h, true
		}
	}

	args := make([]ts.TFuncArg, len(fl.Parameters))
	fargs := make([]ts.FunArg, len(fl.Parameters))
	for i, p := range fl.Parameters {
		var at ts.Type
		if p.TypeHint != nil {
			var err error
			at, err = t.loadComplexType(p.TypeHint, pos)
			if err != nil {
				return nil, err
			}
		} else if hasHint {
			at = hint.Args[i].T
		} else {
			at = ts.NewMono()
		}
		opt := p.Opt || p.Default != nil
		args[i] = ts.TFuncArg{Name: p.Name.Value, T: at, Opt: opt}
		fargs[i] = ts.FunArg{Name: p.Name.Value, Opt: opt, T: at}
	}

	var ret ts.Type
	if fl.ReturnHint != nil {
		var err error
		ret, err = t.loadComplexType(fl.ReturnHint, pos)
		if err != nil {
			return nil, err
		}
	} else {
		ret = ts.NewMono()
	}

	restore := t.saveLocals()
	savedRet, savedLoop, savedParam := t.ret, t.inLoop, t.paramType
	t.ret, t.inLoop, t.paramType = ret, false, nil
	for i, p := range fl.Parameters {
		name := t.declareLocal(p.Name.Value, args[i].T)
		args[i].Name = name
		fargs[i].Name = name
		if p.Default != nil {
			dv, err := t.typeExpr(p.Default, true)
			if err != nil {
				restore()
				t.ret, t.inLoop, t.paramType = savedRet, savedLoop, savedParam
				return nil, err
			}
			if uerr := ts.Unify(dv.T, args[i].T); uerr != nil {
				restore()
				t.ret, t.inLoop, t.paramType = savedRet, savedLoop, savedParam
				return nil, diagnostics.WrapUnify(pos, "default value of "+p.Name.Value, uerr)
			}
			args[i].Default = dv
		}
	}
	body, err := t.typeExpr(fl.Body, false)
	restore()
	t.ret, t.inLoop, t.paramType = savedRet, savedLoop, savedParam
	if err != nil {
		return nil, err
	}
	if ts.IsUnbound(ret) {
		_ = ts.Unify(t.g.TVoid(), ret)
	}
	return mk(ts.TFunction{Args: args, Ret: ret, Body: body}, ts.Fun{Args: fargs, Ret: ret}, pos), nil
}

func (t *Typer) typeCall(ce *ast.CallExpression, needVal bool) (*ts.TExpr, error) {
	pos := ce.Token.Pos

	if id, ok := ce.Callee.(*ast.Identifier); ok {
		if _, _, shadowed := t.lookupLocal(id.Value); !shadowed {
			switch id.Value {
			case "trace":
				return t.typeTrace(ce, pos)
			case "super":
				return t.typeSuperCall(ce, pos)
			case "$delay_call":
				args, err := t.typeCallArgsFree(ce.Arguments)
				if err != nil {
					return nil, err
				}
				callee := mk(ts.TLocal{Name: "$delay_call"}, ts.Dyn{}, pos)
				return mk(ts.TCall{Callee: callee, Args: args}, ts.Dyn{}, pos), nil
			case "__unprotect__":
				if len(ce.Arguments) != 1 {
					return nil, diagnostics.NewError(diagnostics.ErrT005, pos, "__unprotect__ takes exactly one string")
				}
				arg, err := t.typeExpr(ce.Arguments[0], true)
				if err != nil {
					return nil, err
				}
				if uerr := ts.Unify(arg.T, t.g.TString()); uerr != nil {
					return nil, diagnostics.WrapUnify(pos, "__unprotect__", uerr)
				}
				return arg, nil
			}
		}
	}

	k, err := t.typeAccess(ce.Callee, ModeCall)
	if err != nil {
		return nil, err
	}
	name := calleeName(ce.Callee)

	switch k := k.(type) {
	case MacroAccess:
		expanded, err := t.macroCall(k.Class, k.Field, ce.Arguments, pos)
		if err != nil {
			return nil, err
		}
		return t.typeExpr(expanded, needVal)

	case InlineAccess:
		fun, ok := ts.Follow(k.T).(ts.Fun)
		if !ok {
			return nil, diagnostics.Errorf(diagnostics.ErrT004, pos, "cannot call %s", name)
		}
		args, err := t.unifyCallParams(name, ce.Arguments, fun.Args, pos, true)
		if err != nil {
			return nil, err
		}
		return t.inlineCall(k, args, fun.Ret, pos), nil

	case UsingAccess:
		fun, ok := ts.Follow(k.Callee.T).(ts.Fun)
		if !ok || len(fun.Args) == 0 {
			return nil, diagnostics.Errorf(diagnostics.ErrT004, pos, "cannot call %s", name)
		}
		rest, err := t.unifyCallParams(name, ce.Arguments, fun.Args[1:], pos, false)
		if err != nil {
			return nil, err
		}
		args := append([]*ts.TExpr{k.Arg}, rest...)
		return mk(ts.TCall{Callee: k.Callee, Args: args}, fun.Ret, pos), nil

	case ExprAccess:
		callee := k.E
		switch ct := ts.Follow(callee.T).(type) {
		case ts.Fun:
			args, err := t.unifyCallParams(name, ce.Arguments, ct.Args, pos, false)
			if err != nil {
				return nil, err
			}
			return mk(ts.TCall{Callee: callee, Args: args}, ct.Ret, pos), nil
		case *ts.Mono:
			args, err := t.typeCallArgsFree(ce.Arguments)
			if err != nil {
				return nil, err
			}
			fargs := make([]ts.FunArg, len(args))
			for i, a := range args {
				fargs[i] = ts.FunArg{T: a.T}
			}
			ret := ts.NewMono()
			if uerr := ts.Unify(callee.T, ts.Fun{Args: fargs, Ret: ret}); uerr != nil {
				return nil, diagnostics.WrapUnify(pos, "call", uerr)
			}
			return mk(ts.TCall{Callee: callee, Args: args}, ret, pos), nil
		case ts.Dyn:
			args, err := t.typeCallArgsFree(ce.Arguments)
			if err != nil {
				return nil, err
			}
			return mk(ts.TCall{Callee: callee, Args: args}, ts.Dyn{}, pos), nil
		default:
			return nil, diagnostics.Errorf(diagnostics.ErrT004, pos, "cannot call %s of type %s", name, callee.T)
		}

	default:
		return nil, diagnostics.Errorf(diagnostics.ErrT004, pos, "cannot call %s", name)
	}
}

func (t *Typer) typeCallArgsFree(actuals []ast.Expression) ([]*ts.TExpr, error) {
	out := make([]*ts.TExpr, 0, len(actuals))
	for _, a := range actuals {
		te, err := t.typeExpr(a, true)
		if err != nil {
			return nil, err
		}
		out = append(out, te)
	}
	return out, nil
}

// typeTrace rewrites trace(x) to the std logger with synthesized position
// infos, or to null under no_traces.
func (t *Typer) typeTrace(ce *ast.CallExpression, pos token.Position) (*ts.TExpr, error) {
	if t.g.Options.NoTraces {
		return mk(ts.TConst{C: ts.Constant{Kind: ts.ConstNull}}, t.g.TVoid(), pos), nil
	}
	log := t.g.Std.Log
	f, ok := log.Statics["trace"]
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrT004, pos, "Log.trace is missing")
	}
	fun := ts.Follow(f.Type).(ts.Fun)
	args, err := t.unifyCallParams("trace", ce.Arguments, fun.Args, pos, false)
	if err != nil {
		return nil, err
	}
	recv := mk(ts.TTypeExpr{Decl: log}, t.staticsType(log), pos)
	callee := mk(ts.TField{Receiver: recv, Name: "trace", Field: f, Class: log, Static: true}, f.Type, pos)
	return mk(ts.TCall{Callee: callee, Args: args}, fun.Ret, pos), nil
}

func (t *Typer) typeSuperCall(ce *ast.CallExpression, pos token.Position) (*ts.TExpr, error) {
	if !t.inConstructor || t.curClass == nil || t.curClass.Super == nil {
		return nil, diagnostics.NewError(diagnostics.ErrT006, pos, "super constructor call is only allowed in a constructor")
	}
	sup := t.curClass.Super
	ctorClass := sup.Decl
	for ctorClass.Constructor == nil && ctorClass.Super != nil {
		ctorClass = ctorClass.Super.Decl
	}
	if ctorClass.Constructor == nil {
		return nil, diagnostics.Errorf(diagnostics.ErrT006, pos, "%s has no constructor", sup.Decl.Path)
	}
	supParams := applyOwnerParams(t.curClass, t.classParams(), sup.Params)
	ctorT := ts.ApplyParams(sup.Decl.Params, supParams, ctorClass.Constructor.Type)
	fun, ok := ts.Follow(ctorT).(ts.Fun)
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrT004, pos, "invalid constructor type")
	}
	saved := t.inSuperCall
	t.inSuperCall = true
	args, err := t.unifyCallParams("super", ce.Arguments, fun.Args, pos, false)
	t.inSuperCall = saved
	if err != nil {
		return nil, err
	}
	callee := mk(ts.TConst{C: ts.Constant{Kind: ts.ConstSuper}}, ts.Inst{Decl: sup.Decl, Params: supParams}, pos)
	return mk(ts.TCall{Callee: callee, Args: args}, t.g.TVoid(), pos), nil
}

// typeNew resolves the constructor walking the extern super chain and
// matches the call through the parameter matcher.
func (t *Typer) typeNew(ne *ast.NewExpression) (*ts.TExpr, error) {
	pos := ne.Token.Pos
	typ, err := t.loadNamedType(ne.TypePath, pos)
	if err != nil {
		return nil, err
	}
	inst, ok := ts.Follow(typ).(ts.Inst)
	if !ok {
		return nil, diagnostics.Errorf(diagnostics.ErrT004, pos, "cannot instantiate %s", typ)
	}
	cls := inst.Decl
	if cls.Interface {
		return nil, diagnostics.Errorf(diagnostics.ErrT004, pos, "cannot instantiate interface %s", cls.Path)
	}
	ctorClass := cls
	for ctorClass.Constructor == nil && ctorClass.Super != nil && ctorClass.Super.Decl.Extern {
		ctorClass = ctorClass.Super.Decl
	}
	ctor := ctorClass.Constructor
	if ctor == nil {
		return nil, diagnostics.Errorf(diagnostics.ErrT006, pos, "%s does not have a constructor", cls.Path)
	}
	if !ctor.Public && !t.untyped {
		if t.curClass == nil || !cls.IsParentOf(t.curClass) {
			return nil, diagnostics.Errorf(diagnostics.ErrT006, pos, "cannot access private constructor of %s", cls.Path)
		}
	}
	ctorT := ts.ApplyParams(cls.Params, inst.Params, ctor.Type)
	fun, ok := ts.Follow(ctorT).(ts.Fun)
	if !ok {
		return nil, diagnostics.NewError(diagnostics.ErrT004, pos, "invalid constructor type")
	}
	args, err := t.unifyCallParams(cls.Path.Name, ne.Arguments, fun.Args, pos, false)
	if err != nil {
		return nil, err
	}
	glog.V(2).Infof("[%s] new %s", t.g.ID, cls.Path)
	return mk(ts.TNew{Class: cls, Params: inst.Params, Args: args}, inst, pos), nil
}

// typeCast types cast(e) as unchecked coercion to a fresh monomorph and
// cast(e, T) as a runtime-checked cast to a class or enum whose type
// parameters are all dynamic.
func (t *Typer) typeCast(ce *ast.CastExpression) (*ts.TExpr, error) {
	pos := ce.Token.Pos
	v, err := t.typeExpr(ce.Value, true)
	if err != nil {
		return nil, err
	}
	if ce.TypeHint == nil {
		return mk(ts.TCast{Value: v}, ts.NewMono(), pos), nil
	}
	typ, err := t.loadComplexType(ce.TypeHint, pos)
	if err != nil {
		return nil, err
	}
	switch tt := ts.Follow(typ).(type) {
	case ts.Inst:
		dynParams := make([]ts.Type, len(tt.Params))
		for i := range tt.Params {
			dynParams[i] = ts.Dyn{}
		}
		return mk(ts.TCast{Value: v, To: tt.Decl}, ts.Inst{Decl: tt.Decl, Params: dynParams}, pos), nil
	case ts.EnumType:
		dynParams := make([]ts.Type, len(tt.Params))
		for i := range tt.Params {
			dynParams[i] = ts.Dyn{}
		}
		return mk(ts.TCast{Value: v, To: tt.Decl}, ts.EnumType{Decl: tt.Decl, Params: dynParams}, pos), nil
	default:
		return nil, diagnostics.NewError(diagnostics.ErrT004, pos, "cast type must be a class or enum")
	}
}

func calleeName(e ast.Expression) string {
	switch e := e.(type) {
	case *ast.Identifier:
		return e.Value
	case *ast.MemberExpression:
		return e.Member.Value
	default:
		return "function"
	}
}

package typer

import (
	"github.com/cinderlang/cinder/internal/diagnostics"
	"github.com/cinderlang/cinder/internal/token"
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

// fieldOn resolves field `name` on an already-typed receiver and applies
// the property semantics for the requested mode.
func (t *Typer) fieldOn(mode AccessMode, recv *ts.TExpr, name string, pos token.Position) (AccessKind, error) {
	switch rt := ts.Follow(recv.T).(type) {
	case ts.Inst:
		if f, decl, dp, ok := rt.Decl.FieldByName(name, rt.Params); ok {
			return t.fieldAccess(mode, f, decl, dp, recv, false, pos)
		}
		if ak, ok := t.tryUsing(mode, recv, name); ok {
			return ak, nil
		}
		if t.untyped {
			return ExprAccess{mk(ts.TField{Receiver: recv, Name: name}, ts.NewMono(), pos)}, nil
		}
		return nil, diagnostics.Errorf(diagnostics.ErrT001, pos, "%s has no field %s", rt.Decl.Path, name)

	case ts.Anon:
		if rt.Status != nil {
			switch rt.Status.Kind {
			case ts.AnonStatics:
				c := rt.Status.Class
				if f, ok := c.Statics[name]; ok {
					return t.fieldAccess(mode, f, c, nil, recv, true, pos)
				}
				if t.untyped {
					return ExprAccess{mk(ts.TField{Receiver: recv, Name: name, Class: c, Static: true}, ts.NewMono(), pos)}, nil
				}
				return nil, diagnostics.Errorf(diagnostics.ErrT001, pos, "%s has no static field %s", c.Path, name)
			case ts.AnonEnumStatics:
				en := rt.Status.Enum
				if ctor, ok := en.Constrs[name]; ok {
					params := ts.FreshParams(en.Params)
					return ExprAccess{mk(ts.TEnumField{Enum: en, Ctor: ctor}, en.CtorType(ctor, params), pos)}, nil
				}
				return nil, diagnostics.Errorf(diagnostics.ErrT001, pos, "%s has no constructor %s", en.Path, name)
			}
		}
		if f, ok := rt.Fields[name]; ok {
			return t.fieldAccess(mode, f, nil, nil, recv, false, pos)
		}
		if rt.Status != nil && rt.Status.Kind == ts.AnonOpened {
			// Speculative inference: an opened anon accumulates demanded
			// fields until the scope closes it.
			m := ts.NewMono()
			rt.Fields[name] = &ts.ClassField{Name: name, Type: m, Kind: ts.VarKind(), Public: true}
			return ExprAccess{mk(ts.TField{Receiver: recv, Name: name}, m, pos)}, nil
		}
		if ak, ok := t.tryUsing(mode, recv, name); ok {
			return ak, nil
		}
		return nil, diagnostics.Errorf(diagnostics.ErrT001, pos, "object has no field %s", name)

	case *ts.Mono:
		// Unknown receiver: open an anonymous type and let unification
		// accumulate the demanded fields.
		m := ts.NewMono()
		status := &ts.AnonStatus{Kind: ts.AnonOpened}
		a := ts.Anon{
			Fields: map[string]*ts.ClassField{
				name: {Name: name, Type: m, Kind: ts.VarKind(), Public: true},
			},
			Status: status,
		}
		if err := ts.Unify(recv.T, a); err != nil {
			return nil, diagnostics.WrapUnify(pos, "field "+name, err)
		}
		t.opened = append(t.opened, status)
		return ExprAccess{mk(ts.TField{Receiver: recv, Name: name}, m, pos)}, nil

	case ts.Dyn:
		return ExprAccess{mk(ts.TField{Receiver: recv, Name: name}, ts.Dyn{}, pos)}, nil

	default:
		if ak, ok := t.tryUsing(mode, recv, name); ok {
			return ak, nil
		}
		if t.untyped {
			return ExprAccess{mk(ts.TField{Receiver: recv, Name: name}, ts.NewMono(), pos)}, nil
		}
		return nil, diagnostics.Errorf(diagnostics.ErrT001, pos, "%s has no field %s", recv.T, name)
	}
}

func (t *Typer) tryUsing(mode AccessMode, recv *ts.TExpr, name string) (AccessKind, bool) {
	if mode == ModeSet {
		return nil, false
	}
	return t.usingField(mode, recv, name)
}

// fieldAccess applies property read/write semantics to a resolved field.
func (t *Typer) fieldAccess(mode AccessMode, f *ts.ClassField, declClass *ts.ClassDecl, declParams []ts.Type, recv *ts.TExpr, static bool, pos token.Position) (AccessKind, error) {
	ft := f.Type
	if declClass != nil && len(declParams) > 0 {
		ft = ts.ApplyParams(declClass.Params, declParams, ft)
	}
	if len(f.Params) > 0 {
		ft = ts.ApplyParams(f.Params, ts.FreshParams(f.Params), ft)
	}

	field := func(closure bool) *ts.TExpr {
		return mk(ts.TField{Receiver: recv, Name: f.Name, Field: f, Class: declClass, Static: static, Closure: closure}, ft, pos)
	}

	if f.Kind.IsMethod {
		switch f.Kind.Method {
		case ts.MethMacro:
			switch mode {
			case ModeCall:
				return MacroAccess{Class: declClass, Field: f}, nil
			case ModeSet:
				return NoAccess{Name: f.Name}, nil
			default:
				return nil, diagnostics.Errorf(diagnostics.ErrT006, pos, "invalid macro access : %s", f.Name)
			}
		case ts.MethInline:
			if mode == ModeSet {
				return NoAccess{Name: f.Name}, nil
			}
			if !t.g.DoInline {
				break
			}
			return InlineAccess{Receiver: recv, Field: f, Class: declClass, T: ft}, nil
		case ts.MethDynamic:
			// Rebindable method: behaves like a plain field both ways.
			return ExprAccess{field(false)}, nil
		}
		// Normal (or inline-degraded) method.
		if mode == ModeSet {
			return NoAccess{Name: f.Name}, nil
		}
		if mode == ModeGet {
			// Reading a method as a value yields an explicit closure over
			// the receiver.
			return ExprAccess{field(true)}, nil
		}
		return ExprAccess{field(false)}, nil
	}

	access := f.Kind.Read
	if mode == ModeSet {
		access = f.Kind.Write
	}

	switch access {
	case ts.AccNormal:
		if mode == ModeGet && t.isReadOnlyFun(f, ft) {
			// Downstream code must see a callable value, not a property
			// reference.
			return ExprAccess{field(true)}, nil
		}
		return ExprAccess{field(false)}, nil

	case ts.AccNo:
		if t.untyped || t.inHierarchy(declClass) {
			return ExprAccess{field(false)}, nil
		}
		return NoAccess{Name: f.Name}, nil

	case ts.AccNever:
		if t.untyped {
			return ExprAccess{field(false)}, nil
		}
		return NoAccess{Name: f.Name}, nil

	case ts.AccInline:
		if mode == ModeSet {
			return NoAccess{Name: f.Name}, nil
		}
		return InlineAccess{Receiver: recv, Field: f, Class: declClass, T: ft}, nil

	case ts.AccResolve:
		if mode == ModeSet {
			return NoAccess{Name: f.Name}, nil
		}
		resolveCallee, err := t.resolveAccessorField(declClass, declParams, "resolve", recv, pos)
		if err != nil {
			return nil, err
		}
		nameArg := mk(ts.TConst{C: ts.Constant{Kind: ts.ConstString, Str: f.Name}}, t.g.TString(), pos)
		return ExprAccess{mk(ts.TCall{Callee: resolveCallee, Args: []*ts.TExpr{nameArg}}, ft, pos)}, nil

	case ts.AccCall:
		m := f.Accessor(mode == ModeSet)
		if t.isSelfAccessor(m, recv, declClass) {
			// Inside the accessor itself the raw slot is read/written
			// directly; the backend prefix disambiguates it.
			raw := *f
			raw.Name = t.g.Options.AccessorPrefix() + f.Name
			return ExprAccess{mk(ts.TField{Receiver: recv, Name: raw.Name, Field: f, Class: declClass, Static: static}, ft, pos)}, nil
		}
		if mode == ModeSet {
			return SetAccess{Receiver: recv, Setter: m, T: ft, FieldName: f.Name}, nil
		}
		getter, err := t.resolveAccessorField(declClass, declParams, m, recv, pos)
		if err != nil {
			return nil, err
		}
		return ExprAccess{mk(ts.TCall{Callee: getter, Args: nil}, ft, pos)}, nil

	default:
		return NoAccess{Name: f.Name}, nil
	}
}

// isReadOnlyFun reports whether f is a read-only variable of function
// type, which must be read as an explicit closure.
func (t *Typer) isReadOnlyFun(f *ts.ClassField, ft ts.Type) bool {
	if f.Kind.IsMethod {
		return false
	}
	if f.Kind.Write == ts.AccNormal || f.Kind.Write == ts.AccCall {
		return false
	}
	_, isFun := ts.Follow(ft).(ts.Fun)
	return isFun
}

func (t *Typer) inHierarchy(declClass *ts.ClassDecl) bool {
	if declClass == nil || t.curClass == nil {
		return false
	}
	return declClass.IsParentOf(t.curClass) || t.curClass.IsParentOf(declClass)
}

// isSelfAccessor detects the access from within the body of the accessor
// of its own receiver (syntactic this, or the enclosing class's statics).
func (t *Typer) isSelfAccessor(accessor string, recv *ts.TExpr, declClass *ts.ClassDecl) bool {
	if t.curMethod != accessor || t.curClass == nil || declClass == nil {
		return false
	}
	if declClass != t.curClass && !declClass.IsParentOf(t.curClass) {
		return false
	}
	switch r := recv.Expr.(type) {
	case ts.TConst:
		return r.C.Kind == ts.ConstThis
	case ts.TTypeExpr:
		return r.Decl == ts.Decl(t.curClass)
	}
	return false
}

// resolveAccessorField resolves an accessor method on the declaring class
// (member or static) and returns the callee field expression.
func (t *Typer) resolveAccessorField(declClass *ts.ClassDecl, declParams []ts.Type, name string, recv *ts.TExpr, pos token.Position) (*ts.TExpr, error) {
	if declClass == nil {
		// Anonymous receiver: accessors live on the object itself.
		return mk(ts.TField{Receiver: recv, Name: name}, ts.Dyn{}, pos), nil
	}
	if _, static := recv.Expr.(ts.TTypeExpr); static {
		if f, ok := declClass.Statics[name]; ok {
			mt := f.Type
			if len(declParams) > 0 {
				mt = ts.ApplyParams(declClass.Params, declParams, mt)
			}
			return mk(ts.TField{Receiver: recv, Name: name, Field: f, Class: declClass, Static: true}, mt, pos), nil
		}
	} else if f, decl, dp, ok := declClass.FieldByName(name, declParams); ok {
		mt := ts.ApplyParams(decl.Params, dp, f.Type)
		return mk(ts.TField{Receiver: recv, Name: name, Field: f, Class: decl}, mt, pos), nil
	}
	return nil, diagnostics.Errorf(diagnostics.ErrT006, pos, "method %s required by property %s is missing", name, fieldLabel(declClass, name))
}

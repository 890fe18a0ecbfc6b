package typer

import (
	"github.com/cinderlang/cinder/internal/ast"
	"github.com/cinderlang/cinder/internal/diagnostics"
	"github.com/cinderlang/cinder/internal/token"
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

// loadComplexType resolves a parser type annotation against the context:
// basic types, type parameters in scope, imported types, then the module
// loader. Missing type parameters are defaulted to fresh monomorphs.
func (t *Typer) loadComplexType(h ast.Type, pos token.Position) (ts.Type, error) {
	switch h := h.(type) {
	case *ast.NamedType:
		return t.loadNamedType(h, pos)
	case *ast.FunctionType:
		args := make([]ts.FunArg, len(h.Params))
		for i, p := range h.Params {
			pt, err := t.loadComplexType(p, pos)
			if err != nil {
				return nil, err
			}
			opt := false
			if i < len(h.Optional) {
				opt = h.Optional[i]
			}
			args[i] = ts.FunArg{Opt: opt, T: pt}
		}
		ret := ts.Type(ts.Inst{Decl: t.g.Std.Void})
		if h.Return != nil {
			var err error
			ret, err = t.loadComplexType(h.Return, pos)
			if err != nil {
				return nil, err
			}
		}
		return ts.Fun{Args: args, Ret: ret}, nil
	case *ast.AnonType:
		fields := make(map[string]*ts.ClassField, len(h.Fields))
		for _, f := range h.Fields {
			ft, err := t.loadComplexType(f.Type, pos)
			if err != nil {
				return nil, err
			}
			fields[f.Name] = &ts.ClassField{Name: f.Name, Type: ft, Kind: ts.VarKind(), Public: true}
		}
		return ts.Anon{Fields: fields, Status: &ts.AnonStatus{Kind: ts.AnonClosed}}, nil
	default:
		return nil, diagnostics.NewError(diagnostics.ErrT004, pos, "invalid type annotation")
	}
}

func (t *Typer) loadNamedType(h *ast.NamedType, pos token.Position) (ts.Type, error) {
	if len(h.Pack) == 0 {
		switch h.Name {
		case "Int":
			return t.g.TInt(), nil
		case "Float":
			return t.g.TFloat(), nil
		case "Bool":
			return t.g.TBool(), nil
		case "Void":
			return t.g.TVoid(), nil
		case "String":
			return t.g.TString(), nil
		case "Dynamic":
			return ts.Dyn{}, nil
		case "Null":
			if len(h.Params) != 1 {
				return nil, diagnostics.NewError(diagnostics.ErrT004, pos, "Null takes exactly one type parameter")
			}
			elem, err := t.loadComplexType(h.Params[0], pos)
			if err != nil {
				return nil, err
			}
			return t.g.NullOf(elem), nil
		}
		for _, p := range t.typeParams {
			if p.Name == h.Name {
				return ts.ParamType{Def: p}, nil
			}
		}
		for _, d := range t.localTypes {
			if d.DeclPath().Name == h.Name {
				return t.instantiate(d, h, pos)
			}
		}
	}
	decl, err := t.g.Loader.LoadType(ts.Path{Pack: h.Pack, Name: h.Name}, pos)
	if err != nil {
		return nil, diagnostics.Errorf(diagnostics.ErrT002, pos, "module not found : %s", ts.Path{Pack: h.Pack, Name: h.Name})
	}
	return t.instantiate(decl, h, pos)
}

func (t *Typer) instantiate(d ts.Decl, h *ast.NamedType, pos token.Position) (ts.Type, error) {
	var defs []*ts.ParamDef
	switch d := d.(type) {
	case *ts.ClassDecl:
		defs = d.Params
	case *ts.EnumDecl:
		defs = d.Params
	case *ts.DefDecl:
		defs = d.Params
	}
	if len(h.Params) > len(defs) {
		return nil, diagnostics.Errorf(diagnostics.ErrT004, pos, "too many type parameters for %s", d.DeclPath())
	}
	params := make([]ts.Type, len(defs))
	for i := range defs {
		if i < len(h.Params) {
			pt, err := t.loadComplexType(h.Params[i], pos)
			if err != nil {
				return nil, err
			}
			params[i] = pt
		} else {
			params[i] = ts.NewMono()
		}
	}
	switch d := d.(type) {
	case *ts.ClassDecl:
		return ts.Inst{Decl: d, Params: params}, nil
	case *ts.EnumDecl:
		return ts.EnumType{Decl: d, Params: params}, nil
	case *ts.DefDecl:
		return ts.Alias{Decl: d, Params: params}, nil
	default:
		return nil, diagnostics.Errorf(diagnostics.ErrT004, pos, "unexpected declaration %s", d.DeclPath())
	}
}

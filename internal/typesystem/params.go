package typesystem

// ApplyParams substitutes occurrences of the given type parameters inside
// t with the corresponding actual types. Parameters without a matching
// actual are left in place.
func ApplyParams(params []*ParamDef, actual []Type, t Type) Type {
	if len(params) == 0 || len(actual) == 0 || t == nil {
		return t
	}
	subst := make(map[*ParamDef]Type, len(params))
	for i, p := range params {
		if i < len(actual) {
			subst[p] = actual[i]
		}
	}
	return substParams(t, subst)
}

func substParams(t Type, subst map[*ParamDef]Type) Type {
	switch tt := t.(type) {
	case ParamType:
		if r, ok := subst[tt.Def]; ok {
			return r
		}
		return t
	case *Mono:
		if tt.Ref != nil {
			return substParams(tt.Ref, subst)
		}
		return t
	case Inst:
		return Inst{Decl: tt.Decl, Params: substSlice(tt.Params, subst)}
	case EnumType:
		return EnumType{Decl: tt.Decl, Params: substSlice(tt.Params, subst)}
	case Alias:
		return Alias{Decl: tt.Decl, Params: substSlice(tt.Params, subst)}
	case Nullable:
		return Nullable{Elem: substParams(tt.Elem, subst)}
	case Fun:
		args := make([]FunArg, len(tt.Args))
		for i, a := range tt.Args {
			args[i] = FunArg{Name: a.Name, Opt: a.Opt, T: substParams(a.T, subst)}
		}
		return Fun{Args: args, Ret: substParams(tt.Ret, subst)}
	case Anon:
		fields := make(map[string]*ClassField, len(tt.Fields))
		for name, f := range tt.Fields {
			nf := *f
			nf.Type = substParams(f.Type, subst)
			fields[name] = &nf
		}
		return Anon{Fields: fields, Status: tt.Status}
	default:
		return t
	}
}

func substSlice(ts []Type, subst map[*ParamDef]Type) []Type {
	if len(ts) == 0 {
		return ts
	}
	out := make([]Type, len(ts))
	for i, p := range ts {
		out[i] = substParams(p, subst)
	}
	return out
}

// FreshParams instantiates each parameter with a fresh monomorph, the way
// a generic class or method is monomorphized at a use site.
func FreshParams(params []*ParamDef) []Type {
	out := make([]Type, len(params))
	for i := range params {
		out[i] = NewMono()
	}
	return out
}

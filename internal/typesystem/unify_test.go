package typesystem

import (
	"testing"
)

func basicClass(name string) *ClassDecl {
	return &ClassDecl{Path: Path{Name: name}, Extern: true}
}

func TestFollowChains(t *testing.T) {
	intC := basicClass("Int")
	m1 := NewMono()
	m2 := NewMono()
	m1.Ref = m2
	m2.Ref = Inst{Decl: intC}
	if Follow(m1).String() != "Int" {
		t.Errorf("got %s", Follow(m1))
	}
}

func TestFollowExpandsAlias(t *testing.T) {
	intC := basicClass("Int")
	p := &ParamDef{Name: "T"}
	def := &DefDecl{Path: Path{Name: "Pair"}, Params: []*ParamDef{p}, T: Fun{Args: []FunArg{{T: ParamType{Def: p}}}, Ret: ParamType{Def: p}}}
	followed := Follow(Alias{Decl: def, Params: []Type{Inst{Decl: intC}}})
	fun, ok := followed.(Fun)
	if !ok {
		t.Fatalf("alias must expand, got %T", followed)
	}
	if fun.Ret.String() != "Int" {
		t.Errorf("params must be applied, got %s", fun.Ret)
	}
}

func TestUnifyBindsMonomorph(t *testing.T) {
	intC := basicClass("Int")
	m := NewMono()
	if err := Unify(m, Inst{Decl: intC}); err != nil {
		t.Fatalf("Unify: %v", err)
	}
	if m.Ref == nil || Follow(m).String() != "Int" {
		t.Errorf("monomorph not bound")
	}
}

func TestUnifyRollsBackOnFailure(t *testing.T) {
	intC := basicClass("Int")
	strC := basicClass("String")
	m := NewMono()
	from := Fun{Args: []FunArg{{T: m}, {T: Inst{Decl: intC}}}, Ret: Inst{Decl: intC}}
	to := Fun{Args: []FunArg{{T: Inst{Decl: intC}}, {T: Inst{Decl: strC}}}, Ret: Inst{Decl: intC}}
	if err := Unify(from, to); err == nil {
		t.Fatalf("expected failure")
	}
	if m.Ref != nil {
		t.Errorf("speculative binding must be rolled back, got %s", m.Ref)
	}
}

func TestOccursCheck(t *testing.T) {
	arr := basicClass("Array")
	arr.Params = []*ParamDef{{Name: "T"}}
	m := NewMono()
	if err := Unify(m, Inst{Decl: arr, Params: []Type{m}}); err == nil {
		t.Fatalf("occurs check must reject the recursive binding")
	}
	if m.Ref != nil {
		t.Errorf("failed bind must leave the cell unbound")
	}
}

func TestUnifySubclassIntoSuper(t *testing.T) {
	base := basicClass("Base")
	child := basicClass("Child")
	child.Super = &ClassRef{Decl: base}
	if err := Unify(Inst{Decl: child}, Inst{Decl: base}); err != nil {
		t.Errorf("subclass must flow into superclass: %v", err)
	}
	if err := Unify(Inst{Decl: base}, Inst{Decl: child}); err == nil {
		t.Errorf("superclass must not flow into subclass")
	}
}

func TestUnifyInterface(t *testing.T) {
	iface := basicClass("Readable")
	iface.Interface = true
	impl := basicClass("File")
	impl.Interfaces = []*ClassRef{{Decl: iface}}
	if err := Unify(Inst{Decl: impl}, Inst{Decl: iface}); err != nil {
		t.Errorf("implementation must flow into its interface: %v", err)
	}
}

func TestUnifyClassToAnon(t *testing.T) {
	intC := basicClass("Int")
	c := basicClass("P")
	c.AddField(&ClassField{Name: "x", Type: Inst{Decl: intC}, Kind: VarKind(), Public: true})
	want := Anon{
		Fields: map[string]*ClassField{"x": {Name: "x", Type: Inst{Decl: intC}, Kind: VarKind()}},
		Status: &AnonStatus{Kind: AnonClosed},
	}
	if err := Unify(Inst{Decl: c}, want); err != nil {
		t.Errorf("structural unify failed: %v", err)
	}
	missing := Anon{
		Fields: map[string]*ClassField{"y": {Name: "y", Type: Inst{Decl: intC}, Kind: VarKind()}},
		Status: &AnonStatus{Kind: AnonClosed},
	}
	if err := Unify(Inst{Decl: c}, missing); err == nil {
		t.Errorf("missing field must fail")
	}
}

func TestOpenedAnonAccumulatesAndRollsBack(t *testing.T) {
	intC := basicClass("Int")
	strC := basicClass("String")
	opened := Anon{Fields: map[string]*ClassField{}, Status: &AnonStatus{Kind: AnonOpened}}

	want := Anon{
		Fields: map[string]*ClassField{"x": {Name: "x", Type: Inst{Decl: intC}, Kind: VarKind()}},
		Status: &AnonStatus{Kind: AnonClosed},
	}
	if err := Unify(opened, want); err != nil {
		t.Fatalf("opened anon must accept new fields: %v", err)
	}
	if _, ok := opened.Fields["x"]; !ok {
		t.Fatalf("field not accumulated")
	}

	// A failing attempt must remove the fields it added.
	conflicting := Anon{
		Fields: map[string]*ClassField{
			"y": {Name: "y", Type: Inst{Decl: intC}, Kind: VarKind()},
			"x": {Name: "x", Type: Inst{Decl: strC}, Kind: VarKind()},
		},
		Status: &AnonStatus{Kind: AnonClosed},
	}
	if err := Unify(opened, conflicting); err == nil {
		t.Fatalf("conflicting field type must fail")
	}
	if _, ok := opened.Fields["y"]; ok {
		t.Errorf("rolled-back attempt must remove accumulated fields")
	}
}

func TestNullableUnify(t *testing.T) {
	intC := basicClass("Int")
	if err := Unify(Inst{Decl: intC}, Nullable{Elem: Inst{Decl: intC}}); err != nil {
		t.Errorf("T must flow into Null<T>: %v", err)
	}
	if err := Unify(Nullable{Elem: Inst{Decl: intC}}, Inst{Decl: intC}); err != nil {
		t.Errorf("Null<T> unifies with T: %v", err)
	}
}

func TestDynTop(t *testing.T) {
	intC := basicClass("Int")
	if err := Unify(Dyn{}, Inst{Decl: intC}); err != nil {
		t.Errorf("dynamic flows anywhere: %v", err)
	}
	if err := Unify(Inst{Decl: intC}, Dyn{}); err != nil {
		t.Errorf("anything flows into dynamic: %v", err)
	}
	if TryUnifyNoDyn(Dyn{}, Inst{Decl: intC}) {
		t.Errorf("no-dyn unify must reject the spurious dynamic match")
	}
	if !TryUnifyNoDyn(Inst{Decl: intC}, Inst{Decl: intC}) {
		t.Errorf("no-dyn unify must accept an honest match")
	}
}

func TestFunContravariance(t *testing.T) {
	base := basicClass("Base")
	child := basicClass("Child")
	child.Super = &ClassRef{Decl: base}
	intC := basicClass("Int")

	takesBase := Fun{Args: []FunArg{{T: Inst{Decl: base}}}, Ret: Inst{Decl: intC}}
	takesChild := Fun{Args: []FunArg{{T: Inst{Decl: child}}}, Ret: Inst{Decl: intC}}

	if err := Unify(takesBase, takesChild); err != nil {
		t.Errorf("argument contravariance: %v", err)
	}
	if err := Unify(takesChild, takesBase); err == nil {
		t.Errorf("covariant argument use must fail")
	}
}

func TestApplyParams(t *testing.T) {
	intC := basicClass("Int")
	arr := basicClass("Array")
	p := &ParamDef{Name: "T"}
	arr.Params = []*ParamDef{p}

	generic := Fun{Args: []FunArg{{T: ParamType{Def: p}}}, Ret: Inst{Decl: arr, Params: []Type{ParamType{Def: p}}}}
	applied := ApplyParams([]*ParamDef{p}, []Type{Inst{Decl: intC}}, generic)
	if applied.String() != "(Int) -> Array<Int>" {
		t.Errorf("got %s", applied)
	}
}

func TestMetaFirstWins(t *testing.T) {
	meta := []MetaEntry{
		{Name: "real", Args: []string{"first.Path"}},
		{Name: "real", Args: []string{"second.Path"}},
	}
	v, ok := MetaString(meta, "real")
	if !ok || v != "first.Path" {
		t.Errorf("first occurrence must win, got %q", v)
	}
}

func TestHasMono(t *testing.T) {
	intC := basicClass("Int")
	m := NewMono()
	if !HasMono(Fun{Args: []FunArg{{T: m}}, Ret: Inst{Decl: intC}}) {
		t.Errorf("unresolved monomorph not detected")
	}
	m.Ref = Inst{Decl: intC}
	if HasMono(Fun{Args: []FunArg{{T: m}}, Ret: Inst{Decl: intC}}) {
		t.Errorf("bound monomorph must not count")
	}
}

package docgen

import (
	"testing"

	ts "github.com/cinderlang/cinder/internal/typesystem"
)

func TestClassShapeRoundTrip(t *testing.T) {
	intC := &ts.ClassDecl{Path: ts.Path{Name: "Int"}, Extern: true}
	p := &ts.ParamDef{Name: "T"}
	c := &ts.ClassDecl{Path: ts.Path{Pack: []string{"data"}, Name: "Box"}, Params: []*ts.ParamDef{p}}
	c.AddField(&ts.ClassField{Name: "value", Type: ts.ParamType{Def: p}, Kind: ts.VarKind(), Public: true})
	c.AddStatic(&ts.ClassField{Name: "count", Type: ts.Inst{Decl: intC}, Kind: ts.VarKind(), Public: true})

	out, err := GenTypeString(c)
	if err != nil {
		t.Fatalf("GenTypeString: %v", err)
	}
	shape, err := ParseTypeString(out)
	if err != nil {
		t.Fatalf("ParseTypeString: %v\n%s", err, out)
	}
	if shape.Kind != "class" || shape.Path != "data.Box" {
		t.Errorf("wrong shape header: %+v", shape)
	}
	if len(shape.Params) != 1 || shape.Params[0] != "T" {
		t.Errorf("params lost: %+v", shape.Params)
	}
	if len(shape.Fields) != 2 || shape.Fields[0] != "value" || shape.Fields[1] != "count" {
		t.Errorf("fields lost: %+v", shape.Fields)
	}
}

func TestEnumShapeRoundTrip(t *testing.T) {
	p := &ts.ParamDef{Name: "T"}
	en := &ts.EnumDecl{Path: ts.Path{Name: "Option"}, Params: []*ts.ParamDef{p}}
	en.AddCtor("Some", []ts.FunArg{{Name: "v", T: ts.ParamType{Def: p}}})
	en.AddCtor("None", nil)

	out, err := GenTypeString(en)
	if err != nil {
		t.Fatalf("GenTypeString: %v", err)
	}
	shape, err := ParseTypeString(out)
	if err != nil {
		t.Fatalf("ParseTypeString: %v", err)
	}
	if shape.Kind != "enum" || shape.Path != "Option" {
		t.Errorf("wrong header: %+v", shape)
	}
	if len(shape.Fields) != 2 || shape.Fields[0] != "Some" || shape.Fields[1] != "None" {
		t.Errorf("constructors lost: %+v", shape.Fields)
	}
}

// Package docgen emits the XML shape of finalized type declarations for
// the documentation tooling. It is a one-way producer; the small parser
// here exists for shape verification.
package docgen

import (
	"encoding/xml"
	"strings"

	ts "github.com/cinderlang/cinder/internal/typesystem"
)

type xmlField struct {
	Name   string `xml:"name,attr"`
	Type   string `xml:"type,attr"`
	Static bool   `xml:"static,attr,omitempty"`
}

type xmlCtor struct {
	Name string `xml:"name,attr"`
	Args string `xml:"args,attr,omitempty"`
}

type xmlDecl struct {
	XMLName xml.Name
	Path    string     `xml:"path,attr"`
	Params  string     `xml:"params,attr,omitempty"`
	Extern  bool       `xml:"extern,attr,omitempty"`
	Fields  []xmlField `xml:"field"`
	Ctors   []xmlCtor  `xml:"constructor"`
}

// GenTypeString renders one declaration as its XML doc shape.
func GenTypeString(d ts.Decl) (string, error) {
	out := xmlDecl{Path: d.DeclPath().String()}
	switch d := d.(type) {
	case *ts.ClassDecl:
		out.XMLName = xml.Name{Local: "class"}
		if d.Interface {
			out.XMLName = xml.Name{Local: "interface"}
		}
		out.Params = paramNames(d.Params)
		out.Extern = d.Extern
		for _, name := range d.FieldOrder {
			f := d.Fields[name]
			out.Fields = append(out.Fields, xmlField{Name: f.Name, Type: f.Type.String()})
		}
		for _, name := range d.StaticOrder {
			f := d.Statics[name]
			out.Fields = append(out.Fields, xmlField{Name: f.Name, Type: f.Type.String(), Static: true})
		}
	case *ts.EnumDecl:
		out.XMLName = xml.Name{Local: "enum"}
		out.Params = paramNames(d.Params)
		for _, name := range d.Order {
			ctor := d.Constrs[name]
			var args []string
			for _, a := range ctor.Args {
				args = append(args, a.Name+":"+a.T.String())
			}
			out.Ctors = append(out.Ctors, xmlCtor{Name: ctor.Name, Args: strings.Join(args, ",")})
		}
	case *ts.DefDecl:
		out.XMLName = xml.Name{Local: "typedef"}
		out.Params = paramNames(d.Params)
	}
	data, err := xml.MarshalIndent(out, "", "\t")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func paramNames(defs []*ts.ParamDef) string {
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return strings.Join(names, ":")
}

// Shape is the recoverable (path, fields, params) triple of an emitted
// declaration.
type Shape struct {
	Kind   string
	Path   string
	Params []string
	Fields []string
}

// ParseTypeString recovers the shape of an emitted declaration.
func ParseTypeString(s string) (*Shape, error) {
	var d xmlDecl
	if err := xml.Unmarshal([]byte(s), &d); err != nil {
		return nil, err
	}
	shape := &Shape{Kind: d.XMLName.Local, Path: d.Path}
	if d.Params != "" {
		shape.Params = strings.Split(d.Params, ":")
	}
	for _, f := range d.Fields {
		shape.Fields = append(shape.Fields, f.Name)
	}
	for _, c := range d.Ctors {
		shape.Fields = append(shape.Fields, c.Name)
	}
	return shape, nil
}

package modules

import (
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

// Std holds the standard declarations every typing context binds at
// bootstrap.
type Std struct {
	Int, Float, Bool, Void *ts.ClassDecl
	String, Array          *ts.ClassDecl
	IntIterator            *ts.ClassDecl
	Iterator               *ts.DefDecl
	PosInfos               *ts.DefDecl
	Log                    *ts.ClassDecl
}

// BuildStd constructs the standard modules in Go, the way virtual
// packages are, and registers them: StdTypes (basic types), String,
// Array, Iterator, IntIterator, PosInfos, Log.
func BuildStd(r *Registry) *Std {
	std := &Std{}

	basic := func(name string) *ts.ClassDecl {
		return &ts.ClassDecl{Path: ts.Path{Name: name}, Module: "StdTypes", Extern: true}
	}
	std.Int = basic("Int")
	std.Float = basic("Float")
	std.Bool = basic("Bool")
	std.Void = basic("Void")

	tInt := ts.Inst{Decl: std.Int}
	tBool := ts.Inst{Decl: std.Bool}
	tVoid := ts.Inst{Decl: std.Void}

	method := func(name string, args []ts.FunArg, ret ts.Type) *ts.ClassField {
		return &ts.ClassField{
			Name:   name,
			Type:   ts.Fun{Args: args, Ret: ret},
			Kind:   ts.MethodFieldKind(ts.MethNormal),
			Public: true,
		}
	}
	roVar := func(name string, t ts.Type) *ts.ClassField {
		return &ts.ClassField{
			Name:   name,
			Type:   t,
			Kind:   ts.FieldKind{Read: ts.AccNormal, Write: ts.AccNever},
			Public: true,
		}
	}
	arg := func(name string, t ts.Type) ts.FunArg { return ts.FunArg{Name: name, T: t} }
	optArg := func(name string, t ts.Type) ts.FunArg { return ts.FunArg{Name: name, Opt: true, T: t} }

	// String
	std.String = &ts.ClassDecl{Path: ts.Path{Name: "String"}, Module: "String", Extern: true}
	tString := ts.Inst{Decl: std.String}
	std.String.AddField(roVar("length", tInt))
	std.String.AddField(method("charAt", []ts.FunArg{arg("index", tInt)}, tString))
	std.String.AddField(method("charCodeAt", []ts.FunArg{arg("index", tInt)}, tInt))
	std.String.AddField(method("indexOf", []ts.FunArg{arg("str", tString), optArg("startIndex", tInt)}, tInt))
	std.String.AddField(method("substr", []ts.FunArg{arg("pos", tInt), optArg("len", tInt)}, tString))
	std.String.AddField(method("toLowerCase", nil, tString))
	std.String.AddField(method("toUpperCase", nil, tString))
	std.String.AddField(method("toString", nil, tString))
	std.String.Constructor = method("new", []ts.FunArg{arg("string", tString)}, tVoid)

	// Iterator<T> = { hasNext: () -> Bool, next: () -> T }
	iterParam := &ts.ParamDef{Name: "T"}
	iterT := ts.ParamType{Def: iterParam}
	iterAnon := ts.Anon{
		Fields: map[string]*ts.ClassField{
			"hasNext": {Name: "hasNext", Type: ts.Fun{Ret: tBool}, Kind: ts.VarKind(), Public: true},
			"next":    {Name: "next", Type: ts.Fun{Ret: iterT}, Kind: ts.VarKind(), Public: true},
		},
		Status: &ts.AnonStatus{Kind: ts.AnonConst},
	}
	std.Iterator = &ts.DefDecl{
		Path:   ts.Path{Name: "Iterator"},
		Module: "Iterator",
		Params: []*ts.ParamDef{iterParam},
		T:      iterAnon,
	}

	// Array<T>
	arrParam := &ts.ParamDef{Name: "T"}
	arrT := ts.ParamType{Def: arrParam}
	std.Array = &ts.ClassDecl{
		Path:   ts.Path{Name: "Array"},
		Module: "Array",
		Extern: true,
		Params: []*ts.ParamDef{arrParam},
	}
	tArr := ts.Inst{Decl: std.Array, Params: []ts.Type{arrT}}
	std.Array.AddField(roVar("length", tInt))
	std.Array.AddField(method("concat", []ts.FunArg{arg("a", tArr)}, tArr))
	std.Array.AddField(method("join", []ts.FunArg{arg("sep", tString)}, tString))
	std.Array.AddField(method("push", []ts.FunArg{arg("x", arrT)}, tInt))
	std.Array.AddField(method("pop", nil, arrT))
	std.Array.AddField(method("shift", nil, arrT))
	std.Array.AddField(method("reverse", nil, tVoid))
	std.Array.AddField(method("iterator", nil, ts.Alias{Decl: std.Iterator, Params: []ts.Type{arrT}}))
	std.Array.Constructor = method("new", nil, tVoid)
	std.Array.ArrayAccess = true

	// IntIterator
	std.IntIterator = &ts.ClassDecl{Path: ts.Path{Name: "IntIterator"}, Module: "IntIterator"}
	std.IntIterator.AddField(method("hasNext", nil, tBool))
	std.IntIterator.AddField(method("next", nil, tInt))
	std.IntIterator.Constructor = method("new", []ts.FunArg{arg("min", tInt), arg("max", tInt)}, tVoid)

	// PosInfos
	posInfoField := func(name string, t ts.Type) *ts.ClassField {
		return &ts.ClassField{Name: name, Type: t, Kind: ts.VarKind(), Public: true}
	}
	std.PosInfos = &ts.DefDecl{
		Path:   ts.Path{Name: "PosInfos"},
		Module: "PosInfos",
		T: ts.Anon{
			Fields: map[string]*ts.ClassField{
				"fileName":   posInfoField("fileName", tString),
				"lineNumber": posInfoField("lineNumber", tInt),
				"className":  posInfoField("className", tString),
				"methodName": posInfoField("methodName", tString),
			},
			Status: &ts.AnonStatus{Kind: ts.AnonConst},
		},
	}

	// Log
	std.Log = &ts.ClassDecl{Path: ts.Path{Name: "Log"}, Module: "Log"}
	traceField := method("trace", []ts.FunArg{
		arg("v", ts.Dyn{}),
		optArg("infos", ts.Alias{Decl: std.PosInfos}),
	}, tVoid)
	std.Log.AddStatic(traceField)

	r.Register(&Module{Name: "StdTypes", Decls: []ts.Decl{std.Int, std.Float, std.Bool, std.Void}})
	r.Register(&Module{Name: "String", Decls: []ts.Decl{std.String}})
	r.Register(&Module{Name: "Array", Decls: []ts.Decl{std.Array}})
	r.Register(&Module{Name: "Iterator", Decls: []ts.Decl{std.Iterator}})
	r.Register(&Module{Name: "IntIterator", Decls: []ts.Decl{std.IntIterator}})
	r.Register(&Module{Name: "PosInfos", Decls: []ts.Decl{std.PosInfos}})
	r.Register(&Module{Name: "Log", Decls: []ts.Decl{std.Log}})

	return std
}

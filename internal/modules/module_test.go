package modules

import (
	"testing"

	"github.com/cinderlang/cinder/internal/token"
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

func TestRegistryCacheAndProvide(t *testing.T) {
	r := NewRegistry()
	calls := 0
	r.Provide = func(path ts.Path) (*Module, error) {
		calls++
		return &Module{Name: path.String(), Decls: []ts.Decl{
			&ts.ClassDecl{Path: path, Module: path.String()},
		}}, nil
	}

	p := ts.Path{Pack: []string{"net"}, Name: "Socket"}
	m1, err := r.LoadModule(p, token.Position{})
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	m2, err := r.LoadModule(p, token.Position{})
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	if m1 != m2 || calls != 1 {
		t.Errorf("module must be cached, provide called %d times", calls)
	}

	d, err := r.LoadType(p, token.Position{})
	if err != nil {
		t.Fatalf("LoadType: %v", err)
	}
	if d.DeclPath().String() != "net.Socket" {
		t.Errorf("got %s", d.DeclPath())
	}
}

func TestRegistryCycleDetection(t *testing.T) {
	r := NewRegistry()
	r.Provide = func(path ts.Path) (*Module, error) {
		// A module that tries to load itself while loading.
		return nil, func() error {
			_, err := r.LoadModule(path, token.Position{})
			return err
		}()
	}
	if _, err := r.LoadModule(ts.Path{Name: "Selfish"}, token.Position{}); err == nil {
		t.Fatalf("loading loop must be detected")
	}
}

func TestModuleNotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.LoadModule(ts.Path{Name: "Nope"}, token.Position{})
	var nf *ModuleNotFoundError
	if !asModuleNotFound(err, &nf) {
		t.Fatalf("expected ModuleNotFoundError, got %v", err)
	}
}

func asModuleNotFound(err error, target **ModuleNotFoundError) bool {
	if e, ok := err.(*ModuleNotFoundError); ok {
		*target = e
		return true
	}
	return false
}

func TestBuildStdSurface(t *testing.T) {
	r := NewRegistry()
	std := BuildStd(r)

	if std.Int == nil || std.Float == nil || std.Bool == nil || std.Void == nil {
		t.Fatal("basic types missing")
	}
	if std.String == nil || std.Array == nil || std.IntIterator == nil {
		t.Fatal("std classes missing")
	}
	if !std.Array.ArrayAccess {
		t.Errorf("Array must support subscripting")
	}
	if _, ok := std.Array.Fields["iterator"]; !ok {
		t.Errorf("Array.iterator missing")
	}
	if _, ok := std.String.Fields["length"]; !ok {
		t.Errorf("String.length missing")
	}
	if std.PosInfos == nil {
		t.Fatal("PosInfos typedef missing")
	}
	anon, ok := std.PosInfos.T.(ts.Anon)
	if !ok {
		t.Fatalf("PosInfos must be an anonymous structure")
	}
	for _, f := range []string{"fileName", "lineNumber", "className", "methodName"} {
		if _, ok := anon.Fields[f]; !ok {
			t.Errorf("PosInfos.%s missing", f)
		}
	}
	if _, ok := std.Log.Statics["trace"]; !ok {
		t.Errorf("Log.trace missing")
	}

	for _, name := range []string{"StdTypes", "String", "Array", "IntIterator", "Log"} {
		if _, err := r.LoadModule(ts.Path{Name: name}, token.Position{}); err != nil {
			t.Errorf("std module %s not registered: %v", name, err)
		}
	}
}

// Package modules implements the module registry the typer loads type
// declarations from. The parser-facing side of loading lives outside this
// repository; modules arrive either from the std bootstrap or through the
// registry's Provide hook.
package modules

import (
	"fmt"

	"github.com/cinderlang/cinder/internal/token"
	"github.com/cinderlang/cinder/internal/typesystem"
)

// Module is one compiled module: a named container of type declarations.
type Module struct {
	Name  string
	Decls []typesystem.Decl
}

// Decl finds a declaration by type name.
func (m *Module) Decl(name string) (typesystem.Decl, bool) {
	for _, d := range m.Decls {
		if d.DeclPath().Name == name {
			return d, true
		}
	}
	return nil, false
}

// Loader resolves type paths to declarations.
type Loader interface {
	LoadModule(path typesystem.Path, pos token.Position) (*Module, error)
	LoadType(path typesystem.Path, pos token.Position) (typesystem.Decl, error)
}

// ModuleNotFoundError reports a failed module resolution, carrying the
// path and the offending name for the prefix-greedy resolver.
type ModuleNotFoundError struct {
	Path typesystem.Path
}

func (e *ModuleNotFoundError) Error() string {
	return fmt.Sprintf("module not found: %s", e.Path)
}

// Registry is the in-memory Loader. The std modules are registered up
// front; anything else goes through the Provide hook, with cycle
// detection while a module is being provided.
type Registry struct {
	loaded     map[string]*Module
	order      []string
	processing map[string]bool

	// Provide supplies modules the registry does not know, e.g. from
	// a declaration store produced by the external frontend.
	Provide func(path typesystem.Path) (*Module, error)
}

func NewRegistry() *Registry {
	return &Registry{
		loaded:     map[string]*Module{},
		processing: map[string]bool{},
	}
}

// Register adds a module under its name.
func (r *Registry) Register(m *Module) {
	if _, ok := r.loaded[m.Name]; !ok {
		r.order = append(r.order, m.Name)
	}
	r.loaded[m.Name] = m
}

// Modules returns the loaded modules in registration order.
func (r *Registry) Modules() []*Module {
	out := make([]*Module, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.loaded[name])
	}
	return out
}

// LoadModule resolves a module path.
func (r *Registry) LoadModule(path typesystem.Path, pos token.Position) (*Module, error) {
	name := path.String()
	if m, ok := r.loaded[name]; ok {
		return m, nil
	}
	if r.processing[name] {
		return nil, fmt.Errorf("module loading loop: %s", name)
	}
	if r.Provide == nil {
		return nil, &ModuleNotFoundError{Path: path}
	}
	r.processing[name] = true
	defer delete(r.processing, name)
	m, err := r.Provide(path)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, &ModuleNotFoundError{Path: path}
	}
	r.Register(m)
	return m, nil
}

// LoadType resolves a type path to its declaration: the module named by
// the path is loaded and searched for the type name.
func (r *Registry) LoadType(path typesystem.Path, pos token.Position) (typesystem.Decl, error) {
	m, err := r.LoadModule(path, pos)
	if err != nil {
		return nil, err
	}
	if d, ok := m.Decl(path.Name); ok {
		return d, nil
	}
	return nil, fmt.Errorf("module %s does not define type %s", m.Name, path.Name)
}

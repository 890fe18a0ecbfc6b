package typer

import (
	"github.com/cinderlang/cinder/internal/ast"
	"github.com/cinderlang/cinder/internal/diagnostics"
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

// typeDisplay handles the editor-integration query: it types the subject,
// merges the fields reachable on it (hierarchy plus using extensions
// whose first parameter accepts the subject) and aborts typing with a
// Display signal carrying the synthesized anonymous type.
func (t *Typer) typeDisplay(de *ast.DisplayExpression) (*ts.TExpr, error) {
	saved := t.inDisplay
	t.inDisplay = true
	inner, err := t.typeExpr(de.Value, true)
	t.inDisplay = saved
	if err != nil {
		return nil, err
	}

	fields := map[string]*ts.ClassField{}

	switch it := ts.Follow(inner.T).(type) {
	case ts.Inst:
		cur, params := it.Decl, it.Params
		for cur != nil {
			for _, name := range cur.FieldOrder {
				f := cur.Fields[name]
				if _, seen := fields[name]; seen {
					continue
				}
				if !f.Public && !t.inHierarchy(cur) {
					continue
				}
				nf := *f
				nf.Type = ts.ApplyParams(cur.Params, params, f.Type)
				fields[name] = &nf
			}
			if cur.Super == nil {
				break
			}
			params = applyOwnerParams(cur, params, cur.Super.Params)
			cur = cur.Super.Decl
		}
	case ts.Anon:
		if it.Status != nil && it.Status.Kind == ts.AnonStatics {
			for name, f := range it.Status.Class.Statics {
				fields[name] = f
			}
		} else {
			for name, f := range it.Fields {
				fields[name] = f
			}
		}
	}

	for _, cls := range t.localUsing {
		for _, name := range cls.StaticOrder {
			f := cls.Statics[name]
			if !f.Kind.IsMethod || f.Kind.Method == ts.MethMacro {
				continue
			}
			if _, seen := fields[name]; seen {
				continue
			}
			fun, ok := ts.Follow(f.Type).(ts.Fun)
			if !ok || len(fun.Args) == 0 {
				continue
			}
			if !ts.TryUnifyNoDyn(inner.T, fun.Args[0].T) {
				continue
			}
			nf := *f
			nf.Type = ts.Fun{Args: fun.Args[1:], Ret: fun.Ret}
			fields[name] = &nf
		}
	}

	return nil, &diagnostics.DisplaySignal{
		T: ts.Anon{Fields: fields, Status: &ts.AnonStatus{Kind: ts.AnonConst}},
	}
}

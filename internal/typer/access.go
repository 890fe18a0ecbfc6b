package typer

import (
	"unicode"

	"github.com/cinderlang/cinder/internal/ast"
	"github.com/cinderlang/cinder/internal/diagnostics"
	"github.com/cinderlang/cinder/internal/token"
	ts "github.com/cinderlang/cinder/internal/typesystem"
)

// AccessKind is the tagged descriptor of a resolved l- or r-value.
type AccessKind interface {
	accessKind()
}

// NoAccess: not readable/writable; Name is the offending name.
type NoAccess struct {
	Name string
}

// ExprAccess: a plain typed expression.
type ExprAccess struct {
	E *ts.TExpr
}

// SetAccess: write side of a property deferred until the RHS is known;
// combining with the RHS emits the setter call.
type SetAccess struct {
	Receiver  *ts.TExpr
	Setter    string
	T         ts.Type
	FieldName string
}

// InlineAccess: a method (or inline variable) to expand at call or
// closure synthesis time.
type InlineAccess struct {
	Receiver *ts.TExpr
	Field    *ts.ClassField
	Class    *ts.ClassDecl
	T        ts.Type
}

// MacroAccess: a macro call site. Cannot be read or assigned.
type MacroAccess struct {
	Class *ts.ClassDecl
	Field *ts.ClassField
}

// UsingAccess: an extension-method call with the first argument bound.
type UsingAccess struct {
	Callee *ts.TExpr
	Arg    *ts.TExpr
}

func (NoAccess) accessKind()     {}
func (ExprAccess) accessKind()   {}
func (SetAccess) accessKind()    {}
func (InlineAccess) accessKind() {}
func (MacroAccess) accessKind()  {}
func (UsingAccess) accessKind()  {}

// typeAccess produces the AccessKind for any path+mode triple.
func (t *Typer) typeAccess(e ast.Expression, mode AccessMode) (AccessKind, error) {
	switch e := e.(type) {
	case *ast.Identifier:
		return t.typeIdent(e, mode)
	case *ast.MemberExpression:
		return t.typeMember(e, mode)
	case *ast.IndexExpression:
		return t.typeIndex(e, mode)
	default:
		te, err := t.typeExpr(e, true)
		if err != nil {
			return nil, err
		}
		return ExprAccess{E: te}, nil
	}
}

func (t *Typer) typeIdent(i *ast.Identifier, mode AccessMode) (AccessKind, error) {
	pos := i.Token.Pos
	name := intern(i.Value)

	// Keyword identifiers fold to constants; none of them is writable.
	switch name {
	case "true", "false":
		if mode == ModeSet {
			return NoAccess{Name: name}, nil
		}
		return ExprAccess{mk(ts.TConst{C: ts.Constant{Kind: ts.ConstBool, Bool: name == "true"}}, t.g.TBool(), pos)}, nil
	case "null":
		if mode == ModeSet {
			return NoAccess{Name: name}, nil
		}
		return ExprAccess{mk(ts.TConst{C: ts.Constant{Kind: ts.ConstNull}}, ts.NewMono(), pos)}, nil
	case "this":
		if mode == ModeSet {
			return NoAccess{Name: name}, nil
		}
		if t.inStatic || t.curClass == nil {
			return nil, diagnostics.NewError(diagnostics.ErrT006, pos, "cannot access this from a static function")
		}
		return ExprAccess{mk(ts.TConst{C: ts.Constant{Kind: ts.ConstThis}}, t.tthis, pos)}, nil
	case "super":
		if mode == ModeSet {
			return NoAccess{Name: name}, nil
		}
		if t.curClass == nil || t.curClass.Super == nil {
			return nil, diagnostics.NewError(diagnostics.ErrT006, pos, "current class does not have a super class")
		}
		if !t.inSuperCall {
			return nil, diagnostics.NewError(diagnostics.ErrT006, pos, "cannot use super as a value")
		}
		sup := t.curClass.Super
		supT := ts.Inst{Decl: sup.Decl, Params: applyOwnerParams(t.curClass, t.classParams(), sup.Params)}
		return ExprAccess{mk(ts.TConst{C: ts.Constant{Kind: ts.ConstSuper}}, supT, pos)}, nil
	}

	// 1. local variable
	if actual, typ, ok := t.lookupLocal(name); ok {
		return ExprAccess{mk(ts.TLocal{Name: actual}, typ, pos)}, nil
	}

	// 2. member field of the enclosing class
	if !t.inStatic && t.curClass != nil {
		if f, decl, dp, ok := t.curClass.FieldByName(name, t.classParams()); ok {
			this := mk(ts.TConst{C: ts.Constant{Kind: ts.ConstThis}}, t.tthis, pos)
			return t.fieldAccess(mode, f, decl, dp, this, false, pos)
		}
	}

	// 3. using-extension static over `this`
	if !t.inStatic && t.curClass != nil && mode != ModeSet {
		this := mk(ts.TConst{C: ts.Constant{Kind: ts.ConstThis}}, t.tthis, pos)
		if ak, ok := t.usingField(mode, this, name); ok {
			return ak, nil
		}
	}

	// 4. static field of the enclosing class
	if t.curClass != nil {
		if f, ok := t.curClass.Statics[name]; ok {
			recv := mk(ts.TTypeExpr{Decl: t.curClass}, t.staticsType(t.curClass), pos)
			return t.fieldAccess(mode, f, t.curClass, nil, recv, true, pos)
		}
	}

	// 5. constructor of an imported enum
	for _, d := range t.localTypes {
		en, ok := d.(*ts.EnumDecl)
		if !ok {
			continue
		}
		if ctor, ok := en.Constrs[name]; ok {
			params := ts.FreshParams(en.Params)
			return ExprAccess{mk(ts.TEnumField{Enum: en, Ctor: ctor}, en.CtorType(ctor, params), pos)}, nil
		}
	}

	// 6. top-level type
	if mode != ModeSet {
		for _, d := range t.localTypes {
			if d.DeclPath().Name == name {
				return ExprAccess{t.typeExprOfDecl(d, pos)}, nil
			}
		}
	}

	// 7. untyped mode invents a placeholder local
	if t.untyped {
		m := ts.NewMono()
		t.locals[name] = m
		return ExprAccess{mk(ts.TLocal{Name: name}, m, pos)}, nil
	}

	return nil, diagnostics.Errorf(diagnostics.ErrT001, pos, "unknown identifier : %s", name)
}

// typeExprOfDecl builds the value form of a type reference: an anonymous
// object of its statics (or enum constructors).
func (t *Typer) typeExprOfDecl(d ts.Decl, pos token.Position) *ts.TExpr {
	switch d := d.(type) {
	case *ts.ClassDecl:
		return mk(ts.TTypeExpr{Decl: d}, t.staticsType(d), pos)
	case *ts.EnumDecl:
		return mk(ts.TTypeExpr{Decl: d}, t.enumStaticsType(d), pos)
	default:
		return mk(ts.TTypeExpr{Decl: d}, ts.Dyn{}, pos)
	}
}

func (t *Typer) staticsType(c *ts.ClassDecl) ts.Type {
	return ts.Anon{Fields: c.Statics, Status: &ts.AnonStatus{Kind: ts.AnonStatics, Class: c}}
}

func (t *Typer) enumStaticsType(e *ts.EnumDecl) ts.Type {
	return ts.Anon{Fields: map[string]*ts.ClassField{}, Status: &ts.AnonStatus{Kind: ts.AnonEnumStatics, Enum: e}}
}

func (t *Typer) typeMember(me *ast.MemberExpression, mode AccessMode) (AccessKind, error) {
	name := intern(me.Member.Value)
	pos := me.Token.Pos

	k, err := t.typeAccess(me.Left, ModeGet)
	if err == nil {
		recv, gerr := t.accGet(k, me.Left.GetToken().Pos)
		if gerr != nil {
			return nil, gerr
		}
		return t.fieldOn(mode, recv, name, pos)
	}

	// Expression typing failed; field paths over dotted identifier chains
	// are retried prefix-greedily as module paths.
	de, ok := err.(*diagnostics.DiagnosticError)
	if !ok || (de.Code != diagnostics.ErrT001 && de.Code != diagnostics.ErrT002) {
		return nil, err
	}
	chain, isChain := identChain(me)
	if !isChain {
		return nil, err
	}
	for cut := len(chain); cut >= 1; cut-- {
		path := pathOfChain(chain[:cut])
		decl, lerr := t.g.Loader.LoadType(path, pos)
		if lerr != nil {
			continue
		}
		var cur AccessKind = ExprAccess{t.typeExprOfDecl(decl, pos)}
		for i, seg := range chain[cut:] {
			segMode := ModeGet
			if i == len(chain[cut:])-1 {
				segMode = mode
			}
			recv, gerr := t.accGet(cur, pos)
			if gerr != nil {
				return nil, gerr
			}
			cur, gerr = t.fieldOn(segMode, recv, intern(seg.Value), seg.Token.Pos)
			if gerr != nil {
				return nil, gerr
			}
		}
		return cur, nil
	}
	// Locate the first capitalized segment and report the module that
	// failed to resolve.
	for i, seg := range chain {
		if isCapitalized(seg.Value) {
			path := pathOfChain(chain[:i+1])
			return nil, diagnostics.Errorf(diagnostics.ErrT002, chain[0].Token.Pos, "module not found : %s", path)
		}
	}
	return nil, err
}

func identChain(e ast.Expression) ([]*ast.Identifier, bool) {
	switch e := e.(type) {
	case *ast.Identifier:
		return []*ast.Identifier{e}, true
	case *ast.MemberExpression:
		left, ok := identChain(e.Left)
		if !ok {
			return nil, false
		}
		return append(left, e.Member), true
	}
	return nil, false
}

func pathOfChain(chain []*ast.Identifier) ts.Path {
	parts := make([]string, len(chain))
	for i, c := range chain {
		parts[i] = intern(c.Value)
	}
	return ts.Path{Pack: parts[:len(parts)-1], Name: parts[len(parts)-1]}
}

func isCapitalized(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func (t *Typer) typeIndex(ie *ast.IndexExpression, mode AccessMode) (AccessKind, error) {
	pos := ie.Token.Pos
	base, err := t.typeExpr(ie.Left, true)
	if err != nil {
		return nil, err
	}
	index, err := t.typeExpr(ie.Index, true)
	if err != nil {
		return nil, err
	}

	elem, err := t.arrayElemType(base, index, pos)
	if err != nil {
		return nil, err
	}
	return ExprAccess{mk(ts.TArray{Base: base, Index: index}, elem, pos)}, nil
}

// arrayElemType determines the element type of a subscript. Subscriptable
// classes are found through the :arrayAccess marker walking up the
// hierarchy; anything unresolved falls back to unifying with Array.
func (t *Typer) arrayElemType(base, index *ts.TExpr, pos token.Position) (ts.Type, error) {
	if err := ts.Unify(index.T, t.g.TInt()); err != nil {
		return nil, diagnostics.WrapUnify(index.Pos, "array index", err)
	}
	switch bt := ts.Follow(base.T).(type) {
	case ts.Dyn:
		return ts.Dyn{}, nil
	case ts.Inst:
		cur, params := bt.Decl, bt.Params
		for cur != nil {
			if cur.ArrayAccess {
				if len(params) > 0 {
					return params[0], nil
				}
				return ts.Dyn{}, nil
			}
			if cur.Super == nil {
				break
			}
			params = applyOwnerParams(cur, params, cur.Super.Params)
			cur = cur.Super.Decl
		}
	}
	elem := ts.NewMono()
	if err := ts.Unify(base.T, t.g.TArray(elem)); err != nil {
		return nil, diagnostics.WrapUnify(pos, "array access is not allowed on this expression", err)
	}
	return elem, nil
}

func applyOwnerParams(owner *ts.ClassDecl, actual []ts.Type, raw []ts.Type) []ts.Type {
	out := make([]ts.Type, len(raw))
	for i, p := range raw {
		out[i] = ts.ApplyParams(owner.Params, actual, p)
	}
	return out
}

// accGet lowers an access kind in read position to a typed expression.
func (t *Typer) accGet(k AccessKind, pos token.Position) (*ts.TExpr, error) {
	switch k := k.(type) {
	case ExprAccess:
		return k.E, nil
	case NoAccess:
		return nil, diagnostics.Errorf(diagnostics.ErrT006, pos, "field %s cannot be accessed for reading", k.Name)
	case SetAccess:
		return nil, diagnostics.Errorf(diagnostics.ErrT006, pos, "invalid read of write-only property %s", k.FieldName)
	case MacroAccess:
		return nil, diagnostics.Errorf(diagnostics.ErrT006, pos, "invalid macro access : %s", k.Field.Name)
	case InlineAccess:
		return t.inlineGet(k, pos)
	case UsingAccess:
		return t.usingGet(k, pos)
	default:
		return nil, diagnostics.NewError(diagnostics.ErrT004, pos, "invalid access")
	}
}

func fieldLabel(class *ts.ClassDecl, name string) string {
	if class == nil {
		return name
	}
	return class.Path.String() + "." + name
}

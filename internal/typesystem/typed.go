package typesystem

import (
	"github.com/cinderlang/cinder/internal/token"
)

// TExpr is a fully typed expression node: every node carries its resolved
// type and its source position.
type TExpr struct {
	Expr TypedExpr
	T    Type
	Pos  token.Position
}

// TypedExpr is the closed set of typed expression shapes.
type TypedExpr interface {
	typedExprNode()
}

// ConstKind discriminates typed constants.
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstFloat
	ConstString
	ConstBool
	ConstNull
	ConstThis
	ConstSuper
)

// Constant is a typed constant payload.
type Constant struct {
	Kind  ConstKind
	Int   int64
	Float float64
	Str   string
	Bool  bool
}

type TConst struct{ C Constant }

type TLocal struct{ Name string }

// TTypeExpr references a type declaration as a value (module statics
// access, reflection).
type TTypeExpr struct{ Decl Decl }

// TField is a field access. Closure marks the explicit closure node
// emitted when a method (or read-only function-typed var) is read as a
// value instead of called.
type TField struct {
	Receiver *TExpr
	Name     string
	Field    *ClassField
	Class    *ClassDecl // declaring class; nil for anonymous receivers
	Static   bool
	Closure  bool
}

// TEnumField references an enum constructor.
type TEnumField struct {
	Enum *EnumDecl
	Ctor *EnumCtor
}

type TArray struct{ Base, Index *TExpr }

type TBinop struct {
	Op          string
	Left, Right *TExpr
}

type TUnop struct {
	Op      string
	Prefix  bool
	Operand *TExpr
}

type TCall struct {
	Callee *TExpr
	Args   []*TExpr
}

type TNew struct {
	Class  *ClassDecl
	Params []Type
	Args   []*TExpr
}

type TFuncArg struct {
	Name    string
	T       Type
	Opt     bool
	Default *TExpr
}

type TFunction struct {
	Args []TFuncArg
	Ret  Type
	Body *TExpr
}

type TVarDecl struct {
	Name string
	T    Type
	Init *TExpr
}

type TVars struct{ Vars []TVarDecl }

type TBlock struct{ Exprs []*TExpr }

type TIf struct{ Cond, Then, Else *TExpr }

type TWhile struct {
	Cond, Body *TExpr
	DoWhile    bool
}

type TFor struct {
	VarName  string
	VarType  Type
	Iterated *TExpr
	Body     *TExpr
}

type TSwitchCase struct {
	Values []*TExpr
	Body   *TExpr
}

// TSwitch is a value switch.
type TSwitch struct {
	Subject *TExpr
	Cases   []TSwitchCase
	Default *TExpr
}

type TMatchBinding struct {
	Name    string
	T       Type
	CtorArg int
}

type TMatchCase struct {
	Ctors    []*EnumCtor
	Bindings []TMatchBinding
	Body     *TExpr
}

// TMatch is an enum match, compiled over constructor indices.
type TMatch struct {
	Subject *TExpr
	Enum    *EnumDecl
	Cases   []TMatchCase
	Default *TExpr
}

type TCatch struct {
	Name string
	T    Type
	Body *TExpr
}

type TTry struct {
	Body    *TExpr
	Catches []TCatch
}

type TReturn struct{ Value *TExpr } // Value nil for bare return

type TBreak struct{}

type TContinue struct{}

type TThrow struct{ Value *TExpr }

// TCast is a cast; To is nil for the unchecked form.
type TCast struct {
	Value *TExpr
	To    Decl
}

type TObjectField struct {
	Name  string
	Value *TExpr
}

type TObjectDecl struct{ Fields []TObjectField }

type TArrayDecl struct{ Elems []*TExpr }

func (TConst) typedExprNode()      {}
func (TLocal) typedExprNode()      {}
func (TTypeExpr) typedExprNode()   {}
func (TField) typedExprNode()      {}
func (TEnumField) typedExprNode()  {}
func (TArray) typedExprNode()      {}
func (TBinop) typedExprNode()      {}
func (TUnop) typedExprNode()       {}
func (TCall) typedExprNode()       {}
func (TNew) typedExprNode()        {}
func (TFunction) typedExprNode()   {}
func (TVars) typedExprNode()       {}
func (TBlock) typedExprNode()      {}
func (TIf) typedExprNode()         {}
func (TWhile) typedExprNode()      {}
func (TFor) typedExprNode()        {}
func (TSwitch) typedExprNode()     {}
func (TMatch) typedExprNode()      {}
func (TTry) typedExprNode()        {}
func (TReturn) typedExprNode()     {}
func (TBreak) typedExprNode()      {}
func (TContinue) typedExprNode()   {}
func (TThrow) typedExprNode()      {}
func (TCast) typedExprNode()       {}
func (TObjectDecl) typedExprNode() {}
func (TArrayDecl) typedExprNode()  {}

// Iter calls f on every direct child of e.
func Iter(e *TExpr, f func(*TExpr)) {
	visit := func(c *TExpr) {
		if c != nil {
			f(c)
		}
	}
	switch x := e.Expr.(type) {
	case TField:
		visit(x.Receiver)
	case TArray:
		visit(x.Base)
		visit(x.Index)
	case TBinop:
		visit(x.Left)
		visit(x.Right)
	case TUnop:
		visit(x.Operand)
	case TCall:
		visit(x.Callee)
		for _, a := range x.Args {
			visit(a)
		}
	case TNew:
		for _, a := range x.Args {
			visit(a)
		}
	case TFunction:
		for _, a := range x.Args {
			visit(a.Default)
		}
		visit(x.Body)
	case TVars:
		for _, v := range x.Vars {
			visit(v.Init)
		}
	case TBlock:
		for _, c := range x.Exprs {
			visit(c)
		}
	case TIf:
		visit(x.Cond)
		visit(x.Then)
		visit(x.Else)
	case TWhile:
		visit(x.Cond)
		visit(x.Body)
	case TFor:
		visit(x.Iterated)
		visit(x.Body)
	case TSwitch:
		visit(x.Subject)
		for _, c := range x.Cases {
			for _, v := range c.Values {
				visit(v)
			}
			visit(c.Body)
		}
		visit(x.Default)
	case TMatch:
		visit(x.Subject)
		for _, c := range x.Cases {
			visit(c.Body)
		}
		visit(x.Default)
	case TTry:
		visit(x.Body)
		for _, c := range x.Catches {
			visit(c.Body)
		}
	case TReturn:
		visit(x.Value)
	case TThrow:
		visit(x.Value)
	case TCast:
		visit(x.Value)
	case TObjectDecl:
		for _, fld := range x.Fields {
			visit(fld.Value)
		}
	case TArrayDecl:
		for _, el := range x.Elems {
			visit(el)
		}
	}
}

// CloneAt copies a typed expression, rewriting positions to pos. Inline
// expansion uses it to move a stored body to the call site. Switch, match,
// try, object-literal and array-literal nodes are copied shallowly: their
// children are shared with the original and keep their positions, as do
// the default values of function arguments.
func CloneAt(e *TExpr, pos token.Position) *TExpr {
	if e == nil {
		return nil
	}
	out := &TExpr{Expr: e.Expr, T: e.T, Pos: pos}
	switch x := e.Expr.(type) {
	case TField:
		x.Receiver = CloneAt(x.Receiver, pos)
		out.Expr = x
	case TArray:
		x.Base, x.Index = CloneAt(x.Base, pos), CloneAt(x.Index, pos)
		out.Expr = x
	case TBinop:
		x.Left, x.Right = CloneAt(x.Left, pos), CloneAt(x.Right, pos)
		out.Expr = x
	case TUnop:
		x.Operand = CloneAt(x.Operand, pos)
		out.Expr = x
	case TCall:
		x.Callee = CloneAt(x.Callee, pos)
		args := make([]*TExpr, len(x.Args))
		for i, a := range x.Args {
			args[i] = CloneAt(a, pos)
		}
		x.Args = args
		out.Expr = x
	case TNew:
		args := make([]*TExpr, len(x.Args))
		for i, a := range x.Args {
			args[i] = CloneAt(a, pos)
		}
		x.Args = args
		out.Expr = x
	case TFunction:
		x.Body = CloneAt(x.Body, pos)
		out.Expr = x
	case TVars:
		vars := make([]TVarDecl, len(x.Vars))
		for i, v := range x.Vars {
			vars[i] = TVarDecl{Name: v.Name, T: v.T, Init: CloneAt(v.Init, pos)}
		}
		x.Vars = vars
		out.Expr = x
	case TBlock:
		exprs := make([]*TExpr, len(x.Exprs))
		for i, c := range x.Exprs {
			exprs[i] = CloneAt(c, pos)
		}
		x.Exprs = exprs
		out.Expr = x
	case TIf:
		x.Cond, x.Then, x.Else = CloneAt(x.Cond, pos), CloneAt(x.Then, pos), CloneAt(x.Else, pos)
		out.Expr = x
	case TWhile:
		x.Cond, x.Body = CloneAt(x.Cond, pos), CloneAt(x.Body, pos)
		out.Expr = x
	case TFor:
		x.Iterated, x.Body = CloneAt(x.Iterated, pos), CloneAt(x.Body, pos)
		out.Expr = x
	case TReturn:
		x.Value = CloneAt(x.Value, pos)
		out.Expr = x
	case TThrow:
		x.Value = CloneAt(x.Value, pos)
		out.Expr = x
	case TCast:
		x.Value = CloneAt(x.Value, pos)
		out.Expr = x
	}
	return out
}

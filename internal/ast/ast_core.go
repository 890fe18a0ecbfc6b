package ast

import (
	"github.com/cinderlang/cinder/internal/token"
)

// Expression is the base interface for every untyped expression node the
// parser hands to the typer. Nodes carry their primary token for error
// reporting.
type Expression interface {
	expressionNode()
	GetToken() token.Token
}

// Type is an (unresolved) type annotation attached by the parser.
type Type interface {
	typeNode()
}

// Identifier is a bare name. The keyword constants (true, false, null,
// this, super) arrive as identifiers too; the typer folds them.
type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) expressionNode()       {}
func (i *Identifier) GetToken() token.Token { return i.Token }

// IntegerLiteral represents an integer constant.
type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()       {}
func (il *IntegerLiteral) GetToken() token.Token { return il.Token }

// FloatLiteral represents a floating point constant.
type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()       {}
func (fl *FloatLiteral) GetToken() token.Token { return fl.Token }

// StringLiteral represents a string constant.
type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()       {}
func (sl *StringLiteral) GetToken() token.Token { return sl.Token }

// MemberExpression represents dot access, e.g. obj.field or pack.Mod.field.
type MemberExpression struct {
	Token  token.Token // the '.' token
	Left   Expression
	Member *Identifier
}

func (me *MemberExpression) expressionNode()       {}
func (me *MemberExpression) GetToken() token.Token { return me.Token }

// IndexExpression represents subscripting, e.g. arr[i].
type IndexExpression struct {
	Token token.Token // the '[' token
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()       {}
func (ie *IndexExpression) GetToken() token.Token { return ie.Token }

// CallExpression represents a call, e.g. f(a, b).
type CallExpression struct {
	Token     token.Token
	Callee    Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()       {}
func (ce *CallExpression) GetToken() token.Token { return ce.Token }

// NewExpression represents instantiation, e.g. new pack.Cls<T>(a).
type NewExpression struct {
	Token     token.Token // the 'new' token
	TypePath  *NamedType
	Arguments []Expression
}

func (ne *NewExpression) expressionNode()       {}
func (ne *NewExpression) GetToken() token.Token { return ne.Token }

// BinaryExpression represents a binary operator application.
// Assignment and compound assignment ("=", "+=", ...) use this node too.
type BinaryExpression struct {
	Token token.Token
	Op    string
	Left  Expression
	Right Expression
}

func (be *BinaryExpression) expressionNode()       {}
func (be *BinaryExpression) GetToken() token.Token { return be.Token }

// UnaryExpression represents prefix or postfix unary operators.
type UnaryExpression struct {
	Token   token.Token
	Op      string
	Prefix  bool
	Operand Expression
}

func (ue *UnaryExpression) expressionNode()       {}
func (ue *UnaryExpression) GetToken() token.Token { return ue.Token }

// TernaryExpression represents cond ? a : b.
type TernaryExpression struct {
	Token token.Token
	Cond  Expression
	Then  Expression
	Else  Expression
}

func (te *TernaryExpression) expressionNode()       {}
func (te *TernaryExpression) GetToken() token.Token { return te.Token }

// ObjectField is one entry of an ObjectLiteral.
type ObjectField struct {
	Name  string
	Value Expression
}

// ObjectLiteral represents an anonymous object, e.g. {x: 1, y: 2}.
type ObjectLiteral struct {
	Token  token.Token
	Fields []*ObjectField
}

func (ol *ObjectLiteral) expressionNode()       {}
func (ol *ObjectLiteral) GetToken() token.Token { return ol.Token }

// ArrayLiteral represents [a, b, c].
type ArrayLiteral struct {
	Token    token.Token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()       {}
func (al *ArrayLiteral) GetToken() token.Token { return al.Token }

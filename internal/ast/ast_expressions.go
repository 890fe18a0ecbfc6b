package ast

import (
	"github.com/cinderlang/cinder/internal/token"
)

// VarBinding is a single binding of a VarsExpression.
type VarBinding struct {
	Name     *Identifier
	TypeHint Type // optional
	Init     Expression
}

// VarsExpression represents `var a = e, b: T`.
type VarsExpression struct {
	Token token.Token
	Vars  []*VarBinding
}

func (ve *VarsExpression) expressionNode()       {}
func (ve *VarsExpression) GetToken() token.Token { return ve.Token }

// BlockExpression represents { e1; e2; ... }.
type BlockExpression struct {
	Token token.Token
	Exprs []Expression
}

func (be *BlockExpression) expressionNode()       {}
func (be *BlockExpression) GetToken() token.Token { return be.Token }

// IfExpression represents if (cond) e1 else e2. Else may be nil.
type IfExpression struct {
	Token token.Token
	Cond  Expression
	Then  Expression
	Else  Expression
}

func (ie *IfExpression) expressionNode()       {}
func (ie *IfExpression) GetToken() token.Token { return ie.Token }

// WhileExpression represents while (cond) body, or do body while (cond)
// when DoWhile is set.
type WhileExpression struct {
	Token   token.Token
	Cond    Expression
	Body    Expression
	DoWhile bool
}

func (we *WhileExpression) expressionNode()       {}
func (we *WhileExpression) GetToken() token.Token { return we.Token }

// ForExpression represents for (v in it) body.
type ForExpression struct {
	Token    token.Token
	VarName  *Identifier
	Iterated Expression
	Body     Expression
}

func (fe *ForExpression) expressionNode()       {}
func (fe *ForExpression) GetToken() token.Token { return fe.Token }

// SwitchCase is one arm of a SwitchExpression. Patterns holds the
// alternatives of the arm (`case A, B:`).
type SwitchCase struct {
	Patterns []Expression
	Body     Expression
}

// SwitchExpression represents switch (subject) { case ...: e; default: e }.
// Default is nil when absent.
type SwitchExpression struct {
	Token   token.Token
	Subject Expression
	Cases   []*SwitchCase
	Default Expression
}

func (se *SwitchExpression) expressionNode()       {}
func (se *SwitchExpression) GetToken() token.Token { return se.Token }

// ReturnExpression represents return or return e.
type ReturnExpression struct {
	Token token.Token
	Value Expression // nil for bare return
}

func (re *ReturnExpression) expressionNode()       {}
func (re *ReturnExpression) GetToken() token.Token { return re.Token }

// BreakExpression represents break.
type BreakExpression struct {
	Token token.Token
}

func (be *BreakExpression) expressionNode()       {}
func (be *BreakExpression) GetToken() token.Token { return be.Token }

// ContinueExpression represents continue.
type ContinueExpression struct {
	Token token.Token
}

func (ce *ContinueExpression) expressionNode()       {}
func (ce *ContinueExpression) GetToken() token.Token { return ce.Token }

// ThrowExpression represents throw e.
type ThrowExpression struct {
	Token token.Token
	Value Expression
}

func (te *ThrowExpression) expressionNode()       {}
func (te *ThrowExpression) GetToken() token.Token { return te.Token }

// CatchClause is one catch arm of a TryExpression.
type CatchClause struct {
	Name     *Identifier
	TypeHint Type
	Body     Expression
}

// TryExpression represents try e catch (v: T) e ...
type TryExpression struct {
	Token   token.Token
	Body    Expression
	Catches []*CatchClause
}

func (te *TryExpression) expressionNode()       {}
func (te *TryExpression) GetToken() token.Token { return te.Token }

// Parameter is a formal parameter of a FunctionLiteral.
type Parameter struct {
	Name     *Identifier
	TypeHint Type // optional
	Opt      bool
	Default  Expression // optional default value
}

// FunctionLiteral represents an anonymous function.
type FunctionLiteral struct {
	Token      token.Token
	Parameters []*Parameter
	ReturnHint Type // optional
	Body       Expression
}

func (fl *FunctionLiteral) expressionNode()       {}
func (fl *FunctionLiteral) GetToken() token.Token { return fl.Token }

// CastExpression represents cast(e) (unchecked, TypeHint nil) or
// cast(e, T) (runtime checked).
type CastExpression struct {
	Token    token.Token
	Value    Expression
	TypeHint Type
}

func (ce *CastExpression) expressionNode()       {}
func (ce *CastExpression) GetToken() token.Token { return ce.Token }

// UntypedExpression marks its subexpression as typed under the relaxed
// rules (unknown identifiers invented, private access allowed).
type UntypedExpression struct {
	Token token.Token
	Value Expression
}

func (ue *UntypedExpression) expressionNode()       {}
func (ue *UntypedExpression) GetToken() token.Token { return ue.Token }

// DisplayExpression marks the editor-integration query point.
type DisplayExpression struct {
	Token token.Token
	Value Expression
}

func (de *DisplayExpression) expressionNode()       {}
func (de *DisplayExpression) GetToken() token.Token { return de.Token }

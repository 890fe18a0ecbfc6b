package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cinderlang/cinder/internal/token"
)

func wtok(lexeme string, line int) token.Token {
	return token.Token{Type: token.IDENT, Lexeme: lexeme, Pos: token.Position{File: "a.cn", Line: line, Column: 1}}
}

// One representative tree covering nesting, switch arm grouping, type
// annotations and optional slots.
func sampleExpr() Expression {
	return &BlockExpression{
		Token: wtok("{", 1),
		Exprs: []Expression{
			&VarsExpression{
				Token: wtok("var", 2),
				Vars: []*VarBinding{{
					Name:     &Identifier{Token: wtok("xs", 2), Value: "xs"},
					TypeHint: &NamedType{Name: "Array", Params: []Type{&NamedType{Name: "Int"}}},
					Init:     &ArrayLiteral{Token: wtok("[", 2), Elements: []Expression{&IntegerLiteral{Token: wtok("1", 2), Value: 1}}},
				}},
			},
			&SwitchExpression{
				Token:   wtok("switch", 3),
				Subject: &Identifier{Token: wtok("xs", 3), Value: "xs"},
				Cases: []*SwitchCase{{
					Patterns: []Expression{
						&CallExpression{
							Token:     wtok("(", 4),
							Callee:    &Identifier{Token: wtok("Some", 4), Value: "Some"},
							Arguments: []Expression{&Identifier{Token: wtok("v", 4), Value: "v"}},
						},
					},
					Body: &BinaryExpression{
						Token: wtok("+", 4),
						Op:    "+",
						Left:  &Identifier{Token: wtok("v", 4), Value: "v"},
						Right: &FloatLiteral{Token: wtok("1.5", 4), Value: 1.5},
					},
				}},
				Default: &IntegerLiteral{Token: wtok("0", 5), Value: 0},
			},
			&TryExpression{
				Token: wtok("try", 6),
				Body:  &StringLiteral{Token: wtok("s", 6), Value: "s"},
				Catches: []*CatchClause{{
					Name:     &Identifier{Token: wtok("e", 7), Value: "e"},
					TypeHint: &NamedType{Name: "Dynamic"},
					Body:     &ReturnExpression{Token: wtok("return", 7)},
				}},
			},
			&FunctionLiteral{
				Token: wtok("fun", 8),
				Parameters: []*Parameter{
					{Name: &Identifier{Token: wtok("x", 8), Value: "x"}, TypeHint: &NamedType{Name: "Int"}},
					{Name: &Identifier{Token: wtok("y", 8), Value: "y"}, Opt: true, Default: &IntegerLiteral{Token: wtok("2", 8), Value: 2}},
				},
				Body: &UnaryExpression{Token: wtok("-", 8), Op: "-", Prefix: true, Operand: &Identifier{Token: wtok("x", 8), Value: "x"}},
			},
		},
	}
}

// The wire form is canonical: encode(decode(encode(e))) must reproduce
// encode(e) byte for byte. (Sub-identifier tokens collapse onto their
// parent node's token in the wire form, so trees are compared through
// their encoding.)
func TestExprRoundTrip(t *testing.T) {
	src := sampleExpr()
	first, err := EncodeExpr(src)
	if err != nil {
		t.Fatalf("EncodeExpr: %v", err)
	}
	back, err := DecodeExpr(first)
	if err != nil {
		t.Fatalf("DecodeExpr: %v", err)
	}
	second, err := EncodeExpr(back)
	if err != nil {
		t.Fatalf("re-encode: %v", err)
	}
	if diff := cmp.Diff(string(first), string(second)); diff != "" {
		t.Errorf("round trip mismatch (-first +second):\n%s", diff)
	}
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	if _, err := DecodeExpr([]byte(`{"kind":"wat"}`)); err == nil {
		t.Fatalf("unknown kind must fail")
	}
}

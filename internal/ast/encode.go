package ast

import (
	"encoding/json"
	"fmt"

	"github.com/cinderlang/cinder/internal/token"
)

// The wire form of an expression tree. Expressions cross two boundaries in
// serialized form: the macro bridge (host and macro contexts must not share
// interior-mutable state) and the CLI, which consumes parser output dumped
// by the out-of-process frontend. A single flat node shape keeps the codec
// to one switch per direction.

type wireNode struct {
	Kind     string      `json:"kind"`
	Tok      token.Token `json:"tok"`
	Name     string      `json:"name,omitempty"`
	Op       string      `json:"op,omitempty"`
	Int      int64       `json:"int,omitempty"`
	Float    float64     `json:"float,omitempty"`
	Str      string      `json:"str,omitempty"`
	Flag     bool        `json:"flag,omitempty"`
	Kids     []*wireNode `json:"kids,omitempty"`
	Names    []string    `json:"names,omitempty"`
	Flags    []bool      `json:"flags,omitempty"`
	Type     *wireType   `json:"type,omitempty"`
	Types    []*wireType `json:"types,omitempty"`
	Groups   []int       `json:"groups,omitempty"` // arm boundaries for switch cases
	HasValue bool        `json:"hasValue,omitempty"`
}

type wireType struct {
	Kind     string      `json:"kind"`
	Pack     []string    `json:"pack,omitempty"`
	Name     string      `json:"name,omitempty"`
	Params   []*wireType `json:"params,omitempty"`
	Return   *wireType   `json:"return,omitempty"`
	Optional []bool      `json:"optional,omitempty"`
	Names    []string    `json:"names,omitempty"`
}

// EncodeExpr serializes an untyped expression to JSON.
func EncodeExpr(e Expression) ([]byte, error) {
	n, err := encodeNode(e)
	if err != nil {
		return nil, err
	}
	return json.Marshal(n)
}

// DecodeExpr reconstructs an untyped expression from JSON produced by
// EncodeExpr (or by the external frontend's dumper, which emits the same
// shape).
func DecodeExpr(data []byte) (Expression, error) {
	var n wireNode
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return decodeNode(&n)
}

func encodeNodes(es []Expression) ([]*wireNode, error) {
	out := make([]*wireNode, 0, len(es))
	for _, e := range es {
		n, err := encodeNode(e)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func encodeNode(e Expression) (*wireNode, error) {
	if e == nil {
		return nil, nil
	}
	switch e := e.(type) {
	case *Identifier:
		return &wireNode{Kind: "ident", Tok: e.Token, Name: e.Value}, nil
	case *IntegerLiteral:
		return &wireNode{Kind: "int", Tok: e.Token, Int: e.Value}, nil
	case *FloatLiteral:
		return &wireNode{Kind: "float", Tok: e.Token, Float: e.Value}, nil
	case *StringLiteral:
		return &wireNode{Kind: "string", Tok: e.Token, Str: e.Value}, nil
	case *MemberExpression:
		left, err := encodeNode(e.Left)
		if err != nil {
			return nil, err
		}
		return &wireNode{Kind: "member", Tok: e.Token, Name: e.Member.Value, Kids: []*wireNode{left}}, nil
	case *IndexExpression:
		kids, err := encodeNodes([]Expression{e.Left, e.Index})
		if err != nil {
			return nil, err
		}
		return &wireNode{Kind: "index", Tok: e.Token, Kids: kids}, nil
	case *CallExpression:
		kids, err := encodeNodes(append([]Expression{e.Callee}, e.Arguments...))
		if err != nil {
			return nil, err
		}
		return &wireNode{Kind: "call", Tok: e.Token, Kids: kids}, nil
	case *NewExpression:
		kids, err := encodeNodes(e.Arguments)
		if err != nil {
			return nil, err
		}
		return &wireNode{Kind: "new", Tok: e.Token, Kids: kids, Type: encodeType(e.TypePath)}, nil
	case *BinaryExpression:
		kids, err := encodeNodes([]Expression{e.Left, e.Right})
		if err != nil {
			return nil, err
		}
		return &wireNode{Kind: "binop", Tok: e.Token, Op: e.Op, Kids: kids}, nil
	case *UnaryExpression:
		kid, err := encodeNode(e.Operand)
		if err != nil {
			return nil, err
		}
		return &wireNode{Kind: "unop", Tok: e.Token, Op: e.Op, Flag: e.Prefix, Kids: []*wireNode{kid}}, nil
	case *TernaryExpression:
		kids, err := encodeNodes([]Expression{e.Cond, e.Then, e.Else})
		if err != nil {
			return nil, err
		}
		return &wireNode{Kind: "ternary", Tok: e.Token, Kids: kids}, nil
	case *ObjectLiteral:
		n := &wireNode{Kind: "object", Tok: e.Token}
		for _, f := range e.Fields {
			v, err := encodeNode(f.Value)
			if err != nil {
				return nil, err
			}
			n.Names = append(n.Names, f.Name)
			n.Kids = append(n.Kids, v)
		}
		return n, nil
	case *ArrayLiteral:
		kids, err := encodeNodes(e.Elements)
		if err != nil {
			return nil, err
		}
		return &wireNode{Kind: "array", Tok: e.Token, Kids: kids}, nil
	case *VarsExpression:
		n := &wireNode{Kind: "vars", Tok: e.Token}
		for _, v := range e.Vars {
			init, err := encodeNode(v.Init)
			if err != nil {
				return nil, err
			}
			n.Names = append(n.Names, v.Name.Value)
			n.Kids = append(n.Kids, init)
			n.Types = append(n.Types, encodeType(v.TypeHint))
		}
		return n, nil
	case *BlockExpression:
		kids, err := encodeNodes(e.Exprs)
		if err != nil {
			return nil, err
		}
		return &wireNode{Kind: "block", Tok: e.Token, Kids: kids}, nil
	case *IfExpression:
		kids, err := encodeNodes([]Expression{e.Cond, e.Then, e.Else})
		if err != nil {
			return nil, err
		}
		return &wireNode{Kind: "if", Tok: e.Token, Kids: kids}, nil
	case *WhileExpression:
		kids, err := encodeNodes([]Expression{e.Cond, e.Body})
		if err != nil {
			return nil, err
		}
		return &wireNode{Kind: "while", Tok: e.Token, Flag: e.DoWhile, Kids: kids}, nil
	case *ForExpression:
		kids, err := encodeNodes([]Expression{e.Iterated, e.Body})
		if err != nil {
			return nil, err
		}
		return &wireNode{Kind: "for", Tok: e.Token, Name: e.VarName.Value, Kids: kids}, nil
	case *SwitchExpression:
		n := &wireNode{Kind: "switch", Tok: e.Token}
		subj, err := encodeNode(e.Subject)
		if err != nil {
			return nil, err
		}
		n.Kids = append(n.Kids, subj)
		for _, c := range e.Cases {
			// Each group entry records the pattern count of its arm; the
			// arm body follows the patterns in Kids.
			n.Groups = append(n.Groups, len(c.Patterns))
			pats, err := encodeNodes(c.Patterns)
			if err != nil {
				return nil, err
			}
			n.Kids = append(n.Kids, pats...)
			body, err := encodeNode(c.Body)
			if err != nil {
				return nil, err
			}
			n.Kids = append(n.Kids, body)
		}
		if e.Default != nil {
			def, err := encodeNode(e.Default)
			if err != nil {
				return nil, err
			}
			n.HasValue = true
			n.Kids = append(n.Kids, def)
		}
		return n, nil
	case *ReturnExpression:
		n := &wireNode{Kind: "return", Tok: e.Token}
		if e.Value != nil {
			v, err := encodeNode(e.Value)
			if err != nil {
				return nil, err
			}
			n.HasValue = true
			n.Kids = []*wireNode{v}
		}
		return n, nil
	case *BreakExpression:
		return &wireNode{Kind: "break", Tok: e.Token}, nil
	case *ContinueExpression:
		return &wireNode{Kind: "continue", Tok: e.Token}, nil
	case *ThrowExpression:
		kid, err := encodeNode(e.Value)
		if err != nil {
			return nil, err
		}
		return &wireNode{Kind: "throw", Tok: e.Token, Kids: []*wireNode{kid}}, nil
	case *TryExpression:
		n := &wireNode{Kind: "try", Tok: e.Token}
		body, err := encodeNode(e.Body)
		if err != nil {
			return nil, err
		}
		n.Kids = append(n.Kids, body)
		for _, c := range e.Catches {
			cb, err := encodeNode(c.Body)
			if err != nil {
				return nil, err
			}
			n.Names = append(n.Names, c.Name.Value)
			n.Types = append(n.Types, encodeType(c.TypeHint))
			n.Kids = append(n.Kids, cb)
		}
		return n, nil
	case *FunctionLiteral:
		n := &wireNode{Kind: "function", Tok: e.Token, Type: encodeType(e.ReturnHint)}
		for _, p := range e.Parameters {
			def, err := encodeNode(p.Default)
			if err != nil {
				return nil, err
			}
			n.Names = append(n.Names, p.Name.Value)
			n.Flags = append(n.Flags, p.Opt)
			n.Types = append(n.Types, encodeType(p.TypeHint))
			n.Kids = append(n.Kids, def)
		}
		body, err := encodeNode(e.Body)
		if err != nil {
			return nil, err
		}
		n.Kids = append(n.Kids, body)
		return n, nil
	case *CastExpression:
		kid, err := encodeNode(e.Value)
		if err != nil {
			return nil, err
		}
		return &wireNode{Kind: "cast", Tok: e.Token, Kids: []*wireNode{kid}, Type: encodeType(e.TypeHint)}, nil
	case *UntypedExpression:
		kid, err := encodeNode(e.Value)
		if err != nil {
			return nil, err
		}
		return &wireNode{Kind: "untyped", Tok: e.Token, Kids: []*wireNode{kid}}, nil
	case *DisplayExpression:
		kid, err := encodeNode(e.Value)
		if err != nil {
			return nil, err
		}
		return &wireNode{Kind: "display", Tok: e.Token, Kids: []*wireNode{kid}}, nil
	default:
		return nil, fmt.Errorf("ast: cannot encode %T", e)
	}
}

func decodeNodes(ns []*wireNode) ([]Expression, error) {
	out := make([]Expression, 0, len(ns))
	for _, n := range ns {
		e, err := decodeNode(n)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func decodeNode(n *wireNode) (Expression, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case "ident":
		return &Identifier{Token: n.Tok, Value: n.Name}, nil
	case "int":
		return &IntegerLiteral{Token: n.Tok, Value: n.Int}, nil
	case "float":
		return &FloatLiteral{Token: n.Tok, Value: n.Float}, nil
	case "string":
		return &StringLiteral{Token: n.Tok, Value: n.Str}, nil
	case "member":
		if len(n.Kids) != 1 {
			return nil, fmt.Errorf("ast: member node wants 1 child, has %d", len(n.Kids))
		}
		left, err := decodeNode(n.Kids[0])
		if err != nil {
			return nil, err
		}
		return &MemberExpression{Token: n.Tok, Left: left, Member: &Identifier{Token: n.Tok, Value: n.Name}}, nil
	case "index":
		kids, err := decodeNodes(n.Kids)
		if err != nil {
			return nil, err
		}
		if len(kids) != 2 {
			return nil, fmt.Errorf("ast: index node wants 2 children, has %d", len(kids))
		}
		return &IndexExpression{Token: n.Tok, Left: kids[0], Index: kids[1]}, nil
	case "call":
		kids, err := decodeNodes(n.Kids)
		if err != nil {
			return nil, err
		}
		if len(kids) == 0 {
			return nil, fmt.Errorf("ast: call node without callee")
		}
		return &CallExpression{Token: n.Tok, Callee: kids[0], Arguments: kids[1:]}, nil
	case "new":
		kids, err := decodeNodes(n.Kids)
		if err != nil {
			return nil, err
		}
		tp, _ := decodeType(n.Type).(*NamedType)
		return &NewExpression{Token: n.Tok, TypePath: tp, Arguments: kids}, nil
	case "binop":
		kids, err := decodeNodes(n.Kids)
		if err != nil {
			return nil, err
		}
		if len(kids) != 2 {
			return nil, fmt.Errorf("ast: binop node wants 2 children, has %d", len(kids))
		}
		return &BinaryExpression{Token: n.Tok, Op: n.Op, Left: kids[0], Right: kids[1]}, nil
	case "unop":
		kid, err := decodeNode(n.Kids[0])
		if err != nil {
			return nil, err
		}
		return &UnaryExpression{Token: n.Tok, Op: n.Op, Prefix: n.Flag, Operand: kid}, nil
	case "ternary":
		kids, err := decodeNodes(n.Kids)
		if err != nil {
			return nil, err
		}
		return &TernaryExpression{Token: n.Tok, Cond: kids[0], Then: kids[1], Else: kids[2]}, nil
	case "object":
		ol := &ObjectLiteral{Token: n.Tok}
		for i, name := range n.Names {
			v, err := decodeNode(n.Kids[i])
			if err != nil {
				return nil, err
			}
			ol.Fields = append(ol.Fields, &ObjectField{Name: name, Value: v})
		}
		return ol, nil
	case "array":
		kids, err := decodeNodes(n.Kids)
		if err != nil {
			return nil, err
		}
		return &ArrayLiteral{Token: n.Tok, Elements: kids}, nil
	case "vars":
		ve := &VarsExpression{Token: n.Tok}
		for i, name := range n.Names {
			init, err := decodeNode(n.Kids[i])
			if err != nil {
				return nil, err
			}
			var hint Type
			if i < len(n.Types) {
				hint = decodeType(n.Types[i])
			}
			ve.Vars = append(ve.Vars, &VarBinding{Name: &Identifier{Token: n.Tok, Value: name}, TypeHint: hint, Init: init})
		}
		return ve, nil
	case "block":
		kids, err := decodeNodes(n.Kids)
		if err != nil {
			return nil, err
		}
		return &BlockExpression{Token: n.Tok, Exprs: kids}, nil
	case "if":
		kids, err := decodeNodes(n.Kids)
		if err != nil {
			return nil, err
		}
		return &IfExpression{Token: n.Tok, Cond: kids[0], Then: kids[1], Else: kids[2]}, nil
	case "while":
		kids, err := decodeNodes(n.Kids)
		if err != nil {
			return nil, err
		}
		return &WhileExpression{Token: n.Tok, Cond: kids[0], Body: kids[1], DoWhile: n.Flag}, nil
	case "for":
		kids, err := decodeNodes(n.Kids)
		if err != nil {
			return nil, err
		}
		return &ForExpression{Token: n.Tok, VarName: &Identifier{Token: n.Tok, Value: n.Name}, Iterated: kids[0], Body: kids[1]}, nil
	case "switch":
		se := &SwitchExpression{Token: n.Tok}
		subj, err := decodeNode(n.Kids[0])
		if err != nil {
			return nil, err
		}
		se.Subject = subj
		i := 1
		for _, patCount := range n.Groups {
			pats, err := decodeNodes(n.Kids[i : i+patCount])
			if err != nil {
				return nil, err
			}
			body, err := decodeNode(n.Kids[i+patCount])
			if err != nil {
				return nil, err
			}
			se.Cases = append(se.Cases, &SwitchCase{Patterns: pats, Body: body})
			i += patCount + 1
		}
		if n.HasValue {
			def, err := decodeNode(n.Kids[i])
			if err != nil {
				return nil, err
			}
			se.Default = def
		}
		return se, nil
	case "return":
		re := &ReturnExpression{Token: n.Tok}
		if n.HasValue {
			v, err := decodeNode(n.Kids[0])
			if err != nil {
				return nil, err
			}
			re.Value = v
		}
		return re, nil
	case "break":
		return &BreakExpression{Token: n.Tok}, nil
	case "continue":
		return &ContinueExpression{Token: n.Tok}, nil
	case "throw":
		kid, err := decodeNode(n.Kids[0])
		if err != nil {
			return nil, err
		}
		return &ThrowExpression{Token: n.Tok, Value: kid}, nil
	case "try":
		te := &TryExpression{Token: n.Tok}
		body, err := decodeNode(n.Kids[0])
		if err != nil {
			return nil, err
		}
		te.Body = body
		for i, name := range n.Names {
			cb, err := decodeNode(n.Kids[i+1])
			if err != nil {
				return nil, err
			}
			te.Catches = append(te.Catches, &CatchClause{
				Name:     &Identifier{Token: n.Tok, Value: name},
				TypeHint: decodeType(n.Types[i]),
				Body:     cb,
			})
		}
		return te, nil
	case "function":
		fl := &FunctionLiteral{Token: n.Tok, ReturnHint: decodeType(n.Type)}
		for i, name := range n.Names {
			def, err := decodeNode(n.Kids[i])
			if err != nil {
				return nil, err
			}
			p := &Parameter{Name: &Identifier{Token: n.Tok, Value: name}, Default: def}
			if i < len(n.Flags) {
				p.Opt = n.Flags[i]
			}
			if i < len(n.Types) {
				p.TypeHint = decodeType(n.Types[i])
			}
			fl.Parameters = append(fl.Parameters, p)
		}
		body, err := decodeNode(n.Kids[len(n.Names)])
		if err != nil {
			return nil, err
		}
		fl.Body = body
		return fl, nil
	case "cast":
		kid, err := decodeNode(n.Kids[0])
		if err != nil {
			return nil, err
		}
		return &CastExpression{Token: n.Tok, Value: kid, TypeHint: decodeType(n.Type)}, nil
	case "untyped":
		kid, err := decodeNode(n.Kids[0])
		if err != nil {
			return nil, err
		}
		return &UntypedExpression{Token: n.Tok, Value: kid}, nil
	case "display":
		kid, err := decodeNode(n.Kids[0])
		if err != nil {
			return nil, err
		}
		return &DisplayExpression{Token: n.Tok, Value: kid}, nil
	default:
		return nil, fmt.Errorf("ast: unknown node kind %q", n.Kind)
	}
}

func encodeType(t Type) *wireType {
	switch t := t.(type) {
	case nil:
		return nil
	case *NamedType:
		wt := &wireType{Kind: "named", Pack: t.Pack, Name: t.Name}
		for _, p := range t.Params {
			wt.Params = append(wt.Params, encodeType(p))
		}
		return wt
	case *FunctionType:
		wt := &wireType{Kind: "function", Return: encodeType(t.Return), Optional: t.Optional}
		for _, p := range t.Params {
			wt.Params = append(wt.Params, encodeType(p))
		}
		return wt
	case *AnonType:
		wt := &wireType{Kind: "anon"}
		for _, f := range t.Fields {
			wt.Names = append(wt.Names, f.Name)
			wt.Params = append(wt.Params, encodeType(f.Type))
		}
		return wt
	default:
		return nil
	}
}

func decodeType(wt *wireType) Type {
	if wt == nil {
		return nil
	}
	switch wt.Kind {
	case "named":
		nt := &NamedType{Pack: wt.Pack, Name: wt.Name}
		for _, p := range wt.Params {
			nt.Params = append(nt.Params, decodeType(p))
		}
		return nt
	case "function":
		ft := &FunctionType{Return: decodeType(wt.Return), Optional: wt.Optional}
		for _, p := range wt.Params {
			ft.Params = append(ft.Params, decodeType(p))
		}
		return ft
	case "anon":
		at := &AnonType{}
		for i, name := range wt.Names {
			at.Fields = append(at.Fields, &AnonTypeField{Name: name, Type: decodeType(wt.Params[i])})
		}
		return at
	default:
		return nil
	}
}

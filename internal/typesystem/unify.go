package typesystem

import (
	"fmt"
	"strings"
)

// UnifyError is a type mismatch, carrying the pair that failed and the
// nested failure that caused it, so callers can render the full trace.
type UnifyError struct {
	From  Type
	To    Type
	Cause error
}

func (e *UnifyError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s should be %s", e.From, e.To)
	if e.Cause != nil {
		b.WriteString("\n  ")
		b.WriteString(strings.ReplaceAll(e.Cause.Error(), "\n", "\n  "))
	}
	return b.String()
}

func (e *UnifyError) Unwrap() error { return e.Cause }

func errUnify(from, to Type) error {
	return &UnifyError{From: from, To: to}
}

func errUnifyCause(from, to Type, cause error) error {
	return &UnifyError{From: from, To: to, Cause: cause}
}

// unifier performs one unification attempt. Monomorph bindings and fields
// added to opened anonymous types are logged so a failed attempt can be
// rolled back; the exported entry points commit on success and roll back
// on failure, which is the caller discipline speculative typing relies
// on.
type unifier struct {
	bound []*Mono
	added []addedField
	noDyn bool
}

type addedField struct {
	fields map[string]*ClassField
	name   string
}

func (u *unifier) rollback() {
	for i := len(u.bound) - 1; i >= 0; i-- {
		u.bound[i].Ref = nil
	}
	for i := len(u.added) - 1; i >= 0; i-- {
		delete(u.added[i].fields, u.added[i].name)
	}
	u.bound, u.added = nil, nil
}

// Unify makes `from` flow into `to`, binding monomorphs as needed. On
// failure every binding performed during the attempt is undone.
func Unify(from, to Type) error {
	u := &unifier{}
	if err := u.unify(from, to); err != nil {
		u.rollback()
		return err
	}
	return nil
}

// UnifyEq unifies invariantly: a and b must flow into each other.
func UnifyEq(a, b Type) error {
	u := &unifier{}
	if err := u.unifyEq(a, b); err != nil {
		u.rollback()
		return err
	}
	return nil
}

// TryUnifyNoDyn reports whether `from` unifies into `to` without the
// dynamic top making the match spurious. Bindings are kept on success.
func TryUnifyNoDyn(from, to Type) bool {
	u := &unifier{noDyn: true}
	if err := u.unify(from, to); err != nil {
		u.rollback()
		return false
	}
	return true
}

func (u *unifier) bind(m *Mono, t Type) error {
	if occurs(m, t) {
		return fmt.Errorf("recursive type: %s occurs in %s", m, t)
	}
	m.Ref = t
	u.bound = append(u.bound, m)
	return nil
}

func occurs(m *Mono, t Type) bool {
	found := false
	walkType(t, func(t Type) {
		if t == m {
			found = true
		}
	}, map[Type]bool{})
	return found
}

func (u *unifier) unifyEq(a, b Type) error {
	if err := u.unify(a, b); err != nil {
		return err
	}
	return u.unify(b, a)
}

func (u *unifier) unify(from, to Type) error {
	from, to = Follow(from), Follow(to)

	if fm, ok := from.(*Mono); ok {
		if tm, ok := to.(*Mono); ok && tm == fm {
			return nil
		}
		return u.bind(fm, to)
	}
	if tm, ok := to.(*Mono); ok {
		return u.bind(tm, from)
	}

	_, fromDyn := from.(Dyn)
	_, toDyn := to.(Dyn)
	if fromDyn || toDyn {
		if u.noDyn && fromDyn != toDyn {
			return errUnify(from, to)
		}
		return nil
	}

	if tn, ok := to.(Nullable); ok {
		if fn, ok := from.(Nullable); ok {
			return u.unify(fn.Elem, tn.Elem)
		}
		return u.unify(from, tn.Elem)
	}
	if fn, ok := from.(Nullable); ok {
		return u.unify(fn.Elem, to)
	}

	switch from := from.(type) {
	case Inst:
		switch to := to.(type) {
		case Inst:
			return u.unifyInst(from, to)
		case Anon:
			return u.unifyClassToAnon(from, to)
		}
	case EnumType:
		if to, ok := to.(EnumType); ok {
			if from.Decl != to.Decl {
				return errUnify(from, to)
			}
			return u.unifyParams(from, to, from.Params, to.Params)
		}
	case Anon:
		if to, ok := to.(Anon); ok {
			return u.unifyAnon(from, to)
		}
	case Fun:
		if to, ok := to.(Fun); ok {
			return u.unifyFun(from, to)
		}
	case ParamType:
		if to, ok := to.(ParamType); ok && to.Def == from.Def {
			return nil
		}
		for _, c := range from.Def.Constraints {
			if err := u.unify(c, to); err == nil {
				return nil
			}
		}
		return errUnify(from, to)
	}
	return errUnify(from, to)
}

func (u *unifier) unifyParams(from, to Type, fp, tp []Type) error {
	if len(fp) != len(tp) {
		return errUnify(from, to)
	}
	for i := range fp {
		if err := u.unifyEq(fp[i], tp[i]); err != nil {
			return errUnifyCause(from, to, err)
		}
	}
	return nil
}

func (u *unifier) unifyInst(from, to Inst) error {
	if from.Decl == to.Decl {
		return u.unifyParams(from, to, from.Params, to.Params)
	}
	// Walk the super chain and interfaces of the source class.
	if from.Decl.Super != nil {
		sup := applyRef(from.Decl, from.Params, from.Decl.Super)
		if err := u.unifyInst(sup, to); err == nil {
			return nil
		}
	}
	for _, iref := range from.Decl.Interfaces {
		impl := applyRef(from.Decl, from.Params, iref)
		if err := u.unifyInst(impl, to); err == nil {
			return nil
		}
	}
	return errUnify(from, to)
}

func applyRef(owner *ClassDecl, params []Type, ref *ClassRef) Inst {
	applied := make([]Type, len(ref.Params))
	for i, p := range ref.Params {
		applied[i] = ApplyParams(owner.Params, params, p)
	}
	return Inst{Decl: ref.Decl, Params: applied}
}

func (u *unifier) unifyClassToAnon(from Inst, to Anon) error {
	for name, want := range to.Fields {
		f, decl, dp, ok := from.Decl.FieldByName(name, from.Params)
		if !ok {
			return errUnifyCause(from, to, fmt.Errorf("missing field %s", name))
		}
		have := ApplyParams(decl.Params, dp, f.Type)
		if err := u.unifyEq(have, want.Type); err != nil {
			return errUnifyCause(from, to, err)
		}
	}
	return nil
}

func (u *unifier) unifyAnon(from, to Anon) error {
	for name, want := range to.Fields {
		have, ok := from.Fields[name]
		if !ok {
			// An opened anon accumulates the demanded field; the binding
			// is logged so a failed enclosing attempt removes it again.
			if from.Status != nil && from.Status.Kind == AnonOpened {
				from.Fields[name] = &ClassField{Name: name, Type: want.Type, Kind: want.Kind}
				u.added = append(u.added, addedField{fields: from.Fields, name: name})
				continue
			}
			return errUnifyCause(from, to, fmt.Errorf("missing field %s", name))
		}
		if err := u.unifyEq(have.Type, want.Type); err != nil {
			return errUnifyCause(from, to, err)
		}
	}
	return nil
}

func (u *unifier) unifyFun(from, to Fun) error {
	if len(from.Args) != len(to.Args) {
		return errUnify(from, to)
	}
	for i := range from.Args {
		if to.Args[i].Opt && !from.Args[i].Opt {
			return errUnifyCause(from, to, fmt.Errorf("optional argument %d is required here", i+1))
		}
		// Arguments are contravariant.
		if err := u.unify(to.Args[i].T, from.Args[i].T); err != nil {
			return errUnifyCause(from, to, err)
		}
	}
	if err := u.unify(from.Ret, to.Ret); err != nil {
		return errUnifyCause(from, to, err)
	}
	return nil
}

package ic3

// And allocates a fresh variable defined as lhs ∧ rhs and returns its
// positive literal. A thin convenience over Rel.DefineAnd for callers
// building a transition system's combinational logic by hand.
func (r *Rel) And(lhs, rhs Lit) Lit {
	v := r.NewVar()
	r.DefineAnd(v, lhs, rhs)
	return NewLit(v, true)
}

// Or builds lhs ∨ rhs via De Morgan over And: ¬(¬lhs ∧ ¬rhs).
func (r *Rel) Or(lhs, rhs Lit) Lit {
	return r.And(lhs.Not(), rhs.Not()).Not()
}

// Xor builds lhs ⊕ rhs as (lhs ∧ ¬rhs) ∨ (¬lhs ∧ rhs).
func (r *Rel) Xor(lhs, rhs Lit) Lit {
	return r.Or(r.And(lhs, rhs.Not()), r.And(lhs.Not(), rhs))
}

// Ite builds a multiplexer cond ? then_ : else_ as (cond ∧ then_) ∨
// (¬cond ∧ else_).
func (r *Rel) Ite(cond, then_, else_ Lit) Lit {
	return r.Or(r.And(cond, then_), r.And(cond.Not(), else_))
}

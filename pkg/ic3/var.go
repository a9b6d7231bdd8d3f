// Package ic3 implements an IC3/PDR symbolic model checker for finite-state
// transition systems: an incremental family of frontier overapproximations,
// a proof-obligation scheduler, SAT-based relative-induction checks,
// counterexample-to-generalization lemma minimization, predecessor lifting,
// and inductive propagation, built on top of a hand-rolled incremental CDCL
// solver (DagCnfSolver) extended with localized active domains and
// assumption literals.
package ic3

import "fmt"

// Var is a variable identifier. VarConst is the distinguished constant
// variable (its positive literal is always true, negative always false).
type Var uint32

// VarConst is the distinguished "true" constant variable.
const VarConst Var = 0

// VarUndef marks the absence of a variable where a Var is otherwise expected.
const VarUndef Var = ^Var(0)

func (v Var) String() string {
	if v == VarConst {
		return "const"
	}
	return fmt.Sprintf("v%d", uint32(v))
}

// Lit is a (variable, polarity) pair packed into a single integer so it can
// be used directly as a slice index (2*var + polarity). Literals are
// totally ordered by (variable, polarity).
type Lit int32

// LitConstTrue and LitConstFalse are the literals of the constant variable.
var (
	LitConstTrue  = NewLit(VarConst, true)
	LitConstFalse = NewLit(VarConst, false)
)

// NewLit builds a literal for var v with the given polarity (true = positive).
func NewLit(v Var, positive bool) Lit {
	l := Lit(v) << 1
	if !positive {
		l |= 1
	}
	return l
}

// Var returns the underlying variable.
func (l Lit) Var() Var { return Var(l >> 1) }

// Polarity reports true if the literal is positive (unnegated).
func (l Lit) Polarity() bool { return l&1 == 0 }

// Not returns the negation of l.
func (l Lit) Not() Lit { return l ^ 1 }

// IsConst reports whether l refers to the constant variable.
func (l Lit) IsConst() bool { return l.Var() == VarConst }

// index returns a dense, zero-based index suitable for watch-list arrays:
// 2*var + (0 if positive else 1).
func (l Lit) index() int { return int(l) }

func (l Lit) String() string {
	if !l.Polarity() {
		return "-" + l.Var().String()
	}
	return l.Var().String()
}

// Less gives the canonical total order over literals: by variable, then by
// polarity (positive before negative), matching spec's "(variable,
// polarity)" ordering.
func (l Lit) Less(other Lit) bool {
	if l.Var() != other.Var() {
		return l.Var() < other.Var()
	}
	return l.Polarity() && !other.Polarity()
}

// LitVec is an ordered sequence of literals. Semantically a cube is read as
// a conjunction, a clause as a disjunction; LitVec is the shared
// representation for both.
type LitVec []Lit

// Clone returns an independent copy of v.
func (v LitVec) Clone() LitVec {
	out := make(LitVec, len(v))
	copy(out, v)
	return out
}

// Contains reports whether l appears in v.
func (v LitVec) Contains(l Lit) bool {
	for _, x := range v {
		if x == l {
			return true
		}
	}
	return false
}

// Negate returns the clause/cube obtained by negating every literal of v,
// preserving order. Used to turn a blocked cube into the clause that rules
// it out.
func (v LitVec) Negate() LitVec {
	out := make(LitVec, len(v))
	for i, l := range v {
		out[i] = l.Not()
	}
	return out
}

func (v LitVec) String() string {
	s := "["
	for i, l := range v {
		if i > 0 {
			s += " "
		}
		s += l.String()
	}
	return s + "]"
}

package ic3

import (
	"errors"
	"fmt"
)

// Sentinel errors for malformed-system conditions (spec §7: fatal, surfaced
// before check begins). Wrapped with fmt.Errorf("%w: ...") so callers can
// errors.Is against them.
var (
	ErrMalformedSystem = errors.New("malformed transition system")
	ErrNoNextState     = errors.New("latch has no next-state function")
	ErrUndefinedVar    = errors.New("reference to undefined variable")
	ErrCyclicRel       = errors.New("rel DAG is not acyclic")
)

// InitValue is the value of a latch at time 0: 0, 1, or Free ("don't
// care", the latch may take either value at t=0).
type InitValue int8

const (
	InitZero InitValue = 0
	InitOne  InitValue = 1
	InitFree InitValue = -1
)

// GateKind distinguishes the kinds of derived-variable definitions that can
// appear in the rel DAG-CNF.
type GateKind int

const (
	// GateAnd defines out <-> (lhs & rhs).
	GateAnd GateKind = iota
	// GateInput marks a variable as a free input, resampled every step.
	GateInput
	// GateLatch marks a variable as a state-holding latch.
	GateLatch
)

// Gate is one definition in the rel DAG: the variable it defines and, for
// GateAnd, the two operand literals. Gates are stored in topological order
// — a gate's operands always reference variables defined by an earlier
// gate, or are inputs/latches.
type Gate struct {
	Out  Var
	Kind GateKind
	LHS  Lit
	RHS  Lit
	// Clauses are the CNF clauses an on-the-fly Tseitin encoding of this
	// gate's definition would contribute, grouped so a consumer can pull
	// in exactly the clauses entailed by a sub-DAG without re-deriving
	// them. For GateAnd(out, a, b) this is the usual three clauses:
	// (¬out∨a), (¬out∨b), (out∨¬a∨¬b).
	Clauses []LitVec
}

// Rel is the DAG-CNF representation of every gate/function definition in
// the transition system. Variables created while defining a gate sit above
// their dependencies in topological order, so clauses for the sub-DAG
// rooted at any variable can be iterated by walking a prefix of gates.
type Rel struct {
	gates   []Gate
	byVar   map[Var]int // Var -> index into gates, for defined (GateAnd) vars
	nextVar Var
}

// NewRel creates an empty rel DAG. Variable 0 (VarConst) is reserved.
func NewRel() *Rel {
	return &Rel{byVar: make(map[Var]int), nextVar: VarConst + 1}
}

// NewVar allocates and returns a fresh variable not yet defined by any
// gate (an input, latch, or as-yet-undefined placeholder).
func (r *Rel) NewVar() Var {
	v := r.nextVar
	r.nextVar++
	return v
}

// Declare records v as an input or latch (a leaf of the DAG with no
// defining clauses of its own).
func (r *Rel) Declare(v Var, kind GateKind) {
	r.gates = append(r.gates, Gate{Out: v, Kind: kind})
	r.byVar[v] = len(r.gates) - 1
}

// DefineAnd records a new AND-gate variable out <-> (lhs & rhs) and
// returns the clauses of its Tseitin encoding. out must already have been
// allocated via NewVar; both lhs and rhs must reference variables that are
// either VarConst, inputs/latches, or already-defined gates (the
// acyclicity invariant).
func (r *Rel) DefineAnd(out Var, lhs, rhs Lit) []LitVec {
	clauses := []LitVec{
		{NewLit(out, false), lhs},
		{NewLit(out, false), rhs},
		{NewLit(out, true), lhs.Not(), rhs.Not()},
	}
	r.gates = append(r.gates, Gate{Out: out, Kind: GateAnd, LHS: lhs, RHS: rhs, Clauses: clauses})
	r.byVar[out] = len(r.gates) - 1
	return clauses
}

// IsDefined reports whether v has a gate definition (AND-gate, input, or
// latch declaration) in the DAG.
func (r *Rel) IsDefined(v Var) bool {
	if v == VarConst {
		return true
	}
	_, ok := r.byVar[v]
	return ok
}

// Gate returns the gate defining v and true, or the zero Gate and false if
// v is undefined.
func (r *Rel) Gate(v Var) (Gate, bool) {
	idx, ok := r.byVar[v]
	if !ok {
		return Gate{}, false
	}
	return r.gates[idx], true
}

// AllClauses returns every AND-gate clause in the DAG, in topological
// (definition) order — the full CNF encoding of rel.
func (r *Rel) AllClauses() []LitVec {
	var out []LitVec
	for _, g := range r.gates {
		out = append(out, g.Clauses...)
	}
	return out
}

// ClausesFor returns the clauses entailed by the sub-DAG rooted at each of
// the given variables: the defining clauses of each variable and,
// transitively, of every AND-gate variable it depends on. Inputs/latches
// contribute no clauses (they are free leaves).
func (r *Rel) ClausesFor(vars []Var) []LitVec {
	seen := make(map[Var]bool)
	var out []LitVec
	var visit func(v Var)
	visit = func(v Var) {
		if v == VarConst || seen[v] {
			return
		}
		seen[v] = true
		g, ok := r.byVar[v]
		if !ok {
			return
		}
		gate := r.gates[g]
		if gate.Kind != GateAnd {
			return
		}
		visit(gate.LHS.Var())
		visit(gate.RHS.Var())
		out = append(out, gate.Clauses...)
	}
	for _, v := range vars {
		visit(v)
	}
	return out
}

// SupportClosure returns the transitive dependency closure of vars through
// the rel DAG: vars themselves plus every AND-gate operand variable
// reachable from them. Used by DagCnfSolver.set_domain to seed the active
// domain.
func (r *Rel) SupportClosure(vars []Var) map[Var]bool {
	seen := make(map[Var]bool)
	var visit func(v Var)
	visit = func(v Var) {
		if v == VarConst || seen[v] {
			return
		}
		seen[v] = true
		g, ok := r.byVar[v]
		if !ok {
			return
		}
		gate := r.gates[g]
		if gate.Kind == GateAnd {
			visit(gate.LHS.Var())
			visit(gate.RHS.Var())
		}
	}
	for _, v := range vars {
		visit(v)
	}
	return seen
}

// VarSymbols maps variables to human-readable names for diagnostics. The
// zero value is a valid, empty symbol table.
type VarSymbols struct {
	names map[Var]string
}

// NewVarSymbols creates an empty symbol table.
func NewVarSymbols() *VarSymbols { return &VarSymbols{names: make(map[Var]string)} }

// Set records a display name for v.
func (s *VarSymbols) Set(v Var, name string) {
	if s.names == nil {
		s.names = make(map[Var]string)
	}
	s.names[v] = name
}

// Name returns the display name for v, falling back to a synthesized
// "v<id>" name (matching FDVariable's fmt.Sprintf("v%d", id) fallback) when
// none was registered.
func (s *VarSymbols) Name(v Var) string {
	if s != nil {
		if n, ok := s.names[v]; ok {
			return n
		}
	}
	return v.String()
}

// TransitionSystem is the input to the IC3 core: inputs, latches, a
// next-state relation, an initial-state predicate, invariant constraints,
// a set of bad-state literals, and the DAG-CNF of every derived variable's
// definition.
type TransitionSystem struct {
	Inputs  []Var
	Latches []Var

	// Init maps each latch to its value at t=0; InitFree means unconstrained.
	Init map[Var]InitValue

	// Next maps each latch to the literal computing its value at t+1.
	Next map[Var]Lit

	// Bad is the set of literals whose satisfaction in a reachable state
	// is a failure. Any one of them being true constitutes "bad".
	Bad []Lit

	// Constraint literals must hold in every reachable state (including
	// the initial state).
	Constraint []Lit

	Rel *Rel

	badTrigger *Lit
}

// NewTransitionSystem creates an empty transition system with a fresh Rel.
func NewTransitionSystem() *TransitionSystem {
	return &TransitionSystem{
		Init: make(map[Var]InitValue),
		Next: make(map[Var]Lit),
		Rel:  NewRel(),
	}
}

// BadTrigger returns a single literal equivalent to the disjunction of
// every Bad literal, lazily threading the OR through rel's AND-gate
// infrastructure via De Morgan (¬(¬b1 ∧ ¬b2 ∧ ... ∧ ¬bn) = b1 ∨ ... ∨ bn)
// so that any TransysSolver built from this system's Rel picks up its
// Tseitin clauses automatically through AllClauses. Must be called before
// the first TransysSolver is constructed over this system, since later
// solvers never re-scan Rel for gates added after their own construction.
func (t *TransitionSystem) BadTrigger() Lit {
	if t.badTrigger != nil {
		return *t.badTrigger
	}
	var trigger Lit
	if len(t.Bad) == 0 {
		trigger = LitConstFalse
	} else {
		acc := t.Bad[0].Not()
		for _, l := range t.Bad[1:] {
			nv := t.Rel.NewVar()
			t.Rel.DefineAnd(nv, acc, l.Not())
			acc = NewLit(nv, true)
		}
		trigger = acc.Not()
	}
	t.badTrigger = &trigger
	return trigger
}

// AddLatch declares v as a latch with the given initial value and
// next-state literal.
func (t *TransitionSystem) AddLatch(v Var, init InitValue, next Lit) {
	t.Latches = append(t.Latches, v)
	t.Init[v] = init
	t.Next[v] = next
	t.Rel.Declare(v, GateLatch)
}

// AddInput declares v as an input variable.
func (t *TransitionSystem) AddInput(v Var) {
	t.Inputs = append(t.Inputs, v)
	t.Rel.Declare(v, GateInput)
}

// NextLit extends Next from a latch variable to an arbitrary literal: the
// next-state image of ¬l is ¬(next-state image of l).
func (t *TransitionSystem) NextLit(l Lit) (Lit, error) {
	n, ok := t.Next[l.Var()]
	if !ok {
		// Non-latch variables (inputs, derived gates) are not time-shifted
		// by this system; only latches have a registered Next. Callers
		// composing Next over a cube must only ever do so for latch
		// literals — anything else is a usage error.
		return 0, fmt.Errorf("%w: %s has no registered next-state literal", ErrNoNextState, l.Var())
	}
	if !l.Polarity() {
		return n.Not(), nil
	}
	return n, nil
}

// NextCube extends NextLit over a cube, preserving order.
func (t *TransitionSystem) NextCube(c LitVec) (LitVec, error) {
	out := make(LitVec, len(c))
	for i, l := range c {
		n, err := t.NextLit(l)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// IsLatch reports whether v is declared as a latch.
func (t *TransitionSystem) IsLatch(v Var) bool {
	_, ok := t.Next[v]
	return ok
}

// Validate checks the invariants spec §3 requires of a TransitionSystem:
// Next total over latches, every referenced variable defined, and (via
// Rel's own construction discipline) that rel is acyclic. Returns a
// wrapped ErrMalformedSystem describing the first violation found.
func (t *TransitionSystem) Validate() error {
	defined := func(v Var) bool {
		if v == VarConst {
			return true
		}
		if t.Rel.IsDefined(v) {
			return true
		}
		return false
	}
	for _, l := range t.Latches {
		if _, ok := t.Next[l]; !ok {
			return fmt.Errorf("%w: %w: latch %s", ErrMalformedSystem, ErrNoNextState, l)
		}
	}
	checkLit := func(l Lit, context string) error {
		if !defined(l.Var()) {
			return fmt.Errorf("%w: %w: %s references %s", ErrMalformedSystem, ErrUndefinedVar, context, l.Var())
		}
		return nil
	}
	for l, n := range t.Next {
		if err := checkLit(NewLit(l, true), "next"); err != nil {
			return err
		}
		if err := checkLit(n, "next target"); err != nil {
			return err
		}
	}
	for _, l := range t.Bad {
		if err := checkLit(l, "bad"); err != nil {
			return err
		}
	}
	for _, l := range t.Constraint {
		if err := checkLit(l, "constraint"); err != nil {
			return err
		}
	}
	return nil
}

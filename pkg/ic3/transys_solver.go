package ic3

// TransysSolver wraps a DagCnfSolver preloaded with a transition system's
// rel clauses (and, for a given frame's solver, the lemmas homed at that
// frame or any higher one, plus F∞) to answer relative-induction queries
// (spec §4.3).
type TransysSolver struct {
	ts     *TransitionSystem
	solver *DagCnfSolver
}

// NewTransysSolver creates a TransysSolver over ts, loading rel's full CNF
// and the transition system's constraint literals as permanent clauses.
func NewTransysSolver(ts *TransitionSystem, seed int64) *TransysSolver {
	solver := NewDagCnfSolver(ts.Rel, seed)
	for _, cl := range ts.Rel.AllClauses() {
		solver.AddClause(cl)
	}
	for _, l := range ts.Constraint {
		solver.AddClause(LitVec{l})
		if nl, err := ts.NextLit(l); err == nil {
			solver.AddClause(LitVec{nl})
		}
	}
	return &TransysSolver{ts: ts, solver: solver}
}

// Solver exposes the underlying DagCnfSolver, e.g. for AddLemmaClause /
// SetStopFlag plumbing from Frames/IC3.
func (t *TransysSolver) Solver() *DagCnfSolver { return t.solver }

// Inductive tests whether F_i ∧ T ∧ ¬c ⇒ ¬c' holds: it assumes next(c) and,
// if strengthen is set, additionally asserts ¬c as a one-call extra
// clause (spec §4.3). Returns true ("blocked") iff the query is UNSAT.
func (t *TransysSolver) Inductive(c LitVec, strengthen bool) (bool, error) {
	nextC, err := t.ts.NextCube(c)
	if err != nil {
		return false, err
	}
	var sat bool
	if strengthen {
		sat = t.solver.SolveWithConstraint(nextC, []LitVec{c.Negate()})
	} else {
		sat = t.solver.Solve(nextC)
	}
	return !sat, nil
}

// InductiveCore returns, from the last UNSAT Inductive(c, ...) result, the
// sub-cube of c consisting of exactly the literals whose next-state image
// participated in the unsat core (spec §4.3). If the resulting core would
// subsume the initial states (making it unsafe to block — it would
// exclude an initial state too) a single literal disagreeing with the
// initial-state assignment is added back in.
func (t *TransysSolver) InductiveCore(c LitVec) (LitVec, error) {
	var core LitVec
	for _, l := range c {
		nl, err := t.ts.NextLit(l)
		if err != nil {
			return nil, err
		}
		if t.solver.UnsatHas(nl) {
			core = append(core, l)
		}
	}
	if t.subsumesInit(core) {
		// Re-add the smallest-variable literal of c that disagrees with
		// its latch's initial value.
		for _, l := range SortedCube(c) {
			if iv, ok := t.ts.Init[l.Var()]; ok && iv != InitFree && (iv == InitOne) != l.Polarity() {
				core = append(core, l)
				break
			}
		}
	}
	return SortedCube(core), nil
}

// subsumesInit reports whether every literal of cube agrees with the
// initial-state assignment (InitFree latches never disagree), meaning the
// initial state itself would satisfy cube — blocking cube would wrongly
// exclude an initial state.
func (t *TransysSolver) subsumesInit(cube LitVec) bool {
	for _, l := range cube {
		iv, ok := t.ts.Init[l.Var()]
		if !ok || iv == InitFree {
			continue
		}
		agrees := (iv == InitOne) == l.Polarity()
		if !agrees {
			return false
		}
	}
	return true
}

// excludeInitLiteral returns the literal of the smallest-variable latch
// with a defined (non-free) initial value, whose polarity disagrees with
// that value; ok is false if that literal is already in cube. The latch
// is the smallest over all latches, not only those of cube. Adding it to
// a core guarantees the core no longer subsumes init.
func (t *TransysSolver) excludeInitLiteral(cube LitVec) (Lit, bool) {
	best := VarUndef
	for _, latch := range t.ts.Latches {
		iv, ok := t.ts.Init[latch]
		if !ok || iv == InitFree {
			continue
		}
		if best == VarUndef || latch < best {
			best = latch
		}
	}
	if best == VarUndef {
		return 0, false
	}
	iv := t.ts.Init[best]
	l := NewLit(best, iv != InitOne)
	if cube.Contains(l) {
		return 0, false
	}
	return l, true
}

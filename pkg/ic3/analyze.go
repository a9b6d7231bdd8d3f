package ic3

// analyze performs first-UIP conflict analysis starting from the
// conflicting clause confl, returning the learnt clause (UIP literal
// first) and the backjump level to which the solver should retreat (spec
// §4.2's Conflict analysis). Every variable touched on the conflict side
// is bumped in VSIDS; activation variables are not told apart and are
// bumped like any other.
func (s *DagCnfSolver) analyze(confl ClauseRef) (LitVec, int) {
	seen := make(map[Var]bool)
	var tail LitVec // learnt literals below the current decision level
	counter := 0
	var p Lit
	reason := confl
	idx := len(s.trail) - 1
	first := true

	for {
		lits := s.db.Lits(reason)
		start := 0
		if !first {
			start = 1 // lits[0] == p by the unit-propagation invariant
		}
		for i := start; i < len(lits); i++ {
			q := lits[i]
			qv := q.Var()
			if seen[qv] || s.level[qv] == 0 {
				continue
			}
			seen[qv] = true
			s.vsids.Bump(qv)
			if int(s.level[qv]) >= s.decisionLevel() {
				counter++
			} else {
				tail = append(tail, q)
			}
		}
		first = false

		for !seen[s.trail[idx].Var()] {
			idx--
		}
		p = s.trail[idx]
		pv := p.Var()
		reason = s.reason[pv]
		seen[pv] = false
		idx--
		counter--
		if counter == 0 {
			break
		}
	}

	learnt := make(LitVec, 0, len(tail)+1)
	learnt = append(learnt, p.Not())
	learnt = append(learnt, tail...)

	learnt = s.minimizeLearnt(learnt, seen)

	btLevel := 0
	for _, l := range learnt[1:] {
		if int(s.level[l.Var()]) > btLevel {
			btLevel = int(s.level[l.Var()])
		}
	}
	return learnt, btLevel
}

// analyzeFinal computes the subset of assumption literals responsible for
// an UNSAT result, by walking the trail backward from confl's literals
// (confl == NoClauseRef seeds nothing and yields an empty core; the
// single-variable case is analyzeFinalFromVar) and following reason chains
// until only decision literals remain, recording any that belong to
// assumpVars (spec §4.2's
// unsat_has/conflict-core contract).
func (s *DagCnfSolver) analyzeFinal(confl ClauseRef, assumpVars map[Var]bool) map[Lit]bool {
	seed := make(map[Var]bool)
	if lits := s.db.Lits(confl); lits != nil {
		for _, l := range lits {
			if s.level[l.Var()] > 0 {
				seed[l.Var()] = true
			}
		}
	}
	return s.analyzeFinalFrom(seed, assumpVars)
}

// analyzeFinalFromVar is analyzeFinal's entry point for the case where the
// contradiction is "literal l is already assigned false", independent of
// any particular clause (e.g. an assumption literal contradicting an
// earlier assumption decision directly).
func (s *DagCnfSolver) analyzeFinalFromVar(v Var, assumpVars map[Var]bool) map[Lit]bool {
	seed := map[Var]bool{}
	if s.level[v] > 0 {
		seed[v] = true
	}
	return s.analyzeFinalFrom(seed, assumpVars)
}

func (s *DagCnfSolver) analyzeFinalFrom(seen map[Var]bool, assumpVars map[Var]bool) map[Lit]bool {
	core := make(map[Lit]bool)

	markAntecedents := func(lits LitVec, skipFirst bool) {
		start := 0
		if skipFirst {
			start = 1
		}
		for i := start; i < len(lits); i++ {
			v := lits[i].Var()
			if s.level[v] > 0 {
				seen[v] = true
			}
		}
	}

	for i := len(s.trail) - 1; i >= 0; i-- {
		v := s.trail[i].Var()
		if !seen[v] {
			continue
		}
		reason := s.reason[v]
		if reason.IsNone() {
			if assumpVars[v] {
				core[s.trail[i]] = true
			}
		} else {
			markAntecedents(s.db.Lits(reason), true)
		}
		seen[v] = false
	}
	return core
}

// minimizeLearnt performs self-subsumption minimization: a literal l
// (other than the asserting UIP literal) is redundant if every literal of
// its reason clause is already implied by the learnt clause (recursively),
// matching spec §4.2's "self-subsumption and recursive clause
// minimization". seen still marks the variables that appear in the raw
// learnt clause from the analyze() pass above and is reused as the
// membership test.
func (s *DagCnfSolver) minimizeLearnt(learnt LitVec, seen map[Var]bool) LitVec {
	out := make(LitVec, 1, len(learnt))
	out[0] = learnt[0]
	for _, l := range learnt[1:] {
		if !s.isRedundant(l, seen, make(map[Var]bool)) {
			out = append(out, l)
		}
	}
	return out
}

// isRedundant reports whether literal l can be dropped from the learnt
// clause: l is implied (its reason's antecedents are already accounted
// for in seen, recursively). visiting stops repeated descent: a variable
// already visited in this check is treated as redundant, since it is either
// already proven so or an ancestor still being checked.
func (s *DagCnfSolver) isRedundant(l Lit, seen map[Var]bool, visiting map[Var]bool) bool {
	v := l.Var()
	reason := s.reason[v]
	if reason.IsNone() {
		return false // decision literal: never redundant
	}
	if visiting[v] {
		return true
	}
	visiting[v] = true
	lits := s.db.Lits(reason)
	for i := 1; i < len(lits); i++ {
		q := lits[i]
		qv := q.Var()
		if s.level[qv] == 0 || seen[qv] {
			continue
		}
		if s.reason[qv].IsNone() {
			return false
		}
		if !s.isRedundant(q, seen, visiting) {
			return false
		}
	}
	return true
}

package ic3

// restartModeSwitchConflicts is the number of conflicts accumulated since
// the last mode flip before a restart is allowed to switch VSIDS between
// bucket-mode and heap-mode (spec §4.2 Restarts).
const restartModeSwitchConflicts = 5000

// Solve runs a SAT query under the given assumption literals. On UNSAT,
// UnsatHas reports which assumptions participated in the final conflict.
// On SAT, SatValue reports the model. Respects the stop flag and the
// active domain (spec §4.2's public contract).
func (s *DagCnfSolver) Solve(assumps LitVec) bool {
	return s.solveInternal(assumps)
}

// SolveWithConstraint solves under assumps with extraClauses additionally
// asserted for the duration of this call only. A fresh activation literal
// is injected into every extra clause (spec §4.2a); after the call
// returns, ¬activation is added permanently so the temporary clauses are
// satisfied forever and eventually swept by Simplify.
func (s *DagCnfSolver) SolveWithConstraint(assumps LitVec, extraClauses []LitVec) bool {
	act := NewLit(s.NewVar(), true)
	var refs []ClauseRef
	for _, cl := range extraClauses {
		gated := make(LitVec, 0, len(cl)+1)
		gated = append(gated, act.Not())
		gated = append(gated, cl...)
		refs = append(refs, s.addClauseKind(gated, KindTemporary))
	}
	withAct := make(LitVec, 0, len(assumps)+1)
	withAct = append(withAct, act)
	withAct = append(withAct, assumps...)

	result := s.solveInternal(withAct)

	s.backtrackTo(0)
	s.enqueueRoot(act.Not(), NoClauseRef)
	s.propagate()
	for _, ref := range refs {
		_ = ref // kept alive only for documentation; detached by Simplify
	}
	return result
}

// UnsatHas reports whether literal l was part of the final conflict core
// of the most recent UNSAT Solve/SolveWithConstraint call.
func (s *DagCnfSolver) UnsatHas(l Lit) bool {
	return s.lastConflictCore != nil && s.lastConflictCore[l]
}

// SatValue reports the Boolean value of l in the most recent SAT call's
// model.
func (s *DagCnfSolver) SatValue(l Lit) bool {
	if s.model == nil {
		return false
	}
	a := s.model[l.Var()]
	if a == unassigned {
		return false
	}
	positive := a == isTrue
	return l.Polarity() == positive
}

func (s *DagCnfSolver) solveInternal(assumps LitVec) bool {
	s.lastConflictCore = nil
	s.model = nil
	s.backtrackTo(0)

	assumpVars := make(map[Var]bool, len(assumps))
	for _, l := range assumps {
		s.growTo(l.Var())
		assumpVars[l.Var()] = true
	}

	// Two root units on one variable with opposite signs leave a trail
	// literal that now reads false: the clause set is UNSAT outright.
	for _, l := range s.trail {
		if s.value(l) == isFalse {
			s.lastConflictCore = map[Lit]bool{}
			s.finishSolve(false)
			return false
		}
	}

	if conflict := s.propagate(); !conflict.IsNone() {
		s.lastConflictCore = s.analyzeFinal(conflict, assumpVars)
		s.finishSolve(false)
		return false
	}

	assumpIdx := 0
	for {
		if s.stop.IsSet() {
			return false
		}
		confl := s.propagate()
		if !confl.IsNone() {
			if s.decisionLevel() <= assumpIdx {
				// The conflict does not depend on any free decision: it
				// is implied by the assumptions (and the base formula)
				// alone. analyzeFinal walks it back to the responsible
				// assumption literals.
				s.lastConflictCore = s.analyzeFinal(confl, assumpVars)
				s.finishSolve(false)
				return false
			}
			learnt, btLevel := s.analyze(confl)
			s.vsids.Decay()
			s.db.Decay()
			s.conflictsSinceRestart++
			s.conflictsSinceModeFlip++
			if btLevel < assumpIdx {
				// Backjumping past the assumption decisions: the base
				// formula conflicts with the assumptions already pushed.
				// Analyze before backtracking truncates the trail.
				s.lastConflictCore = s.analyzeFinal(confl, assumpVars)
				s.backtrackTo(btLevel)
				s.finishSolve(false)
				return false
			}
			s.backtrackTo(btLevel)
			ref := s.attachLearnt(learnt)
			if len(learnt) == 1 {
				s.enqueue(learnt[0], NoClauseRef)
			} else {
				s.enqueue(learnt[0], ref)
			}
			s.reduceLearnt()
			continue
		}

		if s.shouldRestart() && assumpIdx >= len(assumps) {
			s.backtrackTo(0)
			s.maybeSwitchVSIDSMode()
			continue
		}

		if assumpIdx < len(assumps) {
			lit := assumps[assumpIdx]
			switch s.value(lit) {
			case isTrue:
				assumpIdx++
				continue
			case isFalse:
				s.lastConflictCore = s.analyzeFinalFromVar(lit.Var(), assumpVars)
				s.lastConflictCore[lit] = true
				s.finishSolve(false)
				return false
			default:
				assumpIdx++
				s.newDecisionLevel()
				s.enqueue(lit, NoClauseRef)
				continue
			}
		}

		branch := s.vsids.PickBranchVar(s.isDecidable)
		if branch == VarUndef {
			s.finishSolve(true)
			return true
		}
		s.newDecisionLevel()
		s.enqueue(NewLit(branch, s.defaultPolarity(branch)), NoClauseRef)
	}
}

// isDecidable reports whether v may be chosen as a decision variable:
// unassigned and, if an active domain is set, a domain member.
func (s *DagCnfSolver) isDecidable(v Var) bool {
	return s.assign[v] == unassigned && s.InDomain(v)
}

// defaultPolarity picks the phase for a fresh decision. No phase-saving
// state is kept across restarts in this implementation; default to
// negative, the conventional MiniSat-style default phase.
func (s *DagCnfSolver) defaultPolarity(v Var) bool {
	return false
}

// attachLearnt stores the learnt clause and, if non-unit, attaches its
// watches; unit clauses are asserted directly via enqueue by the caller.
func (s *DagCnfSolver) attachLearnt(learnt LitVec) ClauseRef {
	if len(learnt) <= 1 {
		return NoClauseRef
	}
	ref := s.db.Attach(learnt, KindLearnt)
	s.attachWatches(ref, s.db.Lits(ref))
	s.db.Bump(ref)
	return ref
}

// shouldRestart reports whether the Luby-scheduled restart interval has
// been reached.
func (s *DagCnfSolver) shouldRestart() bool {
	if s.conflictsSinceRestart < s.nextRestartConflicts {
		return false
	}
	s.conflictsSinceRestart = 0
	s.nextRestartConflicts = s.luby.Next()
	return true
}

// maybeSwitchVSIDSMode flips between bucket-mode and heap-mode VSIDS once
// enough conflicts have accumulated since the last flip (spec §4.2
// Restarts: "switch between bucket-mode and heap-mode VSIDS").
func (s *DagCnfSolver) maybeSwitchVSIDSMode() {
	if s.conflictsSinceModeFlip < restartModeSwitchConflicts {
		return
	}
	s.conflictsSinceModeFlip = 0
	s.vsids.SwitchMode(func(v Var) bool { return s.assign[v] != unassigned })
}

// finishSolve snapshots the model on SAT and runs the periodic
// simplification schedule regardless of outcome.
func (s *DagCnfSolver) finishSolve(sat bool) {
	if sat {
		s.model = append([]assignState(nil), s.assign...)
	}
	s.maybeSimplify()
}

package ic3

// simplifyInterval is the number of solves between periodic simplification
// passes (spec §4.2: "every N solves (constant ~100)").
const simplifyInterval = 100

// lemmaGrowthThreshold triggers a subsumption pass over lemma clauses once
// their count has grown by at least this many since the last pass (spec
// §4.2).
const lemmaGrowthThreshold = 1000

// maybeSimplify runs Simplify if the periodic schedule says it is due,
// called once per completed top-level solve.
func (s *DagCnfSolver) maybeSimplify() {
	s.solvesSinceSimplify++
	if s.solvesSinceSimplify < simplifyInterval {
		return
	}
	s.solvesSinceSimplify = 0
	s.Simplify()
}

// Simplify removes satisfied clauses, subsumption-simplifies the lemma
// bucket if it has grown enough since the last pass, garbage-collects the
// clause arena, and rebuilds every watch list against the compacted arena
// (spec §4.2).
func (s *DagCnfSolver) Simplify() {
	if s.decisionLevel() != 0 {
		return // only safe to simplify against root-level assignments
	}
	s.removeSatisfiedAtRoot(KindTrans)
	s.removeSatisfiedAtRoot(KindLearnt)
	s.removeSatisfiedAtRoot(KindLemma)
	s.removeSatisfiedAtRoot(KindTemporary)

	if s.db.NumLemma()-s.lemmaCountAtLastSimpl >= lemmaGrowthThreshold {
		s.subsumeLemmas()
		s.lemmaCountAtLastSimpl = s.db.NumLemma()
	}

	s.gcAndRebuildWatches()
}

// removeSatisfiedAtRoot detaches every clause of kind that is satisfied by
// a root-level (decision level 0) literal: such a clause can never again
// constrain the search.
func (s *DagCnfSolver) removeSatisfiedAtRoot(kind ClauseKind) {
	var toDrop []ClauseRef
	s.db.EachOfKind(kind, func(ref ClauseRef, lits LitVec) {
		for _, l := range lits {
			if s.level[l.Var()] == 0 && s.value(l) == isTrue {
				toDrop = append(toDrop, ref)
				return
			}
		}
	})
	for _, ref := range toDrop {
		s.db.Detach(ref)
	}
}

// subsumeLemmas drops any lemma clause that is subsumed by another live
// lemma clause of equal or shorter length (self-subsumption across the
// lemma bucket, spec §4.2).
func (s *DagCnfSolver) subsumeLemmas() {
	type entry struct {
		ref    ClauseRef
		sorted LitVec
	}
	var entries []entry
	s.db.EachOfKind(KindLemma, func(ref ClauseRef, lits LitVec) {
		entries = append(entries, entry{ref, SortedCube(lits)})
	})
	for i := range entries {
		for j := range entries {
			if i == j {
				continue
			}
			if s.db.lookup(entries[i].ref) == nil {
				break
			}
			if s.db.lookup(entries[j].ref) == nil {
				continue
			}
			if len(entries[j].sorted) <= len(entries[i].sorted) &&
				subsumes(entries[j].sorted, entries[i].sorted) {
				s.db.Detach(entries[i].ref)
				break
			}
		}
	}
}

// gcAndRebuildWatches compacts the clause arena and rebuilds every watch
// list from scratch against the compacted references (spec §4.2, §9's
// "garbage collection compacts periodically and rewrites all
// watch-lists").
func (s *DagCnfSolver) gcAndRebuildWatches() {
	s.db.Compact()
	for i := range s.watches {
		s.watches[i] = nil
	}
	s.db.EachOfKind(KindTrans, func(ref ClauseRef, lits LitVec) { s.attachWatches(ref, lits) })
	s.db.EachOfKind(KindLearnt, func(ref ClauseRef, lits LitVec) { s.attachWatches(ref, lits) })
	s.db.EachOfKind(KindLemma, func(ref ClauseRef, lits LitVec) { s.attachWatches(ref, lits) })
	s.db.EachOfKind(KindTemporary, func(ref ClauseRef, lits LitVec) { s.attachWatches(ref, lits) })
}

// reduceLearnt, once the learnt-clause count is over the soft budget,
// evicts up to half of the learnt clauses, lowest activity (ties: longest)
// first and skipping any that is the reason for a current assignment, then
// grows the budget multiplicatively (spec §5's resource policy).
func (s *DagCnfSolver) reduceLearnt() {
	if !s.db.OverSoftBudget() {
		return
	}
	target := s.db.NumLearnt() / 2
	evicted := 0
	s.db.EachLearntByActivity(func(ref ClauseRef, lits LitVec) {
		if evicted >= target {
			return
		}
		// Never evict a clause that is the reason for a current
		// assignment (it would leave that assignment unjustified).
		for _, l := range lits {
			if s.value(l) == isTrue && s.reason[l.Var()] == ref {
				return
			}
		}
		s.db.Detach(ref)
		evicted++
	})
	s.db.GrowBudget()
}

package ic3

import "testing"

func TestSimplifyNoopsAboveRootLevel(t *testing.T) {
	s := NewDagCnfSolver(nil, 1)
	a := s.NewVar()
	s.AddClause(LitVec{NewLit(a, true), NewLit(s.NewVar(), true)})

	s.newDecisionLevel()
	s.enqueue(NewLit(a, true), NoClauseRef)
	before := s.db.NumLearnt() + s.db.NumLemma()
	s.Simplify()
	after := s.db.NumLearnt() + s.db.NumLemma()
	if before != after {
		t.Fatalf("Simplify() above decision level 0 must be a no-op")
	}
}

func TestSimplifyDropsClauseSatisfiedAtRoot(t *testing.T) {
	s := NewDagCnfSolver(nil, 1)
	a := s.NewVar()
	b := s.NewVar()
	s.AddLemmaClause(LitVec{NewLit(a, true), NewLit(b, true)})

	s.enqueueRoot(NewLit(a, true), NoClauseRef)
	s.propagate()
	if s.db.NumLemma() != 1 {
		t.Fatalf("setup: expected one live lemma clause before Simplify")
	}
	s.Simplify()
	if s.db.NumLemma() != 0 {
		t.Fatalf("Simplify() must detach a lemma clause satisfied at root level, NumLemma() = %d", s.db.NumLemma())
	}
}

func TestSubsumeLemmasDropsLongerSubsumedClause(t *testing.T) {
	s := NewDagCnfSolver(nil, 1)
	a := s.NewVar()
	b := s.NewVar()
	c := s.NewVar()
	al, bl, cl := NewLit(a, true), NewLit(b, true), NewLit(c, true)

	s.AddLemmaClause(LitVec{al})          // subsumes the clause below
	s.AddLemmaClause(LitVec{al, bl, cl})

	s.subsumeLemmas()
	if s.db.NumLemma() != 1 {
		t.Fatalf("subsumeLemmas() must drop the clause subsumed by the shorter unit lemma, NumLemma() = %d", s.db.NumLemma())
	}
}

func TestGcAndRebuildWatchesPreservesSolvability(t *testing.T) {
	s := NewDagCnfSolver(nil, 1)
	a := s.NewVar()
	b := s.NewVar()
	s.AddClause(LitVec{NewLit(a, false), NewLit(b, true)}) // ¬a ∨ b

	s.gcAndRebuildWatches()

	if !s.Solve(LitVec{NewLit(a, true)}) {
		t.Fatalf("clause set must remain satisfiable after gcAndRebuildWatches")
	}
	if !s.SatValue(NewLit(b, true)) {
		t.Fatalf("¬a ∨ b under assumption a must still force b true after watch rebuild")
	}
}

func TestReduceLearntEvictsOnlyWhenOverBudget(t *testing.T) {
	s := NewDagCnfSolver(nil, 1)
	a := s.NewVar()
	b := s.NewVar()
	ref := s.db.Attach(LitVec{NewLit(a, true), NewLit(b, true)}, KindLearnt)
	s.attachWatches(ref, s.db.Lits(ref))

	s.reduceLearnt()
	if s.db.NumLearnt() != 1 {
		t.Fatalf("reduceLearnt() under budget must not evict anything, NumLearnt() = %d", s.db.NumLearnt())
	}
}

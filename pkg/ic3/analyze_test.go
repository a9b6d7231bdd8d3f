package ic3

import "testing"

func TestSolveDetectsUnsatFromChainedUnitConflict(t *testing.T) {
	s := NewDagCnfSolver(nil, 1)
	a := s.NewVar()
	b := s.NewVar()
	// (a∨b), (¬a∨b), (¬b): ¬b forces b false, which forces a true via the
	// first clause and ¬a via the second — a root-level conflict that
	// analyze() must turn into an UNSAT verdict, not a panic or a hang.
	s.AddClause(LitVec{NewLit(a, true), NewLit(b, true)})
	s.AddClause(LitVec{NewLit(a, false), NewLit(b, true)})
	s.AddClause(LitVec{NewLit(b, false)})

	if s.Solve(nil) {
		t.Fatalf("this clause set is UNSAT by unit propagation alone, Solve() must return false")
	}
}

func TestSolveSatisfiesAllClausesUnderExactlyOneConstraint(t *testing.T) {
	s := NewDagCnfSolver(nil, 1)
	a := s.NewVar()
	b := s.NewVar()
	c := s.NewVar()
	al, bl, cl := NewLit(a, true), NewLit(b, true), NewLit(c, true)

	// exactly one of a, b, c: none of them is forced by unit propagation,
	// so reaching a model exercises real decisions and, on a wrong guess,
	// conflict-driven backjumping before Solve converges.
	s.AddClause(LitVec{al, bl, cl})
	s.AddClause(LitVec{al.Not(), bl.Not()})
	s.AddClause(LitVec{al.Not(), cl.Not()})
	s.AddClause(LitVec{bl.Not(), cl.Not()})

	if !s.Solve(nil) {
		t.Fatalf("exactly-one-of-three is satisfiable, Solve() must return true")
	}

	count := 0
	for _, l := range []Lit{al, bl, cl} {
		if s.SatValue(l) {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("final model must satisfy exactly-one-of-three, got %d of a,b,c true", count)
	}
}

func TestSolveUnsatCoreOmitsIrrelevantAssumption(t *testing.T) {
	s := NewDagCnfSolver(nil, 1)
	a := s.NewVar()
	b := s.NewVar()
	s.AddClause(LitVec{NewLit(a, true)})

	// assuming ¬a conflicts outright; assuming b too is irrelevant to that
	// conflict and analyzeFinal must not blame it.
	sat := s.Solve(LitVec{NewLit(a, false), NewLit(b, true)})
	if sat {
		t.Fatalf("expected UNSAT: a is forced true by a unit clause")
	}
	if !s.UnsatHas(NewLit(a, false)) {
		t.Fatalf("the conflicting assumption ¬a must appear in the conflict core")
	}
	if s.UnsatHas(NewLit(b, true)) {
		t.Fatalf("assumption b plays no part in the conflict, it must not appear in the core")
	}
}

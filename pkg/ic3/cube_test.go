package ic3

import "testing"

func lits(pairs ...int) LitVec {
	var out LitVec
	for _, p := range pairs {
		if p < 0 {
			out = append(out, NewLit(Var(-p), false))
		} else {
			out = append(out, NewLit(Var(p), true))
		}
	}
	return out
}

func TestSortedCubeOrdersAndCopies(t *testing.T) {
	c := lits(3, -1, 2)
	sorted := SortedCube(c)
	want := lits(-1, 2, 3)
	for i := range want {
		if sorted[i] != want[i] {
			t.Fatalf("SortedCube()[%d] = %v, want %v", i, sorted[i], want[i])
		}
	}
	if &c[0] == &sorted[0] {
		t.Fatalf("SortedCube must not alias its input's backing array")
	}
}

func TestLemmaEqualIgnoresInputOrder(t *testing.T) {
	a := NewLemma(lits(1, -2, 3), ObligationNone)
	b := NewLemma(lits(3, 1, -2), ObligationNone)
	if !a.Equal(b) {
		t.Fatalf("lemmas built from the same cube in different orders must be Equal")
	}
}

func TestLemmaClauseNegatesCube(t *testing.T) {
	l := NewLemma(lits(1, -2), ObligationNone)
	clause := l.Clause()
	want := lits(-1, 2)
	for i := range want {
		if clause[i] != want[i] {
			t.Fatalf("Clause()[%d] = %v, want %v", i, clause[i], want[i])
		}
	}
}

func TestLemmaSubsume(t *testing.T) {
	weaker := NewLemma(lits(1), ObligationNone)
	stronger := NewLemma(lits(1, 2), ObligationNone)

	if !weaker.Subsume(stronger) {
		t.Fatalf("a single-literal lemma must subsume any superset cube")
	}
	if stronger.Subsume(weaker) {
		t.Fatalf("a two-literal lemma must not subsume a proper subset's lemma")
	}
	if !weaker.Subsume(weaker) {
		t.Fatalf("subsumption must be reflexive")
	}
}

func TestLemmaSubsumeDisjoint(t *testing.T) {
	a := NewLemma(lits(1), ObligationNone)
	b := NewLemma(lits(2), ObligationNone)
	if a.Subsume(b) || b.Subsume(a) {
		t.Fatalf("disjoint single-literal lemmas must not subsume each other")
	}
}

func TestLitBitsetSubsumesCube(t *testing.T) {
	lemma := NewLemma(lits(1, -2, 5), ObligationNone)
	b := newLitBitset(lemma.Cube())

	if !b.subsumesCube(lits(1, 5)) {
		t.Fatalf("bitset of {1,-2,5} must report containing subset {1,5}")
	}
	if b.subsumesCube(lits(1, 2)) {
		t.Fatalf("bitset of {1,-2,5} must not claim to contain {1,2} (wrong polarity on 2)")
	}
	if b.subsumesCube(lits(7)) {
		t.Fatalf("bitset must not claim to contain an out-of-range variable")
	}
}

func TestLitBitsetEmptyCube(t *testing.T) {
	b := newLitBitset(nil)
	if !b.subsumesCube(nil) {
		t.Fatalf("an empty bitset must vacuously subsume the empty cube")
	}
	if b.subsumesCube(lits(1)) {
		t.Fatalf("an empty bitset must not subsume a non-empty cube")
	}
}

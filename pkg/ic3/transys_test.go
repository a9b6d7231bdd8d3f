package ic3

import "testing"

func TestTransitionSystemValidateRejectsMissingNext(t *testing.T) {
	ts := NewTransitionSystem()
	v := ts.Rel.NewVar()
	ts.Latches = append(ts.Latches, v)
	ts.Init[v] = InitZero
	// Next deliberately left unset.

	if err := ts.Validate(); err == nil {
		t.Fatalf("Validate must reject a latch with no registered Next")
	}
}

func TestTransitionSystemValidateRejectsUndefinedBadVar(t *testing.T) {
	ts := NewTransitionSystem()
	v := ts.Rel.NewVar()
	ts.AddLatch(v, InitZero, NewLit(v, true).Not())
	ghost := Var(9999)
	ts.Bad = []Lit{NewLit(ghost, true)}

	if err := ts.Validate(); err == nil {
		t.Fatalf("Validate must reject a Bad literal over an undefined variable")
	}
}

func TestTransitionSystemValidateAcceptsWellFormedSystem(t *testing.T) {
	ts := NewTransitionSystem()
	v := ts.Rel.NewVar()
	ts.AddLatch(v, InitZero, NewLit(v, true).Not())
	ts.Bad = []Lit{NewLit(v, true)}

	if err := ts.Validate(); err != nil {
		t.Fatalf("Validate rejected a well-formed system: %v", err)
	}
}

func TestNextLitNegatesForNegativeLiteral(t *testing.T) {
	ts := NewTransitionSystem()
	v := ts.Rel.NewVar()
	w := ts.Rel.NewVar()
	ts.AddLatch(v, InitZero, NewLit(w, true))

	pos, err := ts.NextLit(NewLit(v, true))
	if err != nil || pos != NewLit(w, true) {
		t.Fatalf("NextLit(+v) = %v, %v; want %v, nil", pos, err, NewLit(w, true))
	}
	neg, err := ts.NextLit(NewLit(v, false))
	if err != nil || neg != NewLit(w, false) {
		t.Fatalf("NextLit(-v) = %v, %v; want %v, nil", neg, err, NewLit(w, false))
	}
}

func TestNextLitErrorsOnNonLatch(t *testing.T) {
	ts := NewTransitionSystem()
	in := ts.Rel.NewVar()
	ts.AddInput(in)

	if _, err := ts.NextLit(NewLit(in, true)); err == nil {
		t.Fatalf("NextLit over a non-latch variable must return an error")
	}
}

func TestBadTriggerIsFalseWithNoBadLiterals(t *testing.T) {
	ts := NewTransitionSystem()
	if trig := ts.BadTrigger(); trig != LitConstFalse {
		t.Fatalf("BadTrigger() with no Bad literals = %v, want LitConstFalse", trig)
	}
}

func TestBadTriggerMemoizes(t *testing.T) {
	ts := NewTransitionSystem()
	v := ts.Rel.NewVar()
	ts.AddLatch(v, InitZero, NewLit(v, true))
	ts.Bad = []Lit{NewLit(v, true)}

	first := ts.BadTrigger()
	second := ts.BadTrigger()
	if first != second {
		t.Fatalf("BadTrigger must memoize and return the same literal on repeat calls")
	}
}

func TestBadTriggerDisjunctionTruthTable(t *testing.T) {
	ts := NewTransitionSystem()
	a := ts.Rel.NewVar()
	b := ts.Rel.NewVar()
	ts.AddLatch(a, InitZero, NewLit(a, true))
	ts.AddLatch(b, InitZero, NewLit(b, true))
	ts.Bad = []Lit{NewLit(a, true), NewLit(b, true)}
	trigger := ts.BadTrigger()

	for _, av := range []bool{false, true} {
		for _, bv := range []bool{false, true} {
			assign := map[Var]bool{a: av, b: bv}
			got := evalGate(ts.Rel, assign, trigger)
			want := av || bv
			if got != want {
				t.Fatalf("BadTrigger(%v,%v) = %v, want %v", av, bv, got, want)
			}
		}
	}
}

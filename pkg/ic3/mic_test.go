package ic3

import "testing"

// saturationCounterLikeSystem builds a latch a whose next-state is always
// 0 (so any state with a=1 is inductively excludable on its own) plus two
// latches b, c driven by independent free inputs, standing in for the
// irrelevant bits MIC must learn to drop (spec §8's "safe with required
// generalization" scenario, scaled down to 3 latches for a fast check).
func saturationCounterLikeSystem() (*TransitionSystem, Var, Var, Var) {
	ts := NewTransitionSystem()
	a := ts.Rel.NewVar()
	b := ts.Rel.NewVar()
	c := ts.Rel.NewVar()
	in1 := ts.Rel.NewVar()
	in2 := ts.Rel.NewVar()
	ts.AddInput(in1)
	ts.AddInput(in2)
	ts.AddLatch(a, InitZero, LitConstFalse)
	ts.AddLatch(b, InitZero, NewLit(in1, true))
	ts.AddLatch(c, InitZero, NewLit(in2, true))
	return ts, a, b, c
}

func TestMICByDropVarDropsIrrelevantLiterals(t *testing.T) {
	ts, a, b, c := saturationCounterLikeSystem()
	frames := NewFrames(ts, 1)
	act := NewActivity()

	cube := LitVec{NewLit(a, true), NewLit(b, true), NewLit(c, true)}
	mic := MICByDropVar(frames, act, cube, 0)

	if len(mic) != 1 || mic[0].Var() != a {
		t.Fatalf("MICByDropVar(%v) = %v, want the single literal over a", cube, mic)
	}
}

func TestMICByDropVarNeverShrinksToEmpty(t *testing.T) {
	ts := NewTransitionSystem()
	a := ts.Rel.NewVar()
	ts.AddLatch(a, InitZero, LitConstFalse)
	frames := NewFrames(ts, 1)
	act := NewActivity()

	mic := MICByDropVar(frames, act, LitVec{NewLit(a, true)}, 0)
	if len(mic) != 1 {
		t.Fatalf("a single-literal cube must be returned unchanged, got %v", mic)
	}
}

func TestDownReportsBlockedForAlreadyCoveredCube(t *testing.T) {
	ts, a, _, _ := saturationCounterLikeSystem()
	frames := NewFrames(ts, 1)
	act := NewActivity()

	frames.AddLemma(0, LitVec{NewLit(a, true)}, ObligationNone)
	if !down(frames, act, LitVec{NewLit(a, true)}, 0, 1, 1) {
		t.Fatalf("down must report blocked via trivial containment once a covering lemma exists")
	}
}

package ic3

import "testing"

// twoLatchCounter: next(a) = ¬a, next(b) = a⊕b, init a=0,b=0, bad = a∧b.
// (0,0)→(1,0)→(0,1)→(1,1) is the shortest path into bad, so Unsafe(3).
func twoLatchCounter() *TransitionSystem {
	ts := NewTransitionSystem()
	a := ts.Rel.NewVar()
	b := ts.Rel.NewVar()
	al := NewLit(a, true)
	bl := NewLit(b, true)
	ts.AddLatch(a, InitZero, al.Not())
	ts.AddLatch(b, InitZero, ts.Rel.Xor(al, bl))
	ts.Bad = []Lit{ts.Rel.And(al, bl)}
	return ts
}

// alwaysZeroRegister: next(a) = 0, init a=0, bad = a. a is never reachably
// true, so Safe with invariant {¬a}.
func alwaysZeroRegister() *TransitionSystem {
	ts := NewTransitionSystem()
	a := ts.Rel.NewVar()
	ts.AddLatch(a, InitZero, LitConstFalse)
	ts.Bad = []Lit{NewLit(a, true)}
	return ts
}

// togglingBitWithConstraint: next(a) = ¬a, init a=0, constraint ¬a prunes
// the only transition that would ever reach a=1. Safe with invariant {¬a}.
func togglingBitWithConstraint() *TransitionSystem {
	ts := NewTransitionSystem()
	a := ts.Rel.NewVar()
	al := NewLit(a, true)
	ts.AddLatch(a, InitZero, al.Not())
	ts.Constraint = []Lit{al.Not()}
	ts.Bad = []Lit{al}
	return ts
}

// raceWithBad: latches p,q, input in, next(p) = p∨in, next(q) = q∨p, init
// p=0,q=0, bad = q. in=1 at step 0 drives p to 1 at step 1, which drives q
// to 1 at step 2: Unsafe(2).
func raceWithBad() *TransitionSystem {
	ts := NewTransitionSystem()
	p := ts.Rel.NewVar()
	q := ts.Rel.NewVar()
	in := ts.Rel.NewVar()
	ts.AddInput(in)
	pl := NewLit(p, true)
	ql := NewLit(q, true)
	inl := NewLit(in, true)
	ts.AddLatch(p, InitZero, ts.Rel.Or(pl, inl))
	ts.AddLatch(q, InitZero, ts.Rel.Or(ql, pl))
	ts.Bad = []Lit{ql}
	return ts
}

func checkScenario(t *testing.T, build func() *TransitionSystem) (Result, *IC3) {
	t.Helper()
	return checkScenarioWithConfig(t, build, DefaultConfig())
}

func checkScenarioWithConfig(t *testing.T, build func() *TransitionSystem, cfg Config) (Result, *IC3) {
	t.Helper()
	ts := build()
	checker, err := NewIC3(ts, NewVarSymbols(), cfg)
	if err != nil {
		t.Fatalf("NewIC3: %v", err)
	}
	return checker.Check(), checker
}

func TestCheckTwoLatchCounterIsUnsafeAtDepthThree(t *testing.T) {
	res, _ := checkScenario(t, twoLatchCounter)
	if res.Kind != ResultUnsafe || res.Depth != 3 {
		t.Fatalf("Check() = %+v, want Unsafe at depth 3", res)
	}
}

func TestCheckAlwaysZeroRegisterIsSafe(t *testing.T) {
	res, _ := checkScenario(t, alwaysZeroRegister)
	if res.Kind != ResultSafe {
		t.Fatalf("Check() = %+v, want Safe", res)
	}
}

func TestCheckTogglingBitWithConstraintIsSafe(t *testing.T) {
	res, _ := checkScenario(t, togglingBitWithConstraint)
	if res.Kind != ResultSafe {
		t.Fatalf("Check() = %+v, want Safe", res)
	}
}

func TestCheckRaceWithBadIsUnsafeAtDepthTwo(t *testing.T) {
	res, _ := checkScenario(t, raceWithBad)
	if res.Kind != ResultUnsafe || res.Depth != 2 {
		t.Fatalf("Check() = %+v, want Unsafe at depth 2", res)
	}
}

func TestCheckSafeResultReportsNonzeroLemmas(t *testing.T) {
	res, checker := checkScenario(t, alwaysZeroRegister)
	if res.Kind != ResultSafe {
		t.Fatalf("Check() = %+v, want Safe", res)
	}
	stats := checker.Stats()
	if stats.LemmasAdded == 0 {
		t.Fatalf("a Safe verdict must have added at least one lemma (the invariant), got stats %+v", stats)
	}
	if stats.FramesExtended == 0 {
		t.Fatalf("reaching Safe requires extending past F0 at least once, got stats %+v", stats)
	}
}

func TestProofOnSafeRejectsReachingBad(t *testing.T) {
	res, checker := checkScenario(t, alwaysZeroRegister)
	if res.Kind != ResultSafe {
		t.Fatalf("Check() = %+v, want Safe", res)
	}
	proof := checker.Proof()
	if len(proof.Bad) == 0 {
		t.Fatalf("Proof() must carry a non-empty invariant as its Bad literal set")
	}
	// the only discoverable fixpoint for this system is {¬a}: nothing else
	// rules a out of every reachable state.
	want := NewLit(proof.Latches[0], false)
	found := false
	for _, l := range proof.Bad {
		if l == want {
			found = true
		}
	}
	if !found {
		t.Fatalf("Proof().Bad = %v, want it to contain the literal ¬a", proof.Bad)
	}
}

func TestCheckTwoLatchCounterUnsafeDepthIsPositive(t *testing.T) {
	ts := twoLatchCounter()
	checker, err := NewIC3(ts, NewVarSymbols(), DefaultConfig())
	if err != nil {
		t.Fatalf("NewIC3: %v", err)
	}
	res := checker.Check()
	if res.Kind != ResultUnsafe {
		t.Fatalf("Check() = %+v, want Unsafe", res)
	}
	// Witness needs a leaf obligation ref; block() returns before exposing
	// one directly, so this test only exercises the depth/kind contract
	// Check() itself guarantees rather than reaching into queue internals.
	if res.Depth <= 0 {
		t.Fatalf("Unsafe result depth = %d, want > 0 (counterexample requires at least one transition)", res.Depth)
	}
}

func TestCheckWithInnStillMatchesBaselineUnsafeVerdict(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Inn = true
	res, checker := checkScenarioWithConfig(t, twoLatchCounter, cfg)
	if res.Kind != ResultUnsafe || res.Depth != 3 {
		t.Fatalf("Check() with Inn = %+v, want Unsafe at depth 3 (same as without Inn)", res)
	}
	if !checker.cfg.NoPredProp {
		t.Fatalf("Inn must force NoPredProp on, per original_source/src/ic3/mod.rs's IC3::new")
	}
}

func TestCheckWithInnStillMatchesBaselineSafeVerdict(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Inn = true
	res, _ := checkScenarioWithConfig(t, alwaysZeroRegister, cfg)
	if res.Kind != ResultSafe {
		t.Fatalf("Check() with Inn = %+v, want Safe (same as without Inn)", res)
	}
}

func TestCheckWithNoPredPropMatchesDefaultVerdict(t *testing.T) {
	withPreCheck, _ := checkScenarioWithConfig(t, raceWithBad, DefaultConfig())

	cfg := DefaultConfig()
	cfg.NoPredProp = true
	withoutPreCheck, _ := checkScenarioWithConfig(t, raceWithBad, cfg)

	if withPreCheck.Kind != withoutPreCheck.Kind || withPreCheck.Depth != withoutPreCheck.Depth {
		t.Fatalf("NoPredProp must not change the verdict: with pre-check = %+v, without = %+v",
			withPreCheck, withoutPreCheck)
	}
}

// fakeRefiner is a test double for BMCRefiner: it records how many times it
// was consulted and returns a canned verdict.
type fakeRefiner struct {
	calls  int
	refine []Var
	ok     bool
}

func (f *fakeRefiner) CheckWitness(depth int, cube LitVec) ([]Var, bool) {
	f.calls++
	return f.refine, f.ok
}

// initCubeAtFrame builds the cube matching twoLatchCounter's initial
// assignment (a=0, b=0), which subsumesInit reports true for regardless of
// the frame it is queued at.
func initCubeAtFrame(ts *TransitionSystem) LitVec {
	a, b := ts.Latches[0], ts.Latches[1]
	return LitVec{NewLit(a, false), NewLit(b, false)}
}

func TestBlockConsultsRefinerOnAbsCstInitSubsumingObligation(t *testing.T) {
	ts := twoLatchCounter()
	cfg := DefaultConfig()
	cfg.AbsCst = true
	refiner := &fakeRefiner{refine: []Var{7}, ok: false}
	cfg.Refiner = refiner
	checker, err := NewIC3(ts, NewVarSymbols(), cfg)
	if err != nil {
		t.Fatalf("NewIC3: %v", err)
	}
	checker.frames.Extend()
	checker.obligations.Add(initCubeAtFrame(ts), 1, 0, ObligationNone)

	res, term := checker.block(1)
	if term {
		t.Fatalf("block() must not terminate when the refiner refutes the witness, got %+v", res)
	}
	if refiner.calls != 1 {
		t.Fatalf("refiner must be consulted exactly once, got %d calls", refiner.calls)
	}
	if checker.obligations.Len() != 0 {
		t.Fatalf("a refuted witness must clear the obligation queue, Len() = %d", checker.obligations.Len())
	}
	if got := checker.RefinedVars(); len(got) != 1 || got[0] != 7 {
		t.Fatalf("RefinedVars() = %v, want [7]", got)
	}
}

func TestBlockConfirmsGenuineCounterexampleViaRefiner(t *testing.T) {
	ts := twoLatchCounter()
	cfg := DefaultConfig()
	cfg.AbsCst = true
	refiner := &fakeRefiner{ok: true}
	cfg.Refiner = refiner
	checker, err := NewIC3(ts, NewVarSymbols(), cfg)
	if err != nil {
		t.Fatalf("NewIC3: %v", err)
	}
	checker.frames.Extend()
	checker.obligations.Add(initCubeAtFrame(ts), 1, 2, ObligationNone)

	res, term := checker.block(1)
	if !term || res.Kind != ResultUnsafe || res.Depth != 2 {
		t.Fatalf("block() = %+v, term=%v, want a terminal Unsafe result at depth 2 once the refiner confirms", res, term)
	}
	if refiner.calls != 1 {
		t.Fatalf("refiner must be consulted exactly once, got %d calls", refiner.calls)
	}
}

func TestBlockWithoutRefinerTrustsAbsCstWitnessOutright(t *testing.T) {
	ts := twoLatchCounter()
	cfg := DefaultConfig()
	cfg.AbsCst = true // no Refiner registered
	checker, err := NewIC3(ts, NewVarSymbols(), cfg)
	if err != nil {
		t.Fatalf("NewIC3: %v", err)
	}
	checker.frames.Extend()
	checker.obligations.Add(initCubeAtFrame(ts), 1, 1, ObligationNone)

	res, term := checker.block(1)
	if !term || res.Kind != ResultUnsafe || res.Depth != 1 {
		t.Fatalf("block() = %+v, term=%v, want Unsafe at depth 1: AbsCst with no refiner must behave like the default path", res, term)
	}
}

func TestStopFlagYieldsUnknownPromptly(t *testing.T) {
	ts := twoLatchCounter()
	checker, err := NewIC3(ts, NewVarSymbols(), DefaultConfig())
	if err != nil {
		t.Fatalf("NewIC3: %v", err)
	}
	checker.Stop()
	res := checker.Check()
	if res.Kind != ResultUnknown {
		t.Fatalf("Check() with a pre-set stop flag = %+v, want Unknown", res)
	}
}

package ic3

// ctgActivityLow and ctgActivityHigh are the two breakpoints of the
// dynamic CTG-budget schedule (spec §4.7): an obligation cube built from
// literals with little recorded activity gets a minimal, cheap mic pass,
// while a cube built from hot, frequently-rediscovered literals earns a
// deeper counterexample-to-generalization search.
const (
	ctgActivityLow  = 10.0
	ctgActivityHigh = 40.0
)

// dynamicMicParams picks (maxCTGs, maxDepth) for down/ctgDown's recursion
// budget from the cube's total literal activity.
func dynamicMicParams(totalActivity float64) (maxCTGs, maxDepth int) {
	switch {
	case totalActivity >= ctgActivityHigh:
		return 3, 3
	case totalActivity >= ctgActivityLow:
		return 2, 2
	default:
		return 1, 1
	}
}

func totalActivity(c LitVec, act *Activity) float64 {
	var sum float64
	for _, l := range c {
		sum += act.Of(l.Var())
	}
	return sum
}

// MICByDropVar generalizes cube into a smaller sub-cube that remains
// inductive relative to frame, by repeatedly attempting to drop one
// literal at a time. Literals are tried for removal in ascending-activity
// order, so the least-useful literals (per the running Activity EMA) are
// dropped first (spec §4.7's mic_by_drop_var driver). The cube is never
// shrunk to empty: an empty cube would block every state, including
// every initial state.
func MICByDropVar(frames *Frames, act *Activity, cube LitVec, frame int) LitVec {
	c := act.SortByActivityAscending(SortedCube(cube))
	maxCTGs, maxDepth := dynamicMicParams(totalActivity(c, act))

	i := 0
	for i < len(c) {
		if len(c) == 1 {
			break
		}
		candidate := make(LitVec, 0, len(c)-1)
		candidate = append(candidate, c[:i]...)
		candidate = append(candidate, c[i+1:]...)
		if down(frames, act, candidate, frame, maxCTGs, maxDepth) {
			c = candidate
			if i >= len(c) {
				i = len(c) - 1
			}
		} else {
			i++
		}
	}
	return SortedCube(c)
}

// down tests whether candidate is inductive relative to frame
// (strengthened by ¬candidate). A failed check yields a
// counterexample-to-generalization: a one-step predecessor state whose
// cube down spends up to maxCTGs attempts recursively proving inductive
// one frame lower (via ctgDown) before giving up on the drop (spec
// §4.7's ctg_down recursion).
func down(frames *Frames, act *Activity, candidate LitVec, frame int, maxCTGs, maxDepth int) bool {
	solver := frames.FrameSolver(frame)
	if solver.subsumesInit(candidate) {
		return false
	}
	if frames.IsBlocked(frame+1, candidate) {
		return true
	}
	ctgsUsed := 0
	for {
		blocked, err := solver.Inductive(candidate, true)
		if err != nil {
			return false
		}
		if blocked {
			return true
		}
		if maxDepth <= 0 || ctgsUsed >= maxCTGs || frame <= 0 {
			return false
		}
		ctg := witnessCube(solver, frames.ts)
		if len(ctg) == 0 {
			return false
		}
		ctgsUsed++
		if !ctgDown(frames, act, ctg, frame-1) {
			return false
		}
		// frame-1 now excludes ctg; retry the original query, which may
		// now succeed since the predecessor that broke it is gone.
	}
}

// ctgDown attempts to prove ctg inductive relative to frame and, on
// success, generalizes it with a nested MICByDropVar pass and records it
// as a genuine lemma at frame — the opportunistic strengthening that is
// the CTG mechanism's payoff (spec §4.7).
func ctgDown(frames *Frames, act *Activity, ctg LitVec, frame int) bool {
	if frame < 0 {
		return false
	}
	solver := frames.FrameSolver(frame)
	blocked, err := solver.Inductive(ctg, true)
	if err != nil || !blocked {
		return false
	}
	core, err := solver.InductiveCore(ctg)
	if err != nil {
		core = ctg
	}
	act.BumpCube(core)
	generalized := MICByDropVar(frames, act, core, frame)
	frames.AddLemma(frame, generalized, ObligationNone)
	return true
}

// witnessCube extracts the latch-literal cube describing the current SAT
// model of solver — the counterexample-to-generalization state produced
// by the most recent failed Inductive query.
func witnessCube(solver *TransysSolver, ts *TransitionSystem) LitVec {
	out := make(LitVec, 0, len(ts.Latches))
	for _, latch := range ts.Latches {
		l := NewLit(latch, true)
		if solver.Solver().SatValue(l) {
			out = append(out, l)
		} else {
			out = append(out, l.Not())
		}
	}
	return SortedCube(out)
}

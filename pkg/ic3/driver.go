package ic3

import (
	"sort"
	"sync/atomic"
	"time"
)

// ResultKind classifies the outcome of Check (spec §6).
type ResultKind int

const (
	ResultSafe ResultKind = iota
	ResultUnsafe
	ResultUnknown
)

// Result is IC3's verdict: Safe, Unsafe at a witnessed depth, or Unknown
// because a resource bound (time limit or stop flag) was hit at the given
// frontier.
type Result struct {
	Kind  ResultKind
	Depth int // valid when Kind == ResultUnsafe
	Bound int // valid when Kind == ResultUnknown
}

func safeResult() Result                 { return Result{Kind: ResultSafe} }
func unsafeResult(depth int) Result      { return Result{Kind: ResultUnsafe, Depth: depth} }
func unknownResult(bound int) Result     { return Result{Kind: ResultUnknown, Bound: bound} }
func (r Result) String() string {
	switch r.Kind {
	case ResultSafe:
		return "safe"
	case ResultUnsafe:
		return "unsafe"
	default:
		return "unknown"
	}
}

// Config holds every option spec §6 recognizes. Step/Start/End are
// accepted for parity with non-IC3 engines that share this Config type;
// the IC3 core ignores them. Inn, AbsCst/AbsTrans, and NoPredProp are all
// wired to real behavior below; see DESIGN.md for how each maps onto the
// driver.
type Config struct {
	Inn        bool
	CTG        bool
	CTGLimit   int
	CTGMax     int
	AbsCst     bool
	AbsTrans   bool
	CTP        bool
	Dynamic    bool
	FullBad    bool
	NoPredProp bool
	DropPO     bool
	DropPOActivityThreshold float64
	RandomSeed int64
	TimeLimit  time.Duration // 0 means unbounded
	Verbose    int

	// Refiner is the external collaborator AbsCst/AbsTrans mode consults
	// when block() meets an obligation that looks like a genuine
	// counterexample: an engine holding the full, unabstracted model
	// confirms or refutes it. Nil means no such collaborator is
	// available, and a claimed counterexample is trusted outright.
	Refiner BMCRefiner

	// Step, Start, End are accepted for parity with non-IC3 engines that
	// share this Config type; the IC3 core ignores them.
	Step, Start, End int
}

// BMCRefiner is the external collaborator abstract-constraint / abstract-
// transition mode (spec §6's AbsCst/AbsTrans) calls into when block()
// meets a frame-0-subsuming obligation while constraints or transition
// edges are being treated as abstracted away, grounded on
// original_source/src/ic3/localabs.rs's LocalAbs/check_witness_by_bmc:
// an engine holding the full, unabstracted unrolled model is asked to
// confirm or refute the witness before it is reported as a genuine
// counterexample.
type BMCRefiner interface {
	// CheckWitness replays the counterexample ending in cube at the
	// given depth against the unabstracted model. ok reports whether it
	// is a genuine counterexample; when false, refine names previously
	// abstracted variables the caller has decided to stop abstracting,
	// and the driver clears its obligation queue and resumes the search
	// with that refinement recorded.
	CheckWitness(depth int, cube LitVec) (refine []Var, ok bool)
}

// DefaultConfig returns the recommended option set: CTG-based
// generalization and counter-to-propagation on, predecessor lifting on,
// no time limit. NewIC3 uses whatever Config it is given; a zero-value
// Config is not replaced by these defaults.
func DefaultConfig() Config {
	return Config{
		CTG:                     true,
		CTGLimit:                3,
		CTGMax:                  3,
		CTP:                     true,
		Dynamic:                 true,
		DropPOActivityThreshold: 1000.0,
		RandomSeed:              1,
	}
}

// Statistics is a snapshot of IC3's atomic counters (spec §9, mirroring
// the corpus's SolverStats/SolverMonitor design).
type Statistics struct {
	ObligationsProcessed int64
	LemmasAdded          int64
	PropagationCalls     int64
	CTGsExplored         int64
	FramesExtended       int64
	SatTime              time.Duration
	OtherTime            time.Duration
}

type statCounters struct {
	obligationsProcessed int64
	lemmasAdded          int64
	propagationCalls     int64
	ctgsExplored         int64
	framesExtended       int64
	satTimeNanos         int64
	otherTimeNanos       int64
}

func (c *statCounters) snapshot() Statistics {
	return Statistics{
		ObligationsProcessed: atomic.LoadInt64(&c.obligationsProcessed),
		LemmasAdded:          atomic.LoadInt64(&c.lemmasAdded),
		PropagationCalls:     atomic.LoadInt64(&c.propagationCalls),
		CTGsExplored:         atomic.LoadInt64(&c.ctgsExplored),
		FramesExtended:       atomic.LoadInt64(&c.framesExtended),
		SatTime:              time.Duration(atomic.LoadInt64(&c.satTimeNanos)),
		OtherTime:            time.Duration(atomic.LoadInt64(&c.otherTimeNanos)),
	}
}

// IC3 is one model-checking instance: private frames, obligation queue,
// activity table and lift solver, safe to run on exactly one goroutine
// (spec §5's single-threaded cooperative core). Cross-instance
// parallelism (a portfolio of IC3 values on copies of the same system,
// different seeds) is a caller concern, not this type's.
type IC3 struct {
	ts      *TransitionSystem
	symbols *VarSymbols
	cfg     Config

	frames      *Frames
	obligations *ProofObligationQueue
	activity    *Activity
	lift        *Lift

	// refinedVars accumulates the variables cfg.Refiner has told us to
	// stop abstracting (spec §6 AbsCst/AbsTrans), for caller introspection
	// via RefinedVars. The abstracted model itself lives in the refiner,
	// not here.
	refinedVars map[Var]bool

	stop  *stopFlag
	early int // propagate watermark: lowest frame touched since last run

	stats     statCounters
	startTime time.Time
}

// NewIC3 validates ts and builds a fresh IC3 instance over it. ts must
// not be mutated externally afterward: BadTrigger() wires new gates into
// ts.Rel that every subsequent solver this instance builds depends on.
func NewIC3(ts *TransitionSystem, symbols *VarSymbols, cfg Config) (*IC3, error) {
	if err := ts.Validate(); err != nil {
		return nil, err
	}
	ts.BadTrigger()

	// Inn (internal-signal mode) forces predprop off, matching
	// original_source/src/ic3/mod.rs's IC3::new: the internal-signal
	// encoding's extra latches make the predprop pre-check unsound.
	if cfg.Inn {
		cfg.NoPredProp = true
	}

	ic3 := &IC3{
		ts:          ts,
		symbols:     symbols,
		cfg:         cfg,
		obligations: NewProofObligationQueue(),
		activity:    NewActivity(),
		stop:        newStopFlag(),
		early:       1,
	}
	ic3.frames = NewFrames(ts, cfg.RandomSeed)
	ic3.frames.SetStopFlag(ic3.stop)
	ic3.lift = NewLift(ts, DropActivityDescending, ic3.activity, cfg.RandomSeed+97)
	return ic3, nil
}

// Stats returns a snapshot of this instance's running statistics.
func (ic3 *IC3) Stats() Statistics { return ic3.stats.snapshot() }

// Stop requests cancellation: SAT calls return false at once while the
// flag is set, and Check returns Unknown at the top of its next block or
// outer-loop iteration (spec §5).
func (ic3 *IC3) Stop() { ic3.stop.Set() }

// RefinedVars returns, in ascending order, the variables cfg.Refiner has
// told this instance to stop abstracting so far (spec §6 AbsCst/AbsTrans).
func (ic3 *IC3) RefinedVars() []Var {
	vars := make([]Var, 0, len(ic3.refinedVars))
	for v := range ic3.refinedVars {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })
	return vars
}

func (ic3 *IC3) absorbRefinement(vars []Var) {
	if ic3.refinedVars == nil {
		ic3.refinedVars = make(map[Var]bool, len(vars))
	}
	for _, v := range vars {
		ic3.refinedVars[v] = true
	}
}

// Check runs the outer IC3 loop (spec §4.6): base, then repeated
// extend/block/propagate until a frame proves the system safe, a real
// counterexample is found, or a resource bound is hit.
func (ic3 *IC3) Check() Result {
	ic3.startTime = time.Now()

	if res, done := ic3.base(); done {
		return res
	}

	for {
		if res, done := ic3.checkResourceBound(); done {
			return res
		}

		level := ic3.extend()

		for {
			cube, ok := ic3.getBad(level)
			if !ok {
				break
			}
			ic3.obligations.Add(cube, level, 0, ObligationNone)
			if res, term := ic3.block(level); term {
				return res
			}
		}

		if res, term := ic3.propagate(); term {
			return res
		}
	}
}

func (ic3 *IC3) checkResourceBound() (Result, bool) {
	if ic3.stop.IsSet() {
		return unknownResult(ic3.frames.NumFrames() - 1), true
	}
	if ic3.cfg.TimeLimit > 0 && time.Since(ic3.startTime) > ic3.cfg.TimeLimit {
		return unknownResult(ic3.frames.NumFrames() - 1), true
	}
	return Result{}, false
}

// base extends to F0 (already built by NewFrames) and checks init ∧ bad
// directly: if satisfiable, the system is unsafe at depth 0 before any
// frame strengthening is attempted (spec §4.6 step 1).
func (ic3 *IC3) base() (Result, bool) {
	trigger := ic3.ts.BadTrigger()
	start := time.Now()
	sat := ic3.frames.FrameSolver(0).Solver().Solve(LitVec{trigger})
	atomic.AddInt64(&ic3.stats.satTimeNanos, int64(time.Since(start)))
	if sat {
		return unsafeResult(0), true
	}
	return Result{}, false
}

func (ic3 *IC3) extend() int {
	idx := ic3.frames.Extend()
	atomic.AddInt64(&ic3.stats.framesExtended, 1)
	return idx
}

// getBad runs F_level ∧ bad; on SAT it lifts the witness into a minimal
// latch cube (unless cfg.FullBad keeps the full assignment) that becomes
// a root proof obligation (spec §4.6's get_bad).
//
// Unless cfg.NoPredProp, it first tries FrameSolver(0) as a cheap pre-
// check: AddLemma always asserts a new lemma's clause down into every
// frame from 0 up to its home (frames.go), so FrameSolver(0) carries
// every lemma ever proven regardless of home — exactly the accumulated-
// invariant role original_source/src/ic3/predprop.rs's PredProp plays
// with a dedicated solver. A witness found there satisfies FrameSolver(0)'s
// full clause set, a superset of FrameSolver(level)'s, so it remains a
// valid witness at level; an UNSAT result there proves nothing about
// level and falls through to the real check.
func (ic3 *IC3) getBad(level int) (LitVec, bool) {
	trigger := ic3.ts.BadTrigger()

	if !ic3.cfg.NoPredProp && level > 0 {
		if cube, ok := ic3.trySolverForBad(ic3.frames.FrameSolver(0), trigger); ok {
			return cube, true
		}
	}

	return ic3.trySolverForBad(ic3.frames.FrameSolver(level), trigger)
}

func (ic3 *IC3) trySolverForBad(solver *TransysSolver, trigger Lit) (LitVec, bool) {
	start := time.Now()
	sat := solver.Solver().Solve(LitVec{trigger})
	atomic.AddInt64(&ic3.stats.satTimeNanos, int64(time.Since(start)))
	if !sat {
		return nil, false
	}

	full := witnessCube(solver, ic3.ts)
	if ic3.cfg.FullBad {
		return full, true
	}
	return ic3.minimizeForcingCube(solver, full, trigger), true
}

// minimizeForcingCube shrinks full (a complete latch assignment known to
// force trigger true, combinationally, with no transition involved) to a
// minimal sub-cube with the same property, by the same drop-one-and-
// retest loop Lift uses for predecessor minimization (spec §4.6).
func (ic3 *IC3) minimizeForcingCube(solver *TransysSolver, full LitVec, trigger Lit) LitVec {
	cube := full.Clone()
	i := 0
	for i < len(cube) {
		if len(cube) == 1 {
			break
		}
		candidate := make(LitVec, 0, len(cube)-1)
		candidate = append(candidate, cube[:i]...)
		candidate = append(candidate, cube[i+1:]...)
		assumps := append(candidate.Clone(), trigger.Not())
		if !solver.Solver().Solve(assumps) {
			cube = candidate
		} else {
			i++
		}
	}
	return SortedCube(cube)
}

// block drains the obligation queue down to frame level (spec §4.6's
// block contract). Returns (result, true) if the run is over (a genuine
// counterexample was found, or a resource bound tripped); (_, false)
// once the queue has no more obligations at or below level, meaning the
// root obligation Check added before calling block has been fully resolved.
func (ic3 *IC3) block(level int) (Result, bool) {
	for {
		if res, done := ic3.checkResourceBound(); done {
			return res, true
		}

		ref, ok := ic3.obligations.Pop(level)
		if !ok {
			return Result{}, false
		}
		atomic.AddInt64(&ic3.stats.obligationsProcessed, 1)

		cube := ic3.obligations.Cube(ref)
		f := ic3.obligations.Frame(ref)
		depth := ic3.obligations.Depth(ref)
		parent := ic3.obligations.Next(ref)

		if ic3.subsumesInit(cube) {
			switch {
			case ic3.cfg.Inn && f > 0:
				// Under the internal-signal encoding an obligation at a
				// non-zero frame can spuriously look init-subsuming
				// (original_source/src/ic3/mod.rs:144); only a frame-0
				// obligation is a genuine counterexample there.
			case (ic3.cfg.AbsCst || ic3.cfg.AbsTrans) && ic3.cfg.Refiner != nil:
				refine, ok := ic3.cfg.Refiner.CheckWitness(depth, cube)
				if ok {
					return unsafeResult(depth), true
				}
				ic3.absorbRefinement(refine)
				ic3.obligations.Clear()
				continue
			default:
				return unsafeResult(depth), true
			}
		}

		if ic3.frames.IsBlocked(f, cube) {
			ic3.obligations.Remove(ref)
			if f+1 < ic3.frames.NumFrames() {
				ic3.obligations.Add(cube, f+1, depth, parent)
			}
			continue
		}

		testFrame := f - 1
		if testFrame < 0 {
			testFrame = 0
		}
		solver := ic3.frames.FrameSolver(testFrame)

		start := time.Now()
		blocked, err := solver.Inductive(cube, true)
		atomic.AddInt64(&ic3.stats.satTimeNanos, int64(time.Since(start)))
		if err != nil {
			return unknownResult(f), true
		}

		if blocked && ic3.cfg.Inn && ic3.subsumesInit(cube) {
			// A cube that both blocks and subsumes init under inn mode is
			// a boundary lemma (original_source/src/ic3/mod.rs's
			// generalize): push it forward unminimized rather than
			// paying for MIC/CTG on it.
			lemma := ic3.frames.AddLemma(f, cube, ref)
			if lemma != nil {
				atomic.AddInt64(&ic3.stats.lemmasAdded, 1)
			}
			if f < ic3.early {
				ic3.early = f
			}
			ic3.obligations.Remove(ref)
			if f+1 < ic3.frames.NumFrames() {
				ic3.obligations.Add(cube, f+1, depth, parent)
			}
			continue
		}

		if blocked {
			core, err := solver.InductiveCore(cube)
			if err != nil {
				core = cube
			}
			ic3.activity.BumpCube(core)

			mic := core
			if ic3.cfg.CTG {
				mic = MICByDropVar(ic3.frames, ic3.activity, core, testFrame)
			}

			home := ic3.pushLemma(mic, f)
			lemma := ic3.frames.AddLemma(home, mic, ref)
			if lemma != nil {
				atomic.AddInt64(&ic3.stats.lemmasAdded, 1)
			}
			if home < ic3.early {
				ic3.early = home
			}

			ic3.obligations.Remove(ref)
			if home+1 < ic3.frames.NumFrames() {
				ic3.obligations.Add(cube, home+1, depth, parent)
			}
			continue
		}

		pred := witnessCube(solver, ic3.ts)
		predCube, err := ic3.lift.MinimalPremise(ic3.ts, pred, cube)
		if err != nil {
			return unknownResult(f), true
		}
		if ic3.cfg.DropPO && totalActivity(predCube, ic3.activity) > ic3.cfg.DropPOActivityThreshold {
			ic3.obligations.Remove(ref)
			continue
		}
		ic3.obligations.Add(predCube, f-1, depth+1, ref)
	}
}

// pushLemma extends a freshly-proven lemma's home frame as far forward
// as it stays inductive (spec §4.6's push_lemma), starting from the
// frame it was just proven to hold at.
func (ic3 *IC3) pushLemma(mic LitVec, home int) int {
	for home < ic3.frames.NumFrames()-1 {
		blocked, err := ic3.frames.FrameSolver(home).Inductive(mic, false)
		if err != nil || !blocked {
			break
		}
		home++
	}
	return home
}

// subsumesInit reports whether cube, read as a state predicate, is
// satisfied by some initial state: no literal contradicts a latch's fixed
// (non-free) initial value — i.e. the obligation names a state that can
// itself be initial, which is a genuine counterexample (spec
// §4.6's "obligation.state ⊆ init_states").
func (ic3 *IC3) subsumesInit(cube LitVec) bool {
	for _, l := range cube {
		iv, ok := ic3.ts.Init[l.Var()]
		if !ok || iv == InitFree {
			continue
		}
		if (iv == InitOne) != l.Polarity() {
			return false
		}
	}
	return true
}

// propagate walks frames ascending from max(1, early), trying to push
// each frame's own lemmas one step further; a frame left with no lemmas
// of its own is the fixpoint signal that the system is safe (spec
// §4.6's propagate).
func (ic3 *IC3) propagate() (Result, bool) {
	atomic.AddInt64(&ic3.stats.propagationCalls, 1)
	start := ic3.early
	if start < 1 {
		start = 1
	}

	for i := start; i < ic3.frames.NumFrames()-1; i++ {
		lemmas := append([]*Lemma(nil), ic3.frames.Lemmas(i)...)
		sort.Slice(lemmas, func(a, b int) bool { return lemmas[a].Len() < lemmas[b].Len() })

		for _, lemma := range lemmas {
			blocked, err := ic3.frames.FrameSolver(i).Inductive(lemma.Cube(), false)
			if err != nil {
				continue
			}
			if blocked {
				var core LitVec
				if ic3.cfg.Inn && ic3.subsumesInit(lemma.Cube()) {
					// original_source/src/ic3/mod.rs:281: an init-
					// subsuming lemma under inn mode is pushed using its
					// own cube rather than the solver's inductive core.
					core = lemma.Cube()
				} else {
					var err error
					core, err = ic3.frames.FrameSolver(i).InductiveCore(lemma.Cube())
					if err != nil {
						core = lemma.Cube()
					}
				}
				ic3.frames.RemoveHome(i, lemma)
				ic3.frames.AddLemma(i+1, core, lemma.PO)
				atomic.AddInt64(&ic3.stats.lemmasAdded, 1)
			} else if ic3.cfg.CTP {
				ic3.tryCTP(i, lemma)
			}
		}

		if len(ic3.frames.Lemmas(i)) == 0 {
			return safeResult(), true
		}
	}

	ic3.early = ic3.frames.NumFrames() - 1
	if ic3.early < 1 {
		ic3.early = 1
	}
	return Result{}, false
}

// tryCTP attempts counter-to-propagation lemma synthesis: when lemma
// fails to push from frame i, the failing SAT witness names a state from
// which lemma's cube is reachable; if that witness cube is itself
// inductive relative to frame i, it rules out the exact counterexample
// that blocked lemma's own push and becomes a lemma in its own right
// (spec §6's ctp option).
func (ic3 *IC3) tryCTP(i int, lemma *Lemma) {
	atomic.AddInt64(&ic3.stats.ctgsExplored, 1)
	witness := witnessCube(ic3.frames.FrameSolver(i), ic3.ts)
	if len(witness) == 0 {
		return
	}
	blocked, err := ic3.frames.FrameSolver(i).Inductive(witness, true)
	if err != nil || !blocked {
		return
	}
	core, err := ic3.frames.FrameSolver(i).InductiveCore(witness)
	if err != nil {
		core = witness
	}
	if ic3.frames.AddLemma(i, core, ObligationNone) != nil {
		atomic.AddInt64(&ic3.stats.lemmasAdded, 1)
	}
	lemma.CTP = core
}

// Witness walks the obligation chain from leaf along Next links to the
// root and returns the state cube of each obligation, reversed so the
// root's cube comes first and leaf's last. It records no input
// assignments, and depth is not used. Since an obligation's next-link is
// only meaningful while the
// queue entry that produced it is still allocated, Witness must be
// called against the same IC3 instance that returned the Unsafe result,
// before Check is invoked again.
func (ic3 *IC3) Witness(depth int, leaf ObligationRef) [][]Lit {
	var trace [][]Lit
	for ref := leaf; !ref.IsNone(); ref = ic3.obligations.Next(ref) {
		trace = append(trace, ic3.obligations.Cube(ref))
	}
	for i, j := 0, len(trace)-1; i < j; i, j = i+1, j-1 {
		trace[i], trace[j] = trace[j], trace[i]
	}
	return trace
}

// Proof returns a new TransitionSystem on Safe whose Bad literal is the
// disjunction of every lemma ever promoted to F∞ or still standing in
// the last finite frame's own bookkeeping, i.e. the discovered inductive
// invariant expressed as a transition system input like any other (spec
// §6: "proof() returns a new transition system").
func (ic3 *IC3) Proof() *TransitionSystem {
	proof := NewTransitionSystem()
	proof.Inputs = append(proof.Inputs, ic3.ts.Inputs...)
	proof.Latches = append(proof.Latches, ic3.ts.Latches...)
	for v, iv := range ic3.ts.Init {
		proof.Init[v] = iv
	}
	for v, n := range ic3.ts.Next {
		proof.Next[v] = n
	}
	proof.Rel = ic3.ts.Rel

	var invariant []Lit
	for _, lemma := range ic3.frames.Lemmas(FrameInf) {
		invariant = append(invariant, lemma.Clause()...)
	}
	if last := ic3.frames.NumFrames() - 1; last >= 0 {
		for _, lemma := range ic3.frames.Lemmas(last) {
			invariant = append(invariant, lemma.Clause()...)
		}
	}
	proof.Bad = invariant
	return proof
}

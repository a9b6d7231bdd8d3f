package ic3

// FrameInf is the sentinel frame index denoting F∞, the set of lemmas
// proven fully inductive (they hold in every frame, forever, and never
// need re-verification by Propagate). Concrete frames are numbered
// 0, 1, 2, ... with F0 exactly the initial states.
const FrameInf = -1

// Frame holds the lemmas whose *home* is exactly this frame — the
// highest index at which each has been proven to hold — together with a
// TransysSolver whose clause set is cumulative: solver(i) carries every
// lemma whose home is i or higher (plus every F∞ lemma), since a lemma
// valid from frame h onward is also valid at every frame ≤ h. This gives
// solver(0) ⊇ solver(1) ⊇ ... as clause sets, matching a strictly
// monotone state-set sequence F0 ⊆ F1 ⊆ ... ⊆ F∞ (spec §4.4). A frame
// whose own lemma list empties out because every lemma it held has been
// pushed to a strictly higher home is exactly IC3's fixpoint signal.
type Frame struct {
	lemmas []*Lemma
	solver *TransysSolver
}

// Frames is the ordered F0..Fk, F∞ structure IC3 strengthens over time
// (spec §4.4). Per spec's chosen model there is no cross-frame broadcast
// channel: each Frame owns an independent TransysSolver, and AddLemma is
// responsible for asserting a newly accepted lemma into every solver it
// logically belongs to.
type Frames struct {
	ts     *TransitionSystem
	frames []*Frame
	inf    *Frame
	seed   int64
	stop   *stopFlag
}

// NewFrames creates F0 (exactly Init) and F∞ (initially empty), ready for
// Extend to grow the frontier.
func NewFrames(ts *TransitionSystem, seed int64) *Frames {
	f := &Frames{ts: ts, seed: seed}
	f.inf = &Frame{solver: NewTransysSolver(ts, seed)}
	f0 := &Frame{solver: NewTransysSolver(ts, seed+1)}
	for _, latch := range ts.Latches {
		if iv := ts.Init[latch]; iv != InitFree {
			f0.solver.Solver().AddClause(LitVec{NewLit(latch, iv == InitOne)})
		}
	}
	f.frames = append(f.frames, f0)
	return f
}

// SetStopFlag wires the given stop flag into every frame's solver (finite
// and F∞), so a single cancellation point covers every SAT call this
// Frames instance can make, including ones made after a future Extend.
func (f *Frames) SetStopFlag(s *stopFlag) {
	f.stop = s
	f.inf.solver.Solver().SetStopFlag(s)
	for _, fr := range f.frames {
		fr.solver.Solver().SetStopFlag(s)
	}
}

// NumFrames returns the number of finite frames currently allocated
// (F0..F_{NumFrames-1}).
func (f *Frames) NumFrames() int { return len(f.frames) }

// Extend appends a new frontier frame F_{k+1}. Its solver starts with
// every F∞ lemma (those hold everywhere) and, per the cumulative-solver
// invariant, nothing else — no finite-home lemma qualifies yet, since
// none has been proven to reach this new depth.
func (f *Frames) Extend() int {
	idx := len(f.frames)
	nf := &Frame{solver: NewTransysSolver(f.ts, f.seed+int64(idx)+2)}
	for _, lemma := range f.inf.lemmas {
		nf.solver.Solver().AddLemmaClause(lemma.Clause())
	}
	if f.stop != nil {
		nf.solver.Solver().SetStopFlag(f.stop)
	}
	f.frames = append(f.frames, nf)
	return idx
}

// FrameSolver returns the TransysSolver backing frame i (or F∞ if i ==
// FrameInf).
func (f *Frames) FrameSolver(i int) *TransysSolver {
	if i == FrameInf {
		return f.inf.solver
	}
	return f.frames[i].solver
}

// Lemmas returns the lemmas whose home is exactly frame i (or every F∞
// lemma). Callers must not mutate the returned slice.
func (f *Frames) Lemmas(i int) []*Lemma {
	if i == FrameInf {
		return f.inf.lemmas
	}
	return f.frames[i].lemmas
}

// IsBlocked reports whether cube is already excluded by some lemma whose
// home is i or higher (those are exactly the lemmas solver(i) carries): a
// lemma L blocks cube iff L's literals are a subset of cube's (the clause
// ¬L then entails ¬cube). Checked via a bitset built once from cube, a
// cheap syntactic pass IC3 runs before paying for a SAT call (spec §4.4's
// trivial-containment step).
func (f *Frames) IsBlocked(i int, cube LitVec) bool {
	sorted := SortedCube(cube)
	target := newLitBitset(sorted)
	for _, l := range f.inf.lemmas {
		if target.subsumesCube(l.Cube()) {
			return true
		}
	}
	if i == FrameInf {
		return false
	}
	for j := i; j < len(f.frames); j++ {
		for _, l := range f.frames[j].lemmas {
			if target.subsumesCube(l.Cube()) {
				return true
			}
		}
	}
	return false
}

// AddLemma accepts cube as a new lemma with home frame i (or FrameInf for
// an immediately-F∞ lemma), running the six-step protocol (spec §4.4):
//  1. sort the cube,
//  2. trivial-containment check via IsBlocked: skip entirely if an
//     existing lemma at this frame or higher already subsumes it,
//  3. remove any existing lemma AT THIS SAME HOME that the new one
//     subsumes (cross-home subsumption is deliberately not chased: a
//     lemma with a higher home serves frames this one's clause does not
//     reach, so it cannot be dropped just because a lower-home lemma
//     happens to be syntactically weaker),
//  4. append the lemma to that frame's bookkeeping,
//  5. assert the lemma's clause permanently into every solver from frame
//     0 up to and including i (the cumulative-solver invariant),
//  6. for FrameInf, repeat step 5 across every existing finite frame's
//     solver too, since an F∞ lemma belongs in all of them.
func (f *Frames) AddLemma(i int, cube LitVec, po ObligationRef) *Lemma {
	sorted := SortedCube(cube)
	if f.IsBlocked(i, sorted) {
		return nil
	}
	lemma := NewLemma(sorted, po)

	if i == FrameInf {
		f.dropSubsumedAt(f.inf, lemma)
		f.inf.lemmas = append(f.inf.lemmas, lemma)
		f.inf.solver.Solver().AddLemmaClause(lemma.Clause())
		for _, fr := range f.frames {
			fr.solver.Solver().AddLemmaClause(lemma.Clause())
		}
		return lemma
	}

	fr := f.frames[i]
	f.dropSubsumedAt(fr, lemma)
	fr.lemmas = append(fr.lemmas, lemma)
	for j := 0; j <= i; j++ {
		f.frames[j].solver.Solver().AddLemmaClause(lemma.Clause())
	}
	return lemma
}

func (f *Frames) dropSubsumedAt(fr *Frame, lemma *Lemma) {
	kept := fr.lemmas[:0]
	for _, old := range fr.lemmas {
		if lemma.Subsume(old) {
			continue
		}
		kept = append(kept, old)
	}
	fr.lemmas = kept
}

// RemoveHome discards lemma from frame i's own bookkeeping (by identity),
// used when Propagate re-homes a lemma one frame higher: the clause
// stays correctly asserted in every solver it already reached (nothing
// to undo there), only the "which frame owns reporting/iterating this
// lemma" bookkeeping moves.
func (f *Frames) RemoveHome(i int, lemma *Lemma) {
	fr := f.frameAt(i)
	kept := fr.lemmas[:0]
	for _, l := range fr.lemmas {
		if l == lemma {
			continue
		}
		kept = append(kept, l)
	}
	fr.lemmas = kept
}

func (f *Frames) frameAt(i int) *Frame {
	if i == FrameInf {
		return f.inf
	}
	return f.frames[i]
}

// PromoteToInf moves lemma from frame i into F∞ bookkeeping: beyond the
// current frontier it needs no further re-verification by Propagate.
// Its clause is already permanently asserted in every solver it reached;
// Extend asserts every F∞ lemma into any frame added afterward.
func (f *Frames) PromoteToInf(i int, lemma *Lemma) {
	f.RemoveHome(i, lemma)
	f.inf.lemmas = append(f.inf.lemmas, lemma)
}

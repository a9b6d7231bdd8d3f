package ic3

import "github.com/dagcnf/ic3/internal/obheap"

// ObligationRef is a generational arena handle to a ProofObligation,
// following the same idx/gen convention as ClauseRef (spec §3): a handle
// outlives the slot it once pointed to becoming invalid, rather than
// dangling, once the slot is recycled.
type ObligationRef struct {
	idx int32
	gen int32
}

// ObligationNone is the sentinel "no obligation" handle, used by Lemma.PO
// for lemmas that did not originate from a proof obligation.
var ObligationNone = ObligationRef{idx: -1}

// IsNone reports whether r is the sentinel "no obligation" handle.
func (r ObligationRef) IsNone() bool { return r.idx < 0 }

// obligationRecord is the arena-stored payload of a ProofObligation: a
// state cube that must be proven unreachable at Frame within Depth steps
// of the bad state, plus a back-link to the obligation it was spawned to
// discharge (for reconstructing a counterexample trace, spec §3).
type obligationRecord struct {
	cube    LitVec
	frame   int
	depth   int
	next    ObligationRef
	gen     int32
	removed bool
}

// ProofObligationQueue is IC3's work list of "cube c must be blocked at
// frame f" obligations, popped in priority order (−frame, depth, −|s|, −s)
// per spec §3: obligations at the deepest frame are attempted first, ties
// broken toward shallower CTG depth, then toward larger cubes, then by
// literal content for determinism.
type ProofObligationQueue struct {
	slots []obligationRecord
	free  []int32
	heap  *obheap.Heap[ObligationRef]
}

// NewProofObligationQueue creates an empty queue.
func NewProofObligationQueue() *ProofObligationQueue {
	q := &ProofObligationQueue{}
	q.heap = obheap.New(q.less)
	return q
}

func (q *ProofObligationQueue) less(a, b ObligationRef) bool {
	ra, rb := &q.slots[a.idx], &q.slots[b.idx]
	if ra.frame != rb.frame {
		return ra.frame > rb.frame // larger frame sorts first (−frame ascending)
	}
	if ra.depth != rb.depth {
		return ra.depth < rb.depth
	}
	if len(ra.cube) != len(rb.cube) {
		return len(ra.cube) > len(rb.cube) // larger cube sorts first (−|s| ascending)
	}
	for i := range ra.cube {
		if ra.cube[i] != rb.cube[i] {
			return ra.cube[i].Less(rb.cube[i])
		}
	}
	return false
}

// Add allocates and enqueues a new obligation for cube at frame, with the
// given CTG depth and back-link to the obligation (or ObligationNone) that
// spawned it.
func (q *ProofObligationQueue) Add(cube LitVec, frame, depth int, next ObligationRef) ObligationRef {
	rec := obligationRecord{cube: SortedCube(cube), frame: frame, depth: depth, next: next}
	var idx int32
	if n := len(q.free); n > 0 {
		idx = q.free[n-1]
		q.free = q.free[:n-1]
		rec.gen = q.slots[idx].gen + 1
		q.slots[idx] = rec
	} else {
		idx = int32(len(q.slots))
		q.slots = append(q.slots, rec)
	}
	ref := ObligationRef{idx: idx, gen: rec.gen}
	q.heap.Push(ref)
	return ref
}

func (q *ProofObligationQueue) lookup(ref ObligationRef) *obligationRecord {
	if ref.IsNone() || int(ref.idx) >= len(q.slots) {
		return nil
	}
	rec := &q.slots[ref.idx]
	if rec.gen != ref.gen || rec.removed {
		return nil
	}
	return rec
}

// Cube returns ref's cube, or nil if ref is stale.
func (q *ProofObligationQueue) Cube(ref ObligationRef) LitVec {
	if rec := q.lookup(ref); rec != nil {
		return rec.cube
	}
	return nil
}

// Frame returns ref's frame index, or -1 if ref is stale.
func (q *ProofObligationQueue) Frame(ref ObligationRef) int {
	if rec := q.lookup(ref); rec != nil {
		return rec.frame
	}
	return -1
}

// Depth returns ref's CTG depth, or -1 if ref is stale.
func (q *ProofObligationQueue) Depth(ref ObligationRef) int {
	if rec := q.lookup(ref); rec != nil {
		return rec.depth
	}
	return -1
}

// Next returns the obligation ref was spawned to discharge, or
// ObligationNone if ref is a root obligation (derived directly from a bad
// state) or stale.
func (q *ProofObligationQueue) Next(ref ObligationRef) ObligationRef {
	if rec := q.lookup(ref); rec != nil {
		return rec.next
	}
	return ObligationNone
}

// Pop removes and returns the highest-priority obligation whose frame is
// at most maxFrame. Obligations with a higher frame are left in the
// queue, re-inserted after the scan.
func (q *ProofObligationQueue) Pop(maxFrame int) (ObligationRef, bool) {
	var skipped []ObligationRef
	for {
		ref, ok := q.heap.Pop()
		if !ok {
			for _, s := range skipped {
				q.heap.Push(s)
			}
			return ObligationNone, false
		}
		rec := q.lookup(ref)
		if rec == nil {
			continue
		}
		if rec.frame > maxFrame {
			skipped = append(skipped, ref)
			continue
		}
		for _, s := range skipped {
			q.heap.Push(s)
		}
		return ref, true
	}
}

// Remove discards ref from the queue (used when a cube turns out to
// already be blocked by a stronger lemma added concurrently). Reports
// whether ref was present.
func (q *ProofObligationQueue) Remove(ref ObligationRef) bool {
	if q.lookup(ref) == nil {
		return false
	}
	q.slots[ref.idx].removed = true
	return q.heap.Remove(ref)
}

// Clear discards every obligation.
func (q *ProofObligationQueue) Clear() {
	q.heap.Clear()
	for i := range q.slots {
		q.slots[i].removed = true
	}
}

// ClearTo discards every obligation whose frame is below minFrame, used
// when IC3 advances its frontier and obligations targeting superseded
// frames are no longer meaningful.
func (q *ProofObligationQueue) ClearTo(minFrame int) {
	var stale []ObligationRef
	q.heap.Each(func(ref ObligationRef) {
		if rec := q.lookup(ref); rec != nil && rec.frame < minFrame {
			stale = append(stale, ref)
		}
	})
	for _, ref := range stale {
		q.Remove(ref)
	}
}

// Len returns the number of obligations currently queued.
func (q *ProofObligationQueue) Len() int { return q.heap.Len() }

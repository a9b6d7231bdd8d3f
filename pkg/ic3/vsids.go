package ic3

import "container/heap"

// vsidsBuckets is the number of bounded discrete activity buckets used in
// bucket-mode, trading score precision for O(1) amortized re-bucketing
// instead of a full heap sift.
const vsidsBuckets = 1 << 12

// vsids is the variable-activity priority structure (spec §2.4): a
// bucket-mode bounded discrete priority scheme and a heap-mode exact
// priority queue, switchable on restart (spec §4.2 Restarts).
type vsids struct {
	activity []float64
	incr     float64
	decay    float64

	heapMode bool

	// bucket-mode state: each variable sits in one of vsidsBuckets buckets
	// keyed by a quantized activity; buckets are scanned from the top.
	bucketOf []int
	buckets  [][]Var
	topBucket int

	// heap-mode state: a max-heap over variables by activity.
	h *varHeap
}

func newVSIDS() *vsids {
	v := &vsids{
		incr:  1.0,
		decay: 0.95,
	}
	v.buckets = make([][]Var, vsidsBuckets)
	v.h = &varHeap{}
	heap.Init(v.h)
	return v
}

func (v *vsids) grow() {
	v.activity = append(v.activity, 0)
	v.bucketOf = append(v.bucketOf, -1)
	nv := Var(len(v.activity) - 1)
	v.pushAvailable(nv)
}

// pushAvailable makes variable nv available for decision, inserting it
// into whichever structure is currently active.
func (v *vsids) pushAvailable(nv Var) {
	if v.heapMode {
		heap.Push(v.h, varScore{nv, v.activity[nv]})
		return
	}
	b := v.bucketFor(v.activity[nv])
	v.bucketOf[nv] = b
	v.buckets[b] = append(v.buckets[b], nv)
	if b > v.topBucket {
		v.topBucket = b
	}
}

func (v *vsids) bucketFor(act float64) int {
	// Quantize by log2-ish scaling so that the common case (small, similar
	// activities) spreads across many buckets while very large activities
	// (post-rescale) saturate the top bucket.
	if act <= 0 {
		return 0
	}
	b := 0
	scaled := act
	for scaled >= 1 && b < vsidsBuckets-1 {
		scaled /= 2
		b++
	}
	return b
}

// Bump increases v's activity by the current increment, called during
// conflict analysis for every variable on the conflict side.
func (v *vsids) Bump(va Var) {
	v.activity[va] += v.incr
	if v.activity[va] > 1e100 {
		for i := range v.activity {
			v.activity[i] *= 1e-100
		}
		v.incr *= 1e-100
	}
	if v.heapMode && v.h.contains(va) {
		v.h.update(va, v.activity[va])
	}
	// In bucket-mode the variable's bucket membership is refreshed lazily
	// the next time it becomes available (onUnassign/pushAvailable), since
	// assigned variables aren't present in any bucket to begin with.
}

// Decay applies the per-conflict multiplicative activity decay by scaling
// the future bump increment (lazy decay, MiniSat-style).
func (v *vsids) Decay() {
	v.incr /= v.decay
}

// onUnassign re-admits a variable to the available pool after backtracking
// unassigns it.
func (v *vsids) onUnassign(va Var) {
	v.pushAvailable(va)
}

// PickBranchVar returns an available variable, or VarUndef if none
// remain. Heap mode returns the highest-activity one; bucket mode takes
// the most recently added variable of the highest non-empty bucket.
// Unavailable variables met on the way are removed from the structure
// until onUnassign or SwitchMode puts them back. available is supplied
// by the caller (DagCnfSolver) to filter by current assignment + active
// domain without vsids needing to know either.
func (v *vsids) PickBranchVar(available func(Var) bool) Var {
	if v.heapMode {
		for v.h.Len() > 0 {
			top := v.h.data[0].v
			if available(top) {
				return top
			}
			heap.Pop(v.h)
		}
		return VarUndef
	}
	for v.topBucket >= 0 {
		bucket := v.buckets[v.topBucket]
		for len(bucket) > 0 {
			cand := bucket[len(bucket)-1]
			bucket = bucket[:len(bucket)-1]
			if available(cand) {
				v.buckets[v.topBucket] = bucket
				return cand
			}
		}
		v.buckets[v.topBucket] = bucket
		v.topBucket--
	}
	return VarUndef
}

// SwitchMode toggles between bucket-mode and heap-mode, rebuilding the
// available-variable structure from current activities. Called on restart
// once enough conflicts have accumulated (spec §4.2 Restarts).
func (v *vsids) SwitchMode(assigned func(Var) bool) {
	v.heapMode = !v.heapMode
	if v.heapMode {
		v.h = &varHeap{}
		for va := Var(0); int(va) < len(v.activity); va++ {
			if !assigned(va) {
				v.h.data = append(v.h.data, varScore{va, v.activity[va]})
			}
		}
		heap.Init(v.h)
	} else {
		for i := range v.buckets {
			v.buckets[i] = v.buckets[i][:0]
		}
		v.topBucket = 0
		for va := Var(0); int(va) < len(v.activity); va++ {
			if !assigned(va) {
				b := v.bucketFor(v.activity[va])
				v.bucketOf[va] = b
				v.buckets[b] = append(v.buckets[b], va)
				if b > v.topBucket {
					v.topBucket = b
				}
			}
		}
	}
}

// varScore pairs a variable with its activity for heap-mode ordering.
type varScore struct {
	v   Var
	act float64
}

// varHeap is a container/heap max-heap over varScore by activity.
type varHeap struct {
	data []varScore
	idx  map[Var]int
}

func (h *varHeap) Len() int { return len(h.data) }
func (h *varHeap) Less(i, j int) bool {
	return h.data[i].act > h.data[j].act
}
func (h *varHeap) Swap(i, j int) {
	h.data[i], h.data[j] = h.data[j], h.data[i]
	h.ensureIdx()
	h.idx[h.data[i].v] = i
	h.idx[h.data[j].v] = j
}
func (h *varHeap) Push(x any) {
	h.ensureIdx()
	vs := x.(varScore)
	h.idx[vs.v] = len(h.data)
	h.data = append(h.data, vs)
}
func (h *varHeap) Pop() any {
	n := len(h.data)
	x := h.data[n-1]
	h.data = h.data[:n-1]
	h.ensureIdx()
	delete(h.idx, x.v)
	return x
}

func (h *varHeap) ensureIdx() {
	if h.idx == nil {
		h.idx = make(map[Var]int)
	}
}

func (h *varHeap) contains(v Var) bool {
	h.ensureIdx()
	_, ok := h.idx[v]
	return ok
}

func (h *varHeap) update(v Var, act float64) {
	h.ensureIdx()
	i, ok := h.idx[v]
	if !ok {
		return
	}
	h.data[i].act = act
	heap.Fix(h, i)
}

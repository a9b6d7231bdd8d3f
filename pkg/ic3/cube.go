package ic3

import "sort"

// SortedCube returns a new LitVec with the same literals as c sorted into
// canonical order, suitable for content comparison and subsumption tests.
func SortedCube(c LitVec) LitVec {
	out := c.Clone()
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Lemma is a cube identified up to permutation: two Lemmas are equal iff
// their sorted literal content is equal. Frames store Lemmas rather than
// raw LitVecs so that re-deriving the same blocked cube via a different
// literal order still collapses onto one entry.
type Lemma struct {
	// sorted holds the cube's literals in canonical order.
	sorted LitVec

	// PO is a weak back-reference to the ObligationRef that produced this
	// lemma, or ObligationNone if the lemma did not originate from an
	// obligation (e.g. it was synthesized by CTP). Arena-indexed per the
	// module's generational-handle convention; never an owning pointer.
	PO ObligationRef

	// CTP caches a counter-to-propagation witness cube discovered while
	// trying to propagate this lemma forward, or nil if none has been
	// recorded yet.
	CTP LitVec
}

// NewLemma builds a Lemma from cube c, taking ownership of neither c nor
// its backing array (the cube is copied and sorted).
func NewLemma(c LitVec, po ObligationRef) *Lemma {
	return &Lemma{sorted: SortedCube(c), PO: po}
}

// Cube returns the lemma's cube in canonical sorted order. Callers must
// not mutate the returned slice.
func (l *Lemma) Cube() LitVec { return l.sorted }

// Clause returns the clause that rules the lemma's cube out: the negation
// of every literal in the cube.
func (l *Lemma) Clause() LitVec { return l.sorted.Negate() }

// Len returns the number of literals in the lemma's cube.
func (l *Lemma) Len() int { return len(l.sorted) }

// Equal reports whether l and other have identical sorted content.
func (l *Lemma) Equal(other *Lemma) bool {
	return equalSorted(l.sorted, other.sorted)
}

// Subsume reports whether every literal of l appears in other's cube, i.e.
// l's blocking clause is logically weaker than (or equal to) other's: any
// state excluded by other is also excluded by l. Both operands must be in
// canonical sorted order.
func (l *Lemma) Subsume(other *Lemma) bool {
	return subsumes(l.sorted, other.sorted)
}

func equalSorted(a, b LitVec) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// subsumes reports whether every literal of small appears in big. Both
// must be in canonical sorted order; the merge-style scan is O(|small| +
// |big|).
func subsumes(small, big LitVec) bool {
	if len(small) > len(big) {
		return false
	}
	i, j := 0, 0
	for i < len(small) && j < len(big) {
		if small[i] == big[j] {
			i++
			j++
		} else if big[j].Less(small[i]) {
			j++
		} else {
			// small[i] sorts before big[j]: small[i] cannot appear later.
			return false
		}
	}
	return i == len(small)
}

// litBitset is a precomputed membership structure over a cube's literals,
// used by Frames' trivial-containment scan to make repeated Subsume tests
// against the same candidate O(|l|) instead of O(|l| log |l|) each time.
type litBitset struct {
	words []uint64
	base  Var // smallest variable id present, for compact indexing
	span  int // number of distinct variables spanned
}

func newLitBitset(c LitVec) *litBitset {
	if len(c) == 0 {
		return &litBitset{}
	}
	min, max := c[0].Var(), c[0].Var()
	for _, l := range c {
		if l.Var() < min {
			min = l.Var()
		}
		if l.Var() > max {
			max = l.Var()
		}
	}
	span := int(max-min) + 1
	b := &litBitset{
		words: make([]uint64, (2*span+63)/64+1),
		base:  min,
		span:  span,
	}
	for _, l := range c {
		b.set(l)
	}
	return b
}

func (b *litBitset) bitIndex(l Lit) int {
	off := int(l.Var()-b.base) * 2
	if !l.Polarity() {
		off++
	}
	return off
}

func (b *litBitset) set(l Lit) {
	idx := b.bitIndex(l)
	b.words[idx/64] |= 1 << uint(idx%64)
}

// has reports whether literal l is a member, used to test "is every
// literal of a stored lemma present in this candidate" in O(|lemma|).
func (b *litBitset) has(l Lit) bool {
	if l.Var() < b.base || int(l.Var()-b.base) >= b.span {
		return false
	}
	idx := b.bitIndex(l)
	return b.words[idx/64]&(1<<uint(idx%64)) != 0
}

// subsumesCube reports whether every literal of cube is present in the
// bitset, i.e. cube subsumes the cube the bitset was built from.
func (b *litBitset) subsumesCube(cube LitVec) bool {
	for _, l := range cube {
		if !b.has(l) {
			return false
		}
	}
	return true
}

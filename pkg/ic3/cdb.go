package ic3

// ClauseKind distinguishes the three storage buckets spec §2.1 names, plus
// Temporary clauses injected for the lifetime of a single
// solve_with_constraint call.
type ClauseKind int8

const (
	// KindTrans holds the permanent CNF of the transition relation (rel).
	KindTrans ClauseKind = iota
	// KindLearnt holds conflict clauses, subject to activity-based eviction.
	KindLearnt
	// KindLemma holds invariant-candidate clauses (negated blocked cubes).
	// Never evicted except by subsumption.
	KindLemma
	// KindTemporary holds clauses scoped to a single solve_with_constraint
	// call, gated by a fresh activation literal.
	KindTemporary
)

// ClauseRef is a generational handle into the clause arena: Idx indexes
// ClauseDB.slots, Gen must match the slot's current generation for the
// reference to be considered live. A stale ClauseRef (its slot recycled by
// GC) silently resolves to "no clause" rather than aliasing unrelated data.
type ClauseRef struct {
	idx int32
	gen int32
}

// NoClauseRef is the sentinel "no clause" handle (spec §9 Design Notes).
var NoClauseRef = ClauseRef{idx: -1}

// IsNone reports whether r is the sentinel "no clause" handle.
func (r ClauseRef) IsNone() bool { return r.idx < 0 }

// clauseRecord is the arena payload for one clause.
type clauseRecord struct {
	lits     LitVec
	kind     ClauseKind
	activity float64
	removed  bool
	gen      int32
}

// ClauseDB is the arena-backed clause store: persistent transition
// clauses, evictable learnt conflict clauses, never-evicted lemma clauses,
// and transiently-gated temporary clauses, plus the bookkeeping
// (activity/decay, learnt-count soft budget) spec §4.1 and §5 describe.
type ClauseDB struct {
	slots []clauseRecord
	free  []int32 // recycled slot indices available for reuse

	// nextGen is the last generation handed out; every attached clause gets
	// a fresh one, so a ref never matches a record attached after it, even
	// across Compact.
	nextGen int32

	// decayFactor is the per-conflict multiplicative activity decay.
	decayFactor float64
	incr        float64

	numTrans   int
	numLearnt  int
	numLemma   int
	numTmp     int
	softBudget int // soft cap on numLearnt before reduction is triggered
}

// NewClauseDB creates an empty clause database with standard MiniSat-style
// decay defaults.
func NewClauseDB() *ClauseDB {
	return &ClauseDB{
		decayFactor: 0.999,
		incr:        1.0,
		softBudget:  2000,
	}
}

// Attach stores a new clause of the given kind and returns its reference.
// lits is copied; the caller retains ownership of the slice passed in.
func (db *ClauseDB) Attach(lits LitVec, kind ClauseKind) ClauseRef {
	rec := clauseRecord{lits: lits.Clone(), kind: kind}
	return db.attachRecord(rec)
}

func (db *ClauseDB) attachRecord(rec clauseRecord) ClauseRef {
	var idx int32
	db.nextGen++
	rec.gen = db.nextGen
	if n := len(db.free); n > 0 {
		idx = db.free[n-1]
		db.free = db.free[:n-1]
		db.slots[idx] = rec
	} else {
		idx = int32(len(db.slots))
		db.slots = append(db.slots, rec)
	}
	switch rec.kind {
	case KindTrans:
		db.numTrans++
	case KindLearnt:
		db.numLearnt++
	case KindLemma:
		db.numLemma++
	case KindTemporary:
		db.numTmp++
	}
	return ClauseRef{idx: idx, gen: db.slots[idx].gen}
}

// Detach marks ref as removed and unregisters it from bookkeeping. The
// slot is not reused until the next GC compaction, so outstanding
// ClauseRefs to it simply resolve to "no clause": before compaction via the
// removed mark, afterwards via generation mismatch.
func (db *ClauseDB) Detach(ref ClauseRef) {
	rec := db.lookup(ref)
	if rec == nil || rec.removed {
		return
	}
	rec.removed = true
	switch rec.kind {
	case KindTrans:
		db.numTrans--
	case KindLearnt:
		db.numLearnt--
	case KindLemma:
		db.numLemma--
	case KindTemporary:
		db.numTmp--
	}
}

// lookup resolves ref to its record, or nil if stale/removed/out of range.
func (db *ClauseDB) lookup(ref ClauseRef) *clauseRecord {
	if ref.IsNone() || int(ref.idx) >= len(db.slots) {
		return nil
	}
	rec := &db.slots[ref.idx]
	if rec.gen != ref.gen || rec.removed {
		return nil
	}
	return rec
}

// Lits returns the literals of the clause ref points to, or nil if stale.
func (db *ClauseDB) Lits(ref ClauseRef) LitVec {
	rec := db.lookup(ref)
	if rec == nil {
		return nil
	}
	return rec.lits
}

// Kind returns the clause's storage bucket.
func (db *ClauseDB) Kind(ref ClauseRef) ClauseKind {
	rec := db.lookup(ref)
	if rec == nil {
		return KindTemporary
	}
	return rec.kind
}

// SetLits replaces the literals of ref in place, e.g. after self-subsumption
// minimization or equivalence-class rewriting.
func (db *ClauseDB) SetLits(ref ClauseRef, lits LitVec) {
	rec := db.lookup(ref)
	if rec == nil {
		return
	}
	rec.lits = lits
}

// Bump increments a learnt clause's activity for eviction ordering.
func (db *ClauseDB) Bump(ref ClauseRef) {
	rec := db.lookup(ref)
	if rec == nil || rec.kind != KindLearnt {
		return
	}
	rec.activity += db.incr
	if rec.activity > 1e100 {
		for i := range db.slots {
			db.slots[i].activity *= 1e-100
		}
		db.incr *= 1e-100
	}
}

// Decay applies the per-conflict multiplicative activity decay by scaling
// the future bump increment, matching MiniSat-style lazy decay.
func (db *ClauseDB) Decay() {
	db.incr /= db.decayFactor
}

// NumLearnt returns the number of live learnt clauses.
func (db *ClauseDB) NumLearnt() int { return db.numLearnt }

// NumLemma returns the number of live lemma clauses.
func (db *ClauseDB) NumLemma() int { return db.numLemma }

// OverSoftBudget reports whether the learnt-clause count exceeds the
// current soft eviction budget.
func (db *ClauseDB) OverSoftBudget() bool { return db.numLearnt > db.softBudget }

// GrowBudget multiplicatively increases the soft learnt-clause budget,
// matching spec §5's "grows multiplicatively with each reduction".
func (db *ClauseDB) GrowBudget() {
	db.softBudget = db.softBudget*11/10 + 100
}

// EachLearntByActivity calls f for every live learnt clause ref, ordered
// by ascending activity (lowest activity, i.e. least useful, first) — the
// eviction order spec §5 specifies.
func (db *ClauseDB) EachLearntByActivity(f func(ref ClauseRef, lits LitVec)) {
	type entry struct {
		ref ClauseRef
		act float64
		n   int
	}
	var entries []entry
	for i := range db.slots {
		rec := &db.slots[i]
		if rec.removed || rec.kind != KindLearnt {
			continue
		}
		entries = append(entries, entry{ClauseRef{idx: int32(i), gen: rec.gen}, rec.activity, len(rec.lits)})
	}
	// Lowest activity first; ties broken by longest clause first (spec:
	// "lowest activity, longest, first").
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0; j-- {
			a, b := entries[j], entries[j-1]
			less := a.act < b.act || (a.act == b.act && a.n > b.n)
			if !less {
				break
			}
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
	for _, e := range entries {
		f(e.ref, db.slots[e.ref.idx].lits)
	}
}

// EachOfKind calls f for every live clause ref of the given kind.
func (db *ClauseDB) EachOfKind(kind ClauseKind, f func(ref ClauseRef, lits LitVec)) {
	for i := range db.slots {
		rec := &db.slots[i]
		if rec.removed || rec.kind != kind {
			continue
		}
		f(ClauseRef{idx: int32(i), gen: rec.gen}, rec.lits)
	}
}

// Compact performs garbage collection: physically drops removed slots and
// returns a remap from old live ClauseRef to new ClauseRef, which callers
// must use to rewrite watch lists and any retained ClauseRefs (e.g. the
// Frames' per-lemma back-reference into the per-frame solver's CDB).
func (db *ClauseDB) Compact() map[ClauseRef]ClauseRef {
	remap := make(map[ClauseRef]ClauseRef)
	var live []clauseRecord
	for i := range db.slots {
		rec := db.slots[i]
		if rec.removed {
			continue
		}
		old := ClauseRef{idx: int32(i), gen: rec.gen}
		live = append(live, rec)
		remap[old] = ClauseRef{idx: int32(len(live) - 1), gen: rec.gen}
	}
	db.slots = live
	db.free = nil
	return remap
}

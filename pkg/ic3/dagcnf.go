package ic3

import (
	"math/rand"

	"github.com/dagcnf/ic3/internal/luby"
)

// assignState is the ternary value of a variable during a solve.
type assignState int8

const (
	unassigned assignState = iota
	isTrue
	isFalse
)

// DagCnfSolver is an incremental CDCL SAT solver extended with localized
// active domains and per-call assumption/activation literals, over a
// ClauseDB shared buckets of transition/learnt/lemma/temporary clauses
// (spec §4.2).
type DagCnfSolver struct {
	rel *Rel // for set_domain's support-closure seeding; may be nil

	db *ClauseDB

	numVars Var
	assign  []assignState // indexed by Var
	level   []int32       // decision level each assigned var was set at
	reason  []ClauseRef   // clause that implied this assignment, or NoClauseRef if a decision
	trail   []Lit
	trailLim []int // trail index of the start of each decision level

	watches [][]watcher // indexed by Lit.index()

	vsids *vsids

	domain *activeDomain // nil means unrestricted (all variables decidable)

	uf *equivClasses

	rng  *rand.Rand
	luby *luby.Sequence

	// conflictsSinceRestart / solvesSinceSimplify drive the restart and
	// periodic-simplify schedules (spec §4.2's "every N solves (constant
	// ~100)").
	conflictsSinceRestart  int
	solvesSinceSimplify    int
	lemmaCountAtLastSimpl  int
	nextRestartConflicts   int
	bucketMode             bool
	conflictsSinceModeFlip int

	// stop is consulted before each SAT call (spec §5). Shared across an
	// IC3 instance's family of per-frame solvers when that instance wants
	// a single cancellation point.
	stop *stopFlag

	// lastConflictCore is populated after an UNSAT solve: the set of
	// assumption literals that participated in the final conflict,
	// queried via UnsatHas.
	lastConflictCore map[Lit]bool

	// model is populated after a SAT solve: a snapshot of assign, queried
	// via SatValue so later incremental solves don't invalidate it.
	model []assignState

	seed int64
}

// NewDagCnfSolver creates an empty incremental solver. rel may be nil if
// the solver is not going to be asked to set_domain (e.g. a bare CNF
// solver used only for conflict analysis in tests).
func NewDagCnfSolver(rel *Rel, seed int64) *DagCnfSolver {
	s := &DagCnfSolver{
		rel:     rel,
		db:      NewClauseDB(),
		numVars: VarConst + 1,
		vsids:   newVSIDS(),
		uf:      newEquivClasses(),
		rng:     rand.New(rand.NewSource(seed)),
		luby:    luby.New(100),
		seed:    seed,
	}
	s.nextRestartConflicts = s.luby.Next()
	s.growTo(VarConst)
	s.enqueueRoot(LitConstTrue, NoClauseRef)
	return s
}

func (s *DagCnfSolver) growTo(v Var) {
	for Var(len(s.assign)) <= v {
		s.assign = append(s.assign, unassigned)
		s.level = append(s.level, -1)
		s.reason = append(s.reason, NoClauseRef)
		s.watches = append(s.watches, nil, nil) // positive, negative
		s.vsids.grow()
	}
	if v >= s.numVars {
		s.numVars = v + 1
	}
}

// NewVar allocates and returns a fresh variable, reserving all per-variable
// arrays (spec §4.2's new_var contract).
func (s *DagCnfSolver) NewVar() Var {
	v := s.numVars
	if s.rel != nil && s.rel.nextVar > v {
		// rel variables no clause has mentioned yet are still taken.
		v = s.rel.nextVar
	}
	s.growTo(v)
	return v
}

// AddClause adds a permanent clause (KindTrans) to the database and
// attaches its watches. lits must be non-empty; a unit clause is handled
// by immediate enqueue at decision level 0.
func (s *DagCnfSolver) AddClause(lits LitVec) ClauseRef {
	return s.addClauseKind(lits, KindTrans)
}

// AddLemmaClause adds a never-evicted KindLemma clause.
func (s *DagCnfSolver) AddLemmaClause(lits LitVec) ClauseRef {
	return s.addClauseKind(lits, KindLemma)
}

func (s *DagCnfSolver) addClauseKind(lits LitVec, kind ClauseKind) ClauseRef {
	for _, l := range lits {
		s.growTo(l.Var())
	}
	if len(lits) == 0 {
		return NoClauseRef
	}
	ref := s.db.Attach(lits, kind)
	s.attachWatches(ref, s.db.Lits(ref))
	if len(lits) == 1 {
		s.enqueueRoot(lits[0], ref)
	}
	return ref
}

// enqueueRoot assigns a decision-level-0 unit fact, ignoring domain
// restrictions (root-level facts are always safe to assign).
func (s *DagCnfSolver) enqueueRoot(l Lit, reason ClauseRef) {
	s.backtrackTo(0)
	if s.value(l) == isTrue {
		return
	}
	s.enqueue(l, reason)
}

// value returns the current truth value of literal l.
func (s *DagCnfSolver) value(l Lit) assignState {
	a := s.assign[l.Var()]
	if a == unassigned {
		return unassigned
	}
	positive := a == isTrue
	if l.Polarity() == positive {
		return isTrue
	}
	return isFalse
}

// decisionLevel returns the current decision level (0 at the root).
func (s *DagCnfSolver) decisionLevel() int { return len(s.trailLim) }

// enqueue assigns l true at the current decision level with the given
// reason (NoClauseRef for a decision literal), pushing it onto the trail.
func (s *DagCnfSolver) enqueue(l Lit, reason ClauseRef) {
	v := l.Var()
	if l.Polarity() {
		s.assign[v] = isTrue
	} else {
		s.assign[v] = isFalse
	}
	s.level[v] = int32(s.decisionLevel())
	s.reason[v] = reason
	s.trail = append(s.trail, l)
}

func (s *DagCnfSolver) newDecisionLevel() {
	s.trailLim = append(s.trailLim, len(s.trail))
}

// backtrackTo undoes all assignments made at decision levels above level,
// unassigning variables and notifying VSIDS so they re-enter the ordering.
func (s *DagCnfSolver) backtrackTo(level int) {
	if s.decisionLevel() <= level {
		return
	}
	from := s.trailLim[level]
	for i := len(s.trail) - 1; i >= from; i-- {
		v := s.trail[i].Var()
		s.assign[v] = unassigned
		s.reason[v] = NoClauseRef
		s.vsids.onUnassign(v)
	}
	s.trail = s.trail[:from]
	s.trailLim = s.trailLim[:level]
}

// SetDomain restricts decisions to the support of vars extended by the
// transitive dependency closure through rel (spec §4.2b). Variables
// outside the domain are not decided on; BCP treats them as unusable.
func (s *DagCnfSolver) SetDomain(vars []Var) {
	var closure map[Var]bool
	if s.rel != nil {
		closure = s.rel.SupportClosure(vars)
	} else {
		closure = make(map[Var]bool, len(vars))
		for _, v := range vars {
			closure[v] = true
		}
	}
	s.domain = &activeDomain{members: closure}
}

// UnsetDomain removes the active-domain restriction; every variable is
// decidable again.
func (s *DagCnfSolver) UnsetDomain() { s.domain = nil }

// InDomain reports whether v is currently decidable, i.e. either there is
// no active restriction or v is a member of it.
func (s *DagCnfSolver) InDomain(v Var) bool {
	return s.domain == nil || s.domain.has(v)
}

// FlipToNone attempts to remove var from the model while preserving
// satisfaction of every currently-watched clause: if every clause that
// watches one of var's literals already has another satisfied literal
// (its blocker), var's assignment is redundant and can be dropped. Returns
// true if var's value is unconstrained afterward.
func (s *DagCnfSolver) FlipToNone(v Var) bool {
	if s.assign[v] == unassigned {
		return true
	}
	cur := NewLit(v, s.assign[v] == isTrue)
	for _, lit := range [2]Lit{cur, cur.Not()} {
		for _, w := range s.watches[lit.index()] {
			if s.db.lookup(w.clause) == nil {
				continue
			}
			if s.value(w.blocker) == isTrue && w.blocker.Var() != v {
				continue
			}
			lits := s.db.Lits(w.clause)
			satisfied := false
			for _, l := range lits {
				if l.Var() == v {
					continue
				}
				if s.value(l) == isTrue {
					satisfied = true
					break
				}
			}
			if !satisfied {
				return false
			}
		}
	}
	s.assign[v] = unassigned
	s.vsids.onUnassign(v)
	return true
}

// stopFlag is the sole cancellation mechanism (spec §5): an atomic boolean
// consulted before each SAT call; the solver only reads it, and it is set
// from outside (IC3.Stop).
type stopFlag struct{ flag int32 }

// SetStopFlag installs a shared stop flag; pass nil to detach.
func (s *DagCnfSolver) SetStopFlag(f *stopFlag) { s.stop = f }

package ic3

import "math/rand"

// DropOrder selects the order in which Lift attempts to drop literals
// from a candidate predecessor cube while minimizing it (spec §4.3's
// "configurable drop order").
type DropOrder int

const (
	// DropActivityDescending tries the most active literals for removal
	// first; literals tried earlier are the likeliest to be dropped, so the
	// minimized cube tends to keep the less active ones.
	DropActivityDescending DropOrder = iota
	// DropReverse walks the cube back to front.
	DropReverse
	// DropRandom shuffles the cube before each minimization attempt.
	DropRandom
)

// Lift extracts a minimal sub-cube of a predecessor state that still
// forces a target cube's next-state image, by iteratively dropping
// literals and re-testing unsatisfiability (spec §4.3's minimal_premise
// loop). It owns its own TransysSolver so it never disturbs a frame's
// solver state mid-query.
type Lift struct {
	solver *TransysSolver
	order  DropOrder
	rng    *rand.Rand
	act    *Activity // only consulted when order == DropActivityDescending
}

// NewLift creates a Lift over ts using order to sequence drop attempts.
// act may be nil unless order is DropActivityDescending.
func NewLift(ts *TransitionSystem, order DropOrder, act *Activity, seed int64) *Lift {
	return &Lift{
		solver: NewTransysSolver(ts, seed),
		order:  order,
		rng:    rand.New(rand.NewSource(seed)),
		act:    act,
	}
}

// MinimalPremise shrinks predecessor (a full latch/input assignment known
// to satisfy predecessor ∧ T ⇒ next(blocked)) into a minimal sub-cube
// with the same property, by repeatedly dropping one literal and
// re-checking that predecessor′ ∧ T ∧ ¬next(blocked) remains UNSAT. The
// search is domain-scoped to the transitive support of next(blocked)'s
// literals through rel, so BCP never wastes effort on variables the
// target image cannot depend on (spec §4.3).
func (lf *Lift) MinimalPremise(ts *TransitionSystem, predecessor, blocked LitVec) (LitVec, error) {
	nextC, err := ts.NextCube(blocked)
	if err != nil {
		return nil, err
	}
	excludeNext := nextC.Negate()

	support := ts.Rel.SupportClosure(varsOf(nextC))
	solver := lf.solver.Solver()
	var domainVars []Var
	for v := range support {
		domainVars = append(domainVars, v)
	}
	solver.SetDomain(domainVars)
	defer solver.UnsetDomain()

	cube := lf.orderForDrop(predecessor.Clone())
	i := 0
	for i < len(cube) {
		if len(cube) == 1 {
			break
		}
		candidate := make(LitVec, 0, len(cube)-1)
		candidate = append(candidate, cube[:i]...)
		candidate = append(candidate, cube[i+1:]...)
		sat := solver.SolveWithConstraint(candidate, []LitVec{excludeNext})
		if !sat {
			cube = candidate
		} else {
			i++
		}
	}
	return SortedCube(cube), nil
}

func (lf *Lift) orderForDrop(c LitVec) LitVec {
	switch lf.order {
	case DropActivityDescending:
		if lf.act != nil {
			for i := 1; i < len(c); i++ {
				for j := i; j > 0 && lf.act.Of(c[j].Var()) > lf.act.Of(c[j-1].Var()); j-- {
					c[j], c[j-1] = c[j-1], c[j]
				}
			}
		}
	case DropReverse:
		for i, j := 0, len(c)-1; i < j; i, j = i+1, j-1 {
			c[i], c[j] = c[j], c[i]
		}
	case DropRandom:
		lf.rng.Shuffle(len(c), func(i, j int) { c[i], c[j] = c[j], c[i] })
	}
	return c
}

func varsOf(c LitVec) []Var {
	out := make([]Var, len(c))
	for i, l := range c {
		out[i] = l.Var()
	}
	return out
}

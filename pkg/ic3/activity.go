package ic3

// activityDecay is the per-conflict multiplicative decay applied to every
// latch's running activity (spec §3's Activity: "decayed by a
// multiplicative factor each conflict").
const activityDecay = 0.99

// activityBumpIncr is the fixed increment applied to a literal's activity
// each time it is bumped.
const activityBumpIncr = 1.0

// activityRescaleThreshold triggers a global rescale to keep activities
// from growing unbounded, mirroring VSIDS's own overflow handling.
const activityRescaleThreshold = 1e100

// Activity tracks a per-latch floating-point EMA-style score used to order
// the literals inside a cube before MIC attempts to drop them (spec §3,
// §4.7 "sort c ascending by activity").
type Activity struct {
	score map[Var]float64
	incr  float64
}

// NewActivity creates an empty activity table.
func NewActivity() *Activity {
	return &Activity{score: make(map[Var]float64), incr: activityBumpIncr}
}

// Bump increases v's activity by the current increment.
func (a *Activity) Bump(v Var) {
	a.score[v] += a.incr
	if a.score[v] > activityRescaleThreshold {
		for k := range a.score {
			a.score[k] *= 1e-100
		}
		a.incr *= 1e-100
	}
}

// BumpCube bumps the activity of every variable in the cube.
func (a *Activity) BumpCube(c LitVec) {
	for _, l := range c {
		a.Bump(l.Var())
	}
}

// Decay applies the per-conflict multiplicative decay by scaling the
// future bump increment (lazy decay).
func (a *Activity) Decay() {
	a.incr /= activityDecay
}

// Of returns v's current activity score (0 if never bumped).
func (a *Activity) Of(v Var) float64 {
	return a.score[v]
}

// SortByActivityAscending returns a copy of c sorted by ascending
// per-variable activity, the order spec §4.7's mic_by_drop_var driver
// requires ("sort c ascending by activity" so the least-useful literals
// are attempted for removal first).
func (a *Activity) SortByActivityAscending(c LitVec) LitVec {
	out := c.Clone()
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && a.Of(out[j].Var()) < a.Of(out[j-1].Var()); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

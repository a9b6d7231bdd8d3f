// Command ic3check runs the literal end-to-end scenarios from the IC3
// core's test suite against a handful of hand-built transition systems,
// printing each one's verdict. It exists to exercise the public API the
// way an external caller would, not as a general-purpose front end (no
// file format is read; every system is built in Go).
package main

import (
	"fmt"
	"os"

	"github.com/dagcnf/ic3/pkg/ic3"
)

type scenario struct {
	name    string
	build   func() *ic3.TransitionSystem
	want    ic3.ResultKind
}

func main() {
	scenarios := []scenario{
		{"two-latch counter", twoLatchCounter, ic3.ResultUnsafe},
		{"always-zero register", alwaysZeroRegister, ic3.ResultSafe},
		{"toggling bit with constraint", togglingBitWithConstraint, ic3.ResultSafe},
		{"race with bad", raceWithBad, ic3.ResultUnsafe},
	}

	failures := 0
	for _, sc := range scenarios {
		ts := sc.build()
		checker, err := ic3.NewIC3(ts, ic3.NewVarSymbols(), ic3.DefaultConfig())
		if err != nil {
			fmt.Printf("%-32s ERROR building checker: %v\n", sc.name, err)
			failures++
			continue
		}
		result := checker.Check()
		stats := checker.Stats()
		status := "ok"
		if result.Kind != sc.want {
			status = "UNEXPECTED"
			failures++
		}
		fmt.Printf("%-32s %-8s (want %-8s) [%s] obligations=%d lemmas=%d\n",
			sc.name, result, resultName(sc.want), status,
			stats.ObligationsProcessed, stats.LemmasAdded)
	}

	if failures > 0 {
		os.Exit(1)
	}
}

func resultName(k ic3.ResultKind) string {
	switch k {
	case ic3.ResultSafe:
		return "safe"
	case ic3.ResultUnsafe:
		return "unsafe"
	default:
		return "unknown"
	}
}

// twoLatchCounter: latches {a,b}, next(a) = ¬a, next(b) = a⊕b,
// init a=0,b=0, bad = a∧b. Expected Unsafe(3): (0,0)→(1,0)→(0,1)→(1,1).
func twoLatchCounter() *ic3.TransitionSystem {
	ts := ic3.NewTransitionSystem()
	a := ts.Rel.NewVar()
	b := ts.Rel.NewVar()
	al := ic3.NewLit(a, true)
	bl := ic3.NewLit(b, true)
	ts.AddLatch(a, ic3.InitZero, al.Not())
	ts.AddLatch(b, ic3.InitZero, ts.Rel.Xor(al, bl))
	ts.Bad = []ic3.Lit{ts.Rel.And(al, bl)}
	return ts
}

// alwaysZeroRegister: latch {a}, next(a) = 0, init a=0, bad = a.
// Expected Safe; invariant = {¬a}.
func alwaysZeroRegister() *ic3.TransitionSystem {
	ts := ic3.NewTransitionSystem()
	a := ts.Rel.NewVar()
	ts.AddLatch(a, ic3.InitZero, ic3.LitConstFalse)
	ts.Bad = []ic3.Lit{ic3.NewLit(a, true)}
	return ts
}

// togglingBitWithConstraint: latch {a}, next(a) = ¬a, init a=0,
// constraint = ¬a, bad = a. The constraint prunes the only transition
// that would ever reach a=1. Expected Safe; invariant = {¬a}.
func togglingBitWithConstraint() *ic3.TransitionSystem {
	ts := ic3.NewTransitionSystem()
	a := ts.Rel.NewVar()
	al := ic3.NewLit(a, true)
	ts.AddLatch(a, ic3.InitZero, al.Not())
	ts.Constraint = []ic3.Lit{al.Not()}
	ts.Bad = []ic3.Lit{al}
	return ts
}

// raceWithBad: latches {p,q}, input in, next(p) = p∨in, next(q) = q∨p,
// init p=0,q=0, bad = q. Expected Unsafe(2) with inputs [1,*,*].
func raceWithBad() *ic3.TransitionSystem {
	ts := ic3.NewTransitionSystem()
	p := ts.Rel.NewVar()
	q := ts.Rel.NewVar()
	in := ts.Rel.NewVar()
	ts.AddInput(in)
	pl := ic3.NewLit(p, true)
	ql := ic3.NewLit(q, true)
	inl := ic3.NewLit(in, true)
	ts.AddLatch(p, ic3.InitZero, ts.Rel.Or(pl, inl))
	ts.AddLatch(q, ic3.InitZero, ts.Rel.Or(ql, pl))
	ts.Bad = []ic3.Lit{ql}
	return ts
}

package ic3

import "testing"

// evalGate evaluates every gate in r's topological order under the given
// variable assignment, returning the boolean value of literal l. Inputs and
// latches must already have an entry in assign.
func evalGate(r *Rel, assign map[Var]bool, l Lit) bool {
	for _, g := range r.gates {
		if g.Kind != GateAnd {
			continue
		}
		if _, ok := assign[g.Out]; ok {
			continue
		}
		assign[g.Out] = evalLit(assign, g.LHS) && evalLit(assign, g.RHS)
	}
	return evalLit(assign, l)
}

func evalLit(assign map[Var]bool, l Lit) bool {
	if l.IsConst() {
		return l.Polarity()
	}
	v := assign[l.Var()]
	if !l.Polarity() {
		return !v
	}
	return v
}

func TestRelOrTruthTable(t *testing.T) {
	r := NewRel()
	a, b := r.NewVar(), r.NewVar()
	al, bl := NewLit(a, true), NewLit(b, true)
	out := r.Or(al, bl)

	for _, av := range []bool{false, true} {
		for _, bv := range []bool{false, true} {
			assign := map[Var]bool{a: av, b: bv}
			got := evalGate(r, assign, out)
			want := av || bv
			if got != want {
				t.Fatalf("Or(%v,%v) = %v, want %v", av, bv, got, want)
			}
		}
	}
}

func TestRelXorTruthTable(t *testing.T) {
	r := NewRel()
	a, b := r.NewVar(), r.NewVar()
	al, bl := NewLit(a, true), NewLit(b, true)
	out := r.Xor(al, bl)

	for _, av := range []bool{false, true} {
		for _, bv := range []bool{false, true} {
			assign := map[Var]bool{a: av, b: bv}
			got := evalGate(r, assign, out)
			want := av != bv
			if got != want {
				t.Fatalf("Xor(%v,%v) = %v, want %v", av, bv, got, want)
			}
		}
	}
}

func TestRelIteTruthTable(t *testing.T) {
	r := NewRel()
	c, th, el := r.NewVar(), r.NewVar(), r.NewVar()
	out := r.Ite(NewLit(c, true), NewLit(th, true), NewLit(el, true))

	for _, cv := range []bool{false, true} {
		for _, tv := range []bool{false, true} {
			for _, ev := range []bool{false, true} {
				assign := map[Var]bool{c: cv, th: tv, el: ev}
				got := evalGate(r, assign, out)
				want := cv && tv || !cv && ev
				if got != want {
					t.Fatalf("Ite(%v,%v,%v) = %v, want %v", cv, tv, ev, got, want)
				}
			}
		}
	}
}

func TestRelAndAllocatesFreshVar(t *testing.T) {
	r := NewRel()
	a, b := r.NewVar(), r.NewVar()
	out1 := r.And(NewLit(a, true), NewLit(b, true))
	out2 := r.And(NewLit(a, true), NewLit(b, true))
	if out1.Var() == out2.Var() {
		t.Fatalf("two separate And calls must allocate distinct gate variables")
	}
}

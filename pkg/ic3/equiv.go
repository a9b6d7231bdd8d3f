package ic3

// equivClasses is a union-find over literals tracking discovered
// equivalences x <-> y (spec §4.2c). RewriteClause maps a clause onto
// canonical representatives. DagCnfSolver holds one (its uf field) but
// records no equivalences in it and rewrites none of its clauses.
type equivClasses struct {
	parent map[Var]Var
	sign   map[Var]bool // true: canonical and this var agree in polarity
}

func newEquivClasses() *equivClasses {
	return &equivClasses{parent: make(map[Var]Var), sign: make(map[Var]bool)}
}

// Merge records that literal a is equivalent to literal b.
func (e *equivClasses) Merge(a, b Lit) {
	ra, sa := e.find(a.Var())
	rb, sb := e.find(b.Var())
	// sa reports whether a.Var() agrees in sign with ra; combine so that
	// the merged relation states whether ra and rb agree, given a and b's
	// requested polarities agree (a.Polarity() == b.Polarity()).
	agree := sa == sb
	if a.Polarity() != b.Polarity() {
		agree = !agree
	}
	if ra == rb {
		return
	}
	e.parent[ra] = rb
	e.sign[ra] = agree
}

// find returns the canonical representative of v and whether v agrees in
// polarity with that representative (path-compressing).
func (e *equivClasses) find(v Var) (Var, bool) {
	p, ok := e.parent[v]
	if !ok {
		return v, true
	}
	root, agree := e.find(p)
	combined := agree == e.sign[v]
	if root != p {
		// path compression
		e.parent[v] = root
		e.sign[v] = combined
	}
	return root, combined
}

// Canonical rewrites literal l to its canonical representative's literal.
func (e *equivClasses) Canonical(l Lit) Lit {
	root, agree := e.find(l.Var())
	if root == l.Var() {
		return l
	}
	return NewLit(root, l.Polarity() == agree)
}

// RewriteClause rewrites every literal of lits to its canonical form,
// deduplicating and detecting a tautology (l and ¬l both present). Returns
// the rewritten clause and whether it is a tautology (trivially true,
// safe to drop).
func (e *equivClasses) RewriteClause(lits LitVec) (LitVec, bool) {
	seen := make(map[Lit]bool, len(lits))
	out := make(LitVec, 0, len(lits))
	for _, l := range lits {
		c := e.Canonical(l)
		if seen[c.Not()] {
			return nil, true
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, false
}

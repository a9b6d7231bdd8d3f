package ic3

// watcher is one entry of a literal's watch list: a clause that currently
// watches this literal, plus a cached blocker literal believed true under
// the current assignment, used to short-circuit the scan (spec §4.1).
type watcher struct {
	clause  ClauseRef
	blocker Lit
}

// attachWatches registers the first two literals of lits as the initial
// watched literals of ref. Unit clauses need no watches: they are
// enqueued directly and never re-examined by BCP.
func (s *DagCnfSolver) attachWatches(ref ClauseRef, lits LitVec) {
	if len(lits) < 2 {
		return
	}
	s.addWatch(lits[0], ref, lits[1])
	s.addWatch(lits[1], ref, lits[0])
}

func (s *DagCnfSolver) addWatch(on Lit, ref ClauseRef, blocker Lit) {
	s.watches[on.index()] = append(s.watches[on.index()], watcher{clause: ref, blocker: blocker})
}

// propagate processes the whole trail from its start on every call (its
// local qhead begins at 0), examining
// watchers of each newly-falsified literal, and returns the conflicting
// clause, or NoClauseRef once a fixpoint is reached (spec §4.1's BCP
// contract). In localized mode a literal outside the active domain is
// "unassigned but unusable": BCP may use it as a new watch but must not
// assign it, so a would-be unit propagation into a non-domain variable is
// simply not performed and the clause is left pending.
func (s *DagCnfSolver) propagate() ClauseRef {
	qhead := 0
	for qhead < len(s.trail) {
		p := s.trail[qhead]
		qhead++
		falseLit := p.Not()
		ws := s.watches[falseLit.index()]
		keep := ws[:0]
		conflict := NoClauseRef
	scan:
		for i := 0; i < len(ws); i++ {
			w := ws[i]
			rec := s.db.lookup(w.clause)
			if rec == nil {
				continue // stale/removed clause, drop from list
			}
			// Short-circuit: blocker already true satisfies the clause.
			if s.value(w.blocker) == isTrue {
				keep = append(keep, w)
				continue
			}
			lits := rec.lits
			// Normalize so lits[0] is the falsified watched literal;
			// lits[1] (the "other" literal) stays put across a
			// replacement below, only lits[0]'s slot gets replaced.
			if lits[0] != falseLit {
				lits[0], lits[1] = lits[1], lits[0]
			}
			other := lits[1]
			if s.value(other) == isTrue {
				keep = append(keep, watcher{clause: w.clause, blocker: other})
				continue
			}
			// Search positions 2..n for a replacement watch.
			for k := 2; k < len(lits); k++ {
				l := lits[k]
				if s.value(l) == isFalse {
					continue
				}
				// l is true, or unassigned (even if outside the active
				// domain it remains usable as a watch, just not
				// assignable — spec §4.1's domain interaction).
				lits[0], lits[k] = lits[k], lits[0]
				s.addWatch(lits[0], w.clause, other)
				continue scan
			}
			// No replacement found: other is implied or a conflict.
			keep = append(keep, watcher{clause: w.clause, blocker: other})
			if s.value(other) == isFalse {
				conflict = w.clause
				// Copy remaining watchers verbatim and stop scanning.
				keep = append(keep, ws[i+1:]...)
				break scan
			}
			if !s.InDomain(other.Var()) {
				// BCP may not assign outside the active domain; the
				// clause stays pending on this watch pair.
				continue
			}
			// The implied literal goes first: conflict analysis reads a
			// reason clause's lits[0] as the literal it implied.
			lits[0], lits[1] = other, lits[0]
			s.enqueue(other, w.clause)
		}
		s.watches[falseLit.index()] = keep
		if !conflict.IsNone() {
			return conflict
		}
	}
	return NoClauseRef
}

// Package luby generates the Luby restart sequence used by DagCnfSolver to
// schedule CDCL restarts: 1,1,2,1,1,2,4,1,1,2,1,1,2,4,8,... scaled by a
// base unit.
package luby

// Sequence produces successive Luby numbers scaled by Base, starting from
// call 1. It holds no global state; each IC3/DagCnfSolver instance owns
// its own Sequence.
type Sequence struct {
	// Base is the unit restart interval; the generator emits Base * luby(k).
	Base int

	k int
}

// New creates a Luby sequence with the given base unit (conflicts between
// restarts at the shortest interval).
func New(base int) *Sequence {
	if base < 1 {
		base = 1
	}
	return &Sequence{Base: base}
}

// Next advances the sequence and returns the next restart interval, in
// number of conflicts.
func (s *Sequence) Next() int {
	s.k++
	return s.Base * luby(s.k)
}

// Reset restarts the sequence from its first term.
func (s *Sequence) Reset() { s.k = 0 }

// luby returns the i-th term (1-indexed) of the standard Luby sequence:
// 1,1,2,1,1,2,4,1,1,2,1,1,2,4,8,...
func luby(i int) int {
	for k := 1; ; k++ {
		if i == (1<<uint(k))-1 {
			return 1 << uint(k-1)
		}
		if (1<<uint(k-1)) <= i && i < (1<<uint(k))-1 {
			return luby(i - (1 << uint(k-1)) + 1)
		}
	}
}

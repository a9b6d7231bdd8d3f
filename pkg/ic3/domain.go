package ic3

import "sync/atomic"

// activeDomain is the dynamically adjustable subset of variables a solve
// may decide on (spec §2.3, §4.2b). Non-domain variables are effectively
// frozen outside solves: BCP may still use their literals as a watch or a
// blocker, but will not assign them.
type activeDomain struct {
	members map[Var]bool
}

func (d *activeDomain) has(v Var) bool {
	if d == nil {
		return true
	}
	return d.members[v]
}

// Set sets the stop flag. While it is set, a SAT call stops searching
// and returns false, the same value as UNSAT, with no conflict core.
func (f *stopFlag) Set() {
	if f == nil {
		return
	}
	atomic.StoreInt32(&f.flag, 1)
}

// Clear resets the stop flag.
func (f *stopFlag) Clear() {
	if f == nil {
		return
	}
	atomic.StoreInt32(&f.flag, 0)
}

// IsSet reports whether the stop flag has been raised.
func (f *stopFlag) IsSet() bool {
	if f == nil {
		return false
	}
	return atomic.LoadInt32(&f.flag) != 0
}

// newStopFlag creates a fresh, cleared stop flag.
func newStopFlag() *stopFlag { return &stopFlag{} }

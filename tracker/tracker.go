// Package tracker implements the "pending vs committed" pattern used
// throughout this module (spec.md §9 design notes, §4.6 channel state): an
// operation stages a delta, and only commits it once the wire round-trip
// that depends on it has actually succeeded. A failed operation rolls back
// by default.
package tracker

// Tracker holds a committed value of type T plus an optional staged delta
// of type D, not yet applied. Apply decides how a delta changes the
// committed value; it must be a pure function of (committed, delta).
type Tracker[T any, D any] struct {
	committed T
	pending   *D
	apply     func(T, D) T
}

// New creates a Tracker with the given initial committed value and apply
// function.
func New[T any, D any](initial T, apply func(T, D) T) *Tracker[T, D] {
	return &Tracker[T, D]{committed: initial, apply: apply}
}

// Committed returns the last committed value.
func (t *Tracker[T, D]) Committed() T {
	return t.committed
}

// Pending returns the staged delta, if any, and whether one is staged.
func (t *Tracker[T, D]) Pending() (D, bool) {
	if t.pending == nil {
		var zero D
		return zero, false
	}
	return *t.pending, true
}

// Stage records a delta to be applied on the next Commit. Staging a second
// delta before committing or rolling back the first overwrites it — callers
// that need to accumulate multiple deltas in one pending operation should
// compose them before calling Stage.
func (t *Tracker[T, D]) Stage(delta D) {
	d := delta
	t.pending = &d
}

// Commit applies the staged delta to the committed value and clears it.
// Commit on a Tracker with no staged delta is a no-op.
func (t *Tracker[T, D]) Commit() {
	if t.pending == nil {
		return
	}
	t.committed = t.apply(t.committed, *t.pending)
	t.pending = nil
}

// Rollback discards the staged delta without applying it.
func (t *Tracker[T, D]) Rollback() {
	t.pending = nil
}

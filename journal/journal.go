// Package journal keeps an undo log of state mutations so that a multi-step
// operation either completes or leaves no trace.
package journal

// Journal records one inverse per mutation. It is not safe for concurrent
// use; callers serialize access.
type Journal struct {
	undo  []func()
	depth int
}

func New() *Journal {
	return &Journal{}
}

// Record appends the inverse of a mutation that was just applied.
func (j *Journal) Record(undo func()) {
	j.undo = append(j.undo, undo)
}

// Checkpoint returns a marker that RevertTo can roll back to.
func (j *Journal) Checkpoint() int {
	return len(j.undo)
}

// RevertTo applies the recorded inverses newer than the checkpoint, newest
// first, and forgets them.
func (j *Journal) RevertTo(checkpoint int) {
	for i := len(j.undo) - 1; i >= checkpoint; i-- {
		j.undo[i]()
		j.undo[i] = nil
	}
	j.undo = j.undo[:checkpoint]
}

// Atomic runs fn and rolls back every mutation it recorded if it fails.
// Calls nest; the log is cleared once the outermost call succeeds.
func (j *Journal) Atomic(fn func() error) error {
	checkpoint := j.Checkpoint()
	j.depth++
	err := fn()
	j.depth--
	if err != nil {
		j.RevertTo(checkpoint)
		return err
	}
	if j.depth == 0 {
		j.undo = j.undo[:0]
	}
	return nil
}

// Len returns the number of recorded inverses.
func (j *Journal) Len() int {
	return len(j.undo)
}

// Assign sets *dst to value and records the previous value.
func Assign[T any](j *Journal, dst *T, value T) {
	previous := *dst
	j.Record(func() { *dst = previous })
	*dst = value
}

// Package history implements snapshot based undo and redo with debounced
// batching: a burst of edits closer together than the batch window becomes a
// single undo step.
package history

import (
	"time"

	"github.com/ivlev/screencut/internal/schedule"
)

const (
	// MaxDepth bounds both stacks; the oldest entry is evicted first.
	MaxDepth = 50

	DefaultBatchWindow = 500 * time.Millisecond
)

// Engine keeps undo and redo stacks of snapshots of type S. Snapshots must be
// immutable values: capture has to deep-copy any slices it hands over.
//
// Engine is not safe for concurrent use. Its batch timer fires through the
// supplied scheduler, which the owner wraps with schedule.Locked so the
// commit runs inside the owner's critical section.
type Engine[S any] struct {
	capture func() S
	restore func(S)

	undo []S
	redo []S

	baseline    S
	hasBaseline bool
	pending     S
	hasPending  bool
	restoring   bool

	batch *schedule.Debouncer
}

func New[S any](sched schedule.Scheduler, window time.Duration, capture func() S, restore func(S)) *Engine[S] {
	e := &Engine[S]{capture: capture, restore: restore}
	e.batch = schedule.NewDebouncer(sched, window, e.commitPending)
	return e
}

// Reset forgets all history and records the current state as the baseline.
// Call it after a project load.
func (e *Engine[S]) Reset() {
	e.batch.Cancel()
	e.undo = nil
	e.redo = nil
	e.hasPending = false
	e.baseline = e.capture()
	e.hasBaseline = true
}

// Commit records that an undoable edit has just been applied. The pre-edit
// state of the first edit in a batch is kept until the batch window passes
// without further edits, then pushed as one undo step.
func (e *Engine[S]) Commit() {
	if e.restoring {
		return
	}
	if !e.hasBaseline {
		e.baseline = e.capture()
		e.hasBaseline = true
		return
	}
	if !e.hasPending {
		e.pending = e.baseline
		e.hasPending = true
	}
	e.batch.Trigger()
}

// Flush commits a pending batch right away.
func (e *Engine[S]) Flush() {
	e.batch.Flush()
}

func (e *Engine[S]) commitPending() {
	if !e.hasPending {
		return
	}
	e.undo = push(e.undo, e.pending)
	e.redo = nil
	e.hasPending = false
	var zero S
	e.pending = zero
	e.baseline = e.capture()
}

// Undo restores the state before the most recent batch. It reports false
// when there is nothing to undo.
func (e *Engine[S]) Undo() bool {
	e.Flush()
	if len(e.undo) == 0 {
		return false
	}
	var snap S
	e.undo, snap = pop(e.undo)
	e.redo = push(e.redo, e.capture())
	e.apply(snap)
	return true
}

// Redo re-applies the most recently undone batch.
func (e *Engine[S]) Redo() bool {
	e.Flush()
	if len(e.redo) == 0 {
		return false
	}
	var snap S
	e.redo, snap = pop(e.redo)
	e.undo = push(e.undo, e.capture())
	e.apply(snap)
	return true
}

func (e *Engine[S]) apply(snap S) {
	e.restoring = true
	defer func() { e.restoring = false }()
	e.restore(snap)
	e.baseline = snap
}

// Restoring reports whether a snapshot is being applied right now.
func (e *Engine[S]) Restoring() bool {
	return e.restoring
}

func (e *Engine[S]) CanUndo() bool {
	return len(e.undo) > 0 || e.hasPending
}

func (e *Engine[S]) CanRedo() bool {
	return len(e.redo) > 0
}

// Depth returns the sizes of the undo and redo stacks.
func (e *Engine[S]) Depth() (undo, redo int) {
	return len(e.undo), len(e.redo)
}

func push[S any](stack []S, s S) []S {
	stack = append(stack, s)
	if len(stack) > MaxDepth {
		stack = append(stack[:0:0], stack[len(stack)-MaxDepth:]...)
	}
	return stack
}

func pop[S any](stack []S) ([]S, S) {
	n := len(stack) - 1
	s := stack[n]
	var zero S
	stack[n] = zero
	return stack[:n], s
}

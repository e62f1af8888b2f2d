// Package status derives the display status of a recorded setup run.
// No filesystem or process calls are made in this package.
package status

import "github.com/NielsdaWheelz/devsetup/internal/store"

// Derived status strings (user-visible contract).
const (
	StatusBroken      = "broken"
	StatusRunning     = "running"
	StatusInterrupted = "interrupted"
	StatusSucceeded   = "succeeded"
	StatusFailed      = "failed"
)

// Snapshot contains local inputs for status derivation, computed by the caller.
type Snapshot struct {
	// LockHeld is true iff a live process holds the project lock.
	// Only meaningful for the most recent run.
	LockHeld bool
}

// Derive computes the display status of a run.
// meta may be nil for broken runs. This function is pure and must not panic.
func Derive(meta *store.RunMeta, in Snapshot) string {
	if meta == nil {
		return StatusBroken
	}

	switch meta.Outcome {
	case store.OutcomeSucceeded:
		return StatusSucceeded
	case store.OutcomeFailed:
		return StatusFailed
	case store.OutcomeRunning:
		// a running record with no lock holder was left by a killed process
		if in.LockHeld && meta.FinishedAt == "" {
			return StatusRunning
		}
		return StatusInterrupted
	default:
		return StatusBroken
	}
}

// DeriveAll computes statuses for runs listed newest first. Only the newest
// run can still be running; older running records are interrupted.
func DeriveAll(runs []store.RunSummary, lockHeld bool) []string {
	out := make([]string, len(runs))
	for i, r := range runs {
		var meta *store.RunMeta
		if !r.Broken {
			meta = r.Meta
		}
		out[i] = Derive(meta, Snapshot{LockHeld: lockHeld && i == 0})
	}
	return out
}

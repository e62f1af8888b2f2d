// Package ids resolves user-supplied run identifiers against a project's runs.
package ids

import (
	"fmt"
	"sort"
	"strings"

	"github.com/NielsdaWheelz/devsetup/internal/core"
)

// RunRef is a run known to the store.
type RunRef struct {
	RunID string

	// Broken indicates meta.json is unreadable or invalid.
	// The resolver does not refuse broken runs; the command layer decides.
	Broken bool
}

// ErrNotFound indicates no run matched the input.
type ErrNotFound struct {
	Input string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("run not found: %q", e.Input)
}

// ErrAmbiguous indicates the input matched several runs.
type ErrAmbiguous struct {
	Input      string
	Candidates []RunRef // RunID ascending
}

func (e *ErrAmbiguous) Error() string {
	ids := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		ids[i] = c.RunID
	}
	return fmt.Sprintf("ambiguous run id %q matches: %s", e.Input, strings.Join(ids, ", "))
}

// ResolveRunRef resolves input to a single run.
//
// Resolution rules:
//  1. Exact match wins.
//  2. Otherwise input is a prefix of the run ID (e.g. "20260110").
//  3. Otherwise input is the short random suffix (e.g. "a3f2", as shown by
//     history).
//
// Zero matches at every stage is *ErrNotFound; several matches at the first
// stage that matches anything is *ErrAmbiguous. Input is trimmed; empty input
// is not found.
func ResolveRunRef(input string, refs []RunRef) (RunRef, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return RunRef{}, &ErrNotFound{Input: ""}
	}

	for _, ref := range refs {
		if ref.RunID == input {
			return ref, nil
		}
	}

	matchers := []func(RunRef) bool{
		func(r RunRef) bool { return strings.HasPrefix(r.RunID, input) },
		func(r RunRef) bool { return core.ShortID(r.RunID) == input },
	}
	for _, match := range matchers {
		var found []RunRef
		for _, ref := range refs {
			if match(ref) {
				found = append(found, ref)
			}
		}
		switch len(found) {
		case 0:
			continue
		case 1:
			return found[0], nil
		default:
			sort.Slice(found, func(i, j int) bool { return found[i].RunID < found[j].RunID })
			return RunRef{}, &ErrAmbiguous{Input: input, Candidates: found}
		}
	}
	return RunRef{}, &ErrNotFound{Input: input}
}

package render

import (
	"encoding/json"
	"io"

	"github.com/NielsdaWheelz/devsetup/internal/store"
)

// HistoryEntry represents a run in history output (both human and JSON).
// This is the public contract for history --json output.
type HistoryEntry struct {
	// RunID is the run identifier from the directory name (canonical).
	RunID string `json:"run_id"`

	// StartedAt is the start timestamp (null for broken runs).
	StartedAt *string `json:"started_at"`

	// FinishedAt is the finish timestamp (null while running or broken).
	FinishedAt *string `json:"finished_at"`

	// Outcome is running, succeeded, failed, or broken.
	Outcome string `json:"outcome"`

	// Status is the derived display status; a running outcome whose process
	// is gone shows as interrupted.
	Status string `json:"status"`

	// ErrorCode is the E_* code of a failed run (null otherwise).
	ErrorCode *string `json:"error_code"`

	// DryRun is true for --dry-run runs.
	DryRun bool `json:"dry_run"`

	// Broken indicates whether meta.json is unreadable/invalid.
	Broken bool `json:"broken"`
}

// OutcomeBroken is shown for runs whose meta.json cannot be read.
const OutcomeBroken = "broken"

// HistoryJSONEnvelope is the stable JSON output format for history --json.
type HistoryJSONEnvelope struct {
	SchemaVersion string         `json:"schema_version"`
	ProjectID     string         `json:"project_id"`
	Data          []HistoryEntry `json:"data"`
}

// WriteHistoryJSON writes the history output as JSON to the given writer.
func WriteHistoryJSON(w io.Writer, projectID string, entries []HistoryEntry) error {
	env := HistoryJSONEnvelope{
		SchemaVersion: "1.0",
		ProjectID:     projectID,
		Data:          entries,
	}
	// Use empty slice if nil for valid JSON array output
	if env.Data == nil {
		env.Data = []HistoryEntry{}
	}
	return writeJSON(w, env)
}

// StatusJSONEnvelope is the stable JSON output format for status --json.
type StatusJSONEnvelope struct {
	SchemaVersion string         `json:"schema_version"`
	Status        *string        `json:"status"` // derived display status
	Data          *store.RunMeta `json:"data"`   // null when no run is recorded
}

// WriteStatusJSON writes the status output as JSON to the given writer.
func WriteStatusJSON(w io.Writer, meta *store.RunMeta, derived string) error {
	env := StatusJSONEnvelope{SchemaVersion: "1.0", Data: meta}
	if meta != nil {
		env.Status = optString(orDefault(derived, meta.Outcome))
	}
	return writeJSON(w, env)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// HistoryEntries converts store summaries into history entries. statuses, if
// non-nil, holds the derived status of each run in the same order.
func HistoryEntries(runs []store.RunSummary, statuses []string) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(runs))
	for i, r := range runs {
		e := HistoryEntry{RunID: r.RunID, Broken: r.Broken}
		if i < len(statuses) {
			e.Status = statuses[i]
		}
		if r.Broken || r.Meta == nil {
			e.Broken = true
			e.Outcome = OutcomeBroken
			if e.Status == "" {
				e.Status = OutcomeBroken
			}
			entries = append(entries, e)
			continue
		}
		m := r.Meta
		e.StartedAt = optString(m.StartedAt)
		e.FinishedAt = optString(m.FinishedAt)
		e.Outcome = m.Outcome
		e.ErrorCode = optString(m.ErrorCode)
		e.DryRun = m.DryRun
		if e.Status == "" {
			e.Status = m.Outcome
		}
		entries = append(entries, e)
	}
	return entries
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

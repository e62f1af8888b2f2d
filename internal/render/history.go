package render

import (
	"fmt"
	"io"
	"time"
)

// HistoryHumanRow holds the fields for a single human-output row.
type HistoryHumanRow struct {
	RunID    string
	Started  string
	Status   string
	Duration string
	Error    string
}

// WriteHistoryHuman writes the history output in human-readable format.
// Fields are separated by whitespace columns for easy scanning.
func WriteHistoryHuman(w io.Writer, rows []HistoryHumanRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "no setup runs recorded")
		return err
	}

	widths := columnWidths(rows)

	header := formatRow(widths, HistoryHumanRow{
		RunID:    "RUN_ID",
		Started:  "STARTED",
		Status:   "STATUS",
		Duration: "DURATION",
		Error:    "ERROR",
	})
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	for _, row := range rows {
		if _, err := fmt.Fprintln(w, formatRow(widths, row)); err != nil {
			return err
		}
	}
	return nil
}

// colWidths holds the calculated column widths.
type colWidths struct {
	runID    int
	started  int
	status   int
	duration int
}

// columnWidths calculates the maximum width for each column.
func columnWidths(rows []HistoryHumanRow) colWidths {
	widths := colWidths{
		runID:    len("RUN_ID"),
		started:  len("STARTED"),
		status:   len("STATUS"),
		duration: len("DURATION"),
	}
	for _, row := range rows {
		widths.runID = max(widths.runID, len(row.RunID))
		widths.started = max(widths.started, len(row.Started))
		widths.status = max(widths.status, len(row.Status))
		widths.duration = max(widths.duration, len(row.Duration))
	}
	return widths
}

// formatRow formats a row with the given column widths. The last column is
// not padded.
func formatRow(w colWidths, row HistoryHumanRow) string {
	return fmt.Sprintf("%-*s  %-*s  %-*s  %-*s  %s",
		w.runID, row.RunID,
		w.started, row.Started,
		w.status, row.Status,
		w.duration, row.Duration,
		row.Error,
	)
}

// FormatHistoryRows converts history entries into display rows.
func FormatHistoryRows(entries []HistoryEntry, now time.Time) []HistoryHumanRow {
	rows := make([]HistoryHumanRow, len(entries))
	for i, e := range entries {
		row := HistoryHumanRow{RunID: e.RunID, Status: e.Status}
		if row.Status == "" {
			row.Status = e.Outcome
		}
		if e.DryRun {
			row.Status += " (dry run)"
		}
		if e.StartedAt != nil {
			if started, err := time.Parse(time.RFC3339, *e.StartedAt); err == nil {
				row.Started = formatRelativeTime(started, now)
				if e.FinishedAt != nil {
					if finished, err := time.Parse(time.RFC3339, *e.FinishedAt); err == nil {
						row.Duration = formatDuration(finished.Sub(started))
					}
				}
			}
		}
		if e.ErrorCode != nil {
			row.Error = *e.ErrorCode
		}
		rows[i] = row
	}
	return rows
}

// formatRelativeTime formats a time as a human-friendly relative string.
func formatRelativeTime(t time.Time, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d mins ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02")
	}
}

// formatDuration renders whole seconds, or milliseconds under one second.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(time.Second).String()
}

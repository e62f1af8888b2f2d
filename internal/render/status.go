package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/NielsdaWheelz/devsetup/internal/store"
)

// WriteStatusHuman writes a run as key: value lines followed by one line per
// step. derived is the display status; empty means the recorded outcome.
func WriteStatusHuman(w io.Writer, meta *store.RunMeta, derived string) error {
	if meta == nil {
		_, err := fmt.Fprintln(w, "no setup runs recorded")
		return err
	}

	outcome := meta.Outcome
	if meta.DryRun {
		outcome += " (dry run)"
	}

	fmt.Fprintln(w, "=== setup ===")
	fmt.Fprintf(w, "run_id: %s\n", meta.RunID)
	fmt.Fprintf(w, "project_root: %s\n", meta.ProjectRoot)
	fmt.Fprintf(w, "config: %s\n", orDefault(meta.ConfigSource, "built-in defaults"))
	fmt.Fprintf(w, "started_at: %s\n", meta.StartedAt)
	fmt.Fprintf(w, "finished_at: %s\n", meta.FinishedAt)
	fmt.Fprintf(w, "outcome: %s\n", outcome)
	fmt.Fprintf(w, "status: %s\n", orDefault(derived, meta.Outcome))
	if meta.ErrorCode != "" {
		fmt.Fprintf(w, "error_code: %s\n", meta.ErrorCode)
		fmt.Fprintf(w, "error: %s\n", meta.Error)
	}
	fmt.Fprintf(w, "env: %s\n", orDefault(meta.Env, "-"))
	if len(meta.EnvMissingKeys) > 0 {
		fmt.Fprintf(w, "env_missing_keys: %s\n", strings.Join(meta.EnvMissingKeys, ", "))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== steps ===")
	for _, s := range meta.Steps {
		line := fmt.Sprintf("%s: %s", s.Name, s.Status)
		var extra []string
		if s.ExitCode != nil {
			extra = append(extra, fmt.Sprintf("exit %d", *s.ExitCode))
		}
		if s.TimedOut {
			extra = append(extra, "timed out")
		}
		if s.DurationMs > 0 {
			extra = append(extra, formatDuration(time.Duration(s.DurationMs)*time.Millisecond))
		}
		if len(extra) > 0 {
			line += " (" + strings.Join(extra, ", ") + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

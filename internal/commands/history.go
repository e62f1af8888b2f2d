package commands

import (
	"context"

	"github.com/NielsdaWheelz/devsetup/internal/errors"
	"github.com/NielsdaWheelz/devsetup/internal/render"
	"github.com/NielsdaWheelz/devsetup/internal/status"
)

// HistoryOpts holds options for the history command.
type HistoryOpts struct {
	JSON  bool
	Limit int // 0 means all
}

// History implements `devsetup history`: recorded runs for the project in
// the current directory, newest first. Broken runs are listed as broken.
func History(ctx context.Context, d Deps, opts HistoryOpts) error {
	if opts.Limit < 0 {
		return errors.New(errors.EUsage, "--limit must not be negative")
	}

	ident := d.identity()
	st, err := d.historyStore()
	if err != nil {
		return err
	}
	runs, err := st.ListRuns(ident.ProjectID)
	if err != nil {
		return errors.Wrap(errors.EStoreCorrupt, "failed to read run history", err)
	}
	if opts.Limit > 0 && len(runs) > opts.Limit {
		runs = runs[:opts.Limit]
	}

	entries := render.HistoryEntries(runs, status.DeriveAll(runs, d.lockHeld(ident.ProjectID)))
	if opts.JSON {
		return render.WriteHistoryJSON(d.Stdout, ident.ProjectID, entries)
	}
	return render.WriteHistoryHuman(d.Stdout, render.FormatHistoryRows(entries, d.now()))
}

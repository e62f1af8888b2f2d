package commands

import (
	"context"
	stderrors "errors"

	"github.com/NielsdaWheelz/devsetup/internal/errors"
	"github.com/NielsdaWheelz/devsetup/internal/ids"
	"github.com/NielsdaWheelz/devsetup/internal/lock"
	"github.com/NielsdaWheelz/devsetup/internal/render"
	"github.com/NielsdaWheelz/devsetup/internal/status"
	"github.com/NielsdaWheelz/devsetup/internal/store"
)

// StatusOpts holds options for the status command.
type StatusOpts struct {
	JSON bool

	// RunID selects a run by exact id, id prefix, or short suffix.
	// Empty means the most recent run.
	RunID string
}

// Status implements `devsetup status [run_id]`: one recorded run for the
// project in the current directory. With no runs, human output fails with
// E_NO_RUNS while --json prints a null data envelope.
func Status(ctx context.Context, d Deps, opts StatusOpts) error {
	ident := d.identity()
	st, err := d.historyStore()
	if err != nil {
		return err
	}

	runs, err := st.ListRuns(ident.ProjectID)
	if err != nil {
		return errors.Wrap(errors.EStoreCorrupt, "failed to read run history", err)
	}
	statuses := status.DeriveAll(runs, d.lockHeld(ident.ProjectID))

	var (
		meta    *store.RunMeta
		derived string
	)
	if opts.RunID != "" {
		idx, err := resolveRun(opts.RunID, runs)
		if err != nil {
			return err
		}
		if runs[idx].Broken {
			return errors.NewWithDetails(errors.ERunBroken,
				"run "+runs[idx].RunID+" has an unreadable meta.json",
				map[string]string{"meta_path": st.RunMetaPath(ident.ProjectID, runs[idx].RunID)})
		}
		meta, derived = runs[idx].Meta, statuses[idx]
	} else {
		for i, r := range runs {
			if !r.Broken && r.Meta != nil {
				meta, derived = r.Meta, statuses[i]
				break
			}
		}
	}

	if opts.JSON {
		return render.WriteStatusJSON(d.Stdout, meta, derived)
	}
	if meta == nil {
		return errors.NewWithDetails(errors.ENoRuns,
			"no setup runs recorded for "+d.Cwd+"; run devsetup first",
			map[string]string{"project_id": ident.ProjectID})
	}
	return render.WriteStatusHuman(d.Stdout, meta, derived)
}

// resolveRun maps a user-supplied run id to an index into runs.
func resolveRun(input string, runs []store.RunSummary) (int, error) {
	refs := make([]ids.RunRef, len(runs))
	for i, r := range runs {
		refs[i] = ids.RunRef{RunID: r.RunID, Broken: r.Broken}
	}

	ref, err := ids.ResolveRunRef(input, refs)
	if err != nil {
		var amb *ids.ErrAmbiguous
		if stderrors.As(err, &amb) {
			return -1, errors.Wrap(errors.ERunIDAmbiguous, err.Error(), err)
		}
		return -1, errors.Wrap(errors.ERunNotFound, err.Error(), err)
	}
	for i, r := range runs {
		if r.RunID == ref.RunID {
			return i, nil
		}
	}
	return -1, errors.New(errors.ERunNotFound, "run not found: "+input)
}

// lockHeld reports whether a live devsetup holds this project's lock.
func (d Deps) lockHeld(projectID string) bool {
	if d.Dirs.DataDir == "" {
		return false
	}
	return lock.NewProjectLock(d.Dirs.DataDir).Held(projectID)
}

package commands

import (
	"context"
	"path/filepath"

	"github.com/NielsdaWheelz/devsetup/internal/fs"
	"github.com/NielsdaWheelz/devsetup/internal/git"
)

// suggestRoot returns the enclosing git repository root when it differs from
// the invocation directory and contains every required directory. Empty when
// there is nothing useful to suggest.
func suggestRoot(ctx context.Context, d Deps, requireDirs []string) string {
	repo, err := git.GetRepoRoot(ctx, d.Runner, d.Cwd)
	if err != nil {
		d.Logger.Debug().Err(err).Msg("no git root to suggest")
		return ""
	}
	if repo.Path == filepath.Clean(d.Cwd) {
		return ""
	}
	for _, dir := range requireDirs {
		ok, err := fs.IsDir(d.FS, filepath.Join(repo.Path, dir))
		if err != nil || !ok {
			return ""
		}
	}
	return repo.Path
}

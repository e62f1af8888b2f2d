// Package git discovers the enclosing git repository via CommandRunner.
package git

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/NielsdaWheelz/devsetup/internal/exec"
)

// ErrNotRepo is returned when cwd is not inside a git work tree.
var ErrNotRepo = stderrors.New("not inside a git repository")

// RepoRoot holds the absolute path to a git repository root.
type RepoRoot struct {
	Path string // absolute, clean, no trailing newline
}

// GetRepoRoot discovers the git repository root from the given working directory.
// Uses `git rev-parse --show-toplevel` via CommandRunner.
//
// Returns ErrNotRepo if git exits non-zero, and an error if git cannot run or
// prints empty or multi-line output.
func GetRepoRoot(ctx context.Context, cr exec.CommandRunner, cwd string) (RepoRoot, error) {
	if cwd == "" {
		return RepoRoot{}, stderrors.New("working directory is empty")
	}

	result, err := cr.Run(ctx, "git", []string{"rev-parse", "--show-toplevel"}, exec.RunOpts{Dir: cwd})
	if err != nil {
		return RepoRoot{}, fmt.Errorf("failed to run git rev-parse: %w", err)
	}
	if result.ExitCode != 0 {
		return RepoRoot{}, ErrNotRepo
	}

	out := strings.TrimSpace(result.Stdout)
	if out == "" {
		return RepoRoot{}, stderrors.New("git rev-parse returned empty output")
	}
	if strings.Contains(out, "\n") {
		return RepoRoot{}, stderrors.New("git rev-parse returned unexpected multi-line output")
	}

	absPath := out
	if !filepath.IsAbs(absPath) {
		absPath = filepath.Join(cwd, absPath)
	}
	absPath, err = filepath.Abs(absPath)
	if err != nil {
		return RepoRoot{}, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	return RepoRoot{Path: filepath.Clean(absPath)}, nil
}

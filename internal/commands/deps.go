// Package commands implements devsetup CLI commands.
package commands

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/NielsdaWheelz/devsetup/internal/config"
	"github.com/NielsdaWheelz/devsetup/internal/errors"
	"github.com/NielsdaWheelz/devsetup/internal/exec"
	"github.com/NielsdaWheelz/devsetup/internal/fs"
	"github.com/NielsdaWheelz/devsetup/internal/identity"
	"github.com/NielsdaWheelz/devsetup/internal/paths"
	"github.com/NielsdaWheelz/devsetup/internal/store"
)

// Deps carries the process-level collaborators every command needs.
// The CLI layer builds it once per invocation; tests build it by hand.
type Deps struct {
	Runner   exec.CommandRunner
	FS       fs.FS
	LookPath func(string) (string, error)
	Env      config.Env
	Logger   zerolog.Logger
	Now      func() time.Time

	// Cwd is the invocation directory, taken as the project root.
	Cwd string

	// Dirs are the resolved data/state directories.
	Dirs paths.Dirs

	// LogPath is the active log file, shown by doctor (may be empty).
	LogPath string

	// ConfigPath is the --config value (may be empty).
	ConfigPath string

	NoColor bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// store returns nil when no data directory could be resolved.
func (d Deps) store() *store.Store {
	if d.Dirs.DataDir == "" {
		return nil
	}
	return store.NewStore(d.FS, d.Dirs.DataDir, d.Now)
}

// historyStore is store for commands that only read run history.
func (d Deps) historyStore() (*store.Store, error) {
	s := d.store()
	if s == nil {
		return nil, errors.New(errors.EInternal, "cannot locate the devsetup data directory (is HOME set?)")
	}
	return s, nil
}

func (d Deps) identity() identity.ProjectIdentity {
	return identity.DeriveProjectIdentity(d.Cwd)
}

func (d Deps) loadConfig() (config.Config, error) {
	return config.Load(d.FS, d.Cwd, d.ConfigPath, d.Env)
}

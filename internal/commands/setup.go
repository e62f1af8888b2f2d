package commands

import (
	"context"
	"time"

	"github.com/NielsdaWheelz/devsetup/internal/errors"
	"github.com/NielsdaWheelz/devsetup/internal/lock"
	"github.com/NielsdaWheelz/devsetup/internal/pipeline"
	"github.com/NielsdaWheelz/devsetup/internal/render"
	"github.com/NielsdaWheelz/devsetup/internal/setupservice"
)

// SetupOpts holds options for the setup command.
type SetupOpts struct {
	DryRun      bool
	SkipInstall bool
	SkipEnv     bool
	Timeout     time.Duration
}

// Setup implements `devsetup setup` (and bare `devsetup`).
// Checks the invocation directory, installs dependencies per area, bootstraps
// the env file, and prints next steps. The project lock is held from a passed
// preflight until the run is recorded.
func Setup(ctx context.Context, d Deps, opts SetupOpts) error {
	if opts.Timeout < 0 {
		return errors.New(errors.EUsage, "--timeout must not be negative")
	}

	cfg, err := d.loadConfig()
	if err != nil {
		return err
	}

	console := render.NewConsole(d.Stdout, d.Stderr, d.NoColor)
	svc := setupservice.New(setupservice.Deps{
		Runner:   d.Runner,
		FS:       d.FS,
		Console:  console,
		Store:    d.store(),
		Locker:   d.locker(),
		Logger:   d.Logger,
		LookPath: d.LookPath,
		Stdin:    d.Stdin,
		Stdout:   d.Stdout,
		Stderr:   d.Stderr,
	})
	if d.Now != nil {
		svc.SetNowFunc(d.Now)
	}

	p := pipeline.NewPipeline(svc)
	if d.Now != nil {
		p.SetNowFunc(d.Now)
	}

	_, err = p.Run(ctx, pipeline.RunPipelineOpts{
		Root:        d.Cwd,
		Config:      cfg,
		DryRun:      opts.DryRun,
		SkipInstall: opts.SkipInstall,
		SkipEnv:     opts.SkipEnv,
		Timeout:     opts.Timeout,
	})
	if errors.GetCode(err) == errors.ENotProjectRoot {
		if root := suggestRoot(ctx, d, cfg.Preflight.RequireDirs); root != "" {
			console.RootHint(root)
		}
	}
	return err
}

// locker returns nil when no data directory could be resolved.
func (d Deps) locker() setupservice.Locker {
	if d.Dirs.DataDir == "" {
		return nil
	}
	return lock.NewProjectLock(d.Dirs.DataDir)
}

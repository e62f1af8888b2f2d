// Package setupservice provides the concrete implementation of
// pipeline.SetupService. It wires the preflight check, package installs,
// env bootstrap, console output, and run persistence together.
package setupservice

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/NielsdaWheelz/devsetup/internal/config"
	"github.com/NielsdaWheelz/devsetup/internal/core"
	"github.com/NielsdaWheelz/devsetup/internal/envfile"
	"github.com/NielsdaWheelz/devsetup/internal/errors"
	"github.com/NielsdaWheelz/devsetup/internal/exec"
	"github.com/NielsdaWheelz/devsetup/internal/fs"
	"github.com/NielsdaWheelz/devsetup/internal/identity"
	"github.com/NielsdaWheelz/devsetup/internal/lock"
	"github.com/NielsdaWheelz/devsetup/internal/pipeline"
	"github.com/NielsdaWheelz/devsetup/internal/render"
	"github.com/NielsdaWheelz/devsetup/internal/store"
)

// Locker guards a project against concurrent setups.
type Locker interface {
	Lock(projectID, cmd string) (unlock func() error, err error)
}

// Deps are the collaborators of a Service. Store may be nil to disable run
// persistence, Locker may be nil to skip locking, and LookPath may be nil to
// skip the installer PATH check.
type Deps struct {
	Runner   exec.CommandRunner
	FS       fs.FS
	Console  *render.Console
	Store    *store.Store
	Locker   Locker
	Logger   zerolog.Logger
	LookPath func(string) (string, error)

	// Streams the installs inherit.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Service is the production implementation of pipeline.SetupService.
// A Service handles a single run.
type Service struct {
	cr       exec.CommandRunner
	fsys     fs.FS
	console  *render.Console
	store    *store.Store
	locker   Locker
	log      zerolog.Logger
	lookPath func(string) (string, error)

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	nowFunc func() time.Time
	meta    *store.RunMeta
	ident   identity.ProjectIdentity
	unlock  func() error
}

// New creates a new Service from deps.
func New(d Deps) *Service {
	return &Service{
		cr:       d.Runner,
		fsys:     d.FS,
		console:  d.Console,
		store:    d.Store,
		locker:   d.Locker,
		log:      d.Logger,
		lookPath: d.LookPath,
		stdin:    d.Stdin,
		stdout:   d.Stdout,
		stderr:   d.Stderr,
		nowFunc:  time.Now,
	}
}

// SetNowFunc overrides the time source for testing.
func (s *Service) SetNowFunc(fn func() time.Time) {
	s.nowFunc = fn
}

// Begin prints the banner and derives the project identity. Nothing is
// written until preflight passes.
func (s *Service) Begin(ctx context.Context, st *pipeline.PipelineState) error {
	s.console.Banner(st.Config.Project)

	s.ident = identity.DeriveProjectIdentity(st.Root)
	st.ProjectID = s.ident.ProjectID
	s.log = s.log.With().Str("run_id", st.RunID).Str("project_id", st.ProjectID).Logger()

	s.log.Info().
		Str("root", st.Root).
		Str("config", configSource(st.Config)).
		Bool("dry_run", st.DryRun).
		Msg("setup started")
	return nil
}

// Preflight checks that every required directory exists under the root.
func (s *Service) Preflight(ctx context.Context, st *pipeline.PipelineState) error {
	var missing []string
	for _, dir := range st.Config.Preflight.RequireDirs {
		ok, err := fs.IsDir(s.fsys, filepath.Join(st.Root, dir))
		if err != nil {
			return errors.WrapWithDetails(errors.EInternal, "failed to check "+dir, err,
				map[string]string{"dir": dir})
		}
		if !ok {
			missing = append(missing, dir)
		}
	}

	if len(missing) > 0 {
		s.console.PreflightFailed(missing)
		s.log.Error().Strs("missing", missing).Msg("preflight failed")
		return errors.NewWithDetails(errors.ENotProjectRoot,
			"please run devsetup from the project root directory (missing: "+strings.Join(missing, ", ")+")",
			map[string]string{"root": st.Root, "missing": strings.Join(missing, ",")})
	}

	s.log.Debug().Strs("dirs", st.Config.Preflight.RequireDirs).Msg("preflight ok")
	return s.claim(st)
}

// claim takes the project lock and opens the run record. Only a live
// concurrent setup is fatal; any other failure drops the lock or the run
// history for this run and setup continues.
func (s *Service) claim(st *pipeline.PipelineState) error {
	if s.locker != nil {
		unlock, err := s.locker.Lock(st.ProjectID, "setup")
		var locked *lock.ErrLocked
		switch {
		case stderrors.As(err, &locked):
			s.log.Error().Str("lock_path", locked.Path).Msg("project is locked")
			return errors.WrapWithDetails(errors.ELocked,
				"another devsetup is running in this project: "+locked.Error(), err,
				map[string]string{"lock_path": locked.Path})
		case err != nil:
			s.warn(st, "lock_unavailable", "running without the project lock: "+err.Error(), err)
		default:
			s.unlock = unlock
		}
	}

	if s.store == nil {
		return nil
	}
	meta := store.NewRunMeta(st.RunID, st.ProjectID, st.Root, st.StartedAt)
	meta.ConfigSource = st.Config.Source
	meta.DryRun = st.DryRun
	_, err := s.store.EnsureRunDir(st.ProjectID, st.RunID)
	if err == nil {
		err = s.store.WriteMeta(meta)
	}
	if err != nil {
		s.warn(st, "history_unavailable", "this run will not be recorded: "+err.Error(), err)
		s.store = nil
		return nil
	}
	s.meta = meta
	return nil
}

func (s *Service) warn(st *pipeline.PipelineState, code, msg string, err error) {
	s.console.Warn(msg)
	s.log.Warn().Err(err).Str("warning", code).Msg(msg)
	st.Warnings = append(st.Warnings, pipeline.Warning{Code: code, Message: msg})
}

// Install runs one install step with the area directory as the child's
// working directory and the caller's stdio inherited.
func (s *Service) Install(ctx context.Context, st *pipeline.PipelineState, step config.InstallStep, rec *pipeline.StepResult) error {
	display := core.FormatCommand(step.Dir, step.Command)
	rec.Command = display
	details := map[string]string{"area": step.Name, "dir": step.Dir, "command": display}
	log := s.log.With().Str("area", step.Name).Str("command", display).Logger()

	s.console.Installing(step.Name)

	if st.DryRun {
		s.console.WouldRun(display)
		fmt.Fprintln(s.console.Out)
		rec.Status = pipeline.StatusSkipped
		log.Info().Msg("install planned")
		return nil
	}

	name, args := step.Command[0], step.Command[1:]
	if s.lookPath != nil {
		if _, err := s.lookPath(name); err != nil {
			s.console.InstallFailed(step.Name, name+" not found on PATH")
			log.Error().Err(err).Msg("installer not found")
			return errors.WrapWithDetails(errors.EInstallerNotFound,
				name+" not found on PATH; install it and retry", err, details)
		}
	}

	opts := exec.RunOpts{
		Dir:     filepath.Join(st.Root, step.Dir),
		Timeout: st.Timeout,
	}.Inherit(s.stdin, s.stdout, s.stderr)

	log.Info().Str("dir", opts.Dir).Msg("install started")
	res, err := s.cr.Run(ctx, name, args, opts)
	code := res.ExitCode
	rec.ExitCode = &code
	rec.TimedOut = res.TimedOut
	details["exit_code"] = strconv.Itoa(code)

	switch {
	case err != nil && ctx.Err() != nil:
		s.console.InstallFailed(step.Name, "interrupted")
		log.Warn().Msg("install canceled")
		return errors.WrapWithDetails(errors.ECanceled,
			"setup canceled during "+step.Name+" install", err, details)
	case err != nil:
		s.console.InstallFailed(step.Name, err.Error())
		log.Error().Err(err).Msg("install failed to start")
		return errors.WrapWithDetails(errors.EInstallFailed,
			"failed to install "+step.Name+" dependencies: "+err.Error(), err, details)
	case res.TimedOut:
		s.console.InstallFailed(step.Name, "timed out after "+st.Timeout.String())
		log.Error().Dur("timeout", st.Timeout).Msg("install timed out")
		return errors.NewWithDetails(errors.EInstallTimeout,
			step.Name+" install timed out after "+st.Timeout.String(), details)
	case code != 0:
		s.console.InstallFailed(step.Name, "")
		log.Error().Int("exit_code", code).Dur("duration", res.Duration).Msg("install failed")
		return errors.NewWithDetails(errors.EInstallFailed,
			fmt.Sprintf("failed to install %s dependencies (exit code %d)", step.Name, code), details)
	}

	s.console.Installed(step.Name)
	log.Info().Dur("duration", res.Duration).Msg("install finished")
	return nil
}

// BootstrapEnv creates the env target from its template when absent and
// warns about template keys an existing target lacks.
func (s *Service) BootstrapEnv(ctx context.Context, st *pipeline.PipelineState) error {
	env := st.Config.Env
	log := s.log.With().Str("target", env.Target).Str("template", env.Template).Logger()

	res, err := envfile.Bootstrap(s.fsys, st.Root, env.Target, env.Template, st.DryRun)
	if err != nil {
		st.EnvState = string(res.State)
		log.Error().Err(err).Msg("env bootstrap failed")
		return err
	}
	st.EnvState = string(res.State)

	switch res.State {
	case envfile.StateCreated:
		s.console.EnvCreating(env.Target)
		s.console.EnvCreated(env.Target, env.Template)
		log.Info().Msg("env file created")
	case envfile.StatePlanned:
		s.console.EnvCreating(env.Target)
		s.console.EnvWouldCreate(env.Target, env.Template)
		fmt.Fprintln(s.console.Out)
	case envfile.StateNoTemplate:
		s.console.EnvCreating(env.Target)
		log.Debug().Msg("env template missing, nothing to copy")
	case envfile.StateExists:
		log.Debug().Msg("env file exists, left untouched")
		s.checkDrift(st, res, log)
	}
	return nil
}

func (s *Service) checkDrift(st *pipeline.PipelineState, res envfile.Result, log zerolog.Logger) {
	env := st.Config.Env
	missing, err := envfile.CheckDrift(s.fsys, res.Target, res.Template)
	if err != nil {
		s.console.Warn(fmt.Sprintf("could not compare %s with %s: %v", env.Target, env.Template, err))
		log.Warn().Err(err).Msg("env drift check failed")
		st.Warnings = append(st.Warnings, pipeline.Warning{Code: "env_unparseable", Message: err.Error()})
		return
	}
	if len(missing) == 0 {
		return
	}
	st.EnvMissingKeys = missing
	s.console.EnvDrift(env.Target, env.Template, missing)
	log.Warn().Strs("missing_keys", missing).Msg("env file is missing template keys")
	st.Warnings = append(st.Warnings, pipeline.Warning{
		Code:    "env_missing_keys",
		Message: env.Target + " is missing " + strings.Join(missing, ", "),
	})
}

// Complete prints the completion banner and next steps.
func (s *Service) Complete(ctx context.Context, st *pipeline.PipelineState) error {
	if st.DryRun {
		s.console.DryRunComplete()
		return nil
	}
	s.console.Complete(st.Config.NextSteps, st.Config.Guide)
	return nil
}

// Finish releases the project lock, records the outcome in meta.json and
// refreshes project.json.
func (s *Service) Finish(ctx context.Context, st *pipeline.PipelineState, runErr error) error {
	if s.unlock != nil {
		if err := s.unlock(); err != nil {
			s.log.Warn().Err(err).Msg("failed to release project lock")
		}
		s.unlock = nil
	}

	ev := s.log.Info()
	if runErr != nil {
		ev = s.log.Error().Err(runErr).Str("error_code", string(errors.GetCode(runErr)))
	}
	ev.Dur("elapsed", s.nowFunc().Sub(st.StartedAt)).Msg("setup finished")

	if s.store == nil || s.meta == nil {
		return nil
	}

	s.meta.Steps = stepRecords(st.Steps)
	s.meta.Env = st.EnvState
	s.meta.EnvMissingKeys = st.EnvMissingKeys
	s.store.Finish(s.meta, runErr)
	if err := s.store.WriteMeta(s.meta); err != nil {
		s.log.Error().Err(err).Msg("failed to persist run")
		return err
	}

	existing, found, err := s.store.LoadProjectRecord(st.ProjectID)
	if err != nil {
		s.log.Warn().Err(err).Msg("replacing unreadable project.json")
	}
	var prev *store.ProjectRecord
	if found {
		prev = &existing
	}
	rec := s.store.UpsertProjectRecord(prev, store.ProjectRecordInput{
		ProjectKey:   s.ident.ProjectKey,
		ProjectID:    st.ProjectID,
		RootLastSeen: st.Root,
		ConfigSource: st.Config.Source,
		LastRunID:    st.RunID,
	})
	return s.store.SaveProjectRecord(rec)
}

func stepRecords(steps []pipeline.StepResult) []store.StepRecord {
	out := make([]store.StepRecord, len(steps))
	for i, s := range steps {
		out[i] = store.StepRecord{
			Name:       s.Name,
			Status:     s.Status,
			Command:    s.Command,
			ExitCode:   s.ExitCode,
			DurationMs: s.Duration.Milliseconds(),
			TimedOut:   s.TimedOut,
		}
	}
	return out
}

func configSource(cfg config.Config) string {
	if cfg.Source == "" {
		return "built-in defaults"
	}
	return cfg.Source
}

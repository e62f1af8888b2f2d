// Package pipeline provides the setup pipeline orchestrator.
// The pipeline executes steps in a fixed order, short-circuits on first error,
// preserves SetupError codes, and always hands the final state to Finish.
package pipeline

import (
	"context"
	"time"

	"github.com/NielsdaWheelz/devsetup/internal/config"
	"github.com/NielsdaWheelz/devsetup/internal/core"
	"github.com/NielsdaWheelz/devsetup/internal/envfile"
	"github.com/NielsdaWheelz/devsetup/internal/errors"
)

// Step status values.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Step name constants. Install steps are named StepInstallPrefix + area name.
const (
	StepBegin         = "begin"
	StepPreflight     = "preflight"
	StepInstallPrefix = "install:"
	StepEnv           = "env"
	StepComplete      = "complete"
)

// RunPipelineOpts contains the inputs for running a pipeline.
type RunPipelineOpts struct {
	// Root is the absolute project root (the invocation directory).
	Root string

	// Config is the loaded, validated project layout.
	Config config.Config

	// DryRun prints planned actions without executing installs or copying.
	DryRun bool

	// SkipInstall records every install step as skipped.
	SkipInstall bool

	// SkipEnv records the env step as skipped.
	SkipEnv bool

	// Timeout bounds each install; 0 means no limit.
	Timeout time.Duration
}

// Warning represents a non-fatal warning emitted during pipeline execution.
type Warning struct {
	// Code is a stable warning identifier.
	Code string

	// Message is a human-readable description.
	Message string
}

// StepResult is the recorded outcome of one step.
type StepResult struct {
	Name     string
	Status   string
	Command  string // display form, e.g. "cd backend && npm install"
	ExitCode *int
	Duration time.Duration
	TimedOut bool
}

// PipelineState accumulates state during pipeline execution.
type PipelineState struct {
	// From opts (copied at start)
	Root        string
	Config      config.Config
	DryRun      bool
	SkipInstall bool
	SkipEnv     bool
	Timeout     time.Duration

	// Generated immediately
	RunID     string
	StartedAt time.Time

	// Populated by Begin
	ProjectID string

	// Populated by BootstrapEnv
	EnvState       string
	EnvMissingKeys []string

	// One entry per executed or skipped step, in order
	Steps []StepResult

	// Accumulated warnings (non-fatal)
	Warnings []Warning
}

// SetupService defines the step implementations for the setup pipeline.
// Implementations are injected to allow testing without npm or a real project.
type SetupService interface {
	// Begin announces the run and derives the project identity.
	Begin(ctx context.Context, st *PipelineState) error

	// Preflight verifies the invocation directory is the project root. Once
	// it passes, the service may lock the project and open the run record.
	Preflight(ctx context.Context, st *PipelineState) error

	// Install runs one install step. The service fills rec with command
	// details (command, exit code, timeout); the pipeline fills name,
	// status, and duration.
	Install(ctx context.Context, st *PipelineState, step config.InstallStep, rec *StepResult) error

	// BootstrapEnv creates the env file from its template if needed.
	BootstrapEnv(ctx context.Context, st *PipelineState) error

	// Complete prints the completion banner and next steps.
	Complete(ctx context.Context, st *PipelineState) error

	// Finish persists the run outcome. It is called on every path once
	// Begin has been attempted; runErr is the error that ended the run.
	Finish(ctx context.Context, st *PipelineState, runErr error) error
}

// Pipeline orchestrates the execution of setup steps in a fixed order.
type Pipeline struct {
	svc     SetupService
	nowFunc func() time.Time
}

// NewPipeline creates a pipeline with the given service implementation.
func NewPipeline(svc SetupService) *Pipeline {
	return &Pipeline{
		svc:     svc,
		nowFunc: time.Now,
	}
}

// SetNowFunc overrides the time source for testing.
func (p *Pipeline) SetNowFunc(fn func() time.Time) {
	p.nowFunc = fn
}

// Run executes the pipeline:
//  1. Begin
//  2. Preflight
//  3. Install, once per configured area in order
//  4. BootstrapEnv
//  5. Complete
//
// then Finish with the outcome.
//
// Behavior:
//   - Generates run_id immediately and stores it in state
//   - Executes steps in order; short-circuits on first error
//   - If error is *SetupError, preserves code/message/details exactly
//   - Otherwise wraps it with E_INTERNAL and the step name in details
//   - Finish errors are returned only when the run itself succeeded
//   - Returns the final state even on error (after run_id generation)
func (p *Pipeline) Run(ctx context.Context, opts RunPipelineOpts) (*PipelineState, error) {
	st := &PipelineState{
		Root:        opts.Root,
		Config:      opts.Config,
		DryRun:      opts.DryRun,
		SkipInstall: opts.SkipInstall,
		SkipEnv:     opts.SkipEnv,
		Timeout:     opts.Timeout,
	}

	now := p.nowFunc()
	runID, err := core.NewRunID(now)
	if err != nil {
		return nil, errors.Wrap(errors.EInternal, "failed to generate run_id", err)
	}
	st.RunID = runID
	st.StartedAt = now

	runErr := p.runSteps(ctx, st)

	if err := p.svc.Finish(ctx, st, runErr); err != nil && runErr == nil {
		return st, wrapStepError(err, "finish")
	}
	return st, runErr
}

func (p *Pipeline) runSteps(ctx context.Context, st *PipelineState) error {
	if err := p.svc.Begin(ctx, st); err != nil {
		return wrapStepError(err, StepBegin)
	}

	if err := p.step(st, StepPreflight, func(*StepResult) error {
		return p.svc.Preflight(ctx, st)
	}); err != nil {
		return err
	}

	for _, inst := range st.Config.Install {
		inst := inst
		name := StepInstallPrefix + inst.Name
		if st.SkipInstall {
			st.Steps = append(st.Steps, StepResult{Name: name, Status: StatusSkipped})
			continue
		}
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.ECanceled, "setup canceled", err)
		}
		if err := p.step(st, name, func(rec *StepResult) error {
			return p.svc.Install(ctx, st, inst, rec)
		}); err != nil {
			return err
		}
	}

	if st.SkipEnv || !st.Config.Env.Enabled() {
		st.EnvState = string(envfile.StateDisabled)
		st.Steps = append(st.Steps, StepResult{Name: StepEnv, Status: StatusSkipped})
	} else if err := p.step(st, StepEnv, func(*StepResult) error {
		return p.svc.BootstrapEnv(ctx, st)
	}); err != nil {
		return err
	}

	if err := p.svc.Complete(ctx, st); err != nil {
		return wrapStepError(err, StepComplete)
	}
	return nil
}

// step runs fn, timing it and recording its result. A status set by fn
// (e.g. skipped in dry-run) is kept on success.
func (p *Pipeline) step(st *PipelineState, name string, fn func(*StepResult) error) error {
	rec := StepResult{Name: name}
	start := p.nowFunc()
	err := fn(&rec)
	rec.Name = name
	rec.Duration = p.nowFunc().Sub(start)
	switch {
	case err != nil:
		rec.Status = StatusFailed
	case rec.Status == "":
		rec.Status = StatusOK
	}
	st.Steps = append(st.Steps, rec)
	return wrapStepError(err, name)
}

// wrapStepError ensures the error is a *SetupError.
// If already *SetupError, returns it unchanged.
// Otherwise wraps it with E_INTERNAL and step name in details.
func wrapStepError(err error, stepName string) error {
	if err == nil {
		return nil
	}

	if _, ok := errors.AsSetupError(err); ok {
		return err
	}

	return errors.WrapWithDetails(
		errors.EInternal,
		"internal error",
		err,
		map[string]string{"step": stepName},
	)
}

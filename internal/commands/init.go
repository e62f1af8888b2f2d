package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/NielsdaWheelz/devsetup/internal/config"
	"github.com/NielsdaWheelz/devsetup/internal/errors"
	"github.com/NielsdaWheelz/devsetup/internal/fs"
	"github.com/NielsdaWheelz/devsetup/internal/scaffold"
)

// InitOpts holds options for the init command.
type InitOpts struct {
	NoGitignore   bool
	NoEnvTemplate bool
	Force         bool
}

// InitResult holds the result of the init command for output formatting.
type InitResult struct {
	ProjectRoot    string
	ConfigState    string // "created" or "overwritten"
	EnvTemplate    string // "created", "exists", or "skipped"
	GitignoreState scaffold.GitignoreResult
}

// Init implements `devsetup init`.
// Writes devsetup.yaml, an env template stub (if missing), and ignores the
// env target in .gitignore (by default).
func Init(ctx context.Context, d Deps, opts InitOpts) error {
	root := d.Cwd
	configPath := filepath.Join(root, scaffold.ConfigFileName)

	_, err := d.FS.Stat(configPath)
	configExists := err == nil
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.EInternal, "failed to check "+scaffold.ConfigFileName, err)
	}

	if configExists && !opts.Force {
		return errors.New(errors.EConfigExists, scaffold.ConfigFileName+" already exists; use --force to overwrite")
	}

	configState := "created"
	if configExists {
		configState = "overwritten"
	}

	if err := fs.WriteFileAtomic(d.FS, configPath, []byte(scaffold.ConfigTemplate), 0644); err != nil {
		return errors.Wrap(errors.EPersistFailed, "failed to write "+scaffold.ConfigFileName, err)
	}

	envCfg := config.Default().Env

	envState := "skipped"
	if !opts.NoEnvTemplate {
		res, err := scaffold.WriteStub(d.FS, root, envCfg.Template, scaffold.EnvTemplateStub)
		if err != nil {
			return errors.Wrap(errors.EPersistFailed, "failed to create "+envCfg.Template, err)
		}
		envState = string(res)
	}

	var gitignoreState scaffold.GitignoreResult
	if opts.NoGitignore {
		gitignoreState = scaffold.GitignoreSkipped
	} else {
		gitignorePath := filepath.Join(root, ".gitignore")
		gitignoreState, err = scaffold.EnsureGitignore(d.FS, gitignorePath, envCfg.Target)
		if err != nil {
			return errors.Wrap(errors.EPersistFailed, "failed to update .gitignore", err)
		}
	}

	d.Logger.Info().
		Str("config", configState).
		Str("env_template", envState).
		Str("gitignore", string(gitignoreState)).
		Msg("init finished")

	writeInitOutput(d.Stdout, InitResult{
		ProjectRoot:    root,
		ConfigState:    configState,
		EnvTemplate:    envState,
		GitignoreState: gitignoreState,
	})

	if opts.NoGitignore {
		fmt.Fprintln(d.Stdout, "warning: gitignore_skipped; make sure "+envCfg.Target+" is never committed")
	}
	return nil
}

// writeInitOutput writes the stable key: value output for init.
func writeInitOutput(w io.Writer, r InitResult) {
	fmt.Fprintf(w, "project_root: %s\n", r.ProjectRoot)
	fmt.Fprintf(w, "devsetup_yaml: %s\n", r.ConfigState)
	fmt.Fprintf(w, "env_template: %s\n", r.EnvTemplate)
	fmt.Fprintf(w, "gitignore: %s\n", r.GitignoreState)
}

// Package cli wires the devsetup cobra command tree to internal/commands.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/devsetup/internal/commands"
	"github.com/NielsdaWheelz/devsetup/internal/errors"
	"github.com/NielsdaWheelz/devsetup/internal/exec"
	"github.com/NielsdaWheelz/devsetup/internal/fs"
	"github.com/NielsdaWheelz/devsetup/internal/logging"
	"github.com/NielsdaWheelz/devsetup/internal/paths"
	"github.com/NielsdaWheelz/devsetup/internal/version"
)

// Run parses args and executes the matching command.
// Returns an error if the command fails; the caller should print the error and exit.
func Run(args []string, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newApp(stdout, stderr).execute(ctx, args)
}

// app holds global flag values and the process collaborators used to build
// commands.Deps. Tests replace the collaborators.
type app struct {
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader

	runner      exec.CommandRunner
	lookPath    func(string) (string, error)
	getwd       func() (string, error)
	resolveDirs func() (paths.Dirs, error)
	getenv      func(string) string

	configPath string
	verbose    bool
	logLevel   string
	noColor    bool
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:      stdout,
		stderr:      stderr,
		stdin:       os.Stdin,
		runner:      exec.NewRealRunner(),
		lookPath:    exec.LookPath,
		getwd:       os.Getwd,
		resolveDirs: paths.Resolve,
		getenv:      os.Getenv,
	}
}

func (a *app) execute(ctx context.Context, args []string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	if _, ok := errors.AsSetupError(err); ok {
		return err
	}
	// cobra parse errors (unknown command, bad flag, extra args)
	return errors.Wrap(errors.EUsage, err.Error(), err)
}

func (a *app) rootCmd() *cobra.Command {
	var opts commands.SetupOpts

	root := &cobra.Command{
		Use:           "devsetup",
		Short:         "Set up a backend + frontend project for local development",
		Long:          "devsetup checks that it runs from the project root, installs backend and\nfrontend dependencies, creates backend/.env from its template and prints\nthe next steps. Running it without a subcommand is the same as `devsetup setup`.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDeps(func(d commands.Deps) error {
				return commands.Setup(cmd.Context(), d, opts)
			})
		},
	}
	root.SetVersionTemplate(version.String() + "\n")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.Wrap(errors.EUsage, err.Error(), err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to a devsetup.yaml/.toml layout file")
	pf.BoolVar(&a.verbose, "verbose", false, "mirror log records to stderr")
	pf.StringVar(&a.logLevel, "log-level", "info", "log level: debug|info|warn|error")
	pf.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	addSetupFlags(root, &opts)

	root.AddCommand(
		a.setupCmd(),
		a.doctorCmd(),
		a.initCmd(),
		a.statusCmd(),
		a.historyCmd(),
		versionCmd(),
	)
	return root
}

// withDeps builds commands.Deps for one invocation and runs fn with it.
func (a *app) withDeps(fn func(commands.Deps) error) error {
	cwd, err := a.getwd()
	if err != nil {
		return errors.Wrap(errors.EInternal, "failed to get working directory", err)
	}
	if abs, err := filepath.Abs(cwd); err == nil {
		cwd = abs
	}

	dirs, err := a.resolveDirs()
	if err != nil {
		fmt.Fprintf(a.stderr, "warning: cannot resolve devsetup data directories (%v); run history and log file disabled\n", err)
		dirs = paths.Dirs{}
	}

	logPath := logging.DefaultPath(dirs.StateDir, a.getenv)
	logger, closeLog, err := logging.Setup(logging.Options{
		Level:   a.logLevel,
		Path:    logPath,
		Verbose: a.verbose,
		Console: a.stderr,
	})
	if err != nil {
		return errors.Wrap(errors.EUsage, err.Error(), err)
	}
	defer closeLog()

	d := commands.Deps{
		Runner:     a.runner,
		FS:         fs.NewRealFS(),
		LookPath:   a.lookPath,
		Env:        envFunc(a.getenv),
		Logger:     logger,
		Cwd:        cwd,
		Dirs:       dirs,
		LogPath:    logPath,
		ConfigPath: a.configPath,
		NoColor:    a.noColor || a.getenv("NO_COLOR") != "",
		Stdin:      a.stdin,
		Stdout:     a.stdout,
		Stderr:     a.stderr,
	}

	err = fn(d)
	if err != nil && stderrors.Is(err, context.Canceled) {
		if _, ok := errors.AsSetupError(err); !ok {
			return errors.Wrap(errors.ECanceled, "interrupted", err)
		}
	}
	return err
}

// envFunc adapts a getenv function to config.Env.
type envFunc func(string) string

func (f envFunc) Get(key string) string {
	return f(key)
}

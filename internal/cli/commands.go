package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/NielsdaWheelz/devsetup/internal/commands"
	"github.com/NielsdaWheelz/devsetup/internal/version"
)

func addSetupFlags(c *cobra.Command, opts *commands.SetupOpts) {
	c.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print the planned commands without running them")
	c.Flags().DurationVar(&opts.Timeout, "timeout", 0, "per-install time limit, e.g. 10m (0 = none)")
	c.Flags().BoolVar(&opts.SkipInstall, "skip-install", false, "skip dependency installation")
	c.Flags().BoolVar(&opts.SkipEnv, "skip-env", false, "skip creating the env file")
}

func (a *app) setupCmd() *cobra.Command {
	var opts commands.SetupOpts

	c := &cobra.Command{
		Use:   "setup",
		Short: "Install dependencies and create the env file (default command)",
		Example: `  devsetup setup
  devsetup setup --dry-run
  devsetup setup --timeout 10m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDeps(func(d commands.Deps) error {
				return commands.Setup(cmd.Context(), d, opts)
			})
		},
	}
	addSetupFlags(c, &opts)
	return c
}

func (a *app) doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the project layout, tools and env file without changing anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDeps(func(d commands.Deps) error {
				return commands.Doctor(cmd.Context(), d)
			})
		},
	}
}

func (a *app) initCmd() *cobra.Command {
	var opts commands.InitOpts

	c := &cobra.Command{
		Use:   "init",
		Short: "Write devsetup.yaml with the default project layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDeps(func(d commands.Deps) error {
				return commands.Init(cmd.Context(), d, opts)
			})
		},
	}
	c.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing devsetup.yaml")
	c.Flags().BoolVar(&opts.NoGitignore, "no-gitignore", false, "do not modify .gitignore")
	c.Flags().BoolVar(&opts.NoEnvTemplate, "no-env-template", false, "do not create a stub env template")
	return c
}

func (a *app) statusCmd() *cobra.Command {
	var opts commands.StatusOpts

	c := &cobra.Command{
		Use:   "status [run_id]",
		Short: "Show the most recent (or the given) setup run for this project",
		Example: `  devsetup status
  devsetup status a3f2
  devsetup status --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.RunID = args[0]
			}
			return a.withDeps(func(d commands.Deps) error {
				return commands.Status(cmd.Context(), d, opts)
			})
		},
	}
	c.Flags().BoolVar(&opts.JSON, "json", false, "output as JSON")
	return c
}

func (a *app) historyCmd() *cobra.Command {
	var opts commands.HistoryOpts

	c := &cobra.Command{
		Use:   "history",
		Short: "List recorded setup runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDeps(func(d commands.Deps) error {
				return commands.History(cmd.Context(), d, opts)
			})
		},
	}
	c.Flags().BoolVar(&opts.JSON, "json", false, "output as JSON")
	c.Flags().IntVar(&opts.Limit, "limit", 0, "show at most N runs (0 = all)")
	return c
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the devsetup version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}

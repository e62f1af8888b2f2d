package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/NielsdaWheelz/devsetup/internal/config"
	"github.com/NielsdaWheelz/devsetup/internal/core"
	"github.com/NielsdaWheelz/devsetup/internal/envfile"
	"github.com/NielsdaWheelz/devsetup/internal/errors"
	"github.com/NielsdaWheelz/devsetup/internal/exec"
	"github.com/NielsdaWheelz/devsetup/internal/fs"
	"github.com/NielsdaWheelz/devsetup/internal/status"
)

// DoctorReport holds all the data for doctor output.
type DoctorReport struct {
	// Project and directories
	ProjectRoot string
	DataDir     string
	StateDir    string
	LogFile     string

	// Identity
	ProjectKey string
	ProjectID  string

	// Config resolution
	ConfigSource string
	Installs     []string // display commands, in order

	// Preflight: dir -> present
	RequireDirs []DirCheck

	// Tooling: one entry per distinct installer binary
	Tools []ToolCheck

	// Env bootstrap
	EnvTarget         string
	EnvTargetExists   bool
	EnvTemplate       string
	EnvTemplateExists bool
	EnvMissingKeys    []string
	EnvWarning        string

	// RootHint is the enclosing git root when the layout is found there.
	RootHint string

	// Last recorded run
	LastRunID     string
	LastRunStatus string
}

// DirCheck is one required directory.
type DirCheck struct {
	Dir     string
	Present bool
}

// ToolCheck is one installer binary.
type ToolCheck struct {
	Name    string
	Version string // empty when missing
	Err     string
}

// Doctor implements `devsetup doctor`.
// Reports project layout, installer availability, env drift, and the last
// run as key: value lines. Never modifies the project. Returns the first
// blocking problem (missing directory or installer) after printing.
func Doctor(ctx context.Context, d Deps) error {
	cfg, err := d.loadConfig()
	if err != nil {
		return err
	}
	ident := d.identity()

	report := DoctorReport{
		ProjectRoot:  d.Cwd,
		DataDir:      d.Dirs.DataDir,
		StateDir:     d.Dirs.StateDir,
		LogFile:      d.LogPath,
		ProjectKey:   ident.ProjectKey,
		ProjectID:    ident.ProjectID,
		ConfigSource: cfg.Source,
	}

	for _, step := range cfg.Install {
		report.Installs = append(report.Installs, step.Name+": "+core.FormatCommand(step.Dir, step.Command))
	}

	var problem error

	var missing []string
	for _, dir := range cfg.Preflight.RequireDirs {
		ok, err := fs.IsDir(d.FS, filepath.Join(d.Cwd, dir))
		if err != nil {
			return errors.Wrap(errors.EInternal, "failed to check "+dir, err)
		}
		report.RequireDirs = append(report.RequireDirs, DirCheck{Dir: dir, Present: ok})
		if !ok {
			missing = append(missing, dir)
		}
	}
	if len(missing) > 0 {
		problem = errors.New(errors.ENotProjectRoot,
			"not a project root (missing: "+strings.Join(missing, ", ")+")")
		report.RootHint = suggestRoot(ctx, d, cfg.Preflight.RequireDirs)
	}

	for _, name := range installerNames(cfg) {
		tc := checkTool(ctx, d.Runner, name)
		report.Tools = append(report.Tools, tc)
		if tc.Version == "" && problem == nil {
			problem = errors.New(errors.EInstallerNotFound, name+" is not installed or not on PATH")
		}
	}

	if cfg.Env.Enabled() {
		report.EnvTarget = cfg.Env.Target
		report.EnvTemplate = cfg.Env.Template
		target := filepath.Join(d.Cwd, cfg.Env.Target)
		template := filepath.Join(d.Cwd, cfg.Env.Template)
		report.EnvTargetExists, _ = fs.Exists(d.FS, target)
		report.EnvTemplateExists, _ = fs.Exists(d.FS, template)
		keys, err := envfile.CheckDrift(d.FS, target, template)
		if err != nil {
			report.EnvWarning = err.Error()
		}
		report.EnvMissingKeys = keys
	}

	if st := d.store(); st != nil {
		if latest, err := st.LatestRun(ident.ProjectID); err == nil && latest != nil {
			report.LastRunID = latest.RunID
			report.LastRunStatus = status.Derive(latest, status.Snapshot{LockHeld: d.lockHeld(ident.ProjectID)})
		}
	}

	writeDoctorOutput(d.Stdout, report, problem == nil)
	return problem
}

// installerNames returns the distinct command[0] of every install step, in order.
func installerNames(cfg config.Config) []string {
	seen := map[string]bool{}
	var names []string
	for _, step := range cfg.Install {
		name := step.Command[0]
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// checkTool runs `<name> --version` and returns the first output line.
func checkTool(ctx context.Context, cr exec.CommandRunner, name string) ToolCheck {
	result, err := cr.Run(ctx, name, []string{"--version"}, exec.RunOpts{})
	if err != nil {
		return ToolCheck{Name: name, Err: "not installed or not on PATH"}
	}
	if result.ExitCode != 0 {
		return ToolCheck{Name: name, Err: fmt.Sprintf("%s --version exited %d", name, result.ExitCode)}
	}
	lines := strings.Split(strings.TrimSpace(result.Stdout), "\n")
	version := strings.TrimSpace(lines[0])
	if version == "" {
		version = "unknown"
	}
	return ToolCheck{Name: name, Version: version}
}

// writeDoctorOutput writes the stable key: value output.
func writeDoctorOutput(w io.Writer, r DoctorReport, ok bool) {
	// Project + dirs
	fmt.Fprintf(w, "project_root: %s\n", r.ProjectRoot)
	fmt.Fprintf(w, "devsetup_data_dir: %s\n", r.DataDir)
	fmt.Fprintf(w, "devsetup_state_dir: %s\n", r.StateDir)
	fmt.Fprintf(w, "log_file: %s\n", r.LogFile)

	// Identity
	fmt.Fprintf(w, "project_key: %s\n", r.ProjectKey)
	fmt.Fprintf(w, "project_id: %s\n", r.ProjectID)

	// Config resolution
	source := r.ConfigSource
	if source == "" {
		source = "built-in defaults"
	}
	fmt.Fprintf(w, "config: %s\n", source)
	for _, line := range r.Installs {
		fmt.Fprintf(w, "install_%s\n", line)
	}

	// Preflight
	for _, dc := range r.RequireDirs {
		state := "ok"
		if !dc.Present {
			state = "missing"
		}
		fmt.Fprintf(w, "dir_%s: %s\n", dc.Dir, state)
	}
	if r.RootHint != "" {
		fmt.Fprintf(w, "hint: run devsetup from %s\n", r.RootHint)
	}

	// Tooling
	for _, tc := range r.Tools {
		if tc.Version != "" {
			fmt.Fprintf(w, "%s_version: %s\n", tc.Name, tc.Version)
		} else {
			fmt.Fprintf(w, "%s_version: missing (%s)\n", tc.Name, tc.Err)
		}
	}

	// Env
	if r.EnvTarget == "" {
		fmt.Fprintln(w, "env: disabled")
	} else {
		fmt.Fprintf(w, "env_target: %s (%s)\n", r.EnvTarget, presence(r.EnvTargetExists))
		fmt.Fprintf(w, "env_template: %s (%s)\n", r.EnvTemplate, presence(r.EnvTemplateExists))
		missing := "none"
		if len(r.EnvMissingKeys) > 0 {
			missing = strings.Join(r.EnvMissingKeys, ", ")
		}
		fmt.Fprintf(w, "env_missing_keys: %s\n", missing)
		if r.EnvWarning != "" {
			fmt.Fprintf(w, "warning: env files could not be compared: %s\n", r.EnvWarning)
		}
	}

	// Last run
	if r.LastRunID == "" {
		fmt.Fprintln(w, "last_run: none")
	} else {
		fmt.Fprintf(w, "last_run: %s (%s)\n", r.LastRunID, r.LastRunStatus)
	}

	// Final
	if ok {
		fmt.Fprintln(w, "status: ok")
	} else {
		fmt.Fprintln(w, "status: problems found")
	}
}

func presence(b bool) string {
	if b {
		return "present"
	}
	return "missing"
}

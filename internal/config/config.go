// Package config describes the project layout devsetup bootstraps and how to load it.
package config

// Version is the only supported config schema version.
const Version = 1

// Candidate file names looked up in the project root, in order.
var Candidates = []string{"devsetup.yaml", "devsetup.yml", "devsetup.toml"}

// PackageManagerEnv overrides the executable of every install step.
const PackageManagerEnv = "DEVSETUP_PACKAGE_MANAGER"

// Config is the project layout. The zero-config default reproduces a
// backend-in-subdirectory / frontend-in-root npm project.
type Config struct {
	Version   int           `yaml:"version" toml:"version"`
	Project   string        `yaml:"project" toml:"project"`
	Preflight Preflight     `yaml:"preflight" toml:"preflight"`
	Install   []InstallStep `yaml:"install" toml:"install"`
	Env       EnvBootstrap  `yaml:"env" toml:"env"`
	NextSteps []string      `yaml:"next_steps" toml:"next_steps"`
	Guide     string        `yaml:"guide" toml:"guide"`

	// Source is the file the config was loaded from; empty for built-in defaults.
	Source string `yaml:"-" toml:"-"`
}

// Preflight lists the directories whose presence marks the project root.
type Preflight struct {
	RequireDirs []string `yaml:"require_dirs" toml:"require_dirs"`
}

// InstallStep is one package-manager invocation, run inside Dir.
type InstallStep struct {
	Name    string   `yaml:"name" toml:"name"`
	Dir     string   `yaml:"dir" toml:"dir"`
	Command []string `yaml:"command" toml:"command"`
}

// EnvBootstrap names the env file to create and the template it is copied from.
// Both paths are relative to the project root.
type EnvBootstrap struct {
	Disabled bool   `yaml:"disabled" toml:"disabled"`
	Target   string `yaml:"target" toml:"target"`
	Template string `yaml:"template" toml:"template"`
}

// Enabled reports whether the env bootstrap step should run.
func (e EnvBootstrap) Enabled() bool {
	return !e.Disabled && e.Target != "" && e.Template != ""
}

// Default returns the built-in layout.
func Default() Config {
	return Config{
		Version: Version,
		Project: "HireScope",
		Preflight: Preflight{
			RequireDirs: []string{"backend", "src"},
		},
		Install: []InstallStep{
			{Name: "backend", Dir: "backend", Command: []string{"npm", "install"}},
			{Name: "frontend", Dir: ".", Command: []string{"npm", "install"}},
		},
		Env: EnvBootstrap{
			Target:   "backend/.env",
			Template: "backend/.env.example",
		},
		NextSteps: []string{
			"1. Configure backend/.env with your settings:",
			"   - MongoDB URI",
			"   - JWT secrets",
			"   - OpenAI API key",
			"2. Start MongoDB",
			"3. Run the development servers:",
			"",
			"   Backend:  cd backend && npm run dev",
			"   Frontend: npm run dev",
			"",
		},
		Guide: "SETUP_GUIDE.md",
	}
}

// Env is the interface for environment variable lookups.
type Env interface {
	Get(key string) string
}

// ApplyEnv applies environment overrides in place.
func (c *Config) ApplyEnv(env Env) {
	if env == nil {
		return
	}
	if pm := env.Get(PackageManagerEnv); pm != "" {
		for i := range c.Install {
			if len(c.Install[i].Command) > 0 {
				cmd := append([]string(nil), c.Install[i].Command...)
				cmd[0] = pm
				c.Install[i].Command = cmd
			}
		}
	}
}

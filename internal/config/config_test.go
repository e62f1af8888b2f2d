package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NielsdaWheelz/devsetup/internal/errors"
	"github.com/NielsdaWheelz/devsetup/internal/fs"
)

type mapEnv map[string]string

func (m mapEnv) Get(key string) string { return m[key] }

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault_IsValidAndMatchesLayout(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	assert.Equal(t, []string{"backend", "src"}, cfg.Preflight.RequireDirs)
	require.Len(t, cfg.Install, 2)
	assert.Equal(t, InstallStep{Name: "backend", Dir: "backend", Command: []string{"npm", "install"}}, cfg.Install[0])
	assert.Equal(t, InstallStep{Name: "frontend", Dir: ".", Command: []string{"npm", "install"}}, cfg.Install[1])
	assert.Equal(t, "backend/.env", cfg.Env.Target)
	assert.Equal(t, "backend/.env.example", cfg.Env.Template)
	assert.True(t, cfg.Env.Enabled())
	assert.Contains(t, cfg.NextSteps, "2. Start MongoDB")
}

func TestDefault_ReturnsFreshSlices(t *testing.T) {
	a := Default()
	a.Install[0].Command[0] = "yarn"
	a.NextSteps[0] = "changed"

	b := Default()
	assert.Equal(t, "npm", b.Install[0].Command[0])
	assert.NotEqual(t, "changed", b.NextSteps[0])
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load(fs.NewRealFS(), t.TempDir(), "", nil)
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want, cfg)
	assert.Empty(t, cfg.Source)
}

func TestLoad_YAML(t *testing.T) {
	root := t.TempDir()
	path := writeFile(t, root, "devsetup.yaml", `
version: 1
project: Acme
preflight:
  require_dirs: [api, web]
install:
  - name: api
    dir: api
    command: [pnpm, install, --frozen-lockfile]
  - name: web
    dir: web
    command: [pnpm, install]
env:
  target: api/.env
  template: api/.env.sample
next_steps:
  - "run pnpm dev"
guide: docs/ONBOARDING.md
`)

	cfg, err := Load(fs.NewRealFS(), root, "", nil)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, "Acme", cfg.Project)
	assert.Equal(t, []string{"api", "web"}, cfg.Preflight.RequireDirs)
	require.Len(t, cfg.Install, 2)
	assert.Equal(t, []string{"pnpm", "install", "--frozen-lockfile"}, cfg.Install[0].Command)
	assert.Equal(t, "api/.env.sample", cfg.Env.Template)
	assert.Equal(t, []string{"run pnpm dev"}, cfg.NextSteps)
	assert.Equal(t, "docs/ONBOARDING.md", cfg.Guide)
}

func TestLoad_YAMLPartialKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "devsetup.yml", "project: Acme\nenv:\n  template: backend/.env.dist\n")

	cfg, err := Load(fs.NewRealFS(), root, "", nil)
	require.NoError(t, err)

	assert.Equal(t, "Acme", cfg.Project)
	assert.Equal(t, Default().Install, cfg.Install)
	assert.Equal(t, "backend/.env", cfg.Env.Target)
	assert.Equal(t, "backend/.env.dist", cfg.Env.Template)
}

func TestLoad_YAMLEmptyDocument(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "devsetup.yaml", "# nothing configured yet\n")

	cfg, err := Load(fs.NewRealFS(), root, "", nil)
	require.NoError(t, err)
	assert.Equal(t, Default().Install, cfg.Install)
}

func TestLoad_YAMLUnknownKeyRejected(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "devsetup.yaml", "version: 1\ninstal: []\n")

	_, err := Load(fs.NewRealFS(), root, "", nil)
	require.Error(t, err)
	assert.Equal(t, errors.EInvalidConfig, errors.GetCode(err))
	assert.Contains(t, err.Error(), "devsetup.yaml")
}

func TestLoad_TOML(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "devsetup.toml", `
version = 1
project = "Acme"

[[install]]
name = "api"
dir = "api"
command = ["yarn", "install"]

[env]
disabled = true
`)

	cfg, err := Load(fs.NewRealFS(), root, "", nil)
	require.NoError(t, err)

	require.Len(t, cfg.Install, 1)
	assert.Equal(t, InstallStep{Name: "api", Dir: "api", Command: []string{"yarn", "install"}}, cfg.Install[0])
	assert.False(t, cfg.Env.Enabled())
	assert.Equal(t, Default().Preflight, cfg.Preflight)
	assert.Equal(t, Default().NextSteps, cfg.NextSteps)
}

func TestLoad_TOMLUnknownKeyRejected(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "devsetup.toml", "version = 1\n[env]\ntarget = \"a/.env\"\ntemplate = \"a/.env.example\"\nbogus = 1\n")

	_, err := Load(fs.NewRealFS(), root, "", nil)
	require.Error(t, err)
	assert.Equal(t, errors.EInvalidConfig, errors.GetCode(err))
	assert.Contains(t, err.Error(), "env.bogus")
}

func TestLoad_CandidateOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "devsetup.toml", "project = \"from-toml\"\n")
	yamlPath := writeFile(t, root, "devsetup.yaml", "project: from-yaml\n")

	cfg, err := Load(fs.NewRealFS(), root, "", nil)
	require.NoError(t, err)
	assert.Equal(t, "from-yaml", cfg.Project)
	assert.Equal(t, yamlPath, cfg.Source)
}

func TestLoad_ExplicitPath(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "ci"), 0755))
	writeFile(t, root, "devsetup.yaml", "project: ignored\n")
	writeFile(t, filepath.Join(root, "ci"), "setup.toml", "project = \"explicit\"\n")

	cfg, err := Load(fs.NewRealFS(), root, "ci/setup.toml", nil)
	require.NoError(t, err)
	assert.Equal(t, "explicit", cfg.Project)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	_, err := Load(fs.NewRealFS(), t.TempDir(), "nope.yaml", nil)
	require.Error(t, err)
	assert.Equal(t, errors.EConfigNotFound, errors.GetCode(err))
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "setup.json", "{}")

	_, err := Load(fs.NewRealFS(), root, "setup.json", nil)
	require.Error(t, err)
	assert.Equal(t, errors.EInvalidConfig, errors.GetCode(err))
}

func TestLoad_PackageManagerOverride(t *testing.T) {
	cfg, err := Load(fs.NewRealFS(), t.TempDir(), "", mapEnv{PackageManagerEnv: "pnpm"})
	require.NoError(t, err)

	for _, step := range cfg.Install {
		assert.Equal(t, []string{"pnpm", "install"}, step.Command)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad version", func(c *Config) { c.Version = 2 }, "version"},
		{"no install steps", func(c *Config) { c.Install = nil }, "install"},
		{"empty step name", func(c *Config) { c.Install[0].Name = " " }, "install[0].name"},
		{"duplicate step name", func(c *Config) { c.Install[1].Name = "backend" }, "install[1].name"},
		{"empty command", func(c *Config) { c.Install[0].Command = nil }, "install[0].command"},
		{"command with args in first element", func(c *Config) { c.Install[0].Command = []string{"npm install"} }, "install[0].command"},
		{"absolute dir", func(c *Config) { c.Install[0].Dir = "/srv/backend" }, "install[0].dir"},
		{"escaping dir", func(c *Config) { c.Install[1].Dir = "../other" }, "install[1].dir"},
		{"escaping require dir", func(c *Config) { c.Preflight.RequireDirs = []string{".."} }, "preflight.require_dirs[0]"},
		{"empty require dir", func(c *Config) { c.Preflight.RequireDirs = []string{""} }, "preflight.require_dirs[0]"},
		{"target without template", func(c *Config) { c.Env.Template = "" }, "env"},
		{"escaping env target", func(c *Config) { c.Env.Target = "../.env" }, "env.target"},
		{"target equals template", func(c *Config) { c.Env.Template = "backend/./.env" }, "env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.Equal(t, errors.EInvalidConfig, errors.GetCode(err))

			se, ok := errors.AsSetupError(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, se.Details["field"])
			assert.Equal(t, "built-in defaults", se.Details["source"])
		})
	}
}

func TestValidate_AllowsEmptyDirAndDisabledEnv(t *testing.T) {
	cfg := Default()
	cfg.Install[1].Dir = ""
	cfg.Env = EnvBootstrap{Disabled: true}
	cfg.Preflight.RequireDirs = nil

	assert.NoError(t, Validate(cfg))
}

package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NielsdaWheelz/devsetup/internal/config"
	"github.com/NielsdaWheelz/devsetup/internal/fs"
)

func TestConfigTemplateMatchesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(ConfigTemplate), 0644))

	cfg, err := config.LoadFile(fs.NewRealFS(), path)
	require.NoError(t, err)

	want := config.Default()
	want.Source = path
	assert.Equal(t, want, cfg)
	require.NoError(t, config.Validate(cfg))
}

func TestEnsureGitignore(t *testing.T) {
	tests := []struct {
		name    string
		initial *string
		want    string
		result  GitignoreResult
	}{
		{"missing file", nil, "backend/.env\n", GitignoreUpdated},
		{"append", strp("node_modules/\n"), "node_modules/\nbackend/.env\n", GitignoreUpdated},
		{"append without trailing newline", strp("node_modules/"), "node_modules/\nbackend/.env\n", GitignoreUpdated},
		{"already present", strp("backend/.env\n"), "backend/.env\n", GitignoreUnchanged},
		{"anchored form", strp("/backend/.env\n"), "/backend/.env\n", GitignoreUnchanged},
		{"base name pattern", strp("node_modules/\n.env\n"), "node_modules/\n.env\n", GitignoreUnchanged},
		{"present without trailing newline", strp("backend/.env"), "backend/.env\n", GitignoreUpdated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, ".gitignore")
			if tt.initial != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.initial), 0644))
			}

			res, err := EnsureGitignore(fs.NewRealFS(), path, "backend/.env")
			require.NoError(t, err)
			assert.Equal(t, tt.result, res)

			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestWriteStub(t *testing.T) {
	root := t.TempDir()
	fsys := fs.NewRealFS()

	res, err := WriteStub(fsys, root, "backend/.env.example", EnvTemplateStub)
	require.NoError(t, err)
	assert.Equal(t, StubCreated, res)

	got, err := os.ReadFile(filepath.Join(root, "backend", ".env.example"))
	require.NoError(t, err)
	assert.Equal(t, EnvTemplateStub, string(got))

	require.NoError(t, os.WriteFile(filepath.Join(root, "backend", ".env.example"), []byte("KEEP=1\n"), 0644))
	res, err = WriteStub(fsys, root, "backend/.env.example", EnvTemplateStub)
	require.NoError(t, err)
	assert.Equal(t, StubExists, res)

	got, err = os.ReadFile(filepath.Join(root, "backend", ".env.example"))
	require.NoError(t, err)
	assert.Equal(t, "KEEP=1\n", string(got))
}

func strp(s string) *string { return &s }

package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/NielsdaWheelz/devsetup/internal/exec"
	"github.com/NielsdaWheelz/devsetup/internal/fs"
	"github.com/NielsdaWheelz/devsetup/internal/paths"
)

// recordedCall is one invocation seen by mockRunner.
type recordedCall struct {
	Cmd string // name + args
	Dir string // relative to the project root
}

// mockRunner implements exec.CommandRunner for testing. Responses are keyed
// by "name args..." and, for installs, by the relative working directory.
type mockRunner struct {
	root      string
	responses map[string]exec.CmdResult
	errors    map[string]error
	calls     []recordedCall
}

func newMockRunner(root string) *mockRunner {
	return &mockRunner{
		root:      root,
		responses: make(map[string]exec.CmdResult),
		errors:    make(map[string]error),
	}
}

func (m *mockRunner) SetResponse(key string, result exec.CmdResult, err error) {
	m.responses[key] = result
	if err != nil {
		m.errors[key] = err
	}
}

func (m *mockRunner) Run(_ context.Context, name string, args []string, opts exec.RunOpts) (exec.CmdResult, error) {
	cmd := strings.TrimSpace(name + " " + strings.Join(args, " "))
	dir := ""
	if opts.Dir != "" {
		dir, _ = filepath.Rel(m.root, opts.Dir)
	}
	m.calls = append(m.calls, recordedCall{Cmd: cmd, Dir: dir})

	for _, key := range []string{dir + ":" + cmd, cmd} {
		if err, ok := m.errors[key]; ok {
			return m.responses[key], err
		}
		if result, ok := m.responses[key]; ok {
			return result, nil
		}
	}
	if name == "npm" && len(args) > 0 && args[0] == "install" {
		return exec.CmdResult{}, nil
	}
	return exec.CmdResult{ExitCode: exec.ExitStartFail}, fmt.Errorf("mock: command not configured: %s", cmd)
}

func (m *mockRunner) installDirs() []string {
	var dirs []string
	for _, c := range m.calls {
		if c.Cmd == "npm install" {
			dirs = append(dirs, c.Dir)
		}
	}
	return dirs
}

type testEnv map[string]string

func (e testEnv) Get(key string) string { return e[key] }

type fixture struct {
	root   string
	runner *mockRunner
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	deps   Deps
}

// newFixture creates a project root with backend/, src/, and the env template,
// plus isolated data/state directories.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "backend"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "backend", ".env.example"),
		[]byte("MONGODB_URI=mongodb://localhost:27017/hirescope\nJWT_SECRET=\n"), 0644))

	f := &fixture{
		root:   root,
		runner: newMockRunner(root),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	f.deps = Deps{
		Runner:   f.runner,
		FS:       fs.NewRealFS(),
		LookPath: func(name string) (string, error) { return "/usr/bin/" + name, nil },
		Env:      testEnv{},
		Logger:   zerolog.Nop(),
		Now:      func() time.Time { return time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC) },
		Cwd:      root,
		Dirs:     paths.Dirs{DataDir: t.TempDir(), StateDir: t.TempDir()},
		NoColor:  true,
		Stdin:    strings.NewReader(""),
		Stdout:   f.stdout,
		Stderr:   f.stderr,
	}
	return f
}

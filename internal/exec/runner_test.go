package exec

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ExitCode(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		expectCode int
	}{
		{"exit 0", []string{"-c", "exit 0"}, 0},
		{"exit 1", []string{"-c", "exit 1"}, 1},
		{"exit 42", []string{"-c", "exit 42"}, 42},
	}

	r := NewRealRunner()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := r.Run(context.Background(), "sh", tt.args, RunOpts{})
			require.NoError(t, err)
			assert.Equal(t, tt.expectCode, result.ExitCode)
		})
	}
}

func TestRun_CapturesOutput(t *testing.T) {
	result, err := NewRealRunner().Run(context.Background(), "sh", []string{"-c", "echo stdout; echo stderr >&2"}, RunOpts{})
	require.NoError(t, err)

	assert.Contains(t, result.Stdout, "stdout")
	assert.Contains(t, result.Stderr, "stderr")
}

func TestRun_StreamsToProvidedWriters(t *testing.T) {
	var stdout, stderr bytes.Buffer
	opts := RunOpts{}.Inherit(strings.NewReader("piped\n"), &stdout, &stderr)

	result, err := NewRealRunner().Run(context.Background(), "sh", []string{"-c", "cat; echo oops >&2"}, opts)
	require.NoError(t, err)

	assert.Equal(t, "piped\n", stdout.String())
	assert.Equal(t, "oops\n", stderr.String())
	assert.Empty(t, result.Stdout, "streamed output must not be captured")
	assert.Empty(t, result.Stderr)
}

func TestRun_DirDoesNotChangeParentCwd(t *testing.T) {
	before, err := os.Getwd()
	require.NoError(t, err)

	dir := t.TempDir()
	result, err := NewRealRunner().Run(context.Background(), "sh", []string{"-c", "pwd"}, RunOpts{Dir: dir})
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, resolved, strings.TrimSpace(result.Stdout))

	after, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRun_Env(t *testing.T) {
	result, err := NewRealRunner().Run(context.Background(), "sh", []string{"-c", "echo $TEST_VAR"}, RunOpts{
		Env: map[string]string{"TEST_VAR": "hello_world"},
	})
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, "hello_world")
}

func TestRun_TimeoutExit124(t *testing.T) {
	result, err := NewRealRunner().Run(context.Background(), "sh", []string{"-c", "sleep 10"}, RunOpts{
		Timeout: 50 * time.Millisecond,
	})

	require.NoError(t, err)
	assert.Equal(t, ExitTimeout, result.ExitCode)
	assert.True(t, result.TimedOut)
}

func TestRun_CanceledExit125(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	var result CmdResult
	var err error

	go func() {
		result, err = NewRealRunner().Run(ctx, "sh", []string{"-c", "sleep 10"}, RunOpts{})
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, ExitCanceled, result.ExitCode)
}

func TestRun_StartFailure(t *testing.T) {
	result, err := NewRealRunner().Run(context.Background(), "no_such_command_abc123", nil, RunOpts{})

	assert.Error(t, err)
	assert.Equal(t, ExitStartFail, result.ExitCode)
}

func TestLookPath(t *testing.T) {
	_, err := LookPath("sh")
	assert.NoError(t, err)

	_, err = LookPath("no_such_command_abc123")
	assert.Error(t, err)
}

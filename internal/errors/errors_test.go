package errors

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ENotProjectRoot, "run from the project root")
	assert.Equal(t, "E_NOT_PROJECT_ROOT: run from the project root", err.Error())
}

func TestWrap(t *testing.T) {
	cause := errors.New("exit status 1")
	err := Wrap(EInstallFailed, "failed to install backend dependencies", cause)

	assert.Equal(t, "E_INSTALL_FAILED: failed to install backend dependencies", err.Error())
	assert.ErrorIs(t, err, cause)

	var se *SetupError
	require.True(t, errors.As(err, &se))
	assert.Same(t, cause, se.Cause)
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil error", nil, ""},
		{"setup error", New(EUsage, "x"), EUsage},
		{"wrapped setup error", Wrap(EInstallFailed, "y", errors.New("z")), EInstallFailed},
		{"fmt wrapped", fmtWrap(New(ELocked, "held")), ELocked},
		{"plain error", errors.New("plain"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetCode(tt.err))
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"E_USAGE", New(EUsage, "x"), 2},
		{"E_NOT_PROJECT_ROOT", New(ENotProjectRoot, "x"), 1},
		{"E_INSTALL_FAILED", New(EInstallFailed, "x"), 1},
		{"plain error", errors.New("x"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestPrint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"E_USAGE", New(EUsage, "bad args"), "error_code: E_USAGE\nbad args\n"},
		{"E_INSTALL_FAILED", New(EInstallFailed, "npm install failed"), "error_code: E_INSTALL_FAILED\nnpm install failed\n"},
		{"plain error", errors.New("boom"), "boom\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Print(&buf, tt.err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestNewWithDetails_CopiesMap(t *testing.T) {
	details := map[string]string{"dir": "backend"}
	err := NewWithDetails(ENotProjectRoot, "missing", details)
	details["dir"] = "modified"

	se, ok := AsSetupError(err)
	require.True(t, ok)
	assert.Equal(t, "backend", se.Details["dir"])
}

func TestNewWithDetails_NilDetails(t *testing.T) {
	se, ok := AsSetupError(NewWithDetails(EUsage, "test", map[string]string{}))
	require.True(t, ok)
	assert.Nil(t, se.Details)
}

func TestAsSetupError(t *testing.T) {
	t.Run("setup error", func(t *testing.T) {
		se, ok := AsSetupError(WrapWithDetails(EEnvCopyFailed, "copy", errors.New("eperm"), map[string]string{"target": "backend/.env"}))
		require.True(t, ok)
		assert.Equal(t, EEnvCopyFailed, se.Code)
		assert.Equal(t, "backend/.env", se.Details["target"])
	})

	t.Run("plain error", func(t *testing.T) {
		se, ok := AsSetupError(errors.New("regular"))
		assert.False(t, ok)
		assert.Nil(t, se)
	})

	t.Run("nil", func(t *testing.T) {
		se, ok := AsSetupError(nil)
		assert.False(t, ok)
		assert.Nil(t, se)
	})
}

type wrapped struct{ err error }

func (w wrapped) Error() string { return "context: " + w.err.Error() }
func (w wrapped) Unwrap() error { return w.err }

func fmtWrap(err error) error { return wrapped{err} }

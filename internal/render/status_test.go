package render

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NielsdaWheelz/devsetup/internal/store"
)

func TestWriteStatusHuman(t *testing.T) {
	meta := store.NewRunMeta("20260109120000-aaaa", "proj", "/work/hirescope", time.Date(2026, 1, 9, 12, 0, 0, 0, time.UTC))
	meta.Outcome = store.OutcomeFailed
	meta.FinishedAt = "2026-01-09T12:00:05Z"
	meta.ErrorCode = "E_INSTALL_FAILED"
	meta.Error = "failed to install backend dependencies"
	one := 1
	meta.Steps = []store.StepRecord{
		{Name: "preflight", Status: store.StepOK},
		{Name: "install:backend", Status: store.StepFailed, ExitCode: &one, DurationMs: 4200},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteStatusHuman(&buf, meta, ""))
	out := buf.String()

	assert.Contains(t, out, "run_id: 20260109120000-aaaa\n")
	assert.Contains(t, out, "config: built-in defaults\n")
	assert.Contains(t, out, "outcome: failed\n")
	assert.Contains(t, out, "status: failed\n")
	assert.Contains(t, out, "error_code: E_INSTALL_FAILED\n")
	assert.Contains(t, out, "env: -\n")
	assert.Contains(t, out, "preflight: ok\n")
	assert.Contains(t, out, "install:backend: failed (exit 1, 4s)\n")
}

func TestWriteStatusHuman_NoRuns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStatusHuman(&buf, nil, ""))
	assert.Equal(t, "no setup runs recorded\n", buf.String())
}

func TestWriteStatusJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStatusJSON(&buf, nil, ""))

	var env map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Equal(t, "1.0", env["schema_version"])
	assert.Nil(t, env["status"])
	assert.Nil(t, env["data"])
}

func TestWriteStatus_InterruptedRun(t *testing.T) {
	meta := store.NewRunMeta("20260109120000-aaaa", "proj", "/work/hirescope", time.Date(2026, 1, 9, 12, 0, 0, 0, time.UTC))

	var buf bytes.Buffer
	require.NoError(t, WriteStatusHuman(&buf, meta, "interrupted"))
	assert.Contains(t, buf.String(), "outcome: running\n")
	assert.Contains(t, buf.String(), "status: interrupted\n")

	buf.Reset()
	require.NoError(t, WriteStatusJSON(&buf, meta, "interrupted"))
	var decoded StatusJSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.NotNil(t, decoded.Status)
	assert.Equal(t, "interrupted", *decoded.Status)
	require.NotNil(t, decoded.Data)
	assert.Equal(t, "20260109120000-aaaa", decoded.Data.RunID)
}

package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NielsdaWheelz/devsetup/internal/errors"
	"github.com/NielsdaWheelz/devsetup/internal/exec"
	"github.com/NielsdaWheelz/devsetup/internal/render"
	"github.com/NielsdaWheelz/devsetup/internal/store"
)

func TestStatus_NoRuns(t *testing.T) {
	f := newFixture(t)

	err := Status(context.Background(), f.deps, StatusOpts{})
	assert.Equal(t, errors.ENoRuns, errors.GetCode(err))

	require.NoError(t, Status(context.Background(), f.deps, StatusOpts{JSON: true}))
	assert.Contains(t, f.stdout.String(), `"data": null`)
}

func TestStatus_AfterFailedSetup(t *testing.T) {
	f := newFixture(t)
	f.runner.SetResponse("backend:npm install", exec.CmdResult{ExitCode: 1}, nil)
	_ = Setup(context.Background(), f.deps, SetupOpts{})
	f.stdout.Reset()

	require.NoError(t, Status(context.Background(), f.deps, StatusOpts{}))
	out := f.stdout.String()
	assert.Contains(t, out, "outcome: failed\n")
	assert.Contains(t, out, "error_code: E_INSTALL_FAILED\n")
	assert.Contains(t, out, "install:backend: failed (exit 1)\n")
	assert.NotContains(t, out, "install:frontend")
}

func TestHistory(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, Setup(context.Background(), f.deps, SetupOpts{SkipInstall: true}))
	require.NoError(t, Setup(context.Background(), f.deps, SetupOpts{DryRun: true}))

	// a run directory without meta.json
	st := f.deps.store()
	_, err := st.EnsureRunDir(f.deps.identity().ProjectID, "29990101000000-dead")
	require.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(st.RunDir(f.deps.identity().ProjectID, "29990101000000-dead"), "meta.json"))
	require.True(t, os.IsNotExist(statErr))

	f.stdout.Reset()
	require.NoError(t, History(context.Background(), f.deps, HistoryOpts{JSON: true}))

	var env render.HistoryJSONEnvelope
	require.NoError(t, json.Unmarshal(f.stdout.Bytes(), &env))
	require.Len(t, env.Data, 3)
	assert.Equal(t, "29990101000000-dead", env.Data[0].RunID)
	assert.True(t, env.Data[0].Broken)

	f.stdout.Reset()
	require.NoError(t, History(context.Background(), f.deps, HistoryOpts{Limit: 1}))
	lines := strings.Split(strings.TrimRight(f.stdout.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "broken")
}

func TestHistory_Empty(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, History(context.Background(), f.deps, HistoryOpts{}))
	assert.Equal(t, "no setup runs recorded\n", f.stdout.String())
}

func TestHistory_NegativeLimit(t *testing.T) {
	f := newFixture(t)
	err := History(context.Background(), f.deps, HistoryOpts{Limit: -1})
	assert.Equal(t, errors.EUsage, errors.GetCode(err))
}

func TestStatus_SelectsRunByID(t *testing.T) {
	f := newFixture(t)
	st := f.deps.store()
	pid := f.deps.identity().ProjectID
	for _, id := range []string{"20260101000000-aaaa", "20260102000000-bbbb", "20260102000000-bbbc"} {
		_, err := st.EnsureRunDir(pid, id)
		require.NoError(t, err)
		meta := store.NewRunMeta(id, pid, f.root, f.deps.now())
		st.Finish(meta, nil)
		require.NoError(t, st.WriteMeta(meta))
	}
	_, err := st.EnsureRunDir(pid, "20260103000000-dead")
	require.NoError(t, err)

	require.NoError(t, Status(context.Background(), f.deps, StatusOpts{RunID: "aaaa"}))
	assert.Contains(t, f.stdout.String(), "run_id: 20260101000000-aaaa\n")

	f.stdout.Reset()
	require.NoError(t, Status(context.Background(), f.deps, StatusOpts{RunID: "20260102000000-bbbc", JSON: true}))
	assert.Contains(t, f.stdout.String(), `"run_id": "20260102000000-bbbc"`)

	err = Status(context.Background(), f.deps, StatusOpts{RunID: "20260102"})
	assert.Equal(t, errors.ERunIDAmbiguous, errors.GetCode(err))

	err = Status(context.Background(), f.deps, StatusOpts{RunID: "ffff"})
	assert.Equal(t, errors.ERunNotFound, errors.GetCode(err))

	err = Status(context.Background(), f.deps, StatusOpts{RunID: "dead"})
	assert.Equal(t, errors.ERunBroken, errors.GetCode(err))

	// latest readable run is shown when the newest is broken
	f.stdout.Reset()
	require.NoError(t, Status(context.Background(), f.deps, StatusOpts{}))
	assert.Contains(t, f.stdout.String(), "run_id: 20260102000000-bbbc\n")
}

func TestStatus_InterruptedRun(t *testing.T) {
	f := newFixture(t)
	st := f.deps.store()
	pid := f.deps.identity().ProjectID
	_, err := st.EnsureRunDir(pid, "20260101000000-aaaa")
	require.NoError(t, err)
	require.NoError(t, st.WriteMeta(store.NewRunMeta("20260101000000-aaaa", pid, f.root, f.deps.now())))

	require.NoError(t, Status(context.Background(), f.deps, StatusOpts{}))
	assert.Contains(t, f.stdout.String(), "outcome: running\n")
	assert.Contains(t, f.stdout.String(), "status: interrupted\n")

	f.stdout.Reset()
	require.NoError(t, History(context.Background(), f.deps, HistoryOpts{}))
	assert.Contains(t, f.stdout.String(), "interrupted")
}

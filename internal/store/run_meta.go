package store

import (
	"encoding/json"
	"os"
	"time"

	"github.com/NielsdaWheelz/devsetup/internal/errors"
	"github.com/NielsdaWheelz/devsetup/internal/fs"
)

// Outcome values for RunMeta.Outcome.
const (
	OutcomeRunning   = "running"
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
)

// Step status values for StepRecord.Status.
const (
	StepOK      = "ok"
	StepFailed  = "failed"
	StepSkipped = "skipped"
)

// RunMeta is the persisted record of one setup run (meta.json).
type RunMeta struct {
	SchemaVersion string `json:"schema_version"`
	RunID         string `json:"run_id"`
	ProjectID     string `json:"project_id"`
	ProjectRoot   string `json:"project_root"`

	// ConfigSource is the config file used, empty for built-in defaults.
	ConfigSource string `json:"config_source,omitempty"`

	StartedAt  string `json:"started_at"`
	FinishedAt string `json:"finished_at,omitempty"`

	// Outcome is running until the run finishes.
	Outcome   string `json:"outcome"`
	ErrorCode string `json:"error_code,omitempty"`
	Error     string `json:"error,omitempty"`

	DryRun bool         `json:"dry_run,omitempty"`
	Steps  []StepRecord `json:"steps"`

	// Env is the env bootstrap state (created, exists, no_template, disabled, planned).
	Env string `json:"env,omitempty"`

	// EnvMissingKeys lists template keys absent from the env target.
	EnvMissingKeys []string `json:"env_missing_keys,omitempty"`
}

// StepRecord is the outcome of one pipeline step.
type StepRecord struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	Command    string `json:"command,omitempty"`
	ExitCode   *int   `json:"exit_code,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	TimedOut   bool   `json:"timed_out,omitempty"`
}

// NewRunMeta creates a RunMeta in the running state.
func NewRunMeta(runID, projectID, projectRoot string, startedAt time.Time) *RunMeta {
	return &RunMeta{
		SchemaVersion: SchemaVersion,
		RunID:         runID,
		ProjectID:     projectID,
		ProjectRoot:   projectRoot,
		StartedAt:     startedAt.UTC().Format(time.RFC3339),
		Outcome:       OutcomeRunning,
		Steps:         []StepRecord{},
	}
}

// EnsureRunDir creates the run directory. An existing directory is a run_id
// collision and fails with E_PERSIST_FAILED.
func (s *Store) EnsureRunDir(projectID, runID string) (string, error) {
	runDir := s.RunDir(projectID, runID)

	runsDir := s.RunsDir(projectID)
	if err := s.FS.MkdirAll(runsDir, 0o700); err != nil {
		return "", errors.WrapWithDetails(
			errors.EPersistFailed,
			"failed to create runs directory",
			err,
			map[string]string{"runs_dir": runsDir},
		)
	}

	// os.Mkdir fails if the directory already exists.
	if err := os.Mkdir(runDir, 0o700); err != nil {
		if os.IsExist(err) {
			return "", errors.NewWithDetails(
				errors.EPersistFailed,
				"run directory already exists (run_id collision)",
				map[string]string{"run_dir": runDir},
			)
		}
		return "", errors.WrapWithDetails(
			errors.EPersistFailed,
			"failed to create run directory",
			err,
			map[string]string{"run_dir": runDir},
		)
	}

	return runDir, nil
}

// WriteMeta writes meta.json for a run atomically.
func (s *Store) WriteMeta(meta *RunMeta) error {
	metaPath := s.RunMetaPath(meta.ProjectID, meta.RunID)

	if err := fs.WriteJSONAtomic(s.FS, metaPath, meta, 0o644); err != nil {
		return errors.WrapWithDetails(
			errors.EPersistFailed,
			"failed to write meta.json atomically",
			err,
			map[string]string{"meta_path": metaPath},
		)
	}
	return nil
}

// ReadMeta reads and parses meta.json for a run.
// Returns E_NO_RUNS if the meta file doesn't exist, E_STORE_CORRUPT if it
// can't be parsed.
func (s *Store) ReadMeta(projectID, runID string) (*RunMeta, error) {
	metaPath := s.RunMetaPath(projectID, runID)

	data, err := s.FS.ReadFile(metaPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewWithDetails(
				errors.ENoRuns,
				"run not found (meta.json does not exist)",
				map[string]string{"meta_path": metaPath},
			)
		}
		return nil, errors.WrapWithDetails(
			errors.EStoreCorrupt,
			"failed to read meta.json",
			err,
			map[string]string{"meta_path": metaPath},
		)
	}

	var meta RunMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.WrapWithDetails(
			errors.EStoreCorrupt,
			"failed to parse meta.json",
			err,
			map[string]string{"meta_path": metaPath},
		)
	}
	if meta.SchemaVersion == "" || meta.RunID == "" {
		return nil, errors.NewWithDetails(
			errors.EStoreCorrupt,
			"meta.json is missing required fields",
			map[string]string{"meta_path": metaPath},
		)
	}

	return &meta, nil
}

// Finish marks meta as finished at now with the outcome implied by err.
func (s *Store) Finish(meta *RunMeta, err error) {
	meta.FinishedAt = s.Now().UTC().Format(time.RFC3339)
	if err == nil {
		meta.Outcome = OutcomeSucceeded
		meta.ErrorCode = ""
		meta.Error = ""
		return
	}
	meta.Outcome = OutcomeFailed
	meta.ErrorCode = string(errors.GetCode(err))
	if meta.ErrorCode == "" {
		meta.ErrorCode = string(errors.EInternal)
	}
	if se, ok := errors.AsSetupError(err); ok {
		meta.Error = se.Msg
	} else {
		meta.Error = err.Error()
	}
}

// Package store persists per-project setup history: project.json and one
// meta.json per run. Files are written atomically via temp file + rename.
package store

import (
	"path/filepath"
	"time"

	"github.com/NielsdaWheelz/devsetup/internal/fs"
)

// SchemaVersion is written to every persisted record.
const SchemaVersion = "1.0"

// Store handles persistence of project records and run metadata.
type Store struct {
	FS      fs.FS            // filesystem interface for stubbing
	DataDir string           // resolved DEVSETUP_DATA_DIR
	Now     func() time.Time // injectable clock for deterministic tests
}

// NewStore creates a new Store with the given dependencies.
func NewStore(filesystem fs.FS, dataDir string, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		FS:      filesystem,
		DataDir: dataDir,
		Now:     now,
	}
}

// ProjectDir returns the directory for a project's data.
// Format: ${DEVSETUP_DATA_DIR}/projects/<project_id>/
func (s *Store) ProjectDir(projectID string) string {
	return filepath.Join(s.DataDir, "projects", projectID)
}

// ProjectRecordPath returns the path to a project's project.json.
func (s *Store) ProjectRecordPath(projectID string) string {
	return filepath.Join(s.ProjectDir(projectID), "project.json")
}

// RunsDir returns the runs directory for a project.
func (s *Store) RunsDir(projectID string) string {
	return filepath.Join(s.ProjectDir(projectID), "runs")
}

// RunDir returns the directory for a specific run.
func (s *Store) RunDir(projectID, runID string) string {
	return filepath.Join(s.RunsDir(projectID), runID)
}

// RunMetaPath returns the path to a run's meta.json.
// Format: ${DEVSETUP_DATA_DIR}/projects/<project_id>/runs/<run_id>/meta.json
func (s *Store) RunMetaPath(projectID, runID string) string {
	return filepath.Join(s.RunDir(projectID, runID), "meta.json")
}

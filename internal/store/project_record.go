package store

import (
	"encoding/json"
	"os"
	"time"

	"github.com/NielsdaWheelz/devsetup/internal/errors"
	"github.com/NielsdaWheelz/devsetup/internal/fs"
)

// ProjectRecord is the project.json file for a project.
type ProjectRecord struct {
	SchemaVersion string `json:"schema_version"`
	ProjectKey    string `json:"project_key"`
	ProjectID     string `json:"project_id"`
	RootLastSeen  string `json:"root_last_seen"`
	ConfigSource  string `json:"config_source,omitempty"`
	LastRunID     string `json:"last_run_id,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// ProjectRecordInput contains the fields UpsertProjectRecord refreshes.
type ProjectRecordInput struct {
	ProjectKey   string
	ProjectID    string
	RootLastSeen string
	ConfigSource string
	LastRunID    string
}

// LoadProjectRecord reads project.json for the given projectID.
// Returns (record, true, nil) if the file exists and is valid,
// (zero, false, nil) if it does not exist, and E_STORE_CORRUPT otherwise.
func (s *Store) LoadProjectRecord(projectID string) (ProjectRecord, bool, error) {
	path := s.ProjectRecordPath(projectID)

	data, err := s.FS.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ProjectRecord{}, false, nil
		}
		return ProjectRecord{}, false, errors.Wrap(errors.EStoreCorrupt, "failed to read project.json", err)
	}

	var rec ProjectRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return ProjectRecord{}, false, errors.Wrap(errors.EStoreCorrupt, "invalid json in project.json", err)
	}

	if rec.SchemaVersion == "" {
		return ProjectRecord{}, false, errors.New(errors.EStoreCorrupt, "project.json: missing schema_version")
	}
	if rec.SchemaVersion != SchemaVersion {
		return ProjectRecord{}, false, errors.New(errors.EStoreCorrupt, "project.json: unsupported schema_version: "+rec.SchemaVersion)
	}

	return rec, true, nil
}

// UpsertProjectRecord builds the record to save. If existing is non-nil its
// CreatedAt is preserved; UpdatedAt is always now. An empty LastRunID keeps
// the existing one.
func (s *Store) UpsertProjectRecord(existing *ProjectRecord, input ProjectRecordInput) ProjectRecord {
	now := s.Now().UTC().Format(time.RFC3339)

	rec := ProjectRecord{
		SchemaVersion: SchemaVersion,
		ProjectKey:    input.ProjectKey,
		ProjectID:     input.ProjectID,
		RootLastSeen:  input.RootLastSeen,
		ConfigSource:  input.ConfigSource,
		LastRunID:     input.LastRunID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if existing != nil {
		rec.CreatedAt = existing.CreatedAt
		if rec.LastRunID == "" {
			rec.LastRunID = existing.LastRunID
		}
	}
	return rec
}

// SaveProjectRecord writes project.json atomically, creating the project
// directory if needed.
func (s *Store) SaveProjectRecord(rec ProjectRecord) error {
	dir := s.ProjectDir(rec.ProjectID)
	if err := s.FS.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(errors.EPersistFailed, "failed to create project directory", err)
	}

	path := s.ProjectRecordPath(rec.ProjectID)
	if err := fs.WriteJSONAtomic(s.FS, path, rec, 0o644); err != nil {
		return errors.WrapWithDetails(errors.EPersistFailed, "failed to write project.json", err,
			map[string]string{"path": path})
	}
	return nil
}

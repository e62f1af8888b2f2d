package store

import (
	"os"
	"sort"
)

// RunSummary is one entry of a project's run history. Broken runs have a
// directory but no readable meta.json; only RunID and Broken are set.
type RunSummary struct {
	RunID  string
	Broken bool
	Meta   *RunMeta
}

// ListRuns returns the project's runs, newest first. Run IDs start with a UTC
// timestamp, so ordering is by run ID descending. A missing runs directory
// yields an empty list.
func (s *Store) ListRuns(projectID string) ([]RunSummary, error) {
	entries, err := s.FS.ReadDir(s.RunsDir(projectID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []RunSummary
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.ReadMeta(projectID, e.Name())
		if err != nil {
			runs = append(runs, RunSummary{RunID: e.Name(), Broken: true})
			continue
		}
		runs = append(runs, RunSummary{RunID: e.Name(), Meta: meta})
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].RunID > runs[j].RunID })
	return runs, nil
}

// LatestRun returns the newest readable run. Broken runs are skipped.
// Returns (nil, nil) when the project has no readable runs.
func (s *Store) LatestRun(projectID string) (*RunMeta, error) {
	runs, err := s.ListRuns(projectID)
	if err != nil {
		return nil, err
	}
	for _, r := range runs {
		if !r.Broken {
			return r.Meta, nil
		}
	}
	return nil, nil
}

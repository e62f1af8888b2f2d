// Package lock provides a per-project lock so two setups never run at once.
package lock

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// DefaultStaleAfter is how old a lock may get before it is taken over.
// A dependency install rarely runs longer than this.
const DefaultStaleAfter = 2 * time.Hour

// maxAttempts bounds stale-lock takeovers within one Lock call.
const maxAttempts = 3

// Info is the metadata stored in a lock file.
type Info struct {
	PID       int       `json:"pid"`
	CreatedAt time.Time `json:"created_at"`
	Cmd       string    `json:"cmd,omitempty"`
}

// ErrLocked indicates a live lock is held by another process.
type ErrLocked struct {
	ProjectID string
	Info      *Info // nil if lock file is unreadable
	Path      string
}

func (e *ErrLocked) Error() string {
	if e.Info != nil {
		return fmt.Sprintf("project %s is locked by pid %d since %s (lock file: %s)",
			e.ProjectID, e.Info.PID, e.Info.CreatedAt.Format(time.RFC3339), e.Path)
	}
	return fmt.Sprintf("project %s is locked (lock file: %s)", e.ProjectID, e.Path)
}

// ProjectLock guards mutating commands for one project.
type ProjectLock struct {
	DataDir    string
	StaleAfter time.Duration
	Now        func() time.Time
	IsPIDAlive func(pid int) bool
}

// NewProjectLock returns a ProjectLock with default staleness rules.
func NewProjectLock(dataDir string) ProjectLock {
	return ProjectLock{
		DataDir:    dataDir,
		StaleAfter: DefaultStaleAfter,
		Now:        time.Now,
		IsPIDAlive: isPIDAlive,
	}
}

// Path returns the lock file path for a project.
func (l ProjectLock) Path(projectID string) string {
	return filepath.Join(l.DataDir, "projects", projectID, ".lock")
}

// Lock acquires the project lock and returns an unlock function.
// cmd is stored in the lock file for debugging (may be empty).
// If a live, non-stale lock exists it returns *ErrLocked.
func (l ProjectLock) Lock(projectID, cmd string) (unlock func() error, err error) {
	lockPath := l.Path(projectID)

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create lock directory: %w", err)
		}

		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			return l.writeInfo(f, lockPath, cmd)
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file: %w", err)
		}

		info, readErr := readInfo(lockPath)
		if readErr != nil {
			// Unreadable (e.g. half-written by a crashed process): fall back to mtime.
			stat, statErr := os.Stat(lockPath)
			if statErr != nil || l.Now().Sub(stat.ModTime()) <= l.StaleAfter {
				return nil, &ErrLocked{ProjectID: projectID, Path: lockPath}
			}
		} else if !l.isStale(info) {
			return nil, &ErrLocked{ProjectID: projectID, Info: info, Path: lockPath}
		}

		if removeErr := os.Remove(lockPath); removeErr != nil && !os.IsNotExist(removeErr) {
			return nil, &ErrLocked{ProjectID: projectID, Info: info, Path: lockPath}
		}
	}

	return nil, &ErrLocked{ProjectID: projectID, Path: lockPath}
}

// Held reports whether a live process holds the lock for projectID.
// Stale and unreadable lock files count as not held.
func (l ProjectLock) Held(projectID string) bool {
	info, err := readInfo(l.Path(projectID))
	if err != nil {
		return false
	}
	return !l.isStale(info)
}

func (l ProjectLock) writeInfo(f *os.File, lockPath, cmd string) (func() error, error) {
	data, _ := json.Marshal(Info{PID: os.Getpid(), CreatedAt: l.Now(), Cmd: cmd})
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("failed to write lock file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(lockPath)
		return nil, fmt.Errorf("failed to close lock file: %w", err)
	}

	return func() error {
		err := os.Remove(lockPath)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}, nil
}

func readInfo(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (l ProjectLock) isStale(info *Info) bool {
	if !l.IsPIDAlive(info.PID) {
		return true
	}
	return l.Now().Sub(info.CreatedAt) > l.StaleAfter
}

// isPIDAlive uses the signal 0 trick: it succeeds if the process exists
// and we may signal it. EPERM still means the process exists.
func isPIDAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return errors.Is(err, syscall.EPERM)
}

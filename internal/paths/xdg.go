// Package paths provides directory resolution for devsetup following XDG conventions.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "devsetup"

// Dirs holds the resolved directory paths for devsetup data and state.
type Dirs struct {
	// DataDir holds per-project run records and locks.
	DataDir string
	// StateDir holds the log file.
	StateDir string
}

// Env is the interface for environment variable lookups.
// Implementations must return "" for unset variables.
type Env interface {
	Get(key string) string
}

// OSEnv implements Env using os.Getenv.
type OSEnv struct{}

func (OSEnv) Get(key string) string {
	return os.Getenv(key)
}

// ResolveDirs computes the data and state directories based on
// environment variables and platform defaults.
//
// Resolution order for data directory:
//  1. DEVSETUP_DATA_DIR env var (if set)
//  2. macOS: ~/Library/Application Support/devsetup
//  3. XDG_DATA_HOME/devsetup (if set)
//  4. ~/.local/share/devsetup
//
// Resolution order for state directory:
//  1. DEVSETUP_STATE_DIR env var (if set)
//  2. macOS: ~/Library/Logs/devsetup
//  3. XDG_STATE_HOME/devsetup (if set)
//  4. ~/.local/state/devsetup
//
// This function does not touch the filesystem (no mkdir).
// ~ inside env vars is treated as literal (not expanded).
func ResolveDirs(env Env, homeDir string) Dirs {
	return ResolveDirsWithOS(env, homeDir, IsDarwin())
}

// IsDarwin returns true if the current OS is macOS.
func IsDarwin() bool {
	return runtime.GOOS == "darwin"
}

// ResolveDirsWithOS is like ResolveDirs but accepts an explicit OS flag for testing.
func ResolveDirsWithOS(env Env, homeDir string, isDarwin bool) Dirs {
	return Dirs{
		DataDir: resolve(env, homeDir, isDarwin, dirSpec{
			override: "DEVSETUP_DATA_DIR",
			darwin:   []string{"Library", "Application Support"},
			xdg:      "XDG_DATA_HOME",
			fallback: []string{".local", "share"},
		}),
		StateDir: resolve(env, homeDir, isDarwin, dirSpec{
			override: "DEVSETUP_STATE_DIR",
			darwin:   []string{"Library", "Logs"},
			xdg:      "XDG_STATE_HOME",
			fallback: []string{".local", "state"},
		}),
	}
}

type dirSpec struct {
	override string
	darwin   []string
	xdg      string
	fallback []string
}

func resolve(env Env, homeDir string, isDarwin bool, spec dirSpec) string {
	if v := env.Get(spec.override); v != "" {
		return v
	}
	if isDarwin {
		return filepath.Join(append(append([]string{homeDir}, spec.darwin...), appName)...)
	}
	if v := env.Get(spec.xdg); v != "" {
		return filepath.Join(v, appName)
	}
	return filepath.Join(append(append([]string{homeDir}, spec.fallback...), appName)...)
}

// Resolve returns the directories for the current user and process environment.
func Resolve() (Dirs, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Dirs{}, err
	}
	return ResolveDirs(OSEnv{}, homeDir), nil
}

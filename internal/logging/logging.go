// Package logging configures the zerolog logger used by devsetup commands.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LogFileEnv overrides the log file location.
const LogFileEnv = "DEVSETUP_LOG_FILE"

// FileName is the log file name inside the state directory.
const FileName = "devsetup.log"

var levelMapping = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warning": zerolog.WarnLevel,
	"warn":    zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
}

// Options controls Setup.
type Options struct {
	Level   string    // empty means "info"
	Path    string    // log file; empty disables the file sink
	Verbose bool      // mirror records to Console in human form
	Console io.Writer // usually stderr
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(name string) (zerolog.Level, error) {
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	lev, ok := levelMapping[strings.ToLower(name)]
	if !ok {
		return zerolog.NoLevel, fmt.Errorf("invalid logging level: %s", name)
	}
	return lev, nil
}

// DefaultPath returns the log file path for stateDir, honoring LogFileEnv.
func DefaultPath(stateDir string, getenv func(string) string) string {
	if getenv != nil {
		if p := getenv(LogFileEnv); p != "" {
			return p
		}
	}
	if stateDir == "" {
		return ""
	}
	return filepath.Join(stateDir, FileName)
}

// Setup builds a logger from opts. The returned close func releases the log
// file and is always non-nil. If the file cannot be opened, records go to the
// console sink only (or nowhere) and a warning is logged there.
func Setup(opts Options) (zerolog.Logger, func(), error) {
	lev, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), func() {}, err
	}

	var writers []io.Writer
	closeFn := func() {}
	var openErr error

	if opts.Path != "" {
		f, err := openLogFile(opts.Path)
		if err != nil {
			openErr = err
		} else {
			writers = append(writers, f)
			closeFn = func() { _ = f.Close() }
		}
	}

	if opts.Verbose && opts.Console != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        opts.Console,
			TimeFormat: time.RFC3339,
		})
	}

	var logger zerolog.Logger
	switch len(writers) {
	case 0:
		if openErr != nil && opts.Console != nil {
			// keep the failure visible even without --verbose
			logger = zerolog.New(zerolog.ConsoleWriter{Out: opts.Console, TimeFormat: time.RFC3339}).
				Level(zerolog.WarnLevel)
		} else {
			logger = zerolog.Nop()
		}
	case 1:
		logger = zerolog.New(writers[0])
	default:
		logger = zerolog.New(zerolog.MultiLevelWriter(writers...))
	}
	if len(writers) > 0 {
		logger = logger.Level(lev)
	}
	logger = logger.With().Timestamp().Logger()

	if openErr != nil {
		logger.Warn().Err(openErr).Str("path", opts.Path).Msg("failed to open log file")
	}
	return logger, closeFn, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}

// Package errors defines the stable error code system for devsetup.
package errors

import (
	"errors"
	"fmt"
	"io"
)

// Code is a stable error code string.
type Code string

// Error codes. Stable public contract; scripts may match on them.
const (
	EUsage    Code = "E_USAGE"
	EInternal Code = "E_INTERNAL"
	ECanceled Code = "E_CANCELED"

	// Preflight
	ENotProjectRoot Code = "E_NOT_PROJECT_ROOT"

	// Dependency installation
	EInstallFailed     Code = "E_INSTALL_FAILED"
	EInstallerNotFound Code = "E_INSTALLER_NOT_FOUND"
	EInstallTimeout    Code = "E_INSTALL_TIMEOUT"
	EEnvCopyFailed     Code = "E_ENV_COPY_FAILED"

	// Configuration
	EConfigNotFound Code = "E_CONFIG_NOT_FOUND"
	EInvalidConfig  Code = "E_INVALID_CONFIG"
	EConfigExists   Code = "E_CONFIG_EXISTS"

	// Run state
	ELocked        Code = "E_LOCKED"
	EPersistFailed Code = "E_PERSIST_FAILED"
	EStoreCorrupt  Code = "E_STORE_CORRUPT"
	ENoRuns        Code = "E_NO_RUNS"

	// Run lookup
	ERunNotFound    Code = "E_RUN_NOT_FOUND"
	ERunIDAmbiguous Code = "E_RUN_ID_AMBIGUOUS"
	ERunBroken      Code = "E_RUN_BROKEN"
)

// SetupError is the standard error type for devsetup errors.
type SetupError struct {
	Code    Code
	Msg     string
	Cause   error
	Details map[string]string // optional structured context
}

// Error returns the stable error format: "CODE: message".
func (e *SetupError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *SetupError) Unwrap() error {
	return e.Cause
}

// New creates a new SetupError with the given code and message.
func New(code Code, msg string) error {
	return &SetupError{Code: code, Msg: msg}
}

// NewWithDetails creates a new SetupError with code, message, and details.
// Details map is copied (nil if empty).
func NewWithDetails(code Code, msg string, details map[string]string) error {
	return &SetupError{Code: code, Msg: msg, Details: copyDetails(details)}
}

// Wrap creates a new SetupError wrapping an underlying error.
func Wrap(code Code, msg string, err error) error {
	return &SetupError{Code: code, Msg: msg, Cause: err}
}

// WrapWithDetails creates a new SetupError wrapping an underlying error with details.
func WrapWithDetails(code Code, msg string, err error, details map[string]string) error {
	return &SetupError{Code: code, Msg: msg, Cause: err, Details: copyDetails(details)}
}

// GetCode extracts the error code from an error, or empty string if not a SetupError.
func GetCode(err error) Code {
	var se *SetupError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// AsSetupError returns (*SetupError, true) if err is or wraps a SetupError.
func AsSetupError(err error) (*SetupError, bool) {
	var se *SetupError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func copyDetails(details map[string]string) map[string]string {
	if len(details) == 0 {
		return nil
	}
	cp := make(map[string]string, len(details))
	for k, v := range details {
		cp[k] = v
	}
	return cp
}

// ExitCode returns the process exit code for an error.
// Returns 0 if err is nil, 2 for E_USAGE, 1 for all other errors.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if GetCode(err) == EUsage {
		return 2
	}
	return 1
}

// Print writes the error to w in the stable stderr format:
//
//	error_code: <CODE>
//	<message>
func Print(w io.Writer, err error) {
	if err == nil {
		return
	}
	var se *SetupError
	if errors.As(err, &se) {
		fmt.Fprintf(w, "error_code: %s\n", se.Code)
		fmt.Fprintln(w, se.Msg)
	} else {
		fmt.Fprintln(w, err.Error())
	}
}

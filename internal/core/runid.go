// Package core provides small foundational helpers shared across devsetup.
package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewRunID returns "<yyyymmddhhmmss>-<rand4>" in UTC time.
// Example: "20260109013207-a3f2"
// The suffix is the first four hex digits of a random (v4) UUID.
func NewRunID(now time.Time) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	ts := now.UTC().Format("20060102150405")
	return ts + "-" + strings.ReplaceAll(id.String(), "-", "")[:4], nil
}

// ShortID returns the 4-char random suffix (after the last '-').
// If the format is unexpected, return "xxxx".
func ShortID(runID string) string {
	idx := strings.LastIndex(runID, "-")
	if idx == -1 || idx+1 >= len(runID) {
		return "xxxx"
	}
	suffix := runID[idx+1:]
	if len(suffix) != 4 {
		return "xxxx"
	}
	return suffix
}

// Package identity derives stable identifiers for projects set up by devsetup.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

// ProjectIDLen is the number of hex characters for project_id (truncated sha256).
const ProjectIDLen = 16

// ProjectIdentity holds the derived identity for a project checkout.
type ProjectIdentity struct {
	// Root is the cleaned absolute project root the identity was derived from.
	Root string

	// ProjectKey is "path:<sha256(abs_root)>".
	ProjectKey string

	// ProjectID is sha256(ProjectKey) truncated to ProjectIDLen hex characters.
	ProjectID string
}

// DeriveProjectIdentity computes the identity of the project rooted at absRoot.
// This is a pure function; absRoot is cleaned but not resolved against the filesystem.
func DeriveProjectIdentity(absRoot string) ProjectIdentity {
	root := filepath.Clean(absRoot)
	key := "path:" + Sha256Hex(root)
	return ProjectIdentity{
		Root:       root,
		ProjectKey: key,
		ProjectID:  Sha256Hex(key)[:ProjectIDLen],
	}
}

// Sha256Hex computes the lowercase hex-encoded SHA256 of a string.
func Sha256Hex(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

package scaffold

import (
	"os"
	"path"
	"strings"

	"github.com/NielsdaWheelz/devsetup/internal/fs"
)

// GitignoreResult indicates what happened to .gitignore.
type GitignoreResult string

const (
	GitignoreUpdated   GitignoreResult = "updated"
	GitignoreUnchanged GitignoreResult = "unchanged"
	GitignoreSkipped   GitignoreResult = "skipped"
)

// EnsureGitignore ensures entry (a root-relative path such as backend/.env)
// is ignored by .gitignore. Creates the file if missing. Does not add
// duplicate entries. Ensures file ends with newline.
func EnsureGitignore(fsys fs.FS, gitignorePath, entry string) (GitignoreResult, error) {
	entry = path.Clean(entry)

	content, err := fsys.ReadFile(gitignorePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		if err := fs.WriteFileAtomic(fsys, gitignorePath, []byte(entry+"\n"), 0644); err != nil {
			return "", err
		}
		return GitignoreUpdated, nil
	}

	if hasEntry(string(content), entry) {
		if len(content) > 0 && content[len(content)-1] != '\n' {
			if err := fs.WriteFileAtomic(fsys, gitignorePath, append(content, '\n'), 0644); err != nil {
				return "", err
			}
			return GitignoreUpdated, nil
		}
		return GitignoreUnchanged, nil
	}

	newContent := string(content)
	if len(newContent) > 0 && !strings.HasSuffix(newContent, "\n") {
		newContent += "\n"
	}
	newContent += entry + "\n"

	if err := fs.WriteFileAtomic(fsys, gitignorePath, []byte(newContent), 0644); err != nil {
		return "", err
	}
	return GitignoreUpdated, nil
}

// hasEntry reports whether content already ignores entry: either the path
// itself (with or without a leading slash) or a bare file-name pattern that
// matches its base name anywhere in the tree.
func hasEntry(content, entry string) bool {
	base := path.Base(entry)
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch trimmed {
		case entry, "/" + entry, base:
			return true
		}
	}
	return false
}

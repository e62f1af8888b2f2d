package scaffold

import (
	"os"
	"path/filepath"

	"github.com/NielsdaWheelz/devsetup/internal/fs"
)

// EnvTemplateStub is written when the env template is missing.
const EnvTemplateStub = `# Copied to .env by devsetup. Fill in real values there, not here.
PORT=5000
MONGODB_URI=mongodb://localhost:27017/hirescope
JWT_SECRET=
JWT_REFRESH_SECRET=
OPENAI_API_KEY=
`

// StubResult reports what WriteStub did.
type StubResult string

const (
	StubCreated StubResult = "created"
	StubExists  StubResult = "exists"
)

// WriteStub writes content to root/relPath unless the file already exists.
// Parent directories are created as needed.
func WriteStub(fsys fs.FS, root, relPath, content string) (StubResult, error) {
	fullPath := filepath.Join(root, relPath)

	if _, err := fsys.Stat(fullPath); err == nil {
		return StubExists, nil
	} else if !os.IsNotExist(err) {
		return "", err
	}

	if err := fsys.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", err
	}
	if err := fs.WriteFileAtomic(fsys, fullPath, []byte(content), 0644); err != nil {
		return "", err
	}
	return StubCreated, nil
}

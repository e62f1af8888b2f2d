package fs

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// TempPattern is the name pattern for in-flight atomic writes.
const TempPattern = ".devsetup-tmp-*"

// WriteFileAtomic writes data to path atomically using a temp file + rename.
// The temp file is created in the same directory as path to ensure atomic rename on POSIX.
// If the operation fails, the original file (if any) is left unchanged.
// The caller must ensure the parent directory exists.
func WriteFileAtomic(fsys FS, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmpPath, w, err := fsys.CreateTemp(dir, TempPattern)
	if err != nil {
		return err
	}

	success := false
	defer func() {
		if !success {
			fsys.Remove(tmpPath)
		}
	}()

	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}

	if err := w.Close(); err != nil {
		return err
	}

	if err := fsys.Chmod(tmpPath, perm); err != nil {
		return err
	}

	if err := fsys.Rename(tmpPath, path); err != nil {
		return err
	}

	success = true
	return nil
}

// WriteJSONAtomic marshals v as indented JSON (trailing newline) and writes it atomically.
func WriteJSONAtomic(fsys FS, path string, v any, perm os.FileMode) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return WriteFileAtomic(fsys, path, data, perm)
}

// CopyFileAtomic copies src to dst byte-for-byte, keeping the permission bits of src.
// dst appears either complete or not at all.
func CopyFileAtomic(fsys FS, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return err
	}
	data, err := fsys.ReadFile(src)
	if err != nil {
		return err
	}
	return WriteFileAtomic(fsys, dst, data, info.Mode().Perm())
}

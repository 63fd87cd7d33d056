package fileio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var (
	// ErrNotFound reports a path that does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrPermission reports an access denial.
	ErrPermission = errors.New("permission denied")
)

// Open reads the whole file, classifying the failure into the editor's error
// taxonomy.
func Open(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, classify("open", path, err)
	}
	return data, nil
}

// Save writes data through a temporary file in the target directory and
// renames it over the destination, so a crash or a concurrent reader never
// observes a partial file.
func Save(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".fire-notes-*.tmp")
	if err != nil {
		return classify("save", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return classify("save", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return classify("save", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return classify("save", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return classify("save", path, err)
	}
	return nil
}

func classify(op, path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%s %s: %w", op, path, ErrNotFound)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%s %s: %w", op, path, ErrPermission)
	}
	return fmt.Errorf("%s %s: %w", op, path, err)
}

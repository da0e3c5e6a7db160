package i18next

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrIO is wrapped by every IOError.
var ErrIO = errors.New("resource I/O failure")

// IOError is a failed read or write of one resource file.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrIO) hold for any IOError.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

// Store loads and writes resource trees on a filesystem.
type Store struct {
	Fs afero.Fs
}

// NewStore returns a Store on fs, or on the OS filesystem when fs is nil.
func NewStore(fs afero.Fs) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Store{Fs: fs}
}

// FilePath returns the resource file for a language and namespace:
// <dir>/<lang>/<namespace>.json. Namespaces may contain "/".
func FilePath(dir, lang, namespace string) string {
	return filepath.Join(dir, lang, filepath.FromSlash(namespace)+".json")
}

// Load reads the tree stored at path. A missing file is an empty tree.
func (s *Store) Load(path string) (*Tree, error) {
	data, err := afero.ReadFile(s.Fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewTree(), nil
		}
		return nil, &IOError{Op: "reading", Path: path, Err: err}
	}
	t, err := Parse(data)
	if err != nil {
		return nil, &IOError{Op: "parsing", Path: path, Err: err}
	}
	return t, nil
}

// Write serializes t to path. The file is replaced atomically: content goes
// to a temporary file in the same directory which is then renamed over the
// destination. When the serialized bytes equal the current content nothing
// is written and changed is false.
func (s *Store) Write(t *Tree, path string) (changed bool, err error) {
	data, err := t.Marshal()
	if err != nil {
		return false, &IOError{Op: "encoding", Path: path, Err: err}
	}

	if current, err := afero.ReadFile(s.Fs, path); err == nil && bytes.Equal(current, data) {
		return false, nil
	}

	dir := filepath.Dir(path)
	if err := s.Fs.MkdirAll(dir, 0755); err != nil {
		return false, &IOError{Op: "creating directory for", Path: path, Err: err}
	}

	tmp, err := afero.TempFile(s.Fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return false, &IOError{Op: "creating temp file for", Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = s.Fs.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return false, &IOError{Op: "writing", Path: tmpPath, Err: err}
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return false, &IOError{Op: "syncing", Path: tmpPath, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return false, &IOError{Op: "closing", Path: tmpPath, Err: err}
	}
	if err = s.Fs.Chmod(tmpPath, 0644); err != nil {
		return false, &IOError{Op: "chmod", Path: tmpPath, Err: err}
	}
	if err = s.Fs.Rename(tmpPath, path); err != nil {
		return false, &IOError{Op: "replacing", Path: path, Err: err}
	}
	return true, nil
}

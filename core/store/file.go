package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

// Store loads and saves whole snapshots.
type Store interface {
	// Load returns the last successfully saved snapshot.
	Load() (*Snapshot, error)
	// Save replaces the durable snapshot atomically.
	Save(s *Snapshot) error
}

// FileStore keeps the snapshot in a single JSON file. Saves go through a
// temp file and a rename so readers never see a partial document.
// It keeps no cache.
type FileStore struct {
	path   string
	logger *zap.Logger
	lock   *flock.Flock

	// beforeRename runs after the temp file is written and closed.
	beforeRename func(tmp string) error
}

// NewFileStore creates a store backed by path.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Path returns the canonical document location.
func (f *FileStore) Path() string {
	return f.path
}

// LockPath returns the location of the writer lock file.
func (f *FileStore) LockPath() string {
	return f.path + ".lock"
}

// Lock takes the exclusive writer lock on the document and holds it until
// Unlock or process exit. Only one process may write a document; a second
// Lock, from any process, fails with ErrLocked.
func (f *FileStore) Lock() error {
	if f.lock != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", ErrIOFailure, filepath.Dir(f.path), err)
	}

	l := flock.New(f.LockPath())
	ok, err := l.TryLock()
	if err != nil {
		return fmt.Errorf("%w: lock %s: %v", ErrIOFailure, l.Path(), err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLocked, l.Path())
	}
	f.lock = l
	return nil
}

// Unlock releases the writer lock. It is a no-op when the lock is not held.
func (f *FileStore) Unlock() error {
	if f.lock == nil {
		return nil
	}
	err := f.lock.Unlock()
	f.lock = nil
	return err
}

// Load reads and decodes the document.
func (f *FileStore) Load() (*Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, f.path)
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrIOFailure, f.path, err)
	}
	return Decode(data)
}

// Save encodes s into a temp file next to the document and renames it into
// place. On any failure the previous document is left untouched.
func (f *FileStore) Save(s *Snapshot) error {
	data, err := Encode(s)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrIOFailure, err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", ErrIOFailure, dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", ErrIOFailure, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write temp: %v", ErrIOFailure, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync temp: %v", ErrIOFailure, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp: %v", ErrIOFailure, err)
	}

	if f.beforeRename != nil {
		if err := f.beforeRename(tmpName); err != nil {
			return fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("%w: rename: %v", ErrIOFailure, err)
	}
	committed = true

	// The rename is already visible; a failed directory sync only weakens
	// durability across power loss.
	if err := syncDir(dir); err != nil && f.logger != nil {
		f.logger.Warn("Failed to sync store directory", zap.String("dir", dir), zap.Error(err))
	}
	return nil
}

// Bootstrap saves defaults when no document exists yet. It reports whether
// a new document was written.
func (f *FileStore) Bootstrap(defaults *Snapshot) (bool, error) {
	_, err := f.Load()
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if err := f.Save(defaults); err != nil {
		return false, err
	}
	if f.logger != nil {
		f.logger.Info("Created new store document", zap.String("path", f.path))
	}
	return true, nil
}

// Encode renders a snapshot as indented JSON with a trailing newline.
func Encode(s *Snapshot) ([]byte, error) {
	out := *s
	if out.Assets == nil {
		out.Assets = []Record{}
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decode parses a document. Any failure is reported as ErrCorruptStore.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	if s.Assets == nil {
		s.Assets = []Record{}
	}
	return &s, nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}

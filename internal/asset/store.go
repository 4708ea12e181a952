package asset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// partialDir holds in-flight transfers. It lives inside the store directory
// so Finalize is a same-filesystem rename.
const partialDir = ".partial"

// Store maps assets to files in a single user-data directory.
// There is no manifest: existence is answered by looking for the file.
type Store struct {
	dir string
}

// NewStore creates the store directory (and its partial-transfer directory)
// if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(dir, partialDir), 0755); err != nil {
		return nil, fmt.Errorf("%w: create store dir: %v", ErrStorage, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// PathFor returns the location of the asset's local copy, whether or not it
// exists yet.
func (s *Store) PathFor(d Descriptor) (string, error) {
	name, err := d.FileName()
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// Exists reports whether a regular file is stored for the asset.
func (s *Store) Exists(d Descriptor) bool {
	p, err := s.PathFor(d)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// Delete removes the asset's local copy.
// Returns ErrNotFound if there is nothing to remove.
func (s *Store) Delete(d Descriptor) error {
	p, err := s.PathFor(d)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("delete %s: %w", d.ID, ErrNotFound)
		}
		return fmt.Errorf("%w: delete %s: %v", ErrStorage, d.ID, err)
	}
	return nil
}

// CreateTemp opens a new file for an in-flight transfer.
func (s *Store) CreateTemp() (*os.File, error) {
	f, err := os.CreateTemp(filepath.Join(s.dir, partialDir), "transfer-*.part")
	if err != nil {
		return nil, fmt.Errorf("%w: create temp file: %v", ErrStorage, err)
	}
	return f, nil
}

// Finalize moves a completed temporary file into place for the asset.
// Any existing copy is replaced. On failure the temporary file is removed so
// no partial artifact remains.
func (s *Store) Finalize(tmpPath string, d Descriptor) error {
	dst, err := s.PathFor(d)
	if err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	// Should not normally exist; the caller checks before starting.
	_ = os.Remove(dst)

	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: move into place: %v", ErrStorage, err)
	}
	return nil
}

// Files returns the names of all stored assets.
func (s *Store) Files() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read store dir: %v", ErrStorage, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// CleanPartial removes temporary files left behind by interrupted transfers.
// It must not be called while a transfer is active.
func (s *Store) CleanPartial() (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, partialDir, "transfer-*.part"))
	if err != nil {
		return 0, fmt.Errorf("%w: list partial files: %v", ErrStorage, err)
	}
	removed := 0
	for _, m := range matches {
		if err := os.Remove(m); err == nil {
			removed++
		}
	}
	return removed, nil
}

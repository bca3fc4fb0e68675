// Package filestore manages the private directory holding attachment files.
// Rows in the attachments table reference files here by bare name; pairing
// between a row and its file is not transactional (see Provider.Delete).
package filestore

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Store copies imported byte sources into a private directory and removes
// them in lockstep with attachment row deletion.
type Store struct {
	dir    string
	logger *slog.Logger
}

// ImportResult reports what an import stored. DeclaredSize is the size the
// source reported up front and is what gets recorded on the attachment row;
// Written is the byte count actually copied. The two can diverge for
// sources that report their size inaccurately.
type ImportResult struct {
	StoredName   string
	DeclaredSize int64
	Written      int64
}

// New creates the private attachment directory if needed.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create attachment dir: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Import copies src into the private directory under a generated unique
// name, attachment_<epochMillis>_<originalName>. The copy is a plain byte
// transfer with no checksum or atomic rename; a copy that fails partway
// leaves the partial file behind and the error is returned to the caller.
func (s *Store) Import(src io.Reader, originalName string, declaredSize int64) (ImportResult, error) {
	name := fmt.Sprintf("attachment_%d_%s", time.Now().UnixMilli(), filepath.Base(originalName))

	f, err := os.OpenFile(s.Path(name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return ImportResult{}, fmt.Errorf("create attachment file: %w", err)
	}

	written, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return ImportResult{}, fmt.Errorf("copy attachment %s: %w", name, err)
	}

	return ImportResult{StoredName: name, DeclaredSize: declaredSize, Written: written}, nil
}

// Remove deletes the named file from the private directory. A file that is
// already absent counts as removed.
func (s *Store) Remove(name string) error {
	err := os.Remove(s.Path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove attachment file %s: %w", name, err)
	}
	if err == nil {
		s.logger.Debug("removed attachment file", "name", name)
	}
	return nil
}

// Path resolves a stored name to its location on disk. Names are flattened
// to their base so a row can never point outside the private directory.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

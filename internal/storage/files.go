// ABOUTME: Shared upload directory backing the file access surface
// ABOUTME: Atomic writes via temp-file rename and extension-based image partition

package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Storage errors
var (
	ErrNotFound    = errors.New("file not found")
	ErrInvalidName = errors.New("invalid file name")
)

// imageExtensions are the extensions treated as images when partitioning a
// listing. The partition is purely presentational; the directory itself is
// unpartitioned.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".svg":  true,
	".webp": true,
}

// IsImageName reports whether name carries an image extension, case-insensitively.
func IsImageName(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// Partition splits file names into images and documents by extension.
func Partition(names []string) (images, documents []string) {
	images = make([]string, 0, len(names))
	documents = make([]string, 0, len(names))
	for _, name := range names {
		if IsImageName(name) {
			images = append(images, name)
		} else {
			documents = append(documents, name)
		}
	}
	return images, documents
}

// FileStore is the single shared upload directory. There is no ownership
// metadata: every authenticated identity sees every file. This models one
// physical drop box, not per-user storage.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

// NewFileStore creates a store rooted at dir, creating the directory if
// needed. Failure to create it is the one fatal-at-startup condition of the
// file surface.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	logger := slog.Default().With("component", "storage")
	logger.Debug("file store initialized", "dir", dir)

	return &FileStore{dir: dir, logger: logger}, nil
}

// cleanName reduces name to a bare file name, rejecting anything that could
// escape the directory.
func cleanName(name string) (string, error) {
	base := filepath.Base(filepath.Clean(name))
	if base == "" || base == "." || base == ".." || base == string(filepath.Separator) {
		return "", ErrInvalidName
	}
	return base, nil
}

// List returns the names of regular files in the directory, sorted.
// Directories and in-flight temp files are skipped.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading upload directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Save persists content under name, silently overwriting any existing file
// of the same name. The content is written to a temp file and renamed into
// place, so two racing uploads of the same name end last-writer-wins rather
// than interleaved.
func (s *FileStore) Save(name string, content io.Reader) (string, error) {
	base, err := cleanName(name)
	if err != nil {
		return "", err
	}

	tmp := filepath.Join(s.dir, "."+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("writing %s: %w", base, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmp, filepath.Join(s.dir, base)); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("renaming %s into place: %w", base, err)
	}

	s.logger.Debug("file saved", "name", base)
	return base, nil
}

// Open returns a handle for the named file along with its size.
// Returns ErrNotFound if the file does not exist.
func (s *FileStore) Open(name string) (*os.File, int64, error) {
	base, err := cleanName(name)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(filepath.Join(s.dir, base))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("opening %s: %w", base, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat %s: %w", base, err)
	}
	if info.IsDir() {
		f.Close()
		return nil, 0, ErrNotFound
	}

	return f, info.Size(), nil
}

package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds the upload size limit")
	ErrUnsupportedType = errors.New("file type is not allowed")
	ErrEmptyFile       = errors.New("file is empty")
)

// StoredFile describes a blob written to disk
type StoredFile struct {
	Name         string
	OriginalName string
	Path         string
	Size         int64
	MimeType     string
}

// FileStore persists uploaded blobs
type FileStore interface {
	Save(originalName string, r io.Reader, allowed []string) (*StoredFile, error)
	Open(path string) (*os.File, error)
	Remove(path string) error
	// Resolve maps a stored name back to its path
	Resolve(name string) string
	MaxSize() int64
}

type DiskStore struct {
	root    string
	maxSize int64
}

// NewDiskStore creates root if needed
func NewDiskStore(root string, maxSize int64) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &DiskStore{root: root, maxSize: maxSize}, nil
}

func (s *DiskStore) MaxSize() int64 {
	return s.maxSize
}

// Save streams r to a uuid-named file keeping the original extension. When
// allowed is non-empty the detected mime type must match one of its entries.
func (s *DiskStore) Save(originalName string, r io.Reader, allowed []string) (*StoredFile, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	path := filepath.Join(s.root, name)

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", name, err)
	}

	// Read one byte past the limit to detect oversize uploads
	written, err := io.Copy(dst, io.LimitReader(r, s.maxSize+1))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write %s: %w", name, err)
	}

	switch {
	case written == 0:
		os.Remove(path)
		return nil, ErrEmptyFile
	case written > s.maxSize:
		os.Remove(path)
		return nil, ErrFileTooLarge
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to detect type of %s: %w", name, err)
	}
	if len(allowed) > 0 && !matchesAny(mtype, allowed) {
		os.Remove(path)
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
	}

	return &StoredFile{
		Name:         name,
		OriginalName: filepath.Base(originalName),
		Path:         path,
		Size:         written,
		MimeType:     mtype.String(),
	}, nil
}

func matchesAny(mtype *mimetype.MIME, allowed []string) bool {
	return slices.ContainsFunc(allowed, func(a string) bool {
		return mtype.Is(a)
	})
}

func (s *DiskStore) Open(path string) (*os.File, error) {
	if !s.owns(path) {
		return nil, os.ErrNotExist
	}
	return os.Open(path)
}

// Remove deletes a stored blob; a missing file is not an error
func (s *DiskStore) Remove(path string) error {
	if !s.owns(path) {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *DiskStore) Resolve(name string) string {
	return filepath.Join(s.root, filepath.Base(name))
}

func (s *DiskStore) owns(path string) bool {
	rel, err := filepath.Rel(s.root, path)
	return err == nil && !strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel)
}

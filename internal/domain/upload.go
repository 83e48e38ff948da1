package domain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Quality is the processing-effort hint passed to the backend untouched
type Quality string

const (
	QualityFast  Quality = "fast"
	QualityHiRes Quality = "hi-res"
)

// DefaultQuality is used until the user picks another mode
const DefaultQuality = QualityFast

var ErrInvalidQuality = errors.New("quality must be \"fast\" or \"hi-res\"")

// ParseQuality accepts exactly the two wire values
func ParseQuality(s string) (Quality, error) {
	switch Quality(s) {
	case QualityFast, QualityHiRes:
		return Quality(s), nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidQuality, s)
	}
}

// Valid reports whether q is one of the two wire values
func (q Quality) Valid() bool {
	return q == QualityFast || q == QualityHiRes
}

// File is a document staged for upload. Staged files are compared by
// pointer, so two Files with the same content are still distinct entries.
type File struct {
	Name        string
	Size        int64
	ContentType string
	open        func() (io.ReadCloser, error)
}

// NewFile wraps an arbitrary opener
func NewFile(name, contentType string, size int64, open func() (io.ReadCloser, error)) *File {
	return &File{Name: name, Size: size, ContentType: contentType, open: open}
}

// FileFromBytes stages in-memory content
func FileFromBytes(name, contentType string, data []byte) *File {
	return NewFile(name, contentType, int64(len(data)), func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	})
}

// FileFromPath stages a file on disk. The content is read at submit time.
func FileFromPath(path, contentType string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return NewFile(filepath.Base(path), contentType, info.Size(), func() (io.ReadCloser, error) {
		return os.Open(path)
	}), nil
}

// Open returns a fresh reader over the file's content
func (f *File) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, fmt.Errorf("file %s has no content", f.Name)
	}
	return f.open()
}

// StoredDocument is a file the backend received for a session
type StoredDocument struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"chat_session_id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Quality   Quality   `json:"quality"`
	CreatedAt time.Time `json:"created_at"`
}

// DocumentRepository defines the interface for document metadata storage
type DocumentRepository interface {
	Create(ctx context.Context, doc *StoredDocument) error
	ListBySession(ctx context.Context, sessionID int64) ([]StoredDocument, error)
}

// ErrNoFiles is returned when an upload is attempted with nothing staged
var ErrNoFiles = errors.New("no files staged for upload")

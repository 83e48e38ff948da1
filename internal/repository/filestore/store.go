// Package filestore keeps uploaded documents on disk, one directory per
// session.
package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrInvalidName = errors.New("invalid file name")

// Store saves documents under a root directory
type Store struct {
	root string
}

// New creates the root directory if it does not exist
func New(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create documents directory: %w", err)
	}
	return &Store{root: root}, nil
}

// Save writes one document for a session and returns its absolute path
func (s *Store) Save(session, name string, r io.Reader) (string, error) {
	dir, err := s.sessionDir(session)
	if err != nil {
		return "", err
	}
	base := filepath.Base(name)
	if base == "." || base == ".." || base == string(filepath.Separator) || strings.TrimSpace(base) == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create session directory: %w", err)
	}

	destPath := filepath.Join(dir, base)
	dst, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(destPath) // cleanup on error
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	absPath, err := filepath.Abs(destPath)
	if err != nil {
		return destPath, nil
	}
	return absPath, nil
}

// RemoveSession deletes every document of a session
func (s *Store) RemoveSession(session string) error {
	dir, err := s.sessionDir(session)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove session documents: %w", err)
	}
	return nil
}

// List returns the names of a session's stored documents
func (s *Store) List(session string) ([]string, error) {
	dir, err := s.sessionDir(session)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list session documents: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (s *Store) sessionDir(session string) (string, error) {
	if session == "" || session != filepath.Base(session) || session == "." || session == ".." {
		return "", fmt.Errorf("%w: session %q", ErrInvalidName, session)
	}
	return filepath.Join(s.root, session), nil
}

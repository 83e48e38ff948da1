package filestore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	root := t.TempDir()
	s, err := New(filepath.Join(root, "documents"))
	require.NoError(t, err)

	path, err := s.Save("abc", "report.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	// directory components in the upload name are stripped
	path, err = s.Save("abc", "../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "documents", "abc", "passwd"), path)

	names, err := s.List("abc")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"report.pdf", "passwd"}, names)

	require.NoError(t, s.RemoveSession("abc"))
	names, err = s.List("abc")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestStore_InvalidNames(t *testing.T) {
	s, err := New(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		session string
		file    string
	}{
		{"", "a.pdf"},
		{"..", "a.pdf"},
		{"a/b", "a.pdf"},
		{"ok", ""},
		{"ok", ".."},
	}
	for _, tt := range tests {
		_, err := s.Save(tt.session, tt.file, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidName, "session=%q file=%q", tt.session, tt.file)
	}
}

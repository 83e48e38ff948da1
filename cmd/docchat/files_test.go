package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageFiles(t *testing.T) {
	pdf := writePDF(t, "report.pdf")
	txt := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(txt, []byte("just some text"), 0o644))

	files, skipped, err := stageFiles([]string{pdf, txt}, []string{"application/pdf"})
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, "report.pdf", files[0].Name)
	assert.Equal(t, "application/pdf", files[0].ContentType)

	require.Len(t, skipped, 1)
	assert.Equal(t, txt, skipped[0].Path)
	assert.Contains(t, skipped[0].Reason, "text/plain")

	files, skipped, err = stageFiles([]string{txt}, nil)
	require.NoError(t, err)
	assert.Len(t, files, 1)
	assert.Empty(t, skipped)

	_, _, err = stageFiles([]string{filepath.Join(t.TempDir(), "missing.pdf")}, nil)
	assert.Error(t, err)
}

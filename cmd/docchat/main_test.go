package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deon-gracias/rag/internal/api"
	"github.com/deon-gracias/rag/internal/config"
	"github.com/deon-gracias/rag/internal/repository/sqlite"
)

func init() {
	color.NoColor = true
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	srvCfg := &config.Config{
		Server:   config.ServerConfig{MaxUploadBytes: 1 << 20},
		Database: config.DatabaseConfig{Path: filepath.Join(dir, "sessions.db")},
		Storage:  config.StorageConfig{DocumentsDir: filepath.Join(dir, "documents")},
		LLM:      config.LLMConfig{Provider: "echo"},
	}
	db, err := sqlite.NewDB(context.Background(), srvCfg.Database)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.RunMigrations(srvCfg.Database.MigrateURL()))

	router, err := api.NewRouter(srvCfg, db, nil)
	require.NoError(t, err)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &config.Config{
		Backend: config.BackendConfig{
			BaseURL:        srv.URL,
			RequestTimeout: 5 * time.Second,
			ChatTimeout:    5 * time.Second,
			UploadTimeout:  5 * time.Second,
		},
		Upload: config.UploadConfig{DefaultQuality: "fast", AcceptedTypes: []string{"application/pdf"}},
		Chat:   config.ChatConfig{MinMessageLength: 2},
		Cache:  config.CacheConfig{SessionTTL: time.Minute, CleanupInterval: time.Minute},
	}
}

func writePDF(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"), 0o644))
	return path
}

func TestDocchat_UploadThenChat(t *testing.T) {
	cfg := newTestConfig(t)
	ctx := context.Background()
	pdf := writePDF(t, "report.pdf")

	var out bytes.Buffer
	in := strings.NewReader("x\nWhat is in it?\n/details 2\n/details 1\n/bogus\n/quit\n")
	a := newApp(cfg, in, &out)

	code := a.dispatch(ctx, "upload", []string{"-quality", "hi-res", pdf})
	require.Equal(t, exitOK, code, out.String())

	text := out.String()
	assert.Contains(t, text, "✓ File(s) Uploaded: Uploaded 1 file(s)")
	assert.Contains(t, text, "message is too short")
	assert.Contains(t, text, "[2] assistant (/details)")
	assert.Contains(t, text, "You asked: What is in it?")
	assert.Contains(t, text, "model           echo")
	assert.Contains(t, text, "entry 1 has no details")
	assert.Contains(t, text, "unknown command /bogus")

	out.Reset()
	require.Equal(t, exitOK, a.dispatch(ctx, "sessions", nil))
	assert.Regexp(t, `\s+1  [0-9a-f-]{36}  `, out.String())
}

func TestDocchat_NotFound(t *testing.T) {
	cfg := newTestConfig(t)
	var out bytes.Buffer
	a := newApp(cfg, strings.NewReader(""), &out)

	assert.Equal(t, exitNotFound, a.dispatch(context.Background(), "chat", []string{"no-such-session"}))
	assert.Contains(t, out.String(), "Session not found")

	out.Reset()
	assert.Equal(t, exitError, a.dispatch(context.Background(), "delete", []string{"42"}))
	assert.Contains(t, out.String(), "operation failed")
}

func TestDocchat_Usage(t *testing.T) {
	cfg := newTestConfig(t)
	var out bytes.Buffer
	a := newApp(cfg, strings.NewReader(""), &out)
	ctx := context.Background()

	assert.Equal(t, exitUsage, a.dispatch(ctx, "frobnicate", nil))
	assert.Equal(t, exitUsage, a.dispatch(ctx, "chat", nil))
	assert.Equal(t, exitUsage, a.dispatch(ctx, "delete", []string{"abc"}))
	assert.Equal(t, exitUsage, a.dispatch(ctx, "upload", nil))
	assert.Equal(t, exitError, a.dispatch(ctx, "upload", []string{"-quality", "slow", writePDF(t, "a.pdf")}))
}

func TestDocchat_NewAndHealth(t *testing.T) {
	cfg := newTestConfig(t)
	var out bytes.Buffer
	a := newApp(cfg, strings.NewReader(""), &out)
	ctx := context.Background()

	require.Equal(t, exitOK, a.dispatch(ctx, "health", nil))
	assert.Contains(t, out.String(), "System is up!")

	require.Equal(t, exitOK, a.dispatch(ctx, "new", nil))
	assert.Contains(t, out.String(), "✓ Session created")
}

func TestDocchat_BackendDown(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Backend.BaseURL = "http://127.0.0.1:1"
	var out bytes.Buffer
	a := newApp(cfg, strings.NewReader(""), &out)

	assert.Equal(t, exitError, a.dispatch(context.Background(), "sessions", nil))
	assert.Contains(t, out.String(), "operation failed: backend unreachable")
}

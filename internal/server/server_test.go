package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopmonkeyus/go-common/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"er_diagram/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Port:               8080,
		GinMode:            "test",
		StorageDriver:      config.StorageFile,
		DiagramsDir:        filepath.Join(t.TempDir(), "diagrams"),
		SchemaDatabase:     "er_diagram",
		CORSAllowedOrigins: []string{"*"},
	}
}

func TestNewServerFileStore(t *testing.T) {
	srv, err := NewServer(context.Background(), testConfig(t), logger.NewTestLogger())
	require.NoError(t, err)
	defer srv.Close()
	assert.Equal(t, ":8080", srv.HTTP.Addr)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/diagrams", strings.NewReader(`{"entities": [], "connections": []}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	srv.HTTP.Handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestNewServerSQLiteStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.StorageDriver = config.StorageSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "diagrams.db")

	srv, err := NewServer(context.Background(), cfg, logger.NewTestLogger())
	require.NoError(t, err)
	defer srv.Close()

	w := httptest.NewRecorder()
	srv.HTTP.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/diagrams/latest", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSRestrictedOrigins(t *testing.T) {
	cfg := testConfig(t)
	cfg.CORSAllowedOrigins = []string{"http://editor.local"}

	srv, err := NewServer(context.Background(), cfg, logger.NewTestLogger())
	require.NoError(t, err)
	defer srv.Close()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://editor.local")
	w := httptest.NewRecorder()
	srv.HTTP.Handler.ServeHTTP(w, req)
	assert.Equal(t, "http://editor.local", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.local")
	w = httptest.NewRecorder()
	srv.HTTP.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

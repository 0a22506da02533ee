package main

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xixhienxix/task-list/internal/app"
	"github.com/xixhienxix/task-list/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t       *testing.T
	api     string
	session string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg, err := config.LoadFiles()
	require.NoError(t, err)
	cfg.Store.Driver = config.DriverMemory
	cfg.Redis = config.RedisConfig{}

	log := logrus.New()
	log.SetOutput(io.Discard)
	a, err := app.New(cfg, log)
	require.NoError(t, err)
	srv := httptest.NewServer(a.Router())
	t.Cleanup(srv.Close)

	return &harness{t: t, api: srv.URL, session: filepath.Join(t.TempDir(), "session")}
}

func (h *harness) run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	full := append([]string{"-api", h.api, "-session", h.session}, args...)
	code := run(context.Background(), full, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestTaskctlFlow(t *testing.T) {
	h := newHarness(t)

	code, _, stderr := h.run("list")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "not logged in")

	code, _, stderr = h.run("login", "a@x.com")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "Usuario no registrado")

	code, out, _ := h.run("register", "a@x.com", "Ana")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "registered a@x.com")

	code, out, _ = h.run("list")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "no tasks\n", out)

	code, out, _ = h.run("add", "-t", "T1", "-d", "D1")
	require.Equal(t, ExitSuccess, code)
	id := strings.TrimSpace(strings.TrimPrefix(out, "created "))
	require.NotEmpty(t, id)

	code, out, _ = h.run("toggle", id)
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "completada")

	code, _, _ = h.run("edit", id, "-t", "T2")
	require.Equal(t, ExitSuccess, code)

	code, out, _ = h.run("list")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, out, "T2")
	assert.Contains(t, out, "completada")

	code, _, _ = h.run("rm", id)
	require.Equal(t, ExitSuccess, code)
	code, _, stderr = h.run("rm", id)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "Tarea no encontrada")

	code, _, _ = h.run("logout")
	require.Equal(t, ExitSuccess, code)
	code, _, _ = h.run("list")
	assert.Equal(t, ExitFailure, code)
}

func TestTaskctlUsage(t *testing.T) {
	h := newHarness(t)

	tests := [][]string{
		{},
		{"bogus"},
		{"login"},
		{"register"},
	}
	for _, args := range tests {
		code, _, stderr := h.run(args...)
		assert.Equal(t, ExitInvalidUsage, code, "args %v", args)
		assert.Contains(t, stderr, "usage: taskctl")
	}
}

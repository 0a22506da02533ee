package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xixhienxix/task-list/internal/app"
	"github.com/xixhienxix/task-list/internal/config"
	dom "github.com/xixhienxix/task-list/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer serves the real API on the in-memory store.
func newTestServer(t *testing.T) *httptest.Server {
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
	t.Cleanup(func() {
		srv.Close()
		_ = a.Close(context.Background())
	})
	return srv
}

func boolPtr(b bool) *bool { return &b }

func TestClientAccounts(t *testing.T) {
	c := New(newTestServer(t).URL + "/")
	ctx := context.Background()

	registered, err := c.Register(ctx, "a@x.com", "")
	require.NoError(t, err)
	assert.NotEmpty(t, registered.ID)

	logged, err := c.Login(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, registered, logged)

	_, err = c.Login(ctx, "b@x.com")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, CodeNotRegistered, authErr.Code)

	_, err = c.Register(ctx, "a@x.com", "")
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, CodeAccountExists, authErr.Code)

	_, err = c.Login(ctx, "")
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, CodeEmailRequired, authErr.Code)
}

func TestClientTasks(t *testing.T) {
	c := New(newTestServer(t).URL)
	ctx := context.Background()

	list, err := c.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	created, err := c.CreateTask(ctx, "T1", "D1", false)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.FechaCreacion.IsZero())

	applied, err := c.UpdateTask(ctx, created.ID, dom.TaskPatch{Estado: boolPtr(true)})
	require.NoError(t, err)
	assert.Nil(t, applied.Titulo)
	require.NotNil(t, applied.Estado)
	assert.True(t, *applied.Estado)

	list, err = c.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Estado)
	assert.Equal(t, "T1", list[0].Titulo)
	assert.True(t, created.FechaCreacion.Equal(list[0].FechaCreacion))

	require.NoError(t, c.DeleteTask(ctx, created.ID))

	err = c.DeleteTask(ctx, created.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.NotFound())
	assert.Equal(t, "Tarea no encontrada", apiErr.Message)

	_, err = c.CreateTask(ctx, "", "D", false)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"success":false,"message":"Error interno del servidor","error":"boom"}`)
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListTasks(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "boom", apiErr.Detail)
	assert.Contains(t, apiErr.Error(), "Error interno del servidor")
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url).Login(context.Background(), "a@x.com")
	require.Error(t, err)
	var authErr *AuthError
	assert.False(t, errors.As(err, &authErr))
}

func TestTasksMirrorsIntoStore(t *testing.T) {
	c := New(newTestServer(t).URL)
	tasks := NewTasks(c, NewTaskStore())
	ctx := context.Background()

	first, err := tasks.Add(ctx, "T1", "D1", false)
	require.NoError(t, err)
	second, err := tasks.Add(ctx, "T2", "D2", false)
	require.NoError(t, err)

	snap := tasks.Store().Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, second.ID, snap[0].ID)
	assert.Equal(t, first.ID, snap[1].ID)

	_, err = tasks.Update(ctx, first.ID, dom.TaskPatch{Estado: boolPtr(true)})
	require.NoError(t, err)
	snap = tasks.Store().Snapshot()
	assert.True(t, snap[1].Estado)
	assert.Equal(t, "T1", snap[1].Titulo)

	require.NoError(t, tasks.Remove(ctx, second.ID))
	snap = tasks.Store().Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, first.ID, snap[0].ID)

	// failed calls do not touch the store
	_, err = tasks.Update(ctx, second.ID, dom.TaskPatch{Estado: boolPtr(true)})
	require.Error(t, err)
	assert.Len(t, tasks.Store().Snapshot(), 1)

	tasks.Store().ReplaceAll(nil)
	list, err := tasks.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, tasks.Store().Snapshot())
	assert.Len(t, list, 1)
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dom "github.com/xixhienxix/task-list/internal/domain"
	"github.com/xixhienxix/task-list/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- mock implementations ----

type mockAccounts struct {
	authenticateFn func(email string) (dom.Account, error)
	registerFn     func(email, name string) (dom.Account, error)
}

func (m *mockAccounts) Authenticate(_ context.Context, email string) (dom.Account, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(email)
	}
	return dom.Account{}, fmt.Errorf("not configured")
}

func (m *mockAccounts) Register(_ context.Context, email, name string) (dom.Account, error) {
	if m.registerFn != nil {
		return m.registerFn(email, name)
	}
	return dom.Account{}, fmt.Errorf("not configured")
}

type mockTasks struct {
	listFn   func() ([]dom.Task, error)
	createFn func(titulo, descripcion string, estado *bool) (dom.Task, error)
	updateFn func(id string, patch dom.TaskPatch) (dom.TaskPatch, error)
	deleteFn func(id string) error
}

func (m *mockTasks) List(context.Context) ([]dom.Task, error) {
	if m.listFn != nil {
		return m.listFn()
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockTasks) Create(_ context.Context, titulo, descripcion string, estado *bool) (dom.Task, error) {
	if m.createFn != nil {
		return m.createFn(titulo, descripcion, estado)
	}
	return dom.Task{}, fmt.Errorf("not configured")
}

func (m *mockTasks) Update(_ context.Context, id string, patch dom.TaskPatch) (dom.TaskPatch, error) {
	if m.updateFn != nil {
		return m.updateFn(id, patch)
	}
	return dom.TaskPatch{}, fmt.Errorf("not configured")
}

func (m *mockTasks) Delete(_ context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(id)
	}
	return fmt.Errorf("not configured")
}

// ---- helpers ----

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestRouter(accounts AccountDirectory, tasks TaskManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ah := NewAccountHandler(accounts, quietLogger())
	th := NewTaskHandler(tasks, quietLogger())
	r.POST("/login", ah.Login)
	r.POST("/register", ah.Register)
	r.GET("/tasks", th.List)
	r.POST("/tasks", th.Create)
	r.PUT("/tasks/:id", th.Update)
	r.DELETE("/tasks/:id", th.Delete)
	return r
}

func doRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		var raw string
		if s, ok := body.(string); ok {
			raw = s
		} else {
			b, _ := json.Marshal(body)
			raw = string(b)
		}
		req, _ = http.NewRequest(method, url, strings.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

var testCreated = time.Date(2025, 10, 21, 14, 30, 0, 123000000, time.UTC)

// ---- account routes ----

func TestLogin(t *testing.T) {
	accounts := &mockAccounts{authenticateFn: func(email string) (dom.Account, error) {
		switch email {
		case "":
			return dom.Account{}, service.ErrEmailRequired
		case "a@x.com":
			return dom.Account{ID: "ID1", Email: email}, nil
		case "down@x.com":
			return dom.Account{}, errors.New("find account: unavailable")
		}
		return dom.Account{}, service.ErrNotRegistered
	}}
	r := newTestRouter(accounts, &mockTasks{})

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		want       map[string]interface{}
	}{
		{
			name:       "registered",
			body:       map[string]string{"email": "a@x.com"},
			wantStatus: http.StatusOK,
			want:       map[string]interface{}{"success": true, "id": "ID1", "email": "a@x.com"},
		},
		{
			name:       "unknown",
			body:       map[string]string{"email": "b@x.com"},
			wantStatus: http.StatusOK,
			want:       map[string]interface{}{"errorCode": float64(40), "message": "Usuario no registrado, registese antes de poder acceder"},
		},
		{
			name:       "missing email",
			body:       map[string]string{},
			wantStatus: http.StatusOK,
			want:       map[string]interface{}{"errorCode": float64(41), "message": "Email obligatorio"},
		},
		{
			name:       "no body",
			wantStatus: http.StatusOK,
			want:       map[string]interface{}{"errorCode": float64(41), "message": "Email obligatorio"},
		},
		{
			name:       "storage failure",
			body:       map[string]string{"email": "down@x.com"},
			wantStatus: http.StatusInternalServerError,
			want:       map[string]interface{}{"success": false, "message": "Error interno del servidor", "error": "find account: unavailable"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/login", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.want, decode(t, w))
		})
	}
}

func TestLoginMalformedJSON(t *testing.T) {
	r := newTestRouter(&mockAccounts{}, &mockTasks{})
	w := doRequest(r, http.MethodPost, "/login", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister(t *testing.T) {
	var gotName string
	accounts := &mockAccounts{registerFn: func(email, name string) (dom.Account, error) {
		gotName = name
		switch email {
		case "":
			return dom.Account{}, service.ErrEmailRequired
		case "taken@x.com":
			return dom.Account{}, service.ErrAccountExists
		}
		return dom.Account{ID: "ID1", Email: email, Name: name}, nil
	}}
	r := newTestRouter(accounts, &mockTasks{})

	w := doRequest(r, http.MethodPost, "/register", map[string]string{"email": "a@x.com", "name": "Ana"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"success": true, "id": "ID1", "email": "a@x.com", "name": "Ana"}, decode(t, w))
	assert.Equal(t, "Ana", gotName)

	w = doRequest(r, http.MethodPost, "/register", map[string]string{"email": "b@x.com"})
	assert.Equal(t, map[string]interface{}{"success": true, "id": "ID1", "email": "b@x.com"}, decode(t, w))

	w = doRequest(r, http.MethodPost, "/register", map[string]string{"email": "taken@x.com"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"errorCode": float64(42), "message": "El usuario ya existe!"}, decode(t, w))

	w = doRequest(r, http.MethodPost, "/register", map[string]string{"name": "Ana"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]interface{}{"errorCode": float64(41), "message": "email es obligatorio"}, decode(t, w))
}

// ---- task routes ----

func TestListTasks(t *testing.T) {
	tasks := &mockTasks{listFn: func() ([]dom.Task, error) {
		return []dom.Task{{ID: "ID2", Titulo: "T1", Descripcion: "D1", FechaCreacion: testCreated}}, nil
	}}
	w := doRequest(newTestRouter(&mockAccounts{}, tasks), http.MethodGet, "/tasks", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"tasks":[{"id":"ID2","titulo":"T1","descripcion":"D1","fecha_creacion":"2025-10-21T14:30:00.123Z","estado":false}]}`, w.Body.String())
}

func TestListTasksEmpty(t *testing.T) {
	tasks := &mockTasks{listFn: func() ([]dom.Task, error) { return []dom.Task{}, nil }}
	w := doRequest(newTestRouter(&mockAccounts{}, tasks), http.MethodGet, "/tasks", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"tasks":[],"message":"No hay tareas disponibles"}`, w.Body.String())
}

func TestListTasksFailure(t *testing.T) {
	tasks := &mockTasks{listFn: func() ([]dom.Task, error) { return nil, errors.New("list tasks: timeout") }}
	w := doRequest(newTestRouter(&mockAccounts{}, tasks), http.MethodGet, "/tasks", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Error interno del servidor","error":"list tasks: timeout"}`, w.Body.String())
}

func TestCreateTask(t *testing.T) {
	var gotEstado *bool
	tasks := &mockTasks{createFn: func(titulo, descripcion string, estado *bool) (dom.Task, error) {
		gotEstado = estado
		if titulo == "" || descripcion == "" {
			return dom.Task{}, service.ErrTaskFieldsRequired
		}
		if titulo == "boom" {
			return dom.Task{}, errors.New("create task: quota exceeded")
		}
		return dom.Task{ID: "ID2", Titulo: titulo, Descripcion: descripcion, Estado: estado != nil && *estado, FechaCreacion: testCreated}, nil
	}}
	r := newTestRouter(&mockAccounts{}, tasks)

	w := doRequest(r, http.MethodPost, "/tasks", map[string]interface{}{
		"titulo": "T1", "descripcion": "D1", "fecha_creacion": "1999-01-01T00:00:00.000Z",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"id":"ID2","titulo":"T1","descripcion":"D1","estado":false,"fecha_creacion":"2025-10-21T14:30:00.123Z"}`, w.Body.String())
	assert.Nil(t, gotEstado)

	w = doRequest(r, http.MethodPost, "/tasks", map[string]interface{}{"titulo": "T1", "descripcion": "D1", "estado": true})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, decode(t, w)["estado"])

	w = doRequest(r, http.MethodPost, "/tasks", map[string]interface{}{"titulo": "T1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Título y descripción son obligatorios"}`, w.Body.String())

	w = doRequest(r, http.MethodPost, "/tasks", map[string]interface{}{"titulo": "boom", "descripcion": "D"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Error interno al crear la tarea","error":"create task: quota exceeded"}`, w.Body.String())
}

func TestCreateTaskWrongTypes(t *testing.T) {
	r := newTestRouter(&mockAccounts{}, &mockTasks{})
	w := doRequest(r, http.MethodPost, "/tasks", `{"titulo":1,"descripcion":"D"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Título y descripción son obligatorios", decode(t, w)["message"])
}

func TestUpdateTask(t *testing.T) {
	var gotID string
	var gotPatch dom.TaskPatch
	tasks := &mockTasks{updateFn: func(id string, patch dom.TaskPatch) (dom.TaskPatch, error) {
		gotID, gotPatch = id, patch
		switch id {
		case "missing":
			return dom.TaskPatch{}, service.ErrTaskNotFound
		case "broken":
			return dom.TaskPatch{}, errors.New("update task: aborted")
		}
		return patch, nil
	}}
	r := newTestRouter(&mockAccounts{}, tasks)

	w := doRequest(r, http.MethodPut, "/tasks/ID2", map[string]interface{}{"estado": true})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"id":"ID2","message":"Tarea actualizada correctamente","estado":true}`, w.Body.String())
	assert.Equal(t, "ID2", gotID)
	assert.Nil(t, gotPatch.Titulo)
	assert.Nil(t, gotPatch.Descripcion)

	w = doRequest(r, http.MethodPut, "/tasks/ID2", map[string]interface{}{"estado": false, "titulo": ""})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"id":"ID2","message":"Tarea actualizada correctamente","titulo":"","estado":false}`, w.Body.String())

	w = doRequest(r, http.MethodPut, "/tasks/ID2", map[string]interface{}{"titulo": nil, "descripcion": "D2"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, gotPatch.Titulo)
	assert.JSONEq(t, `{"success":true,"id":"ID2","message":"Tarea actualizada correctamente","descripcion":"D2"}`, w.Body.String())

	w = doRequest(r, http.MethodPut, "/tasks/missing", map[string]interface{}{"estado": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Tarea no encontrada"}`, w.Body.String())

	w = doRequest(r, http.MethodPut, "/tasks/broken", map[string]interface{}{"estado": true})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Error interno al actualizar tarea","error":"update task: aborted"}`, w.Body.String())
}

func TestDeleteTask(t *testing.T) {
	tasks := &mockTasks{deleteFn: func(id string) error {
		switch id {
		case "missing":
			return service.ErrTaskNotFound
		case "broken":
			return errors.New("delete task: aborted")
		}
		return nil
	}}
	r := newTestRouter(&mockAccounts{}, tasks)

	w := doRequest(r, http.MethodDelete, "/tasks/ID2", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Tarea eliminada correctamente","id":"ID2"}`, w.Body.String())

	w = doRequest(r, http.MethodDelete, "/tasks/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(r, http.MethodDelete, "/tasks/broken", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Error interno al eliminar tarea", decode(t, w)["message"])
}

package handlers

import (
	"context"
	"errors"
	"net/http"

	dom "github.com/xixhienxix/task-list/internal/domain"
	"github.com/xixhienxix/task-list/internal/dto"
	"github.com/xixhienxix/task-list/internal/logging"
	"github.com/xixhienxix/task-list/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	msgNoTasks        = "No hay tareas disponibles"
	msgFieldsRequired = "Título y descripción son obligatorios"
	msgCreateFailed   = "Error interno al crear la tarea"
	msgTaskNotFound   = "Tarea no encontrada"
	msgTaskUpdated    = "Tarea actualizada correctamente"
	msgUpdateFailed   = "Error interno al actualizar tarea"
	msgTaskDeleted    = "Tarea eliminada correctamente"
	msgDeleteFailed   = "Error interno al eliminar tarea"
)

// TaskManager is the task CRUD surface the handlers need.
type TaskManager interface {
	List(ctx context.Context) ([]dom.Task, error)
	Create(ctx context.Context, titulo, descripcion string, estado *bool) (dom.Task, error)
	Update(ctx context.Context, id string, patch dom.TaskPatch) (dom.TaskPatch, error)
	Delete(ctx context.Context, id string) error
}

type TaskHandler struct {
	tasks TaskManager
	log   logrus.FieldLogger
}

func NewTaskHandler(tasks TaskManager, log logrus.FieldLogger) *TaskHandler {
	return &TaskHandler{tasks: tasks, log: log}
}

// List godoc
// @Summary      List all tasks
// @Tags         tasks
// @Produce      json
// @Success      200  {object}  dto.ListTasksResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	list, err := h.tasks.List(c.Request.Context())
	if err != nil {
		h.fail(c, "GET /tasks", msgInternal, err)
		return
	}
	resp := dto.ListTasksResponse{Success: true, Tasks: tasksToResponses(list)}
	if len(list) == 0 {
		resp.Message = msgNoTasks
	}
	c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary      Create a task
// @Description  fecha_creacion is set by the server. estado defaults to false.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTaskRequest  true  "Task body"
// @Success      201   {object}  dto.CreateTaskResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: msgFieldsRequired, Error: err.Error()})
		return
	}
	t, err := h.tasks.Create(c.Request.Context(), req.Titulo, req.Descripcion, req.Estado)
	if err != nil {
		if errors.Is(err, service.ErrTaskFieldsRequired) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: msgFieldsRequired})
			return
		}
		h.fail(c, "POST /tasks", msgCreateFailed, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CreateTaskResponse{
		Success:       true,
		ID:            t.ID,
		Titulo:        t.Titulo,
		Descripcion:   t.Descripcion,
		Estado:        t.Estado,
		FechaCreacion: dto.Timestamp(t.FechaCreacion),
	})
}

// Update godoc
// @Summary      Partially update a task
// @Description  Only the fields present in the body are written. The response echoes those fields, not the full task.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "Task ID"
// @Param        body  body      dto.UpdateTaskRequest  true  "Fields to write"
// @Success      200   {object}  dto.UpdateTaskResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	id := c.Param("id")
	var req dto.UpdateTaskRequest
	if err := bindJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: msgInvalidJSON, Error: err.Error()})
		return
	}
	applied, err := h.tasks.Update(c.Request.Context(), id, dom.TaskPatch{
		Titulo:      req.Titulo,
		Descripcion: req.Descripcion,
		Estado:      req.Estado,
	})
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: msgTaskNotFound})
			return
		}
		h.fail(c, "PUT /tasks/:id", msgUpdateFailed, err)
		return
	}
	c.JSON(http.StatusOK, dto.UpdateTaskResponse{
		Success:     true,
		ID:          id,
		Message:     msgTaskUpdated,
		Titulo:      applied.Titulo,
		Descripcion: applied.Descripcion,
		Estado:      applied.Estado,
	})
}

// Delete godoc
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  dto.DeleteTaskResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.tasks.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: msgTaskNotFound})
			return
		}
		h.fail(c, "DELETE /tasks/:id", msgDeleteFailed, err)
		return
	}
	c.JSON(http.StatusOK, dto.DeleteTaskResponse{Success: true, Message: msgTaskDeleted, ID: id})
}

// fail logs a storage failure and echoes its message in a 500 response.
func (h *TaskHandler) fail(c *gin.Context, route, msg string, err error) {
	logging.FromContext(c, h.log).WithError(err).WithField("route", route).Error(msg)
	c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: msg, Error: err.Error()})
}

func taskToResponse(t dom.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:            t.ID,
		Titulo:        t.Titulo,
		Descripcion:   t.Descripcion,
		FechaCreacion: dto.Timestamp(t.FechaCreacion),
		Estado:        t.Estado,
	}
}

func tasksToResponses(list []dom.Task) []dto.TaskResponse {
	out := make([]dto.TaskResponse, len(list))
	for i := range list {
		out[i] = taskToResponse(list[i])
	}
	return out
}

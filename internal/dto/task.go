package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// isoLayout matches JavaScript's Date.prototype.toISOString.
const isoLayout = "2006-01-02T15:04:05.000Z"

// Timestamp marshals as UTC with millisecond precision, the format the
// web client stores and compares.
type Timestamp time.Time

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(isoLayout))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil || strings.TrimSpace(*raw) == "" {
		*t = Timestamp{}
		return nil
	}
	s := strings.TrimSpace(*raw)
	for _, layout := range []string{isoLayout, time.RFC3339Nano, time.RFC3339} {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			*t = Timestamp(parsed.UTC())
			return nil
		}
	}
	return fmt.Errorf("fecha_creacion: use an ISO-8601 timestamp")
}

// Time returns the wrapped time.Time.
func (t Timestamp) Time() time.Time { return time.Time(t) }

type CreateTaskRequest struct {
	Titulo      string `json:"titulo"`
	Descripcion string `json:"descripcion"`
	Estado      *bool  `json:"estado"`
}

// UpdateTaskRequest holds the fields of PUT /tasks/:id. A nil field was not
// sent and is not written.
type UpdateTaskRequest struct {
	Titulo      *string `json:"titulo"`
	Descripcion *string `json:"descripcion"`
	Estado      *bool   `json:"estado"`
}

type TaskResponse struct {
	ID            string    `json:"id"`
	Titulo        string    `json:"titulo"`
	Descripcion   string    `json:"descripcion"`
	FechaCreacion Timestamp `json:"fecha_creacion"`
	Estado        bool      `json:"estado"`
}

type ListTasksResponse struct {
	Success bool           `json:"success"`
	Tasks   []TaskResponse `json:"tasks"`
	Message string         `json:"message,omitempty"`
}

type CreateTaskResponse struct {
	Success       bool      `json:"success"`
	ID            string    `json:"id"`
	Titulo        string    `json:"titulo"`
	Descripcion   string    `json:"descripcion"`
	Estado        bool      `json:"estado"`
	FechaCreacion Timestamp `json:"fecha_creacion"`
}

// UpdateTaskResponse echoes only the fields that were written.
type UpdateTaskResponse struct {
	Success     bool    `json:"success"`
	ID          string  `json:"id"`
	Message     string  `json:"message"`
	Titulo      *string `json:"titulo,omitempty"`
	Descripcion *string `json:"descripcion,omitempty"`
	Estado      *bool   `json:"estado,omitempty"`
}

type DeleteTaskResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ErrorResponse is the error body of the task routes and of storage
// failures on the account routes. Error carries the underlying storage
// message on 500 responses.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

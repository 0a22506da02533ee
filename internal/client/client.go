// Package client talks to the task list API and keeps a local, observable
// copy of the task list.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	dom "github.com/xixhienxix/task-list/internal/domain"
	"github.com/xixhienxix/task-list/internal/dto"
)

// AuthError is the failure variant of Login and Register: the server
// answered with an embedded errorCode.
type AuthError struct {
	Code    int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error %d: %s", e.Code, e.Message)
}

// Account error codes sent by the server.
const (
	CodeNotRegistered = 40
	CodeEmailRequired = 41
	CodeAccountExists = 42
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Message, e.Detail)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
}

// NotFound reports whether the server did not know the task id.
func (e *APIError) NotFound() bool { return e.StatusCode == http.StatusNotFound }

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a Client for the API at baseURL. Requests are not retried
// and have no deadline beyond the caller's context.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{baseURL: strings.TrimRight(baseURL, "/"), http: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type accountReply struct {
	dto.AccountResponse
	ErrorCode *int   `json:"errorCode"`
	Message   string `json:"message"`
}

func (r accountReply) result() (dom.Account, error) {
	if r.ErrorCode != nil {
		return dom.Account{}, &AuthError{Code: *r.ErrorCode, Message: r.Message}
	}
	if !r.Success {
		return dom.Account{}, fmt.Errorf("unexpected account response: %q", r.Message)
	}
	return dom.Account{ID: r.ID, Email: r.Email, Name: r.Name}, nil
}

func (c *Client) Login(ctx context.Context, email string) (dom.Account, error) {
	var reply accountReply
	if err := c.do(ctx, http.MethodPost, "/login", dto.LoginRequest{Email: email}, &reply); err != nil {
		return dom.Account{}, err
	}
	return reply.result()
}

func (c *Client) Register(ctx context.Context, email, name string) (dom.Account, error) {
	var reply accountReply
	if err := c.do(ctx, http.MethodPost, "/register", dto.RegisterRequest{Email: email, Name: name}, &reply); err != nil {
		return dom.Account{}, err
	}
	return reply.result()
}

func (c *Client) ListTasks(ctx context.Context) ([]dom.Task, error) {
	var reply dto.ListTasksResponse
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &reply); err != nil {
		return nil, err
	}
	out := make([]dom.Task, len(reply.Tasks))
	for i, t := range reply.Tasks {
		out[i] = dom.Task{
			ID:            t.ID,
			Titulo:        t.Titulo,
			Descripcion:   t.Descripcion,
			Estado:        t.Estado,
			FechaCreacion: t.FechaCreacion.Time(),
		}
	}
	return out, nil
}

func (c *Client) CreateTask(ctx context.Context, titulo, descripcion string, estado bool) (dom.Task, error) {
	req := dto.CreateTaskRequest{Titulo: titulo, Descripcion: descripcion, Estado: &estado}
	var reply dto.CreateTaskResponse
	if err := c.do(ctx, http.MethodPost, "/tasks", req, &reply); err != nil {
		return dom.Task{}, err
	}
	return dom.Task{
		ID:            reply.ID,
		Titulo:        reply.Titulo,
		Descripcion:   reply.Descripcion,
		Estado:        reply.Estado,
		FechaCreacion: reply.FechaCreacion.Time(),
	}, nil
}

// UpdateTask sends the non-nil fields of patch and returns the fields the
// server reports as written.
func (c *Client) UpdateTask(ctx context.Context, id string, patch dom.TaskPatch) (dom.TaskPatch, error) {
	req := dto.UpdateTaskRequest{Titulo: patch.Titulo, Descripcion: patch.Descripcion, Estado: patch.Estado}
	var reply dto.UpdateTaskResponse
	if err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), req, &reply); err != nil {
		return dom.TaskPatch{}, err
	}
	return dom.TaskPatch{Titulo: reply.Titulo, Descripcion: reply.Descripcion, Estado: reply.Estado}, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	var reply dto.DeleteTaskResponse
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, &reply)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var failure dto.ErrorResponse
		if json.Unmarshal(raw, &failure) == nil && failure.Message != "" {
			apiErr.Message = failure.Message
			apiErr.Detail = failure.Error
		}
		return apiErr
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

package client

import (
	"context"

	dom "github.com/xixhienxix/task-list/internal/domain"
)

// Tasks performs task calls and mirrors each successful result into a
// TaskStore. Failed calls leave the store untouched.
type Tasks struct {
	api   *Client
	store *TaskStore
}

func NewTasks(api *Client, store *TaskStore) *Tasks {
	return &Tasks{api: api, store: store}
}

func (t *Tasks) Store() *TaskStore { return t.store }

// Refresh replaces the store with the server's list.
func (t *Tasks) Refresh(ctx context.Context) ([]dom.Task, error) {
	list, err := t.api.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	t.store.ReplaceAll(list)
	return list, nil
}

func (t *Tasks) Add(ctx context.Context, titulo, descripcion string, estado bool) (dom.Task, error) {
	created, err := t.api.CreateTask(ctx, titulo, descripcion, estado)
	if err != nil {
		return dom.Task{}, err
	}
	t.store.Insert(created)
	return created, nil
}

// Update merges the fields the server applied, not the ones requested.
func (t *Tasks) Update(ctx context.Context, id string, patch dom.TaskPatch) (dom.TaskPatch, error) {
	applied, err := t.api.UpdateTask(ctx, id, patch)
	if err != nil {
		return dom.TaskPatch{}, err
	}
	t.store.Patch(id, applied)
	return applied, nil
}

func (t *Tasks) Remove(ctx context.Context, id string) error {
	if err := t.api.DeleteTask(ctx, id); err != nil {
		return err
	}
	t.store.Remove(id)
	return nil
}

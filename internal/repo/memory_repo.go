package repo

import (
	"context"
	"sort"
	"sync"

	dom "github.com/xixhienxix/task-list/internal/domain"
)

// MemoryAccountRepo keeps accounts in process memory.
type MemoryAccountRepo struct {
	mu      sync.RWMutex
	byID    map[string]dom.Account
	byEmail map[string]string
}

// NewMemoryAccountRepo returns an empty MemoryAccountRepo.
func NewMemoryAccountRepo() *MemoryAccountRepo {
	return &MemoryAccountRepo{
		byID:    make(map[string]dom.Account),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryAccountRepo) FindByEmail(_ context.Context, email string) (dom.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return dom.Account{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryAccountRepo) Create(_ context.Context, email, name string) (dom.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[email]; ok {
		return dom.Account{}, ErrDuplicate
	}
	a := dom.Account{ID: newID(), Email: email, Name: name}
	r.byID[a.ID] = a
	r.byEmail[email] = a.ID
	return a, nil
}

// MemoryTaskRepo keeps tasks in process memory.
type MemoryTaskRepo struct {
	mu    sync.RWMutex
	tasks map[string]dom.Task
}

// NewMemoryTaskRepo returns an empty MemoryTaskRepo.
func NewMemoryTaskRepo() *MemoryTaskRepo {
	return &MemoryTaskRepo{tasks: make(map[string]dom.Task)}
}

// List returns tasks ordered by creation time, then id.
func (r *MemoryTaskRepo) List(_ context.Context) ([]dom.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]dom.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].FechaCreacion.Equal(list[j].FechaCreacion) {
			return list[i].ID < list[j].ID
		}
		return list[i].FechaCreacion.Before(list[j].FechaCreacion)
	})
	return list, nil
}

func (r *MemoryTaskRepo) Create(_ context.Context, t dom.Task) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t.ID = newID()
	r.tasks[t.ID] = t
	return t, nil
}

func (r *MemoryTaskRepo) Get(_ context.Context, id string) (dom.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return dom.Task{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryTaskRepo) Update(_ context.Context, id string, patch dom.TaskPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return ErrNotFound
	}
	r.tasks[id] = patch.Apply(t)
	return nil
}

func (r *MemoryTaskRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(r.tasks, id)
	return nil
}

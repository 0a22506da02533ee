package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	dom "github.com/xixhienxix/task-list/internal/domain"
	"github.com/xixhienxix/task-list/internal/metrics"
	"github.com/xixhienxix/task-list/internal/repo"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

var (
	ErrTaskFieldsRequired = errors.New("titulo and descripcion are required")
	ErrTaskNotFound       = errors.New("task not found")
)

// ListCache is the read-through cache used by TaskService.List. Invalidate
// advances the generation; SetList must drop the list when gen is no longer
// current.
type ListCache interface {
	Generation(ctx context.Context) (int64, error)
	GetList(ctx context.Context) ([]dom.Task, bool, error)
	SetList(ctx context.Context, gen int64, list []dom.Task) error
	Invalidate(ctx context.Context) error
}

// listTimeout bounds a shared list read once it is detached from the
// caller that started it.
const listTimeout = 30 * time.Second

type TaskService struct {
	repo  repo.TaskRepo
	cache ListCache
	sf    singleflight.Group
	log   logrus.FieldLogger
	now   func() time.Time
}

// NewTaskService creates a TaskService. If c is nil, caching is disabled.
func NewTaskService(r repo.TaskRepo, c ListCache, log logrus.FieldLogger) *TaskService {
	return &TaskService{repo: r, cache: c, log: log, now: time.Now}
}

// List returns every task with missing fields defaulted. An empty store
// yields an empty, non-nil slice.
func (s *TaskService) List(ctx context.Context) ([]dom.Task, error) {
	list, err := s.list(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	now := s.now().UTC()
	out := make([]dom.Task, len(list))
	for i := range list {
		out[i] = list[i].Normalize(now)
	}
	return out, nil
}

func (s *TaskService) list(ctx context.Context) ([]dom.Task, error) {
	if s.cache == nil {
		return s.repo.List(ctx)
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.log.WithError(err).Warn("task cache generation read failed")
		return s.repo.List(ctx)
	}

	// Callers are only coalesced within one generation, so a List that
	// starts after a write never shares a read that began before it.
	v, err, _ := s.sf.Do(strconv.FormatInt(gen, 10), func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), listTimeout)
		defer cancel()

		cached, ok, err := s.cache.GetList(ctx)
		if err != nil {
			s.log.WithError(err).Warn("task cache read failed")
		}
		metrics.RecordCacheLookup(ok)
		if ok {
			return cached, nil
		}
		fresh, err := s.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetList(ctx, gen, fresh); err != nil {
			s.log.WithError(err).Warn("task cache write failed")
		}
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Task), nil
}

// Create inserts a task. fecha_creacion is always set here; estado
// defaults to false.
func (s *TaskService) Create(ctx context.Context, titulo, descripcion string, estado *bool) (dom.Task, error) {
	if titulo == "" || descripcion == "" {
		return dom.Task{}, ErrTaskFieldsRequired
	}
	t := dom.Task{
		Titulo:        titulo,
		Descripcion:   descripcion,
		Estado:        estado != nil && *estado,
		FechaCreacion: s.now().UTC(),
	}
	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return dom.Task{}, fmt.Errorf("create task: %w", err)
	}
	s.invalidateCache(ctx)
	return created, nil
}

// Update applies the non-nil fields of patch to task id and returns the
// patch that was written.
func (s *TaskService) Update(ctx context.Context, id string, patch dom.TaskPatch) (dom.TaskPatch, error) {
	if err := s.exists(ctx, id); err != nil {
		return dom.TaskPatch{}, err
	}
	if patch.Empty() {
		return patch, nil
	}
	if err := s.repo.Update(ctx, id, patch); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.TaskPatch{}, ErrTaskNotFound
		}
		return dom.TaskPatch{}, fmt.Errorf("update task: %w", err)
	}
	s.invalidateCache(ctx)
	return patch, nil
}

// Delete removes task id.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.exists(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *TaskService) exists(ctx context.Context, id string) error {
	if id == "" {
		return ErrTaskNotFound
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("get task: %w", err)
	}
	return nil
}

func (s *TaskService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WithError(err).Warn("task cache invalidation failed")
	}
}

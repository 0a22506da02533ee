package client

import (
	"sync"

	dom "github.com/xixhienxix/task-list/internal/domain"
)

// TaskStore is the local copy of the task list. It is advisory: writers
// update it only after the server accepted a change, and it may drift from
// the server when other clients write.
//
// Subscribers receive the current list on Subscribe and then every later
// state. A slow subscriber only sees the most recent state.
type TaskStore struct {
	mu    sync.Mutex
	tasks []dom.Task
	subs  map[int]chan []dom.Task
	next  int
}

func NewTaskStore() *TaskStore {
	return &TaskStore{subs: make(map[int]chan []dom.Task)}
}

// Snapshot returns a copy of the current list.
func (s *TaskStore) Snapshot() []dom.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Subscribe returns a channel of list states and a cancel func that closes it.
func (s *TaskStore) Subscribe() (<-chan []dom.Task, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	ch := make(chan []dom.Task, 1)
	ch <- s.copyLocked()
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// ReplaceAll sets the list to tasks.
func (s *TaskStore) ReplaceAll(tasks []dom.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append([]dom.Task(nil), tasks...)
	s.publishLocked()
}

// Insert puts t at the front of the list.
func (s *TaskStore) Insert(t dom.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append([]dom.Task{t}, s.tasks...)
	s.publishLocked()
}

// Patch merges p into the task with the given id. Unknown ids are ignored.
func (s *TaskStore) Patch(id string, p dom.TaskPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i] = p.Apply(s.tasks[i])
		}
	}
	s.publishLocked()
}

// Remove drops the task with the given id.
func (s *TaskStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tasks[:0:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	s.publishLocked()
}

func (s *TaskStore) copyLocked() []dom.Task {
	out := make([]dom.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *TaskStore) publishLocked() {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.copyLocked()
	}
}

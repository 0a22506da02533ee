package repo

import (
	"context"
	"errors"

	dom "github.com/xixhienxix/task-list/internal/domain"

	nanoid "github.com/jaevor/go-nanoid"
)

// Collection names, shared by every driver.
const (
	AccountsCollection = "usuarios"
	TasksCollection    = "tareas"
)

var (
	// ErrNotFound is returned when no document has the requested id or email.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when an insert hits the unique email constraint.
	ErrDuplicate = errors.New("duplicate document")
)

// AccountRepo provides account persistence.
type AccountRepo interface {
	FindByEmail(ctx context.Context, email string) (dom.Account, error)
	Create(ctx context.Context, email, name string) (dom.Account, error)
}

// TaskRepo provides task persistence. Every method touches a single document
// except List.
type TaskRepo interface {
	List(ctx context.Context) ([]dom.Task, error)
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	Get(ctx context.Context, id string) (dom.Task, error)
	Update(ctx context.Context, id string, patch dom.TaskPatch) error
	Delete(ctx context.Context, id string) error
}

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// newID yields 20-character alphanumeric document ids.
var newID = mustIDGenerator()

func mustIDGenerator() func() string {
	gen, err := nanoid.CustomASCII(idAlphabet, 20)
	if err != nil {
		panic(err)
	}
	return gen
}

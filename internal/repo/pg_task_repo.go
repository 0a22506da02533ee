package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	dom "github.com/xixhienxix/task-list/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, titulo, descripcion, estado, fecha_creacion`

// PGTaskRepo implements TaskRepo with Postgres.
type PGTaskRepo struct {
	db *pgxpool.Pool
}

func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

// pgTaskRow mirrors the nullable columns of tareas.
type pgTaskRow struct {
	ID            string
	Titulo        *string
	Descripcion   *string
	Estado        *bool
	FechaCreacion *time.Time
}

func (row pgTaskRow) task() dom.Task {
	t := dom.Task{ID: row.ID}
	if row.Titulo != nil {
		t.Titulo = *row.Titulo
	}
	if row.Descripcion != nil {
		t.Descripcion = *row.Descripcion
	}
	if row.Estado != nil {
		t.Estado = *row.Estado
	}
	if row.FechaCreacion != nil {
		t.FechaCreacion = row.FechaCreacion.UTC()
	}
	return t
}

func scanTask(row pgx.Row) (dom.Task, error) {
	var r pgTaskRow
	if err := row.Scan(&r.ID, &r.Titulo, &r.Descripcion, &r.Estado, &r.FechaCreacion); err != nil {
		return dom.Task{}, err
	}
	return r.task(), nil
}

func (r *PGTaskRepo) List(ctx context.Context) ([]dom.Task, error) {
	rows, err := r.db.Query(ctx, `SELECT `+taskColumns+` FROM tareas ORDER BY fecha_creacion ASC NULLS LAST, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("pg list tasks: %w", err)
	}
	defer rows.Close()
	var list []dom.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("pg scan task: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *PGTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	t.ID = newID()
	_, err := r.db.Exec(ctx,
		`INSERT INTO tareas (`+taskColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.Titulo, t.Descripcion, t.Estado, t.FechaCreacion,
	)
	if err != nil {
		return dom.Task{}, fmt.Errorf("pg create task: %w", err)
	}
	return t, nil
}

func (r *PGTaskRepo) Get(ctx context.Context, id string) (dom.Task, error) {
	t, err := scanTask(r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tareas WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.Task{}, ErrNotFound
	}
	if err != nil {
		return dom.Task{}, fmt.Errorf("pg get task: %w", err)
	}
	return t, nil
}

// Update writes only the non-nil patch fields.
func (r *PGTaskRepo) Update(ctx context.Context, id string, patch dom.TaskPatch) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE tareas SET
			titulo = COALESCE($2, titulo),
			descripcion = COALESCE($3, descripcion),
			estado = COALESCE($4, estado)
		WHERE id = $1`,
		id, patch.Titulo, patch.Descripcion, patch.Estado,
	)
	if err != nil {
		return fmt.Errorf("pg update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGTaskRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tareas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pg delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

package domain

import "time"

// Task is the only mutable business entity. It is not owned by any Account.
type Task struct {
	ID            string
	Titulo        string
	Descripcion   string
	Estado        bool
	FechaCreacion time.Time
}

// TaskPatch carries the fields of a partial update. Nil fields are left
// untouched in storage.
type TaskPatch struct {
	Titulo      *string
	Descripcion *string
	Estado      *bool
}

// Empty reports whether the patch writes nothing.
func (p TaskPatch) Empty() bool {
	return p.Titulo == nil && p.Descripcion == nil && p.Estado == nil
}

// Apply returns t with the patch fields written over it.
func (p TaskPatch) Apply(t Task) Task {
	if p.Titulo != nil {
		t.Titulo = *p.Titulo
	}
	if p.Descripcion != nil {
		t.Descripcion = *p.Descripcion
	}
	if p.Estado != nil {
		t.Estado = *p.Estado
	}
	return t
}

// Normalize fills the defaults a stored document may be missing.
// Titulo and Descripcion already default to "" and Estado to false.
func (t Task) Normalize(now time.Time) Task {
	if t.FechaCreacion.IsZero() {
		t.FechaCreacion = now
	}
	return t
}

package repo

import (
	"context"
	"errors"
	"fmt"

	dom "github.com/xixhienxix/task-list/internal/domain"
	"github.com/xixhienxix/task-list/internal/utils"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGAccountRepo implements AccountRepo with Postgres.
type PGAccountRepo struct {
	db *pgxpool.Pool
}

// NewPGAccountRepo returns a new PGAccountRepo.
func NewPGAccountRepo(db *pgxpool.Pool) *PGAccountRepo {
	return &PGAccountRepo{db: db}
}

// FindByEmail returns the first account with the given email.
func (r *PGAccountRepo) FindByEmail(ctx context.Context, email string) (dom.Account, error) {
	var a dom.Account
	err := r.db.QueryRow(ctx,
		`SELECT id, email, COALESCE(name, '') FROM usuarios WHERE email = $1 LIMIT 1`,
		email,
	).Scan(&a.ID, &a.Email, &a.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.Account{}, ErrNotFound
	}
	if err != nil {
		return dom.Account{}, fmt.Errorf("pg find account: %w", err)
	}
	return a, nil
}

// Create inserts a new account and returns it.
func (r *PGAccountRepo) Create(ctx context.Context, email, name string) (dom.Account, error) {
	a := dom.Account{ID: newID(), Email: email, Name: name}
	_, err := r.db.Exec(ctx,
		`INSERT INTO usuarios (id, email, name) VALUES ($1, $2, NULLIF($3, ''))`,
		a.ID, a.Email, a.Name,
	)
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.Account{}, ErrDuplicate
		}
		return dom.Account{}, fmt.Errorf("pg create account: %w", err)
	}
	return a, nil
}

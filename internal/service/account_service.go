package service

import (
	"context"
	"errors"
	"fmt"

	dom "github.com/xixhienxix/task-list/internal/domain"
	"github.com/xixhienxix/task-list/internal/repo"
)

var (
	ErrEmailRequired = errors.New("email required")
	ErrNotRegistered = errors.New("account not registered")
	ErrAccountExists = errors.New("account already exists")
)

// AccountService resolves emails to accounts. There is no credential
// check: authentication is an email lookup.
type AccountService struct {
	repo repo.AccountRepo
}

// NewAccountService returns a new AccountService.
func NewAccountService(r repo.AccountRepo) *AccountService {
	return &AccountService{repo: r}
}

// Authenticate returns the account registered under email.
// The email is compared byte for byte; only "" counts as missing.
func (s *AccountService) Authenticate(ctx context.Context, email string) (dom.Account, error) {
	if email == "" {
		return dom.Account{}, ErrEmailRequired
	}
	a, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return dom.Account{}, ErrNotRegistered
		}
		return dom.Account{}, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}

// Register creates an account for email unless one already exists.
// The lookup and insert are not atomic; the store's unique email index
// turns a lost race into ErrAccountExists.
func (s *AccountService) Register(ctx context.Context, email, name string) (dom.Account, error) {
	if email == "" {
		return dom.Account{}, ErrEmailRequired
	}
	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return dom.Account{}, ErrAccountExists
	case !errors.Is(err, repo.ErrNotFound):
		return dom.Account{}, fmt.Errorf("find account: %w", err)
	}

	a, err := s.repo.Create(ctx, email, name)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return dom.Account{}, ErrAccountExists
		}
		return dom.Account{}, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

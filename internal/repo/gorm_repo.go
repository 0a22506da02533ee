package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	dom "github.com/xixhienxix/task-list/internal/domain"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type gormAccount struct {
	ID    string  `gorm:"primaryKey;size:32"`
	Email string  `gorm:"uniqueIndex;not null"`
	Name  *string
}

func (gormAccount) TableName() string { return AccountsCollection }

type gormTask struct {
	ID            string `gorm:"primaryKey;size:32"`
	Titulo        *string
	Descripcion   *string
	Estado        *bool
	FechaCreacion *time.Time `gorm:"column:fecha_creacion;index"`
}

func (gormTask) TableName() string { return TasksCollection }

func (m gormTask) task() dom.Task {
	return pgTaskRow{
		ID:            m.ID,
		Titulo:        m.Titulo,
		Descripcion:   m.Descripcion,
		Estado:        m.Estado,
		FechaCreacion: m.FechaCreacion,
	}.task()
}

// OpenSQLite opens (creating if needed) a sqlite database at path and
// migrates the usuarios and tareas tables. Use ":memory:" for a throwaway store.
func OpenSQLite(path string, debug bool) (*gorm.DB, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise see its own empty database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&gormAccount{}, &gormTask{}); err != nil {
		return nil, fmt.Errorf("sqlite migrate: %w", err)
	}
	return db, nil
}

// GormAccountRepo implements AccountRepo with gorm.
type GormAccountRepo struct {
	db *gorm.DB
}

func NewGormAccountRepo(db *gorm.DB) *GormAccountRepo {
	return &GormAccountRepo{db: db}
}

func (r *GormAccountRepo) FindByEmail(ctx context.Context, email string) (dom.Account, error) {
	var m gormAccount
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dom.Account{}, ErrNotFound
		}
		return dom.Account{}, fmt.Errorf("gorm find account: %w", err)
	}
	a := dom.Account{ID: m.ID, Email: m.Email}
	if m.Name != nil {
		a.Name = *m.Name
	}
	return a, nil
}

func (r *GormAccountRepo) Create(ctx context.Context, email, name string) (dom.Account, error) {
	m := gormAccount{ID: newID(), Email: email}
	if name != "" {
		m.Name = &name
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dom.Account{}, ErrDuplicate
		}
		return dom.Account{}, fmt.Errorf("gorm create account: %w", err)
	}
	return dom.Account{ID: m.ID, Email: email, Name: name}, nil
}

// GormTaskRepo implements TaskRepo with gorm.
type GormTaskRepo struct {
	db *gorm.DB
}

func NewGormTaskRepo(db *gorm.DB) *GormTaskRepo {
	return &GormTaskRepo{db: db}
}

func (r *GormTaskRepo) List(ctx context.Context) ([]dom.Task, error) {
	var rows []gormTask
	if err := r.db.WithContext(ctx).Order("fecha_creacion ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("gorm list tasks: %w", err)
	}
	list := make([]dom.Task, 0, len(rows))
	for _, m := range rows {
		list = append(list, m.task())
	}
	return list, nil
}

func (r *GormTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	t.ID = newID()
	created := t.FechaCreacion
	m := gormTask{
		ID:            t.ID,
		Titulo:        &t.Titulo,
		Descripcion:   &t.Descripcion,
		Estado:        &t.Estado,
		FechaCreacion: &created,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return dom.Task{}, fmt.Errorf("gorm create task: %w", err)
	}
	return t, nil
}

func (r *GormTaskRepo) Get(ctx context.Context, id string) (dom.Task, error) {
	var m gormTask
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dom.Task{}, ErrNotFound
		}
		return dom.Task{}, fmt.Errorf("gorm get task: %w", err)
	}
	return m.task(), nil
}

func (r *GormTaskRepo) Update(ctx context.Context, id string, patch dom.TaskPatch) error {
	fields := map[string]any{}
	if patch.Titulo != nil {
		fields["titulo"] = *patch.Titulo
	}
	if patch.Descripcion != nil {
		fields["descripcion"] = *patch.Descripcion
	}
	if patch.Estado != nil {
		fields["estado"] = *patch.Estado
	}
	if len(fields) == 0 {
		_, err := r.Get(ctx, id)
		return err
	}
	result := r.db.WithContext(ctx).Model(&gormTask{}).Where("id = ?", id).Updates(fields)
	if err := result.Error; err != nil {
		return fmt.Errorf("gorm update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormTaskRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&gormTask{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("gorm delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

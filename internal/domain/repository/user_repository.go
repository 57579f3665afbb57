package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/common"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/domain/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByName(ctx context.Context, name string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	SetAdmin(ctx context.Context, id int64, isAdmin bool) error
}

type sqlUserRepository struct {
	db *sqlx.DB
}

func NewSQLUserRepository(db *sqlx.DB) UserRepository {
	return &sqlUserRepository{db: db}
}

const userColumns = `id, name, password, is_admin, created_at, updated_at`

func (r *sqlUserRepository) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	query := r.db.Rebind(`INSERT INTO users (name, password, is_admin, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?) RETURNING id`)
	err := r.db.QueryRowxContext(ctx, query, user.Name, user.PasswordHash, user.IsAdmin, now, now).Scan(&user.ID)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("user %q already exists: %w", user.Name, common.ErrConflict)
		}
		return fmt.Errorf("sqlUserRepository.Create: %w", err)
	}
	user.CreatedAt, user.UpdatedAt = now, now
	return nil
}

func (r *sqlUserRepository) FindByName(ctx context.Context, name string) (*model.User, error) {
	user := &model.User{}
	err := r.db.GetContext(ctx, user, r.db.Rebind(`SELECT `+userColumns+` FROM users WHERE name = ?`), name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("sqlUserRepository.FindByName: %w", err)
	}
	return user, nil
}

func (r *sqlUserRepository) List(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("sqlUserRepository.List: %w", err)
	}
	return users, nil
}

func (r *sqlUserRepository) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	query := r.db.Rebind(`UPDATE users SET is_admin = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, isAdmin, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("sqlUserRepository.SetAdmin: %w", err)
	}
	return expectAffected(res, "sqlUserRepository.SetAdmin")
}

// expectAffected turns an update or delete that matched nothing into
// common.ErrNotFound.
func expectAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

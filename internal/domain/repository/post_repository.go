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

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id int64) (*model.Post, error)
	List(ctx context.Context) ([]model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id int64) error
}

type sqlPostRepository struct {
	db *sqlx.DB
}

func NewSQLPostRepository(db *sqlx.DB) PostRepository {
	return &sqlPostRepository{db: db}
}

const postSelect = `SELECT p.id, p.title, p.slug, p.body, p.user_id, u.name AS author_name, p.created_at, p.updated_at
	FROM posts p JOIN users u ON u.id = p.user_id`

func (r *sqlPostRepository) Create(ctx context.Context, post *model.Post) error {
	now := time.Now().UTC()
	query := r.db.Rebind(`INSERT INTO posts (title, slug, body, user_id, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	err := r.db.QueryRowxContext(ctx, query, post.Title, post.Slug, post.Body, post.UserID, now, now).Scan(&post.ID)
	if err != nil {
		return fmt.Errorf("sqlPostRepository.Create: %w", err)
	}
	post.CreatedAt, post.UpdatedAt = now, now
	return nil
}

func (r *sqlPostRepository) FindByID(ctx context.Context, id int64) (*model.Post, error) {
	post := &model.Post{}
	if err := r.db.GetContext(ctx, post, r.db.Rebind(postSelect+` WHERE p.id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("sqlPostRepository.FindByID: %w", err)
	}
	return post, nil
}

// List returns every post, newest first.
func (r *sqlPostRepository) List(ctx context.Context) ([]model.Post, error) {
	posts := []model.Post{}
	if err := r.db.SelectContext(ctx, &posts, postSelect+` ORDER BY p.created_at DESC, p.id DESC`); err != nil {
		return nil, fmt.Errorf("sqlPostRepository.List: %w", err)
	}
	return posts, nil
}

func (r *sqlPostRepository) Update(ctx context.Context, post *model.Post) error {
	now := time.Now().UTC()
	query := r.db.Rebind(`UPDATE posts SET title = ?, slug = ?, body = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, post.Title, post.Slug, post.Body, now, post.ID)
	if err != nil {
		return fmt.Errorf("sqlPostRepository.Update: %w", err)
	}
	if err := expectAffected(res, "sqlPostRepository.Update"); err != nil {
		return err
	}
	post.UpdatedAt = now
	return nil
}

func (r *sqlPostRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM posts WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("sqlPostRepository.Delete: %w", err)
	}
	return expectAffected(res, "sqlPostRepository.Delete")
}

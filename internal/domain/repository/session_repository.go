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

type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	// FindLive returns the session with the given id only while it is active
	// and its expiry is strictly after now.
	FindLive(ctx context.Context, sessionID string, now time.Time) (*model.Session, error)
	Deactivate(ctx context.Context, id int64) error
	// DeactivateExpired flips every active session whose expiry is at or
	// before now and returns how many rows changed.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type sqlSessionRepository struct {
	db *sqlx.DB
}

func NewSQLSessionRepository(db *sqlx.DB) SessionRepository {
	return &sqlSessionRepository{db: db}
}

func (r *sqlSessionRepository) Create(ctx context.Context, session *model.Session) error {
	now := time.Now().UTC()
	query := r.db.Rebind(`INSERT INTO sessions (user_id, session_id, token, active, expire_at, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err := r.db.QueryRowxContext(ctx, query,
		session.UserID, session.SessionID, session.Token, session.Active, session.ExpireAt, now, now,
	).Scan(&session.ID)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("session %s already exists: %w", session.SessionID, common.ErrConflict)
		}
		return fmt.Errorf("sqlSessionRepository.Create: %w", err)
	}
	session.CreatedAt, session.UpdatedAt = now, now
	return nil
}

func (r *sqlSessionRepository) FindLive(ctx context.Context, sessionID string, now time.Time) (*model.Session, error) {
	query := r.db.Rebind(`SELECT id, user_id, session_id, token, active, expire_at, created_at, updated_at
	          FROM sessions WHERE session_id = ? AND active = ? AND expire_at > ?`)
	session := &model.Session{}
	if err := r.db.GetContext(ctx, session, query, sessionID, true, now.Unix()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("sqlSessionRepository.FindLive: %w", err)
	}
	return session, nil
}

func (r *sqlSessionRepository) Deactivate(ctx context.Context, id int64) error {
	query := r.db.Rebind(`UPDATE sessions SET active = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, false, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("sqlSessionRepository.Deactivate: %w", err)
	}
	return expectAffected(res, "sqlSessionRepository.Deactivate")
}

func (r *sqlSessionRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	query := r.db.Rebind(`UPDATE sessions SET active = ?, updated_at = ? WHERE active = ? AND expire_at <= ?`)
	res, err := r.db.ExecContext(ctx, query, false, now.UTC(), true, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("sqlSessionRepository.DeactivateExpired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlSessionRepository.DeactivateExpired: %w", err)
	}
	return n, nil
}

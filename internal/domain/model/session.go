package model

import "time"

// Session tracks one login. Rows are never deleted; logout flips Active.
type Session struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	SessionID string    `db:"session_id"`
	Token     string    `db:"token"`
	Active    bool      `db:"active"`
	ExpireAt  int64     `db:"expire_at"` // unix seconds, equal to the token's exp claim
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsLive reports whether the session may still authenticate requests at now.
// Expiry is exclusive: a session expiring exactly now is dead.
func (s *Session) IsLive(now time.Time) bool {
	return s.Active && s.ExpireAt > now.Unix()
}

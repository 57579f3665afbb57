package worker

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/domain/model"
	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/domain/repository/mock"
)

func newTestSweeper(t *testing.T) (*SessionSweeper, *mock.SessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	sessions := mock.NewSessionRepository()
	return NewSessionSweeper(rdb, sessions, time.Minute), sessions, mr
}

func addSession(t *testing.T, repo *mock.SessionRepository, id string, expireAt time.Time) {
	t.Helper()
	s := &model.Session{UserID: 1, SessionID: id, Token: "t", Active: true, ExpireAt: expireAt.Unix()}
	require.NoError(t, repo.Create(context.Background(), s))
}

func TestSweepOnceDeactivatesExpiredSessions(t *testing.T) {
	sweeper, sessions, mr := newTestSweeper(t)
	now := time.Now()
	sweeper.now = func() time.Time { return now }

	addSession(t, sessions, "old", now.Add(-time.Hour))
	addSession(t, sessions, "edge", now)
	addSession(t, sessions, "live", now.Add(time.Hour))

	n, err := sweeper.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	for _, s := range sessions.All() {
		assert.Equal(t, s.SessionID == "live", s.Active, s.SessionID)
	}
	assert.False(t, mr.Exists(SweepLockKey), "lock is released")
}

func TestSweepOnceSkipsWhileLocked(t *testing.T) {
	sweeper, sessions, mr := newTestSweeper(t)
	addSession(t, sessions, "old", time.Now().Add(-time.Hour))
	require.NoError(t, mr.Set(SweepLockKey, "other-worker"))

	_, err := sweeper.SweepOnce(context.Background())
	assert.ErrorIs(t, err, ErrLockHeld)
	assert.True(t, sessions.All()[0].Active)

	got, err := mr.Get(SweepLockKey)
	require.NoError(t, err)
	assert.Equal(t, "other-worker", got, "a foreign lock is left alone")
}

func TestStartStopsWithContext(t *testing.T) {
	sweeper, sessions, _ := newTestSweeper(t)
	sweeper.interval = 10 * time.Millisecond
	addSession(t, sessions, "old", time.Now().Add(-time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return !sessions.All()[0].Active
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

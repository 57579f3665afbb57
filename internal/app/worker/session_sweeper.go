package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/domain/repository"
)

const (
	SweepLockKey = "blog:lock:session-sweep"
	sweepLockTTL = time.Minute
)

// ErrLockHeld is returned by SweepOnce when another instance is sweeping.
var ErrLockHeld = errors.New("session sweep lock is held by another worker")

// releaseLock deletes the lock only while it still holds our value.
var releaseLock = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
else
    return 0
end
`)

// SessionSweeper deactivates login sessions whose expiry has passed, so the
// sessions table reflects what AuthVerify would accept.
type SessionSweeper struct {
	rdb      *redis.Client
	sessions repository.SessionRepository
	interval time.Duration
	now      func() time.Time
}

func NewSessionSweeper(rdb *redis.Client, sessions repository.SessionRepository, interval time.Duration) *SessionSweeper {
	return &SessionSweeper{
		rdb:      rdb,
		sessions: sessions,
		interval: interval,
		now:      time.Now,
	}
}

// Start sweeps once per interval until ctx is cancelled.
func (w *SessionSweeper) Start(ctx context.Context) {
	log.Printf("Session sweeper started, running every %s", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Session sweeper stopping...")
			return
		case <-ticker.C:
			_, err := w.SweepOnce(ctx)
			switch {
			case err == nil:
			case errors.Is(err, ErrLockHeld):
				log.Printf("INFO: %v, skipping this round", err)
			case errors.Is(err, context.Canceled):
				return
			default:
				log.Printf("ERROR: session sweep failed: %v", err)
			}
		}
	}
}

// SweepOnce deactivates expired sessions while holding a Redis lock, so only
// one server instance sweeps at a time.
func (w *SessionSweeper) SweepOnce(ctx context.Context) (int64, error) {
	lockValue := uuid.NewString()
	ok, err := w.rdb.SetNX(ctx, SweepLockKey, lockValue, sweepLockTTL).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to acquire sweep lock: %w", err)
	}
	if !ok {
		return 0, ErrLockHeld
	}

	defer func() {
		deleted, err := releaseLock.Run(context.WithoutCancel(ctx), w.rdb, []string{SweepLockKey}, lockValue).Int64()
		if err != nil {
			log.Printf("ERROR: Failed to release lock %s: %v", SweepLockKey, err)
		} else if deleted == 0 {
			log.Printf("WARN: Did not release lock %s; it expired or was taken by another worker.", SweepLockKey)
		}
	}()

	n, err := w.sessions.DeactivateExpired(ctx, w.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Printf("INFO: deactivated %d expired session(s)", n)
	}
	return n, nil
}

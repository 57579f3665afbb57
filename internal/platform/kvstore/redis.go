package kvstore

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/leandroccdev/curso-hacking-etico-m4-leccion-2-actividad-1/internal/platform/config"
)

var RDB *redis.Client

// Connect opens the Redis client backing web sessions and keeps it in RDB.
func Connect(cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("kvstore.Connect: %w", err)
	}

	RDB = rdb
	log.Printf("INFO: connected to Redis at %s", cfg.RedisAddr)
	return rdb, nil
}

func Close() {
	if RDB != nil {
		RDB.Close()
		log.Println("INFO: Redis connection closed")
	}
}

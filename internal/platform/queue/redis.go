package queue

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect builds a Redis client and verifies it with a bounded ping. A nil
// error means the server answered; the store factory treats any failure as a
// signal to fall back to the file backend.
func Connect(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}

package repository

import (
	"context"
	"log"

	"repo_agent/internal/domain/model"
	"repo_agent/internal/platform/database"
	"repo_agent/internal/platform/queue"
)

// JobStore persists the full job snapshot: the store's view of the world is
// read and written as one mapping of job id to record. Implementations must
// tolerate an empty world (no file, no key, no row) by returning an empty map.
type JobStore interface {
	Load(ctx context.Context) (map[string]model.Job, error)
	Save(ctx context.Context, jobs map[string]model.Job) error
}

// StoreOptions selects and parameterizes a backend. Backend is one of
// "memory", "file", "redis" or "postgres".
type StoreOptions struct {
	Backend  string
	FilePath string
	// SnapshotKey names the redis key / postgres row the snapshot lives under.
	SnapshotKey string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PostgresConnStr string
}

// NewJobStore builds the configured backend. The redis and postgres backends
// probe their server at construction time; if the server is unreachable the
// factory logs a warning and degrades to the file backend, so callers always
// get a working store from the same call.
func NewJobStore(ctx context.Context, opts StoreOptions) JobStore {
	switch opts.Backend {
	case "memory":
		return NewMemoryJobStore()
	case "file":
		return NewFileJobStore(opts.FilePath)
	case "redis":
		rdb, err := queue.Connect(opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
		if err != nil {
			log.Printf("WARN: redis store unavailable (%v), falling back to file store at %s", err, opts.FilePath)
			return NewFileJobStore(opts.FilePath)
		}
		return NewRedisJobStore(rdb, opts.SnapshotKey)
	case "postgres":
		db, err := database.Connect(opts.PostgresConnStr)
		if err != nil {
			log.Printf("WARN: postgres store unavailable (%v), falling back to file store at %s", err, opts.FilePath)
			return NewFileJobStore(opts.FilePath)
		}
		store, err := NewPgJobStore(ctx, db, opts.SnapshotKey)
		if err != nil {
			log.Printf("WARN: postgres store init failed (%v), falling back to file store at %s", err, opts.FilePath)
			db.Close()
			return NewFileJobStore(opts.FilePath)
		}
		return store
	default:
		log.Printf("WARN: unknown store backend %q, using in-memory store", opts.Backend)
		return NewMemoryJobStore()
	}
}

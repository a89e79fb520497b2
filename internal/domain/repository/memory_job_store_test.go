package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repo_agent/internal/domain/model"
)

func TestMemoryJobStoreRoundTrip(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()

	in := map[string]model.Job{
		"a": {Status: model.JobStatusRunning},
		"b": {Status: model.JobStatusCompleted, Result: strPtr("done")},
	}
	require.NoError(t, store.Save(ctx, in))

	out, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestMemoryJobStoreLoadReturnsIsolatedCopy(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, map[string]model.Job{"a": {Status: model.JobStatusPending}}))

	first, err := store.Load(ctx)
	require.NoError(t, err)
	first["a"] = model.Job{Status: model.JobStatusFailed}
	first["b"] = model.Job{Status: model.JobStatusPending}

	second, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusPending, second["a"].Status)
	assert.NotContains(t, second, "b")
}

func TestNewJobStoreUnknownBackendFallsBackToMemory(t *testing.T) {
	store := NewJobStore(context.Background(), StoreOptions{Backend: "etcd"})
	assert.IsType(t, &MemoryJobStore{}, store)
}

func TestNewJobStoreRedisUnreachableFallsBackToFile(t *testing.T) {
	store := NewJobStore(context.Background(), StoreOptions{
		Backend:   "redis",
		FilePath:  t.TempDir() + "/jobs.json",
		RedisAddr: "127.0.0.1:1", // nothing listens here
	})
	assert.IsType(t, &FileJobStore{}, store)
}

package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"repo_agent/internal/common"
	"repo_agent/internal/domain/model"
)

// RedisJobStore keeps the serialized snapshot under one fixed key.
type RedisJobStore struct {
	rdb *redis.Client
	key string
}

func NewRedisJobStore(rdb *redis.Client, key string) *RedisJobStore {
	return &RedisJobStore{rdb: rdb, key: key}
}

func (s *RedisJobStore) Load(ctx context.Context) (map[string]model.Job, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return make(map[string]model.Job), nil
		}
		return nil, common.Errorf("%w: GET %s: %v", common.ErrStore, s.key, err)
	}

	jobs := make(map[string]model.Job)
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, common.Errorf("%w: decoding key %s: %v", common.ErrStore, s.key, err)
	}
	return jobs, nil
}

func (s *RedisJobStore) Save(ctx context.Context, jobs map[string]model.Job) error {
	data, err := json.Marshal(jobs)
	if err != nil {
		return common.Errorf("%w: encoding snapshot: %v", common.ErrStore, err)
	}
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return common.Errorf("%w: SET %s: %v", common.ErrStore, s.key, err)
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"repo_agent/internal/common"
	"repo_agent/internal/domain/model"
)

// PgJobStore keeps the snapshot as one jsonb row named by the snapshot key,
// upserted on every save. Same full-snapshot contract as the other backends.
type PgJobStore struct {
	db  *sql.DB
	key string
}

func NewPgJobStore(ctx context.Context, db *sql.DB, key string) (*PgJobStore, error) {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS job_snapshots (
			name TEXT PRIMARY KEY,
			data JSONB NOT NULL
		)`)
	if err != nil {
		return nil, common.Errorf("%w: ensuring job_snapshots table: %v", common.ErrStore, err)
	}
	return &PgJobStore{db: db, key: key}, nil
}

func (s *PgJobStore) Load(ctx context.Context) (map[string]model.Job, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM job_snapshots WHERE name = $1`, s.key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return make(map[string]model.Job), nil
		}
		return nil, common.Errorf("%w: loading snapshot %s: %v", common.ErrStore, s.key, err)
	}

	jobs := make(map[string]model.Job)
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, common.Errorf("%w: decoding snapshot %s: %v", common.ErrStore, s.key, err)
	}
	return jobs, nil
}

func (s *PgJobStore) Save(ctx context.Context, jobs map[string]model.Job) error {
	data, err := json.Marshal(jobs)
	if err != nil {
		return common.Errorf("%w: encoding snapshot: %v", common.ErrStore, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO job_snapshots (name, data) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data`, s.key, data)
	if err != nil {
		return common.Errorf("%w: saving snapshot %s: %v", common.ErrStore, s.key, err)
	}
	return nil
}

package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"repo_agent/internal/common"
	"repo_agent/internal/domain/model"
)

// FileJobStore serializes the snapshot to a single JSON file. Writes go to a
// temporary file in the same directory and are renamed into place, so a crash
// mid-write never leaves a truncated snapshot behind.
type FileJobStore struct {
	mu   sync.Mutex
	path string
}

func NewFileJobStore(path string) *FileJobStore {
	return &FileJobStore{path: path}
}

func (s *FileJobStore) Load(ctx context.Context) (map[string]model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]model.Job), nil
		}
		return nil, common.Errorf("%w: reading %s: %v", common.ErrStore, s.path, err)
	}

	jobs := make(map[string]model.Job)
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, common.Errorf("%w: decoding %s: %v", common.ErrStore, s.path, err)
	}
	return jobs, nil
}

func (s *FileJobStore) Save(ctx context.Context, jobs map[string]model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(jobs)
	if err != nil {
		return common.Errorf("%w: encoding snapshot: %v", common.ErrStore, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return common.Errorf("%w: creating %s: %v", common.ErrStore, dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return common.Errorf("%w: creating temp file: %v", common.ErrStore, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return common.Errorf("%w: writing temp file: %v", common.ErrStore, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return common.Errorf("%w: closing temp file: %v", common.ErrStore, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return common.Errorf("%w: replacing %s: %v", common.ErrStore, s.path, err)
	}
	return nil
}

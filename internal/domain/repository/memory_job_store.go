package repository

import (
	"context"
	"sync"

	"repo_agent/internal/domain/model"
)

// MemoryJobStore keeps the snapshot in process memory. Contents are lost on
// restart.
type MemoryJobStore struct {
	mu   sync.RWMutex
	jobs map[string]model.Job
}

func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{jobs: make(map[string]model.Job)}
}

func (s *MemoryJobStore) Load(ctx context.Context) (map[string]model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneJobs(s.jobs), nil
}

func (s *MemoryJobStore) Save(ctx context.Context, jobs map[string]model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = cloneJobs(jobs)
	return nil
}

// cloneJobs copies the mapping and the result pointers so callers cannot
// mutate the store's view behind its back.
func cloneJobs(jobs map[string]model.Job) map[string]model.Job {
	out := make(map[string]model.Job, len(jobs))
	for id, job := range jobs {
		if job.Result != nil {
			result := *job.Result
			job.Result = &result
		}
		out[id] = job
	}
	return out
}

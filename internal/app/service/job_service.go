package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"

	"repo_agent/internal/common"
	"repo_agent/internal/domain/model"
	"repo_agent/internal/domain/repository"
)

// Scheduler runs a task asynchronously, at most once. Submit never waits for
// the task to start or finish.
type Scheduler interface {
	Schedule(task func(ctx context.Context))
}

// PipelineRunner executes the change pipeline for one job and returns the
// result reference or the first step error.
type PipelineRunner interface {
	Run(ctx context.Context, jobID string, req model.ChangeRequest) (string, error)
}

// JobService issues job identifiers, owns all job-record mutations and
// answers status/result polls. Every mutation is a load-modify-save of the
// full snapshot serialized behind one mutex, so overlapping completions
// cannot overwrite each other's terminal state.
type JobService struct {
	store     repository.JobStore
	scheduler Scheduler
	runner    PipelineRunner

	mu sync.Mutex
}

func NewJobService(store repository.JobStore, scheduler Scheduler, runner PipelineRunner) *JobService {
	return &JobService{store: store, scheduler: scheduler, runner: runner}
}

// Submit validates the request, persists a pending record and schedules the
// pipeline. It returns the fresh job id without waiting for execution.
func (s *JobService) Submit(ctx context.Context, req model.ChangeRequest) (string, error) {
	if strings.TrimSpace(req.Description) == "" {
		return "", common.Errorf("%w: description is required", common.ErrValidation)
	}
	if strings.TrimSpace(req.RepoURL) == "" {
		return "", common.Errorf("%w: repo_url is required", common.ErrValidation)
	}
	if req.BaseBranch == "" {
		req.BaseBranch = model.DefaultBaseBranch
	}

	id := uuid.NewString()
	s.mutate(ctx, func(jobs map[string]model.Job) {
		jobs[id] = model.Job{Status: model.JobStatusPending}
	})

	s.scheduler.Schedule(func(taskCtx context.Context) {
		s.execute(taskCtx, id, req)
	})

	log.Printf("INFO: job %s accepted for %s", id, req.RepoURL)
	return id, nil
}

// GetStatus returns the job's current status, or "unknown" for ids the store
// has no record of.
func (s *JobService) GetStatus(ctx context.Context, id string) string {
	job, ok := s.lookup(ctx, id)
	if !ok {
		return model.JobStatusUnknown
	}
	return job.Status
}

// GetResult returns the stored status and result. The result stays nil until
// the job reaches a terminal state.
func (s *JobService) GetResult(ctx context.Context, id string) (string, *string) {
	job, ok := s.lookup(ctx, id)
	if !ok {
		return model.JobStatusUnknown, nil
	}
	return job.Status, job.Result
}

// execute runs the pipeline for one job and writes its single terminal
// transition. Nothing escapes past this boundary: errors and panics both end
// up as the job's failed result.
func (s *JobService) execute(ctx context.Context, id string, req model.ChangeRequest) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: job %s: pipeline panicked: %v", id, r)
			s.finish(ctx, id, model.JobStatusFailed, fmt.Sprintf("unexpected fault: %v", r))
		}
	}()

	s.mutate(ctx, func(jobs map[string]model.Job) {
		jobs[id] = model.Job{Status: model.JobStatusRunning}
	})

	result, err := s.runner.Run(ctx, id, req)
	if err != nil {
		log.Printf("ERROR: job %s failed: %v", id, err)
		s.finish(ctx, id, model.JobStatusFailed, err.Error())
		return
	}
	s.finish(ctx, id, model.JobStatusCompleted, result)
}

func (s *JobService) finish(ctx context.Context, id, status, result string) {
	s.mutate(ctx, func(jobs map[string]model.Job) {
		if existing, ok := jobs[id]; ok && existing.Terminal() {
			return
		}
		jobs[id] = model.Job{Status: status, Result: &result}
	})
}

// mutate serializes all read-modify-write cycles on the snapshot. A failed
// load is treated as an empty world and a failed save is logged and dropped;
// callers never see store errors (degraded, non-crashing behavior).
func (s *JobService) mutate(ctx context.Context, fn func(jobs map[string]model.Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.store.Load(ctx)
	if err != nil {
		log.Printf("WARN: job store load failed, proceeding with empty snapshot: %v", err)
		jobs = make(map[string]model.Job)
	}
	fn(jobs)
	if err := s.store.Save(ctx, jobs); err != nil {
		log.Printf("ERROR: job store save failed, update lost: %v", err)
	}
}

func (s *JobService) lookup(ctx context.Context, id string) (model.Job, bool) {
	jobs, err := s.store.Load(ctx)
	if err != nil {
		log.Printf("WARN: job store load failed: %v", err)
		return model.Job{}, false
	}
	job, ok := jobs[id]
	return job, ok
}

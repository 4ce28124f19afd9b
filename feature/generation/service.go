package generation

import (
	"context"
	"sort"
	"sync"
	"time"

	"mod-builder/core/apperr"
	"mod-builder/core/flags"
	"mod-builder/core/kv"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Status is the observable state of a submitted job.
type Status struct {
	ID         string     `json:"id"`
	Stage      Stage      `json:"stage"`
	Selections int        `json:"selections"`
	Auxiliary  int        `json:"auxiliary"`
	Result     *Result    `json:"result,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Recorder persists finished jobs.
type Recorder interface {
	Record(ctx context.Context, status Status) error
}

type entry struct {
	status Status
	cancel context.CancelFunc
	done   chan struct{}
}

// Service runs jobs in the background and tracks their status in memory.
type Service struct {
	pipeline *Pipeline
	flags    *flags.Cache
	recorder Recorder
	logger   *zap.Logger

	mu   sync.RWMutex
	jobs map[string]*entry
	wg   sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// NewService creates a service. recorder may be nil.
func NewService(pipeline *Pipeline, cache *flags.Cache, recorder Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		pipeline: pipeline,
		flags:    cache,
		recorder: recorder,
		logger:   logger,
		jobs:     make(map[string]*entry),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Submit validates job and starts it in the background.
func (s *Service) Submit(job Job) (Status, error) {
	if err := job.Validate(); err != nil {
		return Status{}, err
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return Status{}, apperr.Validation("service is shutting down")
	}
	if _, exists := s.jobs[job.ID]; exists {
		s.mu.Unlock()
		return Status{}, apperr.Validation("job %s already exists", job.ID)
	}
	ctx, cancel := context.WithCancel(s.ctx)
	e := &entry{
		status: Status{
			ID:         job.ID,
			Stage:      StagePreparing,
			Selections: len(job.Selections),
			Auxiliary:  len(job.Auxiliary),
			CreatedAt:  time.Now().UTC(),
		},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.jobs[job.ID] = e
	status := e.status
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("Job submitted", zap.String("job_id", job.ID), zap.Int("selections", len(job.Selections)))
	go s.run(ctx, e, job)
	return status, nil
}

func (s *Service) run(ctx context.Context, e *entry, job Job) {
	defer s.wg.Done()
	defer close(e.done)
	defer e.cancel()

	res, _ := s.pipeline.Run(ctx, &job, func(stage Stage) {
		s.mu.Lock()
		e.status.Stage = stage
		s.mu.Unlock()
	})

	s.mu.Lock()
	now := time.Now().UTC()
	e.status.Result = &res
	e.status.FinishedAt = &now
	final := e.status
	s.mu.Unlock()

	if s.recorder != nil {
		if err := s.recorder.Record(context.Background(), final); err != nil {
			s.logger.Warn("Failed to record job history", zap.String("job_id", final.ID), zap.Error(err))
		}
	}
}

// Get returns the status of one job.
func (s *Service) Get(id string) (Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.jobs[id]
	if !ok {
		return Status{}, apperr.NotFound("job %s", id)
	}
	return e.status, nil
}

// List returns every known job, newest first.
func (s *Service) List() []Status {
	s.mu.RLock()
	out := make([]Status, 0, len(s.jobs))
	for _, e := range s.jobs {
		out = append(out, e.status)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Cancel requests cancellation of a running job. Finished jobs are left as is.
func (s *Service) Cancel(id string) error {
	s.mu.RLock()
	e, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return apperr.NotFound("job %s", id)
	}
	e.cancel()
	return nil
}

// Wait blocks until the job finishes or ctx ends.
func (s *Service) Wait(ctx context.Context, id string) (Status, error) {
	s.mu.RLock()
	e, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return Status{}, apperr.NotFound("job %s", id)
	}
	select {
	case <-e.done:
		return s.Get(id)
	case <-ctx.Done():
		return Status{}, apperr.Cancelled(ctx.Err())
	}
}

// Close cancels every running job and waits for them to stop.
func (s *Service) Close() {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
}

// Flags returns the current flag snapshot.
func (s *Service) Flags(ctx context.Context) flags.Flags {
	if s.flags == nil {
		return flags.Defaults()
	}
	return s.flags.Get(ctx)
}

// ReloadFlags drops the cached flags and loads them again.
func (s *Service) ReloadFlags(ctx context.Context) flags.Flags {
	if s.flags == nil {
		return flags.Defaults()
	}
	s.flags.Invalidate()
	return s.flags.Reload(ctx)
}

// PlanRequest asks which entries of a manifest would apply to a target text.
type PlanRequest struct {
	Target   string   `json:"target"`
	Index    string   `json:"index"`
	Owner    string   `json:"owner"`
	IDs      []string `json:"ids,omitempty"`
	Prettify bool     `json:"prettify,omitempty"`
}

// Plan validates a manifest against a target without writing anything.
func (s *Service) Plan(req PlanRequest) (kv.Report, error) {
	if req.Target == "" || req.Index == "" {
		return kv.Report{}, apperr.Validation("target and index are required")
	}
	if req.Owner == "" {
		return kv.Report{}, apperr.Validation("owner is required")
	}
	target := req.Target
	if req.Prettify {
		target = kv.Prettify(target)
	}
	mm := kv.Collect(req.Owner, req.IDs, req.Index)
	if mm.Len() == 0 {
		return kv.Report{}, apperr.NotFound("no matching entries in index")
	}
	return kv.Plan(target, mm, nil), nil
}

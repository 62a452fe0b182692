package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/candidex/core"
	"github.com/poiesic/candidex/storage"
	"github.com/robfig/cron/v3"
)

// DefaultStalenessBound is how long a derived search document may lag its
// source fields before the scheduled sweep picks it up.
const DefaultStalenessBound = 5 * time.Second

// Pipeline orchestrates candidate writes and the maintenance of their
// derived search documents. Writes persist synchronously; document refresh
// runs on a worker pool, with a scheduled sweep as crash recovery.
type Pipeline struct {
	candidateRepository  storage.CandidateRepository
	checkpointRepository storage.CheckpointRepository
	refreshPool          *ants.Pool
	refreshProc          processor
	stalenessBound       time.Duration
	scheduler            *cron.Cron
	logger               *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent refresh processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.refreshPool != nil {
			p.refreshPool.Release()
		}

		refreshPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.refreshPool = refreshPool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithStalenessBound sets the sweep interval, which bounds how long a stale
// search document survives a missed refresh. Default is DefaultStalenessBound.
func WithStalenessBound(bound time.Duration) Option {
	return func(p *Pipeline) error {
		if bound <= 0 {
			return errors.New("staleness bound must be positive")
		}
		p.stalenessBound = bound
		return nil
	}
}

// NewPipeline creates a new indexing pipeline. The checkpoint repository may
// be nil to disable resume-state persistence.
func NewPipeline(
	candidateRepository storage.CandidateRepository,
	checkpointRepository storage.CheckpointRepository,
	opts ...Option,
) (*Pipeline, error) {
	if candidateRepository == nil {
		return nil, ErrCandidateRepositoryRequired
	}

	// Default logger
	logger := slog.Default()

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	refreshPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		candidateRepository:  candidateRepository,
		checkpointRepository: checkpointRepository,
		refreshPool:          refreshPool,
		stalenessBound:       DefaultStalenessBound,
		logger:               logger,
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create the processor after options are applied (so it gets final config)
	refreshProc, err := newDocumentProcessor(candidateRepository, checkpointRepository, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.refreshProc = refreshProc

	// Schedule the stale sweep on the staleness bound interval
	scheduler := cron.New()
	spec := fmt.Sprintf("@every %s", p.stalenessBound)
	if _, err := scheduler.AddFunc(spec, p.sweepJob); err != nil {
		p.Release()
		return nil, err
	}
	scheduler.Start()
	p.scheduler = scheduler

	return p, nil
}

// Upsert validates and persists candidates, then schedules an asynchronous
// refresh of their derived search documents. Candidates with a zero ID are
// added, the rest updated. Returns the persisted records with IDs assigned.
// Errors during async refresh are logged but do not fail the upsert.
func (p *Pipeline) Upsert(ctx context.Context, candidates ...*core.Candidate) ([]*core.Candidate, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	// Validate everything before touching storage
	for _, candidate := range candidates {
		if err := core.ValidateCandidate(candidate); err != nil {
			return nil, err
		}
	}

	var adds, updates []*core.Candidate
	for _, candidate := range candidates {
		if candidate.Id == 0 {
			adds = append(adds, candidate)
		} else {
			updates = append(updates, candidate)
		}
	}

	persisted := make([]*core.Candidate, 0, len(candidates))
	if len(adds) > 0 {
		added, err := p.candidateRepository.AddCandidates(ctx, adds...)
		if err != nil {
			return nil, err
		}
		persisted = append(persisted, added...)
	}
	if len(updates) > 0 {
		updated, err := p.candidateRepository.UpdateCandidates(ctx, updates...)
		if err != nil {
			return nil, err
		}
		persisted = append(persisted, updated...)
	}

	// Extract IDs
	ids := make([]core.ID, len(persisted))
	for i, candidate := range persisted {
		ids[i] = candidate.Id
	}

	// Submit for async processing
	p.refreshPool.Submit(func() {
		if err := p.refreshProc.process(context.Background(), ids...); err != nil {
			p.logger.Error("error refreshing search documents", "err", err)
			return
		}
		if err := p.refreshProc.checkpoint(context.Background()); err != nil {
			p.logger.Error("error applying refresh checkpoint", "err", err)
		}
	})

	return persisted, nil
}

// Sweep refreshes candidates still carrying a stale marker and returns how
// many were refreshed. A limit <= 0 drains every marker. The scheduled sweep
// calls this on the staleness bound interval; it is also safe to call
// directly.
func (p *Pipeline) Sweep(ctx context.Context, limit int) (int, error) {
	ids, err := p.candidateRepository.StaleCandidateIDs(ctx, limit)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := p.refreshProc.process(ctx, ids...); err != nil {
		return 0, err
	}
	if err := p.refreshProc.checkpoint(ctx); err != nil {
		return len(ids), err
	}

	return len(ids), nil
}

// sweepJob adapts Sweep to the scheduler, logging instead of returning errors.
func (p *Pipeline) sweepJob() {
	refreshed, err := p.Sweep(context.Background(), 0)
	if err != nil {
		p.logger.Error("error sweeping stale candidates", "err", err)
		return
	}
	if refreshed > 0 {
		p.logger.Info("sweep refreshed stale candidates", "candidates", refreshed)
	}
}

// Release stops the sweep scheduler and the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.scheduler != nil {
		p.scheduler.Stop()
	}
	if p.refreshPool != nil {
		p.refreshPool.Release()
	}
}

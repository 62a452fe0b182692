// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package rebuild

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/poiesic/candidex/core"
	"github.com/poiesic/candidex/storage"
)

// RebuildProcessorType identifies rebuild checkpoints in the checkpoint store.
const RebuildProcessorType = "document-rebuild"

// Config holds configuration for a rebuild run.
type Config struct {
	// BatchSize is the number of candidates to process in each batch.
	BatchSize int

	// ReportInterval is how often to report progress (in candidates).
	ReportInterval int

	// MaxRetries is the maximum number of attempts for a failed batch.
	MaxRetries int

	// RetryDelay is the base delay between retry attempts.
	RetryDelay time.Duration

	// Parallelism is the number of batches processed concurrently.
	Parallelism int

	// Resume continues from the last saved checkpoint instead of
	// starting over.
	Resume bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     time.Second,
		Parallelism:    4,
	}
}

// Rebuilder reconstructs search documents for every candidate in the store.
type Rebuilder struct {
	candidates  storage.CandidateRepository
	checkpoints storage.CheckpointRepository
	config      *Config
	progress    io.Writer
	processor   *BatchProcessor
	iterator    *CandidateIterator
}

// NewRebuilder creates a new rebuilder. checkpointRepo may be nil, in which
// case runs cannot be resumed. If config is nil, DefaultConfig is used. If
// progress is nil, progress output is discarded.
func NewRebuilder(candidateRepo storage.CandidateRepository, checkpointRepo storage.CheckpointRepository, config *Config, progress io.Writer) *Rebuilder {
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Rebuilder{
		candidates:  candidateRepo,
		checkpoints: checkpointRepo,
		config:      config,
		progress:    progress,
		processor:   NewBatchProcessor(candidateRepo, config.MaxRetries, config.RetryDelay),
		iterator:    NewCandidateIterator(candidateRepo, config.BatchSize),
	}
}

// Run rebuilds the search document of every candidate, batch by batch. Each
// batch commits independently, so the store stays consistent and queryable
// throughout. Returns on the first batch that fails all its retries.
func (r *Rebuilder) Run(ctx context.Context) error {
	startAfter := core.ID(0)
	if r.config.Resume && r.checkpoints != nil {
		chkpt, err := r.checkpoints.LoadCheckpoint(ctx, RebuildProcessorType)
		if err != nil {
			return fmt.Errorf("failed to load checkpoint: %w", err)
		}
		if chkpt != nil {
			startAfter = chkpt.LastID
			fmt.Fprintf(r.progress, "Resuming after candidate %d\n", startAfter)
		}
	}

	ids, err := r.candidates.AllCandidateIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to count candidates: %w", err)
	}

	total := 0
	for _, id := range ids {
		if id > startAfter {
			total++
		}
	}
	if total == 0 {
		fmt.Fprintf(r.progress, "No candidates to rebuild (0 candidates)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting rebuild of %d candidates (batch size: %d, parallelism: %d)\n",
		total, r.config.BatchSize, r.config.Parallelism)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.config.Parallelism)
	frontier := newCheckpointFrontier()

	batchIndex := 0
	iterErr := r.iterator.ForEach(ctx, startAfter, func(batch []core.ID) error {
		select {
		case <-groupCtx.Done():
			return groupCtx.Err()
		default:
		}

		index := batchIndex
		batchIndex++
		group.Go(func() error {
			if err := r.processor.Process(groupCtx, batch); err != nil {
				return fmt.Errorf("failed to rebuild batch: %w", err)
			}
			tracker.Increment(len(batch))
			if frontierID := frontier.markDone(index, batch[len(batch)-1]); frontierID != 0 {
				if err := r.saveCheckpoint(groupCtx, frontierID); err != nil {
					return err
				}
			}
			return nil
		})
		return nil
	})

	if waitErr := group.Wait(); waitErr != nil {
		return waitErr
	}
	if iterErr != nil {
		return iterErr
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	rate := float64(total) / elapsed.Seconds()
	fmt.Fprintf(r.progress, "Rebuild complete. Processed %d candidates in %v (%.1f candidates/sec)\n",
		total, elapsed.Round(time.Second), rate)

	if r.checkpoints != nil {
		if err := r.checkpoints.DeleteCheckpoint(ctx, RebuildProcessorType); err != nil {
			return fmt.Errorf("failed to clear checkpoint: %w", err)
		}
	}

	return nil
}

func (r *Rebuilder) saveCheckpoint(ctx context.Context, lastID core.ID) error {
	if r.checkpoints == nil {
		return nil
	}

	checkpoint := &core.Checkpoint{
		ProcessorType: RebuildProcessorType,
		LastID:        lastID,
	}
	if err := r.checkpoints.SaveCheckpoint(ctx, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// checkpointFrontier tracks completed batches so checkpoints only advance
// past contiguously finished work. Batches finish out of order under
// parallelism; checkpointing the highest completed ID alone could skip an
// unfinished earlier batch after a crash and resume.
type checkpointFrontier struct {
	mu        sync.Mutex
	done      map[int]core.ID
	next      int
	lastSaved core.ID
}

func newCheckpointFrontier() *checkpointFrontier {
	return &checkpointFrontier{done: make(map[int]core.ID)}
}

// markDone records that the batch at index completed through lastID. Returns
// the new contiguous high-water ID when the frontier advanced, 0 otherwise.
func (f *checkpointFrontier) markDone(index int, lastID core.ID) core.ID {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.done[index] = lastID
	advanced := false
	for {
		id, ok := f.done[f.next]
		if !ok {
			break
		}
		delete(f.done, f.next)
		f.lastSaved = id
		f.next++
		advanced = true
	}
	if !advanced {
		return 0
	}
	return f.lastSaved
}

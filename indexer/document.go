package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/poiesic/candidex/core"
	"github.com/poiesic/candidex/storage"
)

// RefreshProcessorType names the checkpoint slot for document refresh state.
const RefreshProcessorType = "document-refresh"

// documentProcessor rebuilds derived search documents for candidates.
type documentProcessor struct {
	candidateRepository  storage.CandidateRepository
	checkpointRepository storage.CheckpointRepository
	logger               *slog.Logger

	// lastID is touched from pool workers and the sweep job.
	mu     sync.Mutex
	lastID core.ID
}

var _ processor = (*documentProcessor)(nil)

// newDocumentProcessor creates a new document processor. The checkpoint
// repository may be nil, in which case no resume state is persisted.
func newDocumentProcessor(
	candidateRepository storage.CandidateRepository,
	checkpointRepository storage.CheckpointRepository,
	logger *slog.Logger,
) (processor, error) {
	if candidateRepository == nil {
		return nil, fmt.Errorf("candidate repository required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &documentProcessor{
		candidateRepository:  candidateRepository,
		checkpointRepository: checkpointRepository,
		logger:               logger.With("processor", "documents"),
	}, nil
}

// process refreshes the derived search documents of the specified candidates.
func (dp *documentProcessor) process(ctx context.Context, ids ...core.ID) error {
	if len(ids) == 0 {
		return nil
	}

	dp.logger.Info("refreshing search documents", "candidates", len(ids))

	// Sort first so the checkpoint high-water mark is meaningful
	slices.Sort(ids)

	if err := dp.candidateRepository.RefreshSearchDocuments(ctx, ids...); err != nil {
		dp.logger.Error("error refreshing search documents", "err", err)
		return err
	}

	dp.mu.Lock()
	if highest := ids[len(ids)-1]; highest > dp.lastID {
		dp.lastID = highest
	}
	dp.mu.Unlock()

	return nil
}

// checkpoint saves the processor's current resume state.
func (dp *documentProcessor) checkpoint(ctx context.Context) error {
	if dp.checkpointRepository == nil {
		return nil
	}

	dp.mu.Lock()
	lastID := dp.lastID
	dp.mu.Unlock()

	if lastID == 0 {
		return nil
	}

	return dp.checkpointRepository.SaveCheckpoint(ctx, &core.Checkpoint{
		ProcessorType: RefreshProcessorType,
		LastID:        lastID,
	})
}

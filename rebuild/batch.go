package rebuild

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/candidex/core"
	"github.com/poiesic/candidex/storage"
)

// BatchProcessor rebuilds the derived search documents for batches of
// candidates.
type BatchProcessor struct {
	repo           storage.CandidateRepository
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts per batch
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.CandidateRepository, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process refreshes the search documents of one batch of candidates. The
// store commits each candidate independently, so a retry after a partial
// failure only redoes work, never corrupts it.
func (bp *BatchProcessor) Process(ctx context.Context, ids []core.ID) error {
	if len(ids) == 0 {
		return nil
	}

	err := RetryWithBackoff(ctx, func() error {
		return bp.repo.RefreshSearchDocuments(ctx, ids...)
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to refresh batch after %d attempts: %w", bp.maxRetries, err)
	}

	return nil
}

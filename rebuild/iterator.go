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

	"github.com/poiesic/candidex/core"
	"github.com/poiesic/candidex/storage"
)

const (
	// DefaultBatchSize is the default number of candidates per batch
	DefaultBatchSize = 100
)

// CandidateIterator iterates over all candidate IDs in batches.
type CandidateIterator struct {
	repo      storage.CandidateRepository
	batchSize int
}

// NewCandidateIterator creates a new candidate iterator.
// batchSize: number of candidates per batch (must be > 0)
func NewCandidateIterator(repo storage.CandidateRepository, batchSize int) *CandidateIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &CandidateIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach iterates over all candidate IDs in ascending order, calling fn for
// each batch. IDs at or below startAfter are skipped, which supports resuming
// a partial run. Iteration stops on the first error from fn or when every
// candidate has been visited. Context cancellation is checked between batches.
func (it *CandidateIterator) ForEach(ctx context.Context, startAfter core.ID, fn func([]core.ID) error) error {
	// Check context before starting
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	ids, err := it.repo.AllCandidateIDs(ctx)
	if err != nil {
		return err
	}

	// Skip everything already covered by a previous run. IDs come back
	// sorted, so the remainder is a single suffix.
	start := 0
	for start < len(ids) && ids[start] <= startAfter {
		start++
	}
	ids = ids[start:]

	if len(ids) == 0 {
		return nil
	}

	// Process IDs in batches of batchSize
	for i := 0; i < len(ids); i += it.batchSize {
		end := i + it.batchSize
		if end > len(ids) {
			end = len(ids)
		}

		if err := fn(ids[i:end]); err != nil {
			return err
		}

		// Check context after each batch
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}

package rebuild

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/candidex/core"
	"github.com/poiesic/candidex/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// searchable reports whether a single-token query finds any candidate.
func searchable(t *testing.T, repo storage.CandidateRepository, token string) bool {
	t.Helper()
	results, err := repo.FindCandidates(context.Background(), &storage.CandidateQuery{
		Tokens: []string{token},
	})
	require.NoError(t, err)
	return len(results) > 0
}

// addTaggedCandidates adds n candidates whose bios each carry a unique token
// ("realma", "realmb", ...) so tests can tell rebuilt profiles apart.
func addTaggedCandidates(t *testing.T, repo storage.CandidateRepository, n int) ([]*core.Candidate, []string) {
	t.Helper()

	candidates := make([]*core.Candidate, n)
	tokens := make([]string, n)
	for i := 0; i < n; i++ {
		tokens[i] = fmt.Sprintf("realm%c", 'a'+i)
		candidates[i] = &core.Candidate{
			FullName: fmt.Sprintf("Candidate %d", i+1),
			Bio:      "veteran of " + tokens[i],
		}
	}
	added, err := repo.AddCandidates(context.Background(), candidates...)
	require.NoError(t, err)
	require.Len(t, added, n)
	return added, tokens
}

func TestRebuilder_Run(t *testing.T) {
	repo, checkpoints, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	_, tokens := addTaggedCandidates(t, repo, 25)

	// Nothing searchable before the rebuild
	require.False(t, searchable(t, repo, tokens[0]))

	var buf bytes.Buffer
	config := &Config{
		BatchSize:      5,
		ReportInterval: 10,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
		Parallelism:    2,
	}

	rebuilder := NewRebuilder(repo, checkpoints, config, &buf)
	err := rebuilder.Run(ctx)
	require.NoError(t, err)

	// Every profile became searchable
	for _, token := range tokens {
		assert.True(t, searchable(t, repo, token), "token %q should be searchable", token)
	}

	output := buf.String()
	assert.Contains(t, output, "Progress:", "should show progress")
	assert.Contains(t, output, "25/25", "should show completion")
	assert.Contains(t, output, "Rebuild complete", "should show summary")

	// A finished run leaves no checkpoint behind
	saved, err := checkpoints.LoadCheckpoint(ctx, RebuildProcessorType)
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestRebuilder_EmptyDatabase(t *testing.T) {
	repo, checkpoints, cleanup := setupTestDB(t)
	defer cleanup()

	var buf bytes.Buffer
	rebuilder := NewRebuilder(repo, checkpoints, DefaultConfig(), &buf)
	err := rebuilder.Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "0 candidates", "should report zero candidates")
}

func TestRebuilder_Resume(t *testing.T) {
	repo, checkpoints, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	added, tokens := addTaggedCandidates(t, repo, 10)

	// A previous run got through the first four candidates
	err := checkpoints.SaveCheckpoint(ctx, &core.Checkpoint{
		ProcessorType: RebuildProcessorType,
		LastID:        added[3].Id,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	config := &Config{
		BatchSize:      3,
		ReportInterval: 3,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
		Parallelism:    1,
		Resume:         true,
	}

	rebuilder := NewRebuilder(repo, checkpoints, config, &buf)
	err = rebuilder.Run(ctx)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), fmt.Sprintf("Resuming after candidate %d", added[3].Id))

	// Only the candidates past the checkpoint were rebuilt
	for i, token := range tokens {
		if i <= 3 {
			assert.False(t, searchable(t, repo, token), "token %q should have been skipped", token)
		} else {
			assert.True(t, searchable(t, repo, token), "token %q should be searchable", token)
		}
	}

	// The checkpoint is cleared once the resumed run finishes
	saved, err := checkpoints.LoadCheckpoint(ctx, RebuildProcessorType)
	require.NoError(t, err)
	assert.Nil(t, saved)
}

type failingRefreshRepo struct {
	storage.CandidateRepository
	calls int
}

func (r *failingRefreshRepo) RefreshSearchDocuments(ctx context.Context, ids ...core.ID) error {
	r.calls++
	return errors.New("disk full")
}

func TestRebuilder_RefreshError(t *testing.T) {
	repo, checkpoints, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	addTaggedCandidates(t, repo, 1)

	failing := &failingRefreshRepo{CandidateRepository: repo}

	var buf bytes.Buffer
	config := &Config{
		BatchSize:      1,
		ReportInterval: 1,
		MaxRetries:     2,
		RetryDelay:     5 * time.Millisecond,
		Parallelism:    1,
	}

	rebuilder := NewRebuilder(failing, checkpoints, config, &buf)
	err := rebuilder.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to rebuild batch")
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 2, failing.calls, "should retry the batch before giving up")
}

type cancellingRepo struct {
	storage.CandidateRepository
	cancel context.CancelFunc
	calls  int
}

func (r *cancellingRepo) RefreshSearchDocuments(ctx context.Context, ids ...core.ID) error {
	r.calls++
	if r.calls == 2 {
		r.cancel()
	}
	return r.CandidateRepository.RefreshSearchDocuments(ctx, ids...)
}

func TestRebuilder_ContextCancellation(t *testing.T) {
	repo, checkpoints, cleanup := setupTestDB(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	addTaggedCandidates(t, repo, 10)

	cancelling := &cancellingRepo{CandidateRepository: repo, cancel: cancel}

	var buf bytes.Buffer
	config := &Config{
		BatchSize:      3,
		ReportInterval: 3,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
		Parallelism:    1,
	}

	rebuilder := NewRebuilder(cancelling, checkpoints, config, &buf)
	err := rebuilder.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Greater(t, config.BatchSize, 0, "batch size should be positive")
	assert.Greater(t, config.ReportInterval, 0, "report interval should be positive")
	assert.Greater(t, config.MaxRetries, 0, "max retries should be positive")
	assert.Greater(t, config.RetryDelay, time.Duration(0), "retry delay should be positive")
	assert.Greater(t, config.Parallelism, 0, "parallelism should be positive")
	assert.False(t, config.Resume, "runs should start fresh unless asked to resume")
}

func TestCheckpointFrontier(t *testing.T) {
	t.Run("out of order completion", func(t *testing.T) {
		f := newCheckpointFrontier()

		// Batch 1 finishing first must not advance past unfinished batch 0
		assert.Equal(t, core.ID(0), f.markDone(1, 20))
		assert.Equal(t, core.ID(20), f.markDone(0, 10), "frontier should jump over already completed work")
		assert.Equal(t, core.ID(30), f.markDone(2, 30))
	})

	t.Run("in order completion", func(t *testing.T) {
		f := newCheckpointFrontier()

		assert.Equal(t, core.ID(5), f.markDone(0, 5))
		assert.Equal(t, core.ID(0), f.markDone(2, 15))
		assert.Equal(t, core.ID(15), f.markDone(1, 10))
	})
}

package search

import (
	"context"

	"github.com/poiesic/candidex/core"
)

// FavoriteRef references a favorited candidate in one of two shapes: an
// already-loaded record, or a bare identifier still needing a fetch.
type FavoriteRef struct {
	candidate *core.Candidate
	id        core.ID
}

// FavoriteCandidate builds a reference from an already-loaded record.
func FavoriteCandidate(candidate *core.Candidate) FavoriteRef {
	return FavoriteRef{candidate: candidate}
}

// FavoriteID builds a reference from a bare candidate identifier.
func FavoriteID(id core.ID) FavoriteRef {
	return FavoriteRef{id: id}
}

// resolveFavorites reconciles favorite references into candidate records.
// Bare identifiers are collected and fetched with a single bulk read, so
// the store cost stays constant regardless of how many references arrive.
// References that resolve to nothing are dropped without error.
func (e *Engine) resolveFavorites(ctx context.Context, refs []FavoriteRef) ([]*core.Candidate, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	// Collect the identifiers that still need a fetch
	need := make([]core.ID, 0, len(refs))
	needSet := make(map[core.ID]bool, len(refs))
	for _, ref := range refs {
		if ref.candidate != nil || ref.id == 0 || needSet[ref.id] {
			continue
		}
		needSet[ref.id] = true
		need = append(need, ref.id)
	}

	fetched := make(map[core.ID]*core.Candidate, len(need))
	if len(need) > 0 {
		candidates, err := e.candidates.GetCandidates(ctx, need...)
		if err != nil {
			return nil, err
		}
		for _, candidate := range candidates {
			fetched[candidate.Id] = candidate
		}
	}

	// Merge in request order; each candidate appears once
	seen := make(map[core.ID]bool, len(refs))
	resolved := make([]*core.Candidate, 0, len(refs))
	for _, ref := range refs {
		candidate := ref.candidate
		if candidate == nil {
			candidate = fetched[ref.id]
		}
		if candidate == nil || seen[candidate.Id] {
			continue
		}
		seen[candidate.Id] = true
		resolved = append(resolved, candidate)
	}
	return resolved, nil
}

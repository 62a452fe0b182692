package badger

import (
	"context"
	"encoding/binary"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/candidex/core"
	"github.com/poiesic/candidex/relevance"
	"github.com/poiesic/candidex/storage"
)

const (
	// Sizing for the token presence filter. False positives only cost a
	// posting scan that comes back empty.
	expectedTokenCount     = 1 << 20
	tokenFalsePositiveRate = 0.01
)

// CandidateRepository implements storage.CandidateRepository for BadgerDB.
type CandidateRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
	sixSeq  *badger.Sequence

	mu     sync.RWMutex
	tokens *bloom.BloomFilter
}

var _ storage.CandidateRepository = (*CandidateRepository)(nil)

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(backend *Backend) (*CandidateRepository, error) {
	idSeq, err := backend.GetSequence(candidateIDSeq)
	if err != nil {
		return nil, err
	}
	sixSeq, err := backend.GetSequence(searchIndexSeq)
	if err != nil {
		idSeq.Release()
		return nil, err
	}

	r := &CandidateRepository{
		backend: backend,
		idSeq:   idSeq,
		sixSeq:  sixSeq,
		tokens:  bloom.NewWithEstimates(expectedTokenCount, tokenFalsePositiveRate),
	}

	if err := r.loadTokenFilter(); err != nil {
		idSeq.Release()
		sixSeq.Release()
		return nil, err
	}

	return r, nil
}

// Close releases the ID and search index sequences.
func (r *CandidateRepository) Close() error {
	if err := r.idSeq.Release(); err != nil {
		return err
	}
	return r.sixSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *CandidateRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddCandidates adds one or more candidates to storage.
func (r *CandidateRepository) AddCandidates(ctx context.Context, candidates ...*core.Candidate) ([]*core.Candidate, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, candidate := range candidates {
			if candidate.Id == 0 {
				nextID, err := nextSequenceValue(r.idSeq)
				if err != nil {
					return err
				}
				candidate.Id = core.ID(nextID)
			} else {
				existing, err := r.readCandidate(tx, makeCandidateKey(candidate.Id))
				if err != nil {
					return err
				}
				if existing != nil {
					return storage.ErrDuplicateKey
				}
			}

			now := time.Now().UTC()
			candidate.InsertedAt = now
			candidate.UpdatedAt = now
			if candidate.CreatedAt.IsZero() {
				candidate.CreatedAt = now
			}

			six, err := nextSequenceValue(r.sixSeq)
			if err != nil {
				return err
			}
			candidate.SearchIndex = six
			// The searchable document is derived asynchronously; until the
			// first refresh the candidate matches no text query.
			candidate.Document = ""

			// Store primary record
			key := makeCandidateKey(candidate.Id)
			value := storage.MarshalCandidate(candidate)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update order indexes
			if err := r.writeOrderEntries(tx, candidate); err != nil {
				return err
			}

			// Update creation time index
			createdKey := makeCreatedKey(candidate.CreatedAt, candidate.Id)
			if err := tx.Set(createdKey, storage.MarshalID(candidate.Id)); err != nil {
				return err
			}

			// Update city bridge index
			if err := r.updateCityIndex(tx, candidate); err != nil {
				return err
			}

			// Mark the document stale for the indexer
			if err := tx.Set(makeStaleKey(candidate.Id), storage.MarshalID(candidate.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return candidates, err
}

// UpdateCandidates updates existing candidates.
func (r *CandidateRepository) UpdateCandidates(ctx context.Context, candidates ...*core.Candidate) ([]*core.Candidate, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, candidate := range candidates {
			key := makeCandidateKey(candidate.Id)

			// Read old record to detect changes
			old, err := r.readCandidate(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			// Update timestamp
			candidate.UpdatedAt = time.Now().UTC()
			candidate.InsertedAt = old.InsertedAt
			if candidate.CreatedAt.IsZero() {
				candidate.CreatedAt = old.CreatedAt
			}

			// Derived fields are owned by the refresh path, not callers.
			candidate.Document = old.Document
			candidate.SearchIndex = old.SearchIndex

			// Store updated record
			value := storage.MarshalCandidate(candidate)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update creation index if the timestamp changed
			if !old.CreatedAt.Equal(candidate.CreatedAt) {
				if err := tx.Delete(makeCreatedKey(old.CreatedAt, old.Id)); err != nil {
					return err
				}
				createdKey := makeCreatedKey(candidate.CreatedAt, candidate.Id)
				if err := tx.Set(createdKey, storage.MarshalID(candidate.Id)); err != nil {
					return err
				}
			}

			// Update featured index if the flag flipped
			if old.Featured != candidate.Featured {
				featuredKey := makeOrderKey(candidateFeaturedPrefix, candidate.SearchIndex, candidate.Id)
				if candidate.Featured {
					if err := tx.Set(featuredKey, storage.MarshalID(candidate.Id)); err != nil {
						return err
					}
				} else {
					if err := tx.Delete(featuredKey); err != nil {
						return err
					}
				}
			}

			// Update city bridge if the selection changed
			if !slices.Equal(old.Cities, candidate.Cities) {
				if err := r.deleteCityIndex(tx, old); err != nil {
					return err
				}
				if err := r.updateCityIndex(tx, candidate); err != nil {
					return err
				}
			}

			// Re-mark stale when the searchable source text changed
			if !textFieldsEqual(old, candidate) {
				if err := tx.Set(makeStaleKey(candidate.Id), storage.MarshalID(candidate.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return candidates, err
}

// DeleteCandidates removes candidates by their IDs.
func (r *CandidateRepository) DeleteCandidates(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeCandidateKey(id)

			// Read record to get metadata for index cleanup
			candidate, err := r.readCandidate(tx, key)
			if err != nil {
				return err
			}
			if candidate == nil {
				return storage.ErrNotFound
			}

			if err := r.deleteOrderEntries(tx, candidate); err != nil {
				return err
			}
			if err := tx.Delete(makeCreatedKey(candidate.CreatedAt, candidate.Id)); err != nil {
				return err
			}
			if err := r.deleteCityIndex(tx, candidate); err != nil {
				return err
			}
			if err := r.deletePostings(tx, candidate); err != nil {
				return err
			}
			if err := tx.Delete(makeStaleKey(id)); err != nil {
				return err
			}

			// Delete primary record
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetCandidate retrieves a single candidate by ID.
func (r *CandidateRepository) GetCandidate(ctx context.Context, id core.ID) (*core.Candidate, error) {
	var result *core.Candidate
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCandidateKey(id)
		var err error
		result, err = r.readCandidate(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetCandidates retrieves multiple candidates by their IDs in one pass.
func (r *CandidateRepository) GetCandidates(ctx context.Context, ids ...core.ID) ([]*core.Candidate, error) {
	var result []*core.Candidate
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeCandidateKey(id)
			candidate, err := r.readCandidate(tx, key)
			if err != nil {
				return err
			}
			if candidate != nil {
				result = append(result, candidate)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetCandidatesByCreatedRange retrieves candidates within a creation time range.
func (r *CandidateRepository) GetCandidatesByCreatedRange(ctx context.Context, start, end time.Time) ([]*core.Candidate, error) {
	if start.Equal(end) {
		end = start.Add(1 * time.Microsecond)
	}

	var results []*core.Candidate
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialCreatedKey(start)
		endKey := makePartialCreatedKey(end)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if slices.Compare(key, endKey) > 0 {
				break
			}

			// Read the ID from the index
			var candidateID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				candidateID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			// Look up the full record
			candidate, err := r.readCandidate(tx, makeCandidateKey(candidateID))
			if err != nil {
				return err
			}
			if candidate != nil {
				results = append(results, candidate)
			}
		}
		return nil
	}, false)

	return results, err
}

// CandidateIDsForCity retrieves IDs of candidates that selected a city.
func (r *CandidateRepository) CandidateIDsForCity(ctx context.Context, cityID core.ID) ([]core.ID, error) {
	var candidateIDs []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		candidateIDs, err = scanCityCandidates(tx, cityID)
		return err
	}, false)
	return candidateIDs, err
}

// AllCandidateIDs lists every candidate ID in ascending order without
// loading records. Record keys carry decimal IDs, so the scan collects and
// sorts rather than relying on key order.
func (r *CandidateRepository) AllCandidateIDs(ctx context.Context) ([]core.ID, error) {
	var ids []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := tx.NewIterator(opts)
		defer it.Close()

		prefix := []byte(candidateRecordPrefix + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			id, err := parseCandidateKey(it.Item().Key())
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.Sort(ids)
	return ids, nil
}

// FindCandidates runs one combined query and returns the matching page.
func (r *CandidateRepository) FindCandidates(ctx context.Context, query *storage.CandidateQuery) ([]*core.RankedCandidate, error) {
	if query == nil || query.Offset < 0 {
		return nil, storage.ErrInvalidQuery
	}

	// A token that was never indexed cannot match anything.
	if len(query.Tokens) > 0 && !r.mightContainTokens(query.Tokens) {
		return nil, nil
	}

	var results []*core.RankedCandidate
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		switch {
		case len(query.Tokens) > 0:
			results, err = r.findByTokens(tx, query)
		case query.FilterByCity:
			results, err = r.findByCities(tx, query)
		default:
			results, err = r.scanOrdered(tx, query)
		}
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// SampleCandidates returns up to k candidates drawn uniformly at random from
// the set matching the query, in random order.
func (r *CandidateRepository) SampleCandidates(ctx context.Context, query *storage.CandidateQuery, k int) ([]*core.Candidate, error) {
	if query == nil {
		return nil, storage.ErrInvalidQuery
	}
	if k <= 0 {
		return nil, nil
	}
	if len(query.Tokens) > 0 && !r.mightContainTokens(query.Tokens) {
		return nil, nil
	}

	citySet := cityIDSet(query)
	reservoir := make([]*core.Candidate, 0, k)
	seen := 0

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := candidateOrderPrefix
		if query.FeaturedOnly {
			prefix = candidateFeaturedPrefix
		}
		prefixBytes := []byte(prefix + ":")

		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(prefixBytes); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if !hasPrefix(key, prefixBytes) {
				break
			}

			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			candidate, err := r.readCandidate(tx, makeCandidateKey(id))
			if err != nil {
				return err
			}
			if candidate == nil {
				continue
			}
			if !candidateMatches(candidate, query, citySet) {
				continue
			}
			if len(query.Tokens) > 0 {
				counts := relevance.TokenCounts(candidate.Document)
				if _, matched := relevance.Rank(counts, query.Tokens); !matched {
					continue
				}
			}

			// Reservoir sampling: memory stays bounded by k while every
			// matching candidate remains equally likely to be kept.
			seen++
			if len(reservoir) < k {
				reservoir = append(reservoir, candidate)
			} else if j := rand.IntN(seen); j < k {
				reservoir[j] = candidate
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// The reservoir preserves scan order for the first k entries.
	rand.Shuffle(len(reservoir), func(i, j int) {
		reservoir[i], reservoir[j] = reservoir[j], reservoir[i]
	})
	return reservoir, nil
}

// RefreshSearchDocuments re-derives the searchable document and postings for
// the given candidates. Each candidate is handled in its own transaction so
// an index entry is swapped atomically without blocking readers or writers
// of other candidates.
func (r *CandidateRepository) RefreshSearchDocuments(ctx context.Context, ids ...core.ID) error {
	for _, id := range ids {
		var added []string
		err := r.backend.WithTx(func(tx *badger.Txn) error {
			key := makeCandidateKey(id)
			candidate, err := r.readCandidate(tx, key)
			if err != nil {
				return err
			}
			if candidate == nil {
				// Deleted after being marked stale; drop the marker.
				if err := tx.Delete(makeStaleKey(id)); err != nil {
					return err
				}
				return tx.Commit()
			}

			// Remove the old entry completely before writing the new one.
			if err := r.deletePostings(tx, candidate); err != nil {
				return err
			}
			if err := r.deleteOrderEntries(tx, candidate); err != nil {
				return err
			}

			candidate.Document = relevance.BuildDocument(candidate)
			six, err := nextSequenceValue(r.sixSeq)
			if err != nil {
				return err
			}
			candidate.SearchIndex = six

			counts := relevance.TokenCounts(candidate.Document)
			if err := r.setPostings(tx, candidate.Id, counts); err != nil {
				return err
			}
			if err := r.writeOrderEntries(tx, candidate); err != nil {
				return err
			}

			if err := tx.Set(key, storage.MarshalCandidate(candidate)); err != nil {
				return err
			}
			if err := tx.Delete(makeStaleKey(id)); err != nil {
				return err
			}

			added = make([]string, 0, len(counts))
			for token := range counts {
				added = append(added, token)
			}
			return tx.Commit()
		}, true)
		if err != nil {
			return err
		}
		r.rememberTokens(added)
	}
	return nil
}

// StaleCandidateIDs lists candidates awaiting a document refresh.
func (r *CandidateRepository) StaleCandidateIDs(ctx context.Context, limit int) ([]core.ID, error) {
	var ids []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefixBytes := []byte(candidateStalePrefix + ":")
		opts := badger.DefaultIteratorOptions
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefixBytes); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if !hasPrefix(key, prefixBytes) {
				break
			}

			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}
			ids = append(ids, id)
			if limit > 0 && len(ids) >= limit {
				break
			}
		}
		return nil
	}, false)
	return ids, err
}

// Query helpers

// findByTokens intersects per-token postings, ranks the survivors, and pages
// the ordered result.
func (r *CandidateRepository) findByTokens(tx *badger.Txn, query *storage.CandidateQuery) ([]*core.RankedCandidate, error) {
	var matched map[core.ID]uint64
	for i, token := range query.Tokens {
		postings, err := scanPostings(tx, token)
		if err != nil {
			return nil, err
		}
		if len(postings) == 0 {
			return nil, nil
		}
		if i == 0 {
			matched = postings
			continue
		}
		for id, rank := range matched {
			weight, ok := postings[id]
			if !ok {
				delete(matched, id)
				continue
			}
			matched[id] = rank + weight
		}
		if len(matched) == 0 {
			return nil, nil
		}
	}

	citySet := cityIDSet(query)
	results := make([]*core.RankedCandidate, 0, len(matched))
	for id, rank := range matched {
		candidate, err := r.readCandidate(tx, makeCandidateKey(id))
		if err != nil {
			return nil, err
		}
		if candidate == nil {
			continue
		}
		if !candidateMatches(candidate, query, citySet) {
			continue
		}
		results = append(results, &core.RankedCandidate{Candidate: candidate, Rank: float64(rank)})
	}

	sortRanked(results)
	return pageResults(results, query.Offset, query.Limit), nil
}

// findByCities unions the city bridge postings and pages the result in
// search index order.
func (r *CandidateRepository) findByCities(tx *badger.Txn, query *storage.CandidateQuery) ([]*core.RankedCandidate, error) {
	citySet := cityIDSet(query)
	seen := make(map[core.ID]bool)
	var results []*core.RankedCandidate

	for _, cityID := range query.CityIDs {
		ids, err := scanCityCandidates(tx, cityID)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true

			candidate, err := r.readCandidate(tx, makeCandidateKey(id))
			if err != nil {
				return nil, err
			}
			if candidate == nil {
				continue
			}
			if !candidateMatches(candidate, query, citySet) {
				continue
			}
			results = append(results, &core.RankedCandidate{Candidate: candidate})
		}
	}

	sortRanked(results)
	return pageResults(results, query.Offset, query.Limit), nil
}

// scanOrdered walks an order index newest-first, filtering as it goes. The
// scan stops as soon as the requested page is full.
func (r *CandidateRepository) scanOrdered(tx *badger.Txn, query *storage.CandidateQuery) ([]*core.RankedCandidate, error) {
	prefix := candidateOrderPrefix
	if query.FeaturedOnly {
		prefix = candidateFeaturedPrefix
	}
	prefixBytes := []byte(prefix + ":")

	// Use reverse iterator to get the highest search index first
	opts := badger.DefaultIteratorOptions
	opts.Reverse = true
	iter := tx.NewIterator(opts)
	defer iter.Close()

	startKey := makeMaxOrderKey(prefix)

	var results []*core.RankedCandidate
	skipped := 0
	for iter.Seek(startKey); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		if len(key) < len(prefixBytes) || slices.Compare(key[:len(prefixBytes)], prefixBytes) != 0 {
			break
		}

		var id core.ID
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			id, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return nil, err
		}

		candidate, err := r.readCandidate(tx, makeCandidateKey(id))
		if err != nil {
			return nil, err
		}
		if candidate == nil {
			continue
		}
		if !candidateMatches(candidate, query, nil) {
			continue
		}

		if skipped < query.Offset {
			skipped++
			continue
		}
		results = append(results, &core.RankedCandidate{Candidate: candidate})
		if query.Limit > 0 && len(results) >= query.Limit {
			break
		}
	}
	return results, nil
}

// Index maintenance helpers

// readCandidate reads a candidate record from the transaction.
func (r *CandidateRepository) readCandidate(tx *badger.Txn, key []byte) (*core.Candidate, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var candidate *core.Candidate
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		candidate, unmarshalErr = storage.UnmarshalCandidate(val)
		return unmarshalErr
	})
	return candidate, err
}

// writeOrderEntries adds order index entries for a candidate.
func (r *CandidateRepository) writeOrderEntries(tx *badger.Txn, candidate *core.Candidate) error {
	orderKey := makeOrderKey(candidateOrderPrefix, candidate.SearchIndex, candidate.Id)
	if err := tx.Set(orderKey, storage.MarshalID(candidate.Id)); err != nil {
		return err
	}
	if candidate.Featured {
		featuredKey := makeOrderKey(candidateFeaturedPrefix, candidate.SearchIndex, candidate.Id)
		if err := tx.Set(featuredKey, storage.MarshalID(candidate.Id)); err != nil {
			return err
		}
	}
	return nil
}

// deleteOrderEntries removes order index entries for a candidate.
func (r *CandidateRepository) deleteOrderEntries(tx *badger.Txn, candidate *core.Candidate) error {
	if err := tx.Delete(makeOrderKey(candidateOrderPrefix, candidate.SearchIndex, candidate.Id)); err != nil {
		return err
	}
	if candidate.Featured {
		if err := tx.Delete(makeOrderKey(candidateFeaturedPrefix, candidate.SearchIndex, candidate.Id)); err != nil {
			return err
		}
	}
	return nil
}

// updateCityIndex adds city bridge entries for a candidate.
func (r *CandidateRepository) updateCityIndex(tx *badger.Txn, candidate *core.Candidate) error {
	if len(candidate.Cities) == 0 {
		return nil
	}
	for _, cityID := range candidate.Cities {
		key := makeCityCandidateKey(cityID, candidate.Id)
		if err := tx.Set(key, storage.MarshalID(candidate.Id)); err != nil {
			return err
		}
	}
	return nil
}

// deleteCityIndex removes city bridge entries for a candidate.
func (r *CandidateRepository) deleteCityIndex(tx *badger.Txn, candidate *core.Candidate) error {
	if len(candidate.Cities) == 0 {
		return nil
	}
	for _, cityID := range candidate.Cities {
		key := makeCityCandidateKey(cityID, candidate.Id)
		if err := tx.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// setPostings writes inverted index entries for a candidate's token counts.
func (r *CandidateRepository) setPostings(tx *badger.Txn, id core.ID, counts map[string]uint64) error {
	for token, count := range counts {
		if err := tx.Set(makeTokenKey(token, id), storage.MarshalTokenCount(count)); err != nil {
			return err
		}
	}
	return nil
}

// deletePostings removes the inverted index entries derived from the stored
// document of a candidate.
func (r *CandidateRepository) deletePostings(tx *badger.Txn, candidate *core.Candidate) error {
	for token := range relevance.TokenCounts(candidate.Document) {
		if err := tx.Delete(makeTokenKey(token, candidate.Id)); err != nil {
			return err
		}
	}
	return nil
}

// loadTokenFilter seeds the token presence filter from the stored postings.
// Runs once during construction, before the repository is shared.
func (r *CandidateRepository) loadTokenFilter() error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		prefixBytes := []byte(candidateTokenPrefix + ":")
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefixBytes); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if !hasPrefix(key, prefixBytes) {
				break
			}
			if len(key) < len(prefixBytes)+9 {
				continue
			}
			token := string(key[len(prefixBytes) : len(key)-9])
			r.tokens.AddString(token)
		}
		return nil
	}, false)
}

// mightContainTokens reports whether every token has possibly been indexed.
// A false return is definitive; a true return may be a false positive.
func (r *CandidateRepository) mightContainTokens(tokens []string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, token := range tokens {
		if !r.tokens.TestString(token) {
			return false
		}
	}
	return true
}

// rememberTokens records freshly indexed tokens in the presence filter.
func (r *CandidateRepository) rememberTokens(tokens []string) {
	if len(tokens) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range tokens {
		r.tokens.AddString(token)
	}
}

// Package-level helpers shared with the city repository.

// nextSequenceValue returns the next non-zero value from a sequence.
// BadgerDB sequences can return 0 on first call, so we skip it.
func nextSequenceValue(seq *badger.Sequence) (uint64, error) {
	v, err := seq.Next()
	if err != nil {
		return 0, err
	}
	if v == 0 {
		v, err = seq.Next()
		if err != nil {
			return 0, err
		}
	}
	return v, nil
}

// scanPostings collects the posting map for one token.
func scanPostings(tx *badger.Txn, token string) (map[core.ID]uint64, error) {
	prefix := makePartialTokenKey(token)
	postings := make(map[core.ID]uint64)

	iter := tx.NewIterator(badger.DefaultIteratorOptions)
	defer iter.Close()

	for iter.Seek(prefix); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		if !hasPrefix(key, prefix) {
			break
		}
		// Postings of longer tokens sharing this token as a prefix
		// interleave in key order; match on exact key length.
		if len(key) != len(prefix)+8 {
			continue
		}

		id := core.ID(binary.BigEndian.Uint64(key[len(prefix):]))
		var count uint64
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			count, err = storage.UnmarshalTokenCount(val)
			return err
		}); err != nil {
			return nil, err
		}
		postings[id] = count
	}
	return postings, nil
}

// scanCityCandidates collects candidate IDs bridged to one city.
func scanCityCandidates(tx *badger.Txn, cityID core.ID) ([]core.ID, error) {
	startKey := makePartialCityCandidateKey(cityID)
	var candidateIDs []core.ID

	iter := tx.NewIterator(badger.DefaultIteratorOptions)
	defer iter.Close()

	for iter.Seek(startKey); iter.Valid(); iter.Next() {
		key := iter.Item().Key()
		if len(key) < len(startKey) {
			break
		}
		if slices.Compare(key[:len(startKey)], startKey) != 0 {
			break
		}

		var candidateID core.ID
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			candidateID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return nil, err
		}
		candidateIDs = append(candidateIDs, candidateID)
	}
	return candidateIDs, nil
}

// cityIDSet builds the allowed city set for match checks.
func cityIDSet(query *storage.CandidateQuery) map[core.ID]bool {
	if !query.FilterByCity {
		return nil
	}
	set := make(map[core.ID]bool, len(query.CityIDs))
	for _, id := range query.CityIDs {
		set[id] = true
	}
	return set
}

// candidateMatches evaluates the non-text predicates of a query.
func candidateMatches(candidate *core.Candidate, query *storage.CandidateQuery, citySet map[core.ID]bool) bool {
	if !query.CreatedAfter.IsZero() && candidate.CreatedAt.Before(query.CreatedAfter) {
		return false
	}
	if query.FeaturedOnly && !candidate.Featured {
		return false
	}
	if query.FilterByCity {
		found := false
		for _, cityID := range candidate.Cities {
			if citySet[cityID] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// textFieldsEqual reports whether the searchable source fields match.
func textFieldsEqual(a, b *core.Candidate) bool {
	return a.LocationText == b.LocationText &&
		a.Bio == b.Bio &&
		slices.Equal(a.Positions, b.Positions)
}

// sortRanked orders results by rank descending, then search index descending.
func sortRanked(results []*core.RankedCandidate) {
	slices.SortFunc(results, func(a, b *core.RankedCandidate) int {
		if a.Rank > b.Rank {
			return -1
		}
		if a.Rank < b.Rank {
			return 1
		}
		if a.Candidate.SearchIndex > b.Candidate.SearchIndex {
			return -1
		}
		if a.Candidate.SearchIndex < b.Candidate.SearchIndex {
			return 1
		}
		return 0
	})
}

// pageResults applies offset and limit to a sorted result.
func pageResults(results []*core.RankedCandidate, offset, limit int) []*core.RankedCandidate {
	if offset >= len(results) {
		return nil
	}
	results = results[offset:]
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

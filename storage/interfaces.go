package storage

import (
	"context"
	"time"

	"github.com/poiesic/candidex/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// CandidateQuery describes one combined search over the candidate pool.
// All predicates are optional and combine with AND semantics. The zero
// value matches every candidate.
type CandidateQuery struct {
	// Tokens restricts results to candidates whose searchable document
	// contains every token. Empty means no text predicate.
	Tokens []string

	// CreatedAfter drops candidates created strictly before the bound.
	// The zero time means no recency predicate.
	CreatedAfter time.Time

	// CityIDs is the set of desired-city identifiers resolved from a geo
	// radius. It only applies when FilterByCity is set, which keeps an
	// absent geo filter distinguishable from one that matched no city.
	CityIDs      []core.ID
	FilterByCity bool

	// FeaturedOnly restricts results to featured candidates.
	FeaturedOnly bool

	// Offset and Limit page through the ordered result. Limit <= 0 means
	// no bound.
	Offset int
	Limit  int
}

// CandidateRepository provides operations for managing candidate profiles
// and the search structures derived from them.
type CandidateRepository interface {
	Repository
	// AddCandidates adds one or more candidates to storage.
	// For candidates with ID=0, generates new IDs from sequence.
	// Sets InsertedAt and CreatedAt timestamps if not already set, assigns
	// the initial search index value, and marks the searchable document
	// stale so the indexer derives it asynchronously.
	// Returns the candidates with generated IDs and timestamps populated.
	AddCandidates(ctx context.Context, candidates ...*core.Candidate) ([]*core.Candidate, error)

	// UpdateCandidates updates existing candidates.
	// Updates the UpdatedAt timestamp automatically and re-marks the
	// searchable document stale. The previously derived document keeps
	// serving text queries until the next refresh.
	// Returns ErrNotFound if any candidate doesn't exist.
	UpdateCandidates(ctx context.Context, candidates ...*core.Candidate) ([]*core.Candidate, error)

	// DeleteCandidates removes candidates by their IDs.
	// Also removes associated indices and postings.
	// Returns ErrNotFound if any candidate doesn't exist.
	DeleteCandidates(ctx context.Context, ids ...core.ID) error

	// GetCandidate retrieves a single candidate by ID.
	// Returns ErrNotFound if the candidate doesn't exist.
	GetCandidate(ctx context.Context, id core.ID) (*core.Candidate, error)

	// GetCandidates retrieves multiple candidates by their IDs in one pass.
	// Returns only the candidates that exist (no error for missing IDs).
	GetCandidates(ctx context.Context, ids ...core.ID) ([]*core.Candidate, error)

	// GetCandidatesByCreatedRange retrieves candidates within a time range.
	// Returns candidates where start <= CreatedAt < end, ordered by
	// creation time.
	GetCandidatesByCreatedRange(ctx context.Context, start, end time.Time) ([]*core.Candidate, error)

	// CandidateIDsForCity retrieves IDs of candidates that selected a city
	// as a desired location. Returns only IDs, not full records.
	CandidateIDsForCity(ctx context.Context, cityID core.ID) ([]core.ID, error)

	// AllCandidateIDs lists every candidate ID in ascending order. Intended
	// for maintenance scans; records are not loaded.
	AllCandidateIDs(ctx context.Context) ([]core.ID, error)

	// FindCandidates runs one combined query and returns the matching page.
	// With a text predicate, results are ordered by rank descending then
	// search index descending; otherwise by search index descending.
	// An empty page is not an error.
	FindCandidates(ctx context.Context, query *CandidateQuery) ([]*core.RankedCandidate, error)

	// SampleCandidates returns up to k candidates drawn uniformly at random
	// from the set matching the query, in random order. The full matching
	// set is never materialized; when it holds fewer than k candidates,
	// all of them are returned. Offset and Limit on the query are ignored.
	SampleCandidates(ctx context.Context, query *CandidateQuery, k int) ([]*core.Candidate, error)

	// RefreshSearchDocuments re-derives the searchable document and
	// postings for the given candidates. Each candidate's index entry is
	// replaced atomically in its own transaction and receives a fresh
	// search index value. Unknown IDs are skipped.
	RefreshSearchDocuments(ctx context.Context, ids ...core.ID) error

	// StaleCandidateIDs lists candidates whose searchable document has not
	// caught up with the latest profile write, up to limit.
	StaleCandidateIDs(ctx context.Context, limit int) ([]core.ID, error)
}

// CityRepository provides operations for managing desired cities.
type CityRepository interface {
	Repository
	// AddCities adds one or more cities to storage.
	// Uses content-based IDs (IDFromContent of the city slug).
	// Sets InsertedAt timestamp if not already set.
	// Returns the cities with timestamps populated.
	AddCities(ctx context.Context, cities ...*core.DesiredCity) ([]*core.DesiredCity, error)

	// UpdateCities updates existing cities.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any city doesn't exist.
	UpdateCities(ctx context.Context, cities ...*core.DesiredCity) ([]*core.DesiredCity, error)

	// DeleteCities removes cities by their IDs.
	// Returns ErrNotFound if any city doesn't exist.
	DeleteCities(ctx context.Context, ids ...core.ID) error

	// GetCity retrieves a single city by ID.
	// Returns ErrNotFound if the city doesn't exist.
	GetCity(ctx context.Context, id core.ID) (*core.DesiredCity, error)

	// GetCities retrieves multiple cities by their IDs.
	// Returns only the cities that exist (no error for missing IDs).
	GetCities(ctx context.Context, ids ...core.ID) ([]*core.DesiredCity, error)

	// FindCityByName finds a city by its normalized name.
	// Returns ErrNotFound if no matching city exists.
	FindCityByName(ctx context.Context, name string) (*core.DesiredCity, error)

	// GetOrCreateCity finds or creates a city by name.
	// If the city exists, returns it.
	// If not, creates it with the provided coordinates.
	// Thread-safe: handles concurrent creation attempts.
	GetOrCreateCity(ctx context.Context, name string, lat, lon float64) (*core.DesiredCity, error)

	// CitiesWithin returns the IDs of all cities inside the given radius of
	// a center point, resolved through the spatial cell index rather than a
	// scan of the city population. An empty result is not an error.
	CitiesWithin(ctx context.Context, lat, lon, radiusKm float64) ([]core.ID, error)
}

// CheckpointRepository provides resume state for long-running processors.
type CheckpointRepository interface {
	// SaveCheckpoint persists the checkpoint for its processor type,
	// replacing any previous one.
	SaveCheckpoint(ctx context.Context, checkpoint *core.Checkpoint) error

	// LoadCheckpoint retrieves the checkpoint for a processor type.
	// Returns nil, nil if no checkpoint exists.
	LoadCheckpoint(ctx context.Context, processorType string) (*core.Checkpoint, error)

	// DeleteCheckpoint removes the checkpoint for a processor type.
	// Deleting a missing checkpoint is not an error.
	DeleteCheckpoint(ctx context.Context, processorType string) error
}

package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/poiesic/candidex/core"
	"github.com/poiesic/candidex/relevance"
	"github.com/poiesic/candidex/storage"
)

const (
	// DefaultPageSize bounds a search page when the request leaves it unset.
	DefaultPageSize = 20

	// DefaultSampleSize bounds a featured sample when the request leaves it unset.
	DefaultSampleSize = 6

	// DefaultRecencyWindow keeps results to candidates created within the
	// last two years.
	DefaultRecencyWindow = 2 * 365 * 24 * time.Hour
)

// Engine answers search requests over the candidate pool.
type Engine struct {
	candidates    storage.CandidateRepository
	cities        storage.CityRepository
	logger        *slog.Logger
	validate      *validator.Validate
	recencyWindow time.Duration
	sampleSize    int
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithRecencyWindow overrides the rolling window behind the created-at
// cutoff. Default is two years.
func WithRecencyWindow(window time.Duration) Option {
	return func(e *Engine) error {
		if window <= 0 {
			return errors.New("recency window must be positive")
		}
		e.recencyWindow = window
		return nil
	}
}

// WithSampleSize overrides the default featured sample size.
func WithSampleSize(size int) Option {
	return func(e *Engine) error {
		if size <= 0 {
			return errors.New("sample size must be positive")
		}
		e.sampleSize = size
		return nil
	}
}

// NewEngine creates a new search engine.
func NewEngine(
	candidateRepository storage.CandidateRepository,
	cityRepository storage.CityRepository,
	opts ...Option,
) (*Engine, error) {
	if candidateRepository == nil {
		return nil, ErrCandidateRepositoryRequired
	}
	if cityRepository == nil {
		return nil, ErrCityRepositoryRequired
	}

	e := &Engine{
		candidates:    candidateRepository,
		cities:        cityRepository,
		logger:        slog.Default(),
		validate:      validator.New(),
		recencyWindow: DefaultRecencyWindow,
		sampleSize:    DefaultSampleSize,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Search runs the full filter plan and returns one page of candidates plus
// the resolved favorite references attached to the request.
func (e *Engine) Search(ctx context.Context, request *Request) (*Result, error) {
	return e.SearchWithMonitor(ctx, request, nil)
}

// SearchWithMonitor runs the full filter plan with monitoring.
// The monitor receives callbacks at each stage of the pipeline.
func (e *Engine) SearchWithMonitor(ctx context.Context, request *Request, monitor Monitor) (*Result, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if err := e.validateRequest(request); err != nil {
		return nil, err
	}
	monitor.Start(request)

	pageSize := request.PageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	query, empty, err := e.compileQuery(ctx, request, monitor)
	if err != nil {
		return nil, err
	}
	monitor.AfterPlan(query)

	// A geo filter that matched no city yields an empty page without
	// touching the candidate index; favorites still resolve below.
	var page []*core.RankedCandidate
	hasMore := false
	if !empty {
		// Fetch one extra entry to learn whether another page exists
		query.Offset = request.Offset
		query.Limit = pageSize + 1

		results, err := e.candidates.FindCandidates(ctx, query)
		if err != nil {
			e.logger.Error("candidate query failed", "err", err)
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		if len(results) > pageSize {
			hasMore = true
			results = results[:pageSize]
		}
		page = results
	}
	monitor.AfterStoreQuery(page)

	favorites, err := e.resolveFavorites(ctx, request.Favorites)
	if err != nil {
		e.logger.Error("favorite resolution failed", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	monitor.AfterFavoriteResolution(favorites)

	result := &Result{
		Candidates: page,
		HasMore:    hasMore,
		Favorites:  favorites,
	}
	monitor.Finish(result)

	return result, nil
}

// FeaturedSample returns a bounded random selection of featured candidates.
// The featured predicate is forced on and any geo restriction is dropped.
// A text query still filters the pool but no longer orders it; the sample
// comes back in random order and re-invocation yields a different subset.
func (e *Engine) FeaturedSample(ctx context.Context, request *Request) (*Result, error) {
	if err := e.validateRequest(request); err != nil {
		return nil, err
	}

	k := request.PageSize
	if k == 0 {
		k = e.sampleSize
	}

	// Force the featured predicate on and the geo restriction off
	derived := *request
	derived.FeaturedOnly = true
	derived.Geo = nil

	query, _, err := e.compileQuery(ctx, &derived, &noopMonitor{})
	if err != nil {
		return nil, err
	}

	sampled, err := e.candidates.SampleCandidates(ctx, query, k)
	if err != nil {
		e.logger.Error("featured sampling failed", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	results := make([]*core.RankedCandidate, 0, len(sampled))
	for _, candidate := range sampled {
		results = append(results, &core.RankedCandidate{Candidate: candidate})
	}
	return &Result{Candidates: results}, nil
}

// validateRequest rejects malformed requests before any store access.
func (e *Engine) validateRequest(request *Request) error {
	if request == nil {
		return fmt.Errorf("%w: missing request", ErrInvalidRequest)
	}
	if err := e.validate.Struct(request); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

// compileQuery translates a request into one executable store query. The
// second return value reports that the plan can only produce an empty page,
// which happens when a geo filter resolves to no city at all.
func (e *Engine) compileQuery(ctx context.Context, request *Request, monitor Monitor) (*storage.CandidateQuery, bool, error) {
	query := &storage.CandidateQuery{
		Tokens:       relevance.QueryTokens(request.Query),
		FeaturedOnly: request.FeaturedOnly,
	}

	// The cutoff is recomputed per request so it never goes stale
	if !request.IncludeOlder {
		query.CreatedAfter = time.Now().UTC().Add(-e.recencyWindow)
	}

	if request.Geo != nil {
		cityIDs, err := e.cities.CitiesWithin(ctx, request.Geo.Lat, request.Geo.Lon, request.Geo.RadiusKm)
		if err != nil {
			e.logger.Error("geo resolution failed", "err", err)
			return nil, false, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		monitor.AfterGeoResolution(cityIDs)

		query.CityIDs = cityIDs
		query.FilterByCity = true
		if len(cityIDs) == 0 {
			return query, true, nil
		}
	}

	return query, false, nil
}

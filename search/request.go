package search

import "github.com/poiesic/candidex/core"

// Request describes one search over the candidate pool.
// A Request is immutable once constructed; the engine never modifies it.
type Request struct {
	// Query is a free-text query over the searchable documents.
	// A blank or whitespace-only query applies no text filter.
	Query string

	// Geo restricts results to candidates wanting a city within RadiusKm
	// of the center. Nil means no geo restriction.
	Geo *GeoFilter

	// IncludeOlder lifts the created-at recency window.
	IncludeOlder bool

	// FeaturedOnly restricts results to featured candidates.
	FeaturedOnly bool

	// PageSize caps the page. Zero selects the engine default, which for
	// FeaturedSample is the configured sample size.
	PageSize int `validate:"gte=0"`

	// Offset skips entries from the top of the ordering.
	Offset int `validate:"gte=0"`

	// Favorites are candidate references the caller wants resolved
	// alongside the page.
	Favorites []FavoriteRef
}

// GeoFilter restricts a search to a circular region around a center point.
type GeoFilter struct {
	Lat      float64 `validate:"gte=-90,lte=90"`
	Lon      float64 `validate:"gte=-180,lte=180"`
	RadiusKm float64 `validate:"gt=0"`
}

// Result is one page of search output.
type Result struct {
	// Candidates is the matching page in result order. For featured
	// sampling the order is random by contract.
	Candidates []*core.RankedCandidate

	// HasMore reports whether another page exists past this one.
	HasMore bool

	// Favorites holds the resolved favorite references of the request,
	// deduplicated and in request order. References to candidates that no
	// longer exist are dropped.
	Favorites []*core.Candidate
}

package search

import (
	"github.com/poiesic/candidex/core"
	"github.com/poiesic/candidex/storage"
)

// Monitor provides hooks to observe the search pipeline.
// Implement this interface to track intermediate steps and results during a search.
type Monitor interface {
	Start(request *Request)
	// AfterGeoResolution reports the cities a geo filter resolved to.
	// Not called when the request carries no geo filter.
	AfterGeoResolution(cityIDs []core.ID)
	AfterPlan(query *storage.CandidateQuery)
	AfterStoreQuery(page []*core.RankedCandidate)
	AfterFavoriteResolution(favorites []*core.Candidate)
	Finish(result *Result)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ *Request)                            {}
func (n *noopMonitor) AfterGeoResolution(_ []core.ID)              {}
func (n *noopMonitor) AfterPlan(_ *storage.CandidateQuery)         {}
func (n *noopMonitor) AfterStoreQuery(_ []*core.RankedCandidate)   {}
func (n *noopMonitor) AfterFavoriteResolution(_ []*core.Candidate) {}
func (n *noopMonitor) Finish(_ *Result)                            {}

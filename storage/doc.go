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


// Package storage provides the storage abstraction layer for candidex.
//
// This package defines repository interfaces that decouple storage implementation
// from the search engine. It allows for different storage backends (BadgerDB,
// in-memory, etc.) to be used interchangeably.
//
// # Interface Boundary
//
// Consumers hold these interfaces, never the badger types behind them:
//
//	var repo storage.CandidateRepository = candidateRepo
//
// This design decision prioritizes:
//   - Abstraction: Prevents accidental coupling to BadgerDB specifics
//   - Swappability: Easy to add alternative backends (PostgreSQL, in-memory, etc.)
//   - Testing: Consumers can use mock implementations without modification
//
// The badger package wires its repositories over a shared Backend; the root
// candidex.Database facade performs that wiring for applications.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - Repository: Common transaction and lifecycle operations
//   - CandidateRepository: Candidate profiles plus the derived search structures
//   - CityRepository: Desired cities and the spatial cell index
//   - CheckpointRepository: Resume state for long-running processors
//
// # Query Contract
//
// CandidateRepository concentrates the operations the search engine depends on:
//
//   - FindCandidates: one combined token/recency/geo/featured query with paging
//   - SampleCandidates: uniform random selection with a limit, pushed down so
//     the matching set is never materialized by callers
//   - GetCandidates: bulk fetch by ID set in a single pass
//   - CitiesWithin (on CityRepository): spatial containment returning IDs only
//
// # Usage
//
// Create repositories over a shared backend:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	repo, err := badger.NewCandidateRepository(backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
// Use in tests with in-memory storage:
//
//	candidateRepo, cityRepo, backend, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation
// and timeout support. Pass context.Background() for operations
// without specific timeout requirements.
package storage

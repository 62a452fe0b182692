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


// Package search answers candidate search requests.
//
// The Engine type compiles a request into one combined store query that
// ANDs up to four independently optional predicates:
//   - Token-based text relevance over the derived searchable document
//   - Geo membership through the desired-city spatial index
//   - A rolling created-at recency window
//   - The featured flag
//
// Pages are ordered by text relevance when a query is present and by
// freshness of indexing otherwise. Featured sampling returns a bounded
// random selection instead of a ranked page. Both operations are
// read-only and safe for concurrent callers.
package search

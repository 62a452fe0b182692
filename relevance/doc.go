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


// Package relevance derives the searchable text projection of a candidate.
//
// Every candidate carries a single derived document built from its textual
// profile fields:
//   - Location description
//   - Desired position titles
//   - Free-text bio
//
// The document is tokenized with stop-word filtering, and per-token
// occurrence counts feed the inverted index maintained by the storage
// layer. Query ranking is the sum of the matched token counts, which keeps
// matching token-based rather than substring-based: word order and
// punctuation differences between query and profile do not break a match.
//
// The projection is owned here and nowhere else. Whenever a profile field
// changes, the indexer recomputes the document through this package, so
// storage never derives text on its own.
package relevance

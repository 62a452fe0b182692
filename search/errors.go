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


package search

import "errors"

var (
	// ErrCandidateRepositoryRequired is returned when a candidate repository is not provided.
	ErrCandidateRepositoryRequired = errors.New("candidate repository required")

	// ErrCityRepositoryRequired is returned when a city repository is not provided.
	ErrCityRepositoryRequired = errors.New("city repository required")

	// ErrInvalidRequest is returned when a request fails validation. No
	// store access happens for an invalid request.
	ErrInvalidRequest = errors.New("invalid search request")

	// ErrStoreUnavailable is returned when the candidate store fails to
	// serve a query. The engine does not retry.
	ErrStoreUnavailable = errors.New("candidate store unavailable")
)

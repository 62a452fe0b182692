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


package core

import (
	"fmt"
	"time"
)

// ValidateCandidate validates a Candidate according to domain rules.
//
// Validation rules:
//   - FullName must not be empty
//   - CreatedAt must not be in the future
//
// NOT validated (populated by processors or storage):
//   - Document and SearchIndex (derived by the indexer)
//   - ID (0 is valid from database sequences)
//   - Cities (an empty list simply means no geo match)
func ValidateCandidate(candidate *Candidate) error {
	if candidate == nil {
		return fmt.Errorf("%w: candidate is nil", ErrInvalidCandidate)
	}

	if candidate.FullName == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, ErrEmptyCandidateName)
	}

	if !IsValidTimestamp(candidate.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateCity validates a DesiredCity according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - Coordinates must be within valid latitude/longitude bounds
//
// NOT validated:
//   - ID (0 is valid; a content-based ID is derived from the slug)
func ValidateCity(city *DesiredCity) error {
	if city == nil {
		return fmt.Errorf("%w: city is nil", ErrInvalidCity)
	}

	if city.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCity, ErrEmptyCityName)
	}

	if err := ValidateCoordinates(city.Lat, city.Lon); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCity, err)
	}

	return nil
}

// ValidateCoordinates checks that a latitude/longitude pair is within bounds.
func ValidateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %f", ErrCoordinateOutOfRange, lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("%w: longitude %f", ErrCoordinateOutOfRange, lon)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (zero or not in the future).
// Zero is allowed because storage backfills CreatedAt for new records.
func IsValidTimestamp(ts time.Time) bool {
	if ts.IsZero() {
		return true
	}
	return !ts.After(time.Now())
}

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


package storage

import (
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/candidex/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	var id core.ID
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalCandidate serializes a Candidate to bytes.
func MarshalCandidate(candidate *core.Candidate) []byte {
	buf := make([]byte, core.CandidateMUS.Size(*candidate))
	core.CandidateMUS.Marshal(*candidate, buf)
	return buf
}

// UnmarshalCandidate deserializes a Candidate from bytes.
func UnmarshalCandidate(data []byte) (*core.Candidate, error) {
	candidate, _, err := core.CandidateMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &candidate, nil
}

// MarshalCity serializes a DesiredCity to bytes.
func MarshalCity(city *core.DesiredCity) []byte {
	buf := make([]byte, core.DesiredCityMUS.Size(*city))
	core.DesiredCityMUS.Marshal(*city, buf)
	return buf
}

// UnmarshalCity deserializes a DesiredCity from bytes.
func UnmarshalCity(data []byte) (*core.DesiredCity, error) {
	city, _, err := core.DesiredCityMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &city, nil
}

// MarshalCheckpoint serializes a Checkpoint to bytes.
func MarshalCheckpoint(checkpoint *core.Checkpoint) []byte {
	buf := make([]byte, core.CheckpointMUS.Size(*checkpoint))
	core.CheckpointMUS.Marshal(*checkpoint, buf)
	return buf
}

// UnmarshalCheckpoint deserializes a Checkpoint from bytes.
func UnmarshalCheckpoint(data []byte) (*core.Checkpoint, error) {
	checkpoint, _, err := core.CheckpointMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &checkpoint, nil
}

// MarshalTokenCount serializes an inverted-index posting weight to bytes.
func MarshalTokenCount(count uint64) []byte {
	buf := make([]byte, varint.Uint64.Size(count))
	varint.Uint64.Marshal(count, buf)
	return buf
}

// UnmarshalTokenCount deserializes an inverted-index posting weight.
func UnmarshalTokenCount(data []byte) (uint64, error) {
	count, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, ErrTruncatedData
	}
	return count, nil
}

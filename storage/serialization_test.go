package storage

import (
	"testing"
	"time"

	"github.com/poiesic/candidex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("berlin")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Marshal
			data := MarshalID(tt.id)
			require.NotNil(t, data)
			require.NotEmpty(t, data)

			// Unmarshal
			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalID(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestMarshalUnmarshalCandidate(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name      string
		candidate *core.Candidate
	}{
		{
			name: "minimal candidate",
			candidate: &core.Candidate{
				Id:         core.ID(1),
				FullName:   "Ada Lovelace",
				CreatedAt:  now,
				InsertedAt: now,
				UpdatedAt:  now,
			},
		},
		{
			name: "candidate with positions and cities",
			candidate: &core.Candidate{
				Id:           core.ID(2),
				FullName:     "Grace Hopper",
				LocationText: "Greater Boston",
				Positions:    []string{"Compiler Engineer", "Team Lead"},
				Bio:          "I make computers speak English.",
				CreatedAt:    now,
				InsertedAt:   now,
				UpdatedAt:    now,
				Cities:       []core.ID{10, 20, 30},
			},
		},
		{
			name: "featured candidate with derived document",
			candidate: &core.Candidate{
				Id:          core.ID(3),
				FullName:    "Alan Kay",
				Bio:         "Inventing the future",
				Document:    "inventing the future",
				SearchIndex: 77,
				Featured:    true,
				CreatedAt:   now,
				InsertedAt:  now,
				UpdatedAt:   now,
			},
		},
		{
			name: "empty text fields",
			candidate: &core.Candidate{
				Id:         core.ID(4),
				FullName:   "N",
				CreatedAt:  now,
				InsertedAt: now,
				UpdatedAt:  now,
			},
		},
		{
			name: "unicode fields",
			candidate: &core.Candidate{
				Id:           core.ID(5),
				FullName:     "Łukasz Żółć",
				LocationText: "Київ",
				Positions:    []string{"développeur"},
				Bio:          "Hello 世界 🌍",
				CreatedAt:    now,
				InsertedAt:   now,
				UpdatedAt:    now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Marshal
			data := MarshalCandidate(tt.candidate)
			require.NotNil(t, data)
			require.NotEmpty(t, data)

			// Unmarshal
			decoded, err := UnmarshalCandidate(data)
			require.NoError(t, err)
			require.NotNil(t, decoded)

			// Verify fields
			assert.Equal(t, tt.candidate.Id, decoded.Id)
			assert.Equal(t, tt.candidate.FullName, decoded.FullName)
			assert.Equal(t, tt.candidate.LocationText, decoded.LocationText)
			assert.Equal(t, tt.candidate.Bio, decoded.Bio)
			assert.Equal(t, tt.candidate.Document, decoded.Document)
			assert.Equal(t, tt.candidate.SearchIndex, decoded.SearchIndex)
			assert.Equal(t, tt.candidate.Featured, decoded.Featured)
			assert.True(t, tt.candidate.CreatedAt.Equal(decoded.CreatedAt))
			assert.True(t, tt.candidate.InsertedAt.Equal(decoded.InsertedAt))
			assert.True(t, tt.candidate.UpdatedAt.Equal(decoded.UpdatedAt))
			// Handle nil vs empty slice
			if len(tt.candidate.Positions) == 0 {
				assert.Empty(t, decoded.Positions)
			} else {
				assert.Equal(t, tt.candidate.Positions, decoded.Positions)
			}
			if len(tt.candidate.Cities) == 0 {
				assert.Empty(t, decoded.Cities)
			} else {
				assert.Equal(t, tt.candidate.Cities, decoded.Cities)
			}
		})
	}
}

func TestUnmarshalCandidate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"invalid data", []byte{0xFF, 0xFF, 0xFF}},
		{"partial data", []byte{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalCandidate(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestMarshalUnmarshalCity(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	tests := []struct {
		name string
		city *core.DesiredCity
	}{
		{
			name: "city with coordinates",
			city: &core.DesiredCity{
				Id:         core.IDFromContent("berlin"),
				Name:       "Berlin",
				Lat:        52.520008,
				Lon:        13.404954,
				InsertedAt: now,
				UpdatedAt:  now,
			},
		},
		{
			name: "southern hemisphere",
			city: &core.DesiredCity{
				Id:         core.IDFromContent("sydney"),
				Name:       "Sydney",
				Lat:        -33.868820,
				Lon:        151.209290,
				InsertedAt: now,
				UpdatedAt:  now,
			},
		},
		{
			name: "unicode name",
			city: &core.DesiredCity{
				Id:         core.IDFromContent("京都市"),
				Name:       "京都市",
				Lat:        35.011564,
				Lon:        135.768149,
				InsertedAt: now,
				UpdatedAt:  now,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Marshal
			data := MarshalCity(tt.city)
			require.NotNil(t, data)
			require.NotEmpty(t, data)

			// Unmarshal
			decoded, err := UnmarshalCity(data)
			require.NoError(t, err)
			require.NotNil(t, decoded)

			// Verify fields
			assert.Equal(t, tt.city.Id, decoded.Id)
			assert.Equal(t, tt.city.Name, decoded.Name)
			// Coordinates are stored with microdegree precision
			assert.InDelta(t, tt.city.Lat, decoded.Lat, 1e-6)
			assert.InDelta(t, tt.city.Lon, decoded.Lon, 1e-6)
			assert.True(t, tt.city.InsertedAt.Equal(decoded.InsertedAt))
			assert.True(t, tt.city.UpdatedAt.Equal(decoded.UpdatedAt))
		})
	}
}

func TestUnmarshalCity_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"invalid data", []byte{0xFF, 0xFF, 0xFF}},
		{"partial data", []byte{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalCity(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestMarshalUnmarshalCheckpoint(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)

	checkpoint := &core.Checkpoint{
		ProcessorType: "document_rebuild",
		LastID:        core.ID(12345),
		UpdatedAt:     now,
	}

	data := MarshalCheckpoint(checkpoint)
	require.NotNil(t, data)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalCheckpoint(data)
	require.NoError(t, err)
	require.NotNil(t, decoded)

	assert.Equal(t, checkpoint.ProcessorType, decoded.ProcessorType)
	assert.Equal(t, checkpoint.LastID, decoded.LastID)
	assert.True(t, checkpoint.UpdatedAt.Equal(decoded.UpdatedAt))
}

func TestMarshalUnmarshalTokenCount(t *testing.T) {
	tests := []struct {
		name  string
		count uint64
	}{
		{"zero", 0},
		{"single occurrence", 1},
		{"repeated token", 17},
		{"large count", 1 << 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalTokenCount(tt.count)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalTokenCount(data)
			require.NoError(t, err)
			assert.Equal(t, tt.count, decoded)
		})
	}
}

func TestUnmarshalTokenCount_Invalid(t *testing.T) {
	_, err := UnmarshalTokenCount([]byte{})
	assert.ErrorIs(t, err, ErrTruncatedData)
}

func TestRoundTripConsistency(t *testing.T) {
	t.Run("multiple marshal-unmarshal cycles", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Microsecond)
		original := &core.Candidate{
			Id:           core.ID(999),
			FullName:     "Margaret Hamilton",
			LocationText: "Cambridge, MA",
			Positions:    []string{"Software Engineering Lead"},
			Bio:          "Landing software on the moon",
			Document:     "cambridge ma software engineering lead landing software moon",
			SearchIndex:  404,
			Featured:     true,
			CreatedAt:    now,
			InsertedAt:   now,
			UpdatedAt:    now,
			Cities:       []core.ID{7},
		}

		// Perform 3 marshal-unmarshal cycles
		current := original
		for i := 0; i < 3; i++ {
			data := MarshalCandidate(current)
			decoded, err := UnmarshalCandidate(data)
			require.NoError(t, err)
			current = decoded
		}

		// Verify final result matches original
		assert.Equal(t, original.Id, current.Id)
		assert.Equal(t, original.FullName, current.FullName)
		assert.Equal(t, original.Positions, current.Positions)
		assert.Equal(t, original.Document, current.Document)
		assert.Equal(t, original.SearchIndex, current.SearchIndex)
		assert.Equal(t, original.Featured, current.Featured)
		assert.Equal(t, original.Cities, current.Cities)
	})
}

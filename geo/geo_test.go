package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	berlinLat  = 52.520008
	berlinLon  = 13.404954
	munichLat  = 48.137154
	munichLon  = 11.576124
	hamburgLat = 53.551086
	hamburgLon = 9.993682
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name   string
		lat1   float64
		lon1   float64
		lat2   float64
		lon2   float64
		wantKm float64
		delta  float64
	}{
		{
			name:   "berlin to munich",
			lat1:   berlinLat,
			lon1:   berlinLon,
			lat2:   munichLat,
			lon2:   munichLon,
			wantKm: 504.2,
			delta:  2,
		},
		{
			name:   "berlin to hamburg",
			lat1:   berlinLat,
			lon1:   berlinLon,
			lat2:   hamburgLat,
			lon2:   hamburgLon,
			wantKm: 255.5,
			delta:  2,
		},
		{
			name:   "one degree of longitude at the equator",
			lat1:   0,
			lon1:   0,
			lat2:   0,
			lon2:   1,
			wantKm: 111.19,
			delta:  0.1,
		},
		{
			name:   "same point",
			lat1:   berlinLat,
			lon1:   berlinLon,
			lat2:   berlinLat,
			lon2:   berlinLon,
			wantKm: 0,
			delta:  0.001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.wantKm, got, tt.delta)
		})
	}
}

func TestDistance_Symmetric(t *testing.T) {
	forward := Distance(berlinLat, berlinLon, munichLat, munichLon)
	backward := Distance(munichLat, munichLon, berlinLat, berlinLon)
	assert.InDelta(t, forward, backward, 1e-9)
}

func TestWithin(t *testing.T) {
	assert.True(t, Within(berlinLat, berlinLon, 600, munichLat, munichLon))
	assert.False(t, Within(berlinLat, berlinLon, 400, munichLat, munichLon))
	assert.True(t, Within(berlinLat, berlinLon, 0.001, berlinLat, berlinLon))
}

func TestCellOf(t *testing.T) {
	t.Run("distinct cities land in distinct cells", func(t *testing.T) {
		assert.NotEqual(t, CellOf(berlinLat, berlinLon), CellOf(munichLat, munichLon))
	})

	t.Run("points in the same degree square share a cell", func(t *testing.T) {
		assert.Equal(t, CellOf(52.1, 13.1), CellOf(52.9, 13.9))
	})

	t.Run("antimeridian wraps to the same cell", func(t *testing.T) {
		assert.Equal(t, CellOf(0, -180), CellOf(0, 180))
	})

	t.Run("poles are clamped", func(t *testing.T) {
		assert.Equal(t, CellOf(89.5, 0), CellOf(90, 0))
		assert.Equal(t, CellOf(-89.5, 0), CellOf(-90, 0))
	})
}

func TestCoverRadius(t *testing.T) {
	t.Run("includes the center cell", func(t *testing.T) {
		cells := CoverRadius(berlinLat, berlinLon, 10)
		assert.Contains(t, cells, CellOf(berlinLat, berlinLon))
	})

	t.Run("covers cities inside the radius", func(t *testing.T) {
		cells := CoverRadius(berlinLat, berlinLon, 300)
		assert.Contains(t, cells, CellOf(hamburgLat, hamburgLon))
	})

	t.Run("small radius excludes distant cells", func(t *testing.T) {
		cells := CoverRadius(berlinLat, berlinLon, 10)
		assert.NotContains(t, cells, CellOf(munichLat, munichLon))
	})

	t.Run("zero and negative radius yield no cells", func(t *testing.T) {
		assert.Nil(t, CoverRadius(berlinLat, berlinLon, 0))
		assert.Nil(t, CoverRadius(berlinLat, berlinLon, -5))
	})

	t.Run("larger radius covers a superset", func(t *testing.T) {
		small := CoverRadius(berlinLat, berlinLon, 50)
		large := CoverRadius(berlinLat, berlinLon, 500)
		for _, cell := range small {
			assert.Contains(t, large, cell)
		}
	})

	t.Run("crosses the antimeridian", func(t *testing.T) {
		cells := CoverRadius(0, 179.9, 50)
		assert.Contains(t, cells, CellOf(0, -179.9))
	})

	t.Run("polar radius covers the full band", func(t *testing.T) {
		cells := CoverRadius(89.5, 0, 10)
		assert.Contains(t, cells, CellOf(89.5, 120))
		assert.Contains(t, cells, CellOf(89.5, -120))
	})
}

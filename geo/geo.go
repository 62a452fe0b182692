package geo

import "math"

// EarthRadiusKm is the radius of the Earth in kilometers.
const EarthRadiusKm = 6371.0

// kmPerDegreeLat is the surface distance of one degree of latitude.
const kmPerDegreeLat = EarthRadiusKm * math.Pi / 180

// cellDegrees is the edge length of a grid cell in degrees.
const cellDegrees = 1.0

// Cell identifies a one-degree grid cell. The encoding packs the latitude
// band into the high bits so cells in the same band sort together.
type Cell uint64

// degreesToRadians converts degrees to radians.
func degreesToRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}

// Distance calculates the great-circle distance between two points using the
// haversine formula. It returns the distance in kilometers.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	rLat1 := degreesToRadians(lat1)
	rLat2 := degreesToRadians(lat2)
	rLon1 := degreesToRadians(lon1)
	rLon2 := degreesToRadians(lon2)

	dLat := rLat2 - rLat1
	dLon := rLon2 - rLon1

	a := math.Pow(math.Sin(dLat/2), 2) + math.Cos(rLat1)*math.Cos(rLat2)*math.Pow(math.Sin(dLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Within reports whether a point lies inside the given radius of a center.
func Within(centerLat, centerLon, radiusKm, lat, lon float64) bool {
	return Distance(centerLat, centerLon, lat, lon) <= radiusKm
}

// CellOf returns the grid cell containing a coordinate pair.
func CellOf(lat, lon float64) Cell {
	return makeCell(latIndex(lat), lonIndex(lon))
}

// CoverRadius returns the cells covering the bounding box of a radius around
// a center point. The result is a superset of the circle; callers still
// verify each hit with Distance. Longitude wraps at the antimeridian and
// latitude is clamped at the poles.
func CoverRadius(lat, lon, radiusKm float64) []Cell {
	if radiusKm <= 0 {
		return nil
	}

	latDelta := radiusKm / kmPerDegreeLat
	latMin := math.Max(lat-latDelta, -90)
	latMax := math.Min(lat+latDelta, 90)

	cells := make([]Cell, 0, 8)
	for latIdx := latIndex(latMin); latIdx <= latIndex(latMax); latIdx++ {
		// Use the band edge closest to a pole: shrinking parallels make
		// one longitude degree shortest there, so the span is widest.
		bandLat := math.Max(math.Abs(float64(latIdx)-90), math.Abs(float64(latIdx)-90+cellDegrees))
		lonDelta := 180.0
		if cosLat := math.Cos(degreesToRadians(bandLat)); cosLat > 0 {
			lonDelta = radiusKm / (kmPerDegreeLat * cosLat)
		}

		if lonDelta >= 180 {
			// The band circles the pole, cover every longitude.
			for lonIdx := 0; lonIdx < 360; lonIdx++ {
				cells = append(cells, makeCell(latIdx, lonIdx))
			}
			continue
		}

		first := int(math.Floor((lon - lonDelta + 180) / cellDegrees))
		last := int(math.Floor((lon + lonDelta + 180) / cellDegrees))
		for i := first; i <= last; i++ {
			// Wrap into [0, 360).
			lonIdx := ((i % 360) + 360) % 360
			cells = append(cells, makeCell(latIdx, lonIdx))
		}
	}

	return cells
}

// latIndex maps latitude to a band index in [0, 179].
func latIndex(lat float64) int {
	idx := int(math.Floor((lat + 90) / cellDegrees))
	if idx < 0 {
		idx = 0
	}
	if idx > 179 {
		idx = 179
	}
	return idx
}

// lonIndex maps longitude to a column index in [0, 359].
func lonIndex(lon float64) int {
	idx := int(math.Floor((lon + 180) / cellDegrees))
	return ((idx % 360) + 360) % 360
}

func makeCell(latIdx, lonIdx int) Cell {
	return Cell(uint64(latIdx)<<16 | uint64(lonIdx))
}

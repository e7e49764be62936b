package geo

import "math"

// earthRadiusKm is the mean Earth radius used for great-circle distances.
const earthRadiusKm = 6371.0

// kmPerDegreeLat is the approximate north-south span of one degree of latitude.
const kmPerDegreeLat = 111.0

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Latitude  float64
	Longitude float64
}

// BoundingBox is a coarse rectangular pre-filter around a center point. It is
// a superset of the true radius near the poles and for large radii, so callers
// must always re-check with Distance before trusting a hit.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// NewBoundingBox builds the box covering radiusKm around center, using
// 111 km per degree of latitude and cos(lat)-scaled longitude degrees.
func NewBoundingBox(center Point, radiusKm float64) BoundingBox {
	latDelta := radiusKm / kmPerDegreeLat
	lonDelta := radiusKm / (kmPerDegreeLat * math.Cos(center.Latitude*math.Pi/180))

	return BoundingBox{
		MinLat: center.Latitude - latDelta,
		MaxLat: center.Latitude + latDelta,
		MinLon: center.Longitude - lonDelta,
		MaxLon: center.Longitude + lonDelta,
	}
}

// ContainsLongitude reports whether lon falls inside the box's east-west
// range. Latitude is range-queried in the store; longitude must be
// post-filtered in memory because the store cannot range-query two fields
// in one query.
func (b BoundingBox) ContainsLongitude(lon float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon
}

// Distance returns the Haversine great-circle distance between two points
// in kilometers.
func Distance(a, b Point) float64 {
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Latitude*math.Pi/180)*math.Cos(b.Latitude*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

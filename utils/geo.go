package utils

import "math"

// EarthRadiusKM is the mean Earth radius used by the spherical
// approximation.
const EarthRadiusKM = 6371.0

// kmPerDegreeLat is the rough conversion used for bounding boxes only;
// exact filtering always goes through Haversine.
const kmPerDegreeLat = 111.0

// Haversine returns the great-circle distance in kilometers between
// two coordinates.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlng1 := lng1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	rlng2 := lng2 * math.Pi / 180

	dlat := rlat2 - rlat1
	dlng := rlng2 - rlng1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	return 2 * EarthRadiusKM * math.Asin(math.Sqrt(a))
}

// WithinRadius reports whether two points are at most radiusKM apart.
func WithinRadius(lat1, lng1, lat2, lng2, radiusKM float64) bool {
	return Haversine(lat1, lng1, lat2, lng2) <= radiusKM
}

// BoundingBox is a rectangular prefilter around a point. It
// over-approximates the circle of the given radius, so candidates it
// admits still need an exact distance check.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoxAround builds the bounding box for a radius in km around a point.
func BoxAround(lat, lng, radiusKM float64) BoundingBox {
	latOffset := radiusKM / kmPerDegreeLat
	lngScale := math.Cos(lat * math.Pi / 180)
	if lngScale < 0.01 {
		lngScale = 0.01 // near the poles a degree of longitude shrinks to nothing
	}
	lngOffset := radiusKM / (kmPerDegreeLat * lngScale)
	return BoundingBox{
		MinLat: lat - latOffset,
		MaxLat: lat + latOffset,
		MinLng: lng - lngOffset,
		MaxLng: lng + lngOffset,
	}
}

// RoundCoord rounds a coordinate to 6 decimal places, matching the
// decimal(9,6) storage precision.
func RoundCoord(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

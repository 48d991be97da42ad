package geo

import "math"

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance in kilometers between two
// lat/lng points.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLng := (lng2 - lng1) * math.Pi / 180.0

	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(lat1*math.Pi/180.0)*math.Cos(lat2*math.Pi/180.0)*
			math.Pow(math.Sin(dLng/2), 2)

	return earthRadiusKm * 2 * math.Asin(math.Sqrt(a))
}

// BoundingBox is a rectangular lat/lng pre-filter. It is a superset of the
// radius circle; callers must still apply the exact haversine cutoff.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoxAround approximates degrees-per-km at the given latitude. The longitude
// delta diverges as |lat| approaches 90; callers must reject near-polar
// centers before calling.
func BoxAround(lat, lng, radiusKm float64) BoundingBox {
	latDelta := radiusKm / 111.0
	lngDelta := radiusKm / (111.0 * math.Cos(lat*math.Pi/180.0))
	return BoundingBox{
		MinLat: lat - latDelta,
		MaxLat: lat + latDelta,
		MinLng: lng - lngDelta,
		MaxLng: lng + lngDelta,
	}
}

// Package geodesy provides great-circle distance between geodetic
// coordinates.
package geodesy

import "math"

// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
const EarthRadiusMeters = 6371000.0

// Haversine returns the great-circle distance in meters between two
// (lat, lon) coordinates, in degrees. It is total for all finite inputs and
// returns 0 for identical points. Out-of-range coordinates produce a
// numerically defined but meaningless result; validation is the caller's
// job.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

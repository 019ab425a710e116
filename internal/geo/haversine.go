// Package geo provides great-circle distance computation and radius filtering
// for animal listings.
package geo

import (
	"math"
	"strconv"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// Distance returns the great-circle distance in kilometers between two
// latitude/longitude pairs expressed in degrees.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Pow(math.Sin(dLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Filter is a radius filter around a requester's position.
type Filter struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
}

// ParseFilter builds a Filter from raw query parameters. All three parameters
// must be present and numeric; otherwise ok is false and callers skip the
// filter entirely. The permissive degradation on malformed input is a
// documented behavior, not an error path.
func ParseFilter(lat, lng, radius string) (Filter, bool) {
	if lat == "" || lng == "" || radius == "" {
		return Filter{}, false
	}

	latF, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return Filter{}, false
	}
	lngF, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return Filter{}, false
	}
	radiusF, err := strconv.ParseFloat(radius, 64)
	if err != nil {
		return Filter{}, false
	}

	return Filter{Lat: latF, Lng: lngF, RadiusKm: radiusF}, true
}

// Contains reports whether a point lies within the filter radius. Points
// without coordinates are excluded.
func (f Filter) Contains(lat, lng *float64) bool {
	if lat == nil || lng == nil {
		return false
	}
	return Distance(f.Lat, f.Lng, *lat, *lng) <= f.RadiusKm
}

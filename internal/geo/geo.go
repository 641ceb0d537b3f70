// Package geo holds airport reference data and the great-circle helpers used
// to suggest a departure airport from a caller's coordinates.
package geo

import "math"

// EarthRadiusKm is the mean earth radius used by Distance.
const EarthRadiusKm = 6371

// FallbackCity is returned when no airport can be matched.
const FallbackCity = "New York"

// Airport is a single airport entry.
type Airport struct {
	Code      string  `json:"airport_code"`
	Name      string  `json:"airport_name"`
	City      string  `json:"city_name"`
	Country   string  `json:"country_name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Distance returns the haversine distance in kilometres between two points.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := deg2rad(lat2 - lat1)
	dLng := deg2rad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(lat1))*math.Cos(deg2rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// ValidCoordinates reports whether lat/lng are finite and within range.
func ValidCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Nearest returns the airport closest to lat/lng and its distance. ok is
// false when airports is empty or the coordinates are invalid.
func Nearest(lat, lng float64, airports []Airport) (best Airport, km float64, ok bool) {
	if !ValidCoordinates(lat, lng) {
		return Airport{}, 0, false
	}
	km = math.Inf(1)
	for _, a := range airports {
		d := Distance(lat, lng, a.Latitude, a.Longitude)
		if d < km {
			km, best, ok = d, a, true
		}
	}
	if !ok {
		return Airport{}, 0, false
	}
	return best, km, true
}

// NearestCity returns the city of the nearest airport, or FallbackCity.
func NearestCity(lat, lng float64, airports []Airport) string {
	if a, _, ok := Nearest(lat, lng, airports); ok {
		return a.City
	}
	return FallbackCity
}

func deg2rad(deg float64) float64 { return deg * (math.Pi / 180) }

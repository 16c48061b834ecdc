package geo

import (
	"fmt"
	"math"
	"time"

	"github.com/cbsthiago-dev/progbunker-application/core/model"
)

// earthRadiusNM is the mean Earth radius in nautical miles.
const earthRadiusNM = 3440.065

// NauticalMiles returns the great-circle distance between two locations
// computed with the Haversine formula.
func NauticalMiles(from, to model.Location) float64 {
	dLat := toRad(to.Lat - from.Lat)
	dLon := toRad(to.Lon - from.Lon)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(from.Lat))*math.Cos(toRad(to.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusNM * c
}

// TravelTime estimates the sailing time between two locations at the
// given speed, rounded to the nearest half hour with ties rounding up.
// A same-location pair takes zero time without touching the formula.
func TravelTime(from, to model.Location, speedKnots float64) (time.Duration, error) {
	if from.ID == to.ID {
		return 0, nil
	}
	if err := from.Validate(); err != nil {
		return 0, err
	}
	if err := to.Validate(); err != nil {
		return 0, err
	}
	if speedKnots <= 0 {
		return 0, fmt.Errorf("sailing speed must be positive, got %.2f", speedKnots)
	}
	hours := NauticalMiles(from, to) / speedKnots
	return RoundHalfHour(hours), nil
}

// RoundHalfHour rounds a duration expressed in hours to the nearest
// half hour. Exact quarter-hour ties round up.
func RoundHalfHour(hours float64) time.Duration {
	halves := math.Floor(hours*2 + 0.5)
	return time.Duration(halves * float64(30*time.Minute))
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

// Package geo provides the planar geometry used to map river cross-section
// surveys onto reference lines, plus a few geographic helpers for raw
// latitude/longitude input.
package geo

import (
	"errors"
	"math"
)

// EarthRadius is the mean Earth radius in meters
const EarthRadius = 6371000

// NewCoordinate creates a Coordinate with validation
func NewCoordinate(latitude, longitude float64) (Coordinate, error) {
	c := Coordinate{Latitude: latitude, Longitude: longitude}
	if !isValidCoordinate(c) {
		return Coordinate{}, errors.New("invalid coordinates: latitude must be [-90, 90], longitude must be [-180, 180]")
	}
	return c, nil
}

// GreatCircleDistance calculates the distance in meters between two
// coordinates using the Haversine formula
func GreatCircleDistance(c1, c2 Coordinate) (float64, error) {
	if !isValidCoordinate(c1) || !isValidCoordinate(c2) {
		return 0, errors.New("invalid coordinates: latitude must be [-90, 90], longitude must be [-180, 180]")
	}

	if c1 == c2 {
		return 0, nil
	}

	lat1 := DegToRad(c1.Latitude)
	lon1 := DegToRad(c1.Longitude)
	lat2 := DegToRad(c2.Latitude)
	lon2 := DegToRad(c2.Longitude)

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadius * c, nil
}

// Extent returns the largest great-circle distance between any two of the
// given coordinates. Used to sanity check a raw survey before projection.
func Extent(coords []Coordinate) (float64, error) {
	var maxDist float64
	for i := 0; i < len(coords); i++ {
		for j := i + 1; j < len(coords); j++ {
			d, err := GreatCircleDistance(coords[i], coords[j])
			if err != nil {
				return 0, err
			}
			maxDist = math.Max(maxDist, d)
		}
	}
	return maxDist, nil
}

// isValidCoordinate validates latitude and longitude values
func isValidCoordinate(c Coordinate) bool {
	return c.Latitude >= -90 && c.Latitude <= 90 &&
		c.Longitude >= -180 && c.Longitude <= 180
}

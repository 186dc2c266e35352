// Package geo provides the great-circle math used by route planning.
package geo

import (
	"math"

	"github.com/shipmind-ai/shipmind/core/model"
)

// EarthRadiusNM is the mean Earth radius expressed in nautical miles.
const EarthRadiusNM = 3440.065

// Haversine returns the great-circle distance between two positions in
// nautical miles.
func Haversine(a, b model.Position) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	return 2 * EarthRadiusNM * math.Asin(math.Min(1, math.Sqrt(h)))
}

// Interpolate returns the point a fraction f of the way from a to b using
// linear interpolation in latitude and longitude. Longitude wraps across the
// antimeridian along the shorter side.
func Interpolate(a, b model.Position, f float64) model.Position {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	dLon := b.Lon - a.Lon
	if dLon > 180 {
		dLon -= 360
	} else if dLon < -180 {
		dLon += 360
	}
	p := model.Position{
		Lat: a.Lat + (b.Lat-a.Lat)*f,
		Lon: a.Lon + dLon*f,
	}
	if p.Lon > 180 {
		p.Lon -= 360
	} else if p.Lon < -180 {
		p.Lon += 360
	}
	return p
}

// ClampLat keeps a jittered latitude on the globe.
func ClampLat(lat float64) float64 {
	if lat > 90 {
		return 90
	}
	if lat < -90 {
		return -90
	}
	return lat
}

// WrapLon normalizes a jittered longitude into [-180,180].
func WrapLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}

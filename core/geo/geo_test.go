package geo

import (
	"math"
	"testing"

	"github.com/shipmind-ai/shipmind/core/model"
)

func TestHaversineKnownRoute(t *testing.T) {
	newYork := model.Position{Lat: 40.7128, Lon: -74.0060}
	london := model.Position{Lat: 51.5074, Lon: -0.1278}

	d := Haversine(newYork, london)
	if d < 3000 || d > 3200 {
		t.Fatalf("expected roughly 3008 NM between New York and London, got %.1f", d)
	}
}

func TestHaversineZeroDistance(t *testing.T) {
	p := model.Position{Lat: 12.34, Lon: 56.78}
	if d := Haversine(p, p); d != 0 {
		t.Fatalf("expected zero distance, got %v", d)
	}
}

func TestHaversineSymmetry(t *testing.T) {
	a := model.Position{Lat: -33.8688, Lon: 151.2093}
	b := model.Position{Lat: 35.6762, Lon: 139.6503}
	if d1, d2 := Haversine(a, b), Haversine(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Fatalf("distance not symmetric: %v vs %v", d1, d2)
	}
}

func TestInterpolateEndpoints(t *testing.T) {
	a := model.Position{Lat: 10, Lon: 20}
	b := model.Position{Lat: 30, Lon: 40}

	if p := Interpolate(a, b, 0); p != a {
		t.Fatalf("f=0 should return origin, got %+v", p)
	}
	if p := Interpolate(a, b, 1); p != b {
		t.Fatalf("f=1 should return destination, got %+v", p)
	}
	mid := Interpolate(a, b, 0.5)
	if mid.Lat != 20 || mid.Lon != 30 {
		t.Fatalf("unexpected midpoint %+v", mid)
	}
}

func TestInterpolateClampsFraction(t *testing.T) {
	a := model.Position{Lat: 0, Lon: 0}
	b := model.Position{Lat: 10, Lon: 10}
	if p := Interpolate(a, b, -0.5); p != a {
		t.Fatalf("negative fraction should clamp to origin, got %+v", p)
	}
	if p := Interpolate(a, b, 1.5); p != b {
		t.Fatalf("fraction above one should clamp to destination, got %+v", p)
	}
}

func TestInterpolateAntimeridian(t *testing.T) {
	a := model.Position{Lat: 0, Lon: 170}
	b := model.Position{Lat: 0, Lon: -170}

	mid := Interpolate(a, b, 0.5)
	if math.Abs(math.Abs(mid.Lon)-180) > 1e-9 {
		t.Fatalf("midpoint should sit on the antimeridian, got lon %v", mid.Lon)
	}
}

func TestWrapLon(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{181, -179},
		{-181, 179},
		{540, 180},
	}
	for _, c := range cases {
		if got := WrapLon(c.in); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("WrapLon(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestClampLat(t *testing.T) {
	if got := ClampLat(95); got != 90 {
		t.Fatalf("expected clamp to 90, got %v", got)
	}
	if got := ClampLat(-95); got != -90 {
		t.Fatalf("expected clamp to -90, got %v", got)
	}
	if got := ClampLat(45); got != 45 {
		t.Fatalf("expected passthrough, got %v", got)
	}
}

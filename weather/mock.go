package weather

import (
	"context"
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/shipmind-ai/shipmind/core/model"
)

// MockProvider derives conditions from the query itself, so the same
// position and time bucket always yield the same sea state. Useful for
// development and tests without an upstream API.
type MockProvider struct {
	seed int64
}

// NewMockProvider creates a deterministic provider. The seed shifts the
// whole weather pattern, a zero seed is valid.
func NewMockProvider(seed int64) *MockProvider {
	return &MockProvider{seed: seed}
}

// Conditions returns synthetic conditions for a quarter-degree cell and a
// six-hour time bucket around the query.
func (m *MockProvider) Conditions(_ context.Context, pos model.Position, at time.Time) (*model.WeatherConditions, error) {
	if at.IsZero() {
		at = time.Now()
	}
	h := fnv.New64a()
	write := func(v any) { _ = binary.Write(h, binary.LittleEndian, v) }
	write(m.seed)
	write(math.Round(pos.Lat * 4))
	write(math.Round(pos.Lon * 4))
	write(at.UTC().Truncate(6 * time.Hour).Unix())
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	wind := 4 + 28*rng.Float64()
	wave := wind/8 + rng.Float64()
	return &model.WeatherConditions{
		WindSpeedKn:    round1(wind),
		WindDirDeg:     round1(360 * rng.Float64()),
		WaveHeightM:    round1(wave),
		CurrentSpeedKn: round1(3 * rng.Float64()),
		VisibilityNM:   round1(2 + 18*rng.Float64()),
	}, nil
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

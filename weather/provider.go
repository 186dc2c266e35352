package weather

import (
	"context"
	"strings"
	"time"

	"github.com/shipmind-ai/shipmind/config"
	"github.com/shipmind-ai/shipmind/core/model"
)

// Provider resolves the sea state for a position at a point in time.
// The API layer consults it when a request omits weather.
type Provider interface {
	Conditions(ctx context.Context, pos model.Position, at time.Time) (*model.WeatherConditions, error)
}

// NewProvider creates a provider depending on cfg.Mode ("api" or "mock").
// An empty mode selects the mock provider.
func NewProvider(cfg config.WeatherConfig) Provider {
	switch strings.ToLower(cfg.Mode) {
	case "api":
		return NewAPIClient(cfg)
	default:
		return NewMockProvider(cfg.Seed)
	}
}

package config

import "fmt"

// WeatherConfig defines configuration for the weather provider.
type WeatherConfig struct {
	Mode           string   `json:"mode"`
	APIURL         string   `json:"api_url"`
	ClientID       string   `json:"client_id"`
	ClientSecret   string   `json:"client_secret"`
	TokenURL       string   `json:"token_url"`
	Scopes         []string `json:"scopes"`
	TimeoutSeconds int      `json:"timeout_seconds"`
	Seed           int64    `json:"seed"`
}

func (c WeatherConfig) Timeout() int {
	if c.TimeoutSeconds <= 0 {
		return 10
	}
	return c.TimeoutSeconds
}

// Validate checks mode-dependent fields. An empty mode selects the mock
// provider.
func (c WeatherConfig) Validate() error {
	switch c.Mode {
	case "", "mock":
		return nil
	case "api":
		if c.APIURL == "" {
			return fmt.Errorf("api_url is required in api mode")
		}
		if c.ClientID != "" && c.TokenURL == "" {
			return fmt.Errorf("token_url is required when client_id is set")
		}
		return nil
	default:
		return fmt.Errorf("unknown weather mode %s", c.Mode)
	}
}

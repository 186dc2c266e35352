package config

import "testing"

func TestWeatherConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     WeatherConfig
		wantErr bool
	}{
		{"empty defaults to mock", WeatherConfig{}, false},
		{"mock", WeatherConfig{Mode: "mock"}, false},
		{"api with url", WeatherConfig{Mode: "api", APIURL: "https://wx.example.com"}, false},
		{"api without url", WeatherConfig{Mode: "api"}, true},
		{"api oauth without token url", WeatherConfig{Mode: "api", APIURL: "https://wx.example.com", ClientID: "id"}, true},
		{"unknown mode", WeatherConfig{Mode: "satellite"}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.cfg.Validate()
			if c.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !c.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

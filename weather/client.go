package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shipmind-ai/shipmind/auth"
	"github.com/shipmind-ai/shipmind/config"
	"github.com/shipmind-ai/shipmind/core/model"
	"github.com/shipmind-ai/shipmind/infra/logger"
)

// APIClient fetches conditions from an external weather API, authenticating
// with client credentials when configured.
type APIClient struct {
	log    logger.Logger
	client *http.Client
	apiURL string
	cred   *auth.ClientCred
}

// NewAPIClient creates a client for the configured weather endpoint.
func NewAPIClient(cfg config.WeatherConfig) *APIClient {
	c := &APIClient{
		log:    logger.New("weather-client"),
		client: &http.Client{Timeout: time.Duration(cfg.Timeout()) * time.Second},
		apiURL: cfg.APIURL,
	}
	if cfg.ClientID != "" {
		c.cred = auth.NewClientCred(auth.Conf{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		})
	}
	return c
}

// Conditions queries the API for the sea state at pos. The response must
// carry the same field names as model.WeatherConditions.
func (c *APIClient) Conditions(ctx context.Context, pos model.Position, at time.Time) (*model.WeatherConditions, error) {
	u, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("weather url: %w", err)
	}
	q := u.Query()
	q.Set("lat", strconv.FormatFloat(pos.Lat, 'f', 4, 64))
	q.Set("lon", strconv.FormatFloat(pos.Lon, 'f', 4, 64))
	if !at.IsZero() {
		q.Set("time", at.UTC().Format(time.RFC3339))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.cred != nil {
		if err := c.cred.SetAuthHeader(ctx, req); err != nil {
			return nil, fmt.Errorf("failed to set auth header: %w", err)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}

	var w model.WeatherConditions
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("weather response: %w", err)
	}
	return &w, nil
}

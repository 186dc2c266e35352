package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/shipmind-ai/shipmind/core/metrics"
	"github.com/shipmind-ai/shipmind/core/predictor"
	"github.com/shipmind-ai/shipmind/core/scheduler"
	"github.com/shipmind-ai/shipmind/infra/logger"
	"github.com/shipmind-ai/shipmind/infra/mqtt"
)

type Config struct {
	Logging       logger.Config             `json:"logging"`
	Predictor     predictor.ServiceConfig   `json:"predictor"`
	PredictionLog PredictionLogConfig       `json:"prediction_log"`
	Metrics       metrics.Config            `json:"metrics"`
	MQTT          mqtt.Config               `json:"mqtt"`
	Telemetry     TelemetryConfig           `json:"telemetry"`
	Weather       WeatherConfig             `json:"weather"`
	API           APIConfig                 `json:"api"`
	Training      TrainingConfig            `json:"training"`
	Schedule      scheduler.SchedulerConfig `json:"schedule"`
	Sentry        SentryConfig              `json:"sentry"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("SM_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "sm_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Logging.SetDefaults()
	cfg.PredictionLog.SetDefaults()
	cfg.API.SetDefaults()
	cfg.Schedule.SetDefaults()
	if err := cfg.PredictionLog.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Weather.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.API.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

package scheduler

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultHorizonDays   = 14
	defaultMaxJobsPerDay = 4
)

// SetDefaults fills unset parameters with the stock two-week plan shape.
func (c *SchedulerConfig) SetDefaults() {
	if c.HorizonDays == 0 {
		c.HorizonDays = defaultHorizonDays
	}
	if c.MaxJobsPerDay == 0 {
		c.MaxJobsPerDay = defaultMaxJobsPerDay
	}
}

// LoadConfig loads SchedulerConfig from a JSON or YAML file and applies
// defaults for unset fields.
func LoadConfig(path string) (SchedulerConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return SchedulerConfig{}, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var cfg SchedulerConfig
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	default:
		return SchedulerConfig{}, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err != nil {
		return SchedulerConfig{}, err
	}
	cfg.SetDefaults()
	return cfg, nil
}

// DecodeConfig reads from r to decode a SchedulerConfig and applies defaults
// for unset fields.
func DecodeConfig(r io.Reader, format string) (SchedulerConfig, error) {
	var cfg SchedulerConfig
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported format: %s", format)
	}
	cfg.SetDefaults()
	return cfg, nil
}

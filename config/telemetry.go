package config

// TelemetryConfig holds configuration for the fleet telemetry listener.
type TelemetryConfig struct {
	Enabled            bool   `json:"enabled"`
	TelemetryTopic     string `json:"telemetry_topic"`
	HealthRequestTopic string `json:"health_request_topic"`
	HealthReportTopic  string `json:"health_report_topic"`
	CacheSize          int    `json:"cache_size"`
	QoS                byte   `json:"qos"`
}

func (c TelemetryConfig) Topic() string {
	if c.TelemetryTopic == "" {
		return "fleet/+/telemetry"
	}
	return c.TelemetryTopic
}

func (c TelemetryConfig) RequestTopic() string {
	if c.HealthRequestTopic == "" {
		return "fleet/health/request"
	}
	return c.HealthRequestTopic
}

func (c TelemetryConfig) ReportTopic() string {
	if c.HealthReportTopic == "" {
		return "fleet/health/report"
	}
	return c.HealthReportTopic
}

func (c TelemetryConfig) Cache() int {
	if c.CacheSize <= 0 {
		return 512
	}
	return c.CacheSize
}

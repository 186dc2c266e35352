package telemetry

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shipmind-ai/shipmind/config"
	"github.com/shipmind-ai/shipmind/core/model"
	coremqtt "github.com/shipmind-ai/shipmind/core/mqtt"
	"github.com/shipmind-ai/shipmind/infra/logger"
)

// FleetAnalyzer is the subset of the prediction service used for health
// reports.
type FleetAnalyzer interface {
	AnalyzeFleetHealth(ctx context.Context, reqs []*model.MaintenanceRequest) (*model.FleetHealth, error)
}

// VesselSnapshot is the decoded payload a vessel publishes on the telemetry
// topic. Only the latest snapshot per vessel is retained.
type VesselSnapshot struct {
	VesselID   string                     `json:"vessel_id"`
	Components []model.MaintenanceRequest `json:"components"`
	ReceivedAt time.Time                  `json:"-"`
}

// HealthReport is published on the report topic in response to a health
// request.
type HealthReport struct {
	ReportID    string             `json:"report_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Vessels     int                `json:"vessels"`
	Health      *model.FleetHealth `json:"health,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// Manager caches the latest telemetry snapshot per vessel and answers fleet
// health requests over MQTT.
type Manager struct {
	cfg   config.TelemetryConfig
	cli   coremqtt.Client
	fleet FleetAnalyzer
	log   logger.Logger

	cache *lru.Cache[string, VesselSnapshot]

	received prometheus.Counter
	requests prometheus.Counter
	reports  prometheus.Counter
	vessels  prometheus.Gauge
}

// NewManager prepares telemetry collection on the provided MQTT client.
// Metrics are registered on the default Prometheus registerer.
func NewManager(cli coremqtt.Client, cfg config.TelemetryConfig, fleet FleetAnalyzer) (*Manager, error) {
	return NewManagerWithRegistry(cli, cfg, fleet, prometheus.DefaultRegisterer)
}

// NewManagerWithRegistry registers the manager's metrics on reg.
func NewManagerWithRegistry(cli coremqtt.Client, cfg config.TelemetryConfig, fleet FleetAnalyzer, reg prometheus.Registerer) (*Manager, error) {
	cache, err := lru.New[string, VesselSnapshot](cfg.Cache())
	if err != nil {
		return nil, err
	}
	m := &Manager{
		cfg:      cfg,
		cli:      cli,
		fleet:    fleet,
		log:      logger.New("telemetry"),
		cache:    cache,
		received: prometheus.NewCounter(prometheus.CounterOpts{Name: "telemetry_messages_total", Help: "Number of telemetry snapshots received"}),
		requests: prometheus.NewCounter(prometheus.CounterOpts{Name: "fleet_health_requests_total", Help: "Number of fleet health requests received"}),
		reports:  prometheus.NewCounter(prometheus.CounterOpts{Name: "fleet_health_reports_total", Help: "Number of fleet health reports published"}),
		vessels:  prometheus.NewGauge(prometheus.GaugeOpts{Name: "telemetry_cached_vessels", Help: "Number of vessels with a cached snapshot"}),
	}
	if reg != nil {
		reg.MustRegister(m.received, m.requests, m.reports, m.vessels)
	}
	return m, nil
}

// Start subscribes to the telemetry and health request topics and blocks
// until the context is canceled.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.cli.Subscribe(m.cfg.Topic(), m.cfg.QoS, m.onTelemetry); err != nil {
		return err
	}
	if err := m.cli.Subscribe(m.cfg.RequestTopic(), m.cfg.QoS, m.onHealthRequest); err != nil {
		return err
	}
	m.log.Infof("listening on %s, health requests on %s", m.cfg.Topic(), m.cfg.RequestTopic())
	<-ctx.Done()
	return m.cli.Unsubscribe(m.cfg.Topic(), m.cfg.RequestTopic())
}

// Snapshot returns the cached snapshot for a vessel.
func (m *Manager) Snapshot(vesselID string) (VesselSnapshot, bool) {
	return m.cache.Get(vesselID)
}

// Vessels lists the vessel IDs with a cached snapshot.
func (m *Manager) Vessels() []string {
	return m.cache.Keys()
}

func (m *Manager) onTelemetry(msg coremqtt.Message) {
	if err := m.process(msg.Payload, msg.Topic); err != nil {
		m.log.Errorf("telemetry decode: %v", err)
	}
}

func (m *Manager) onHealthRequest(coremqtt.Message) {
	m.requests.Inc()
	go m.publishReport()
}

func (m *Manager) process(payload []byte, topic string) error {
	var msg struct {
		VesselID   string                     `json:"vessel_id"`
		Components []model.MaintenanceRequest `json:"components"`
		TS         *int64                     `json:"ts"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		return err
	}
	if msg.VesselID == "" {
		msg.VesselID = vesselFromTopic(m.cfg.Topic(), topic)
	}
	if msg.VesselID == "" {
		return nil
	}
	received := time.Now()
	if msg.TS != nil {
		received = time.Unix(*msg.TS, 0)
	}
	m.cache.Add(msg.VesselID, VesselSnapshot{
		VesselID:   msg.VesselID,
		Components: msg.Components,
		ReceivedAt: received,
	})
	m.received.Inc()
	m.vessels.Set(float64(m.cache.Len()))
	return nil
}

// collect flattens the cached snapshots into per-component maintenance
// requests.
func (m *Manager) collect() []*model.MaintenanceRequest {
	var reqs []*model.MaintenanceRequest
	for _, id := range m.cache.Keys() {
		snap, ok := m.cache.Peek(id)
		if !ok {
			continue
		}
		for i := range snap.Components {
			req := snap.Components[i]
			if req.VesselID == "" {
				req.VesselID = snap.VesselID
			}
			reqs = append(reqs, &req)
		}
	}
	return reqs
}

func (m *Manager) publishReport() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rep := HealthReport{
		ReportID:    uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Vessels:     m.cache.Len(),
	}
	health, err := m.fleet.AnalyzeFleetHealth(ctx, m.collect())
	if err != nil {
		rep.Error = err.Error()
	} else {
		rep.Health = health
	}
	payload, err := json.Marshal(rep)
	if err != nil {
		m.log.Errorf("encode health report: %v", err)
		return
	}
	if err := m.cli.Publish(m.cfg.ReportTopic(), m.cfg.QoS, false, payload); err != nil {
		m.log.Errorf("publish health report: %v", err)
		return
	}
	m.reports.Inc()
	m.log.Infof("health report %s: %d vessels", rep.ReportID, rep.Vessels)
}

// vesselFromTopic resolves the vessel segment of a concrete topic using the
// position of the "+" wildcard in the subscription filter.
func vesselFromTopic(filter, topic string) string {
	fparts := strings.Split(filter, "/")
	tparts := strings.Split(topic, "/")
	for i, fp := range fparts {
		if fp == "+" && i < len(tparts) {
			return tparts[i]
		}
	}
	if len(tparts) >= 2 {
		return tparts[len(tparts)-2]
	}
	return ""
}

package e2e

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shipmind-ai/shipmind/config"
	"github.com/shipmind-ai/shipmind/core/model"
	coremqtt "github.com/shipmind-ai/shipmind/core/mqtt"
	"github.com/shipmind-ai/shipmind/core/predictor"
	"github.com/shipmind-ai/shipmind/infra/mqtt"
	"github.com/shipmind-ai/shipmind/infra/telemetry"
)

// junitReport is a minimal representation of a JUnit XML report. The E2E
// suite writes such a report so CI systems can display the results.
type junitReport struct {
	XMLName  xml.Name        `xml:"testsuite"`
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name    string  `xml:"name,attr"`
	Failure *string `xml:"failure,omitempty"`
	Time    float64 `xml:"time,attr"`
}

// writeJUnit writes the provided report to the given path.
func writeJUnit(path string, rep junitReport) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	return enc.Encode(rep)
}

// startInflux starts an InfluxDB 2.7 container and returns it along with the
// base URL.
func startInflux(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		WaitingFor:   wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start influx container: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "8086")
	return cont, fmt.Sprintf("http://%s:%s", host, port.Port())
}

// startMosquitto spins up a basic Mosquitto broker for tests.
func startMosquitto(ctx context.Context, t *testing.T) (tc.Container, string) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start mosquitto: %v", err)
	}
	host, _ := cont.Host(ctx)
	port, _ := cont.MappedPort(ctx, "1883")
	return cont, fmt.Sprintf("tcp://%s:%s", host, port.Port())
}

// Test_E2E_FleetHealthRoundTrip drives the full telemetry path against a real
// broker: a vessel publishes component state, the telemetry manager caches it,
// a health request produces a report and the resulting score lands in Influx.
func Test_E2E_FleetHealthRoundTrip(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	mqttCont, mqttURL := startMosquitto(ctx, t)
	if mqttCont != nil {
		defer mqttCont.Terminate(ctx) //nolint:errcheck
	}
	t.Logf("Mosquitto started at %s", mqttURL)

	svc, err := predictor.NewService(predictor.ServiceConfig{ArtifactDir: t.TempDir(), Seed: 42}, nil, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("prediction service: %v", err)
	}
	defer svc.Close()
	if err := svc.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	cli, err := mqtt.NewPahoClient(mqtt.Config{Broker: mqttURL, ClientID: "e2e-service"})
	if err != nil {
		t.Fatalf("service mqtt client: %v", err)
	}
	defer cli.Disconnect()
	mgr, err := telemetry.NewManagerWithRegistry(cli, config.TelemetryConfig{Enabled: true, CacheSize: 16}, svc, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("telemetry manager: %v", err)
	}
	mgrCtx, mgrCancel := context.WithCancel(ctx)
	defer mgrCancel()
	go func() { _ = mgr.Start(mgrCtx) }()

	vessel, err := mqtt.NewPahoClient(mqtt.Config{Broker: mqttURL, ClientID: "e2e-vessel"})
	if err != nil {
		t.Fatalf("vessel mqtt client: %v", err)
	}
	defer vessel.Disconnect()

	reports := make(chan telemetry.HealthReport, 1)
	err = vessel.Subscribe("fleet/health/report", 0, func(msg coremqtt.Message) {
		var rep telemetry.HealthReport
		if json.Unmarshal(msg.Payload, &rep) == nil {
			select {
			case reports <- rep:
			default:
			}
		}
	})
	if err != nil {
		t.Fatalf("subscribe reports: %v", err)
	}

	snap := map[string]any{
		"vessel_id": "mv0001",
		"components": []model.MaintenanceRequest{{
			VesselID:          "mv0001",
			ComponentID:       "main_engine",
			ComponentType:     model.ComponentEngine,
			AgeYears:          12,
			OperatingHours:    70000,
			HoursSinceService: 1800,
			AvgLoadFactor:     0.7,
			VibrationMMS:      3.1,
			TempC:             85,
			OilPressureBar:    4.2,
			OilQualityPct:     88,
			FailureCount:      1,
		}},
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("encode snapshot: %v", err)
	}

	// The manager subscribes asynchronously; republish until the snapshot
	// shows up in the cache.
	deadline := time.Now().Add(15 * time.Second)
	for {
		if err := vessel.Publish("fleet/mv0001/telemetry", 0, false, payload); err != nil {
			t.Fatalf("publish telemetry: %v", err)
		}
		if _, ok := mgr.Snapshot("mv0001"); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("telemetry snapshot never cached")
		}
		time.Sleep(100 * time.Millisecond)
	}

	if err := vessel.Publish("fleet/health/request", 0, false, []byte(`{}`)); err != nil {
		t.Fatalf("publish health request: %v", err)
	}
	var rep telemetry.HealthReport
	select {
	case rep = <-reports:
	case <-time.After(30 * time.Second):
		t.Fatal("no health report received")
	}
	if rep.Error != "" {
		t.Fatalf("health report error: %s", rep.Error)
	}
	if rep.Health == nil {
		t.Fatal("health report carries no health data")
	}
	if rep.Vessels != 1 {
		t.Fatalf("expected 1 vessel, got %d", rep.Vessels)
	}
	if rep.Health.EvaluatedComponents != 1 {
		t.Fatalf("expected 1 evaluated component, got %d", rep.Health.EvaluatedComponents)
	}
	t.Logf("fleet health %.2f, trend %s", rep.Health.OverallScore, rep.Health.Trend)

	influxCont, influxURL := startInflux(ctx, t)
	if influxCont != nil {
		defer influxCont.Terminate(ctx) //nolint:errcheck
	}
	t.Logf("InfluxDB started at %s", influxURL)

	bucket := "e2e_bucket"
	influx := NewInfluxClient(influxURL, "e2e_org", bucket, "e2e-token")
	defer influx.Close()
	if err := influx.SetupBucket(ctx); err != nil {
		t.Fatalf("setup bucket: %v", err)
	}
	if err := influx.WriteHealthScore(ctx, rep.Health.OverallScore, rep.Vessels, time.Now()); err != nil {
		t.Fatalf("write health score: %v", err)
	}
	res, err := influx.Query(ctx, fmt.Sprintf(`from(bucket:"%s") |> range(start:-1m)`, bucket))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	defer res.Close()
	count := 0
	for res.Next() {
		count++
	}
	if count == 0 {
		t.Fatal("no points returned from Influx")
	}

	dir := t.TempDir()
	out := junitReport{Name: "e2e", Tests: 1, Cases: []junitTestCase{{Name: "Test_E2E_FleetHealthRoundTrip", Time: 0}}}
	if err := writeJUnit(filepath.Join(dir, "e2e.xml"), out); err != nil {
		t.Logf("write junit: %v", err)
	}
}

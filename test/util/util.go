// Package util provides helper functions shared across integration tests.
//
// StartMosquitto launches a disposable Mosquitto broker in a Docker container
// for MQTT-based tests. It returns the broker URL and a cleanup function.
//
// WaitForMetric polls a Prometheus metrics endpoint until the desired metric
// appears in the output.
//
// HealthyComponent and WornComponent build maintenance request fixtures at
// the two ends of the degradation scale.
package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shipmind-ai/shipmind/core/model"
)

const (
	MosquittoReadyTimeout = 5 * time.Second
	MetricTimeout         = 5 * time.Second

	pollInterval = 50 * time.Millisecond
)

// HealthyComponent returns a recently serviced component in good condition.
func HealthyComponent(vessel, component string) *model.MaintenanceRequest {
	return &model.MaintenanceRequest{
		VesselID:          vessel,
		ComponentID:       component,
		ComponentType:     model.ComponentEngine,
		AgeYears:          3,
		OperatingHours:    12000,
		HoursSinceService: 300,
		AvgLoadFactor:     0.55,
		VibrationMMS:      1.8,
		TempC:             76,
		OilPressureBar:    4.6,
		OilQualityPct:     96,
		FailureCount:      0,
	}
}

// WornComponent returns an old, heavily used component overdue for service.
func WornComponent(vessel, component string) *model.MaintenanceRequest {
	return &model.MaintenanceRequest{
		VesselID:          vessel,
		ComponentID:       component,
		ComponentType:     model.ComponentEngine,
		AgeYears:          28,
		OperatingHours:    190000,
		HoursSinceService: 9500,
		AvgLoadFactor:     0.9,
		VibrationMMS:      14,
		TempC:             118,
		OilPressureBar:    2.1,
		OilQualityPct:     22,
		FailureCount:      9,
		VibrationHistory:  []float64{8, 9.5, 11, 12.5, 14},
	}
}

// WaitForMetric polls the metrics endpoint until substr shows up in the
// exposition output. Scrapes racing the first recording are expected, so
// transport errors and misses both retry until the context expires.
func WaitForMetric(ctx context.Context, metricsURL, substr string) error {
	for {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, metricsURL, nil)
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			body, rerr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if rerr != nil {
				return fmt.Errorf("read metrics body: %w", rerr)
			}
			if strings.Contains(string(body), substr) {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("metric %q not found: %w", substr, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

// mosquittoConf opens the broker to anonymous test clients and keeps it
// stateless between runs.
const mosquittoConf = `listener 1883
allow_anonymous true
persistence false
log_dest stdout
`

// StartMosquitto runs a throwaway Mosquitto broker in a container and
// returns its URL plus a cleanup function. The broker is connect-probed
// before returning, so callers can publish immediately.
func StartMosquitto(ctx context.Context) (string, func(), error) {
	conf := mosquittoConf

	dir, err := os.MkdirTemp("", "mosq")
	if err != nil {
		return "", nil, err
	}
	path := filepath.Join(dir, "mosquitto.conf")
	if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
		_ = os.RemoveAll(dir)
		return "", nil, err
	}

	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{
			{
				HostFilePath:      path,
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0644,
			},
		},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", nil, err
	}

	cleanup := func() {
		_ = cont.Terminate(context.Background())
		_ = os.RemoveAll(dir)
	}

	host, err := cont.Host(ctx)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	port, err := cont.MappedPort(ctx, "1883")
	if err != nil {
		cleanup()
		return "", nil, err
	}
	broker := fmt.Sprintf("tcp://%s:%s", host, port.Port())

	waitCtx, cancel := context.WithTimeout(ctx, MosquittoReadyTimeout)
	defer cancel()
	if err := waitForMQTTReady(waitCtx, broker); err != nil {
		cleanup()
		return "", nil, err
	}

	return broker, cleanup, nil
}

// waitForMQTTReady connects with a probe client until the broker accepts
// it. Mosquitto reports the listening port before the listener serves.
func waitForMQTTReady(ctx context.Context, broker string) error {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("ready-probe")
	for {
		cli := paho.NewClient(opts)
		token := cli.Connect()
		token.Wait()
		if token.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("broker %s not ready: %w", broker, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

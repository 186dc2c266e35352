package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremetrics "github.com/shipmind-ai/shipmind/core/metrics"
	"github.com/shipmind-ai/shipmind/infra/telemetry"
)

// HealthWatcher periodically requests a fleet health report and records the
// responses on the metrics sink.
type HealthWatcher struct {
	Broker       string
	RequestTopic string
	ReportTopic  string
	Every        time.Duration
	Sink         coremetrics.Sink
}

// Run subscribes to the report topic and fires a request every interval until
// ctx is done.
func (h *HealthWatcher) Run(ctx context.Context) error {
	cli, err := newMQTTClient(h.Broker, fmt.Sprintf("sim-health-%d", time.Now().UnixNano()))
	if err != nil {
		return err
	}
	if token := cli.Subscribe(h.ReportTopic, 0, h.onReport); token.Wait() && token.Error() != nil {
		cli.Disconnect(250)
		return token.Error()
	}

	ticker := time.NewTicker(h.Every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			cli.Disconnect(250)
			return nil
		case <-ticker.C:
			if token := cli.Publish(h.RequestTopic, 0, false, []byte(`{}`)); token.Wait() && token.Error() != nil {
				log.Printf("health request: %v", token.Error())
			}
		}
	}
}

func (h *HealthWatcher) onReport(_ paho.Client, msg paho.Message) {
	var rep telemetry.HealthReport
	if err := json.Unmarshal(msg.Payload(), &rep); err != nil {
		log.Printf("health report decode: %v", err)
		return
	}
	if rep.Error != "" {
		log.Printf("health report %s: %s", rep.ReportID, rep.Error)
		return
	}
	if rep.Health == nil {
		return
	}
	log.Printf("health report %s: score %.2f over %d vessels", rep.ReportID, rep.Health.OverallScore, rep.Vessels)
	if rec, ok := h.Sink.(coremetrics.FleetHealthRecorder); ok {
		err := rec.RecordFleetHealth(coremetrics.FleetHealthEvent{
			Score:      rep.Health.OverallScore,
			Trend:      string(rep.Health.Trend),
			Components: rep.Health.EvaluatedComponents,
			Failed:     rep.Health.FailedComponents,
			Critical:   len(rep.Health.CriticalIssues),
			Time:       rep.GeneratedAt,
		})
		if err != nil {
			log.Printf("record fleet health: %v", err)
		}
	}
}

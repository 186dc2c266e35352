package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/shipmind-ai/shipmind/core/model"
)

// SimulatedVessel publishes drifting component telemetry for one hull.
type SimulatedVessel struct {
	ID          string
	Components  []*ComponentWear
	Broker      string
	TopicPrefix string
	Interval    time.Duration
	TickHours   float64

	client paho.Client
	rng    *rand.Rand
}

type telemetrySnapshot struct {
	VesselID   string                     `json:"vessel_id"`
	Components []model.MaintenanceRequest `json:"components"`
	TS         int64                      `json:"ts"`
}

// Run connects to the broker and publishes a snapshot every interval until
// ctx is done. Each interval advances the fleet clock by TickHours of
// operating time.
func (v *SimulatedVessel) Run(ctx context.Context) error {
	cli, err := newMQTTClient(v.Broker, "sim-"+v.ID)
	if err != nil {
		return err
	}
	v.client = cli
	v.rng = rand.New(rand.NewSource(fleetRng.Int63()))

	ticker := time.NewTicker(v.Interval)
	defer ticker.Stop()
	v.publish()
	for {
		select {
		case <-ctx.Done():
			cli.Disconnect(250)
			return nil
		case <-ticker.C:
			v.publish()
		}
	}
}

func (v *SimulatedVessel) publish() {
	snap := telemetrySnapshot{
		VesselID:   v.ID,
		Components: make([]model.MaintenanceRequest, len(v.Components)),
		TS:         time.Now().Unix(),
	}
	for i, c := range v.Components {
		snap.Components[i] = c.Advance(v.rng, v.TickHours)
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		log.Printf("%s: encode snapshot: %v", v.ID, err)
		return
	}
	topic := fmt.Sprintf("%s/%s/telemetry", v.TopicPrefix, v.ID)
	if token := v.client.Publish(topic, 0, false, payload); token.Wait() && token.Error() != nil {
		log.Printf("%s: publish: %v", v.ID, token.Error())
		return
	}
	log.Printf("%s: published %d components", v.ID, len(snap.Components))
}

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shipmind-ai/shipmind/config"
	"github.com/shipmind-ai/shipmind/core/events"
	"github.com/shipmind-ai/shipmind/internal/eventbus"
)

func TestEventsStream(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	s := newTestServer(t, config.APIConfig{}, Deps{Predictor: &stubPredictor{}, Bus: bus})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/events"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = conn.Close() }()
	_ = resp.Body.Close()

	// the handler subscribes after the upgrade, so publish until the
	// stream delivers
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		tick := time.NewTicker(10 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case <-stop:
				return
			case <-tick.C:
				bus.Publish(events.PredictionEvent{Model: "route_optimizer", VesselID: "mv-aurora", Confidence: 0.9, Duration: 40 * time.Millisecond})
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env wsEvent
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Type != "prediction" {
		t.Fatalf("event type %q", env.Type)
	}
	data, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected data %T", env.Data)
	}
	if data["model"] != "route_optimizer" || data["vessel_id"] != "mv-aurora" {
		t.Fatalf("unexpected payload %+v", data)
	}
	if data["success"] != true {
		t.Fatalf("expected success, got %+v", data)
	}
}

func TestEventsDisabledWithoutBus(t *testing.T) {
	s := newTestServer(t, config.APIConfig{}, Deps{Predictor: &stubPredictor{}})
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rr.Code)
	}
}

func TestWireEventSkipsUnknown(t *testing.T) {
	if _, ok := wireEvent("not an event"); ok {
		t.Fatal("unknown event should be skipped")
	}
	env, ok := wireEvent(events.TrainingCycleEvent{Trigger: "auto", Models: 3, Duration: time.Second})
	if !ok || env.Type != "training_cycle" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	data := env.Data.(map[string]any)
	if data["trigger"] != "auto" || data["success"] != true {
		t.Fatalf("unexpected payload %+v", data)
	}
}

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shipmind-ai/shipmind/core/events"
	"github.com/shipmind-ai/shipmind/internal/eventbus"
)

const wsWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboards are served from a different origin than the API.
	CheckOrigin: func(*http.Request) bool { return true },
}

// wsEvent is the wire envelope for streamed bus events.
type wsEvent struct {
	Type string    `json:"type"`
	Time time.Time `json:"time"`
	Data any       `json:"data"`
}

// handleEvents upgrades GET /api/v1/events to a websocket and forwards bus
// events until the client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.deps.Bus == nil {
		s.writeError(w, http.StatusNotFound, errors.New("event stream disabled"))
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("websocket upgrade: %v", err)
		return
	}
	sub := s.deps.Bus.Subscribe()
	defer s.deps.Bus.Unsubscribe(sub)
	defer func() { _ = conn.Close() }()

	// Drain client frames so close and pong control messages are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case ev, ok := <-sub:
			if !ok {
				return
			}
			env, known := wireEvent(ev)
			if !known {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(env); err != nil {
				return
			}
		}
	}
}

// wireEvent flattens a typed bus event into its wire envelope. Unknown
// event types are skipped.
func wireEvent(ev eventbus.Event) (wsEvent, bool) {
	now := time.Now().UTC()
	switch e := ev.(type) {
	case events.PredictionEvent:
		data := map[string]any{
			"model":       e.Model,
			"confidence":  e.Confidence,
			"duration_ms": float64(e.Duration.Microseconds()) / 1000,
			"success":     e.Err == nil,
		}
		if e.VesselID != "" {
			data["vessel_id"] = e.VesselID
		}
		if e.Err != nil {
			data["error"] = e.Err.Error()
		}
		return wsEvent{Type: "prediction", Time: now, Data: data}, true
	case events.TrainingEvent:
		data := map[string]any{
			"model":           e.Model,
			"samples":         e.Samples,
			"loss":            e.Loss,
			"validation_loss": e.ValidationLoss,
			"duration_ms":     float64(e.Duration.Microseconds()) / 1000,
			"success":         e.Err == nil,
		}
		if e.Err != nil {
			data["error"] = e.Err.Error()
		}
		return wsEvent{Type: "training", Time: now, Data: data}, true
	case events.TrainingCycleEvent:
		data := map[string]any{
			"trigger":     e.Trigger,
			"models":      e.Models,
			"duration_ms": float64(e.Duration.Microseconds()) / 1000,
			"success":     e.Err == nil,
		}
		if e.Err != nil {
			data["error"] = e.Err.Error()
		}
		return wsEvent{Type: "training_cycle", Time: now, Data: data}, true
	case events.FleetHealthEvent:
		t := e.Time
		if t.IsZero() {
			t = now
		}
		return wsEvent{Type: "fleet_health", Time: t, Data: map[string]any{
			"score":      e.Score,
			"trend":      e.Trend,
			"components": e.Components,
			"failed":     e.Failed,
			"critical":   e.Critical,
		}}, true
	default:
		return wsEvent{}, false
	}
}

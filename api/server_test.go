package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shipmind-ai/shipmind/config"
	"github.com/shipmind-ai/shipmind/core/geo"
	"github.com/shipmind-ai/shipmind/core/model"
	"github.com/shipmind-ai/shipmind/core/predictor"
	"github.com/shipmind-ai/shipmind/core/predictor/logging"
	"github.com/shipmind-ai/shipmind/core/scheduler"
)

type stubPredictor struct {
	route     *model.RoutePlan
	routeErr  error
	lastRoute *model.RouteRequest

	fuel     *model.FuelEstimate
	fuelErr  error
	lastFuel *model.FuelRequest

	outlook  *model.MaintenanceOutlook
	maintErr error

	health    *model.FleetHealth
	healthErr error

	status *predictor.ServiceStatus

	trained  chan struct{}
	trainErr error

	exported string
	imported string
}

func (p *stubPredictor) PredictRoute(_ context.Context, req *model.RouteRequest) (*model.RoutePlan, error) {
	p.lastRoute = req
	return p.route, p.routeErr
}

func (p *stubPredictor) PredictFuel(_ context.Context, req *model.FuelRequest) (*model.FuelEstimate, error) {
	p.lastFuel = req
	return p.fuel, p.fuelErr
}

func (p *stubPredictor) PredictMaintenance(_ context.Context, req *model.MaintenanceRequest) (*model.MaintenanceOutlook, error) {
	if p.maintErr != nil {
		return nil, p.maintErr
	}
	out := *p.outlook
	out.VesselID = req.VesselID
	out.ComponentID = req.ComponentID
	return &out, nil
}

func (p *stubPredictor) AnalyzeFleetHealth(_ context.Context, _ []*model.MaintenanceRequest) (*model.FleetHealth, error) {
	return p.health, p.healthErr
}

func (p *stubPredictor) Status(_ context.Context) (*predictor.ServiceStatus, error) {
	return p.status, nil
}

func (p *stubPredictor) TrainAll(_ context.Context) error {
	if p.trained != nil {
		p.trained <- struct{}{}
	}
	return p.trainErr
}

func (p *stubPredictor) ExportArtifacts(dst string) error {
	p.exported = dst
	return nil
}

func (p *stubPredictor) ImportArtifacts(src string) error {
	p.imported = src
	return nil
}

type stubWeather struct {
	cond    *model.WeatherConditions
	err     error
	lastPos model.Position
	lastAt  time.Time
}

func (w *stubWeather) Conditions(_ context.Context, pos model.Position, at time.Time) (*model.WeatherConditions, error) {
	w.lastPos = pos
	w.lastAt = at
	return w.cond, w.err
}

func newTestServer(t *testing.T, cfg config.APIConfig, deps Deps) *Server {
	t.Helper()
	cfg.SetDefaults()
	if deps.Schedule.HorizonDays == 0 {
		deps.Schedule = scheduler.SchedulerConfig{HorizonDays: 14, MaxJobsPerDay: 4}
	}
	return NewServer(cfg, deps)
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(rr, req)
	return rr
}

func validRouteRequest() model.RouteRequest {
	return model.RouteRequest{
		Origin:         model.Position{Lat: 40.7128, Lon: -74.0060},
		Destination:    model.Position{Lat: 51.5074, Lon: -0.1278},
		PlannedSpeedKn: 14,
		CargoLoadPct:   60,
		EnginePowerKW:  25000,
		Weather:        &model.WeatherConditions{WindSpeedKn: 12, WindDirDeg: 220, WaveHeightM: 1.5, CurrentSpeedKn: 0.6, VisibilityNM: 10},
	}
}

func TestPredictRoute(t *testing.T) {
	stub := &stubPredictor{route: &model.RoutePlan{DistanceNM: 3020, EstimatedHours: 215, Confidence: 0.85}}
	s := newTestServer(t, config.APIConfig{}, Deps{Predictor: stub})

	rr := postJSON(t, s.Handler(), "/api/v1/predict/route", validRouteRequest())
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var plan model.RoutePlan
	if err := json.Unmarshal(rr.Body.Bytes(), &plan); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if plan.DistanceNM != 3020 {
		t.Fatalf("unexpected plan %+v", plan)
	}
	if stub.lastRoute == nil || stub.lastRoute.PlannedSpeedKn != 14 {
		t.Fatalf("request not forwarded: %+v", stub.lastRoute)
	}
}

func TestPredictRouteFillsWeather(t *testing.T) {
	stub := &stubPredictor{route: &model.RoutePlan{DistanceNM: 3020}}
	wx := &stubWeather{cond: &model.WeatherConditions{WindSpeedKn: 20, WindDirDeg: 180, WaveHeightM: 2, VisibilityNM: 8}}
	s := newTestServer(t, config.APIConfig{}, Deps{Predictor: stub, Weather: wx})

	req := validRouteRequest()
	req.Weather = nil
	rr := postJSON(t, s.Handler(), "/api/v1/predict/route", req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	if stub.lastRoute.Weather == nil || stub.lastRoute.Weather.WindSpeedKn != 20 {
		t.Fatalf("weather not filled: %+v", stub.lastRoute.Weather)
	}
	want := geo.Interpolate(req.Origin, req.Destination, 0.5)
	if wx.lastPos != want {
		t.Fatalf("lookup position %+v, want midpoint %+v", wx.lastPos, want)
	}
}

func TestPredictRouteWeatherLookupFailure(t *testing.T) {
	verr := &model.ValidationError{Field: "weather", Reason: "required"}
	stub := &stubPredictor{routeErr: verr}
	wx := &stubWeather{err: errors.New("provider down")}
	s := newTestServer(t, config.APIConfig{}, Deps{Predictor: stub, Weather: wx})

	req := validRouteRequest()
	req.Weather = nil
	rr := postJSON(t, s.Handler(), "/api/v1/predict/route", req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rr.Code)
	}
	if stub.lastRoute.Weather != nil {
		t.Fatal("weather should stay empty when the lookup fails")
	}
}

func TestPredictRouteStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &model.ValidationError{Field: "planned_speed_kn", Reason: "must be in (0,60]"}, http.StatusBadRequest},
		{"not_initialized", fmt.Errorf("route: %w", predictor.ErrNotInitialized), http.StatusServiceUnavailable},
		{"internal", errors.New("weights corrupted"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			stub := &stubPredictor{routeErr: c.err}
			s := newTestServer(t, config.APIConfig{}, Deps{Predictor: stub})
			rr := postJSON(t, s.Handler(), "/api/v1/predict/route", validRouteRequest())
			if rr.Code != c.want {
				t.Fatalf("status %d, want %d", rr.Code, c.want)
			}
			var body map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["error"] == "" {
				t.Fatal("error message missing")
			}
		})
	}
}

func TestPredictRouteMalformedBody(t *testing.T) {
	s := newTestServer(t, config.APIConfig{}, Deps{Predictor: &stubPredictor{}})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict/route", strings.NewReader("{not json"))
	s.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rr.Code)
	}
}

func TestPredictFuelFillsWeatherFromPosition(t *testing.T) {
	stub := &stubPredictor{fuel: &model.FuelEstimate{TotalL: 52000, CO2Kg: 138000}}
	wx := &stubWeather{cond: &model.WeatherConditions{WindSpeedKn: 15, WindDirDeg: 90, WaveHeightM: 1, VisibilityNM: 12}}
	s := newTestServer(t, config.APIConfig{}, Deps{Predictor: stub, Weather: wx})

	body := map[string]any{
		"distance_nm":       2800,
		"speed_kn":          13,
		"cargo_load_pct":    70,
		"engine_power_kw":   22000,
		"engine_efficiency": 0.82,
		"sea_state":         3,
		"position":          map[string]float64{"lat": 48.5, "lon": -5.2},
	}
	rr := postJSON(t, s.Handler(), "/api/v1/predict/fuel", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	if stub.lastFuel.Weather == nil || stub.lastFuel.Weather.WindSpeedKn != 15 {
		t.Fatalf("weather not filled: %+v", stub.lastFuel.Weather)
	}
	if wx.lastPos.Lat != 48.5 || wx.lastPos.Lon != -5.2 {
		t.Fatalf("lookup position %+v", wx.lastPos)
	}
	if !wx.lastAt.IsZero() {
		t.Fatalf("expected zero lookup time, got %v", wx.lastAt)
	}
}

func TestPredictMaintenance(t *testing.T) {
	stub := &stubPredictor{outlook: &model.MaintenanceOutlook{
		RiskScore:       0.72,
		MaintenanceType: model.MaintenanceCorrective,
		RecommendedDate: time.Now().Add(10 * 24 * time.Hour),
		Confidence:      0.8,
	}}
	s := newTestServer(t, config.APIConfig{}, Deps{Predictor: stub})

	rr := postJSON(t, s.Handler(), "/api/v1/predict/maintenance", model.MaintenanceRequest{
		VesselID:    "mv-aurora",
		ComponentID: "main-engine",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var out model.MaintenanceOutlook
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.RiskScore != 0.72 || out.VesselID != "mv-aurora" {
		t.Fatalf("unexpected outlook %+v", out)
	}
}

func TestFleetHealth(t *testing.T) {
	stub := &stubPredictor{health: &model.FleetHealth{
		OverallScore:        0.83,
		Trend:               model.TrendStable,
		EvaluatedComponents: 2,
	}}
	s := newTestServer(t, config.APIConfig{}, Deps{Predictor: stub})

	rr := postJSON(t, s.Handler(), "/api/v1/fleet/health", fleetRequest{Components: []*model.MaintenanceRequest{
		{VesselID: "mv-aurora", ComponentID: "main-engine"},
		{VesselID: "mv-aurora", ComponentID: "aux-gen"},
	}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var health model.FleetHealth
	if err := json.Unmarshal(rr.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.OverallScore != 0.83 || health.Trend != model.TrendStable {
		t.Fatalf("unexpected health %+v", health)
	}
}

func TestFleetSchedule(t *testing.T) {
	due := time.Now().UTC().Add(5 * 24 * time.Hour)
	stub := &stubPredictor{outlook: &model.MaintenanceOutlook{
		RiskScore:       0.65,
		MaintenanceType: model.MaintenanceCorrective,
		RecommendedDate: due,
	}}
	s := newTestServer(t, config.APIConfig{}, Deps{Predictor: stub})

	rr := postJSON(t, s.Handler(), "/api/v1/fleet/schedule", scheduleRequest{
		Components: []*model.MaintenanceRequest{{VesselID: "mv-aurora", ComponentID: "main-engine"}},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var orders []scheduler.WorkOrder
	if err := json.Unmarshal(rr.Body.Bytes(), &orders); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	if orders[0].VesselID != "mv-aurora" || orders[0].Overdue {
		t.Fatalf("unexpected order %+v", orders[0])
	}
	wantDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	if !orders[0].Date.Equal(wantDay) {
		t.Fatalf("order on %v, want %v", orders[0].Date, wantDay)
	}
}

func TestFleetScheduleCSV(t *testing.T) {
	stub := &stubPredictor{outlook: &model.MaintenanceOutlook{
		RiskScore:       0.65,
		MaintenanceType: model.MaintenancePreventive,
		RecommendedDate: time.Now().UTC().Add(3 * 24 * time.Hour),
	}}
	s := newTestServer(t, config.APIConfig{}, Deps{Predictor: stub})

	b, _ := json.Marshal(scheduleRequest{Components: []*model.MaintenanceRequest{{VesselID: "mv-aurora", ComponentID: "hull-1"}}})
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/fleet/schedule?format=csv", bytes.NewReader(b))
	s.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("content type %q", ct)
	}
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "date,vessel_id") {
		t.Fatalf("unexpected csv:\n%s", rr.Body.String())
	}
}

func TestFleetScheduleNoComponents(t *testing.T) {
	s := newTestServer(t, config.APIConfig{}, Deps{Predictor: &stubPredictor{}})
	rr := postJSON(t, s.Handler(), "/api/v1/fleet/schedule", scheduleRequest{})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rr.Code)
	}
}

func TestTrainAccepted(t *testing.T) {
	stub := &stubPredictor{trained: make(chan struct{}, 1)}
	s := newTestServer(t, config.APIConfig{}, Deps{Predictor: stub})

	rr := postJSON(t, s.Handler(), "/api/v1/train", map[string]any{})
	if rr.Code != http.StatusAccepted {
		t.Fatalf("status %d, want 202", rr.Code)
	}
	select {
	case <-stub.trained:
	case <-time.After(time.Second):
		t.Fatal("training not triggered")
	}
}

func TestStatus(t *testing.T) {
	stub := &stubPredictor{status: &predictor.ServiceStatus{
		Ready:  true,
		Health: "good",
		Models: map[string]predictor.ModelStatus{
			predictor.ModelRoute: {State: predictor.StateReady, Ready: true},
		},
	}}
	s := newTestServer(t, config.APIConfig{}, Deps{Predictor: stub})

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var st predictor.ServiceStatus
	if err := json.Unmarshal(rr.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !st.Ready || st.Health != "good" {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, config.APIConfig{}, Deps{Predictor: &stubPredictor{}})
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
}

func TestPredictionsQuery(t *testing.T) {
	store, err := logging.NewJSONLStore(filepath.Join(t.TempDir(), "predictions.log"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()
	ctx := context.Background()
	now := time.Now().UTC()
	if err := store.Append(ctx, logging.LogRecord{Timestamp: now, Model: "route_optimizer", Success: true, Confidence: 0.9}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Append(ctx, logging.LogRecord{Timestamp: now, Model: "fuel_predictor", Success: false, Error: "weights"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	s := newTestServer(t, config.APIConfig{}, Deps{Predictor: &stubPredictor{}, Logs: store})
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/predictions?failed=true", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var recs []logging.LogRecord
	if err := json.Unmarshal(rr.Body.Bytes(), &recs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(recs) != 1 || recs[0].Model != "fuel_predictor" {
		t.Fatalf("unexpected records %+v", recs)
	}
}

func TestPredictionsRequiresToken(t *testing.T) {
	s := newTestServer(t, config.APIConfig{Token: "s3cret"}, Deps{Predictor: &stubPredictor{}})

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/predictions", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rr.Code)
	}

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/predictions", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	s.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404 with no log store", rr.Code)
	}
}

func TestModelExportImport(t *testing.T) {
	stub := &stubPredictor{}
	s := newTestServer(t, config.APIConfig{Token: "s3cret"}, Deps{Predictor: stub})

	send := func(path, target string) *httptest.ResponseRecorder {
		b, _ := json.Marshal(modelPathRequest{Path: target})
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
		req.Header.Set("Authorization", "Bearer s3cret")
		s.Handler().ServeHTTP(rr, req)
		return rr
	}

	if rr := send("/api/v1/models/export", "/tmp/artifacts"); rr.Code != http.StatusOK {
		t.Fatalf("export status %d: %s", rr.Code, rr.Body.String())
	}
	if stub.exported != "/tmp/artifacts" {
		t.Fatalf("export path %q", stub.exported)
	}
	if rr := send("/api/v1/models/import", "/tmp/artifacts"); rr.Code != http.StatusOK {
		t.Fatalf("import status %d: %s", rr.Code, rr.Body.String())
	}
	if stub.imported != "/tmp/artifacts" {
		t.Fatalf("import path %q", stub.imported)
	}
	if rr := send("/api/v1/models/export", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("empty path status %d, want 400", rr.Code)
	}
}

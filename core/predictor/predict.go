package predictor

import (
	"context"
	"time"

	"github.com/shipmind-ai/shipmind/core/model"
)

// PredictRoute plans a voyage between two positions. The outcome is recorded
// in the rolling history, the metrics sink, the audit log and on the bus
// whether it succeeds or not.
func (s *Service) PredictRoute(ctx context.Context, req *model.RouteRequest) (*model.RoutePlan, error) {
	start := time.Now()
	plan, err := s.predictRoute(req)
	conf := 0.0
	var resp any
	if plan != nil {
		conf = plan.Confidence
		resp = plan
	}
	s.record(ctx, ModelRoute, "", start, conf, req, resp, err)
	return plan, err
}

func (s *Service) predictRoute(req *model.RouteRequest) (*model.RoutePlan, error) {
	if req == nil {
		return nil, &model.ValidationError{Field: "request", Reason: "required"}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureReady(ModelRoute); err != nil {
		return nil, err
	}
	out, err := s.models[ModelRoute].Predict(routeCodec{}.Encode(req))
	if err != nil {
		return nil, err
	}
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return buildRoutePlan(req, out, s.rng), nil
}

// PredictFuel estimates consumption for a voyage leg.
func (s *Service) PredictFuel(ctx context.Context, req *model.FuelRequest) (*model.FuelEstimate, error) {
	start := time.Now()
	est, err := s.predictFuel(req)
	conf := 0.0
	var resp any
	if est != nil {
		conf = est.Confidence
		resp = est
	}
	s.record(ctx, ModelFuel, "", start, conf, req, resp, err)
	return est, err
}

func (s *Service) predictFuel(req *model.FuelRequest) (*model.FuelEstimate, error) {
	if req == nil {
		return nil, &model.ValidationError{Field: "request", Reason: "required"}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureReady(ModelFuel); err != nil {
		return nil, err
	}
	out, err := s.models[ModelFuel].Predict(fuelCodec{}.Encode(req))
	if err != nil {
		return nil, err
	}
	return buildFuelEstimate(req, out), nil
}

// PredictMaintenance assesses one component's failure risk and maintenance
// needs.
func (s *Service) PredictMaintenance(ctx context.Context, req *model.MaintenanceRequest) (*model.MaintenanceOutlook, error) {
	start := time.Now()
	outlook, err := s.predictMaintenance(req)
	conf, vesselID := 0.0, ""
	if req != nil {
		vesselID = req.VesselID
	}
	var resp any
	if outlook != nil {
		conf = outlook.Confidence
		resp = outlook
	}
	s.record(ctx, ModelMaintenance, vesselID, start, conf, req, resp, err)
	return outlook, err
}

func (s *Service) predictMaintenance(req *model.MaintenanceRequest) (*model.MaintenanceOutlook, error) {
	if req == nil {
		return nil, &model.ValidationError{Field: "request", Reason: "required"}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureReady(ModelMaintenance); err != nil {
		return nil, err
	}
	vec, warnings := maintenanceCodec{}.Encode(req)
	for _, w := range warnings {
		s.log.Warnf("maintenance request %s/%s: %s", req.VesselID, req.ComponentID, w)
	}
	out, err := s.models[ModelMaintenance].Predict(vec)
	if err != nil {
		return nil, err
	}
	return buildMaintenanceOutlook(req, out), nil
}

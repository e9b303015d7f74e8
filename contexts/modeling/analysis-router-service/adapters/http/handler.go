package httpadapter

import (
	"context"
	"log/slog"

	"helix/contexts/modeling/analysis-router-service/application"
	"helix/contexts/modeling/analysis-router-service/domain/entities"
	httptransport "helix/contexts/modeling/analysis-router-service/transport/http"
)

type Handler struct {
	Plans  application.Service
	Logger *slog.Logger
}

func (h Handler) CreatePlanHandler(
	ctx context.Context,
	userID string,
	req httptransport.CreatePlanRequest,
) (httptransport.PlanResponse, error) {
	requested := make([]entities.Method, 0, len(req.Requested))
	for _, method := range req.Requested {
		requested = append(requested, entities.Method(method))
	}
	plan, err := h.Plans.CreatePlan(ctx, application.CreatePlanInput{
		PatientID: req.PatientID,
		Requested: requested,
		Profile: entities.DataProfile{
			SampleCount:    req.Profile.SampleCount,
			HasTimeSeries:  req.Profile.HasTimeSeries,
			NoiseLevel:     req.Profile.NoiseLevel,
			PriorKnowledge: req.Profile.PriorKnowledge,
		},
		CreatedBy: userID,
	})
	if err != nil {
		return httptransport.PlanResponse{}, err
	}
	return toPlanResponse(plan), nil
}

func (h Handler) GetPlanHandler(ctx context.Context, planID string) (httptransport.PlanResponse, error) {
	plan, err := h.Plans.GetPlan(ctx, planID)
	if err != nil {
		return httptransport.PlanResponse{}, err
	}
	return toPlanResponse(plan), nil
}

func (h Handler) ListPlansByPatientHandler(
	ctx context.Context,
	patientID string,
) (httptransport.PlanListResponse, error) {
	plans, err := h.Plans.ListPlansByPatient(ctx, patientID)
	if err != nil {
		return httptransport.PlanListResponse{}, err
	}
	items := make([]httptransport.PlanResponse, 0, len(plans))
	for _, plan := range plans {
		items = append(items, toPlanResponse(plan))
	}
	return httptransport.PlanListResponse{Items: items}, nil
}

func (h Handler) DispatchPlanHandler(ctx context.Context, planID string) (httptransport.PlanResponse, error) {
	plan, err := h.Plans.DispatchPlan(ctx, planID)
	if err != nil {
		return httptransport.PlanResponse{}, err
	}
	return toPlanResponse(plan), nil
}

func toPlanResponse(plan entities.AnalysisPlan) httptransport.PlanResponse {
	requested := make([]string, 0, len(plan.Requested))
	for _, method := range plan.Requested {
		requested = append(requested, string(method))
	}
	routes := make([]httptransport.MethodRouteResponse, 0, len(plan.Routes))
	for _, route := range plan.Routes {
		routes = append(routes, httptransport.MethodRouteResponse{
			Method: string(route.Method),
			Weight: route.Weight,
			Reason: route.Reason,
		})
	}
	return httptransport.PlanResponse{
		PlanID:    plan.PlanID,
		PatientID: plan.PatientID,
		Requested: requested,
		Profile: httptransport.DataProfileRequest{
			SampleCount:    plan.Profile.SampleCount,
			HasTimeSeries:  plan.Profile.HasTimeSeries,
			NoiseLevel:     plan.Profile.NoiseLevel,
			PriorKnowledge: plan.Profile.PriorKnowledge,
		},
		Routes:     routes,
		Status:     string(plan.Status),
		CreatedBy:  plan.CreatedBy,
		CreatedAt:  plan.CreatedAt,
		DispatchAt: plan.DispatchAt,
	}
}

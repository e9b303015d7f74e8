package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"helix/contexts/modeling/analysis-router-service/domain/entities"
	domainerrors "helix/contexts/modeling/analysis-router-service/domain/errors"
	"helix/contexts/modeling/analysis-router-service/ports"
	"helix/internal/shared/events"
)

const planDispatchedEventType = "analysis.plan.dispatched"

type CreatePlanInput struct {
	PatientID string
	Requested []entities.Method
	Profile   entities.DataProfile
	CreatedBy string
}

// Service drafts analysis plans from dataset profiles and dispatches them to
// downstream modeling services through the outbox.
type Service struct {
	Plans  ports.PlanRepository
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// CreatePlan routes the profile through the deterministic rule set and stores
// the resulting plan in drafted status.
func (s Service) CreatePlan(ctx context.Context, input CreatePlanInput) (entities.AnalysisPlan, error) {
	patientID := strings.TrimSpace(input.PatientID)
	if patientID == "" {
		return entities.AnalysisPlan{}, domainerrors.ErrInvalidPlanInput
	}
	if input.Profile.SampleCount < 0 {
		return entities.AnalysisPlan{}, domainerrors.ErrInvalidPlanInput
	}
	if input.Profile.NoiseLevel < 0 || input.Profile.NoiseLevel > 1 {
		return entities.AnalysisPlan{}, domainerrors.ErrInvalidPlanInput
	}

	routes, err := routeMethods(input.Profile, input.Requested)
	if err != nil {
		return entities.AnalysisPlan{}, err
	}

	planID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.AnalysisPlan{}, fmt.Errorf("generate plan id: %w", err)
	}

	now := s.Clock.Now().UTC()
	plan := entities.AnalysisPlan{
		PlanID:    planID,
		PatientID: patientID,
		Requested: append([]entities.Method(nil), input.Requested...),
		Profile:   input.Profile,
		Routes:    routes,
		Status:    entities.PlanStatusDrafted,
		CreatedBy: input.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Plans.SavePlan(ctx, plan); err != nil {
		return entities.AnalysisPlan{}, fmt.Errorf("save analysis plan: %w", err)
	}

	s.resolveLogger().Info("analysis plan drafted",
		"event", "analysis_plan_drafted",
		"module", "analysis-router",
		"layer", "application",
		"plan_id", plan.PlanID,
		"patient_id", plan.PatientID,
		"route_count", len(plan.Routes),
	)
	return plan, nil
}

func (s Service) GetPlan(ctx context.Context, planID string) (entities.AnalysisPlan, error) {
	return s.Plans.GetPlan(ctx, strings.TrimSpace(planID))
}

func (s Service) ListPlansByPatient(ctx context.Context, patientID string) ([]entities.AnalysisPlan, error) {
	return s.Plans.ListPlansByPatient(ctx, strings.TrimSpace(patientID))
}

// DispatchPlan moves a drafted plan to dispatched exactly once and records an
// outbox event carrying the routed methods.
func (s Service) DispatchPlan(ctx context.Context, planID string) (entities.AnalysisPlan, error) {
	plan, err := s.Plans.GetPlan(ctx, strings.TrimSpace(planID))
	if err != nil {
		return entities.AnalysisPlan{}, err
	}
	if plan.Status == entities.PlanStatusDispatched {
		return entities.AnalysisPlan{}, domainerrors.ErrPlanAlreadyDispatched
	}

	now := s.Clock.Now().UTC()
	plan.Status = entities.PlanStatusDispatched
	plan.DispatchAt = &now
	plan.UpdatedAt = now
	if err := s.Plans.SavePlan(ctx, plan); err != nil {
		return entities.AnalysisPlan{}, fmt.Errorf("save analysis plan: %w", err)
	}

	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.AnalysisPlan{}, fmt.Errorf("generate event id: %w", err)
	}
	routes := make([]map[string]any, 0, len(plan.Routes))
	for _, route := range plan.Routes {
		routes = append(routes, map[string]any{
			"method": string(route.Method),
			"weight": route.Weight,
			"reason": route.Reason,
		})
	}
	envelope := events.Envelope{
		EventID:        eventID,
		EventType:      planDispatchedEventType,
		SourceService:  "analysis-router-service",
		PartitionKey:   plan.PatientID,
		OccurredAt:     now,
		PayloadVersion: 1,
		Payload: map[string]any{
			"plan_id":    plan.PlanID,
			"patient_id": plan.PatientID,
			"routes":     routes,
		},
	}
	if err := s.Outbox.AppendOutbox(ctx, envelope); err != nil {
		return entities.AnalysisPlan{}, fmt.Errorf("append outbox event: %w", err)
	}

	s.resolveLogger().Info("analysis plan dispatched",
		"event", "analysis_plan_dispatched",
		"module", "analysis-router",
		"layer", "application",
		"plan_id", plan.PlanID,
		"patient_id", plan.PatientID,
	)
	return plan, nil
}

func (s Service) resolveLogger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"helix/contexts/modeling/ensemble-service/domain/entities"
	domainerrors "helix/contexts/modeling/ensemble-service/domain/errors"
	"helix/contexts/modeling/ensemble-service/ports"
	"helix/internal/shared/events"
)

const predictionCreatedEventType = "ensemble.prediction.created"

type CombineInput struct {
	PatientID string
	PlanID    string
	Strategy  entities.Strategy
	Inputs    []entities.MethodOutput
	CreatedBy string
}

// Service combines per-method risk scores into ensemble predictions and keeps
// the prediction history per patient.
type Service struct {
	Predictions ports.PredictionRepository
	Routes      ports.RouteDirectory
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

// CombinePredictions validates the method outputs, applies the requested
// strategy, persists the prediction, and records an outbox event.
func (s Service) CombinePredictions(ctx context.Context, input CombineInput) (entities.EnsemblePrediction, error) {
	patientID := strings.TrimSpace(input.PatientID)
	if patientID == "" {
		return entities.EnsemblePrediction{}, domainerrors.ErrInvalidPredictionRef
	}
	if !input.Strategy.Valid() {
		return entities.EnsemblePrediction{}, domainerrors.ErrUnknownStrategy
	}
	if len(input.Inputs) < 2 {
		return entities.EnsemblePrediction{}, domainerrors.ErrInsufficientInputs
	}
	for _, output := range input.Inputs {
		if output.RiskScore < 0 || output.RiskScore > 1 {
			return entities.EnsemblePrediction{}, domainerrors.ErrInvalidMethodOutput
		}
		if output.Confidence < 0 || output.Confidence > 1 {
			return entities.EnsemblePrediction{}, domainerrors.ErrInvalidMethodOutput
		}
	}

	routeWeights := map[string]float64{}
	planID := strings.TrimSpace(input.PlanID)
	if input.Strategy == entities.StrategyWeightedAverage && planID != "" && s.Routes != nil {
		resolved, err := s.Routes.RoutesForPlan(ctx, planID)
		if err != nil {
			// A caller asking for plan weights gets an error, not a silent
			// fall back to uniform weighting.
			return entities.EnsemblePrediction{}, fmt.Errorf("%w: %s", domainerrors.ErrPlanRoutesUnavailable, err)
		}
		if resolved != nil {
			routeWeights = resolved
		}
	}

	score, err := combineScores(input.Strategy, input.Inputs, routeWeights)
	if err != nil {
		return entities.EnsemblePrediction{}, err
	}

	predictionID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.EnsemblePrediction{}, fmt.Errorf("generate prediction id: %w", err)
	}

	now := s.Clock.Now().UTC()
	prediction := entities.EnsemblePrediction{
		PredictionID: predictionID,
		PatientID:    patientID,
		PlanID:       planID,
		Strategy:     input.Strategy,
		Inputs:       append([]entities.MethodOutput(nil), input.Inputs...),
		RiskScore:    score,
		RiskLevel:    riskLevelOf(score),
		Agreement:    agreementOf(input.Inputs),
		CreatedBy:    input.CreatedBy,
		CreatedAt:    now,
	}
	if err := s.Predictions.SavePrediction(ctx, prediction); err != nil {
		return entities.EnsemblePrediction{}, fmt.Errorf("save ensemble prediction: %w", err)
	}

	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.EnsemblePrediction{}, fmt.Errorf("generate event id: %w", err)
	}
	envelope := events.Envelope{
		EventID:        eventID,
		EventType:      predictionCreatedEventType,
		SourceService:  "ensemble-service",
		PartitionKey:   patientID,
		OccurredAt:     now,
		PayloadVersion: 1,
		Payload: map[string]any{
			"prediction_id": prediction.PredictionID,
			"patient_id":    prediction.PatientID,
			"plan_id":       prediction.PlanID,
			"strategy":      string(prediction.Strategy),
			"risk_score":    prediction.RiskScore,
			"risk_level":    string(prediction.RiskLevel),
			"agreement":     prediction.Agreement,
		},
	}
	if err := s.Outbox.AppendOutbox(ctx, envelope); err != nil {
		return entities.EnsemblePrediction{}, fmt.Errorf("append outbox event: %w", err)
	}

	s.resolveLogger().Info("ensemble prediction created",
		"event", "ensemble_prediction_created",
		"module", "ensemble",
		"layer", "application",
		"prediction_id", prediction.PredictionID,
		"patient_id", prediction.PatientID,
		"strategy", string(prediction.Strategy),
		"risk_level", string(prediction.RiskLevel),
	)
	return prediction, nil
}

func (s Service) GetPrediction(ctx context.Context, predictionID string) (entities.EnsemblePrediction, error) {
	return s.Predictions.GetPrediction(ctx, strings.TrimSpace(predictionID))
}

func (s Service) ListPredictionsByPatient(ctx context.Context, patientID string) ([]entities.EnsemblePrediction, error) {
	return s.Predictions.ListPredictionsByPatient(ctx, strings.TrimSpace(patientID))
}

func (s Service) resolveLogger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

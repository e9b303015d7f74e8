package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"helix/contexts/modeling/explainability-service/domain/entities"
	domainerrors "helix/contexts/modeling/explainability-service/domain/errors"
	"helix/contexts/modeling/explainability-service/ports"
)

type ExplainInput struct {
	PredictionID string
	Method       entities.Method
	CreatedBy    string
}

// Service runs the requested attribution method against a prediction and
// keeps both a queryable record and a JSON artifact of the result.
type Service struct {
	Explanations ports.ExplanationRepository
	Attributors  map[entities.Method]ports.Attributor
	Blobs        ports.BlobStore
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

type explanationArtifact struct {
	ExplanationID string                       `json:"explanation_id"`
	PredictionID  string                       `json:"prediction_id"`
	Method        string                       `json:"method"`
	Summary       string                       `json:"summary"`
	Attributions  []explanationArtifactFeature `json:"attributions"`
	CreatedAt     time.Time                    `json:"created_at"`
}

type explanationArtifactFeature struct {
	Feature      string  `json:"feature"`
	Contribution float64 `json:"contribution"`
	Direction    string  `json:"direction"`
}

func (s Service) ExplainPrediction(ctx context.Context, input ExplainInput) (entities.Explanation, error) {
	predictionID := strings.TrimSpace(input.PredictionID)
	if predictionID == "" {
		return entities.Explanation{}, domainerrors.ErrInvalidExplanationRef
	}
	if !input.Method.Valid() {
		return entities.Explanation{}, domainerrors.ErrUnsupportedMethod
	}
	attributor, ok := s.Attributors[input.Method]
	if !ok {
		return entities.Explanation{}, domainerrors.ErrUnsupportedMethod
	}

	attributions, summary, err := attributor.Attribute(ctx, predictionID)
	if err != nil {
		return entities.Explanation{}, fmt.Errorf("run %s attribution: %w", input.Method, err)
	}
	if len(attributions) == 0 {
		return entities.Explanation{}, domainerrors.ErrAttributionUnavailable
	}

	explanationID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Explanation{}, fmt.Errorf("generate explanation id: %w", err)
	}

	now := s.Clock.Now().UTC()
	artifactKey := fmt.Sprintf("explanations/%s.json", explanationID)
	artifact := explanationArtifact{
		ExplanationID: explanationID,
		PredictionID:  predictionID,
		Method:        string(input.Method),
		Summary:       summary,
		CreatedAt:     now,
	}
	for _, attribution := range attributions {
		artifact.Attributions = append(artifact.Attributions, explanationArtifactFeature{
			Feature:      attribution.Feature,
			Contribution: attribution.Contribution,
			Direction:    string(attribution.Direction),
		})
	}
	payload, err := json.Marshal(artifact)
	if err != nil {
		return entities.Explanation{}, fmt.Errorf("encode explanation artifact: %w", err)
	}
	if err := s.Blobs.Put(ctx, artifactKey, payload); err != nil {
		return entities.Explanation{}, fmt.Errorf("store explanation artifact: %w", err)
	}

	explanation := entities.Explanation{
		ExplanationID: explanationID,
		PredictionID:  predictionID,
		Method:        input.Method,
		Attributions:  append([]entities.FeatureAttribution(nil), attributions...),
		Summary:       summary,
		ArtifactKey:   artifactKey,
		CreatedBy:     input.CreatedBy,
		CreatedAt:     now,
	}
	if err := s.Explanations.SaveExplanation(ctx, explanation); err != nil {
		return entities.Explanation{}, fmt.Errorf("save explanation: %w", err)
	}

	s.resolveLogger().Info("prediction explained",
		"event", "prediction_explained",
		"module", "explainability",
		"layer", "application",
		"explanation_id", explanation.ExplanationID,
		"prediction_id", explanation.PredictionID,
		"method", string(explanation.Method),
		"feature_count", len(explanation.Attributions),
	)
	return explanation, nil
}

func (s Service) GetExplanation(ctx context.Context, explanationID string) (entities.Explanation, error) {
	return s.Explanations.GetExplanation(ctx, strings.TrimSpace(explanationID))
}

func (s Service) ListExplanationsByPrediction(ctx context.Context, predictionID string) ([]entities.Explanation, error) {
	return s.Explanations.ListExplanationsByPrediction(ctx, strings.TrimSpace(predictionID))
}

func (s Service) resolveLogger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

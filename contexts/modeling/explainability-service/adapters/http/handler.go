package httpadapter

import (
	"context"
	"log/slog"

	"helix/contexts/modeling/explainability-service/application"
	"helix/contexts/modeling/explainability-service/domain/entities"
	httptransport "helix/contexts/modeling/explainability-service/transport/http"
)

type Handler struct {
	Explanations application.Service
	Logger       *slog.Logger
}

func (h Handler) ExplainHandler(
	ctx context.Context,
	userID string,
	req httptransport.ExplainRequest,
) (httptransport.ExplanationResponse, error) {
	explanation, err := h.Explanations.ExplainPrediction(ctx, application.ExplainInput{
		PredictionID: req.PredictionID,
		Method:       entities.Method(req.Method),
		CreatedBy:    userID,
	})
	if err != nil {
		return httptransport.ExplanationResponse{}, err
	}
	return toExplanationResponse(explanation), nil
}

func (h Handler) GetExplanationHandler(ctx context.Context, explanationID string) (httptransport.ExplanationResponse, error) {
	explanation, err := h.Explanations.GetExplanation(ctx, explanationID)
	if err != nil {
		return httptransport.ExplanationResponse{}, err
	}
	return toExplanationResponse(explanation), nil
}

func (h Handler) ListExplanationsByPredictionHandler(
	ctx context.Context,
	predictionID string,
) (httptransport.ExplanationListResponse, error) {
	explanations, err := h.Explanations.ListExplanationsByPrediction(ctx, predictionID)
	if err != nil {
		return httptransport.ExplanationListResponse{}, err
	}
	items := make([]httptransport.ExplanationResponse, 0, len(explanations))
	for _, explanation := range explanations {
		items = append(items, toExplanationResponse(explanation))
	}
	return httptransport.ExplanationListResponse{Items: items}, nil
}

func toExplanationResponse(explanation entities.Explanation) httptransport.ExplanationResponse {
	attributions := make([]httptransport.AttributionResponse, 0, len(explanation.Attributions))
	for _, attribution := range explanation.Attributions {
		attributions = append(attributions, httptransport.AttributionResponse{
			Feature:      attribution.Feature,
			Contribution: attribution.Contribution,
			Direction:    string(attribution.Direction),
		})
	}
	return httptransport.ExplanationResponse{
		ExplanationID: explanation.ExplanationID,
		PredictionID:  explanation.PredictionID,
		Method:        string(explanation.Method),
		Attributions:  attributions,
		Summary:       explanation.Summary,
		ArtifactKey:   explanation.ArtifactKey,
		CreatedBy:     explanation.CreatedBy,
		CreatedAt:     explanation.CreatedAt,
	}
}

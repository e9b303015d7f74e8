package httpadapter

import (
	"context"
	"log/slog"

	"helix/contexts/modeling/ensemble-service/application"
	"helix/contexts/modeling/ensemble-service/domain/entities"
	httptransport "helix/contexts/modeling/ensemble-service/transport/http"
)

type Handler struct {
	Predictions application.Service
	Logger      *slog.Logger
}

func (h Handler) CombineHandler(
	ctx context.Context,
	userID string,
	req httptransport.CombineRequest,
) (httptransport.PredictionResponse, error) {
	inputs := make([]entities.MethodOutput, 0, len(req.Inputs))
	for _, input := range req.Inputs {
		inputs = append(inputs, entities.MethodOutput{
			Method:     input.Method,
			RiskScore:  input.RiskScore,
			Confidence: input.Confidence,
		})
	}
	prediction, err := h.Predictions.CombinePredictions(ctx, application.CombineInput{
		PatientID: req.PatientID,
		PlanID:    req.PlanID,
		Strategy:  entities.Strategy(req.Strategy),
		Inputs:    inputs,
		CreatedBy: userID,
	})
	if err != nil {
		return httptransport.PredictionResponse{}, err
	}
	return toPredictionResponse(prediction), nil
}

func (h Handler) GetPredictionHandler(ctx context.Context, predictionID string) (httptransport.PredictionResponse, error) {
	prediction, err := h.Predictions.GetPrediction(ctx, predictionID)
	if err != nil {
		return httptransport.PredictionResponse{}, err
	}
	return toPredictionResponse(prediction), nil
}

func (h Handler) ListPredictionsByPatientHandler(
	ctx context.Context,
	patientID string,
) (httptransport.PredictionListResponse, error) {
	predictions, err := h.Predictions.ListPredictionsByPatient(ctx, patientID)
	if err != nil {
		return httptransport.PredictionListResponse{}, err
	}
	items := make([]httptransport.PredictionResponse, 0, len(predictions))
	for _, prediction := range predictions {
		items = append(items, toPredictionResponse(prediction))
	}
	return httptransport.PredictionListResponse{Items: items}, nil
}

func toPredictionResponse(prediction entities.EnsemblePrediction) httptransport.PredictionResponse {
	inputs := make([]httptransport.MethodOutputRequest, 0, len(prediction.Inputs))
	for _, input := range prediction.Inputs {
		inputs = append(inputs, httptransport.MethodOutputRequest{
			Method:     input.Method,
			RiskScore:  input.RiskScore,
			Confidence: input.Confidence,
		})
	}
	return httptransport.PredictionResponse{
		PredictionID: prediction.PredictionID,
		PatientID:    prediction.PatientID,
		PlanID:       prediction.PlanID,
		Strategy:     string(prediction.Strategy),
		Inputs:       inputs,
		RiskScore:    prediction.RiskScore,
		RiskLevel:    string(prediction.RiskLevel),
		Agreement:    prediction.Agreement,
		CreatedBy:    prediction.CreatedBy,
		CreatedAt:    prediction.CreatedAt,
	}
}

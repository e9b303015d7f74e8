package httpadapter

import (
	"context"
	"log/slog"

	"helix/contexts/modeling/grn-service/application"
	"helix/contexts/modeling/grn-service/domain/entities"
	httptransport "helix/contexts/modeling/grn-service/transport/http"
)

type Handler struct {
	Models application.Service
	Logger *slog.Logger
}

func (h Handler) CreateModelHandler(
	ctx context.Context,
	userID string,
	req httptransport.CreateModelRequest,
) (httptransport.ModelResponse, error) {
	edges := make([]entities.Interaction, 0, len(req.Edges))
	for _, edge := range req.Edges {
		edges = append(edges, entities.Interaction{
			Regulator: edge.Regulator,
			Target:    edge.Target,
			Sign:      entities.InteractionSign(edge.Sign),
		})
	}
	model, err := h.Models.CreateModel(ctx, application.CreateModelInput{
		Name:      req.Name,
		Organism:  req.Organism,
		Genes:     req.Genes,
		Edges:     edges,
		CreatedBy: userID,
	})
	if err != nil {
		return httptransport.ModelResponse{}, err
	}
	return toModelResponse(model), nil
}

func (h Handler) GetModelHandler(ctx context.Context, modelID string) (httptransport.ModelResponse, error) {
	model, err := h.Models.GetModel(ctx, modelID)
	if err != nil {
		return httptransport.ModelResponse{}, err
	}
	return toModelResponse(model), nil
}

func (h Handler) ListModelsHandler(ctx context.Context, limit int) (httptransport.ModelListResponse, error) {
	models, err := h.Models.ListModels(ctx, limit)
	if err != nil {
		return httptransport.ModelListResponse{}, err
	}
	items := make([]httptransport.ModelResponse, 0, len(models))
	for _, model := range models {
		items = append(items, toModelResponse(model))
	}
	return httptransport.ModelListResponse{Items: items}, nil
}

func (h Handler) VerifyModelHandler(
	ctx context.Context,
	modelID string,
	req httptransport.VerifyModelRequest,
) (httptransport.VerificationReportResponse, error) {
	report, err := h.Models.VerifyModel(ctx, modelID, req.Properties)
	if err != nil {
		return httptransport.VerificationReportResponse{}, err
	}
	return toReportResponse(report), nil
}

func (h Handler) DeleteModelHandler(ctx context.Context, modelID string) error {
	return h.Models.DeleteModel(ctx, modelID)
}

func toModelResponse(model entities.GRNModel) httptransport.ModelResponse {
	edges := make([]httptransport.EdgeRequest, 0, len(model.Edges))
	for _, edge := range model.Edges {
		edges = append(edges, httptransport.EdgeRequest{
			Regulator: edge.Regulator,
			Target:    edge.Target,
			Sign:      string(edge.Sign),
		})
	}
	return httptransport.ModelResponse{
		ModelID:   model.ModelID,
		Name:      model.Name,
		Organism:  model.Organism,
		Genes:     model.Genes,
		Edges:     edges,
		Status:    string(model.Status),
		CreatedBy: model.CreatedBy,
		CreatedAt: model.CreatedAt,
	}
}

func toReportResponse(report entities.VerificationReport) httptransport.VerificationReportResponse {
	properties := make([]httptransport.PropertyResultResponse, 0, len(report.Properties))
	for _, result := range report.Properties {
		properties = append(properties, httptransport.PropertyResultResponse{
			Property: result.Property,
			Holds:    result.Holds,
			Witness:  result.Witness,
		})
	}
	return httptransport.VerificationReportResponse{
		ModelID:    report.ModelID,
		Properties: properties,
		AllHold:    report.AllHold,
		CheckedAt:  report.CheckedAt,
	}
}

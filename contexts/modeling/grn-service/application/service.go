package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"helix/contexts/modeling/grn-service/domain/entities"
	domainerrors "helix/contexts/modeling/grn-service/domain/errors"
	"helix/contexts/modeling/grn-service/ports"
)

type CreateModelInput struct {
	Name      string
	Organism  string
	Genes     []string
	Edges     []entities.Interaction
	CreatedBy string
}

type Service struct {
	Models  ports.ModelRepository
	Checker ports.QualitativeChecker
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

// CreateModel validates topology and stores the model. A model that passes
// topology validation starts in status validated; structural problems reject
// the request instead of producing a draft.
func (s Service) CreateModel(ctx context.Context, input CreateModelInput) (entities.GRNModel, error) {
	logger := s.resolveLogger()
	name := strings.TrimSpace(input.Name)
	if name == "" || len(input.Genes) == 0 {
		return entities.GRNModel{}, domainerrors.ErrInvalidModelInput
	}

	genes := make([]string, 0, len(input.Genes))
	geneSet := make(map[string]struct{}, len(input.Genes))
	for _, gene := range input.Genes {
		symbol := strings.ToUpper(strings.TrimSpace(gene))
		if symbol == "" {
			return entities.GRNModel{}, domainerrors.ErrInvalidModelInput
		}
		if _, seen := geneSet[symbol]; seen {
			continue
		}
		geneSet[symbol] = struct{}{}
		genes = append(genes, symbol)
	}

	edges := make([]entities.Interaction, 0, len(input.Edges))
	edgeSet := make(map[string]struct{}, len(input.Edges))
	for _, edge := range input.Edges {
		regulator := strings.ToUpper(strings.TrimSpace(edge.Regulator))
		target := strings.ToUpper(strings.TrimSpace(edge.Target))
		if !edge.Sign.Valid() {
			return entities.GRNModel{}, domainerrors.ErrInvalidModelInput
		}
		if _, ok := geneSet[regulator]; !ok {
			return entities.GRNModel{}, domainerrors.ErrUnknownGene
		}
		if _, ok := geneSet[target]; !ok {
			return entities.GRNModel{}, domainerrors.ErrUnknownGene
		}
		pair := regulator + "->" + target
		if _, dup := edgeSet[pair]; dup {
			return entities.GRNModel{}, domainerrors.ErrDuplicateEdge
		}
		edgeSet[pair] = struct{}{}
		edges = append(edges, entities.Interaction{
			Regulator: regulator,
			Target:    target,
			Sign:      edge.Sign,
		})
	}

	modelID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.GRNModel{}, err
	}
	now := s.now()
	model := entities.GRNModel{
		ModelID:   modelID,
		Name:      name,
		Organism:  strings.TrimSpace(input.Organism),
		Genes:     genes,
		Edges:     edges,
		Status:    entities.ModelStatusValidated,
		CreatedBy: strings.TrimSpace(input.CreatedBy),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(edges) == 0 {
		// A gene list without interactions is storable but stays draft until
		// edges arrive.
		model.Status = entities.ModelStatusDraft
	}
	if err := s.Models.SaveModel(ctx, model); err != nil {
		return entities.GRNModel{}, err
	}

	logger.Info("grn model created",
		"event", "grn_model_created",
		"module", "modeling/grn-service",
		"layer", "application",
		"model_id", model.ModelID,
		"gene_count", len(model.Genes),
		"edge_count", len(model.Edges),
		"status", string(model.Status),
	)
	return model, nil
}

func (s Service) GetModel(ctx context.Context, modelID string) (entities.GRNModel, error) {
	return s.Models.GetModel(ctx, strings.TrimSpace(modelID))
}

func (s Service) ListModels(ctx context.Context, limit int) ([]entities.GRNModel, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.Models.ListModels(ctx, limit)
}

// VerifyModel checks CTL properties through the qualitative checker and, when
// every property holds, promotes the model to verified.
func (s Service) VerifyModel(ctx context.Context, modelID string, properties []string) (entities.VerificationReport, error) {
	logger := s.resolveLogger()
	model, err := s.Models.GetModel(ctx, strings.TrimSpace(modelID))
	if err != nil {
		return entities.VerificationReport{}, err
	}
	if model.Status == entities.ModelStatusDraft {
		return entities.VerificationReport{}, domainerrors.ErrModelNotValidated
	}

	cleaned := make([]string, 0, len(properties))
	for _, property := range properties {
		if trimmed := strings.TrimSpace(property); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return entities.VerificationReport{}, domainerrors.ErrNoPropertiesToCheck
	}

	results, err := s.Checker.CheckProperties(ctx, model, cleaned)
	if err != nil {
		return entities.VerificationReport{}, err
	}

	allHold := true
	for _, result := range results {
		if !result.Holds {
			allHold = false
			break
		}
	}
	report := entities.VerificationReport{
		ModelID:    model.ModelID,
		Properties: results,
		AllHold:    allHold,
		CheckedAt:  s.now(),
	}
	if err := s.Models.SaveReport(ctx, report); err != nil {
		return entities.VerificationReport{}, err
	}
	if allHold && model.Status != entities.ModelStatusVerified {
		model.Status = entities.ModelStatusVerified
		model.UpdatedAt = s.now()
		if err := s.Models.SaveModel(ctx, model); err != nil {
			return entities.VerificationReport{}, err
		}
	}

	logger.Info("grn model verified",
		"event", "grn_model_verification_completed",
		"module", "modeling/grn-service",
		"layer", "application",
		"model_id", model.ModelID,
		"property_count", len(cleaned),
		"all_hold", allHold,
	)
	return report, nil
}

func (s Service) GetReport(ctx context.Context, modelID string) (entities.VerificationReport, bool, error) {
	return s.Models.GetReport(ctx, strings.TrimSpace(modelID))
}

func (s Service) DeleteModel(ctx context.Context, modelID string) error {
	model, err := s.Models.GetModel(ctx, strings.TrimSpace(modelID))
	if err != nil {
		return err
	}
	if model.Status != entities.ModelStatusDraft {
		return domainerrors.ErrModelNotDeletable
	}
	return s.Models.DeleteModel(ctx, model.ModelID)
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (s Service) resolveLogger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"helix/contexts/modeling/grn-service/domain/entities"
	domainerrors "helix/contexts/modeling/grn-service/domain/errors"
)

type Store struct {
	mu      sync.RWMutex
	models  map[string]entities.GRNModel
	reports map[string]entities.VerificationReport
}

func NewStore() *Store {
	return &Store{
		models:  make(map[string]entities.GRNModel),
		reports: make(map[string]entities.VerificationReport),
	}
}

func (s *Store) SaveModel(_ context.Context, model entities.GRNModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[model.ModelID] = model
	return nil
}

func (s *Store) GetModel(_ context.Context, modelID string) (entities.GRNModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	model, ok := s.models[strings.TrimSpace(modelID)]
	if !ok {
		return entities.GRNModel{}, domainerrors.ErrModelNotFound
	}
	return model, nil
}

func (s *Store) ListModels(_ context.Context, limit int) ([]entities.GRNModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.GRNModel, 0, len(s.models))
	for _, model := range s.models {
		items = append(items, model)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) DeleteModel(_ context.Context, modelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.models[strings.TrimSpace(modelID)]; !ok {
		return domainerrors.ErrModelNotFound
	}
	delete(s.models, strings.TrimSpace(modelID))
	delete(s.reports, strings.TrimSpace(modelID))
	return nil
}

func (s *Store) SaveReport(_ context.Context, report entities.VerificationReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.ModelID] = report
	return nil
}

func (s *Store) GetReport(_ context.Context, modelID string) (entities.VerificationReport, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[strings.TrimSpace(modelID)]
	return report, ok, nil
}

// StubChecker stands in for the external CTL model checker in local wiring
// and tests: a property holds unless it names a gene absent from the model.
type StubChecker struct{}

func (StubChecker) CheckProperties(
	_ context.Context,
	model entities.GRNModel,
	properties []string,
) ([]entities.PropertyResult, error) {
	known := make(map[string]struct{}, len(model.Genes))
	for _, gene := range model.Genes {
		known[gene] = struct{}{}
	}

	results := make([]entities.PropertyResult, 0, len(properties))
	for _, property := range properties {
		holds := true
		for _, token := range strings.Fields(strings.ToUpper(property)) {
			trimmed := strings.Trim(token, "()!&|")
			if trimmed == "" || isOperator(trimmed) {
				continue
			}
			if _, ok := known[trimmed]; !ok {
				holds = false
				break
			}
		}
		results = append(results, entities.PropertyResult{
			Property: property,
			Holds:    holds,
		})
	}
	return results, nil
}

func isOperator(token string) bool {
	switch token {
	case "AG", "AF", "AX", "AU", "EG", "EF", "EX", "EU", "AND", "OR", "NOT", "IMPLIES", "TRUE", "FALSE":
		return true
	default:
		return false
	}
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

package memory

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"helix/contexts/modeling/explainability-service/domain/entities"
	domainerrors "helix/contexts/modeling/explainability-service/domain/errors"
)

type Store struct {
	mu           sync.RWMutex
	explanations map[string]entities.Explanation
}

func NewStore() *Store {
	return &Store{explanations: make(map[string]entities.Explanation)}
}

func (s *Store) SaveExplanation(_ context.Context, explanation entities.Explanation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.explanations[explanation.ExplanationID] = explanation
	return nil
}

func (s *Store) GetExplanation(_ context.Context, explanationID string) (entities.Explanation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	explanation, ok := s.explanations[strings.TrimSpace(explanationID)]
	if !ok {
		return entities.Explanation{}, domainerrors.ErrExplanationNotFound
	}
	return explanation, nil
}

func (s *Store) ListExplanationsByPrediction(_ context.Context, predictionID string) ([]entities.Explanation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Explanation, 0)
	for _, explanation := range s.explanations {
		if explanation.PredictionID == predictionID {
			items = append(items, explanation)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

// stubFeatures is the fixed feature vocabulary the stub attributors draw
// from. Real attributors read the model's actual feature space.
var stubFeatures = []string{"TP53", "MDM2", "CDKN1A", "MYC", "EGFR", "BRCA1"}

// StubAttributor produces deterministic attributions derived from the
// prediction ID so local wiring and tests behave repeatably.
type StubAttributor struct {
	Method entities.Method
}

func (a StubAttributor) Attribute(
	_ context.Context,
	predictionID string,
) ([]entities.FeatureAttribution, string, error) {
	seed := fnv.New64a()
	seed.Write([]byte(string(a.Method)))
	seed.Write([]byte(predictionID))
	state := seed.Sum64()

	attributions := make([]entities.FeatureAttribution, 0, len(stubFeatures))
	for _, feature := range stubFeatures {
		state = state*6364136223846793005 + 1442695040888963407
		contribution := float64(state%1000) / 1000
		direction := entities.DirectionIncreases
		if state%2 == 0 {
			direction = entities.DirectionDecreases
		}
		attributions = append(attributions, entities.FeatureAttribution{
			Feature:      feature,
			Contribution: contribution,
			Direction:    direction,
		})
	}
	sort.Slice(attributions, func(i, j int) bool {
		return attributions[i].Contribution > attributions[j].Contribution
	})
	summary := fmt.Sprintf("%s attribution dominated by %s", a.Method, attributions[0].Feature)
	return attributions, summary, nil
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

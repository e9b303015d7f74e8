package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"helix/contexts/modeling/explainability-service/adapters/memory"
	"helix/contexts/modeling/explainability-service/domain/entities"
	domainerrors "helix/contexts/modeling/explainability-service/domain/errors"
	"helix/contexts/modeling/explainability-service/ports"
	"helix/internal/platform/objectstore"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newTestService() (Service, *objectstore.Store) {
	blobs := objectstore.NewInMemory(nil)
	service := Service{
		Explanations: memory.NewStore(),
		Attributors: map[entities.Method]ports.Attributor{
			entities.MethodSHAP: memory.StubAttributor{Method: entities.MethodSHAP},
			entities.MethodLIME: memory.StubAttributor{Method: entities.MethodLIME},
		},
		Blobs: blobs,
		Clock: fixedClock{now: time.Date(2026, time.May, 1, 10, 0, 0, 0, time.UTC)},
		IDGen: memory.UUIDGenerator{},
	}
	return service, blobs
}

func TestExplainPredictionPersistsAttributionsAndArtifact(t *testing.T) {
	service, blobs := newTestService()

	explanation, err := service.ExplainPrediction(context.Background(), ExplainInput{
		PredictionID: "prediction-1",
		Method:       entities.MethodSHAP,
		CreatedBy:    "user-1",
	})
	if err != nil {
		t.Fatalf("explain failed: %v", err)
	}
	if len(explanation.Attributions) == 0 {
		t.Fatalf("expected attributions")
	}
	if explanation.Summary == "" {
		t.Fatalf("expected summary")
	}

	payload, err := blobs.Get(context.Background(), explanation.ArtifactKey)
	if err != nil {
		t.Fatalf("artifact fetch failed: %v", err)
	}
	var artifact map[string]any
	if err := json.Unmarshal(payload, &artifact); err != nil {
		t.Fatalf("artifact decode failed: %v", err)
	}
	if artifact["prediction_id"] != "prediction-1" {
		t.Fatalf("artifact missing prediction reference: %v", artifact["prediction_id"])
	}
}

func TestExplainPredictionIsDeterministicPerMethod(t *testing.T) {
	service, _ := newTestService()

	first, err := service.ExplainPrediction(context.Background(), ExplainInput{
		PredictionID: "prediction-1",
		Method:       entities.MethodLIME,
		CreatedBy:    "user-1",
	})
	if err != nil {
		t.Fatalf("explain failed: %v", err)
	}
	second, err := service.ExplainPrediction(context.Background(), ExplainInput{
		PredictionID: "prediction-1",
		Method:       entities.MethodLIME,
		CreatedBy:    "user-1",
	})
	if err != nil {
		t.Fatalf("explain failed: %v", err)
	}
	if len(first.Attributions) != len(second.Attributions) {
		t.Fatalf("attribution count diverged")
	}
	for i := range first.Attributions {
		if first.Attributions[i] != second.Attributions[i] {
			t.Fatalf("attribution %d diverged", i)
		}
	}
}

func TestExplainPredictionRejectsUnsupportedMethod(t *testing.T) {
	service, _ := newTestService()

	_, err := service.ExplainPrediction(context.Background(), ExplainInput{
		PredictionID: "prediction-1",
		Method:       "gradcam",
		CreatedBy:    "user-1",
	})
	if !errors.Is(err, domainerrors.ErrUnsupportedMethod) {
		t.Fatalf("expected ErrUnsupportedMethod, got %v", err)
	}
}

func TestExplainPredictionRequiresPredictionID(t *testing.T) {
	service, _ := newTestService()

	_, err := service.ExplainPrediction(context.Background(), ExplainInput{
		Method:    entities.MethodSHAP,
		CreatedBy: "user-1",
	})
	if !errors.Is(err, domainerrors.ErrInvalidExplanationRef) {
		t.Fatalf("expected ErrInvalidExplanationRef, got %v", err)
	}
}

func TestListExplanationsByPrediction(t *testing.T) {
	service, _ := newTestService()

	for _, method := range []entities.Method{entities.MethodSHAP, entities.MethodLIME} {
		if _, err := service.ExplainPrediction(context.Background(), ExplainInput{
			PredictionID: "prediction-1",
			Method:       method,
			CreatedBy:    "user-1",
		}); err != nil {
			t.Fatalf("explain failed: %v", err)
		}
	}
	explanations, err := service.ListExplanationsByPrediction(context.Background(), "prediction-1")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(explanations) != 2 {
		t.Fatalf("expected 2 explanations, got %d", len(explanations))
	}
}

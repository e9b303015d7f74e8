package application

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"helix/contexts/modeling/ensemble-service/adapters/memory"
	"helix/contexts/modeling/ensemble-service/domain/entities"
	domainerrors "helix/contexts/modeling/ensemble-service/domain/errors"
	"helix/contexts/modeling/ensemble-service/ports"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newTestService(routes ports.RouteDirectory) (Service, *memory.Store) {
	store := memory.NewStore()
	service := Service{
		Predictions: store,
		Routes:      routes,
		Outbox:      store,
		Clock:       fixedClock{now: time.Date(2026, time.May, 1, 10, 0, 0, 0, time.UTC)},
		IDGen:       memory.UUIDGenerator{},
	}
	return service, store
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCombineWeightedAverageUsesRouteWeights(t *testing.T) {
	service, _ := newTestService(memory.StaticRoutes{"gnn": 0.75, "qualitative": 0.25})

	prediction, err := service.CombinePredictions(context.Background(), CombineInput{
		PatientID: "patient-1",
		PlanID:    "plan-1",
		Strategy:  entities.StrategyWeightedAverage,
		Inputs: []entities.MethodOutput{
			{Method: "gnn", RiskScore: 0.8, Confidence: 0.9},
			{Method: "qualitative", RiskScore: 0.4, Confidence: 0.6},
		},
		CreatedBy: "user-1",
	})
	if err != nil {
		t.Fatalf("combine failed: %v", err)
	}
	want := (0.8*0.75 + 0.4*0.25) / 1.0
	if !almostEqual(prediction.RiskScore, want) {
		t.Fatalf("expected risk score %.4f, got %.4f", want, prediction.RiskScore)
	}
	if prediction.RiskLevel != entities.RiskLevelHigh {
		t.Fatalf("expected high risk level, got %s", prediction.RiskLevel)
	}
}

func TestCombineWeightedAverageDefaultsMissingRouteToOne(t *testing.T) {
	service, _ := newTestService(memory.StaticRoutes{"gnn": 0.5})

	prediction, err := service.CombinePredictions(context.Background(), CombineInput{
		PatientID: "patient-1",
		PlanID:    "plan-1",
		Strategy:  entities.StrategyWeightedAverage,
		Inputs: []entities.MethodOutput{
			{Method: "gnn", RiskScore: 0.2, Confidence: 0.9},
			{Method: "statistical", RiskScore: 0.6, Confidence: 0.5},
		},
		CreatedBy: "user-1",
	})
	if err != nil {
		t.Fatalf("combine failed: %v", err)
	}
	want := (0.2*0.5 + 0.6*1.0) / 1.5
	if !almostEqual(prediction.RiskScore, want) {
		t.Fatalf("expected risk score %.4f, got %.4f", want, prediction.RiskScore)
	}
}

type failingRoutes struct{}

func (failingRoutes) RoutesForPlan(_ context.Context, planID string) (map[string]float64, error) {
	return nil, errors.New("plan " + planID + " not found")
}

func TestCombineWeightedAverageFailsWhenPlanRoutesUnresolvable(t *testing.T) {
	service, _ := newTestService(failingRoutes{})

	_, err := service.CombinePredictions(context.Background(), CombineInput{
		PatientID: "patient-1",
		PlanID:    "plan-missing",
		Strategy:  entities.StrategyWeightedAverage,
		Inputs: []entities.MethodOutput{
			{Method: "gnn", RiskScore: 0.2, Confidence: 0.9},
			{Method: "statistical", RiskScore: 0.6, Confidence: 0.5},
		},
		CreatedBy: "user-1",
	})
	if !errors.Is(err, domainerrors.ErrPlanRoutesUnavailable) {
		t.Fatalf("expected ErrPlanRoutesUnavailable, got %v", err)
	}
}

func TestCombineMajorityVote(t *testing.T) {
	service, _ := newTestService(nil)

	prediction, err := service.CombinePredictions(context.Background(), CombineInput{
		PatientID: "patient-1",
		Strategy:  entities.StrategyMajorityVote,
		Inputs: []entities.MethodOutput{
			{Method: "gnn", RiskScore: 0.9, Confidence: 0.9},
			{Method: "qualitative", RiskScore: 0.7, Confidence: 0.8},
			{Method: "statistical", RiskScore: 0.2, Confidence: 0.6},
		},
		CreatedBy: "user-1",
	})
	if err != nil {
		t.Fatalf("combine failed: %v", err)
	}
	if !almostEqual(prediction.RiskScore, 2.0/3.0) {
		t.Fatalf("expected two thirds, got %.4f", prediction.RiskScore)
	}
	if prediction.RiskLevel != entities.RiskLevelHigh {
		t.Fatalf("expected high risk level, got %s", prediction.RiskLevel)
	}
}

func TestCombineConfidenceWeighted(t *testing.T) {
	service, _ := newTestService(nil)

	prediction, err := service.CombinePredictions(context.Background(), CombineInput{
		PatientID: "patient-1",
		Strategy:  entities.StrategyConfidenceWeighted,
		Inputs: []entities.MethodOutput{
			{Method: "gnn", RiskScore: 0.8, Confidence: 0.9},
			{Method: "qualitative", RiskScore: 0.2, Confidence: 0.1},
		},
		CreatedBy: "user-1",
	})
	if err != nil {
		t.Fatalf("combine failed: %v", err)
	}
	want := (0.8*0.9 + 0.2*0.1) / 1.0
	if !almostEqual(prediction.RiskScore, want) {
		t.Fatalf("expected risk score %.4f, got %.4f", want, prediction.RiskScore)
	}
}

func TestCombineConfidenceWeightedRejectsZeroConfidence(t *testing.T) {
	service, _ := newTestService(nil)

	_, err := service.CombinePredictions(context.Background(), CombineInput{
		PatientID: "patient-1",
		Strategy:  entities.StrategyConfidenceWeighted,
		Inputs: []entities.MethodOutput{
			{Method: "gnn", RiskScore: 0.8, Confidence: 0},
			{Method: "qualitative", RiskScore: 0.2, Confidence: 0},
		},
		CreatedBy: "user-1",
	})
	if !errors.Is(err, domainerrors.ErrNoUsableInput) {
		t.Fatalf("expected ErrNoUsableInput, got %v", err)
	}
}

func TestCombineRequiresTwoInputs(t *testing.T) {
	service, _ := newTestService(nil)

	_, err := service.CombinePredictions(context.Background(), CombineInput{
		PatientID: "patient-1",
		Strategy:  entities.StrategyMajorityVote,
		Inputs: []entities.MethodOutput{
			{Method: "gnn", RiskScore: 0.8, Confidence: 0.9},
		},
		CreatedBy: "user-1",
	})
	if !errors.Is(err, domainerrors.ErrInsufficientInputs) {
		t.Fatalf("expected ErrInsufficientInputs, got %v", err)
	}
}

func TestCombineRejectsOutOfRangeScore(t *testing.T) {
	service, _ := newTestService(nil)

	_, err := service.CombinePredictions(context.Background(), CombineInput{
		PatientID: "patient-1",
		Strategy:  entities.StrategyMajorityVote,
		Inputs: []entities.MethodOutput{
			{Method: "gnn", RiskScore: 1.2, Confidence: 0.9},
			{Method: "qualitative", RiskScore: 0.4, Confidence: 0.5},
		},
		CreatedBy: "user-1",
	})
	if !errors.Is(err, domainerrors.ErrInvalidMethodOutput) {
		t.Fatalf("expected ErrInvalidMethodOutput, got %v", err)
	}
}

func TestAgreementReflectsSpread(t *testing.T) {
	service, _ := newTestService(nil)

	identical, err := service.CombinePredictions(context.Background(), CombineInput{
		PatientID: "patient-1",
		Strategy:  entities.StrategyMajorityVote,
		Inputs: []entities.MethodOutput{
			{Method: "gnn", RiskScore: 0.6, Confidence: 0.9},
			{Method: "qualitative", RiskScore: 0.6, Confidence: 0.5},
		},
		CreatedBy: "user-1",
	})
	if err != nil {
		t.Fatalf("combine failed: %v", err)
	}
	if !almostEqual(identical.Agreement, 1) {
		t.Fatalf("expected perfect agreement, got %.4f", identical.Agreement)
	}

	spread, err := service.CombinePredictions(context.Background(), CombineInput{
		PatientID: "patient-1",
		Strategy:  entities.StrategyMajorityVote,
		Inputs: []entities.MethodOutput{
			{Method: "gnn", RiskScore: 1, Confidence: 0.9},
			{Method: "qualitative", RiskScore: 0, Confidence: 0.5},
		},
		CreatedBy: "user-1",
	})
	if err != nil {
		t.Fatalf("combine failed: %v", err)
	}
	if !almostEqual(spread.Agreement, 0.5) {
		t.Fatalf("expected agreement 0.5, got %.4f", spread.Agreement)
	}
}

func TestCombineEmitsOutboxEvent(t *testing.T) {
	service, store := newTestService(nil)

	_, err := service.CombinePredictions(context.Background(), CombineInput{
		PatientID: "patient-1",
		Strategy:  entities.StrategyMajorityVote,
		Inputs: []entities.MethodOutput{
			{Method: "gnn", RiskScore: 0.8, Confidence: 0.9},
			{Method: "qualitative", RiskScore: 0.2, Confidence: 0.5},
		},
		CreatedBy: "user-1",
	})
	if err != nil {
		t.Fatalf("combine failed: %v", err)
	}
	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending outbox row, got %d", len(pending))
	}
	if pending[0].EventType != "ensemble.prediction.created" {
		t.Fatalf("unexpected event type %s", pending[0].EventType)
	}
}

func TestRiskLevelBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  entities.RiskLevel
	}{
		{0, entities.RiskLevelLow},
		{0.32, entities.RiskLevelLow},
		{0.33, entities.RiskLevelModerate},
		{0.65, entities.RiskLevelModerate},
		{0.66, entities.RiskLevelHigh},
		{1, entities.RiskLevelHigh},
	}
	for _, tc := range cases {
		if got := riskLevelOf(tc.score); got != tc.want {
			t.Fatalf("score %.2f: expected %s, got %s", tc.score, tc.want, got)
		}
	}
}

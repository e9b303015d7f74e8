package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"helix/contexts/modeling/grn-service/adapters/memory"
	"helix/contexts/modeling/grn-service/domain/entities"
	domainerrors "helix/contexts/modeling/grn-service/domain/errors"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newTestService() Service {
	return Service{
		Models:  memory.NewStore(),
		Checker: memory.StubChecker{},
		Clock:   fixedClock{now: time.Date(2026, time.May, 1, 10, 0, 0, 0, time.UTC)},
		IDGen:   memory.UUIDGenerator{},
	}
}

func validInput() CreateModelInput {
	return CreateModelInput{
		Name:  "p53 damage response",
		Genes: []string{"TP53", "MDM2", "CDKN1A"},
		Edges: []entities.Interaction{
			{Regulator: "TP53", Target: "MDM2", Sign: entities.SignActivation},
			{Regulator: "MDM2", Target: "TP53", Sign: entities.SignInhibition},
			{Regulator: "TP53", Target: "CDKN1A", Sign: entities.SignActivation},
		},
		CreatedBy: "user-1",
	}
}

func TestCreateModelValidatesTopology(t *testing.T) {
	service := newTestService()

	model, err := service.CreateModel(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if model.Status != entities.ModelStatusValidated {
		t.Fatalf("expected validated status, got %s", model.Status)
	}
	if len(model.Edges) != 3 {
		t.Fatalf("expected 3 edges, got %d", len(model.Edges))
	}
}

func TestCreateModelRejectsUnknownGeneEdge(t *testing.T) {
	service := newTestService()

	input := validInput()
	input.Edges = append(input.Edges, entities.Interaction{
		Regulator: "TP53",
		Target:    "MYC",
		Sign:      entities.SignActivation,
	})
	if _, err := service.CreateModel(context.Background(), input); !errors.Is(err, domainerrors.ErrUnknownGene) {
		t.Fatalf("expected ErrUnknownGene, got %v", err)
	}
}

func TestCreateModelRejectsDuplicateEdge(t *testing.T) {
	service := newTestService()

	input := validInput()
	input.Edges = append(input.Edges, entities.Interaction{
		Regulator: "tp53",
		Target:    "mdm2",
		Sign:      entities.SignInhibition,
	})
	if _, err := service.CreateModel(context.Background(), input); !errors.Is(err, domainerrors.ErrDuplicateEdge) {
		t.Fatalf("expected ErrDuplicateEdge, got %v", err)
	}
}

func TestCreateModelWithoutEdgesStaysDraft(t *testing.T) {
	service := newTestService()

	input := validInput()
	input.Edges = nil
	model, err := service.CreateModel(context.Background(), input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if model.Status != entities.ModelStatusDraft {
		t.Fatalf("expected draft status, got %s", model.Status)
	}

	if _, err := service.VerifyModel(context.Background(), model.ModelID, []string{"AG TP53"}); !errors.Is(err, domainerrors.ErrModelNotValidated) {
		t.Fatalf("expected ErrModelNotValidated for draft model, got %v", err)
	}
}

func TestVerifyModelPromotesWhenAllPropertiesHold(t *testing.T) {
	service := newTestService()

	model, err := service.CreateModel(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	report, err := service.VerifyModel(context.Background(), model.ModelID, []string{
		"AG (TP53 & MDM2)",
		"EF CDKN1A",
	})
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !report.AllHold {
		t.Fatalf("expected all properties to hold: %+v", report.Properties)
	}

	refreshed, err := service.GetModel(context.Background(), model.ModelID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if refreshed.Status != entities.ModelStatusVerified {
		t.Fatalf("expected verified status, got %s", refreshed.Status)
	}
}

func TestVerifyModelKeepsStatusWhenPropertyFails(t *testing.T) {
	service := newTestService()

	model, err := service.CreateModel(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	report, err := service.VerifyModel(context.Background(), model.ModelID, []string{"AG MYC"})
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if report.AllHold {
		t.Fatal("expected the unknown-gene property to fail")
	}

	refreshed, err := service.GetModel(context.Background(), model.ModelID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if refreshed.Status != entities.ModelStatusValidated {
		t.Fatalf("expected status to stay validated, got %s", refreshed.Status)
	}
}

func TestDeleteModelOnlyAllowsDrafts(t *testing.T) {
	service := newTestService()

	model, err := service.CreateModel(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := service.DeleteModel(context.Background(), model.ModelID); !errors.Is(err, domainerrors.ErrModelNotDeletable) {
		t.Fatalf("expected ErrModelNotDeletable, got %v", err)
	}

	input := validInput()
	input.Name = "draft network"
	input.Edges = nil
	draft, err := service.CreateModel(context.Background(), input)
	if err != nil {
		t.Fatalf("create draft failed: %v", err)
	}
	if err := service.DeleteModel(context.Background(), draft.ModelID); err != nil {
		t.Fatalf("delete draft failed: %v", err)
	}
}

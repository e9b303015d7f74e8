package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"helix/contexts/modeling/analysis-router-service/domain/entities"
	domainerrors "helix/contexts/modeling/analysis-router-service/domain/errors"
	"helix/internal/shared/events"
	"helix/internal/shared/outbox"
)

type Store struct {
	mu     sync.RWMutex
	plans  map[string]entities.AnalysisPlan
	outbox []outbox.Message
}

func NewStore() *Store {
	return &Store{plans: make(map[string]entities.AnalysisPlan)}
}

func (s *Store) SavePlan(_ context.Context, plan entities.AnalysisPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[plan.PlanID] = plan
	return nil
}

func (s *Store) GetPlan(_ context.Context, planID string) (entities.AnalysisPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	plan, ok := s.plans[strings.TrimSpace(planID)]
	if !ok {
		return entities.AnalysisPlan{}, domainerrors.ErrPlanNotFound
	}
	return plan, nil
}

func (s *Store) ListPlansByPatient(_ context.Context, patientID string) ([]entities.AnalysisPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.AnalysisPlan, 0)
	for _, plan := range s.plans {
		if plan.PatientID == patientID {
			items = append(items, plan)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal outbox envelope: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox = append(s.outbox, outbox.Message{
		OutboxID:  envelope.EventID,
		EventType: envelope.EventType,
		Payload:   payload,
		Status:    outbox.StatusPending,
	})
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]outbox.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pending := make([]outbox.Message, 0)
	for _, message := range s.outbox {
		if message.Status != outbox.StatusPending {
			continue
		}
		pending = append(pending, message)
		if limit > 0 && len(pending) >= limit {
			break
		}
	}
	return pending, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.outbox {
		if s.outbox[i].OutboxID == outboxID {
			s.outbox[i].Status = outbox.StatusPublished
			return nil
		}
	}
	return nil
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

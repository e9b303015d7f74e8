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

	"helix/contexts/modeling/ensemble-service/domain/entities"
	domainerrors "helix/contexts/modeling/ensemble-service/domain/errors"
	"helix/internal/shared/events"
	"helix/internal/shared/outbox"
)

type Store struct {
	mu          sync.RWMutex
	predictions map[string]entities.EnsemblePrediction
	outbox      []outbox.Message
}

func NewStore() *Store {
	return &Store{predictions: make(map[string]entities.EnsemblePrediction)}
}

func (s *Store) SavePrediction(_ context.Context, prediction entities.EnsemblePrediction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.predictions[prediction.PredictionID] = prediction
	return nil
}

func (s *Store) GetPrediction(_ context.Context, predictionID string) (entities.EnsemblePrediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prediction, ok := s.predictions[strings.TrimSpace(predictionID)]
	if !ok {
		return entities.EnsemblePrediction{}, domainerrors.ErrPredictionNotFound
	}
	return prediction, nil
}

func (s *Store) ListPredictionsByPatient(_ context.Context, patientID string) ([]entities.EnsemblePrediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.EnsemblePrediction, 0)
	for _, prediction := range s.predictions {
		if prediction.PatientID == patientID {
			items = append(items, prediction)
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

// StaticRoutes is a fixed method-to-weight table for local wiring and tests.
type StaticRoutes map[string]float64

func (r StaticRoutes) RoutesForPlan(_ context.Context, _ string) (map[string]float64, error) {
	return r, nil
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

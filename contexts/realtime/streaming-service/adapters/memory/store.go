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

	"helix/contexts/realtime/streaming-service/domain/entities"
	domainerrors "helix/contexts/realtime/streaming-service/domain/errors"
	"helix/contexts/realtime/streaming-service/ports"
	"helix/internal/shared/events"
	"helix/internal/shared/outbox"
)

type Store struct {
	mu     sync.RWMutex
	events map[string]entities.VitalEvent
	alerts map[string]entities.Alert
	outbox []outbox.Message
}

func NewStore() *Store {
	return &Store{
		events: make(map[string]entities.VitalEvent),
		alerts: make(map[string]entities.Alert),
	}
}

func (s *Store) SaveEvent(_ context.Context, event entities.VitalEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.EventID] = event
	return nil
}

func (s *Store) HasEvent(_ context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.events[strings.TrimSpace(eventID)]
	return ok, nil
}

func (s *Store) ListEventsByPatient(_ context.Context, patientID string, limit int) ([]entities.VitalEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.VitalEvent, 0)
	for _, event := range s.events {
		if event.PatientID == patientID {
			items = append(items, event)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ObservedAt.After(items[j].ObservedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) SaveAlert(_ context.Context, alert entities.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[alert.AlertID] = alert
	return nil
}

func (s *Store) GetAlert(_ context.Context, alertID string) (entities.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	alert, ok := s.alerts[strings.TrimSpace(alertID)]
	if !ok {
		return entities.Alert{}, domainerrors.ErrAlertNotFound
	}
	return alert, nil
}

func (s *Store) ListAlerts(_ context.Context, filter ports.AlertFilter, limit int) ([]entities.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Alert, 0)
	for _, alert := range s.alerts {
		if filter.PatientID != "" && alert.PatientID != filter.PatientID {
			continue
		}
		if filter.Acknowledged != nil && alert.Acknowledged != *filter.Acknowledged {
			continue
		}
		items = append(items, alert)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
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

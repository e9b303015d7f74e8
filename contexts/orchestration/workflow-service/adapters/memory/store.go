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

	"helix/contexts/orchestration/workflow-service/domain/entities"
	domainerrors "helix/contexts/orchestration/workflow-service/domain/errors"
	"helix/contexts/orchestration/workflow-service/ports"
	"helix/internal/shared/events"
	"helix/internal/shared/outbox"
)

type Store struct {
	mu          sync.RWMutex
	workflows   map[string]entities.Workflow
	idempotency map[string]ports.IdempotencyRecord
	outbox      []outbox.Message
}

func NewStore() *Store {
	return &Store{
		workflows:   make(map[string]entities.Workflow),
		idempotency: make(map[string]ports.IdempotencyRecord),
	}
}

func (s *Store) CreateWorkflow(_ context.Context, workflow entities.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflows[workflow.WorkflowID] = workflow
	return nil
}

func (s *Store) GetWorkflow(_ context.Context, workflowID string) (entities.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	workflow, ok := s.workflows[strings.TrimSpace(workflowID)]
	if !ok {
		return entities.Workflow{}, domainerrors.ErrWorkflowNotFound
	}
	return workflow, nil
}

func (s *Store) UpdateWorkflow(_ context.Context, workflow entities.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workflows[workflow.WorkflowID]; !ok {
		return domainerrors.ErrWorkflowNotFound
	}
	s.workflows[workflow.WorkflowID] = workflow
	return nil
}

func (s *Store) UpdateWorkflowOwned(_ context.Context, workflow entities.Workflow, owner string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.workflows[workflow.WorkflowID]
	if !ok {
		return false, domainerrors.ErrWorkflowNotFound
	}
	if current.LeaseOwner != owner {
		return false, nil
	}
	s.workflows[workflow.WorkflowID] = workflow
	return true, nil
}

func (s *Store) ListWorkflows(_ context.Context, filter ports.WorkflowFilter, limit int) ([]entities.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Workflow, 0)
	for _, workflow := range s.workflows {
		if filter.PatientID != "" && workflow.PatientID != filter.PatientID {
			continue
		}
		if filter.Status != "" && workflow.Status != filter.Status {
			continue
		}
		items = append(items, workflow)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) ClaimDueWorkflow(
	_ context.Context,
	owner string,
	now time.Time,
	leaseTTL time.Duration,
) (entities.Workflow, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *entities.Workflow
	for id := range s.workflows {
		workflow := s.workflows[id]
		if workflow.Status != entities.StatusPending || workflow.NextRunAt.After(now) {
			continue
		}
		if best == nil ||
			workflow.Priority > best.Priority ||
			(workflow.Priority == best.Priority && workflow.CreatedAt.Before(best.CreatedAt)) {
			claimed := workflow
			best = &claimed
		}
	}
	if best == nil {
		return entities.Workflow{}, false, nil
	}

	expires := now.Add(leaseTTL)
	started := now
	best.Status = entities.StatusRunning
	best.Attempts++
	best.LeaseOwner = owner
	best.LeaseExpiresAt = &expires
	best.StartedAt = &started
	best.UpdatedAt = now
	s.workflows[best.WorkflowID] = *best
	return *best, true, nil
}

func (s *Store) ListExpiredLeases(_ context.Context, now time.Time, limit int) ([]entities.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Workflow, 0)
	for _, workflow := range s.workflows {
		if workflow.Status != entities.StatusRunning {
			continue
		}
		if workflow.LeaseExpiresAt == nil || workflow.LeaseExpiresAt.After(now) {
			continue
		}
		items = append(items, workflow)
		if limit > 0 && len(items) >= limit {
			break
		}
	}
	return items, nil
}

func (s *Store) GetRecord(_ context.Context, key string, now time.Time) (ports.IdempotencyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.idempotency[key]
	if !ok || record.ExpiresAt.Before(now) {
		return ports.IdempotencyRecord{}, false, nil
	}
	return record, true, nil
}

func (s *Store) PutRecord(_ context.Context, record ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idempotency[record.Key] = record
	return nil
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

package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"helix/internal/shared/events"
)

// Broadcaster is the hub surface the bridge needs.
type Broadcaster interface {
	Broadcast(patientID string, payload []byte)
}

// Subscriber is the bus surface the bridge needs.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler func(context.Context, events.Envelope) error) error
}

// VitalsBridge forwards vitals events and alerts from the event bus into the
// websocket hub so API-process subscribers see them in real time.
type VitalsBridge struct {
	Bus    Subscriber
	Hub    Broadcaster
	Logger *slog.Logger
}

var bridgedTopics = []string{"vitals.event.ingested", "vitals.alert.raised"}

func (b VitalsBridge) Start(ctx context.Context) error {
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, topic := range bridgedTopics {
		if err := b.Bus.Subscribe(ctx, topic, "streaming-ws-bridge", b.forward); err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		logger.Info("vitals bridge subscribed",
			"event", "vitals_bridge_subscribed",
			"module", "realtime/streaming-service",
			"layer", "worker",
			"topic", topic,
		)
	}
	return nil
}

func (b VitalsBridge) forward(_ context.Context, event events.Envelope) error {
	if event.PartitionKey == "" {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode bridged event: %w", err)
	}
	b.Hub.Broadcast(event.PartitionKey, payload)
	return nil
}

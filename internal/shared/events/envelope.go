package events

import "time"

// Envelope is the canonical event shape shared by every Helix module.
// Outbox rows and broker messages both carry this structure.
type Envelope struct {
	EventID        string         `json:"event_id"`
	EventType      string         `json:"event_type"`
	SourceService  string         `json:"source_service"`
	PartitionKey   string         `json:"partition_key"`
	OccurredAt     time.Time      `json:"occurred_at"`
	PayloadVersion int            `json:"payload_version"`
	Payload        map[string]any `json:"payload"`
}

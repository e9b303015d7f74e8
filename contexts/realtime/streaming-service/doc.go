// Package streamingservice ingests patient vital-sign events, evaluates them
// against fixed thresholds and a sliding-window trend rule, and raises alerts.
//
// Ingest is idempotent on event ID. Raised alerts and ingested events flow
// through the outbox to the event bus; a websocket hub in the API process
// forwards them to per-patient subscribers.
package streamingservice

package outbox

const (
	StatusPending   = "pending"
	StatusPublished = "published"
)

// Message is an outbox row persisted inside the same transaction as the state
// change that produced it. Worker relays read pending rows and publish them to
// the event bus.
type Message struct {
	OutboxID   string
	EventType  string
	Payload    []byte
	Status     string // pending, published
	RetryCount int
}

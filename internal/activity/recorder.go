package activity

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
)

// Event is one entry of the storefront activity log
type Event struct {
	ID        string          `json:"id"`
	Source    string          `json:"source"`
	Type      string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Publisher delivers events to a sink such as a Kafka topic
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Recorder builds events and hands them to a Publisher.
// Recording is best-effort: failures are logged and never surface to the caller.
type Recorder struct {
	publisher Publisher
	source    string
}

// NewRecorder creates a recorder. A nil publisher logs events instead of sending them.
func NewRecorder(publisher Publisher, source string) *Recorder {
	return &Recorder{publisher: publisher, source: source}
}

// Record emits an event of the given type
func (r *Recorder) Record(ctx context.Context, eventType string, data any) {
	if r == nil {
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("[Activity] Failed to marshal %s: %v", eventType, err)
		return
	}

	event := Event{
		ID:        uuid.New().String(),
		Source:    r.source,
		Type:      eventType,
		Data:      payload,
		Timestamp: time.Now(),
	}

	if r.publisher == nil {
		log.Printf("[Activity] %s %s", event.Type, string(event.Data))
		return
	}
	if err := r.publisher.Publish(ctx, event); err != nil {
		log.Printf("[Activity] Failed to publish %s: %v", eventType, err)
	}
}

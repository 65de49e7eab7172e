package kafka

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/storefront-client/internal/activity"
	"github.com/segmentio/kafka-go"
)

// EventHandler receives each decoded activity event
type EventHandler func(ctx context.Context, event activity.Event) error

// Consumer reads activity events. Without a group it starts from the newest offset,
// which is what a terminal tailing the log wants.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	cfg := kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	}
	if groupID == "" {
		cfg.StartOffset = kafka.LastOffset
	}
	return &Consumer{reader: kafka.NewReader(cfg)}
}

// Consume calls handler for each event until ctx is cancelled.
// Messages that are not activity events are logged and skipped.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[Activity] Error reading message: %v", err)
			return err
		}

		event, err := decodeEvent(msg)
		if err != nil {
			log.Printf("[Activity] Skipping message at offset %d: %v", msg.Offset, err)
			continue
		}
		if err := handler(ctx, event); err != nil {
			log.Printf("[Activity] Error handling %s: %v", event.Type, err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

func decodeEvent(msg kafka.Message) (activity.Event, error) {
	var event activity.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return activity.Event{}, err
	}
	if event.Source == "" {
		event.Source = string(msg.Key)
	}
	if event.Type == "" {
		for _, h := range msg.Headers {
			if h.Key == headerEventType {
				event.Type = string(h.Value)
			}
		}
	}
	return event, nil
}

package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/example/storefront-client/internal/activity"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testEvent() activity.Event {
	return activity.Event{
		ID:        "evt-1",
		Source:    "terminal-1",
		Type:      activity.EventCheckoutSucceeded,
		Data:      json.RawMessage(`{"order_id":42}`),
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// ============================================
// Producer Tests
// ============================================

func TestProducer_PublishKeysBySource(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w}

	require.NoError(t, p.Publish(context.Background(), testEvent()))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "terminal-1", string(msg.Key))
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), msg.Time)
	assert.Contains(t, msg.Headers, kafka.Header{Key: headerEventType, Value: []byte(activity.EventCheckoutSucceeded)})
	assert.Contains(t, msg.Headers, kafka.Header{Key: headerEventID, Value: []byte("evt-1")})

	var decoded activity.Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "evt-1", decoded.ID)
	assert.JSONEq(t, `{"order_id":42}`, string(decoded.Data))
}

func TestProducer_PublishRejectsUntypedEvent(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w}
	event := testEvent()
	event.Type = ""

	err := p.Publish(context.Background(), event)

	assert.Error(t, err)
	assert.Empty(t, w.messages)
}

func TestProducer_PublishWrapsWriterError(t *testing.T) {
	broker := errors.New("broker down")
	p := &Producer{writer: &fakeWriter{err: broker}}

	err := p.Publish(context.Background(), testEvent())

	assert.ErrorIs(t, err, broker)
	assert.Contains(t, err.Error(), activity.EventCheckoutSucceeded)
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w}

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

// ============================================
// Consumer Decoding Tests
// ============================================

func TestDecodeEvent_RoundTripsProducedMessage(t *testing.T) {
	msg, err := eventMessage(testEvent())
	require.NoError(t, err)

	event, err := decodeEvent(msg)

	require.NoError(t, err)
	assert.Equal(t, "terminal-1", event.Source)
	assert.Equal(t, activity.EventCheckoutSucceeded, event.Type)
}

func TestDecodeEvent_FallsBackToKeyAndHeaders(t *testing.T) {
	msg := kafka.Message{
		Key:     []byte("terminal-2"),
		Value:   []byte(`{"id":"evt-2","data":{}}`),
		Headers: []kafka.Header{{Key: headerEventType, Value: []byte(activity.EventGuestCartMerged)}},
	}

	event, err := decodeEvent(msg)

	require.NoError(t, err)
	assert.Equal(t, "terminal-2", event.Source)
	assert.Equal(t, activity.EventGuestCartMerged, event.Type)
}

func TestDecodeEvent_RejectsGarbage(t *testing.T) {
	_, err := decodeEvent(kafka.Message{Value: []byte("not json")})

	assert.Error(t, err)
}

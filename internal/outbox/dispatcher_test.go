package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/signup/internal/events"
)

type fakeWriter struct {
	mu       sync.Mutex
	topics   []string
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.topics = append(w.topics, topic)
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) snapshot() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]kafka.Message, len(w.messages))
	copy(out, w.messages)
	return out
}

func signedUp(email string) events.Envelope {
	return events.Envelope{
		Type: events.TypeParticipantSignedUp,
		Key:  "Chess Club",
		Payload: events.ParticipantSignedUp{
			EventID:    "evt-" + email,
			Activity:   "Chess Club",
			Email:      email,
			OccurredAt: time.Date(2026, time.October, 19, 15, 30, 0, 0, time.UTC),
			Version:    events.Version,
		},
	}
}

func TestDispatcherDeliversInOrder(t *testing.T) {
	writer := &fakeWriter{}
	dispatcher := NewDispatcher(writer, Config{Topic: "activity_signups", BatchSize: 2, PollInterval: 10 * time.Millisecond})

	beforeDelivered := testutil.ToFloat64(deliveredCounter)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Start(ctx)

	emails := []string{"a@mergington.edu", "b@mergington.edu", "c@mergington.edu"}
	for _, email := range emails {
		require.NoError(t, dispatcher.Publish(ctx, signedUp(email)))
	}

	require.Eventually(t, func() bool {
		return len(writer.snapshot()) == len(emails)
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	dispatcher.Wait()

	for i, msg := range writer.snapshot() {
		var payload events.ParticipantSignedUp
		require.NoError(t, json.Unmarshal(msg.Value, &payload))
		assert.Equal(t, emails[i], payload.Email)
		assert.Equal(t, "Chess Club", string(msg.Key))
		require.Len(t, msg.Headers, 1)
		assert.Equal(t, EventTypeHeader, msg.Headers[0].Key)
		assert.Equal(t, events.TypeParticipantSignedUp, string(msg.Headers[0].Value))
	}
	for _, topic := range writer.topics {
		assert.Equal(t, "activity_signups", topic)
	}
	assert.Equal(t, beforeDelivered+3, testutil.ToFloat64(deliveredCounter))
}

func TestDispatcherPublishDropsWhenFull(t *testing.T) {
	dispatcher := NewDispatcher(&fakeWriter{}, Config{Topic: "activity_signups", BufferSize: 1})
	beforeDropped := testutil.ToFloat64(droppedCounter)

	require.NoError(t, dispatcher.Publish(context.Background(), signedUp("a@mergington.edu")))
	err := dispatcher.Publish(context.Background(), signedUp("b@mergington.edu"))

	require.ErrorIs(t, err, ErrBufferFull)
	assert.Equal(t, beforeDropped+1, testutil.ToFloat64(droppedCounter))
}

func TestDispatcherFlushesOnShutdown(t *testing.T) {
	writer := &fakeWriter{}
	dispatcher := NewDispatcher(writer, Config{Topic: "activity_signups", PollInterval: time.Hour})

	for _, email := range []string{"a@mergington.edu", "b@mergington.edu"} {
		require.NoError(t, dispatcher.Publish(context.Background(), signedUp(email)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		dispatcher.Start(ctx)
		close(done)
	}()
	cancel()
	dispatcher.Wait()
	<-done

	assert.Len(t, writer.snapshot(), 2)
}

func TestDispatcherCountsWriteFailures(t *testing.T) {
	writer := &fakeWriter{err: errors.New("broker unavailable")}
	dispatcher := NewDispatcher(writer, Config{Topic: "activity_signups"})
	beforeFailed := testutil.ToFloat64(failedCounter)

	require.NoError(t, dispatcher.Publish(context.Background(), signedUp("a@mergington.edu")))
	dispatcher.drain(context.Background())

	assert.Equal(t, beforeFailed+1, testutil.ToFloat64(failedCounter))
	assert.Empty(t, dispatcher.take())
}

func TestEncodeRejectsUnmarshalablePayload(t *testing.T) {
	_, err := encode(events.Envelope{Type: "bad", Payload: make(chan int)})
	require.Error(t, err)
}

func TestNoopPublisher(t *testing.T) {
	require.NoError(t, NoopPublisher{}.Publish(context.Background(), signedUp("a@mergington.edu")))
}

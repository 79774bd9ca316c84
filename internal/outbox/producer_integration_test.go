//go:build integration

package outbox

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkaContainer "github.com/testcontainers/testcontainers-go/modules/kafka"

	"example.com/signup/internal/events"
)

func TestKafkaProducerRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()

	kafkaC, err := kafkaContainer.Run(ctx, "confluentinc/confluent-local:7.5.0", testcontainers.WithEnv(map[string]string{
		"KAFKA_AUTO_CREATE_TOPICS_ENABLE": "true",
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kafkaC.Terminate(context.Background()) })

	brokers, err := kafkaC.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)

	topic := "activity_signups"
	conn, err := kafka.Dial("tcp", brokers[0])
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))

	producer := NewKafkaProducer(brokers)
	t.Cleanup(func() { _ = producer.Close() })

	dispatcher := NewDispatcher(producer, Config{Topic: topic, PollInterval: 50 * time.Millisecond})
	dispatchCtx, stop := context.WithCancel(ctx)
	go dispatcher.Start(dispatchCtx)

	require.NoError(t, dispatcher.Publish(ctx, signedUp("integration@mergington.edu")))

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.FirstOffset,
	})
	defer reader.Close()

	readCtx, readCancel := context.WithTimeout(ctx, time.Minute)
	defer readCancel()
	msg, err := reader.ReadMessage(readCtx)
	require.NoError(t, err)
	require.Equal(t, "Chess Club", string(msg.Key))
	require.Contains(t, string(msg.Value), "integration@mergington.edu")

	stop()
	dispatcher.Wait()

	var found bool
	for _, header := range msg.Headers {
		if header.Key == EventTypeHeader {
			found = true
			require.Equal(t, events.TypeParticipantSignedUp, string(header.Value))
		}
	}
	require.True(t, found)
}

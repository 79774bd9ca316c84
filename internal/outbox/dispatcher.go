// Package outbox buffers participant events in memory and delivers them to Kafka.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"example.com/signup/internal/events"
)

// ErrBufferFull is returned by Publish when the queue has no free slot.
var ErrBufferFull = errors.New("outbox buffer full")

// EventTypeHeader carries the envelope type on every Kafka message.
const EventTypeHeader = "event_type"

type messageWriter interface {
	WriteMessages(context.Context, string, ...kafka.Message) error
}

// Config tunes a Dispatcher.
type Config struct {
	Topic        string
	BufferSize   int
	BatchSize    int
	PollInterval time.Duration
	FlushTimeout time.Duration
	Logger       *slog.Logger
}

// Dispatcher queues envelopes without blocking callers and delivers them in
// batches from a single goroutine.
type Dispatcher struct {
	writer           messageWriter
	topic            string
	queue            chan events.Envelope
	batchSize        int
	pollInterval     time.Duration
	flushTimeout     time.Duration
	logger           *slog.Logger
	shutdownComplete chan struct{}
}

// NewDispatcher constructs a Dispatcher, filling unset tunables with defaults.
func NewDispatcher(writer messageWriter, cfg Config) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 25
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.FlushTimeout <= 0 {
		cfg.FlushTimeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Dispatcher{
		writer:           writer,
		topic:            cfg.Topic,
		queue:            make(chan events.Envelope, cfg.BufferSize),
		batchSize:        cfg.BatchSize,
		pollInterval:     cfg.PollInterval,
		flushTimeout:     cfg.FlushTimeout,
		logger:           cfg.Logger.With("component", "outbox", "topic", cfg.Topic),
		shutdownComplete: make(chan struct{}),
	}
}

// Publish implements domain.EventPublisher.
func (d *Dispatcher) Publish(ctx context.Context, envelope events.Envelope) error {
	select {
	case d.queue <- envelope:
		return nil
	default:
		droppedCounter.Inc()
		return ErrBufferFull
	}
}

// Start launches the polling loop. It should be called in a goroutine. When
// ctx is cancelled the queue is flushed once more before Start returns.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer func() {
		ticker.Stop()
		close(d.shutdownComplete)
	}()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), d.flushTimeout)
			d.drain(flushCtx)
			cancel()
			return
		case <-ticker.C:
			d.drain(ctx)
		}
	}
}

// Wait waits until dispatcher stops.
func (d *Dispatcher) Wait() {
	<-d.shutdownComplete
}

func (d *Dispatcher) drain(ctx context.Context) {
	for {
		batch := d.take()
		if len(batch) == 0 {
			return
		}
		if err := d.deliver(ctx, batch); err != nil {
			d.logger.Error("outbox delivery failure", "events", len(batch), "error", err)
			if ctx.Err() != nil {
				return
			}
		}
		if len(batch) < d.batchSize {
			return
		}
	}
}

func (d *Dispatcher) take() []events.Envelope {
	batch := make([]events.Envelope, 0, d.batchSize)
	for len(batch) < d.batchSize {
		select {
		case envelope := <-d.queue:
			batch = append(batch, envelope)
		default:
			return batch
		}
	}
	return batch
}

func (d *Dispatcher) deliver(ctx context.Context, batch []events.Envelope) error {
	start := time.Now()
	defer func() { batchDuration.Observe(time.Since(start).Seconds()) }()

	messages := make([]kafka.Message, 0, len(batch))
	for _, envelope := range batch {
		msg, err := encode(envelope)
		if err != nil {
			failedCounter.Inc()
			d.logger.Error("outbox encode failure", "event_type", envelope.Type, "error", err)
			continue
		}
		messages = append(messages, msg)
	}
	if len(messages) == 0 {
		return nil
	}

	if err := d.writer.WriteMessages(ctx, d.topic, messages...); err != nil {
		failedCounter.Add(float64(len(messages)))
		return err
	}
	deliveredCounter.Add(float64(len(messages)))
	return nil
}

func encode(envelope events.Envelope) (kafka.Message, error) {
	payload, err := json.Marshal(envelope.Payload)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal %s: %w", envelope.Type, err)
	}
	return kafka.Message{
		Key:   []byte(envelope.Key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: EventTypeHeader, Value: []byte(envelope.Type)},
		},
	}, nil
}

package outbox

import (
	"context"

	"example.com/signup/internal/events"
)

// NoopPublisher discards envelopes. It is used when no brokers are configured.
type NoopPublisher struct{}

// Publish implements domain.EventPublisher.
func (NoopPublisher) Publish(context.Context, events.Envelope) error { return nil }

// Package events defines the participant event payloads emitted by the registry.
package events

import "time"

// Version is the schema version stamped on every payload.
const Version = "v1"

const (
	TypeParticipantSignedUp  = "participant.signed_up"
	TypeParticipantCancelled = "participant.cancelled"
)

// ParticipantSignedUp is emitted after a student is added to an activity.
type ParticipantSignedUp struct {
	EventID    string    `json:"event_id"`
	Activity   string    `json:"activity"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
	Version    string    `json:"version"`
}

// ParticipantCancelled is emitted after a student is removed from an activity.
type ParticipantCancelled struct {
	EventID    string    `json:"event_id"`
	Activity   string    `json:"activity"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
	Version    string    `json:"version"`
}

// Envelope pairs a payload with its routing metadata.
type Envelope struct {
	Type    string
	Key     string
	Payload any
}

// Package domain defines the business logic for the activity sign-up service.
package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"example.com/signup/internal/events"
	"example.com/signup/internal/logging"
	"example.com/signup/internal/observability"
)

var (
	// ErrActivityNotFound is returned when no activity has the requested name.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrAlreadySignedUp is returned when the email is already enrolled in the activity.
	ErrAlreadySignedUp = errors.New("student already signed up for this activity")
	// ErrParticipantNotFound is returned when cancelling an email that is not enrolled.
	ErrParticipantNotFound = errors.New("participant not found in this activity")
	// ErrEmailRequired is returned when the email is blank after normalization.
	ErrEmailRequired = errors.New("email is required")
)

// Registry captures storage of the activity catalogue. Implementations check
// membership and mutate under the same critical section.
type Registry interface {
	List(ctx context.Context) ([]Activity, error)
	AddParticipant(ctx context.Context, activity, email string) (Activity, error)
	RemoveParticipant(ctx context.Context, activity, email string) (Activity, error)
}

// EventPublisher hands participant events to a delivery mechanism.
type EventPublisher interface {
	Publish(ctx context.Context, envelope events.Envelope) error
}

// Service orchestrates sign-up workflows.
type Service struct {
	registry  Registry
	publisher EventPublisher
	now       func() time.Time
}

// NewService constructs a Service.
func NewService(registry Registry, publisher EventPublisher) *Service {
	return &Service{
		registry:  registry,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ListActivities returns a snapshot of every activity.
func (s *Service) ListActivities(ctx context.Context) ([]Activity, error) {
	return s.registry.List(ctx)
}

// SignUp enrolls email in the named activity and returns a confirmation message.
func (s *Service) SignUp(ctx context.Context, activityName, email string) (string, error) {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		observability.RecordRejection(observability.OperationSignUp, rejectionReason(ErrEmailRequired))
		return "", ErrEmailRequired
	}

	activity, err := s.registry.AddParticipant(ctx, activityName, normalized)
	if err != nil {
		observability.RecordRejection(observability.OperationSignUp, rejectionReason(err))
		return "", err
	}

	observability.RecordSignUp(activity.Name, len(activity.Participants))
	s.publish(ctx, events.TypeParticipantSignedUp, activity.Name, events.ParticipantSignedUp{
		EventID:    uuid.NewString(),
		Activity:   activity.Name,
		Email:      normalized,
		OccurredAt: s.now(),
		Version:    events.Version,
	})

	return fmt.Sprintf("Signed up %s for %s", normalized, activity.Name), nil
}

// Cancel removes email from the named activity and returns a confirmation message.
func (s *Service) Cancel(ctx context.Context, activityName, email string) (string, error) {
	normalized := NormalizeEmail(email)
	if normalized == "" {
		observability.RecordRejection(observability.OperationCancel, rejectionReason(ErrEmailRequired))
		return "", ErrEmailRequired
	}

	activity, err := s.registry.RemoveParticipant(ctx, activityName, normalized)
	if err != nil {
		observability.RecordRejection(observability.OperationCancel, rejectionReason(err))
		return "", err
	}

	observability.RecordCancellation(activity.Name, len(activity.Participants))
	s.publish(ctx, events.TypeParticipantCancelled, activity.Name, events.ParticipantCancelled{
		EventID:    uuid.NewString(),
		Activity:   activity.Name,
		Email:      normalized,
		OccurredAt: s.now(),
		Version:    events.Version,
	})

	return fmt.Sprintf("Cancelled signup for %s from %s", normalized, activity.Name), nil
}

// publish never fails the caller; the registry change has already happened.
func (s *Service) publish(ctx context.Context, eventType, key string, payload any) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, events.Envelope{
		Type:    eventType,
		Key:     key,
		Payload: payload,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("participant event not queued",
			"event_type", eventType,
			"activity", key,
			"error", err,
		)
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrActivityNotFound):
		return "activity_not_found"
	case errors.Is(err, ErrAlreadySignedUp):
		return "already_signed_up"
	case errors.Is(err, ErrParticipantNotFound):
		return "participant_not_found"
	case errors.Is(err, ErrEmailRequired):
		return "email_required"
	default:
		return "internal"
	}
}

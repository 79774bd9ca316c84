// Package registry stores the activity catalogue in process memory.
package registry

import (
	"context"
	"slices"
	"sync"

	"example.com/signup/internal/domain"
)

// Memory is a mutex-guarded registry of activities keyed by name.
type Memory struct {
	mu         sync.RWMutex
	order      []string
	activities map[string]*domain.Activity
}

// NewMemory constructs a registry holding seed. Participant emails are
// normalized and de-duplicated on load; a later duplicate name replaces the
// earlier record.
func NewMemory(seed ...domain.Activity) *Memory {
	m := &Memory{
		activities: make(map[string]*domain.Activity, len(seed)),
	}
	for _, activity := range seed {
		record := activity.Clone()
		record.Participants = record.Participants[:0]
		for _, email := range activity.Participants {
			normalized := domain.NormalizeEmail(email)
			if normalized == "" || record.HasParticipant(normalized) {
				continue
			}
			record.Participants = append(record.Participants, normalized)
		}
		if _, exists := m.activities[record.Name]; !exists {
			m.order = append(m.order, record.Name)
		}
		m.activities[record.Name] = &record
	}
	return m
}

// List implements domain.Registry. Activities are returned in seed order.
func (m *Memory) List(ctx context.Context) ([]domain.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Activity, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.activities[name].Clone())
	}
	return out, nil
}

// AddParticipant implements domain.Registry. email must already be normalized.
func (m *Memory) AddParticipant(ctx context.Context, activity, email string) (domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.activities[activity]
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	if record.HasParticipant(email) {
		return domain.Activity{}, domain.ErrAlreadySignedUp
	}

	record.Participants = append(record.Participants, email)
	return record.Clone(), nil
}

// RemoveParticipant implements domain.Registry. email must already be normalized.
func (m *Memory) RemoveParticipant(ctx context.Context, activity, email string) (domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.activities[activity]
	if !ok {
		return domain.Activity{}, domain.ErrActivityNotFound
	}
	idx := slices.Index(record.Participants, email)
	if idx < 0 {
		return domain.Activity{}, domain.ErrParticipantNotFound
	}

	record.Participants = slices.Delete(record.Participants, idx, idx+1)
	return record.Clone(), nil
}

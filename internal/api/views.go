package api

import (
	"bytes"
	"encoding/json"

	"example.com/signup/internal/domain"
)

// ActivityView is the public shape of one activity.
type ActivityView struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// MessageResponse confirms a sign-up or cancellation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ActivityCatalog encodes as a JSON object keyed by activity name, keeping
// registry order instead of the sorted order of a Go map.
type ActivityCatalog struct {
	names []string
	views map[string]ActivityView
}

func toCatalog(activities []domain.Activity) ActivityCatalog {
	catalog := ActivityCatalog{
		names: make([]string, 0, len(activities)),
		views: make(map[string]ActivityView, len(activities)),
	}
	for _, activity := range activities {
		participants := activity.Participants
		if participants == nil {
			participants = []string{}
		}
		catalog.names = append(catalog.names, activity.Name)
		catalog.views[activity.Name] = ActivityView{
			Description:     activity.Description,
			Schedule:        activity.Schedule,
			MaxParticipants: activity.MaxParticipants,
			Participants:    participants,
		}
	}
	return catalog
}

// MarshalJSON implements json.Marshaler.
func (c ActivityCatalog) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(c.views[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

package domain

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Activity is a named school offering and the students enrolled in it.
type Activity struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	Participants    []string
}

// HasParticipant reports whether the normalized email is enrolled.
func (a Activity) HasParticipant(email string) bool {
	return slices.Contains(a.Participants, email)
}

// Clone returns a copy that does not share the participant slice.
func (a Activity) Clone() Activity {
	out := a
	out.Participants = slices.Clone(a.Participants)
	if out.Participants == nil {
		out.Participants = []string{}
	}
	return out
}

// folder is stateless and safe for concurrent use.
var folder = cases.Fold()

// NormalizeEmail trims surrounding whitespace and case-folds the address.
func NormalizeEmail(raw string) string {
	return folder.String(strings.TrimSpace(raw))
}

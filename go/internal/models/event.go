package models

import (
	"time"

	"github.com/google/uuid"
)

// EventKind identifies a match request lifecycle event
type EventKind string

const (
	EventMatchRequestCreated   EventKind = "MatchRequestCreated"
	EventMatchRequestAccepted  EventKind = "MatchRequestAccepted"
	EventMatchRequestDeclined  EventKind = "MatchRequestDeclined"
	EventMatchRequestCompleted EventKind = "MatchRequestCompleted"
)

// EventKindFor returns the event emitted when a request enters status
func EventKindFor(status MatchStatus) EventKind {
	switch status {
	case MatchStatusConfirmed:
		return EventMatchRequestAccepted
	case MatchStatusDeclined:
		return EventMatchRequestDeclined
	case MatchStatusCompleted:
		return EventMatchRequestCompleted
	default:
		return EventMatchRequestCreated
	}
}

// MatchEvent is handed to the notification dispatcher after a change commits
type MatchEvent struct {
	ID         uuid.UUID    `json:"id"`
	Kind       EventKind    `json:"kind"`
	Recipients []uuid.UUID  `json:"recipients"`
	OccurredAt time.Time    `json:"occurred_at"`
	Request    MatchRequest `json:"request"`
}

// AddressedTo reports whether teamID is among the event recipients
func (e *MatchEvent) AddressedTo(teamID uuid.UUID) bool {
	for _, r := range e.Recipients {
		if r == teamID {
			return true
		}
	}
	return false
}

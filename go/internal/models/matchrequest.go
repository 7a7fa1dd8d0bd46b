package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// MatchType defines the kind of game being proposed
type MatchType string

const (
	MatchTypeFriendly       MatchType = "Friendly"
	MatchTypePractice       MatchType = "Practice"
	MatchTypeTournamentPrep MatchType = "TournamentPrep"
	MatchTypeScrimmage      MatchType = "Scrimmage"
)

func (t MatchType) Valid() bool {
	switch t {
	case MatchTypeFriendly, MatchTypePractice, MatchTypeTournamentPrep, MatchTypeScrimmage:
		return true
	default:
		return false
	}
}

// MatchStatus defines the lifecycle status of a match request
type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "Pending"
	MatchStatusConfirmed MatchStatus = "Confirmed"
	MatchStatusDeclined  MatchStatus = "Declined"
	MatchStatusCompleted MatchStatus = "Completed"
)

// matchTransitions is the full lifecycle; a status absent from a value list is unreachable from the key
var matchTransitions = map[MatchStatus][]MatchStatus{
	MatchStatusPending:   {MatchStatusConfirmed, MatchStatusDeclined},
	MatchStatusConfirmed: {MatchStatusCompleted},
	MatchStatusDeclined:  {},
	MatchStatusCompleted: {},
}

func (s MatchStatus) Valid() bool {
	_, ok := matchTransitions[s]
	return ok
}

// CanTransitionTo reports whether next directly follows s in the lifecycle
func (s MatchStatus) CanTransitionTo(next MatchStatus) bool {
	return slices.Contains(matchTransitions[s], next)
}

// IsTerminal reports whether no transition leaves s
func (s MatchStatus) IsTerminal() bool {
	return s.Valid() && len(matchTransitions[s]) == 0
}

// Direction describes a match request from one participant's point of view
type Direction string

const (
	DirectionSent     Direction = "Sent"
	DirectionReceived Direction = "Received"
	DirectionNone     Direction = ""
)

// MatchRequest is a proposal for a game between two teams
type MatchRequest struct {
	ID           uuid.UUID   `json:"id"`
	FromTeamID   uuid.UUID   `json:"from_team_id"`
	ToTeamID     uuid.UUID   `json:"to_team_id"`
	ProposedDate Date        `json:"proposed_date"`
	ProposedTime TimeOfDay   `json:"proposed_time"`
	Venue        string      `json:"venue"`
	MatchType    MatchType   `json:"match_type"`
	Message      *string     `json:"message,omitempty"`
	Status       MatchStatus `json:"status"`
	Result       *string     `json:"result,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	RespondedAt  *time.Time  `json:"responded_at,omitempty"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
}

// Involves reports whether teamID is one of the two participants
func (m *MatchRequest) Involves(teamID uuid.UUID) bool {
	return m.FromTeamID == teamID || m.ToTeamID == teamID
}

// DirectionFor returns Sent for the requesting team, Received for the recipient and
// DirectionNone for any other team.
func (m *MatchRequest) DirectionFor(teamID uuid.UUID) Direction {
	switch teamID {
	case m.FromTeamID:
		return DirectionSent
	case m.ToTeamID:
		return DirectionReceived
	default:
		return DirectionNone
	}
}

// Participants returns the requesting and receiving team ids
func (m *MatchRequest) Participants() []uuid.UUID {
	return []uuid.UUID{m.FromTeamID, m.ToTeamID}
}

// Clone returns a copy of m that shares no pointers with it
func (m MatchRequest) Clone() MatchRequest {
	m.Message = clonePtr(m.Message)
	m.Result = clonePtr(m.Result)
	m.RespondedAt = clonePtr(m.RespondedAt)
	m.CompletedAt = clonePtr(m.CompletedAt)
	return m
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

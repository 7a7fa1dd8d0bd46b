package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMatchStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to MatchStatus
		want     bool
	}{
		{MatchStatusPending, MatchStatusConfirmed, true},
		{MatchStatusPending, MatchStatusDeclined, true},
		{MatchStatusPending, MatchStatusCompleted, false},
		{MatchStatusPending, MatchStatusPending, false},
		{MatchStatusConfirmed, MatchStatusCompleted, true},
		{MatchStatusConfirmed, MatchStatusDeclined, false},
		{MatchStatusConfirmed, MatchStatusPending, false},
		{MatchStatusDeclined, MatchStatusConfirmed, false},
		{MatchStatusDeclined, MatchStatusPending, false},
		{MatchStatusCompleted, MatchStatusConfirmed, false},
		{MatchStatus("Cancelled"), MatchStatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestMatchStatus_IsTerminal(t *testing.T) {
	assert.False(t, MatchStatusPending.IsTerminal())
	assert.False(t, MatchStatusConfirmed.IsTerminal())
	assert.True(t, MatchStatusDeclined.IsTerminal())
	assert.True(t, MatchStatusCompleted.IsTerminal())
	assert.False(t, MatchStatus("").IsTerminal())
}

func TestMatchType_Valid(t *testing.T) {
	assert.True(t, MatchTypeTournamentPrep.Valid())
	assert.False(t, MatchType("friendly").Valid())
	assert.False(t, MatchType("").Valid())
}

func TestMatchRequest_DirectionFor(t *testing.T) {
	from, to, other := uuid.New(), uuid.New(), uuid.New()
	req := MatchRequest{FromTeamID: from, ToTeamID: to}

	assert.Equal(t, DirectionSent, req.DirectionFor(from))
	assert.Equal(t, DirectionReceived, req.DirectionFor(to))
	assert.Equal(t, DirectionNone, req.DirectionFor(other))
	assert.True(t, req.Involves(from))
	assert.True(t, req.Involves(to))
	assert.False(t, req.Involves(other))
	assert.Equal(t, []uuid.UUID{from, to}, req.Participants())
}

func TestEventKindFor(t *testing.T) {
	assert.Equal(t, EventMatchRequestCreated, EventKindFor(MatchStatusPending))
	assert.Equal(t, EventMatchRequestAccepted, EventKindFor(MatchStatusConfirmed))
	assert.Equal(t, EventMatchRequestDeclined, EventKindFor(MatchStatusDeclined))
	assert.Equal(t, EventMatchRequestCompleted, EventKindFor(MatchStatusCompleted))
}

func TestMatchEvent_AddressedTo(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	event := MatchEvent{Recipients: []uuid.UUID{a}}

	assert.True(t, event.AddressedTo(a))
	assert.False(t, event.AddressedTo(b))
}

package matches

import (
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/friendlies/go/internal/models"
)

// CreateMatchRequest represents the data needed to propose a match.
// ProposedDate and ProposedTime arrive as "YYYY-MM-DD" and "HH:MM" and are parsed during validation.
type CreateMatchRequest struct {
	FromTeamID   uuid.UUID        `json:"from_team_id"`
	ToTeamID     uuid.UUID        `json:"to_team_id"`
	ProposedDate string           `json:"proposed_date"`
	ProposedTime string           `json:"proposed_time"`
	Venue        string           `json:"venue"`
	MatchType    models.MatchType `json:"match_type"`
	Message      *string          `json:"message,omitempty"`
}

// Transition is a compare-and-set on a request's status. It succeeds only while the
// stored status still equals From. Leaving Pending stamps RespondedAt; entering
// Completed stamps CompletedAt and stores Result.
type Transition struct {
	RequestID uuid.UUID
	From      models.MatchStatus
	To        models.MatchStatus
	At        time.Time
	Result    *string
}

// apply mutates req as the transition describes. Callers have already checked From.
func (t Transition) apply(req *models.MatchRequest) {
	req.Status = t.To
	if t.From == models.MatchStatusPending && req.RespondedAt == nil {
		respondedAt := t.At
		req.RespondedAt = &respondedAt
	}
	if t.To == models.MatchStatusCompleted {
		completedAt := t.At
		req.CompletedAt = &completedAt
		if t.Result != nil {
			result := *t.Result
			req.Result = &result
		}
	}
}

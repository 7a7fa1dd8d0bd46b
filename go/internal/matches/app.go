package matches

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/friendlies/go/internal/models"
	"github.com/mcdev12/friendlies/go/internal/notify"
)

// MatchesRepository defines what the app layer needs from the repository.
//
// TransitionMatchRequest must be atomic: when the stored status no longer equals
// t.From it returns *models.InvalidTransitionError carrying the stored status, and an
// unknown id yields *models.NotFoundError. ListMatchRequestsForTeam orders by
// CreatedAt ascending with insertion order breaking ties.
type MatchesRepository interface {
	CreateMatchRequest(ctx context.Context, req *models.MatchRequest) error
	GetMatchRequest(ctx context.Context, id uuid.UUID) (*models.MatchRequest, error)
	TransitionMatchRequest(ctx context.Context, t Transition) (*models.MatchRequest, error)
	ListMatchRequestsForTeam(ctx context.Context, teamID uuid.UUID, status *models.MatchStatus) ([]models.MatchRequest, error)
	CountMatchRequests(ctx context.Context, status *models.MatchStatus) (int, error)
}

// TeamDirectory resolves team ids
type TeamDirectory interface {
	TeamExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// App handles the match request lifecycle
type App struct {
	repo       MatchesRepository
	teams      TeamDirectory
	dispatcher notify.Dispatcher
	clock      clockwork.Clock
}

// NewApp creates a new matches App. A nil dispatcher drops events and a nil clock uses
// the real clock.
func NewApp(repo MatchesRepository, teams TeamDirectory, dispatcher notify.Dispatcher, clock clockwork.Clock) *App {
	if dispatcher == nil {
		dispatcher = notify.DispatcherFunc(func(context.Context, models.MatchEvent) error { return nil })
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &App{
		repo:       repo,
		teams:      teams,
		dispatcher: dispatcher,
		clock:      clock,
	}
}

// CreateRequest validates and stores a new Pending request, then notifies the receiving team
func (a *App) CreateRequest(ctx context.Context, req CreateMatchRequest) (*models.MatchRequest, error) {
	date, tod, err := a.validateCreateMatchRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	match := &models.MatchRequest{
		ID:           uuid.New(),
		FromTeamID:   req.FromTeamID,
		ToTeamID:     req.ToTeamID,
		ProposedDate: date,
		ProposedTime: tod,
		Venue:        req.Venue,
		MatchType:    req.MatchType,
		Message:      req.Message,
		Status:       models.MatchStatusPending,
		CreatedAt:    a.clock.Now().UTC(),
	}

	if err := a.repo.CreateMatchRequest(ctx, match); err != nil {
		return nil, fmt.Errorf("failed to create match request: %w", err)
	}

	log.Info().
		Str("request_id", match.ID.String()).
		Str("from_team_id", match.FromTeamID.String()).
		Str("to_team_id", match.ToTeamID.String()).
		Str("proposed_date", match.ProposedDate.String()).
		Msg("match request created")

	a.dispatch(ctx, *match, match.ToTeamID)
	return match, nil
}

// Accept confirms a Pending request. Only the receiving team may accept.
func (a *App) Accept(ctx context.Context, requestID, actingTeamID uuid.UUID) (*models.MatchRequest, error) {
	return a.respond(ctx, requestID, actingTeamID, models.MatchStatusConfirmed, "accept")
}

// Decline rejects a Pending request. Only the receiving team may decline.
func (a *App) Decline(ctx context.Context, requestID, actingTeamID uuid.UUID) (*models.MatchRequest, error) {
	return a.respond(ctx, requestID, actingTeamID, models.MatchStatusDeclined, "decline")
}

func (a *App) respond(ctx context.Context, requestID, actingTeamID uuid.UUID, to models.MatchStatus, action string) (*models.MatchRequest, error) {
	current, err := a.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if actingTeamID != current.ToTeamID {
		return nil, &models.ForbiddenError{RequestID: requestID, TeamID: actingTeamID, Action: action}
	}

	updated, err := a.transition(ctx, current, to, nil)
	if err != nil {
		return nil, err
	}

	a.dispatch(ctx, *updated, updated.FromTeamID)
	return updated, nil
}

// Complete records the outcome of a Confirmed match. Either participant may complete it;
// result is stored as given.
func (a *App) Complete(ctx context.Context, requestID, actingTeamID uuid.UUID, result *string) (*models.MatchRequest, error) {
	current, err := a.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !current.Involves(actingTeamID) {
		return nil, &models.ForbiddenError{RequestID: requestID, TeamID: actingTeamID, Action: "complete"}
	}

	updated, err := a.transition(ctx, current, models.MatchStatusCompleted, result)
	if err != nil {
		return nil, err
	}

	a.dispatch(ctx, *updated, updated.Participants()...)
	return updated, nil
}

// transition checks the lifecycle table against the status just read and then performs
// the compare-and-set. Losing a race surfaces as the repository's InvalidTransitionError.
func (a *App) transition(ctx context.Context, current *models.MatchRequest, to models.MatchStatus, result *string) (*models.MatchRequest, error) {
	if !current.Status.CanTransitionTo(to) {
		return nil, &models.InvalidTransitionError{RequestID: current.ID, From: current.Status, To: to}
	}

	updated, err := a.repo.TransitionMatchRequest(ctx, Transition{
		RequestID: current.ID,
		From:      current.Status,
		To:        to,
		At:        a.clock.Now().UTC(),
		Result:    result,
	})
	if err != nil {
		if errors.Is(err, models.ErrInvalidTransition) || errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update match request: %w", err)
	}

	log.Info().
		Str("request_id", updated.ID.String()).
		Str("from_status", string(current.Status)).
		Str("to_status", string(updated.Status)).
		Msg("match request status changed")
	return updated, nil
}

// GetRequest retrieves a match request by ID
func (a *App) GetRequest(ctx context.Context, id uuid.UUID) (*models.MatchRequest, error) {
	req, err := a.repo.GetMatchRequest(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get match request: %w", err)
	}
	return req, nil
}

// ListForTeam returns every request the team sent or received, optionally narrowed to
// one status, oldest first
func (a *App) ListForTeam(ctx context.Context, teamID uuid.UUID, status *models.MatchStatus) ([]models.MatchRequest, error) {
	if status != nil && !status.Valid() {
		verr := &models.ValidationError{}
		verr.Add("status", fmt.Sprintf("invalid status: %q", *status))
		return nil, verr
	}

	reqs, err := a.repo.ListMatchRequestsForTeam(ctx, teamID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list match requests: %w", err)
	}
	if reqs == nil {
		reqs = []models.MatchRequest{}
	}
	return reqs, nil
}

// CountRequests returns the number of requests, optionally only those in status
func (a *App) CountRequests(ctx context.Context, status *models.MatchStatus) (int, error) {
	n, err := a.repo.CountMatchRequests(ctx, status)
	if err != nil {
		return 0, fmt.Errorf("failed to count match requests: %w", err)
	}
	return n, nil
}

// dispatch hands the committed change to the dispatcher. Failures are logged only; the
// change stands.
func (a *App) dispatch(ctx context.Context, req models.MatchRequest, recipients ...uuid.UUID) {
	event := models.MatchEvent{
		ID:         uuid.New(),
		Kind:       models.EventKindFor(req.Status),
		Recipients: recipients,
		OccurredAt: a.clock.Now().UTC(),
		Request:    req,
	}

	if err := a.dispatcher.Notify(ctx, event); err != nil {
		log.Warn().
			Err(err).
			Str("event_id", event.ID.String()).
			Str("event_kind", string(event.Kind)).
			Str("request_id", req.ID.String()).
			Msg("failed to dispatch match event")
	}
}

// validateCreateMatchRequest reports every violated field at once and returns the parsed
// date and time when there are none
func (a *App) validateCreateMatchRequest(ctx context.Context, req CreateMatchRequest) (models.Date, models.TimeOfDay, error) {
	verr := &models.ValidationError{}

	if err := a.checkTeam(ctx, verr, "from_team_id", req.FromTeamID); err != nil {
		return models.Date{}, models.TimeOfDay{}, err
	}
	if err := a.checkTeam(ctx, verr, "to_team_id", req.ToTeamID); err != nil {
		return models.Date{}, models.TimeOfDay{}, err
	}
	if req.FromTeamID != uuid.Nil && req.FromTeamID == req.ToTeamID {
		verr.Add("to_team_id", "cannot request a match against the same team")
	}

	var (
		date models.Date
		tod  models.TimeOfDay
		err  error
	)
	if strings.TrimSpace(req.ProposedDate) == "" {
		verr.Add("proposed_date", "is required")
	} else if date, err = models.ParseDate(req.ProposedDate); err != nil {
		verr.Add("proposed_date", "must be a date in YYYY-MM-DD form")
	}
	if strings.TrimSpace(req.ProposedTime) == "" {
		verr.Add("proposed_time", "is required")
	} else if tod, err = models.ParseTimeOfDay(req.ProposedTime); err != nil {
		verr.Add("proposed_time", "must be a 24h time in HH:MM form")
	}
	if strings.TrimSpace(req.Venue) == "" {
		verr.Add("venue", "is required")
	}
	if !req.MatchType.Valid() {
		verr.Add("match_type", fmt.Sprintf("invalid match type: %q", req.MatchType))
	}

	return date, tod, verr.OrNil()
}

// checkTeam records a violation on field when id is missing or unknown. Only lookup
// failures are returned.
func (a *App) checkTeam(ctx context.Context, verr *models.ValidationError, field string, id uuid.UUID) error {
	if id == uuid.Nil {
		verr.Add(field, "is required")
		return nil
	}
	exists, err := a.teams.TeamExists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", field, err)
	}
	if !exists {
		verr.Add(field, "does not refer to a registered team")
	}
	return nil
}

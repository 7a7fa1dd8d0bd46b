package matches

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/friendlies/go/internal/models"
)

// fakeDirectory resolves a fixed set of team ids
type fakeDirectory map[uuid.UUID]bool

func (d fakeDirectory) TeamExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return d[id], nil
}

// recordingDispatcher keeps every event and optionally fails
type recordingDispatcher struct {
	mu     sync.Mutex
	events []models.MatchEvent
	err    error
}

func (d *recordingDispatcher) Notify(ctx context.Context, event models.MatchEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return d.err
}

func (d *recordingDispatcher) Events() []models.MatchEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.MatchEvent(nil), d.events...)
}

type fixture struct {
	app        *App
	clock      *clockwork.FakeClock
	dispatcher *recordingDispatcher
	teamA      uuid.UUID
	teamB      uuid.UUID
	teamC      uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock:      clockwork.NewFakeClockAt(time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)),
		dispatcher: &recordingDispatcher{},
		teamA:      uuid.New(),
		teamB:      uuid.New(),
		teamC:      uuid.New(),
	}
	dir := fakeDirectory{f.teamA: true, f.teamB: true, f.teamC: true}
	f.app = NewApp(NewMemoryRepository(), dir, f.dispatcher, f.clock)
	return f
}

func (f *fixture) request(from, to uuid.UUID) CreateMatchRequest {
	return CreateMatchRequest{
		FromTeamID:   from,
		ToTeamID:     to,
		ProposedDate: "2025-06-14",
		ProposedTime: "15:00",
		Venue:        "Central Park Field 3",
		MatchType:    models.MatchTypeFriendly,
	}
}

func (f *fixture) create(t *testing.T, from, to uuid.UUID) *models.MatchRequest {
	t.Helper()
	req, err := f.app.CreateRequest(context.Background(), f.request(from, to))
	require.NoError(t, err)
	return req
}

func TestCreateRequest_Pending(t *testing.T) {
	f := newFixture(t)
	msg := "Looking forward to it"
	in := f.request(f.teamA, f.teamB)
	in.Message = &msg

	req, err := f.app.CreateRequest(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, models.MatchStatusPending, req.Status)
	assert.Equal(t, f.clock.Now(), req.CreatedAt)
	assert.Equal(t, models.Date{Year: 2025, Month: time.June, Day: 14}, req.ProposedDate)
	assert.Equal(t, models.TimeOfDay{Hour: 15}, req.ProposedTime)
	assert.Equal(t, &msg, req.Message)
	assert.Nil(t, req.RespondedAt)
	assert.Nil(t, req.CompletedAt)
	assert.Nil(t, req.Result)

	events := f.dispatcher.Events()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventMatchRequestCreated, events[0].Kind)
	assert.Equal(t, []uuid.UUID{f.teamB}, events[0].Recipients)
	assert.Equal(t, req.ID, events[0].Request.ID)
}

func TestCreateRequest_SelfMatch(t *testing.T) {
	f := newFixture(t)

	_, err := f.app.CreateRequest(context.Background(), f.request(f.teamA, f.teamA))
	require.ErrorIs(t, err, models.ErrValidation)

	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.HasField("to_team_id"))

	n, err := f.app.CountRequests(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, f.dispatcher.Events())
}

func TestCreateRequest_ReportsEveryViolation(t *testing.T) {
	f := newFixture(t)

	_, err := f.app.CreateRequest(context.Background(), CreateMatchRequest{
		FromTeamID:   uuid.New(),
		ProposedDate: "2025-02-30",
		ProposedTime: "25:00",
		Venue:        " ",
		MatchType:    "Exhibition",
	})
	require.ErrorIs(t, err, models.ErrValidation)

	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	for _, field := range []string{"from_team_id", "to_team_id", "proposed_date", "proposed_time", "venue", "match_type"} {
		assert.True(t, verr.HasField(field), field)
	}
}

func TestCreateRequest_MissingDateAndTime(t *testing.T) {
	f := newFixture(t)
	in := f.request(f.teamA, f.teamB)
	in.ProposedDate = ""
	in.ProposedTime = ""

	_, err := f.app.CreateRequest(context.Background(), in)
	var verr *models.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.HasField("proposed_date"))
	assert.True(t, verr.HasField("proposed_time"))
}

func TestAccept_ThenComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.create(t, f.teamA, f.teamB)

	f.clock.Advance(time.Hour)
	accepted, err := f.app.Accept(ctx, req.ID, f.teamB)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusConfirmed, accepted.Status)
	require.NotNil(t, accepted.RespondedAt)
	assert.Equal(t, f.clock.Now(), *accepted.RespondedAt)
	respondedAt := *accepted.RespondedAt

	f.clock.Advance(24 * time.Hour)
	result := "3-2"
	completed, err := f.app.Complete(ctx, req.ID, f.teamA, &result)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, completed.Status)
	assert.Equal(t, &result, completed.Result)
	require.NotNil(t, completed.CompletedAt)
	assert.Equal(t, f.clock.Now(), *completed.CompletedAt)
	assert.Equal(t, respondedAt, *completed.RespondedAt, "responded_at is set only once")

	events := f.dispatcher.Events()
	require.Len(t, events, 3)
	assert.Equal(t, models.EventMatchRequestAccepted, events[1].Kind)
	assert.Equal(t, []uuid.UUID{f.teamA}, events[1].Recipients)
	assert.Equal(t, models.EventMatchRequestCompleted, events[2].Kind)
	assert.ElementsMatch(t, []uuid.UUID{f.teamA, f.teamB}, events[2].Recipients)
}

func TestAccept_BySenderIsForbidden(t *testing.T) {
	f := newFixture(t)
	req := f.create(t, f.teamA, f.teamB)

	_, err := f.app.Accept(context.Background(), req.ID, f.teamA)
	require.ErrorIs(t, err, models.ErrForbidden)

	got, err := f.app.GetRequest(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusPending, got.Status)
	assert.Len(t, f.dispatcher.Events(), 1)
}

func TestDecline_ThenAcceptIsInvalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.create(t, f.teamA, f.teamB)

	declined, err := f.app.Decline(ctx, req.ID, f.teamB)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusDeclined, declined.Status)
	assert.NotNil(t, declined.RespondedAt)

	_, err = f.app.Accept(ctx, req.ID, f.teamB)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	var terr *models.InvalidTransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, models.MatchStatusDeclined, terr.From)
	assert.Equal(t, models.MatchStatusConfirmed, terr.To)

	events := f.dispatcher.Events()
	require.Len(t, events, 2)
	assert.Equal(t, models.EventMatchRequestDeclined, events[1].Kind)
	assert.Equal(t, []uuid.UUID{f.teamA}, events[1].Recipients)
}

func TestComplete_PendingIsInvalid(t *testing.T) {
	f := newFixture(t)
	req := f.create(t, f.teamA, f.teamB)

	_, err := f.app.Complete(context.Background(), req.ID, f.teamA, nil)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	var terr *models.InvalidTransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, models.MatchStatusPending, terr.From)
	assert.Equal(t, models.MatchStatusCompleted, terr.To)
}

func TestComplete_ByOutsiderIsForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.create(t, f.teamA, f.teamB)
	_, err := f.app.Accept(ctx, req.ID, f.teamB)
	require.NoError(t, err)

	_, err = f.app.Complete(ctx, req.ID, f.teamC, nil)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestComplete_WithoutResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.create(t, f.teamA, f.teamB)
	_, err := f.app.Accept(ctx, req.ID, f.teamB)
	require.NoError(t, err)

	completed, err := f.app.Complete(ctx, req.ID, f.teamB, nil)
	require.NoError(t, err)
	assert.Nil(t, completed.Result)
	assert.Equal(t, models.MatchStatusCompleted, completed.Status)
}

func TestForbiddenIsCheckedBeforeStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.create(t, f.teamA, f.teamB)
	_, err := f.app.Decline(ctx, req.ID, f.teamB)
	require.NoError(t, err)

	_, err = f.app.Accept(ctx, req.ID, f.teamC)
	assert.ErrorIs(t, err, models.ErrForbidden)
	_, err = f.app.Complete(ctx, req.ID, f.teamC, nil)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestTransitions_UnknownRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := uuid.New()

	_, err := f.app.Accept(ctx, id, f.teamB)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.app.Decline(ctx, id, f.teamB)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.app.Complete(ctx, id, f.teamB, nil)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = f.app.GetRequest(ctx, id)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTerminalStatusesNeverMove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	declined := f.create(t, f.teamA, f.teamB)
	_, err := f.app.Decline(ctx, declined.ID, f.teamB)
	require.NoError(t, err)

	completed := f.create(t, f.teamA, f.teamB)
	_, err = f.app.Accept(ctx, completed.ID, f.teamB)
	require.NoError(t, err)
	_, err = f.app.Complete(ctx, completed.ID, f.teamA, nil)
	require.NoError(t, err)

	for _, id := range []uuid.UUID{declined.ID, completed.ID} {
		_, err = f.app.Accept(ctx, id, f.teamB)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)
		_, err = f.app.Decline(ctx, id, f.teamB)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)
		_, err = f.app.Complete(ctx, id, f.teamA, nil)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)
	}
}

func TestConcurrentAcceptAndDecline_ExactlyOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for round := 0; round < 50; round++ {
		req := f.create(t, f.teamA, f.teamB)

		var (
			wg   sync.WaitGroup
			errs = make([]error, 2)
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = f.app.Accept(ctx, req.ID, f.teamB)
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = f.app.Decline(ctx, req.ID, f.teamB)
		}()
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			assert.ErrorIs(t, err, models.ErrInvalidTransition)
		}
		require.Equal(t, 1, wins, "round %d", round)

		got, err := f.app.GetRequest(ctx, req.ID)
		require.NoError(t, err)
		if errs[0] == nil {
			assert.Equal(t, models.MatchStatusConfirmed, got.Status)
		} else {
			assert.Equal(t, models.MatchStatusDeclined, got.Status)
		}
	}
}

func TestDispatcherFailureDoesNotRollBack(t *testing.T) {
	f := newFixture(t)
	f.dispatcher.err = errors.New("broker down")
	ctx := context.Background()

	req, err := f.app.CreateRequest(ctx, f.request(f.teamA, f.teamB))
	require.NoError(t, err)

	accepted, err := f.app.Accept(ctx, req.ID, f.teamB)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusConfirmed, accepted.Status)

	got, err := f.app.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusConfirmed, got.Status)
	assert.Len(t, f.dispatcher.Events(), 2)
}

func TestListForTeam_OrderAndFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.create(t, f.teamA, f.teamB)
	second := f.create(t, f.teamC, f.teamA) // same CreatedAt as first
	f.clock.Advance(time.Minute)
	third := f.create(t, f.teamB, f.teamC)
	f.clock.Advance(time.Minute)
	fourth := f.create(t, f.teamA, f.teamC)

	_, err := f.app.Accept(ctx, fourth.ID, f.teamC)
	require.NoError(t, err)

	all, err := f.app.ListForTeam(ctx, f.teamA, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, second.ID, all[1].ID)
	assert.Equal(t, fourth.ID, all[2].ID)
	assert.Equal(t, models.DirectionSent, all[0].DirectionFor(f.teamA))
	assert.Equal(t, models.DirectionReceived, all[1].DirectionFor(f.teamA))

	confirmed := models.MatchStatusConfirmed
	onlyConfirmed, err := f.app.ListForTeam(ctx, f.teamA, &confirmed)
	require.NoError(t, err)
	require.Len(t, onlyConfirmed, 1)
	assert.Equal(t, fourth.ID, onlyConfirmed[0].ID)

	forB, err := f.app.ListForTeam(ctx, f.teamB, nil)
	require.NoError(t, err)
	require.Len(t, forB, 2)
	assert.Equal(t, first.ID, forB[0].ID)
	assert.Equal(t, third.ID, forB[1].ID)

	none, err := f.app.ListForTeam(ctx, uuid.New(), nil)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	bogus := models.MatchStatus("Cancelled")
	_, err = f.app.ListForTeam(ctx, f.teamA, &bogus)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCountRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.create(t, f.teamA, f.teamB)
	f.create(t, f.teamB, f.teamC)
	_, err := f.app.Accept(ctx, a.ID, f.teamB)
	require.NoError(t, err)

	total, err := f.app.CountRequests(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	pending := models.MatchStatusPending
	n, err := f.app.CountRequests(ctx, &pending)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDecline_ConfirmedIsInvalid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.create(t, f.teamA, f.teamB)
	_, err := f.app.Accept(ctx, req.ID, f.teamB)
	require.NoError(t, err)

	_, err = f.app.Decline(ctx, req.ID, f.teamB)
	require.ErrorIs(t, err, models.ErrInvalidTransition)

	var terr *models.InvalidTransitionError
	require.True(t, errors.As(err, &terr))
	assert.Equal(t, models.MatchStatusConfirmed, terr.From)
	assert.Equal(t, models.MatchStatusDeclined, terr.To)

	got, err := f.app.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusConfirmed, got.Status)
	assert.Len(t, f.dispatcher.Events(), 2)
}

func TestStoredRequestIsNotAliasedByCallers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	msg := "bring bibs"
	in := f.request(f.teamA, f.teamB)
	in.Message = &msg
	created, err := f.app.CreateRequest(ctx, in)
	require.NoError(t, err)
	msg = "changed"

	f.clock.Advance(time.Hour)
	accepted, err := f.app.Accept(ctx, created.ID, f.teamB)
	require.NoError(t, err)
	respondedAt := *accepted.RespondedAt
	*accepted.RespondedAt = time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC)

	f.clock.Advance(time.Hour)
	result := "2-1"
	completed, err := f.app.Complete(ctx, created.ID, f.teamA, &result)
	require.NoError(t, err)
	completedAt := *completed.CompletedAt
	result = "0-5"
	*completed.CompletedAt = time.Time{}
	*completed.Result = "9-9"

	got, err := f.app.GetRequest(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Message)
	assert.Equal(t, "bring bibs", *got.Message)
	assert.Equal(t, respondedAt, *got.RespondedAt)
	assert.Equal(t, completedAt, *got.CompletedAt)
	require.NotNil(t, got.Result)
	assert.Equal(t, "2-1", *got.Result)

	*got.Message = "changed again"
	listed, err := f.app.ListForTeam(ctx, f.teamA, nil)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "bring bibs", *listed[0].Message)
}

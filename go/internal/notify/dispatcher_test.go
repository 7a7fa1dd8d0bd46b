package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/friendlies/go/internal/models"
)

func testEvent(recipients ...uuid.UUID) models.MatchEvent {
	from, to := uuid.New(), uuid.New()
	return models.MatchEvent{
		ID:         uuid.New(),
		Kind:       models.EventMatchRequestCreated,
		Recipients: recipients,
		OccurredAt: time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC),
		Request: models.MatchRequest{
			ID:         uuid.New(),
			FromTeamID: from,
			ToTeamID:   to,
			Status:     models.MatchStatusPending,
		},
	}
}

func TestMulti_AttemptsEveryDispatcher(t *testing.T) {
	var calls []string
	errA := errors.New("a failed")
	errC := errors.New("c failed")

	m := Multi{
		DispatcherFunc(func(context.Context, models.MatchEvent) error { calls = append(calls, "a"); return errA }),
		DispatcherFunc(func(context.Context, models.MatchEvent) error { calls = append(calls, "b"); return nil }),
		DispatcherFunc(func(context.Context, models.MatchEvent) error { calls = append(calls, "c"); return errC }),
	}

	err := m.Notify(context.Background(), testEvent())
	assert.Equal(t, []string{"a", "b", "c"}, calls)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errC)

	assert.NoError(t, Multi{}.Notify(context.Background(), testEvent()))
}

func TestRetrying_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	d := NewRetrying(DispatcherFunc(func(context.Context, models.MatchEvent) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}), RetryConfig{MaxRetries: 3, RetryDelay: time.Millisecond})

	require.NoError(t, d.Notify(context.Background(), testEvent()))
	assert.Equal(t, 3, attempts)
}

func TestRetrying_GivesUp(t *testing.T) {
	attempts := 0
	boom := errors.New("down")
	d := NewRetrying(DispatcherFunc(func(context.Context, models.MatchEvent) error {
		attempts++
		return boom
	}), RetryConfig{MaxRetries: 2, RetryDelay: time.Millisecond})

	err := d.Notify(context.Background(), testEvent())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, attempts)
}

func TestRetrying_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	d := NewRetrying(DispatcherFunc(func(context.Context, models.MatchEvent) error {
		attempts++
		cancel()
		return errors.New("down")
	}), RetryConfig{MaxRetries: 5, RetryDelay: time.Hour})

	err := d.Notify(ctx, testEvent())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestLogDispatcher_WritesEvent(t *testing.T) {
	var buf bytes.Buffer
	recipient := uuid.New()
	event := testEvent(recipient)

	require.NoError(t, NewLogDispatcher(zerolog.New(&buf)).Notify(context.Background(), event))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "match event", line["message"])
	assert.Equal(t, string(models.EventMatchRequestCreated), line["event_kind"])
	assert.Equal(t, event.Request.ID.String(), line["request_id"])
	assert.Equal(t, []any{recipient.String()}, line["recipients"])
}

func TestBuildMessage(t *testing.T) {
	recipient := uuid.New()
	event := testEvent(recipient)
	event.Kind = models.EventMatchRequestAccepted

	msg, err := buildMessage("matches.events.MatchRequestAccepted", event)
	require.NoError(t, err)
	assert.Equal(t, "matches.events.MatchRequestAccepted", msg.Subject)
	assert.Equal(t, string(models.EventMatchRequestAccepted), msg.Header.Get("Event-Kind"))
	assert.Equal(t, event.ID.String(), msg.Header.Get("Event-ID"))
	assert.Equal(t, event.Request.ID.String(), msg.Header.Get("Request-ID"))
	assert.Equal(t, []string{recipient.String()}, msg.Header.Values("Recipient-IDs"))

	var env envelope
	require.NoError(t, json.Unmarshal(msg.Data, &env))
	assert.Equal(t, event.ID.String(), env.EventID)
	assert.Equal(t, event.Request.ID, env.Request.ID)
	assert.True(t, event.OccurredAt.Equal(env.Timestamp))
}

func TestJetStreamDispatcher_Subject(t *testing.T) {
	d := &JetStreamDispatcher{config: DefaultJetStreamConfig()}
	assert.Equal(t, "matches.events.MatchRequestCompleted", d.Subject(models.EventMatchRequestCompleted))
}

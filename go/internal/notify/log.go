package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mcdev12/friendlies/go/internal/models"
)

// LogDispatcher writes every event to a zerolog logger. It never fails.
type LogDispatcher struct {
	logger zerolog.Logger
}

func NewLogDispatcher(logger zerolog.Logger) *LogDispatcher {
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Notify(ctx context.Context, event models.MatchEvent) error {
	recipients := zerolog.Arr()
	for _, r := range event.Recipients {
		recipients.Str(r.String())
	}

	d.logger.Info().
		Str("event_id", event.ID.String()).
		Str("event_kind", string(event.Kind)).
		Str("request_id", event.Request.ID.String()).
		Str("status", string(event.Request.Status)).
		Array("recipients", recipients).
		Msg("match event")
	return nil
}

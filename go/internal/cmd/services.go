package main

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/friendlies/go/internal/matches"
	"github.com/mcdev12/friendlies/go/internal/notify"
	"github.com/mcdev12/friendlies/go/internal/stats"
	"github.com/mcdev12/friendlies/go/internal/teams"
)

type Services struct {
	Teams   *teams.Service
	Matches *matches.Service
	Stats   *stats.Service

	// Hub is nil when websocket push is disabled
	Hub *notify.Hub

	closers []func() error
}

// Close releases the notification sinks
func (s *Services) Close() {
	for _, c := range s.closers {
		if err := c(); err != nil {
			log.Error().Err(err).Msg("failed to close notification sink")
		}
	}
}

func setupServices(ctx context.Context, storage *Storage, config NotifyConfig) (*Services, error) {
	// Wire up dependency injection chain
	// Storage → App layer → Service layer
	clock := clockwork.NewRealClock()
	services := &Services{}

	dispatcher, err := setupDispatcher(ctx, config, services)
	if err != nil {
		return nil, err
	}

	// Teams
	teamsApp := teams.NewApp(storage.Teams, clock)
	services.Teams = teams.NewService(teamsApp)

	// Matches
	matchesApp := matches.NewApp(storage.Matches, teamsApp, dispatcher, clock)
	services.Matches = matches.NewService(matchesApp)

	// Stats
	statsApp := stats.NewApp(teamsApp, matchesApp)
	services.Stats = stats.NewService(statsApp)

	return services, nil
}

// setupDispatcher fans events out to every enabled sink. Sinks that can fail
// transiently are wrapped in retries.
func setupDispatcher(ctx context.Context, config NotifyConfig, services *Services) (notify.Dispatcher, error) {
	var sinks notify.Multi

	if config.Log {
		sinks = append(sinks, notify.NewLogDispatcher(log.Logger))
	}
	if config.Websocket.Enabled {
		services.Hub = notify.NewHub(config.Websocket.Hub)
		sinks = append(sinks, services.Hub)
	}
	if config.NATS.Enabled {
		js, err := notify.NewJetStreamDispatcher(ctx, config.NATS.JetStream)
		if err != nil {
			return nil, fmt.Errorf("failed to set up JetStream dispatcher: %w", err)
		}
		services.closers = append(services.closers, js.Close)
		sinks = append(sinks, notify.NewRetrying(js, config.Retry))
	}

	log.Info().
		Bool("log", config.Log).
		Bool("websocket", config.Websocket.Enabled).
		Bool("nats", config.NATS.Enabled).
		Msg("notification sinks configured")
	return sinks, nil
}

package main

import (
	"fmt"
	"net/http"

	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/friendlies/go/internal/matches"
	"github.com/mcdev12/friendlies/go/internal/stats"
	"github.com/mcdev12/friendlies/go/internal/teams"
)

func setupServer(config ServerConfig, services *Services) *http.Server {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: config.AllowedOrigins,
		AllowedHeaders: []string{"*"},
	})

	// Register services
	registerServices(mux, services)

	// Add health check endpoint
	setupHealthCheck(mux)

	// Wrap with CORS
	handler := c.Handler(mux)

	// Setup HTTP/2 server. No write timeout: websocket streams stay open.
	return &http.Server{
		Addr:        fmt.Sprintf(":%s", config.Port),
		Handler:     h2c.NewHandler(handler, &http2.Server{}),
		ReadTimeout: config.ReadTimeout,
		IdleTimeout: config.IdleTimeout,
	}
}

func registerServices(mux *http.ServeMux, services *Services) {
	// Register team service
	teamServicePath, teamServiceHandler := teams.NewTeamServiceHandler(services.Teams)
	mux.Handle(teamServicePath, teamServiceHandler)

	// Register match service
	matchServicePath, matchServiceHandler := matches.NewMatchServiceHandler(services.Matches)
	mux.Handle(matchServicePath, matchServiceHandler)

	// Register stats service
	statsServicePath, statsServiceHandler := stats.NewStatsServiceHandler(services.Stats)
	mux.Handle(statsServicePath, statsServiceHandler)

	// Register notification stream
	if services.Hub != nil {
		mux.Handle("/ws/notifications", services.Hub)
	}
}

func setupHealthCheck(mux *http.ServeMux) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}

package stats

import (
	"context"
	"fmt"

	"github.com/mcdev12/friendlies/go/internal/models"
)

// TeamCounter is the slice of the team directory stats reads
type TeamCounter interface {
	CountTeams(ctx context.Context) (int, error)
	CountCities(ctx context.Context) (int, error)
}

// RequestCounter is the slice of the match request store stats reads
type RequestCounter interface {
	CountRequests(ctx context.Context, status *models.MatchStatus) (int, error)
}

// Summary holds the platform counters
type Summary struct {
	RegisteredTeams  int `json:"registered_teams"`
	MatchesOrganized int `json:"matches_organized"`
	CitiesCovered    int `json:"cities_covered"`
}

// App computes platform-wide counters
type App struct {
	teams    TeamCounter
	requests RequestCounter
}

func NewApp(teams TeamCounter, requests RequestCounter) *App {
	return &App{
		teams:    teams,
		requests: requests,
	}
}

// Summary counts registered teams, distinct cities and organized matches.
// A match counts as organized once it has been confirmed, including completed ones.
func (a *App) Summary(ctx context.Context) (*Summary, error) {
	teams, err := a.teams.CountTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count teams: %w", err)
	}
	cities, err := a.teams.CountCities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count cities: %w", err)
	}

	organized := 0
	for _, status := range []models.MatchStatus{models.MatchStatusConfirmed, models.MatchStatusCompleted} {
		n, err := a.requests.CountRequests(ctx, &status)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s requests: %w", status, err)
		}
		organized += n
	}

	return &Summary{
		RegisteredTeams:  teams,
		MatchesOrganized: organized,
		CitiesCovered:    cities,
	}, nil
}

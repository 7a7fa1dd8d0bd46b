package teams

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"

	"github.com/mcdev12/friendlies/go/internal/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// TeamsRepository defines what the app layer needs from the repository.
// ListAllTeams must return teams in registration order.
type TeamsRepository interface {
	CreateTeam(ctx context.Context, team *models.Team) error
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	ListAllTeams(ctx context.Context) ([]models.Team, error)
}

// App handles team directory business logic
type App struct {
	repo  TeamsRepository
	clock clockwork.Clock
}

// NewApp creates a new teams App
func NewApp(repo TeamsRepository, clock clockwork.Clock) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &App{
		repo:  repo,
		clock: clock,
	}
}

// RegisterTeam validates the request and stores a new team under a fresh id
func (a *App) RegisterTeam(ctx context.Context, req CreateTeamRequest) (*models.Team, error) {
	if err := validateCreateTeamRequest(req); err != nil {
		return nil, err
	}

	team := &models.Team{
		ID:              uuid.New(),
		Name:            req.Name,
		City:            req.City,
		ExperienceLevel: req.ExperienceLevel,
		ContactName:     req.ContactName,
		Email:           req.Email,
		Phone:           req.Phone,
		PreferredDays:   req.PreferredDays,
		Description:     req.Description,
		LogoRef:         req.LogoRef,
		HomeVenue:       req.HomeVenue,
		CreatedAt:       a.clock.Now().UTC(),
	}

	if err := a.repo.CreateTeam(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	log.Info().
		Str("team_id", team.ID.String()).
		Str("name", team.Name).
		Str("city", team.City).
		Msg("team registered")
	return team, nil
}

// GetTeam retrieves a team by ID
func (a *App) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	team, err := a.repo.GetTeam(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// TeamExists reports whether id resolves to a registered team
func (a *App) TeamExists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := a.repo.GetTeam(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, models.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("failed to look up team: %w", err)
	}
}

// Search returns the teams whose name, city or experience level contains term,
// ignoring case, in registration order. An empty term matches every team.
// The sequence reads from a snapshot taken at call time and can be ranged over repeatedly.
func (a *App) Search(ctx context.Context, term string) (iter.Seq[models.Team], error) {
	snapshot, err := a.repo.ListAllTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	return func(yield func(models.Team) bool) {
		matches := newTermMatcher(term)
		for _, team := range snapshot {
			if !matches(team) {
				continue
			}
			if !yield(team) {
				return
			}
		}
	}, nil
}

// SearchTeams collects Search into a slice
func (a *App) SearchTeams(ctx context.Context, term string) ([]models.Team, error) {
	seq, err := a.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	found := slices.Collect(seq)
	if found == nil {
		found = []models.Team{}
	}
	return found, nil
}

// CountTeams returns the number of registered teams
func (a *App) CountTeams(ctx context.Context) (int, error) {
	all, err := a.repo.ListAllTeams(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list teams: %w", err)
	}
	return len(all), nil
}

// CountCities returns the number of distinct cities, compared without case
func (a *App) CountCities(ctx context.Context) (int, error) {
	all, err := a.repo.ListAllTeams(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list teams: %w", err)
	}

	folder := cases.Fold()
	cities := make(map[string]struct{}, len(all))
	for _, team := range all {
		cities[strings.TrimSpace(folder.String(team.City))] = struct{}{}
	}
	return len(cities), nil
}

// newTermMatcher builds the case-insensitive substring predicate used by Search.
// The returned func is not safe for concurrent use.
func newTermMatcher(term string) func(models.Team) bool {
	if term == "" {
		return func(models.Team) bool { return true }
	}

	folder := cases.Fold()
	needle := folder.String(term)
	return func(team models.Team) bool {
		for _, field := range []string{team.Name, team.City, string(team.ExperienceLevel)} {
			if strings.Contains(folder.String(field), needle) {
				return true
			}
		}
		return false
	}
}

// validateCreateTeamRequest reports every violated field at once
func validateCreateTeamRequest(req CreateTeamRequest) error {
	verr := &models.ValidationError{}

	if strings.TrimSpace(req.Name) == "" {
		verr.Add("name", "is required")
	}
	if strings.TrimSpace(req.ContactName) == "" {
		verr.Add("contact_name", "is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		verr.Add("email", "is required")
	} else if !emailPattern.MatchString(req.Email) {
		verr.Add("email", "is not a valid email address")
	}
	if strings.TrimSpace(req.City) == "" {
		verr.Add("city", "is required")
	}
	if !req.ExperienceLevel.Valid() {
		verr.Add("experience_level", fmt.Sprintf("invalid experience level: %q", req.ExperienceLevel))
	}
	if !req.PreferredDays.Valid() {
		verr.Add("preferred_days", fmt.Sprintf("invalid preferred days: %q", req.PreferredDays))
	}

	return verr.OrNil()
}

package teams

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mcdev12/friendlies/go/internal/models"
	"github.com/mcdev12/friendlies/go/internal/sqlutil"
)

const teamColumns = `id, name, city, experience_level, contact_name, email, phone,
	preferred_days, description, logo_ref, home_venue, created_at`

// Repository implements team data access on PostgreSQL
type Repository struct {
	db sqlutil.DBTX
}

// NewRepository creates a new Postgres teams repository
func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{
		db: db,
	}
}

var _ TeamsRepository = (*Repository)(nil)

// CreateTeam inserts a team; the serial seq column records registration order
func (r *Repository) CreateTeam(ctx context.Context, team *models.Team) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO teams (`+teamColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		team.ID, team.Name, team.City, string(team.ExperienceLevel), team.ContactName, team.Email,
		sqlutil.ToPgText(team.Phone), string(team.PreferredDays), sqlutil.ToPgText(team.Description),
		sqlutil.ToPgText(team.LogoRef), sqlutil.ToPgText(team.HomeVenue), team.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert team: %w", err)
	}
	return nil
}

// GetTeam retrieves a team by ID
func (r *Repository) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	row := r.db.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)

	team, err := scanTeam(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &models.NotFoundError{Resource: "team", ID: id}
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// ListAllTeams returns every team in registration order
func (r *Repository) ListAllTeams(ctx context.Context) ([]models.Team, error) {
	rows, err := r.db.Query(ctx, `SELECT `+teamColumns+` FROM teams ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, *team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}
	return teams, nil
}

// scanTeam converts a database row to the domain model
func scanTeam(row pgx.Row) (*models.Team, error) {
	var (
		team                                   models.Team
		experience, preferred                  string
		phone, description, logoRef, homeVenue pgtype.Text
	)
	err := row.Scan(
		&team.ID, &team.Name, &team.City, &experience, &team.ContactName, &team.Email, &phone,
		&preferred, &description, &logoRef, &homeVenue, &team.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	team.ExperienceLevel = models.ExperienceLevel(experience)
	team.PreferredDays = models.PreferredDays(preferred)
	team.Phone = sqlutil.FromPgText(phone)
	team.Description = sqlutil.FromPgText(description)
	team.LogoRef = sqlutil.FromPgText(logoRef)
	team.HomeVenue = sqlutil.FromPgText(homeVenue)
	team.CreatedAt = team.CreatedAt.UTC()
	return &team, nil
}

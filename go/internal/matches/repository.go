package matches

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

const matchRequestColumns = `id, from_team_id, to_team_id, proposed_date, proposed_time, venue, match_type,
	message, status, result, created_at, responded_at, completed_at`

// Repository implements match request data access on PostgreSQL
type Repository struct {
	db sqlutil.DBTX
}

// NewRepository creates a new Postgres match request repository
func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{
		db: db,
	}
}

var _ MatchesRepository = (*Repository)(nil)

// CreateMatchRequest inserts a request; the serial seq column records insertion order
func (r *Repository) CreateMatchRequest(ctx context.Context, req *models.MatchRequest) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO match_requests (`+matchRequestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		req.ID, req.FromTeamID, req.ToTeamID, sqlutil.ToPgDate(req.ProposedDate), req.ProposedTime.String(),
		req.Venue, string(req.MatchType), sqlutil.ToPgText(req.Message), string(req.Status),
		sqlutil.ToPgText(req.Result), req.CreatedAt, sqlutil.ToPgTimestamptz(req.RespondedAt),
		sqlutil.ToPgTimestamptz(req.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert match request: %w", err)
	}
	return nil
}

// GetMatchRequest retrieves a match request by ID
func (r *Repository) GetMatchRequest(ctx context.Context, id uuid.UUID) (*models.MatchRequest, error) {
	row := r.db.QueryRow(ctx, `SELECT `+matchRequestColumns+` FROM match_requests WHERE id = $1`, id)

	req, err := scanMatchRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &models.NotFoundError{Resource: "match request", ID: id}
		}
		return nil, fmt.Errorf("failed to get match request: %w", err)
	}
	return req, nil
}

// TransitionMatchRequest updates the status in a single statement guarded by the
// expected status, so concurrent callers cannot both succeed
func (r *Repository) TransitionMatchRequest(ctx context.Context, t Transition) (*models.MatchRequest, error) {
	var respondedAt, completedAt pgtype.Timestamptz
	if t.From == models.MatchStatusPending {
		respondedAt = sqlutil.ToPgTimestamptz(&t.At)
	}
	if t.To == models.MatchStatusCompleted {
		completedAt = sqlutil.ToPgTimestamptz(&t.At)
	}

	row := r.db.QueryRow(ctx, `
		UPDATE match_requests
		SET status       = $3,
		    responded_at = COALESCE(responded_at, $4::timestamptz),
		    completed_at = COALESCE($5::timestamptz, completed_at),
		    result       = CASE WHEN $5::timestamptz IS NULL THEN result ELSE $6::text END
		WHERE id = $1 AND status = $2
		RETURNING `+matchRequestColumns,
		t.RequestID, string(t.From), string(t.To), respondedAt, completedAt, sqlutil.ToPgText(t.Result),
	)

	req, err := scanMatchRequest(row)
	if err == nil {
		return req, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to update match request: %w", err)
	}

	// Nothing matched: either the id is unknown or another transition got there first
	current, err := r.GetMatchRequest(ctx, t.RequestID)
	if err != nil {
		return nil, err
	}
	return nil, &models.InvalidTransitionError{RequestID: t.RequestID, From: current.Status, To: t.To}
}

// ListMatchRequestsForTeam returns the team's requests oldest first
func (r *Repository) ListMatchRequestsForTeam(ctx context.Context, teamID uuid.UUID, status *models.MatchStatus) ([]models.MatchRequest, error) {
	var statusFilter pgtype.Text
	if status != nil {
		statusFilter = pgtype.Text{String: string(*status), Valid: true}
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+matchRequestColumns+`
		FROM match_requests
		WHERE (from_team_id = $1 OR to_team_id = $1)
		  AND ($2::text IS NULL OR status = $2::text)
		ORDER BY created_at, seq`,
		teamID, statusFilter,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query match requests: %w", err)
	}
	defer rows.Close()

	var reqs []models.MatchRequest
	for rows.Next() {
		req, err := scanMatchRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match request: %w", err)
		}
		reqs = append(reqs, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match requests: %w", err)
	}
	return reqs, nil
}

// CountMatchRequests counts requests, optionally only those in status
func (r *Repository) CountMatchRequests(ctx context.Context, status *models.MatchStatus) (int, error) {
	var statusFilter pgtype.Text
	if status != nil {
		statusFilter = pgtype.Text{String: string(*status), Valid: true}
	}

	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM match_requests WHERE $1::text IS NULL OR status = $1::text`,
		statusFilter,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count match requests: %w", err)
	}
	return int(n), nil
}

// scanMatchRequest converts a database row to the domain model
func scanMatchRequest(row pgx.Row) (*models.MatchRequest, error) {
	var (
		req                      models.MatchRequest
		proposedDate             pgtype.Date
		proposedTime             string
		matchType, status        string
		message, result          pgtype.Text
		respondedAt, completedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&req.ID, &req.FromTeamID, &req.ToTeamID, &proposedDate, &proposedTime, &req.Venue, &matchType,
		&message, &status, &result, &req.CreatedAt, &respondedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	tod, err := models.ParseTimeOfDay(proposedTime)
	if err != nil {
		return nil, fmt.Errorf("stored match request %s: %w", req.ID, err)
	}

	req.ProposedDate = sqlutil.FromPgDate(proposedDate)
	req.ProposedTime = tod
	req.MatchType = models.MatchType(matchType)
	req.Status = models.MatchStatus(status)
	req.Message = sqlutil.FromPgText(message)
	req.Result = sqlutil.FromPgText(result)
	req.CreatedAt = req.CreatedAt.UTC()
	req.RespondedAt = sqlutil.FromPgTimestamptz(respondedAt)
	req.CompletedAt = sqlutil.FromPgTimestamptz(completedAt)
	return &req, nil
}

package teams

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mcdev12/friendlies/go/internal/models"
)

// MemoryRepository keeps teams in process memory, in registration order
type MemoryRepository struct {
	mu    sync.RWMutex
	teams []models.Team
	index map[uuid.UUID]int
}

// NewMemoryRepository creates an empty in-memory teams repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		index: make(map[uuid.UUID]int),
	}
}

var _ TeamsRepository = (*MemoryRepository)(nil)

// CreateTeam appends a team
func (r *MemoryRepository) CreateTeam(ctx context.Context, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[team.ID]; exists {
		return fmt.Errorf("team %s already exists", team.ID)
	}
	r.index[team.ID] = len(r.teams)
	r.teams = append(r.teams, team.Clone())
	return nil
}

// GetTeam retrieves a team by ID
func (r *MemoryRepository) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "team", ID: id}
	}
	team := r.teams[i].Clone()
	return &team, nil
}

// ListAllTeams returns a copy of every team in registration order
func (r *MemoryRepository) ListAllTeams(ctx context.Context) ([]models.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Team, len(r.teams))
	for i, team := range r.teams {
		out[i] = team.Clone()
	}
	return out, nil
}

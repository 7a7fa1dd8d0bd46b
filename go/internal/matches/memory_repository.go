package matches

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/mcdev12/friendlies/go/internal/models"
)

// MemoryRepository keeps match requests in process memory. One mutex guards every
// check-and-write so at most one transition wins per request.
type MemoryRepository struct {
	mu       sync.RWMutex
	requests []models.MatchRequest
	index    map[uuid.UUID]int
}

// NewMemoryRepository creates an empty in-memory match request repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		index: make(map[uuid.UUID]int),
	}
}

var _ MatchesRepository = (*MemoryRepository)(nil)

func (r *MemoryRepository) CreateMatchRequest(ctx context.Context, req *models.MatchRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[req.ID]; exists {
		return fmt.Errorf("match request %s already exists", req.ID)
	}
	r.index[req.ID] = len(r.requests)
	r.requests = append(r.requests, req.Clone())
	return nil
}

func (r *MemoryRepository) GetMatchRequest(ctx context.Context, id uuid.UUID) (*models.MatchRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "match request", ID: id}
	}
	req := r.requests[i].Clone()
	return &req, nil
}

func (r *MemoryRepository) TransitionMatchRequest(ctx context.Context, t Transition) (*models.MatchRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[t.RequestID]
	if !ok {
		return nil, &models.NotFoundError{Resource: "match request", ID: t.RequestID}
	}
	stored := &r.requests[i]
	if stored.Status != t.From {
		return nil, &models.InvalidTransitionError{RequestID: t.RequestID, From: stored.Status, To: t.To}
	}

	t.apply(stored)
	out := stored.Clone()
	return &out, nil
}

func (r *MemoryRepository) ListMatchRequestsForTeam(ctx context.Context, teamID uuid.UUID, status *models.MatchStatus) ([]models.MatchRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.MatchRequest
	for _, req := range r.requests {
		if !req.Involves(teamID) {
			continue
		}
		if status != nil && req.Status != *status {
			continue
		}
		out = append(out, req.Clone())
	}

	// requests is already in insertion order; a stable sort keeps it for equal timestamps
	slices.SortStableFunc(out, func(a, b models.MatchRequest) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) CountMatchRequests(ctx context.Context, status *models.MatchStatus) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if status == nil {
		return len(r.requests), nil
	}
	n := 0
	for _, req := range r.requests {
		if req.Status == *status {
			n++
		}
	}
	return n, nil
}

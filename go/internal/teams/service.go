package teams

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mcdev12/friendlies/go/internal/models"
	"github.com/mcdev12/friendlies/go/internal/rpc"
)

// TeamServiceName is the fully-qualified name of the team directory service
const TeamServiceName = "friendlies.team.v1.TeamService"

// TeamsApp defines what the service layer needs from the teams application
type TeamsApp interface {
	RegisterTeam(ctx context.Context, req CreateTeamRequest) (*models.Team, error)
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	SearchTeams(ctx context.Context, term string) ([]models.Team, error)
}

type RegisterTeamResponse struct {
	Team *models.Team `json:"team"`
}

type GetTeamRequest struct {
	ID string `json:"id"`
}

type GetTeamResponse struct {
	Team *models.Team `json:"team"`
}

type SearchTeamsRequest struct {
	Term string `json:"term"`
}

type SearchTeamsResponse struct {
	Teams []models.Team `json:"teams"`
}

// Service exposes the team directory over connect
type Service struct {
	app TeamsApp
}

// NewService creates a new teams service
func NewService(app TeamsApp) *Service {
	return &Service{
		app: app,
	}
}

// NewTeamServiceHandler builds an HTTP handler for every TeamService procedure and
// returns the path prefix to mount it on.
func NewTeamServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	handlerOpts := rpc.HandlerOptions(opts...)
	mux := http.NewServeMux()
	mux.Handle(rpc.Procedure(TeamServiceName, "RegisterTeam"),
		connect.NewUnaryHandler(rpc.Procedure(TeamServiceName, "RegisterTeam"), svc.RegisterTeam, handlerOpts...))
	mux.Handle(rpc.Procedure(TeamServiceName, "GetTeam"),
		connect.NewUnaryHandler(rpc.Procedure(TeamServiceName, "GetTeam"), svc.GetTeam, handlerOpts...))
	mux.Handle(rpc.Procedure(TeamServiceName, "SearchTeams"),
		connect.NewUnaryHandler(rpc.Procedure(TeamServiceName, "SearchTeams"), svc.SearchTeams, handlerOpts...))
	return "/" + TeamServiceName + "/", mux
}

// RegisterTeam registers a new team
func (s *Service) RegisterTeam(ctx context.Context, req *connect.Request[CreateTeamRequest]) (*connect.Response[RegisterTeamResponse], error) {
	team, err := s.app.RegisterTeam(ctx, *req.Msg)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&RegisterTeamResponse{Team: team}), nil
}

// GetTeam retrieves a team by ID
func (s *Service) GetTeam(ctx context.Context, req *connect.Request[GetTeamRequest]) (*connect.Response[GetTeamResponse], error) {
	id, err := rpc.ParseID("id", req.Msg.ID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}

	team, err := s.app.GetTeam(ctx, id)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&GetTeamResponse{Team: team}), nil
}

// SearchTeams lists teams matching a free-text term
func (s *Service) SearchTeams(ctx context.Context, req *connect.Request[SearchTeamsRequest]) (*connect.Response[SearchTeamsResponse], error) {
	teams, err := s.app.SearchTeams(ctx, req.Msg.Term)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&SearchTeamsResponse{Teams: teams}), nil
}

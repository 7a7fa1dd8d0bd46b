package matches

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mcdev12/friendlies/go/internal/models"
	"github.com/mcdev12/friendlies/go/internal/rpc"
)

const (
	// MatchServiceName is the fully-qualified name of the match request service
	MatchServiceName = "friendlies.match.v1.MatchService"

	// ActingTeamHeader carries the acting team id when a request body omits acting_team_id
	ActingTeamHeader = "Friendlies-Team-Id"
)

// MatchesApp defines what the service layer needs from the matches application
type MatchesApp interface {
	CreateRequest(ctx context.Context, req CreateMatchRequest) (*models.MatchRequest, error)
	Accept(ctx context.Context, requestID, actingTeamID uuid.UUID) (*models.MatchRequest, error)
	Decline(ctx context.Context, requestID, actingTeamID uuid.UUID) (*models.MatchRequest, error)
	Complete(ctx context.Context, requestID, actingTeamID uuid.UUID, result *string) (*models.MatchRequest, error)
	GetRequest(ctx context.Context, id uuid.UUID) (*models.MatchRequest, error)
	ListForTeam(ctx context.Context, teamID uuid.UUID, status *models.MatchStatus) ([]models.MatchRequest, error)
}

// CreateRequestRequest is the body of CreateRequest
type CreateRequestRequest struct {
	FromTeamID   string           `json:"from_team_id"`
	ToTeamID     string           `json:"to_team_id"`
	ProposedDate string           `json:"proposed_date"`
	ProposedTime string           `json:"proposed_time"`
	Venue        string           `json:"venue"`
	MatchType    models.MatchType `json:"match_type"`
	Message      *string          `json:"message,omitempty"`
}

// RespondRequest is the body of AcceptRequest and DeclineRequest
type RespondRequest struct {
	RequestID    string `json:"request_id"`
	ActingTeamID string `json:"acting_team_id,omitempty"`
}

// CompleteRequestRequest is the body of CompleteRequest; Result is optional
type CompleteRequestRequest struct {
	RequestID    string  `json:"request_id"`
	ActingTeamID string  `json:"acting_team_id,omitempty"`
	Result       *string `json:"result,omitempty"`
}

// MatchRequestResponse wraps a single request together with how the caller sees it
type MatchRequestResponse struct {
	Request   *models.MatchRequest `json:"request"`
	Direction models.Direction     `json:"direction,omitempty"`
}

// GetRequestRequest is the body of GetRequest
type GetRequestRequest struct {
	RequestID    string `json:"request_id"`
	ActingTeamID string `json:"acting_team_id,omitempty"`
}

// ListForTeamRequest is the body of ListForTeam; Status narrows the list when set
type ListForTeamRequest struct {
	TeamID string              `json:"team_id"`
	Status *models.MatchStatus `json:"status,omitempty"`
}

// ListedMatchRequest is one entry of a team's list, labelled Sent or Received
type ListedMatchRequest struct {
	models.MatchRequest
	Direction models.Direction `json:"direction"`
}

// ListForTeamResponse holds a team's requests, oldest first
type ListForTeamResponse struct {
	Requests []ListedMatchRequest `json:"requests"`
}

// Service exposes the match request lifecycle over connect
type Service struct {
	app MatchesApp
}

// NewService creates a new matches service
func NewService(app MatchesApp) *Service {
	return &Service{
		app: app,
	}
}

// NewMatchServiceHandler builds an HTTP handler for every MatchService procedure and
// returns the path prefix to mount it on.
func NewMatchServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	handlerOpts := rpc.HandlerOptions(opts...)
	mux := http.NewServeMux()
	mux.Handle(rpc.Procedure(MatchServiceName, "CreateRequest"),
		connect.NewUnaryHandler(rpc.Procedure(MatchServiceName, "CreateRequest"), svc.CreateRequest, handlerOpts...))
	mux.Handle(rpc.Procedure(MatchServiceName, "AcceptRequest"),
		connect.NewUnaryHandler(rpc.Procedure(MatchServiceName, "AcceptRequest"), svc.AcceptRequest, handlerOpts...))
	mux.Handle(rpc.Procedure(MatchServiceName, "DeclineRequest"),
		connect.NewUnaryHandler(rpc.Procedure(MatchServiceName, "DeclineRequest"), svc.DeclineRequest, handlerOpts...))
	mux.Handle(rpc.Procedure(MatchServiceName, "CompleteRequest"),
		connect.NewUnaryHandler(rpc.Procedure(MatchServiceName, "CompleteRequest"), svc.CompleteRequest, handlerOpts...))
	mux.Handle(rpc.Procedure(MatchServiceName, "GetRequest"),
		connect.NewUnaryHandler(rpc.Procedure(MatchServiceName, "GetRequest"), svc.GetRequest, handlerOpts...))
	mux.Handle(rpc.Procedure(MatchServiceName, "ListForTeam"),
		connect.NewUnaryHandler(rpc.Procedure(MatchServiceName, "ListForTeam"), svc.ListForTeam, handlerOpts...))
	return "/" + MatchServiceName + "/", mux
}

// CreateRequest proposes a match
func (s *Service) CreateRequest(ctx context.Context, req *connect.Request[CreateRequestRequest]) (*connect.Response[MatchRequestResponse], error) {
	// Malformed ids are reported alongside the app's own violations
	verr := &models.ValidationError{}
	from := parseOptionalID(verr, "from_team_id", req.Msg.FromTeamID)
	to := parseOptionalID(verr, "to_team_id", req.Msg.ToTeamID)
	if err := verr.OrNil(); err != nil {
		return nil, rpc.ToConnectError(err)
	}

	match, err := s.app.CreateRequest(ctx, CreateMatchRequest{
		FromTeamID:   from,
		ToTeamID:     to,
		ProposedDate: req.Msg.ProposedDate,
		ProposedTime: req.Msg.ProposedTime,
		Venue:        req.Msg.Venue,
		MatchType:    req.Msg.MatchType,
		Message:      req.Msg.Message,
	})
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&MatchRequestResponse{Request: match, Direction: models.DirectionSent}), nil
}

// AcceptRequest confirms a pending request on behalf of the receiving team
func (s *Service) AcceptRequest(ctx context.Context, req *connect.Request[RespondRequest]) (*connect.Response[MatchRequestResponse], error) {
	return s.respond(ctx, req, s.app.Accept)
}

// DeclineRequest rejects a pending request on behalf of the receiving team
func (s *Service) DeclineRequest(ctx context.Context, req *connect.Request[RespondRequest]) (*connect.Response[MatchRequestResponse], error) {
	return s.respond(ctx, req, s.app.Decline)
}

func (s *Service) respond(
	ctx context.Context,
	req *connect.Request[RespondRequest],
	fn func(ctx context.Context, requestID, actingTeamID uuid.UUID) (*models.MatchRequest, error),
) (*connect.Response[MatchRequestResponse], error) {
	requestID, actingTeamID, err := parseActing(req.Msg.RequestID, req.Msg.ActingTeamID, req.Header())
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}

	match, err := fn(ctx, requestID, actingTeamID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&MatchRequestResponse{Request: match, Direction: match.DirectionFor(actingTeamID)}), nil
}

// CompleteRequest records the result of a confirmed match
func (s *Service) CompleteRequest(ctx context.Context, req *connect.Request[CompleteRequestRequest]) (*connect.Response[MatchRequestResponse], error) {
	requestID, actingTeamID, err := parseActing(req.Msg.RequestID, req.Msg.ActingTeamID, req.Header())
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}

	match, err := s.app.Complete(ctx, requestID, actingTeamID, req.Msg.Result)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&MatchRequestResponse{Request: match, Direction: match.DirectionFor(actingTeamID)}), nil
}

// GetRequest retrieves a match request by ID. The direction is filled in when an acting team is given.
func (s *Service) GetRequest(ctx context.Context, req *connect.Request[GetRequestRequest]) (*connect.Response[MatchRequestResponse], error) {
	requestID, err := rpc.ParseID("request_id", req.Msg.RequestID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}

	match, err := s.app.GetRequest(ctx, requestID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}

	resp := &MatchRequestResponse{Request: match}
	if acting := actingTeamValue(req.Msg.ActingTeamID, req.Header()); acting != "" {
		actingTeamID, err := rpc.ParseID("acting_team_id", acting)
		if err != nil {
			return nil, rpc.ToConnectError(err)
		}
		resp.Direction = match.DirectionFor(actingTeamID)
	}
	return connect.NewResponse(resp), nil
}

// ListForTeam lists the requests a team sent or received, oldest first
func (s *Service) ListForTeam(ctx context.Context, req *connect.Request[ListForTeamRequest]) (*connect.Response[ListForTeamResponse], error) {
	teamID, err := rpc.ParseID("team_id", req.Msg.TeamID)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}

	reqs, err := s.app.ListForTeam(ctx, teamID, req.Msg.Status)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}

	listed := make([]ListedMatchRequest, len(reqs))
	for i, r := range reqs {
		listed[i] = ListedMatchRequest{MatchRequest: r, Direction: r.DirectionFor(teamID)}
	}
	return connect.NewResponse(&ListForTeamResponse{Requests: listed}), nil
}

// parseActing resolves the request id and the acting team, preferring the body over the header
func parseActing(requestID, actingTeamID string, header http.Header) (uuid.UUID, uuid.UUID, error) {
	verr := &models.ValidationError{}

	rid, err := rpc.ParseID("request_id", requestID)
	if err != nil {
		verr.Add("request_id", "must be a valid uuid")
	}

	var tid uuid.UUID
	if acting := actingTeamValue(actingTeamID, header); acting == "" {
		verr.Add("acting_team_id", "is required")
	} else if tid, err = rpc.ParseID("acting_team_id", acting); err != nil {
		verr.Add("acting_team_id", "must be a valid uuid")
	}

	if err := verr.OrNil(); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return rid, tid, nil
}

func actingTeamValue(field string, header http.Header) string {
	if field != "" {
		return field
	}
	return header.Get(ActingTeamHeader)
}

// parseOptionalID leaves an empty value as uuid.Nil for the app to report as required
func parseOptionalID(verr *models.ValidationError, field, value string) uuid.UUID {
	if value == "" {
		return uuid.Nil
	}
	id, err := rpc.ParseID(field, value)
	if err != nil {
		var fieldErr *models.ValidationError
		if errors.As(err, &fieldErr) {
			verr.Fields = append(verr.Fields, fieldErr.Fields...)
		}
		return uuid.Nil
	}
	return id
}

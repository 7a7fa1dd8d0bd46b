package stats

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mcdev12/friendlies/go/internal/rpc"
)

// StatsServiceName is the fully-qualified name of the stats service
const StatsServiceName = "friendlies.stats.v1.StatsService"

type SummaryProvider interface {
	Summary(ctx context.Context) (*Summary, error)
}

type GetSummaryRequest struct{}

type GetSummaryResponse struct {
	Summary *Summary `json:"summary"`
}

// Service exposes platform counters over connect
type Service struct {
	app SummaryProvider
}

func NewService(app SummaryProvider) *Service {
	return &Service{app: app}
}

// NewStatsServiceHandler returns the path prefix and handler for StatsService
func NewStatsServiceHandler(svc *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	procedure := rpc.Procedure(StatsServiceName, "GetSummary")
	mux := http.NewServeMux()
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, svc.GetSummary, rpc.HandlerOptions(opts...)...))
	return "/" + StatsServiceName + "/", mux
}

func (s *Service) GetSummary(ctx context.Context, req *connect.Request[GetSummaryRequest]) (*connect.Response[GetSummaryResponse], error) {
	summary, err := s.app.Summary(ctx)
	if err != nil {
		return nil, rpc.ToConnectError(err)
	}
	return connect.NewResponse(&GetSummaryResponse{Summary: summary}), nil
}

package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/kudos/internal/engine"
	"github.com/mmynk/kudos/pkg/api"
	"github.com/mmynk/kudos/pkg/api/apiconnect"
)

// DashboardService implements the Connect DashboardService
type DashboardService struct {
	apiconnect.UnimplementedDashboardServiceHandler
	engine *engine.Engine
}

// NewDashboardService creates a new DashboardService backed by the engine.
func NewDashboardService(eng *engine.Engine) *DashboardService {
	return &DashboardService{engine: eng}
}

// GetDashboard returns the current actor's votes and earnings for a period.
func (s *DashboardService) GetDashboard(ctx context.Context, req *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error) {
	userID, err := currentActor(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetDashboard request received", "user_id", userID, "month", req.Msg.Month, "year", req.Msg.Year)

	dash, err := s.engine.Dashboard(ctx, userID, periodFromRequest(req.Msg.Month, req.Msg.Year))
	if err != nil {
		slog.Error("GetDashboard failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetDashboardResponse{
		UserId:                dash.UserID,
		Month:                 dash.Period.Month,
		Year:                  dash.Period.Year,
		VotesCast:             dash.VotesCast,
		MaxVotes:              dash.MaxVotes,
		Remaining:             dash.Remaining,
		VotesReceived:         dash.VotesReceived,
		EarningsThisPeriod:    dash.EarningsThisPeriod,
		LifetimeVotesReceived: dash.LifetimeVotesReceived,
		LifetimeEarnings:      dash.LifetimeEarnings,
	}), nil
}

// GetLeaderboard ranks the recipients of a period.
func (s *DashboardService) GetLeaderboard(ctx context.Context, req *connect.Request[api.GetLeaderboardRequest]) (*connect.Response[api.GetLeaderboardResponse], error) {
	slog.Info("GetLeaderboard request received", "month", req.Msg.Month, "year", req.Msg.Year, "limit", req.Msg.Limit)

	board, err := s.engine.Leaderboard(ctx, periodFromRequest(req.Msg.Month, req.Msg.Year), req.Msg.Limit)
	if err != nil {
		slog.Error("GetLeaderboard failed", "error", err)
		return nil, toConnectError(err)
	}

	entries := make([]*api.LeaderboardEntry, len(board.Entries))
	for i, e := range board.Entries {
		entries[i] = &api.LeaderboardEntry{
			Rank:          e.Rank,
			UserId:        e.UserID,
			Name:          e.Name,
			Email:         e.Email,
			Group:         e.Group,
			VotesReceived: e.VotesReceived,
			Earnings:      e.Earnings,
		}
	}

	slog.Info("GetLeaderboard successful", "period", board.Period.String(), "count", len(entries))

	return connect.NewResponse(&api.GetLeaderboardResponse{
		Month:   board.Period.Month,
		Year:    board.Period.Year,
		Entries: entries,
	}), nil
}

// GetCurrentUser returns the directory record of the current actor.
func (s *DashboardService) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	userID, err := currentActor(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetCurrentUser request received", "user_id", userID)

	user, err := s.engine.User(ctx, userID)
	if err != nil {
		slog.Error("GetCurrentUser failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetCurrentUserResponse{User: userToAPI(user)}), nil
}

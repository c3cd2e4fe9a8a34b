// Package apiconnect wires the kudos.v1 services to Connect handlers and
// clients. Every handler and client is built with api.Codec.
package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/kudos/pkg/api"
)

const (
	// VoteServiceName is the fully-qualified name of the VoteService service.
	VoteServiceName = "kudos.v1.VoteService"
	// DashboardServiceName is the fully-qualified name of the DashboardService service.
	DashboardServiceName = "kudos.v1.DashboardService"
)

// Procedure paths, in the form "/<service>/<method>".
const (
	VoteServiceCastVoteProcedure               = "/kudos.v1.VoteService/CastVote"
	VoteServiceListMyVotesProcedure            = "/kudos.v1.VoteService/ListMyVotes"
	VoteServiceListEligibleRecipientsProcedure = "/kudos.v1.VoteService/ListEligibleRecipients"
	DashboardServiceGetDashboardProcedure      = "/kudos.v1.DashboardService/GetDashboard"
	DashboardServiceGetLeaderboardProcedure    = "/kudos.v1.DashboardService/GetLeaderboard"
	DashboardServiceGetCurrentUserProcedure    = "/kudos.v1.DashboardService/GetCurrentUser"
)

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)
}

// routes dispatches a service prefix to its unary handlers.
func routes(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// VoteServiceHandler is implemented by the vote service.
type VoteServiceHandler interface {
	CastVote(context.Context, *connect.Request[api.CastVoteRequest]) (*connect.Response[api.CastVoteResponse], error)
	ListMyVotes(context.Context, *connect.Request[api.ListMyVotesRequest]) (*connect.Response[api.ListMyVotesResponse], error)
	ListEligibleRecipients(context.Context, *connect.Request[api.ListEligibleRecipientsRequest]) (*connect.Response[api.ListEligibleRecipientsResponse], error)
}

// NewVoteServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewVoteServiceHandler(svc VoteServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + VoteServiceName + "/", routes(map[string]http.Handler{
		VoteServiceCastVoteProcedure: connect.NewUnaryHandler(
			VoteServiceCastVoteProcedure, svc.CastVote, opts...,
		),
		VoteServiceListMyVotesProcedure: connect.NewUnaryHandler(
			VoteServiceListMyVotesProcedure, svc.ListMyVotes,
			append(opts, connect.WithIdempotency(connect.IdempotencyNoSideEffects))...,
		),
		VoteServiceListEligibleRecipientsProcedure: connect.NewUnaryHandler(
			VoteServiceListEligibleRecipientsProcedure, svc.ListEligibleRecipients,
			append(opts, connect.WithIdempotency(connect.IdempotencyNoSideEffects))...,
		),
	})
}

// UnimplementedVoteServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedVoteServiceHandler struct{}

func (UnimplementedVoteServiceHandler) CastVote(context.Context, *connect.Request[api.CastVoteRequest]) (*connect.Response[api.CastVoteResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("kudos.v1.VoteService.CastVote is not implemented"))
}

func (UnimplementedVoteServiceHandler) ListMyVotes(context.Context, *connect.Request[api.ListMyVotesRequest]) (*connect.Response[api.ListMyVotesResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("kudos.v1.VoteService.ListMyVotes is not implemented"))
}

func (UnimplementedVoteServiceHandler) ListEligibleRecipients(context.Context, *connect.Request[api.ListEligibleRecipientsRequest]) (*connect.Response[api.ListEligibleRecipientsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("kudos.v1.VoteService.ListEligibleRecipients is not implemented"))
}

// VoteServiceClient is a client for the kudos.v1.VoteService service.
type VoteServiceClient interface {
	CastVote(context.Context, *connect.Request[api.CastVoteRequest]) (*connect.Response[api.CastVoteResponse], error)
	ListMyVotes(context.Context, *connect.Request[api.ListMyVotesRequest]) (*connect.Response[api.ListMyVotesResponse], error)
	ListEligibleRecipients(context.Context, *connect.Request[api.ListEligibleRecipientsRequest]) (*connect.Response[api.ListEligibleRecipientsResponse], error)
}

// NewVoteServiceClient constructs a client for kudos.v1.VoteService. baseURL
// is the server root, e.g. http://localhost:8080.
func NewVoteServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) VoteServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &voteServiceClient{
		castVote: connect.NewClient[api.CastVoteRequest, api.CastVoteResponse](
			httpClient, baseURL+VoteServiceCastVoteProcedure, opts...,
		),
		listMyVotes: connect.NewClient[api.ListMyVotesRequest, api.ListMyVotesResponse](
			httpClient, baseURL+VoteServiceListMyVotesProcedure, opts...,
		),
		listEligibleRecipients: connect.NewClient[api.ListEligibleRecipientsRequest, api.ListEligibleRecipientsResponse](
			httpClient, baseURL+VoteServiceListEligibleRecipientsProcedure, opts...,
		),
	}
}

type voteServiceClient struct {
	castVote               *connect.Client[api.CastVoteRequest, api.CastVoteResponse]
	listMyVotes            *connect.Client[api.ListMyVotesRequest, api.ListMyVotesResponse]
	listEligibleRecipients *connect.Client[api.ListEligibleRecipientsRequest, api.ListEligibleRecipientsResponse]
}

func (c *voteServiceClient) CastVote(ctx context.Context, req *connect.Request[api.CastVoteRequest]) (*connect.Response[api.CastVoteResponse], error) {
	return c.castVote.CallUnary(ctx, req)
}

func (c *voteServiceClient) ListMyVotes(ctx context.Context, req *connect.Request[api.ListMyVotesRequest]) (*connect.Response[api.ListMyVotesResponse], error) {
	return c.listMyVotes.CallUnary(ctx, req)
}

func (c *voteServiceClient) ListEligibleRecipients(ctx context.Context, req *connect.Request[api.ListEligibleRecipientsRequest]) (*connect.Response[api.ListEligibleRecipientsResponse], error) {
	return c.listEligibleRecipients.CallUnary(ctx, req)
}

// DashboardServiceHandler is implemented by the dashboard service.
type DashboardServiceHandler interface {
	GetDashboard(context.Context, *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error)
	GetLeaderboard(context.Context, *connect.Request[api.GetLeaderboardRequest]) (*connect.Response[api.GetLeaderboardResponse], error)
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
}

// NewDashboardServiceHandler builds an HTTP handler from the service
// implementation. All of its procedures are read-only.
func NewDashboardServiceHandler(svc DashboardServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(handlerOptions(opts), connect.WithIdempotency(connect.IdempotencyNoSideEffects))
	return "/" + DashboardServiceName + "/", routes(map[string]http.Handler{
		DashboardServiceGetDashboardProcedure: connect.NewUnaryHandler(
			DashboardServiceGetDashboardProcedure, svc.GetDashboard, opts...,
		),
		DashboardServiceGetLeaderboardProcedure: connect.NewUnaryHandler(
			DashboardServiceGetLeaderboardProcedure, svc.GetLeaderboard, opts...,
		),
		DashboardServiceGetCurrentUserProcedure: connect.NewUnaryHandler(
			DashboardServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts...,
		),
	})
}

// UnimplementedDashboardServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedDashboardServiceHandler struct{}

func (UnimplementedDashboardServiceHandler) GetDashboard(context.Context, *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("kudos.v1.DashboardService.GetDashboard is not implemented"))
}

func (UnimplementedDashboardServiceHandler) GetLeaderboard(context.Context, *connect.Request[api.GetLeaderboardRequest]) (*connect.Response[api.GetLeaderboardResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("kudos.v1.DashboardService.GetLeaderboard is not implemented"))
}

func (UnimplementedDashboardServiceHandler) GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("kudos.v1.DashboardService.GetCurrentUser is not implemented"))
}

// DashboardServiceClient is a client for the kudos.v1.DashboardService service.
type DashboardServiceClient interface {
	GetDashboard(context.Context, *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error)
	GetLeaderboard(context.Context, *connect.Request[api.GetLeaderboardRequest]) (*connect.Response[api.GetLeaderboardResponse], error)
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
}

// NewDashboardServiceClient constructs a client for kudos.v1.DashboardService.
func NewDashboardServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) DashboardServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &dashboardServiceClient{
		getDashboard: connect.NewClient[api.GetDashboardRequest, api.GetDashboardResponse](
			httpClient, baseURL+DashboardServiceGetDashboardProcedure, opts...,
		),
		getLeaderboard: connect.NewClient[api.GetLeaderboardRequest, api.GetLeaderboardResponse](
			httpClient, baseURL+DashboardServiceGetLeaderboardProcedure, opts...,
		),
		getCurrentUser: connect.NewClient[api.GetCurrentUserRequest, api.GetCurrentUserResponse](
			httpClient, baseURL+DashboardServiceGetCurrentUserProcedure, opts...,
		),
	}
}

type dashboardServiceClient struct {
	getDashboard   *connect.Client[api.GetDashboardRequest, api.GetDashboardResponse]
	getLeaderboard *connect.Client[api.GetLeaderboardRequest, api.GetLeaderboardResponse]
	getCurrentUser *connect.Client[api.GetCurrentUserRequest, api.GetCurrentUserResponse]
}

func (c *dashboardServiceClient) GetDashboard(ctx context.Context, req *connect.Request[api.GetDashboardRequest]) (*connect.Response[api.GetDashboardResponse], error) {
	return c.getDashboard.CallUnary(ctx, req)
}

func (c *dashboardServiceClient) GetLeaderboard(ctx context.Context, req *connect.Request[api.GetLeaderboardRequest]) (*connect.Response[api.GetLeaderboardResponse], error) {
	return c.getLeaderboard.CallUnary(ctx, req)
}

func (c *dashboardServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

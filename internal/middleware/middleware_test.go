package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mmynk/kudos/internal/auth"
	"github.com/mmynk/kudos/internal/metrics"
	"github.com/mmynk/kudos/internal/models"
	"github.com/mmynk/kudos/pkg/api"
)

// echoActor is a terminal handler that reports which user it ran as.
func echoActor(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
	return connect.NewResponse(&api.User{Id: GetUserID(ctx), Role: GetRole(ctx)}), nil
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Hour)
	token, err := jwtManager.Generate(&models.User{ID: "alice", Role: models.RoleLeader})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	handler := RequireAuth(jwtManager)(echoActor)

	tests := []struct {
		name     string
		header   string
		wantUser string
		wantCode connect.Code
	}{
		{"valid", "Bearer " + token, "alice", 0},
		{"lowercase scheme", "bearer " + token, "alice", 0},
		{"missing", "", "", connect.CodeUnauthenticated},
		{"no scheme", token, "", connect.CodeUnauthenticated},
		{"basic", "Basic " + token, "", connect.CodeUnauthenticated},
		{"bad token", "Bearer nope", "", connect.CodeUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := connect.NewRequest(&api.GetCurrentUserRequest{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}

			resp, err := handler(context.Background(), req)
			if tt.wantCode != 0 {
				if connect.CodeOf(err) != tt.wantCode {
					t.Fatalf("expected %v, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			user := resp.Any().(*api.User)
			if user.Id != tt.wantUser || user.Role != models.RoleLeader {
				t.Errorf("expected %s/leader, got %+v", tt.wantUser, user)
			}
		})
	}
}

func TestMetricsInterceptor(t *testing.T) {
	m := metrics.NewServerMetrics(prometheus.NewRegistry(), "kudos")

	ok := MetricsInterceptor(m)(echoActor)
	failing := MetricsInterceptor(m)(func(context.Context, connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeResourceExhausted, errors.New("quota"))
	})

	ctx := context.Background()
	if _, err := ok(ctx, connect.NewRequest(&api.GetCurrentUserRequest{})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := failing(ctx, connect.NewRequest(&api.GetCurrentUserRequest{})); err == nil {
		t.Fatal("expected error")
	}

	if n := testutil.CollectAndCount(m.RPCDuration); n != 2 {
		t.Errorf("expected 2 series (ok and resource_exhausted), got %d", n)
	}
}

func TestLoggingInterceptorPassesThrough(t *testing.T) {
	want := connect.NewError(connect.CodeAlreadyExists, models.ErrDuplicateVote)
	handler := LoggingInterceptor()(func(context.Context, connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, want
	})

	_, err := handler(WithUser(context.Background(), "bob", ""), connect.NewRequest(&api.CastVoteRequest{}))
	if !errors.Is(err, models.ErrDuplicateVote) {
		t.Errorf("expected error to pass through, got %v", err)
	}
}

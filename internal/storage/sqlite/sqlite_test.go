package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmynk/kudos/internal/models"
	"github.com/mmynk/kudos/internal/storage"
)

const testQuota = 4

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "kudos-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newVote(from, to string, month, year int) *models.Vote {
	return &models.Vote{FromUser: from, ToUser: to, Month: month, Year: year}
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("InsertVote generates ID, timestamp and status", func(t *testing.T) {
		vote := newVote("alice", "bob", 6, 2024)
		vote.Message = "great demo"

		if err := store.InsertVote(ctx, vote, testQuota); err != nil {
			t.Fatalf("InsertVote failed: %v", err)
		}
		if vote.ID == "" {
			t.Error("Expected vote ID to be generated")
		}
		if vote.CreatedAt.IsZero() {
			t.Error("Expected CreatedAt to be set")
		}
		if vote.Status != models.VoteApproved {
			t.Errorf("Status = %q, want approved", vote.Status)
		}

		votes, err := store.FindVotes(ctx, storage.VoteFilter{FromUser: "alice"})
		if err != nil {
			t.Fatalf("FindVotes failed: %v", err)
		}
		if len(votes) != 1 {
			t.Fatalf("Expected 1 vote, got %d", len(votes))
		}
		got := votes[0]
		if got.ID != vote.ID || got.ToUser != "bob" || got.Message != "great demo" {
			t.Errorf("Retrieved vote mismatch: %+v", got)
		}
		if !got.CreatedAt.Equal(vote.CreatedAt) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, vote.CreatedAt)
		}
	})

	t.Run("duplicate vote in same period is rejected", func(t *testing.T) {
		err := store.InsertVote(ctx, newVote("alice", "bob", 6, 2024), testQuota)
		if !errors.Is(err, models.ErrDuplicateVote) {
			t.Fatalf("Expected ErrDuplicateVote, got %v", err)
		}

		// Same pair in the next month is a new vote.
		if err := store.InsertVote(ctx, newVote("alice", "bob", 7, 2024), testQuota); err != nil {
			t.Fatalf("InsertVote for next period failed: %v", err)
		}
	})

	t.Run("self vote is rejected", func(t *testing.T) {
		err := store.InsertVote(ctx, newVote("carol", "carol", 6, 2024), testQuota)
		if !errors.Is(err, models.ErrSelfVote) {
			t.Fatalf("Expected ErrSelfVote, got %v", err)
		}
	})

	t.Run("invalid period is rejected", func(t *testing.T) {
		err := store.InsertVote(ctx, newVote("carol", "dave", 13, 2024), testQuota)
		if !errors.Is(err, models.ErrInvalidPeriod) {
			t.Fatalf("Expected ErrInvalidPeriod, got %v", err)
		}
	})

	t.Run("quota is enforced per period", func(t *testing.T) {
		for _, to := range []string{"u1", "u2", "u3", "u4"} {
			if err := store.InsertVote(ctx, newVote("erin", to, 6, 2024), testQuota); err != nil {
				t.Fatalf("InsertVote erin->%s failed: %v", to, err)
			}
		}

		err := store.InsertVote(ctx, newVote("erin", "u5", 6, 2024), testQuota)
		if !errors.Is(err, models.ErrQuotaExceeded) {
			t.Fatalf("Expected ErrQuotaExceeded, got %v", err)
		}

		n, err := store.CountVotes(ctx, storage.VoteFilter{FromUser: "erin", Month: 6, Year: 2024})
		if err != nil {
			t.Fatalf("CountVotes failed: %v", err)
		}
		if n != testQuota {
			t.Errorf("Expected %d votes, got %d", testQuota, n)
		}
	})

	t.Run("quota takes precedence over duplicate", func(t *testing.T) {
		err := store.InsertVote(ctx, newVote("erin", "u1", 6, 2024), testQuota)
		if !errors.Is(err, models.ErrQuotaExceeded) {
			t.Fatalf("Expected ErrQuotaExceeded, got %v", err)
		}
	})

	t.Run("CountVotes filters combine", func(t *testing.T) {
		tests := []struct {
			filter storage.VoteFilter
			want   int
		}{
			{storage.VoteFilter{ToUser: "bob"}, 2},
			{storage.VoteFilter{ToUser: "bob", Month: 6, Year: 2024}, 1},
			{storage.VoteFilter{ToUser: "bob", Status: models.VoteApproved}, 2},
			{storage.VoteFilter{ToUser: "bob", Status: models.VoteRejected}, 0},
			{storage.VoteFilter{Month: 6, Year: 2024}, 5},
		}
		for _, tt := range tests {
			got, err := store.CountVotes(ctx, tt.filter)
			if err != nil {
				t.Fatalf("CountVotes(%+v) failed: %v", tt.filter, err)
			}
			if got != tt.want {
				t.Errorf("CountVotes(%+v) = %d, want %d", tt.filter, got, tt.want)
			}
		}
	})
}

func TestFindVotesOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	for i, to := range []string{"c", "a", "b"} {
		v := newVote("voter", to, 6, 2024)
		v.CreatedAt = base.Add(time.Duration(i) * time.Millisecond)
		if err := store.InsertVote(ctx, v, testQuota); err != nil {
			t.Fatalf("InsertVote failed: %v", err)
		}
	}

	votes, err := store.FindVotes(ctx, storage.VoteFilter{FromUser: "voter", Month: 6, Year: 2024})
	if err != nil {
		t.Fatalf("FindVotes failed: %v", err)
	}
	var got []string
	for _, v := range votes {
		got = append(got, v.ToUser)
	}
	if fmt.Sprint(got) != "[c a b]" {
		t.Errorf("FindVotes order = %v, want [c a b]", got)
	}
}

func TestFindVotesSameTimestampKeepsInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// IDs sort opposite to insertion so an ID tie-break would reverse them.
	at := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	for i, to := range []string{"b", "c", "d", "e"} {
		v := newVote("voter", to, 6, 2024)
		v.ID = fmt.Sprintf("id-%d", 9-i)
		v.CreatedAt = at
		if err := store.InsertVote(ctx, v, testQuota); err != nil {
			t.Fatalf("InsertVote voter->%s failed: %v", to, err)
		}
	}

	votes, err := store.FindVotes(ctx, storage.VoteFilter{FromUser: "voter"})
	if err != nil {
		t.Fatalf("FindVotes failed: %v", err)
	}
	var got []string
	for _, v := range votes {
		got = append(got, v.ToUser)
	}
	if fmt.Sprint(got) != "[b c d e]" {
		t.Errorf("FindVotes order = %v, want [b c d e]", got)
	}
}

func TestAggregateByRecipient(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, from := range []string{"b", "c", "d"} {
		if err := store.InsertVote(ctx, newVote(from, "e", 6, 2024), testQuota); err != nil {
			t.Fatalf("InsertVote failed: %v", err)
		}
	}
	if err := store.InsertVote(ctx, newVote("b", "c", 6, 2024), testQuota); err != nil {
		t.Fatalf("InsertVote failed: %v", err)
	}
	// Other period, must not be counted.
	if err := store.InsertVote(ctx, newVote("b", "e", 7, 2024), testQuota); err != nil {
		t.Fatalf("InsertVote failed: %v", err)
	}

	counts, err := store.AggregateByRecipient(ctx, models.Period{Month: 6, Year: 2024}, models.VoteApproved)
	if err != nil {
		t.Fatalf("AggregateByRecipient failed: %v", err)
	}
	if len(counts) != 2 || counts["e"] != 3 || counts["c"] != 1 {
		t.Errorf("AggregateByRecipient = %v, want map[c:1 e:3]", counts)
	}
}

func TestTransitionVoteStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	pending := newVote("a", "b", 6, 2024)
	pending.Status = models.VotePending
	if err := store.InsertVote(ctx, pending, testQuota); err != nil {
		t.Fatalf("InsertVote failed: %v", err)
	}

	if err := store.TransitionVoteStatus(ctx, pending.ID, models.VoteRejected); err != nil {
		t.Fatalf("pending -> rejected failed: %v", err)
	}
	err := store.TransitionVoteStatus(ctx, pending.ID, models.VoteApproved)
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("rejected -> approved: expected ErrInvalidTransition, got %v", err)
	}

	err = store.TransitionVoteStatus(ctx, "missing", models.VoteApproved)
	if !errors.Is(err, models.ErrVoteNotFound) {
		t.Errorf("Expected ErrVoteNotFound, got %v", err)
	}

	// Rejected votes still occupy quota.
	n, err := store.CountVotes(ctx, storage.VoteFilter{FromUser: "a", Month: 6, Year: 2024})
	if err != nil {
		t.Fatalf("CountVotes failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 vote counted against quota, got %d", n)
	}
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	users := []*models.User{
		{ID: "u1", Name: "Zoe", Group: "Engineering"},
		{ID: "u2", Name: "Adam", Group: "Sales"},
		{ID: "u3", Name: "Mia", Status: models.UserInactive},
	}
	for _, u := range users {
		if err := store.UpsertUser(ctx, u); err != nil {
			t.Fatalf("UpsertUser failed: %v", err)
		}
	}

	t.Run("GetUserByID", func(t *testing.T) {
		u, err := store.GetUserByID(ctx, "u1")
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if u == nil || u.Name != "Zoe" || u.Group != "Engineering" || !u.IsActive() {
			t.Errorf("Unexpected user: %+v", u)
		}

		missing, err := store.GetUserByID(ctx, "nobody")
		if err != nil || missing != nil {
			t.Errorf("Expected nil, nil for missing user, got %+v, %v", missing, err)
		}
	})

	t.Run("ListActiveUsers excludes inactive and sorts by name", func(t *testing.T) {
		active, err := store.ListActiveUsers(ctx)
		if err != nil {
			t.Fatalf("ListActiveUsers failed: %v", err)
		}
		if len(active) != 2 || active[0].Name != "Adam" || active[1].Name != "Zoe" {
			t.Errorf("Unexpected active users: %+v", active)
		}
	})

	t.Run("UpsertUser replaces", func(t *testing.T) {
		if err := store.UpsertUser(ctx, &models.User{ID: "u1", Name: "Zoe", Status: models.UserInactive}); err != nil {
			t.Fatalf("UpsertUser failed: %v", err)
		}
		u, _ := store.GetUserByID(ctx, "u1")
		if u.IsActive() {
			t.Error("Expected u1 to be inactive after upsert")
		}
	})

	t.Run("GetUsersByIDs omits unknown", func(t *testing.T) {
		got, err := store.GetUsersByIDs(ctx, []string{"u2", "u3", "ghost"})
		if err != nil {
			t.Fatalf("GetUsersByIDs failed: %v", err)
		}
		if len(got) != 2 || got["u2"] == nil || got["u3"] == nil {
			t.Errorf("Unexpected users: %v", got)
		}
	})
}

func TestConcurrentInsertVote(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("quota holds under concurrent casts", func(t *testing.T) {
		const attempts = 12
		var ok, quota atomic.Int32
		var wg sync.WaitGroup

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				err := store.InsertVote(ctx, newVote("racer", fmt.Sprintf("r%d", i), 6, 2024), testQuota)
				switch {
				case err == nil:
					ok.Add(1)
				case errors.Is(err, models.ErrQuotaExceeded):
					quota.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(i)
		}
		wg.Wait()

		if ok.Load() != testQuota {
			t.Errorf("Expected %d successful inserts, got %d", testQuota, ok.Load())
		}
		if quota.Load() != attempts-testQuota {
			t.Errorf("Expected %d quota rejections, got %d", attempts-testQuota, quota.Load())
		}
		n, err := store.CountVotes(ctx, storage.VoteFilter{FromUser: "racer", Month: 6, Year: 2024})
		if err != nil {
			t.Fatalf("CountVotes failed: %v", err)
		}
		if n != testQuota {
			t.Errorf("Expected %d votes in ledger, got %d", testQuota, n)
		}
	})

	t.Run("same recipient admitted once", func(t *testing.T) {
		const attempts = 8
		var ok, dup atomic.Int32
		var wg sync.WaitGroup

		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := store.InsertVote(ctx, newVote("twin", "target", 6, 2024), testQuota)
				switch {
				case err == nil:
					ok.Add(1)
				case errors.Is(err, models.ErrDuplicateVote):
					dup.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		if ok.Load() != 1 || dup.Load() != attempts-1 {
			t.Errorf("Expected 1 success and %d duplicates, got %d and %d", attempts-1, ok.Load(), dup.Load())
		}
	})
}

func TestInsertVoteCancelledContext(t *testing.T) {
	store := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.InsertVote(ctx, newVote("a", "b", 6, 2024), testQuota); err == nil {
		t.Fatal("Expected error for cancelled context")
	}

	n, err := store.CountVotes(context.Background(), storage.VoteFilter{})
	if err != nil {
		t.Fatalf("CountVotes failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected empty ledger after cancelled insert, got %d votes", n)
	}
}

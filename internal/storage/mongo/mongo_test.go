package mongo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/kudos/internal/models"
	"github.com/mmynk/kudos/internal/storage"
)

const testQuota = 4

// newTestStore connects to KUDOS_TEST_MONGO_URI (e.g. mongodb://localhost:27017)
// and uses a throwaway database that is dropped afterwards.
func newTestStore(t *testing.T) *MongoStore {
	t.Helper()

	uri := os.Getenv("KUDOS_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("KUDOS_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	dbName := "kudos_test_" + uuid.NewString()[:8]
	store, err := New(ctx, uri, dbName)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() {
		store.client.Database(dbName).Drop(ctx)
		store.Close()
	})
	return store
}

func TestMongoInsertVote(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.InsertVote(ctx, &models.Vote{FromUser: "a", ToUser: "b", Month: 6, Year: 2024}, testQuota); err != nil {
		t.Fatalf("InsertVote failed: %v", err)
	}

	err := store.InsertVote(ctx, &models.Vote{FromUser: "a", ToUser: "b", Month: 6, Year: 2024}, testQuota)
	if !errors.Is(err, models.ErrDuplicateVote) {
		t.Fatalf("Expected ErrDuplicateVote, got %v", err)
	}

	if err := store.InsertVote(ctx, &models.Vote{FromUser: "a", ToUser: "b", Month: 7, Year: 2024}, testQuota); err != nil {
		t.Fatalf("InsertVote for next period failed: %v", err)
	}

	for _, to := range []string{"c", "d", "e"} {
		if err := store.InsertVote(ctx, &models.Vote{FromUser: "a", ToUser: to, Month: 6, Year: 2024}, testQuota); err != nil {
			t.Fatalf("InsertVote a->%s failed: %v", to, err)
		}
	}

	err = store.InsertVote(ctx, &models.Vote{FromUser: "a", ToUser: "f", Month: 6, Year: 2024}, testQuota)
	if !errors.Is(err, models.ErrQuotaExceeded) {
		t.Fatalf("Expected ErrQuotaExceeded, got %v", err)
	}

	// Quota is reported before duplicate.
	err = store.InsertVote(ctx, &models.Vote{FromUser: "a", ToUser: "b", Month: 6, Year: 2024}, testQuota)
	if !errors.Is(err, models.ErrQuotaExceeded) {
		t.Fatalf("Expected ErrQuotaExceeded, got %v", err)
	}

	votes, err := store.FindVotes(ctx, storage.VoteFilter{FromUser: "a", Month: 6, Year: 2024})
	if err != nil {
		t.Fatalf("FindVotes failed: %v", err)
	}
	if len(votes) != testQuota {
		t.Errorf("Expected %d votes, got %d", testQuota, len(votes))
	}
}

func TestMongoConcurrentQuota(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const attempts = 12
	var ok atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v := &models.Vote{FromUser: "racer", ToUser: fmt.Sprintf("r%d", i), Month: 6, Year: 2024}
			err := store.InsertVote(ctx, v, testQuota)
			if err == nil {
				ok.Add(1)
			} else if !errors.Is(err, models.ErrQuotaExceeded) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if ok.Load() != testQuota {
		t.Errorf("Expected %d successful inserts, got %d", testQuota, ok.Load())
	}
	n, err := store.CountVotes(ctx, storage.VoteFilter{FromUser: "racer"})
	if err != nil {
		t.Fatalf("CountVotes failed: %v", err)
	}
	if n != testQuota {
		t.Errorf("Expected %d votes in ledger, got %d", testQuota, n)
	}
}

func TestMongoAggregateAndTransition(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, from := range []string{"b", "c", "d"} {
		if err := store.InsertVote(ctx, &models.Vote{FromUser: from, ToUser: "e", Month: 6, Year: 2024}, testQuota); err != nil {
			t.Fatalf("InsertVote failed: %v", err)
		}
	}
	pending := &models.Vote{FromUser: "x", ToUser: "e", Month: 6, Year: 2024, Status: models.VotePending}
	if err := store.InsertVote(ctx, pending, testQuota); err != nil {
		t.Fatalf("InsertVote failed: %v", err)
	}

	counts, err := store.AggregateByRecipient(ctx, models.Period{Month: 6, Year: 2024}, models.VoteApproved)
	if err != nil {
		t.Fatalf("AggregateByRecipient failed: %v", err)
	}
	if counts["e"] != 3 {
		t.Errorf("Expected 3 approved votes for e, got %d", counts["e"])
	}

	if err := store.TransitionVoteStatus(ctx, pending.ID, models.VoteApproved); err != nil {
		t.Fatalf("TransitionVoteStatus failed: %v", err)
	}
	counts, _ = store.AggregateByRecipient(ctx, models.Period{Month: 6, Year: 2024}, models.VoteApproved)
	if counts["e"] != 4 {
		t.Errorf("Expected 4 approved votes after approval, got %d", counts["e"])
	}

	err = store.TransitionVoteStatus(ctx, pending.ID, models.VoteRejected)
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}
}

func TestMongoFindVotesSameTimestamp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	voter := "voter"
	at := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	for i, to := range []string{"b", "c", "d", "e"} {
		v := &models.Vote{ID: fmt.Sprintf("%s-%d", voter, 9-i), FromUser: voter, ToUser: to, Month: 6, Year: 2024, CreatedAt: at}
		if err := store.InsertVote(ctx, v, testQuota); err != nil {
			t.Fatalf("InsertVote %s->%s failed: %v", voter, to, err)
		}
	}

	votes, err := store.FindVotes(ctx, storage.VoteFilter{FromUser: voter})
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

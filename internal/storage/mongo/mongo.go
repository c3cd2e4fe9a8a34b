// Package mongo provides a MongoDB-backed implementation of the storage.Store interface.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/mmynk/kudos/internal/models"
	"github.com/mmynk/kudos/internal/storage"
)

// Ensure MongoStore implements storage.Store
var _ storage.Store = (*MongoStore)(nil)

const (
	votesCollection = "votes"
	usersCollection = "users"

	recipientIndex = "one_vote_per_recipient"
	slotIndex      = "one_vote_per_quota_slot"

	duplicateKeyCode = 11000
)

// MongoStore implements storage.Store using MongoDB.
//
// Every vote occupies a numbered quota slot in [1, quota]. A unique index
// on (from_user, month, year, slot) means two writers can never hold the
// same slot, and a second unique index on (from_user, to_user, month, year)
// rejects duplicates. Both invariants are enforced by single-document
// inserts, so no multi-document transaction is required.
type MongoStore struct {
	client *mongo.Client
	votes  *mongo.Collection
	users  *mongo.Collection
}

// voteDoc is a vote plus the quota slot it occupies. Seq orders votes that
// share a created_at by insertion.
type voteDoc struct {
	models.Vote `bson:",inline"`
	Slot        int                `bson:"slot"`
	Seq         primitive.ObjectID `bson:"seq"`
}

// New connects to MongoDB, selects the database and ensures indexes exist.
func New(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping failed: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client: client,
		votes:  db.Collection(votesCollection),
		users:  db.Collection(usersCollection),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.votes.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "from_user", Value: 1}, {Key: "to_user", Value: 1}, {Key: "month", Value: 1}, {Key: "year", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(recipientIndex),
		},
		{
			Keys:    bson.D{{Key: "from_user", Value: 1}, {Key: "month", Value: 1}, {Key: "year", Value: 1}, {Key: "slot", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(slotIndex),
		},
		{
			Keys: bson.D{{Key: "year", Value: 1}, {Key: "month", Value: 1}, {Key: "status", Value: 1}, {Key: "to_user", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "to_user", Value: 1}, {Key: "status", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "name", Value: 1}},
	})
	return err
}

// Ping reports whether the primary is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

// InsertVote claims the lowest free quota slot and inserts the vote into
// it. Losing a slot to a concurrent writer means that slot is now taken for
// good, so the loop re-reads and tries the next one; after quota+1 rounds
// every slot must be full.
func (s *MongoStore) InsertVote(ctx context.Context, vote *models.Vote, quota int) error {
	if err := storage.PrepareVote(vote, quota); err != nil {
		return err
	}

	for attempt := 0; attempt <= quota; attempt++ {
		slot, err := s.freeSlot(ctx, vote, quota)
		if err != nil {
			return err
		}
		if slot == 0 {
			return models.ErrQuotaExceeded
		}

		exists, err := s.voteExists(ctx, vote)
		if err != nil {
			return err
		}
		if exists {
			return models.ErrDuplicateVote
		}

		_, err = s.votes.InsertOne(ctx, voteDoc{Vote: *vote, Slot: slot, Seq: primitive.NewObjectID()})
		if err == nil {
			return nil
		}
		switch duplicateIndex(err) {
		case recipientIndex:
			return models.ErrDuplicateVote
		case slotIndex:
			continue
		default:
			return fmt.Errorf("failed to insert vote: %w", err)
		}
	}

	return models.ErrQuotaExceeded
}

func (s *MongoStore) voteExists(ctx context.Context, vote *models.Vote) (bool, error) {
	n, err := s.votes.CountDocuments(ctx, bson.D{
		{Key: "from_user", Value: vote.FromUser},
		{Key: "to_user", Value: vote.ToUser},
		{Key: "month", Value: vote.Month},
		{Key: "year", Value: vote.Year},
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check existing vote: %w", err)
	}
	return n > 0, nil
}

// freeSlot returns the lowest unused slot in [1, quota], or 0 when all are taken.
func (s *MongoStore) freeSlot(ctx context.Context, vote *models.Vote, quota int) (int, error) {
	cur, err := s.votes.Find(ctx, bson.D{
		{Key: "from_user", Value: vote.FromUser},
		{Key: "month", Value: vote.Month},
		{Key: "year", Value: vote.Year},
	}, options.Find().SetProjection(bson.D{{Key: "slot", Value: 1}}))
	if err != nil {
		return 0, fmt.Errorf("failed to read quota slots: %w", err)
	}

	var taken []struct {
		Slot int `bson:"slot"`
	}
	if err := cur.All(ctx, &taken); err != nil {
		return 0, fmt.Errorf("failed to decode quota slots: %w", err)
	}

	used := make(map[int]bool, len(taken))
	for _, t := range taken {
		used[t.Slot] = true
	}
	for slot := 1; slot <= quota; slot++ {
		if !used[slot] {
			return slot, nil
		}
	}
	return 0, nil
}

// duplicateIndex returns the name of the unique index a duplicate key error
// refers to, or "" for any other error.
func duplicateIndex(err error) string {
	var we mongo.WriteException
	if !errors.As(err, &we) {
		return ""
	}
	for _, e := range we.WriteErrors {
		if e.Code != duplicateKeyCode {
			continue
		}
		switch {
		case strings.Contains(e.Message, recipientIndex):
			return recipientIndex
		case strings.Contains(e.Message, slotIndex):
			return slotIndex
		}
	}
	return ""
}

func voteFilter(f storage.VoteFilter) bson.D {
	filter := bson.D{}
	if f.FromUser != "" {
		filter = append(filter, bson.E{Key: "from_user", Value: f.FromUser})
	}
	if f.ToUser != "" {
		filter = append(filter, bson.E{Key: "to_user", Value: f.ToUser})
	}
	if f.Month != 0 {
		filter = append(filter, bson.E{Key: "month", Value: f.Month})
	}
	if f.Year != 0 {
		filter = append(filter, bson.E{Key: "year", Value: f.Year})
	}
	if f.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(f.Status)})
	}
	return filter
}

// CountVotes returns the number of votes matching the filter.
func (s *MongoStore) CountVotes(ctx context.Context, filter storage.VoteFilter) (int, error) {
	n, err := s.votes.CountDocuments(ctx, voteFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return int(n), nil
}

// FindVotes returns the votes matching the filter, oldest first.
func (s *MongoStore) FindVotes(ctx context.Context, filter storage.VoteFilter) ([]models.Vote, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "seq", Value: 1}})
	cur, err := s.votes.Find(ctx, voteFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find votes: %w", err)
	}

	var docs []voteDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode votes: %w", err)
	}

	votes := make([]models.Vote, len(docs))
	for i, d := range docs {
		votes[i] = d.Vote
		votes[i].CreatedAt = d.CreatedAt.UTC()
	}
	return votes, nil
}

// AggregateByRecipient counts votes per recipient with one pipeline.
func (s *MongoStore) AggregateByRecipient(ctx context.Context, period models.Period, status models.VoteStatus) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "month", Value: period.Month},
			{Key: "year", Value: period.Year},
			{Key: "status", Value: string(status)},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$to_user"},
			{Key: "votes_received", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cur, err := s.votes.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate votes: %w", err)
	}

	var groups []struct {
		UserID        string `bson:"_id"`
		VotesReceived int    `bson:"votes_received"`
	}
	if err := cur.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("failed to decode aggregate: %w", err)
	}

	counts := make(map[string]int, len(groups))
	for _, g := range groups {
		counts[g.UserID] = g.VotesReceived
	}
	return counts, nil
}

// TransitionVoteStatus applies a legal status change with compare-and-set
// on the current status.
func (s *MongoStore) TransitionVoteStatus(ctx context.Context, voteID string, to models.VoteStatus) error {
	var current voteDoc
	err := s.votes.FindOne(ctx, bson.D{{Key: "_id", Value: voteID}}).Decode(&current)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%w: %s", models.ErrVoteNotFound, voteID)
	}
	if err != nil {
		return fmt.Errorf("failed to get vote: %w", err)
	}

	if !current.Status.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, current.Status, to)
	}

	res, err := s.votes.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: voteID}, {Key: "status", Value: string(current.Status)}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: string(to)}}}},
	)
	if err != nil {
		return fmt.Errorf("failed to update vote status: %w", err)
	}
	if res.ModifiedCount != 1 {
		return fmt.Errorf("%w: %s changed concurrently", models.ErrInvalidTransition, voteID)
	}
	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	err := s.users.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetUsersByIDs retrieves multiple users by their IDs.
func (s *MongoStore) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	users := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	cur, err := s.users.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, fmt.Errorf("failed to get users by IDs: %w", err)
	}

	var found []models.User
	if err := cur.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	for i := range found {
		users[found[i].ID] = &found[i]
	}
	return users, nil
}

// ListActiveUsers returns active users ordered by name.
func (s *MongoStore) ListActiveUsers(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.users.Find(ctx, bson.D{{Key: "status", Value: string(models.UserActive)}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// UpsertUser creates or replaces a user record.
func (s *MongoStore) UpsertUser(ctx context.Context, user *models.User) error {
	if err := storage.PrepareUser(user); err != nil {
		return err
	}

	_, err := s.users.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: user.ID}},
		user,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

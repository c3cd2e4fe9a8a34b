// Package sqlstore holds the SQL shared by the relational storage backends.
//
// Backends embed Base for reads, user directory access and status
// transitions, and implement InsertVote themselves because each database
// needs a different strategy to make the quota check atomic.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mmynk/kudos/internal/models"
	"github.com/mmynk/kudos/internal/storage"
)

// Base implements the read side of storage.Store on top of sqlx.
type Base struct {
	DB *sqlx.DB
	// SeqColumn orders votes sharing a created_at by insertion. It must
	// increase monotonically with each insert (rowid, a serial column).
	SeqColumn string
}

// voteRow is the relational shape of a vote. created_at is stored as Unix
// nanoseconds so ordering survives drivers without sub-second timestamps.
type voteRow struct {
	ID        string `db:"id"`
	FromUser  string `db:"from_user"`
	ToUser    string `db:"to_user"`
	Month     int    `db:"month"`
	Year      int    `db:"year"`
	Status    string `db:"status"`
	Message   string `db:"message"`
	CreatedAt int64  `db:"created_at"`
}

func (r voteRow) vote() models.Vote {
	return models.Vote{
		ID:        r.ID,
		FromUser:  r.FromUser,
		ToUser:    r.ToUser,
		Month:     r.Month,
		Year:      r.Year,
		Status:    models.VoteStatus(r.Status),
		Message:   r.Message,
		CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
	}
}

const voteColumns = "id, from_user, to_user, month, year, status, message, created_at"

const userColumns = "id, name, email, role, group_name, status, created_at"

// Ping reports whether the database is reachable.
func (b *Base) Ping(ctx context.Context) error {
	return b.DB.PingContext(ctx)
}

// Close closes the database connection.
func (b *Base) Close() error {
	return b.DB.Close()
}

// VoteExists reports whether a vote for the same (from, to, month, year)
// is already recorded.
func (b *Base) VoteExists(ctx context.Context, q sqlx.ExtContext, vote *models.Vote) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, q, &exists, q.Rebind(`
		SELECT EXISTS(
			SELECT 1 FROM votes
			WHERE from_user = ? AND to_user = ? AND month = ? AND year = ?
		)
	`), vote.FromUser, vote.ToUser, vote.Month, vote.Year)
	if err != nil {
		return false, fmt.Errorf("failed to check existing vote: %w", err)
	}
	return exists, nil
}

// CountCast returns how many votes fromUser cast in period.
func (b *Base) CountCast(ctx context.Context, q sqlx.ExtContext, fromUser string, period models.Period) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, q, &n, q.Rebind(`
		SELECT COUNT(*) FROM votes WHERE from_user = ? AND month = ? AND year = ?
	`), fromUser, period.Month, period.Year)
	if err != nil {
		return 0, fmt.Errorf("failed to count cast votes: %w", err)
	}
	return n, nil
}

// InsertRow writes the vote. Constraint errors are returned unwrapped so the
// backend can classify them.
func (b *Base) InsertRow(ctx context.Context, e sqlx.ExtContext, vote *models.Vote) error {
	_, err := e.ExecContext(ctx, e.Rebind(`
		INSERT INTO votes (`+voteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`),
		vote.ID, vote.FromUser, vote.ToUser, vote.Month, vote.Year,
		string(vote.Status), vote.Message, vote.CreatedAt.UnixNano(),
	)
	return err
}

// whereClause builds the WHERE clause for a filter.
func whereClause(f storage.VoteFilter) (string, []any) {
	var conds []string
	var args []any
	if f.FromUser != "" {
		conds = append(conds, "from_user = ?")
		args = append(args, f.FromUser)
	}
	if f.ToUser != "" {
		conds = append(conds, "to_user = ?")
		args = append(args, f.ToUser)
	}
	if f.Month != 0 {
		conds = append(conds, "month = ?")
		args = append(args, f.Month)
	}
	if f.Year != 0 {
		conds = append(conds, "year = ?")
		args = append(args, f.Year)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// CountVotes returns the number of votes matching the filter.
func (b *Base) CountVotes(ctx context.Context, filter storage.VoteFilter) (int, error) {
	where, args := whereClause(filter)

	var n int
	if err := b.DB.GetContext(ctx, &n, b.DB.Rebind("SELECT COUNT(*) FROM votes"+where), args...); err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return n, nil
}

// FindVotes returns the votes matching the filter, oldest first. Votes with
// equal timestamps come back in insertion order.
func (b *Base) FindVotes(ctx context.Context, filter storage.VoteFilter) ([]models.Vote, error) {
	where, args := whereClause(filter)
	seq := b.SeqColumn
	if seq == "" {
		seq = "id"
	}
	query := "SELECT " + voteColumns + " FROM votes" + where + " ORDER BY created_at ASC, " + seq + " ASC"

	var rows []voteRow
	if err := b.DB.SelectContext(ctx, &rows, b.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to find votes: %w", err)
	}

	votes := make([]models.Vote, len(rows))
	for i, r := range rows {
		votes[i] = r.vote()
	}
	return votes, nil
}

// AggregateByRecipient counts votes per recipient in a single statement.
func (b *Base) AggregateByRecipient(ctx context.Context, period models.Period, status models.VoteStatus) (map[string]int, error) {
	rows, err := b.DB.QueryxContext(ctx, b.DB.Rebind(`
		SELECT to_user, COUNT(*) FROM votes
		WHERE month = ? AND year = ? AND status = ?
		GROUP BY to_user
	`), period.Month, period.Year, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate votes: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var userID string
		var n int
		if err := rows.Scan(&userID, &n); err != nil {
			return nil, fmt.Errorf("failed to scan aggregate: %w", err)
		}
		counts[userID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate aggregate: %w", err)
	}
	return counts, nil
}

// TransitionVoteStatus applies a legal status change with compare-and-set
// on the current status.
func (b *Base) TransitionVoteStatus(ctx context.Context, voteID string, to models.VoteStatus) error {
	var current string
	err := b.DB.GetContext(ctx, &current, b.DB.Rebind("SELECT status FROM votes WHERE id = ?"), voteID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", models.ErrVoteNotFound, voteID)
	}
	if err != nil {
		return fmt.Errorf("failed to get vote status: %w", err)
	}

	from := models.VoteStatus(current)
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, from, to)
	}

	res, err := b.DB.ExecContext(ctx, b.DB.Rebind(`
		UPDATE votes SET status = ? WHERE id = ? AND status = ?
	`), string(to), voteID, current)
	if err != nil {
		return fmt.Errorf("failed to update vote status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n != 1 {
		// Another writer moved the vote first.
		return fmt.Errorf("%w: %s changed concurrently", models.ErrInvalidTransition, voteID)
	}
	return nil
}

// GetUserByID retrieves a user by their ID.
func (b *Base) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	err := b.DB.GetContext(ctx, user, b.DB.Rebind("SELECT "+userColumns+" FROM users WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetUsersByIDs retrieves multiple users by their IDs.
func (b *Base) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	users := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	query, args, err := sqlx.In("SELECT "+userColumns+" FROM users WHERE id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build users query: %w", err)
	}

	var rows []models.User
	if err := b.DB.SelectContext(ctx, &rows, b.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get users by IDs: %w", err)
	}
	for i := range rows {
		users[rows[i].ID] = &rows[i]
	}
	return users, nil
}

// ListActiveUsers returns active users ordered by name.
func (b *Base) ListActiveUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := b.DB.SelectContext(ctx, &users, b.DB.Rebind(
		"SELECT "+userColumns+" FROM users WHERE status = ? ORDER BY name ASC, id ASC",
	), string(models.UserActive))
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	return users, nil
}

// UpsertUser creates or replaces a user record.
func (b *Base) UpsertUser(ctx context.Context, user *models.User) error {
	if err := storage.PrepareUser(user); err != nil {
		return err
	}

	_, err := b.DB.ExecContext(ctx, b.DB.Rebind(`
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			group_name = excluded.group_name,
			status = excluded.status
	`), user.ID, user.Name, user.Email, user.Role, user.Group, string(user.Status), user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

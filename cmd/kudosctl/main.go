// Command kudosctl performs operator tasks against the kudos database:
// syncing users from the identity provider, issuing tokens for testing, and
// moderating votes.
//
// Database and secret settings come from the same environment variables
// (and .env file) as the server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mmynk/kudos/internal/auth"
	"github.com/mmynk/kudos/internal/calculator"
	"github.com/mmynk/kudos/internal/config"
	"github.com/mmynk/kudos/internal/engine"
	"github.com/mmynk/kudos/internal/models"
	"github.com/mmynk/kudos/internal/storage/backend"
	"github.com/mmynk/kudos/pkg/logging"
)

const usage = `usage: kudosctl <command> [flags]

commands:
  upsert-user  create or update a user record
  token        print a bearer token for a user
  vote-status  approve or reject a pending vote
`

func main() {
	logging.Setup()

	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			slog.Error("kudosctl failed", "error", err)
		}
		os.Exit(1)
	}
}

// run executes one command. Command output goes to out; logs go to slog.
func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return flag.ErrHelp
	}

	cfg, err := config.ParseFlags(nil)
	if err != nil {
		return err
	}

	switch args[0] {
	case "upsert-user":
		return upsertUser(ctx, cfg, args[1:])
	case "token":
		return issueToken(cfg, args[1:], out)
	case "vote-status":
		return voteStatus(ctx, cfg, args[1:])
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func upsertUser(ctx context.Context, cfg config.Config, args []string) error {
	var user models.User
	var inactive bool

	fs := flag.NewFlagSet("upsert-user", flag.ContinueOnError)
	fs.StringVar(&user.ID, "id", "", "User ID (required)")
	fs.StringVar(&user.Name, "name", "", "Display name")
	fs.StringVar(&user.Email, "email", "", "Email address")
	fs.StringVar(&user.Role, "role", models.RoleEmployee, "admin, hr, leader or employee")
	fs.StringVar(&user.Group, "group", "", "Team or department")
	fs.BoolVar(&inactive, "inactive", false, "Mark the user inactive")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if inactive {
		user.Status = models.UserInactive
	}

	store, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.UpsertUser(ctx, &user); err != nil {
		return err
	}
	slog.Info("User saved", "user_id", user.ID, "status", user.Status, "group", user.Group)
	return nil
}

func issueToken(cfg config.Config, args []string, out io.Writer) error {
	var user models.User
	var ttl time.Duration

	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.StringVar(&user.ID, "id", "", "User ID (required)")
	fs.StringVar(&user.Email, "email", "", "Email claim")
	fs.StringVar(&user.Role, "role", "", "Role claim")
	fs.DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	token, err := auth.NewJWTManager(cfg.JWTSecret, ttl).Generate(&user)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}

func voteStatus(ctx context.Context, cfg config.Config, args []string) error {
	var voteID, status string

	fs := flag.NewFlagSet("vote-status", flag.ContinueOnError)
	fs.StringVar(&voteID, "id", "", "Vote ID (required)")
	fs.StringVar(&status, "status", "", "approved or rejected")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if voteID == "" {
		return errors.New("-id is required")
	}

	store, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	eng, err := engine.New(store, store, calculator.NewPeriodCalculator(nil, cfg.Timezone), cfg.Engine())
	if err != nil {
		return err
	}
	if err := eng.TransitionVote(ctx, voteID, models.VoteStatus(status)); err != nil {
		return err
	}
	slog.Info("Vote updated", "vote_id", voteID, "status", status)
	return nil
}

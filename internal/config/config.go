// Package config reads server configuration from flags, falling back to
// environment variables and an optional .env file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/mmynk/kudos/internal/engine"
)

// Supported DATABASE_TYPE values.
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
	DatabaseMongo    = "mongo"
)

type Config struct {
	Port          int
	DatabaseType  string
	DatabaseURL   string
	MongoDatabase string
	JWTSecret     string

	MonthlyQuota     int
	PerVoteRate      int64
	Timezone         *time.Location
	LeaderboardLimit int

	CORSAllowedOrigins []string
}

// Engine returns the vote policy for engine.New.
func (c Config) Engine() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.MonthlyQuota = c.MonthlyQuota
	cfg.PerVoteRate = c.PerVoteRate
	cfg.DefaultLeaderboardLimit = c.LeaderboardLimit
	if cfg.MaxLeaderboardLimit < cfg.DefaultLeaderboardLimit {
		cfg.MaxLeaderboardLimit = cfg.DefaultLeaderboardLimit
	}
	return cfg
}

// ParseFlags builds the configuration. Flags win over the environment, and
// the environment wins over the .env file.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile, timezone, origins string

	flags := flag.NewFlagSet("kudos", flag.ContinueOnError)

	flags.StringVar(&envFile, "env-file", ".env", "Optional dotenv file")

	// Network and storage
	flags.IntVar(&cfg.Port, "p", 0, "Server port")
	flags.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite, postgres or mongo)")
	flags.StringVar(&cfg.DatabaseURL, "d", "", "Database URL or SQLite file path")
	flags.StringVar(&cfg.MongoDatabase, "mongo-db", "", "MongoDB database name")

	// Secrets (prefer env variables, but allow CLI for dev)
	flags.StringVar(&cfg.JWTSecret, "jwt-secret", "", "HS256 token secret (prefer env)")

	// Vote policy
	flags.IntVar(&cfg.MonthlyQuota, "quota", 0, "Votes each user may cast per month")
	flags.Int64Var(&cfg.PerVoteRate, "rate", -1, "Reward per approved vote")
	flags.StringVar(&timezone, "tz", "", "IANA timezone that defines month boundaries")
	flags.IntVar(&cfg.LeaderboardLimit, "leaderboard-limit", 0, "Default leaderboard size")

	flags.StringVar(&origins, "cors", "", "Comma-separated allowed CORS origins")

	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var err error
	if cfg.Port == 0 {
		if cfg.Port, err = envInt("PORT", 8080); err != nil {
			return Config{}, err
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = envOr("DATABASE_TYPE", DatabaseSQLite)
	}
	cfg.DatabaseType = strings.ToLower(cfg.DatabaseType)

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		switch cfg.DatabaseType {
		case DatabaseSQLite:
			cfg.DatabaseURL = "./data/kudos.db"
		default:
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
	}
	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = envOr("MONGO_DATABASE", "kudos")
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("JWT_SECRET")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}

	if cfg.MonthlyQuota == 0 {
		if cfg.MonthlyQuota, err = envInt("KUDOS_MONTHLY_QUOTA", engine.DefaultMonthlyQuota); err != nil {
			return Config{}, err
		}
	}
	if cfg.PerVoteRate < 0 {
		rate, err := envInt("KUDOS_PER_VOTE_RATE", int(engine.DefaultConfig().PerVoteRate))
		if err != nil {
			return Config{}, err
		}
		cfg.PerVoteRate = int64(rate)
	}
	if cfg.LeaderboardLimit == 0 {
		if cfg.LeaderboardLimit, err = envInt("KUDOS_LEADERBOARD_LIMIT", engine.DefaultLeaderboardLimit); err != nil {
			return Config{}, err
		}
	}

	if timezone == "" {
		timezone = envOr("KUDOS_TIMEZONE", "UTC")
	}
	if cfg.Timezone, err = time.LoadLocation(timezone); err != nil {
		return Config{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	if origins == "" {
		origins = envOr("CORS_ALLOWED_ORIGINS", "*")
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that flags and env parsing cannot.
func (c Config) Validate() error {
	switch c.DatabaseType {
	case DatabaseSQLite, DatabasePostgres, DatabaseMongo:
	default:
		return fmt.Errorf("unsupported database type %q", c.DatabaseType)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if err := c.Engine().Validate(); err != nil {
		return err
	}
	return nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	return n, nil
}

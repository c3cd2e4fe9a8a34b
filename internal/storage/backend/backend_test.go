package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mmynk/kudos/internal/config"
)

func TestOpenSQLite(t *testing.T) {
	store, err := Open(context.Background(), config.Config{
		DatabaseType: config.DatabaseSQLite,
		DatabaseURL:  filepath.Join(t.TempDir(), "nested", "kudos.db"),
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestOpenUnknown(t *testing.T) {
	if _, err := Open(context.Background(), config.Config{DatabaseType: "oracle"}); err == nil {
		t.Error("expected error for unknown database type")
	}
}

package commands

import (
	"path/filepath"
	"testing"

	"github.com/colonyops/keyscope/internal/core/config"
	"github.com/colonyops/keyscope/internal/data/db"
	"github.com/colonyops/keyscope/internal/data/litestore"
	"github.com/colonyops/keyscope/internal/keyscope"
)

// newTestApp builds command fixtures over a real store in a temp dir.
func newTestApp(t *testing.T) (*Flags, *keyscope.App) {
	t.Helper()

	dataDir := t.TempDir()
	database, err := db.Open(filepath.Join(dataDir, "store"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	store := litestore.New(database)
	t.Cleanup(func() { _ = store.Close() })

	cfg := config.DefaultConfig()
	cfg.DataDir = dataDir

	flags := &Flags{Config: &cfg, DataDir: dataDir}
	return flags, keyscope.NewApp(&cfg, database, store)
}

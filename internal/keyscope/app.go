// Package keyscope wires the core keyspace services into one application
// entry point.
package keyscope

import (
	"github.com/colonyops/keyscope/internal/core/config"
	"github.com/colonyops/keyscope/internal/core/keyspace"
	"github.com/colonyops/keyscope/internal/data/db"
	"github.com/colonyops/keyscope/internal/data/litestore"
)

// App is the central entry point for all keyscope operations.
// Commands consume App instead of cherry-picking raw dependencies.
type App struct {
	Adapter    *keyspace.Adapter
	Resolver   *keyspace.Resolver
	Enumerator *keyspace.Enumerator
	Searcher   *keyspace.Searcher
	Duplicator *keyspace.Duplicator
	Codec      *keyspace.Codec

	Store  *litestore.Store
	Config *config.Config
	DB     *db.DB
}

// NewApp constructs an App from explicit dependencies.
func NewApp(cfg *config.Config, database *db.DB, store *litestore.Store) *App {
	adapter := keyspace.NewAdapter(store)
	resolver := keyspace.NewResolver(store, adapter)

	return &App{
		Adapter:    adapter,
		Resolver:   resolver,
		Enumerator: keyspace.NewEnumerator(store, resolver, cfg.Scan.PageSize),
		Searcher:   keyspace.NewSearcher(store, resolver, cfg.Scan.PageSize),
		Duplicator: keyspace.NewDuplicator(store, adapter),
		Codec:      keyspace.NewCodec(store, adapter),
		Store:      store,
		Config:     cfg,
		DB:         database,
	}
}

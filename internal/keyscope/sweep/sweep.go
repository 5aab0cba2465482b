// Package sweep periodically purges expired keys from the store.
package sweep

import (
	"context"
	"time"

	"github.com/colonyops/keyscope/internal/core/logging"
	"github.com/colonyops/keyscope/internal/data/litestore"
)

// Start deletes expired keys from the store on a fixed interval.
// It blocks until the context is cancelled, so callers run it in a goroutine.
func Start(ctx context.Context, store *litestore.Store, interval time.Duration) {
	log := logging.Component("sweep")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := store.SweepExpired(ctx)
			if err != nil {
				log.Debug().Err(err).Msg("sweep failed")
				continue
			}
			if purged > 0 {
				log.Debug().Int64("purged", purged).Msg("swept expired keys")
			}
		}
	}
}

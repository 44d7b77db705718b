// vocab_refresher.go implements the VocabRefresher background job, which
// periodically re-reads the attribute vocabularies from the database and
// rewrites the Redis cache. Validation reads vocabularies through the cache
// on every submission, so the refresher bounds how long a stale value set can
// reject or admit submissions after a vocabulary change. The job is a no-op
// when Redis is not configured, since reads then go straight to the database.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/cigardb/cigardb/internal/vocab"
)

// VocabRefresher periodically refreshes the cached vocabulary sets
type VocabRefresher struct {
	store    *vocab.Store
	interval time.Duration
	logger   *slog.Logger
	stopChan chan struct{}
}

// NewVocabRefresher creates a new VocabRefresher.
// interval controls how often the refresh runs; zero or negative defaults to
// five minutes.
func NewVocabRefresher(store *vocab.Store, interval time.Duration, logger *slog.Logger) *VocabRefresher {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &VocabRefresher{
		store:    store,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the background refresh loop. It runs an initial refresh
// immediately, then repeats on the configured interval. The loop exits when
// ctx is cancelled or Stop is called.
func (r *VocabRefresher) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("vocabulary refresher started", "interval", r.interval)

	r.refresh(ctx)

	for {
		select {
		case <-ticker.C:
			r.refresh(ctx)
		case <-r.stopChan:
			r.logger.Info("vocabulary refresher stopped")
			return
		case <-ctx.Done():
			r.logger.Info("vocabulary refresher context cancelled")
			return
		}
	}
}

// Stop signals the background loop to exit
func (r *VocabRefresher) Stop() {
	close(r.stopChan)
}

func (r *VocabRefresher) refresh(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := r.store.Refresh(refreshCtx); err != nil {
		r.logger.Error("vocabulary refresh failed", "error", err)
	}
}

package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mvailla/ytradar/internal/store"
)

// StatsUpdater re-captures video metrics at fixed week offsets after
// release and writes them into the history database.
type StatsUpdater struct {
	history  *store.History
	enricher *Enricher
	deltas   []int
	logger   *log.Logger
}

// NewStatsUpdater creates a StatsUpdater. The enricher should have the
// shorts probe disabled; shortness is settled at discovery time.
func NewStatsUpdater(history *store.History, enricher *Enricher, deltas []int, logger *log.Logger) *StatsUpdater {
	return &StatsUpdater{history: history, enricher: enricher, deltas: deltas, logger: logger}
}

// Update samples statistics for every video whose week offset comes due at
// ref. Videos deleted upstream are marked as such and never sampled again.
func (u *StatsUpdater) Update(ctx context.Context, ref time.Time) error {
	for _, delta := range u.deltas {
		ids, err := u.history.DueForDelta(delta, ref)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			continue
		}

		u.logger.Info("sampling weekly stats", "delta_weeks", delta, "videos", len(ids))

		stats, err := u.enricher.Enrich(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to sample stats at week %d: %w", delta, err)
		}
		if err := u.history.ApplyDelta(delta, stats); err != nil {
			return err
		}
	}
	return nil
}

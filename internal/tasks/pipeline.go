package tasks

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mvailla/ytradar/internal/models"
	"github.com/mvailla/ytradar/internal/youtube"
)

// RetryPolicy bounds the retry loop around playlist insertions.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxBackoff time.Duration
}

// Pipeline applies playlist mutations with classified retries and a durable
// queue for additions that must wait for a later run.
//
// Error handling follows the API's error taxonomy: transient errors are
// retried in place with backoff, permanent errors are logged and dropped,
// and everything else (quota exhaustion, unknown reasons, retries used up)
// is deferred to the failure queue, which is persisted on every change.
type Pipeline struct {
	api    API
	policy RetryPolicy
	queue  models.FailureQueue
	save   func(models.FailureQueue) error
	sleep  func(time.Duration)
	logger *log.Logger
}

// NewPipeline creates a Pipeline over an existing failure queue. save is
// called whenever the queue changes.
func NewPipeline(api API, policy RetryPolicy, queue models.FailureQueue, save func(models.FailureQueue) error, logger *log.Logger) *Pipeline {
	if queue == nil {
		queue = models.FailureQueue{}
	}
	return &Pipeline{
		api:    api,
		policy: policy,
		queue:  queue,
		save:   save,
		sleep:  time.Sleep,
		logger: logger,
	}
}

// Queue returns the live failure queue.
func (p *Pipeline) Queue() models.FailureQueue {
	return p.queue
}

// AddMany appends videos to a playlist and returns the ids actually added.
// An id absent from the result was abandoned or deferred, never silently
// lost. A non-API error (context cancellation, transport failure) aborts the
// batch; ids added before the abort are still reported.
func (p *Pipeline) AddMany(ctx context.Context, playlistID, playlistName string, videoIDs []string) ([]string, error) {
	added := make([]string, 0, len(videoIDs))
	for _, videoID := range videoIDs {
		ok, err := p.addOne(ctx, playlistID, playlistName, videoID)
		if err != nil {
			return added, err
		}
		if ok {
			added = append(added, videoID)
		}
	}
	return added, nil
}

func (p *Pipeline) addOne(ctx context.Context, playlistID, playlistName, videoID string) (bool, error) {
	for attempt := 0; ; attempt++ {
		err := p.api.InsertPlaylistItem(ctx, playlistID, videoID)
		if err == nil {
			return true, nil
		}

		apiErr, ok := youtube.AsAPIError(err)
		if !ok {
			return false, fmt.Errorf("failed to add %s to %s: %w", videoID, playlistID, err)
		}

		if apiErr.Transient() && attempt < p.policy.MaxRetries {
			delay := p.backoff(attempt)
			p.logger.Warn("transient error, retrying",
				"video", videoID, "reason", apiErr.Reason, "attempt", attempt+1, "delay", delay)
			p.sleep(delay)
			continue
		}

		if apiErr.Permanent() {
			p.logger.Warn("abandoning addition",
				"video", videoID, "playlist", playlistID, "reason", apiErr.Reason)
			return false, nil
		}

		p.enqueue(playlistID, playlistName, videoID, apiErr)
		return false, nil
	}
}

// backoff computes an equal-jitter exponential delay: the capped exponential
// value halved, plus a uniform random amount up to the other half.
func (p *Pipeline) backoff(attempt int) time.Duration {
	delay := time.Duration(float64(p.policy.BaseDelay) * math.Exp(float64(attempt)))
	if delay <= 0 || delay > p.policy.MaxBackoff {
		delay = p.policy.MaxBackoff
	}
	half := delay / 2
	return half + time.Duration(rand.Float64()*float64(half))
}

func (p *Pipeline) enqueue(playlistID, playlistName, videoID string, apiErr *youtube.APIError) {
	p.logger.Warn("deferring addition to next run",
		"video", videoID, "playlist", playlistName, "reason", apiErr.Reason)

	p.queue.Append(playlistID, videoID)
	p.queue[playlistID].Name = playlistName

	if err := p.save(p.queue); err != nil {
		p.logger.Error("failed to persist failure queue", "err", err)
	}
}

// RemoveMany deletes playlist entries best-effort and returns how many are
// gone. An entry that was already deleted counts as removed.
func (p *Pipeline) RemoveMany(ctx context.Context, refs []models.ItemRef) int {
	removed := 0
	for _, ref := range refs {
		if err := p.api.DeletePlaylistItem(ctx, ref.ItemID); err != nil && !youtube.IsNotFound(err) {
			p.logger.Warn("failed to remove playlist entry",
				"item", ref.ItemID, "video", ref.VideoID, "err", err)
			continue
		}
		removed++
	}
	return removed
}

// DrainFailures replays the deferred additions from previous runs. The
// persisted queue is cleared before replaying so entries that fail again are
// re-queued fresh instead of duplicated.
func (p *Pipeline) DrainFailures(ctx context.Context) error {
	if !p.queue.Pending() {
		return nil
	}

	snapshot := p.queue
	p.queue = models.FailureQueue{}
	if err := p.save(p.queue); err != nil {
		p.queue = snapshot
		return fmt.Errorf("failed to clear failure queue: %w", err)
	}

	for playlistID, entry := range snapshot {
		if entry == nil || len(entry.Failure) == 0 {
			continue
		}
		p.logger.Info("retrying deferred additions", "playlist", entry.Name, "count", len(entry.Failure))
		if _, err := p.AddMany(ctx, playlistID, entry.Name, entry.Failure); err != nil {
			return err
		}
	}

	return nil
}

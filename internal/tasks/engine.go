package tasks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mvailla/ytradar/internal/models"
	"github.com/mvailla/ytradar/internal/router"
	"github.com/mvailla/ytradar/internal/shared"
	"github.com/mvailla/ytradar/internal/store"
)

// Engine wires the tasks together and runs them in order. Reference data is
// loaded fresh at the start of each operation so edits to the data files
// take effect without a restart.
type Engine struct {
	api     API
	store   *store.Store
	history *store.History
	config  *shared.Config
	now     func() time.Time
	logger  *log.Logger
}

// NewEngine creates an Engine.
func NewEngine(api API, st *store.Store, history *store.History, config *shared.Config, logger *log.Logger) *Engine {
	return &Engine{api: api, store: st, history: history, config: config, now: time.Now, logger: logger}
}

func (e *Engine) retryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: e.config.API.MaxRetries,
		BaseDelay:  e.config.BaseDelay(),
		MaxBackoff: e.config.MaxBackoff(),
	}
}

func (e *Engine) newPipeline() (*Pipeline, error) {
	queue, err := e.store.FailureQueue()
	if err != nil {
		return nil, err
	}
	return NewPipeline(e.api, e.retryPolicy(), queue, e.store.SaveFailureQueue, e.logger), nil
}

// Run executes a full reconciliation: replay deferred additions, discover
// and route new videos, record history, sample weekly stats, refill the
// radar, and clean up expired entries and ended streams.
//
// days > 0 overrides the discovery window to the last days*24h instead of
// picking up from the previous run.
func (e *Engine) Run(ctx context.Context, days int) error {
	now := e.now()

	subs, err := e.store.Subscriptions()
	if err != nil {
		return err
	}
	playlists, err := e.store.Playlists()
	if err != nil {
		return err
	}
	addOn, err := e.store.AddOn()
	if err != nil {
		return err
	}
	rt, err := buildRouter(subs, playlists, addOn, e.config)
	if err != nil {
		return err
	}
	pipeline, err := e.newPipeline()
	if err != nil {
		return err
	}

	runID, err := e.history.StartRun(now)
	if err != nil {
		return err
	}

	since := e.store.LastRun(now)
	if days > 0 {
		since = now.AddDate(0, 0, -days)
	}
	window := NewWindow(since, now)
	e.logger.Info("starting run", "since", window.Since, "until", window.Until)

	// Deferred additions from previous runs go first, so recovered videos
	// land before today's discoveries.
	if err := pipeline.DrainFailures(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRunAborted, err)
	}

	fetcher := NewFetcher(e.api, addOn, e.logger)
	items, err := fetcher.Collect(ctx, subscribedChannels(subs), window)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRunAborted, err)
	}
	e.logger.Info("discovery complete", "videos", len(items))

	enricher := NewEnricher(e.api, true, e.logger)
	videos, err := e.enrichAndRoute(ctx, enricher, rt, items)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRunAborted, err)
	}

	routed, err := e.addRouted(ctx, pipeline, playlists, videos)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRunAborted, err)
	}

	// Upcoming streams carry a scheduled date, not a release date; they
	// enter history once discovered again as published videos.
	recordable := make([]models.VideoData, 0, len(videos))
	for _, video := range videos {
		if video.LiveStatus == models.LiveStatusUpcoming {
			continue
		}
		recordable = append(recordable, video)
	}
	if err := e.history.Record(runID, recordable); err != nil {
		return err
	}

	sampler := NewStatsUpdater(e.history, NewEnricher(e.api, false, e.logger), e.config.Stats.WeekDeltas, e.logger)
	if err := sampler.Update(ctx, now); err != nil {
		return err
	}

	balancer := NewBalancer(e.api, pipeline, e.config.Playlists.ReleaseRadarTargetSize, e.config.AgingWindow(), e.logger)
	if err := balancer.Fill(ctx, playlists[store.PlaylistRelease], playlists[store.PlaylistReListening], playlists[store.PlaylistLegacy]); err != nil {
		return err
	}

	if err := e.cleanup(ctx, playlists); err != nil {
		return err
	}

	if err := e.store.SaveLastRun(now); err != nil {
		return err
	}
	if err := e.history.FinishRun(runID, e.now(), len(items), routed); err != nil {
		return err
	}

	e.logger.Info("run complete", "discovered", len(items), "routed", routed)
	return nil
}

// enrichAndRoute merges discovered items with their statistics and assigns
// each a destination.
func (e *Engine) enrichAndRoute(ctx context.Context, enricher *Enricher, rt *router.Router, items []models.PlaylistItem) ([]models.VideoData, error) {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.VideoID
	}

	stats, err := enricher.Enrich(ctx, ids)
	if err != nil {
		return nil, err
	}

	videos := make([]models.VideoData, len(items))
	for i := range items {
		video := models.MergeStats(items[i], stats[i])
		video.Destination = rt.Route(video.SourceChannelID, video.IsShort, video.Duration, video.LiveStatus)
		videos[i] = video
	}
	return videos, nil
}

// addRouted groups routed videos by destination playlist and submits them
// through the pipeline. Shorts, untracked videos, and videos deleted between
// discovery and enrichment are skipped.
func (e *Engine) addRouted(ctx context.Context, pipeline *Pipeline, playlists map[string]models.PlaylistConfig, videos []models.VideoData) (int, error) {
	names := make(map[string]string, len(playlists))
	for _, playlist := range playlists {
		names[playlist.ID] = playlist.Name
	}

	byDest := make(map[string][]string)
	routed := 0
	for _, video := range videos {
		if video.Destination == router.DestShorts || video.Destination == router.DestNone {
			continue
		}
		if video.LatestStatus == models.StatusDeleted {
			continue
		}
		byDest[video.Destination] = append(byDest[video.Destination], video.VideoID)
		routed++
	}

	for destID, videoIDs := range byDest {
		e.logger.Info("adding videos", "playlist", names[destID], "count", len(videoIDs))
		if _, err := pipeline.AddMany(ctx, destID, names[destID], videoIDs); err != nil {
			return routed, err
		}
	}
	return routed, nil
}

func (e *Engine) cleanup(ctx context.Context, playlists map[string]models.PlaylistConfig) error {
	cleaner := NewCleaner(e.api, e.logger)
	if err := cleaner.ExpiredVideos(ctx, playlists); err != nil {
		return err
	}
	for _, playlist := range playlists {
		if !playlist.CleanupOnEnd {
			continue
		}
		if err := cleaner.EndedStreams(ctx, playlist); err != nil {
			return err
		}
	}
	return nil
}

// Retry replays the persisted failure queue without running discovery.
func (e *Engine) Retry(ctx context.Context) error {
	pipeline, err := e.newPipeline()
	if err != nil {
		return err
	}
	if !pipeline.Queue().Pending() {
		e.logger.Info("failure queue is empty")
		return nil
	}
	return pipeline.DrainFailures(ctx)
}

// Balance refills the release radar without running discovery.
func (e *Engine) Balance(ctx context.Context) error {
	playlists, err := e.store.Playlists()
	if err != nil {
		return err
	}
	pipeline, err := e.newPipeline()
	if err != nil {
		return err
	}
	balancer := NewBalancer(e.api, pipeline, e.config.Playlists.ReleaseRadarTargetSize, e.config.AgingWindow(), e.logger)
	return balancer.Fill(ctx, playlists[store.PlaylistRelease], playlists[store.PlaylistReListening], playlists[store.PlaylistLegacy])
}

// Cleanup runs the retention and ended-streams sweeps on their own.
func (e *Engine) Cleanup(ctx context.Context) error {
	playlists, err := e.store.Playlists()
	if err != nil {
		return err
	}
	return e.cleanup(ctx, playlists)
}

// UpdateStats samples overdue weekly statistics on its own.
func (e *Engine) UpdateStats(ctx context.Context) error {
	sampler := NewStatsUpdater(e.history, NewEnricher(e.api, false, e.logger), e.config.Stats.WeekDeltas, e.logger)
	return sampler.Update(ctx, e.now())
}

// SortDatabase rewrites the subscriptions file with each category's channels
// ordered by channel title, case-insensitively. Channels whose title cannot
// be resolved sort first under their empty title.
func (e *Engine) SortDatabase(ctx context.Context) error {
	subs, err := e.store.Subscriptions()
	if err != nil {
		return err
	}

	var unique []string
	seen := make(map[string]bool)
	for _, ids := range subs {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				unique = append(unique, id)
			}
		}
	}

	titles := make(map[string]string, len(unique))
	chunkSize := e.api.PageSize()
	for start := 0; start < len(unique); start += chunkSize {
		end := min(start+chunkSize, len(unique))
		channels, err := e.api.ListChannels(ctx, unique[start:end])
		if err != nil {
			return fmt.Errorf("failed to resolve channel titles: %w", err)
		}
		for _, channel := range channels {
			titles[channel.ID] = channel.Title
		}
	}

	for category, ids := range subs {
		sort.SliceStable(ids, func(i, j int) bool {
			return strings.ToLower(titles[ids[i]]) < strings.ToLower(titles[ids[j]])
		})
		subs[category] = ids
	}

	e.logger.Info("sorted subscription database", "channels", len(unique))
	return e.store.SaveSubscriptions(subs)
}

// subscribedChannels flattens the category database into a deduplicated
// channel list, music first, then categories in priority order.
func subscribedChannels(subs map[string][]string) []string {
	order := append([]string{store.CategoryMusic}, store.CategoryPriority...)

	var channels []string
	seen := make(map[string]bool)
	for _, category := range order {
		for _, id := range subs[category] {
			if !seen[id] {
				seen[id] = true
				channels = append(channels, id)
			}
		}
	}
	return channels
}

// buildRouter assembles routing reference data from the loaded files. The
// entertainment and gaming categories share a playlist.
func buildRouter(subs map[string][]string, playlists map[string]models.PlaylistConfig, addOn models.AddOnConfig, config *shared.Config) (*router.Router, error) {
	toSet := func(ids []string) map[string]bool {
		set := make(map[string]bool, len(ids))
		for _, id := range ids {
			set[id] = true
		}
		return set
	}

	categoryTargets := map[string]string{
		store.CategoryLearning:      store.PlaylistLearning,
		store.CategoryEntertainment: store.PlaylistEntertainment,
		store.CategoryGaming:        store.PlaylistEntertainment,
		store.CategoryASMR:          store.PlaylistASMR,
	}

	categoryChannels := make(map[string]map[string]bool, len(categoryTargets))
	categoryPlaylists := make(map[string]string, len(categoryTargets))
	for category, key := range categoryTargets {
		categoryChannels[category] = toSet(subs[category])
		categoryPlaylists[category] = playlists[key].ID
	}

	return router.New(router.Config{
		MusicChannels:             toSet(subs[store.CategoryMusic]),
		FavoriteChannels:          addOn.FavoriteIDs(),
		CategoryChannels:          categoryChannels,
		CategoryPriority:          store.CategoryPriority,
		CategoryPlaylists:         categoryPlaylists,
		ReleaseRadarID:            playlists[store.PlaylistRelease].ID,
		BangerRadarID:             playlists[store.PlaylistBanger].ID,
		MusicLivesID:              playlists[store.PlaylistMusicLives].ID,
		RegularStreamsID:          playlists[store.PlaylistStreams].ID,
		LongVideoThresholdMinutes: config.Video.LongVideoThresholdMinutes,
	})
}

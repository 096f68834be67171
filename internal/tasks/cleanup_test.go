package tasks

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/mvailla/ytradar/internal/models"
	"github.com/mvailla/ytradar/internal/shared"
	"github.com/mvailla/ytradar/internal/youtube"
)

func newTestCleaner(api *fakeAPI, now time.Time) *Cleaner {
	c := NewCleaner(api, shared.NewLogger(io.Discard))
	c.now = func() time.Time { return now }
	return c
}

func TestExpiredVideos(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 4, 0, 0, 0, time.UTC)
	retention := 31

	playlists := map[string]models.PlaylistConfig{
		"learning": {ID: "PLlearn", Name: "Learning", RetentionDays: &retention},
		"release":  {ID: "PLrelease", Name: "Release Radar"},
	}

	t.Run("removes entries past retention", func(t *testing.T) {
		api := newFakeAPI()
		api.setFeed("PLlearn", []youtube.FeedEntry{
			sourceEntry("fresh", now.AddDate(0, 0, -10)),
			sourceEntry("stale", now.AddDate(0, 0, -45)),
		})

		if err := newTestCleaner(api, now).ExpiredVideos(ctx, playlists); err != nil {
			t.Fatalf("ExpiredVideos failed: %v", err)
		}
		if len(api.deleted) != 1 || api.deleted[0] != "item-stale" {
			t.Errorf("expected only the stale entry deleted, got %v", api.deleted)
		}
	})

	t.Run("playlists without retention are untouched", func(t *testing.T) {
		api := newFakeAPI()
		api.setFeed("PLlearn", nil)
		api.setFeed("PLrelease", []youtube.FeedEntry{sourceEntry("ancient", now.AddDate(-1, 0, 0))})

		if err := newTestCleaner(api, now).ExpiredVideos(ctx, playlists); err != nil {
			t.Fatalf("ExpiredVideos failed: %v", err)
		}
		if len(api.deleted) != 0 {
			t.Errorf("expected no deletions, got %v", api.deleted)
		}
	})

	t.Run("a list failure moves on to the next playlist", func(t *testing.T) {
		both := map[string]models.PlaylistConfig{
			"learning": {ID: "PLlearn", Name: "Learning", RetentionDays: &retention},
			"asmr":     {ID: "PLasmr", Name: "ASMR", RetentionDays: &retention},
		}
		api := newFakeAPI()
		// PLlearn has no feed installed, so listing it fails outright.
		api.setFeed("PLasmr", []youtube.FeedEntry{sourceEntry("stale", now.AddDate(0, 0, -45))})

		if err := newTestCleaner(api, now).ExpiredVideos(ctx, both); err != nil {
			t.Fatalf("a single playlist failure must not stop the sweep: %v", err)
		}
		if len(api.deleted) != 1 || api.deleted[0] != "item-stale" {
			t.Errorf("expected the healthy playlist still swept, got %v", api.deleted)
		}
	})

	t.Run("quota while listing still cleans the collected pages", func(t *testing.T) {
		api := newFakeAPI()
		api.setFeed("PLlearn",
			[]youtube.FeedEntry{sourceEntry("stale", now.AddDate(0, 0, -45))},
			[]youtube.FeedEntry{sourceEntry("unreached", now.AddDate(0, 0, -45))},
		)
		api.pageErr = func(_, pageToken string) error {
			if pageToken == "page-1" {
				return &youtube.APIError{StatusCode: 403, Reason: "quotaExceeded"}
			}
			return nil
		}

		if err := newTestCleaner(api, now).ExpiredVideos(ctx, playlists); err != nil {
			t.Fatalf("quota must not surface as an error: %v", err)
		}
		if len(api.deleted) != 1 || api.deleted[0] != "item-stale" {
			t.Errorf("expected the collected entry deleted, got %v", api.deleted)
		}
	})

	t.Run("quota during deletion stops quietly", func(t *testing.T) {
		api := newFakeAPI()
		api.setFeed("PLlearn", []youtube.FeedEntry{
			sourceEntry("stale1", now.AddDate(0, 0, -45)),
			sourceEntry("stale2", now.AddDate(0, 0, -45)),
		})
		api.deleteErr = func(itemID string) error {
			if itemID == "item-stale2" {
				return &youtube.APIError{StatusCode: 403, Reason: "quotaExceeded"}
			}
			return nil
		}

		if err := newTestCleaner(api, now).ExpiredVideos(ctx, playlists); err != nil {
			t.Fatalf("quota must not surface as an error: %v", err)
		}
		if len(api.deleted) != 1 {
			t.Errorf("expected the first deletion to land, got %v", api.deleted)
		}
	})
}

func TestEndedStreams(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 4, 0, 0, 0, time.UTC)
	playlist := models.PlaylistConfig{ID: "PLstreams", Name: "Streams", CleanupOnEnd: true}

	t.Run("removes ended and vanished streams", func(t *testing.T) {
		api := newFakeAPI()
		api.setFeed("PLstreams", []youtube.FeedEntry{
			sourceEntry("stream-live", now),
			sourceEntry("stream-soon", now),
			sourceEntry("stream-done", now),
			sourceEntry("stream-gone", now),
		})
		api.videos["stream-live"] = youtube.Video{ID: "stream-live", LiveStatus: models.LiveStatusLive}
		api.videos["stream-soon"] = youtube.Video{ID: "stream-soon", LiveStatus: models.LiveStatusUpcoming}
		api.videos["stream-done"] = youtube.Video{ID: "stream-done", LiveStatus: models.LiveStatusNone}
		// stream-gone is absent from the videos endpoint entirely.

		if err := newTestCleaner(api, now).EndedStreams(ctx, playlist); err != nil {
			t.Fatalf("EndedStreams failed: %v", err)
		}

		deleted := map[string]bool{}
		for _, id := range api.deleted {
			deleted[id] = true
		}
		if !deleted["item-stream-done"] || !deleted["item-stream-gone"] {
			t.Errorf("expected ended and vanished streams removed, got %v", api.deleted)
		}
		if deleted["item-stream-live"] || deleted["item-stream-soon"] {
			t.Errorf("live and upcoming streams must stay, got %v", api.deleted)
		}
	})

	t.Run("quota while paginating still removes collected ended streams", func(t *testing.T) {
		api := newFakeAPI()
		api.setFeed("PLstreams",
			[]youtube.FeedEntry{sourceEntry("stream-done", now)},
			[]youtube.FeedEntry{sourceEntry("stream-live", now)},
		)
		api.pageErr = func(_, pageToken string) error {
			if pageToken == "page-1" {
				return &youtube.APIError{StatusCode: 403, Reason: "quotaExceeded"}
			}
			return nil
		}
		api.videos["stream-done"] = youtube.Video{ID: "stream-done", LiveStatus: models.LiveStatusNone}

		if err := newTestCleaner(api, now).EndedStreams(ctx, playlist); err != nil {
			t.Fatalf("quota must not surface as an error: %v", err)
		}
		if len(api.deleted) != 1 || api.deleted[0] != "item-stream-done" {
			t.Errorf("expected the collected ended stream removed, got %v", api.deleted)
		}
	})

	t.Run("a failed status check never counts as ended", func(t *testing.T) {
		api := newFakeAPI()
		api.setFeed("PLstreams", []youtube.FeedEntry{sourceEntry("stream-done", now)})
		api.listErr = func([]string) error {
			return &youtube.APIError{StatusCode: 503, Reason: "serviceUnavailable"}
		}

		if err := newTestCleaner(api, now).EndedStreams(ctx, playlist); err != nil {
			t.Fatalf("a status check failure must not surface as an error: %v", err)
		}
		if len(api.deleted) != 0 {
			t.Errorf("unchecked entries must stay, got %v", api.deleted)
		}
	})
}

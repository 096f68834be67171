package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mvailla/ytradar/internal/models"
	"github.com/mvailla/ytradar/internal/youtube"
)

// Window is the half-open discovery interval [Since, Until). Bounds are
// truncated to the hour so that consecutive runs tile without gaps or
// overlaps regardless of exact start times.
type Window struct {
	Since time.Time
	Until time.Time
}

// NewWindow builds the discovery window for a run starting at now, picking
// up where the previous run left off.
func NewWindow(lastRun, now time.Time) Window {
	return Window{Since: lastRun.Truncate(time.Hour), Until: now.Truncate(time.Hour)}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Since) && t.Before(w.Until)
}

// uploadsPlaylistID maps a channel id to its uploads feed. Channel ids start
// with UC; the corresponding uploads playlist swaps that prefix for UU.
func uploadsPlaylistID(channelID string) string {
	if strings.HasPrefix(channelID, "UC") {
		return "UU" + channelID[2:]
	}
	return channelID
}

// listAllItems pages through a playlist's full contents. On error it returns
// the entries collected so far along with the error, so quota-tolerant
// callers can still act on a partial listing.
func listAllItems(ctx context.Context, api API, playlistID string) ([]youtube.FeedEntry, error) {
	var entries []youtube.FeedEntry
	pageToken := ""
	for {
		page, err := api.PlaylistItemsPage(ctx, playlistID, pageToken)
		if err != nil {
			return entries, err
		}
		entries = append(entries, page.Items...)
		if page.NextPageToken == "" {
			return entries, nil
		}
		pageToken = page.NextPageToken
	}
}

// Fetcher discovers recently published videos across subscribed channels.
type Fetcher struct {
	api    API
	addOn  models.AddOnConfig
	logger *log.Logger
}

// NewFetcher creates a Fetcher applying the given channel overrides.
func NewFetcher(api API, addOn models.AddOnConfig, logger *log.Logger) *Fetcher {
	return &Fetcher{api: api, addOn: addOn, logger: logger}
}

// Collect walks each channel's uploads feed and returns the videos published
// inside the window. Channels on the skip list are ignored; a missing feed
// skips the channel (with a warning unless the channel is known to have
// none); any other API failure aborts the whole collection.
func (f *Fetcher) Collect(ctx context.Context, channelIDs []string, window Window) ([]models.PlaylistItem, error) {
	var items []models.PlaylistItem

	for _, channelID := range channelIDs {
		if f.addOn.SkipsChannel(channelID) {
			f.logger.Debug("skipping channel", "channel", channelID)
			continue
		}

		channelItems, err := f.collectChannel(ctx, channelID, window)
		if err != nil {
			if apiErr, ok := youtube.AsAPIError(err); ok && apiErr.NotFound() {
				if !f.addOn.AllowsMissingFeed(channelID) {
					f.logger.Warn("upload feed not found", "channel", channelID)
				}
				continue
			}
			return nil, fmt.Errorf("failed to collect channel %s: %w", channelID, err)
		}

		items = append(items, channelItems...)
	}

	return items, nil
}

// collectChannel pages through one uploads feed. Feeds are newest-first, so
// paging stops once a page reaches entries older than the window; the rest
// of that page is still scanned in case ordering hiccups.
func (f *Fetcher) collectChannel(ctx context.Context, channelID string, window Window) ([]models.PlaylistItem, error) {
	feedID := uploadsPlaylistID(channelID)

	var items []models.PlaylistItem
	pageToken := ""
	for {
		page, err := f.api.PlaylistItemsPage(ctx, feedID, pageToken)
		if err != nil {
			return nil, err
		}

		exhausted := false
		for _, entry := range page.Items {
			if entry.VideoPublishedAt == nil {
				f.logger.Debug("skipping undated entry", "video", entry.VideoID, "status", entry.PrivacyStatus)
				continue
			}

			published := *entry.VideoPublishedAt
			if published.Before(window.Since) {
				exhausted = true
				continue
			}
			if !window.Contains(published) {
				continue
			}

			item, err := models.NewPlaylistItem(entry.VideoID, entry.Title, entry.ItemID,
				published, entry.PrivacyStatus, entry.OwnerChannelID, entry.OwnerChannelName, channelID)
			if err != nil {
				f.logger.Warn("skipping malformed entry", "channel", channelID, "err", err)
				continue
			}
			items = append(items, item)
		}

		if exhausted || page.NextPageToken == "" {
			return items, nil
		}
		pageToken = page.NextPageToken
	}
}

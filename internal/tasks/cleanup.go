package tasks

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mvailla/ytradar/internal/models"
	"github.com/mvailla/ytradar/internal/youtube"
)

// Cleaner removes expired playlist entries and finished live streams.
type Cleaner struct {
	api    API
	now    func() time.Time
	logger *log.Logger
}

// NewCleaner creates a Cleaner.
func NewCleaner(api API, logger *log.Logger) *Cleaner {
	return &Cleaner{api: api, now: time.Now, logger: logger}
}

// ExpiredVideos sweeps every playlist with a retention policy, removing
// entries that have been in the playlist longer than their allowance. A
// failed listing still submits the entries collected before the failure and
// the sweep moves on to the remaining playlists.
func (c *Cleaner) ExpiredVideos(ctx context.Context, playlists map[string]models.PlaylistConfig) error {
	for _, playlist := range playlists {
		if playlist.RetentionDays == nil {
			continue
		}
		cutoff := c.now().AddDate(0, 0, -*playlist.RetentionDays)

		entries, listErr := listAllItems(ctx, c.api, playlist.ID)
		if listErr != nil {
			c.logger.Warn("playlist listing incomplete, cleaning what was collected",
				"playlist", playlist.Name, "err", listErr)
		}

		var expired []models.ItemRef
		for _, entry := range entries {
			if entry.AddedAt.Before(cutoff) {
				expired = append(expired, models.ItemRef{ItemID: entry.ItemID, VideoID: entry.VideoID, AddedAt: entry.AddedAt})
			}
		}

		if len(expired) > 0 {
			c.logger.Info("removing expired entries", "playlist", playlist.Name, "count", len(expired))
			if err := c.deleteRefs(ctx, expired); err != nil {
				return err
			}
		}
	}

	return nil
}

// EndedStreams removes entries from a live-streams playlist whose broadcast
// has ended or whose video is gone. Listing and status-check failures leave
// the sweep to act on whatever was collected; unchecked entries are never
// treated as ended.
func (c *Cleaner) EndedStreams(ctx context.Context, playlist models.PlaylistConfig) error {
	entries, listErr := listAllItems(ctx, c.api, playlist.ID)
	if listErr != nil {
		c.logger.Warn("playlist listing incomplete, checking what was collected",
			"playlist", playlist.Name, "err", listErr)
	}
	if len(entries) == 0 {
		return nil
	}

	videoIDs := make([]string, len(entries))
	for i, entry := range entries {
		videoIDs[i] = entry.VideoID
	}

	byID := make(map[string]youtube.Video, len(videoIDs))
	checked := make(map[string]bool, len(videoIDs))
	chunkSize := c.api.PageSize()
	for start := 0; start < len(videoIDs); start += chunkSize {
		end := min(start+chunkSize, len(videoIDs))
		batch := videoIDs[start:end]
		videos, err := c.api.ListVideos(ctx, batch)
		if err != nil {
			c.logger.Warn("failed to fetch stream batch, skipping", "count", len(batch), "err", err)
			continue
		}
		for _, id := range batch {
			checked[id] = true
		}
		for _, video := range videos {
			byID[video.ID] = video
		}
	}

	var ended []models.ItemRef
	for _, entry := range entries {
		if !checked[entry.VideoID] {
			continue
		}
		video, ok := byID[entry.VideoID]
		if !ok || video.LiveStatus == "" || video.LiveStatus == models.LiveStatusNone {
			ended = append(ended, models.ItemRef{ItemID: entry.ItemID, VideoID: entry.VideoID, AddedAt: entry.AddedAt})
		}
	}

	if len(ended) == 0 {
		return nil
	}
	c.logger.Info("removing ended streams", "playlist", playlist.Name, "count", len(ended))
	return c.deleteRefs(ctx, ended)
}

// deleteRefs deletes entries one by one. Entries already gone are fine;
// quota exhaustion abandons the remainder until the next run; any other
// failure is logged and skipped.
func (c *Cleaner) deleteRefs(ctx context.Context, refs []models.ItemRef) error {
	for i, ref := range refs {
		if err := c.api.DeletePlaylistItem(ctx, ref.ItemID); err != nil {
			if youtube.IsNotFound(err) {
				continue
			}
			if youtube.IsQuota(err) {
				c.logger.Warn("quota exhausted during deletion", "remaining", len(refs)-i)
				return nil
			}
			c.logger.Warn("failed to delete entry", "item", ref.ItemID, "video", ref.VideoID, "err", err)
		}
	}
	return nil
}

package models

import (
	"fmt"
	"time"
)

// Live broadcast statuses reported by the videos endpoint.
const (
	LiveStatusNone     = "none"
	LiveStatusUpcoming = "upcoming"
	LiveStatusLive     = "live"
)

// Privacy statuses. StatusDeleted is synthesized locally for videos the API
// no longer returns.
const (
	StatusPublic   = "public"
	StatusUnlisted = "unlisted"
	StatusPrivate  = "private"
	StatusDeleted  = "deleted"
)

// PlaylistItem is a video discovered in a channel's upload feed.
//
// SourceChannelID is the channel that was being iterated, which can differ
// from ChannelID when uploads are re-attributed to an auto-generated artist
// channel. It is set at construction and never mutated afterwards.
type PlaylistItem struct {
	VideoID         string
	Title           string
	ItemID          string
	ReleaseDate     time.Time
	Status          string
	ChannelID       string
	ChannelName     string
	SourceChannelID string
}

// NewPlaylistItem constructs a PlaylistItem, validating the fields routing
// and deletion depend on.
func NewPlaylistItem(videoID, title, itemID string, releaseDate time.Time, status, channelID, channelName, sourceChannelID string) (PlaylistItem, error) {
	if videoID == "" {
		return PlaylistItem{}, fmt.Errorf("video id cannot be empty")
	}
	if sourceChannelID == "" {
		return PlaylistItem{}, fmt.Errorf("source channel id cannot be empty for video %s", videoID)
	}

	return PlaylistItem{
		VideoID:         videoID,
		Title:           title,
		ItemID:          itemID,
		ReleaseDate:     releaseDate,
		Status:          status,
		ChannelID:       channelID,
		ChannelName:     channelName,
		SourceChannelID: sourceChannelID,
	}, nil
}

// VideoStats holds per-video metrics. Numeric fields are pointers because a
// video that has vanished upstream yields a synthetic record with all
// metrics nil and LatestStatus "deleted"; it must still flow downstream.
type VideoStats struct {
	VideoID      string
	Views        *int64
	Likes        *int64
	Comments     *int64
	Duration     *int
	IsShort      *bool
	LiveStatus   string
	LatestStatus string
}

// DeletedStats returns the synthetic record emitted for a requested video id
// the API did not return.
func DeletedStats(videoID string) VideoStats {
	return VideoStats{VideoID: videoID, LatestStatus: StatusDeleted}
}

// VideoData is a PlaylistItem merged with its VideoStats, plus the
// destination assigned by the router.
type VideoData struct {
	PlaylistItem

	Views        *int64
	Likes        *int64
	Comments     *int64
	Duration     *int
	IsShort      *bool
	LiveStatus   string
	LatestStatus string
	Destination  string
}

// MergeStats combines a discovered item with its fetched statistics.
func MergeStats(item PlaylistItem, stats VideoStats) VideoData {
	liveStatus := stats.LiveStatus
	if liveStatus == "" {
		liveStatus = LiveStatusNone
	}

	return VideoData{
		PlaylistItem: item,
		Views:        stats.Views,
		Likes:        stats.Likes,
		Comments:     stats.Comments,
		Duration:     stats.Duration,
		IsShort:      stats.IsShort,
		LiveStatus:   liveStatus,
		LatestStatus: stats.LatestStatus,
	}
}

// ItemRef identifies a playlist entry for deletion. AddedAt is the time the
// video was added to the playlist, when known.
type ItemRef struct {
	ItemID  string
	VideoID string
	AddedAt time.Time
}

// PlaylistConfig describes a managed playlist.
//
// RetentionDays, when set, bounds how long an entry may stay in the playlist
// before the cleanup sweep removes it. CleanupOnEnd marks playlists whose
// entries are removed once their live broadcast has ended.
type PlaylistConfig struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	RetentionDays *int   `json:"retention_days,omitempty"`
	CleanupOnEnd  bool   `json:"cleanup_on_end,omitempty"`
}

// Validate checks required fields and bounds.
func (p PlaylistConfig) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("playlist id cannot be empty")
	}
	if p.Name == "" {
		return fmt.Errorf("playlist %s: name cannot be empty", p.ID)
	}
	if p.RetentionDays != nil && *p.RetentionDays < 0 {
		return fmt.Errorf("playlist %s: retention_days must be >= 0, got %d", p.ID, *p.RetentionDays)
	}
	return nil
}

// AddOnConfig carries channel handling overrides.
type AddOnConfig struct {
	// Favorites maps channel names to channel ids; favorite music channels
	// route to the banger radar.
	Favorites map[string]string `json:"favorites"`
	// PlaylistNotFoundPass lists channel ids whose missing upload feed is
	// expected (no warning on 404).
	PlaylistNotFoundPass []string `json:"playlistNotFoundPass"`
	// ToPass lists channel ids skipped entirely during discovery.
	ToPass []string `json:"toPass"`
	// Certified is a legacy field kept for file compatibility.
	Certified []string `json:"certified"`
}

// Validate checks the favorites mapping is present.
func (a AddOnConfig) Validate() error {
	if a.Favorites == nil {
		return fmt.Errorf("add-on config: favorites must be set")
	}
	return nil
}

// SkipsChannel reports whether the channel is excluded from discovery.
func (a AddOnConfig) SkipsChannel(channelID string) bool {
	for _, id := range a.ToPass {
		if id == channelID {
			return true
		}
	}
	return false
}

// AllowsMissingFeed reports whether a 404 on the channel's upload feed is
// expected and should not be logged.
func (a AddOnConfig) AllowsMissingFeed(channelID string) bool {
	for _, id := range a.PlaylistNotFoundPass {
		if id == channelID {
			return true
		}
	}
	return false
}

// FavoriteIDs returns the set of favorite channel ids.
func (a AddOnConfig) FavoriteIDs() map[string]bool {
	ids := make(map[string]bool, len(a.Favorites))
	for _, id := range a.Favorites {
		ids[id] = true
	}
	return ids
}

// FailureEntry holds additions to a single playlist deferred to a later run.
type FailureEntry struct {
	Name    string   `json:"name"`
	Failure []string `json:"failure"`
}

// FailureQueue maps playlist ids to their deferred additions. It is the only
// run-scoped state persisted across runs.
type FailureQueue map[string]*FailureEntry

// Pending reports whether any playlist has deferred additions.
func (q FailureQueue) Pending() bool {
	for _, entry := range q {
		if entry != nil && len(entry.Failure) > 0 {
			return true
		}
	}
	return false
}

// Append records a failed addition for a playlist, creating the entry if the
// playlist has no queue yet.
func (q FailureQueue) Append(playlistID, videoID string) {
	entry, ok := q[playlistID]
	if !ok || entry == nil {
		entry = &FailureEntry{}
		q[playlistID] = entry
	}
	entry.Failure = append(entry.Failure, videoID)
}

// Package router decides the destination playlist for a discovered video.
//
// Routing is a pure function over channel membership and video properties;
// it performs no I/O and never fails for valid configuration. Priority order:
//
//  1. Upcoming streams -> music lives (music channels) or regular streams
//  2. Shorts -> [DestShorts] (excluded from all playlists)
//  3. Non-music channels -> highest-priority category playlist, or [DestNone]
//  4. Music channels:
//     - long videos from dual-category channels -> their category playlist
//     - long videos from music-only channels -> [DestNone]
//     - favorites -> banger radar
//     - everything else -> release radar
package router

import (
	"fmt"

	"github.com/mvailla/ytradar/internal/models"
)

// Special destinations returned instead of a playlist id.
const (
	DestShorts = "shorts"
	DestNone   = "none"
)

// Config holds the reference data routing decisions are made against. It is
// built once per run and read-only afterwards.
type Config struct {
	MusicChannels     map[string]bool
	FavoriteChannels  map[string]bool
	CategoryChannels  map[string]map[string]bool
	CategoryPriority  []string
	CategoryPlaylists map[string]string

	ReleaseRadarID   string
	BangerRadarID    string
	MusicLivesID     string
	RegularStreamsID string

	// LongVideoThresholdMinutes is the strict duration bound: a video is
	// long only when it exceeds the threshold, never at equality.
	LongVideoThresholdMinutes int
}

// Router routes videos to playlists based on a validated Config.
type Router struct {
	config Config
}

// New validates the configuration and returns a Router. The four required
// playlist ids must be non-empty and the duration threshold positive.
func New(config Config) (*Router, error) {
	required := []struct {
		name  string
		value string
	}{
		{"release radar id", config.ReleaseRadarID},
		{"banger radar id", config.BangerRadarID},
		{"music lives id", config.MusicLivesID},
		{"regular streams id", config.RegularStreamsID},
	}

	for _, r := range required {
		if r.value == "" {
			return nil, fmt.Errorf("router config: %s cannot be empty", r.name)
		}
	}

	if config.LongVideoThresholdMinutes <= 0 {
		return nil, fmt.Errorf("router config: long video threshold must be positive, got %d", config.LongVideoThresholdMinutes)
	}

	for _, category := range config.CategoryPriority {
		if _, ok := config.CategoryPlaylists[category]; !ok {
			return nil, fmt.Errorf("router config: category %s has no playlist", category)
		}
	}

	return &Router{config: config}, nil
}

// Route returns the destination for a video: a playlist id, [DestShorts], or
// [DestNone]. A nil isShort means shortness is unknown and is treated as not
// short; a nil duration is treated as zero seconds.
func (r *Router) Route(channelID string, isShort *bool, durationSec *int, liveStatus string) string {
	if liveStatus == models.LiveStatusUpcoming {
		return r.routeStream(channelID)
	}

	if isShort != nil && *isShort {
		return DestShorts
	}

	category, hasCategory := r.nonMusicCategory(channelID)

	if !r.config.MusicChannels[channelID] {
		if hasCategory {
			return r.config.CategoryPlaylists[category]
		}
		return DestNone
	}

	return r.routeMusic(channelID, r.isLong(durationSec), category, hasCategory)
}

func (r *Router) routeStream(channelID string) string {
	if r.config.MusicChannels[channelID] {
		return r.config.MusicLivesID
	}
	return r.config.RegularStreamsID
}

func (r *Router) isLong(durationSec *int) bool {
	duration := 0
	if durationSec != nil {
		duration = *durationSec
	}
	return duration > r.config.LongVideoThresholdMinutes*60
}

// nonMusicCategory returns the highest-priority category containing the
// channel, if any.
func (r *Router) nonMusicCategory(channelID string) (string, bool) {
	for _, category := range r.config.CategoryPriority {
		if r.config.CategoryChannels[category][channelID] {
			return category, true
		}
	}
	return "", false
}

func (r *Router) routeMusic(channelID string, isLong bool, category string, hasCategory bool) string {
	// Long-form output from dual-classified channels is archived under the
	// topical playlist; music-only long videos are not tracked.
	if isLong {
		if hasCategory {
			return r.config.CategoryPlaylists[category]
		}
		return DestNone
	}

	if r.config.FavoriteChannels[channelID] {
		return r.config.BangerRadarID
	}

	return r.config.ReleaseRadarID
}

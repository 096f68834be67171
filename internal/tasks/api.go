package tasks

import (
	"context"

	"github.com/mvailla/ytradar/internal/youtube"
)

// API is the subset of the YouTube client the tasks depend on. It is
// satisfied by [youtube.Client].
type API interface {
	PageSize() int
	PlaylistItemsPage(ctx context.Context, playlistID, pageToken string) (*youtube.FeedPage, error)
	ListVideos(ctx context.Context, videoIDs []string) ([]youtube.Video, error)
	ListChannels(ctx context.Context, channelIDs []string) ([]youtube.ChannelInfo, error)
	PlaylistItemCounts(ctx context.Context, playlistIDs []string) ([]int, error)
	InsertPlaylistItem(ctx context.Context, playlistID, videoID string) error
	DeletePlaylistItem(ctx context.Context, itemID string) error
	IsShort(ctx context.Context, videoID string) bool
}

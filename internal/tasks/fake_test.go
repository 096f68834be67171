package tasks

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mvailla/ytradar/internal/youtube"
)

// fakeAPI is an in-memory API implementation. Playlist feeds are fixed page
// sequences; mutations are recorded and can be made to fail per call.
type fakeAPI struct {
	pageSize int
	pages    map[string][]youtube.FeedPage
	videos   map[string]youtube.Video
	channels map[string]string
	counts   map[string]int
	shorts   map[string]bool

	insertErr func(playlistID, videoID string, call int) error
	deleteErr func(itemID string) error
	pageErr   func(playlistID, pageToken string) error
	listErr   func(videoIDs []string) error

	inserted    []string // "playlistID/videoID"
	deleted     []string
	insertCalls int
	probed      []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		pageSize: 50,
		pages:    map[string][]youtube.FeedPage{},
		videos:   map[string]youtube.Video{},
		channels: map[string]string{},
		counts:   map[string]int{},
		shorts:   map[string]bool{},
	}
}

// setFeed installs a paged feed for a playlist, chaining page tokens.
func (f *fakeAPI) setFeed(playlistID string, pages ...[]youtube.FeedEntry) {
	feed := make([]youtube.FeedPage, len(pages))
	for i, items := range pages {
		feed[i] = youtube.FeedPage{Items: items}
		if i < len(pages)-1 {
			feed[i].NextPageToken = "page-" + strconv.Itoa(i+1)
		}
	}
	f.pages[playlistID] = feed
}

func (f *fakeAPI) PageSize() int { return f.pageSize }

func (f *fakeAPI) PlaylistItemsPage(_ context.Context, playlistID, pageToken string) (*youtube.FeedPage, error) {
	if f.pageErr != nil {
		if err := f.pageErr(playlistID, pageToken); err != nil {
			return nil, err
		}
	}
	feed, ok := f.pages[playlistID]
	if !ok {
		return nil, &youtube.APIError{StatusCode: 404, Reason: "playlistNotFound"}
	}

	index := 0
	if pageToken != "" {
		index, _ = strconv.Atoi(strings.TrimPrefix(pageToken, "page-"))
	}
	if index >= len(feed) {
		return nil, fmt.Errorf("no such page %q", pageToken)
	}
	page := feed[index]
	return &page, nil
}

func (f *fakeAPI) ListVideos(_ context.Context, videoIDs []string) ([]youtube.Video, error) {
	if f.listErr != nil {
		if err := f.listErr(videoIDs); err != nil {
			return nil, err
		}
	}
	if len(videoIDs) > f.pageSize {
		return nil, fmt.Errorf("batch of %d exceeds page size %d", len(videoIDs), f.pageSize)
	}
	var videos []youtube.Video
	for _, id := range videoIDs {
		if video, ok := f.videos[id]; ok {
			videos = append(videos, video)
		}
	}
	return videos, nil
}

func (f *fakeAPI) ListChannels(_ context.Context, channelIDs []string) ([]youtube.ChannelInfo, error) {
	var channels []youtube.ChannelInfo
	for _, id := range channelIDs {
		if title, ok := f.channels[id]; ok {
			channels = append(channels, youtube.ChannelInfo{ID: id, Title: title})
		}
	}
	return channels, nil
}

func (f *fakeAPI) PlaylistItemCounts(_ context.Context, playlistIDs []string) ([]int, error) {
	counts := make([]int, len(playlistIDs))
	for i, id := range playlistIDs {
		counts[i] = f.counts[id]
	}
	return counts, nil
}

func (f *fakeAPI) InsertPlaylistItem(_ context.Context, playlistID, videoID string) error {
	f.insertCalls++
	if f.insertErr != nil {
		if err := f.insertErr(playlistID, videoID, f.insertCalls); err != nil {
			return err
		}
	}
	f.inserted = append(f.inserted, playlistID+"/"+videoID)
	return nil
}

func (f *fakeAPI) DeletePlaylistItem(_ context.Context, itemID string) error {
	if f.deleteErr != nil {
		if err := f.deleteErr(itemID); err != nil {
			return err
		}
	}
	f.deleted = append(f.deleted, itemID)
	return nil
}

func (f *fakeAPI) IsShort(_ context.Context, videoID string) bool {
	f.probed = append(f.probed, videoID)
	return f.shorts[videoID]
}

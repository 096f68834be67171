package youtube

import "time"

// FeedEntry is a parsed playlistItems resource.
type FeedEntry struct {
	ItemID           string
	VideoID          string
	Title            string
	VideoPublishedAt *time.Time // nil when the video has no release date
	AddedAt          time.Time  // when the entry was added to the playlist
	PrivacyStatus    string
	OwnerChannelID   string
	OwnerChannelName string
}

// FeedPage is one page of playlist items plus the cursor for the next page.
type FeedPage struct {
	Items         []FeedEntry
	NextPageToken string
}

// Video is a parsed videos resource. Counters are nil when the API omits
// them (e.g. likes hidden). Duration is the raw ISO-8601 string.
type Video struct {
	ID            string
	Views         *int64
	Likes         *int64
	Comments      *int64
	Duration      string
	LiveStatus    string
	PrivacyStatus string
}

// ChannelInfo is the subset of a channels resource used for database sorting.
type ChannelInfo struct {
	ID    string
	Title string
}

// API response types (private - implementation detail)

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

type playlistItemsResponse struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ID      string `json:"id"`
		Snippet struct {
			PublishedAt           string `json:"publishedAt"`
			Title                 string `json:"title"`
			VideoOwnerChannelID   string `json:"videoOwnerChannelId"`
			VideoOwnerChannelName string `json:"videoOwnerChannelTitle"`
		} `json:"snippet"`
		ContentDetails struct {
			VideoID          string `json:"videoId"`
			VideoPublishedAt string `json:"videoPublishedAt"`
		} `json:"contentDetails"`
		Status struct {
			PrivacyStatus string `json:"privacyStatus"`
		} `json:"status"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			LiveBroadcastContent string `json:"liveBroadcastContent"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
		Status struct {
			PrivacyStatus string `json:"privacyStatus"`
		} `json:"status"`
	} `json:"items"`
}

type playlistsResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			ItemCount int `json:"itemCount"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type channelsResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

type insertPlaylistItemRequest struct {
	Snippet struct {
		PlaylistID string `json:"playlistId"`
		ResourceID struct {
			Kind    string `json:"kind"`
			VideoID string `json:"videoId"`
		} `json:"resourceId"`
	} `json:"snippet"`
}

// Package youtube provides an authenticated client for the YouTube Data API v3.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mvailla/ytradar/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL      = "https://www.googleapis.com"
	defaultProbeBaseURL = "https://www.youtube.com"
	defaultPageSize     = 50
	defaultProbeTimeout = 5 * time.Second
	defaultRateLimit    = 5.0
)

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client, replacing the oauth2-backed one.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL sets a custom API base URL (useful for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithProbeBaseURL sets a custom base URL for the shorts probe.
func WithProbeBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.probeBaseURL = url
	}
}

// WithProbeTimeout bounds the shorts probe request.
func WithProbeTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.probeTimeout = timeout
	}
}

// WithPageSize sets the maxResults value used for list requests.
func WithPageSize(size int) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithRateLimit sets the request rate in requests per second.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithLogger sets the logger used for request warnings.
func WithLogger(logger *log.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client is a YouTube Data API client. All list/mutation calls pass through
// a shared rate limiter; the shorts probe uses its own redirect-disabled
// HTTP client.
type Client struct {
	baseURL      string
	probeBaseURL string
	httpClient   HTTPClient
	probeClient  *http.Client
	limiter      *rate.Limiter
	pageSize     int
	probeTimeout time.Duration
	logger       *log.Logger
}

// NewClient creates a client authenticated via the given token source.
func NewClient(ts oauth2.TokenSource, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      defaultBaseURL,
		probeBaseURL: defaultProbeBaseURL,
		httpClient:   oauth2.NewClient(context.Background(), ts),
		limiter:      rate.NewLimiter(rate.Limit(defaultRateLimit), 1),
		pageSize:     defaultPageSize,
		probeTimeout: defaultProbeTimeout,
		logger:       log.New(io.Discard),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.probeClient = &http.Client{
		Timeout: c.probeTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return c
}

// PageSize returns the configured maxResults value, shared with callers that
// chunk their own batch requests.
func (c *Client) PageSize() int {
	return c.pageSize
}

// PlaylistItemsPage fetches one page of a playlist's items. An empty
// pageToken fetches the first page.
func (c *Client) PlaylistItemsPage(ctx context.Context, playlistID, pageToken string) (*FeedPage, error) {
	q := url.Values{}
	q.Set("part", "snippet,contentDetails,status")
	q.Set("playlistId", playlistID)
	q.Set("maxResults", strconv.Itoa(c.pageSize))
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/youtube/v3/playlistItems?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var response playlistItemsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse playlist items response: %w", err)
	}

	page := &FeedPage{NextPageToken: response.NextPageToken}
	for _, item := range response.Items {
		entry := FeedEntry{
			ItemID:           item.ID,
			VideoID:          item.ContentDetails.VideoID,
			Title:            item.Snippet.Title,
			PrivacyStatus:    item.Status.PrivacyStatus,
			OwnerChannelID:   item.Snippet.VideoOwnerChannelID,
			OwnerChannelName: item.Snippet.VideoOwnerChannelName,
		}

		if item.Snippet.PublishedAt != "" {
			if added, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
				entry.AddedAt = added
			}
		}

		if item.ContentDetails.VideoPublishedAt != "" {
			if published, err := time.Parse(time.RFC3339, item.ContentDetails.VideoPublishedAt); err == nil {
				entry.VideoPublishedAt = &published
			}
		}

		page.Items = append(page.Items, entry)
	}

	return page, nil
}

// ListVideos fetches video resources for up to one page worth of ids.
// Callers chunk larger id sets to [Client.PageSize].
func (c *Client) ListVideos(ctx context.Context, videoIDs []string) ([]Video, error) {
	q := url.Values{}
	q.Set("part", "snippet,contentDetails,statistics,status")
	q.Set("id", strings.Join(videoIDs, ","))
	q.Set("maxResults", strconv.Itoa(c.pageSize))

	body, err := c.doRequest(ctx, http.MethodGet, "/youtube/v3/videos?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var response videosResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse videos response: %w", err)
	}

	videos := make([]Video, 0, len(response.Items))
	for _, item := range response.Items {
		videos = append(videos, Video{
			ID:            item.ID,
			Views:         parseCount(item.Statistics.ViewCount),
			Likes:         parseCount(item.Statistics.LikeCount),
			Comments:      parseCount(item.Statistics.CommentCount),
			Duration:      item.ContentDetails.Duration,
			LiveStatus:    item.Snippet.LiveBroadcastContent,
			PrivacyStatus: item.Status.PrivacyStatus,
		})
	}

	return videos, nil
}

// ListChannels fetches channel id/title pairs for up to one page of ids.
func (c *Client) ListChannels(ctx context.Context, channelIDs []string) ([]ChannelInfo, error) {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("id", strings.Join(channelIDs, ","))
	q.Set("maxResults", strconv.Itoa(c.pageSize))

	body, err := c.doRequest(ctx, http.MethodGet, "/youtube/v3/channels?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var response channelsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse channels response: %w", err)
	}

	channels := make([]ChannelInfo, 0, len(response.Items))
	for _, item := range response.Items {
		channels = append(channels, ChannelInfo{ID: item.ID, Title: item.Snippet.Title})
	}

	return channels, nil
}

// PlaylistItemCounts returns the item count of each playlist, in the order
// the ids were given.
func (c *Client) PlaylistItemCounts(ctx context.Context, playlistIDs []string) ([]int, error) {
	q := url.Values{}
	q.Set("part", "contentDetails")
	q.Set("id", strings.Join(playlistIDs, ","))

	body, err := c.doRequest(ctx, http.MethodGet, "/youtube/v3/playlists?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var response playlistsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse playlists response: %w", err)
	}

	byID := make(map[string]int, len(response.Items))
	for _, item := range response.Items {
		byID[item.ID] = item.ContentDetails.ItemCount
	}

	counts := make([]int, len(playlistIDs))
	for i, id := range playlistIDs {
		counts[i] = byID[id]
	}

	return counts, nil
}

// InsertPlaylistItem appends a video to a playlist. The API has no batch
// insert; each call adds exactly one item.
func (c *Client) InsertPlaylistItem(ctx context.Context, playlistID, videoID string) error {
	var reqBody insertPlaylistItemRequest
	reqBody.Snippet.PlaylistID = playlistID
	reqBody.Snippet.ResourceID.Kind = "youtube#video"
	reqBody.Snippet.ResourceID.VideoID = videoID

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal insert request: %w", err)
	}

	_, err = c.doRequest(ctx, http.MethodPost, "/youtube/v3/playlistItems?part=snippet", payload)
	return err
}

// DeletePlaylistItem removes an entry from a playlist by its item id.
func (c *Client) DeletePlaylistItem(ctx context.Context, itemID string) error {
	q := url.Values{}
	q.Set("id", itemID)

	_, err := c.doRequest(ctx, http.MethodDelete, "/youtube/v3/playlistItems?"+q.Encode(), nil)
	return err
}

// IsShort probes whether a video is a short-form video. A 200 on the shorts
// URL with redirects disabled means short; any redirect, non-200, or network
// failure means not short. Never returns an error: absence of evidence is
// treated as "not short".
func (c *Client) IsShort(ctx context.Context, videoID string) bool {
	probeURL := fmt.Sprintf("%s/shorts/%s", c.probeBaseURL, videoID)

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, probeURL, nil)
	if err != nil {
		return false
	}

	resp, err := c.probeClient.Do(req)
	if err != nil {
		c.logger.Warn("shorts probe failed", "video", videoID, "err", err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseAPIError(resp.StatusCode, body)
	}

	return body, nil
}

// parseAPIError builds an APIError from an error payload. Unparseable
// payloads yield reason "unknown".
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Reason: "unknown"}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Error.Code != 0 {
			apiErr.StatusCode = errResp.Error.Code
		}
		apiErr.Message = errResp.Error.Message
		if len(errResp.Error.Errors) > 0 && errResp.Error.Errors[0].Reason != "" {
			apiErr.Reason = errResp.Error.Errors[0].Reason
		}
	}

	return apiErr
}

func parseCount(s string) *int64 {
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

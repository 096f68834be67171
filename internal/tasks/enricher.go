package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mvailla/ytradar/internal/models"
	"github.com/mvailla/ytradar/internal/youtube"
)

// Enricher resolves per-video statistics in batched lookups.
type Enricher struct {
	api         API
	probeShorts bool
	logger      *log.Logger
}

// NewEnricher creates an Enricher. The shorts probe costs one HTTP request
// per video, so callers that only need metrics (weekly sampling) disable it.
func NewEnricher(api API, probeShorts bool, logger *log.Logger) *Enricher {
	return &Enricher{api: api, probeShorts: probeShorts, logger: logger}
}

// Enrich returns exactly one stats record per requested id, in input order.
// Ids the API no longer returns yield a synthetic deleted record rather than
// a gap, so downstream merging stays positional.
func (e *Enricher) Enrich(ctx context.Context, videoIDs []string) ([]models.VideoStats, error) {
	byID := make(map[string]youtube.Video, len(videoIDs))

	chunkSize := e.api.PageSize()
	for start := 0; start < len(videoIDs); start += chunkSize {
		end := min(start+chunkSize, len(videoIDs))
		videos, err := e.api.ListVideos(ctx, videoIDs[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to fetch video batch: %w", err)
		}
		for _, video := range videos {
			byID[video.ID] = video
		}
	}

	stats := make([]models.VideoStats, 0, len(videoIDs))
	for _, id := range videoIDs {
		video, ok := byID[id]
		if !ok {
			e.logger.Info("video no longer available", "video", id)
			stats = append(stats, models.DeletedStats(id))
			continue
		}
		stats = append(stats, e.buildStats(ctx, video))
	}

	return stats, nil
}

func (e *Enricher) buildStats(ctx context.Context, video youtube.Video) models.VideoStats {
	stats := models.VideoStats{
		VideoID:      video.ID,
		Views:        video.Views,
		Likes:        video.Likes,
		Comments:     video.Comments,
		LiveStatus:   video.LiveStatus,
		LatestStatus: video.PrivacyStatus,
	}

	if seconds, ok := youtube.ParseISODuration(video.Duration); ok {
		stats.Duration = &seconds
	} else if video.LiveStatus == "" || video.LiveStatus == models.LiveStatusNone {
		// Streams legitimately have no duration until they end.
		e.logger.Warn("video has no parseable duration", "video", video.ID, "raw", video.Duration)
	}

	if e.probeShorts {
		isShort := e.api.IsShort(ctx, video.ID)
		stats.IsShort = &isShort
	}

	return stats
}

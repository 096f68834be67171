package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mvailla/ytradar/internal/models"
	"github.com/mvailla/ytradar/internal/shared"
)

// WeekDeltas are the offsets, in weeks after release, at which video
// statistics are re-sampled. The history schema has a column set per delta.
var WeekDeltas = []int{1, 4, 12, 24}

func validDelta(delta int) bool {
	for _, d := range WeekDeltas {
		if d == delta {
			return true
		}
	}
	return false
}

// History records discovered videos and their weekly statistics in sqlite.
type History struct {
	db     *sql.DB
	logger *log.Logger
}

// NewHistory wraps an open history database.
func NewHistory(db *sql.DB, logger *log.Logger) *History {
	return &History{db: db, logger: logger}
}

// StartRun inserts a run row and returns its generated id.
func (h *History) StartRun(startedAt time.Time) (string, error) {
	runID := shared.GenerateID()
	_, err := h.db.Exec(
		"INSERT INTO runs (id, started_at) VALUES (?, ?)",
		runID, startedAt.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record run start: %w", err)
	}
	return runID, nil
}

// FinishRun marks a run as completed with its discovery and routing counts.
func (h *History) FinishRun(runID string, completedAt time.Time, discovered, routed int) error {
	_, err := h.db.Exec(
		"UPDATE runs SET completed_at = ?, discovered = ?, routed = ? WHERE id = ?",
		completedAt.UTC(), discovered, routed, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to record run completion: %w", err)
	}
	return nil
}

// Record inserts one row per video, skipping ids already present so re-runs
// over an overlapping window never duplicate history.
func (h *History) Record(runID string, videos []models.VideoData) error {
	if len(videos) == 0 {
		return nil
	}

	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO videos
			(video_id, channel_id, channel_name, video_title, release_date,
			 status, is_short, duration, run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, video := range videos {
		_, err := stmt.Exec(
			video.VideoID, video.SourceChannelID, video.ChannelName,
			video.Title, video.ReleaseDate.UTC(), video.LatestStatus,
			video.IsShort, video.Duration, runID,
		)
		if err != nil {
			return fmt.Errorf("failed to record video %s: %w", video.VideoID, err)
		}
	}

	return tx.Commit()
}

// DueForDelta returns the ids of videos released exactly delta weeks before
// ref (by calendar day) whose statistics for that delta are still unsampled.
func (h *History) DueForDelta(delta int, ref time.Time) ([]string, error) {
	if !validDelta(delta) {
		return nil, fmt.Errorf("unsupported week delta %d", delta)
	}

	target := ref.UTC().AddDate(0, 0, -7*delta)
	query := fmt.Sprintf(
		"SELECT video_id FROM videos WHERE date(release_date) = date(?) AND views_w%d IS NULL",
		delta,
	)

	rows, err := h.db.Query(query, target)
	if err != nil {
		return nil, fmt.Errorf("failed to query due videos: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan video id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// ApplyDelta fills in the statistics columns for one week delta. The latest
// observed privacy status is updated as well, so deletions show up in
// history even after the video is gone.
func (h *History) ApplyDelta(delta int, stats []models.VideoStats) error {
	if !validDelta(delta) {
		return fmt.Errorf("unsupported week delta %d", delta)
	}
	if len(stats) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE videos
		SET views_w%[1]d = ?, likes_w%[1]d = ?, comments_w%[1]d = ?, status = ?
		WHERE video_id = ?
	`, delta)

	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare update: %w", err)
	}
	defer stmt.Close()

	for _, s := range stats {
		if _, err := stmt.Exec(s.Views, s.Likes, s.Comments, s.LatestStatus, s.VideoID); err != nil {
			return fmt.Errorf("failed to update video %s: %w", s.VideoID, err)
		}
	}

	return tx.Commit()
}

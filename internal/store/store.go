// Package store persists the tracker's reference data and cross-run state.
//
// Reference data (channel categories, playlist configuration, the add-on
// overrides) lives in JSON files under a data directory and is loaded once
// per run. The failure queue and last-run timestamp are the only state
// written back; historical statistics go to sqlite via [History].
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mvailla/ytradar/internal/models"
	"github.com/mvailla/ytradar/internal/shared"
)

// Data file names under the store directory.
const (
	subscriptionsFile = "subscriptions.json"
	playlistsFile     = "playlists.json"
	addOnFile         = "add_on.json"
	failureQueueFile  = "api_failure.json"
	lastRunFile       = "last_run.json"
)

// Channel category keys in the subscriptions file, ordered by routing
// priority for the non-music categories.
const (
	CategoryMusic         = "MUSIC"
	CategoryLearning      = "LEARNING"
	CategoryEntertainment = "ENTERTAINMENT"
	CategoryGaming        = "GAMING"
	CategoryASMR          = "ASMR"
)

// CategoryPriority is the routing priority order for non-music categories.
var CategoryPriority = []string{CategoryLearning, CategoryEntertainment, CategoryGaming, CategoryASMR}

// requiredSubscriptionKeys must be present in the subscriptions file; ASMR
// is optional for backwards compatibility with older files.
var requiredSubscriptionKeys = []string{CategoryMusic, CategoryLearning, CategoryEntertainment, CategoryGaming}

// Managed playlist keys in the playlists file.
const (
	PlaylistRelease       = "release"
	PlaylistBanger        = "banger"
	PlaylistReListening   = "re_listening"
	PlaylistLegacy        = "legacy"
	PlaylistLearning      = "learning"
	PlaylistEntertainment = "entertainment_gaming"
	PlaylistASMR          = "asmr"
	PlaylistMusicLives    = "music_lives"
	PlaylistStreams       = "regular_streams"
)

var requiredPlaylistKeys = []string{
	PlaylistRelease, PlaylistBanger, PlaylistReListening, PlaylistLegacy,
	PlaylistLearning, PlaylistEntertainment, PlaylistASMR,
	PlaylistMusicLives, PlaylistStreams,
}

// Store reads and writes the JSON data files.
type Store struct {
	dir    string
	logger *log.Logger
}

// New creates a Store rooted at dir.
func New(dir string, logger *log.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) loadJSON(name string, target any) error {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", shared.ErrMissingDataFile, name)
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrInvalidDataFile, name, err)
	}

	return nil
}

func (s *Store) saveJSON(name string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.path(name), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	return nil
}

// Subscriptions loads the channel category database and checks that the
// required categories are present.
func (s *Store) Subscriptions() (map[string][]string, error) {
	var subs map[string][]string
	if err := s.loadJSON(subscriptionsFile, &subs); err != nil {
		return nil, err
	}

	for _, key := range requiredSubscriptionKeys {
		if _, ok := subs[key]; !ok {
			return nil, fmt.Errorf("%w: %s: missing category %s", shared.ErrInvalidDataFile, subscriptionsFile, key)
		}
	}

	return subs, nil
}

// SaveSubscriptions rewrites the channel category database.
func (s *Store) SaveSubscriptions(subs map[string][]string) error {
	return s.saveJSON(subscriptionsFile, subs)
}

// Playlists loads the managed playlist configuration, validating each entry
// and checking that all required playlists are present.
func (s *Store) Playlists() (map[string]models.PlaylistConfig, error) {
	var playlists map[string]models.PlaylistConfig
	if err := s.loadJSON(playlistsFile, &playlists); err != nil {
		return nil, err
	}

	for _, key := range requiredPlaylistKeys {
		if _, ok := playlists[key]; !ok {
			return nil, fmt.Errorf("%w: %s: missing playlist %s", shared.ErrInvalidDataFile, playlistsFile, key)
		}
	}

	for key, cfg := range playlists {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s: %s: %v", shared.ErrInvalidDataFile, playlistsFile, key, err)
		}
	}

	return playlists, nil
}

// AddOn loads the channel handling overrides.
func (s *Store) AddOn() (models.AddOnConfig, error) {
	var addOn models.AddOnConfig
	if err := s.loadJSON(addOnFile, &addOn); err != nil {
		return models.AddOnConfig{}, err
	}

	if err := addOn.Validate(); err != nil {
		return models.AddOnConfig{}, fmt.Errorf("%w: %s: %v", shared.ErrInvalidDataFile, addOnFile, err)
	}

	return addOn, nil
}

// FailureQueue loads the deferred additions from the previous run. A missing
// file is an empty queue, not an error: first runs have nothing queued.
func (s *Store) FailureQueue() (models.FailureQueue, error) {
	var queue models.FailureQueue
	if err := s.loadJSON(failureQueueFile, &queue); err != nil {
		if errors.Is(err, shared.ErrMissingDataFile) {
			return models.FailureQueue{}, nil
		}
		return nil, err
	}

	if queue == nil {
		queue = models.FailureQueue{}
	}

	return queue, nil
}

// SaveFailureQueue overwrites the persisted failure queue in full.
func (s *Store) SaveFailureQueue(queue models.FailureQueue) error {
	return s.saveJSON(failureQueueFile, queue)
}

type lastRunRecord struct {
	CompletedAt time.Time `json:"completed_at"`
}

// LastRun returns the completion time of the previous run. When no run has
// been recorded yet it defaults to 24 hours ago, matching the daily
// scheduling cadence.
func (s *Store) LastRun(now time.Time) time.Time {
	var record lastRunRecord
	if err := s.loadJSON(lastRunFile, &record); err != nil || record.CompletedAt.IsZero() {
		s.logger.Warn("no last run recorded, defaulting to 24 hours ago")
		return now.Add(-24 * time.Hour)
	}
	return record.CompletedAt
}

// SaveLastRun records the completion time of the current run.
func (s *Store) SaveLastRun(completedAt time.Time) error {
	return s.saveJSON(lastRunFile, lastRunRecord{CompletedAt: completedAt})
}

package models

import (
	"testing"
	"time"
)

func TestNewPlaylistItem(t *testing.T) {
	release := time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)

	t.Run("valid item", func(t *testing.T) {
		item, err := NewPlaylistItem("vid1", "Title", "item1", release, StatusPublic, "UCowner", "Owner", "UCsource")
		if err != nil {
			t.Fatalf("NewPlaylistItem failed: %v", err)
		}
		if item.SourceChannelID != "UCsource" || item.ChannelID != "UCowner" {
			t.Errorf("channel attribution wrong: %+v", item)
		}
	})

	t.Run("rejects empty video id", func(t *testing.T) {
		if _, err := NewPlaylistItem("", "Title", "item1", release, StatusPublic, "UCowner", "Owner", "UCsource"); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("rejects empty source channel", func(t *testing.T) {
		if _, err := NewPlaylistItem("vid1", "Title", "item1", release, StatusPublic, "UCowner", "Owner", ""); err == nil {
			t.Error("expected an error")
		}
	})
}

func TestMergeStats(t *testing.T) {
	item, _ := NewPlaylistItem("vid1", "Title", "item1", time.Now(), StatusPublic, "UCowner", "Owner", "UCsource")

	t.Run("empty live status defaults to none", func(t *testing.T) {
		merged := MergeStats(item, VideoStats{VideoID: "vid1", LatestStatus: StatusPublic})
		if merged.LiveStatus != LiveStatusNone {
			t.Errorf("expected %q, got %q", LiveStatusNone, merged.LiveStatus)
		}
	})

	t.Run("deleted stats flow through", func(t *testing.T) {
		merged := MergeStats(item, DeletedStats("vid1"))
		if merged.LatestStatus != StatusDeleted {
			t.Errorf("expected deleted, got %s", merged.LatestStatus)
		}
		if merged.Views != nil || merged.Duration != nil || merged.IsShort != nil {
			t.Error("deleted stats must carry no metrics")
		}
	})
}

func TestPlaylistConfigValidate(t *testing.T) {
	negative := -1
	zero := 0

	tests := []struct {
		name    string
		config  PlaylistConfig
		wantErr bool
	}{
		{"valid", PlaylistConfig{ID: "PL1", Name: "Radar"}, false},
		{"zero retention allowed", PlaylistConfig{ID: "PL1", Name: "Radar", RetentionDays: &zero}, false},
		{"missing id", PlaylistConfig{Name: "Radar"}, true},
		{"missing name", PlaylistConfig{ID: "PL1"}, true},
		{"negative retention", PlaylistConfig{ID: "PL1", Name: "Radar", RetentionDays: &negative}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFailureQueue(t *testing.T) {
	t.Run("empty queue has nothing pending", func(t *testing.T) {
		queue := FailureQueue{"PL1": &FailureEntry{Name: "Radar"}}
		if queue.Pending() {
			t.Error("entry without failures must not be pending")
		}
	})

	t.Run("append creates entries on demand", func(t *testing.T) {
		queue := FailureQueue{}
		queue.Append("PL1", "vid1")
		queue.Append("PL1", "vid2")
		queue.Append("PL2", "vid3")

		if !queue.Pending() {
			t.Fatal("expected pending entries")
		}
		if len(queue["PL1"].Failure) != 2 || len(queue["PL2"].Failure) != 1 {
			t.Errorf("unexpected queue shape: %+v", queue)
		}
	})

	t.Run("append survives a nil entry", func(t *testing.T) {
		queue := FailureQueue{"PL1": nil}
		queue.Append("PL1", "vid1")
		if len(queue["PL1"].Failure) != 1 {
			t.Errorf("unexpected entry: %+v", queue["PL1"])
		}
	})
}

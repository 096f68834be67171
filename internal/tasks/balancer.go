package tasks

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mvailla/ytradar/internal/models"
)

// Balancer refills the release radar from the re-listening and legacy
// archives when daily discovery leaves it below its target size.
type Balancer struct {
	api      API
	pipeline *Pipeline
	capacity int
	minAge   time.Duration
	now      func() time.Time
	shuffle  func(n int, swap func(i, j int))
	logger   *log.Logger
}

// NewBalancer creates a Balancer. minAge is how long a re-listening entry
// must have sat in its playlist before it is eligible to rotate back in.
func NewBalancer(api API, pipeline *Pipeline, capacity int, minAge time.Duration, logger *log.Logger) *Balancer {
	return &Balancer{
		api:      api,
		pipeline: pipeline,
		capacity: capacity,
		minAge:   minAge,
		now:      time.Now,
		shuffle:  rand.Shuffle,
		logger:   logger,
	}
}

// Fill tops the destination up to capacity, drawing proportionally from the
// two sources. Entries leave a source only after their addition to the
// destination succeeded; a deferred or abandoned addition leaves the source
// entry in place.
func (b *Balancer) Fill(ctx context.Context, dest, relistening, legacy models.PlaylistConfig) error {
	counts, err := b.api.PlaylistItemCounts(ctx, []string{dest.ID})
	if err != nil {
		return fmt.Errorf("failed to count %s: %w", dest.Name, err)
	}

	need := b.capacity - counts[0]
	if need <= 0 {
		b.logger.Debug("playlist already at capacity", "playlist", dest.Name, "size", counts[0])
		return nil
	}

	aged, err := b.eligibleRefs(ctx, relistening.ID, b.now().Add(-b.minAge))
	if err != nil {
		return err
	}
	archive, err := b.eligibleRefs(ctx, legacy.ID, time.Time{})
	if err != nil {
		return err
	}

	takeAged, takeArchive := allocate(need, len(aged), len(archive))
	b.logger.Info("refilling playlist", "playlist", dest.Name, "need", need,
		"from_relistening", takeAged, "from_legacy", takeArchive)

	if err := b.move(ctx, dest, relistening, b.pick(aged, takeAged)); err != nil {
		return err
	}
	return b.move(ctx, dest, legacy, b.pick(archive, takeArchive))
}

// eligibleRefs lists a source playlist, keeping entries added at or before
// the cutoff. A zero cutoff keeps everything.
func (b *Balancer) eligibleRefs(ctx context.Context, playlistID string, cutoff time.Time) ([]models.ItemRef, error) {
	entries, err := listAllItems(ctx, b.api, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlist %s: %w", playlistID, err)
	}

	refs := make([]models.ItemRef, 0, len(entries))
	for _, entry := range entries {
		if !cutoff.IsZero() && entry.AddedAt.After(cutoff) {
			continue
		}
		refs = append(refs, models.ItemRef{ItemID: entry.ItemID, VideoID: entry.VideoID, AddedAt: entry.AddedAt})
	}
	return refs, nil
}

// pick returns n randomly chosen refs, so rotation doesn't always resurface
// the same entries.
func (b *Balancer) pick(refs []models.ItemRef, n int) []models.ItemRef {
	if n >= len(refs) {
		return refs
	}
	b.shuffle(len(refs), func(i, j int) { refs[i], refs[j] = refs[j], refs[i] })
	return refs[:n]
}

// move adds the refs to dest, then removes from the source only those that
// made it in.
func (b *Balancer) move(ctx context.Context, dest, source models.PlaylistConfig, refs []models.ItemRef) error {
	if len(refs) == 0 {
		return nil
	}

	videoIDs := make([]string, len(refs))
	for i, ref := range refs {
		videoIDs[i] = ref.VideoID
	}

	added, err := b.pipeline.AddMany(ctx, dest.ID, dest.Name, videoIDs)
	if err != nil {
		return err
	}

	addedSet := make(map[string]bool, len(added))
	for _, id := range added {
		addedSet[id] = true
	}

	var toRemove []models.ItemRef
	for _, ref := range refs {
		if addedSet[ref.VideoID] {
			toRemove = append(toRemove, ref)
		}
	}

	removed := b.pipeline.RemoveMany(ctx, toRemove)
	b.logger.Info("moved entries", "from", source.Name, "to", dest.Name,
		"added", len(added), "removed", removed)
	return nil
}

// allocate splits need across two pools proportionally to their sizes. The
// strictly smaller pool's share rounds up so truncation never starves it;
// on equal pools the first rounds down. A shortfall in one pool is
// reassigned to the other.
func allocate(need, a, b int) (takeA, takeB int) {
	if need <= 0 || a+b == 0 {
		return 0, 0
	}
	if need >= a+b {
		return a, b
	}

	share := float64(need) * float64(a) / float64(a+b)
	if a < b {
		takeA = int(math.Ceil(share))
	} else {
		takeA = int(math.Floor(share))
	}
	if takeA > a {
		takeA = a
	}
	if takeA > need {
		takeA = need
	}

	takeB = need - takeA
	if takeB > b {
		takeA += takeB - b
		takeB = b
		if takeA > a {
			takeA = a
		}
	}

	return takeA, takeB
}

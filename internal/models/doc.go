// Package models defines domain entities for the release tracker.
//
// The package contains two categories of types:
//
// 1. Run-scoped values, created and discarded within a single reconcile run:
//   - [PlaylistItem] : A video discovered in a channel's upload feed
//   - [VideoStats] : Per-video metrics fetched from the videos endpoint
//   - [VideoData] : PlaylistItem merged with VideoStats plus a destination
//   - [ItemRef] : The handle needed to delete an entry from a playlist
//
// 2. Reference data, loaded once per run and read-only afterwards:
//   - [PlaylistConfig] : Managed playlist with retention/cleanup rules
//   - [AddOnConfig] : Favorites, skip lists, and 404 allow list
//   - [FailureQueue] : Deferred additions carried over between runs
//
// PlaylistItem carries the channel that was being iterated separately from
// the owning channel reported by the API, because upload feeds can be
// re-attributed to auto-generated artist channels. The source channel is
// fixed at construction and drives routing.
package models

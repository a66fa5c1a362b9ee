// Package models defines domain entities for the muse generation service.
//
// The package contains two categories of types:
//
// 1. Remote entities: structs mirroring what the generation API returns
//   - [Track] : One generated (or in-progress) audio artifact
//   - [Generation] : A batch submission grouping one or more Tracks
//   - [Lyrics] : Standalone lyrics generation result
//
// 2. Local entities: structs owned by this client
//   - [CachedTrack] : A completed Track plus cache bookkeeping (surrogate
//     local id, cache timestamp)
//
// Track statuses progress forward only (submitted → queued → streaming →
// complete/error); complete and error are terminal.
package models

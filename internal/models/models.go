package models

import (
	"fmt"
	"time"
)

// TrackStatus represents the remote generation status of a track.
type TrackStatus string

const (
	StatusSubmitted TrackStatus = "submitted"
	StatusQueued    TrackStatus = "queued"
	StatusStreaming TrackStatus = "streaming"
	StatusComplete  TrackStatus = "complete"
	StatusError     TrackStatus = "error"
)

// Terminal reports whether no further status transitions are possible.
func (s TrackStatus) Terminal() bool {
	return s == StatusComplete || s == StatusError
}

// Valid reports whether the status is one the generation API can return.
func (s TrackStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusQueued, StatusStreaming, StatusComplete, StatusError:
		return true
	default:
		return false
	}
}

// Track represents one generated (or in-progress) audio artifact.
//
// The ID is opaque and assigned by the remote service on submission.
type Track struct {
	ID        string      `json:"id"`
	Status    TrackStatus `json:"status"`
	Title     string      `json:"title"`
	Prompt    string      `json:"prompt"`
	Tags      string      `json:"tags"`
	AudioURL  string      `json:"audio_url,omitempty"`
	Duration  float64     `json:"duration,omitempty"` // Duration in seconds
	CreatedAt time.Time   `json:"created_at"`
}

// Validate checks the track's internal consistency: a known status and an
// audio URL present exactly when the track is complete.
func (t Track) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("track has no id")
	}
	if !t.Status.Valid() {
		return fmt.Errorf("unknown track status %q", t.Status)
	}
	if t.Status == StatusComplete && t.AudioURL == "" {
		return fmt.Errorf("complete track %s has no audio url", t.ID)
	}
	if t.Status != StatusComplete && t.AudioURL != "" {
		return fmt.Errorf("track %s has audio url but status %q", t.ID, t.Status)
	}
	return nil
}

// Generation groups the set of tracks produced by one submission.
//
// Generations live in memory only for the duration of polling; they are
// discarded once every member track is terminal or the caller cancels.
type Generation struct {
	ID        string  `json:"generation_id"`
	Tracks    []Track `json:"tracks"`
	BatchSize int     `json:"batch_size"`
}

// TrackIDs returns the remote ids of every track in the batch.
func (g *Generation) TrackIDs() []string {
	ids := make([]string, 0, len(g.Tracks))
	for _, t := range g.Tracks {
		ids = append(ids, t.ID)
	}
	return ids
}

// CachedTrack is a completed Track plus local cache bookkeeping.
//
// LocalID is a surrogate id generated on write, distinct from the remote
// track id the entry is keyed by.
type CachedTrack struct {
	LocalID  string    `json:"local_id"`
	CachedAt time.Time `json:"cached_at"`
	Track    Track     `json:"track"`
}

// Lyrics is the result of a standalone lyrics generation.
type Lyrics struct {
	Text  string `json:"text"`
	Title string `json:"title"`
}

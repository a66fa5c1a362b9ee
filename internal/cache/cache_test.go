package cache

import (
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/desertthunder/muse/internal/models"
	"github.com/desertthunder/muse/internal/shared"
	"github.com/desertthunder/muse/internal/store"
)

// failingStore errors on every operation to exercise degraded behavior.
type failingStore struct{}

func (f *failingStore) Get(string) ([]byte, bool, error) { return nil, false, errors.New("io error") }
func (f *failingStore) Set(string, []byte) error         { return errors.New("io error") }
func (f *failingStore) Delete(...string) error           { return errors.New("io error") }
func (f *failingStore) GetMulti([]string) (map[string][]byte, error) {
	return nil, errors.New("io error")
}
func (f *failingStore) Keys(string) ([]string, error) { return nil, errors.New("io error") }

func completeTrack(id string) models.Track {
	return models.Track{
		ID:       id,
		Status:   models.StatusComplete,
		Title:    "Track " + id,
		Prompt:   "upbeat pop about summer",
		AudioURL: fmt.Sprintf("https://cdn.example/%s.mp3", id),
	}
}

// testClock is a mutable clock for expiry tests.
type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(t *testing.T, max int, clock *testClock) (*TrackCache, *store.SQLiteStore) {
	t.Helper()
	s, err := store.Open(":memory:", 1, 1)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	logger := shared.NewLogger(io.Discard)
	c := New(s, Opts{MaxTracks: max, Logger: logger, Now: clock.now})
	return c, s
}

func newClock() *testClock {
	return &testClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func TestTrackCache_PutGet(t *testing.T) {
	clock := newClock()
	c, _ := newTestCache(t, 50, clock)

	track := completeTrack("t1")
	if err := c.Put(track); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	entry, ok := c.Get("t1")
	if !ok {
		t.Fatal("Get() missed a freshly cached track")
	}
	if entry.Track.ID != "t1" || entry.Track.AudioURL != track.AudioURL {
		t.Errorf("cached track mismatch: %+v", entry.Track)
	}
	if entry.LocalID == "" || entry.LocalID == "t1" {
		t.Errorf("surrogate id %q should be set and distinct from the remote id", entry.LocalID)
	}
	if !entry.CachedAt.Equal(clock.now()) {
		t.Errorf("CachedAt = %v, want %v", entry.CachedAt, clock.now())
	}
}

func TestTrackCache_PutRejectsIncomplete(t *testing.T) {
	clock := newClock()
	c, s := newTestCache(t, 50, clock)

	for _, status := range []models.TrackStatus{models.StatusSubmitted, models.StatusQueued, models.StatusStreaming, models.StatusError} {
		track := models.Track{ID: "t1", Status: status}
		if err := c.Put(track); !errors.Is(err, shared.ErrTrackIncomplete) {
			t.Errorf("Put(%s) error = %v, want ErrTrackIncomplete", status, err)
		}
	}

	if keys, _ := s.Keys("track:"); len(keys) != 0 {
		t.Errorf("rejected tracks were persisted: %v", keys)
	}
}

func TestTrackCache_Expiry(t *testing.T) {
	clock := newClock()
	c, s := newTestCache(t, 50, clock)

	if err := c.Put(completeTrack("t1")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	// Exactly at the TTL boundary the entry is still valid
	clock.advance(DefaultTTL)
	if _, ok := c.Get("t1"); !ok {
		t.Error("entry at exactly TTL should still be valid")
	}

	clock.advance(time.Second)
	if _, ok := c.Get("t1"); ok {
		t.Error("entry past TTL should be a miss")
	}

	// Lazy purge deleted the backing entry
	if _, ok, _ := s.Get("track:t1"); ok {
		t.Error("expired entry should be deleted from the store on read")
	}
}

func TestTrackCache_ListOrderAndPurge(t *testing.T) {
	clock := newClock()
	c, s := newTestCache(t, 50, clock)

	for _, id := range []string{"a", "b", "c"} {
		if err := c.Put(completeTrack(id)); err != nil {
			t.Fatalf("Put(%s) error = %v", id, err)
		}
		clock.advance(time.Minute)
	}

	// A corrupt entry in the namespace is treated as expired
	if err := s.Set("track:corrupt", []byte("not json")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	entries := c.List()
	if len(entries) != 3 {
		t.Fatalf("List() returned %d entries, want 3", len(entries))
	}

	want := []string{"c", "b", "a"}
	for i, e := range entries {
		if e.Track.ID != want[i] {
			t.Errorf("List()[%d] = %s, want %s (newest first)", i, e.Track.ID, want[i])
		}
	}

	if _, ok, _ := s.Get("track:corrupt"); ok {
		t.Error("corrupt entry should have been purged during List")
	}
}

func TestTrackCache_ListPurgesExpired(t *testing.T) {
	clock := newClock()
	c, s := newTestCache(t, 50, clock)

	c.Put(completeTrack("old"))
	clock.advance(DefaultTTL + time.Minute)
	c.Put(completeTrack("fresh"))

	entries := c.List()
	if len(entries) != 1 || entries[0].Track.ID != "fresh" {
		t.Fatalf("List() = %v, want only the fresh entry", entries)
	}
	if _, ok, _ := s.Get("track:old"); ok {
		t.Error("expired entry should be purged by List")
	}
}

func TestTrackCache_RetentionBound(t *testing.T) {
	clock := newClock()
	c, s := newTestCache(t, 3, clock)

	for _, id := range []string{"a", "b", "c", "d"} {
		if err := c.Put(completeTrack(id)); err != nil {
			t.Fatalf("Put(%s) error = %v", id, err)
		}
		clock.advance(time.Minute)
	}

	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry should have been evicted by the retention bound")
	}
	if _, ok, _ := s.Get("track:a"); ok {
		t.Error("evicted entry should be deleted from the store")
	}

	entries := c.List()
	if len(entries) != 3 {
		t.Fatalf("List() returned %d entries, want 3", len(entries))
	}
	if entries[0].Track.ID != "d" {
		t.Errorf("List()[0] = %s, want d", entries[0].Track.ID)
	}
}

func TestTrackCache_RePutMovesToFront(t *testing.T) {
	clock := newClock()
	c, _ := newTestCache(t, 2, clock)

	c.Put(completeTrack("a"))
	clock.advance(time.Minute)
	c.Put(completeTrack("b"))
	clock.advance(time.Minute)

	// Re-put replaces and moves to front, so "b" is now the oldest
	c.Put(completeTrack("a"))
	clock.advance(time.Minute)
	c.Put(completeTrack("c"))

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted after a moved to the front")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should survive after being re-put")
	}
}

func TestTrackCache_Clear(t *testing.T) {
	clock := newClock()
	c, s := newTestCache(t, 50, clock)

	c.Put(completeTrack("a"))
	c.Put(completeTrack("b"))

	c.Clear()

	if entries := c.List(); len(entries) != 0 {
		t.Errorf("List() after Clear returned %d entries", len(entries))
	}
	if keys, _ := s.Keys("track:"); len(keys) != 0 {
		t.Errorf("Clear left keys behind: %v", keys)
	}
	if c.Len() != 0 {
		t.Errorf("retention list not reset, len = %d", c.Len())
	}
}

func TestTrackCache_HydratesFromStore(t *testing.T) {
	clock := newClock()
	c, s := newTestCache(t, 50, clock)

	c.Put(completeTrack("a"))
	clock.advance(time.Minute)
	c.Put(completeTrack("b"))

	// A second cache over the same store sees the persisted entries
	reopened := New(s, Opts{MaxTracks: 50, Logger: shared.NewLogger(io.Discard), Now: clock.now})

	if reopened.Len() != 2 {
		t.Fatalf("hydrated retention list has %d ids, want 2", reopened.Len())
	}

	entries := reopened.List()
	if len(entries) != 2 || entries[0].Track.ID != "b" {
		t.Errorf("hydrated List() = %v, want b first", entries)
	}
}

func TestTrackCache_DegradesOnStoreFailure(t *testing.T) {
	logger := shared.NewLogger(io.Discard)
	c := New(&failingStore{}, Opts{Logger: logger})

	if err := c.Put(completeTrack("t1")); err != nil {
		t.Errorf("Put() should swallow store failures, got %v", err)
	}
	if _, ok := c.Get("t1"); ok {
		t.Error("Get() should degrade to a miss on store failure")
	}
	if entries := c.List(); len(entries) != 0 {
		t.Errorf("List() should degrade to empty, got %d entries", len(entries))
	}

	// Clear must not panic or corrupt state
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("in-memory state corrupted after failures, len = %d", c.Len())
	}
}

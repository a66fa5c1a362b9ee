// Package cache implements the local track cache: completed tracks keyed by
// remote id, with per-entry expiry and a bounded most-recent-N retention list.
//
// Persistence failures never propagate to callers. Every store error is
// logged as a warning and the operation degrades to a miss, an empty list, or
// a no-op, because a failed cache write must not look like a failed
// generation.
package cache

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/muse/internal/models"
	"github.com/desertthunder/muse/internal/shared"
	"github.com/desertthunder/muse/internal/store"
)

const keyPrefix = "track:"

const (
	// DefaultMaxTracks bounds the retention list.
	DefaultMaxTracks = 50
	// DefaultTTL is how long a cached entry stays valid.
	DefaultTTL = 24 * time.Hour
)

// Opts contains optional settings for [New].
type Opts struct {
	MaxTracks int              // Retention bound (defaults to DefaultMaxTracks)
	TTL       time.Duration    // Entry expiry (defaults to DefaultTTL)
	Logger    *log.Logger      // Warning sink (defaults to shared.NewLogger)
	Now       func() time.Time // Clock override for tests
}

// TrackCache persists completed tracks in a namespaced key-value store.
//
// Entries are immutable once cached; a re-put for the same remote id replaces
// the entry outright and moves it to the front of the retention list. Expired
// entries are purged lazily on the read path, never by a background sweep.
type TrackCache struct {
	store  store.Store
	logger *log.Logger
	max    int
	ttl    time.Duration
	now    func() time.Time

	mu     sync.Mutex
	recent []string // remote track ids, most recently cached first
}

// New creates a TrackCache over the given store and hydrates the retention
// list from whatever valid entries already exist.
func New(s store.Store, opts Opts) *TrackCache {
	if opts.MaxTracks <= 0 {
		opts.MaxTracks = DefaultMaxTracks
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &TrackCache{
		store:  s,
		logger: opts.Logger,
		max:    opts.MaxTracks,
		ttl:    opts.TTL,
		now:    opts.Now,
	}

	c.mu.Lock()
	c.syncRecent(c.load())
	c.mu.Unlock()

	return c
}

func key(trackID string) string {
	return keyPrefix + trackID
}

// Put caches a completed track under its remote id.
//
// The only error returned is a precondition failure: the track must have
// status complete. Store failures are logged and swallowed.
func (c *TrackCache) Put(t models.Track) error {
	if t.Status != models.StatusComplete {
		return fmt.Errorf("%w: refusing to cache %s with status %q", shared.ErrTrackIncomplete, t.ID, t.Status)
	}

	entry := models.CachedTrack{
		LocalID:  shared.GenerateID(),
		CachedAt: c.now(),
		Track:    t,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn("failed to encode cache entry", "track", t.ID, "err", err)
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Set(key(t.ID), data); err != nil {
		c.logger.Warn("cache write failed", "track", t.ID, "err", err)
		return nil
	}

	// Dedup and move to front
	c.recent = remove(c.recent, t.ID)
	c.recent = append([]string{t.ID}, c.recent...)

	if len(c.recent) > c.max {
		evicted := c.recent[c.max:]
		c.recent = c.recent[:c.max]
		c.deleteIDs(evicted)
	}

	return nil
}

// Get returns the cached entry for a remote track id if present and
// unexpired. Expired or unreadable entries are deleted on the way out.
// Get never calls the remote service.
func (c *TrackCache) Get(trackID string) (*models.CachedTrack, bool) {
	data, ok, err := c.store.Get(key(trackID))
	if err != nil {
		c.logger.Warn("cache read failed", "track", trackID, "err", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var entry models.CachedTrack
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("purging corrupt cache entry", "track", trackID, "err", err)
		c.drop(trackID)
		return nil, false
	}

	if c.expired(entry) {
		c.drop(trackID)
		return nil, false
	}

	return &entry, true
}

// List enumerates the valid cached entries, newest first, truncated to the
// retention bound. Expired and corrupt entries encountered during the scan
// are purged.
func (c *TrackCache) List() []models.CachedTrack {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := c.load()
	if len(entries) > c.max {
		c.deleteEntries(entries[c.max:])
		entries = entries[:c.max]
	}
	c.syncRecent(entries)

	return entries
}

// Clear deletes every entry under the cache's namespace.
func (c *TrackCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys, err := c.store.Keys(keyPrefix)
	if err != nil {
		c.logger.Warn("cache clear failed", "err", err)
		return
	}
	if err := c.store.Delete(keys...); err != nil {
		c.logger.Warn("cache clear failed", "err", err)
		return
	}

	c.recent = nil
}

// Len reports how many ids the retention list currently tracks.
func (c *TrackCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.recent)
}

func (c *TrackCache) expired(entry models.CachedTrack) bool {
	return c.now().After(entry.CachedAt.Add(c.ttl))
}

// load scans the full namespace and returns valid entries sorted by CachedAt
// descending, purging expired and corrupt entries as it goes. Callers hold
// the mutex when the retention list matters; load itself only reads the store.
func (c *TrackCache) load() []models.CachedTrack {
	keys, err := c.store.Keys(keyPrefix)
	if err != nil {
		c.logger.Warn("cache scan failed", "err", err)
		return nil
	}
	if len(keys) == 0 {
		return nil
	}

	values, err := c.store.GetMulti(keys)
	if err != nil {
		c.logger.Warn("cache scan failed", "err", err)
		return nil
	}

	var entries []models.CachedTrack
	var stale []string

	for k, v := range values {
		var entry models.CachedTrack
		if err := json.Unmarshal(v, &entry); err != nil || c.expired(entry) {
			// Corrupt entries are treated as expired
			stale = append(stale, k)
			continue
		}
		entries = append(entries, entry)
	}

	if len(stale) > 0 {
		if err := c.store.Delete(stale...); err != nil {
			c.logger.Warn("failed to purge stale cache entries", "count", len(stale), "err", err)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CachedAt.After(entries[j].CachedAt)
	})

	return entries
}

// syncRecent rebuilds the retention list from loaded entries. Caller holds the mutex.
func (c *TrackCache) syncRecent(entries []models.CachedTrack) {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.Track.ID)
	}
	if len(ids) > c.max {
		c.deleteIDs(ids[c.max:])
		ids = ids[:c.max]
	}
	c.recent = ids
}

// drop removes a single entry from the store and the retention list.
func (c *TrackCache) drop(trackID string) {
	if err := c.store.Delete(key(trackID)); err != nil {
		c.logger.Warn("failed to delete cache entry", "track", trackID, "err", err)
	}

	c.mu.Lock()
	c.recent = remove(c.recent, trackID)
	c.mu.Unlock()
}

func (c *TrackCache) deleteEntries(entries []models.CachedTrack) {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.Track.ID)
	}
	c.deleteIDs(ids)
}

func (c *TrackCache) deleteIDs(ids []string) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, key(id))
	}
	if err := c.store.Delete(keys...); err != nil {
		c.logger.Warn("failed to evict cache entries", "count", len(keys), "err", err)
	}
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

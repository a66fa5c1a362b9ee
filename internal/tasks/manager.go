package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/muse/internal/cache"
	"github.com/desertthunder/muse/internal/models"
	"github.com/desertthunder/muse/internal/services"
	"github.com/desertthunder/muse/internal/shared"
)

const (
	// DefaultPollInterval is the fixed delay between poll cycles.
	DefaultPollInterval = 5 * time.Second
	// DefaultMaxPollAttempts bounds polling before the generation times out.
	DefaultMaxPollAttempts = 60
	// acceptedProgress signals that the service accepted the submission.
	acceptedProgress = 10
)

// ManagerOpts contains optional settings for [NewManager].
type ManagerOpts struct {
	PollInterval    time.Duration // Defaults to DefaultPollInterval
	MaxPollAttempts int           // Defaults to DefaultMaxPollAttempts
	DisableAutoPoll bool          // When set, callers start polling explicitly
	Logger          *log.Logger
}

// Manager owns the state of the one generation in flight for a logical
// session. Construct one manager per session; the single-flight polling
// contract holds per instance.
type Manager struct {
	svc    services.Service
	cache  *cache.TrackCache
	logger *log.Logger

	interval    time.Duration
	maxAttempts int
	autoPoll    bool

	mu           sync.Mutex
	state        State
	progress     int
	generationID string
	tracks       []models.Track
	errMsg       string
	attempts     int
	epoch        uint64
	polling      bool
	cancelPoll   context.CancelFunc

	subs    map[int]chan Snapshot
	nextSub int
}

// NewManager creates a lifecycle manager over the given service and cache.
// A nil cache is allowed: the manager then skips write-through caching and
// every track lookup goes to the remote service.
func NewManager(svc services.Service, tc *cache.TrackCache, opts ManagerOpts) *Manager {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.MaxPollAttempts <= 0 {
		opts.MaxPollAttempts = DefaultMaxPollAttempts
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Manager{
		svc:         svc,
		cache:       tc,
		logger:      opts.Logger,
		interval:    opts.PollInterval,
		maxAttempts: opts.MaxPollAttempts,
		autoPoll:    !opts.DisableAutoPoll,
		subs:        make(map[int]chan Snapshot),
	}
}

// Submit starts a new generation from a text prompt.
//
// Returns once the remote service has accepted (or rejected) the submission;
// generation completes asynchronously through the poll loop. Any prior
// generation is abandoned: its pending poll is cancelled and late responses
// are discarded.
func (m *Manager) Submit(ctx context.Context, prompt string, opts services.GenerateOptions) (*models.Generation, error) {
	epoch := m.begin()

	gen, err := m.svc.Submit(ctx, prompt, opts)
	if err != nil {
		m.fail(epoch, err)
		return nil, err
	}

	if m.accept(epoch, gen) && m.autoPoll {
		m.StartPolling(ctx)
	}

	return gen, nil
}

// Extend continues an existing track; same lifecycle shape as [Manager.Submit].
func (m *Manager) Extend(ctx context.Context, trackID, prompt string, opts services.ExtendOptions) (*models.Generation, error) {
	epoch := m.begin()

	gen, err := m.svc.Extend(ctx, trackID, prompt, opts)
	if err != nil {
		m.fail(epoch, err)
		return nil, err
	}

	if m.accept(epoch, gen) && m.autoPoll {
		m.StartPolling(ctx)
	}

	return gen, nil
}

// GenerateLyrics is a one-shot operation outside the polling state machine.
// On failure the error message lands in the shared error state but the
// generation status is untouched.
func (m *Manager) GenerateLyrics(ctx context.Context, prompt string) (*models.Lyrics, error) {
	lyrics, err := m.svc.GenerateLyrics(ctx, prompt)
	if err != nil {
		m.mu.Lock()
		m.errMsg = err.Error()
		m.publishLocked()
		m.mu.Unlock()
		return nil, err
	}

	return lyrics, nil
}

// GetTrack is a cache-first lookup. On a cache miss it fetches from the
// remote service and, when the track is complete, caches it opportunistically.
func (m *Manager) GetTrack(ctx context.Context, trackID string) (*models.Track, error) {
	if m.cache != nil {
		if entry, ok := m.cache.Get(trackID); ok {
			return &entry.Track, nil
		}
	}

	tracks, err := m.svc.FetchByIDs(ctx, []string{trackID})
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, trackID)
	}

	track := tracks[0]
	if m.cache != nil && track.Status == models.StatusComplete {
		if err := m.cache.Put(track); err != nil {
			m.logger.Warn("opportunistic cache write rejected", "track", track.ID, "err", err)
		}
	}

	return &track, nil
}

// Cancel abandons the generation in flight: the scheduled poll is cancelled,
// a late response from an already-sent request is discarded, and the remote
// service is notified best-effort (a notify failure is logged, not surfaced).
func (m *Manager) Cancel(ctx context.Context) {
	m.mu.Lock()
	m.epoch++
	if m.cancelPoll != nil {
		m.cancelPoll()
		m.cancelPoll = nil
	}
	m.polling = false

	generationID := m.generationID
	m.state = Idle
	m.progress = 0
	m.generationID = ""
	m.attempts = 0
	m.publishLocked()
	m.mu.Unlock()

	if generationID == "" {
		return
	}
	if err := m.svc.Cancel(ctx, generationID); err != nil {
		m.logger.Warn("best-effort cancel notification failed", "generation", generationID, "err", err)
	}
}

// ClearError resets the shared error message. Local state only.
func (m *Manager) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errMsg = ""
	m.publishLocked()
}

// ClearTracks drops the in-memory track list. Local state only; the cache
// and the remote service are untouched.
func (m *Manager) ClearTracks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracks = nil
	m.publishLocked()
}

// StartPolling launches the poll loop for the accepted generation. A no-op
// unless the manager is in the polling state with no loop already running.
func (m *Manager) StartPolling(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Polling || m.polling {
		return
	}

	ids := make([]string, 0, len(m.tracks))
	for _, t := range m.tracks {
		ids = append(ids, t.ID)
	}

	pollCtx, cancel := context.WithCancel(ctx)
	m.polling = true
	m.cancelPoll = cancel

	go m.pollLoop(pollCtx, m.epoch, ids)
}

// Wait blocks until the lifecycle settles: completed, errored, or idle after
// a cancel. Returns the settled snapshot, or the current one with ctx's error
// when the context ends first.
func (m *Manager) Wait(ctx context.Context) (Snapshot, error) {
	ch, unsubscribe := m.Subscribe()
	defer unsubscribe()

	if snap := m.Snapshot(); snap.Settled() {
		return snap, nil
	}

	for {
		select {
		case <-ctx.Done():
			return m.Snapshot(), ctx.Err()
		case snap := <-ch:
			if snap.Settled() {
				return snap, nil
			}
		}
	}
}

// begin resets lifecycle state for a fresh submission and invalidates any
// outstanding poll loop. Returns the new epoch.
func (m *Manager) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.epoch++
	if m.cancelPoll != nil {
		m.cancelPoll()
		m.cancelPoll = nil
	}
	m.polling = false

	m.state = Generating
	m.progress = 0
	m.errMsg = ""
	m.tracks = nil
	m.attempts = 0
	m.generationID = ""
	m.publishLocked()

	return m.epoch
}

// fail moves the lifecycle to the error state unless the epoch has passed.
func (m *Manager) fail(epoch uint64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if epoch != m.epoch {
		return
	}

	m.state = Errored
	m.errMsg = err.Error()
	m.publishLocked()
}

// accept records an accepted generation and moves to the polling state.
// Reports whether the result was applied (false when a newer submission or a
// cancel raced ahead).
func (m *Manager) accept(epoch uint64, gen *models.Generation) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if epoch != m.epoch {
		return false
	}

	m.generationID = gen.ID
	m.tracks = append([]models.Track(nil), gen.Tracks...)
	m.state = Polling
	m.progress = acceptedProgress
	m.publishLocked()

	return true
}

// pollLoop drives one generation to a terminal state. Exactly one loop runs
// per epoch; the next cycle only begins after the previous fetch resolved.
func (m *Manager) pollLoop(ctx context.Context, epoch uint64, ids []string) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(m.interval):
		}

		if m.exhausted(epoch) {
			return
		}

		tracks, err := m.svc.FetchByIDs(ctx, ids)
		if err != nil {
			if ctx.Err() != nil {
				// Cancelled mid-flight; nothing to report
				return
			}
			m.fail(epoch, err)
			return
		}

		if m.applyPoll(epoch, tracks) {
			return
		}
	}
}

// exhausted checks the attempt budget; when spent it transitions to the
// error state with the timeout-specific message and reports true.
func (m *Manager) exhausted(epoch uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if epoch != m.epoch {
		return true
	}
	if m.attempts < m.maxAttempts {
		return false
	}

	m.state = Errored
	m.errMsg = fmt.Sprintf("%v after %d attempts", shared.ErrPollTimeout, m.attempts)
	m.publishLocked()
	return true
}

// applyPoll merges one cycle's fetch results into the track set, recomputes
// progress, and finishes the generation when every track is terminal.
// Reports whether the loop should stop.
func (m *Manager) applyPoll(epoch uint64, fetched []models.Track) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if epoch != m.epoch {
		// A cancel or newer submission won the race; discard
		return true
	}

	byID := make(map[string]models.Track, len(fetched))
	for _, t := range fetched {
		byID[t.ID] = t
	}

	terminal := 0
	for i, current := range m.tracks {
		if next, ok := byID[current.ID]; ok && statusRank(next.Status) >= statusRank(current.Status) {
			m.tracks[i] = next
		}
		if m.tracks[i].Status.Terminal() {
			terminal++
		}
	}

	total := len(m.tracks)
	if total == 0 {
		// Defensive; the service layer rejects empty batches
		m.state = Errored
		m.errMsg = shared.ErrEmptyResult.Error()
		m.publishLocked()
		return true
	}

	// Monotonic: the computed percentage can sit below the acceptance bump
	// early on, so progress only ever ratchets up
	pct := terminal * 100 / total
	if pct > 100 {
		pct = 100
	}
	if pct > m.progress {
		m.progress = pct
	}

	if terminal == total {
		if m.cache == nil {
			m.logger.Warn("no track cache; completed tracks not persisted", "generation", m.generationID)
		} else {
			for _, t := range m.tracks {
				if t.Status != models.StatusComplete {
					continue
				}
				if err := m.cache.Put(t); err != nil {
					m.logger.Warn("completed track not cached", "track", t.ID, "err", err)
				}
			}
		}

		m.state = Completed
		m.progress = 100
		m.polling = false
		m.cancelPoll = nil
		m.publishLocked()
		return true
	}

	m.attempts++
	m.publishLocked()
	return false
}

// statusRank orders statuses along the forward-only progression so a stale
// fetch can never regress a track.
func statusRank(s models.TrackStatus) int {
	switch s {
	case models.StatusSubmitted:
		return 0
	case models.StatusQueued:
		return 1
	case models.StatusStreaming:
		return 2
	case models.StatusComplete, models.StatusError:
		return 3
	default:
		return -1
	}
}

package tasks

import "github.com/desertthunder/muse/internal/models"

// State is the lifecycle manager's position in the generation state machine.
type State int

const (
	Idle State = iota
	Generating
	Polling
	Completed
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Generating:
		return "generating"
	case Polling:
		return "polling"
	case Completed:
		return "completed"
	case Errored:
		return "error"
	default:
		return ""
	}
}

// Snapshot is an immutable view of the manager's state, published to
// subscribers after every transition.
type Snapshot struct {
	State        State
	Progress     int // 0-100, non-decreasing within one generation
	GenerationID string
	Tracks       []models.Track
	Err          string // Human-readable message, empty unless something failed
	Attempt      int    // Poll attempts consumed so far
}

// Settled reports whether the snapshot represents a resting state: a
// finished or failed generation, or idle after a cancel. Completed and
// Errored stay stable until the next submission.
func (s Snapshot) Settled() bool {
	return s.State == Completed || s.State == Errored || s.State == Idle
}

// CompletedTracks returns the tracks that finished with audio.
func (s Snapshot) CompletedTracks() []models.Track {
	var out []models.Track
	for _, t := range s.Tracks {
		if t.Status == models.StatusComplete {
			out = append(out, t)
		}
	}
	return out
}

// snapshotLocked builds a Snapshot from current state. Caller holds the mutex.
func (m *Manager) snapshotLocked() Snapshot {
	tracks := make([]models.Track, len(m.tracks))
	copy(tracks, m.tracks)

	return Snapshot{
		State:        m.state,
		Progress:     m.progress,
		GenerationID: m.generationID,
		Tracks:       tracks,
		Err:          m.errMsg,
		Attempt:      m.attempts,
	}
}

// publishLocked sends the current snapshot to every subscriber without
// blocking; a subscriber that has fallen behind misses intermediate
// snapshots, never the lock. Caller holds the mutex.
func (m *Manager) publishLocked() {
	snap := m.snapshotLocked()
	for _, ch := range m.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

// Subscribe registers a snapshot channel and returns it with an unsubscribe
// function. The channel is buffered; slow consumers drop updates rather than
// stalling the manager.
func (m *Manager) Subscribe() (<-chan Snapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan Snapshot, 16)
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Snapshot returns the manager's current state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

package ui

import (
	"github.com/desertthunder/muse/internal/models"
	"github.com/desertthunder/muse/internal/tasks"
)

// snapshotMsg carries one lifecycle snapshot from the manager subscription.
type snapshotMsg tasks.Snapshot

// submitResultMsg reports the outcome of the submission call itself; the
// generation's progress arrives separately through snapshots.
type submitResultMsg struct {
	err error
}

// libraryLoadedMsg carries the cached track listing for the library view.
type libraryLoadedMsg struct {
	entries []models.CachedTrack
}

package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/muse/internal/models"
	"github.com/desertthunder/muse/internal/shared"
)

var (
	_ list.Item = cachedTrackItem{}
)

// cachedTrackItem wraps [models.CachedTrack] to implement [list.Item].
type cachedTrackItem struct {
	entry models.CachedTrack
}

func (i cachedTrackItem) FilterValue() string { return i.entry.Track.Title }
func (i cachedTrackItem) Title() string       { return i.entry.Track.Title }
func (i cachedTrackItem) Description() string {
	desc := shared.FormatDuration(i.entry.Track.Duration)
	if i.entry.Track.Tags != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.entry.Track.Tags)
	}
	return desc
}

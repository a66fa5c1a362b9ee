package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/muse/internal/formatter"
	"github.com/desertthunder/muse/internal/shared"
	"github.com/urfave/cli/v3"
)

// LibraryList prints cached tracks, most recent first.
func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	if r.cache == nil {
		return fmt.Errorf("%w: track cache not initialized", shared.ErrMissingConfig)
	}

	entries := r.cache.List()

	limit := cmd.Int("limit")
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}

	if export := cmd.String("export"); export != "" {
		outputPath := cmd.String("output")
		var path string
		var err error
		switch strings.ToLower(export) {
		case "csv":
			path, err = formatter.WriteCSVExport(entries, outputPath)
		case "text", "txt":
			path, err = formatter.WriteTextExport(entries, outputPath)
		default:
			return fmt.Errorf("%w: unsupported export format %q", shared.ErrInvalidFlag, export)
		}
		if err != nil {
			return err
		}
		r.writePlainln("✓ Exported %d tracks to %s", len(entries), path)
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	if len(entries) == 0 {
		r.writePlain("Library is empty. Generate something with 'muse generate'.\n")
		return nil
	}

	r.writePlain("Found %d cached tracks:\n\n", len(entries))
	for i, entry := range entries {
		r.writePlain("%d. %s\n", i+1, entry.Track.Title)
		r.writePlain("   ID: %s\n", entry.Track.ID)
		if entry.Track.Tags != "" {
			r.writePlain("   Tags: %s\n", entry.Track.Tags)
		}
		if entry.Track.Duration > 0 {
			r.writePlain("   Duration: %s\n", shared.FormatDuration(entry.Track.Duration))
		}
		r.writePlain("   Cached: %s\n", entry.CachedAt.Format(time.RFC3339))
		r.writePlain("\n")
	}

	return nil
}

// LibraryGet looks up one track, cache first, and optionally opens or
// downloads its audio.
func (r *Runner) LibraryGet(ctx context.Context, cmd *cli.Command) error {
	trackID := cmd.String("id")
	if r.manager == nil {
		return fmt.Errorf("%w: generation service not initialized", shared.ErrMissingConfig)
	}

	track, err := r.manager.GetTrack(ctx, trackID)
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(track, cmd.Bool("pretty"))
	}

	r.renderTrack(*track)

	if cmd.Bool("download") {
		if track.AudioURL == "" {
			return fmt.Errorf("%w: %s", shared.ErrTrackIncomplete, trackID)
		}
		path, err := formatter.SaveTrackAudio(*track, cmd.String("output"))
		if err != nil {
			return fmt.Errorf("download failed: %w", err)
		}
		r.writePlainln("✓ Audio saved to %s", path)
	}

	if cmd.Bool("open") {
		if track.AudioURL == "" {
			return fmt.Errorf("%w: %s", shared.ErrTrackIncomplete, trackID)
		}
		if err := shared.OpenBrowser(track.AudioURL); err != nil {
			return fmt.Errorf("failed to open audio URL: %w", err)
		}
	}

	return nil
}

// LibraryClear removes every cached track.
func (r *Runner) LibraryClear(ctx context.Context, cmd *cli.Command) error {
	if r.cache == nil {
		return fmt.Errorf("%w: track cache not initialized", shared.ErrMissingConfig)
	}

	n := r.cache.Len()
	r.cache.Clear()

	r.writePlainln("✓ Removed %d cached tracks", n)
	return nil
}

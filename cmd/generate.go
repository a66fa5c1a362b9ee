package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/muse/internal/models"
	"github.com/desertthunder/muse/internal/services"
	"github.com/desertthunder/muse/internal/shared"
	"github.com/desertthunder/muse/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Generate submits a new generation and, unless --no-poll is set, waits for
// every track in the batch to reach a terminal status.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	prompt := cmd.StringArg("prompt")
	if prompt == "" {
		return fmt.Errorf("%w: prompt", shared.ErrMissingArgument)
	}
	if r.manager == nil {
		return fmt.Errorf("%w: generation service not initialized", shared.ErrMissingConfig)
	}

	opts := services.GenerateOptions{
		Model:            cmd.String("model"),
		Title:            cmd.String("title"),
		Tags:             cmd.String("tags"),
		MakeInstrumental: cmd.Bool("instrumental"),
	}
	if opts.Model == "" {
		opts.Model = r.config.Generation.Model
	}

	r.logger.Info("submitting generation", "prompt", shared.Truncate(prompt, 60))

	gen, err := r.manager.Submit(ctx, prompt, opts)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	r.writePlainln("✓ Generation accepted: %s (%d tracks)", gen.ID, len(gen.Tracks))

	if cmd.Bool("no-poll") {
		for _, id := range gen.TrackIDs() {
			r.writePlain("  %s\n", id)
		}
		r.writePlain("Run 'muse library get --id <track>' once generation finishes.\n")
		return nil
	}

	return r.awaitGeneration(ctx, cmd)
}

// Extend continues an existing track from the given timestamp; same output
// shape as [Runner.Generate].
func (r *Runner) Extend(ctx context.Context, cmd *cli.Command) error {
	prompt := cmd.StringArg("prompt")
	trackID := cmd.String("id")
	if r.manager == nil {
		return fmt.Errorf("%w: generation service not initialized", shared.ErrMissingConfig)
	}

	opts := services.ExtendOptions{
		ContinueAt:       cmd.Float("continue-at"),
		Title:            cmd.String("title"),
		Tags:             cmd.String("tags"),
		MakeInstrumental: cmd.Bool("instrumental"),
	}

	r.logger.Info("extending track", "track", trackID, "continue_at", opts.ContinueAt)

	gen, err := r.manager.Extend(ctx, trackID, prompt, opts)
	if err != nil {
		return fmt.Errorf("extension failed: %w", err)
	}

	r.writePlainln("✓ Extension accepted: %s (%d tracks)", gen.ID, len(gen.Tracks))

	if cmd.Bool("no-poll") {
		for _, id := range gen.TrackIDs() {
			r.writePlain("  %s\n", id)
		}
		return nil
	}

	return r.awaitGeneration(ctx, cmd)
}

// Lyrics generates standalone lyrics without touching the generation lifecycle.
func (r *Runner) Lyrics(ctx context.Context, cmd *cli.Command) error {
	prompt := cmd.StringArg("prompt")
	if prompt == "" {
		return fmt.Errorf("%w: prompt", shared.ErrMissingArgument)
	}
	if r.manager == nil {
		return fmt.Errorf("%w: generation service not initialized", shared.ErrMissingConfig)
	}

	lyrics, err := r.manager.GenerateLyrics(ctx, prompt)
	if err != nil {
		return fmt.Errorf("lyrics generation failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(lyrics, cmd.Bool("pretty"))
	}

	if lyrics.Title != "" {
		r.writePlain("%s\n\n", lyrics.Title)
	}
	r.writePlain("%s\n", lyrics.Text)

	return nil
}

// CancelGeneration abandons a generation. With --id the remote service is
// notified directly; without it the generation currently in flight through
// the lifecycle manager is cancelled instead.
func (r *Runner) CancelGeneration(ctx context.Context, cmd *cli.Command) error {
	if r.svc == nil {
		return fmt.Errorf("%w: generation service not initialized", shared.ErrMissingConfig)
	}

	generationID := cmd.String("id")
	if generationID == "" {
		if r.manager == nil || r.manager.Snapshot().GenerationID == "" {
			return fmt.Errorf("%w: nothing to cancel", shared.ErrNoGeneration)
		}
		generationID = r.manager.Snapshot().GenerationID
		r.manager.Cancel(ctx)
		r.writePlainln("✓ Generation cancelled: %s", generationID)
		return nil
	}

	if err := r.svc.Cancel(ctx, generationID); err != nil {
		return fmt.Errorf("cancel failed: %w", err)
	}

	r.writePlainln("✓ Generation cancelled: %s", generationID)
	return nil
}

// awaitGeneration blocks until the lifecycle settles and renders the outcome.
func (r *Runner) awaitGeneration(ctx context.Context, cmd *cli.Command) error {
	// A manager configured without auto-poll needs an explicit start; this is
	// a no-op when the poll loop is already running
	r.manager.StartPolling(ctx)

	snap, err := r.manager.Wait(ctx)
	if err != nil {
		return fmt.Errorf("interrupted while waiting for generation: %w", err)
	}

	if snap.State == tasks.Errored {
		return fmt.Errorf("generation failed: %s", snap.Err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(snap.Tracks, cmd.Bool("pretty"))
	}

	r.writePlainln("✓ Generation complete")
	for _, t := range snap.Tracks {
		r.renderTrack(t)
	}

	return nil
}

func (r *Runner) renderTrack(t models.Track) {
	title := t.Title
	if title == "" {
		title = t.ID
	}
	r.writePlain("  %s [%s]\n", title, t.Status)
	if t.Tags != "" {
		r.writePlain("    Tags: %s\n", t.Tags)
	}
	if t.Duration > 0 {
		r.writePlain("    Duration: %s\n", shared.FormatDuration(t.Duration))
	}
	if t.AudioURL != "" {
		r.writePlain("    Audio: %s\n", t.AudioURL)
	}
}

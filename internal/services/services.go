package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/muse/internal/models"
	"github.com/desertthunder/muse/internal/shared"
)

// Service defines the remote generation API surface consumed by the
// lifecycle manager. Repeated fetches are assumed idempotent.
type Service interface {
	// Submit starts a new generation from a text prompt.
	// Returns once the service has accepted the request; generation
	// itself completes asynchronously.
	Submit(ctx context.Context, prompt string, opts GenerateOptions) (*models.Generation, error)

	// FetchByIDs retrieves the current state of the given tracks.
	FetchByIDs(ctx context.Context, ids []string) ([]models.Track, error)

	// Extend continues an existing track from an offset.
	Extend(ctx context.Context, trackID, prompt string, opts ExtendOptions) (*models.Generation, error)

	// GenerateLyrics produces lyrics for a prompt without generating audio.
	GenerateLyrics(ctx context.Context, prompt string) (*models.Lyrics, error)

	// Cancel notifies the service that a generation is abandoned.
	// Best-effort: callers ignore failures.
	Cancel(ctx context.Context, generationID string) error

	// Name returns the name of the backing service.
	Name() string
}

// GenerateOptions carries the recognized fields for a submission.
type GenerateOptions struct {
	Model            string `json:"model,omitempty"`             // Generation backend variant
	MakeInstrumental bool   `json:"make_instrumental,omitempty"` // Suppress vocals
	WaitForAudio     bool   `json:"wait_audio,omitempty"`        // Block server-side until audio exists
	Tags             string `json:"tags,omitempty"`              // Free-text style hints
	Title            string `json:"title,omitempty"`             // Optional user title
}

// ExtendOptions carries the recognized fields for a track continuation.
type ExtendOptions struct {
	ContinueAt       float64 `json:"continue_at,omitempty"` // Offset in seconds
	Tags             string  `json:"tags,omitempty"`
	Title            string  `json:"title,omitempty"`
	MakeInstrumental bool    `json:"make_instrumental,omitempty"`
}

// APIError is a non-2xx response from the generation API, carrying the
// HTTP status and the message parsed from the response body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// Unwrap lets callers match any remote rejection against
// [shared.ErrAPIRequest] without inspecting the status code.
func (e *APIError) Unwrap() error {
	return shared.ErrAPIRequest
}

// Suno proxy implementation of [Service]
//
// Endpoints follow the suno-api proxy layout: JSON in, JSON out, bearer
// credential, one request at a time behind a minimum inter-request gap.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/muse/internal/models"
	"github.com/desertthunder/muse/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const defaultSunoBaseURL = "http://127.0.0.1:3000"

// DefaultRequestGap is the minimum delay between consecutive outbound calls.
const DefaultRequestGap = time.Second

// SunoService implements [Service] against a suno-api style HTTP proxy.
//
// Outbound calls queue behind a [rate.Limiter] configured with burst 1 so two
// requests are never closer together than the configured gap. Every method
// fails fast with [shared.ErrMissingCredentials] when the API key is empty,
// before any network activity.
type SunoService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// SunoOpts contains optional settings for [NewSunoService].
type SunoOpts struct {
	HTTPClient *http.Client  // Base transport (defaults to http.DefaultClient)
	RequestGap time.Duration // Minimum delay between calls (defaults to DefaultRequestGap)
}

// NewSunoService creates a Suno client for the given proxy URL and API key.
//
// When a key is present the underlying client is built with [oauth2.NewClient]
// and a static token source, so every request carries the bearer credential.
func NewSunoService(baseURL, apiKey string, opts SunoOpts) *SunoService {
	if baseURL == "" {
		baseURL = defaultSunoBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	base := opts.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}

	client := base
	if apiKey != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"})
		client = oauth2.NewClient(ctx, src)
	}

	gap := opts.RequestGap
	if gap <= 0 {
		gap = DefaultRequestGap
	}

	return &SunoService{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Every(gap), 1),
	}
}

func (s *SunoService) Name() string {
	return "Suno"
}

// sunoClip is the wire representation of a track in proxy responses.
type sunoClip struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Title     string    `json:"title"`
	Prompt    string    `json:"gpt_description_prompt"`
	Tags      string    `json:"tags"`
	AudioURL  string    `json:"audio_url"`
	Duration  float64   `json:"duration"`
	CreatedAt time.Time `json:"created_at"`
}

func (c sunoClip) track() models.Track {
	return models.Track{
		ID:        c.ID,
		Status:    models.TrackStatus(c.Status),
		Title:     c.Title,
		Prompt:    c.Prompt,
		Tags:      c.Tags,
		AudioURL:  c.AudioURL,
		Duration:  c.Duration,
		CreatedAt: c.CreatedAt,
	}
}

// generationResponse is the wire representation of a submit/extend response.
type generationResponse struct {
	GenerationID string     `json:"generation_id"`
	Clips        []sunoClip `json:"clips"`
	BatchSize    int        `json:"batch_size"`
}

func (r *generationResponse) generation() *models.Generation {
	gen := &models.Generation{
		ID:        r.GenerationID,
		BatchSize: r.BatchSize,
		Tracks:    make([]models.Track, 0, len(r.Clips)),
	}
	for _, c := range r.Clips {
		gen.Tracks = append(gen.Tracks, c.track())
	}
	if gen.BatchSize == 0 {
		gen.BatchSize = len(gen.Tracks)
	}
	return gen
}

// doRequest performs a throttled, authenticated request against the proxy and
// decodes the JSON response into result (when non-nil).
func (s *SunoService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if s.apiKey == "" {
		return fmt.Errorf("%w: no API key configured", shared.ErrMissingCredentials)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("request throttle interrupted: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiErrorFromResponse(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// apiErrorFromResponse builds an [*APIError] from a non-2xx response body.
// The proxy reports failures as {"error": "..."} or {"message": "..."}.
func apiErrorFromResponse(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return apiErr
	}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Error != "" {
			apiErr.Message = body.Error
		} else {
			apiErr.Message = body.Message
		}
	}

	return apiErr
}

// Submit starts a new generation from a text prompt.
func (s *SunoService) Submit(ctx context.Context, prompt string, opts GenerateOptions) (*models.Generation, error) {
	payload := struct {
		Prompt string `json:"prompt"`
		GenerateOptions
	}{Prompt: prompt, GenerateOptions: opts}

	var resp generationResponse
	if err := s.doRequest(ctx, http.MethodPost, "/api/generate", payload, &resp); err != nil {
		return nil, err
	}

	gen := resp.generation()
	if len(gen.Tracks) == 0 {
		return nil, fmt.Errorf("%w: generation accepted no tracks", shared.ErrEmptyResult)
	}

	return gen, nil
}

// FetchByIDs retrieves the current state of the given tracks.
func (s *SunoService) FetchByIDs(ctx context.Context, ids []string) ([]models.Track, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no track ids", shared.ErrInvalidInput)
	}

	endpoint := fmt.Sprintf("/api/get?ids=%s", url.QueryEscape(strings.Join(ids, ",")))

	var clips []sunoClip
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &clips); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(clips))
	for _, c := range clips {
		tracks = append(tracks, c.track())
	}

	return tracks, nil
}

// Extend continues an existing track from an offset.
func (s *SunoService) Extend(ctx context.Context, trackID, prompt string, opts ExtendOptions) (*models.Generation, error) {
	payload := struct {
		AudioID string `json:"audio_id"`
		Prompt  string `json:"prompt"`
		ExtendOptions
	}{AudioID: trackID, Prompt: prompt, ExtendOptions: opts}

	var resp generationResponse
	if err := s.doRequest(ctx, http.MethodPost, "/api/extend_audio", payload, &resp); err != nil {
		return nil, err
	}

	gen := resp.generation()
	if len(gen.Tracks) == 0 {
		return nil, fmt.Errorf("%w: extension accepted no tracks", shared.ErrEmptyResult)
	}

	return gen, nil
}

// GenerateLyrics produces lyrics for a prompt without generating audio.
func (s *SunoService) GenerateLyrics(ctx context.Context, prompt string) (*models.Lyrics, error) {
	payload := struct {
		Prompt string `json:"prompt"`
	}{Prompt: prompt}

	var lyrics models.Lyrics
	if err := s.doRequest(ctx, http.MethodPost, "/api/generate_lyrics", payload, &lyrics); err != nil {
		return nil, err
	}

	return &lyrics, nil
}

// Cancel notifies the proxy that a generation is abandoned.
func (s *SunoService) Cancel(ctx context.Context, generationID string) error {
	payload := struct {
		GenerationID string `json:"generation_id"`
	}{GenerationID: generationID}

	return s.doRequest(ctx, http.MethodPost, "/api/cancel", payload, nil)
}

// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/muse/internal/models"
	"github.com/desertthunder/muse/internal/services"
)

// MockService is a scriptable test double for [services.Service].
//
// Each operation delegates to its function field when set and falls back to
// an empty success otherwise. Call counters are safe for concurrent use.
type MockService struct {
	SubmitFn         func(ctx context.Context, prompt string, opts services.GenerateOptions) (*models.Generation, error)
	FetchFn          func(ctx context.Context, ids []string) ([]models.Track, error)
	ExtendFn         func(ctx context.Context, trackID, prompt string, opts services.ExtendOptions) (*models.Generation, error)
	GenerateLyricsFn func(ctx context.Context, prompt string) (*models.Lyrics, error)
	CancelFn         func(ctx context.Context, generationID string) error

	SubmitCalls atomic.Int64
	FetchCalls  atomic.Int64
	ExtendCalls atomic.Int64
	LyricsCalls atomic.Int64
	CancelCalls atomic.Int64
}

func (m *MockService) Submit(ctx context.Context, prompt string, opts services.GenerateOptions) (*models.Generation, error) {
	m.SubmitCalls.Add(1)
	if m.SubmitFn != nil {
		return m.SubmitFn(ctx, prompt, opts)
	}
	return &models.Generation{ID: "mock-gen", Tracks: []models.Track{{ID: "mock-track", Status: models.StatusQueued}}, BatchSize: 1}, nil
}

func (m *MockService) FetchByIDs(ctx context.Context, ids []string) ([]models.Track, error) {
	m.FetchCalls.Add(1)
	if m.FetchFn != nil {
		return m.FetchFn(ctx, ids)
	}
	return nil, nil
}

func (m *MockService) Extend(ctx context.Context, trackID, prompt string, opts services.ExtendOptions) (*models.Generation, error) {
	m.ExtendCalls.Add(1)
	if m.ExtendFn != nil {
		return m.ExtendFn(ctx, trackID, prompt, opts)
	}
	return &models.Generation{ID: "mock-ext", Tracks: []models.Track{{ID: "mock-track-ext", Status: models.StatusSubmitted}}, BatchSize: 1}, nil
}

func (m *MockService) GenerateLyrics(ctx context.Context, prompt string) (*models.Lyrics, error) {
	m.LyricsCalls.Add(1)
	if m.GenerateLyricsFn != nil {
		return m.GenerateLyricsFn(ctx, prompt)
	}
	return &models.Lyrics{Text: "mock lyrics", Title: "Mock"}, nil
}

func (m *MockService) Cancel(ctx context.Context, generationID string) error {
	m.CancelCalls.Add(1)
	if m.CancelFn != nil {
		return m.CancelFn(ctx, generationID)
	}
	return nil
}

func (m *MockService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

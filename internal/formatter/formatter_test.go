package formatter

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/muse/internal/models"
	th "github.com/desertthunder/muse/internal/testing"
)

func sampleTracks() []models.CachedTrack {
	cachedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []models.CachedTrack{
		{
			LocalID:  "local1",
			CachedAt: cachedAt,
			Track: models.Track{
				ID:       "track1",
				Status:   models.StatusComplete,
				Title:    "Neon Skyline",
				Prompt:   "an upbeat synthwave song about city lights",
				Tags:     "synthwave, upbeat",
				AudioURL: "https://cdn.example/track1.mp3",
				Duration: 180,
			},
		},
		{
			LocalID:  "local2",
			CachedAt: cachedAt.Add(-time.Hour),
			Track: models.Track{
				ID:       "track2",
				Status:   models.StatusComplete,
				Title:    "Quiet Rain",
				AudioURL: "https://cdn.example/track2.mp3",
				Duration: 245,
			},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sampleTracks())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "ID,Title,Tags,Duration,Cached At,Audio URL") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "track1") {
			t.Errorf("CSV missing track1 ID")
		}
		if !strings.Contains(output, "Neon Skyline") {
			t.Errorf("CSV missing track1 title")
		}
		if !strings.Contains(output, `"synthwave, upbeat"`) {
			t.Errorf("CSV missing quoted tags, got: %s", output)
		}
		if !strings.Contains(output, "3:00") {
			t.Errorf("CSV missing formatted duration")
		}
		if !strings.Contains(output, "https://cdn.example/track2.mp3") {
			t.Errorf("CSV missing track2 audio URL")
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sampleTracks(), "My Generations")
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "# My Generations") {
			t.Errorf("Markdown missing title")
		}
		if !strings.Contains(output, "**Tracks**: 2") {
			t.Errorf("Markdown missing track count")
		}
		if !strings.Contains(output, "1. [Neon Skyline](https://cdn.example/track1.mp3) (synthwave, upbeat) [3:00]") {
			t.Errorf("Markdown missing track1, got: %s", output)
		}
		if !strings.Contains(output, "2. [Quiet Rain](https://cdn.example/track2.mp3) [4:05]") {
			t.Errorf("Markdown missing track2 (no tags)")
		}

		t.Run("default title", func(t *testing.T) {
			data, err := ExportToMarkdown(nil, "")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}
			if !strings.Contains(string(data), "# Library") {
				t.Errorf("Markdown missing default title")
			}
		})
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sampleTracks())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "Tracks: 2") {
			t.Errorf("Text missing track count")
		}
		if !strings.Contains(output, "1. Neon Skyline [3:00]") {
			t.Errorf("Text missing track1")
		}
		if !strings.Contains(output, "2. Quiet Rain [4:05]") {
			t.Errorf("Text missing track2")
		}
	})

	t.Run("ToJSON", func(t *testing.T) {
		data, err := ToJSON(sampleTracks())
		if err != nil {
			t.Fatalf("ToJSON failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, `"local_id": "local1"`) {
			t.Errorf("JSON missing surrogate id, got: %s", output)
		}
		if !strings.Contains(output, `"id": "track1"`) {
			t.Errorf("JSON missing track id")
		}
		if !strings.Contains(output, `"audio_url": "https://cdn.example/track1.mp3"`) {
			t.Errorf("JSON missing audio url")
		}
	})
}

func TestDownloadAudio(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		_, err := DownloadAudio("")
		if err == nil {
			t.Error("DownloadAudio with empty URL should return error")
		}
	})

	t.Run("NonOKStatus", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := DownloadAudio(srv.URL)
		if err == nil {
			t.Error("DownloadAudio with 404 should return error")
		}
	})
}

func TestSaveTrackAudio(t *testing.T) {
	audio := []byte("ID3 fake audio bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(audio)
	}))
	defer srv.Close()

	t.Run("WritesFile", func(t *testing.T) {
		tempDir := t.TempDir()
		track := models.Track{
			ID:       "track1",
			Status:   models.StatusComplete,
			Title:    "Neon Skyline!",
			AudioURL: srv.URL + "/track1.mp3",
		}

		path, err := SaveTrackAudio(track, tempDir)
		if err != nil {
			t.Fatalf("SaveTrackAudio failed: %v", err)
		}
		th.AssertFileExists(t, path)
		if !strings.HasSuffix(path, "Neon_Skyline.mp3") {
			t.Errorf("unexpected filename: %s", path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read written file: %v", err)
		}
		if string(data) != string(audio) {
			t.Errorf("written audio does not match downloaded bytes")
		}
	})

	t.Run("FallsBackToID", func(t *testing.T) {
		tempDir := t.TempDir()
		track := models.Track{
			ID:       "track2",
			Status:   models.StatusComplete,
			Title:    "!!!",
			AudioURL: srv.URL + "/track2.mp3",
		}

		path, err := SaveTrackAudio(track, tempDir)
		if err != nil {
			t.Fatalf("SaveTrackAudio failed: %v", err)
		}
		if !strings.HasSuffix(path, "track2.mp3") {
			t.Errorf("expected filename derived from track ID, got: %s", path)
		}
	})

	t.Run("NoAudioURL", func(t *testing.T) {
		if _, err := SaveTrackAudio(models.Track{ID: "t"}, t.TempDir()); err == nil {
			t.Error("SaveTrackAudio without audio URL should return error")
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir := th.MustGetwd(t)
		th.MustChdir(t, tempDir)
		defer th.MustChdir(t, originalDir)

		path, err := WriteCSVExport(sampleTracks(), "")
		if err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}
		if path != "library_tracks.csv" {
			t.Errorf("unexpected default path: %s", path)
		}
		th.AssertFileExists(t, path)
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		tempDir := t.TempDir()

		path, err := WriteTextExport(sampleTracks(), tempDir+"/out.txt")
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}
		th.AssertFileExists(t, path)

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read written file: %v", err)
		}
		if !strings.Contains(string(data), "Neon Skyline") {
			t.Errorf("written text missing track title")
		}
	})
}

// package formatter exports cached track listings to various formats (CSV, Markdown, plain text) and saves track audio to disk
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/muse/internal/models"
	"github.com/desertthunder/muse/internal/shared"
)

// ExportToCSV converts cached tracks to CSV format with columns: ID, Title, Tags, Duration, Cached At, Audio URL
func ExportToCSV(tracks []models.CachedTrack) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Tags", "Duration", "Cached At", "Audio URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range tracks {
		record := []string{
			entry.Track.ID,
			entry.Track.Title,
			entry.Track.Tags,
			shared.FormatDuration(entry.Track.Duration),
			entry.CachedAt.Format(time.RFC3339),
			entry.Track.AudioURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts cached tracks to a Markdown listing
func ExportToMarkdown(tracks []models.CachedTrack, title string) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "Library"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(tracks)))

	for i, entry := range tracks {
		duration := shared.FormatDuration(entry.Track.Duration)
		tagsPart := ""
		if entry.Track.Tags != "" {
			tagsPart = fmt.Sprintf(" (%s)", entry.Track.Tags)
		}
		buf.WriteString(fmt.Sprintf("%d. [%s](%s)%s [%s]\n", i+1, entry.Track.Title, entry.Track.AudioURL, tagsPart, duration))
	}

	return buf.Bytes(), nil
}

// ExportToText converts cached tracks to plain text format
func ExportToText(tracks []models.CachedTrack) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(tracks)))
	for i, entry := range tracks {
		buf.WriteString(fmt.Sprintf("%d. %s [%s]\n", i+1, entry.Track.Title, shared.FormatDuration(entry.Track.Duration)))
	}

	return buf.Bytes(), nil
}

// ToJSON generates an indented JSON representation of the cached track list
func ToJSON(tracks []models.CachedTrack) ([]byte, error) {
	return shared.MarshalJSON(tracks, true)
}

// DownloadAudio fetches the audio file at the given URL and returns the raw bytes
func DownloadAudio(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 2 * time.Minute,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download audio: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	return data, nil
}

// SaveTrackAudio downloads a completed track's audio into outputDir.
//
// The filename is derived from the track title, falling back to the track ID.
// Returns the path of the written file.
func SaveTrackAudio(track models.Track, outputDir string) (string, error) {
	if track.AudioURL == "" {
		return "", fmt.Errorf("track %s has no audio url", track.ID)
	}

	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := DownloadAudio(track.AudioURL)
	if err != nil {
		return "", err
	}

	name := sanitizeFilename(track.Title)
	if name == "" {
		name = track.ID
	}
	path := fmt.Sprintf("%s/%s.mp3", outputDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	return path, nil
}

// WriteCSVExport writes the cached track list to a CSV file.
//
// Defaults to library_tracks.csv as the filename.
func WriteCSVExport(tracks []models.CachedTrack, filepath string) (string, error) {
	if filepath == "" {
		filepath = "library_tracks.csv"
	}

	csvData, err := ExportToCSV(tracks)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(filepath, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return filepath, nil
}

// WriteTextExport writes the cached track list to a plain text file.
//
// Defaults to library_tracks.txt as the filename.
func WriteTextExport(tracks []models.CachedTrack, filepath string) (string, error) {
	if filepath == "" {
		filepath = "library_tracks.txt"
	}

	textData, err := ExportToText(tracks)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}

// sanitizeFilename strips characters that are unsafe in filenames and
// collapses whitespace to single underscores.
func sanitizeFilename(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}

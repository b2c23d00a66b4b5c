// package formatter exports the track list of a build to CSV, Markdown, plain text or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/top5/internal/models"
	"github.com/desertthunder/top5/internal/shared"
)

// Format names an export format.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "text"
	JSON     Format = "json"
)

// Export is the content written by the exporters.
type Export struct {
	Playlist    string            `json:"playlist"`
	Description string            `json:"description,omitempty"`
	Tracks      []models.TrackRef `json:"tracks"`
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV, nil
	case ".md", ".markdown":
		return Markdown, nil
	case ".txt":
		return Text, nil
	case ".json":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: unsupported export extension %q (use .csv, .md, .txt or .json)", shared.ErrInvalidArgument, filepath.Ext(path))
	}
}

// ExportToCSV renders the tracks with columns: Position, Artist, Title, ID, URI
func ExportToCSV(export Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Position", "Artist", "Title", "ID", "URI"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, track := range export.Tracks {
		record := []string{fmt.Sprint(i + 1), track.Artist, track.Name, track.ID, track.URI}
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

// ExportToMarkdown renders a heading, the description and a numbered track list grouped by artist.
func ExportToMarkdown(export Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Playlist)
	if export.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", export.Description)
	}
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(export.Tracks))

	current := ""
	for i, track := range export.Tracks {
		if track.Artist != current {
			current = track.Artist
			fmt.Fprintf(&buf, "## %s\n\n", current)
		}
		fmt.Fprintf(&buf, "%d. [%s](%s)\n", i+1, track.Name, track.URI)
		if i+1 < len(export.Tracks) && export.Tracks[i+1].Artist != current {
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

// ExportToText renders the tracks as plain text.
func ExportToText(export Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", export.Playlist)
	if export.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", export.Description)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(export.Tracks))

	for i, track := range export.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, track.Artist, track.Name)
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the export as indented JSON.
func ExportToJSON(export Export) ([]byte, error) {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Render dispatches to the exporter for format.
func Render(format Format, export Export) ([]byte, error) {
	switch format {
	case CSV:
		return ExportToCSV(export)
	case Markdown:
		return ExportToMarkdown(export)
	case Text:
		return ExportToText(export)
	case JSON:
		return ExportToJSON(export)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteExport renders export in the format implied by path and writes it there.
func WriteExport(path string, export Export) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	data, err := Render(format, export)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

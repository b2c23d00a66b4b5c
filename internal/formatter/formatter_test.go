package formatter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/top5/internal/models"
	"github.com/desertthunder/top5/internal/shared"
	tu "github.com/desertthunder/top5/internal/testing"
)

func testExport() Export {
	return Export{
		Playlist:    "Test Mix",
		Description: "best of",
		Tracks: []models.TrackRef{
			{ID: "t1", URI: "spotify:track:t1", Name: "One More Time", Artist: "Daft Punk"},
			{ID: "t2", URI: "spotify:track:t2", Name: "Around the World", Artist: "Daft Punk"},
			{ID: "t3", URI: "spotify:track:t3", Name: "Creep", Artist: "Radiohead"},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testExport())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("expected valid CSV, got %v", err)
		}
		if len(records) != 4 {
			t.Fatalf("expected header and 3 rows, got %d", len(records))
		}
		if strings.Join(records[0], ",") != "Position,Artist,Title,ID,URI" {
			t.Errorf("unexpected header %v", records[0])
		}
		if strings.Join(records[3], ",") != "3,Radiohead,Creep,t3,spotify:track:t3" {
			t.Errorf("unexpected row %v", records[3])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(testExport())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := string(data)
		for _, want := range []string{"# Test Mix", "**Description**: best of", "**Tracks**: 3", "## Daft Punk", "## Radiohead", "3. [Creep](spotify:track:t3)"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in %q", want, out)
			}
		}
		if strings.Count(out, "## Daft Punk") != 1 {
			t.Error("expected one heading per artist")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(Export{Playlist: "Test Mix", Tracks: testExport().Tracks[:1]})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := "Playlist: Test Mix\nTracks: 1\n\n1. Daft Punk - One More Time\n"
		if string(data) != want {
			t.Errorf("expected %q, got %q", want, string(data))
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(testExport())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var decoded Export
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("expected valid JSON, got %v", err)
		}
		if decoded.Playlist != "Test Mix" || len(decoded.Tracks) != 3 || decoded.Tracks[2].ID != "t3" {
			t.Errorf("unexpected decoded export %+v", decoded)
		}
	})

	t.Run("Render unknown format", func(t *testing.T) {
		if _, err := Render("xml", testExport()); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{path: "out.csv", want: CSV},
		{path: "out.MD", want: Markdown},
		{path: "dir/out.markdown", want: Markdown},
		{path: "out.txt", want: Text},
		{path: "out.json", want: JSON},
		{path: "out.xml", wantErr: true},
		{path: "out", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("expected %s, got %s (%v)", tt.want, got, err)
			}
		})
	}
}

func TestWriteExport(t *testing.T) {
	t.Run("writes file in format of extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tracks.txt")
		if err := WriteExport(path, testExport()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		tu.AssertFileExists(t, path)
		if !strings.HasPrefix(tu.MustReadFile(t, path), "Playlist: Test Mix") {
			t.Error("expected text export")
		}
	})

	t.Run("rejects unknown extension", func(t *testing.T) {
		if err := WriteExport(filepath.Join(t.TempDir(), "tracks.xml"), testExport()); err == nil {
			t.Error("expected error")
		}
	})
}

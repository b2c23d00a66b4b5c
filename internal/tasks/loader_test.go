package tasks

import (
	"errors"
	"io/fs"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/desertthunder/top5/internal/shared"
	tu "github.com/desertthunder/top5/internal/testing"
)

func TestParseArtists(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "newline terminated", input: "Daft Punk\nRadiohead\n", want: []string{"Daft Punk", "Radiohead"}},
		{name: "no trailing newline", input: "Daft Punk\nRadiohead", want: []string{"Daft Punk", "Radiohead"}},
		{name: "crlf", input: "Daft Punk\r\nRadiohead\r\n", want: []string{"Daft Punk", "Radiohead"}},
		{name: "blank lines skipped", input: "\nDaft Punk\n\n   \nRadiohead\n\n", want: []string{"Daft Punk", "Radiohead"}},
		{name: "surrounding whitespace", input: "  Sigur Rós \t\n", want: []string{"Sigur Rós"}},
		{name: "duplicates kept", input: "Muse\nMuse\n", want: []string{"Muse", "Muse"}},
		{name: "empty", input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArtists(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLoadArtists(t *testing.T) {
	t.Run("reads file", func(t *testing.T) {
		path := tu.WriteFile(t, "artists.txt", []byte("Daft Punk\nRadiohead\n"))

		names, err := LoadArtists(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(names) != 2 || names[0] != "Daft Punk" {
			t.Errorf("unexpected names %q", names)
		}
	})

	t.Run("missing file is an input error", func(t *testing.T) {
		_, err := LoadArtists(filepath.Join(t.TempDir(), "nope.txt"))
		if !errors.Is(err, shared.ErrInput) {
			t.Errorf("expected ErrInput, got %v", err)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected fs.ErrNotExist to be preserved, got %v", err)
		}
	})

	t.Run("directory is an input error", func(t *testing.T) {
		_, err := LoadArtists(t.TempDir())
		if !errors.Is(err, shared.ErrInput) {
			t.Errorf("expected ErrInput, got %v", err)
		}
	})
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/top5/internal/shared"
	tu "github.com/desertthunder/top5/internal/testing"
)

func newBuildMock() *tu.MockService {
	mock := tu.NewMockService()
	mock.AddArtist("Daft Punk", "daft", 10)
	mock.AddArtist("Radiohead", "radio", 10)
	return mock
}

func buildArgs(t *testing.T, extra ...string) []string {
	t.Helper()
	file := tu.WriteFile(t, "artists.txt", []byte("Daft Punk\nRadiohead\n"))
	return append([]string{"top5", "build", "--file", file, "--playlist", "Test Mix"}, extra...)
}

func TestBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("creates playlist and prints summary", func(t *testing.T) {
		mock := newBuildMock()
		runner, output := newTestRunner(testConfig(), mock, "")

		if err := runner.app().Run(ctx, buildArgs(t, "--description", "best of")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := output.String()
		for _, want := range []string{"resolve_artists", "add_tracks", "Created Test Mix", "Tracks: 10"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output %q", want, out)
			}
		}
		if creates := mock.CallsFor(tu.OpCreatePlaylist); len(creates) != 1 {
			t.Errorf("expected one create, got %d", len(creates))
		}
	})

	t.Run("existing playlist asks before clearing", func(t *testing.T) {
		mock := newBuildMock()
		mock.AddPlaylist("p1", "Test Mix", 150)
		runner, output := newTestRunner(testConfig(), mock, "y\n")

		if err := runner.app().Run(ctx, buildArgs(t)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "already exists") {
			t.Errorf("expected confirmation prompt, got %q", output.String())
		}
		if removes := mock.CallsFor(tu.OpRemoveItems); len(removes) != 2 {
			t.Errorf("expected 2 remove batches, got %d", len(removes))
		}
	})

	t.Run("progress is printed before the prompt", func(t *testing.T) {
		mock := newBuildMock()
		mock.AddPlaylist("p1", "Test Mix", 3)
		runner, output := newTestRunner(testConfig(), mock, "y\n")

		if err := runner.app().Run(ctx, buildArgs(t)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		out := output.String()
		prompt := strings.Index(out, "already exists")
		found := strings.Index(out, "Found playlist: Test Mix")
		if prompt < 0 || found < 0 || found > prompt {
			t.Fatalf("expected found update before the prompt, got %q", out)
		}
		if line := out[strings.LastIndex(out[:prompt], "\n")+1 : prompt]; strings.Contains(line, "find_playlist") {
			t.Errorf("expected the prompt on its own line, got %q", line)
		}
	})

	t.Run("--json keeps the prompt off stdout", func(t *testing.T) {
		mock := newBuildMock()
		mock.AddPlaylist("p1", "Test Mix", 3)
		output, prompts := &bytes.Buffer{}, &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config:    testConfig(),
			Spotify:   mock,
			Logger:    log.New(io.Discard),
			Output:    output,
			ErrOutput: prompts,
			Input:     strings.NewReader("y\n"),
		})

		if err := runner.app().Run(ctx, buildArgs(t, "--json")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var report buildReport
		if err := json.Unmarshal(output.Bytes(), &report); err != nil {
			t.Fatalf("expected JSON output, got %q: %v", output.String(), err)
		}
		if report.State != "cleared" || report.Removed != 3 {
			t.Errorf("unexpected report %+v", report)
		}
		if !strings.Contains(prompts.String(), "already exists") {
			t.Errorf("expected prompt on the error output, got %q", prompts.String())
		}
	})

	t.Run("declining aborts without writes", func(t *testing.T) {
		mock := newBuildMock()
		mock.AddPlaylist("p1", "Test Mix", 150)
		runner, _ := newTestRunner(testConfig(), mock, "n\n")

		err := runner.app().Run(ctx, buildArgs(t))
		if !errors.Is(err, shared.ErrDeclined) {
			t.Fatalf("expected ErrDeclined, got %v", err)
		}
		if m := mock.Mutations(); len(m) != 0 {
			t.Errorf("expected no mutations, got %+v", m)
		}
	})

	t.Run("--yes skips the prompt", func(t *testing.T) {
		mock := newBuildMock()
		mock.AddPlaylist("p1", "Test Mix", 3)
		runner, output := newTestRunner(testConfig(), mock, "")

		if err := runner.app().Run(ctx, buildArgs(t, "--yes")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.Contains(output.String(), "already exists") {
			t.Error("expected no prompt with --yes")
		}
		if !strings.Contains(output.String(), "Refilled Test Mix") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("--json prints a report", func(t *testing.T) {
		mock := newBuildMock()
		runner, output := newTestRunner(testConfig(), mock, "")

		if err := runner.app().Run(ctx, buildArgs(t, "--json", "--top", "2")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var report buildReport
		if err := json.Unmarshal(output.Bytes(), &report); err != nil {
			t.Fatalf("expected JSON output, got %q: %v", output.String(), err)
		}
		if report.State != "created" || len(report.Tracks) != 4 || report.RunID == "" {
			t.Errorf("unexpected report %+v", report)
		}
		if report.Tracks[0].ID != "daft-1" || report.Tracks[2].ID != "radio-1" {
			t.Errorf("unexpected track order %+v", report.Tracks)
		}
	})

	t.Run("--dry-run changes nothing", func(t *testing.T) {
		mock := newBuildMock()
		runner, output := newTestRunner(testConfig(), mock, "")

		if err := runner.app().Run(ctx, buildArgs(t, "--dry-run")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if m := mock.Mutations(); len(m) != 0 {
			t.Errorf("expected no mutations, got %+v", m)
		}
		if !strings.Contains(output.String(), "Would create") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("--quiet hides progress", func(t *testing.T) {
		runner, output := newTestRunner(testConfig(), newBuildMock(), "")

		args := buildArgs(t)
		args = append([]string{"top5", "--quiet"}, args[1:]...)
		if err := runner.app().Run(ctx, args); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.Contains(output.String(), "resolve_artists") {
			t.Errorf("expected no progress lines, got %q", output.String())
		}
	})

	t.Run("market flag overrides config and is upper-cased", func(t *testing.T) {
		mock := newBuildMock()
		runner, output := newTestRunner(testConfig(), mock, "")

		if err := runner.app().Run(ctx, buildArgs(t, "--market", "us", "--json")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), `"state": "created"`) {
			t.Errorf("unexpected output %q", output.String())
		}
		for _, c := range mock.CallsFor(tu.OpTopTracks) {
			if c.Market != "US" {
				t.Errorf("expected market US, got %s", c.Market)
			}
		}
	})

	t.Run("invalid top is a configuration error", func(t *testing.T) {
		runner, _ := newTestRunner(testConfig(), newBuildMock(), "")
		if err := runner.app().Run(ctx, buildArgs(t, "--top", "11")); !errors.Is(err, shared.ErrConfig) {
			t.Errorf("expected ErrConfig, got %v", err)
		}
	})

	t.Run("missing credentials fail before any request", func(t *testing.T) {
		mock := newBuildMock()
		runner, _ := newTestRunner(shared.DefaultConfig(), mock, "")

		if err := runner.app().Run(ctx, buildArgs(t)); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
		if len(mock.Calls) != 0 {
			t.Errorf("expected no requests, got %v", mock.Ops())
		}
	})

	t.Run("missing token asks for auth", func(t *testing.T) {
		runner, _ := newTestRunner(testConfig(), nil, "")

		err := runner.app().Run(ctx, buildArgs(t))
		if !errors.Is(err, shared.ErrNotAuthenticated) || !strings.Contains(err.Error(), "top5 auth") {
			t.Errorf("expected ErrNotAuthenticated with hint, got %v", err)
		}
	})

	t.Run("expired token asks for auth", func(t *testing.T) {
		mock := newBuildMock()
		mock.Errs[tu.OpSearchArtists] = shared.ErrTokenExpired
		runner, _ := newTestRunner(testConfig(), mock, "")

		err := runner.app().Run(ctx, buildArgs(t))
		if !errors.Is(err, shared.ErrTokenExpired) || !strings.Contains(err.Error(), "top5 auth") {
			t.Errorf("expected ErrTokenExpired with hint, got %v", err)
		}
	})

	t.Run("missing artists file is an input error", func(t *testing.T) {
		runner, _ := newTestRunner(testConfig(), newBuildMock(), "")
		args := []string{"top5", "build", "--file", filepath.Join(t.TempDir(), "none.txt"), "--playlist", "Test Mix"}

		if err := runner.app().Run(ctx, args); !errors.Is(err, shared.ErrInput) {
			t.Errorf("expected ErrInput, got %v", err)
		}
	})

	t.Run("config file and environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		config := shared.DefaultConfig()
		config.Credentials.Spotify.ClientID = "file_id"
		config.Credentials.Spotify.ClientSecret = "file_secret"
		if err := shared.SaveConfig(path, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}
		t.Setenv(shared.EnvMarket, "FR")

		mock := newBuildMock()
		runner, _ := newTestRunner(nil, mock, "")
		if err := runner.app().Run(ctx, buildArgs(t, "--config", path, "--dry-run")); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, c := range mock.CallsFor(tu.OpSearchArtists) {
			if c.Market != "FR" {
				t.Errorf("expected env market FR, got %s", c.Market)
			}
		}
	})

	t.Run("--export writes the track list", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tracks.csv")
		runner, _ := newTestRunner(testConfig(), newBuildMock(), "")

		if err := runner.app().Run(ctx, buildArgs(t, "--top", "1", "--export", path)); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		lines := strings.Split(strings.TrimSpace(tu.MustReadFile(t, path)), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and 2 rows, got %d: %q", len(lines), lines)
		}
		if !strings.HasPrefix(lines[1], "1,Daft Punk,") || !strings.HasPrefix(lines[2], "2,Radiohead,") {
			t.Errorf("unexpected rows %q", lines[1:])
		}
	})

	t.Run("--export rejects unknown extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tracks.xml")
		runner, _ := newTestRunner(testConfig(), newBuildMock(), "")

		if err := runner.app().Run(ctx, buildArgs(t, "--export", path)); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

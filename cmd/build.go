package main

import (
	"context"
	"fmt"
	"io"

	"github.com/desertthunder/top5/internal/formatter"
	"github.com/desertthunder/top5/internal/models"
	"github.com/desertthunder/top5/internal/shared"
	"github.com/desertthunder/top5/internal/tasks"
	"github.com/desertthunder/top5/internal/ui"
	"github.com/urfave/cli/v3"
)

// buildReport is the JSON form of [tasks.BuildResult].
type buildReport struct {
	RunID      string            `json:"run_id"`
	DryRun     bool              `json:"dry_run"`
	State      string            `json:"state"`
	Playlist   *models.Playlist  `json:"playlist,omitempty"`
	Tracks     []models.TrackRef `json:"tracks"`
	Misses     []missReport      `json:"misses,omitempty"`
	Removed    int               `json:"removed"`
	AddBatches int               `json:"add_batches"`
	CoverError string            `json:"cover_error,omitempty"`
}

type missReport struct {
	Artist string `json:"artist"`
	Reason string `json:"reason"`
}

func newBuildReport(runID string, dryRun bool, result *tasks.BuildResult) buildReport {
	report := buildReport{
		RunID:      runID,
		DryRun:     dryRun,
		State:      result.State.String(),
		Playlist:   result.Playlist,
		Tracks:     result.Tracks,
		Removed:    result.Removed,
		AddBatches: result.AddBatches,
	}
	for _, m := range result.Misses {
		report.Misses = append(report.Misses, missReport{Artist: m.Query, Reason: m.Reason.Error()})
	}
	if result.CoverErr != nil {
		report.CoverError = result.CoverErr.Error()
	}
	return report
}

// buildOpts merges flags over the config and validates the result.
func buildOpts(cmd *cli.Command, config *shared.Config) (tasks.BuildOpts, error) {
	if market := cmd.String("market"); market != "" {
		config.Playlist.Market = market
	}
	if top := cmd.Int("top"); top != 0 {
		config.Playlist.TopTracks = int(top)
	}
	if err := config.Validate(); err != nil {
		return tasks.BuildOpts{}, err
	}

	return tasks.BuildOpts{
		ArtistsFile: cmd.String("file"),
		Playlist:    cmd.String("playlist"),
		Description: cmd.String("description"),
		CoverPath:   cmd.String("cover"),
		Market:      config.Playlist.Market,
		TopTracks:   config.Playlist.TopTracks,
		Public:      config.Playlist.Public,
		Strict:      cmd.Bool("strict"),
		DryRun:      cmd.Bool("dry-run"),
	}, nil
}

// Build resolves the artists in --file and writes their top tracks to --playlist.
func (r *Runner) Build(ctx context.Context, cmd *cli.Command) error {
	config, configPath, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	opts, err := buildOpts(cmd, config)
	if err != nil {
		return err
	}

	runID := shared.GenerateID()
	logger := shared.WithLogger(r.logger, "run", runID)
	logger.Info("building playlist", "playlist", opts.Playlist, "file", opts.ArtistsFile, "market", opts.Market, "dry_run", opts.DryRun)

	svc, err := r.connect(ctx, config, configPath)
	if err != nil {
		return explain(err)
	}

	out := &syncWriter{w: r.output}
	promptOut := io.Writer(out)
	if cmd.Bool("json") {
		promptOut = r.errOutput
	}
	var confirmer tasks.Confirmer = ui.NewPrompt(r.input, promptOut).Confirmer()
	if cmd.Bool("yes") {
		confirmer = tasks.AlwaysConfirm
	}

	var progress chan tasks.ProgressUpdate
	done := make(chan struct{})
	if r.quiet || cmd.Bool("json") {
		close(done)
	} else {
		progress = make(chan tasks.ProgressUpdate, 50)
		flush := make(chan chan struct{})
		printer := ui.NewProgressPrinter(out)
		go func() {
			printer.Follow(progress, flush)
			close(done)
		}()
		confirmer = ui.FlushBefore(confirmer, flush, done)
	}
	engine := tasks.NewPlaylistEngine(svc, svc, confirmer, logger)

	result, err := engine.Build(ctx, progress, opts)
	if progress != nil {
		close(progress)
	}
	<-done

	if err != nil {
		return explain(fmt.Errorf("build failed: %w", err))
	}

	if path := cmd.String("export"); path != "" {
		export := formatter.Export{Playlist: opts.Playlist, Description: opts.Description, Tracks: result.Tracks}
		if err := formatter.WriteExport(path, export); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		logger.Info("exported tracks", "path", path, "tracks", len(result.Tracks))
	}

	if cmd.Bool("json") {
		return r.writeJSON(newBuildReport(runID, opts.DryRun, result), true)
	}
	return r.writePlainln("%s", ui.Summary(result, opts.DryRun))
}

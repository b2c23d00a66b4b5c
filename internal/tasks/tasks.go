// package tasks implements the playlist build pipeline.
//
// The core abstraction is Builder, which loads artist names, resolves them, collects their top tracks and
// writes them to a created or cleared playlist. Operations emit progress updates via channels for
// non-blocking status reporting to the CLI layer.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/top5/internal/models"
	"github.com/desertthunder/top5/internal/services"
	"github.com/desertthunder/top5/internal/shared"
)

const (
	// SearchLimit is the number of candidates requested per artist search.
	SearchLimit = 10
	// DefaultTopTracks is the number of tracks kept per artist.
	DefaultTopTracks = 5
)

// BuildOpts holds the inputs of a single build.
type BuildOpts struct {
	ArtistsFile string // one artist name per line
	Playlist    string // exact target playlist name
	Description string
	CoverPath   string // optional JPEG
	Market      string // ISO 3166-1 alpha-2 country code
	TopTracks   int    // tracks kept per artist, [DefaultTopTracks] when zero
	Public      bool   // visibility of a created playlist
	Strict      bool   // abort on the first artist that yields no tracks
	DryRun      bool   // resolve and look up only, no playlist writes
}

// BuildResult contains all data from a build.
type BuildResult struct {
	Playlist   *models.Playlist
	State      ReconcileState
	Artists    []models.Artist
	Tracks     []models.TrackRef
	Misses     []models.Miss
	Removed    int
	AddBatches int
	CoverErr   error // set when the cover upload failed; tracks are already written
}

// Builder builds a playlist from a list of artists.
type Builder interface {
	Build(ctx context.Context, progress chan<- ProgressUpdate, opts BuildOpts) (*BuildResult, error)
}

// PlaylistEngine implements [Builder] against a remote catalog and library.
type PlaylistEngine struct {
	catalog   services.Catalog
	library   services.Library
	confirmer Confirmer
	logger    *log.Logger
}

// NewPlaylistEngine creates a new PlaylistEngine. A nil confirmer declines every overwrite, a nil logger discards output.
func NewPlaylistEngine(catalog services.Catalog, library services.Library, confirmer Confirmer, logger *log.Logger) *PlaylistEngine {
	if confirmer == nil {
		confirmer = ConfirmFunc(func(context.Context, models.Playlist) (bool, error) { return false, nil })
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &PlaylistEngine{catalog: catalog, library: library, confirmer: confirmer, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Build runs load, resolve, aggregate, reconcile and write in order.
//
// The returned result is non-nil whenever artists were loaded, including on [shared.ErrDeclined].
func (e *PlaylistEngine) Build(ctx context.Context, progress chan<- ProgressUpdate, opts BuildOpts) (*BuildResult, error) {
	if opts.Playlist == "" {
		return nil, fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}
	if opts.TopTracks <= 0 {
		opts.TopTracks = DefaultTopTracks
	}

	names, err := LoadArtists(opts.ArtistsFile)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("loaded artists", "file", opts.ArtistsFile, "count", len(names))
	e.sendProgress(progress, loadedArtistsUpdate(names))

	result := &BuildResult{State: Unresolved}

	artists, misses, err := e.Resolve(ctx, progress, names, opts)
	result.Artists, result.Misses = artists, misses
	if err != nil {
		return result, err
	}

	tracks, misses, err := e.Aggregate(ctx, progress, artists, opts)
	result.Tracks = tracks
	result.Misses = append(result.Misses, misses...)
	if err != nil {
		return result, err
	}

	if opts.DryRun {
		rec, err := e.Lookup(ctx, progress, opts.Playlist)
		if err != nil {
			return result, err
		}
		result.Playlist, result.State = rec.Playlist, rec.State
		return result, nil
	}

	rec, err := e.Reconcile(ctx, progress, opts)
	if rec != nil {
		result.Playlist, result.State, result.Removed = rec.Playlist, rec.State, rec.Removed
	}
	if err != nil {
		return result, err
	}

	result.AddBatches, err = e.WriteTracks(ctx, progress, result.Playlist.ID, tracks)
	if err != nil {
		return result, err
	}
	e.logger.Info("tracks added", "playlist", result.Playlist.Name, "tracks", len(tracks), "batches", result.AddBatches)

	if opts.CoverPath != "" {
		if err := e.UploadCover(ctx, progress, result.Playlist.ID, opts.CoverPath); err != nil {
			e.logger.Warn("cover not updated", "path", opts.CoverPath, "error", err)
			result.CoverErr = err
		}
	}

	return result, nil
}

// miss records err for query, or returns it when strict.
func (e *PlaylistEngine) miss(misses []models.Miss, query string, err error, strict bool) ([]models.Miss, error) {
	if strict {
		return misses, err
	}
	e.logger.Warn("skipping artist", "artist", query, "reason", err)
	return append(misses, models.Miss{Query: query, Reason: err}), nil
}

// Resolve maps each name to the first "artist:<name>" search result, in input order.
//
// Names without results become misses wrapping [shared.ErrNoMatch]; with opts.Strict the first miss is returned as
// the error instead. Request errors always abort.
func (e *PlaylistEngine) Resolve(ctx context.Context, progress chan<- ProgressUpdate, names []string, opts BuildOpts) ([]models.Artist, []models.Miss, error) {
	artists := make([]models.Artist, 0, len(names))
	var misses []models.Miss

	for i, name := range names {
		e.sendProgress(progress, resolveArtistUpdate(i+1, len(names), name))

		results, err := e.catalog.SearchArtists(ctx, "artist:"+name, opts.Market, SearchLimit)
		if err != nil {
			return artists, misses, fmt.Errorf("failed to search artist %q: %w", name, err)
		}

		if len(results) == 0 {
			if misses, err = e.miss(misses, name, fmt.Errorf("%w: no artist found for %q", shared.ErrNoMatch, name), opts.Strict); err != nil {
				return artists, misses, err
			}
			continue
		}

		artist := results[0]
		artist.Query = name
		e.logger.Debug("resolved artist", "query", name, "id", artist.ID, "name", artist.Name)
		artists = append(artists, artist)
	}
	return artists, misses, nil
}

// Aggregate concatenates at most opts.TopTracks top tracks per artist, in artist order and without deduplication.
//
// Artists without top tracks follow the same miss policy as [PlaylistEngine.Resolve].
func (e *PlaylistEngine) Aggregate(ctx context.Context, progress chan<- ProgressUpdate, artists []models.Artist, opts BuildOpts) ([]models.TrackRef, []models.Miss, error) {
	top := opts.TopTracks
	if top <= 0 {
		top = DefaultTopTracks
	}

	var tracks []models.TrackRef
	var misses []models.Miss

	for i, artist := range artists {
		e.sendProgress(progress, topTracksUpdate(i+1, len(artists), artist))

		refs, err := e.catalog.TopTracks(ctx, artist.ID, opts.Market)
		if err != nil {
			return tracks, misses, fmt.Errorf("failed to get top tracks for %q: %w", artist.Query, err)
		}

		if len(refs) == 0 {
			err := fmt.Errorf("%w: no top tracks for %q in %s", shared.ErrNoMatch, artist.Query, opts.Market)
			if misses, err = e.miss(misses, artist.Query, err, opts.Strict); err != nil {
				return tracks, misses, err
			}
			continue
		}

		if len(refs) > top {
			refs = refs[:top]
		}
		for _, ref := range refs {
			ref.Artist = artist.Query
			tracks = append(tracks, ref)
		}
	}
	return tracks, misses, nil
}

// IsMiss reports whether err marks an artist that could not be resolved or had no tracks.
func IsMiss(err error) bool {
	return errors.Is(err, shared.ErrNoMatch)
}

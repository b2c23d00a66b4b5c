package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/top5/internal/models"
	"github.com/desertthunder/top5/internal/services"
	"github.com/desertthunder/top5/internal/shared"
)

// ReconcileState is the state of the target playlist during a build.
//
//	Unresolved → {Found, NotFound}
//	Found → ConfirmedClear → Cleared
//	Found → Declined → Aborted
//	NotFound → Created
type ReconcileState int

const (
	Unresolved ReconcileState = iota
	Found
	NotFound
	ConfirmedClear
	Cleared
	Declined
	Aborted
	Created
)

func (s ReconcileState) String() string {
	switch s {
	case Unresolved:
		return "unresolved"
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case ConfirmedClear:
		return "confirmed_clear"
	case Cleared:
		return "cleared"
	case Declined:
		return "declined"
	case Aborted:
		return "aborted"
	case Created:
		return "created"
	default:
		return ""
	}
}

// Confirmer asks the operator whether an existing playlist may be emptied and refilled.
type Confirmer interface {
	Confirm(ctx context.Context, playlist models.Playlist) (bool, error)
}

// ConfirmFunc adapts a function to [Confirmer].
type ConfirmFunc func(ctx context.Context, playlist models.Playlist) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, playlist models.Playlist) (bool, error) {
	return f(ctx, playlist)
}

// AlwaysConfirm approves every overwrite.
var AlwaysConfirm = ConfirmFunc(func(context.Context, models.Playlist) (bool, error) { return true, nil })

// Reconciliation is the outcome of [PlaylistEngine.Reconcile].
type Reconciliation struct {
	Playlist      *models.Playlist
	State         ReconcileState
	Matches       int // playlists sharing the target name
	Removed       int
	RemoveBatches int
}

// collectPages fetches the first page, then the remaining ceil(total/size)-1 pages using the first page's total.
func collectPages[T any](ctx context.Context, fetch func(ctx context.Context, limit, offset int) ([]T, int, error), onPage func(page, pages int)) ([]T, error) {
	items, total, err := fetch(ctx, services.PageSize, 0)
	if err != nil {
		return nil, err
	}

	pages := shared.PageCount(total, services.PageSize)
	if onPage != nil {
		onPage(1, max(pages, 1))
	}
	all := make([]T, 0, max(total, len(items)))
	all = append(all, items...)

	for page := 1; page < pages; page++ {
		items, _, err := fetch(ctx, services.PageSize, page*services.PageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if onPage != nil {
			onPage(page+1, pages)
		}
	}
	return all, nil
}

// CollectPlaylists lists every playlist of the current user in listing order.
func CollectPlaylists(ctx context.Context, library services.Library, onPage func(page, pages int)) ([]models.Playlist, error) {
	return collectPages(ctx, func(ctx context.Context, limit, offset int) ([]models.Playlist, int, error) {
		page, err := library.UserPlaylists(ctx, limit, offset)
		if err != nil {
			return nil, 0, err
		}
		return page.Items, page.Total, nil
	}, onPage)
}

// CollectItems lists every item of a playlist in playlist order.
func CollectItems(ctx context.Context, library services.Library, playlistID string) ([]models.PlaylistItem, error) {
	return collectPages(ctx, func(ctx context.Context, limit, offset int) ([]models.PlaylistItem, int, error) {
		page, err := library.PlaylistItems(ctx, playlistID, limit, offset)
		if err != nil {
			return nil, 0, err
		}
		return page.Items, page.Total, nil
	}, nil)
}

// MatchPlaylist returns the first playlist named exactly name and the number of playlists sharing that name.
func MatchPlaylist(playlists []models.Playlist, name string) (*models.Playlist, int) {
	var first *models.Playlist
	count := 0
	for i := range playlists {
		if playlists[i].Name != name {
			continue
		}
		if first == nil {
			first = &playlists[i]
		}
		count++
	}
	return first, count
}

// Lookup finds the target playlist without mutating anything. The state is [Found] or [NotFound].
func (e *PlaylistEngine) Lookup(ctx context.Context, progress chan<- ProgressUpdate, name string) (*Reconciliation, error) {
	playlists, err := CollectPlaylists(ctx, e.library, func(page, pages int) {
		e.sendProgress(progress, listPlaylistsUpdate(page, pages))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}

	match, count := MatchPlaylist(playlists, name)
	if match == nil {
		e.logger.Debug("playlist not found", "name", name, "scanned", len(playlists))
		return &Reconciliation{State: NotFound}, nil
	}
	if count > 1 {
		e.logger.Warn("several playlists share the name, using the first", "name", name, "count", count, "id", match.ID)
	}

	e.sendProgress(progress, foundPlaylistUpdate(match))
	return &Reconciliation{Playlist: match, State: Found, Matches: count}, nil
}

// Reconcile produces an empty or freshly created playlist named opts.Playlist.
//
// An existing playlist is only touched after the operator confirms; declining returns [shared.ErrDeclined]
// with State [Aborted] and no remote writes. Clearing and the later refill are separate requests, so a
// failure in between leaves the playlist empty.
func (e *PlaylistEngine) Reconcile(ctx context.Context, progress chan<- ProgressUpdate, opts BuildOpts) (*Reconciliation, error) {
	rec, err := e.Lookup(ctx, progress, opts.Playlist)
	if err != nil {
		return nil, err
	}

	if rec.State == NotFound {
		return e.create(ctx, progress, rec, opts)
	}

	ok, err := e.confirmer.Confirm(ctx, *rec.Playlist)
	if err != nil {
		return rec, fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		e.logger.Info("overwrite declined", "playlist", rec.Playlist.Name, "state", Declined)
		rec.State = Aborted
		return rec, fmt.Errorf("%w: playlist %q left unchanged", shared.ErrDeclined, rec.Playlist.Name)
	}
	rec.State = ConfirmedClear

	return e.clear(ctx, progress, rec, opts.Description)
}

func (e *PlaylistEngine) create(ctx context.Context, progress chan<- ProgressUpdate, rec *Reconciliation, opts BuildOpts) (*Reconciliation, error) {
	user, err := e.library.CurrentUser(ctx)
	if err != nil {
		return rec, fmt.Errorf("failed to get current user: %w", err)
	}

	pl, err := e.library.CreatePlaylist(ctx, user.ID, opts.Playlist, opts.Description, opts.Public)
	if err != nil {
		return rec, fmt.Errorf("failed to create playlist: %w", err)
	}

	e.logger.Info("playlist created", "name", pl.Name, "id", pl.ID)
	e.sendProgress(progress, createPlaylistUpdate(pl))
	rec.Playlist = pl
	rec.State = Created
	return rec, nil
}

func (e *PlaylistEngine) clear(ctx context.Context, progress chan<- ProgressUpdate, rec *Reconciliation, description string) (*Reconciliation, error) {
	pl, err := e.library.Playlist(ctx, rec.Playlist.ID)
	if err != nil {
		return rec, fmt.Errorf("failed to get playlist: %w", err)
	}
	rec.Playlist = pl

	if err := e.library.ChangeDescription(ctx, pl.ID, description); err != nil {
		return rec, fmt.Errorf("failed to update description: %w", err)
	}
	pl.Description = description

	items, err := CollectItems(ctx, e.library, pl.ID)
	if err != nil {
		return rec, fmt.Errorf("failed to list playlist items: %w", err)
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.TrackID == "" {
			e.logger.Debug("skipping item without track id", "uri", item.URI)
			continue
		}
		ids = append(ids, item.TrackID)
	}

	batches := shared.Chunk(ids, services.MaxItemsPerRequest)
	for i, batch := range batches {
		if err := e.library.RemoveItems(ctx, pl.ID, batch); err != nil {
			return rec, fmt.Errorf("failed to remove items (batch %d/%d): %w", i+1, len(batches), err)
		}
		rec.Removed += len(batch)
		rec.RemoveBatches++
		e.sendProgress(progress, clearPlaylistUpdate(i+1, len(batches), len(batch)))
	}

	e.logger.Info("playlist cleared", "name", pl.Name, "removed", rec.Removed, "batches", rec.RemoveBatches)
	rec.State = Cleared
	return rec, nil
}

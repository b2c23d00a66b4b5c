package tasks

import (
	"fmt"

	"github.com/desertthunder/top5/internal/models"
)

// ProgressUpdate represents a progress event during a build.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	PhaseLoadArtists Phase = iota
	PhaseResolveArtists
	PhaseFetchTopTracks
	PhaseFindPlaylist
	PhaseClearPlaylist
	PhaseCreatePlaylist
	PhaseAddTracks
	PhaseUploadCover
)

func (p Phase) String() string {
	switch p {
	case PhaseLoadArtists:
		return "load_artists"
	case PhaseResolveArtists:
		return "resolve_artists"
	case PhaseFetchTopTracks:
		return "fetch_top_tracks"
	case PhaseFindPlaylist:
		return "find_playlist"
	case PhaseClearPlaylist:
		return "clear_playlist"
	case PhaseCreatePlaylist:
		return "create_playlist"
	case PhaseAddTracks:
		return "add_tracks"
	case PhaseUploadCover:
		return "upload_cover"
	default:
		return ""
	}
}

func loadedArtistsUpdate(names []string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseLoadArtists,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loaded %d artists", len(names)),
		Data:    names,
	}
}

func resolveArtistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseResolveArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Getting artist ID: %s", step, total, name),
	}
}

func topTracksUpdate(step, total int, artist models.Artist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseFetchTopTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Getting top tracks: %s", step, total, artist.Name),
	}
}

func listPlaylistsUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseFindPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Listing playlists (page %d/%d)...", step, total),
	}
}

func foundPlaylistUpdate(pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseFindPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found playlist: %s (ID: %s)", pl.Name, pl.ID),
		Data:    pl,
	}
}

func clearPlaylistUpdate(step, total, removed int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseClearPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Removed %d items", step, total, removed),
	}
}

func createPlaylistUpdate(pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseCreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Playlist created: %s (ID: %s)", pl.Name, pl.ID),
		Data:    pl,
	}
}

func addTracksUpdate(step, total, added int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseAddTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Added %d tracks", step, total, added),
	}
}

func uploadCoverUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PhaseUploadCover,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Uploading cover %s...", path),
	}
}

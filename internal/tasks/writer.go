package tasks

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/top5/internal/models"
	"github.com/desertthunder/top5/internal/services"
	"github.com/desertthunder/top5/internal/shared"
)

// WriteTracks appends tracks to playlistID in order, one request per batch of at most
// [services.MaxItemsPerRequest]. It returns the number of batches sent.
func (e *PlaylistEngine) WriteTracks(ctx context.Context, progress chan<- ProgressUpdate, playlistID string, tracks []models.TrackRef) (int, error) {
	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}

	batches := shared.Chunk(ids, services.MaxItemsPerRequest)
	for i, batch := range batches {
		if err := e.library.AddItems(ctx, playlistID, batch); err != nil {
			return i, fmt.Errorf("failed to add tracks (batch %d/%d): %w", i+1, len(batches), err)
		}
		e.sendProgress(progress, addTracksUpdate(i+1, len(batches), len(batch)))
	}
	return len(batches), nil
}

// UploadCover reads a JPEG from path and sets it as the playlist cover.
//
// Files above [services.MaxCoverBytes] are rejected without a request.
func (e *PlaylistEngine) UploadCover(ctx context.Context, progress chan<- ProgressUpdate, playlistID, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: cover: %w", shared.ErrInput, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: cover %s is empty", shared.ErrInput, path)
	}
	if len(data) > services.MaxCoverBytes {
		return fmt.Errorf("%w: cover %s is %d bytes, limit is %d", shared.ErrInput, path, len(data), services.MaxCoverBytes)
	}

	e.sendProgress(progress, uploadCoverUpdate(path))
	if err := e.library.UploadCover(ctx, playlistID, data); err != nil {
		return fmt.Errorf("failed to upload cover: %w", err)
	}
	return nil
}

// package services defines interfaces for interacting with the Spotify Web API
package services

import (
	"context"

	"github.com/desertthunder/top5/internal/models"
	"golang.org/x/oauth2"
)

// Catalog is the read-only part of the remote service used to resolve artists and their tracks.
type Catalog interface {
	// SearchArtists runs an artist-type search for query in market and returns up to limit results in relevance order.
	SearchArtists(ctx context.Context, query, market string, limit int) ([]models.Artist, error)

	// TopTracks returns the artist's top tracks in market, in the order the remote ranks them.
	TopTracks(ctx context.Context, artistID, market string) ([]models.TrackRef, error)
}

// Library is the part of the remote service that reads and mutates the current user's playlists.
type Library interface {
	// CurrentUser returns the authenticated account.
	CurrentUser(ctx context.Context) (*models.User, error)

	// UserPlaylists returns one offset/limit page of the playlists owned by or visible to the current user.
	UserPlaylists(ctx context.Context, limit, offset int) (*models.PlaylistPage, error)

	// Playlist retrieves a playlist by ID.
	Playlist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// PlaylistItems returns one offset/limit page of a playlist's items.
	PlaylistItems(ctx context.Context, playlistID string, limit, offset int) (*models.PlaylistItemPage, error)

	// CreatePlaylist creates a playlist owned by userID.
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.Playlist, error)

	// ChangeDescription replaces a playlist's description.
	ChangeDescription(ctx context.Context, playlistID, description string) error

	// RemoveItems removes all occurrences of the given tracks. At most [MaxItemsPerRequest] per call.
	RemoveItems(ctx context.Context, playlistID string, trackIDs []string) error

	// AddItems appends tracks in order. At most [MaxItemsPerRequest] per call.
	AddItems(ctx context.Context, playlistID string, trackIDs []string) error

	// UploadCover replaces the playlist cover with a JPEG image given as raw bytes.
	UploadCover(ctx context.Context, playlistID string, jpeg []byte) error
}

// Service combines [Catalog] and [Library] for a single provider.
type Service interface {
	Catalog
	Library

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService extends [Service] for providers authorized through the OAuth2 authorization code flow.
type OAuthService interface {
	Service

	// GetAuthURL returns the URL the operator visits to grant access.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the OAuth2 configuration used for code exchange.
	GetOAuthConfig() *oauth2.Config

	// OAuthenticate configures the client with token.
	OAuthenticate(ctx context.Context, token *oauth2.Token) error
}

const (
	// PageSize is the limit used for every paginated listing.
	PageSize = 50
	// MaxItemsPerRequest is the remote limit on items per add or remove request.
	MaxItemsPerRequest = 100
	// MaxCoverBytes is the remote limit on the size of a cover image.
	MaxCoverBytes = 256 * 1024
)

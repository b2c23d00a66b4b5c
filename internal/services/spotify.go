// Spotify Web API implementation of [Service] backed by [spotify.Client]
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/top5/internal/models"
	"github.com/desertthunder/top5/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// Scopes are the permissions requested during authorization.
var Scopes = []string{
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopeImageUpload,
}

// SpotifyService implements the Service interface for Spotify API interactions.
// Uses [oauth2] for authentication and [spotify.Client] for requests.
type SpotifyService struct {
	config         *oauth2.Config
	client         *spotify.Client
	baseURL        string
	rps            float64
	onTokenRefresh func(*oauth2.Token)
}

// SpotifyOption configures a [SpotifyService].
type SpotifyOption func(*SpotifyService)

// WithBaseURL points the API client at a different host. The URL must end with a slash.
func WithBaseURL(url string) SpotifyOption {
	return func(s *SpotifyService) { s.baseURL = url }
}

// WithRequestsPerSecond paces requests client-side. Zero disables pacing.
func WithRequestsPerSecond(rps float64) SpotifyOption {
	return func(s *SpotifyService) { s.rps = rps }
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string, opts ...SpotifyOption) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id in credentials", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret in credentials", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = shared.DefaultConfig().Credentials.Spotify.RedirectURI
	}

	s := &SpotifyService{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyauth.AuthURL,
				TokenURL: spotifyauth.TokenURL,
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig returns the OAuth2 configuration.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// SetTokenRefreshCallback registers fn to receive every token the client obtains, including refreshes.
//
// Must be called before [SpotifyService.OAuthenticate].
func (s *SpotifyService) SetTokenRefreshCallback(fn func(*oauth2.Token)) {
	s.onTokenRefresh = fn
}

// Authenticate configures the client from credentials. Expects either an "access_token" or "auth_code".
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		return s.OAuthenticate(ctx, &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: credentials["refresh_token"],
			TokenType:    "Bearer",
		})
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		return s.OAuthenticate(ctx, token)
	}

	return fmt.Errorf("%w: missing access_token or auth_code in credentials", shared.ErrMissingCredentials)
}

// OAuthenticate builds the API client around token. Expired tokens with a refresh token are refreshed on first use.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("%w: no token", shared.ErrNotAuthenticated)
	}

	source := &refreshableTokenSource{
		source:   s.config.TokenSource(ctx, token),
		callback: s.onTokenRefresh,
	}
	httpClient := oauth2.NewClient(ctx, source)
	httpClient.Transport = NewRateLimitedTransport(httpClient.Transport, s.rps)

	var opts []spotify.ClientOption
	if s.baseURL != "" {
		opts = append(opts, spotify.WithBaseURL(s.baseURL))
	}
	s.client = spotify.New(httpClient, opts...)
	return nil
}

func (s *SpotifyService) api() (*spotify.Client, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}
	return s.client, nil
}

// wrapError classifies errors returned by the client.
func wrapError(op string, err error) error {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s: %v", shared.ErrTokenExpired, op, err)
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%w: %s: %v", shared.ErrTokenExpired, op, err)
	}

	return fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, op, err)
}

// SearchArtists runs an artist search.
func (s *SpotifyService) SearchArtists(ctx context.Context, query, market string, limit int) ([]models.Artist, error) {
	client, err := s.api()
	if err != nil {
		return nil, err
	}

	result, err := client.Search(ctx, query, spotify.SearchTypeArtist, spotify.Market(market), spotify.Limit(limit))
	if err != nil {
		return nil, wrapError("search artists", err)
	}
	if result.Artists == nil {
		return nil, nil
	}

	artists := make([]models.Artist, 0, len(result.Artists.Artists))
	for _, a := range result.Artists.Artists {
		artists = append(artists, models.Artist{ID: a.ID.String(), Name: a.Name})
	}
	return artists, nil
}

// TopTracks retrieves an artist's top tracks for market.
func (s *SpotifyService) TopTracks(ctx context.Context, artistID, market string) ([]models.TrackRef, error) {
	client, err := s.api()
	if err != nil {
		return nil, err
	}

	tracks, err := client.GetArtistsTopTracks(ctx, spotify.ID(artistID), market)
	if err != nil {
		return nil, wrapError("top tracks", err)
	}

	refs := make([]models.TrackRef, 0, len(tracks))
	for _, t := range tracks {
		refs = append(refs, models.TrackRef{ID: t.ID.String(), URI: string(t.URI), Name: t.Name})
	}
	return refs, nil
}

// CurrentUser retrieves the current authenticated user's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*models.User, error) {
	client, err := s.api()
	if err != nil {
		return nil, err
	}

	user, err := client.CurrentUser(ctx)
	if err != nil {
		return nil, wrapError("current user", err)
	}
	return &models.User{ID: user.ID, DisplayName: user.DisplayName}, nil
}

// UserPlaylists retrieves one page of the current user's playlists.
func (s *SpotifyService) UserPlaylists(ctx context.Context, limit, offset int) (*models.PlaylistPage, error) {
	client, err := s.api()
	if err != nil {
		return nil, err
	}

	page, err := client.CurrentUsersPlaylists(ctx, spotify.Limit(limit), spotify.Offset(offset))
	if err != nil {
		return nil, wrapError("list playlists", err)
	}

	result := &models.PlaylistPage{Total: int(page.Total), Items: make([]models.Playlist, 0, len(page.Playlists))}
	for _, p := range page.Playlists {
		result.Items = append(result.Items, simplePlaylist(p))
	}
	return result, nil
}

// Playlist retrieves a playlist by ID.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	client, err := s.api()
	if err != nil {
		return nil, err
	}

	full, err := client.GetPlaylist(ctx, spotify.ID(playlistID))
	if err != nil {
		return nil, wrapError("get playlist", err)
	}
	return fullPlaylist(full), nil
}

// PlaylistItems retrieves one page of a playlist's items.
func (s *SpotifyService) PlaylistItems(ctx context.Context, playlistID string, limit, offset int) (*models.PlaylistItemPage, error) {
	client, err := s.api()
	if err != nil {
		return nil, err
	}

	page, err := client.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(limit), spotify.Offset(offset))
	if err != nil {
		return nil, wrapError("list playlist items", err)
	}

	result := &models.PlaylistItemPage{Total: int(page.Total), Items: make([]models.PlaylistItem, 0, len(page.Items))}
	for _, item := range page.Items {
		var entry models.PlaylistItem
		if t := item.Track.Track; t != nil && !item.IsLocal {
			entry = models.PlaylistItem{TrackID: t.ID.String(), URI: string(t.URI)}
		}
		result.Items = append(result.Items, entry)
	}
	return result, nil
}

// CreatePlaylist creates a non-collaborative playlist for userID.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.Playlist, error) {
	client, err := s.api()
	if err != nil {
		return nil, err
	}

	full, err := client.CreatePlaylistForUser(ctx, userID, name, description, public, false)
	if err != nil {
		return nil, wrapError("create playlist", err)
	}
	return fullPlaylist(full), nil
}

// ChangeDescription updates a playlist's description.
func (s *SpotifyService) ChangeDescription(ctx context.Context, playlistID, description string) error {
	client, err := s.api()
	if err != nil {
		return err
	}

	if err := client.ChangePlaylistDescription(ctx, spotify.ID(playlistID), description); err != nil {
		return wrapError("change description", err)
	}
	return nil
}

// RemoveItems removes all occurrences of trackIDs from a playlist.
func (s *SpotifyService) RemoveItems(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) > MaxItemsPerRequest {
		return fmt.Errorf("%w: at most %d items per request, got %d", shared.ErrInvalidArgument, MaxItemsPerRequest, len(trackIDs))
	}
	client, err := s.api()
	if err != nil {
		return err
	}

	if _, err := client.RemoveTracksFromPlaylist(ctx, spotify.ID(playlistID), toIDs(trackIDs)...); err != nil {
		return wrapError("remove items", err)
	}
	return nil
}

// AddItems appends trackIDs to a playlist.
func (s *SpotifyService) AddItems(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) > MaxItemsPerRequest {
		return fmt.Errorf("%w: at most %d items per request, got %d", shared.ErrInvalidArgument, MaxItemsPerRequest, len(trackIDs))
	}
	client, err := s.api()
	if err != nil {
		return err
	}

	if _, err := client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), toIDs(trackIDs)...); err != nil {
		return wrapError("add items", err)
	}
	return nil
}

// UploadCover sends jpeg as the playlist cover. The client base64-encodes the body.
func (s *SpotifyService) UploadCover(ctx context.Context, playlistID string, jpeg []byte) error {
	client, err := s.api()
	if err != nil {
		return err
	}

	if err := client.SetPlaylistImage(ctx, spotify.ID(playlistID), bytes.NewReader(jpeg)); err != nil {
		return wrapError("upload cover", err)
	}
	return nil
}

func toIDs(ids []string) []spotify.ID {
	out := make([]spotify.ID, len(ids))
	for i, id := range ids {
		out[i] = spotify.ID(id)
	}
	return out
}

func simplePlaylist(p spotify.SimplePlaylist) models.Playlist {
	return models.Playlist{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.Owner.ID,
		TrackCount:  int(p.Tracks.Total),
		Public:      p.IsPublic,
	}
}

func fullPlaylist(p *spotify.FullPlaylist) *models.Playlist {
	return &models.Playlist{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.Owner.ID,
		TrackCount:  int(p.Tracks.Total),
		Public:      p.IsPublic,
	}
}

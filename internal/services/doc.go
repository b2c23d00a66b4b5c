// Package services defines the [Catalog] and [Library] interfaces consumed by the playlist builder
// and implements them for Spotify.
//
// # Spotify Implementation
//
// [SpotifyService] wraps [spotify.Client] from github.com/zmb3/spotify/v2. Authorization uses the
// OAuth2 authorization code flow; the resulting [oauth2.Token] is turned into an HTTP client whose
// token source refreshes expired tokens and reports each new token through the callback set with
// [SpotifyService.SetTokenRefreshCallback], so the CLI can persist it.
//
// Requests are paced by [RateLimitedTransport]. Failed requests are never retried.
//
// # Limits
//
// Listings use offset/limit pages of [PageSize]. Add and remove calls accept at most
// [MaxItemsPerRequest] items; larger inputs are rejected so batching stays the caller's job.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : the API answered 401 or the token refresh failed
//   - [shared.ErrAPIRequest] : any other failed request
package services

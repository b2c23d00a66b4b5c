// Package models defines the transient entities of a playlist build.
//
// Values flow strictly forward through the pipeline:
//   - an input name is resolved to an [Artist]
//   - each [Artist] yields up to N [TrackRef] values
//   - a [Playlist] is found by name or created and then receives the tracks
//
// [PlaylistPage] and [PlaylistItemPage] mirror the offset/limit pages of the remote listing
// endpoints, carrying the reported total so callers can compute the page count up front.
// A [Miss] records an input name that produced no tracks, either because the search came back
// empty or because the artist has no top tracks in the configured market.
package models

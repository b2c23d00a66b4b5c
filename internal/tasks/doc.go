// Package tasks turns a file of artist names into a Spotify playlist with real-time progress reporting.
//
// # Pipeline
//
// [PlaylistEngine.Build] runs five steps strictly in sequence:
//
//  1. [LoadArtists] : one name per line, blank lines skipped
//  2. [PlaylistEngine.Resolve] : first "artist:<name>" search result per name
//  3. [PlaylistEngine.Aggregate] : top tracks per artist, concatenated in input order
//  4. [PlaylistEngine.Reconcile] : find the playlist by exact name, then create it or (after confirmation)
//     update its description and remove every item
//  5. [PlaylistEngine.WriteTracks] and [PlaylistEngine.UploadCover] : add tracks in batches, then the optional cover
//
// # Misses
//
// Names without a search result and artists without top tracks are reported in [BuildResult.Misses] and skipped.
// With [BuildOpts.Strict] the first miss aborts the build before any playlist is touched.
//
// # Pagination and batching
//
// Listings fetch ceil(total/50) pages where total is read from the first page. Adds and removes are sent
// in batches of at most 100 items, preserving order.
//
// # Progress Reporting
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data.
// Updates use select with default to prevent blocking.
//
// # Consistency
//
// Clearing and refilling an existing playlist are separate requests. A failure after the clear leaves the
// playlist empty until the next successful run.
package tasks

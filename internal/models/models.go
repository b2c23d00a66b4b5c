// package models defines the data model for the playlist builder
package models

// Artist is a catalog artist resolved from an input name.
type Artist struct {
	Query string `json:"query"` // Name as read from the input file
	ID    string `json:"id"`    // Catalog identifier of the first search result
	Name  string `json:"name"`  // Catalog name of the first search result
}

// TrackRef is an opaque reference to a catalog track.
type TrackRef struct {
	ID     string `json:"id"`
	URI    string `json:"uri"`
	Name   string `json:"name"`
	Artist string `json:"artist"` // Query of the artist the track was collected for
}

// Playlist represents a playlist in the current user's library.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"owner_id"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
}

// PlaylistPage is one offset/limit page of the current user's playlists.
type PlaylistPage struct {
	Items []Playlist `json:"items"`
	Total int        `json:"total"`
}

// PlaylistItem is one entry of a playlist. TrackID is empty for local files and episodes.
type PlaylistItem struct {
	TrackID string `json:"track_id,omitempty"`
	URI     string `json:"uri"`
}

// PlaylistItemPage is one offset/limit page of a playlist's items.
type PlaylistItemPage struct {
	Items []PlaylistItem `json:"items"`
	Total int            `json:"total"`
}

// User is the authenticated account.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Miss records an artist that contributed no tracks.
type Miss struct {
	Query  string
	Reason error
}

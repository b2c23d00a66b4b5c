// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/desertthunder/top5/internal/models"
)

// Operations recorded by [MockService].
const (
	OpSearchArtists     = "search_artists"
	OpTopTracks         = "top_tracks"
	OpCurrentUser       = "current_user"
	OpUserPlaylists     = "user_playlists"
	OpPlaylist          = "playlist"
	OpPlaylistItems     = "playlist_items"
	OpCreatePlaylist    = "create_playlist"
	OpChangeDescription = "change_description"
	OpRemoveItems       = "remove_items"
	OpAddItems          = "add_items"
	OpUploadCover       = "upload_cover"
)

var mutatingOps = map[string]bool{
	OpCreatePlaylist:    true,
	OpChangeDescription: true,
	OpRemoveItems:       true,
	OpAddItems:          true,
	OpUploadCover:       true,
}

// Call is one recorded request against [MockService].
type Call struct {
	Op         string
	PlaylistID string
	Query      string   // search query, artist ID or description
	Market     string   // market for search and top tracks
	Limit      int      // page size for listings
	Offset     int      // page offset for listings
	IDs        []string // track IDs for add and remove
	Body       []byte   // cover bytes
}

// MockService is an in-memory test double for [services.Service].
//
// It keeps playlists and their items so that mutations are observable by later listings.
type MockService struct {
	mu sync.Mutex

	User      models.User
	Artists   map[string][]models.Artist   // search query -> results
	Tracks    map[string][]models.TrackRef // artist ID -> top tracks
	Playlists []models.Playlist
	Items     map[string][]models.PlaylistItem // playlist ID -> items
	Covers    map[string][]byte
	Errs      map[string]error // operation -> error returned on every call
	Calls     []Call

	nextID int
}

// NewMockService returns an empty library for user "tester".
func NewMockService() *MockService {
	return &MockService{
		User:    models.User{ID: "tester", DisplayName: "Tester"},
		Artists: map[string][]models.Artist{},
		Tracks:  map[string][]models.TrackRef{},
		Items:   map[string][]models.PlaylistItem{},
		Covers:  map[string][]byte{},
		Errs:    map[string]error{},
	}
}

// AddArtist registers a search result for "artist:<name>" with n top tracks named "<id>-<i>".
func (m *MockService) AddArtist(name, id string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Artists["artist:"+name] = append(m.Artists["artist:"+name], models.Artist{ID: id, Name: name})
	tracks := make([]models.TrackRef, n)
	for i := range tracks {
		tid := fmt.Sprintf("%s-%d", id, i+1)
		tracks[i] = models.TrackRef{ID: tid, URI: "spotify:track:" + tid, Name: tid}
	}
	m.Tracks[id] = tracks
}

// AddPlaylist stores a playlist holding n items with IDs "<id>-old-<i>".
func (m *MockService) AddPlaylist(id, name string, n int) models.Playlist {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]models.PlaylistItem, n)
	for i := range items {
		tid := fmt.Sprintf("%s-old-%d", id, i+1)
		items[i] = models.PlaylistItem{TrackID: tid, URI: "spotify:track:" + tid}
	}
	p := models.Playlist{ID: id, Name: name, OwnerID: m.User.ID, TrackCount: n, Public: true}
	m.Playlists = append(m.Playlists, p)
	m.Items[id] = items
	return p
}

// TrackIDs returns the item IDs currently stored for playlistID.
func (m *MockService) TrackIDs(playlistID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.Items[playlistID]))
	for _, item := range m.Items[playlistID] {
		ids = append(ids, item.TrackID)
	}
	return ids
}

// CallsFor returns the recorded calls of op in order.
func (m *MockService) CallsFor(op string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()

	var calls []Call
	for _, c := range m.Calls {
		if c.Op == op {
			calls = append(calls, c)
		}
	}
	return calls
}

// Mutations returns every recorded call that changes remote state.
func (m *MockService) Mutations() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()

	var calls []Call
	for _, c := range m.Calls {
		if mutatingOps[c.Op] {
			calls = append(calls, c)
		}
	}
	return calls
}

// Ops returns the recorded operation names in order.
func (m *MockService) Ops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ops := make([]string, len(m.Calls))
	for i, c := range m.Calls {
		ops[i] = c.Op
	}
	return ops
}

func (m *MockService) record(c Call) error {
	m.Calls = append(m.Calls, c)
	return m.Errs[c.Op]
}

func (m *MockService) Name() string { return "mock" }

func (m *MockService) SearchArtists(ctx context.Context, query, market string, limit int) ([]models.Artist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(Call{Op: OpSearchArtists, Query: query, Market: market, Limit: limit}); err != nil {
		return nil, err
	}
	results := m.Artists[query]
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *MockService) TopTracks(ctx context.Context, artistID, market string) ([]models.TrackRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(Call{Op: OpTopTracks, Query: artistID, Market: market}); err != nil {
		return nil, err
	}
	return append([]models.TrackRef(nil), m.Tracks[artistID]...), nil
}

func (m *MockService) CurrentUser(ctx context.Context) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(Call{Op: OpCurrentUser}); err != nil {
		return nil, err
	}
	user := m.User
	return &user, nil
}

func (m *MockService) UserPlaylists(ctx context.Context, limit, offset int) (*models.PlaylistPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(Call{Op: OpUserPlaylists, Limit: limit, Offset: offset}); err != nil {
		return nil, err
	}
	return &models.PlaylistPage{Items: page(m.Playlists, limit, offset), Total: len(m.Playlists)}, nil
}

func (m *MockService) Playlist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(Call{Op: OpPlaylist, PlaylistID: playlistID}); err != nil {
		return nil, err
	}
	for _, p := range m.Playlists {
		if p.ID == playlistID {
			p.TrackCount = len(m.Items[p.ID])
			return &p, nil
		}
	}
	return nil, fmt.Errorf("playlist %s not found", playlistID)
}

func (m *MockService) PlaylistItems(ctx context.Context, playlistID string, limit, offset int) (*models.PlaylistItemPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(Call{Op: OpPlaylistItems, PlaylistID: playlistID, Limit: limit, Offset: offset}); err != nil {
		return nil, err
	}
	items := m.Items[playlistID]
	return &models.PlaylistItemPage{Items: page(items, limit, offset), Total: len(items)}, nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*models.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(Call{Op: OpCreatePlaylist, Query: name}); err != nil {
		return nil, err
	}
	m.nextID++
	p := models.Playlist{
		ID:          fmt.Sprintf("created-%d", m.nextID),
		Name:        name,
		Description: description,
		OwnerID:     userID,
		Public:      public,
	}
	m.Playlists = append(m.Playlists, p)
	m.Items[p.ID] = nil
	return &p, nil
}

func (m *MockService) ChangeDescription(ctx context.Context, playlistID, description string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(Call{Op: OpChangeDescription, PlaylistID: playlistID, Query: description}); err != nil {
		return err
	}
	for i := range m.Playlists {
		if m.Playlists[i].ID == playlistID {
			m.Playlists[i].Description = description
		}
	}
	return nil
}

func (m *MockService) RemoveItems(ctx context.Context, playlistID string, trackIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(Call{Op: OpRemoveItems, PlaylistID: playlistID, IDs: append([]string(nil), trackIDs...)}); err != nil {
		return err
	}
	remove := make(map[string]bool, len(trackIDs))
	for _, id := range trackIDs {
		remove[id] = true
	}
	kept := m.Items[playlistID][:0]
	for _, item := range m.Items[playlistID] {
		if !remove[item.TrackID] {
			kept = append(kept, item)
		}
	}
	m.Items[playlistID] = kept
	return nil
}

func (m *MockService) AddItems(ctx context.Context, playlistID string, trackIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(Call{Op: OpAddItems, PlaylistID: playlistID, IDs: append([]string(nil), trackIDs...)}); err != nil {
		return err
	}
	for _, id := range trackIDs {
		m.Items[playlistID] = append(m.Items[playlistID], models.PlaylistItem{TrackID: id, URI: "spotify:track:" + id})
	}
	return nil
}

func (m *MockService) UploadCover(ctx context.Context, playlistID string, jpeg []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record(Call{Op: OpUploadCover, PlaylistID: playlistID, Body: append([]byte(nil), jpeg...)}); err != nil {
		return err
	}
	m.Covers[playlistID] = jpeg
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := min(offset+limit, len(items))
	return append([]T(nil), items[offset:end]...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// WriteFile writes content to name inside a fresh temp dir and returns its path.
func WriteFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
	return path
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

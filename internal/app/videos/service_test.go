package videos

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"tubeshelf/internal/apperr"
	"tubeshelf/internal/extract"
	"tubeshelf/internal/models"
	"tubeshelf/internal/store"
)

type memoryStore struct {
	users  map[uuid.UUID]bool
	videos map[string]*models.Video
	// skipPrecheck hides existing videos from VideoExists to mimic a
	// concurrent insert winning the race.
	skipPrecheck bool
}

func newMemoryStore(owners ...uuid.UUID) *memoryStore {
	m := &memoryStore{users: map[uuid.UUID]bool{}, videos: map[string]*models.Video{}}
	for _, id := range owners {
		m.users[id] = true
	}
	return m
}

func (m *memoryStore) UserExists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.users[id], nil
}

func (m *memoryStore) VideoExists(_ context.Context, _ string, hostID string) (bool, error) {
	if m.skipPrecheck {
		return false, nil
	}
	_, ok := m.videos[hostID]
	return ok, nil
}

func (m *memoryStore) CreateVideo(_ context.Context, v *models.Video) (*models.Video, error) {
	if _, ok := m.videos[v.HostID]; ok {
		return nil, store.ErrVideoExists
	}
	created := *v
	created.DBID = uuid.New()
	m.videos[v.HostID] = &created
	return &created, nil
}

func (m *memoryStore) InsertVideoIfAbsent(_ context.Context, v *models.Video) (*models.Video, bool, error) {
	if existing, ok := m.videos[v.HostID]; ok {
		return existing, false, nil
	}
	created := *v
	created.DBID = uuid.New()
	m.videos[v.HostID] = &created
	return &created, true, nil
}

func (m *memoryStore) VideoByHostID(_ context.Context, hostID string) (*models.Video, error) {
	v, ok := m.videos[hostID]
	if !ok {
		return nil, fmt.Errorf("select video: %w", store.ErrNotFound)
	}
	copied := *v
	return &copied, nil
}

func (m *memoryStore) UpdateVideo(_ context.Context, v *models.Video) error {
	if _, ok := m.videos[v.HostID]; !ok {
		return store.ErrNotFound
	}
	copied := *v
	m.videos[v.HostID] = &copied
	return nil
}

func (m *memoryStore) DeleteVideo(_ context.Context, hostID string) error {
	if _, ok := m.videos[hostID]; !ok {
		return store.ErrNotFound
	}
	delete(m.videos, hostID)
	return nil
}

func (m *memoryStore) ListVideos(context.Context) ([]*models.Video, error) {
	out := make([]*models.Video, 0, len(m.videos))
	for _, v := range m.videos {
		out = append(out, v)
	}
	return out, nil
}

type stubCache struct {
	entries     map[string]*models.Video
	invalidated []string
}

func (c *stubCache) Get(_ context.Context, hostID string) (*models.Video, bool, error) {
	v, ok := c.entries[hostID]
	return v, ok, nil
}

func (c *stubCache) Set(_ context.Context, v *models.Video) error {
	c.entries[v.HostID] = v
	return nil
}

func (c *stubCache) Invalidate(_ context.Context, hostID string) error {
	c.invalidated = append(c.invalidated, hostID)
	delete(c.entries, hostID)
	return nil
}

func TestValidateVideo(t *testing.T) {
	owner := uuid.New()
	tests := []struct {
		name      string
		in        VideoInput
		wantField string
		wantID    string
	}{
		{
			name:   "valid",
			in:     VideoInput{URL: " https://youtu.be/abc123 ", Title: " Talk ", UserID: owner},
			wantID: "abc123",
		},
		{
			name:      "unrecognised url",
			in:        VideoInput{URL: "https://vimeo.com/1", Title: "Talk", UserID: owner},
			wantField: "url",
		},
		{
			name:      "missing title",
			in:        VideoInput{URL: "https://youtu.be/abc123", UserID: owner},
			wantField: "title",
		},
		{
			name:      "missing owner",
			in:        VideoInput{URL: "https://youtu.be/abc123", Title: "Talk"},
			wantField: "user_id",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := ValidateVideo("videos.Add", tc.in, extract.YouTube{})
			if tc.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if v.HostID != tc.wantID || v.Title != "Talk" || v.HostService != "youtube" {
					t.Fatalf("unexpected video %+v", v)
				}
				return
			}
			if !apperr.FieldsOf(err).Has(tc.wantField) {
				t.Fatalf("expected error on %s, got %v", tc.wantField, err)
			}
		})
	}
}

func TestAddIsConservative(t *testing.T) {
	owner := uuid.New()
	st := newMemoryStore(owner)
	svc := New(st, extract.YouTube{})
	in := VideoInput{URL: "https://www.youtube.com/watch?v=abc123", Title: "Talk", UserID: owner}

	if _, err := svc.Add(context.Background(), in); err != nil {
		t.Fatalf("Add: %v", err)
	}

	_, err := svc.Add(context.Background(), in)
	if apperr.KindOf(err) != apperr.Conflict || !errors.Is(err, store.ErrVideoExists) {
		t.Fatalf("expected conflict, got %v", err)
	}

	st.skipPrecheck = true
	_, err = svc.Add(context.Background(), in)
	if apperr.KindOf(err) != apperr.Conflict || !errors.Is(err, store.ErrVideoExists) {
		t.Fatalf("expected the insert race to report the same conflict, got %v", err)
	}
}

func TestAddUnknownOwner(t *testing.T) {
	svc := New(newMemoryStore(), extract.YouTube{})

	_, err := svc.Add(context.Background(), VideoInput{URL: "https://youtu.be/abc123", Title: "Talk", UserID: uuid.New()})
	if !apperr.FieldsOf(err).Has("user_id") {
		t.Fatalf("expected owner error, got %v", err)
	}
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	owner := uuid.New()
	st := newMemoryStore(owner)
	svc := New(st, extract.YouTube{})
	in := VideoInput{URL: "https://youtu.be/abc123", Title: "Talk", UserID: owner}

	first, created, err := svc.GetOrCreate(context.Background(), in)
	if err != nil || !created {
		t.Fatalf("first call: created=%v err=%v", created, err)
	}

	in.Title = "Renamed"
	second, created, err := svc.GetOrCreate(context.Background(), in)
	if err != nil || created {
		t.Fatalf("second call: created=%v err=%v", created, err)
	}
	if second.DBID != first.DBID || second.Title != "Talk" {
		t.Fatalf("expected the stored video back, got %+v", second)
	}
	if len(st.videos) != 1 {
		t.Fatalf("expected one stored video, got %d", len(st.videos))
	}
}

func TestEdit(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()
	st := newMemoryStore(owner, other)
	cache := &stubCache{entries: map[string]*models.Video{}}
	svc := New(st, extract.YouTube{}, WithCache(cache))

	if _, err := svc.Add(context.Background(), VideoInput{URL: "https://youtu.be/abc123", Title: "Talk", UserID: owner}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	tests := []struct {
		name     string
		hostID   string
		in       EditInput
		wantKind apperr.Kind
		wantOK   bool
	}{
		{
			name:     "different host id",
			hostID:   "abc123",
			in:       EditInput{URL: "https://youtu.be/zzz999", Title: "Talk", UserID: owner},
			wantKind: apperr.Invalid,
		},
		{
			name:     "not owner",
			hostID:   "abc123",
			in:       EditInput{URL: "https://youtu.be/abc123", Title: "Mine now", UserID: other},
			wantKind: apperr.Forbidden,
		},
		{
			name:     "missing video",
			hostID:   "nope11",
			in:       EditInput{URL: "https://youtu.be/nope11", Title: "Talk", UserID: owner},
			wantKind: apperr.NotFound,
		},
		{
			name:   "owner edits title and url",
			hostID: "abc123",
			in:     EditInput{URL: "https://www.youtube.com/embed/abc123", Title: "Better title", UserID: owner},
			wantOK: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := svc.Edit(context.Background(), tc.hostID, tc.in)
			if tc.wantOK {
				if err != nil {
					t.Fatalf("Edit: %v", err)
				}
				if v.Title != "Better title" || st.videos["abc123"].URL != "https://www.youtube.com/embed/abc123" {
					t.Fatalf("edit not stored: %+v", st.videos["abc123"])
				}
				if len(cache.invalidated) != 1 || cache.invalidated[0] != "abc123" {
					t.Fatalf("expected cache invalidation, got %v", cache.invalidated)
				}
				return
			}
			if got := apperr.KindOf(err); got != tc.wantKind {
				t.Fatalf("expected %s, got %s (%v)", tc.wantKind, got, err)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	owner := uuid.New()
	st := newMemoryStore(owner)
	svc := New(st, extract.YouTube{})

	if _, err := svc.Add(context.Background(), VideoInput{URL: "https://youtu.be/abc123", Title: "Talk", UserID: owner}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := svc.Delete(context.Background(), "abc123", uuid.New()); apperr.KindOf(err) != apperr.Forbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := svc.Delete(context.Background(), "abc123", owner); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(context.Background(), "abc123", owner); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetUsesCache(t *testing.T) {
	owner := uuid.New()
	st := newMemoryStore(owner)
	cache := &stubCache{entries: map[string]*models.Video{}}
	svc := New(st, extract.YouTube{}, WithCache(cache))

	if _, err := svc.Add(context.Background(), VideoInput{URL: "https://youtu.be/abc123", Title: "Talk", UserID: owner}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if _, err := svc.Get(context.Background(), "abc123"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, ok := cache.entries["abc123"]; !ok {
		t.Fatal("expected video to be cached after a miss")
	}

	delete(st.videos, "abc123")
	v, err := svc.Get(context.Background(), "abc123")
	if err != nil || v.HostID != "abc123" {
		t.Fatalf("expected cached video, got %v %v", v, err)
	}
}

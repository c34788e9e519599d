package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/icgdb/icgdb-server/internal/domain"
	"github.com/icgdb/icgdb-server/internal/store"
	"github.com/icgdb/icgdb-server/internal/store/sqlite"
	"github.com/icgdb/icgdb-server/internal/validation"
)

const (
	alice = "alice@example.com"
	bob   = "bob@example.com"
	root  = "root@example.com"
)

// recordingIndexer captures what services push to the search index.
type recordingIndexer struct {
	mu      sync.Mutex
	indexed map[string]*domain.Game
	deleted []string
}

func newRecordingIndexer() *recordingIndexer {
	return &recordingIndexer{indexed: make(map[string]*domain.Game)}
}

func (r *recordingIndexer) IndexGame(g *domain.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *g
	r.indexed[g.ID] = &copied
	return nil
}

func (r *recordingIndexer) IndexGames(games []*domain.Game) error {
	for _, g := range games {
		_ = r.IndexGame(g)
	}
	return nil
}

func (r *recordingIndexer) DeleteGame(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.indexed, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *recordingIndexer) get(id string) *domain.Game {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexed[id]
}

type fixture struct {
	store      store.Store
	indexer    *recordingIndexer
	users      *UserService
	categories *CategoryService
	games      *GameService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	v := validation.New()
	ix := newRecordingIndexer()

	f := &fixture{
		store:      s,
		indexer:    ix,
		users:      NewUserService(s, nil),
		categories: NewCategoryService(s, v, ix, nil),
		games:      NewGameService(s, v, GameServiceConfig{Indexer: ix}),
	}

	ctx := context.Background()
	for _, email := range []string{alice, bob, root} {
		_, _, err := f.users.EnsureUser(ctx, email, email, "")
		require.NoError(t, err)
	}
	require.NoError(t, s.SetUserPrivilege(ctx, root, domain.PrivilegeSuperuser))
	return f
}

func (f *fixture) genre(t *testing.T, owner, name string) *domain.Category {
	t.Helper()
	c, err := f.categories.Create(context.Background(), owner, domain.KindGenre, CategoryInput{Name: name})
	require.NoError(t, err)
	return c
}

func (f *fixture) publisher(t *testing.T, owner, name string) *domain.Category {
	t.Helper()
	c, err := f.categories.Create(context.Background(), owner, domain.KindPublisher, CategoryInput{Name: name})
	require.NoError(t, err)
	return c
}

func (f *fixture) game(t *testing.T, owner, name, genre, publisher string) *domain.Game {
	t.Helper()
	g, err := f.games.Create(context.Background(), owner, GameInput{Name: name, Genre: genre, Publisher: publisher})
	require.NoError(t, err)
	return g
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := range 8 {
		for y := range 8 {
			img.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeSolidPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

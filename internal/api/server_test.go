package api

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/icgdb/icgdb-server/internal/auth"
	"github.com/icgdb/icgdb-server/internal/domain"
	"github.com/icgdb/icgdb-server/internal/media/images"
	"github.com/icgdb/icgdb-server/internal/search"
	"github.com/icgdb/icgdb-server/internal/service"
	"github.com/icgdb/icgdb-server/internal/store/sqlite"
	"github.com/icgdb/icgdb-server/internal/validation"
)

const (
	alice = "alice@example.com"
	bob   = "bob@example.com"
	root  = "root@example.com"
)

// testEnvelope mirrors the JSON envelope for decoding in tests.
type testEnvelope[T any] struct {
	Version int               `json:"v"`
	Success bool              `json:"success"`
	Data    T                 `json:"data"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details"`
}

type fakeGoogle struct {
	identity *auth.GoogleIdentity
	revoked  []string
}

func (g *fakeGoogle) AuthCodeURL(state, verifier string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + state +
		"&code_challenge=" + auth.CodeChallenge(verifier)
}

func (g *fakeGoogle) Exchange(_ context.Context, code, verifier string) (*auth.GoogleIdentity, error) {
	if code != "good-code" || verifier == "" || g.identity == nil {
		return nil, errors.New("oauth2: invalid_grant")
	}
	return g.identity, nil
}

func (g *fakeGoogle) Revoke(_ context.Context, token string) error {
	g.revoked = append(g.revoked, token)
	return nil
}

type testServer struct {
	server   *Server
	api      humatest.TestAPI
	tokens   *auth.TokenService
	google   *fakeGoogle
	services *Services
}

type testOption func(*Options)

func withAuthLimit(perMinute, burst int) testOption {
	return func(o *Options) {
		o.AuthRateLimiter = NewRateLimiter(perMinute, time.Minute, burst)
	}
}

// setupTestServer builds the full HTTP stack over a temporary database, an
// in-memory search index and a fake Google provider.
func setupTestServer(t *testing.T, opts ...testOption) *testServer {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	s, err := sqlite.Open(filepath.Join(dir, "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	index, err := search.Open(search.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	pictures, err := images.NewStorage(filepath.Join(dir, "pictures"))
	require.NoError(t, err)

	key := make([]byte, 32)
	_, err = rand.Read(key)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)

	v := validation.New()
	searchService := service.NewSearchService(index, s, nil)
	users := service.NewUserService(s, nil)
	google := &fakeGoogle{}

	services := &Services{
		Categories: service.NewCategoryService(s, v, searchService, nil),
		Games: service.NewGameService(s, v, service.GameServiceConfig{
			Indexer:  searchService,
			Pictures: pictures,
		}),
		Users:  users,
		Auth:   service.NewAuthService(google, tokens, users, nil),
		Search: searchService,
		Names:  service.NewNameRegistry(s),
	}

	for _, email := range []string{alice, bob, root} {
		_, _, err := users.EnsureUser(ctx, email, email, "")
		require.NoError(t, err)
	}
	require.NoError(t, s.SetUserPrivilege(ctx, root, domain.PrivilegeSuperuser))

	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	server := NewServer(services, pictures, o, nil)
	t.Cleanup(server.Close)

	return &testServer{
		server:   server,
		api:      humatest.Wrap(t, server.API()),
		tokens:   tokens,
		google:   google,
		services: services,
	}
}

// bearer returns the Authorization header argument for humatest calls.
func (ts *testServer) bearer(t *testing.T, email string) string {
	t.Helper()
	token, _, err := ts.tokens.IssueAccessToken(email, "")
	require.NoError(t, err)
	return "Authorization: Bearer " + token
}

// do sends a raw request through the router, for routes outside huma.
func (ts *testServer) do(t *testing.T, req *http.Request, email string) *httptest.ResponseRecorder {
	t.Helper()
	if email != "" {
		token, _, err := ts.tokens.IssueAccessToken(email, "")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.server.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) createGenre(t *testing.T, owner, name string) {
	t.Helper()
	resp := ts.api.Post("/api/v1/genres", ts.bearer(t, owner), map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
}

func (ts *testServer) createPublisher(t *testing.T, owner, name string) {
	t.Helper()
	resp := ts.api.Post("/api/v1/publishers", ts.bearer(t, owner), map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
}

func (ts *testServer) createGame(t *testing.T, owner string, body map[string]any) {
	t.Helper()
	resp := ts.api.Post("/api/v1/games", ts.bearer(t, owner), body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
}

func decode[T any](t *testing.T, body []byte) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return env
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartPicture(t *testing.T, fileName string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(pictureField, fileName)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGame_DefaultsToOther(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/games", ts.bearer(t, alice), map[string]any{
		"name":         "Tetris",
		"release_date": "1984-06-06",
		"rating":       "95/100",
		"market_value": "$10",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	env := decode[GameResponse](t, resp.Body.Bytes())
	assert.Equal(t, "Tetris", env.Data.Name)
	assert.Equal(t, "Other", env.Data.Genre)
	assert.Equal(t, "Other", env.Data.Publisher)
	assert.Equal(t, "1984-06-06", env.Data.ReleaseDate)
	assert.Equal(t, alice, env.Data.CreatorEmail)
}

func TestCreateGame_Errors(t *testing.T) {
	ts := setupTestServer(t)
	ts.createGame(t, alice, map[string]any{"name": "Tetris"})

	tests := []struct {
		name   string
		body   map[string]any
		status int
		code   string
	}{
		{"duplicate", map[string]any{"name": "Tetris"}, http.StatusConflict, "NAME_CONFLICT"},
		{"unknown genre", map[string]any{"name": "Doom", "genre": "Nope"}, http.StatusBadRequest, "VALIDATION"},
		{"bad date", map[string]any{"name": "Doom", "release_date": "1993-13-40"}, http.StatusBadRequest, "VALIDATION"},
		{"bad rating", map[string]any{"name": "Doom", "rating": "eleven"}, http.StatusBadRequest, "VALIDATION"},
		{"missing name", map[string]any{"genre": "Other"}, http.StatusBadRequest, "VALIDATION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/api/v1/games", ts.bearer(t, bob), tt.body)
			assert.Equal(t, tt.status, resp.Code, resp.Body.String())
			assert.Equal(t, tt.code, decode[any](t, resp.Body.Bytes()).Code)
		})
	}
}

func TestListGames_Filters(t *testing.T) {
	ts := setupTestServer(t)
	ts.createGenre(t, alice, "RTS")
	ts.createGenre(t, alice, "FPS")
	ts.createPublisher(t, alice, "Valve Corporation")
	ts.createGame(t, alice, map[string]any{"name": "StarCraft", "genre": "RTS"})
	ts.createGame(t, alice, map[string]any{"name": "Half-Life", "genre": "FPS", "publisher": "Valve Corporation"})
	ts.createGame(t, alice, map[string]any{"name": "Counter-Strike", "genre": "FPS", "publisher": "Valve Corporation"})

	resp := ts.api.Get("/api/v1/games")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decode[ListGamesResponse](t, resp.Body.Bytes()).Data.Items, 3)

	resp = ts.api.Get("/api/v1/games?genre=FPS")
	require.Equal(t, http.StatusOK, resp.Code)
	items := decode[ListGamesResponse](t, resp.Body.Bytes()).Data.Items
	require.Len(t, items, 2)
	assert.Equal(t, "Counter-Strike", items[0].Name)
	assert.Equal(t, "Half-Life", items[1].Name)

	resp = ts.api.Get("/api/v1/games?genre=RTS&publisher=Valve+Corporation")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decode[ListGamesResponse](t, resp.Body.Bytes()).Data.Items)
}

func TestUpdateGame_PartialAndOwnerOnly(t *testing.T) {
	ts := setupTestServer(t)
	ts.createGenre(t, alice, "Puzzle")
	ts.createGame(t, alice, map[string]any{"name": "Tetris", "description": "Blocks"})

	resp := ts.api.Patch("/api/v1/games/Tetris", ts.bearer(t, bob), map[string]any{"rating": "10/100"})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Patch("/api/v1/games/Tetris", ts.bearer(t, alice), map[string]any{
		"name":  "Tetris 99",
		"genre": "Puzzle",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[GameResponse](t, resp.Body.Bytes())
	assert.Equal(t, "Tetris 99", env.Data.Name)
	assert.Equal(t, "Puzzle", env.Data.Genre)
	assert.Equal(t, "Blocks", env.Data.Description)

	resp = ts.api.Get("/api/v1/games/Tetris")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteGame(t *testing.T) {
	ts := setupTestServer(t)
	ts.createGame(t, alice, map[string]any{"name": "Tetris"})

	resp := ts.api.Delete("/api/v1/games/Tetris", ts.bearer(t, bob))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Delete("/api/v1/games/Tetris", ts.bearer(t, root))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/games/Tetris")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUploadPicture(t *testing.T) {
	ts := setupTestServer(t)
	ts.createGame(t, alice, map[string]any{"name": "Tetris"})

	body, contentType := multipartPicture(t, "cover.png", pngBytes(t))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/games/Tetris/picture", body)
	req.Header.Set("Content-Type", contentType)
	rec := ts.do(t, req, alice)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	env := decode[GameResponse](t, rec.Body.Bytes())
	require.NotEmpty(t, env.Data.PictureURL)
	assert.True(t, strings.HasPrefix(env.Data.PictureURL, "/pictures/"))
	assert.True(t, strings.HasSuffix(env.Data.PictureURL, ".png"))
	assert.NotEmpty(t, env.Data.PictureBlurHash)

	rec = ts.do(t, httptest.NewRequest(http.MethodGet, env.Data.PictureURL, nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, pngBytes(t), rec.Body.Bytes())
}

func TestUploadPicture_Errors(t *testing.T) {
	ts := setupTestServer(t)
	ts.createGame(t, alice, map[string]any{"name": "Tetris"})

	tests := []struct {
		name   string
		email  string
		file   string
		data   []byte
		status int
		code   string
	}{
		{"anonymous", "", "cover.png", pngBytes(t), http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"not owner", bob, "cover.png", pngBytes(t), http.StatusForbidden, "UNAUTHORIZED"},
		{"bad extension", alice, "cover.exe", pngBytes(t), http.StatusBadRequest, "VALIDATION"},
		{"not an image", alice, "cover.png", []byte("not a png"), http.StatusBadRequest, "VALIDATION"},
		{"too large", alice, "cover.png", make([]byte, 101<<10), http.StatusBadRequest, "VALIDATION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartPicture(t, tt.file, tt.data)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/games/Tetris/picture", body)
			req.Header.Set("Content-Type", contentType)
			rec := ts.do(t, req, tt.email)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decode[any](t, rec.Body.Bytes()).Code)
		})
	}
}

func TestUploadPicture_MissingField(t *testing.T) {
	ts := setupTestServer(t)
	ts.createGame(t, alice, map[string]any{"name": "Tetris"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/games/Tetris/picture", strings.NewReader("plain"))
	req.Header.Set("Content-Type", "text/plain")
	rec := ts.do(t, req, alice)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServePicture_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/pictures/missing.png", nil), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/pictures/..%2Fetc%2Fpasswd", nil), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

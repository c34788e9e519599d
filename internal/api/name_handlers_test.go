package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNameTaken(t *testing.T) {
	ts := setupTestServer(t)
	ts.createGenre(t, alice, "RTS")
	ts.createGame(t, alice, map[string]any{"name": "StarCraft"})

	tests := []struct {
		path  string
		taken bool
	}{
		{"/api/v1/names/genre/taken?name=RTS", true},
		{"/api/v1/names/genre/taken?name=rts", false},
		{"/api/v1/names/genre/taken?name=Other", true},
		{"/api/v1/names/publisher/taken?name=RTS", false},
		{"/api/v1/names/game/taken?name=StarCraft", true},
		{"/api/v1/names/game/taken?name=Starcraft", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := ts.api.Get(tt.path)
			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
			assert.Equal(t, tt.taken, decode[NameTakenResponse](t, resp.Body.Bytes()).Data.Taken)
		})
	}
}

func TestIsNameTaken_UnknownKind(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/names/platform/taken?name=PC")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION", decode[any](t, resp.Body.Bytes()).Code)
}

func TestListNames(t *testing.T) {
	ts := setupTestServer(t)
	ts.createPublisher(t, alice, "Sega")
	ts.createGame(t, alice, map[string]any{"name": "Sonic", "publisher": "Sega"})

	resp := ts.api.Get("/api/v1/names/publisher")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"Other", "Sega"}, decode[NamesResponse](t, resp.Body.Bytes()).Data.Names)

	resp = ts.api.Get("/api/v1/names/game")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"Sonic"}, decode[NamesResponse](t, resp.Body.Bytes()).Data.Names)
}

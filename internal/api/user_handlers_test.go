package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsers_SuperuserOnly(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/users", ts.bearer(t, alice))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Get("/api/v1/users", ts.bearer(t, root))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	users := decode[ListUsersResponse](t, resp.Body.Bytes()).Data.Users
	assert.Len(t, users, 3)
}

func TestSetPrivilege_TakesEffectImmediately(t *testing.T) {
	ts := setupTestServer(t)
	ts.createGenre(t, alice, "RTS")

	// bob cannot touch alice's genre until promoted.
	resp := ts.api.Patch("/api/v1/genres/RTS", ts.bearer(t, bob), map[string]any{"description": "x"})
	require.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Put("/api/v1/users/"+bob+"/privilege", ts.bearer(t, root), map[string]any{"privilege": "superuser"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "superuser", decode[UserResponse](t, resp.Body.Bytes()).Data.Privilege)

	resp = ts.api.Patch("/api/v1/genres/RTS", ts.bearer(t, bob), map[string]any{"description": "x"})
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// The same token loses the right as soon as the privilege is revoked.
	resp = ts.api.Put("/api/v1/users/"+bob+"/privilege", ts.bearer(t, root), map[string]any{"privilege": "default"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Patch("/api/v1/genres/RTS", ts.bearer(t, bob), map[string]any{"description": "y"})
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestSetPrivilege_Errors(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Put("/api/v1/users/"+bob+"/privilege", ts.bearer(t, alice), map[string]any{"privilege": "superuser"})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Put("/api/v1/users/nobody@example.com/privilege", ts.bearer(t, root), map[string]any{"privilege": "superuser"})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Put("/api/v1/users/"+bob+"/privilege", ts.bearer(t, root), map[string]any{"privilege": "admin"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCurrentUser_RequiresLogin(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/users/me")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "UNAUTHENTICATED", decode[any](t, resp.Body.Bytes()).Code)
}

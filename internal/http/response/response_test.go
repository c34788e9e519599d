package response

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/icgdb/icgdb-server/internal/errors"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]string{"name": "RPG"}, discard())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var result map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, float64(Version), result["v"])
	assert.Equal(t, true, result["success"])
	assert.Equal(t, map[string]any{"name": "RPG"}, result["data"])
}

func TestCreated(t *testing.T) {
	w := httptest.NewRecorder()

	Created(w, map[string]string{"file": "game-1.png"}, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestHandleError_DomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", domainerrors.NotFound("Game \"Doom\" not found"), http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", domainerrors.Unauthorized("nope"), http.StatusForbidden, "UNAUTHORIZED"},
		{"sentinel", domainerrors.ProtectedSentinel("no"), http.StatusConflict, "PROTECTED_SENTINEL"},
		{"wrapped", errors.Join(errors.New("ctx"), domainerrors.Validation("bad")), http.StatusBadRequest, "VALIDATION"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			HandleError(w, tt.err, discard())

			assert.Equal(t, tt.status, w.Code)

			var env ErrorEnvelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			assert.Equal(t, Version, env.Version)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Code)
		})
	}
}

func TestHandleError_HidesInternalMessage(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, errors.New("open /secret/path: permission denied"), nil)

	assert.NotContains(t, w.Body.String(), "/secret/path")
}

func TestTooManyRequests(t *testing.T) {
	w := httptest.NewRecorder()
	TooManyRequests(w, "slow down", nil)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
}

func TestXML(t *testing.T) {
	type genre struct {
		XMLName xml.Name `xml:"genre"`
		Name    string   `xml:"name"`
	}

	w := httptest.NewRecorder()
	XML(w, http.StatusOK, genre{Name: "RPG & co"}, discard())

	assert.Equal(t, "application/xml; charset=utf-8", w.Header().Get("Content-Type"))
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "<?xml"))
	assert.Contains(t, body, "<name>RPG &amp; co</name>")
}

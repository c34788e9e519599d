package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/icgdb/icgdb-server/internal/errors"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name, forwarded, realIP, remote, want string
	}{
		{"forwarded first hop", "203.0.113.1, 10.0.0.1", "", "10.0.0.2:5000", "203.0.113.1"},
		{"real ip", "", "198.51.100.7", "10.0.0.2:5000", "198.51.100.7"},
		{"remote addr", "", "", "10.0.0.2:5000", "10.0.0.2"},
		{"remote without port", "", "", "10.0.0.2", "10.0.0.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clientIP(tt.forwarded, tt.realIP, tt.remote))
		})
	}
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	token, ok = bearerToken("bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	_, ok = bearerToken("Basic abc")
	assert.False(t, ok)
	_, ok = bearerToken("Bearer ")
	assert.False(t, ok)
	_, ok = bearerToken("")
	assert.False(t, ok)
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute, 1)
	t.Cleanup(limiter.Stop)

	handler := RateLimitMiddleware(limiter, slog.New(slog.DiscardHandler))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decode[any](t, rec.Body.Bytes()).Code)
}

func TestEnvelopeTransformer(t *testing.T) {
	out, err := EnvelopeTransformer(nil, "200", map[string]string{"k": "v"})
	require.NoError(t, err)
	env, ok := out.(APIEnvelope)
	require.True(t, ok)
	assert.True(t, env.Success)
	assert.Equal(t, EnvelopeVersion, env.Version)

	out, err = EnvelopeTransformer(nil, "409", &APIError{status: http.StatusConflict, Code: "NAME_CONFLICT", Message: "Name already taken!"})
	require.NoError(t, err)
	errEnv, ok := out.(APIErrorEnvelope)
	require.True(t, ok)
	assert.False(t, errEnv.Success)
	assert.Equal(t, "NAME_CONFLICT", errEnv.Code)

	out, err = EnvelopeTransformer(nil, "500", errors.New("boom"))
	require.NoError(t, err)
	errEnv, ok = out.(APIErrorEnvelope)
	require.True(t, ok)
	assert.Equal(t, "INTERNAL", errEnv.Code)
	assert.Equal(t, "boom", errEnv.Message)
}

func TestRegisterErrorHandler_MapsDomainErrors(t *testing.T) {
	RegisterErrorHandler()

	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domainerrors.NotFound("x"), http.StatusNotFound, "NOT_FOUND"},
		{domainerrors.Unauthorized("x"), http.StatusForbidden, "UNAUTHORIZED"},
		{domainerrors.NameConflict("x"), http.StatusConflict, "NAME_CONFLICT"},
		{domainerrors.ProtectedSentinel("x"), http.StatusConflict, "PROTECTED_SENTINEL"},
		{domainerrors.Validation("x"), http.StatusBadRequest, "VALIDATION"},
		{domainerrors.Unavailable("x"), http.StatusServiceUnavailable, "UNAVAILABLE"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			se := huma.NewError(http.StatusInternalServerError, "wrapped", tt.err)
			assert.Equal(t, tt.status, se.GetStatus())
			apiErr, ok := se.(*APIError)
			require.True(t, ok)
			assert.Equal(t, tt.code, apiErr.Code)
		})
	}
}

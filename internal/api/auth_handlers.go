package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerAuthRoutes() {
	limited := huma.Middlewares{s.rateLimitOperation}

	huma.Register(s.api, huma.Operation{
		OperationID: "googleLoginStart",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/google/start",
		Summary:     "Start Google login",
		Description: "Returns the Google consent URL and the state the callback must send back",
		Tags:        []string{"Authentication"},
		Middlewares: limited,
	}, s.handleGoogleStart)

	huma.Register(s.api, huma.Operation{
		OperationID: "googleLoginCallback",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/google/callback",
		Summary:     "Complete Google login",
		Description: "Exchanges the authorization code, creates the user on first login and returns a session token",
		Tags:        []string{"Authentication"},
		Middlewares: limited,
	}, s.handleGoogleCallback)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Logout",
		Description: "Revokes the Google token behind the session. Always succeeds.",
		Tags:        []string{"Authentication"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: limited,
	}, s.handleLogout)
}

// === DTOs ===

type LoginStartResponse struct {
	URL          string `json:"url" doc:"Google consent URL"`
	State        string `json:"state" doc:"Anti-forgery state to send back on callback"`
	CodeVerifier string `json:"code_verifier" doc:"PKCE verifier; keep it client-side and send it on callback"`
}

type LoginStartOutput struct {
	Body LoginStartResponse
}

type CallbackRequest struct {
	Code         string `json:"code" minLength:"1" doc:"Authorization code from Google"`
	State        string `json:"state" minLength:"1" doc:"State returned by the start call"`
	CodeVerifier string `json:"code_verifier" minLength:"1" doc:"PKCE verifier returned by the start call"`
}

type CallbackInput struct {
	Body CallbackRequest
}

type SessionResponse struct {
	AccessToken string       `json:"access_token" doc:"PASETO session token"`
	ExpiresAt   time.Time    `json:"expires_at" doc:"Token expiry"`
	User        UserResponse `json:"user" doc:"Signed-in user"`
	Created     bool         `json:"created" doc:"True on the user's first login"`
}

type SessionOutput struct {
	Body SessionResponse
}

type LogoutInput struct {
	Authorization string `header:"Authorization"`
}

type MessageResponse struct {
	Message string `json:"message" doc:"Human-readable result"`
}

type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleGoogleStart(_ context.Context, _ *struct{}) (*LoginStartOutput, error) {
	start, err := s.services.Auth.Start()
	if err != nil {
		return nil, err
	}
	return &LoginStartOutput{Body: LoginStartResponse{
		URL:          start.URL,
		State:        start.State,
		CodeVerifier: start.CodeVerifier,
	}}, nil
}

func (s *Server) handleGoogleCallback(ctx context.Context, input *CallbackInput) (*SessionOutput, error) {
	session, err := s.services.Auth.Callback(ctx, input.Body.Code, input.Body.State, input.Body.CodeVerifier)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: SessionResponse{
		AccessToken: session.AccessToken,
		ExpiresAt:   session.ExpiresAt,
		User:        mapUserResponse(session.User),
		Created:     session.Created,
	}}, nil
}

func (s *Server) handleLogout(ctx context.Context, _ *LogoutInput) (*MessageOutput, error) {
	s.services.Auth.Logout(ctx, claimsFrom(ctx))
	return &MessageOutput{Body: MessageResponse{Message: "Successfully logged out"}}, nil
}

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/icgdb/icgdb-server/internal/color"
	"github.com/icgdb/icgdb-server/internal/domain"
	domainerrors "github.com/icgdb/icgdb-server/internal/errors"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List users",
		Description: "Superusers only",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "setUserPrivilege",
		Method:      http.MethodPut,
		Path:        "/api/v1/users/{email}/privilege",
		Summary:     "Set user privilege",
		Description: "Grants or revokes superuser. Superusers only. Takes effect on the next request.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetUserPrivilege)
}

// === DTOs ===

type UserResponse struct {
	Email       string    `json:"email" doc:"Email address"`
	DisplayName string    `json:"display_name" doc:"Name from the identity provider"`
	AvatarURL   string    `json:"avatar_url,omitempty" doc:"Avatar URL"`
	AvatarColor string    `json:"avatar_color" doc:"Placeholder color when there is no avatar"`
	Privilege   string    `json:"privilege" doc:"default or superuser"`
	CreatedAt   time.Time `json:"created_at" doc:"First login"`
}

type UserOutput struct {
	Body UserResponse
}

type ListUsersResponse struct {
	Users []UserResponse `json:"users" doc:"All users ordered by email"`
}

type ListUsersOutput struct {
	Body ListUsersResponse
}

type AuthenticatedInput struct {
	Authorization string `header:"Authorization"`
}

type SetPrivilegeRequest struct {
	Privilege string `json:"privilege" enum:"default,superuser" doc:"New privilege"`
}

type SetPrivilegeInput struct {
	Authorization string `header:"Authorization"`
	Email         string `path:"email" doc:"User email"`
	Body          SetPrivilegeRequest
}

// === Handlers ===

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *AuthenticatedInput) (*UserOutput, error) {
	email := actingEmail(ctx)
	if email == "" {
		return nil, domainerrors.Unauthenticated("You must be logged in.")
	}
	u, err := s.services.Users.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUserResponse(u)}, nil
}

func (s *Server) handleListUsers(ctx context.Context, _ *AuthenticatedInput) (*ListUsersOutput, error) {
	users, err := s.services.Users.List(ctx, actingEmail(ctx))
	if err != nil {
		return nil, err
	}
	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = mapUserResponse(u)
	}
	return &ListUsersOutput{Body: ListUsersResponse{Users: resp}}, nil
}

func (s *Server) handleSetUserPrivilege(ctx context.Context, input *SetPrivilegeInput) (*UserOutput, error) {
	u, err := s.services.Users.SetPrivilege(ctx, actingEmail(ctx), input.Email, domain.Privilege(input.Body.Privilege))
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: mapUserResponse(u)}, nil
}

func mapUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		Email:       u.Email,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		AvatarColor: color.ForEmail(u.Email),
		Privilege:   string(u.Privilege),
		CreatedAt:   u.CreatedAt,
	}
}
